package domain

// A single geographic coordinate in a drawn route.
// Identity is positional: a point is addressed by its index in the route.
type RoutePoint struct {
	Lat       float64  `json:"lat"`
	Lng       float64  `json:"lng"`
	Elevation *float64 `json:"elevation,omitempty"`
}

// Return the point as [lng, lat] for GeoJSON compatibility.
func (p RoutePoint) LngLat() [2]float64 { return [2]float64{p.Lng, p.Lat} }

// clonePoints returns an independent copy of points.
// A nil or empty input yields an empty, non-nil slice so JSON renders [].
func clonePoints(points []RoutePoint) []RoutePoint {
	out := make([]RoutePoint, len(points))
	copy(out, points)
	return out
}
