// Package export renders saved routes in interchange formats.
package export

import (
	"errors"
	"route-draw-service/internal/domain"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// RouteFeatureCollection renders a route as a GeoJSON FeatureCollection with a
// single LineString feature. Coordinates are [lng, lat]; elevations, when any
// point has one, go in the "elevations" property (null where unknown).
func RouteFeatureCollection(route *domain.Route) (*geojson.FeatureCollection, error) {
	if route == nil {
		return nil, errors.New("export geojson: route is nil")
	}

	line := make(orb.LineString, 0, len(route.Points))
	elevations := make([]*float64, 0, len(route.Points))
	hasElevation := false
	for _, p := range route.Points {
		line = append(line, orb.Point(p.LngLat()))
		elevations = append(elevations, p.Elevation)
		if p.Elevation != nil {
			hasElevation = true
		}
	}

	f := geojson.NewFeature(line)
	f.ID = route.ID
	f.Properties["name"] = route.Name
	f.Properties["distance_meters"] = route.DistanceMeters
	f.Properties["elevation_gain_meters"] = route.ElevationGainMeters
	f.Properties["elevation_loss_meters"] = route.ElevationLossMeters
	f.Properties["created_at"] = route.CreatedAt
	if hasElevation {
		f.Properties["elevations"] = elevations
	}

	fc := geojson.NewFeatureCollection()
	fc.Append(f)
	return fc, nil
}
