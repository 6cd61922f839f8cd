package dto

import "time"

type RouteResponse struct {
	RouteID             string          `json:"route_id"`
	Name                string          `json:"name"`
	Points              []PointResponse `json:"points"`
	DistanceMeters      float64         `json:"distance_meters"`
	ElevationGainMeters float64         `json:"elevation_gain_meters"`
	ElevationLossMeters float64         `json:"elevation_loss_meters"`
	CreatedAt           time.Time       `json:"created_at"`
}

// Route summary without points, used in listings.
type RouteSummaryResponse struct {
	RouteID             string    `json:"route_id"`
	Name                string    `json:"name"`
	PointCount          int       `json:"point_count"`
	DistanceMeters      float64   `json:"distance_meters"`
	ElevationGainMeters float64   `json:"elevation_gain_meters"`
	CreatedAt           time.Time `json:"created_at"`
}

type ListRoutesResponse struct {
	Routes []RouteSummaryResponse `json:"routes"`
}
