package domain

import (
	"errors"
	"time"
)

var ErrRouteNotFound = errors.New("route not found")

// Represents a saved cycling route.
// A Route is the persisted result of a drawing session: the final point
// sequence plus aggregate metrics computed when it was saved.
type Route struct {
	ID                  string
	Name                string
	Points              []RoutePoint
	DistanceMeters      float64
	ElevationGainMeters float64
	ElevationLossMeters float64
	CreatedAt           time.Time
}

// Aggregate metrics for a point sequence.
type RouteStats struct {
	DistanceMeters      float64
	ElevationGainMeters float64
	ElevationLossMeters float64
}
