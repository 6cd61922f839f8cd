package ports

import (
	"context"
	"route-draw-service/internal/domain"
)

// Port: a boundary for persisting and retrieving saved routes.
type RouteRepository interface {
	// Persist a new route. The route ID is assigned by the caller.
	SaveRoute(ctx context.Context, route *domain.Route) error
	// Retrieve a route by ID, or domain.ErrRouteNotFound.
	GetRoute(ctx context.Context, id string) (*domain.Route, error)
	// Retrieve all saved routes, newest first.
	ListRoutes(ctx context.Context) ([]*domain.Route, error)
}
