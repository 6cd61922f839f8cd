package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"route-draw-service/internal/domain"
	"route-draw-service/internal/ports"
	"strings"
	"time"
)

type RouteSeed struct {
	RouteID string              `json:"route_id"`
	Name    string              `json:"name"`
	Points  []domain.RoutePoint `json:"points"`
}

// SeedFromJSON loads routes from a JSON file into the repository.
// Routes whose ID already exists are skipped, so seeding can run on every start.
func SeedFromJSON(ctx context.Context, repo ports.RouteRepository, jsonPath string) (int, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return 0, fmt.Errorf("seed routes: read %q: %w", jsonPath, err)
	}

	var data []RouteSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return 0, fmt.Errorf("seed routes: parse json: %w", err)
	}

	return SeedRoutes(ctx, repo, data)
}

// SeedRoutes validates and stores seed routes, returning how many were inserted.
func SeedRoutes(ctx context.Context, repo ports.RouteRepository, seeds []RouteSeed) (int, error) {
	for i, item := range seeds {
		if strings.TrimSpace(item.RouteID) == "" {
			return 0, fmt.Errorf("seed routes: item at index %d: route_id cannot be empty", i+1)
		}
		if strings.TrimSpace(item.Name) == "" {
			return 0, fmt.Errorf("seed routes: item at index %d: name cannot be empty", i+1)
		}
		if len(item.Points) < 2 {
			return 0, fmt.Errorf("seed routes: item at index %d: %w", i+1, ErrRouteTooShort)
		}
	}

	inserted := 0
	now := time.Now().UTC()
	for _, item := range seeds {
		_, err := repo.GetRoute(ctx, item.RouteID)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrRouteNotFound) {
			return inserted, fmt.Errorf("seed routes: check route_id=%s: %w", item.RouteID, err)
		}

		stats := ComputeRouteStats(item.Points)
		route := &domain.Route{
			ID:                  item.RouteID,
			Name:                strings.TrimSpace(item.Name),
			Points:              item.Points,
			DistanceMeters:      stats.DistanceMeters,
			ElevationGainMeters: stats.ElevationGainMeters,
			ElevationLossMeters: stats.ElevationLossMeters,
			CreatedAt:           now,
		}
		if err := repo.SaveRoute(ctx, route); err != nil {
			return inserted, fmt.Errorf("seed routes: insert route_id=%s: %w", item.RouteID, err)
		}
		inserted++
	}

	return inserted, nil
}
