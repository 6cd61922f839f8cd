package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestSeedFromJSONIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRouteRepository()

	path := filepath.Join(t.TempDir(), "routes.json")
	seed := `[
		{"route_id": "vercors", "name": "Vercors loop", "points": [
			{"lat": 45.07, "lng": 5.51, "elevation": 700},
			{"lat": 45.10, "lng": 5.55, "elevation": 1050}
		]}
	]`
	if err := os.WriteFile(path, []byte(seed), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	n, err := SeedFromJSON(ctx, repo, path)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if n != 1 {
		t.Fatalf("inserted = %d, want 1", n)
	}

	route, err := repo.GetRoute(ctx, "vercors")
	if err != nil {
		t.Fatalf("get seeded route: %v", err)
	}
	if route.ElevationGainMeters != 350 {
		t.Fatalf("gain = %v, want 350", route.ElevationGainMeters)
	}

	n, err = SeedFromJSON(ctx, repo, path)
	if err != nil {
		t.Fatalf("second seed: %v", err)
	}
	if n != 0 {
		t.Fatalf("second seed inserted = %d, want 0", n)
	}
}

func TestSeedRoutesValidates(t *testing.T) {
	_, err := SeedRoutes(context.Background(), newMemoryRouteRepository(), []RouteSeed{
		{RouteID: "x", Name: "x"},
	})
	if !errors.Is(err, ErrRouteTooShort) {
		t.Fatalf("err = %v, want ErrRouteTooShort", err)
	}
}
