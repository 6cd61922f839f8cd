package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"route-draw-service/internal/domain"
	"route-draw-service/internal/platform/obs"
	"strings"
)

// SQLRouteRepository is a Postgres-backed implementation of the
// RouteRepository port. Points are stored in a JSONB column.
type SQLRouteRepository struct {
	DB *sql.DB
}

func NewSQLRouteRepository(db *sql.DB) *SQLRouteRepository {
	return &SQLRouteRepository{DB: db}
}

// Insert a new route.
func (s *SQLRouteRepository) SaveRoute(ctx context.Context, route *domain.Route) (err error) {
	defer obs.Time(ctx, "route.sql.Save")(&err)

	if s.DB == nil {
		return errors.New("sql route repository: db is nil")
	}
	if route == nil || strings.TrimSpace(route.ID) == "" {
		return errors.New("save route: route id must not be empty")
	}

	points, err := encodePoints(route.Points)
	if err != nil {
		return fmt.Errorf("save route %s: %w", route.ID, err)
	}

	q := `
	INSERT INTO routes (
		route_id,
		name,
		points,
		distance_meters,
		elevation_gain_meters,
		elevation_loss_meters,
		created_at
	)
	VALUES ($1, $2, $3::jsonb, $4, $5, $6, $7);
	`
	_, err = s.DB.ExecContext(
		ctx, q,
		route.ID,
		route.Name,
		string(points),
		route.DistanceMeters,
		route.ElevationGainMeters,
		route.ElevationLossMeters,
		route.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("save route %s: insert: %w", route.ID, err)
	}

	return nil
}

// Return a single route by ID.
func (s *SQLRouteRepository) GetRoute(ctx context.Context, id string) (_ *domain.Route, err error) {
	defer obs.Time(ctx, "route.sql.Get")(&err)

	if s.DB == nil {
		return nil, errors.New("sql route repository: db is nil")
	}

	q := `
	SELECT route_id, name, points, distance_meters,
		elevation_gain_meters, elevation_loss_meters, created_at
	FROM routes
	WHERE route_id = $1;
	`
	route, err := scanSQLRoute(s.DB.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get route %s: %w", id, domain.ErrRouteNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get route %s: %w", id, err)
	}

	return route, nil
}

// Return all routes, newest first.
func (s *SQLRouteRepository) ListRoutes(ctx context.Context) (_ []*domain.Route, err error) {
	defer obs.Time(ctx, "route.sql.List")(&err)

	if s.DB == nil {
		return nil, errors.New("sql route repository: db is nil")
	}

	q := `
	SELECT route_id, name, points, distance_meters,
		elevation_gain_meters, elevation_loss_meters, created_at
	FROM routes
	ORDER BY created_at DESC, route_id;
	`
	rows, err := s.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list routes: query routes table: %w", err)
	}
	defer rows.Close()

	routes := make([]*domain.Route, 0, 16)
	for rows.Next() {
		route, err := scanSQLRoute(rows)
		if err != nil {
			return nil, fmt.Errorf("list routes: %w", err)
		}
		routes = append(routes, route)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list routes: row iteration: %w", err)
	}

	return routes, nil
}

func scanSQLRoute(row rowScanner) (*domain.Route, error) {
	var (
		r      domain.Route
		points []byte
	)

	err := row.Scan(
		&r.ID,
		&r.Name,
		&points,
		&r.DistanceMeters,
		&r.ElevationGainMeters,
		&r.ElevationLossMeters,
		&r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.Points, err = decodePoints(points)
	if err != nil {
		return nil, fmt.Errorf("route %s: %w", r.ID, err)
	}

	return &r, nil
}
