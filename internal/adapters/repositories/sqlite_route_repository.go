package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"route-draw-service/internal/domain"
	"route-draw-service/internal/platform/obs"
	"strings"
	"time"
)

// Fixed-width UTC layout so created_at sorts correctly as text.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLite-backed implementation of the RouteRepository port.
type SqliteRouteRepository struct{ DB *sql.DB }

func NewSqliteRouteRepository(db *sql.DB) *SqliteRouteRepository {
	return &SqliteRouteRepository{DB: db}
}

// Insert a new route.
func (s *SqliteRouteRepository) SaveRoute(ctx context.Context, route *domain.Route) (err error) {
	defer obs.Time(ctx, "route.sqlite.Save")(&err)

	if s.DB == nil {
		return errors.New("sqlite route repository: DB is nil")
	}
	if route == nil || strings.TrimSpace(route.ID) == "" {
		return errors.New("save route: route id must not be empty")
	}

	points, err := encodePoints(route.Points)
	if err != nil {
		return fmt.Errorf("save route %s: %w", route.ID, err)
	}

	query := `
	INSERT INTO routes (
		route_id,
		name,
		points,
		distance_meters,
		elevation_gain_meters,
		elevation_loss_meters,
		created_at
	)
	VALUES (?, ?, ?, ?, ?, ?, ?);
	`
	_, err = s.DB.ExecContext(
		ctx, query,
		route.ID,
		route.Name,
		string(points),
		route.DistanceMeters,
		route.ElevationGainMeters,
		route.ElevationLossMeters,
		route.CreatedAt.UTC().Format(sqliteTimeLayout),
	)
	if err != nil {
		return fmt.Errorf("save route %s: insert: %w", route.ID, err)
	}

	return nil
}

// Return a single route by ID.
func (s *SqliteRouteRepository) GetRoute(ctx context.Context, id string) (_ *domain.Route, err error) {
	defer obs.Time(ctx, "route.sqlite.Get")(&err)

	if s.DB == nil {
		return nil, errors.New("sqlite route repository: DB is nil")
	}

	query := `
	SELECT
		route_id,
		name,
		points,
		distance_meters,
		elevation_gain_meters,
		elevation_loss_meters,
		created_at
	FROM routes
	WHERE route_id = ?;
	`
	route, err := scanSqliteRoute(s.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get route %s: %w", id, domain.ErrRouteNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get route %s: %w", id, err)
	}

	return route, nil
}

// Return all routes, newest first.
func (s *SqliteRouteRepository) ListRoutes(ctx context.Context) (_ []*domain.Route, err error) {
	defer obs.Time(ctx, "route.sqlite.List")(&err)

	if s.DB == nil {
		return nil, errors.New("sqlite route repository: DB is nil")
	}

	query := `
	SELECT
		route_id,
		name,
		points,
		distance_meters,
		elevation_gain_meters,
		elevation_loss_meters,
		created_at
	FROM routes
	ORDER BY created_at DESC, route_id;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list routes: query routes table: %w", err)
	}
	defer rows.Close()

	routes := make([]*domain.Route, 0, 16)
	for rows.Next() {
		route, err := scanSqliteRoute(rows)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSqliteRoute(row rowScanner) (*domain.Route, error) {
	var (
		r         domain.Route
		points    string
		createdAt string
	)

	err := row.Scan(
		&r.ID,
		&r.Name,
		&points,
		&r.DistanceMeters,
		&r.ElevationGainMeters,
		&r.ElevationLossMeters,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	r.Points, err = decodePoints([]byte(points))
	if err != nil {
		return nil, fmt.Errorf("route %s: %w", r.ID, err)
	}

	r.CreatedAt, err = time.Parse(sqliteTimeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("route %s: parse created_at %q: %w", r.ID, createdAt, err)
	}

	return &r, nil
}
