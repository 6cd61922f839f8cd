package repositories

import (
	"encoding/json"
	"fmt"
	"route-draw-service/internal/domain"
)

// Points are stored as a JSON array of {lat, lng, elevation?} objects in both
// the SQLite and Postgres schemas.
func encodePoints(points []domain.RoutePoint) ([]byte, error) {
	if points == nil {
		points = []domain.RoutePoint{}
	}

	b, err := json.Marshal(points)
	if err != nil {
		return nil, fmt.Errorf("encode points: %w", err)
	}
	return b, nil
}

func decodePoints(b []byte) ([]domain.RoutePoint, error) {
	points := []domain.RoutePoint{}
	if len(b) == 0 {
		return points, nil
	}

	if err := json.Unmarshal(b, &points); err != nil {
		return nil, fmt.Errorf("decode points: %w", err)
	}
	return points, nil
}
