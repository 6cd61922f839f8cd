package services

import (
	"route-draw-service/internal/domain"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// ComputeRouteStats returns the great-circle length of the point sequence and
// its cumulative climb and descent.
//
// Elevation is only accumulated between consecutive points that both carry an
// elevation; a point without elevation breaks the chain.
func ComputeRouteStats(points []domain.RoutePoint) domain.RouteStats {
	stats := domain.RouteStats{}
	if len(points) < 2 {
		return stats
	}

	line := make(orb.LineString, 0, len(points))
	for _, p := range points {
		line = append(line, orb.Point(p.LngLat()))
	}
	stats.DistanceMeters = geo.LengthHaversine(line)

	for i := 1; i < len(points); i++ {
		prev, cur := points[i-1].Elevation, points[i].Elevation
		if prev == nil || cur == nil {
			continue
		}

		delta := *cur - *prev
		if delta > 0 {
			stats.ElevationGainMeters += delta
		} else {
			stats.ElevationLossMeters -= delta
		}
	}

	return stats
}
