package handlers

import (
	"errors"
	"log"
	"net/http"
	"route-draw-service/internal/adapters/export"
	"route-draw-service/internal/api/dto"
	"route-draw-service/internal/domain"
	"route-draw-service/internal/ports"

	"github.com/gorilla/mux"
)

// RouteHandler exposes read-only access to saved routes.
type RouteHandler struct {
	Repo ports.RouteRepository
}

func (h *RouteHandler) List(w http.ResponseWriter, r *http.Request) {
	routes, err := h.Repo.ListRoutes(r.Context())
	if err != nil {
		log.Printf("list routes failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListRoutesResponse{
		Routes: make([]dto.RouteSummaryResponse, 0, len(routes)),
	}
	for _, rt := range routes {
		res.Routes = append(res.Routes, dto.RouteSummaryResponse{
			RouteID:             rt.ID,
			Name:                rt.Name,
			PointCount:          len(rt.Points),
			DistanceMeters:      rt.DistanceMeters,
			ElevationGainMeters: rt.ElevationGainMeters,
			CreatedAt:           rt.CreatedAt,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *RouteHandler) Get(w http.ResponseWriter, r *http.Request) {
	route, ok := h.load(w, r)
	if !ok {
		return
	}

	writeJSON(w, r, http.StatusOK, toRouteResponse(route))
}

// GeoJSON exports a route as a FeatureCollection.
func (h *RouteHandler) GeoJSON(w http.ResponseWriter, r *http.Request) {
	route, ok := h.load(w, r)
	if !ok {
		return
	}

	fc, err := export.RouteFeatureCollection(route)
	if err != nil {
		log.Printf("export geojson failed: route=%s err=%v", route.ID, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	body, err := fc.MarshalJSON()
	if err != nil {
		log.Printf("export geojson failed: route=%s err=%v", route.ID, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Printf("write failed: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
	}
}

func (h *RouteHandler) load(w http.ResponseWriter, r *http.Request) (*domain.Route, bool) {
	id := mux.Vars(r)["id"]

	route, err := h.Repo.GetRoute(r.Context(), id)
	if errors.Is(err, domain.ErrRouteNotFound) {
		writeError(w, r, http.StatusNotFound, "route not found")
		return nil, false
	}
	if err != nil {
		log.Printf("get route failed: route=%s err=%v", id, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return nil, false
	}

	return route, true
}

func toRouteResponse(rt *domain.Route) dto.RouteResponse {
	return dto.RouteResponse{
		RouteID:             rt.ID,
		Name:                rt.Name,
		Points:              toPointResponses(rt.Points),
		DistanceMeters:      rt.DistanceMeters,
		ElevationGainMeters: rt.ElevationGainMeters,
		ElevationLossMeters: rt.ElevationLossMeters,
		CreatedAt:           rt.CreatedAt,
	}
}
