package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"route-draw-service/internal/api/dto"
	"route-draw-service/internal/domain"
	"route-draw-service/internal/platform/obs"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode failed: req_id=%s method=%s path=%s status=%d err=%v",
			obs.RequestID(r.Context()), r.Method, r.URL.Path, status, err)
	}
}

// writeError sends {"error": msg}. Server errors are the caller's to log.
func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, dto.ErrorResponse{Error: msg})
}

var errInvalidBody = errors.New("invalid json body")

// decodeBody decodes exactly one JSON object into v, rejecting unknown fields.
// An empty body leaves v untouched when allowEmpty is set.
func decodeBody(r *http.Request, v any, allowEmpty bool) error {
	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return errInvalidBody
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("body must contain only one JSON object")
	}
	return nil
}

func toPoint(p dto.PointRequest) (domain.RoutePoint, error) {
	if p.Lat == nil || p.Lng == nil {
		return domain.RoutePoint{}, errors.New("lat and lng are required")
	}
	return domain.RoutePoint{Lat: *p.Lat, Lng: *p.Lng, Elevation: p.Elevation}, nil
}

func toPointResponses(points []domain.RoutePoint) []dto.PointResponse {
	out := make([]dto.PointResponse, 0, len(points))
	for _, p := range points {
		out = append(out, dto.PointResponse{Lat: p.Lat, Lng: p.Lng, Elevation: p.Elevation})
	}
	return out
}
