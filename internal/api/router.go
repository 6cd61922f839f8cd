package api

import (
	"log"
	"net/http"
	"route-draw-service/internal/api/handlers"
	"route-draw-service/internal/ports"
	"route-draw-service/internal/services"

	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(sessions *services.SessionManager, repo ports.RouteRepository, allowedOrigins []string) http.Handler {
	router := mux.NewRouter()

	sessionHandler := &handlers.SessionHandler{Sessions: sessions}
	routeHandler := &handlers.RouteHandler{Repo: repo}

	router.HandleFunc("/health", handlers.Health).Methods(http.MethodGet)

	// Full paths on the root router keep 405 for method mismatches.
	router.HandleFunc("/sessions", sessionHandler.Create).Methods(http.MethodPost)
	router.HandleFunc("/sessions/{id}", sessionHandler.Get).Methods(http.MethodGet)
	router.HandleFunc("/sessions/{id}", sessionHandler.Close).Methods(http.MethodDelete)
	router.HandleFunc("/sessions/{id}/points", sessionHandler.AddPoint).Methods(http.MethodPost)
	router.HandleFunc("/sessions/{id}/points", sessionHandler.SetPoints).Methods(http.MethodPut)
	router.HandleFunc("/sessions/{id}/points/last", sessionHandler.RemoveLastPoint).Methods(http.MethodDelete)
	router.HandleFunc("/sessions/{id}/undo", sessionHandler.Undo).Methods(http.MethodPost)
	router.HandleFunc("/sessions/{id}/redo", sessionHandler.Redo).Methods(http.MethodPost)
	router.HandleFunc("/sessions/{id}/clear", sessionHandler.Clear).Methods(http.MethodPost)
	router.HandleFunc("/sessions/{id}/save", sessionHandler.Save).Methods(http.MethodPost)

	router.HandleFunc("/routes", routeHandler.List).Methods(http.MethodGet)
	router.HandleFunc("/routes/{id}", routeHandler.Get).Methods(http.MethodGet)
	router.HandleFunc("/routes/{id}/geojson", routeHandler.GeoJSON).Methods(http.MethodGet)

	var h http.Handler = router
	if len(allowedOrigins) > 0 {
		h = gorillahandlers.CORS(
			gorillahandlers.AllowedOrigins(allowedOrigins),
			gorillahandlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete}),
			gorillahandlers.AllowedHeaders([]string{"Content-Type", requestIDHeader}),
			gorillahandlers.ExposedHeaders([]string{requestIDHeader}),
		)(h)
	}
	h = gorillahandlers.RecoveryHandler(
		gorillahandlers.RecoveryLogger(log.Default()),
		gorillahandlers.PrintRecoveryStack(true),
	)(h)

	return requestIDMiddleware(loggingMiddleware(h))
}
