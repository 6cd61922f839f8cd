package handlers

import (
	"errors"
	"log"
	"net/http"
	"route-draw-service/internal/api/dto"
	"route-draw-service/internal/domain"
	"route-draw-service/internal/services"
	"strings"

	"github.com/gorilla/mux"
)

// SessionHandler exposes drawing sessions and their undo/redo history.
type SessionHandler struct {
	Sessions *services.SessionManager
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateSessionRequest
	if err := decodeBody(r, &req, true); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	s, err := h.Sessions.CreateSession(r.Context(), req.FromRouteID)
	if err != nil {
		h.fail(w, r, "create session", err)
		return
	}

	writeJSON(w, r, http.StatusCreated, toSessionResponse(s))
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.Sessions.GetSession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, "get session", err)
		return
	}

	writeJSON(w, r, http.StatusOK, toSessionResponse(s))
}

func (h *SessionHandler) Close(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.CloseSession(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.fail(w, r, "close session", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) AddPoint(w http.ResponseWriter, r *http.Request) {
	var req dto.PointRequest
	if err := decodeBody(r, &req, false); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	p, err := toPoint(req)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	s, err := h.Sessions.AddPoint(r.Context(), mux.Vars(r)["id"], p)
	h.respond(w, r, "add point", s, err)
}

func (h *SessionHandler) RemoveLastPoint(w http.ResponseWriter, r *http.Request) {
	s, err := h.Sessions.RemoveLastPoint(r.Context(), mux.Vars(r)["id"])
	h.respond(w, r, "remove last point", s, err)
}

func (h *SessionHandler) SetPoints(w http.ResponseWriter, r *http.Request) {
	var req dto.SetPointsRequest
	if err := decodeBody(r, &req, false); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	points := make([]domain.RoutePoint, 0, len(req.Points))
	for _, rp := range req.Points {
		p, err := toPoint(rp)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		points = append(points, p)
	}

	s, err := h.Sessions.SetPoints(r.Context(), mux.Vars(r)["id"], points)
	h.respond(w, r, "set points", s, err)
}

func (h *SessionHandler) Undo(w http.ResponseWriter, r *http.Request) {
	s, err := h.Sessions.Undo(r.Context(), mux.Vars(r)["id"])
	h.respond(w, r, "undo", s, err)
}

func (h *SessionHandler) Redo(w http.ResponseWriter, r *http.Request) {
	s, err := h.Sessions.Redo(r.Context(), mux.Vars(r)["id"])
	h.respond(w, r, "redo", s, err)
}

func (h *SessionHandler) Clear(w http.ResponseWriter, r *http.Request) {
	s, err := h.Sessions.Clear(r.Context(), mux.Vars(r)["id"])
	h.respond(w, r, "clear", s, err)
}

// Save persists the session's current points as a new route.
func (h *SessionHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req dto.SaveRouteRequest
	if err := decodeBody(r, &req, false); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, r, http.StatusBadRequest, "name is required")
		return
	}

	route, err := h.Sessions.SaveRoute(r.Context(), mux.Vars(r)["id"], req.Name)
	if err != nil {
		h.fail(w, r, "save route", err)
		return
	}

	writeJSON(w, r, http.StatusCreated, toRouteResponse(route))
}

func (h *SessionHandler) respond(w http.ResponseWriter, r *http.Request, op string, s services.SessionSnapshot, err error) {
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toSessionResponse(s))
}

func (h *SessionHandler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		writeError(w, r, http.StatusNotFound, "session not found")
	case errors.Is(err, domain.ErrRouteNotFound):
		writeError(w, r, http.StatusNotFound, "route not found")
	case errors.Is(err, services.ErrInvalidName):
		writeError(w, r, http.StatusBadRequest, services.ErrInvalidName.Error())
	case errors.Is(err, services.ErrRouteTooShort):
		writeError(w, r, http.StatusUnprocessableEntity, services.ErrRouteTooShort.Error())
	default:
		log.Printf("%s failed: %v", op, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}

func toSessionResponse(s services.SessionSnapshot) dto.SessionResponse {
	return dto.SessionResponse{
		SessionID:     s.ID,
		SourceRouteID: s.SourceRouteID,
		Points:        toPointResponses(s.Points),
		CanUndo:       s.CanUndo,
		CanRedo:       s.CanRedo,
		UndoDepth:     s.UndoDepth,
		RedoDepth:     s.RedoDepth,
		CreatedAt:     s.CreatedAt,
		LastActive:    s.LastActive,
	}
}
