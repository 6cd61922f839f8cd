package dto

import "time"

type PointRequest struct {
	Lat       *float64 `json:"lat"`
	Lng       *float64 `json:"lng"`
	Elevation *float64 `json:"elevation,omitempty"`
}

type PointResponse struct {
	Lat       float64  `json:"lat"`
	Lng       float64  `json:"lng"`
	Elevation *float64 `json:"elevation,omitempty"`
}

type CreateSessionRequest struct {
	FromRouteID string `json:"from_route_id"`
}

type SetPointsRequest struct {
	Points []PointRequest `json:"points"`
}

type SaveRouteRequest struct {
	Name string `json:"name"`
}

type SessionResponse struct {
	SessionID     string          `json:"session_id"`
	SourceRouteID string          `json:"source_route_id,omitempty"`
	Points        []PointResponse `json:"points"`
	CanUndo       bool            `json:"can_undo"`
	CanRedo       bool            `json:"can_redo"`
	UndoDepth     int             `json:"undo_depth"`
	RedoDepth     int             `json:"redo_depth"`
	CreatedAt     time.Time       `json:"created_at"`
	LastActive    time.Time       `json:"last_active"`
}
