package ports

import (
	"context"
	"route-draw-service/internal/domain"
)

// Last known state of a drawing session, kept so the session can be resumed
// after it is gone from memory. Undo history is not part of a draft.
type Draft struct {
	SourceRouteID string              `json:"source_route_id,omitempty"`
	Points        []domain.RoutePoint `json:"points"`
}

// Contract for caching the in-progress state of drawing sessions.
type DraftStore interface {
	SaveDraft(ctx context.Context, sessionID string, draft Draft) error
	// Return the cached draft and whether one exists.
	LoadDraft(ctx context.Context, sessionID string) (Draft, bool, error)
	DeleteDraft(ctx context.Context, sessionID string) error
}
