package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"route-draw-service/internal/domain"
	"route-draw-service/internal/ports"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound = errors.New("drawing session not found")
	ErrRouteTooShort   = errors.New("route needs at least two points")
	ErrInvalidName     = errors.New("route name must be non-empty")

	// The session was evicted while a request waited on it; look it up again.
	errSessionEvicted = errors.New("drawing session evicted")
)

// Observable state of a drawing session after an operation.
type SessionSnapshot struct {
	ID            string
	SourceRouteID string
	Points        []domain.RoutePoint
	CanUndo       bool
	CanRedo       bool
	UndoDepth     int
	RedoDepth     int
	CreatedAt     time.Time
	LastActive    time.Time
}

// drawingSession owns one route history. The mutex serializes requests that
// target the same session so every history operation stays atomic.
//
// closed and evicted are set under mu once the session has left the manager's
// map. A request that resolved the session earlier must not touch it after.
type drawingSession struct {
	mu            sync.Mutex
	id            string
	sourceRouteID string
	history       domain.RouteHistory
	createdAt     time.Time
	lastActive    time.Time
	closed        bool
	evicted       bool
}

func (s *drawingSession) snapshot() SessionSnapshot {
	return SessionSnapshot{
		ID:            s.id,
		SourceRouteID: s.sourceRouteID,
		Points:        s.history.Points(),
		CanUndo:       s.history.CanUndo(),
		CanRedo:       s.history.CanRedo(),
		UndoDepth:     s.history.UndoDepth(),
		RedoDepth:     s.history.RedoDepth(),
		CreatedAt:     s.createdAt,
		LastActive:    s.lastActive,
	}
}

// SessionManager hosts in-progress route drawings.
//
// Sessions live in memory. When a DraftStore is configured, the current
// points and source route are written to it after each edit so an evicted or
// lost session can be resumed (without its undo history).
//
// The manager is safe for concurrent use.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*drawingSession

	routes ports.RouteRepository
	drafts ports.DraftStore
	now    func() time.Time
}

// NewSessionManager wires the manager to its ports. drafts may be nil.
func NewSessionManager(routes ports.RouteRepository, drafts ports.DraftStore) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*drawingSession),
		routes:   routes,
		drafts:   drafts,
		now:      time.Now,
	}
}

// CreateSession starts a new drawing. When fromRouteID is non-empty the
// session starts from that route's points, with an empty history.
func (m *SessionManager) CreateSession(ctx context.Context, fromRouteID string) (SessionSnapshot, error) {
	fromRouteID = strings.TrimSpace(fromRouteID)

	var initial []domain.RoutePoint
	if fromRouteID != "" {
		if m.routes == nil {
			return SessionSnapshot{}, errors.New("create session: route repository is nil")
		}
		route, err := m.routes.GetRoute(ctx, fromRouteID)
		if err != nil {
			return SessionSnapshot{}, fmt.Errorf("create session: load route %q: %w", fromRouteID, err)
		}
		initial = route.Points
	}

	now := m.now()
	s := &drawingSession{
		id:            uuid.NewString(),
		sourceRouteID: fromRouteID,
		createdAt:     now,
		lastActive:    now,
	}
	s.history.SetPoints(initial)

	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()

	log.Printf("session created id=%s from_route=%q points=%d", s.id, fromRouteID, len(initial))

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(initial) > 0 {
		m.saveDraft(ctx, s)
	}
	return s.snapshot(), nil
}

// GetSession returns the current state of a session, resuming it from its
// draft when it is no longer held in memory.
func (m *SessionManager) GetSession(ctx context.Context, id string) (SessionSnapshot, error) {
	var snap SessionSnapshot
	err := m.withSession(ctx, id, func(s *drawingSession) {
		snap = s.snapshot()
	})
	if err != nil {
		return SessionSnapshot{}, fmt.Errorf("get session: %w", err)
	}
	return snap, nil
}

func (m *SessionManager) AddPoint(ctx context.Context, id string, p domain.RoutePoint) (SessionSnapshot, error) {
	return m.mutate(ctx, "add point", id, func(h *domain.RouteHistory) { h.AddPoint(p) })
}

func (m *SessionManager) RemoveLastPoint(ctx context.Context, id string) (SessionSnapshot, error) {
	return m.mutate(ctx, "remove last point", id, (*domain.RouteHistory).RemoveLastPoint)
}

func (m *SessionManager) Undo(ctx context.Context, id string) (SessionSnapshot, error) {
	return m.mutate(ctx, "undo", id, (*domain.RouteHistory).Undo)
}

func (m *SessionManager) Redo(ctx context.Context, id string) (SessionSnapshot, error) {
	return m.mutate(ctx, "redo", id, (*domain.RouteHistory).Redo)
}

// SetPoints replaces the session's points without touching its history.
func (m *SessionManager) SetPoints(ctx context.Context, id string, points []domain.RoutePoint) (SessionSnapshot, error) {
	return m.mutate(ctx, "set points", id, func(h *domain.RouteHistory) { h.SetPoints(points) })
}

// Clear drops the session's points and history. It cannot be undone.
func (m *SessionManager) Clear(ctx context.Context, id string) (SessionSnapshot, error) {
	return m.mutate(ctx, "clear", id, (*domain.RouteHistory).ClearHistory)
}

func (m *SessionManager) mutate(
	ctx context.Context,
	op string,
	id string,
	apply func(h *domain.RouteHistory),
) (SessionSnapshot, error) {
	var snap SessionSnapshot
	err := m.withSession(ctx, id, func(s *drawingSession) {
		apply(&s.history)
		s.lastActive = m.now()
		m.saveDraft(ctx, s)
		snap = s.snapshot()
	})
	if err != nil {
		return SessionSnapshot{}, fmt.Errorf("%s: %w", op, err)
	}
	return snap, nil
}

// withSession runs fn with the session locked. A session evicted while the
// caller waited is looked up again, which resumes it from its draft.
func (m *SessionManager) withSession(ctx context.Context, id string, fn func(s *drawingSession)) error {
	for {
		s, err := m.lookup(ctx, id)
		if err != nil {
			return err
		}

		err = s.locked(fn)
		if errors.Is(err, errSessionEvicted) {
			continue
		}
		return err
	}
}

func (s *drawingSession) locked(fn func(s *drawingSession)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("session %s: %w", s.id, ErrSessionNotFound)
	}
	if s.evicted {
		return errSessionEvicted
	}

	fn(s)
	return nil
}

// SaveRoute persists the session's current points as a new route.
// The session stays open so drawing can continue.
func (m *SessionManager) SaveRoute(ctx context.Context, id string, name string) (*domain.Route, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("save route: %w", ErrInvalidName)
	}
	if m.routes == nil {
		return nil, errors.New("save route: route repository is nil")
	}

	var points []domain.RoutePoint
	err := m.withSession(ctx, id, func(s *drawingSession) {
		points = s.history.Points()
		s.lastActive = m.now()
	})
	if err != nil {
		return nil, fmt.Errorf("save route: %w", err)
	}

	if len(points) < 2 {
		return nil, fmt.Errorf("save route: session %s has %d points: %w", id, len(points), ErrRouteTooShort)
	}

	stats := ComputeRouteStats(points)
	route := &domain.Route{
		ID:                  uuid.NewString(),
		Name:                name,
		Points:              points,
		DistanceMeters:      stats.DistanceMeters,
		ElevationGainMeters: stats.ElevationGainMeters,
		ElevationLossMeters: stats.ElevationLossMeters,
		CreatedAt:           m.now().UTC(),
	}

	if err := m.routes.SaveRoute(ctx, route); err != nil {
		return nil, fmt.Errorf("save route: session %s: %w", id, err)
	}

	log.Printf("route saved id=%s session=%s points=%d distance_m=%.0f", route.ID, id, len(points), route.DistanceMeters)
	return route, nil
}

// CloseSession forgets the session and its draft. An id that is neither in
// memory nor in the draft store is reported as ErrSessionNotFound.
func (m *SessionManager) CloseSession(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("close session: %w", ErrSessionNotFound)
	}

	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		// Waits for an in-flight edit, so its draft write lands before the delete.
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
	}

	if m.drafts == nil {
		if !ok {
			return fmt.Errorf("close session: %s: %w", id, ErrSessionNotFound)
		}
		log.Printf("session closed id=%s", id)
		return nil
	}

	if !ok {
		_, found, err := m.drafts.LoadDraft(ctx, id)
		if err != nil {
			return fmt.Errorf("close session %s: load draft: %w", id, err)
		}
		if !found {
			return fmt.Errorf("close session: %s: %w", id, ErrSessionNotFound)
		}
	}

	if err := m.drafts.DeleteDraft(ctx, id); err != nil {
		return fmt.Errorf("close session %s: delete draft: %w", id, err)
	}

	log.Printf("session closed id=%s", id)
	return nil
}

// EvictIdle drops in-memory sessions that have been idle for longer than
// ttl and returns how many were removed. Drafts are kept.
func (m *SessionManager) EvictIdle(ttl time.Duration) int {
	cutoff := m.now().Add(-ttl)

	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	for id, s := range m.sessions {
		s.mu.Lock()
		idle := s.lastActive.Before(cutoff)
		if idle {
			s.evicted = true
		}
		s.mu.Unlock()

		if idle {
			delete(m.sessions, id)
			evicted++
		}
	}

	if evicted > 0 {
		log.Printf("sessions evicted count=%d ttl=%s remaining=%d", evicted, ttl, len(m.sessions))
	}
	return evicted
}

// Count returns the number of sessions held in memory.
func (m *SessionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// lookup returns the in-memory session, falling back to its draft.
func (m *SessionManager) lookup(ctx context.Context, id string) (*drawingSession, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrSessionNotFound
	}

	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		return s, nil
	}

	if m.drafts == nil {
		return nil, fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}

	draft, found, err := m.drafts.LoadDraft(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("session %s: load draft: %w", id, err)
	}
	if !found {
		return nil, fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}

	now := m.now()
	resumed := &drawingSession{
		id:            id,
		sourceRouteID: draft.SourceRouteID,
		createdAt:     now,
		lastActive:    now,
	}
	resumed.history.SetPoints(draft.Points)

	m.mu.Lock()
	defer m.mu.Unlock()
	// Another request may have resumed the same draft first.
	if existing, ok := m.sessions[id]; ok {
		return existing, nil
	}
	m.sessions[id] = resumed

	log.Printf("session resumed from draft id=%s from_route=%q points=%d", id, draft.SourceRouteID, len(draft.Points))
	return resumed, nil
}

// saveDraft writes the current state to the draft store. Failures are
// logged and otherwise ignored. Caller holds s.mu.
func (m *SessionManager) saveDraft(ctx context.Context, s *drawingSession) {
	if m.drafts == nil {
		return
	}

	draft := ports.Draft{SourceRouteID: s.sourceRouteID, Points: s.history.Points()}
	if err := m.drafts.SaveDraft(ctx, s.id, draft); err != nil {
		log.Printf("save draft failed: session=%s err=%v", s.id, err)
	}
}
