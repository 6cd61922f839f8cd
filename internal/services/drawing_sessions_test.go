package services

import (
	"context"
	"errors"
	"reflect"
	"route-draw-service/internal/adapters/cache"
	"route-draw-service/internal/domain"
	"route-draw-service/internal/ports"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type memoryRouteRepository struct {
	mu     sync.Mutex
	routes map[string]*domain.Route
}

func newMemoryRouteRepository(routes ...*domain.Route) *memoryRouteRepository {
	r := &memoryRouteRepository{routes: make(map[string]*domain.Route)}
	for _, route := range routes {
		r.routes[route.ID] = route
	}
	return r
}

func (r *memoryRouteRepository) SaveRoute(ctx context.Context, route *domain.Route) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes[route.ID] = route
	return nil
}

func (r *memoryRouteRepository) GetRoute(ctx context.Context, id string) (*domain.Route, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	route, ok := r.routes[id]
	if !ok {
		return nil, domain.ErrRouteNotFound
	}
	return route, nil
}

func (r *memoryRouteRepository) ListRoutes(ctx context.Context) ([]*domain.Route, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Route, 0, len(r.routes))
	for _, route := range r.routes {
		out = append(out, route)
	}
	return out, nil
}

func newRedisDrafts(t *testing.T) (*cache.RedisDraftStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewRedisDraftStore(client, time.Hour), mr
}

func TestSessionManagerHistoryOperations(t *testing.T) {
	ctx := context.Background()
	m := NewSessionManager(newMemoryRouteRepository(), nil)

	s, err := m.CreateSession(ctx, "")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if len(s.Points) != 0 || s.CanUndo || s.CanRedo {
		t.Fatalf("new session not empty: %+v", s)
	}

	if _, err := m.AddPoint(ctx, s.ID, domain.RoutePoint{Lat: 1, Lng: 1}); err != nil {
		t.Fatalf("add point: %v", err)
	}
	s, err = m.AddPoint(ctx, s.ID, domain.RoutePoint{Lat: 2, Lng: 2})
	if err != nil {
		t.Fatalf("add point: %v", err)
	}
	if len(s.Points) != 2 || !s.CanUndo || s.CanRedo {
		t.Fatalf("after adds: %+v", s)
	}

	s, _ = m.Undo(ctx, s.ID)
	if len(s.Points) != 1 || !s.CanRedo {
		t.Fatalf("after undo: %+v", s)
	}

	s, _ = m.Redo(ctx, s.ID)
	if len(s.Points) != 2 || s.CanRedo {
		t.Fatalf("after redo: %+v", s)
	}

	s, _ = m.RemoveLastPoint(ctx, s.ID)
	if len(s.Points) != 1 || s.UndoDepth != 3 {
		t.Fatalf("after remove: %+v", s)
	}

	s, _ = m.SetPoints(ctx, s.ID, []domain.RoutePoint{{Lat: 5, Lng: 5}, {Lat: 6, Lng: 6}, {Lat: 7, Lng: 7}})
	if len(s.Points) != 3 || s.UndoDepth != 3 {
		t.Fatalf("after set points: %+v", s)
	}

	s, _ = m.Clear(ctx, s.ID)
	if len(s.Points) != 0 || s.CanUndo || s.CanRedo {
		t.Fatalf("after clear: %+v", s)
	}
}

func TestSessionManagerUnknownSession(t *testing.T) {
	ctx := context.Background()
	m := NewSessionManager(newMemoryRouteRepository(), nil)

	if _, err := m.Undo(ctx, "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("undo err = %v, want ErrSessionNotFound", err)
	}
	if _, err := m.GetSession(ctx, ""); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("get err = %v, want ErrSessionNotFound", err)
	}
	if err := m.CloseSession(ctx, "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("close err = %v, want ErrSessionNotFound", err)
	}
}

func TestSessionManagerUnknownSessionWithDrafts(t *testing.T) {
	ctx := context.Background()
	drafts, _ := newRedisDrafts(t)
	m := NewSessionManager(newMemoryRouteRepository(), drafts)

	if err := m.CloseSession(ctx, "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("close err = %v, want ErrSessionNotFound", err)
	}
	if _, err := m.Redo(ctx, "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("redo err = %v, want ErrSessionNotFound", err)
	}

	s, _ := m.CreateSession(ctx, "")
	if err := m.CloseSession(ctx, s.ID); err != nil {
		t.Fatalf("close session: %v", err)
	}
	if err := m.CloseSession(ctx, s.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("second close err = %v, want ErrSessionNotFound", err)
	}
}

func TestSessionManagerCloseDraftOnlySession(t *testing.T) {
	ctx := context.Background()
	drafts, _ := newRedisDrafts(t)
	m := NewSessionManager(newMemoryRouteRepository(), drafts)

	draft := ports.Draft{Points: []domain.RoutePoint{{Lat: 1, Lng: 1}}}
	if err := drafts.SaveDraft(ctx, "from-another-instance", draft); err != nil {
		t.Fatalf("save draft: %v", err)
	}

	if err := m.CloseSession(ctx, "from-another-instance"); err != nil {
		t.Fatalf("close session: %v", err)
	}
	if _, found, _ := drafts.LoadDraft(ctx, "from-another-instance"); found {
		t.Fatal("draft still present after close")
	}
}

func TestSessionManagerEditAfterCloseIsRejected(t *testing.T) {
	ctx := context.Background()
	drafts, _ := newRedisDrafts(t)
	m := NewSessionManager(newMemoryRouteRepository(), drafts)

	snap, _ := m.CreateSession(ctx, "")
	_, _ = m.AddPoint(ctx, snap.ID, domain.RoutePoint{Lat: 1, Lng: 1})

	// A request resolves the session, then a close wins the race for its lock.
	held, err := m.lookup(ctx, snap.ID)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if err := m.CloseSession(ctx, snap.ID); err != nil {
		t.Fatalf("close session: %v", err)
	}

	err = held.locked(func(s *drawingSession) {
		s.history.AddPoint(domain.RoutePoint{Lat: 2, Lng: 2})
		m.saveDraft(ctx, s)
	})
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("err = %v, want ErrSessionNotFound", err)
	}
	if held.history.Len() != 1 {
		t.Fatalf("closed session was edited: %d points", held.history.Len())
	}
	if _, found, _ := drafts.LoadDraft(ctx, snap.ID); found {
		t.Fatal("closed session wrote a draft")
	}
	if _, err := m.GetSession(ctx, snap.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("get err = %v, want ErrSessionNotFound", err)
	}
}

func TestSessionManagerEditAfterEvictionResumes(t *testing.T) {
	ctx := context.Background()
	drafts, _ := newRedisDrafts(t)
	m := NewSessionManager(newMemoryRouteRepository(), drafts)

	snap, _ := m.CreateSession(ctx, "")
	_, _ = m.AddPoint(ctx, snap.ID, domain.RoutePoint{Lat: 1, Lng: 1})

	held, _ := m.lookup(ctx, snap.ID)
	m.now = func() time.Time { return time.Now().Add(time.Hour) }
	if n := m.EvictIdle(time.Minute); n != 1 {
		t.Fatalf("evicted = %d, want 1", n)
	}

	if err := held.locked(func(*drawingSession) {}); !errors.Is(err, errSessionEvicted) {
		t.Fatalf("err = %v, want errSessionEvicted", err)
	}

	got, err := m.AddPoint(ctx, snap.ID, domain.RoutePoint{Lat: 2, Lng: 2})
	if err != nil {
		t.Fatalf("add point after eviction: %v", err)
	}
	if len(got.Points) != 2 {
		t.Fatalf("points = %d, want 2", len(got.Points))
	}
	if m.Count() != 1 {
		t.Fatalf("count = %d, want 1", m.Count())
	}
}

func TestSessionManagerCreateFromRoute(t *testing.T) {
	ctx := context.Background()
	route := &domain.Route{
		ID:     "r1",
		Name:   "Col du Galibier",
		Points: []domain.RoutePoint{{Lat: 45.06, Lng: 6.40}, {Lat: 45.08, Lng: 6.42}},
	}
	m := NewSessionManager(newMemoryRouteRepository(route), nil)

	s, err := m.CreateSession(ctx, "r1")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if !reflect.DeepEqual(s.Points, route.Points) {
		t.Fatalf("points = %+v, want %+v", s.Points, route.Points)
	}
	if s.CanUndo {
		t.Fatal("loading a route must not record history")
	}
	if s.SourceRouteID != "r1" {
		t.Fatalf("source route = %q, want r1", s.SourceRouteID)
	}

	if _, err := m.CreateSession(ctx, "nope"); !errors.Is(err, domain.ErrRouteNotFound) {
		t.Fatalf("err = %v, want ErrRouteNotFound", err)
	}
}

func TestSessionManagerSaveRoute(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRouteRepository()
	m := NewSessionManager(repo, nil)

	s, _ := m.CreateSession(ctx, "")
	_, _ = m.AddPoint(ctx, s.ID, domain.RoutePoint{Lat: 0, Lng: 0, Elevation: elev(10)})

	if _, err := m.SaveRoute(ctx, s.ID, "short"); !errors.Is(err, ErrRouteTooShort) {
		t.Fatalf("err = %v, want ErrRouteTooShort", err)
	}

	_, _ = m.AddPoint(ctx, s.ID, domain.RoutePoint{Lat: 0.01, Lng: 0, Elevation: elev(60)})

	if _, err := m.SaveRoute(ctx, s.ID, "  "); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("err = %v, want ErrInvalidName", err)
	}

	route, err := m.SaveRoute(ctx, s.ID, "Morning loop")
	if err != nil {
		t.Fatalf("save route: %v", err)
	}
	if route.ID == "" || route.Name != "Morning loop" {
		t.Fatalf("unexpected route: %+v", route)
	}
	if route.ElevationGainMeters != 50 {
		t.Fatalf("gain = %v, want 50", route.ElevationGainMeters)
	}
	if route.DistanceMeters < 1000 || route.DistanceMeters > 1200 {
		t.Fatalf("distance = %v, want ~1113", route.DistanceMeters)
	}

	stored, err := repo.GetRoute(ctx, route.ID)
	if err != nil {
		t.Fatalf("stored route: %v", err)
	}
	if len(stored.Points) != 2 {
		t.Fatalf("stored points = %d, want 2", len(stored.Points))
	}
}

func TestSessionManagerWritesDraftsAndResumes(t *testing.T) {
	ctx := context.Background()
	drafts, _ := newRedisDrafts(t)
	m := NewSessionManager(newMemoryRouteRepository(), drafts)

	s, _ := m.CreateSession(ctx, "")
	_, _ = m.AddPoint(ctx, s.ID, domain.RoutePoint{Lat: 1, Lng: 1})
	_, _ = m.AddPoint(ctx, s.ID, domain.RoutePoint{Lat: 2, Lng: 2})
	_, _ = m.Undo(ctx, s.ID)

	draft, found, err := drafts.LoadDraft(ctx, s.ID)
	if err != nil || !found {
		t.Fatalf("load draft: found=%v err=%v", found, err)
	}
	if len(draft.Points) != 1 {
		t.Fatalf("draft points = %d, want 1", len(draft.Points))
	}

	// Simulate the session falling out of memory.
	m.now = func() time.Time { return time.Now().Add(time.Hour) }
	if n := m.EvictIdle(time.Minute); n != 1 {
		t.Fatalf("evicted = %d, want 1", n)
	}

	resumed, err := m.GetSession(ctx, s.ID)
	if err != nil {
		t.Fatalf("resume session: %v", err)
	}
	if len(resumed.Points) != 1 || resumed.CanUndo || resumed.CanRedo {
		t.Fatalf("resumed session: %+v", resumed)
	}

	if err := m.CloseSession(ctx, s.ID); err != nil {
		t.Fatalf("close session: %v", err)
	}
	if _, err := m.GetSession(ctx, s.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("err = %v, want ErrSessionNotFound after close", err)
	}
}

func TestSessionManagerResumeKeepsSourceRoute(t *testing.T) {
	ctx := context.Background()
	route := &domain.Route{
		ID:     "r1",
		Name:   "Col du Galibier",
		Points: []domain.RoutePoint{{Lat: 45.06, Lng: 6.40}, {Lat: 45.08, Lng: 6.42}},
	}
	drafts, _ := newRedisDrafts(t)
	m := NewSessionManager(newMemoryRouteRepository(route), drafts)

	s, _ := m.CreateSession(ctx, "r1")
	_, _ = m.AddPoint(ctx, s.ID, domain.RoutePoint{Lat: 45.09, Lng: 6.43})

	m.now = func() time.Time { return time.Now().Add(time.Hour) }
	m.EvictIdle(time.Minute)

	resumed, err := m.GetSession(ctx, s.ID)
	if err != nil {
		t.Fatalf("resume session: %v", err)
	}
	if resumed.SourceRouteID != "r1" {
		t.Fatalf("source route = %q, want r1", resumed.SourceRouteID)
	}
	if len(resumed.Points) != 3 {
		t.Fatalf("points = %d, want 3", len(resumed.Points))
	}
}

func TestSessionManagerEvictIdleKeepsActiveSessions(t *testing.T) {
	ctx := context.Background()
	m := NewSessionManager(newMemoryRouteRepository(), nil)

	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return base }
	idle, _ := m.CreateSession(ctx, "")
	active, _ := m.CreateSession(ctx, "")

	m.now = func() time.Time { return base.Add(20 * time.Minute) }
	_, _ = m.AddPoint(ctx, active.ID, domain.RoutePoint{Lat: 1, Lng: 1})

	m.now = func() time.Time { return base.Add(40 * time.Minute) }
	if n := m.EvictIdle(30 * time.Minute); n != 1 {
		t.Fatalf("evicted = %d, want 1", n)
	}
	if m.Count() != 1 {
		t.Fatalf("count = %d, want 1", m.Count())
	}
	if _, err := m.GetSession(ctx, idle.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("idle session err = %v, want ErrSessionNotFound", err)
	}
	if _, err := m.GetSession(ctx, active.ID); err != nil {
		t.Fatalf("active session: %v", err)
	}
}

func TestSessionManagerConcurrentAdds(t *testing.T) {
	ctx := context.Background()
	m := NewSessionManager(newMemoryRouteRepository(), nil)
	s, _ := m.CreateSession(ctx, "")

	const n = 64
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = m.AddPoint(ctx, s.ID, domain.RoutePoint{Lat: float64(i), Lng: float64(i)})
		}(i)
	}
	wg.Wait()

	got, _ := m.GetSession(ctx, s.ID)
	if len(got.Points) != n || got.UndoDepth != n {
		t.Fatalf("points=%d undo=%d, want %d/%d", len(got.Points), got.UndoDepth, n, n)
	}
}
