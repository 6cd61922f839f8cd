package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"route-draw-service/internal/domain"
	"route-draw-service/internal/platform/obs"
	"route-draw-service/internal/ports"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const draftKeyPrefix = "draft:"

// RedisDraftStore caches the in-progress points of drawing sessions in Redis.
// Each save refreshes the draft's TTL, so abandoned drafts expire on their own.
type RedisDraftStore struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisDraftStore(client *redis.Client, ttl time.Duration) *RedisDraftStore {
	return &RedisDraftStore{Client: client, TTL: ttl}
}

func draftKey(sessionID string) string {
	return draftKeyPrefix + sessionID
}

// Store the current state of a session, replacing any previous draft.
func (s *RedisDraftStore) SaveDraft(
	ctx context.Context,
	sessionID string,
	draft ports.Draft,
) (err error) {
	defer obs.Time(ctx, "draft.cache.Save")(&err)

	if s.Client == nil {
		return errors.New("draft cache: client is nil")
	}

	if strings.TrimSpace(sessionID) == "" {
		return errors.New("save draft: session id must not be empty")
	}

	if draft.Points == nil {
		draft.Points = []domain.RoutePoint{}
	}

	payload, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("save draft: encode draft: %w", err)
	}

	if err := s.Client.Set(ctx, draftKey(sessionID), payload, s.TTL).Err(); err != nil {
		return fmt.Errorf("save draft session=%q: %w", sessionID, err)
	}

	return nil
}

// Fetch the cached draft of a session.
func (s *RedisDraftStore) LoadDraft(
	ctx context.Context,
	sessionID string,
) (_ ports.Draft, _ bool, err error) {
	defer obs.Time(ctx, "draft.cache.Load")(&err)

	if s.Client == nil {
		return ports.Draft{}, false, errors.New("draft cache: client is nil")
	}

	if strings.TrimSpace(sessionID) == "" {
		return ports.Draft{}, false, nil
	}

	payload, err := s.Client.Get(ctx, draftKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ports.Draft{}, false, nil
	}
	if err != nil {
		return ports.Draft{}, false, fmt.Errorf("load draft session=%q: %w", sessionID, err)
	}

	var draft ports.Draft
	if err := json.Unmarshal(payload, &draft); err != nil {
		return ports.Draft{}, false, fmt.Errorf("load draft session=%q: decode draft: %w", sessionID, err)
	}

	return draft, true, nil
}

// Remove a session's draft. Deleting a missing draft is not an error.
func (s *RedisDraftStore) DeleteDraft(ctx context.Context, sessionID string) error {
	if s.Client == nil {
		return errors.New("draft cache: client is nil")
	}

	if err := s.Client.Del(ctx, draftKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("delete draft session=%q: %w", sessionID, err)
	}

	return nil
}
