package form

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dentaldesk/dentaldesk/internal/shared"
)

const submitLockTTL = 30 * time.Second

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Store persists drafts between requests, one key per session and form.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore builds a draft store. ttl bounds how long an abandoned draft lives.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

// Load fetches a draft. The boolean is false when none is stored.
func Load[T Record[T]](ctx context.Context, s *Store, sessionID, formKey string) (*Draft[T], bool, error) {
	raw, err := s.client.Get(ctx, shared.DraftKey(sessionID, formKey)).Bytes()
	if errors.Is(err, redis.Nil) {
		return New[T](), false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load draft: %w", err)
	}
	draft := New[T]()
	if err := json.Unmarshal(raw, draft); err != nil {
		// A draft from an older layout is discarded rather than surfaced.
		return New[T](), false, nil
	}
	return draft, true, nil
}

// Save writes the draft back and refreshes its TTL.
func Save[T Record[T]](ctx context.Context, s *Store, sessionID, formKey string, d *Draft[T]) error {
	payload, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	if err := s.client.Set(ctx, shared.DraftKey(sessionID, formKey), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

// Discard removes a stored draft.
func (s *Store) Discard(ctx context.Context, sessionID, formKey string) error {
	return s.client.Del(ctx, shared.DraftKey(sessionID, formKey)).Err()
}

// Lock takes the submit lock for one form of one session. It returns
// ErrSubmitInProgress while another submission holds it.
func (s *Store) Lock(ctx context.Context, sessionID, formKey string) (func(), error) {
	key := shared.SubmitLockKey(sessionID, formKey)
	token := uuid.NewString()
	ok, err := s.client.SetNX(ctx, key, token, submitLockTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire submit lock: %w", err)
	}
	if !ok {
		return nil, ErrSubmitInProgress
	}
	release := func() {
		_ = releaseScript.Run(context.Background(), s.client, []string{key}, token).Err()
	}
	return release, nil
}
