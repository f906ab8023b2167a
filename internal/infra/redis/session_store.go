package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"english-quiz-service/internal/app"
	"english-quiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

const maxUpdateAttempts = 5

// getter is satisfied by both *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// SessionStore keeps sessions as JSON under quiz:session:{identity}.
// Updates use WATCH/MULTI so concurrent submissions for one identity cannot
// both advance from the same position; a losing writer re-reads and retries.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionStore creates a store; ttl <= 0 keeps sessions until overwritten.
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) Put(ctx context.Context, session *app.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return s.client.Set(ctx, s.key(session.Identity), data, s.expiration()).Err()
}

// Restore writes session with SETNX so a session started in the meantime wins.
func (s *SessionStore) Restore(ctx context.Context, session *app.Session) (bool, error) {
	data, err := json.Marshal(session)
	if err != nil {
		return false, fmt.Errorf("marshal session: %w", err)
	}
	ok, err := s.client.SetNX(ctx, s.key(session.Identity), data, s.expiration()).Result()
	if err != nil {
		return false, fmt.Errorf("restore session: %w", err)
	}
	return ok, nil
}

func (s *SessionStore) Get(ctx context.Context, identity string) (*app.Session, error) {
	return s.read(ctx, s.client, identity)
}

func (s *SessionStore) Remove(ctx context.Context, identity string) error {
	return s.client.Del(ctx, s.key(identity)).Err()
}

func (s *SessionStore) Update(ctx context.Context, identity string, fn func(*app.Session) (bool, error)) error {
	key := s.key(identity)
	txf := func(tx *redis.Tx) error {
		session, err := s.read(ctx, tx, identity)
		if err != nil {
			return err
		}
		keep, err := fn(session)
		if err != nil {
			return err
		}

		var data []byte
		if keep {
			if data, err = json.Marshal(session); err != nil {
				return fmt.Errorf("marshal session: %w", err)
			}
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if keep {
				pipe.Set(ctx, key, data, redis.KeepTTL)
			} else {
				pipe.Del(ctx, key)
			}
			return nil
		})
		return err
	}

	for i := 0; i < maxUpdateAttempts; i++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return domain.ErrSessionBusy
}

func (s *SessionStore) read(ctx context.Context, c getter, identity string) (*app.Session, error) {
	data, err := c.Get(ctx, s.key(identity)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNoActiveSession
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	var session app.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &session, nil
}

func (s *SessionStore) expiration() time.Duration {
	if s.ttl <= 0 {
		return 0
	}
	return s.ttl
}

func (s *SessionStore) key(identity string) string {
	return "quiz:session:" + identity
}
