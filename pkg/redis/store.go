package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/batting-order-system/pkg/apperr"
)

const (
	backoffStep = 100 * time.Millisecond
	backoffMax  = 3 * time.Second
)

// Store hands out one dedicated connection per request.
type Store struct {
	client     *redis.Client
	maxRetries int
}

// NewStore creates a store over client. maxRetries bounds the reconnect
// attempts made while acquiring a connection; operations are never retried.
func NewStore(client *redis.Client, maxRetries int) *Store {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Store{client: client, maxRetries: maxRetries}
}

// Acquire takes a connection from the pool and checks it with PING,
// reconnecting with linear backoff. The caller must Release the session.
func (s *Store) Acquire(ctx context.Context) (*Session, error) {
	conn := s.client.Conn()

	err := conn.Ping(ctx).Err()
	for attempt := 1; err != nil && attempt <= s.maxRetries; attempt++ {
		timer := time.NewTimer(backoff(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			conn.Close()
			return nil, apperr.Store("connect", ctx.Err())
		case <-timer.C:
		}
		err = conn.Ping(ctx).Err()
	}
	if err != nil {
		conn.Close()
		return nil, apperr.Store("connect", err)
	}

	return &Session{conn: conn}, nil
}

// WithSession runs fn with a freshly acquired session and releases it on
// every return path.
func (s *Store) WithSession(ctx context.Context, fn func(kv KV) error) error {
	sess, err := s.Acquire(ctx)
	if err != nil {
		return err
	}
	defer sess.Release()

	return fn(sess)
}

// Ping reports whether the server is reachable, for health checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}

func backoff(attempt int) time.Duration {
	d := time.Duration(attempt) * backoffStep
	if d > backoffMax {
		return backoffMax
	}
	return d
}

// KV is the per-request handle repositories read and write through.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Del(ctx context.Context, keys ...string) error
	GetJSON(ctx context.Context, key string, v interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, v interface{}) error
}

var _ KV = (*Session)(nil)

// Session is a connection scoped to a single request.
type Session struct {
	conn *redis.Conn
}

// Get returns the value at key. found is false when the key does not exist.
func (s *Session) Get(ctx context.Context, key string) (value string, found bool, err error) {
	value, err = s.conn.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, apperr.Store("get "+key, err)
	}
	return value, true, nil
}

func (s *Session) Set(ctx context.Context, key, value string) error {
	if err := s.conn.Set(ctx, key, value, 0).Err(); err != nil {
		return apperr.Store("set "+key, err)
	}
	return nil
}

func (s *Session) Del(ctx context.Context, keys ...string) error {
	if err := s.conn.Del(ctx, keys...).Err(); err != nil {
		return apperr.Store("del", err)
	}
	return nil
}

// GetJSON decodes the value at key into v. found is false when the key is absent.
func (s *Session) GetJSON(ctx context.Context, key string, v interface{}) (found bool, err error) {
	raw, found, err := s.Get(ctx, key)
	if err != nil || !found {
		return found, err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return true, apperr.Store("decode "+key, err)
	}
	return true, nil
}

func (s *Session) SetJSON(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return apperr.Store("encode "+key, err)
	}
	return s.Set(ctx, key, string(data))
}

// Release returns the connection to the pool. Safe to call more than once.
func (s *Session) Release() error {
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}
