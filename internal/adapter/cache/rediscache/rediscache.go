// Package rediscache provides a Redis-backed result cache for deployments
// that run more than one replica.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/logictrix/resume-screener/internal/domain"
)

const (
	prefix = "screener"
	// lockLease bounds how long an abandoned lock can block a key.
	lockLease     = 30 * time.Second
	lockRetryWait = 50 * time.Millisecond
)

// Store implements domain.ResultCache on a Redis client. Records are
// stored as JSON with a TTL; locks are SETNX leases.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// New builds a Store. ttl <= 0 stores entries without expiry.
func New(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

func summaryKey(session, filename string) string {
	return fmt.Sprintf("%s:sum:%s:%s", prefix, session, filename)
}

func matchKey(session, filename, jdHash string) string {
	return fmt.Sprintf("%s:match:%s:%s:%s", prefix, session, filename, jdHash)
}

func lockKey(session, key string) string {
	return fmt.Sprintf("%s:lock:%s:%s", prefix, session, key)
}

func (s *Store) get(ctx domain.Context, key string, out any) error {
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("op=rediscache.get: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("op=rediscache.get unmarshal: %w", err)
	}
	return nil
}

func (s *Store) put(ctx domain.Context, key string, rec any) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("op=rediscache.put marshal: %w", err)
	}
	ttl := s.ttl
	if ttl < 0 {
		ttl = 0
	}
	if err := s.rdb.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("op=rediscache.put: %w", err)
	}
	return nil
}

// GetSummary returns the cached summary or domain.ErrNotFound.
func (s *Store) GetSummary(ctx domain.Context, session, filename string) (domain.ResumeSummary, error) {
	var rec domain.ResumeSummary
	if err := s.get(ctx, summaryKey(session, filename), &rec); err != nil {
		return domain.ResumeSummary{}, err
	}
	return rec, nil
}

// PutSummary stores the summary unconditionally.
func (s *Store) PutSummary(ctx domain.Context, session, filename string, rec domain.ResumeSummary) error {
	return s.put(ctx, summaryKey(session, filename), rec)
}

// GetMatch returns the cached match for (filename, jdHash) or domain.ErrNotFound.
func (s *Store) GetMatch(ctx domain.Context, session, filename, jdHash string) (domain.MatchResult, error) {
	var rec domain.MatchResult
	if err := s.get(ctx, matchKey(session, filename, jdHash), &rec); err != nil {
		return domain.MatchResult{}, err
	}
	return rec, nil
}

// PutMatch stores the match unconditionally.
func (s *Store) PutMatch(ctx domain.Context, session, filename, jdHash string, rec domain.MatchResult) error {
	return s.put(ctx, matchKey(session, filename, jdHash), rec)
}

// Lock acquires a lease on (session, key), polling until the context
// ends. The returned func releases the lease; an abandoned lease lapses
// after lockLease.
func (s *Store) Lock(ctx domain.Context, session, key string) (func(), error) {
	lk := lockKey(session, key)
	for {
		ok, err := s.rdb.SetNX(ctx, lk, 1, lockLease).Result()
		if err != nil {
			return nil, fmt.Errorf("op=rediscache.Lock key=%s: %w", key, err)
		}
		if ok {
			// Release must not inherit the request context: a canceled
			// request would leave the key locked for the full lease.
			return func() {
				relCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				_ = s.rdb.Del(relCtx, lk).Err()
			}, nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("op=rediscache.Lock key=%s: %w", key, ctx.Err())
		case <-time.After(lockRetryWait):
		}
	}
}
