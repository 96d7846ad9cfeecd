// Package memory provides an in-process result cache partitioned by session.
package memory

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/logictrix/resume-screener/internal/domain"
)

type entry[T any] struct {
	rec       T
	expiresAt time.Time
	touchedAt time.Time
}

type bucket struct {
	summaries map[string]entry[domain.ResumeSummary]
	matches   map[string]entry[domain.MatchResult]
}

// keyLock is a one-slot channel with a reference count so the locks map
// can drop entries nobody holds or waits on.
type keyLock struct {
	ch   chan struct{}
	refs int
}

// Store keeps summaries and matches per session with TTL expiry and a
// per-session size bound. Eviction drops the least recently touched
// entries first.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*bucket
	locks    map[string]*keyLock
	ttl      time.Duration
	maxPer   int
	now      func() time.Time
}

// New builds a Store. ttl <= 0 means entries never expire; maxPerSession
// <= 0 means unbounded.
func New(ttl time.Duration, maxPerSession int) *Store {
	return &Store{
		sessions: make(map[string]*bucket),
		locks:    make(map[string]*keyLock),
		ttl:      ttl,
		maxPer:   maxPerSession,
		now:      time.Now,
	}
}

func (s *Store) bucketFor(session string) *bucket {
	b, ok := s.sessions[session]
	if !ok {
		b = &bucket{
			summaries: make(map[string]entry[domain.ResumeSummary]),
			matches:   make(map[string]entry[domain.MatchResult]),
		}
		s.sessions[session] = b
	}
	return b
}

func matchKey(filename, jdHash string) string { return filename + "\x00" + jdHash }

// GetSummary returns the cached summary or domain.ErrNotFound.
func (s *Store) GetSummary(ctx domain.Context, session, filename string) (domain.ResumeSummary, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.sessions[session]
	if !ok {
		return domain.ResumeSummary{}, domain.ErrNotFound
	}
	e, ok := b.summaries[filename]
	if !ok || s.expired(e.expiresAt) {
		delete(b.summaries, filename)
		return domain.ResumeSummary{}, domain.ErrNotFound
	}
	e.touchedAt = s.now()
	b.summaries[filename] = e
	return e.rec, nil
}

// PutSummary stores the summary unconditionally.
func (s *Store) PutSummary(ctx domain.Context, session, filename string, rec domain.ResumeSummary) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.bucketFor(session)
	now := s.now()
	b.summaries[filename] = entry[domain.ResumeSummary]{rec: rec, expiresAt: s.deadline(now), touchedAt: now}
	s.evict(b)
	return nil
}

// GetMatch returns the cached match for (filename, jdHash) or domain.ErrNotFound.
func (s *Store) GetMatch(ctx domain.Context, session, filename, jdHash string) (domain.MatchResult, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.sessions[session]
	if !ok {
		return domain.MatchResult{}, domain.ErrNotFound
	}
	k := matchKey(filename, jdHash)
	e, ok := b.matches[k]
	if !ok || s.expired(e.expiresAt) {
		delete(b.matches, k)
		return domain.MatchResult{}, domain.ErrNotFound
	}
	e.touchedAt = s.now()
	b.matches[k] = e
	return e.rec, nil
}

// PutMatch stores the match unconditionally.
func (s *Store) PutMatch(ctx domain.Context, session, filename, jdHash string, rec domain.MatchResult) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.bucketFor(session)
	now := s.now()
	b.matches[matchKey(filename, jdHash)] = entry[domain.MatchResult]{rec: rec, expiresAt: s.deadline(now), touchedAt: now}
	s.evict(b)
	return nil
}

// Lock serializes work on one key within a session. The returned func
// releases the lock; callers must invoke it exactly once.
func (s *Store) Lock(ctx domain.Context, session, key string) (func(), error) {
	lk := session + "\x00" + key
	s.mu.Lock()
	l, ok := s.locks[lk]
	if !ok {
		l = &keyLock{ch: make(chan struct{}, 1)}
		s.locks[lk] = l
	}
	l.refs++
	s.mu.Unlock()

	select {
	case l.ch <- struct{}{}:
		return func() {
			<-l.ch
			s.unref(lk, l)
		}, nil
	case <-ctx.Done():
		s.unref(lk, l)
		return nil, fmt.Errorf("op=memory.Lock key=%s: %w", key, ctx.Err())
	}
}

// unref drops one reference and removes the map entry once no holder or
// waiter remains, keeping the locks map bounded by live contention.
func (s *Store) unref(lk string, l *keyLock) {
	s.mu.Lock()
	l.refs--
	if l.refs == 0 {
		delete(s.locks, lk)
	}
	s.mu.Unlock()
}

func (s *Store) deadline(now time.Time) time.Time {
	if s.ttl <= 0 {
		return time.Time{}
	}
	return now.Add(s.ttl)
}

func (s *Store) expired(at time.Time) bool {
	return !at.IsZero() && s.now().After(at)
}

// evict trims the bucket down to maxPer entries across both maps,
// dropping the stalest first. Caller holds s.mu.
func (s *Store) evict(b *bucket) {
	if s.maxPer <= 0 {
		return
	}
	total := len(b.summaries) + len(b.matches)
	if total <= s.maxPer {
		return
	}
	type victim struct {
		key     string
		summary bool
		touched time.Time
	}
	all := make([]victim, 0, total)
	for k, e := range b.summaries {
		all = append(all, victim{key: k, summary: true, touched: e.touchedAt})
	}
	for k, e := range b.matches {
		all = append(all, victim{key: k, touched: e.touchedAt})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].touched.Before(all[j].touched) })
	for _, v := range all[:total-s.maxPer] {
		if v.summary {
			delete(b.summaries, v.key)
		} else {
			delete(b.matches, v.key)
		}
	}
}
