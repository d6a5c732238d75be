package dnastore

import (
	"context"
	"strconv"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	domain "github.com/yungbote/dailylesson-backend/internal/domain/lesson"
)

const (
	defaultCacheSize = 128
	defaultCacheTTL  = 5 * time.Minute
)

type cacheEntry struct {
	dna      *domain.LessonDNA
	storedAt time.Time
}

// CachedStore memoizes hits from an underlying Store for a bounded time.
// Misses are not cached so newly authored DNA becomes visible immediately.
// Concurrent misses for one key share a single load.
type CachedStore struct {
	next  Store
	cache *lru.Cache[string, cacheEntry]
	group singleflight.Group
	ttl   time.Duration
	now   func() time.Time
}

func NewCachedStore(next Store, size int, ttl time.Duration) (*CachedStore, error) {
	if size <= 0 {
		size = defaultCacheSize
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	cache, err := lru.New[string, cacheEntry](size)
	if err != nil {
		return nil, err
	}
	return &CachedStore{next: next, cache: cache, ttl: ttl, now: time.Now}, nil
}

func (s *CachedStore) Load(ctx context.Context, lessonID string) (*domain.LessonDNA, error) {
	return s.lookup("id:"+lessonID, func() (*domain.LessonDNA, error) {
		return s.next.Load(ctx, lessonID)
	})
}

func (s *CachedStore) ForDay(ctx context.Context, dayOfYear int) (*domain.LessonDNA, error) {
	return s.lookup("day:"+strconv.Itoa(dayOfYear), func() (*domain.LessonDNA, error) {
		return s.next.ForDay(ctx, dayOfYear)
	})
}

// Invalidate drops everything so a CMS write is seen on the next read.
func (s *CachedStore) Invalidate() {
	s.cache.Purge()
}

func (s *CachedStore) lookup(key string, load func() (*domain.LessonDNA, error)) (*domain.LessonDNA, error) {
	if entry, ok := s.cache.Get(key); ok {
		if s.now().Sub(entry.storedAt) < s.ttl {
			return entry.dna, nil
		}
		s.cache.Remove(key)
	}
	v, err, _ := s.group.Do(key, func() (any, error) {
		dna, err := load()
		if err != nil || dna == nil {
			return dna, err
		}
		s.cache.Add(key, cacheEntry{dna: dna, storedAt: s.now()})
		return dna, nil
	})
	dna, _ := v.(*domain.LessonDNA)
	return dna, err
}
