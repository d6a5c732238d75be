package store

import (
	"context"
	"sort"
	"sync"
	"time"

	domain "github.com/yungbote/dailylesson-backend/internal/domain/lesson"
)

// MemoryStore is a process-local VariationStore.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]*domain.LessonVariation
	order []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: map[string]*domain.LessonVariation{}}
}

func (s *MemoryStore) Get(_ context.Context, key string) (*domain.LessonVariation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[key]
	if !ok {
		return nil, nil
	}
	return clone(v), nil
}

func (s *MemoryStore) Put(_ context.Context, v *domain.LessonVariation) (*domain.LessonVariation, error) {
	if _, err := domain.ParseKey(v.Key); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.items[v.Key]; ok {
		return clone(existing), nil
	}
	s.items[v.Key] = clone(v)
	s.order = append(s.order, v.Key)
	return clone(v), nil
}

func (s *MemoryStore) UpdateMediaURLs(_ context.Context, key string, audioURL, videoURL *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.items[key]
	if !ok {
		return domain.VariationNotFound(key)
	}
	if audioURL != nil {
		a := *audioURL
		v.AudioURL = &a
	}
	if videoURL != nil {
		u := *videoURL
		v.VideoURL = &u
	}
	return nil
}

// List returns newest first, matching the SQL ordering.
func (s *MemoryStore) List(_ context.Context, f ListFilter) ([]*domain.LessonVariation, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := make([]*domain.LessonVariation, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		v := s.items[s.order[i]]
		if f.LessonID != "" && v.LessonID != f.LessonID {
			continue
		}
		if f.Date != "" && v.Metadata.LessonDate != f.Date {
			continue
		}
		matched = append(matched, v)
	}
	total := int64(len(matched))
	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	start := f.Offset
	if start < 0 {
		start = 0
	}
	if start > len(matched) {
		start = len(matched)
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	out := make([]*domain.LessonVariation, 0, end-start)
	for _, v := range matched[start:end] {
		out = append(out, clone(v))
	}
	return out, total, nil
}

// Keys is for tests and diagnostics.
func (s *MemoryStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := append([]string(nil), s.order...)
	sort.Strings(keys)
	return keys
}

func clone(v *domain.LessonVariation) *domain.LessonVariation {
	if v == nil {
		return nil
	}
	c := *v
	c.Scripts = append([]domain.ScriptSegment(nil), v.Scripts...)
	if v.AudioURL != nil {
		a := *v.AudioURL
		c.AudioURL = &a
	}
	if v.VideoURL != nil {
		u := *v.VideoURL
		c.VideoURL = &u
	}
	return &c
}

// MemoryLocker is a process-local Locker.
type MemoryLocker struct {
	mu   sync.Mutex
	held map[string]memoryHold
	seq  uint64
	now  func() time.Time
}

type memoryHold struct {
	expires time.Time
	token   uint64
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: map[string]memoryHold{}, now: time.Now}
}

type memoryLease struct {
	l     *MemoryLocker
	name  string
	token uint64
}

func (m *memoryLease) Release(context.Context) error {
	m.l.mu.Lock()
	defer m.l.mu.Unlock()
	if h, ok := m.l.held[m.name]; ok && h.token == m.token {
		delete(m.l.held, m.name)
	}
	return nil
}

func (l *MemoryLocker) TryAcquire(_ context.Context, name string, ttl time.Duration) (Lease, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if h, ok := l.held[name]; ok && now.Before(h.expires) {
		return nil, nil
	}
	l.seq++
	l.held[name] = memoryHold{expires: now.Add(ttl), token: l.seq}
	return &memoryLease{l: l, name: name, token: l.seq}, nil
}
