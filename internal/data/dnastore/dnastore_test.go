package dnastore

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	"github.com/yungbote/dailylesson-backend/internal/content"
	lessonrepo "github.com/yungbote/dailylesson-backend/internal/data/repos/lesson"
	"github.com/yungbote/dailylesson-backend/internal/data/repos/testutil"
	domain "github.com/yungbote/dailylesson-backend/internal/domain/lesson"
	"github.com/yungbote/dailylesson-backend/internal/domain/lesson/lessontest"
	"github.com/yungbote/dailylesson-backend/internal/platform/logger"
)

func TestEmbeddedAcousticsDNA(t *testing.T) {
	s, err := NewFileStore(content.DNA, content.DNADir, logger.Nop())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	dna, err := s.Load(context.Background(), "acoustics_july11_192")
	if err != nil || dna == nil {
		t.Fatalf("Load: dna=%v err=%v", dna, err)
	}
	if dna.UniversalConcept != "acoustics" || len(dna.Questions) != 3 || len(dna.AgeExpressions) != 5 {
		t.Fatalf("unexpected dna: %+v", dna)
	}
	if got := dna.AgeExpressions[domain.Youth].ConceptName; got != "The Science of Sound" {
		t.Fatalf("youth concept: got=%q", got)
	}
	if dna.Fortune == nil || !strings.HasPrefix(dna.Fortune.Identity, "You are someone") {
		t.Fatalf("fortune elements not decoded: %+v", dna.Fortune)
	}
	byDay, err := s.ForDay(context.Background(), 192)
	if err != nil || byDay != dna {
		t.Fatalf("ForDay(192): got=%v err=%v", byDay, err)
	}
	if missing, _ := s.Load(context.Background(), "nope"); missing != nil {
		t.Fatalf("unknown lesson should be nil")
	}
}

const minimalYAML = `
lesson_id: %s
universal_concept: c
core_principle: p
learning_essence: e
age_expressions:
  early_childhood: {concept_name: a, core_metaphor: m, complexity_level: beginner, attention_span_seconds: 60}
  youth: {concept_name: a, core_metaphor: m, complexity_level: intermediate, attention_span_seconds: 60}
  young_adult: {concept_name: a, core_metaphor: m, complexity_level: advanced, attention_span_seconds: 60}
  midlife: {concept_name: a, core_metaphor: m, complexity_level: expert, attention_span_seconds: 60}
  %s: {concept_name: a, core_metaphor: m, complexity_level: master, attention_span_seconds: 60}
core_lesson_structure:
%s
`

const threeQuestions = `  - {concept_focus: f, universal_principle: u, option_a: a, option_b: b}
  - {concept_focus: f, universal_principle: u, option_a: a, option_b: b}
  - {concept_focus: f, universal_principle: u, option_a: a, option_b: b}`

func yamlDoc(id, lastCategory, questions string) []byte {
	doc := strings.Replace(minimalYAML, "%s", id, 1)
	doc = strings.Replace(doc, "%s", lastCategory, 1)
	doc = strings.Replace(doc, "%s", questions, 1)
	return []byte(doc)
}

func TestParseValidation(t *testing.T) {
	if _, err := Parse(yamlDoc("ok", "wisdom_years", threeQuestions)); err != nil {
		t.Fatalf("valid doc rejected: %v", err)
	}
	twoQuestions := strings.Join(strings.Split(threeQuestions, "\n")[:2], "\n")
	cases := map[string][]byte{
		"two questions":    yamlDoc("q", "wisdom_years", twoQuestions),
		"unknown category": yamlDoc("c", "teenagers", threeQuestions),
		"separator in id":  yamlDoc("a:b", "wisdom_years", threeQuestions),
		"not yaml":         []byte("lesson_id: [unterminated"),
	}
	for name, raw := range cases {
		_, err := Parse(raw)
		if err == nil {
			t.Fatalf("%s: expected error", name)
		}
		if name != "not yaml" && !errors.Is(err, ErrInvalidDNA) {
			t.Fatalf("%s: expected ErrInvalidDNA, got=%v", name, err)
		}
	}
}

func TestFileStoreRejectsDuplicates(t *testing.T) {
	fsys := fstest.MapFS{
		"dna/a.yaml":   {Data: yamlDoc("same", "wisdom_years", threeQuestions)},
		"dna/b.yml":    {Data: yamlDoc("same", "wisdom_years", threeQuestions)},
		"dna/notes.md": {Data: []byte("ignored")},
	}
	if _, err := NewFileStore(fsys, "dna", logger.Nop()); err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Fatalf("expected duplicate error, got=%v", err)
	}
}

type countingStore struct {
	dna   *domain.LessonDNA
	loads int
}

func (s *countingStore) Load(_ context.Context, id string) (*domain.LessonDNA, error) {
	s.loads++
	if s.dna != nil && s.dna.ID == id {
		return s.dna, nil
	}
	return nil, nil
}

func (s *countingStore) ForDay(_ context.Context, day int) (*domain.LessonDNA, error) {
	s.loads++
	if s.dna != nil && s.dna.DayOfYear == day {
		return s.dna, nil
	}
	return nil, nil
}

func TestCachedStoreExpiresAndSkipsMisses(t *testing.T) {
	ctx := context.Background()
	next := &countingStore{dna: lessontest.DNA("cached")}
	s, err := NewCachedStore(next, 4, time.Minute)
	if err != nil {
		t.Fatalf("NewCachedStore: %v", err)
	}
	now := time.Date(2024, 7, 11, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if dna, _ := s.Load(ctx, "cached"); dna == nil {
			t.Fatalf("Load returned nil")
		}
	}
	if next.loads != 1 {
		t.Fatalf("expected one underlying load, got %d", next.loads)
	}
	_, _ = s.Load(ctx, "missing")
	_, _ = s.Load(ctx, "missing")
	if next.loads != 3 {
		t.Fatalf("misses should not be cached, loads=%d", next.loads)
	}
	now = now.Add(2 * time.Minute)
	_, _ = s.Load(ctx, "cached")
	if next.loads != 4 {
		t.Fatalf("expired entry should reload, loads=%d", next.loads)
	}
	s.Invalidate()
	_, _ = s.ForDay(ctx, 192)
	_, _ = s.ForDay(ctx, 192)
	if next.loads != 5 {
		t.Fatalf("ForDay should cache by day, loads=%d", next.loads)
	}
}

type gatedStore struct {
	dna     *domain.LessonDNA
	started chan struct{}
	release chan struct{}
	loads   atomic.Int32
}

func (s *gatedStore) Load(_ context.Context, id string) (*domain.LessonDNA, error) {
	if s.loads.Add(1) == 1 {
		close(s.started)
	}
	<-s.release
	return s.dna, nil
}

func (s *gatedStore) ForDay(context.Context, int) (*domain.LessonDNA, error) { return nil, nil }

func TestCachedStoreCollapsesConcurrentMisses(t *testing.T) {
	next := &gatedStore{dna: lessontest.DNA("busy"), started: make(chan struct{}), release: make(chan struct{})}
	s, err := NewCachedStore(next, 4, time.Minute)
	if err != nil {
		t.Fatalf("NewCachedStore: %v", err)
	}

	const callers = 16
	var wg sync.WaitGroup
	got := make([]*domain.LessonDNA, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i], _ = s.Load(context.Background(), "busy")
		}(i)
	}
	<-next.started
	time.Sleep(50 * time.Millisecond)
	close(next.release)
	wg.Wait()

	if n := next.loads.Load(); n != 1 {
		t.Fatalf("expected one underlying load for %d callers, got %d", callers, n)
	}
	for i, dna := range got {
		if dna != next.dna {
			t.Fatalf("caller %d got %v", i, dna)
		}
	}
}

func TestChainFallsThrough(t *testing.T) {
	ctx := context.Background()
	first := &countingStore{}
	second := &countingStore{dna: lessontest.DNA("second")}
	c := Chain{first, second}
	dna, err := c.Load(ctx, "second")
	if err != nil || dna == nil || dna.ID != "second" {
		t.Fatalf("Chain.Load: dna=%v err=%v", dna, err)
	}
	if dna, _ := c.ForDay(ctx, 1); dna != nil {
		t.Fatalf("Chain.ForDay should miss")
	}
}

func TestRepoStoreSaveValidates(t *testing.T) {
	db := testutil.SQLite(t)
	s := NewRepoStore(lessonrepo.NewDNARepo(db, logger.Nop()))
	ctx := context.Background()

	bad := lessontest.DNA("bad")
	bad.Questions = bad.Questions[:1]
	if err := s.Save(ctx, bad); !errors.Is(err, ErrInvalidDNA) {
		t.Fatalf("Save invalid: got=%v", err)
	}
	good := lessontest.DNA("good")
	if err := s.Save(ctx, good); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Load(ctx, "good")
	if err != nil || got == nil || got.LearningEssence != good.LearningEssence {
		t.Fatalf("Load: got=%v err=%v", got, err)
	}
	if got, _ := s.ForDay(ctx, good.DayOfYear); got == nil {
		t.Fatalf("ForDay should find saved dna")
	}
}
