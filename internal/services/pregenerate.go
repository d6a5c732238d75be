package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	domain "github.com/yungbote/dailylesson-backend/internal/domain/lesson"
	"github.com/yungbote/dailylesson-backend/internal/platform/logger"
)

var (
	DefaultPregenAges      = []int{5, 12, 25, 45, 75}
	DefaultPregenTones     = []string{"fun", "grandmother", "neutral"}
	DefaultPregenLanguages = []string{"english", "spanish", "french", "german", "chinese"}
)

type PregenerateRequest struct {
	// LessonIDs are resolved for every date. When empty each date resolves
	// the lesson scheduled for its day of year.
	LessonIDs   []string
	Dates       []string
	Ages        []int
	Tones       []string
	Languages   []string
	Concurrency int
}

type PregenerateReport struct {
	Total     int
	Generated int
	Existing  int
	NoLesson  int
	Failed    int
	Failures  map[string]string
}

type Pregenerator struct {
	resolver LessonResolver
	log      *logger.Logger
}

func NewPregenerator(resolver LessonResolver, baseLog *logger.Logger) *Pregenerator {
	return &Pregenerator{resolver: resolver, log: baseLog.With("service", "Pregenerator")}
}

// Run resolves every combination. Individual failures are counted, not
// returned; the error is only ctx's.
func (p *Pregenerator) Run(ctx context.Context, req PregenerateRequest) (PregenerateReport, error) {
	if len(req.Ages) == 0 {
		req.Ages = DefaultPregenAges
	}
	if len(req.Tones) == 0 {
		req.Tones = DefaultPregenTones
	}
	if len(req.Languages) == 0 {
		req.Languages = DefaultPregenLanguages
	}
	if req.Concurrency <= 0 {
		req.Concurrency = 4
	}
	lessons := req.LessonIDs
	if len(lessons) == 0 {
		lessons = []string{""}
	}

	var (
		mu     sync.Mutex
		report = PregenerateReport{Failures: map[string]string{}}
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(req.Concurrency)

	for _, lessonID := range lessons {
		for _, date := range req.Dates {
			for _, age := range req.Ages {
				for _, tone := range req.Tones {
					for _, lang := range req.Languages {
						rr := ResolveRequest{LessonID: lessonID, Date: date, Age: age, Tone: tone, Language: lang}
						if gctx.Err() != nil {
							break
						}
						g.Go(func() error {
							var (
								res *Resolution
								err error
							)
							if rr.LessonID == "" {
								res, err = p.resolver.ResolveDaily(gctx, rr)
							} else {
								res, err = p.resolver.Resolve(gctx, rr)
							}
							mu.Lock()
							defer mu.Unlock()
							report.Total++
							switch {
							case err == nil && res.CacheHit:
								report.Existing++
							case err == nil:
								report.Generated++
							case rr.LessonID == "" && errors.Is(err, domain.ErrNotFound):
								report.NoLesson++
							default:
								report.Failed++
								report.Failures[describe(rr)] = err.Error()
								p.log.Warn("Pregeneration failed", "lesson_id", rr.LessonID, "date", rr.Date, "age", rr.Age, "tone", rr.Tone, "language", rr.Language, "error", err)
							}
							return nil
						})
					}
				}
			}
		}
	}
	_ = g.Wait()
	p.log.Info("Pregeneration finished", "total", report.Total, "generated", report.Generated, "existing", report.Existing, "no_lesson", report.NoLesson, "failed", report.Failed)
	return report, ctx.Err()
}

func describe(r ResolveRequest) string {
	id := r.LessonID
	if id == "" {
		id = "daily"
	}
	return fmt.Sprintf("%s@%s/%d/%s/%s", id, r.Date, r.Age, r.Tone, r.Language)
}
