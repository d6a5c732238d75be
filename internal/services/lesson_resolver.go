package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/yungbote/dailylesson-backend/internal/data/dnastore"
	"github.com/yungbote/dailylesson-backend/internal/data/store"
	domain "github.com/yungbote/dailylesson-backend/internal/domain/lesson"
	lessonmod "github.com/yungbote/dailylesson-backend/internal/modules/lesson"
	"github.com/yungbote/dailylesson-backend/internal/observability"
	"github.com/yungbote/dailylesson-backend/internal/platform/logger"
)

type Synthesizer interface {
	Synthesize(dna *domain.LessonDNA, in lessonmod.Input) (*domain.LessonVariation, error)
}

// RenderSubmitter is satisfied by *RenderDispatcher.
type RenderSubmitter interface {
	Dispatch(ctx context.Context, v *domain.LessonVariation)
	Submit(ctx context.Context, job domain.RenderJob) (domain.RenderReceipt, error)
}

type ResolveRequest struct {
	LessonID string
	// Date is YYYY-MM-DD. Empty means today (UTC).
	Date     string
	Age      int
	Tone     string
	Language string
}

type Resolution struct {
	Variation *domain.LessonVariation
	Key       string
	CacheHit  bool
}

type LessonResolverDeps struct {
	Log        *logger.Logger
	DNA        dnastore.Store
	Synth      Synthesizer
	Store      store.VariationStore
	Locker     store.Locker
	Dispatcher RenderSubmitter
	Metrics    *observability.Metrics
	AgeRange   domain.AgeRange
	Now        func() time.Time
	// LockTTL bounds how long a cross-process fill lease is held.
	LockTTL time.Duration
	// LockWait bounds how long a loser polls for the winner's row before
	// synthesizing on its own.
	LockWait time.Duration
	// FillTimeout bounds a single miss fill, independent of the request.
	FillTimeout time.Duration
}

type LessonResolver interface {
	Resolve(ctx context.Context, req ResolveRequest) (*Resolution, error)
	ResolveDaily(ctx context.Context, req ResolveRequest) (*Resolution, error)
	GetByKey(ctx context.Context, key string) (*domain.LessonVariation, error)
	List(ctx context.Context, f store.ListFilter) ([]*domain.LessonVariation, int64, error)
	Rerender(ctx context.Context, key string) (domain.RenderReceipt, error)
}

type lessonResolver struct {
	log        *logger.Logger
	dna        dnastore.Store
	synth      Synthesizer
	store      store.VariationStore
	locker     store.Locker
	dispatcher RenderSubmitter
	metrics    *observability.Metrics
	ages       domain.AgeRange
	now        func() time.Time
	lockTTL    time.Duration
	lockWait   time.Duration
	fillTO     time.Duration
	group      singleflight.Group
}

func NewLessonResolver(deps LessonResolverDeps) (LessonResolver, error) {
	if deps.DNA == nil || deps.Synth == nil || deps.Store == nil {
		return nil, errors.New("lesson resolver: DNA, Synth and Store are required")
	}
	r := &lessonResolver{
		log:        deps.Log,
		dna:        deps.DNA,
		synth:      deps.Synth,
		store:      deps.Store,
		locker:     deps.Locker,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		ages:       deps.AgeRange,
		now:        deps.Now,
		lockTTL:    deps.LockTTL,
		lockWait:   deps.LockWait,
		fillTO:     deps.FillTimeout,
	}
	if r.log == nil {
		r.log = logger.Nop()
	}
	r.log = r.log.With("service", "LessonResolver")
	if r.ages == (domain.AgeRange{}) {
		r.ages = domain.DefaultAgeRange()
	}
	if r.now == nil {
		r.now = func() time.Time { return time.Now().UTC() }
	}
	if r.lockTTL <= 0 {
		r.lockTTL = 10 * time.Second
	}
	if r.lockWait <= 0 {
		r.lockWait = 2 * time.Second
	}
	if r.fillTO <= 0 {
		r.fillTO = 15 * time.Second
	}
	return r, nil
}

var languagePattern = regexp.MustCompile(`^[a-z][a-z_-]{1,31}$`)

type validated struct {
	lessonID string
	date     time.Time
	age      int
	tone     domain.Tone
	language string
}

// validate checks every input before any I/O. requireLesson is false for
// daily resolution, where the lesson comes from the DNA calendar.
func (r *lessonResolver) validate(req ResolveRequest, requireLesson bool) (validated, error) {
	var out validated
	out.lessonID = strings.TrimSpace(req.LessonID)
	if requireLesson && out.lessonID == "" {
		return out, domain.ErrMissingParameters
	}
	if requireLesson && strings.Contains(out.lessonID, domain.KeySeparator) {
		return out, domain.ErrMalformedKey
	}
	if !r.ages.Contains(req.Age) {
		return out, domain.ErrInvalidAge
	}
	out.age = req.Age
	tone, ok := domain.ParseTone(req.Tone)
	if !ok {
		return out, domain.ErrInvalidTone
	}
	out.tone = tone
	out.language = domain.NormalizeLanguage(req.Language)
	if !languagePattern.MatchString(out.language) {
		return out, domain.ErrInvalidLanguage
	}
	if strings.TrimSpace(req.Date) == "" {
		out.date = domain.CivilDate(r.now().UTC())
	} else {
		d, err := domain.ParseDate(req.Date)
		if err != nil {
			return out, domain.ErrInvalidDate
		}
		out.date = d
	}
	return out, nil
}

func (r *lessonResolver) Resolve(ctx context.Context, req ResolveRequest) (*Resolution, error) {
	in, err := r.validate(req, true)
	if err != nil {
		return nil, err
	}
	return r.resolve(ctx, in)
}

// ResolveDaily resolves the lesson scheduled for the date's day of year.
func (r *lessonResolver) ResolveDaily(ctx context.Context, req ResolveRequest) (*Resolution, error) {
	in, err := r.validate(req, false)
	if err != nil {
		return nil, err
	}
	day := in.date.YearDay()
	dna, err := r.dna.ForDay(ctx, day)
	if err != nil {
		r.metrics.DNALoad("error")
		return nil, domain.Storage("dna for day", err)
	}
	if dna == nil {
		r.metrics.DNALoad("missing")
		return nil, &domain.NotFoundError{Resource: "lesson", ID: fmt.Sprintf("day %d", day)}
	}
	r.metrics.DNALoad("found")
	in.lessonID = dna.ID
	return r.resolve(ctx, in)
}

func (r *lessonResolver) resolve(ctx context.Context, in validated) (*Resolution, error) {
	key, err := domain.BuildKey(in.lessonID, in.date, in.age, in.tone, in.language)
	if err != nil {
		return nil, err
	}
	k := key.String()

	existing, err := r.store.Get(ctx, k)
	if err != nil {
		r.metrics.Resolution("error")
		return nil, err
	}
	if existing != nil {
		r.metrics.Resolution("hit")
		return &Resolution{Variation: existing, Key: k, CacheHit: true}, nil
	}

	out, err, shared := r.group.Do(k, func() (interface{}, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.fillTO)
		defer cancel()
		return r.fill(fctx, key)
	})
	if err != nil {
		r.metrics.Resolution("error")
		return nil, err
	}
	if shared {
		r.log.Debug("Shared in-flight synthesis", "variation_key", k)
	}
	r.metrics.Resolution("miss")
	return &Resolution{Variation: out.(*domain.LessonVariation), Key: k}, nil
}

// fill synthesizes and stores one variation. Only the writer whose value was
// actually stored dispatches the render.
func (r *lessonResolver) fill(ctx context.Context, key domain.VariationKey) (*domain.LessonVariation, error) {
	k := key.String()

	if r.locker != nil {
		lease, err := r.locker.TryAcquire(ctx, k, r.lockTTL)
		switch {
		case err != nil:
			r.log.Warn("Variation lock unavailable; continuing without it", "variation_key", k, "error", err)
		case lease == nil:
			if v, err := r.awaitWinner(ctx, k); err != nil || v != nil {
				return v, err
			}
			r.log.Warn("Lock holder did not finish in time; synthesizing anyway", "variation_key", k)
		default:
			defer func() {
				if err := lease.Release(context.WithoutCancel(ctx)); err != nil {
					r.log.Warn("Release variation lock failed", "variation_key", k, "error", err)
				}
			}()
			// The previous holder may have stored the row between our Get and the lock.
			if v, err := r.store.Get(ctx, k); err != nil || v != nil {
				return v, err
			}
		}
	}

	dna, err := r.dna.Load(ctx, key.LessonID)
	if err != nil {
		r.metrics.DNALoad("error")
		return nil, domain.Storage("dna load", err)
	}
	if dna == nil {
		r.metrics.DNALoad("missing")
		return nil, domain.LessonNotFound(key.LessonID)
	}
	r.metrics.DNALoad("found")

	start := time.Now()
	v, err := r.synth.Synthesize(dna, lessonmod.Input{Key: key, Category: domain.Categorize(key.Age)})
	if err != nil {
		r.metrics.Synthesis("error", time.Since(start))
		var se *domain.SynthesisError
		if errors.As(err, &se) {
			r.log.Error("Lesson content cannot be synthesized", "lesson_id", key.LessonID, "variation_key", k, "error", err)
		}
		return nil, err
	}
	r.metrics.Synthesis("ok", time.Since(start))

	stored, err := r.store.Put(ctx, v)
	if err != nil {
		return nil, err
	}
	if stored.Metadata.GeneratedAt.Equal(v.Metadata.GeneratedAt) && r.dispatcher != nil {
		r.dispatcher.Dispatch(ctx, stored)
	}
	return stored, nil
}

func (r *lessonResolver) awaitWinner(ctx context.Context, key string) (*domain.LessonVariation, error) {
	deadline := time.NewTimer(r.lockWait)
	defer deadline.Stop()
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil, domain.Storage("await variation", ctx.Err())
		case <-deadline.C:
			return nil, nil
		case <-tick.C:
			v, err := r.store.Get(ctx, key)
			if err != nil || v != nil {
				return v, err
			}
		}
	}
}

func (r *lessonResolver) GetByKey(ctx context.Context, key string) (*domain.LessonVariation, error) {
	k, err := domain.ParseKey(key)
	if err != nil {
		return nil, err
	}
	v, err := r.store.Get(ctx, k.String())
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, domain.VariationNotFound(k.String())
	}
	return v, nil
}

func (r *lessonResolver) List(ctx context.Context, f store.ListFilter) ([]*domain.LessonVariation, int64, error) {
	return r.store.List(ctx, f)
}

// Rerender submits a stored variation to the render queue synchronously.
func (r *lessonResolver) Rerender(ctx context.Context, key string) (domain.RenderReceipt, error) {
	v, err := r.GetByKey(ctx, key)
	if err != nil {
		return domain.RenderReceipt{}, err
	}
	if r.dispatcher == nil {
		return domain.RenderReceipt{}, &domain.QueueingError{VariationKey: v.Key, Err: errors.New("no render queue configured")}
	}
	job, err := domain.NewRenderJob(v)
	if err != nil {
		return domain.RenderReceipt{}, err
	}
	// A fresh job id asks the queue for a new run instead of joining the old one.
	job.JobID = uuid.NewString()
	return r.dispatcher.Submit(ctx, job)
}
