package app

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/yungbote/dailylesson-backend/internal/content"
	"github.com/yungbote/dailylesson-backend/internal/data/cache"
	"github.com/yungbote/dailylesson-backend/internal/data/dnastore"
	"github.com/yungbote/dailylesson-backend/internal/data/store"
	lessonmod "github.com/yungbote/dailylesson-backend/internal/modules/lesson"
	rendermod "github.com/yungbote/dailylesson-backend/internal/modules/render"
	"github.com/yungbote/dailylesson-backend/internal/observability"
	"github.com/yungbote/dailylesson-backend/internal/platform/logger"
	"github.com/yungbote/dailylesson-backend/internal/services"
	"github.com/yungbote/dailylesson-backend/internal/temporalx"
	temporalrender "github.com/yungbote/dailylesson-backend/internal/temporalx/render"
)

type Services struct {
	DNAFiles   *dnastore.FileStore
	DNARepo    *dnastore.RepoStore
	DNA        *dnastore.CachedStore
	Variations store.VariationStore
	Locker     store.Locker
	Queue      services.RenderQueue
	Dispatcher *services.RenderDispatcher
	Resolver   services.LessonResolver
	Cards      *services.CardRenderer
	Render     rendermod.Usecases
}

func wireServices(log *logger.Logger, cfg Config, clients Clients, repos Repos, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")
	var s Services

	// DNA: CMS rows shadow the bundled YAML.
	fsys, dir := fs.FS(content.DNA), content.DNADir
	if cfg.DNADir != "" {
		fsys, dir = os.DirFS(cfg.DNADir), "."
	}
	files, err := dnastore.NewFileStore(fsys, dir, log)
	if err != nil {
		return Services{}, fmt.Errorf("load lesson dna: %w", err)
	}
	s.DNAFiles = files
	s.DNARepo = dnastore.NewRepoStore(repos.DNA)
	s.DNA, err = dnastore.NewCachedStore(dnastore.Chain{s.DNARepo, s.DNAFiles}, cfg.DNACacheSize, cfg.DNACacheTTL)
	if err != nil {
		return Services{}, fmt.Errorf("init dna cache: %w", err)
	}

	// Variations
	var varCache store.Cache
	if clients.Redis != nil {
		varCache = cache.NewVariationCache(clients.Redis, cfg.VariationCacheTTL, log)
	}
	s.Variations = store.NewSQLStore(repos.Variations, varCache, log)

	if cfg.LockEnabled {
		if clients.Redis != nil {
			s.Locker = cache.NewRedisLocker(clients.Redis)
		} else {
			s.Locker = store.NewMemoryLocker()
		}
	}

	// Render
	s.Queue, err = wireRenderQueue(log, cfg, clients)
	if err != nil {
		return Services{}, err
	}
	s.Dispatcher = services.NewRenderDispatcher(s.Queue, log, metrics, cfg.Dispatcher)
	s.Render = rendermod.New(rendermod.UsecasesDeps{
		Log:         log,
		Video:       clients.HeyGen,
		Media:       s.Variations,
		Bucket:      clients.Media,
		CallbackURL: cfg.CallbackURL(),
	})

	// Lessons
	synth := lessonmod.NewSynthesizer(lessonmod.SynthesizerDeps{
		Log:       log,
		Localizer: lessonmod.PassthroughLocalizer{},
	})
	s.Resolver, err = services.NewLessonResolver(services.LessonResolverDeps{
		Log:        log,
		DNA:        s.DNA,
		Synth:      synth,
		Store:      s.Variations,
		Locker:     s.Locker,
		Dispatcher: s.Dispatcher,
		Metrics:    metrics,
		AgeRange:   cfg.AgeRange,
	})
	if err != nil {
		return Services{}, err
	}

	s.Cards, err = services.NewCardRenderer(log, cfg.CardFont)
	if err != nil {
		return Services{}, fmt.Errorf("init title cards: %w", err)
	}
	return s, nil
}

func wireRenderQueue(log *logger.Logger, cfg Config, clients Clients) (services.RenderQueue, error) {
	mode := cfg.RenderQueue
	if mode == "" {
		switch {
		case clients.Temporal != nil:
			mode = RenderQueueTemporal
		case clients.Redis != nil:
			mode = RenderQueueRedis
		default:
			mode = RenderQueueLog
		}
	}
	log.Info("Render queue selected", "mode", mode)

	switch mode {
	case RenderQueueTemporal:
		if clients.Temporal == nil {
			return nil, fmt.Errorf("RENDER_QUEUE=temporal requires TEMPORAL_ADDRESS")
		}
		opts := temporalrender.Options{
			PollInterval: rendermod.DefaultPollInterval,
			PollBudget:   rendermod.DefaultPollBudget,
		}
		return temporalx.NewRenderQueue(clients.Temporal, cfg.Temporal, opts, log), nil
	case RenderQueueRedis:
		if clients.Redis == nil {
			return nil, fmt.Errorf("RENDER_QUEUE=redis requires REDIS_ADDR")
		}
		return services.NewRedisRenderQueue(clients.Redis, log), nil
	case RenderQueueLog:
		return services.NewLogRenderQueue(log), nil
	default:
		return nil, fmt.Errorf("unknown RENDER_QUEUE %q", mode)
	}
}
