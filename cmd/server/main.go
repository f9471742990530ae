package main

import (
	"context"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "resume-builder/internal/adapter/http"
	repo "resume-builder/internal/adapter/repository"
	"resume-builder/internal/config"
	"resume-builder/internal/cryptox"
	"resume-builder/internal/infrastructure/migration"
	"resume-builder/internal/locale"
	"resume-builder/internal/logging"
	"resume-builder/internal/scoring"
	"resume-builder/internal/usecase"
	ai "resume-builder/pkg/ai"
	infra "resume-builder/pkg/infrastructure"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logging.New(os.Stderr, "text", "error").Error(ctx, "invalid configuration", "error", err)
		os.Exit(2)
	}
	log := logging.New(os.Stdout, cfg.LogFormat, cfg.LogLevel)

	rubric, err := scoring.RubricByName(cfg.ATSRubric)
	if err != nil {
		log.Error(ctx, "invalid ATS_RUBRIC", "error", err)
		os.Exit(2)
	}
	if cfg.ATSPenalties != "" {
		points, err := scoring.ParsePenalties(cfg.ATSPenalties)
		if err != nil {
			log.Error(ctx, "invalid ATS_PENALTIES", "error", err)
			os.Exit(2)
		}
		rubric = rubric.WithPenalties(points)
	}

	var fieldKey []byte
	if cfg.FieldEncryptionKey != "" {
		fieldKey = cryptox.KeyFromSecret(cfg.FieldEncryptionKey)
	}

	// infra setup
	var store usecase.ResumeStore
	info := httpadapter.ServiceInfo{Name: "resume-builder", Version: version, DB: "memory"}
	if cfg.DatabaseURL != "" {
		pool, err := infra.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error(ctx, "resumes DB not available", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		if err := migration.RunMigrations(ctx, pool); err != nil {
			log.Error(ctx, "migrations failed", "error", err)
			os.Exit(1)
		}
		store = repo.NewResumesRepo(pool, fieldKey)
		info.DB, info.DBURI = "postgres", redact(cfg.DatabaseURL)
	} else {
		log.Warn(ctx, "DATABASE_URL not set, keeping resumes in memory")
		store = repo.NewMemoryRepo()
	}

	presets := locale.NewRegistry(locale.Embedded(), log)
	if cfg.PresetsPath != "" {
		if err := presets.LoadFile(cfg.PresetsPath); err != nil {
			log.Error(ctx, "cannot load presets", "path", cfg.PresetsPath, "error", err)
			os.Exit(1)
		}
		go func() {
			if err := presets.Watch(ctx, cfg.PresetsPath); err != nil {
				log.Warn(ctx, "presets hot reload disabled", "error", err)
			}
		}()
	}

	var extractor usecase.KeywordExtractor
	if cfg.AIEnabled {
		extractor = ai.NewClient(cfg.AIServiceURL, ai.WithRateLimit(cfg.AIRequestsPerSecond))
	}

	var rendererOpts []infra.RendererOption
	if cfg.ChromePath != "" {
		rendererOpts = append(rendererOpts, infra.WithExecPath(cfg.ChromePath))
	}

	svc := usecase.NewService(usecase.Deps{
		Store:     store,
		Presets:   presets,
		Rubric:    &rubric,
		Extractor: extractor,
		PDF:       infra.NewChromedpRenderer(rendererOpts...),
		Logger:    log,
		Local: usecase.LocalModeSettings{
			Enabled:             true,
			EncryptLocalData:    true,
			AutoClearAfterHours: cfg.LocalAutoClearHours,
			DebounceMillis:      cfg.Debounce.Milliseconds(),
		},
	})

	app := httpadapter.NewApp(httpadapter.NewHandler(svc, info, log), cfg.CORSOrigins)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Warn(shutdownCtx, "shutdown", "error", err)
		}
	}()

	log.Info(ctx, "server listening", "addr", cfg.Addr(), "db", info.DB, "rubric", rubric.Name, "ai", cfg.AIEnabled)
	if err := app.Listen(cfg.Addr()); err != nil {
		log.Error(ctx, "server failed", "error", err)
		os.Exit(1)
	}
}

func redact(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return "postgres"
	}
	return u.Redacted()
}
