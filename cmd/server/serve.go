package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"alcyxob/ifit-coach/internal/ai"
	"alcyxob/ifit-coach/internal/api"
	"alcyxob/ifit-coach/internal/config"
	"alcyxob/ifit-coach/internal/export"
	"alcyxob/ifit-coach/internal/gateway"
	"alcyxob/ifit-coach/internal/metrics"
	"alcyxob/ifit-coach/internal/repository"
	"alcyxob/ifit-coach/internal/repository/local"
	"alcyxob/ifit-coach/internal/repository/mongo"
	"alcyxob/ifit-coach/internal/service"
	"alcyxob/ifit-coach/internal/storage"
	"alcyxob/ifit-coach/internal/survey"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err := newLogger(cfg.Server)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}
}

// stores is the persistence backend chosen by database.driver.
type stores struct {
	users    repository.UserRepository
	plans    repository.PlanRepository
	progress repository.ProgressRepository
	accounts repository.AssessmentStore
	guests   repository.AssessmentStore
	close    func()
}

func openStores(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger, m *metrics.Metrics) (*stores, error) {
	// Guest assessments never leave the local store.
	var kv local.KeyValue = local.NewMemoryKV()
	if cfg.LocalDir != "" {
		fileKV, err := local.NewFileKV(cfg.LocalDir)
		if err != nil {
			return nil, fmt.Errorf("open local store: %w", err)
		}
		kv = fileKV
	}
	guests := local.NewAssessmentStore(kv, local.ScopeGuest, logger, m)

	if cfg.Driver == config.DriverLocal {
		logger.Info("using local store", zap.String("dir", cfg.LocalDir))
		return &stores{
			users:    local.NewUserStore(kv, logger, m),
			plans:    local.NewPlanStore(kv, logger, m),
			progress: local.NewProgressStore(kv, logger, m),
			accounts: local.NewAssessmentStore(kv, local.ScopeAccount, logger, m),
			guests:   guests,
			close:    func() {},
		}, nil
	}

	client, err := mongo.ConnectDB(cfg.URI)
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	db := client.Database(cfg.Name)
	logger.Info("database connection established", zap.String("database", cfg.Name))

	idxCtx, cancel := context.WithTimeout(ctx, time.Minute)
	mongo.EnsureIndexes(idxCtx, db, logger)
	cancel()

	return &stores{
		users:    mongo.NewMongoUserRepository(db),
		plans:    mongo.NewMongoPlanRepository(db),
		progress: mongo.NewMongoProgressRepository(db),
		accounts: mongo.NewMongoAssessmentStore(db),
		guests:   guests,
		close: func() {
			if err := mongo.DisconnectDB(client); err != nil {
				logger.Error("failed to disconnect mongodb", zap.Error(err))
			}
		},
	}, nil
}

func serve(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	m := metrics.New()

	st, err := openStores(ctx, cfg.Database, logger, m)
	if err != nil {
		return err
	}
	defer st.close()

	steps, err := survey.DefaultSteps()
	if err != nil {
		return fmt.Errorf("load survey steps: %w", err)
	}
	engine, err := survey.NewEngine(steps)
	if err != nil {
		return fmt.Errorf("build survey engine: %w", err)
	}

	model, err := ai.NewOpenAIClient(ai.Config{
		BaseURL:    cfg.AI.BaseURL,
		APIKey:     cfg.AI.APIKey,
		Model:      cfg.AI.Model,
		Timeout:    cfg.AI.Timeout,
		MaxRetries: cfg.AI.MaxRetries,
	}, logger.Named("ai"))
	if err != nil {
		return fmt.Errorf("init model client: %w", err)
	}
	assigner, err := gateway.NewAssigner(cfg.Trainers, rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64())))
	if err != nil {
		return fmt.Errorf("init trainer roster: %w", err)
	}
	gw := gateway.New(model, assigner, cfg.AI.CallTimeout, logger.Named("gateway"), m)

	var files storage.FileStorage
	if cfg.S3.Enabled {
		files, err = storage.NewS3Storage(ctx, cfg.S3, logger.Named("storage"))
		if err != nil {
			return fmt.Errorf("init s3 storage: %w", err)
		}
	}

	reviews := service.NewReviewService(st.plans, assigner, gw, logger.Named("review"), m)
	services := api.Services{
		Auth:        service.NewAuthService(st.users, assigner, cfg.JWT.Secret, cfg.JWT.Expiration, logger.Named("auth")),
		Assessments: service.NewAssessmentService(engine, gw, st.accounts, st.guests, logger.Named("assessment")),
		Plans:       service.NewPlanService(st.plans, gw, logger.Named("plans"), m),
		Reviews:     reviews,
		Exports:     service.NewExportService(st.plans, reviews, export.NewExporter(cfg.Export.Scale, logger.Named("export"), m), files, logger.Named("export")),
		Progress:    service.NewProgressService(st.progress, logger.Named("progress")),
		Survey:      engine,
		Picker:      api.GlobalPicker{},
		Metrics:     m,
	}

	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(api.Recovery(logger), api.RequestLogger(logger.Named("http")), cors.New(corsConfig(cfg.Server.CORSOrigins)))
	api.SetupRoutes(router, cfg.JWT.Secret, services)

	// Plan generation may run for the whole gateway call timeout.
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.AI.CallTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("address", cfg.Server.Address), zap.String("driver", cfg.Database.Driver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("server exited")
	return nil
}

func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	c.AllowHeaders = append(c.AllowHeaders, "Authorization", api.GuestSessionHeader)
	c.ExposeHeaders = []string{"Content-Disposition"}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return c
}
