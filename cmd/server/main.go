package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/Hesed2817/taskflow-app/api/handler"
	"github.com/Hesed2817/taskflow-app/internal/config"
	"github.com/Hesed2817/taskflow-app/internal/infrastructure/monitor"
	"github.com/Hesed2817/taskflow-app/internal/infrastructure/outbox"
	pgInfra "github.com/Hesed2817/taskflow-app/internal/infrastructure/postgres"
	redisInfra "github.com/Hesed2817/taskflow-app/internal/infrastructure/redis"
	"github.com/Hesed2817/taskflow-app/internal/middleware"
	"github.com/Hesed2817/taskflow-app/internal/router"
	"github.com/Hesed2817/taskflow-app/internal/services"
	"github.com/Hesed2817/taskflow-app/internal/services/lifecycle"
	"github.com/Hesed2817/taskflow-app/pkg/hash"
	"github.com/Hesed2817/taskflow-app/pkg/httpcontext"
	"github.com/Hesed2817/taskflow-app/pkg/logger"
	"github.com/Hesed2817/taskflow-app/pkg/token"
	"github.com/Hesed2817/taskflow-app/repository/postgres"
	redisRepo "github.com/Hesed2817/taskflow-app/repository/redis"
	authUC "github.com/Hesed2817/taskflow-app/usecase/auth"
	"github.com/Hesed2817/taskflow-app/usecase/cascade"
	identityUC "github.com/Hesed2817/taskflow-app/usecase/identity"
	projectUC "github.com/Hesed2817/taskflow-app/usecase/project"
	taskUC "github.com/Hesed2817/taskflow-app/usecase/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	redisClient, err := redisInfra.NewClient(cfg.Redis)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	outboxStore, err := outbox.Open(cfg.Outbox.Path)
	if err != nil {
		zapLogger.Fatal("failed to open mail outbox", zap.Error(err))
	}
	manager.Register("outbox", func(ctx context.Context) error {
		return outboxStore.Close()
	})

	mon := monitor.New(pool, redisClient, outboxStore, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	userRepo := postgres.NewUserRepository(pool)
	projectRepo := postgres.NewProjectRepository(pool)
	taskRepo := postgres.NewTaskRepository(pool)
	sessionRepo := redisRepo.NewSessionRepository(redisClient, cfg.Auth.TokenTTL)
	txManager := postgres.NewTxManager(pool)

	mailProcessor := services.NewMailProcessor(
		outboxStore,
		services.NewLogMailer(zapLogger),
		zapLogger,
		services.ProcessorConfig{
			Interval:   cfg.Outbox.DrainInterval,
			BatchSize:  cfg.Outbox.BatchSize,
			MaxRetries: cfg.Outbox.MaxRetry,
		},
	)
	mailProcessor.Start()
	manager.Register("mail_processor", func(ctx context.Context) error {
		mailProcessor.Stop(ctx)
		return nil
	})

	janitor := services.NewTokenJanitor(userRepo, cfg.Outbox.TokenPurgeInterval, zapLogger)
	janitor.Start()
	manager.Register("token_janitor", func(ctx context.Context) error {
		janitor.Stop(ctx)
		return nil
	})

	hasher := hash.NewBcrypt(cfg.Auth.BcryptCost)
	issuer := token.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.TokenTTL)
	notifier := services.NewNotifier(outboxStore)

	cascadeCoord := cascade.New(txManager, userRepo, projectRepo, taskRepo, zapLogger)
	identityUseCase := identityUC.New(userRepo, hasher, cascadeCoord, zapLogger)
	projectUseCase := projectUC.New(projectRepo, taskRepo, userRepo, txManager, cascadeCoord, zapLogger)
	taskUseCase := taskUC.New(taskRepo, projectRepo, zapLogger)
	authUseCase := authUC.New(sessionRepo, issuer, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:    apiHandler.NewAuthHandler(identityUseCase, authUseCase, notifier, cfg.Auth.ResetURL, ctxAdapter, zapLogger),
		User:    apiHandler.NewUserHandler(identityUseCase, ctxAdapter, zapLogger),
		Project: apiHandler.NewProjectHandler(projectUseCase, ctxAdapter, zapLogger),
		Task:    apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Health:  apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(authUseCase, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
