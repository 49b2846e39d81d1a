package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"activityhub/internal/authz"
	"activityhub/internal/cache"
	"activityhub/internal/config"
	"activityhub/internal/database"
	"activityhub/internal/handler"
	"activityhub/internal/logger"
	"activityhub/internal/mediator"
	"activityhub/internal/queue"
	"activityhub/internal/realtime"
	"activityhub/internal/redis"
	"activityhub/internal/repository"
	"activityhub/internal/service"
	"activityhub/internal/storage"
	"activityhub/internal/worker"
)

const shutdownTimeout = 15 * time.Second

func Run() error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.LogLevel, cfg.AppEnv)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to Database and apply migrations
	if err := database.Migrate("postgres", cfg.DSN()); err != nil {
		return err
	}
	db, err := database.Connect(cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()

	// 3. Redis: event stream, comment pub/sub and profile cache
	rdb, err := redis.Connect(ctx, cfg.RedisURL, log)
	if err != nil {
		return err
	}
	defer rdb.Close()

	publisher := queue.NewPublisher(rdb.Client, log)
	profileCache := cache.NewProfileCache(rdb.Client, cfg.ProfileCacheTTL)
	broadcaster := realtime.NewBroadcaster(rdb.Client, log)

	// 4. Blob store
	photoStore, err := storage.NewR2PhotoStore(ctx, cfg)
	if err != nil {
		return err
	}

	// 5. Repositories and services
	userRepo := repository.NewUserRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	followRepo := repository.NewFollowRepository(db)
	photoRepo := repository.NewPhotoRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	activityService := service.NewActivityService(db, activityRepo, attendanceRepo, userRepo, followRepo, log)
	followService := service.NewFollowService(db, followRepo, userRepo, profileCache, publisher, log)
	photoService := service.NewPhotoService(db, photoRepo, userRepo, photoStore, profileCache, publisher, log)
	profileService := service.NewProfileService(db, userRepo, photoRepo, activityRepo, followRepo, profileCache, publisher, log)
	commentService := service.NewCommentService(db, commentRepo, activityRepo, userRepo)
	userService := service.NewUserService(userRepo)
	authService := service.NewAuthService(userRepo, cfg)

	// 6. Mediator. A request without a handler stops startup here.
	reg := mediator.NewRegistry()
	activityService.Register(reg)
	followService.Register(reg)
	photoService.Register(reg)
	profileService.Register(reg)
	commentService.Register(reg)
	m, err := reg.Build(log, service.Requests()...)
	if err != nil {
		return err
	}

	// 7. Background workers
	workers := worker.NewManager(
		queue.NewConsumer(rdb.Client, log),
		worker.NewHandler(profileCache, photoService, log),
		worker.ManagerConfig{WorkerCount: cfg.WorkerCount},
		log,
	)
	if err := workers.Start(ctx); err != nil {
		return fmt.Errorf("failed to start workers: %w", err)
	}
	defer workers.Stop()

	// 8. HTTP
	d := handler.NewDispatcher(m, log, cfg.IsDevelopment())
	router := NewRouter(RouterConfig{
		AccountHandler:  handler.NewAccountHandler(userService, authService, log),
		ActivityHandler: handler.NewActivityHandler(d),
		CommentHandler:  handler.NewCommentHandler(d, broadcaster),
		FollowHandler:   handler.NewFollowHandler(d),
		PhotoHandler:    handler.NewPhotoHandler(d),
		ProfileHandler:  handler.NewProfileHandler(d),
		HostPolicy:      authz.NewHostPolicy(attendanceRepo, log),
		JWTSecret:       cfg.JWTSecret,
	})

	srv := &stdhttp.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, stdhttp.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
