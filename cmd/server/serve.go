package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fadilmartias/cv-screening/internal/config"
	"github.com/fadilmartias/cv-screening/internal/domain/fiber/handler"
	"github.com/fadilmartias/cv-screening/internal/middleware"
	"github.com/fadilmartias/cv-screening/internal/queue"
	"github.com/fadilmartias/cv-screening/internal/repository"
	"github.com/fadilmartias/cv-screening/internal/service"
	"github.com/fadilmartias/cv-screening/internal/usecase"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	httpShutdownTimeout  = 10 * time.Second
	queueShutdownTimeout = 2 * time.Minute
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the evaluation scheduler",
	RunE: func(cmd *cobra.Command, _ []string) error {
		log, err := newLogger()
		if err != nil {
			return err
		}
		defer log.Sync()
		return serve(cmd.Context(), log)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context, log *zap.Logger) error {
	appConfig := config.LoadAppConfig()
	evalConfig := config.LoadEvaluationConfig()

	db, err := connectDB(log)
	if err != nil {
		return err
	}
	if err := migrate(db); err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	documents, gemini, err := newDocumentUsecase(ctx, db, log)
	if err != nil {
		return err
	}
	completion, err := newCompletion(evalConfig.Provider, gemini)
	if err != nil {
		return err
	}

	metrics := queue.NewMetrics(prometheus.DefaultRegisterer)
	invoker := service.NewRetryInvoker(completion,
		service.WithCallTimeout(evalConfig.CallTimeout),
		service.WithMaxOutputTokens(evalConfig.MaxOutputTokens),
		service.WithInvokerLogger(log.Named("invoker")),
		service.WithInvokerMetrics(metrics),
	)

	jobRepo := repository.NewJobRepository(db)
	chunkRepo := repository.NewChunkRepository(db)
	docRepo := repository.NewDocumentRepository(db)

	retrieval := service.NewVectorRetrievalService(gemini, chunkRepo)
	assembler := service.NewContextAssembler(retrieval, evalConfig.TopN, evalConfig.CallTimeout, log.Named("context"))
	pipeline := usecase.NewEvaluationUsecase(jobRepo, invoker, assembler, log.Named("pipeline"))
	scheduler := queue.NewScheduler(jobRepo, pipeline,
		queue.WithConcurrency(evalConfig.MaxConcurrent),
		queue.WithLogger(log.Named("scheduler")),
		queue.WithMetrics(metrics),
	)
	if err := scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	app := newFiberApp(appConfig, log)
	handler.NewUploadHandler(documents, appConfig.UploadDir).RegisterRoutes(app)
	handler.NewEvaluateHandler(scheduler, docRepo).RegisterRoutes(app)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go monitor(sigCtx, scheduler, log)

	listenErr := make(chan error, 1)
	go func() {
		log.Info("server running", zap.String("addr", appConfig.Port), zap.String("provider", evalConfig.Provider))
		listenErr <- app.Listen(appConfig.Port)
	}()

	select {
	case err := <-listenErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-sigCtx.Done():
		log.Info("shutting down")
	}

	if err := app.ShutdownWithTimeout(httpShutdownTimeout); err != nil {
		log.Error("http shutdown error", zap.Error(err))
	}
	queueCtx, cancel := context.WithTimeout(context.Background(), queueShutdownTimeout)
	defer cancel()
	if err := scheduler.Shutdown(queueCtx); err != nil {
		log.Warn("scheduler did not drain", zap.Error(err))
	}

	log.Info("stopped")
	return nil
}

func newFiberApp(appConfig *config.AppConfig, log *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   appConfig.Name,
		BodyLimit: 12 * 1024 * 1024,
		ErrorHandler: func(ctx *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError

			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}

			message := err.Error()
			if message == "" {
				message = "Internal Server Error"
			}

			return ctx.Status(code).JSON(fiber.Map{"success": false, "message": message})
		},
	})
	app.Use(middleware.RequestLogger(log.Named("http")))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))
	app.Use(recover.New(recover.Config{
		EnableStackTrace: !appConfig.IsProduction(),
	}))
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(pprof.New(pprof.Config{
		Next: func(c *fiber.Ctx) bool {
			return appConfig.IsProduction()
		},
	}))
	app.Use(healthcheck.New())
	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))
	app.Use(middleware.RateLimiter(50, 1*time.Minute))
	return app
}

// monitor logs goroutine count and queue depth once a minute.
func monitor(ctx context.Context, scheduler *queue.Scheduler, log *zap.Logger) {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			queued, running := scheduler.Depth()
			log.Debug("runtime stats",
				zap.Int("goroutines", runtime.NumGoroutine()),
				zap.Int("jobs_queued", queued),
				zap.Int("jobs_running", running),
			)
		}
	}
}
