package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"results-ingest/core/config"
	"results-ingest/core/loader"
	"results-ingest/core/logger"
	"results-ingest/core/metrics"
	"results-ingest/core/middleware/auth"
	"results-ingest/core/middleware/rayid"
	"results-ingest/feature/ingest"
	"results-ingest/feature/ingest/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "results-ingest/docs/swagger"
)

// @title Results Ingest API
// @version 1.0
// @description Reconciles competition result feeds into the stored event state.
// @host localhost:8080
// @BasePath /

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the ingestion server",
	Long:  `Starts the HTTP server accepting feed uploads and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		m := metrics.New()
		svc, err := buildServices(cfg, logg, m)
		if err != nil {
			logg.Fatal("Failed to initialize ingestion", zap.Error(err))
		}
		if err := repository.Migrate(svc.db); err != nil {
			logg.Fatal("Failed to migrate database", zap.Error(err))
		}
		logg.Info("Connected to database", zap.String("driver", cfg.Database.Driver))

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
			BodyLimit:             cfg.Server.BodyLimit(),
		})

		mgr := loader.NewManager(logg)
		mgr.Register(ingest.NewFeature(svc.ingest))

		// RayID first so every later log line carries it.
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			start := time.Now()
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			l.Info("Request finished",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
				zap.Int("status", c.Response().StatusCode()),
				zap.Duration("took", time.Since(start)),
			)
			return err
		})

		// Public endpoints.
		app.Get("/swagger/*", swagger.HandlerDefault)
		app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))

		if !cfg.Server.AuthEnabled() {
			logg.Warn("No API key or JWT secret configured, the API is unprotected")
		}
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey, JWTSecret: cfg.Server.JWTSecret}))

		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		// In-flight uploads finish their split transactions before the process exits.
		_ = app.ShutdownWithTimeout(cfg.Ingest.TxTimeout + cfg.Ingest.TxMaxWait)
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
