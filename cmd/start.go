package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ats-catalog/core/loader"
	"ats-catalog/core/logger"
	"ats-catalog/core/middleware/auth"
	"ats-catalog/core/middleware/rayid"
	"ats-catalog/core/scheduler"
	"ats-catalog/feature/catalog"
	"ats-catalog/feature/crawl"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the catalog API server and the crawl scheduler",
	Long:  `Starts the HTTP server, loads all enabled features and schedules the periodic crawl.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := bootstrap(ctx)
		if err != nil {
			log.Fatalf("Failed to start: %v", err)
		}
		logg := a.logger
		defer logg.Sync()
		zap.ReplaceGlobals(logg)
		cfg := a.cfg

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
			ReadTimeout:           cfg.Server.ReadTimeout(),
			WriteTimeout:          cfg.Server.WriteTimeout(),
		})

		mgr := loader.NewManager(logg)
		mgr.Register(catalog.NewFeature(a.db, cfg.Database, logg))
		mgr.Register(crawl.NewFeature(a.orchestrator, logg))

		// RayID first so every later log line carries it.
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey, Public: []string{"/health"}}))

		started := time.Now()
		app.Get("/health", func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"status": "ok", "uptime_seconds": int(time.Since(started).Seconds())})
		})

		var sched *scheduler.Scheduler
		app.Get("/", func(c *fiber.Ctx) error {
			features := make([]string, 0, len(mgr.Features()))
			for _, f := range mgr.Features() {
				if f.IsEnabled() {
					features = append(features, f.Name())
				}
			}
			meta := fiber.Map{
				"service":  RootCmd.Use,
				"features": features,
				"sources":  len(a.orchestrator.Sources()),
			}
			if sched != nil {
				meta["next_crawl"] = sched.Next()
			}
			return c.JSON(meta)
		})

		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		if cfg.Scheduler.Enabled {
			sched, err = scheduler.New(cfg.Scheduler, func(ctx context.Context) {
				if _, err := a.orchestrator.RunAll(ctx); err != nil {
					logg.Warn("Scheduled crawl had failures", zap.Error(err))
				}
			}, logg)
			if err != nil {
				logg.Fatal("Failed to create scheduler", zap.Error(err))
			}
			sched.Start(ctx)
		}

		go func() {
			logg.Info("Starting server", zap.String("address", cfg.Server.Address()))
			if err := app.Listen(cfg.Server.Address()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		<-ctx.Done()
		logg.Info("Shutting down server...")
		if sched != nil {
			sched.Stop()
		}
		_ = app.ShutdownWithTimeout(30 * time.Second)
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
