// cmd/serve.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ucook/accessflow/audit"
	"github.com/ucook/accessflow/config"
	"github.com/ucook/accessflow/controller"
	"github.com/ucook/accessflow/db"
	logger "github.com/ucook/accessflow/logging"
	"github.com/ucook/accessflow/metrics"
	"github.com/ucook/accessflow/middleware"
	"github.com/ucook/accessflow/router"
	"github.com/ucook/accessflow/service"
	"github.com/ucook/accessflow/util"
)

func ServeCMD() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			defer logger.Sync()
			return serve(cfg)
		},
	}
}

func serve(cfg *config.Configuration) error {
	gdb, err := db.Connect(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close(gdb)
	if err := db.Migrate(gdb); err != nil {
		return err
	}

	// Redis is optional; without it the ownership cache and the rate
	// limiter are disabled.
	var redisStore *db.Redis
	if cfg.Redis.Addr != "" {
		redisStore, err = db.InitRedis(cfg.Redis)
		if err != nil {
			return err
		}
		defer redisStore.Close()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eventBus := util.NewEventBus()
	eventBus.Start(ctx)

	registry := metrics.NewRegistry()
	registry.SubscribeWorkflow(eventBus)

	auditService, err := newAuditService(gdb, cfg.Elasticsearch)
	if err != nil {
		return err
	}

	services, err := service.InitializeServices(gdb, service.Options{
		AuditService: auditService,
		CacheService: util.NewCacheService(redisStore, cfg.Redis.OwnershipCacheTTL),
		Notifier:     newNotifier(gdb, cfg.Slack),
		EventBus:     eventBus,
		BaseURL:      cfg.Server.BaseURL,
		CSVLimits:    service.CSVLimits{MaxBytes: cfg.CSV.MaxBytes, MaxRows: cfg.CSV.MaxRows},
	})
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	engine := router.SetupRouter(controller.InitializeControllers(services), router.Options{
		Users: services.User,
		Auth: middleware.AuthOptions{
			Secret:  cfg.Auth.JWTSecret,
			Issuer:  cfg.Auth.Issuer,
			DevMode: cfg.Auth.DevMode,
		},
		RateStore:         redisStore,
		RateLimitRequests: cfg.RateLimit.Requests,
		RateLimitWindow:   cfg.RateLimit.Window,
		Metrics:           registry,
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: engine,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}
	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	eventBus.Wait()

	logger.Info("Server exiting")
	return nil
}

// newAuditService keeps the database as the queryable store and mirrors
// entries to Elasticsearch when a URL is configured.
func newAuditService(gdb *gorm.DB, cfg config.ElasticsearchConfiguration) (audit.Service, error) {
	var repo audit.Repository = audit.NewGormRepository(gdb)
	if cfg.URL != "" {
		es, err := audit.NewElasticsearchRepository(cfg.URL, cfg.Index)
		if err != nil {
			return nil, fmt.Errorf("elasticsearch audit mirror: %w", err)
		}
		repo = audit.NewMirroredRepository(repo, es)
		logger.Info("Mirroring audit log to Elasticsearch", zap.String("index", cfg.Index))
	}
	return audit.NewService(repo), nil
}

func newNotifier(gdb *gorm.DB, cfg config.SlackConfiguration) util.Notifier {
	if cfg.Token == "" {
		logger.Info("Slack token not configured, notifications will be logged only")
		return util.NewLogNotifier()
	}
	return util.NewSlackNotifier(cfg.Token, cfg.APIURL, service.NewDirectory(gdb))
}
