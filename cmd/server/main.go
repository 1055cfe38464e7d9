package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"

	"github.com/jengzang/bikeshare-insights/internal/api"
	"github.com/jengzang/bikeshare-insights/internal/config"
	"github.com/jengzang/bikeshare-insights/internal/database"
	"github.com/jengzang/bikeshare-insights/internal/dataset"
	"github.com/jengzang/bikeshare-insights/internal/handler"
	"github.com/jengzang/bikeshare-insights/internal/metrics"
	"github.com/jengzang/bikeshare-insights/internal/repository"
	"github.com/jengzang/bikeshare-insights/internal/scheduler"
	"github.com/jengzang/bikeshare-insights/internal/service"
	"github.com/jengzang/bikeshare-insights/pkg/logger"
)

const reloadTimeout = time.Minute

func main() {
	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}
	logger.SetLogLevel(cfg.Logging.Level)
	if logger.GetLevel() > logger.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 初始化数据源
	loader, closeLoader, err := newLoader(ctx, cfg)
	if err != nil {
		logger.Fatalf("Failed to initialize data source: %v", err)
	}
	defer closeLoader()

	recorder := metrics.NewRecorder()
	repo := repository.NewRentalRepository(loader, recorder)
	if err := repo.Load(ctx); err != nil {
		logger.Fatalf("Failed to load datasets: %v", err)
	}

	var wg sync.WaitGroup
	if err := startReloaders(ctx, cfg, repo, &wg); err != nil {
		logger.Fatalf("Failed to start dataset reloads: %v", err)
	}

	tag, err := language.Parse(cfg.Dashboard.Language)
	if err != nil {
		logger.Warnf("Unknown dashboard language %q, using English", cfg.Dashboard.Language)
		tag = language.English
	}
	dashboardService := service.NewDashboardService(repo, recorder, service.Options{
		ShowBackdrop: cfg.Dashboard.ShowBackdrop,
		Language:     tag,
	})

	// 初始化路由
	router := api.SetupRouter(ctx, cfg, api.Handlers{
		Dashboard: handler.NewDashboardHandler(dashboardService),
		Datasets:  handler.NewDatasetHandler(repo),
		Metrics:   recorder.Handler(),
	})

	srv := &http.Server{
		Addr:    cfg.Server.Port,
		Handler: router,
	}

	// 启动服务器
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Infof("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server shutdown: %v", err)
	}
	wg.Wait()
}

// newLoader builds the configured dataset loader and its cleanup
func newLoader(ctx context.Context, cfg *config.Config) (dataset.Loader, func(), error) {
	if cfg.Data.Source != config.SourceSQL {
		return dataset.NewFileLoader(cfg.Data.Files, cfg.Data.Sheet), func() {}, nil
	}

	db, err := database.Open(ctx, cfg.Data.Database)
	if err != nil {
		return nil, nil, err
	}
	loader, err := dataset.NewSQLLoader(db, cfg.Data.Tables)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return loader, func() {
		if err := db.Close(); err != nil {
			logger.Errorf("Closing database: %v", err)
		}
	}, nil
}

// startReloaders starts the file watcher and the cron schedule when enabled.
// A watcher that cannot start is logged and skipped.
func startReloaders(ctx context.Context, cfg *config.Config, repo *repository.RentalRepository, wg *sync.WaitGroup) error {
	if cfg.Data.Watch {
		files := []string{cfg.Data.Files.Hourly, cfg.Data.Files.Daily, cfg.Data.Files.Segments}
		watcher, err := dataset.NewWatcher(files, cfg.Data.WatchDebounce, repo.Reload)
		if err != nil {
			logger.Warnf("File watching (WATCH_DATA) disabled, datasets reload only on request or schedule: %v", err)
		} else {
			wg.Add(1)
			go func() {
				defer wg.Done()
				watcher.Run(ctx)
			}()
		}
	}

	if cfg.Data.ReloadSchedule != "" {
		schedule, err := scheduler.NewReloadSchedule(cfg.Data.ReloadSchedule, repo, reloadTimeout)
		if err != nil {
			return err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			schedule.Run(ctx)
		}()
	}
	return nil
}
