package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	apirest "github.com/kasuganosora/slotgrid/api/rest"
	"github.com/kasuganosora/slotgrid/api/sse"
	"github.com/kasuganosora/slotgrid/audit"
	"github.com/kasuganosora/slotgrid/cache"
	"github.com/kasuganosora/slotgrid/config"
	dbadapter "github.com/kasuganosora/slotgrid/db"
	"github.com/kasuganosora/slotgrid/game/inventory"
	"github.com/kasuganosora/slotgrid/game/slot"
	mw "github.com/kasuganosora/slotgrid/middleware"
	"github.com/kasuganosora/slotgrid/model"
	"github.com/kasuganosora/slotgrid/plugin/hook"
	"github.com/kasuganosora/slotgrid/repository"
	"github.com/kasuganosora/slotgrid/resource"
	"github.com/kasuganosora/slotgrid/scheduler"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	cfgPath := "config/config.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ---- Logger ----
	var logger *zap.Logger
	var logErr error
	if cfg.Server.Debug {
		logger, logErr = zap.NewDevelopment()
	} else {
		logger, logErr = zap.NewProduction()
	}
	if logErr != nil {
		log.Fatalf("logger: %v", logErr)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	// ---- Database ----
	db, err := dbadapter.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	if err := model.AutoMigrate(db); err != nil {
		return fmt.Errorf("db migrate: %w", err)
	}
	logger.Info("DB initialized", zap.String("mode", cfg.Database.Mode))

	// ---- Audit ----
	auditSvc := audit.New(db, logger)
	defer auditSvc.Stop(context.Background())

	// ---- Cache / PubSub ----
	cacheConfig := cache.CacheConfig{
		RedisAddr:       cfg.Cache.RedisAddr,
		RedisPassword:   cfg.Cache.RedisPassword,
		RedisDB:         cfg.Cache.RedisDB,
		LocalGCInterval: cfg.Cache.LocalGCInterval,
		LocalPubSubBuf:  cfg.Cache.LocalPubSubBuf,
	}
	c, err := cache.NewCache(cacheConfig)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer c.Close()
	pubsub, err := cache.NewPubSub(cacheConfig)
	if err != nil {
		return fmt.Errorf("pubsub: %w", err)
	}
	defer pubsub.Close()
	logger.Info("Cache initialized", zap.Bool("redis", cfg.Cache.RedisAddr != ""))

	// ---- Item catalog ----
	catalog, err := resource.LoadCatalog(cfg.Catalog.Path, logger)
	if err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	logger.Info("Item catalog loaded", zap.Int("items", catalog.Len()))

	// ---- Slots ----
	reg := slot.NewRegistry(logger)
	slots, err := slot.BuildGrid(cfg.Inventory.Columns, cfg.Inventory.Rows, cfg.Inventory.Spacing)
	if err != nil {
		return err
	}
	if err := reg.RegisterAll(slots); err != nil {
		return err
	}

	// ---- Persistence ----
	repo, err := repository.Open(cfg.Persistence, cfg.Inventory.SaveName, db, c)
	if err != nil {
		return err
	}
	saves := repository.NewWorker(repo, cfg.Persistence.QueueSize, logger)
	defer saves.Stop()

	// ---- Inventory ----
	mode, err := inventory.ParseDropMode(cfg.Inventory.DropMode)
	if err != nil {
		return err
	}
	hooks := hook.New(logger)
	inventory.RegisterAudit(hooks, auditSvc)
	inventory.RegisterPublisher(hooks, pubsub, logger)
	mgr := inventory.NewManager(reg, catalog, hooks, mode, logger)

	if cfg.Persistence.LoadOnStart {
		if err := loadSave(ctx, mgr, saves); err != nil {
			return err
		}
	}

	// ---- Scheduler ----
	sched := scheduler.New(logger)
	defer sched.Stop()
	save := func(ctx context.Context) {
		if err := <-saves.Save(ctx, mgr.Snapshot()); err != nil {
			logger.Error("inventory save failed", zap.Error(err))
		}
	}
	if cfg.Inventory.AutosaveInterval > 0 {
		sched.AddTicker("autosave", cfg.Inventory.AutosaveInterval, save)
	}
	if d := cfg.Persistence.SaveDebounce; d > 0 {
		onChange := func(_ context.Context, _ string, data interface{}) (interface{}, error) {
			sched.AddDelay("save_on_change", d, save)
			return data, nil
		}
		for _, ev := range []string{hook.AfterSpawn, hook.AfterPlace, hook.AfterTrash, hook.AfterClear} {
			hooks.Register(ev, 200, "save_on_change", onChange)
		}
	}

	// ---- Gin HTTP Server ----
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(mw.TraceID(), mw.Logger(logger, "/health"), mw.Recovery(logger))
	r.Use(mw.RateLimit(ctx, rate.Limit(cfg.Security.RateLimitRPS), cfg.Security.RateLimitBurst))

	// Health check
	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok", "slots": reg.Len()})
	})

	invH := apirest.NewInventoryHandler(mgr, saves, logger)
	invH.Register(r.Group("/api/inventory"))

	sseH := sse.NewHandler(pubsub, mgr, logger)
	r.GET("/sse", sseH.ServeSSE)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http shutdown", zap.Error(err))
		}
	}

	// final save before the worker drains
	sched.Stop()
	save(context.Background())
	return nil
}

// loadSave restores the stored inventory, if there is one.
func loadSave(ctx context.Context, mgr *inventory.Manager, saves *repository.Worker) error {
	res := <-saves.Load(ctx)
	switch {
	case errors.Is(res.Err, repository.ErrNoSave):
		return nil
	case res.Err != nil:
		return fmt.Errorf("load inventory: %w", res.Err)
	}
	if err := mgr.Restore(ctx, res.Data); err != nil {
		return fmt.Errorf("restore inventory: %w", err)
	}
	return nil
}
