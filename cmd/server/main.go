package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/hmi-editor/backend/internal/api"
	"github.com/hmi-editor/backend/internal/config"
	"github.com/hmi-editor/backend/internal/logging"
	"github.com/hmi-editor/backend/internal/project"
	"github.com/hmi-editor/backend/internal/session"
	"github.com/hmi-editor/backend/internal/storage"
	"github.com/hmi-editor/backend/internal/web"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Get the executable's directory for config resolution
	exePath, err := os.Executable()
	if err != nil {
		fmt.Printf("Failed to get executable path: %v\n", err)
		os.Exit(1)
	}
	exeDir := filepath.Dir(exePath)

	if err := config.LoadEnv(filepath.Join(exeDir, ".env")); err != nil {
		fmt.Printf("Warning: %v\n", err)
	}

	configPath := filepath.Join(exeDir, "HmiEditor.config")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Printf("Failed to create directories: %v\n", err)
		os.Exit(1)
	}

	logs := logging.NewLogrus(cfg.Advanced.LogLevel, os.Stdout)
	log := logs.Get("server")
	api.ShowErrorDetails = log.Logger.IsLevelEnabled(logrus.DebugLevel)

	store, err := storage.NewLocalStore(cfg.Storage.SnapshotsDirectory)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	svc := project.NewService(store, logs.Get("project"))
	if cfg.Storage.LoadLatestOnStart {
		loadLatest(store, svc, log)
	}

	sessions := session.NewManager(svc, cfg.Sessions.MaxOpenDialogs, logs.Get("session"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Background dialog cleanup
	go func() {
		ticker := time.NewTicker(cfg.CleanupInterval())
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := sessions.CleanupOldSessions(cfg.SessionTimeout()); n > 0 {
					log.Infof("closed %d idle dialogs", n)
				}
			}
		}
	}()

	e := echo.New()
	e.HideBanner = true

	api.SetupMiddleware(e, api.MiddlewareOptions{
		RequestLogging: cfg.Advanced.EnableRequestLogging,
		RequestTimeout: time.Duration(cfg.Server.ReadTimeout) * time.Second,
		BodyLimit:      cfg.Server.BodyLimit,
		EnableCORS:     cfg.Server.EnableCORS,
		AllowOrigins:   cfg.Server.AllowOrigins,
	})

	api.RegisterRoutes(e, api.NewHandlers(&api.Dependencies{
		Store:                 store,
		Project:               svc,
		Sessions:              sessions,
		Version:               Version,
		AllowSnapshotDeletion: cfg.Security.AllowSnapshotDeletion,
		AllowedImportTypes:    cfg.Security.AllowedImportTypes,
		MaxImportSize:         cfg.Storage.MaxImportSize,
		WebSocketMaxKB:        cfg.Advanced.WebSocketMaxMessageSize,
		Log:                   logs.Get("push"),
	}))

	staticMode := web.HasStaticFiles(cfg.Server.StaticDirectory)
	if staticMode {
		web.RegisterStaticRoutes(e, cfg.Server.StaticDirectory)
	}

	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	frontend := "API only"
	if staticMode {
		frontend = cfg.Server.StaticDirectory
	}

	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           HMI Editor Server                               ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("║  Frontend:   %-45s║\n", frontend)
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", configPath)
	fmt.Printf("║  Listen:    http://%-38s║\n", cfg.GetServerAddr())
	fmt.Printf("║  Snapshots: %-46s║\n", cfg.Storage.SnapshotsDirectory)
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")

	go func() {
		if err := e.StartServer(s); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server stopped: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	sessions.CloseAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Errorf("shutdown: %v", err)
	}
}

// loadLatest opens the most recent snapshot, if any.
func loadLatest(store storage.Store, svc *project.Service, log *logrus.Entry) {
	list, err := store.List(1)
	if err != nil {
		log.Warnf("failed to list snapshots: %v", err)
		return
	}
	if len(list) == 0 {
		return
	}
	if _, err := svc.LoadSnapshot(list[0].ID); err != nil {
		log.Warnf("failed to load snapshot %s: %v", list[0].ID, err)
		return
	}
	log.Infof("loaded snapshot %q", list[0].Name)
}
