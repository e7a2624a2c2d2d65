package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/homebasehq/homebase/api"
	"github.com/homebasehq/homebase/config"
	"github.com/homebasehq/homebase/store"
)

var (
	configFile = flag.String("config", "", "Path to configuration YAML file")
	addr       = flag.String("addr", "", "HTTP listen address (overrides config)")
)

func main() {
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := store.NewPGStore(ctx, store.PGConfig{
		URL:             cfg.Database.URL,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pg.Close()

	if err := store.NewMigrator(pg.Pool()).Migrate(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	blobs, err := store.NewLocalStorage(cfg.Files.Root)
	if err != nil {
		log.Fatalf("Failed to open file storage: %v", err)
	}

	sessions := store.SessionStore(pg.Sessions())
	if cfg.Redis.Addr != "" {
		rdb, err := store.DialRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		sessions = store.NewCachedSessionStore(sessions, rdb, cfg.Server.SessionTTL, logger)
		logger.Info("Session cache enabled", "addr", cfg.Redis.Addr)
	}

	// Logout deactivates sessions in place; this sweep is what actually
	// removes them.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := sessions.DeleteExpired(ctx)
				if err != nil {
					logger.Error("Session sweep failed", "error", err)
				} else if n > 0 {
					logger.Info("Swept expired sessions", "count", n)
				}
			}
		}
	}()

	handler := api.NewRouter(api.Stores{
		Users:     pg.Users(),
		Sessions:  sessions,
		Contacts:  pg.Contacts(),
		Notes:     pg.Notes(),
		Tasks:     pg.Tasks(),
		Estimates: pg.Estimates(),
		Invoices:  pg.Invoices(),
		Products:  pg.Products(),
		Files:     pg.Files(),
		Channels:  pg.Channels(),
		Blobs:     blobs,
	}, api.Config{
		JWTSecret:     cfg.Auth.JWTSecret,
		JWTIssuer:     cfg.Auth.JWTIssuer,
		SessionTTL:    cfg.Server.SessionTTL,
		SecureCookies: cfg.Server.SecureCookies,
		AuthRateLimit: cfg.Server.AuthRateLimit,
		Logger:        logger,
	})

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting server", "addr", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("Shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	logger.Info("Shutdown complete")
}
