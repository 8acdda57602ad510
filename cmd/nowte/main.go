// CLAUDE:SUMMARY Entry point for the nowte whiteboard service — chi router, websocket drawing, spline writeback worker.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "modernc.org/sqlite"

	"github.com/adroste/nowte/config"
	"github.com/adroste/nowte/dbopen"
	"github.com/adroste/nowte/observability"
	"github.com/adroste/nowte/realtime"
	"github.com/adroste/nowte/server"
	"github.com/adroste/nowte/shield"
	"github.com/adroste/nowte/store"
	"github.com/adroste/nowte/vtq"
)

func main() {
	cfgPath := env("NOWTE_CONFIG", "")
	var cfg *config.Config
	var err error
	if cfgPath != "" {
		cfg, err = config.LoadFile(cfgPath)
		if err != nil {
			slog.Error("load config", "path", cfgPath, "error", err)
			os.Exit(1)
		}
	} else {
		cfg = config.Default()
	}

	// Logging.
	var lvl slog.Level
	switch cfg.Log.Level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	var handler slog.Handler
	if cfg.Log.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	secret, err := cfg.Secret()
	if err != nil {
		slog.Error("token secret", "error", err)
		os.Exit(1)
	}

	// Signal context.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Service DB: documents, folders, splines, writeback queue.
	db, err := dbopen.Open(cfg.Database.Path, dbopen.WithMkdirAll())
	if err != nil {
		slog.Error("open database", "path", cfg.Database.Path, "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := store.ApplySchema(db); err != nil {
		slog.Error("apply schema", "error", err)
		os.Exit(1)
	}
	if err := shield.Init(db); err != nil {
		slog.Error("init rate limits", "error", err)
		os.Exit(1)
	}
	st := store.NewStore(db)

	// Observability DB, kept separate so event writes never contend
	// with the drawing hot path.
	obsDB, err := dbopen.Open(cfg.Database.ObservabilityPath, dbopen.WithMkdirAll())
	if err != nil {
		slog.Error("open observability database", "path", cfg.Database.ObservabilityPath, "error", err)
		os.Exit(1)
	}
	defer obsDB.Close()
	if err := observability.Init(obsDB); err != nil {
		slog.Error("init observability schema", "error", err)
		os.Exit(1)
	}
	events := observability.NewEventLogger(obsDB)

	// Writeback queue and worker.
	queue := vtq.New(db, vtq.Options{
		Queue:        realtime.WritebackQueue,
		Visibility:   cfg.Writeback.VisibilityTimeout,
		PollInterval: cfg.Writeback.PollInterval,
		MaxAttempts:  cfg.Writeback.MaxAttempts,
		Logger:       logger,
	})
	if err := queue.EnsureTable(ctx); err != nil {
		slog.Error("init queue", "error", err)
		os.Exit(1)
	}
	writeback := realtime.NewWriteback(queue, st, logger)
	go writeback.Run(ctx)

	heartbeat := observability.NewHeartbeatWriter(obsDB, "spline_writeback", cfg.Writeback.HeartbeatInterval)
	heartbeat.Start(ctx)
	defer heartbeat.Stop()

	manager := realtime.NewManager(st, logger, writeback.PersistFunc())
	srv := server.New(cfg, st, manager, events, []byte(secret), logger)
	srv.StartRateLimitReloader(ctx.Done())

	// Server timeouts stop applying once the websocket upgrade hijacks
	// the connection; the realtime layer sets its own deadlines there.
	httpSrv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      srv.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown", "error", err)
		}
	}()

	slog.Info("nowte listening", "addr", cfg.Server.Addr)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server", "error", err)
		os.Exit(1)
	}
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
