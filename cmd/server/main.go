package main

import (
	"context"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/telecomtrends/internal/config"
	"github.com/JonMunkholm/telecomtrends/internal/core"
	"github.com/JonMunkholm/telecomtrends/internal/launcher"
	"github.com/JonMunkholm/telecomtrends/internal/logging"
	"github.com/JonMunkholm/telecomtrends/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	dataPath := cfg.Data.Path()
	slog.Info("configuration loaded",
		"addr", cfg.Server.Addr(),
		"data_file", dataPath,
		"mode", cfg.Dashboard.Mode,
		"chart_max_concurrent", cfg.Chart.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	service := core.NewService(dataPath, core.ParseMode(cfg.Dashboard.Mode), nil)

	// A bad data file is reported on the page, not fatal at startup.
	if snap, err := service.Snapshot(context.Background()); err != nil {
		slog.Error("data file not usable", "path", dataPath, "error", err, "code", core.MapError(err).Code)
	} else {
		slog.Info("data ready", "rows", snap.Table.Len(), "areas", len(snap.Areas), "indicators", len(snap.Indicators))
	}

	limiter := core.NewRenderLimiter(cfg.Chart.MaxConcurrent, cfg.Chart.MaxWait)
	server := web.NewServer(service, limiter, cfg)

	ln, err := net.Listen("tcp", cfg.Server.Addr())
	if err != nil {
		slog.Error("failed to listen", "addr", cfg.Server.Addr(), "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Serve(ln)
	}()

	launcher.Launch(ctx, cfg.Server.URL(), launcher.Options{
		Enabled:    cfg.Launcher.Enabled,
		Delay:      cfg.Launcher.Delay,
		ManagedEnv: cfg.Launcher.ManagedEnv,
	})

	select {
	case err := <-serveErr:
		if err != nil {
			slog.Error("server stopped", "error", err)
			os.Exit(1)
		}
		return
	case <-ctx.Done():
	}

	slog.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if active := limiter.Active(); active > 0 {
		slog.Info("waiting for chart renders to complete", "active", active)
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	<-serveErr
	slog.Info("server stopped")
}
