package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dgnsrekt/preview_agent/internal/api"
	"github.com/dgnsrekt/preview_agent/internal/browser"
	"github.com/dgnsrekt/preview_agent/internal/config"
	"github.com/dgnsrekt/preview_agent/internal/desktop"
	"github.com/dgnsrekt/preview_agent/internal/devtools"
	"github.com/dgnsrekt/preview_agent/internal/lifecycle"
	"github.com/dgnsrekt/preview_agent/internal/netutil"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := setupLogger(cfg.LogLevel, cfg.LogFile); err != nil {
		if _, writeErr := io.WriteString(os.Stderr, "logger setup failed: "+err.Error()+"\n"); writeErr != nil {
			slog.Debug("logger setup stderr write failed", "error", writeErr)
		}
		os.Exit(1)
	}

	slog.Info("preview_agent config loaded",
		"bind_addr", cfg.BindAddr,
		"debug_port", cfg.DebugPort,
		"profile_root", cfg.ProfileRoot,
		"heartbeat_ms", cfg.HeartbeatMS,
		"close_timeout_ms", cfg.CloseTimeoutMS,
		"log_level", cfg.LogLevel,
		"log_file", cfg.LogFile,
	)

	bindAddr, err := netutil.SelectBindAddr(cfg.BindAddr, cfg.PortCandidates, cfg.PortAutoFallback)
	if err != nil {
		slog.Error("failed to select bind address", "preferred", cfg.BindAddr, "error", err)
		os.Exit(1)
	}

	locator := browser.NewLocator(cfg.BrowserPath)
	launcher := browser.NewLauncher(locator, cfg.DebugPort)
	desk := desktop.NewProcDesktop()
	matcher := desktop.NewMatcher(locator.Locate)
	dt := devtools.NewClient(cfg.DevtoolsURL())

	manager := lifecycle.NewManager(launcher, desk, matcher, lifecycle.Options{
		Heartbeat:    time.Duration(cfg.HeartbeatMS) * time.Millisecond,
		CloseTimeout: time.Duration(cfg.CloseTimeoutMS) * time.Millisecond,
		Devtools:     dt,
	})
	defer manager.Shutdown()

	srv := &http.Server{Addr: bindAddr, Handler: api.NewServer(manager, dt)}

	go func() {
		slog.Info("preview_agent listening", "addr", bindAddr, "docs", "http://"+bindAddr+"/docs")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("preview_agent server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("preview_agent shutdown failed", "error", err)
	}
}

func setupLogger(level, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return err
	}

	logWriter := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    25,
		MaxBackups: 10,
		MaxAge:     14,
		Compress:   true,
	}

	var slogLevel slog.Level
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	h := slog.NewTextHandler(io.MultiWriter(os.Stdout, logWriter), &slog.HandlerOptions{Level: slogLevel})
	slog.SetDefault(slog.New(h))
	return nil
}
