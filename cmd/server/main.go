package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mikrosense/mikrosense/internal/config"
	httpapi "github.com/mikrosense/mikrosense/internal/http"
	"github.com/mikrosense/mikrosense/internal/mail"
	"github.com/mikrosense/mikrosense/internal/monitor"
	"github.com/mikrosense/mikrosense/internal/oui"
	"github.com/mikrosense/mikrosense/internal/session"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))

	ouiDB, err := oui.LoadEmbedded()
	if err != nil {
		logger.Error("failed to load oui db", "err", err)
		os.Exit(1)
	}

	registry := session.NewRegistry(session.Options{
		Secret:           cfg.JWTSecret,
		GraceWindow:      cfg.GraceWindow,
		AlertHistorySize: cfg.AlertHistorySize,
		HistoryRetention: cfg.HistoryRetention,
		Monitor: monitor.Options{
			Interval:    cfg.PollInterval,
			ScanTimeout: cfg.ScanTimeout,
			MaxFailures: cfg.MaxScanFailures,
			SweepEvery:  cfg.SweepInterval,
		},
		Mail: mail.Config{
			Host:      cfg.SMTPHost,
			Port:      cfg.SMTPPort,
			Username:  cfg.SMTPUsername,
			Password:  cfg.SMTPPassword,
			From:      cfg.EmailFrom,
			Recipient: cfg.AdminEmail,
		},
	}, ouiDB, logger)
	defer registry.CloseAll()

	api := httpapi.New(registry, logger)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      0, // websocket streams stay open indefinitely
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("server starting", "addr", httpServer.Addr)
	if err := httpapi.RunServer(ctx, httpServer, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server terminated with error", "err", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
