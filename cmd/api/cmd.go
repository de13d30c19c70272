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

	"github.com/GregMSThompson/copilot-dashboard/internal/bootstrap"
	"github.com/GregMSThompson/copilot-dashboard/internal/config"
	"github.com/GregMSThompson/copilot-dashboard/internal/handlers"
	"github.com/GregMSThompson/copilot-dashboard/internal/response"
	"github.com/GregMSThompson/copilot-dashboard/internal/router"
	"github.com/GregMSThompson/copilot-dashboard/internal/services"
	"github.com/GregMSThompson/copilot-dashboard/internal/store"
)

func exitOnError(message string, err error, log *slog.Logger) {
	if err != nil {
		log.Error(message, "error", err)
		os.Exit(1)
	}
}

func main() {
	// config
	cfg, err := config.New()
	exitOnError("config failed", err, slog.Default())

	// bootstrap
	bs, err := bootstrap.Run(cfg)
	if err != nil {
		log := bs.Log
		if log == nil {
			log = slog.Default()
		}
		bs.Close()
		exitOnError("bootstrap failed", err, log)
	}
	defer bs.Close()

	// stores
	remote := store.NewRemoteWidgetStore(bs.Firestore)
	local := store.NewLocalWidgetStore(bs.LocalStore, bs.Sessions)
	if n, err := local.Prune(context.Background()); err != nil {
		bs.Log.Warn("local bucket sweep failed", "error", err)
	} else if n > 0 {
		bs.Log.Info("removed empty local buckets", "count", n)
	}
	wstore := store.NewWidgetStore(remote, local)

	// services
	dserv := services.NewDashboardService(wstore)
	mserv := services.NewMetricsService(bs.Vertex, services.MetricsOptions{
		TTL:        cfg.MetricsTTL,
		MaxRetries: cfg.MetricsRetries,
		RetryDelay: cfg.MetricsRetryDelay,
	})
	cserv := services.NewChatService(bs.Vertex)

	// response handler
	rh := response.New(bs.Log)

	// dependencies
	deps := new(handlers.Deps)
	deps.Log = bs.Log
	deps.ResponseHandler = rh
	deps.Sessions = bs.Sessions
	deps.DashboardSvc = dserv
	deps.MetricsSvc = mserv
	deps.ChatSvc = cserv

	// router
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			bs.Log.Error("server shutdown failed", "error", err)
		}
	}()

	bs.Log.Info("server listening", "addr", srv.Addr, "remote", cfg.RemoteEnabled())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		bs.Close()
		exitOnError("server start failed", err, bs.Log)
	}
}
