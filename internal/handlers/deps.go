package handlers

import (
	"context"
	"log/slog"

	"github.com/GregMSThompson/copilot-dashboard/internal/response"
)

type sessionProvider interface {
	SessionID(ctx context.Context) (string, error)
}

type Deps struct {
	Log             *slog.Logger
	ResponseHandler response.ResponseHandler
	Sessions        sessionProvider
	DashboardSvc    dashboardService
	MetricsSvc      metricsService
	ChatSvc         chatService
}
