package handlers

import (
	"context"
	"net/http"

	"github.com/GregMSThompson/copilot-dashboard/internal/models"
	"github.com/GregMSThompson/copilot-dashboard/internal/response"
)

type metricsService interface {
	GetMetrics(ctx context.Context) (*models.DashboardMetrics, error)
}

type metricsHandlers struct {
	ResponseHandler response.ResponseHandler
	MetricsSvc      metricsService
}

func NewMetricsHandlers(deps *Deps) *metricsHandlers {
	return &metricsHandlers{
		ResponseHandler: deps.ResponseHandler,
		MetricsSvc:      deps.MetricsSvc,
	}
}

func (h *metricsHandlers) GetMetrics(w http.ResponseWriter, r *http.Request) {
	m, err := h.MetricsSvc.GetMetrics(r.Context())
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, m)
}
