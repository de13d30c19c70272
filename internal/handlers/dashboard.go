package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/copilot-dashboard/internal/dto"
	"github.com/GregMSThompson/copilot-dashboard/internal/middleware"
	"github.com/GregMSThompson/copilot-dashboard/internal/models"
	"github.com/GregMSThompson/copilot-dashboard/internal/response"
)

type dashboardService interface {
	ListWidgets(ctx context.Context, sessionID string) ([]*models.Widget, error)
	SaveChart(ctx context.Context, sessionID string, req dto.SaveChartRequest) (*models.Widget, error)
	UpdateWidget(ctx context.Context, sessionID, widgetID string, req dto.UpdateWidgetRequest) (*models.Widget, error)
	RenameWidget(ctx context.Context, sessionID, widgetID, name string) (*models.Widget, error)
	DeleteWidget(ctx context.Context, widgetID string) error
}

type dashboardHandlers struct {
	ResponseHandler response.ResponseHandler
	DashboardSvc    dashboardService
}

func NewDashboardHandlers(deps *Deps) *dashboardHandlers {
	return &dashboardHandlers{
		ResponseHandler: deps.ResponseHandler,
		DashboardSvc:    deps.DashboardSvc,
	}
}

func (h *dashboardHandlers) WidgetRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListWidgets)
	r.Post("/", h.SaveChart)
	r.Patch("/{widgetId}", h.UpdateWidget)
	r.Patch("/{widgetId}/name", h.RenameWidget)
	r.Delete("/{widgetId}", h.DeleteWidget)
	return r
}

func (h *dashboardHandlers) ListWidgets(w http.ResponseWriter, r *http.Request) {
	sid := middleware.SessionID(r.Context())
	widgets, err := h.DashboardSvc.ListWidgets(r.Context(), sid)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, widgets)
}

func (h *dashboardHandlers) SaveChart(w http.ResponseWriter, r *http.Request) {
	var req dto.SaveChartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	sid := middleware.SessionID(r.Context())
	widget, err := h.DashboardSvc.SaveChart(r.Context(), sid, req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, widget)
}

func (h *dashboardHandlers) UpdateWidget(w http.ResponseWriter, r *http.Request) {
	widgetID := chi.URLParam(r, "widgetId")
	var req dto.UpdateWidgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	sid := middleware.SessionID(r.Context())
	widget, err := h.DashboardSvc.UpdateWidget(r.Context(), sid, widgetID, req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, widget)
}

func (h *dashboardHandlers) RenameWidget(w http.ResponseWriter, r *http.Request) {
	widgetID := chi.URLParam(r, "widgetId")
	var req dto.RenameWidgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	sid := middleware.SessionID(r.Context())
	widget, err := h.DashboardSvc.RenameWidget(r.Context(), sid, widgetID, req.Name)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, widget)
}

// DeleteWidget always answers 200 for a well-formed request; deleting an
// unknown widget is not an error.
func (h *dashboardHandlers) DeleteWidget(w http.ResponseWriter, r *http.Request) {
	widgetID := chi.URLParam(r, "widgetId")
	if err := h.DashboardSvc.DeleteWidget(r.Context(), widgetID); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}

// GetSession reports the session the request was served under.
func (h *dashboardHandlers) GetSession(w http.ResponseWriter, r *http.Request) {
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, dto.SessionResponse{
		SessionID: middleware.SessionID(r.Context()),
	})
}
