package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/GregMSThompson/copilot-dashboard/internal/dto"
	"github.com/GregMSThompson/copilot-dashboard/internal/errs"
	"github.com/GregMSThompson/copilot-dashboard/internal/models"
	"github.com/GregMSThompson/copilot-dashboard/pkg/logger"
)

// widgetStore is the two-tier widget persistence interface.
type widgetStore interface {
	List(ctx context.Context, sessionID string) ([]*models.Widget, error)
	Create(ctx context.Context, w *models.Widget) (*models.Widget, error)
	Update(ctx context.Context, id string, patch models.WidgetPatch) (*models.Widget, error)
	Delete(ctx context.Context, id string) error
}

type dashboardService struct {
	store widgetStore
	newID func() string
}

func NewDashboardService(store widgetStore) *dashboardService {
	return &dashboardService{store: store, newID: uuid.NewString}
}

// --- Public service methods ---

func (s *dashboardService) ListWidgets(ctx context.Context, sessionID string) ([]*models.Widget, error) {
	return s.store.List(ctx, sessionID)
}

// SaveChart keeps a generated chart. The name defaults to "Chart N" and the
// type to bar. Names are unique within a session.
func (s *dashboardService) SaveChart(ctx context.Context, sessionID string, req dto.SaveChartRequest) (*models.Widget, error) {
	if sessionID == "" {
		return nil, errs.NewValidationError("session id is required")
	}
	if len(req.Data) == 0 {
		return nil, errs.NewValidationError("chart data is required")
	}

	chartType := strings.TrimSpace(req.Type)
	if chartType == "" {
		chartType = models.WidgetTypeBar
	}
	if err := validateWidgetType(chartType); err != nil {
		return nil, err
	}

	existing, err := s.store.List(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Title)
	if name == "" {
		name = fmt.Sprintf("Chart %d", len(existing)+1)
	}
	if nameTaken(existing, name, "") {
		return nil, errs.NewAlreadyExistsError(fmt.Sprintf("a widget named %q already exists", name))
	}

	w, err := s.store.Create(ctx, &models.Widget{
		ID:        s.newID(),
		SessionID: sessionID,
		Name:      name,
		Type:      chartType,
		Data:      req.Data,
	})
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("widget saved", "widget_id", w.ID, "session_id", sessionID)
	return w, nil
}

// UpdateWidget patches a widget. A new name must be non-empty and not used by
// another widget in the session.
func (s *dashboardService) UpdateWidget(ctx context.Context, sessionID, widgetID string, req dto.UpdateWidgetRequest) (*models.Widget, error) {
	patch := models.WidgetPatch{Name: req.Name, Type: req.Type, Data: req.Data}
	if patch.IsEmpty() {
		return nil, errs.NewValidationError("nothing to update")
	}
	if patch.Type != nil {
		if err := validateWidgetType(*patch.Type); err != nil {
			return nil, err
		}
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, errs.NewValidationError("widget name cannot be empty")
		}
		patch.Name = &name

		if sessionID != "" {
			existing, err := s.store.List(ctx, sessionID)
			if err != nil {
				return nil, err
			}
			if nameTaken(existing, name, widgetID) {
				return nil, errs.NewAlreadyExistsError(fmt.Sprintf("a widget named %q already exists", name))
			}
		}
	}
	return s.store.Update(ctx, widgetID, patch)
}

func (s *dashboardService) RenameWidget(ctx context.Context, sessionID, widgetID, name string) (*models.Widget, error) {
	return s.UpdateWidget(ctx, sessionID, widgetID, dto.UpdateWidgetRequest{Name: &name})
}

// DeleteWidget removes a widget; unknown IDs are not an error.
func (s *dashboardService) DeleteWidget(ctx context.Context, widgetID string) error {
	return s.store.Delete(ctx, widgetID)
}

// --- Validation ---

func validateWidgetType(t string) error {
	if !models.IsValidWidgetType(t) {
		return errs.NewValidationError(fmt.Sprintf("widget type must be one of: %s, %s, %s (got %q)",
			models.WidgetTypeBar, models.WidgetTypePie, models.WidgetTypeLine, t))
	}
	return nil
}

func nameTaken(widgets []*models.Widget, name, exceptID string) bool {
	for _, w := range widgets {
		if w.Name == name && w.ID != exceptID {
			return true
		}
	}
	return false
}
