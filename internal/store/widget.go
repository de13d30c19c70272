package store

import (
	"context"

	"github.com/GregMSThompson/copilot-dashboard/internal/errs"
	"github.com/GregMSThompson/copilot-dashboard/internal/models"
	"github.com/GregMSThompson/copilot-dashboard/pkg/logger"
)

// widgetTier is one persistence backend behind the widget store.
type widgetTier interface {
	List(ctx context.Context, sessionID string) ([]*models.Widget, error)
	Create(ctx context.Context, w *models.Widget) (*models.Widget, error)
	Update(ctx context.Context, id string, patch models.WidgetPatch) (*models.Widget, error)
	Delete(ctx context.Context, id string) error
}

// widgetStore tries the remote tier first and, on any remote error, repeats the
// same call against the local tier. Exactly one tier commits a write; nothing
// is copied between tiers afterwards. When both fail the local error is
// returned and the remote one is only logged.
type widgetStore struct {
	remote widgetTier
	local  widgetTier
}

func NewWidgetStore(remote, local widgetTier) *widgetStore {
	return &widgetStore{remote: remote, local: local}
}

// List returns the session's widgets newest first, never nil.
func (s *widgetStore) List(ctx context.Context, sessionID string) ([]*models.Widget, error) {
	if sessionID == "" {
		return nil, errs.NewValidationError("session id is required")
	}
	widgets, err := withFallback(ctx, "list",
		func() ([]*models.Widget, error) { return s.remote.List(ctx, sessionID) },
		func() ([]*models.Widget, error) { return s.local.List(ctx, sessionID) },
		"session_id", sessionID,
	)
	if err != nil {
		return nil, err
	}
	if widgets == nil {
		widgets = make([]*models.Widget, 0)
	}
	return widgets, nil
}

// Create persists w and returns it with CreatedAt set by the committing tier.
// It checks that the identifying fields are present but does not check that
// Type is a known chart kind; that is the caller's job.
func (s *widgetStore) Create(ctx context.Context, w *models.Widget) (*models.Widget, error) {
	switch {
	case w == nil:
		return nil, errs.NewValidationError("widget is required")
	case w.ID == "":
		return nil, errs.NewValidationError("widget id is required")
	case w.SessionID == "":
		return nil, errs.NewValidationError("session id is required")
	case w.Name == "":
		return nil, errs.NewValidationError("widget name is required")
	case w.Type == "":
		return nil, errs.NewValidationError("widget type is required")
	}
	return withFallback(ctx, "create",
		func() (*models.Widget, error) { return s.remote.Create(ctx, w) },
		func() (*models.Widget, error) { return s.local.Create(ctx, w) },
		"widget_id", w.ID, "session_id", w.SessionID,
	)
}

// Update applies patch and returns the full record, or NotFoundError when the
// consulted tier has no widget with that ID.
func (s *widgetStore) Update(ctx context.Context, id string, patch models.WidgetPatch) (*models.Widget, error) {
	if id == "" {
		return nil, errs.NewValidationError("widget id is required")
	}
	return withFallback(ctx, "update",
		func() (*models.Widget, error) { return s.remote.Update(ctx, id, patch) },
		func() (*models.Widget, error) { return s.local.Update(ctx, id, patch) },
		"widget_id", id,
	)
}

// Delete removes the widget. Deleting an unknown ID is deliberately a silent
// no-op so repeated deletes never fail.
func (s *widgetStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return errs.NewValidationError("widget id is required")
	}
	_, err := withFallback(ctx, "delete",
		func() (struct{}, error) { return struct{}{}, s.remote.Delete(ctx, id) },
		func() (struct{}, error) { return struct{}{}, s.local.Delete(ctx, id) },
		"widget_id", id,
	)
	return err
}

func withFallback[T any](ctx context.Context, op string, remote, local func() (T, error), attrs ...any) (T, error) {
	out, err := remote()
	if err == nil {
		return out, nil
	}

	log := logger.FromContext(ctx)
	args := append([]any{"operation", op, "kind", errs.Kind(err), "error", err}, attrs...)
	log.Warn("remote widget store failed, using local fallback", args...)

	out, err = local()
	if err != nil {
		log.Error("local widget store failed", append([]any{"operation", op, "error", err}, attrs...)...)
	}
	return out, err
}
