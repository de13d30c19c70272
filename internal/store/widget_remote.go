package store

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/GregMSThompson/copilot-dashboard/internal/errs"
	"github.com/GregMSThompson/copilot-dashboard/internal/models"
)

const widgetsCollection = "widgets"

// remoteWidgetStore keeps widgets in the top-level Firestore collection
// "widgets", one document per widget ID. Listing needs the composite index
// (session_id ASC, created_at DESC); without it Firestore answers
// FailedPrecondition, which is reported as SchemaMissingError.
type remoteWidgetStore struct {
	client   *firestore.Client
	clockNow func() time.Time
}

// NewRemoteWidgetStore accepts a nil client: every call then fails with
// RemoteUnavailableError so callers fall back to local storage.
func NewRemoteWidgetStore(client *firestore.Client) *remoteWidgetStore {
	return &remoteWidgetStore{client: client, clockNow: time.Now}
}

func (s *remoteWidgetStore) collection() *firestore.CollectionRef {
	return s.client.Collection(widgetsCollection)
}

func (s *remoteWidgetStore) ready(op string) error {
	if s.client == nil {
		return errs.NewRemoteUnavailableError(op, "remote widget store is not configured", nil)
	}
	return nil
}

func (s *remoteWidgetStore) List(ctx context.Context, sessionID string) ([]*models.Widget, error) {
	if err := s.ready("list"); err != nil {
		return nil, err
	}

	iter := s.collection().
		Where("session_id", "==", sessionID).
		OrderBy("created_at", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	widgets := make([]*models.Widget, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, classify("list", "failed to list widgets", err)
		}
		var w models.Widget
		if err := doc.DataTo(&w); err != nil {
			return nil, errs.NewRemoteUnavailableError("list", "failed to parse widget data", err)
		}
		widgets = append(widgets, &w)
	}
	return widgets, nil
}

func (s *remoteWidgetStore) Create(ctx context.Context, w *models.Widget) (*models.Widget, error) {
	if err := s.ready("create"); err != nil {
		return nil, err
	}

	out := *w
	out.CreatedAt = s.clockNow().UTC()
	if _, err := s.collection().Doc(out.ID).Create(ctx, out); err != nil {
		return nil, classify("create", "failed to create widget", err)
	}
	return &out, nil
}

func (s *remoteWidgetStore) Update(ctx context.Context, id string, patch models.WidgetPatch) (*models.Widget, error) {
	if err := s.ready("update"); err != nil {
		return nil, err
	}

	ref := s.collection().Doc(id)
	if updates := toFirestoreUpdates(patch); len(updates) > 0 {
		if _, err := ref.Update(ctx, updates); err != nil {
			return nil, classify("update", "failed to update widget", err)
		}
	}

	doc, err := ref.Get(ctx)
	if err != nil {
		return nil, classify("update", "failed to read updated widget", err)
	}
	var w models.Widget
	if err := doc.DataTo(&w); err != nil {
		return nil, errs.NewRemoteUnavailableError("update", "failed to parse widget data", err)
	}
	return &w, nil
}

// Delete succeeds for IDs that do not exist; Firestore deletes are idempotent.
func (s *remoteWidgetStore) Delete(ctx context.Context, id string) error {
	if err := s.ready("delete"); err != nil {
		return err
	}
	if _, err := s.collection().Doc(id).Delete(ctx); err != nil {
		return classify("delete", "failed to delete widget", err)
	}
	return nil
}

func toFirestoreUpdates(patch models.WidgetPatch) []firestore.Update {
	var updates []firestore.Update
	if patch.Name != nil {
		updates = append(updates, firestore.Update{Path: "name", Value: *patch.Name})
	}
	if patch.Type != nil {
		updates = append(updates, firestore.Update{Path: "type", Value: *patch.Type})
	}
	if patch.Data != nil {
		updates = append(updates, firestore.Update{Path: "data", Value: patch.Data})
	}
	return updates
}

// classify turns a Firestore/gRPC error into one of the typed remote errors.
func classify(op, message string, err error) error {
	switch status.Code(err) {
	case codes.NotFound:
		return errs.NewNotFoundError("widget not found")
	case codes.FailedPrecondition:
		return errs.NewSchemaMissingError(op, message, err)
	default:
		return errs.NewRemoteUnavailableError(op, message, err)
	}
}
