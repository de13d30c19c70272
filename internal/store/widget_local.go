package store

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/GregMSThompson/copilot-dashboard/internal/errs"
	"github.com/GregMSThompson/copilot-dashboard/internal/models"
)

const localBucketPrefix = "widgets_"

type kvStore interface {
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}

type activeSession interface {
	Active(ctx context.Context) (string, error)
}

// localWidget is the stored form: the session ID is implied by the bucket key.
type localWidget struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Type      string         `json:"type"`
	Data      map[string]any `json:"data"`
	CreatedAt time.Time      `json:"created_at"`
}

// localWidgetStore keeps one JSON array per session under "widgets_<session>".
//
// Update and Delete only look in the active session's bucket (request session,
// else the process session). A widget saved under another session is not found.
// The mutex serializes read-modify-write inside this process only; two
// processes sharing the same file can still lose a write.
type localWidgetStore struct {
	kv       kvStore
	sessions activeSession
	clockNow func() time.Time

	mu sync.Mutex
}

func NewLocalWidgetStore(kv kvStore, sessions activeSession) *localWidgetStore {
	return &localWidgetStore{kv: kv, sessions: sessions, clockNow: time.Now}
}

func bucketKey(sessionID string) string {
	return localBucketPrefix + sessionID
}

func (s *localWidgetStore) List(ctx context.Context, sessionID string) ([]*models.Widget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(ctx, "list", sessionID)
}

// Create prepends w with a fresh created_at. An existing record with the same
// ID in the bucket is replaced.
func (s *localWidgetStore) Create(ctx context.Context, w *models.Widget) (*models.Widget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.read(ctx, "create", w.SessionID)
	if err != nil {
		return nil, err
	}

	out := *w
	out.CreatedAt = s.clockNow().UTC()

	widgets := make([]*models.Widget, 0, len(existing)+1)
	widgets = append(widgets, &out)
	for _, e := range existing {
		if e.ID != out.ID {
			widgets = append(widgets, e)
		}
	}
	if err := s.write(ctx, "create", w.SessionID, widgets); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *localWidgetStore) Update(ctx context.Context, id string, patch models.WidgetPatch) (*models.Widget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessionID, err := s.sessions.Active(ctx)
	if err != nil {
		return nil, errs.NewLocalStorageError("update", "failed to resolve active session", err)
	}
	widgets, err := s.read(ctx, "update", sessionID)
	if err != nil {
		return nil, err
	}

	idx := indexOf(widgets, id)
	if idx == -1 {
		return nil, errs.NewNotFoundError("widget not found")
	}
	updated := patch.Apply(*widgets[idx])
	widgets[idx] = &updated

	if err := s.write(ctx, "update", sessionID, widgets); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete is best effort: an ID missing from the active bucket is a no-op,
// not an error.
func (s *localWidgetStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessionID, err := s.sessions.Active(ctx)
	if err != nil {
		return errs.NewLocalStorageError("delete", "failed to resolve active session", err)
	}
	widgets, err := s.read(ctx, "delete", sessionID)
	if err != nil {
		return err
	}

	idx := indexOf(widgets, id)
	if idx == -1 {
		return nil
	}
	widgets = append(widgets[:idx], widgets[idx+1:]...)
	if len(widgets) == 0 {
		if err := s.kv.RemoveItem(ctx, bucketKey(sessionID)); err != nil {
			return errs.NewLocalStorageError("delete", "failed to remove empty bucket", err)
		}
		return nil
	}
	return s.write(ctx, "delete", sessionID, widgets)
}

// Prune drops widget buckets that hold no widgets and reports how many went.
// Buckets that fail to decode are left alone.
func (s *localWidgetStore) Prune(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, err := s.kv.Keys(ctx, localBucketPrefix)
	if err != nil {
		return 0, errs.NewLocalStorageError("prune", "failed to list local buckets", err)
	}
	removed := 0
	for _, key := range keys {
		raw, ok, err := s.kv.GetItem(ctx, key)
		if err != nil {
			return removed, errs.NewLocalStorageError("prune", "failed to read local bucket", err)
		}
		if ok && !emptyBucket(raw) {
			continue
		}
		if err := s.kv.RemoveItem(ctx, key); err != nil {
			return removed, errs.NewLocalStorageError("prune", "failed to remove local bucket", err)
		}
		removed++
	}
	return removed, nil
}

func emptyBucket(raw string) bool {
	if strings.TrimSpace(raw) == "" {
		return true
	}
	var stored []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return false
	}
	return len(stored) == 0
}

// read loads a bucket newest first with the session ID re-attached.
func (s *localWidgetStore) read(ctx context.Context, op, sessionID string) ([]*models.Widget, error) {
	raw, ok, err := s.kv.GetItem(ctx, bucketKey(sessionID))
	if err != nil {
		return nil, errs.NewLocalStorageError(op, "failed to read local widgets", err)
	}
	widgets := make([]*models.Widget, 0)
	if !ok || raw == "" {
		return widgets, nil
	}

	var stored []localWidget
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return nil, errs.NewLocalStorageError(op, "failed to decode local widgets", err)
	}
	for _, lw := range stored {
		widgets = append(widgets, &models.Widget{
			ID:        lw.ID,
			SessionID: sessionID,
			Name:      lw.Name,
			Type:      lw.Type,
			Data:      lw.Data,
			CreatedAt: lw.CreatedAt,
		})
	}
	sort.SliceStable(widgets, func(i, j int) bool {
		return widgets[i].CreatedAt.After(widgets[j].CreatedAt)
	})
	return widgets, nil
}

func (s *localWidgetStore) write(ctx context.Context, op, sessionID string, widgets []*models.Widget) error {
	stored := make([]localWidget, 0, len(widgets))
	for _, w := range widgets {
		createdAt := w.CreatedAt
		if createdAt.IsZero() {
			createdAt = s.clockNow().UTC()
		}
		stored = append(stored, localWidget{
			ID:        w.ID,
			Name:      w.Name,
			Type:      w.Type,
			Data:      w.Data,
			CreatedAt: createdAt,
		})
	}

	b, err := json.Marshal(stored)
	if err != nil {
		return errs.NewLocalStorageError(op, "failed to encode local widgets", err)
	}
	if err := s.kv.SetItem(ctx, bucketKey(sessionID), string(b)); err != nil {
		return errs.NewLocalStorageError(op, "failed to write local widgets", err)
	}
	return nil
}

func indexOf(widgets []*models.Widget, id string) int {
	for i, w := range widgets {
		if w.ID == id {
			return i
		}
	}
	return -1
}
