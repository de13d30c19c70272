package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/GregMSThompson/copilot-dashboard/internal/errs"
	"github.com/GregMSThompson/copilot-dashboard/internal/localstore"
	"github.com/GregMSThompson/copilot-dashboard/internal/models"
	"github.com/GregMSThompson/copilot-dashboard/internal/session"
	"github.com/GregMSThompson/copilot-dashboard/pkg/helpers"
)

// --- Fakes ---

type fakeTier struct {
	widgets   map[string]*models.Widget
	err       error
	calls     []string
	createdAt time.Time
}

func newFakeTier() *fakeTier {
	return &fakeTier{
		widgets:   make(map[string]*models.Widget),
		createdAt: time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (f *fakeTier) List(_ context.Context, sessionID string) ([]*models.Widget, error) {
	f.calls = append(f.calls, "list")
	if f.err != nil {
		return nil, f.err
	}
	var out []*models.Widget
	for _, w := range f.widgets {
		if w.SessionID == sessionID {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f *fakeTier) Create(_ context.Context, w *models.Widget) (*models.Widget, error) {
	f.calls = append(f.calls, "create")
	if f.err != nil {
		return nil, f.err
	}
	out := *w
	out.CreatedAt = f.createdAt
	f.widgets[w.ID] = &out
	return &out, nil
}

func (f *fakeTier) Update(_ context.Context, id string, patch models.WidgetPatch) (*models.Widget, error) {
	f.calls = append(f.calls, "update")
	if f.err != nil {
		return nil, f.err
	}
	w, ok := f.widgets[id]
	if !ok {
		return nil, errs.NewNotFoundError("widget not found")
	}
	updated := patch.Apply(*w)
	f.widgets[id] = &updated
	return &updated, nil
}

func (f *fakeTier) Delete(_ context.Context, id string) error {
	f.calls = append(f.calls, "delete")
	if f.err != nil {
		return f.err
	}
	delete(f.widgets, id)
	return nil
}

func remoteDown() *fakeTier {
	f := newFakeTier()
	f.err = errs.NewRemoteUnavailableError("any", "connection refused", errors.New("dial tcp"))
	return f
}

func salesWidget() *models.Widget {
	return &models.Widget{
		ID:        "w1",
		SessionID: "s1",
		Name:      "Sales",
		Type:      models.WidgetTypeBar,
		Data:      map[string]any{"labels": []any{"Jan", "Feb"}},
	}
}

// --- Facade with fakes ---

func TestWidgetStore_RemoteSuccessSkipsLocal(t *testing.T) {
	remote, local := newFakeTier(), newFakeTier()
	s := NewWidgetStore(remote, local)

	w, err := s.Create(helpers.TestCtx(), salesWidget())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.CreatedAt.IsZero() {
		t.Error("expected created_at to be assigned")
	}
	if len(local.calls) != 0 {
		t.Errorf("local tier should not be touched, got calls %v", local.calls)
	}
	if _, ok := remote.widgets["w1"]; !ok {
		t.Error("expected widget in remote tier")
	}
}

func TestWidgetStore_FallsBackOnRemoteError(t *testing.T) {
	remote, local := remoteDown(), newFakeTier()
	s := NewWidgetStore(remote, local)
	ctx := helpers.TestCtx()

	if _, err := s.Create(ctx, salesWidget()); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, ok := local.widgets["w1"]; !ok {
		t.Fatal("expected widget written to local tier")
	}
	if _, ok := remote.widgets["w1"]; ok {
		t.Fatal("widget must not be written to both tiers")
	}

	list, err := s.List(ctx, "s1")
	if err != nil || len(list) != 1 {
		t.Fatalf("list: got %d widgets, err %v", len(list), err)
	}
}

func TestWidgetStore_SchemaMissingFallsBack(t *testing.T) {
	remote, local := newFakeTier(), newFakeTier()
	remote.err = errs.NewSchemaMissingError("list", "index missing", nil)
	s := NewWidgetStore(remote, local)

	if _, err := s.List(helpers.TestCtx(), "s1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(local.calls) != 1 || local.calls[0] != "list" {
		t.Errorf("expected one local list call, got %v", local.calls)
	}
}

func TestWidgetStore_BothFailReturnsLocalError(t *testing.T) {
	remote, local := remoteDown(), newFakeTier()
	localErr := errs.NewLocalStorageError("create", "disk full", nil)
	local.err = localErr
	s := NewWidgetStore(remote, local)

	_, err := s.Create(helpers.TestCtx(), salesWidget())
	if !errors.Is(err, localErr) {
		t.Fatalf("expected local error, got %T: %v", err, err)
	}
	var ru *errs.RemoteUnavailableError
	if errors.As(err, &ru) {
		t.Fatal("remote error should be swallowed once fallback was attempted")
	}
}

func TestWidgetStore_ListEmptyNotNil(t *testing.T) {
	s := NewWidgetStore(newFakeTier(), newFakeTier())

	list, err := s.List(helpers.TestCtx(), "nobody")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", list)
	}
}

func TestWidgetStore_Validation(t *testing.T) {
	remote, local := newFakeTier(), newFakeTier()
	s := NewWidgetStore(remote, local)
	ctx := helpers.TestCtx()
	var ve *errs.ValidationError

	if _, err := s.List(ctx, ""); !errors.As(err, &ve) {
		t.Errorf("list: expected ValidationError, got %v", err)
	}
	missingName := salesWidget()
	missingName.Name = ""
	if _, err := s.Create(ctx, missingName); !errors.As(err, &ve) {
		t.Errorf("create: expected ValidationError, got %v", err)
	}
	if _, err := s.Update(ctx, "", models.WidgetPatch{}); !errors.As(err, &ve) {
		t.Errorf("update: expected ValidationError, got %v", err)
	}
	if err := s.Delete(ctx, ""); !errors.As(err, &ve) {
		t.Errorf("delete: expected ValidationError, got %v", err)
	}
	if len(remote.calls)+len(local.calls) != 0 {
		t.Error("validation failures must not reach any tier")
	}
}

func TestWidgetStore_CreateDoesNotCheckChartKind(t *testing.T) {
	s := NewWidgetStore(newFakeTier(), newFakeTier())
	w := salesWidget()
	w.Type = "scatter"

	if _, err := s.Create(helpers.TestCtx(), w); err != nil {
		t.Fatalf("store should accept any non-empty type, got %v", err)
	}
}

// --- Facade over the real local tier with the remote unconfigured ---

func newFallbackStore(t *testing.T) (*widgetStore, context.Context) {
	t.Helper()
	kv, err := localstore.Open(filepath.Join(t.TempDir(), "local.db"))
	if err != nil {
		t.Fatalf("open local store: %v", err)
	}
	t.Cleanup(func() { kv.Close() })

	local := NewLocalWidgetStore(kv, session.NewProvider(kv))
	s := NewWidgetStore(NewRemoteWidgetStore(nil), local)
	return s, session.ToContext(helpers.TestCtx(), "s1")
}

func TestFallback_CreateThenList(t *testing.T) {
	s, ctx := newFallbackStore(t)

	if _, err := s.Create(ctx, salesWidget()); err != nil {
		t.Fatalf("create: %v", err)
	}

	list, err := s.List(ctx, "s1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected exactly one widget, got %d", len(list))
	}
	got := list[0]
	if got.Name != "Sales" || got.Type != models.WidgetTypeBar || got.ID != "w1" {
		t.Errorf("unexpected widget: %+v", got)
	}
	if got.SessionID != "s1" {
		t.Errorf("expected session id restored on read, got %q", got.SessionID)
	}
	if got.CreatedAt.IsZero() {
		t.Error("expected generated created_at")
	}
}

func TestFallback_Rename(t *testing.T) {
	s, ctx := newFallbackStore(t)

	if _, err := s.Create(ctx, salesWidget()); err != nil {
		t.Fatalf("create: %v", err)
	}
	updated, err := s.Update(ctx, "w1", models.WidgetPatch{Name: helpers.Ptr("Sales v2")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Sales v2" || updated.SessionID != "s1" {
		t.Errorf("unexpected updated widget: %+v", updated)
	}

	list, err := s.List(ctx, "s1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list[0].Name != "Sales v2" {
		t.Errorf("expected renamed widget first, got %q", list[0].Name)
	}
}

func TestFallback_UpdateMissingIsNotFound(t *testing.T) {
	s, ctx := newFallbackStore(t)

	_, err := s.Update(ctx, "ghost", models.WidgetPatch{Name: helpers.Ptr("x")})
	var nfe *errs.NotFoundError
	if !errors.As(err, &nfe) {
		t.Fatalf("expected NotFoundError, got %T: %v", err, err)
	}
}

func TestFallback_DeleteMissingAndTwice(t *testing.T) {
	s, ctx := newFallbackStore(t)

	if err := s.Delete(ctx, "ghost"); err != nil {
		t.Fatalf("delete of unknown id should be a no-op, got %v", err)
	}

	if _, err := s.Create(ctx, salesWidget()); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Delete(ctx, "w1"); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := s.Delete(ctx, "w1"); err != nil {
		t.Fatalf("second delete: %v", err)
	}

	list, err := s.List(ctx, "s1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("expected no widgets, got %d", len(list))
	}
}

func TestFallback_ListNewestFirst(t *testing.T) {
	s, ctx := newFallbackStore(t)
	local := s.local.(*localWidgetStore)

	base := time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		at := base.Add(time.Duration(i) * time.Minute)
		local.clockNow = func() time.Time { return at }
		w := salesWidget()
		w.ID, w.Name = id, "chart "+id
		if _, err := s.Create(ctx, w); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}

	list, err := s.List(ctx, "s1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 widgets, got %d", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i].CreatedAt.After(list[i-1].CreatedAt) {
			t.Fatalf("widgets not newest first at %d: %v after %v", i, list[i].CreatedAt, list[i-1].CreatedAt)
		}
	}
	if list[0].ID != "c" {
		t.Errorf("expected newest widget c first, got %s", list[0].ID)
	}
}
