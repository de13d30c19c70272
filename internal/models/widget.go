package models

import "time"

// Chart kinds a widget can render as.
const (
	WidgetTypeBar  = "bar"
	WidgetTypePie  = "pie"
	WidgetTypeLine = "line"
)

// Widget is a saved chart. The same struct is written to Firestore and, minus
// the session ID, to the local fallback store.
type Widget struct {
	ID        string         `firestore:"id" json:"id"`
	SessionID string         `firestore:"session_id" json:"session_id"`
	Name      string         `firestore:"name" json:"name"`
	Type      string         `firestore:"type" json:"type"`
	Data      map[string]any `firestore:"data" json:"data"`
	CreatedAt time.Time      `firestore:"created_at" json:"created_at"`
}

// WidgetPatch is a partial update. Nil fields are left as they are.
type WidgetPatch struct {
	Name *string        `json:"name,omitempty"`
	Type *string        `json:"type,omitempty"`
	Data map[string]any `json:"data,omitempty"`
}

func (p WidgetPatch) IsEmpty() bool {
	return p.Name == nil && p.Type == nil && p.Data == nil
}

// Apply returns a copy of w with the patch fields laid over it.
func (p WidgetPatch) Apply(w Widget) Widget {
	if p.Name != nil {
		w.Name = *p.Name
	}
	if p.Type != nil {
		w.Type = *p.Type
	}
	if p.Data != nil {
		w.Data = p.Data
	}
	return w
}

// IsValidWidgetType reports whether t is one of the supported chart kinds.
func IsValidWidgetType(t string) bool {
	switch t {
	case WidgetTypeBar, WidgetTypePie, WidgetTypeLine:
		return true
	}
	return false
}
