package dto

// --- Request types ---

// SaveChartRequest saves a chart produced in chat as a widget. Title and Type
// are optional; Data is the chart payload as rendered.
type SaveChartRequest struct {
	Title string         `json:"title"`
	Type  string         `json:"type"`
	Data  map[string]any `json:"data"`
}

// UpdateWidgetRequest is a partial update; omitted fields are unchanged.
type UpdateWidgetRequest struct {
	Name *string        `json:"name,omitempty"`
	Type *string        `json:"type,omitempty"`
	Data map[string]any `json:"data,omitempty"`
}

// RenameWidgetRequest changes only the display name.
type RenameWidgetRequest struct {
	Name string `json:"name"`
}

// --- Response types ---

type SessionResponse struct {
	SessionID string `json:"sessionId"`
}
