package dto

// Chat response kinds
const (
	ChatResponseText  = "text"
	ChatResponseChart = "chart"
)

type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse carries either a text answer or a chart payload in Response.
type ChatResponse struct {
	Type     string `json:"type"`
	Response any    `json:"response"`
}
