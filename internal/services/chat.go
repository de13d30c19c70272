package services

import (
	"context"
	"strings"

	"github.com/GregMSThompson/copilot-dashboard/internal/dto"
	"github.com/GregMSThompson/copilot-dashboard/internal/errs"
	"github.com/GregMSThompson/copilot-dashboard/internal/models"
	"github.com/GregMSThompson/copilot-dashboard/pkg/helpers"
	"github.com/GregMSThompson/copilot-dashboard/pkg/logger"
)

const renderChartTool = "render_chart"

const chatSystemPrompt = `You are the assistant of an analytics dashboard.
Answer questions briefly. When the user asks for a visualization, or when numbers are easier to read as a chart,
call render_chart with a title, a chart type (bar, pie or line), the labels and one or more datasets.
Do not describe the chart in text when you call the tool.`

type chatService struct {
	vertex vertexClient
}

func NewChatService(vertex vertexClient) *chatService {
	return &chatService{vertex: vertex}
}

// Chat answers one message, either with text or with a chart payload ready
// to be saved as a widget.
func (s *chatService) Chat(ctx context.Context, message string) (dto.ChatResponse, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return dto.ChatResponse{}, errs.NewValidationError("message is required")
	}

	resp, err := s.vertex.GenerateContent(ctx, dto.VertexGenerateRequest{
		System:          chatSystemPrompt,
		UserMessage:     message,
		Tools:           []dto.VertexTool{renderChartSchema()},
		Temperature:     helpers.Ptr(float32(0.4)),
		MaxOutputTokens: helpers.Ptr(int32(2048)),
	})
	if err != nil {
		if permanent(err) {
			return dto.ChatResponse{}, err
		}
		return dto.ChatResponse{}, errs.NewExternalServiceError("vertex", "chat request failed", true, err)
	}

	for _, call := range resp.ToolCalls {
		if call.Name != renderChartTool {
			logger.FromContext(ctx).Warn("model requested unknown tool", "tool", call.Name)
			continue
		}
		return dto.ChatResponse{Type: dto.ChatResponseChart, Response: normalizeChart(call.Args)}, nil
	}

	return dto.ChatResponse{Type: dto.ChatResponseText, Response: resp.Text}, nil
}

// normalizeChart fills in the fields the chart layer relies on.
func normalizeChart(args map[string]any) map[string]any {
	chart := make(map[string]any, len(args))
	for k, v := range args {
		chart[k] = v
	}
	if t, _ := chart["type"].(string); !models.IsValidWidgetType(t) {
		chart["type"] = models.WidgetTypeBar
	}
	if title, _ := chart["title"].(string); strings.TrimSpace(title) == "" {
		delete(chart, "title")
	}
	return chart
}

func renderChartSchema() dto.VertexTool {
	return dto.VertexTool{
		Name:        renderChartTool,
		Description: "Render a chart in the chat. The user may save it to the dashboard.",
		Parameters: &dto.VertexSchema{
			Type:     "object",
			Required: []string{"title", "type", "labels", "datasets"},
			Properties: map[string]*dto.VertexSchema{
				"title": {Type: "string", Description: "Short chart title"},
				"type": {
					Type: "string",
					Enum: []string{models.WidgetTypeBar, models.WidgetTypePie, models.WidgetTypeLine},
				},
				"labels": {
					Type:        "array",
					Description: "Category or x-axis labels",
					Items:       &dto.VertexSchema{Type: "string"},
				},
				"datasets": {
					Type: "array",
					Items: &dto.VertexSchema{
						Type:     "object",
						Required: []string{"label", "data"},
						Properties: map[string]*dto.VertexSchema{
							"label": {Type: "string"},
							"data":  {Type: "array", Items: &dto.VertexSchema{Type: "number"}},
						},
					},
				},
			},
		},
	}
}
