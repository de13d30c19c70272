package vertexclient

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/vertexai/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/GregMSThompson/copilot-dashboard/internal/dto"
	"github.com/GregMSThompson/copilot-dashboard/internal/errs"
)

type Adapter struct {
	client *genai.Client
	model  string
	log    *slog.Logger
}

func NewAdapter(ctx context.Context, log *slog.Logger, projectID, region, model string) (*Adapter, error) {
	client, err := genai.NewClient(ctx, projectID, region)
	if err != nil {
		return nil, err
	}

	return &Adapter{
		client: client,
		model:  model,
		log:    log,
	}, nil
}

func (a *Adapter) Close() error {
	err := a.client.Close()
	if err != nil && a.log != nil {
		a.log.Error("vertex adapter close failed", "error", err)
	}
	return err
}

// GenerateContent runs a single-turn generation and returns the concatenated
// text plus any function calls the model made.
func (a *Adapter) GenerateContent(ctx context.Context, req dto.VertexGenerateRequest) (dto.VertexGenerateResponse, error) {
	out := dto.VertexGenerateResponse{}

	modelName := req.Model
	if modelName == "" {
		modelName = a.model
	}
	if modelName == "" {
		return out, fmt.Errorf("vertex model is required")
	}
	if req.UserMessage == "" {
		return out, fmt.Errorf("vertex generate request has no content")
	}

	model := a.client.GenerativeModel(modelName)
	if req.System != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(req.System)},
		}
	}
	if req.Temperature != nil {
		model.SetTemperature(*req.Temperature)
	}
	if req.MaxOutputTokens != nil {
		model.SetMaxOutputTokens(*req.MaxOutputTokens)
	}
	if req.JSONResponse {
		model.ResponseMIMEType = "application/json"
	}
	if len(req.Tools) > 0 {
		model.Tools = toGenaiTools(req.Tools)
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.UserMessage))
	if err != nil {
		return out, classify(err)
	}
	if blocked(resp) {
		return out, errs.NewExternalServiceError("vertex", "response blocked by safety filters", false, nil)
	}
	if resp.UsageMetadata != nil && a.log != nil {
		a.log.DebugContext(ctx, "vertex generation",
			"model", modelName,
			"prompt_tokens", resp.UsageMetadata.PromptTokenCount,
			"output_tokens", resp.UsageMetadata.CandidatesTokenCount,
		)
	}

	out.Raw = resp
	out.Text, out.ToolCalls = parseContentResponse(resp)
	return out, nil
}

// classify marks quota, timeout and availability failures as transient; the
// rest (bad request, permissions, unknown model) will not succeed on retry.
func classify(err error) error {
	switch status.Code(err) {
	case codes.Unavailable, codes.ResourceExhausted, codes.DeadlineExceeded, codes.Aborted, codes.Internal:
		return errs.NewExternalServiceError("vertex", "model temporarily unavailable", true, err)
	case codes.InvalidArgument, codes.PermissionDenied, codes.NotFound, codes.Unauthenticated, codes.FailedPrecondition:
		return errs.NewExternalServiceError("vertex", "model request rejected", false, err)
	default:
		return errs.NewExternalServiceError("vertex", "model request failed", true, err)
	}
}

func blocked(resp *genai.GenerateContentResponse) bool {
	if resp == nil {
		return false
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockedReasonUnspecified {
		return true
	}
	return len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason == genai.FinishReasonSafety
}

func parseContentResponse(resp *genai.GenerateContentResponse) (string, []dto.VertexToolCall) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", nil
	}

	// Only the first candidate is used; the others are alternatives, not continuations.
	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return "", nil
	}

	var text string
	var calls []dto.VertexToolCall
	for _, part := range candidate.Content.Parts {
		switch p := part.(type) {
		case genai.Text:
			text += string(p)
		case genai.FunctionCall:
			calls = append(calls, dto.VertexToolCall{Name: p.Name, Args: p.Args})
		case *genai.FunctionCall:
			calls = append(calls, dto.VertexToolCall{Name: p.Name, Args: p.Args})
		}
	}
	return text, calls
}

func toGenaiTools(tools []dto.VertexTool) []*genai.Tool {
	decls := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, tool := range tools {
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        tool.Name,
			Description: tool.Description,
			Parameters:  toGenaiSchema(tool.Parameters),
		})
	}
	return []*genai.Tool{{FunctionDeclarations: decls}}
}

func toGenaiSchema(schema *dto.VertexSchema) *genai.Schema {
	if schema == nil {
		return nil
	}

	out := &genai.Schema{
		Type:        toGenaiType(schema.Type),
		Description: schema.Description,
		Enum:        schema.Enum,
		Required:    schema.Required,
	}
	if schema.Items != nil {
		out.Items = toGenaiSchema(schema.Items)
	}
	if len(schema.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(schema.Properties))
		for key, value := range schema.Properties {
			out.Properties[key] = toGenaiSchema(value)
		}
	}
	return out
}

func toGenaiType(schemaType string) genai.Type {
	switch schemaType {
	case "object":
		return genai.TypeObject
	case "array":
		return genai.TypeArray
	case "string":
		return genai.TypeString
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	default:
		return genai.TypeUnspecified
	}
}

// Disabled stands in for the adapter when no Google Cloud project is
// configured. Every call fails with a permanent ExternalServiceError.
type Disabled struct{}

func (Disabled) GenerateContent(context.Context, dto.VertexGenerateRequest) (dto.VertexGenerateResponse, error) {
	return dto.VertexGenerateResponse{}, errs.NewExternalServiceError("vertex", "model is not configured", false, nil)
}
