package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/GregMSThompson/copilot-dashboard/internal/dto"
	"github.com/GregMSThompson/copilot-dashboard/internal/errs"
	"github.com/GregMSThompson/copilot-dashboard/internal/response"
)

type chatService interface {
	Chat(ctx context.Context, message string) (dto.ChatResponse, error)
}

type chatHandlers struct {
	ResponseHandler response.ResponseHandler
	ChatSvc         chatService
}

func NewChatHandlers(deps *Deps) *chatHandlers {
	return &chatHandlers{
		ResponseHandler: deps.ResponseHandler,
		ChatSvc:         deps.ChatSvc,
	}
}

func (h *chatHandlers) Chat(w http.ResponseWriter, r *http.Request) {
	var body dto.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	if body.Message == "" {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("message is required"))
		return
	}

	resp, err := h.ChatSvc.Chat(r.Context(), body.Message)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, resp)
}
