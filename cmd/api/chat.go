package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"folio/internal/chat"
)

type ChatPayload struct {
	Message             string         `json:"message" validate:"required,max=2000"`
	ConversationHistory []chat.Message `json:"conversationHistory" validate:"omitempty,dive"`
}

type ChatResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message"`
	Role    string `json:"role" example:"assistant"`
}

// chatHandler godoc
//
//	@Summary		Chat with the site assistant
//	@Description	Forwards the message and the tail of the conversation to the AI provider. Nothing is stored.
//	@Tags			Chat
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		ChatPayload	true	"Message and history"
//	@Success		200		{object}	ChatResponse
//	@Failure		400		{object}	error
//	@Failure		502		{object}	error
//	@Router			/chat [post]
func (app *application) chatHandler(w http.ResponseWriter, r *http.Request) {
	var payload ChatPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 45*time.Second)
	defer cancel()

	reply, err := app.chat.Reply(ctx, payload.Message, payload.ConversationHistory)
	if err != nil {
		switch {
		case errors.Is(err, chat.ErrEmptyMessage):
			app.badRequestResponse(w, r, err)
		case errors.Is(err, chat.ErrNotConfigured):
			app.logger.Errorw("chat not configured", "error", err.Error())
			writeJSONError(w, http.StatusInternalServerError, "chat service is not configured")
		case errors.Is(err, chat.ErrUpstream):
			app.logger.Errorw("chat provider failed", "error", err.Error())
			writeJSONError(w, http.StatusBadGateway, "the assistant is unavailable right now")
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{Success: true, Message: reply, Role: chat.RoleAssistant})
}
