package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/docchat/docchat/internal/chat"
	"github.com/docchat/docchat/internal/log"
)

// maxChatBodyBytes caps the chat request body.
const maxChatBodyBytes = 1 << 20

// chatHandler serves the conversation endpoint.
type chatHandler struct {
	assistant *chat.Assistant
	logger    log.Logger
}

// chatRequest is the payload for POST /api/chat.
type chatRequest struct {
	Message string `json:"message"`
}

// send answers one conversation turn.
func (h *chatHandler) send(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxChatBodyBytes))
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.assistant.Reply(r.Context(), req.Message)
	if err != nil {
		if errors.Is(err, chat.ErrEmptyMessage) {
			writeError(w, http.StatusBadRequest, "empty message")
			return
		}
		h.logger.Error("chat turn failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to answer message")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
