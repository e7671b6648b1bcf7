package api

import (
	"net/http"

	"github.com/docchat/docchat/internal/history"
	"github.com/docchat/docchat/internal/log"
)

// historyHandler serves the conversation transcript.
type historyHandler struct {
	store  *history.Store
	logger log.Logger
}

// list returns the full transcript in chronological order.
func (h *historyHandler) list(w http.ResponseWriter, _ *http.Request) {
	turns, err := h.store.Load()
	if err != nil {
		h.logger.Error("loading transcript failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	if turns == nil {
		turns = []history.Turn{}
	}
	writeJSON(w, http.StatusOK, turns)
}

// clear truncates the transcript.
func (h *historyHandler) clear(w http.ResponseWriter, _ *http.Request) {
	if err := h.store.Clear(); err != nil {
		h.logger.Error("clearing transcript failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to clear history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
