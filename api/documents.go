package api

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/docchat/docchat/internal/extract"
	"github.com/docchat/docchat/internal/log"
	"github.com/docchat/docchat/internal/rag"
)

// maxUploadBytes caps the multipart form size for uploads.
const maxUploadBytes = 32 << 20

// documentsHandler serves document upload and reset.
type documentsHandler struct {
	engine    *rag.Engine
	uploadDir string
	logger    log.Logger
}

// uploadResponse is the success payload for POST /api/upload.
type uploadResponse struct {
	OK          bool   `json:"ok"`
	Filename    string `json:"filename"`
	ChunksAdded int    `json:"chunks_added"`
}

// upload ingests one uploaded document. The file is sent as the multipart
// form field "file"; PDF, DOCX, TXT and Markdown are accepted.
func (h *documentsHandler) upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file field found")
		return
	}
	defer func() { _ = file.Close() }()

	if header.Filename == "" {
		writeError(w, http.StatusBadRequest, "no file selected")
		return
	}
	if !extract.Supported(header.Filename) {
		writeError(w, http.StatusBadRequest, "unsupported file. Upload PDF, DOCX, or TXT.")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	h.retain(header.Filename, data)

	text, err := extract.Text(bytes.NewReader(data), header.Filename)
	if err != nil {
		if errors.Is(err, extract.ErrUnsupportedType) {
			writeError(w, http.StatusBadRequest, "unsupported file. Upload PDF, DOCX, or TXT.")
			return
		}
		h.logger.Error("document extraction failed", "filename", header.Filename, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to process file")
		return
	}

	added, err := h.engine.Ingest(r.Context(), header.Filename, text)
	if err != nil {
		h.logger.Error("document ingestion failed", "filename", header.Filename, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to process file")
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{
		OK:          true,
		Filename:    header.Filename,
		ChunksAdded: added,
	})
}

// retain keeps a copy of the uploaded file when an upload directory is
// configured. Retention failure does not block ingestion.
func (h *documentsHandler) retain(filename string, data []byte) {
	if h.uploadDir == "" {
		return
	}
	if err := os.MkdirAll(h.uploadDir, 0o750); err != nil {
		h.logger.Warn("creating upload directory failed", "dir", h.uploadDir, "error", err)
		return
	}
	path := filepath.Join(h.uploadDir, filepath.Base(filename))
	if err := os.WriteFile(path, data, 0o640); err != nil {
		h.logger.Warn("retaining upload failed", "path", path, "error", err)
	}
}

// reset removes all ingested documents and the vector index.
func (h *documentsHandler) reset(w http.ResponseWriter, _ *http.Request) {
	if err := h.engine.Reset(); err != nil {
		h.logger.Error("document reset failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to reset documents")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
