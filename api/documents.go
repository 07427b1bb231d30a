package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/tecnoperfil/portal-agent/internal/document"
	"github.com/tecnoperfil/portal-agent/internal/extract"
	"github.com/tecnoperfil/portal-agent/internal/ingest"
	"github.com/tecnoperfil/portal-agent/internal/log"
)

const (
	// maxUploadBytes bounds one uploaded file.
	maxUploadBytes = 20 << 20 // 20 MiB

	// defaultListLimit is the default page size for document listings.
	defaultListLimit = 50

	// maxListLimit caps the page size for document listings.
	maxListLimit = 500
)

// Ingestor runs the ingestion pipeline for an uploaded file.
type Ingestor interface {
	Ingest(ctx context.Context, filename string, data []byte) (ingest.Result, error)
}

// DocumentStore lists and deletes ingested documents.
type DocumentStore interface {
	List(ctx context.Context, limit int) ([]document.Document, error)
	Delete(ctx context.Context, id string) error
}

// DocumentInfo is one document in a listing response.
type DocumentInfo struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	FileKind   string    `json:"file_kind"`
	Characters int       `json:"characters"`
	CreatedAt  time.Time `json:"created_at"`
}

// IngestResponse is the upload response body.
type IngestResponse struct {
	DocumentID   string `json:"document_id"`
	FileKind     string `json:"file_kind"`
	Characters   int    `json:"characters"`
	Degraded     bool   `json:"degraded"`
	Shape        string `json:"shape,omitempty"`
	RowsUpserted int    `json:"rows_upserted,omitempty"`
}

// DocumentsHandler handles document ingestion and management.
type DocumentsHandler struct {
	ingestor Ingestor
	store    DocumentStore
	logger   log.Logger
}

// NewDocumentsHandler creates a documents handler.
func NewDocumentsHandler(ingestor Ingestor, store DocumentStore, logger log.Logger) *DocumentsHandler {
	if logger == nil {
		logger = log.NewNop()
	}
	return &DocumentsHandler{ingestor: ingestor, store: store, logger: logger}
}

// RegisterRoutes registers document routes on the given mux.
func (h *DocumentsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/documents", h.upload)
	mux.HandleFunc("GET /api/documents", h.list)
	mux.HandleFunc("DELETE /api/documents/{id}", h.delete)
}

// upload ingests one multipart-uploaded file under the "file" form field.
func (h *DocumentsHandler) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(h.logger, w, http.StatusBadRequest, "invalid_upload",
			`request must be multipart/form-data with a "file" field`)
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(h.logger, w, http.StatusBadRequest, "invalid_upload", "failed to read uploaded file")
		return
	}

	result, err := h.ingestor.Ingest(r.Context(), header.Filename, data)
	if err != nil {
		switch {
		case errors.Is(err, extract.ErrUnsupportedKind):
			writeError(h.logger, w, http.StatusUnsupportedMediaType, "unsupported_file_kind", err.Error())
		case errors.Is(err, extract.ErrEmptyExtraction):
			writeError(h.logger, w, http.StatusUnprocessableEntity, "empty_file", "no text could be extracted from the file")
		default:
			h.logger.Error("ingestion failed", "filename", header.Filename, "error", err)
			writeError(h.logger, w, http.StatusInternalServerError, "internal_error", "failed to ingest the file")
		}
		return
	}

	writeJSON(h.logger, w, http.StatusCreated, IngestResponse{
		DocumentID:   result.DocumentID,
		FileKind:     result.FileKind,
		Characters:   result.Characters,
		Degraded:     result.Degraded,
		Shape:        result.Shape,
		RowsUpserted: result.RowsUpserted,
	})
}

func (h *DocumentsHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxListLimit {
			writeError(h.logger, w, http.StatusBadRequest, "invalid_limit",
				"limit must be an integer between 1 and "+strconv.Itoa(maxListLimit))
			return
		}
		limit = n
	}

	docs, err := h.store.List(r.Context(), limit)
	if err != nil {
		h.logger.Error("listing documents failed", "error", err)
		writeError(h.logger, w, http.StatusInternalServerError, "internal_error", "failed to list documents")
		return
	}

	infos := make([]DocumentInfo, 0, len(docs))
	for _, d := range docs {
		infos = append(infos, DocumentInfo{
			ID:         d.ID,
			Filename:   d.Filename,
			FileKind:   d.FileKind,
			Characters: len(d.Content),
			CreatedAt:  d.CreatedAt,
		})
	}
	writeJSON(h.logger, w, http.StatusOK, map[string]any{"documents": infos})
}

func (h *DocumentsHandler) delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(h.logger, w, http.StatusBadRequest, "invalid_id", "document id is required")
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, document.ErrNotFound) {
			writeError(h.logger, w, http.StatusNotFound, "not_found", "document does not exist")
			return
		}
		h.logger.Error("deleting document failed", "id", id, "error", err)
		writeError(h.logger, w, http.StatusInternalServerError, "internal_error", "failed to delete document")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
