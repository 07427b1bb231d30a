package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/tecnoperfil/portal-agent/internal/chatlog"
	"github.com/tecnoperfil/portal-agent/internal/log"
)

// ExchangeStore lists and clears recorded Q&A exchanges.
type ExchangeStore interface {
	ListRecent(ctx context.Context, limit int) ([]chatlog.Exchange, error)
	DeleteAll(ctx context.Context) (int64, error)
}

// ExchangeInfo is one exchange in a listing response.
type ExchangeInfo struct {
	ID          string    `json:"id"`
	Question    string    `json:"question"`
	Answer      string    `json:"answer"`
	ContextUsed []string  `json:"context_used"`
	CreatedAt   time.Time `json:"created_at"`
}

// ExchangesHandler handles the exchange audit endpoints.
type ExchangesHandler struct {
	store  ExchangeStore
	logger log.Logger
}

// NewExchangesHandler creates an exchanges handler.
func NewExchangesHandler(store ExchangeStore, logger log.Logger) *ExchangesHandler {
	if logger == nil {
		logger = log.NewNop()
	}
	return &ExchangesHandler{store: store, logger: logger}
}

// RegisterRoutes registers exchange routes on the given mux.
func (h *ExchangesHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/exchanges", h.list)
	mux.HandleFunc("DELETE /api/exchanges", h.clear)
}

func (h *ExchangesHandler) list(w http.ResponseWriter, r *http.Request) {
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

	exchanges, err := h.store.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger.Error("listing exchanges failed", "error", err)
		writeError(h.logger, w, http.StatusInternalServerError, "internal_error", "failed to list exchanges")
		return
	}

	infos := make([]ExchangeInfo, 0, len(exchanges))
	for _, e := range exchanges {
		contextUsed := e.ContextUsed
		if contextUsed == nil {
			contextUsed = []string{}
		}
		infos = append(infos, ExchangeInfo{
			ID:          e.ID.String(),
			Question:    e.Question,
			Answer:      e.Answer,
			ContextUsed: contextUsed,
			CreatedAt:   e.CreatedAt,
		})
	}
	writeJSON(h.logger, w, http.StatusOK, map[string]any{"exchanges": infos})
}

func (h *ExchangesHandler) clear(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.store.DeleteAll(r.Context())
	if err != nil {
		h.logger.Error("clearing exchanges failed", "error", err)
		writeError(h.logger, w, http.StatusInternalServerError, "internal_error", "failed to clear exchanges")
		return
	}
	writeJSON(h.logger, w, http.StatusOK, map[string]any{"deleted": deleted})
}
