package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tecnoperfil/portal-agent/internal/agent"
	"github.com/tecnoperfil/portal-agent/internal/log"
)

// maxAskBodyBytes bounds the /api/ask request body.
const maxAskBodyBytes = 64 * 1024

// Composer answers portal questions.
type Composer interface {
	Compose(ctx context.Context, question string, persona agent.Persona) (agent.Answer, error)
}

// AskRequest is the /api/ask request body.
type AskRequest struct {
	Question string `json:"question"`
	Persona  string `json:"persona,omitempty"`
}

// AskResponse is the /api/ask response body.
type AskResponse struct {
	Answer    string   `json:"answer"`
	Sources   []string `json:"sources"`
	QueryType string   `json:"query_type"`
	Persona   string   `json:"persona"`
}

// AskHandler handles question answering.
type AskHandler struct {
	composer Composer
	logger   log.Logger
}

// NewAskHandler creates an ask handler.
func NewAskHandler(composer Composer, logger log.Logger) *AskHandler {
	if logger == nil {
		logger = log.NewNop()
	}
	return &AskHandler{composer: composer, logger: logger}
}

// RegisterRoutes registers the ask route on the given mux.
func (h *AskHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/ask", h.ask)
}

func (h *AskHandler) ask(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAskBodyBytes)

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(h.logger, w, http.StatusBadRequest, "invalid_request", "request body must be valid JSON")
		return
	}

	persona := agent.ParsePersona(req.Persona)

	answer, err := h.composer.Compose(r.Context(), req.Question, persona)
	if err != nil {
		switch {
		case errors.Is(err, agent.ErrEmptyQuestion):
			writeError(h.logger, w, http.StatusBadRequest, "empty_question", "question must not be empty")
		case errors.Is(err, agent.ErrCompletion):
			h.logger.Error("completion failed", "error", err)
			writeError(h.logger, w, http.StatusBadGateway, "completion_failed", "the model could not produce an answer")
		default:
			h.logger.Error("answering question failed", "error", err)
			writeError(h.logger, w, http.StatusInternalServerError, "internal_error", "failed to answer the question")
		}
		return
	}

	sources := answer.Sources
	if sources == nil {
		sources = []string{}
	}
	writeJSON(h.logger, w, http.StatusOK, AskResponse{
		Answer:    answer.Answer,
		Sources:   sources,
		QueryType: string(answer.QueryType),
		Persona:   string(persona),
	})
}
