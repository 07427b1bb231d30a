package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tecnoperfil/portal-agent/internal/agent"
	"github.com/tecnoperfil/portal-agent/internal/intent"
)

type mockComposer struct {
	answer      agent.Answer
	err         error
	gotQuestion string
	gotPersona  agent.Persona
}

func (m *mockComposer) Compose(_ context.Context, question string, persona agent.Persona) (agent.Answer, error) {
	m.gotQuestion = question
	m.gotPersona = persona
	if m.err != nil {
		return agent.Answer{}, m.err
	}
	return m.answer, nil
}

func newAskMux(c Composer) *http.ServeMux {
	mux := http.NewServeMux()
	NewAskHandler(c, nil).RegisterRoutes(mux)
	return mux
}

func TestAsk_Success(t *testing.T) {
	composer := &mockComposer{
		answer: agent.Answer{
			Answer:    "A carteira tem 12 pedidos.",
			Sources:   []string{"consulta estruturada: carteira de encomendas"},
			QueryType: intent.PortfolioSummary,
		},
	}
	mux := newAskMux(composer)

	req := httptest.NewRequest(http.MethodPost, "/api/ask",
		strings.NewReader(`{"question":"resumo da carteira","persona":"vendas"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "A carteira tem 12 pedidos.")
	assert.Contains(t, rec.Body.String(), `"query_type":"portfolioSummary"`)
	assert.Contains(t, rec.Body.String(), `"persona":"sales"`)
	assert.Equal(t, "resumo da carteira", composer.gotQuestion)
	assert.Equal(t, agent.PersonaSales, composer.gotPersona)
}

func TestAsk_DefaultPersona(t *testing.T) {
	composer := &mockComposer{answer: agent.Answer{Answer: "ok"}}
	mux := newAskMux(composer)

	req := httptest.NewRequest(http.MethodPost, "/api/ask",
		strings.NewReader(`{"question":"pergunta"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, agent.DefaultPersona, composer.gotPersona)
}

func TestAsk_InvalidJSON(t *testing.T) {
	mux := newAskMux(&mockComposer{})

	req := httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_request")
}

func TestAsk_EmptyQuestion(t *testing.T) {
	mux := newAskMux(&mockComposer{err: agent.ErrEmptyQuestion})

	req := httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader(`{"question":""}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "empty_question")
}

func TestAsk_CompletionFailure(t *testing.T) {
	mux := newAskMux(&mockComposer{err: agent.ErrCompletion})

	req := httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader(`{"question":"q"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "completion_failed")
}

func TestAsk_InternalFailure(t *testing.T) {
	mux := newAskMux(&mockComposer{err: errors.New("database down")})

	req := httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader(`{"question":"q"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal_error")
}

func TestAsk_MethodNotAllowed(t *testing.T) {
	mux := newAskMux(&mockComposer{})

	req := httptest.NewRequest(http.MethodGet, "/api/ask", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestAsk_EmptySourcesSerializeAsArray(t *testing.T) {
	mux := newAskMux(&mockComposer{answer: agent.Answer{Answer: "ok", QueryType: intent.Semantic}})

	req := httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader(`{"question":"q"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"sources":[]`)
}
