package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tecnoperfil/portal-agent/internal/document"
	"github.com/tecnoperfil/portal-agent/internal/extract"
	"github.com/tecnoperfil/portal-agent/internal/ingest"
)

type mockIngestor struct {
	result      ingest.Result
	err         error
	gotFilename string
	gotData     []byte
}

func (m *mockIngestor) Ingest(_ context.Context, filename string, data []byte) (ingest.Result, error) {
	m.gotFilename = filename
	m.gotData = data
	return m.result, m.err
}

type mockDocStore struct {
	docs      []document.Document
	listErr   error
	deleteErr error
	gotLimit  int
	gotID     string
}

func (m *mockDocStore) List(_ context.Context, limit int) ([]document.Document, error) {
	m.gotLimit = limit
	return m.docs, m.listErr
}

func (m *mockDocStore) Delete(_ context.Context, id string) error {
	m.gotID = id
	return m.deleteErr
}

func newDocsMux(i Ingestor, s DocumentStore) *http.ServeMux {
	mux := http.NewServeMux()
	NewDocumentsHandler(i, s, nil).RegisterRoutes(mux)
	return mux
}

func multipartUpload(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func TestUpload_Success(t *testing.T) {
	ingestor := &mockIngestor{
		result: ingest.Result{
			DocumentID:   "doc-1",
			FileKind:     extract.KindCSV,
			Characters:   42,
			Shape:        "orders",
			RowsUpserted: 2,
		},
	}
	mux := newDocsMux(ingestor, &mockDocStore{})

	body, contentType := multipartUpload(t, "carteira.csv", "Pedido,Cliente\n1001,Alubras\n")
	req := httptest.NewRequest(http.MethodPost, "/api/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"document_id":"doc-1"`)
	assert.Contains(t, rec.Body.String(), `"shape":"orders"`)
	assert.Contains(t, rec.Body.String(), `"rows_upserted":2`)
	assert.Equal(t, "carteira.csv", ingestor.gotFilename)
	assert.NotEmpty(t, ingestor.gotData)
}

func TestUpload_MissingFileField(t *testing.T) {
	mux := newDocsMux(&mockIngestor{}, &mockDocStore{})

	req := httptest.NewRequest(http.MethodPost, "/api/documents", bytes.NewReader(nil))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_upload")
}

func TestUpload_UnsupportedKind(t *testing.T) {
	ingestor := &mockIngestor{err: fmt.Errorf("%w: .png", extract.ErrUnsupportedKind)}
	mux := newDocsMux(ingestor, &mockDocStore{})

	body, contentType := multipartUpload(t, "foto.png", "binary")
	req := httptest.NewRequest(http.MethodPost, "/api/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestUpload_EmptyExtraction(t *testing.T) {
	ingestor := &mockIngestor{err: extract.ErrEmptyExtraction}
	mux := newDocsMux(ingestor, &mockDocStore{})

	body, contentType := multipartUpload(t, "vazio.txt", "   ")
	req := httptest.NewRequest(http.MethodPost, "/api/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestListDocuments(t *testing.T) {
	store := &mockDocStore{
		docs: []document.Document{
			{ID: "a", Filename: "manual.pdf", FileKind: extract.KindPDF,
				Content: "conteúdo", CreatedAt: time.Now()},
		},
	}
	mux := newDocsMux(&mockIngestor{}, store)

	req := httptest.NewRequest(http.MethodGet, "/api/documents", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "manual.pdf")
	assert.Equal(t, defaultListLimit, store.gotLimit)
}

func TestListDocuments_CustomLimit(t *testing.T) {
	store := &mockDocStore{}
	mux := newDocsMux(&mockIngestor{}, store)

	req := httptest.NewRequest(http.MethodGet, "/api/documents?limit=5", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, store.gotLimit)
}

func TestListDocuments_InvalidLimit(t *testing.T) {
	mux := newDocsMux(&mockIngestor{}, &mockDocStore{})

	for _, limit := range []string{"0", "-1", "9999", "abc"} {
		req := httptest.NewRequest(http.MethodGet, "/api/documents?limit="+limit, nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "limit=%s", limit)
	}
}

func TestDeleteDocument(t *testing.T) {
	store := &mockDocStore{}
	mux := newDocsMux(&mockIngestor{}, store)

	req := httptest.NewRequest(http.MethodDelete, "/api/documents/doc-1", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "doc-1", store.gotID)
}

func TestDeleteDocument_NotFound(t *testing.T) {
	store := &mockDocStore{deleteErr: fmt.Errorf("%w: doc-x", document.ErrNotFound)}
	mux := newDocsMux(&mockIngestor{}, store)

	req := httptest.NewRequest(http.MethodDelete, "/api/documents/doc-x", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteDocument_StoreFailure(t *testing.T) {
	store := &mockDocStore{deleteErr: errors.New("connection refused")}
	mux := newDocsMux(&mockIngestor{}, store)

	req := httptest.NewRequest(http.MethodDelete, "/api/documents/doc-1", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
