// Package ingest runs the document ingestion pipeline: extract text,
// embed it, persist the document, and enrich the structured tables when
// the upload is tabular.
//
// The pipeline degrades instead of failing where it can: an embedding
// failure stores the document with a zero vector (it stays reachable
// through the recency fallback), and a structured enrichment failure
// never loses the document itself.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tecnoperfil/portal-agent/internal/carteira"
	"github.com/tecnoperfil/portal-agent/internal/document"
	"github.com/tecnoperfil/portal-agent/internal/extract"
	"github.com/tecnoperfil/portal-agent/internal/log"
	"github.com/tecnoperfil/portal-agent/internal/sheet"
)

// ErrPersistence indicates the document could not be stored. Unlike
// embedding and enrichment failures, this one is fatal to the upload.
var ErrPersistence = errors.New("document persistence failed")

// Embedder generates one embedding per text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// DocumentWriter persists documents with their embeddings.
type DocumentWriter interface {
	Upsert(ctx context.Context, doc document.Document, embedding []float32) error
}

// RecordWriter persists structured records in batches.
type RecordWriter interface {
	UpsertOrders(ctx context.Context, records []carteira.OrderRecord, batchSize int) error
	UpsertTools(ctx context.Context, records []carteira.ToolRecord, batchSize int) error
}

// Config bounds the pipeline. Values come from the application config.
type Config struct {
	EmbeddingDim    int
	UpsertBatchSize int
}

// Result reports what one ingestion produced.
type Result struct {
	DocumentID string
	FileKind   string
	Characters int

	// Degraded is set when the document was stored with a zero vector
	// because embedding failed.
	Degraded bool

	// Shape and RowsUpserted describe structured enrichment for tabular
	// uploads. Shape is empty for non-tabular files.
	Shape        string
	RowsUpserted int
}

// Pipeline ingests uploaded files.
type Pipeline struct {
	extractor *extract.Service
	embedder  Embedder
	docs      DocumentWriter
	records   RecordWriter
	cfg       Config
	logger    log.Logger

	now func() time.Time
}

// New creates a Pipeline.
func New(extractor *extract.Service, embedder Embedder, docs DocumentWriter, records RecordWriter, cfg Config, logger log.Logger) *Pipeline {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Pipeline{
		extractor: extractor,
		embedder:  embedder,
		docs:      docs,
		records:   records,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// Ingest processes one uploaded file. The file kind is inferred from the
// filename extension.
func (p *Pipeline) Ingest(ctx context.Context, filename string, data []byte) (Result, error) {
	kind, err := extract.KindFromFilename(filename)
	if err != nil {
		return Result{}, err
	}

	text, err := p.extractor.Text(ctx, kind, data)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		DocumentID: uuid.NewString(),
		FileKind:   kind,
		Characters: len(text),
	}

	embedding, err := p.embedder.Embed(ctx, text)
	if err != nil {
		p.logger.Warn("embedding failed, storing document with zero vector",
			"filename", filename, "error", err)
		embedding = make([]float32, p.cfg.EmbeddingDim)
		res.Degraded = true
	}

	doc := document.Document{
		ID:        res.DocumentID,
		Content:   text,
		Filename:  filename,
		FileKind:  kind,
		CreatedAt: p.now().UTC(),
	}
	if err := p.docs.Upsert(ctx, doc, embedding); err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	if extract.IsTabular(kind) {
		p.enrich(ctx, kind, filename, data, &res)
	}

	p.logger.Info("ingested document",
		"id", res.DocumentID, "filename", filename, "kind", kind,
		"characters", res.Characters, "degraded", res.Degraded,
		"shape", res.Shape, "rows", res.RowsUpserted)
	return res, nil
}

// enrich classifies a tabular upload and upserts its rows into the
// structured tables. Failures are logged and swallowed: the document is
// already stored and still answers semantic questions.
func (p *Pipeline) enrich(ctx context.Context, kind, filename string, data []byte, res *Result) {
	rows, err := p.extractor.Rows(ctx, kind, data)
	if err != nil {
		p.logger.Warn("row extraction failed, skipping structured enrichment",
			"filename", filename, "error", err)
		return
	}

	shape := sheet.ClassifyRows(rows)
	res.Shape = shape.String()
	now := p.now().UTC()

	switch shape {
	case sheet.ShapeOrders:
		records := sheet.MapOrders(rows, filename, now)
		if err := p.records.UpsertOrders(ctx, records, p.cfg.UpsertBatchSize); err != nil {
			p.logger.Warn("order upsert failed", "filename", filename, "error", err)
			return
		}
		res.RowsUpserted = len(records)

	case sheet.ShapeTools:
		records := sheet.MapTools(rows, filename, now)
		if err := p.records.UpsertTools(ctx, records, p.cfg.UpsertBatchSize); err != nil {
			p.logger.Warn("tool upsert failed", "filename", filename, "error", err)
			return
		}
		res.RowsUpserted = len(records)

	default:
		p.logger.Debug("tabular upload matched no structured shape", "filename", filename)
	}

	if res.RowsUpserted > 0 {
		p.logger.Info("structured enrichment complete",
			"filename", filename, "shape", res.Shape,
			"rows", res.RowsUpserted,
			"batches", carteira.Chunks(res.RowsUpserted, p.cfg.UpsertBatchSize))
	}
}
