// Package extract converts uploaded files into plain text and, for tabular
// kinds, into header-keyed rows.
//
// The portal treats format parsing as an external capability: PDF and Word
// extraction are registered by the caller, while plain text and CSV are
// built in. The ingestion pipeline only depends on the Service interface
// surface, never on a concrete parser.
package extract

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// File kind identifiers accepted by the ingestion API.
const (
	KindText        = "text"
	KindPDF         = "pdf"
	KindWord        = "word-document"
	KindCSV         = "tabular-csv"
	KindSpreadsheet = "tabular-spreadsheet"
)

var (
	// ErrUnsupportedKind indicates no extractor is registered for the kind.
	ErrUnsupportedKind = errors.New("unsupported file kind")

	// ErrEmptyExtraction indicates extraction produced no usable text.
	ErrEmptyExtraction = errors.New("no text could be extracted")
)

// TextFunc extracts plain text from raw file bytes.
type TextFunc func(ctx context.Context, data []byte) (string, error)

// RowsFunc parses raw tabular file bytes into header-keyed rows.
type RowsFunc func(ctx context.Context, data []byte) ([]map[string]string, error)

// Service dispatches extraction by file kind.
// The zero value is not usable; call New.
type Service struct {
	text map[string]TextFunc
	rows map[string]RowsFunc
}

// New creates a Service with the built-in text and CSV extractors
// registered. PDF, Word and spreadsheet parsing are external collaborators;
// register them with RegisterText / RegisterRows.
func New() *Service {
	s := &Service{
		text: make(map[string]TextFunc),
		rows: make(map[string]RowsFunc),
	}
	s.RegisterText(KindText, extractPlainText)
	s.RegisterText(KindCSV, extractCSVText)
	s.RegisterRows(KindCSV, parseCSVRows)
	return s
}

// RegisterText registers a plain-text extractor for a file kind,
// replacing any existing one.
func (s *Service) RegisterText(kind string, fn TextFunc) {
	s.text[kind] = fn
}

// RegisterRows registers a tabular row parser for a file kind,
// replacing any existing one.
func (s *Service) RegisterRows(kind string, fn RowsFunc) {
	s.rows[kind] = fn
}

// Text extracts plain text from the file.
// Returns ErrUnsupportedKind when no extractor is registered for the kind
// and ErrEmptyExtraction when the result is empty or whitespace-only.
func (s *Service) Text(ctx context.Context, kind string, data []byte) (string, error) {
	fn, ok := s.text[kind]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedKind, kind)
	}

	text, err := fn(ctx, data)
	if err != nil {
		return "", fmt.Errorf("extracting text from %s: %w", kind, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyExtraction
	}
	return text, nil
}

// Rows parses the file into header-keyed rows for structured ingestion.
// Returns ErrUnsupportedKind when the kind has no registered row parser.
func (s *Service) Rows(ctx context.Context, kind string, data []byte) ([]map[string]string, error) {
	fn, ok := s.rows[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q has no row parser", ErrUnsupportedKind, kind)
	}
	return fn(ctx, data)
}

// IsTabular reports whether the kind carries row-shaped data that should
// go through structured ingestion.
func IsTabular(kind string) bool {
	return kind == KindCSV || kind == KindSpreadsheet
}

// KindFromFilename infers the file kind from the filename extension.
// Returns ErrUnsupportedKind for unknown extensions.
func KindFromFilename(name string) (string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".md":
		return KindText, nil
	case ".pdf":
		return KindPDF, nil
	case ".docx":
		return KindWord, nil
	case ".csv":
		return KindCSV, nil
	case ".xlsx", ".xls":
		return KindSpreadsheet, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedKind, filepath.Ext(name))
	}
}

// extractPlainText validates and returns the raw bytes as text.
func extractPlainText(_ context.Context, data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", errors.New("file is not valid UTF-8 text")
	}
	return string(data), nil
}

// extractCSVText renders a CSV file as comma-joined lines, mirroring how
// the document content is stored for retrieval.
func extractCSVText(_ context.Context, data []byte) (string, error) {
	records, err := readCSV(data)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, record := range records {
		b.WriteString(strings.Join(record, ", "))
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// parseCSVRows parses CSV bytes into header-keyed rows.
// The first record is the header; short rows are padded with empty values.
func parseCSVRows(_ context.Context, data []byte) ([]map[string]string, error) {
	records, err := readCSV(data)
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, nil
	}

	header := records[0]
	rows := make([]map[string]string, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			} else {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// readCSV parses CSV bytes tolerating ragged rows.
func readCSV(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing CSV: %w", err)
	}
	return records, nil
}
