// Package sheet classifies tabular uploads by column shape and maps their
// rows into structured records.
//
// Classification is a pure scoring function over a declarative keyword
// table so it can be tested without any I/O. Row mapping applies the
// pt-BR numeric convention uniformly: comma as decimal separator, dot as
// thousands separator; unparsable values map to nil, never NaN.
package sheet

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tecnoperfil/portal-agent/internal/carteira"
)

// Shape identifies which structured collection a sheet feeds, if any.
type Shape int

const (
	// ShapeUnknown means the sheet matches neither keyword set; no
	// structured upsert happens.
	ShapeUnknown Shape = iota

	// ShapeOrders means the sheet is an order-book (carteira) export.
	ShapeOrders

	// ShapeTools means the sheet is a die registry export.
	ShapeTools
)

// String returns the shape name for logging.
func (s Shape) String() string {
	switch s {
	case ShapeOrders:
		return "orders"
	case ShapeTools:
		return "tools"
	default:
		return "unknown"
	}
}

// Keyword sets and match thresholds for sheet classification.
// Values mirror the column vocabulary of the factory's ERP exports.
var (
	orderKeywords = []string{"pedido", "cliente", "produto", "quantidade", "status", "entrega"}
	toolKeywords  = []string{"ferramenta", "matriz", "codigo", "eficiencia", "vida"}
)

const (
	orderMatchThreshold = 3
	toolMatchThreshold  = 2
)

// Classify scores the column names against both keyword sets and returns
// the matching shape. Order keywords are checked first: an ambiguous sheet
// that clears both thresholds is treated as an order book.
func Classify(columns []string) Shape {
	lower := make([]string, len(columns))
	for i, col := range columns {
		lower[i] = strings.ToLower(col)
	}

	if matchCount(lower, orderKeywords) >= orderMatchThreshold {
		return ShapeOrders
	}
	if matchCount(lower, toolKeywords) >= toolMatchThreshold {
		return ShapeTools
	}
	return ShapeUnknown
}

// ClassifyRows classifies a sheet by the column names of its first row.
func ClassifyRows(rows []map[string]string) Shape {
	if len(rows) == 0 {
		return ShapeUnknown
	}
	columns := make([]string, 0, len(rows[0]))
	for col := range rows[0] {
		columns = append(columns, col)
	}
	return Classify(columns)
}

// matchCount counts how many keywords appear as a substring of at least
// one column name.
func matchCount(lowerColumns, keywords []string) int {
	n := 0
	for _, keyword := range keywords {
		for _, col := range lowerColumns {
			if strings.Contains(col, keyword) {
				n++
				break
			}
		}
	}
	return n
}

// MapOrders maps sheet rows into order records.
// Rows without both an order number and a client are dropped.
func MapOrders(rows []map[string]string, sourceFile string, now time.Time) []carteira.OrderRecord {
	records := make([]carteira.OrderRecord, 0, len(rows))
	for _, row := range rows {
		rec := carteira.OrderRecord{
			ArquivoOrigem: sourceFile,
			CreatedAt:     now,
		}

		for key, value := range row {
			lowerKey := strings.ToLower(key)
			value = strings.TrimSpace(value)

			switch {
			case strings.Contains(lowerKey, "pedido"):
				rec.Pedido = value
			case strings.Contains(lowerKey, "item"):
				rec.Item = value
			case strings.Contains(lowerKey, "cliente"):
				rec.Cliente = value
			case strings.Contains(lowerKey, "produto"):
				rec.Produto = value
			case strings.Contains(lowerKey, "quantidade"), strings.Contains(lowerKey, "qtd"):
				rec.Quantidade = ParseDecimal(value)
			case strings.Contains(lowerKey, "valor"):
				rec.ValorTotal = ParseDecimal(value)
			case strings.Contains(lowerKey, "status"):
				rec.Status = value
			case strings.Contains(lowerKey, "ferramenta"):
				rec.Ferramenta = value
			case strings.Contains(lowerKey, "entrega"):
				rec.DataEntrega = ParseDate(value)
			}
		}

		if rec.Pedido == "" || rec.Cliente == "" {
			continue
		}
		records = append(records, rec)
	}
	return records
}

// MapTools maps sheet rows into tool records.
// Rows without a die code are dropped.
func MapTools(rows []map[string]string, sourceFile string, now time.Time) []carteira.ToolRecord {
	records := make([]carteira.ToolRecord, 0, len(rows))
	for _, row := range rows {
		rec := carteira.ToolRecord{
			ArquivoOrigem: sourceFile,
			CreatedAt:     now,
		}

		for key, value := range row {
			lowerKey := strings.ToLower(key)
			value = strings.TrimSpace(value)

			switch {
			case strings.Contains(lowerKey, "codigo"):
				rec.Codigo = value
			case strings.Contains(lowerKey, "ferramenta"):
				// Only a fallback key: an explicit code column wins.
				if rec.Codigo == "" {
					rec.Codigo = value
				}
			case strings.Contains(lowerKey, "nome"):
				rec.Nome = value
			case strings.Contains(lowerKey, "eficiencia"):
				rec.EficienciaReal = ParseDecimal(value)
			case strings.Contains(lowerKey, "vida"):
				rec.VidaUtilRestante = ParseDecimal(value)
			case strings.Contains(lowerKey, "capacidade"):
				rec.CapacidadeKgHora = ParseDecimal(value)
			case strings.Contains(lowerKey, "status"):
				rec.Status = value
			}
		}

		if rec.Codigo == "" {
			continue
		}
		records = append(records, rec)
	}
	return records
}

// nonNumeric strips everything that is not a digit, separator or sign.
var nonNumeric = regexp.MustCompile(`[^0-9.,\-]`)

// ParseDecimal parses a pt-BR formatted number ("1.234,56") into a float.
// Dots are thousands separators whenever a comma is present; a lone dot is
// accepted as the decimal separator for already-normalized input.
// Returns nil when no number can be parsed.
func ParseDecimal(s string) *float64 {
	cleaned := nonNumeric.ReplaceAllString(s, "")
	if cleaned == "" || cleaned == "-" {
		return nil
	}

	if strings.Contains(cleaned, ",") {
		// pt-BR form: drop thousands dots, comma becomes the decimal point.
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.Replace(cleaned, ",", ".", 1)
		// A second comma means garbage, not a number.
		if strings.Contains(cleaned, ",") {
			return nil
		}
	}

	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// Accepted delivery-date layouts, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
	"02/01/06",
	time.RFC3339,
}

// ParseDate parses a delivery date in the layouts the ERP exports use.
// Returns nil when the value does not parse.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
