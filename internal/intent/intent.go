// Package intent classifies user questions into structured query types
// with a deterministic keyword rule table. Questions that match no rule
// fall through to semantic retrieval.
package intent

import "strings"

// Type identifies which handler answers a question.
type Type string

// Structured query types, evaluated in rule order. Semantic is the
// fallback when no rule matches.
const (
	ListClients        Type = "listClients"
	LateOrders         Type = "lateOrders"
	PortfolioSummary   Type = "portfolioSummary"
	ToolAnalysis       Type = "toolAnalysis"
	ListOrdersByStatus Type = "listOrdersByStatus"
	Semantic           Type = "semantic"
)

// Query is a classified question: the type plus any filter the rule
// extracted from the text.
type Query struct {
	Type Type

	// Status carries the extracted status filter for ListOrdersByStatus.
	// Empty means the question asked for orders without naming a status.
	Status string
}

// statuses the portal recognizes inside a question, normalized form first.
var knownStatuses = []struct {
	keyword string
	status  string
}{
	{"aberto", "aberto"},
	{"abertos", "aberto"},
	{"producao", "producao"},
	{"produção", "producao"},
	{"atendido", "atendido"},
	{"atendidos", "atendido"},
}

// Classify maps a question to its query type. Rules are evaluated in a
// fixed order so overlapping keywords resolve deterministically; the
// first match wins.
//
// Keywords are literal: singular "pedido" and accented "análise" do not
// match and fall through to the semantic path. Loosening them trades
// precision for recall and is a product decision, not a bug fix.
func Classify(question string) Query {
	q := strings.ToLower(question)

	has := func(keywords ...string) bool {
		for _, kw := range keywords {
			if strings.Contains(q, kw) {
				return true
			}
		}
		return false
	}

	switch {
	case has("listar") && has("cliente"):
		return Query{Type: ListClients}

	case has("pedidos") && has("atrasado", "atraso"):
		return Query{Type: LateOrders}

	case has("resumo"), has("carteira") && has("total"):
		return Query{Type: PortfolioSummary}

	case has("ferramenta") && has("analise", "status"):
		return Query{Type: ToolAnalysis}

	case has("pedidos") && has("status"):
		return Query{Type: ListOrdersByStatus, Status: extractStatus(q)}

	default:
		return Query{Type: Semantic}
	}
}

// extractStatus finds the first known status mentioned in an
// already-lowercased question.
func extractStatus(q string) string {
	for _, s := range knownStatuses {
		if strings.Contains(q, s.keyword) {
			return s.status
		}
	}
	return ""
}
