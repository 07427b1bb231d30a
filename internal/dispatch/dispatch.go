// Package dispatch routes classified questions to their structured
// aggregate and renders the deterministic report. A structured failure is
// never fatal: the dispatcher reports the question as unhandled and the
// caller falls back to semantic retrieval.
package dispatch

import (
	"context"

	"github.com/tecnoperfil/portal-agent/internal/carteira"
	"github.com/tecnoperfil/portal-agent/internal/intent"
	"github.com/tecnoperfil/portal-agent/internal/log"
	"github.com/tecnoperfil/portal-agent/internal/report"
)

// Aggregator is the read-side surface the dispatcher needs from the
// carteira store.
type Aggregator interface {
	ListClients(ctx context.Context) ([]carteira.ClientRollup, error)
	ListOrders(ctx context.Context, status *string) ([]carteira.OrderRow, error)
	ListLateOrders(ctx context.Context) ([]carteira.OrderRow, error)
	ToolAnalysis(ctx context.Context) ([]carteira.ToolRow, error)
	PortfolioSummary(ctx context.Context) (carteira.Summary, error)
}

// Dispatcher executes structured queries against the order book.
type Dispatcher struct {
	store  Aggregator
	logger log.Logger
}

// New creates a Dispatcher.
func New(store Aggregator, logger log.Logger) *Dispatcher {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Dispatcher{store: store, logger: logger}
}

// Execute answers a structured query with a rendered report.
// The second return value reports whether the question was handled: false
// for semantic queries and for structured queries whose aggregate failed,
// in which case the error is logged and swallowed so the semantic path can
// still try to answer.
func (d *Dispatcher) Execute(ctx context.Context, q intent.Query) (string, bool) {
	switch q.Type {
	case intent.ListClients:
		rollups, err := d.store.ListClients(ctx)
		if err != nil {
			return d.fallthroughOn(q, err)
		}
		return report.Clients(rollups), true

	case intent.LateOrders:
		orders, err := d.store.ListLateOrders(ctx)
		if err != nil {
			return d.fallthroughOn(q, err)
		}
		return report.LateOrders(orders), true

	case intent.PortfolioSummary:
		summary, err := d.store.PortfolioSummary(ctx)
		if err != nil {
			return d.fallthroughOn(q, err)
		}
		return report.Portfolio(summary), true

	case intent.ToolAnalysis:
		tools, err := d.store.ToolAnalysis(ctx)
		if err != nil {
			return d.fallthroughOn(q, err)
		}
		return report.Tools(tools), true

	case intent.ListOrdersByStatus:
		var status *string
		if q.Status != "" {
			status = &q.Status
		}
		orders, err := d.store.ListOrders(ctx, status)
		if err != nil {
			return d.fallthroughOn(q, err)
		}
		return report.OrdersByStatus(q.Status, orders), true

	default:
		return "", false
	}
}

func (d *Dispatcher) fallthroughOn(q intent.Query, err error) (string, bool) {
	d.logger.Warn("structured query failed, falling back to semantic retrieval",
		"query_type", string(q.Type), "error", err)
	return "", false
}
