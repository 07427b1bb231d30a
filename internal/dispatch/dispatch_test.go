package dispatch

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tecnoperfil/portal-agent/internal/carteira"
	"github.com/tecnoperfil/portal-agent/internal/intent"
)

type mockAggregator struct {
	clients    []carteira.ClientRollup
	orders     []carteira.OrderRow
	lateOrders []carteira.OrderRow
	tools      []carteira.ToolRow
	summary    carteira.Summary
	err        error

	gotStatus *string
}

func (m *mockAggregator) ListClients(context.Context) ([]carteira.ClientRollup, error) {
	return m.clients, m.err
}

func (m *mockAggregator) ListOrders(_ context.Context, status *string) ([]carteira.OrderRow, error) {
	m.gotStatus = status
	return m.orders, m.err
}

func (m *mockAggregator) ListLateOrders(context.Context) ([]carteira.OrderRow, error) {
	return m.lateOrders, m.err
}

func (m *mockAggregator) ToolAnalysis(context.Context) ([]carteira.ToolRow, error) {
	return m.tools, m.err
}

func (m *mockAggregator) PortfolioSummary(context.Context) (carteira.Summary, error) {
	return m.summary, m.err
}

func TestExecute_ListClients(t *testing.T) {
	store := &mockAggregator{clients: []carteira.ClientRollup{{Cliente: "Alubras", TotalPedidos: 2}}}
	d := New(store, nil)

	answer, handled := d.Execute(context.Background(), intent.Query{Type: intent.ListClients})
	if !handled {
		t.Fatal("handled = false, want true")
	}
	if !strings.Contains(answer, "Alubras") {
		t.Errorf("answer missing client:\n%s", answer)
	}
}

func TestExecute_LateOrders(t *testing.T) {
	store := &mockAggregator{lateOrders: []carteira.OrderRow{{Pedido: "1001", Cliente: "Metalsul", DiasAtraso: 5}}}
	d := New(store, nil)

	answer, handled := d.Execute(context.Background(), intent.Query{Type: intent.LateOrders})
	if !handled || !strings.Contains(answer, "1001") {
		t.Errorf("handled=%v answer=%q", handled, answer)
	}
}

func TestExecute_PortfolioSummary(t *testing.T) {
	store := &mockAggregator{summary: carteira.Summary{TotalPedidos: 42}}
	d := New(store, nil)

	answer, handled := d.Execute(context.Background(), intent.Query{Type: intent.PortfolioSummary})
	if !handled || !strings.Contains(answer, "42") {
		t.Errorf("handled=%v answer=%q", handled, answer)
	}
}

func TestExecute_ToolAnalysis(t *testing.T) {
	store := &mockAggregator{tools: []carteira.ToolRow{{Codigo: "FER-001", NeedsMaintenance: true}}}
	d := New(store, nil)

	answer, handled := d.Execute(context.Background(), intent.Query{Type: intent.ToolAnalysis})
	if !handled || !strings.Contains(answer, "FER-001") {
		t.Errorf("handled=%v answer=%q", handled, answer)
	}
}

func TestExecute_OrdersByStatus_ForwardsFilter(t *testing.T) {
	store := &mockAggregator{orders: []carteira.OrderRow{{Pedido: "1002", Status: "producao"}}}
	d := New(store, nil)

	_, handled := d.Execute(context.Background(), intent.Query{Type: intent.ListOrdersByStatus, Status: "producao"})
	if !handled {
		t.Fatal("handled = false, want true")
	}
	if store.gotStatus == nil || *store.gotStatus != "producao" {
		t.Errorf("status filter = %v, want producao", store.gotStatus)
	}
}

func TestExecute_OrdersByStatus_NoFilter(t *testing.T) {
	store := &mockAggregator{}
	d := New(store, nil)

	d.Execute(context.Background(), intent.Query{Type: intent.ListOrdersByStatus})
	if store.gotStatus != nil {
		t.Errorf("status filter = %v, want nil for unfiltered listing", store.gotStatus)
	}
}

func TestExecute_SemanticIsUnhandled(t *testing.T) {
	d := New(&mockAggregator{}, nil)

	answer, handled := d.Execute(context.Background(), intent.Query{Type: intent.Semantic})
	if handled || answer != "" {
		t.Errorf("semantic query must not be handled, got handled=%v answer=%q", handled, answer)
	}
}

func TestExecute_StoreFailureFallsThrough(t *testing.T) {
	store := &mockAggregator{err: errors.New("database down")}
	d := New(store, nil)

	for _, qt := range []intent.Type{
		intent.ListClients, intent.LateOrders, intent.PortfolioSummary,
		intent.ToolAnalysis, intent.ListOrdersByStatus,
	} {
		answer, handled := d.Execute(context.Background(), intent.Query{Type: qt})
		if handled || answer != "" {
			t.Errorf("%s: failure must fall through, got handled=%v answer=%q", qt, handled, answer)
		}
	}
}

func TestExecute_EmptyAggregateStillHandled(t *testing.T) {
	// An empty order book is a valid structured answer, not a fallback.
	d := New(&mockAggregator{}, nil)

	answer, handled := d.Execute(context.Background(), intent.Query{Type: intent.LateOrders})
	if !handled {
		t.Fatal("empty aggregate must still count as handled")
	}
	if !strings.Contains(answer, "em dia") {
		t.Errorf("answer = %q", answer)
	}
}
