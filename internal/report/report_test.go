package report

import (
	"strings"
	"testing"
	"time"

	"github.com/tecnoperfil/portal-agent/internal/carteira"
)

func ptr(f float64) *float64 { return &f }

func TestClients(t *testing.T) {
	got := Clients([]carteira.ClientRollup{
		{Cliente: "Alubras", TotalPedidos: 12, ValorTotal: 15430.5, StatusPredominante: "aberto"},
		{Cliente: "Metalsul", TotalPedidos: 3, ValorTotal: 2100, StatusPredominante: "producao"},
	})

	for _, want := range []string{
		"1. **Alubras**",
		"12 pedido(s)",
		"R$ 15.430,50",
		"2. **Metalsul**",
		"Total: 2 cliente(s).",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Clients() missing %q:\n%s", want, got)
		}
	}
}

func TestClients_Empty(t *testing.T) {
	got := Clients(nil)
	if !strings.Contains(got, "Nenhum cliente") {
		t.Errorf("Clients(nil) = %q", got)
	}
}

func TestLateOrders(t *testing.T) {
	due := time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)
	got := LateOrders([]carteira.OrderRow{
		{Pedido: "1001", Item: "10", Cliente: "Alubras", Produto: "Perfil U",
			Status: "aberto", DataEntrega: &due, DiasAtraso: 21},
	})

	for _, want := range []string{
		"Pedidos em atraso (1)",
		"Pedido **1001**/10",
		"21 dia(s) de atraso",
		"10/04/2025",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("LateOrders() missing %q:\n%s", want, got)
		}
	}
}

func TestLateOrders_Empty(t *testing.T) {
	got := LateOrders(nil)
	if !strings.Contains(got, "em dia") {
		t.Errorf("LateOrders(nil) = %q", got)
	}
}

func TestOrdersByStatus(t *testing.T) {
	rows := []carteira.OrderRow{
		{Pedido: "1002", Cliente: "Metalsul", Produto: "Perfil L", Quantidade: ptr(1500), Status: "producao"},
	}

	got := OrdersByStatus("producao", rows)
	if !strings.Contains(got, `Pedidos com status "producao" (1)`) {
		t.Errorf("missing status header:\n%s", got)
	}
	if !strings.Contains(got, "qtd: 1.500") {
		t.Errorf("missing localized quantity:\n%s", got)
	}

	got = OrdersByStatus("", rows)
	if !strings.Contains(got, "Pedidos da carteira (1)") {
		t.Errorf("missing unfiltered header:\n%s", got)
	}
}

func TestOrdersByStatus_Empty(t *testing.T) {
	if got := OrdersByStatus("aberto", nil); !strings.Contains(got, `status "aberto"`) {
		t.Errorf("OrdersByStatus empty = %q", got)
	}
	if got := OrdersByStatus("", nil); !strings.Contains(got, "Nenhum pedido encontrado") {
		t.Errorf("OrdersByStatus empty unfiltered = %q", got)
	}
}

func TestTools_SplitAndCap(t *testing.T) {
	tools := []carteira.ToolRow{
		{Codigo: "FER-001", Nome: "Matriz U", EficienciaReal: ptr(62), VidaUtilRestante: ptr(20),
			Status: "ativa", NeedsMaintenance: true},
	}
	// Seven healthy dies: listing caps at five, the rest collapse.
	for i := range 7 {
		tools = append(tools, carteira.ToolRow{
			Codigo:           "OK-" + string(rune('A'+i)),
			EficienciaReal:   ptr(90),
			VidaUtilRestante: ptr(80),
			Status:           "ativa",
		})
	}

	got := Tools(tools)

	if !strings.Contains(got, "Requerem atenção (1)") {
		t.Errorf("missing attention section:\n%s", got)
	}
	if !strings.Contains(got, "FER-001") {
		t.Errorf("missing flagged die:\n%s", got)
	}
	if !strings.Contains(got, "Em boas condições (7)") {
		t.Errorf("missing healthy section:\n%s", got)
	}
	if !strings.Contains(got, "e mais 2 ferramenta(s)") {
		t.Errorf("healthy list not capped:\n%s", got)
	}
	if strings.Contains(got, "OK-G") {
		t.Errorf("sixth healthy die should be collapsed:\n%s", got)
	}
}

func TestTools_AllHealthy(t *testing.T) {
	got := Tools([]carteira.ToolRow{
		{Codigo: "FER-002", EficienciaReal: ptr(95), VidaUtilRestante: ptr(88), Status: "ativa"},
	})
	if !strings.Contains(got, "Nenhuma ferramenta requer atenção") {
		t.Errorf("missing healthy notice:\n%s", got)
	}
}

func TestTools_Empty(t *testing.T) {
	if got := Tools(nil); !strings.Contains(got, "Nenhuma ferramenta cadastrada") {
		t.Errorf("Tools(nil) = %q", got)
	}
}

func TestPortfolio(t *testing.T) {
	got := Portfolio(carteira.Summary{
		TotalPedidos:         120,
		TotalClientes:        14,
		ValorTotal:           250000.75,
		PedidosEmAtraso:      8,
		PedidosAbertos:       40,
		PedidosEmProducao:    30,
		MaiorCliente:         "Alubras",
		ProdutoMaisDemandado: "Perfil U 30x20",
	})

	for _, want := range []string{
		"Total de pedidos: 120",
		"R$ 250.000,75",
		"Pedidos em atraso: 8",
		"Maior cliente: Alubras",
		"Produto mais demandado: Perfil U 30x20",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Portfolio() missing %q:\n%s", want, got)
		}
	}
}

func TestPortfolio_OmitsUnknownLeaders(t *testing.T) {
	got := Portfolio(carteira.Summary{TotalPedidos: 1})
	if strings.Contains(got, "Maior cliente") || strings.Contains(got, "Produto mais demandado") {
		t.Errorf("empty leaders must be omitted:\n%s", got)
	}
}
