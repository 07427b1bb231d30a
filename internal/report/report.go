// Package report renders the structured query aggregates as pt-BR
// markdown. Output is fully deterministic: no model call happens on the
// structured path, so these strings are the final answer text.
package report

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/tecnoperfil/portal-agent/internal/carteira"
)

// healthyToolCap bounds how many healthy dies are listed individually
// before the report collapses the rest into a count.
const healthyToolCap = 5

// printer localizes numbers to pt-BR (dot thousands, comma decimals).
var printer = message.NewPrinter(language.BrazilianPortuguese)

func money(v float64) string {
	return printer.Sprintf("R$ %.2f", v)
}

func quantity(v *float64) string {
	if v == nil {
		return "-"
	}
	return printer.Sprintf("%.0f", *v)
}

// Clients renders the per-client rollup as a numbered list.
func Clients(rollups []carteira.ClientRollup) string {
	if len(rollups) == 0 {
		return "Nenhum cliente encontrado na carteira de encomendas."
	}

	var b strings.Builder
	b.WriteString("**Clientes da carteira de encomendas:**\n\n")
	for i, c := range rollups {
		fmt.Fprintf(&b, "%d. **%s** — %d pedido(s), %s, status predominante: %s\n",
			i+1, c.Cliente, c.TotalPedidos, money(c.ValorTotal), orDash(c.StatusPredominante))
	}
	fmt.Fprintf(&b, "\nTotal: %d cliente(s).", len(rollups))
	return b.String()
}

// LateOrders renders overdue orders ordered by how late they are.
func LateOrders(orders []carteira.OrderRow) string {
	if len(orders) == 0 {
		return "Nenhum pedido em atraso. A carteira está em dia."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**Pedidos em atraso (%d):**\n\n", len(orders))
	for i, o := range orders {
		fmt.Fprintf(&b, "%d. Pedido **%s**%s — %s, %s, %d dia(s) de atraso (entrega: %s)\n",
			i+1, o.Pedido, itemSuffix(o.Item), orDash(o.Cliente), orDash(o.Produto),
			o.DiasAtraso, dateOrDash(o))
	}
	return b.String()
}

// OrdersByStatus renders orders matching a status filter. An empty status
// means the full book was requested.
func OrdersByStatus(status string, orders []carteira.OrderRow) string {
	if len(orders) == 0 {
		if status == "" {
			return "Nenhum pedido encontrado na carteira de encomendas."
		}
		return fmt.Sprintf("Nenhum pedido com status %q encontrado.", status)
	}

	var b strings.Builder
	if status == "" {
		fmt.Fprintf(&b, "**Pedidos da carteira (%d):**\n\n", len(orders))
	} else {
		fmt.Fprintf(&b, "**Pedidos com status %q (%d):**\n\n", status, len(orders))
	}
	for i, o := range orders {
		fmt.Fprintf(&b, "%d. Pedido **%s**%s — %s, %s, qtd: %s, status: %s\n",
			i+1, o.Pedido, itemSuffix(o.Item), orDash(o.Cliente), orDash(o.Produto),
			quantity(o.Quantidade), orDash(o.Status))
	}
	return b.String()
}

// Tools renders the die registry split into a needs-attention section and
// a healthy section. The healthy list is capped; the remainder becomes a
// single summary line.
func Tools(tools []carteira.ToolRow) string {
	if len(tools) == 0 {
		return "Nenhuma ferramenta cadastrada."
	}

	var attention, healthy []carteira.ToolRow
	for _, t := range tools {
		if t.NeedsMaintenance {
			attention = append(attention, t)
		} else {
			healthy = append(healthy, t)
		}
	}

	var b strings.Builder
	b.WriteString("**Análise de ferramentas:**\n\n")

	if len(attention) > 0 {
		fmt.Fprintf(&b, "⚠️ **Requerem atenção (%d):**\n", len(attention))
		for _, t := range attention {
			fmt.Fprintf(&b, "- **%s** (%s) — eficiência: %s, vida útil restante: %s, status: %s\n",
				t.Codigo, orDash(t.Nome), percent(t.EficienciaReal),
				percent(t.VidaUtilRestante), orDash(t.Status))
		}
		b.WriteString("\n")
	} else {
		b.WriteString("Nenhuma ferramenta requer atenção no momento.\n\n")
	}

	if len(healthy) > 0 {
		fmt.Fprintf(&b, "✅ **Em boas condições (%d):**\n", len(healthy))
		for i, t := range healthy {
			if i == healthyToolCap {
				fmt.Fprintf(&b, "- ... e mais %d ferramenta(s) em boas condições\n", len(healthy)-healthyToolCap)
				break
			}
			fmt.Fprintf(&b, "- **%s** (%s) — eficiência: %s, vida útil restante: %s\n",
				t.Codigo, orDash(t.Nome), percent(t.EficienciaReal), percent(t.VidaUtilRestante))
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// Portfolio renders the one-row order book summary.
func Portfolio(s carteira.Summary) string {
	var b strings.Builder
	b.WriteString("**Resumo da carteira de encomendas:**\n\n")
	fmt.Fprintf(&b, "- Total de pedidos: %d\n", s.TotalPedidos)
	fmt.Fprintf(&b, "- Clientes ativos: %d\n", s.TotalClientes)
	fmt.Fprintf(&b, "- Valor total: %s\n", money(s.ValorTotal))
	fmt.Fprintf(&b, "- Pedidos em aberto: %d\n", s.PedidosAbertos)
	fmt.Fprintf(&b, "- Pedidos em produção: %d\n", s.PedidosEmProducao)
	fmt.Fprintf(&b, "- Pedidos em atraso: %d\n", s.PedidosEmAtraso)
	if s.MaiorCliente != "" {
		fmt.Fprintf(&b, "- Maior cliente: %s\n", s.MaiorCliente)
	}
	if s.ProdutoMaisDemandado != "" {
		fmt.Fprintf(&b, "- Produto mais demandado: %s\n", s.ProdutoMaisDemandado)
	}
	return strings.TrimRight(b.String(), "\n")
}

func percent(v *float64) string {
	if v == nil {
		return "-"
	}
	return printer.Sprintf("%.1f%%", *v)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func itemSuffix(item string) string {
	if item == "" {
		return ""
	}
	return "/" + item
}

func dateOrDash(o carteira.OrderRow) string {
	if o.DataEntrega == nil {
		return "-"
	}
	return o.DataEntrega.Format("02/01/2006")
}
