// Package carteira stores and aggregates the structured records extracted
// from tabular uploads: the order book (carteira de encomendas) and the
// extrusion die registry (ferramentas).
package carteira

import "time"

// OrderRecord is one row of the order book.
// Upsert identity is (Pedido, Item); rows missing Pedido or Cliente are
// dropped before they ever reach the store.
type OrderRecord struct {
	Pedido        string
	Item          string
	ArquivoOrigem string
	Cliente       string
	Produto       string
	Ferramenta    string
	Quantidade    *float64
	ValorTotal    *float64
	Status        string
	DataEntrega   *time.Time
	CreatedAt     time.Time
}

// ToolRecord is one row of the die registry, upsert-keyed by Codigo.
type ToolRecord struct {
	Codigo           string
	ArquivoOrigem    string
	Nome             string
	EficienciaReal   *float64
	VidaUtilRestante *float64
	CapacidadeKgHora *float64
	Status           string
	CreatedAt        time.Time
}

// ClientRollup is one row of the per-client aggregate.
type ClientRollup struct {
	Cliente            string
	TotalPedidos       int64
	ValorTotal         float64
	StatusPredominante string
}

// OrderRow is one row of the order listing aggregate.
// DiasAtraso is days past the delivery date (0 when no date is recorded).
type OrderRow struct {
	Pedido      string
	Item        string
	Cliente     string
	Produto     string
	Quantidade  *float64
	Status      string
	DataEntrega *time.Time
	DiasAtraso  int
}

// ToolRow is one row of the die analysis aggregate.
type ToolRow struct {
	Codigo           string
	Nome             string
	EficienciaReal   *float64
	VidaUtilRestante *float64
	Status           string
	NeedsMaintenance bool
}

// Summary is the single-row portfolio rollup.
type Summary struct {
	TotalPedidos         int64
	TotalClientes        int64
	ValorTotal           float64
	PedidosEmAtraso      int64
	PedidosAbertos       int64
	PedidosEmProducao    int64
	MaiorCliente         string
	ProdutoMaisDemandado string
}
