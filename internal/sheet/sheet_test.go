package sheet

import (
	"testing"
	"time"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
		want    Shape
	}{
		{
			name:    "full order book header",
			columns: []string{"Pedido", "Cliente", "Produto", "Quantidade", "Status", "Entrega"},
			want:    ShapeOrders,
		},
		{
			name:    "exactly three order keywords",
			columns: []string{"Pedido", "Cliente", "Produto"},
			want:    ShapeOrders,
		},
		{
			name:    "two order keywords is not enough",
			columns: []string{"Pedido", "Cliente", "Observacao"},
			want:    ShapeUnknown,
		},
		{
			name:    "tool registry header",
			columns: []string{"Codigo Ferramenta", "Nome", "Eficiencia Real", "Vida Util Restante"},
			want:    ShapeTools,
		},
		{
			name:    "exactly two tool keywords",
			columns: []string{"Matriz", "Vida Util"},
			want:    ShapeTools,
		},
		{
			name:    "one tool keyword is not enough",
			columns: []string{"Matriz", "Setor"},
			want:    ShapeUnknown,
		},
		{
			name:    "keyword as substring of column name",
			columns: []string{"Nr. Pedido", "Nome do Cliente", "Cod. Produto", "Qtd/Quantidade"},
			want:    ShapeOrders,
		},
		{
			name:    "case insensitive",
			columns: []string{"PEDIDO", "CLIENTE", "STATUS"},
			want:    ShapeOrders,
		},
		{
			name:    "ambiguous header prefers orders",
			columns: []string{"Pedido", "Cliente", "Status", "Ferramenta", "Matriz"},
			want:    ShapeOrders,
		},
		{
			name:    "empty header",
			columns: nil,
			want:    ShapeUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.columns); got != tt.want {
				t.Errorf("Classify(%v) = %v, want %v", tt.columns, got, tt.want)
			}
		})
	}
}

func TestClassifyRows(t *testing.T) {
	rows := []map[string]string{
		{"Pedido": "1001", "Cliente": "Alubras", "Produto": "Perfil U", "Status": "aberto"},
	}
	if got := ClassifyRows(rows); got != ShapeOrders {
		t.Errorf("ClassifyRows() = %v, want ShapeOrders", got)
	}

	if got := ClassifyRows(nil); got != ShapeUnknown {
		t.Errorf("ClassifyRows(nil) = %v, want ShapeUnknown", got)
	}
}

func TestMapOrders(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	rows := []map[string]string{
		{
			"Pedido":     "1001",
			"Item":       "10",
			"Cliente":    "Alubras",
			"Produto":    "Perfil U 30x20",
			"Quantidade": "1.500,5",
			"Valor":      "R$ 12.345,67",
			"Status":     "aberto",
			"Entrega":    "2025-05-20",
		},
		{
			// Missing cliente: dropped.
			"Pedido":  "1002",
			"Cliente": "",
			"Status":  "aberto",
		},
		{
			// Missing pedido: dropped.
			"Pedido":  "",
			"Cliente": "Metalsul",
		},
	}

	records := MapOrders(rows, "carteira.csv", now)
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1 (garbage rows silently dropped)", len(records))
	}

	rec := records[0]
	if rec.Pedido != "1001" || rec.Item != "10" || rec.Cliente != "Alubras" {
		t.Errorf("identity fields = %q/%q/%q", rec.Pedido, rec.Item, rec.Cliente)
	}
	if rec.ArquivoOrigem != "carteira.csv" {
		t.Errorf("ArquivoOrigem = %q", rec.ArquivoOrigem)
	}
	if rec.Quantidade == nil || *rec.Quantidade != 1500.5 {
		t.Errorf("Quantidade = %v, want 1500.5", rec.Quantidade)
	}
	if rec.ValorTotal == nil || *rec.ValorTotal != 12345.67 {
		t.Errorf("ValorTotal = %v, want 12345.67", rec.ValorTotal)
	}
	if rec.DataEntrega == nil || rec.DataEntrega.Format("2006-01-02") != "2025-05-20" {
		t.Errorf("DataEntrega = %v", rec.DataEntrega)
	}
	if !rec.CreatedAt.Equal(now) {
		t.Errorf("CreatedAt = %v, want %v", rec.CreatedAt, now)
	}
}

func TestMapTools(t *testing.T) {
	now := time.Now()
	rows := []map[string]string{
		{
			"Codigo":     "FER-001",
			"Nome":       "Matriz Perfil U",
			"Eficiencia": "87,5%",
			"Vida Util":  "45",
			"Capacidade": "320,0",
			"Status":     "ativa",
		},
		{
			// No code: dropped.
			"Nome": "Sem codigo",
		},
	}

	records := MapTools(rows, "ferramentas.xlsx", now)
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}

	rec := records[0]
	if rec.Codigo != "FER-001" {
		t.Errorf("Codigo = %q", rec.Codigo)
	}
	if rec.EficienciaReal == nil || *rec.EficienciaReal != 87.5 {
		t.Errorf("EficienciaReal = %v, want 87.5", rec.EficienciaReal)
	}
	if rec.VidaUtilRestante == nil || *rec.VidaUtilRestante != 45 {
		t.Errorf("VidaUtilRestante = %v, want 45", rec.VidaUtilRestante)
	}
	if rec.CapacidadeKgHora == nil || *rec.CapacidadeKgHora != 320 {
		t.Errorf("CapacidadeKgHora = %v, want 320", rec.CapacidadeKgHora)
	}
}

func TestParseDecimal(t *testing.T) {
	ptr := func(f float64) *float64 { return &f }

	tests := []struct {
		in   string
		want *float64
	}{
		{"1.234,56", ptr(1234.56)},
		{"1234,56", ptr(1234.56)},
		{"1234.56", ptr(1234.56)},
		{"R$ 2.500,00", ptr(2500)},
		{"87,5%", ptr(87.5)},
		{"500", ptr(500)},
		{"-12,3", ptr(-12.3)},
		{"", nil},
		{"n/a", nil},
		{"-", nil},
		{"1,2,3", nil},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseDecimal(tt.in)
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("ParseDecimal(%q) = %v, want %v", tt.in, got, tt.want)
			}
			if got != nil && *got != *tt.want {
				t.Errorf("ParseDecimal(%q) = %v, want %v", tt.in, *got, *tt.want)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want string // YYYY-MM-DD, empty means nil
	}{
		{"2025-05-20", "2025-05-20"},
		{"20/05/2025", "2025-05-20"},
		{"20-05-2025", "2025-05-20"},
		{"", ""},
		{"amanhã", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseDate(tt.in)
			if tt.want == "" {
				if got != nil {
					t.Errorf("ParseDate(%q) = %v, want nil", tt.in, got)
				}
				return
			}
			if got == nil || got.Format("2006-01-02") != tt.want {
				t.Errorf("ParseDate(%q) = %v, want %s", tt.in, got, tt.want)
			}
		})
	}
}
