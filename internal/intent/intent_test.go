package intent

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		question   string
		wantType   Type
		wantStatus string
	}{
		{
			name:     "list clients",
			question: "Pode listar os clientes da carteira?",
			wantType: ListClients,
		},
		{
			name:     "late orders",
			question: "Quais pedidos estão atrasados?",
			wantType: LateOrders,
		},
		{
			name:     "late orders via atraso",
			question: "Temos pedidos em atraso esta semana?",
			wantType: LateOrders,
		},
		{
			name:     "singular pedido is not a structured query",
			question: "Temos algum pedido em atraso esta semana?",
			wantType: Semantic,
		},
		{
			name:     "portfolio summary via resumo",
			question: "Me dá um resumo da situação",
			wantType: PortfolioSummary,
		},
		{
			name:     "portfolio summary via carteira total",
			question: "Qual o valor total da carteira?",
			wantType: PortfolioSummary,
		},
		{
			name:     "tool analysis",
			question: "Como esta a analise das ferramentas?",
			wantType: ToolAnalysis,
		},
		{
			name:     "accented análise is not a structured query",
			question: "Como anda a análise das ferramentas?",
			wantType: Semantic,
		},
		{
			name:     "tool status beats order status",
			question: "Qual o status das ferramentas usadas nos pedidos?",
			wantType: ToolAnalysis,
		},
		{
			name:       "orders by status with extraction",
			question:   "Liste os pedidos com status em produção",
			wantType:   ListOrdersByStatus,
			wantStatus: "producao",
		},
		{
			name:       "orders by status aberto",
			question:   "pedidos com status abertos",
			wantType:   ListOrdersByStatus,
			wantStatus: "aberto",
		},
		{
			name:     "orders by status without known status",
			question: "Mostra o status dos pedidos urgentes",
			wantType: ListOrdersByStatus,
		},
		{
			name:     "semantic fallback",
			question: "Qual a temperatura ideal de extrusão da liga 6063?",
			wantType: Semantic,
		},
		{
			name:     "empty question",
			question: "",
			wantType: Semantic,
		},
		{
			name:     "cliente without listar is not a listing",
			question: "O cliente Alubras reclamou do prazo",
			wantType: Semantic,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.question)
			if got.Type != tt.wantType {
				t.Errorf("Classify(%q).Type = %q, want %q", tt.question, got.Type, tt.wantType)
			}
			if got.Status != tt.wantStatus {
				t.Errorf("Classify(%q).Status = %q, want %q", tt.question, got.Status, tt.wantStatus)
			}
		})
	}
}

func TestClassify_CaseInsensitive(t *testing.T) {
	got := Classify("LISTAR CLIENTES")
	if got.Type != ListClients {
		t.Errorf("Classify uppercase = %q, want ListClients", got.Type)
	}
}
