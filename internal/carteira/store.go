package carteira

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tecnoperfil/portal-agent/internal/log"
)

// ErrNoData indicates an aggregate query found no rows to summarize.
var ErrNoData = errors.New("no structured data available")

// DB is the subset of pgxpool.Pool the store needs.
// Defined here, on the consumer side, so tests can substitute a mock.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store persists order and tool records and serves the read-side
// aggregates behind the structured query types.
//
// Store is safe for concurrent use by multiple goroutines.
type Store struct {
	db     DB
	logger log.Logger
}

// NewStore creates a Store backed by the given database handle.
func NewStore(db DB, logger log.Logger) *Store {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Store{db: db, logger: logger}
}

// UpsertOrder inserts or replaces one order-book row, keyed by (pedido, item).
func (s *Store) UpsertOrder(ctx context.Context, rec OrderRecord) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO carteira_encomendas
			(pedido, item, arquivo_origem, cliente, produto, ferramenta,
			 quantidade, valor_total, status, data_entrega, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (pedido, item) DO UPDATE SET
			arquivo_origem = EXCLUDED.arquivo_origem,
			cliente        = EXCLUDED.cliente,
			produto        = EXCLUDED.produto,
			ferramenta     = EXCLUDED.ferramenta,
			quantidade     = EXCLUDED.quantidade,
			valor_total    = EXCLUDED.valor_total,
			status         = EXCLUDED.status,
			data_entrega   = EXCLUDED.data_entrega,
			created_at     = EXCLUDED.created_at`,
		rec.Pedido, rec.Item, rec.ArquivoOrigem, rec.Cliente, rec.Produto,
		rec.Ferramenta, rec.Quantidade, rec.ValorTotal, rec.Status,
		rec.DataEntrega, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("upserting order %s/%s: %w", rec.Pedido, rec.Item, err)
	}
	return nil
}

// UpsertTool inserts or replaces one die registry row, keyed by codigo.
func (s *Store) UpsertTool(ctx context.Context, rec ToolRecord) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO ferramentas_dados
			(codigo_ferramenta, arquivo_origem, nome, eficiencia_real,
			 vida_util_restante, capacidade_kg_hora, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (codigo_ferramenta) DO UPDATE SET
			arquivo_origem     = EXCLUDED.arquivo_origem,
			nome               = EXCLUDED.nome,
			eficiencia_real    = EXCLUDED.eficiencia_real,
			vida_util_restante = EXCLUDED.vida_util_restante,
			capacidade_kg_hora = EXCLUDED.capacidade_kg_hora,
			status             = EXCLUDED.status,
			created_at         = EXCLUDED.created_at`,
		rec.Codigo, rec.ArquivoOrigem, rec.Nome, rec.EficienciaReal,
		rec.VidaUtilRestante, rec.CapacidadeKgHora, rec.Status, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("upserting tool %s: %w", rec.Codigo, err)
	}
	return nil
}

// ListClients aggregates the order book per client, ordered by total value.
func (s *Store) ListClients(ctx context.Context) ([]ClientRollup, error) {
	rows, err := s.db.Query(ctx, `
		SELECT cliente,
		       COUNT(*)                                  AS total_pedidos,
		       COALESCE(SUM(valor_total), 0)             AS valor_total,
		       MODE() WITHIN GROUP (ORDER BY status)     AS status_predominante
		FROM carteira_encomendas
		WHERE cliente <> ''
		GROUP BY cliente
		ORDER BY valor_total DESC, cliente`)
	if err != nil {
		return nil, fmt.Errorf("listing clients: %w", err)
	}
	defer rows.Close()

	var out []ClientRollup
	for rows.Next() {
		var c ClientRollup
		var status *string
		if err := rows.Scan(&c.Cliente, &c.TotalPedidos, &c.ValorTotal, &status); err != nil {
			return nil, fmt.Errorf("scanning client rollup: %w", err)
		}
		if status != nil {
			c.StatusPredominante = *status
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading client rollups: %w", err)
	}
	return out, nil
}

// ListOrders returns order rows, optionally filtered by status.
// A nil status returns every order. The filter is a case-insensitive
// contains match, so "aberto" also matches "abertos" and "em aberto"
// as exported by the ERP.
func (s *Store) ListOrders(ctx context.Context, status *string) ([]OrderRow, error) {
	query := `
		SELECT pedido, item, cliente, produto, quantidade, status, data_entrega,
		       GREATEST(0, CURRENT_DATE - data_entrega) AS dias_atraso
		FROM carteira_encomendas`
	var args []any
	if status != nil {
		query += ` WHERE LOWER(status) LIKE LOWER($1)`
		args = append(args, "%"+*status+"%")
	}
	query += ` ORDER BY data_entrega NULLS LAST, pedido, item`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	defer rows.Close()

	return scanOrderRows(rows)
}

// ListLateOrders returns orders past their delivery date that were not yet
// fulfilled, ordered by how late they are.
func (s *Store) ListLateOrders(ctx context.Context) ([]OrderRow, error) {
	rows, err := s.db.Query(ctx, `
		SELECT pedido, item, cliente, produto, quantidade, status, data_entrega,
		       CURRENT_DATE - data_entrega AS dias_atraso
		FROM carteira_encomendas
		WHERE data_entrega < CURRENT_DATE
		  AND LOWER(status) NOT LIKE 'atendido%'
		ORDER BY dias_atraso DESC, pedido, item`)
	if err != nil {
		return nil, fmt.Errorf("listing late orders: %w", err)
	}
	defer rows.Close()

	return scanOrderRows(rows)
}

func scanOrderRows(rows pgx.Rows) ([]OrderRow, error) {
	var out []OrderRow
	for rows.Next() {
		var o OrderRow
		var dias *int
		if err := rows.Scan(&o.Pedido, &o.Item, &o.Cliente, &o.Produto,
			&o.Quantidade, &o.Status, &o.DataEntrega, &dias); err != nil {
			return nil, fmt.Errorf("scanning order row: %w", err)
		}
		if dias != nil {
			o.DiasAtraso = *dias
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading order rows: %w", err)
	}
	return out, nil
}

// Maintenance thresholds for the die registry. A die needs attention when
// its remaining life drops below MinVidaUtil percent, its measured
// efficiency falls under MinEficiencia percent, or its status already says
// it is under maintenance.
const (
	MinVidaUtil   = 30.0
	MinEficiencia = 70.0
)

// ToolAnalysis returns every registered die with its maintenance flag set.
func (s *Store) ToolAnalysis(ctx context.Context) ([]ToolRow, error) {
	rows, err := s.db.Query(ctx, `
		SELECT codigo_ferramenta, nome, eficiencia_real, vida_util_restante, status
		FROM ferramentas_dados
		ORDER BY vida_util_restante NULLS LAST, codigo_ferramenta`)
	if err != nil {
		return nil, fmt.Errorf("listing tools: %w", err)
	}
	defer rows.Close()

	var out []ToolRow
	for rows.Next() {
		var t ToolRow
		if err := rows.Scan(&t.Codigo, &t.Nome, &t.EficienciaReal,
			&t.VidaUtilRestante, &t.Status); err != nil {
			return nil, fmt.Errorf("scanning tool row: %w", err)
		}
		t.NeedsMaintenance = needsMaintenance(t)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading tool rows: %w", err)
	}
	return out, nil
}

func needsMaintenance(t ToolRow) bool {
	if t.VidaUtilRestante != nil && *t.VidaUtilRestante < MinVidaUtil {
		return true
	}
	if t.EficienciaReal != nil && *t.EficienciaReal < MinEficiencia {
		return true
	}
	return strings.HasPrefix(strings.ToLower(t.Status), "manutencao") ||
		strings.HasPrefix(strings.ToLower(t.Status), "manutenção")
}

// PortfolioSummary computes the one-row rollup over the whole order book.
// Returns ErrNoData when the book is empty.
func (s *Store) PortfolioSummary(ctx context.Context) (Summary, error) {
	var sum Summary
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(DISTINCT cliente),
		       COALESCE(SUM(valor_total), 0),
		       COUNT(*) FILTER (WHERE data_entrega < CURRENT_DATE
		                          AND LOWER(status) NOT LIKE 'atendido%'),
		       COUNT(*) FILTER (WHERE LOWER(status) LIKE 'aberto%'),
		       COUNT(*) FILTER (WHERE LOWER(status) LIKE '%producao%'
		                           OR LOWER(status) LIKE '%produção%')
		FROM carteira_encomendas`).Scan(
		&sum.TotalPedidos, &sum.TotalClientes, &sum.ValorTotal,
		&sum.PedidosEmAtraso, &sum.PedidosAbertos, &sum.PedidosEmProducao,
	)
	if err != nil {
		return Summary{}, fmt.Errorf("summarizing portfolio: %w", err)
	}
	if sum.TotalPedidos == 0 {
		return Summary{}, ErrNoData
	}

	if err := s.db.QueryRow(ctx, `
		SELECT cliente
		FROM carteira_encomendas
		WHERE cliente <> ''
		GROUP BY cliente
		ORDER BY COALESCE(SUM(valor_total), 0) DESC
		LIMIT 1`).Scan(&sum.MaiorCliente); err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return Summary{}, fmt.Errorf("finding top client: %w", err)
	}

	if err := s.db.QueryRow(ctx, `
		SELECT produto
		FROM carteira_encomendas
		WHERE produto <> ''
		GROUP BY produto
		ORDER BY COALESCE(SUM(quantidade), 0) DESC
		LIMIT 1`).Scan(&sum.ProdutoMaisDemandado); err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return Summary{}, fmt.Errorf("finding top product: %w", err)
	}

	return sum, nil
}
