package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

// PortfolioRepo reads portfolios with their holdings and ledger.
type PortfolioRepo interface {
	// FindByID returns ErrNotFound when the portfolio does not exist.
	FindByID(ctx context.Context, id string) (*Portfolio, error)
	// Positions returns every position row of the portfolio, largest market
	// value first.
	Positions(ctx context.Context, portfolioID string) ([]Position, error)
	// Transactions returns ledger rows matching q, newest first.
	Transactions(ctx context.Context, portfolioID string, q TxQuery) ([]Transaction, error)
}

type portfolioRepo struct {
	conn sqlx.SqlConn
}

func newPortfolioRepo(deps Dependencies) PortfolioRepo {
	return &portfolioRepo{conn: deps.DBConn}
}

type portfolioRow struct {
	ID             string         `db:"id"`
	UserID         string         `db:"user_id"`
	Name           string         `db:"name"`
	Description    sql.NullString `db:"description"`
	Currency       string         `db:"currency"`
	InitialBalance float64        `db:"initial_balance"`
	CurrentBalance float64        `db:"current_balance"`
	IsActive       bool           `db:"is_active"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

func (r *portfolioRepo) FindByID(ctx context.Context, id string) (*Portfolio, error) {
	query := `
SELECT id, user_id, name, description, currency, initial_balance, current_balance, is_active, created_at, updated_at
FROM public.portfolios
WHERE id = $1`
	var row portfolioRow
	if err := r.conn.QueryRowCtx(ctx, &row, query, id); err != nil {
		if errors.Is(err, sqlx.ErrNotFound) {
			return nil, fmt.Errorf("portfolioRepo.FindByID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("portfolioRepo.FindByID query: %w", err)
	}
	return &Portfolio{
		ID:             row.ID,
		UserID:         row.UserID,
		Name:           row.Name,
		Description:    row.Description.String,
		Currency:       row.Currency,
		InitialBalance: row.InitialBalance,
		CurrentBalance: row.CurrentBalance,
		IsActive:       row.IsActive,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}, nil
}

type positionRow struct {
	ID            string          `db:"id"`
	PortfolioID   string          `db:"portfolio_id"`
	SecurityID    string          `db:"security_id"`
	Symbol        string          `db:"symbol"`
	Name          string          `db:"name"`
	Sector        sql.NullString  `db:"sector"`
	SecurityType  string          `db:"security_type"`
	Quantity      float64         `db:"quantity"`
	AverageCost   float64         `db:"average_cost"`
	MarketValue   sql.NullFloat64 `db:"market_value"`
	UnrealizedPnL sql.NullFloat64 `db:"unrealized_pnl"`
}

func (r *portfolioRepo) Positions(ctx context.Context, portfolioID string) ([]Position, error) {
	query := `
SELECT
    p.id,
    p.portfolio_id,
    p.security_id,
    s.symbol,
    s.name,
    s.sector,
    s.security_type,
    p.quantity,
    p.average_cost,
    p.market_value,
    p.unrealized_pnl
FROM public.positions p
JOIN public.securities s ON s.id = p.security_id
WHERE p.portfolio_id = $1
ORDER BY p.market_value DESC NULLS LAST, s.symbol`

	var rows []positionRow
	if err := r.conn.QueryRowsCtx(ctx, &rows, query, portfolioID); err != nil {
		return nil, fmt.Errorf("portfolioRepo.Positions query: %w", err)
	}
	result := make([]Position, 0, len(rows))
	for _, row := range rows {
		result = append(result, Position{
			ID:            row.ID,
			PortfolioID:   row.PortfolioID,
			SecurityID:    row.SecurityID,
			Symbol:        row.Symbol,
			Name:          row.Name,
			Sector:        row.Sector.String,
			SecurityType:  row.SecurityType,
			Quantity:      row.Quantity,
			AverageCost:   row.AverageCost,
			MarketValue:   row.MarketValue.Float64,
			UnrealizedPnL: row.UnrealizedPnL.Float64,
		})
	}
	return result, nil
}

type transactionRow struct {
	ID          string          `db:"id"`
	PortfolioID string          `db:"portfolio_id"`
	SecurityID  sql.NullString  `db:"security_id"`
	OrderID     sql.NullString  `db:"order_id"`
	Symbol      sql.NullString  `db:"symbol"`
	Type        string          `db:"transaction_type"`
	Quantity    sql.NullFloat64 `db:"quantity"`
	Price       sql.NullFloat64 `db:"price"`
	Amount      float64         `db:"total_amount"`
	Fee         sql.NullFloat64 `db:"fees"`
	ExecutedAt  time.Time       `db:"executed_at"`
}

func (r *portfolioRepo) Transactions(ctx context.Context, portfolioID string, q TxQuery) ([]Transaction, error) {
	query := `
SELECT
    t.id,
    t.portfolio_id,
    t.security_id,
    t.order_id,
    s.symbol,
    t.transaction_type,
    t.quantity,
    t.price,
    t.total_amount,
    t.fees,
    t.executed_at
FROM public.transactions t
LEFT JOIN public.securities s ON s.id = t.security_id
WHERE t.portfolio_id = $1
%s
ORDER BY t.executed_at DESC
%s`

	args := []any{portfolioID}
	var where []string
	if len(q.Types) > 0 {
		args = append(args, pq.Array(typeStrings(q.Types)))
		where = append(where, fmt.Sprintf("AND t.transaction_type = ANY($%d)", len(args)))
	}
	if !q.Since.IsZero() {
		args = append(args, q.Since)
		where = append(where, fmt.Sprintf("AND t.executed_at >= $%d", len(args)))
	}
	var page string
	if q.Limit > 0 {
		args = append(args, q.Limit)
		page = fmt.Sprintf("LIMIT $%d", len(args))
	}
	if q.Offset > 0 {
		args = append(args, q.Offset)
		page += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	finalQuery := fmt.Sprintf(query, strings.Join(where, "\n"), page)
	var rows []transactionRow
	if err := r.conn.QueryRowsCtx(ctx, &rows, finalQuery, args...); err != nil {
		return nil, fmt.Errorf("portfolioRepo.Transactions query: %w", err)
	}

	result := make([]Transaction, 0, len(rows))
	for _, row := range rows {
		tx := Transaction{
			ID:          row.ID,
			PortfolioID: row.PortfolioID,
			SecurityID:  row.SecurityID.String,
			Symbol:      row.Symbol.String,
			Type:        TransactionType(row.Type),
			Quantity:    row.Quantity.Float64,
			Price:       row.Price.Float64,
			Amount:      row.Amount,
			Fee:         row.Fee.Float64,
			ExecutedAt:  row.ExecutedAt,
		}
		if row.OrderID.Valid {
			value := row.OrderID.String
			tx.OrderID = &value
		}
		result = append(result, tx)
	}
	return result, nil
}
