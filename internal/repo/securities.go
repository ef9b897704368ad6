package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/stores/sqlx"

	"brokerage-api/pkg/market"
)

// SecurityRepo persists security metadata and historical candles.
type SecurityRepo interface {
	// FindBySymbol returns ErrNotFound when the symbol is unknown.
	FindBySymbol(ctx context.Context, symbol string) (*Security, error)
	// Insert stores sec unless its symbol already exists, and returns the
	// stored row either way.
	Insert(ctx context.Context, sec Security) (*Security, error)
	// UpsertCandles writes candles keyed by (security, timestamp, timeframe),
	// overwriting prices and volume on conflict. It returns the number written.
	UpsertCandles(ctx context.Context, securityID string, timeframe market.Timeframe, candles []market.Candle) (int, error)
}

type securityRepo struct {
	conn sqlx.SqlConn
}

func newSecurityRepo(deps Dependencies) SecurityRepo {
	return &securityRepo{conn: deps.DBConn}
}

const securityColumns = `id, symbol, name, exchange, sector, industry, security_type, created_at`

type securityRow struct {
	ID           string         `db:"id"`
	Symbol       string         `db:"symbol"`
	Name         string         `db:"name"`
	Exchange     string         `db:"exchange"`
	Sector       sql.NullString `db:"sector"`
	Industry     sql.NullString `db:"industry"`
	SecurityType string         `db:"security_type"`
	CreatedAt    time.Time      `db:"created_at"`
}

func (row securityRow) toSecurity() *Security {
	return &Security{
		ID:           row.ID,
		Symbol:       row.Symbol,
		Name:         row.Name,
		Exchange:     row.Exchange,
		Sector:       row.Sector.String,
		Industry:     row.Industry.String,
		SecurityType: row.SecurityType,
		CreatedAt:    row.CreatedAt,
	}
}

func (r *securityRepo) FindBySymbol(ctx context.Context, symbol string) (*Security, error) {
	query := `SELECT ` + securityColumns + ` FROM public.securities WHERE symbol = $1`
	var row securityRow
	if err := r.conn.QueryRowCtx(ctx, &row, query, strings.ToUpper(symbol)); err != nil {
		if errors.Is(err, sqlx.ErrNotFound) {
			return nil, fmt.Errorf("securityRepo.FindBySymbol %s: %w", symbol, ErrNotFound)
		}
		return nil, fmt.Errorf("securityRepo.FindBySymbol query: %w", err)
	}
	return row.toSecurity(), nil
}

func (r *securityRepo) Insert(ctx context.Context, sec Security) (*Security, error) {
	query := `
INSERT INTO public.securities (symbol, name, exchange, sector, industry, security_type)
VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6)
ON CONFLICT (symbol) DO NOTHING`
	symbol := strings.ToUpper(sec.Symbol)
	if _, err := r.conn.ExecCtx(ctx, query, symbol, sec.Name, sec.Exchange, sec.Sector, sec.Industry, sec.SecurityType); err != nil {
		return nil, fmt.Errorf("securityRepo.Insert exec: %w", err)
	}
	return r.FindBySymbol(ctx, symbol)
}

func (r *securityRepo) UpsertCandles(ctx context.Context, securityID string, timeframe market.Timeframe, candles []market.Candle) (int, error) {
	if len(candles) == 0 {
		return 0, nil
	}
	query := `
INSERT INTO public.historical_data (security_id, timestamp, timeframe, open, high, low, close, volume)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (security_id, timestamp, timeframe) DO UPDATE SET
    open = EXCLUDED.open,
    high = EXCLUDED.high,
    low = EXCLUDED.low,
    close = EXCLUDED.close,
    volume = EXCLUDED.volume`

	err := r.conn.TransactCtx(ctx, func(ctx context.Context, session sqlx.Session) error {
		for _, c := range candles {
			if _, err := session.ExecCtx(ctx, query, securityID, c.Timestamp, string(timeframe), c.Open, c.High, c.Low, c.Close, c.Volume); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("securityRepo.UpsertCandles exec: %w", err)
	}
	return len(candles), nil
}
