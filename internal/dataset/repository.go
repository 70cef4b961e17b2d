package dataset

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PriceRepository loads the daily price panel from PostgreSQL
// SSOT: panel reads from the database happen only here
type PriceRepository struct {
	pool *pgxpool.Pool
}

// NewPriceRepository creates a new price repository
func NewPriceRepository(pool *pgxpool.Pool) *PriceRepository {
	return &PriceRepository{pool: pool}
}

// LoadPanel loads daily prices within [from, to] as a Frame with
// open/high/low/close/volume/amount columns
func (r *PriceRepository) LoadPanel(ctx context.Context, from, to time.Time) (*Frame, error) {
	query := `
		SELECT trade_date, code, open_price, high_price, low_price, close_price, volume, amount
		FROM data.daily_prices
		WHERE trade_date BETWEEN $1 AND $2
		ORDER BY trade_date ASC, code ASC
	`

	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []Key
	cols := map[string][]float64{
		"open": nil, "high": nil, "low": nil, "close": nil, "volume": nil, "amount": nil,
	}

	for rows.Next() {
		var date time.Time
		var code string
		var open, high, low, close_, volume, amount float64
		if err := rows.Scan(&date, &code, &open, &high, &low, &close_, &volume, &amount); err != nil {
			return nil, err
		}
		keys = append(keys, Key{Date: date, Code: code})
		cols["open"] = append(cols["open"], open)
		cols["high"] = append(cols["high"], high)
		cols["low"] = append(cols["low"], low)
		cols["close"] = append(cols["close"], close_)
		cols["volume"] = append(cols["volume"], volume)
		cols["amount"] = append(cols["amount"], amount)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return BuildFrame(keys, cols, []string{"open", "high", "low", "close", "volume", "amount"})
}
