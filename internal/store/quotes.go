// Package store provides pgx-backed persistence for computed quotes and
// domain events.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cedran/backend-frete/internal/quote"
)

// ErrStoreUnavailable indicates the database dependency is not configured.
var ErrStoreUnavailable = errors.New("store: unavailable")

// Quotes persists quote records into carrier_quotes. One row is written per
// translated delivery option.
type Quotes struct {
	pool *pgxpool.Pool
}

// NewQuotes constructs a Quotes store backed by a pgx connection pool.
func NewQuotes(pool *pgxpool.Pool) *Quotes {
	return &Quotes{pool: pool}
}

const insertQuoteSQL = `INSERT INTO carrier_quotes
(carrier, quote_id, cart_id, method_id, description, final_shipping_cost, provider_shipping_cost, option, scheduling_dates, categories, payload, volumes)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

// SaveQuote writes a single quote record.
func (s *Quotes) SaveQuote(ctx context.Context, rec quote.Record) error {
	if s == nil || s.pool == nil {
		return ErrStoreUnavailable
	}
	args, err := insertArgs(rec)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, insertQuoteSQL, args...)
	return err
}

// SaveResultQuotes writes every record of one quote computation in a single
// transaction. With removeStale set, rows from earlier computations for the
// same cart are dropped first so only the latest quote survives.
func (s *Quotes) SaveResultQuotes(ctx context.Context, quoteID string, recs []quote.Record, removeStale bool) error {
	if s == nil || s.pool == nil {
		return ErrStoreUnavailable
	}
	if len(recs) == 0 {
		return nil
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if removeStale {
		cartID := recs[0].CartID
		if cartID != "" {
			if _, err := tx.Exec(ctx, `DELETE FROM carrier_quotes WHERE cart_id = $1 AND quote_id <> $2`, cartID, quoteID); err != nil {
				return fmt.Errorf("store: remove stale quotes: %w", err)
			}
		}
	}
	for _, rec := range recs {
		args, err := insertArgs(rec)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, insertQuoteSQL, args...); err != nil {
			return fmt.Errorf("store: insert quote: %w", err)
		}
	}
	return tx.Commit(ctx)
}

func insertArgs(rec quote.Record) ([]any, error) {
	option, err := json.Marshal(rec.Option)
	if err != nil {
		return nil, fmt.Errorf("store: encode option: %w", err)
	}
	dates, err := json.Marshal(rec.SchedulingDates)
	if err != nil {
		return nil, fmt.Errorf("store: encode scheduling dates: %w", err)
	}
	payload, err := json.Marshal(rec.Payload)
	if err != nil {
		return nil, fmt.Errorf("store: encode payload: %w", err)
	}
	volumes, err := json.Marshal(rec.Volumes)
	if err != nil {
		return nil, fmt.Errorf("store: encode volumes: %w", err)
	}
	return []any{
		rec.Carrier,
		rec.QuoteID,
		rec.CartID,
		rec.Option.DeliveryMethodID,
		rec.Option.Description,
		rec.Option.FinalShippingCost,
		rec.Option.ProviderShippingCost,
		option,
		dates,
		rec.Categories,
		payload,
		volumes,
	}, nil
}
