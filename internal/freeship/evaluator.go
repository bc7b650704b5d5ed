// Package freeship flags carts eligible for free shipping based on the rate
// aggregator's response.
package freeship

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/cedran/backend-frete/internal/events"
	"github.com/cedran/backend-frete/internal/quote"
)

const keyPrefix = "freeship:cart:"

// Evaluator inspects quote responses for zero-cost delivery options and
// records eligibility in redis. The flag is advisory; quote computation never
// depends on it.
type Evaluator struct {
	Client *redis.Client
	TTL    time.Duration
	Bus    *events.Bus
	Logger zerolog.Logger
}

// CheckFreeShipping marks the cart as free-shipping eligible when any
// delivery option costs nothing. The flag expires after TTL.
func (e *Evaluator) CheckFreeShipping(ctx context.Context, cartID string, resp quote.Response) error {
	if e == nil || e.Client == nil {
		return errors.New("freeship: client not configured")
	}
	eligible := false
	for _, opt := range resp.DeliveryOptions {
		if opt.FinalShippingCost == 0 {
			eligible = true
			break
		}
	}
	if !eligible {
		return e.Client.Del(ctx, keyPrefix+cartID).Err()
	}
	ttl := e.TTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if err := e.Client.Set(ctx, keyPrefix+cartID, "1", ttl).Err(); err != nil {
		return err
	}
	e.emitGranted(ctx, cartID, resp.ID)
	return nil
}

// Granted reports whether the cart currently holds the free-shipping flag.
func (e *Evaluator) Granted(ctx context.Context, cartID string) (bool, error) {
	if e == nil || e.Client == nil {
		return false, errors.New("freeship: client not configured")
	}
	n, err := e.Client.Exists(ctx, keyPrefix+cartID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (e *Evaluator) emitGranted(ctx context.Context, cartID, quoteID string) {
	if e.Bus == nil {
		return
	}
	aggregate, err := uuid.Parse(cartID)
	if err != nil {
		return
	}
	payload := map[string]string{"cart_id": cartID, "quote_id": quoteID}
	if _, err := e.Bus.Emit(ctx, events.TopicFreeShippingGranted, aggregate, payload); err != nil {
		e.Logger.Warn().Err(err).Str("cart_id", cartID).Msg("emit free shipping event")
	}
}
