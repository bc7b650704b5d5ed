package freeship

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/cedran/backend-frete/internal/quote"
)

func newTestEvaluator(t *testing.T) (*Evaluator, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return &Evaluator{Client: client, TTL: 10 * time.Minute}, mr
}

func TestCheckFreeShippingSetsFlagOnZeroCostOption(t *testing.T) {
	e, mr := newTestEvaluator(t)
	resp := quote.Response{
		ID: "q-1",
		DeliveryOptions: []quote.DeliveryOption{
			{DeliveryMethodID: 1, FinalShippingCost: 25.9},
			{DeliveryMethodID: 2, FinalShippingCost: 0},
		},
	}
	require.NoError(t, e.CheckFreeShipping(context.Background(), "cart-1", resp))

	granted, err := e.Granted(context.Background(), "cart-1")
	require.NoError(t, err)
	require.True(t, granted)
	require.Greater(t, mr.TTL("freeship:cart:cart-1"), time.Duration(0))
}

func TestCheckFreeShippingClearsFlagWhenAllOptionsCost(t *testing.T) {
	e, _ := newTestEvaluator(t)
	require.NoError(t, e.Client.Set(context.Background(), "freeship:cart:cart-1", "1", 0).Err())

	resp := quote.Response{
		DeliveryOptions: []quote.DeliveryOption{
			{DeliveryMethodID: 1, FinalShippingCost: 25.9},
		},
	}
	require.NoError(t, e.CheckFreeShipping(context.Background(), "cart-1", resp))

	granted, err := e.Granted(context.Background(), "cart-1")
	require.NoError(t, err)
	require.False(t, granted)
}

func TestCheckFreeShippingNoOptions(t *testing.T) {
	e, _ := newTestEvaluator(t)
	require.NoError(t, e.CheckFreeShipping(context.Background(), "cart-1", quote.Response{}))

	granted, err := e.Granted(context.Background(), "cart-1")
	require.NoError(t, err)
	require.False(t, granted)
}
