package quote

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) *Cache {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, ttl)
}

func TestCacheRoundTrip(t *testing.T) {
	c := newTestCache(t, time.Minute)
	payload := Payload{Carrier: "intelipost", OriginZipCode: "01310100", DestinationZipCode: "04538132"}
	resp := singleOptionResponse()

	_, ok := c.Get(context.Background(), payload)
	require.False(t, ok)

	require.NoError(t, c.Set(context.Background(), payload, resp))

	got, ok := c.Get(context.Background(), payload)
	require.True(t, ok)
	require.Equal(t, resp.ID, got.ID)
	require.Len(t, got.DeliveryOptions, 1)
}

func TestCacheKeyedByPayload(t *testing.T) {
	c := newTestCache(t, time.Minute)
	payload := Payload{Carrier: "intelipost", DestinationZipCode: "04538132"}
	require.NoError(t, c.Set(context.Background(), payload, singleOptionResponse()))

	other := payload
	other.DestinationZipCode = "01310100"
	_, ok := c.Get(context.Background(), other)
	require.False(t, ok)
}

func TestCacheDisabledWithoutTTL(t *testing.T) {
	c := newTestCache(t, 0)
	payload := Payload{Carrier: "intelipost"}
	require.NoError(t, c.Set(context.Background(), payload, singleOptionResponse()))
	_, ok := c.Get(context.Background(), payload)
	require.False(t, ok)
}

func TestServiceUsesCachedResponse(t *testing.T) {
	client := &fakeClient{resp: singleOptionResponse()}
	svc := newTestService(simpleCart(), client, baseConfig())
	svc.Cache = newTestCache(t, time.Minute)

	_, err := svc.Quote(context.Background(), quoteRequestFixture())
	require.NoError(t, err)
	require.Equal(t, 1, client.quoteCalls)

	_, err = svc.Quote(context.Background(), quoteRequestFixture())
	require.NoError(t, err)
	require.Equal(t, 1, client.quoteCalls, "second quote must be served from cache")
}
