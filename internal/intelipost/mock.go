package intelipost

import (
	"context"
	"fmt"
	"time"

	"github.com/cedran/backend-frete/internal/quote"
)

// MockClient returns canned quotes without touching the network. Useful for
// local development when no aggregator credentials are available.
type MockClient struct {
	Delay time.Duration
}

func (m MockClient) QuoteByProducts(ctx context.Context, payload quote.Payload) (quote.Response, error) {
	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return quote.Response{}, ctx.Err()
		}
	}
	qty := 0
	for _, p := range payload.Products {
		qty += p.Quantity
	}
	return quote.Response{
		ID: fmt.Sprintf("mock-%d", time.Now().UnixNano()),
		Volumes: []quote.Volume{
			{Weight: payload.CartWeight},
		},
		DeliveryOptions: []quote.DeliveryOption{
			{
				DeliveryMethodID:             1,
				Description:                  "Normal",
				FinalShippingCost:            19.90,
				DeliveryEstimateBusinessDays: 5,
			},
			{
				DeliveryMethodID:             2,
				Description:                  "Expresso",
				FinalShippingCost:            34.50,
				DeliveryEstimateBusinessDays: 2,
			},
		},
	}, nil
}

func (m MockClient) AvailableSchedulingDates(ctx context.Context, originZip, destZip string, methodID int64) ([]string, error) {
	base := time.Now().AddDate(0, 0, 2)
	dates := make([]string, 0, 3)
	for i := 0; i < 3; i++ {
		dates = append(dates, base.AddDate(0, 0, i).Format("2006-01-02"))
	}
	return dates, nil
}
