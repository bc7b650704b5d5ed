package quote

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cedran/backend-frete/internal/events"
	"github.com/cedran/backend-frete/internal/obs"
)

// Service computes shipping-rate quotes for a cart. All collaborator fields
// except Cart, Client, Config and Titles are optional; nil collaborators
// disable the corresponding side effect.
type Service struct {
	Cart         CartSource
	Client       RateClient
	Config       ConfigStore
	Quotes       QuoteStore
	FreeShipping FreeShippingEvaluator
	Titles       TitleFormatter
	Categories   CategoryResolver
	Cache        *Cache
	Events       *events.Bus
	Logger       zerolog.Logger

	// RemoveStaleQuotes drops previously persisted quote rows for the same
	// aggregator quote before saving the new batch.
	RemoveStaleQuotes bool
}

// Quote runs one complete quote computation: validate, build the shipment
// payload, call the aggregator, distribute volumes and translate each
// delivery option into an offer.
//
// A neutral "no rates" outcome is reported as ErrNoQuote; external failures
// are folded into the returned Result per the break-on-error policy and never
// escape as Go errors.
func (svc *Service) Quote(ctx context.Context, req Request) (*Result, error) {
	if svc.Cart == nil || svc.Client == nil || svc.Config == nil || svc.Titles == nil {
		return nil, errors.New("quote service not configured")
	}
	settings := ResolveSettings(svc.Config)

	if req.OriginZip == "" {
		req.OriginZip = settings.OriginZip
	}

	built, err := svc.buildPayload(ctx, req, settings)
	if err != nil {
		if errors.Is(err, ErrNoQuote) {
			svc.count("no_quote")
			return nil, ErrNoQuote
		}
		svc.count("error")
		return nil, err
	}

	resp, err := svc.fetchResponse(ctx, built.payload)
	if err != nil {
		svc.Logger.Error().Err(err).Str("cart_id", req.CartID).Msg("rate quote request failed")
		svc.count("failed")
		svc.emit(ctx, events.TopicQuoteFailed, req.CartID, map[string]any{"error": err.Error()})
		return &Result{Errors: []Error{svc.serviceError(settings, err)}, Failed: true}, nil
	}

	svc.checkFreeShipping(ctx, req.CartID, resp)

	volumes := resultVolumes(resp, int(built.totalItems))
	categories := uniqueCategories(built.categories)

	result := &Result{}
	var records []Record
	for _, option := range resp.DeliveryOptions {
		tr := svc.translateOption(ctx, option, req, settings, resp.ID, built.payload, volumes)
		if tr.abort != nil {
			svc.count("failed")
			return &Result{Errors: []Error{*tr.abort}, Failed: true}, nil
		}
		if tr.notice != nil {
			result.Failed = true
			result.Errors = append(result.Errors, *tr.notice)
		}
		if tr.skipped {
			continue
		}
		tr.record.Categories = categories
		records = append(records, tr.record)
		result.Offers = append(result.Offers, tr.offer)
	}

	svc.persist(ctx, resp.ID, records)
	svc.count("ok")
	svc.emit(ctx, events.TopicQuoteComputed, req.CartID, map[string]any{
		"quoteId": resp.ID,
		"offers":  len(result.Offers),
		"errors":  len(result.Errors),
	})
	return result, nil
}

// fetchResponse consults the Redis response cache before going to the
// aggregator. Cache failures degrade silently to a live call.
func (svc *Service) fetchResponse(ctx context.Context, payload Payload) (Response, error) {
	if svc.Cache != nil {
		if resp, ok := svc.Cache.Get(ctx, payload); ok {
			return resp, nil
		}
	}
	resp, err := svc.Client.QuoteByProducts(ctx, payload)
	if err != nil {
		return Response{}, err
	}
	if svc.Cache != nil {
		if err := svc.Cache.Set(ctx, payload, resp); err != nil {
			svc.Logger.Warn().Err(err).Msg("cache quote response")
		}
	}
	return resp, nil
}

// resultVolumes pairs each returned volume with its share of the total item
// count. A response without volumes yields nil; distribution requires at
// least one volume.
func resultVolumes(resp Response, totalItems int) []ResultVolume {
	if len(resp.Volumes) == 0 {
		return nil
	}
	spread := SpreadQuantity(totalItems, len(resp.Volumes))
	volumes := make([]ResultVolume, len(resp.Volumes))
	for i, v := range resp.Volumes {
		volumes[i] = ResultVolume{Volume: v, ProductsQuantity: spread[i]}
	}
	return volumes
}

func (svc *Service) checkFreeShipping(ctx context.Context, cartID string, resp Response) {
	if svc.FreeShipping == nil {
		return
	}
	if err := svc.FreeShipping.CheckFreeShipping(ctx, cartID, resp); err != nil {
		svc.Logger.Warn().Err(err).Str("cart_id", cartID).Msg("free shipping evaluation")
	}
}

// persist is fire-and-forget: persistence failures are logged, never returned.
func (svc *Service) persist(ctx context.Context, quoteID string, records []Record) {
	if svc.Quotes == nil || len(records) == 0 {
		return
	}
	err := svc.Quotes.SaveResultQuotes(ctx, quoteID, records, svc.RemoveStaleQuotes)
	if err == nil {
		return
	}
	svc.Logger.Error().Err(err).Str("quote_id", quoteID).Msg("save result quotes")
	// Batch failed; save each record on its own so one bad row does not lose
	// the whole quote.
	for _, rec := range records {
		if err := svc.Quotes.SaveQuote(ctx, rec); err != nil {
			svc.Logger.Error().Err(err).Str("quote_id", quoteID).Msg("save quote record")
		}
	}
}

func (svc *Service) emit(ctx context.Context, topic, cartID string, payload map[string]any) {
	if svc.Events == nil {
		return
	}
	aggregate, err := uuid.Parse(cartID)
	if err != nil {
		return
	}
	if _, err := svc.Events.Emit(ctx, topic, aggregate, payload); err != nil {
		svc.Logger.Warn().Err(err).Str("topic", topic).Msg("emit quote event")
	}
}

func (svc *Service) count(outcome string) {
	if obs.QuoteTotal != nil {
		obs.QuoteTotal.WithLabelValues(outcome).Inc()
	}
}

// uniqueCategories flattens per-entry category labels preserving first-seen
// order.
func uniqueCategories(perEntry [][]string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, entry := range perEntry {
		for _, c := range entry {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}
