package quote

import (
	"context"
	"errors"
)

// ErrNoQuote signals a neutral "no rates available" outcome: the carrier is
// disabled or the destination cannot be quoted. It is not a failure and must
// not be surfaced to the shopper as one.
var ErrNoQuote = errors.New("no shipping quote available")

// ErrProductNotFound is returned by CartSource implementations when a cart
// line references a product that no longer exists. Such lines are skipped.
var ErrProductNotFound = errors.New("product not found")

// compositeGroup holds a configurable/bundle parent and the derived values its
// children inherit.
type compositeGroup struct {
	height     float64
	width      float64
	length     float64
	weight     float64
	qty        float64
	categories []string
}

// builtPayload couples the wire payload with builder byproducts that never
// leave the service: the total item count used for volume distribution and
// the per-entry category labels persisted with each quote record.
type builtPayload struct {
	payload    Payload
	totalItems float64
	categories [][]string
}

// buildPayload folds the cart lines into a single shipment payload.
//
// Composite parents are indexed by SKU in a first pass so that a child is
// resolved correctly regardless of cart ordering. Simple items then resolve
// their physical attributes through the item → composite → contingency chain
// and their price through the configured strategy, accumulating cart totals
// as they go.
func (svc *Service) buildPayload(ctx context.Context, req Request, s Settings) (builtPayload, error) {
	if !s.Enabled {
		return builtPayload{}, ErrNoQuote
	}
	if req.DestinationZip == "" {
		return builtPayload{}, ErrNoQuote
	}
	destZip := SanitizeZip(req.DestinationZip)
	if !validDestZip(destZip) {
		return builtPayload{}, ErrNoQuote
	}

	items, err := svc.Cart.AllItems(ctx, req.CartID)
	if err != nil {
		return builtPayload{}, err
	}

	// First pass: index composite parents by SKU.
	groups := make(map[string]compositeGroup)
	for _, item := range items {
		if !item.Type.Composite() {
			continue
		}
		product, err := svc.Cart.ProductByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, ErrProductNotFound) {
				continue
			}
			return builtPayload{}, err
		}
		groups[product.SKU] = compositeGroup{
			height:     product.Attr(s.HeightAttribute),
			width:      product.Attr(s.WidthAttribute),
			length:     product.Attr(s.LengthAttribute),
			weight:     item.Weight / s.WeightUnit,
			qty:        item.Qty,
			categories: svc.resolveCategories(ctx, product, s, true),
		}
	}

	built := builtPayload{
		payload: Payload{
			Carrier:               s.CarrierCode,
			OriginZipCode:         SanitizeZip(req.OriginZip),
			DestinationZipCode:    destZip,
			AdditionalInformation: req.AdditionalInformation,
			Identification:        req.PageName,
			SellerID:              req.SellerID,
		},
	}

	// Second pass: emit one payload entry per simple item.
	for _, item := range items {
		if item.Type.Composite() {
			continue
		}
		product, err := svc.Cart.ProductByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, ErrProductNotFound) {
				continue
			}
			return builtPayload{}, err
		}

		group, grouped := groups[item.ParentSKU]
		qtyMultiplier := 1.0
		if grouped {
			qtyMultiplier = group.qty
		}

		price := unitPrice(product, s, req.Discount)
		height := resolveAttribute(product.Attr(s.HeightAttribute), group.height, s.HeightContingency)
		width := resolveAttribute(product.Attr(s.WidthAttribute), group.width, s.WidthContingency)
		length := resolveAttribute(product.Attr(s.LengthAttribute), group.length, s.LengthContingency)
		weight := resolveAttribute(item.Weight/s.WeightUnit, group.weight, s.WeightContingency)

		categories := svc.resolveCategories(ctx, product, s, false)
		if len(categories) == 0 && grouped {
			categories = group.categories
		}

		qty := item.Qty * qtyMultiplier
		built.totalItems += qty
		built.payload.CartWeight += weight * qty
		built.payload.CartAmount += price * qty
		built.payload.CartQtys += qty

		built.payload.Products = append(built.payload.Products, PayloadProduct{
			Weight:      weight,
			CostOfGoods: price,
			Height:      height,
			Width:       width,
			Length:      length,
			Quantity:    int(qty),
			SKU:         product.SKU,
			ID:          product.ID,
			CanGroup:    true,
		})
		built.categories = append(built.categories, categories)
	}

	return built, nil
}

// resolveCategories prefers the configured category attribute and falls back
// to the category resolver collaborator. Category data only decorates
// persisted quote records; failures are ignored.
func (svc *Service) resolveCategories(ctx context.Context, p Product, s Settings, composite bool) []string {
	if s.CategoryAttribute != "" {
		if v := p.TextAttr(s.CategoryAttribute); v != "" {
			return []string{v}
		}
		return nil
	}
	if svc.Categories == nil {
		return nil
	}
	categories, err := svc.Categories.ProductCategories(ctx, p, composite)
	if err != nil {
		return nil
	}
	return categories
}
