package quote

// unitPrice computes the cost-of-goods value for one catalog product under the
// configured pricing strategy.
//
// PricingProduct uses the product's active special price, else its final
// price. PricingProportional spreads the cart discount over the item
// proportionally to its share of the subtotal; a zero outcome is replaced by
// the configured floor value.
//
// A zero subtotal under the proportional strategy has no defined semantics
// upstream; it is treated here as "no discount to spread" rather than
// dividing by zero.
func unitPrice(p Product, s Settings, d DiscountContext) float64 {
	if s.PricingStrategy == PricingProduct {
		if p.HasSpecialPrice {
			return p.SpecialPrice
		}
		return p.FinalPrice
	}

	price := p.FinalPrice
	if d.SubtotalAmount != 0 {
		price = (p.FinalPrice/d.SubtotalAmount)*d.DiscountAmount + p.FinalPrice
	}
	if price == 0 {
		price = s.ValueOnZero
	}
	return price
}
