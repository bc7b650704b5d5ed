package quote

import (
	"strconv"
	"strings"
)

// ConfigStore is a flat key lookup over the carrier configuration. Keys follow
// the carrier config names ("active", "height_attribute", ...).
type ConfigStore interface {
	Value(key string) string
}

// Settings is the immutable per-request view of the carrier configuration.
// It is resolved once at the start of a quote computation and passed
// explicitly to every component instead of being read ad hoc.
type Settings struct {
	Enabled     bool
	CarrierCode string
	Title       string
	OriginZip   string

	HeightAttribute   string
	WidthAttribute    string
	LengthAttribute   string
	CategoryAttribute string

	// WeightUnit divides raw item weights; 1000 when weights are stored in
	// grams, 1 for kilograms.
	WeightUnit        float64
	HeightContingency float64
	WidthContingency  float64
	LengthContingency float64
	WeightContingency float64

	PricingStrategy string
	ValueOnZero     float64

	BreakOnError         bool
	EstimateDeliveryDate bool
	CalendarOnlyCheckout bool

	ServiceErrorMessage string
	RiskAreaMessage     string
}

// Pricing strategies understood by the price resolver.
const (
	PricingProduct      = "product"
	PricingProportional = "proportional"
)

// ResolveSettings materialises Settings from the flat-key store. Absent keys
// fall back to neutral defaults; the weight contingency is normalised into the
// configured weight unit here so downstream code never divides again.
func ResolveSettings(store ConfigStore) Settings {
	unit := 1.0
	if store.Value("weight_unit") == "gr" {
		unit = 1000
	}
	s := Settings{
		Enabled:     parseFlag(store.Value("active")),
		CarrierCode: defaultString(store.Value("code"), "intelipost"),
		Title:       store.Value("title"),
		OriginZip:   store.Value("source_zip"),

		HeightAttribute:   store.Value("height_attribute"),
		WidthAttribute:    store.Value("width_attribute"),
		LengthAttribute:   store.Value("length_attribute"),
		CategoryAttribute: store.Value("use_category_attribute"),

		WeightUnit:        unit,
		HeightContingency: parseFloat(store.Value("height_contingency")),
		WidthContingency:  parseFloat(store.Value("width_contingency")),
		LengthContingency: parseFloat(store.Value("length_contingency")),
		WeightContingency: parseFloat(store.Value("weight_contingency")) / unit,

		PricingStrategy: defaultString(store.Value("price_config"), PricingProduct),
		ValueOnZero:     parseFloat(store.Value("value_on_zero")),

		BreakOnError:         parseFlag(store.Value("break_on_error")),
		EstimateDeliveryDate: parseFlag(store.Value("estimate_delivery_date")),
		CalendarOnlyCheckout: parseFlag(store.Value("calendar_only_checkout")),

		ServiceErrorMessage: store.Value("specificerrmsg"),
		RiskAreaMessage:     store.Value("riskareamsg"),
	}
	return s
}

// MapStore adapts a plain map to the ConfigStore interface. Useful for tests
// and for env-derived configuration.
type MapStore map[string]string

// Value implements ConfigStore.
func (m MapStore) Value(key string) string { return m[key] }

func parseFlag(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "t", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func parseFloat(value string) float64 {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0
	}
	return parsed
}

func defaultString(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
