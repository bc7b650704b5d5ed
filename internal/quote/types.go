package quote

import "context"

// ProductType discriminates simple items from composite parents whose physical
// attributes live on the parent record.
type ProductType string

// Product types recognised by the payload builder. Configurable and bundle
// items are composite parents; everything else ships as-is.
const (
	TypeSimple       ProductType = "simple"
	TypeConfigurable ProductType = "configurable"
	TypeBundle       ProductType = "bundle"
)

// Composite reports whether the product type carries its children's attributes.
func (t ProductType) Composite() bool {
	return t == TypeConfigurable || t == TypeBundle
}

// LineItem is one cart row as supplied by the cart accessor for a single
// quote request.
type LineItem struct {
	ProductID string
	Type      ProductType
	Weight    float64
	Qty       float64
	Price     float64
	ParentSKU string
}

// Product is the catalog view the quote computation needs. Attributes holds
// raw attribute values keyed by name, the way the catalog stores them; an
// absent or empty entry means the attribute is not set on the product.
type Product struct {
	ID              string
	SKU             string
	Type            ProductType
	Attributes      map[string]string
	FinalPrice      float64
	SpecialPrice    float64
	HasSpecialPrice bool
}

// Attr returns the named attribute parsed as a number, or zero when the
// attribute is unset or not numeric.
func (p Product) Attr(name string) float64 {
	return parseFloat(p.TextAttr(name))
}

// TextAttr returns the raw attribute value, or the empty string when unset.
func (p Product) TextAttr(name string) string {
	if name == "" || p.Attributes == nil {
		return ""
	}
	return p.Attributes[name]
}

// DiscountContext carries the cart-level amounts used by the proportional
// pricing strategy. Both values come from the cart collaborator and are not
// recomputed here.
type DiscountContext struct {
	SubtotalAmount float64
	DiscountAmount float64
}

// Request describes one shipping-quote computation.
type Request struct {
	CartID                string
	OriginZip             string
	DestinationZip        string
	SellerID              string
	AdditionalInformation string
	PageName              string
	Discount              DiscountContext
}

// PayloadProduct is one per-item entry of the shipment payload sent to the
// rate aggregator.
type PayloadProduct struct {
	Weight      float64 `json:"weight"`
	CostOfGoods float64 `json:"cost_of_goods"`
	Height      float64 `json:"height"`
	Width       float64 `json:"width"`
	Length      float64 `json:"length"`
	Quantity    int     `json:"quantity"`
	SKU         string  `json:"sku_id"`
	ID          string  `json:"id"`
	CanGroup    bool    `json:"can_group"`
}

// Payload is the normalized shipment request. It is built once per quote
// request and never mutated after being sent.
type Payload struct {
	Carrier               string           `json:"carrier"`
	OriginZipCode         string           `json:"origin_zip_code"`
	DestinationZipCode    string           `json:"destination_zip_code"`
	Products              []PayloadProduct `json:"products"`
	AdditionalInformation string           `json:"additional_information"`
	Identification        string           `json:"identification"`
	CartWeight            float64          `json:"cart_weight"`
	CartAmount            float64          `json:"cart_amount"`
	CartQtys              float64          `json:"cart_qtys"`
	SellerID              string           `json:"seller_id"`
}

// Volume is one parcel returned by the aggregator.
type Volume struct {
	Weight float64 `json:"weight"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Length float64 `json:"length"`
}

// ResultVolume is a Volume augmented with the item count apportioned to it.
type ResultVolume struct {
	Volume
	ProductsQuantity int `json:"products_quantity"`
}

// DeliveryOption is one shipping method offered in the aggregator response.
type DeliveryOption struct {
	DeliveryMethodID             int64   `json:"delivery_method_id"`
	Description                  string  `json:"description"`
	DeliveryMethodName           string  `json:"delivery_method_name"`
	DeliveryMethodType           string  `json:"delivery_method_type"`
	FinalShippingCost            float64 `json:"final_shipping_cost"`
	ProviderShippingCost         float64 `json:"provider_shipping_cost"`
	DeliveryNote                 string  `json:"delivery_note,omitempty"`
	SchedulingEnabled            bool    `json:"scheduling_enabled,omitempty"`
	DeliveryEstimateBusinessDays int     `json:"delivery_estimate_business_days,omitempty"`
	DeliveryEstimateDateExactISO string  `json:"delivery_estimate_date_exact_iso,omitempty"`
}

// Response is the aggregator result consumed by the translator.
type Response struct {
	ID              string           `json:"id"`
	Volumes         []Volume         `json:"volumes"`
	DeliveryOptions []DeliveryOption `json:"delivery_options"`
}

// Offer is one priced shipping method presented to the shopper.
type Offer struct {
	Carrier              string   `json:"carrier"`
	CarrierTitle         string   `json:"carrierTitle"`
	Method               string   `json:"method"`
	Title                string   `json:"title"`
	Description          string   `json:"description"`
	DeliveryMethodType   string   `json:"deliveryMethodType"`
	Price                float64  `json:"price"`
	Cost                 float64  `json:"cost"`
	Scheduled            bool     `json:"scheduled"`
	WarnMessage          string   `json:"warnMessage,omitempty"`
	EstimateBusinessDays int      `json:"estimateBusinessDays,omitempty"`
	EstimateDateExactISO string   `json:"estimateDateExactIso,omitempty"`
	SchedulingDates      []string `json:"schedulingDates,omitempty"`
}

// Error is a carrier-attributed failure surfaced to the shopper.
type Error struct {
	Carrier      string `json:"carrier"`
	CarrierTitle string `json:"carrierTitle"`
	Message      string `json:"message"`
}

// Result aggregates offers and accumulated errors for one quote computation.
// When break-on-error is configured a failed computation holds exactly one
// Error and no Offers.
type Result struct {
	Offers []Offer `json:"offers"`
	Errors []Error `json:"errors,omitempty"`
	Failed bool    `json:"failed,omitempty"`
}

// Record is one persisted quote row, produced per translated offer.
type Record struct {
	Carrier         string
	QuoteID         string
	CartID          string
	Option          DeliveryOption
	SchedulingDates []string
	Categories      []string
	Payload         Payload
	Volumes         []ResultVolume
}

// CartSource enumerates cart contents and resolves catalog products.
type CartSource interface {
	AllItems(ctx context.Context, cartID string) ([]LineItem, error)
	ProductByID(ctx context.Context, id string) (Product, error)
	Discounts(ctx context.Context, cartID string) (DiscountContext, error)
}

// RateClient talks to the external rate aggregator.
type RateClient interface {
	QuoteByProducts(ctx context.Context, payload Payload) (Response, error)
	AvailableSchedulingDates(ctx context.Context, originZip, destZip string, methodID int64) ([]string, error)
}

// QuoteStore persists quote records. Persistence is a side effect of quoting;
// its failure never alters the returned result.
type QuoteStore interface {
	SaveQuote(ctx context.Context, rec Record) error
	SaveResultQuotes(ctx context.Context, quoteID string, recs []Record, removeStale bool) error
}

// FreeShippingEvaluator inspects a quote response for free-shipping promotions.
// Side-effecting; the quote computation ignores its outcome.
type FreeShippingEvaluator interface {
	CheckFreeShipping(ctx context.Context, cartID string, resp Response) error
}

// TitleFormatter renders shopper-facing method titles.
type TitleFormatter interface {
	CustomCarrierTitle(carrier, label, estimate string, scheduled bool) string
}

// CategoryResolver resolves product category labels when no category attribute
// mapping is configured.
type CategoryResolver interface {
	ProductCategories(ctx context.Context, p Product, composite bool) ([]string, error)
}
