package events

// Topic constants for domain events emitted by the quoting service.
const (
	TopicQuoteComputed       = "quote.computed"
	TopicQuoteFailed         = "quote.failed"
	TopicFreeShippingGranted = "freeshipping.granted"
)

// DefaultTopics returns the canonical list of topics notifiers may subscribe to.
func DefaultTopics() []string {
	return []string{
		TopicQuoteComputed,
		TopicQuoteFailed,
		TopicFreeShippingGranted,
	}
}
