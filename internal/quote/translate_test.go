package quote

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

var errTimeout = errors.New("request timed out")

func TestEstimateDisplayBusinessDays(t *testing.T) {
	option := DeliveryOption{DeliveryEstimateBusinessDays: 4, DeliveryEstimateDateExactISO: "2026-09-10"}

	// feature off: the exact date is never used
	require.Equal(t, "4", estimateDisplay(option, Settings{}))
}

func TestEstimateDisplayExactDate(t *testing.T) {
	s := Settings{EstimateDeliveryDate: true}
	option := DeliveryOption{DeliveryEstimateBusinessDays: 4, DeliveryEstimateDateExactISO: "2026-09-10"}
	require.Equal(t, "10/09/2026", estimateDisplay(option, s))

	// malformed date falls back to business days
	option.DeliveryEstimateDateExactISO = "not-a-date"
	require.Equal(t, "4", estimateDisplay(option, s))

	// no exact date supplied
	option.DeliveryEstimateDateExactISO = ""
	require.Equal(t, "4", estimateDisplay(option, s))
}

func TestEstimateDisplayEmpty(t *testing.T) {
	require.Equal(t, "", estimateDisplay(DeliveryOption{}, Settings{}))
}

func TestFormatISODateLayouts(t *testing.T) {
	for _, iso := range []string{
		"2026-09-10T15:04:05Z",
		"2026-09-10T15:04:05",
		"2026-09-10",
	} {
		formatted, ok := formatISODate(iso)
		require.True(t, ok, iso)
		require.Equal(t, "10/09/2026", formatted)
	}

	_, ok := formatISODate("10/09/2026")
	require.False(t, ok)
}

func TestServiceErrorPrefersConfiguredMessage(t *testing.T) {
	svc := &Service{}
	s := Settings{CarrierCode: "intelipost", Title: "Intelipost", ServiceErrorMessage: "Tente novamente."}

	errOut := svc.serviceError(s, errTimeout)
	require.Equal(t, "Tente novamente.", errOut.Message)
	require.Equal(t, "intelipost", errOut.Carrier)

	s.ServiceErrorMessage = ""
	errOut = svc.serviceError(s, errTimeout)
	require.Equal(t, errTimeout.Error(), errOut.Message)
}
