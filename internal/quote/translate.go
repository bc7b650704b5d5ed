package quote

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// translation is the outcome of translating one delivery option. Exactly one
// of offer-bearing, skipped, or abort applies; notice may accompany an offer
// when break-on-error is off.
type translation struct {
	offer   Offer
	record  Record
	skipped bool
	notice  *Error
	abort   *Error
}

// translateOption maps one delivery option from the aggregator response into
// a shopper-facing offer plus its persistence record.
//
// A risk-area note becomes a hard error under break-on-error; otherwise it is
// accumulated and the offer still ships, decorated with a warning. Scheduling
// support triggers a blocking call to the scheduling-dates endpoint unless
// the calendar is restricted to checkout and this is not a checkout request,
// in which case the option is silently dropped.
func (svc *Service) translateOption(ctx context.Context, option DeliveryOption, req Request, s Settings, quoteID string, payload Payload, volumes []ResultVolume) translation {
	var out translation

	if option.DeliveryNote != "" {
		message := s.RiskAreaMessage
		if message == "" {
			message = option.DeliveryNote
		}
		riskErr := Error{Carrier: s.CarrierCode, CarrierTitle: s.Title, Message: message}
		if s.BreakOnError {
			out.abort = &riskErr
			return out
		}
		out.notice = &riskErr
		out.offer.WarnMessage = message
	}

	var schedulingDates []string
	if option.SchedulingEnabled {
		if s.CalendarOnlyCheckout && req.PageName != "checkout" {
			// An accumulated risk-area notice survives the skip.
			out.skipped = true
			return out
		}
		dates, err := svc.Client.AvailableSchedulingDates(ctx, req.OriginZip, req.DestinationZip, option.DeliveryMethodID)
		if err != nil {
			svcErr := svc.serviceError(s, err)
			if s.BreakOnError {
				out.abort = &svcErr
				return out
			}
			out.skipped = true
			out.notice = &svcErr
			return out
		}
		schedulingDates = dates
	}

	estimate := estimateDisplay(option, s)

	out.offer.Carrier = s.CarrierCode
	out.offer.CarrierTitle = s.Title
	out.offer.Method = fmt.Sprintf("%s_%d", s.CarrierCode, option.DeliveryMethodID)
	out.offer.Title = svc.Titles.CustomCarrierTitle(s.CarrierCode, option.Description, estimate, option.SchedulingEnabled)
	out.offer.Description = svc.Titles.CustomCarrierTitle(s.CarrierCode, option.DeliveryMethodName, estimate, option.SchedulingEnabled)
	out.offer.DeliveryMethodType = option.DeliveryMethodType
	out.offer.Price = option.FinalShippingCost
	out.offer.Cost = option.ProviderShippingCost
	out.offer.Scheduled = option.SchedulingEnabled
	out.offer.SchedulingDates = schedulingDates
	out.offer.EstimateBusinessDays = option.DeliveryEstimateBusinessDays
	out.offer.EstimateDateExactISO = option.DeliveryEstimateDateExactISO

	out.record = Record{
		Carrier:         s.CarrierCode,
		QuoteID:         quoteID,
		CartID:          req.CartID,
		Option:          option,
		SchedulingDates: schedulingDates,
		Payload:         payload,
		Volumes:         volumes,
	}
	return out
}

// estimateDisplay derives the estimate value used for title construction.
// The exact-date form wins only when the estimate-delivery-date feature is on
// and the aggregator supplied an exact ISO date; otherwise the raw
// business-days count is used. The option record itself is never modified.
func estimateDisplay(option DeliveryOption, s Settings) string {
	if s.EstimateDeliveryDate && option.DeliveryEstimateDateExactISO != "" {
		if formatted, ok := formatISODate(option.DeliveryEstimateDateExactISO); ok {
			return formatted
		}
	}
	if option.DeliveryEstimateBusinessDays > 0 {
		return strconv.Itoa(option.DeliveryEstimateBusinessDays)
	}
	return ""
}

// formatISODate renders an ISO date or timestamp as dd/mm/yyyy for display.
func formatISODate(iso string) (string, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, iso); err == nil {
			return t.Format("02/01/2006"), true
		}
	}
	return "", false
}

// serviceError wraps an external call failure in the carrier-attributed error
// shape, preferring the configured override message.
func (svc *Service) serviceError(s Settings, err error) Error {
	message := s.ServiceErrorMessage
	if message == "" {
		message = err.Error()
	}
	return Error{Carrier: s.CarrierCode, CarrierTitle: s.Title, Message: message}
}
