package quote

import (
	"strconv"
	"strings"
)

// CarrierTitleFormatter is the default TitleFormatter. It renders the method
// label with the delivery estimate appended, in the shopper's language.
type CarrierTitleFormatter struct{}

// CustomCarrierTitle implements TitleFormatter. The estimate is either a
// business-day count or an already formatted dd/mm/yyyy date.
func (CarrierTitleFormatter) CustomCarrierTitle(carrier, label, estimate string, scheduled bool) string {
	parts := []string{strings.TrimSpace(label)}
	if estimate != "" {
		if days, err := strconv.Atoi(estimate); err == nil {
			unit := "dias úteis"
			if days == 1 {
				unit = "dia útil"
			}
			parts = append(parts, "em até "+estimate+" "+unit)
		} else {
			parts = append(parts, "entrega em "+estimate)
		}
	}
	title := strings.Join(parts, " - ")
	if scheduled {
		title += " (agendável)"
	}
	return title
}
