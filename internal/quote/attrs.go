package quote

import "strings"

// resolveAttribute picks the final value for one physical attribute using the
// strict fallback chain: item value, then composite-parent value, then the
// configured contingency. A zero contingency yields zero, which is not an
// error.
func resolveAttribute(item, composite, contingency float64) float64 {
	if item != 0 {
		return item
	}
	if composite != 0 {
		return composite
	}
	return contingency
}

// SanitizeZip strips every non-digit character from a postal code. Idempotent.
func SanitizeZip(zip string) string {
	var b strings.Builder
	b.Grow(len(zip))
	for _, r := range zip {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// destZipLen is the only destination postal code length the aggregator
// accepts (Brazilian CEP).
const destZipLen = 8

// validDestZip reports whether the sanitized destination code can be quoted.
func validDestZip(sanitized string) bool {
	return len(sanitized) == destZipLen
}
