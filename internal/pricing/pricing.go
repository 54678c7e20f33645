// Package pricing turns noisy price text from product pages into a numeric
// amount and a currency symbol. The same parser is used for the current
// price and the struck-through list price.
package pricing

import (
	"regexp"
	"strconv"
	"strings"
)

const DefaultCurrency = "$"

var (
	noisePrefixRe = regexp.MustCompile(`(?i)^(Price|From|Save|Limited time deal|List Price|List:)[\s:]*`)
	currencyRe    = regexp.MustCompile(`([\$£€¥])`)

	// Tried in order: symbol before number, number before symbol, bare number.
	numberPatterns = []*regexp.Regexp{
		regexp.MustCompile(`[\$£€¥]\s*([\d,]+\.?\d*)`),
		regexp.MustCompile(`([\d,]+\.?\d*)\s*[\$£€¥]`),
		regexp.MustCompile(`([\d,]+\.?\d*)`),
	}

	optionsFromRe = regexp.MustCompile(`(?i)\d+\s+options?\s+from\s+\$\s*([\d,]+\.?\d*)`)
)

// Parse extracts an amount and currency symbol from raw price text.
// ok is false when no strictly positive amount can be found; a parsed zero
// is treated the same as no result. The currency defaults to "$" so callers
// always get a usable symbol even on a miss.
func Parse(text string) (amount float64, currency string, ok bool) {
	currency = DefaultCurrency
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, currency, false
	}

	text = strings.TrimSpace(noisePrefixRe.ReplaceAllString(text, ""))

	if m := currencyRe.FindStringSubmatch(text); m != nil {
		currency = m[1]
	}

	for _, pattern := range numberPatterns {
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		raw := strings.ReplaceAll(m[1], ",", "")
		val, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		if val > 0 {
			return val, currency, true
		}
	}

	return 0, currency, false
}

// ParseOptionsText matches the "3 options from $9.99" aggregate offer text
// that replaces a concrete price on some listings.
func ParseOptionsText(text string) (float64, bool) {
	m := optionsFromRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	val, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil || val <= 0 {
		return 0, false
	}
	return val, true
}

// ContainsCurrency reports whether the text carries any of the currency
// symbols the parser understands.
func ContainsCurrency(text string) bool {
	return strings.ContainsAny(text, "$£€¥")
}
