package scraper

import (
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/maltedev/amazon-top-products/internal/browser"
	"github.com/maltedev/amazon-top-products/internal/pricing"
)

// PriceResult is the outcome of the price chain.
type PriceResult struct {
	Amount   float64
	Currency string
}

// PriceExtractor runs the ordered price fallback chain. The order is fixed:
// cheap read-only signals first, the variant-selecting strategy (which
// mutates page state) only after those, expensive full-page scans last.
type PriceExtractor struct {
	logger *slog.Logger
	// pause after clicking a variant, giving the price widget time to update
	settle time.Duration
}

func NewPriceExtractor(logger *slog.Logger) *PriceExtractor {
	return &PriceExtractor{
		logger: logger.With("component", "price_extractor"),
		settle: 2 * time.Second,
	}
}

const (
	availabilitySelector = "#availability span.a-color-price, #availability span.a-color-state"
	offscreenSelector    = "span.a-price span.a-offscreen"
	optionsTextSelector  = "span.a-size-small, span.olpWrapper, #twister_swatch_price"
	variantSelector      = "#variation_color_name li.swatchSelect, #variation_size_name li.swatchSelect, ul.swatches li.swatchAvailable"
)

// Extract returns the listing's price, or (sentinel, false) when no
// strategy produced a positive amount. An explicit "unavailable" status
// short-circuits without running the chain at all.
func (pe *PriceExtractor) Extract(page browser.Page) (PriceResult, bool) {
	if pe.isUnavailable(page) {
		pe.logger.Warn("product unavailable, skipping price chain")
		return PriceResult{Amount: 0, Currency: pricing.DefaultCurrency}, false
	}

	strategies := []Strategy[PriceResult]{
		{Name: "options_text", Run: pe.tryOptionsText},
		{Name: "select_variant", Run: pe.trySelectVariant},
		{Name: "offscreen", Run: pe.tryOffscreen},
		{Name: "visible_price", Run: pe.tryVisiblePrice},
		{Name: "full_page_scan", Run: pe.tryFullPageScan},
		{Name: "data_attribute", Run: pe.tryDataAttribute},
	}

	result, ok := runChain(pe.logger, page, func(r PriceResult) bool { return r.Amount > 0 }, strategies)
	if !ok {
		pe.logger.Warn("price not found by any strategy")
		return PriceResult{Amount: 0, Currency: pricing.DefaultCurrency}, false
	}
	return result, true
}

func (pe *PriceExtractor) isUnavailable(page browser.Page) bool {
	elements, err := page.QueryAll(availabilitySelector)
	if err != nil {
		return false
	}
	for _, el := range elements {
		text, err := el.Text()
		if err != nil {
			continue
		}
		if strings.Contains(strings.ToLower(text), "unavailable") {
			return true
		}
	}
	return false
}

// tryOptionsText reads the "N options from $X" aggregate offer text.
func (pe *PriceExtractor) tryOptionsText(page browser.Page) (PriceResult, bool) {
	elements, err := page.QueryAll(optionsTextSelector)
	if err != nil {
		return PriceResult{}, false
	}
	for _, el := range elements {
		text, err := el.Text()
		if err != nil {
			continue
		}
		if val, ok := pricing.ParseOptionsText(strings.TrimSpace(text)); ok {
			return PriceResult{Amount: val, Currency: "$"}, true
		}
	}
	return PriceResult{}, false
}

// trySelectVariant clicks the first available variant swatch before
// re-reading the price. This mutates page state, which is why it sits after
// the pure-read options strategy in the chain.
func (pe *PriceExtractor) trySelectVariant(page browser.Page) (PriceResult, bool) {
	variants, err := page.QueryAll(variantSelector)
	if err != nil || len(variants) == 0 {
		return PriceResult{}, false
	}

	if err := variants[0].Click(); err != nil {
		return PriceResult{}, false
	}
	pe.logger.Debug("selected first variant")
	time.Sleep(pe.settle)

	elements, err := page.QueryAll(offscreenSelector)
	if err != nil {
		return PriceResult{}, false
	}
	return parseFirstPriced(elements, 3)
}

// tryOffscreen reads the accessible price nodes rendered off screen.
func (pe *PriceExtractor) tryOffscreen(page browser.Page) (PriceResult, bool) {
	elements, err := page.QueryAll(offscreenSelector)
	if err != nil {
		return PriceResult{}, false
	}
	return parseFirstPriced(elements, 5)
}

// tryVisiblePrice composes the whole and fraction parts of the visible
// price display.
func (pe *PriceExtractor) tryVisiblePrice(page browser.Page) (PriceResult, bool) {
	for _, selector := range []string{"span.a-price", ".a-priceToPay"} {
		containers, err := page.QueryAll(selector)
		if err != nil {
			continue
		}
		for _, container := range containers {
			wholes, err := container.QueryAll(".a-price-whole")
			if err != nil || len(wholes) == 0 {
				continue
			}
			wholeText, err := wholes[0].Text()
			if err != nil {
				continue
			}
			wholeText = strings.ReplaceAll(strings.TrimSpace(wholeText), ",", "")
			wholeText = strings.TrimSuffix(wholeText, ".")
			if wholeText == "" || !isDigits(wholeText) {
				continue
			}

			fraction := "00"
			if fracs, err := container.QueryAll(".a-price-fraction"); err == nil && len(fracs) > 0 {
				if t, err := fracs[0].Text(); err == nil && strings.TrimSpace(t) != "" {
					fraction = strings.TrimSpace(t)
				}
			}

			if amount, currency, ok := pricing.Parse("$" + wholeText + "." + fraction); ok {
				return PriceResult{Amount: amount, Currency: currency}, true
			}
		}
	}
	return PriceResult{}, false
}

// tryFullPageScan parses the whole rendered document for any
// currency-tagged offscreen text. Last-resort read, much heavier than the
// targeted selectors above.
func (pe *PriceExtractor) tryFullPageScan(page browser.Page) (PriceResult, bool) {
	html, err := page.Content()
	if err != nil {
		return PriceResult{}, false
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return PriceResult{}, false
	}

	var result PriceResult
	found := false
	doc.Find("span.a-offscreen").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.TrimSpace(sel.Text())
		if !pricing.ContainsCurrency(text) {
			return true
		}
		if amount, currency, ok := pricing.Parse(text); ok {
			result = PriceResult{Amount: amount, Currency: currency}
			found = true
			return false
		}
		return true
	})
	return result, found
}

// tryDataAttribute reads the structured data-a-price attribute when the
// page ships one.
func (pe *PriceExtractor) tryDataAttribute(page browser.Page) (PriceResult, bool) {
	value, err := page.Evaluate(dataPriceScript)
	if err != nil || value == nil {
		return PriceResult{}, false
	}
	text, ok := value.(string)
	if !ok {
		return PriceResult{}, false
	}
	if amount, currency, parsed := pricing.Parse(text); parsed {
		return PriceResult{Amount: amount, Currency: currency}, true
	}
	return PriceResult{}, false
}

const dataPriceScript = `(() => {
	const elems = document.querySelectorAll('[data-a-price]');
	for (const elem of elems) {
		try {
			const data = JSON.parse(elem.getAttribute('data-a-price'));
			if (data && data.amount) return data.symbol + data.amount;
		} catch (e) {}
	}
	return null;
})()`

// parseFirstPriced scans at most limit elements for parseable price text.
func parseFirstPriced(elements []browser.Element, limit int) (PriceResult, bool) {
	for i, el := range elements {
		if i >= limit {
			break
		}
		text, err := el.Text()
		if err != nil {
			continue
		}
		text = strings.TrimSpace(text)
		if !pricing.ContainsCurrency(text) {
			continue
		}
		if amount, currency, ok := pricing.Parse(text); ok {
			return PriceResult{Amount: amount, Currency: currency}, true
		}
	}
	return PriceResult{}, false
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
