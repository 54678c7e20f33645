package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPriceExtractor() *PriceExtractor {
	pe := NewPriceExtractor(testLogger())
	pe.settle = 0
	return pe
}

func TestPriceUnavailableShortCircuits(t *testing.T) {
	page := newFakePage()
	page.selectors[availabilitySelector] = []*fakeElement{textElement("Currently unavailable.")}
	// A perfectly readable price that must never be reached.
	page.selectors[offscreenSelector] = []*fakeElement{textElement("$9.99")}

	result, ok := newTestPriceExtractor().Extract(page)

	assert.False(t, ok)
	assert.Zero(t, result.Amount)
	assert.Equal(t, "$", result.Currency)
}

func TestPriceOptionsTextWins(t *testing.T) {
	page := newFakePage()
	page.selectors[optionsTextSelector] = []*fakeElement{textElement("3 options from $9.99")}
	page.selectors[offscreenSelector] = []*fakeElement{textElement("$12.99")}

	result, ok := newTestPriceExtractor().Extract(page)

	require.True(t, ok)
	assert.InDelta(t, 9.99, result.Amount, 0.001)
	assert.Equal(t, "$", result.Currency)
}

func TestPriceVariantSelection(t *testing.T) {
	page := newFakePage()
	// The price only appears after the first variant swatch is clicked.
	page.selectors[variantSelector] = []*fakeElement{{
		onClick: func() {
			page.selectors[offscreenSelector] = []*fakeElement{textElement("$24.50")}
		},
	}}

	result, ok := newTestPriceExtractor().Extract(page)

	require.True(t, ok)
	assert.InDelta(t, 24.50, result.Amount, 0.001)
}

func TestPriceOffscreen(t *testing.T) {
	page := newFakePage()
	page.selectors[offscreenSelector] = []*fakeElement{
		textElement("no currency here"),
		textElement("$1,299.00"),
	}

	result, ok := newTestPriceExtractor().Extract(page)

	require.True(t, ok)
	assert.InDelta(t, 1299.0, result.Amount, 0.001)
	assert.Equal(t, "$", result.Currency)
}

func TestPriceVisibleWholeAndFraction(t *testing.T) {
	page := newFakePage()
	page.selectors["span.a-price"] = []*fakeElement{{
		children: map[string][]*fakeElement{
			".a-price-whole":    {textElement("1,234")},
			".a-price-fraction": {textElement("56")},
		},
	}}

	result, ok := newTestPriceExtractor().Extract(page)

	require.True(t, ok)
	assert.InDelta(t, 1234.56, result.Amount, 0.001)
}

func TestPriceVisibleWholeWithoutFraction(t *testing.T) {
	page := newFakePage()
	page.selectors["span.a-price"] = []*fakeElement{{
		children: map[string][]*fakeElement{
			".a-price-whole": {textElement("42")},
		},
	}}

	result, ok := newTestPriceExtractor().Extract(page)

	require.True(t, ok)
	assert.InDelta(t, 42.00, result.Amount, 0.001)
}

func TestPriceFullPageScan(t *testing.T) {
	page := newFakePage()
	page.html = `<html><body>
		<span class="a-offscreen">not a price</span>
		<span class="a-offscreen">$7.77</span>
	</body></html>`

	result, ok := newTestPriceExtractor().Extract(page)

	require.True(t, ok)
	assert.InDelta(t, 7.77, result.Amount, 0.001)
}

func TestPriceDataAttribute(t *testing.T) {
	page := newFakePage()
	page.evaluateFn = func(script string) (any, error) {
		if script == dataPriceScript {
			return "$5.99", nil
		}
		return nil, nil
	}

	result, ok := newTestPriceExtractor().Extract(page)

	require.True(t, ok)
	assert.InDelta(t, 5.99, result.Amount, 0.001)
}

func TestPriceAllStrategiesMiss(t *testing.T) {
	page := newFakePage()

	result, ok := newTestPriceExtractor().Extract(page)

	assert.False(t, ok)
	assert.Zero(t, result.Amount)
	assert.Equal(t, "$", result.Currency)
}
