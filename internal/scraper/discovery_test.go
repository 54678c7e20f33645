package scraper

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDiscovery() *Discovery {
	return NewDiscovery(testLogger(), DiscoveryOptions{ScrollSteps: 1})
}

func TestDiscoverDeduplicatesAndCaps(t *testing.T) {
	page := newFakePage()
	page.selectors[listingSelector] = []*fakeElement{
		asinElement("A"),
		asinElement(""),
		asinElement("B"),
		asinElement("A"),
		asinElement("C"),
		asinElement("D"),
		asinElement("B"),
		asinElement("E"),
	}

	asins, err := newTestDiscovery().Discover(context.Background(), page, "https://example.com/category", 3)

	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, asins)
}

func TestDiscoverRawScanCap(t *testing.T) {
	// With max=2 only the first four raw candidates may be scanned.
	page := newFakePage()
	page.selectors[listingSelector] = []*fakeElement{
		asinElement("A"),
		asinElement("A"),
		asinElement("A"),
		asinElement("A"),
		asinElement("B"),
	}

	asins, err := newTestDiscovery().Discover(context.Background(), page, "https://example.com/category", 2)

	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, asins)
}

func TestDiscoverNavigationTimeoutIsFatal(t *testing.T) {
	page := newFakePage()
	page.waitErr = errors.New("timeout waiting for selector")

	_, err := newTestDiscovery().Discover(context.Background(), page, "https://example.com/category", 5)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNavigation)
}

func TestDiscoverNavigateErrorIsFatal(t *testing.T) {
	page := newFakePage()
	page.navigateFn = func(string) error { return errors.New("connection refused") }

	_, err := newTestDiscovery().Discover(context.Background(), page, "https://example.com/category", 5)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNavigation)
}

func TestDiscoverNoListings(t *testing.T) {
	page := newFakePage()

	_, err := newTestDiscovery().Discover(context.Background(), page, "https://example.com/category", 5)

	assert.ErrorIs(t, err, ErrNoListings)
}

func TestDiscoverCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	page := newFakePage()
	page.selectors[listingSelector] = []*fakeElement{asinElement("A")}

	d := NewDiscovery(testLogger(), DiscoveryOptions{ScrollSteps: 1, PauseMin: 1, PauseMax: 2})
	_, err := d.Discover(ctx, page, "https://example.com/category", 5)

	assert.ErrorIs(t, err, context.Canceled)
}
