package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/maltedev/amazon-top-products/internal/browser"
)

var (
	// ErrNavigation marks a required page element that never appeared
	// within the bounded wait. Fatal at discovery, item-fatal elsewhere.
	ErrNavigation = errors.New("navigation failed")
	// ErrNoListings means the category page loaded but carried no items.
	ErrNoListings = errors.New("no listings found on category page")
)

const (
	listingSelector   = `div[data-asin]:not([data-asin=""])`
	listingContainer  = `div[data-asin]`
	scrollStepPixels  = 500
)

// Discovery turns a category page into the ranked, deduplicated list of
// ASINs for one run.
type Discovery struct {
	logger      *slog.Logger
	waitTimeout time.Duration
	scrollSteps int
	pauseMin    time.Duration
	pauseMax    time.Duration
}

type DiscoveryOptions struct {
	WaitTimeout time.Duration
	ScrollSteps int
	PauseMin    time.Duration
	PauseMax    time.Duration
}

func NewDiscovery(logger *slog.Logger, opts DiscoveryOptions) *Discovery {
	if opts.WaitTimeout <= 0 {
		opts.WaitTimeout = 15 * time.Second
	}
	if opts.ScrollSteps <= 0 {
		opts.ScrollSteps = 3
	}
	return &Discovery{
		logger:      logger.With("component", "discovery"),
		waitTimeout: opts.WaitTimeout,
		scrollSteps: opts.ScrollSteps,
		pauseMin:    opts.PauseMin,
		pauseMax:    opts.PauseMax,
	}
}

// Discover navigates to the category URL and collects up to maxProducts
// distinct ASINs in DOM order. The returned slice's order defines the
// 1-based rank for the whole run.
func (d *Discovery) Discover(ctx context.Context, page browser.Page, categoryURL string, maxProducts int) ([]string, error) {
	d.logger.Info("loading category page", "url", categoryURL)

	if err := page.Navigate(categoryURL); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNavigation, err)
	}
	if err := page.WaitFor(listingContainer, d.waitTimeout); err != nil {
		return nil, fmt.Errorf("%w: listing containers never appeared: %v", ErrNavigation, err)
	}

	// Scroll in steps so lazy-loaded tiles render before collection.
	for i := 0; i < d.scrollSteps; i++ {
		if err := page.ScrollBy(scrollStepPixels); err != nil {
			d.logger.Debug("scroll failed", "step", i, "error", err)
		}
		if err := sleepContext(ctx, randDuration(d.pauseMin, d.pauseMax)); err != nil {
			return nil, err
		}
	}

	elements, err := page.QueryAll(listingSelector)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNavigation, err)
	}
	d.logger.Info("found listing containers", "count", len(elements))

	asins := collectASINs(elements, maxProducts)
	if len(asins) == 0 {
		return nil, ErrNoListings
	}

	d.logger.Info("collected ASINs", "count", len(asins))
	return asins, nil
}

// collectASINs deduplicates preserving first-seen order and caps the scan
// at twice the requested count of raw candidates, or at the requested
// count of distinct ids, whichever comes first.
func collectASINs(elements []browser.Element, maxProducts int) []string {
	seen := make(map[string]struct{}, maxProducts)
	asins := make([]string, 0, maxProducts)

	rawCap := maxProducts * 2
	for i, el := range elements {
		if i >= rawCap || len(asins) >= maxProducts {
			break
		}
		asin, err := el.Attribute("data-asin")
		if err != nil {
			continue
		}
		asin = strings.TrimSpace(asin)
		if asin == "" {
			continue
		}
		if _, dup := seen[asin]; dup {
			continue
		}
		seen[asin] = struct{}{}
		asins = append(asins, asin)
	}
	return asins
}

func randDuration(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(rand.Int63n(int64(max-min)))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
