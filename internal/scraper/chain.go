package scraper

import (
	"log/slog"

	"github.com/maltedev/amazon-top-products/internal/browser"
)

// Strategy is one attempt at pulling a value out of the current page state.
// A strategy reports (zero, false) on a miss and must not let internal
// faults escape; runStrategy additionally converts panics into misses so a
// broken selector can never take the chain down.
type Strategy[T any] struct {
	Name string
	Run  func(page browser.Page) (T, bool)
}

// runChain invokes strategies strictly in order and short-circuits at the
// first value that passes the field's validity predicate. Strategies after
// the winner are never invoked.
func runChain[T any](log *slog.Logger, page browser.Page, valid func(T) bool, strategies []Strategy[T]) (T, bool) {
	for _, s := range strategies {
		value, ok := runStrategy(s, page)
		if !ok || !valid(value) {
			log.Debug("strategy missed", "strategy", s.Name)
			continue
		}
		log.Debug("strategy succeeded", "strategy", s.Name)
		return value, true
	}
	var zero T
	return zero, false
}

func runStrategy[T any](s Strategy[T], page browser.Page) (value T, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			value, ok = zero, false
		}
	}()
	return s.Run(page)
}
