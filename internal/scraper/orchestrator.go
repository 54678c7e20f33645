package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/maltedev/amazon-top-products/internal/browser"
	"github.com/maltedev/amazon-top-products/internal/events"
	"github.com/maltedev/amazon-top-products/internal/models"
	"github.com/maltedev/amazon-top-products/internal/store"
)

// Orchestrator drives one batch: discovery, then a strictly sequential
// per-item loop of detail fetch, extraction chains, and upsert. One
// browsing session, one page at a time; pacing instead of parallelism.
type Orchestrator struct {
	discovery *Discovery
	extractor *DetailExtractor
	store     store.Store
	publisher *events.Publisher
	logger    *slog.Logger
	pacingMin time.Duration
	pacingMax time.Duration
}

type OrchestratorOptions struct {
	PacingMin time.Duration
	PacingMax time.Duration
}

func NewOrchestrator(
	discovery *Discovery,
	extractor *DetailExtractor,
	st store.Store,
	publisher *events.Publisher,
	logger *slog.Logger,
	opts OrchestratorOptions,
) *Orchestrator {
	return &Orchestrator{
		discovery: discovery,
		extractor: extractor,
		store:     st,
		publisher: publisher,
		logger:    logger.With("component", "orchestrator"),
		pacingMin: opts.PacingMin,
		pacingMax: opts.PacingMax,
	}
}

// Result summarizes one batch. Saved holds upserted records in rank order;
// skipped items leave gaps in the rank sequence, ranks are never
// renumbered.
type Result struct {
	RunID     string
	Requested int
	Saved     []*models.ProductRecord
	Skipped   int
}

// Run executes one batch. Only discovery failure is batch-fatal; every
// per-item fault is contained at the item boundary. Cancellation is
// honored between items: the current item finishes (or fails) first.
func (o *Orchestrator) Run(ctx context.Context, page browser.Page, categoryURL string, maxProducts int) (*Result, error) {
	runID := uuid.New().String()
	log := o.logger.With("run_id", runID)

	asins, err := o.discovery.Discover(ctx, page, categoryURL, maxProducts)
	if err != nil {
		return nil, fmt.Errorf("discovery failed: %w", err)
	}

	result := &Result{RunID: runID, Requested: maxProducts}

	for i, asin := range asins {
		rank := i + 1

		select {
		case <-ctx.Done():
			log.Info("run cancelled, stopping before next item", "processed", i)
			return result, nil
		default:
		}

		log.Info("processing item", "rank", rank, "asin", asin, "total", len(asins))

		rec, err := o.processItem(page, asin, rank)
		if err != nil {
			log.Error("item failed, skipping", "rank", rank, "asin", asin, "error", err)
			result.Skipped++
			continue
		}

		if err := o.store.Upsert(ctx, rec); err != nil {
			log.Error("failed to save item", "rank", rank, "asin", asin, "error", err)
			result.Skipped++
			continue
		}
		log.Info("item saved", "rank", rank, "asin", asin, "price", rec.Price, "currency", rec.Currency)

		o.publisher.PublishScraped(ctx, runID, rec)
		result.Saved = append(result.Saved, rec)

		if i < len(asins)-1 {
			if err := sleepContext(ctx, randDuration(o.pacingMin, o.pacingMax)); err != nil {
				log.Info("run cancelled during pacing delay", "processed", i+1)
				return result, nil
			}
		}
	}

	log.Info("batch complete", "saved", len(result.Saved), "skipped", result.Skipped)
	return result, nil
}

// processItem is the per-item fault boundary. Panics anywhere inside the
// extraction stack surface here as errors instead of taking down the
// batch.
func (o *Orchestrator) processItem(page browser.Page, asin string, rank int) (rec *models.ProductRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			rec = nil
			err = fmt.Errorf("item processing panicked: %v", r)
		}
	}()

	rec = models.NewProductRecord(asin, rank)
	if navErr := page.Navigate(rec.DetailPageURL()); navErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrNavigation, navErr)
	}

	o.extractor.Populate(page, rec)
	return rec, nil
}
