package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/maltedev/amazon-top-products/internal/browser"
	"github.com/maltedev/amazon-top-products/internal/config"
	"github.com/maltedev/amazon-top-products/internal/events"
	"github.com/maltedev/amazon-top-products/internal/logger"
	"github.com/maltedev/amazon-top-products/internal/scraper"
	"github.com/maltedev/amazon-top-products/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var (
		maxProducts = flag.Int("max", cfg.Scraper.MaxProducts, "Maximum number of products to scrape")
		headless    = flag.Bool("headless", cfg.Browser.Headless, "Run browser in headless mode")
	)
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(1)
	}
	categoryURL := flag.Arg(0)

	slogger := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	slogger.Info("starting amazon top-products scraper", "url", categoryURL, "max", *maxProducts)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Scraper.BatchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Scraper.BatchTimeout)
		defer cancel()
	}

	st, err := store.NewPostgres(ctx, cfg.Database)
	if err != nil {
		slogger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	if err := st.EnsureSchema(ctx); err != nil {
		slogger.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}

	publisher, err := events.New(ctx, cfg.Redis, slogger)
	if err != nil {
		slogger.Warn("event publishing disabled", "error", err)
		publisher = nil
	}
	defer publisher.Close()

	session, err := browser.New(&browser.Options{
		Headless:       *headless,
		Timeout:        cfg.Browser.Timeout,
		UserAgent:      cfg.Browser.UserAgent,
		ViewportWidth:  cfg.Browser.ViewportWidth,
		ViewportHeight: cfg.Browser.ViewportHeight,
	})
	if err != nil {
		slogger.Error("failed to initialize browser", "error", err)
		os.Exit(1)
	}
	defer session.Close()

	page, err := session.NewPage()
	if err != nil {
		slogger.Error("failed to open page", "error", err)
		os.Exit(1)
	}
	defer page.Close()

	discovery := scraper.NewDiscovery(slogger, scraper.DiscoveryOptions{
		WaitTimeout: cfg.Scraper.WaitTimeout,
		ScrollSteps: cfg.Scraper.ScrollSteps,
		PauseMin:    cfg.Scraper.ScrollPauseMin,
		PauseMax:    cfg.Scraper.ScrollPauseMax,
	})
	extractor := scraper.NewDetailExtractor(slogger)
	orchestrator := scraper.NewOrchestrator(discovery, extractor, st, publisher, slogger, scraper.OrchestratorOptions{
		PacingMin: cfg.Scraper.PacingMin,
		PacingMax: cfg.Scraper.PacingMax,
	})

	result, err := orchestrator.Run(ctx, page, categoryURL, *maxProducts)
	if err != nil {
		slogger.Error("scrape failed", "error", err)
		os.Exit(1)
	}

	printSummary(result)
}

func printSummary(result *scraper.Result) {
	if len(result.Saved) == 0 {
		fmt.Println("\nNo products were scraped")
		return
	}

	fmt.Println("\nRESULTS SUMMARY")
	for _, p := range result.Saved {
		title := p.Title
		if len(title) > 60 {
			title = title[:60] + "..."
		}
		fmt.Printf("\n%d. %s\n", p.Rank, title)
		fmt.Printf("   ASIN: %s\n", p.ASIN)
		fmt.Printf("   Price: %s%.2f\n", p.Currency, p.Price)
		if p.ListPrice != nil && p.DiscountPercent != nil {
			fmt.Printf("   List Price: %s%.2f (Save %.2f%%)\n", p.Currency, *p.ListPrice, *p.DiscountPercent)
		}
		if p.Rating != nil {
			reviews := 0
			if p.ReviewsCount != nil {
				reviews = *p.ReviewsCount
			}
			fmt.Printf("   Rating: %.1f/5.0 (%d reviews)\n", *p.Rating, reviews)
		}
		if p.IsPrime {
			fmt.Println("   Prime: Yes")
		} else {
			fmt.Println("   Prime: No")
		}
	}
	fmt.Printf("\nScraped %d of %d requested products (%d skipped)\n",
		len(result.Saved), result.Requested, result.Skipped)
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [flags] <category_url>\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Example:\n  %s https://www.amazon.com/Best-Sellers-Home-Kitchen/zgbs/home-garden\n\nFlags:\n", os.Args[0])
	flag.PrintDefaults()
}
