package scraper

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/maltedev/amazon-top-products/internal/browser"
	"github.com/maltedev/amazon-top-products/internal/models"
	"github.com/maltedev/amazon-top-products/internal/pricing"
)

var (
	ratingRe  = regexp.MustCompile(`([\d.]+)`)
	reviewsRe = regexp.MustCompile(`([\d,]+)`)
	bsrRe     = regexp.MustCompile(`#(\d+)\s+in\s+([^(]+)`)
)

const (
	maxBulletPoints = 5
	minBulletLength = 10
)

// DetailExtractor pulls the per-item attributes from a loaded detail page.
// Every sub-extraction is independent: one failing leaves the rest alone.
type DetailExtractor struct {
	logger    *slog.Logger
	price     *PriceExtractor
	titleWait time.Duration
}

func NewDetailExtractor(logger *slog.Logger) *DetailExtractor {
	return &DetailExtractor{
		logger:    logger.With("component", "detail_extractor"),
		price:     NewPriceExtractor(logger),
		titleWait: 15 * time.Second,
	}
}

// Populate fills rec from the current page state. The page must already be
// on the item's detail URL.
func (de *DetailExtractor) Populate(page browser.Page, rec *models.ProductRecord) {
	// Bounded settle; the extractors below degrade on their own if the
	// title never shows up.
	if de.titleWait > 0 {
		_ = page.WaitFor("#productTitle", de.titleWait)
	}

	if title, ok := de.Title(page); ok {
		rec.Title = title
	} else {
		rec.Title = models.PlaceholderTitle(rec.ASIN)
		de.logger.Warn("title not found, using placeholder", "asin", rec.ASIN)
	}

	// Nudge lazy-loaded widgets into the viewport before reading prices.
	_ = page.ScrollBy(300)

	price, priced := de.price.Extract(page)
	rec.Price = price.Amount
	rec.Currency = price.Currency

	if priced {
		if listPrice, ok := de.ListPrice(page); ok {
			rec.ApplyDiscount(listPrice)
		}
	}

	if rating, ok := de.Rating(page); ok {
		rec.Rating = &rating
	}
	if count, ok := de.ReviewsCount(page); ok {
		rec.ReviewsCount = &count
	}
	rec.BulletPoints = de.BulletPoints(page)
	if bsr, ok := de.BestSellersRank(page); ok {
		rec.BestSellersRank = &bsr
	}
	if url, ok := de.MainImageURL(page); ok {
		rec.MainImageURL = &url
	}
	rec.IsPrime = de.IsPrime(page)
}

func (de *DetailExtractor) Title(page browser.Page) (string, bool) {
	text, ok := elementText(page, "#productTitle")
	if !ok {
		return "", false
	}
	return text, true
}

// ListPrice reads the struck-through original price. Only called once the
// price chain has produced a current price.
func (de *DetailExtractor) ListPrice(page browser.Page) (float64, bool) {
	text, ok := elementText(page, "span.a-price.a-text-price span.a-offscreen")
	if !ok {
		return 0, false
	}
	amount, _, parsed := pricing.Parse(text)
	return amount, parsed
}

func (de *DetailExtractor) Rating(page browser.Page) (float64, bool) {
	text, ok := elementText(page, "i.a-icon-star span.a-icon-alt")
	if !ok {
		return 0, false
	}
	m := ratingRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	rating, err := strconv.ParseFloat(m[1], 64)
	if err != nil || rating <= 0 || rating > 5 {
		return 0, false
	}
	return rating, true
}

func (de *DetailExtractor) ReviewsCount(page browser.Page) (int, bool) {
	text, ok := elementText(page, "span#acrCustomerReviewText")
	if !ok {
		return 0, false
	}
	m := reviewsRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	count, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
	if err != nil || count < 0 {
		return 0, false
	}
	return count, true
}

// BulletPoints joins up to five descriptive fragments, skipping the short
// boilerplate entries Amazon mixes into the feature list.
func (de *DetailExtractor) BulletPoints(page browser.Page) string {
	elements, err := page.QueryAll("#feature-bullets ul li span.a-list-item")
	if err != nil {
		return ""
	}
	var bullets []string
	for _, el := range elements {
		if len(bullets) >= maxBulletPoints {
			break
		}
		text, err := el.Text()
		if err != nil {
			continue
		}
		text = strings.TrimSpace(text)
		if len(text) > minBulletLength {
			bullets = append(bullets, text)
		}
	}
	return strings.Join(bullets, " | ")
}

// BestSellersRank finds the "#N in Category" badge. The product details
// table is the primary source; the detail-bullets section is the fallback
// layout some pages use instead.
func (de *DetailExtractor) BestSellersRank(page browser.Page) (string, bool) {
	html, err := page.Content()
	if err != nil {
		return "", false
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", false
	}

	var result string
	doc.Find("th.prodDetSectionEntry").EachWithBreak(func(_ int, th *goquery.Selection) bool {
		if !strings.Contains(th.Text(), "Best Sellers Rank") {
			return true
		}
		td := th.Parent().Find("td").First()
		text := strings.TrimSpace(td.Find("ul li span").First().Text())
		if text == "" {
			text = strings.TrimSpace(td.Text())
		}
		result = formatRankBadge(text)
		return false
	})
	if result != "" {
		return result, true
	}

	doc.Find("#productDetails_detailBullets_sections1 span").EachWithBreak(func(_ int, span *goquery.Selection) bool {
		text := strings.TrimSpace(span.Text())
		if strings.HasPrefix(text, "#") && strings.Contains(text, " in ") {
			result = formatRankBadge(text)
			return false
		}
		return true
	})
	return result, result != ""
}

// formatRankBadge normalizes raw badge text to "#N in Category", dropping
// any trailing "(See Top 100 ...)" annotation.
func formatRankBadge(text string) string {
	if text == "" {
		return ""
	}
	if m := bsrRe.FindStringSubmatch(text); m != nil {
		return fmt.Sprintf("#%s in %s", m[1], strings.TrimSpace(m[2]))
	}
	return strings.TrimSpace(strings.SplitN(text, "(", 2)[0])
}

func (de *DetailExtractor) MainImageURL(page browser.Page) (string, bool) {
	el, err := page.Query("#landingImage")
	if err != nil {
		return "", false
	}
	src, err := el.Attribute("src")
	if err != nil || strings.TrimSpace(src) == "" {
		return "", false
	}
	return src, true
}

func (de *DetailExtractor) IsPrime(page browser.Page) bool {
	_, err := page.Query("i.a-icon-prime")
	return err == nil
}

// elementText is the shared single-selector read: trimmed text, misses and
// internal errors both collapse to a miss.
func elementText(page browser.Page, selector string) (string, bool) {
	el, err := page.Query(selector)
	if err != nil {
		return "", false
	}
	text, err := el.Text()
	if err != nil {
		return "", false
	}
	text = strings.TrimSpace(text)
	return text, text != ""
}
