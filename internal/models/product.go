package models

import (
	"fmt"
	"math"
	"time"
)

// ProductRecord is the unit of persistence: one row per ASIN holding the
// latest scraped snapshot. Optional attributes are pointers so that
// "never extracted" survives the round trip to the database as NULL.
type ProductRecord struct {
	ID              int64     `json:"id,omitempty"`
	ASIN            string    `json:"asin"`
	Title           string    `json:"title"`
	Rank            int       `json:"rank"`
	Price           float64   `json:"price"`
	Currency        string    `json:"currency"`
	ListPrice       *float64  `json:"list_price"`
	DiscountPercent *float64  `json:"discount_percent"`
	Rating          *float64  `json:"rating"`
	ReviewsCount    *int      `json:"reviews_count"`
	IsPrime         bool      `json:"is_prime"`
	BestSellersRank *string   `json:"best_sellers_rank"`
	BulletPoints    string    `json:"bullet_points"`
	MainImageURL    *string   `json:"main_image_url"`
	ScrapedAt       time.Time `json:"scraped_at"`
}

func NewProductRecord(asin string, rank int) *ProductRecord {
	return &ProductRecord{
		ASIN:     asin,
		Rank:     rank,
		Currency: "$",
	}
}

// PlaceholderTitle is used when every title extraction attempt comes back
// empty. Items are never dropped for a missing title.
func PlaceholderTitle(asin string) string {
	return fmt.Sprintf("Product %s", asin)
}

func (p *ProductRecord) DetailPageURL() string {
	return fmt.Sprintf("https://www.amazon.com/dp/%s", p.ASIN)
}

// ApplyDiscount sets the list price and the derived discount percentage.
// Only meaningful when both prices are strictly positive.
func (p *ProductRecord) ApplyDiscount(listPrice float64) {
	if listPrice <= 0 || p.Price <= 0 {
		return
	}
	discount := math.Round((listPrice-p.Price)/listPrice*100*100) / 100
	p.ListPrice = &listPrice
	p.DiscountPercent = &discount
}
