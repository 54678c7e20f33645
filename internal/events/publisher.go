// Package events announces saved records on a Redis channel so downstream
// consumers (price alerting, feeds) can react without polling the table.
// Publishing is strictly best effort: a failure is logged, never fatal.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/maltedev/amazon-top-products/internal/config"
	"github.com/maltedev/amazon-top-products/internal/models"
	"github.com/redis/go-redis/v9"
)

const EventTypeProductScraped = "PRODUCT_SCRAPED"

// ProductScrapedPayload is the wire format for one saved record.
type ProductScrapedPayload struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	RunID     string    `json:"run_id"`
	Timestamp time.Time `json:"timestamp"`
	ASIN      string    `json:"asin"`
	Title     string    `json:"title"`
	Rank      int       `json:"rank"`
	Price     float64   `json:"price"`
	Currency  string    `json:"currency"`
	Rating    *float64  `json:"rating,omitempty"`
	IsPrime   bool      `json:"is_prime"`
	PageURL   string    `json:"page_url"`
}

// Publisher pushes ProductScrapedPayload events. A nil Publisher is a
// valid no-op, which is how runs without Redis configured behave.
type Publisher struct {
	client  *redis.Client
	channel string
	logger  *slog.Logger
}

// New returns (nil, nil) when no Redis address is configured.
func New(ctx context.Context, cfg config.RedisConfig, logger *slog.Logger) (*Publisher, error) {
	if cfg.Addr == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Publisher{
		client:  client,
		channel: cfg.Channel,
		logger:  logger.With("component", "event_publisher"),
	}, nil
}

func (p *Publisher) Close() error {
	if p == nil || p.client == nil {
		return nil
	}
	return p.client.Close()
}

// PublishScraped announces one saved record. Failures are logged and
// swallowed so persistence never depends on the event bus.
func (p *Publisher) PublishScraped(ctx context.Context, runID string, rec *models.ProductRecord) {
	if p == nil || p.client == nil {
		return
	}

	payload := ProductScrapedPayload{
		EventID:   uuid.New().String(),
		EventType: EventTypeProductScraped,
		RunID:     runID,
		Timestamp: time.Now(),
		ASIN:      rec.ASIN,
		Title:     rec.Title,
		Rank:      rec.Rank,
		Price:     rec.Price,
		Currency:  rec.Currency,
		Rating:    rec.Rating,
		IsPrime:   rec.IsPrime,
		PageURL:   rec.DetailPageURL(),
	}

	data, err := json.Marshal(payload)
	if err != nil {
		p.logger.Error("failed to marshal event", "asin", rec.ASIN, "error", err)
		return
	}

	if err := p.client.Publish(ctx, p.channel, data).Err(); err != nil {
		p.logger.Warn("failed to publish event", "asin", rec.ASIN, "error", err)
	}
}
