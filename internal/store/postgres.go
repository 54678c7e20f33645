package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/maltedev/amazon-top-products/internal/config"
	"github.com/maltedev/amazon-top-products/internal/models"
)

// PostgresStore keeps one row per ASIN in the products table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgres(ctx context.Context, cfg config.DatabaseConfig) (*PostgresStore, error) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name, cfg.SSLMode)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	poolConfig.MaxConns = cfg.MaxConns

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

const schemaSQL = `
	CREATE TABLE IF NOT EXISTS products (
		id               BIGSERIAL PRIMARY KEY,
		asin             TEXT UNIQUE NOT NULL,
		title            TEXT NOT NULL,
		rank             INT,
		price            DOUBLE PRECISION,
		currency         TEXT,
		list_price       DOUBLE PRECISION,
		discount_percent DOUBLE PRECISION,
		rating           DOUBLE PRECISION,
		reviews_count    INT,
		is_prime         BOOLEAN NOT NULL DEFAULT FALSE,
		best_sellers_rank TEXT,
		bullet_points    TEXT NOT NULL DEFAULT '',
		main_image_url   TEXT,
		scraped_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// Upsert fully replaces the row for rec.ASIN in one statement; the record
// only ever holds the latest snapshot.
func (s *PostgresStore) Upsert(ctx context.Context, rec *models.ProductRecord) error {
	query := `
		INSERT INTO products (asin, title, rank, price, currency, list_price,
			discount_percent, rating, reviews_count, is_prime,
			best_sellers_rank, bullet_points, main_image_url, scraped_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW())
		ON CONFLICT (asin) DO UPDATE SET
			title = EXCLUDED.title,
			rank = EXCLUDED.rank,
			price = EXCLUDED.price,
			currency = EXCLUDED.currency,
			list_price = EXCLUDED.list_price,
			discount_percent = EXCLUDED.discount_percent,
			rating = EXCLUDED.rating,
			reviews_count = EXCLUDED.reviews_count,
			is_prime = EXCLUDED.is_prime,
			best_sellers_rank = EXCLUDED.best_sellers_rank,
			bullet_points = EXCLUDED.bullet_points,
			main_image_url = EXCLUDED.main_image_url,
			scraped_at = NOW()
		RETURNING id, scraped_at`

	err := s.pool.QueryRow(ctx, query,
		rec.ASIN, rec.Title, rec.Rank, rec.Price, rec.Currency, rec.ListPrice,
		rec.DiscountPercent, rec.Rating, rec.ReviewsCount, rec.IsPrime,
		rec.BestSellersRank, rec.BulletPoints, rec.MainImageURL,
	).Scan(&rec.ID, &rec.ScrapedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert product %s: %w", rec.ASIN, err)
	}
	return nil
}

const selectColumns = `id, asin, title, rank, price, currency, list_price,
	discount_percent, rating, reviews_count, is_prime, best_sellers_rank,
	bullet_points, main_image_url, scraped_at`

func (s *PostgresStore) List(ctx context.Context) ([]*models.ProductRecord, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+selectColumns+` FROM products ORDER BY rank ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var records []*models.ProductRecord
	for rows.Next() {
		rec, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *PostgresStore) Get(ctx context.Context, asin string) (*models.ProductRecord, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+selectColumns+` FROM products WHERE asin = $1`, asin)
	rec, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product %s: %w", asin, err)
	}
	return rec, nil
}

func (s *PostgresStore) Stats(ctx context.Context) (*Stats, error) {
	query := `
		SELECT COUNT(*),
			COALESCE(AVG(price) FILTER (WHERE price > 0), 0),
			COALESCE(AVG(rating), 0),
			COUNT(*) FILTER (WHERE is_prime)
		FROM products`

	stats := &Stats{}
	err := s.pool.QueryRow(ctx, query).Scan(
		&stats.TotalProducts, &stats.AveragePrice, &stats.AverageRating, &stats.PrimeCount,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}
	return stats, nil
}

func scanProduct(row pgx.Row) (*models.ProductRecord, error) {
	rec := &models.ProductRecord{}
	err := row.Scan(
		&rec.ID, &rec.ASIN, &rec.Title, &rec.Rank, &rec.Price, &rec.Currency,
		&rec.ListPrice, &rec.DiscountPercent, &rec.Rating, &rec.ReviewsCount,
		&rec.IsPrime, &rec.BestSellersRank, &rec.BulletPoints,
		&rec.MainImageURL, &rec.ScrapedAt,
	)
	if err != nil {
		return nil, err
	}
	return rec, nil
}
