package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/maltedev/amazon-top-products/internal/models"
)

// MemoryStore is an in-process Store used by tests and local runs without
// Postgres. Same upsert semantics: one row per ASIN, latest snapshot wins.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*models.ProductRecord
	nextID  int64
}

func NewMemory() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*models.ProductRecord),
		nextID:  1,
	}
}

func (s *MemoryStore) EnsureSchema(ctx context.Context) error {
	return nil
}

func (s *MemoryStore) Upsert(ctx context.Context, rec *models.ProductRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *rec
	stored.ScrapedAt = time.Now()
	if existing, ok := s.records[rec.ASIN]; ok {
		stored.ID = existing.ID
	} else {
		stored.ID = s.nextID
		s.nextID++
	}
	s.records[rec.ASIN] = &stored

	rec.ID = stored.ID
	rec.ScrapedAt = stored.ScrapedAt
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]*models.ProductRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]*models.ProductRecord, 0, len(s.records))
	for _, rec := range s.records {
		copied := *rec
		records = append(records, &copied)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Rank < records[j].Rank })
	return records, nil
}

func (s *MemoryStore) Get(ctx context.Context, asin string) (*models.ProductRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[asin]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *rec
	return &copied, nil
}

func (s *MemoryStore) Stats(ctx context.Context) (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &Stats{TotalProducts: len(s.records)}

	var priceSum float64
	var priced int
	var ratingSum float64
	var rated int
	for _, rec := range s.records {
		if rec.Price > 0 {
			priceSum += rec.Price
			priced++
		}
		if rec.Rating != nil {
			ratingSum += *rec.Rating
			rated++
		}
		if rec.IsPrime {
			stats.PrimeCount++
		}
	}
	if priced > 0 {
		stats.AveragePrice = priceSum / float64(priced)
	}
	if rated > 0 {
		stats.AverageRating = ratingSum / float64(rated)
	}
	return stats, nil
}
