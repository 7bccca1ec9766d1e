package service

import (
	"context"
	"sync"
	"time"

	"relief-ops/internal/forecast"
)

const predictionBatchKey = "forecast:predictions:latest"

// PredictionBatch the latest set of disaster predictions and where it came from
type PredictionBatch struct {
	Predictions []forecast.DisasterPrediction `json:"predictions"`
	Source      string                        `json:"source"` // upload | import | feed
	UpdatedAt   time.Time                     `json:"updated_at"`
}

// PredictionStore keeps the current prediction batch. Latest returns nil
// when nothing was stored yet.
type PredictionStore interface {
	Save(ctx context.Context, batch *PredictionBatch) error
	Latest(ctx context.Context) (*PredictionBatch, error)
}

// JSONCache key/value cache with JSON values, satisfied by the Redis client
type JSONCache interface {
	SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
}

// ── Redis ──

type cachePredictionStore struct {
	cache JSONCache
}

// NewCachePredictionStore shares the batch across instances through the cache
func NewCachePredictionStore(cache JSONCache) PredictionStore {
	return &cachePredictionStore{cache: cache}
}

func (s *cachePredictionStore) Save(ctx context.Context, batch *PredictionBatch) error {
	return s.cache.SetJSON(ctx, predictionBatchKey, batch, 0)
}

func (s *cachePredictionStore) Latest(ctx context.Context) (*PredictionBatch, error) {
	var batch PredictionBatch
	ok, err := s.cache.GetJSON(ctx, predictionBatchKey, &batch)
	if err != nil || !ok {
		return nil, err
	}
	return &batch, nil
}

// ── in process ──

type memoryPredictionStore struct {
	mu    sync.RWMutex
	batch *PredictionBatch
}

// NewMemoryPredictionStore keeps the batch in process memory; used when
// Redis is unavailable.
func NewMemoryPredictionStore() PredictionStore {
	return &memoryPredictionStore{}
}

func (s *memoryPredictionStore) Save(_ context.Context, batch *PredictionBatch) error {
	cp := *batch
	cp.Predictions = append([]forecast.DisasterPrediction(nil), batch.Predictions...)
	s.mu.Lock()
	s.batch = &cp
	s.mu.Unlock()
	return nil
}

func (s *memoryPredictionStore) Latest(_ context.Context) (*PredictionBatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.batch == nil {
		return nil, nil
	}
	cp := *s.batch
	return &cp, nil
}
