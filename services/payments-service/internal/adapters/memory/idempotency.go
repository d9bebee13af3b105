package memory

import (
	"context"
	"sync"
	"time"

	"github.com/prrathnayake/conveyancers-marketplace/services/payments-service/internal/domain"
	"github.com/prrathnayake/conveyancers-marketplace/services/payments-service/internal/ports"
)

type IdempotencyStore struct {
	mu      sync.Mutex
	records map[string]ports.IdempotencyRecord
}

func NewIdempotencyStore() *IdempotencyStore {
	return &IdempotencyStore{records: map[string]ports.IdempotencyRecord{}}
}

func (s *IdempotencyStore) Get(_ context.Context, key string, now time.Time) (*ports.IdempotencyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[key]
	if !ok {
		return nil, nil
	}
	if now.After(rec.ExpiresAt) {
		delete(s.records, key)
		return nil, nil
	}
	out := rec
	out.ResponseBody = append([]byte(nil), rec.ResponseBody...)
	return &out, nil
}

func (s *IdempotencyStore) Reserve(_ context.Context, key, requestHash string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[key]; ok {
		return domain.ErrConflict
	}
	s.records[key] = ports.IdempotencyRecord{Key: key, RequestHash: requestHash, ExpiresAt: expiresAt}
	return nil
}

func (s *IdempotencyStore) Complete(_ context.Context, key string, responseCode int, responseBody []byte, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[key]
	if !ok {
		return domain.ErrNotFound
	}
	rec.ResponseCode = responseCode
	rec.ResponseBody = append([]byte(nil), responseBody...)
	s.records[key] = rec
	return nil
}

func (s *IdempotencyStore) Abandon(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
	return nil
}
