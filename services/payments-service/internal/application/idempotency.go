package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"

	"github.com/prrathnayake/conveyancers-marketplace/services/payments-service/internal/domain"
)

// replay loads a completed response for key into out. A key reused with a
// different payload is a conflict.
func (s *Service) replay(ctx context.Context, key, requestHash string, out any) (bool, error) {
	if s.idempotency == nil || strings.TrimSpace(key) == "" {
		return false, nil
	}
	rec, err := s.idempotency.Get(ctx, key, s.nowFn())
	if err != nil || rec == nil {
		return false, err
	}
	if rec.RequestHash != requestHash {
		return false, &domain.Error{Kind: domain.ErrIdempotencyConflict, Code: "idempotency_conflict", Message: "idempotency key reused with a different request"}
	}
	if len(rec.ResponseBody) == 0 {
		return false, &domain.Error{Kind: domain.ErrIdempotencyConflict, Code: "request_in_progress", Message: "a request with this idempotency key is still in progress"}
	}
	if err := json.Unmarshal(rec.ResponseBody, out); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) reserve(ctx context.Context, key, requestHash string) error {
	if s.idempotency == nil || strings.TrimSpace(key) == "" {
		return nil
	}
	err := s.idempotency.Reserve(ctx, key, requestHash, s.nowFn().Add(s.cfg.IdempotencyTTL))
	if errors.Is(err, domain.ErrConflict) {
		return &domain.Error{Kind: domain.ErrIdempotencyConflict, Code: "request_in_progress", Message: "a request with this idempotency key is still in progress"}
	}
	return err
}

func (s *Service) complete(ctx context.Context, key string, code int, payload any) {
	if s.idempotency == nil || strings.TrimSpace(key) == "" {
		return
	}
	b, err := json.Marshal(payload)
	if err == nil {
		err = s.idempotency.Complete(ctx, key, code, b, s.nowFn())
	}
	if err != nil {
		s.logger.WarnContext(ctx, "idempotency completion failed", "operation", "complete_idempotency", "outcome", "failure", "error", err)
	}
}

// abandon frees a reserved key after a failed attempt so the caller can retry.
func (s *Service) abandon(ctx context.Context, key string) {
	if s.idempotency == nil || strings.TrimSpace(key) == "" {
		return
	}
	if err := s.idempotency.Abandon(ctx, key); err != nil {
		s.logger.WarnContext(ctx, "idempotency abandon failed", "operation", "abandon_idempotency", "outcome", "failure", "error", err)
	}
}

func hashJSON(v any) string {
	b, _ := json.Marshal(v)
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}
