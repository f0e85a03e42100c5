package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"travelsure/internal/models"

	"github.com/redis/go-redis/v9"
)

// RedisRequestStore keeps pending verification requests in Redis so they
// survive a restart while a callback is in flight. Entries expire on their
// own after the TTL; a callback for an evicted request is treated as unknown,
// the same as any stale request id.
type RedisRequestStore struct {
	client    *redis.Client
	namespace string
	ttl       time.Duration
}

func NewRedisRequestStore(client *redis.Client, namespace string, ttl time.Duration) *RedisRequestStore {
	return &RedisRequestStore{client: client, namespace: namespace, ttl: ttl}
}

func (s *RedisRequestStore) requestKey(requestID string) string {
	return fmt.Sprintf("%s:req:%s", s.namespace, requestID)
}

func (s *RedisRequestStore) policyKey(policyID int64) string {
	return fmt.Sprintf("%s:policy:%d", s.namespace, policyID)
}

func (s *RedisRequestStore) Put(ctx context.Context, req models.VerificationRequest) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal verification request: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.requestKey(req.RequestID), payload, s.ttl)
	pipe.Set(ctx, s.policyKey(req.PolicyID), req.RequestID, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store verification request: %w", err)
	}
	return nil
}

func (s *RedisRequestStore) LiveForPolicy(ctx context.Context, policyID int64) (bool, error) {
	exists, err := s.client.Exists(ctx, s.policyKey(policyID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check pending request: %w", err)
	}
	return exists > 0, nil
}

func (s *RedisRequestStore) Consume(ctx context.Context, requestID string) (models.VerificationRequest, bool, error) {
	payload, err := s.client.GetDel(ctx, s.requestKey(requestID)).Result()
	if err == redis.Nil {
		return models.VerificationRequest{}, false, nil
	}
	if err != nil {
		return models.VerificationRequest{}, false, fmt.Errorf("failed to consume verification request: %w", err)
	}

	var req models.VerificationRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return models.VerificationRequest{}, false, fmt.Errorf("failed to unmarshal verification request: %w", err)
	}

	if err := s.client.Del(ctx, s.policyKey(req.PolicyID)).Err(); err != nil {
		return models.VerificationRequest{}, false, fmt.Errorf("failed to clear pending request index: %w", err)
	}
	return req, true, nil
}
