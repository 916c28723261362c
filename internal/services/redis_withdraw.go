package services

import (
	"fmt"

	"matka-backend/internal/models"

	"github.com/redis/go-redis/v9"
)

func (s *RedisService) SaveWithdrawRequest(req *models.WithdrawRequest) error {
	if err := s.setJSON(fmt.Sprintf(KeyWithdraw, req.ID), req, 0); err != nil {
		return fmt.Errorf("failed to save withdraw request: %v", err)
	}

	member := redis.Z{Score: float64(req.CreatedAt), Member: req.ID}
	if err := s.client.ZAdd(s.ctx, fmt.Sprintf(KeyUserWithdraws, req.UserID), member).Err(); err != nil {
		return fmt.Errorf("failed to index user withdrawals: %v", err)
	}

	if req.Status == models.WithdrawStatusPending {
		return s.client.ZAdd(s.ctx, KeyWithdrawsQueue, member).Err()
	}
	return s.client.ZRem(s.ctx, KeyWithdrawsQueue, req.ID).Err()
}

func (s *RedisService) GetWithdrawRequest(id string) (*models.WithdrawRequest, error) {
	var req models.WithdrawRequest
	if err := s.getJSON(fmt.Sprintf(KeyWithdraw, id), &req); err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("withdraw request not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get withdraw request: %v", err)
	}
	return &req, nil
}

// ClaimWithdrawResolve takes the one-shot resolution claim for a pending
// request so two concurrent resolves cannot release the locked funds
// twice. Returns false when another resolver already holds it.
func (s *RedisService) ClaimWithdrawResolve(withdrawID string) (bool, error) {
	return s.client.SetNX(s.ctx, fmt.Sprintf(KeyWithdrawClaim, withdrawID), 1, 0).Result()
}

// ReleaseWithdrawResolveClaim frees the claim when resolution failed
// before any funds moved.
func (s *RedisService) ReleaseWithdrawResolveClaim(withdrawID string) error {
	return s.client.Del(s.ctx, fmt.Sprintf(KeyWithdrawClaim, withdrawID)).Err()
}

func (s *RedisService) GetUserWithdrawRequests(userID string, limit int64) ([]*models.WithdrawRequest, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	ids, err := s.client.ZRevRange(s.ctx, fmt.Sprintf(KeyUserWithdraws, userID), 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get withdraw IDs: %v", err)
	}
	return s.bulkGetWithdraws(ids)
}

// GetPendingWithdrawRequests returns the admin approval queue, oldest
// first.
func (s *RedisService) GetPendingWithdrawRequests() ([]*models.WithdrawRequest, error) {
	ids, err := s.client.ZRange(s.ctx, KeyWithdrawsQueue, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get pending withdrawals: %v", err)
	}
	return s.bulkGetWithdraws(ids)
}

func (s *RedisService) bulkGetWithdraws(ids []string) ([]*models.WithdrawRequest, error) {
	if len(ids) == 0 {
		return []*models.WithdrawRequest{}, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.Get(s.ctx, fmt.Sprintf(KeyWithdraw, id))
	}
	_, err := pipe.Exec(s.ctx)
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("pipeline execution failed: %v", err)
	}

	reqs := make([]*models.WithdrawRequest, 0, len(ids))
	for _, cmd := range cmds {
		data, err := cmd.Result()
		if err != nil {
			continue
		}
		var req models.WithdrawRequest
		if err := unmarshalString(data, &req); err != nil {
			continue
		}
		reqs = append(reqs, &req)
	}

	return reqs, nil
}
