package services

import (
	"fmt"

	"matka-backend/internal/models"

	"github.com/redis/go-redis/v9"
)

// SaveSlip persists a wager slip document and indexes it per user and per
// (game, bid date) so settlement can fetch a single day's slips for one
// game without scanning.
func (s *RedisService) SaveSlip(slip *models.WagerSlip) error {
	if err := s.setJSON(fmt.Sprintf(KeySlip, slip.ID), slip, 0); err != nil {
		return fmt.Errorf("failed to save slip: %v", err)
	}

	score := float64(slip.CreatedAt)
	member := redis.Z{Score: score, Member: slip.ID}

	if err := s.client.ZAdd(s.ctx, fmt.Sprintf(KeyUserSlips, slip.UserID), member).Err(); err != nil {
		return fmt.Errorf("failed to index user slips: %v", err)
	}

	date := models.FormatBidDate(slip.CreatedAt)
	seen := make(map[string]struct{})
	for _, line := range slip.Lines {
		if _, ok := seen[line.GameID]; ok {
			continue
		}
		seen[line.GameID] = struct{}{}
		key := fmt.Sprintf(KeyGameDateSlips, line.GameID, date)
		if err := s.client.ZAdd(s.ctx, key, member).Err(); err != nil {
			return fmt.Errorf("failed to index game slips: %v", err)
		}
	}

	return nil
}

func (s *RedisService) GetSlip(slipID string) (*models.WagerSlip, error) {
	var slip models.WagerSlip
	if err := s.getJSON(fmt.Sprintf(KeySlip, slipID), &slip); err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("slip not found: %s", slipID)
		}
		return nil, fmt.Errorf("failed to get slip: %v", err)
	}
	return &slip, nil
}

// GetUserSlips returns a user's slips newest first.
func (s *RedisService) GetUserSlips(userID string, limit int64) ([]models.WagerSlip, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	ids, err := s.client.ZRevRange(s.ctx, fmt.Sprintf(KeyUserSlips, userID), 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get slip IDs: %v", err)
	}

	return s.bulkGetSlips(ids)
}

// GetGameSlipsForDate returns every slip that wagered on a game on one
// bid date, newest first. This is the settlement input.
func (s *RedisService) GetGameSlipsForDate(gameID, date string) ([]models.WagerSlip, error) {
	ids, err := s.client.ZRevRange(s.ctx, fmt.Sprintf(KeyGameDateSlips, gameID, date), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get slip IDs: %v", err)
	}

	return s.bulkGetSlips(ids)
}

func (s *RedisService) bulkGetSlips(slipIDs []string) ([]models.WagerSlip, error) {
	if len(slipIDs) == 0 {
		return []models.WagerSlip{}, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(slipIDs))
	for i, id := range slipIDs {
		cmds[i] = pipe.Get(s.ctx, fmt.Sprintf(KeySlip, id))
	}

	_, err := pipe.Exec(s.ctx)
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("pipeline execution failed: %v", err)
	}

	slips := make([]models.WagerSlip, 0, len(slipIDs))
	for _, cmd := range cmds {
		data, err := cmd.Result()
		if err != nil {
			continue
		}
		var slip models.WagerSlip
		if err := unmarshalString(data, &slip); err != nil {
			continue
		}
		slips = append(slips, slip)
	}

	return slips, nil
}
