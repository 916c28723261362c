package services

import (
	"encoding/json"
	"fmt"

	"matka-backend/internal/engine"
	"matka-backend/internal/models"

	"github.com/redis/go-redis/v9"
)

func resultKey(gameID, date string, session models.Session) string {
	return fmt.Sprintf(KeyResult, gameID, date, session)
}

// SaveResult declares a result. The SETNX write is the uniqueness
// constraint: a second declaration for the same (game, date, session)
// fails with engine.ErrDuplicateResult.
func (s *RedisService) SaveResult(result *models.Result) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %v", err)
	}

	ok, err := s.client.SetNX(s.ctx, resultKey(result.GameID, result.Date, result.Session), data, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to save result: %v", err)
	}
	if !ok {
		return engine.ErrDuplicateResult
	}

	return s.client.ZAdd(s.ctx, fmt.Sprintf(KeyResultsByDate, result.Date), redis.Z{
		Score:  float64(result.DeclaredAt),
		Member: resultKey(result.GameID, result.Date, result.Session),
	}).Err()
}

// GetResult fetches the declared result for a key, or
// engine.ErrMissingResult when nothing has been declared yet.
func (s *RedisService) GetResult(gameID, date string, session models.Session) (*models.Result, error) {
	var result models.Result
	if err := s.getJSON(resultKey(gameID, date, session), &result); err != nil {
		if err == redis.Nil {
			return nil, engine.ErrMissingResult
		}
		return nil, fmt.Errorf("failed to get result: %v", err)
	}
	return &result, nil
}

// ListResultsForDate returns every result declared for a calendar date,
// most recently declared first.
func (s *RedisService) ListResultsForDate(date string) ([]models.Result, error) {
	keys, err := s.client.ZRevRange(s.ctx, fmt.Sprintf(KeyResultsByDate, date), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %v", err)
	}

	if len(keys) == 0 {
		return []models.Result{}, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(keys))
	for i, key := range keys {
		cmds[i] = pipe.Get(s.ctx, key)
	}
	_, err = pipe.Exec(s.ctx)
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("pipeline execution failed: %v", err)
	}

	results := make([]models.Result, 0, len(keys))
	for _, cmd := range cmds {
		data, err := cmd.Result()
		if err != nil {
			continue
		}
		var result models.Result
		if err := unmarshalString(data, &result); err != nil {
			continue
		}
		results = append(results, result)
	}

	return results, nil
}

// SaveWinnersLedger persists one settlement run. SETNX keeps re-settling
// an already-settled key a no-op instead of double paying.
func (s *RedisService) SaveWinnersLedger(ledger *models.WinnersLedger) (bool, error) {
	data, err := json.Marshal(ledger)
	if err != nil {
		return false, fmt.Errorf("failed to marshal winners ledger: %v", err)
	}

	key := fmt.Sprintf(KeyWinners, ledger.GameID, ledger.Date, ledger.Session)
	ok, err := s.client.SetNX(s.ctx, key, data, 0).Result()
	if err != nil {
		return false, fmt.Errorf("failed to save winners ledger: %v", err)
	}
	return ok, nil
}

// ClaimWinCredit takes the one-shot claim for crediting a winner
// transaction. Returns false when a previous settlement run already paid
// it, so replaying the credit loop never pays twice.
func (s *RedisService) ClaimWinCredit(transactionID string) (bool, error) {
	return s.client.SetNX(s.ctx, fmt.Sprintf(KeyWinCredit, transactionID), 1, TTLTransaction).Result()
}

func (s *RedisService) ClearWinCredit(transactionID string) error {
	return s.client.Del(s.ctx, fmt.Sprintf(KeyWinCredit, transactionID)).Err()
}

func (s *RedisService) GetWinnersLedger(gameID, date string, session models.Session) (*models.WinnersLedger, error) {
	var ledger models.WinnersLedger
	if err := s.getJSON(fmt.Sprintf(KeyWinners, gameID, date, session), &ledger); err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("no winners ledger for %s %s %s", gameID, date, session)
		}
		return nil, fmt.Errorf("failed to get winners ledger: %v", err)
	}
	return &ledger, nil
}
