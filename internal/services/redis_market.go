package services

import (
	"fmt"
	"strings"
	"time"

	"matka-backend/internal/models"

	"github.com/redis/go-redis/v9"
)

// SaveMarket persists a market document. Name uniqueness per kind is
// enforced with a SETNX claim on the normalized name.
func (s *RedisService) SaveMarket(market *models.Market) error {
	nameKey := fmt.Sprintf(KeyMarketByName, market.Kind, normalizeName(market.Name))

	ok, err := s.client.SetNX(s.ctx, nameKey, market.ID, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to claim market name: %v", err)
	}
	if !ok {
		owner, _ := s.client.Get(s.ctx, nameKey).Result()
		if owner != market.ID {
			return fmt.Errorf("market name %q already taken for kind %s", market.Name, market.Kind)
		}
	}

	market.UpdatedAt = time.Now().Unix()
	if err := s.setJSON(fmt.Sprintf(KeyMarket, market.ID), market, 0); err != nil {
		return fmt.Errorf("failed to save market: %v", err)
	}

	return s.client.SAdd(s.ctx, fmt.Sprintf(KeyMarketsAll, market.Kind), market.ID).Err()
}

func (s *RedisService) GetMarket(marketID string) (*models.Market, error) {
	var market models.Market
	if err := s.getJSON(fmt.Sprintf(KeyMarket, marketID), &market); err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("market not found: %s", marketID)
		}
		return nil, fmt.Errorf("failed to get market: %v", err)
	}
	return &market, nil
}

func (s *RedisService) ListMarkets(kind models.MarketKind) ([]*models.Market, error) {
	ids, err := s.client.SMembers(s.ctx, fmt.Sprintf(KeyMarketsAll, kind)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list markets: %v", err)
	}

	if len(ids) == 0 {
		return []*models.Market{}, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.Get(s.ctx, fmt.Sprintf(KeyMarket, id))
	}
	_, err = pipe.Exec(s.ctx)
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("pipeline execution failed: %v", err)
	}

	markets := make([]*models.Market, 0, len(ids))
	for _, cmd := range cmds {
		data, err := cmd.Result()
		if err != nil {
			continue
		}
		var market models.Market
		if err := unmarshalString(data, &market); err != nil {
			continue
		}
		markets = append(markets, &market)
	}

	return markets, nil
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// --- Rate tables ---

func (s *RedisService) GetRateTable(kind models.MarketKind) (*models.RateTable, error) {
	var table models.RateTable
	err := s.getJSON(fmt.Sprintf(KeyRateTable, kind), &table)
	if err == redis.Nil {
		return nil, fmt.Errorf("no rate table configured for kind %s", kind)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rate table: %v", err)
	}
	return &table, nil
}

func (s *RedisService) SaveRateTable(table *models.RateTable) error {
	table.UpdatedAt = time.Now().Unix()
	return s.setJSON(fmt.Sprintf(KeyRateTable, table.Kind), table, 0)
}

// SeedRateTables writes the default payout multipliers for any market kind
// that has no table yet. Existing tables are left untouched.
func (s *RedisService) SeedRateTables() error {
	defaults := map[models.MarketKind]map[models.BidKind]float64{
		models.MarketKindMain: {
			models.BidKindSingleDigit: 9.5,
			models.BidKindJodi:        95,
			models.BidKindSinglePanna: 140,
			models.BidKindDoublePanna: 280,
			models.BidKindTriplePanna: 700,
		},
		models.MarketKindStarline: {
			models.BidKindSingleDigit: 9.5,
			models.BidKindSinglePanna: 140,
			models.BidKindDoublePanna: 280,
			models.BidKindTriplePanna: 700,
		},
		models.MarketKindGalidisawar: {
			models.BidKindJodi: 95,
		},
	}

	for kind, rates := range defaults {
		if _, err := s.GetRateTable(kind); err == nil {
			continue
		}
		if err := s.SaveRateTable(&models.RateTable{Kind: kind, Rates: rates}); err != nil {
			return err
		}
	}

	return nil
}
