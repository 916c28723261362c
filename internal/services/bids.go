package services

import (
	"fmt"
	"strings"
	"time"

	"matka-backend/internal/catalog"
	"matka-backend/internal/models"

	"go.uber.org/zap"
)

// BidLineRequest is one line of a bid placement call.
type BidLineRequest struct {
	GameID  string         `json:"game_id" binding:"required"`
	Value   string         `json:"value" binding:"required"`
	Session models.Session `json:"session"`
	Stake   float64        `json:"stake" binding:"required"`
}

type PlaceBidRequest struct {
	MarketKind models.MarketKind `json:"market_kind" binding:"required"`
	Lines      []BidLineRequest  `json:"lines" binding:"required,min=1"`
}

// BidService validates and records wager slips. Stakes are debited from
// the wallet atomically before the slip is stored.
type BidService struct {
	redis   *RedisService
	catalog *catalog.Catalog
	log     *zap.Logger
}

func NewBidService(redisService *RedisService, cat *catalog.Catalog, log *zap.Logger) *BidService {
	return &BidService{
		redis:   redisService,
		catalog: cat,
		log:     log,
	}
}

// allowedKinds lists which bid kinds each market kind accepts.
var allowedKinds = map[models.MarketKind]map[models.BidKind]bool{
	models.MarketKindMain: {
		models.BidKindSingleDigit: true,
		models.BidKindJodi:        true,
		models.BidKindSinglePanna: true,
		models.BidKindDoublePanna: true,
		models.BidKindTriplePanna: true,
	},
	models.MarketKindStarline: {
		models.BidKindSingleDigit: true,
		models.BidKindSinglePanna: true,
		models.BidKindDoublePanna: true,
		models.BidKindTriplePanna: true,
	},
	models.MarketKindGalidisawar: {
		models.BidKindJodi: true,
	},
}

func (s *BidService) PlaceBid(userID string, req *PlaceBidRequest) (*models.WagerSlip, error) {
	user, err := s.redis.GetUser(userID)
	if err != nil {
		return nil, err
	}

	kinds, ok := allowedKinds[req.MarketKind]
	if !ok {
		return nil, fmt.Errorf("unknown market kind: %s", req.MarketKind)
	}

	now := time.Now()
	markets := make(map[string]*models.Market)

	lines := make([]models.BidLine, 0, len(req.Lines))
	total := 0.0
	for i, lr := range req.Lines {
		if lr.Stake <= 0 {
			return nil, fmt.Errorf("line %d: stake must be positive", i)
		}

		kind, err := s.catalog.Classify(lr.Value)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i, err)
		}
		if !kinds[kind] {
			return nil, fmt.Errorf("line %d: %s bids not accepted on %s markets", i, kind, req.MarketKind)
		}

		market, ok := markets[lr.GameID]
		if !ok {
			market, err = s.redis.GetMarket(lr.GameID)
			if err != nil {
				return nil, fmt.Errorf("line %d: %v", i, err)
			}
			markets[lr.GameID] = market
		}
		if market.Kind != req.MarketKind {
			return nil, fmt.Errorf("line %d: market %s is not a %s market", i, market.Name, req.MarketKind)
		}

		session := lr.Session
		if market.SupportsSessions() {
			if session != models.SessionOpen && session != models.SessionClose {
				return nil, fmt.Errorf("line %d: session must be open or close", i)
			}
		} else if session != models.SessionNone {
			return nil, fmt.Errorf("line %d: %s markets have no sessions", i, market.Kind)
		}

		if err := checkMarketOpen(market, session, now); err != nil {
			return nil, fmt.Errorf("line %d: %v", i, err)
		}

		line := models.BidLine{
			Kind:     kind,
			Session:  session,
			Stake:    lr.Stake,
			GameID:   market.ID,
			GameName: market.Name,
		}
		switch kind {
		case models.BidKindSinglePanna, models.BidKindDoublePanna, models.BidKindTriplePanna:
			line.Panna = lr.Value
		default:
			line.Digit = lr.Value
		}

		lines = append(lines, line)
		total += lr.Stake
	}

	// Materialize the wallet first so a fresh account gets a clean
	// insufficient-balance error instead of the script's missing-key one.
	if _, err := s.redis.GetWallet(userID); err != nil {
		return nil, err
	}

	if err := s.redis.DebitBalance(userID, total, true); err != nil {
		return nil, fmt.Errorf("failed to debit stake: %v", err)
	}

	slip := &models.WagerSlip{
		ID:           models.GenerateSlipID(),
		UserID:       user.ID,
		UserName:     user.Name,
		MobileNumber: user.MobileNumber,
		MarketKind:   req.MarketKind,
		Lines:        lines,
		TotalStake:   total,
		CreatedAt:    now.Unix(),
	}

	if err := s.redis.SaveSlip(slip); err != nil {
		// Stake already taken; put it back rather than strand it.
		if refundErr := s.redis.CreditBalance(userID, total, false); refundErr != nil {
			s.log.Error("failed to refund stake after slip save failure",
				zap.String("user_id", userID), zap.Error(refundErr))
		}
		return nil, err
	}

	wallet, err := s.redis.GetWallet(userID)
	if err != nil {
		s.log.Warn("failed to load wallet for bid transaction", zap.Error(err))
		wallet = &models.Wallet{UserID: userID}
	}

	if err := s.redis.SaveTransaction(&models.Transaction{
		ID:            models.GenerateTransactionID(),
		UserID:        userID,
		Type:          models.TransactionTypeBid,
		Amount:        -total,
		BalanceBefore: wallet.Balance + total,
		BalanceAfter:  wallet.Balance,
		SlipID:        slip.ID,
		Description:   fmt.Sprintf("Bid of %s across %d lines", models.FormatCurrency(total), len(lines)),
		CreatedAt:     slip.CreatedAt,
	}); err != nil {
		s.log.Warn("failed to record bid transaction", zap.String("slip_id", slip.ID), zap.Error(err))
	}

	return slip, nil
}

// checkMarketOpen enforces the weekly schedule: the market must be active,
// today must not be closed, and the relevant session window must still be
// open (open-session bids close at open time, everything else at close
// time).
func checkMarketOpen(market *models.Market, session models.Session, now time.Time) error {
	if !market.Active {
		return fmt.Errorf("market %s is closed for betting", market.Name)
	}

	day := strings.ToLower(now.Weekday().String())
	var today *models.DaySchedule
	for i := range market.Schedule {
		if strings.ToLower(market.Schedule[i].Day) == day {
			today = &market.Schedule[i]
			break
		}
	}
	if today == nil || today.Closed {
		return fmt.Errorf("market %s is closed today", market.Name)
	}

	cutoff := today.CloseTime
	if session == models.SessionOpen {
		cutoff = today.OpenTime
	}

	limit, err := time.ParseInLocation("15:04", cutoff, now.Location())
	if err != nil {
		return fmt.Errorf("market %s has a malformed schedule", market.Name)
	}
	limit = time.Date(now.Year(), now.Month(), now.Day(), limit.Hour(), limit.Minute(), 0, 0, now.Location())

	if !now.Before(limit) {
		return fmt.Errorf("betting window for %s has closed", market.Name)
	}
	return nil
}
