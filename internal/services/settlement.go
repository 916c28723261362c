package services

import (
	"fmt"
	"time"

	"matka-backend/internal/catalog"
	"matka-backend/internal/engine"
	"matka-backend/internal/models"

	"go.uber.org/zap"
)

type DeclareResultRequest struct {
	GameID  string         `json:"game_id" binding:"required"`
	Date    string         `json:"date" binding:"required"`
	Session models.Session `json:"session"`
	Digit   string         `json:"digit"`
	Panna   string         `json:"panna"`
}

// SettlementService declares results and runs winner aggregation: project
// the day's slips, match them against the result, persist the winners
// ledger once, credit wallets, broadcast.
type SettlementService struct {
	redis       *RedisService
	catalog     *catalog.Catalog
	broadcaster Broadcaster
	log         *zap.Logger
}

func NewSettlementService(redisService *RedisService, cat *catalog.Catalog, b Broadcaster, log *zap.Logger) *SettlementService {
	return &SettlementService{
		redis:       redisService,
		catalog:     cat,
		broadcaster: b,
		log:         log,
	}
}

// DeclareResult validates and stores the result, then settles it. The
// stored result is the uniqueness point: a second declaration for the same
// (game, date, session) fails with engine.ErrDuplicateResult before any
// payout work happens.
func (s *SettlementService) DeclareResult(req *DeclareResultRequest) (*models.Result, *models.WinnersLedger, error) {
	market, err := s.redis.GetMarket(req.GameID)
	if err != nil {
		return nil, nil, err
	}

	if err := models.ValidateDate(req.Date); err != nil {
		return nil, nil, err
	}

	session := req.Session
	if market.SupportsSessions() {
		if session != models.SessionOpen && session != models.SessionClose {
			return nil, nil, fmt.Errorf("session must be open or close for %s markets", market.Kind)
		}
	} else if session != models.SessionNone {
		return nil, nil, fmt.Errorf("%s markets have no sessions", market.Kind)
	}

	digit := req.Digit
	if req.Panna != "" {
		kind, err := s.catalog.Classify(req.Panna)
		if err != nil {
			return nil, nil, err
		}
		switch kind {
		case models.BidKindSinglePanna, models.BidKindDoublePanna, models.BidKindTriplePanna:
		default:
			return nil, nil, fmt.Errorf("%w: %q is not a panna", catalog.ErrInvalidValue, req.Panna)
		}
		if digit == "" {
			digit, err = catalog.PannaDigit(req.Panna)
			if err != nil {
				return nil, nil, err
			}
		}
	}
	if digit != "" && !s.catalog.IsValid(models.BidKindSingleDigit, digit) && !s.catalog.IsValid(models.BidKindJodi, digit) {
		return nil, nil, fmt.Errorf("%w: %q", catalog.ErrInvalidValue, digit)
	}
	if digit == "" && req.Panna == "" {
		return nil, nil, fmt.Errorf("result needs a digit or a panna")
	}

	result := &models.Result{
		ID:         models.GenerateResultID(),
		MarketKind: market.Kind,
		GameID:     market.ID,
		GameName:   market.Name,
		Date:       req.Date,
		Session:    session,
		Digit:      digit,
		Panna:      req.Panna,
		DeclaredAt: time.Now().Unix(),
	}

	if err := s.redis.SaveResult(result); err != nil {
		return nil, nil, err
	}

	ledger, err := s.Settle(result)
	if err != nil {
		return result, nil, err
	}

	s.broadcaster.BroadcastResult(result)

	return result, ledger, nil
}

// Resettle re-runs settlement for a result that is already declared. This
// is the recovery path when the original declaration stored the result but
// settlement failed partway, e.g. the rate table was fixed after the fact
// or the store hiccuped between the ledger write and the payouts.
func (s *SettlementService) Resettle(gameID, date string, session models.Session) (*models.Result, *models.WinnersLedger, error) {
	result, err := s.redis.GetResult(gameID, date, session)
	if err != nil {
		return nil, nil, err
	}

	ledger, err := s.Settle(result)
	if err != nil {
		return result, nil, err
	}
	return result, ledger, nil
}

// Settle runs winner aggregation for a declared result. Safe to call more
// than once for the same key: the computation is pure, the ledger write is
// set-if-absent, and each winner credit is claimed exactly once, so a
// re-run completes whatever an earlier run left unpaid and nothing more.
func (s *SettlementService) Settle(result *models.Result) (*models.WinnersLedger, error) {
	slips, err := s.redis.GetGameSlipsForDate(result.GameID, result.Date)
	if err != nil {
		return nil, err
	}

	rates, err := s.redis.GetRateTable(result.MarketKind)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", engine.ErrMissingRate, err)
	}

	rows := engine.Project(slips)
	run, err := engine.Settle(*result, rows, *rates)
	if err != nil {
		return nil, err
	}

	for _, skipped := range run.Skipped {
		s.log.Error("winning bid skipped, rate table misconfigured",
			zap.String("slip_id", skipped.Row.SlipID),
			zap.Int("line_index", skipped.Row.LineIndex),
			zap.String("kind", string(skipped.Row.Kind)),
			zap.Error(skipped.Err))
	}

	ledger := &models.WinnersLedger{
		GameID:    result.GameID,
		Date:      result.Date,
		Session:   result.Session,
		Winners:   run.Winners,
		TotalPaid: run.TotalPaid,
		SettledAt: time.Now().Unix(),
	}
	for i := range ledger.Winners {
		ledger.Winners[i].TransactionID = models.GenerateTransactionID()
	}

	inserted, err := s.redis.SaveWinnersLedger(ledger)
	if err != nil {
		return nil, err
	}
	if !inserted {
		// A previous run persisted the ledger. Replay the credit loop from
		// the stored copy rather than short-circuiting: every credit is
		// claim-guarded, so winners a crashed run never paid get paid now
		// and everyone else is skipped.
		stored, err := s.redis.GetWinnersLedger(result.GameID, result.Date, result.Session)
		if err != nil {
			return nil, err
		}
		ledger = stored
	}

	for i := range ledger.Winners {
		w := &ledger.Winners[i]

		claimed, err := s.redis.ClaimWinCredit(w.TransactionID)
		if err != nil {
			s.log.Error("failed to claim win credit",
				zap.String("tx_id", w.TransactionID), zap.Error(err))
			continue
		}
		if !claimed {
			continue
		}

		if err := s.redis.CreditBalance(w.UserID, w.Payout, true); err != nil {
			s.log.Error("failed to credit winnings",
				zap.String("user_id", w.UserID),
				zap.Float64("payout", w.Payout),
				zap.Error(err))
			continue
		}

		wallet, err := s.redis.GetWallet(w.UserID)
		if err != nil {
			s.log.Warn("failed to load wallet for win transaction", zap.Error(err))
			wallet = &models.Wallet{UserID: w.UserID}
		}

		if err := s.redis.SaveTransaction(&models.Transaction{
			ID:            w.TransactionID,
			UserID:        w.UserID,
			Type:          models.TransactionTypeWin,
			Amount:        w.Payout,
			BalanceBefore: wallet.Balance - w.Payout,
			BalanceAfter:  wallet.Balance,
			SlipID:        w.SlipID,
			Description:   fmt.Sprintf("Won %s on %s (%s %s)", models.FormatCurrency(w.Payout), w.GameName, w.Kind, w.Value),
			CreatedAt:     ledger.SettledAt,
		}); err != nil {
			s.log.Warn("failed to record win transaction", zap.String("tx_id", w.TransactionID), zap.Error(err))
		}

		s.broadcaster.BroadcastWin(w.UserID, w)
	}

	s.log.Info("settlement complete",
		zap.String("game_id", result.GameID),
		zap.String("date", result.Date),
		zap.String("session", string(result.Session)),
		zap.Int("winners", len(ledger.Winners)),
		zap.Int("skipped", len(run.Skipped)),
		zap.Float64("total_paid", ledger.TotalPaid))

	return ledger, nil
}
