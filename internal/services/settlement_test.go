package services_test

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"matka-backend/internal/catalog"
	"matka-backend/internal/engine"
	"matka-backend/internal/models"
	"matka-backend/internal/services"
)

type noopBroadcaster struct{}

func (noopBroadcaster) BroadcastResult(*models.Result)            {}
func (noopBroadcaster) BroadcastWin(string, *models.WinnerRecord) {}

func TestDeclareResultSettlesOnce(t *testing.T) {
	redisService := setupTestRedis(t)
	defer redisService.Close()

	settlement := services.NewSettlementService(redisService, catalog.New(), noopBroadcaster{}, zap.NewNop())

	market := &models.Market{
		ID:        "game_test_settle",
		Kind:      models.MarketKindGalidisawar,
		Name:      "Settlement Test Gali",
		Active:    true,
		CreatedAt: time.Now().Unix(),
	}
	if err := redisService.SaveMarket(market); err != nil {
		t.Fatalf("Failed to save market: %v", err)
	}
	defer redisService.DeleteMarket(market)

	if err := redisService.SaveRateTable(&models.RateTable{
		Kind:  models.MarketKindGalidisawar,
		Rates: map[models.BidKind]float64{models.BidKindJodi: 95},
	}); err != nil {
		t.Fatalf("Failed to save rates: %v", err)
	}

	user := &models.User{
		ID:           "user_test_settle",
		Name:         "Test Winner",
		MobileNumber: "9000000001",
		Role:         models.RoleUser,
		Verified:     true,
		Active:       true,
		CreatedAt:    time.Now().Unix(),
	}
	if err := redisService.SaveUser(user); err != nil {
		t.Fatalf("Failed to save user: %v", err)
	}
	defer redisService.DeleteUser(user)
	defer redisService.DeleteWallet(user.ID)

	if _, err := redisService.GetWallet(user.ID); err != nil {
		t.Fatalf("Failed to create wallet: %v", err)
	}

	now := time.Now().Unix()
	date := models.FormatBidDate(now)

	slip := &models.WagerSlip{
		ID:           "slip_test_settle",
		UserID:       user.ID,
		UserName:     user.Name,
		MobileNumber: user.MobileNumber,
		MarketKind:   models.MarketKindGalidisawar,
		TotalStake:   10,
		CreatedAt:    now,
		Lines: []models.BidLine{
			{Kind: models.BidKindJodi, Digit: "44", Stake: 10, GameID: market.ID, GameName: market.Name},
		},
	}
	if err := redisService.SaveSlip(slip); err != nil {
		t.Fatalf("Failed to save slip: %v", err)
	}
	defer redisService.DeleteSlip(slip)

	req := &services.DeclareResultRequest{
		GameID: market.ID,
		Date:   date,
		Digit:  "44",
	}
	defer redisService.DeleteResult(market.ID, date, models.SessionNone)
	defer redisService.DeleteWinnersLedger(market.ID, date, models.SessionNone)

	result, ledger, err := settlement.DeclareResult(req)
	if err != nil {
		t.Fatalf("Failed to declare result: %v", err)
	}
	if result.Digit != "44" {
		t.Errorf("Expected result digit 44, got %s", result.Digit)
	}
	if len(ledger.Winners) != 1 {
		t.Fatalf("Expected 1 winner, got %d", len(ledger.Winners))
	}
	if ledger.Winners[0].Payout != 950 {
		t.Errorf("Expected payout 950, got %f", ledger.Winners[0].Payout)
	}
	defer redisService.ClearWinCredit(ledger.Winners[0].TransactionID)

	wallet, err := redisService.GetWallet(user.ID)
	if err != nil {
		t.Fatalf("Failed to get wallet: %v", err)
	}
	if wallet.Balance != 950 {
		t.Errorf("Expected balance 950 after settlement, got %f", wallet.Balance)
	}

	// A second declaration for the same key must be rejected outright.
	_, _, err = settlement.DeclareResult(req)
	if !errors.Is(err, engine.ErrDuplicateResult) {
		t.Errorf("Expected ErrDuplicateResult, got %v", err)
	}

	// Re-running settlement returns the stored ledger and pays nobody twice.
	again, err := settlement.Settle(result)
	if err != nil {
		t.Fatalf("Failed to re-settle: %v", err)
	}
	if len(again.Winners) != 1 || again.Winners[0].TransactionID != ledger.Winners[0].TransactionID {
		t.Error("Re-settlement should return the persisted ledger unchanged")
	}

	wallet, _ = redisService.GetWallet(user.ID)
	if wallet.Balance != 950 {
		t.Errorf("Balance changed on re-settlement: %f", wallet.Balance)
	}
}

func TestResettleRecoversFailedSettlement(t *testing.T) {
	redisService := setupTestRedis(t)
	defer redisService.Close()

	settlement := services.NewSettlementService(redisService, catalog.New(), noopBroadcaster{}, zap.NewNop())

	market := &models.Market{
		ID:        "game_test_resettle",
		Kind:      models.MarketKindGalidisawar,
		Name:      "Resettle Test Gali",
		Active:    true,
		CreatedAt: time.Now().Unix(),
	}
	if err := redisService.SaveMarket(market); err != nil {
		t.Fatalf("Failed to save market: %v", err)
	}
	defer redisService.DeleteMarket(market)

	user := &models.User{
		ID:           "user_test_resettle",
		Name:         "Stranded Winner",
		MobileNumber: "9000000002",
		Role:         models.RoleUser,
		Verified:     true,
		Active:       true,
		CreatedAt:    time.Now().Unix(),
	}
	if err := redisService.SaveUser(user); err != nil {
		t.Fatalf("Failed to save user: %v", err)
	}
	defer redisService.DeleteUser(user)
	defer redisService.DeleteWallet(user.ID)

	if _, err := redisService.GetWallet(user.ID); err != nil {
		t.Fatalf("Failed to create wallet: %v", err)
	}

	now := time.Now().Unix()
	date := models.FormatBidDate(now)

	slip := &models.WagerSlip{
		ID:           "slip_test_resettle",
		UserID:       user.ID,
		UserName:     user.Name,
		MobileNumber: user.MobileNumber,
		MarketKind:   models.MarketKindGalidisawar,
		TotalStake:   10,
		CreatedAt:    now,
		Lines: []models.BidLine{
			{Kind: models.BidKindJodi, Digit: "21", Stake: 10, GameID: market.ID, GameName: market.Name},
		},
	}
	if err := redisService.SaveSlip(slip); err != nil {
		t.Fatalf("Failed to save slip: %v", err)
	}
	defer redisService.DeleteSlip(slip)

	defer redisService.DeleteResult(market.ID, date, models.SessionNone)
	defer redisService.DeleteWinnersLedger(market.ID, date, models.SessionNone)

	if _, _, err := settlement.Resettle(market.ID, date, models.SessionNone); !errors.Is(err, engine.ErrMissingResult) {
		t.Errorf("Expected ErrMissingResult before declaration, got %v", err)
	}

	// With no rate table the declaration stores the result but settlement
	// fails, leaving winners unpaid.
	if err := redisService.DeleteRateTable(models.MarketKindGalidisawar); err != nil {
		t.Fatalf("Failed to delete rate table: %v", err)
	}

	req := &services.DeclareResultRequest{
		GameID: market.ID,
		Date:   date,
		Digit:  "21",
	}
	if _, _, err := settlement.DeclareResult(req); !errors.Is(err, engine.ErrMissingRate) {
		t.Fatalf("Expected ErrMissingRate, got %v", err)
	}

	// The result is on record, so declaring again cannot retry settlement.
	if _, _, err := settlement.DeclareResult(req); !errors.Is(err, engine.ErrDuplicateResult) {
		t.Fatalf("Expected ErrDuplicateResult, got %v", err)
	}

	// Fix the rates, then settle through the recovery path.
	if err := redisService.SaveRateTable(&models.RateTable{
		Kind:  models.MarketKindGalidisawar,
		Rates: map[models.BidKind]float64{models.BidKindJodi: 95},
	}); err != nil {
		t.Fatalf("Failed to save rates: %v", err)
	}

	result, ledger, err := settlement.Resettle(market.ID, date, models.SessionNone)
	if err != nil {
		t.Fatalf("Failed to resettle: %v", err)
	}
	if result.Digit != "21" {
		t.Errorf("Expected stored result digit 21, got %s", result.Digit)
	}
	if len(ledger.Winners) != 1 {
		t.Fatalf("Expected 1 winner, got %d", len(ledger.Winners))
	}
	defer redisService.ClearWinCredit(ledger.Winners[0].TransactionID)

	wallet, err := redisService.GetWallet(user.ID)
	if err != nil {
		t.Fatalf("Failed to get wallet: %v", err)
	}
	if wallet.Balance != 950 {
		t.Errorf("Expected balance 950 after recovery, got %f", wallet.Balance)
	}

	// Repeating the recovery pays nobody twice.
	_, again, err := settlement.Resettle(market.ID, date, models.SessionNone)
	if err != nil {
		t.Fatalf("Failed to resettle twice: %v", err)
	}
	if len(again.Winners) != 1 || again.Winners[0].TransactionID != ledger.Winners[0].TransactionID {
		t.Error("Repeated recovery should return the persisted ledger unchanged")
	}

	wallet, _ = redisService.GetWallet(user.ID)
	if wallet.Balance != 950 {
		t.Errorf("Balance changed on repeated recovery: %f", wallet.Balance)
	}
}
