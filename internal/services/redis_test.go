package services_test

import (
	"errors"
	"testing"
	"time"

	"matka-backend/internal/config"
	"matka-backend/internal/engine"
	"matka-backend/internal/models"
	"matka-backend/internal/services"
)

func setupTestRedis(t *testing.T) *services.RedisService {
	t.Helper()

	cfg := &config.Config{
		RedisURL:  "localhost:6379",
		RedisPass: "",
		RedisDB:   0,
	}

	redisService, err := services.NewRedisService(cfg)
	if err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	return redisService
}

func TestWalletScripts(t *testing.T) {
	redisService := setupTestRedis(t)
	defer redisService.Close()

	userID := "user_test_wallet"
	defer redisService.DeleteWallet(userID)

	wallet, err := redisService.GetWallet(userID)
	if err != nil {
		t.Fatalf("Failed to get wallet: %v", err)
	}
	if wallet.Balance != 0 {
		t.Errorf("Expected fresh wallet balance 0, got %f", wallet.Balance)
	}

	if err := redisService.CreditBalance(userID, 1000, false); err != nil {
		t.Fatalf("Failed to credit balance: %v", err)
	}

	if err := redisService.DebitBalance(userID, 400, true); err != nil {
		t.Fatalf("Failed to debit balance: %v", err)
	}

	if err := redisService.DebitBalance(userID, 10000, true); err == nil {
		t.Error("Debit beyond balance should fail")
	}

	if err := redisService.LockBalance(userID, 100); err != nil {
		t.Fatalf("Failed to lock balance: %v", err)
	}

	wallet, err = redisService.GetWallet(userID)
	if err != nil {
		t.Fatalf("Failed to get wallet after lock: %v", err)
	}
	if wallet.Balance != 500 {
		t.Errorf("Expected balance 500, got %f", wallet.Balance)
	}
	if wallet.LockedBalance != 100 {
		t.Errorf("Expected locked balance 100, got %f", wallet.LockedBalance)
	}
	if wallet.TotalWagered != 400 {
		t.Errorf("Expected total wagered 400, got %f", wallet.TotalWagered)
	}

	if err := redisService.ReleaseBalance(userID, 100, true); err != nil {
		t.Fatalf("Failed to release balance: %v", err)
	}

	wallet, _ = redisService.GetWallet(userID)
	if wallet.Balance != 600 {
		t.Errorf("Expected balance 600 after refund, got %f", wallet.Balance)
	}
	if wallet.LockedBalance != 0 {
		t.Errorf("Expected locked balance 0, got %f", wallet.LockedBalance)
	}
}

func TestResultUniqueness(t *testing.T) {
	redisService := setupTestRedis(t)
	defer redisService.Close()

	result := &models.Result{
		ID:         models.GenerateResultID(),
		MarketKind: models.MarketKindMain,
		GameID:     "game_test_unique",
		GameName:   "Test Market",
		Date:       "05-01-2024",
		Session:    models.SessionOpen,
		Digit:      "7",
		DeclaredAt: time.Now().Unix(),
	}
	defer redisService.DeleteResult(result.GameID, result.Date, result.Session)

	if err := redisService.SaveResult(result); err != nil {
		t.Fatalf("Failed to save result: %v", err)
	}

	dup := *result
	dup.ID = models.GenerateResultID()
	dup.Digit = "9"
	err := redisService.SaveResult(&dup)
	if !errors.Is(err, engine.ErrDuplicateResult) {
		t.Errorf("Expected ErrDuplicateResult, got %v", err)
	}

	stored, err := redisService.GetResult(result.GameID, result.Date, result.Session)
	if err != nil {
		t.Fatalf("Failed to get result: %v", err)
	}
	if stored.Digit != "7" {
		t.Errorf("Duplicate declaration must not overwrite, got digit %s", stored.Digit)
	}

	_, err = redisService.GetResult("game_missing", "05-01-2024", models.SessionOpen)
	if !errors.Is(err, engine.ErrMissingResult) {
		t.Errorf("Expected ErrMissingResult, got %v", err)
	}
}

func TestSlipIndexing(t *testing.T) {
	redisService := setupTestRedis(t)
	defer redisService.Close()

	now := time.Now().Unix()
	date := models.FormatBidDate(now)

	slip := &models.WagerSlip{
		ID:           "slip_test_index",
		UserID:       "user_test_slips",
		UserName:     "Test",
		MobileNumber: "9999999999",
		MarketKind:   models.MarketKindStarline,
		TotalStake:   30,
		CreatedAt:    now,
		Lines: []models.BidLine{
			{Kind: models.BidKindSingleDigit, Digit: "4", Stake: 30, GameID: "game_test_sl", GameName: "Starline 10AM"},
		},
	}
	defer redisService.DeleteSlip(slip)

	if err := redisService.SaveSlip(slip); err != nil {
		t.Fatalf("Failed to save slip: %v", err)
	}

	userSlips, err := redisService.GetUserSlips(slip.UserID, 10)
	if err != nil {
		t.Fatalf("Failed to get user slips: %v", err)
	}
	if len(userSlips) != 1 || userSlips[0].ID != slip.ID {
		t.Errorf("Expected the saved slip in user history, got %+v", userSlips)
	}

	gameSlips, err := redisService.GetGameSlipsForDate("game_test_sl", date)
	if err != nil {
		t.Fatalf("Failed to get game slips: %v", err)
	}
	if len(gameSlips) != 1 || gameSlips[0].ID != slip.ID {
		t.Errorf("Expected the saved slip in game/date index, got %+v", gameSlips)
	}
}

func TestWithdrawResolveClaim(t *testing.T) {
	redisService := setupTestRedis(t)
	defer redisService.Close()

	id := "wd_test_claim"
	defer redisService.ReleaseWithdrawResolveClaim(id)

	claimed, err := redisService.ClaimWithdrawResolve(id)
	if err != nil {
		t.Fatalf("Failed to claim: %v", err)
	}
	if !claimed {
		t.Error("First claim should succeed")
	}

	claimed, _ = redisService.ClaimWithdrawResolve(id)
	if claimed {
		t.Error("Second claim must fail while the first is held")
	}

	if err := redisService.ReleaseWithdrawResolveClaim(id); err != nil {
		t.Fatalf("Failed to release claim: %v", err)
	}
	claimed, _ = redisService.ClaimWithdrawResolve(id)
	if !claimed {
		t.Error("Claim should be available again after release")
	}
}

func TestRateLimit(t *testing.T) {
	redisService := setupTestRedis(t)
	defer redisService.Close()

	userID := "user_test_ratelimit"
	defer redisService.ClearRateLimit(userID, "bid")

	allowed, err := redisService.CheckRateLimit(userID, "bid", 2, time.Minute)
	if err != nil {
		t.Fatalf("Failed to check rate limit: %v", err)
	}
	if !allowed {
		t.Error("First request should be allowed")
	}

	redisService.CheckRateLimit(userID, "bid", 2, time.Minute)
	allowed, _ = redisService.CheckRateLimit(userID, "bid", 2, time.Minute)
	if allowed {
		t.Error("Third request should be rejected")
	}
}
