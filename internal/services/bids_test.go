package services_test

import (
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"matka-backend/internal/catalog"
	"matka-backend/internal/models"
	"matka-backend/internal/services"
)

func TestPlaceBidOnFreshWallet(t *testing.T) {
	redisService := setupTestRedis(t)
	defer redisService.Close()

	bidService := services.NewBidService(redisService, catalog.New(), zap.NewNop())

	user := &models.User{
		ID:           "user_test_freshbid",
		Name:         "First Bid",
		MobileNumber: "9000000003",
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

	today := strings.ToLower(time.Now().Weekday().String())
	market := &models.Market{
		ID:     "game_test_freshbid",
		Kind:   models.MarketKindGalidisawar,
		Name:   "Fresh Wallet Gali",
		Active: true,
		Schedule: []models.DaySchedule{
			{Day: today, OpenTime: "00:01", CloseTime: "23:59"},
		},
		CreatedAt: time.Now().Unix(),
	}
	if err := redisService.SaveMarket(market); err != nil {
		t.Fatalf("Failed to save market: %v", err)
	}
	defer redisService.DeleteMarket(market)

	req := &services.PlaceBidRequest{
		MarketKind: models.MarketKindGalidisawar,
		Lines: []services.BidLineRequest{
			{GameID: market.ID, Value: "44", Stake: 50},
		},
	}

	// No wallet document exists yet; the failure must read as a balance
	// problem, not a missing key.
	_, err := bidService.PlaceBid(user.ID, req)
	if err == nil {
		t.Fatal("Bid on an empty wallet should fail")
	}
	if !strings.Contains(err.Error(), "insufficient balance") {
		t.Errorf("Expected insufficient balance error, got %v", err)
	}

	if err := redisService.CreditBalance(user.ID, 100, false); err != nil {
		t.Fatalf("Failed to credit balance: %v", err)
	}

	slip, err := bidService.PlaceBid(user.ID, req)
	if err != nil {
		t.Fatalf("Failed to place bid after funding: %v", err)
	}
	defer redisService.DeleteSlip(slip)

	wallet, err := redisService.GetWallet(user.ID)
	if err != nil {
		t.Fatalf("Failed to get wallet: %v", err)
	}
	if wallet.Balance != 50 {
		t.Errorf("Expected balance 50 after bid, got %f", wallet.Balance)
	}
	if wallet.TotalWagered != 50 {
		t.Errorf("Expected total wagered 50, got %f", wallet.TotalWagered)
	}
}
