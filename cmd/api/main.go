package main

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"matka-backend/internal/catalog"
	"matka-backend/internal/config"
	"matka-backend/internal/handlers"
	"matka-backend/internal/logger"
	"matka-backend/internal/metrics"
	"matka-backend/internal/middleware"
	"matka-backend/internal/models"
	"matka-backend/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zlog.Sync()

	redisService, err := services.NewRedisService(cfg)
	if err != nil {
		zlog.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer redisService.Close()

	if err := redisService.SeedRateTables(); err != nil {
		zlog.Fatal("failed to seed rate tables", zap.Error(err))
	}
	if err := seedAdmin(cfg, redisService); err != nil {
		zlog.Fatal("failed to seed admin account", zap.Error(err))
	}

	cat := catalog.New()
	jwtService := services.NewJWTService(cfg)
	otpService := services.NewOTPService(cfg, zlog)

	wsHandler := handlers.NewWebSocketHandler(redisService, zlog)
	bidService := services.NewBidService(redisService, cat, zlog)
	settlementService := services.NewSettlementService(redisService, cat, wsHandler, zlog)

	authHandler := handlers.NewAuthHandler(redisService, jwtService, otpService)
	userHandler := handlers.NewUserHandler(redisService)
	walletHandler := handlers.NewWalletHandler(redisService)
	marketHandler := handlers.NewMarketHandler(redisService, cat)
	bidHandler := handlers.NewBidHandler(bidService, redisService)
	resultHandler := handlers.NewResultHandler(settlementService, redisService)

	metrics.StartServer(cfg.MetricsPort, redisService.Ping)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	router.Use(middleware.CORS())

	auth := router.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/verify-otp", authHandler.VerifyOTP)
		auth.POST("/resend-otp", authHandler.ResendOTP)
		auth.POST("/forgot-password", authHandler.ForgotPassword)
		auth.POST("/reset-password", authHandler.ResetPassword)
	}

	api := router.Group("/api")
	api.Use(middleware.AuthMiddleware(jwtService))
	{
		api.GET("/profile", userHandler.GetProfile)
		api.GET("/ws", wsHandler.HandleWebSocket)

		wallet := api.Group("/wallet")
		{
			wallet.GET("/balance", walletHandler.GetBalance)
			wallet.POST("/add-fund", walletHandler.AddFund)
			wallet.POST("/withdraw", walletHandler.RequestWithdraw)
			wallet.GET("/withdrawals", walletHandler.GetWithdrawHistory)
			wallet.GET("/transactions", walletHandler.GetTransactions)
		}

		api.GET("/markets/:kind", marketHandler.ListMarkets)
		api.GET("/markets/:kind/rates", marketHandler.GetRates)
		api.GET("/catalog/:bidkind", marketHandler.GetCatalog)

		api.POST("/bids", bidHandler.PlaceBid)
		api.GET("/bids/history", bidHandler.GetBidHistory)

		api.GET("/results", resultHandler.ListResults)
	}

	admin := router.Group("/admin")
	admin.Use(middleware.AuthMiddleware(jwtService), middleware.AdminOnly())
	{
		admin.POST("/markets", marketHandler.CreateMarket)
		admin.PUT("/markets/:id", marketHandler.UpdateMarket)
		admin.GET("/markets/:id/bids", bidHandler.GetMarketBids)
		admin.GET("/markets/:id/winners", resultHandler.GetWinners)
		admin.PUT("/rates/:kind", marketHandler.UpdateRates)

		admin.GET("/withdrawals/pending", walletHandler.ListPendingWithdrawals)
		admin.POST("/withdrawals/:id/resolve", walletHandler.ResolveWithdraw)

		admin.POST("/results", resultHandler.DeclareResult)
		admin.POST("/results/settle", resultHandler.ResettleResult)
	}

	zlog.Info("server starting", zap.String("port", cfg.Port))
	if err := router.Run(":" + cfg.Port); err != nil {
		zlog.Fatal("server exited", zap.Error(err))
	}
}

// seedAdmin creates the admin account on first boot when credentials are
// configured. Existing accounts are never touched.
func seedAdmin(cfg *config.Config, redisService *services.RedisService) error {
	if cfg.AdminMobile == "" || cfg.AdminPIN == "" {
		return nil
	}

	if _, err := redisService.GetUserByMobile(cfg.AdminMobile); err == nil {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPIN), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return redisService.SaveUser(&models.User{
		ID:           models.GenerateUserID(),
		Name:         "Administrator",
		MobileNumber: cfg.AdminMobile,
		PINHash:      string(hash),
		Role:         models.RoleAdmin,
		Verified:     true,
		Active:       true,
		CreatedAt:    time.Now().Unix(),
	})
}
