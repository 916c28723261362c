package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"matka-backend/internal/engine"
	"matka-backend/internal/models"
	"matka-backend/internal/services"
)

type BidHandler struct {
	bidService   *services.BidService
	redisService *services.RedisService
}

func NewBidHandler(bidService *services.BidService, redisService *services.RedisService) *BidHandler {
	return &BidHandler{
		bidService:   bidService,
		redisService: redisService,
	}
}

func (h *BidHandler) PlaceBid(c *gin.Context) {
	userID := c.GetString("user_id")

	var req services.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	// Rate limit: 30 bid placements per minute
	allowed, err := h.redisService.CheckRateLimit(userID, "bid", services.DefaultRateLimitBids, time.Minute)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Rate limit check failed"})
		return
	}
	if !allowed {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many bids. Please wait."})
		return
	}

	slip, err := h.bidService.PlaceBid(userID, &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Failed to place bid",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"slip":    slip,
	})
}

// GetBidHistory flattens the user's recent slips into one row per bid
// line, newest slip first.
func (h *BidHandler) GetBidHistory(c *gin.Context) {
	userID := c.GetString("user_id")

	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)
	slips, err := h.redisService.GetUserSlips(userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to get bid history",
			"details": err.Error(),
		})
		return
	}

	rows := engine.Project(slips)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"bids":    rows,
		"count":   len(rows),
	})
}

// GetMarketBids is the admin report: every bid line placed on a game for
// one date, flattened with the bidder's display fields.
func (h *BidHandler) GetMarketBids(c *gin.Context) {
	gameID := c.Param("id")
	date := c.DefaultQuery("date", time.Now().Format(models.DateLayout))
	if err := models.ValidateDate(date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	slips, err := h.redisService.GetGameSlipsForDate(gameID, date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to get market bids",
			"details": err.Error(),
		})
		return
	}

	rows := engine.Project(slips)

	totalStake := 0.0
	for _, row := range rows {
		totalStake += row.Stake
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"game_id":     gameID,
		"date":        date,
		"bids":        rows,
		"count":       len(rows),
		"total_stake": totalStake,
	})
}
