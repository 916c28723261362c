package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"matka-backend/internal/catalog"
	"matka-backend/internal/models"
	"matka-backend/internal/services"
)

type MarketHandler struct {
	redisService *services.RedisService
	catalog      *catalog.Catalog
}

func NewMarketHandler(redisService *services.RedisService, cat *catalog.Catalog) *MarketHandler {
	return &MarketHandler{
		redisService: redisService,
		catalog:      cat,
	}
}

func marketKindParam(c *gin.Context) (models.MarketKind, bool) {
	kind := models.MarketKind(c.Param("kind"))
	switch kind {
	case models.MarketKindMain, models.MarketKindStarline, models.MarketKindGalidisawar:
		return kind, true
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown market kind"})
	return "", false
}

func (h *MarketHandler) ListMarkets(c *gin.Context) {
	kind, ok := marketKindParam(c)
	if !ok {
		return
	}

	markets, err := h.redisService.ListMarkets(kind)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to list markets",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"markets": markets,
		"count":   len(markets),
	})
}

func (h *MarketHandler) GetRates(c *gin.Context) {
	kind, ok := marketKindParam(c)
	if !ok {
		return
	}

	table, err := h.redisService.GetRateTable(kind)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Rate table not found",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"rates":   table,
	})
}

// GetCatalog exposes the reference sets the bid forms are built from.
func (h *MarketHandler) GetCatalog(c *gin.Context) {
	kind := models.BidKind(c.Param("bidkind"))
	members := h.catalog.Members(kind)
	if members == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown bid kind"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"kind":    kind,
		"values":  members,
		"count":   len(members),
	})
}

// --- Admin ---

type marketRequest struct {
	Kind     models.MarketKind    `json:"kind" binding:"required"`
	Name     string               `json:"name" binding:"required"`
	Active   *bool                `json:"active"`
	Schedule []models.DaySchedule `json:"schedule"`
}

func (h *MarketHandler) CreateMarket(c *gin.Context) {
	var req marketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	market := &models.Market{
		ID:        "game_" + uuid.New().String(),
		Kind:      req.Kind,
		Name:      req.Name,
		Active:    active,
		Schedule:  req.Schedule,
		CreatedAt: time.Now().Unix(),
	}

	if err := h.redisService.SaveMarket(market); err != nil {
		c.JSON(http.StatusConflict, gin.H{
			"error":   "Failed to create market",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"market":  market,
	})
}

func (h *MarketHandler) UpdateMarket(c *gin.Context) {
	market, err := h.redisService.GetMarket(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Market not found"})
		return
	}

	var req struct {
		Active   *bool                `json:"active"`
		Schedule []models.DaySchedule `json:"schedule"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	if req.Active != nil {
		market.Active = *req.Active
	}
	if req.Schedule != nil {
		market.Schedule = req.Schedule
	}

	if err := h.redisService.SaveMarket(market); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to update market",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"market":  market,
	})
}

type rateUpdateRequest struct {
	Rates map[models.BidKind]float64 `json:"rates" binding:"required"`
}

func (h *MarketHandler) UpdateRates(c *gin.Context) {
	kind, ok := marketKindParam(c)
	if !ok {
		return
	}

	var req rateUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	for bidKind, rate := range req.Rates {
		if rate <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Rates must be positive"})
			return
		}
		switch bidKind {
		case models.BidKindSingleDigit, models.BidKindJodi, models.BidKindSinglePanna,
			models.BidKindDoublePanna, models.BidKindTriplePanna:
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown bid kind in rates"})
			return
		}
	}

	table := &models.RateTable{Kind: kind, Rates: req.Rates}
	if err := h.redisService.SaveRateTable(table); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to save rates",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"rates":   table,
	})
}
