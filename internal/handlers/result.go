package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"matka-backend/internal/engine"
	"matka-backend/internal/models"
	"matka-backend/internal/services"
)

type ResultHandler struct {
	settlement   *services.SettlementService
	redisService *services.RedisService
}

func NewResultHandler(settlement *services.SettlementService, redisService *services.RedisService) *ResultHandler {
	return &ResultHandler{
		settlement:   settlement,
		redisService: redisService,
	}
}

// DeclareResult stores the outcome and settles it in one call. A repeat
// declaration for the same (game, date, session) is rejected with 409.
func (h *ResultHandler) DeclareResult(c *gin.Context) {
	var req services.DeclareResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	result, ledger, err := h.settlement.DeclareResult(&req)
	if err != nil {
		status := http.StatusBadRequest
		switch {
		case errors.Is(err, engine.ErrDuplicateResult):
			status = http.StatusConflict
		case errors.Is(err, engine.ErrMissingRate):
			status = http.StatusInternalServerError
		}
		c.JSON(status, gin.H{
			"error":   "Failed to declare result",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"result":       result,
		"winners":      ledger.Winners,
		"winner_count": len(ledger.Winners),
		"total_paid":   ledger.TotalPaid,
	})
}

type resettleRequest struct {
	GameID  string         `json:"game_id" binding:"required"`
	Date    string         `json:"date" binding:"required"`
	Session models.Session `json:"session"`
}

// ResettleResult re-runs settlement for a result that is already on
// record. Recovery endpoint for declarations whose settlement failed
// partway; settled winners are never paid twice, so repeating it is safe.
func (h *ResultHandler) ResettleResult(c *gin.Context) {
	var req resettleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	result, ledger, err := h.settlement.Resettle(req.GameID, req.Date, req.Session)
	if err != nil {
		status := http.StatusBadRequest
		switch {
		case errors.Is(err, engine.ErrMissingResult):
			status = http.StatusNotFound
		case errors.Is(err, engine.ErrMissingRate):
			status = http.StatusInternalServerError
		}
		c.JSON(status, gin.H{
			"error":   "Failed to settle result",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"result":       result,
		"winners":      ledger.Winners,
		"winner_count": len(ledger.Winners),
		"total_paid":   ledger.TotalPaid,
	})
}

func (h *ResultHandler) ListResults(c *gin.Context) {
	date := c.DefaultQuery("date", time.Now().Format(models.DateLayout))
	if err := models.ValidateDate(date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	results, err := h.redisService.ListResultsForDate(date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to list results",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"date":    date,
		"results": results,
		"count":   len(results),
	})
}

// GetWinners returns the persisted settlement ledger for one result key.
func (h *ResultHandler) GetWinners(c *gin.Context) {
	gameID := c.Param("id")
	date := c.Query("date")
	session := models.Session(c.Query("session"))

	if err := models.ValidateDate(date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ledger, err := h.redisService.GetWinnersLedger(gameID, date, session)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "No settlement found",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"winners": ledger.Winners,
		"count":   len(ledger.Winners),
		"total":   ledger.TotalPaid,
	})
}
