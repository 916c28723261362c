package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"matka-backend/internal/models"
	"matka-backend/internal/services"
)

type WalletHandler struct {
	redisService *services.RedisService
}

func NewWalletHandler(redisService *services.RedisService) *WalletHandler {
	return &WalletHandler{
		redisService: redisService,
	}
}

func (h *WalletHandler) GetBalance(c *gin.Context) {
	userID := c.GetString("user_id")

	wallet, err := h.redisService.GetWallet(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to get wallet",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"balance": models.BalanceResponse{
			Balance:       wallet.Balance,
			LockedBalance: wallet.LockedBalance,
			TotalWagered:  wallet.TotalWagered,
			TotalWon:      wallet.TotalWon,
			Available:     wallet.Balance - wallet.LockedBalance,
		},
	})
}

type addFundRequest struct {
	Amount    float64 `json:"amount" binding:"required,gt=0"`
	Reference string  `json:"reference"`
}

// AddFund credits a confirmed deposit. Payment gateway verification happens
// upstream; this endpoint only records the credit.
func (h *WalletHandler) AddFund(c *gin.Context) {
	userID := c.GetString("user_id")

	var req addFundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	if _, err := h.redisService.GetWallet(userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get wallet"})
		return
	}

	if err := h.redisService.CreditBalance(userID, req.Amount, false); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to add funds",
			"details": err.Error(),
		})
		return
	}

	wallet, err := h.redisService.GetWallet(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get wallet"})
		return
	}

	h.redisService.SaveTransaction(&models.Transaction{
		ID:            models.GenerateTransactionID(),
		UserID:        userID,
		Type:          models.TransactionTypeDeposit,
		Amount:        req.Amount,
		BalanceBefore: wallet.Balance - req.Amount,
		BalanceAfter:  wallet.Balance,
		Description:   fmt.Sprintf("Deposit %s (%s)", models.FormatCurrency(req.Amount), req.Reference),
		CreatedAt:     time.Now().Unix(),
	})

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"new_balance": wallet.Balance,
	})
}

type withdrawRequestBody struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

func (h *WalletHandler) RequestWithdraw(c *gin.Context) {
	userID := c.GetString("user_id")

	var req withdrawRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	user, err := h.redisService.GetUser(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	// Funds move to locked until an admin resolves the request.
	if err := h.redisService.LockBalance(userID, req.Amount); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Failed to reserve funds",
			"details": err.Error(),
		})
		return
	}

	withdraw := &models.WithdrawRequest{
		ID:           models.GenerateWithdrawID(),
		UserID:       userID,
		UserName:     user.Name,
		MobileNumber: user.MobileNumber,
		Amount:       req.Amount,
		Status:       models.WithdrawStatusPending,
		CreatedAt:    time.Now().Unix(),
	}

	if err := h.redisService.SaveWithdrawRequest(withdraw); err != nil {
		h.redisService.ReleaseBalance(userID, req.Amount, true)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to save withdraw request",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"withdraw": withdraw,
	})
}

func (h *WalletHandler) GetWithdrawHistory(c *gin.Context) {
	userID := c.GetString("user_id")

	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)
	reqs, err := h.redisService.GetUserWithdrawRequests(userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to get withdrawals",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"withdrawals": reqs,
		"count":       len(reqs),
	})
}

func (h *WalletHandler) GetTransactions(c *gin.Context) {
	userID := c.GetString("user_id")

	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)
	txns, err := h.redisService.GetUserTransactions(userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to get transactions",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"transactions": txns,
		"count":        len(txns),
	})
}

// --- Admin ---

func (h *WalletHandler) ListPendingWithdrawals(c *gin.Context) {
	reqs, err := h.redisService.GetPendingWithdrawRequests()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to get pending withdrawals",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"withdrawals": reqs,
		"count":       len(reqs),
	})
}

type resolveWithdrawRequest struct {
	Approve bool   `json:"approve"`
	Note    string `json:"note"`
}

func (h *WalletHandler) ResolveWithdraw(c *gin.Context) {
	var req resolveWithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	withdraw, err := h.redisService.GetWithdrawRequest(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Withdraw request not found"})
		return
	}

	if withdraw.Status != models.WithdrawStatusPending {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "Withdraw request already resolved",
			"status": withdraw.Status,
		})
		return
	}

	// One resolver at a time; the claim closes the window between the
	// pending-status read and the funds release.
	claimed, err := h.redisService.ClaimWithdrawResolve(withdraw.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to claim withdraw request",
			"details": err.Error(),
		})
		return
	}
	if !claimed {
		c.JSON(http.StatusConflict, gin.H{"error": "Withdraw request is already being resolved"})
		return
	}

	// Approved: the locked amount leaves the wallet. Rejected: it returns
	// to the spendable balance.
	if err := h.redisService.ReleaseBalance(withdraw.UserID, withdraw.Amount, !req.Approve); err != nil {
		h.redisService.ReleaseWithdrawResolveClaim(withdraw.ID)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to release funds",
			"details": err.Error(),
		})
		return
	}

	now := time.Now().Unix()
	withdraw.Status = models.WithdrawStatusRejected
	txType := models.TransactionTypeRefund
	amount := withdraw.Amount
	description := fmt.Sprintf("Withdrawal of %s rejected", models.FormatCurrency(withdraw.Amount))
	if req.Approve {
		withdraw.Status = models.WithdrawStatusApproved
		txType = models.TransactionTypeWithdraw
		amount = -withdraw.Amount
		description = fmt.Sprintf("Withdrawal of %s approved", models.FormatCurrency(withdraw.Amount))
	}
	withdraw.AdminNote = req.Note
	withdraw.ResolvedAt = now

	if err := h.redisService.SaveWithdrawRequest(withdraw); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to update withdraw request",
			"details": err.Error(),
		})
		return
	}

	wallet, err := h.redisService.GetWallet(withdraw.UserID)
	if err == nil {
		h.redisService.SaveTransaction(&models.Transaction{
			ID:            models.GenerateTransactionID(),
			UserID:        withdraw.UserID,
			Type:          txType,
			Amount:        amount,
			BalanceBefore: wallet.Balance - amount,
			BalanceAfter:  wallet.Balance,
			Description:   description,
			CreatedAt:     now,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"withdraw": withdraw,
	})
}
