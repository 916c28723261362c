package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"matka-backend/internal/models"
	"matka-backend/internal/services"
)

type AuthHandler struct {
	redisService *services.RedisService
	jwtService   *services.JWTService
	otpService   *services.OTPService
}

func NewAuthHandler(redisService *services.RedisService, jwtService *services.JWTService, otpService *services.OTPService) *AuthHandler {
	return &AuthHandler{
		redisService: redisService,
		jwtService:   jwtService,
		otpService:   otpService,
	}
}

type registerRequest struct {
	Name         string `json:"name" binding:"required"`
	MobileNumber string `json:"mobile_number" binding:"required,len=10,numeric"`
	PIN          string `json:"pin" binding:"required,min=4"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	if _, err := h.redisService.GetUserByMobile(req.MobileNumber); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Mobile number already registered"})
		return
	} else if err != redis.Nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check mobile number"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.PIN), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register"})
		return
	}

	otp, expiresAt, err := h.otpService.GenerateOTP()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate OTP"})
		return
	}

	now := time.Now().Unix()
	user := &models.User{
		ID:           models.GenerateUserID(),
		Name:         req.Name,
		MobileNumber: req.MobileNumber,
		PINHash:      string(hash),
		Role:         models.RoleUser,
		OTP:          otp,
		OTPExpiresAt: expiresAt,
		Active:       true,
		CreatedAt:    now,
	}

	if err := h.redisService.SaveUser(user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save user"})
		return
	}

	h.otpService.Send(user.MobileNumber, otp)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "OTP sent for verification",
		"user_id": user.ID,
	})
}

type loginRequest struct {
	MobileNumber string `json:"mobile_number" binding:"required"`
	PIN          string `json:"pin" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	user, err := h.redisService.GetUserByMobile(req.MobileNumber)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid mobile number or PIN"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PINHash), []byte(req.PIN)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid mobile number or PIN"})
		return
	}

	if !user.Active {
		c.JSON(http.StatusForbidden, gin.H{"error": "Account is blocked"})
		return
	}

	if !user.Verified {
		c.JSON(http.StatusForbidden, gin.H{"error": "Account not verified, complete OTP verification"})
		return
	}

	token, err := h.jwtService.GenerateToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"user":    user,
	})
}

type otpRequest struct {
	MobileNumber string `json:"mobile_number" binding:"required"`
	OTP          string `json:"otp" binding:"required"`
}

func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req otpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	user, err := h.redisService.GetUserByMobile(req.MobileNumber)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		return
	}

	if !h.validOTP(user, req.OTP) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired OTP"})
		return
	}

	user.Verified = true
	user.OTP = ""
	user.OTPExpiresAt = 0
	if err := h.redisService.SaveUser(user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}

	token, err := h.jwtService.GenerateToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"user":    user,
	})
}

type mobileRequest struct {
	MobileNumber string `json:"mobile_number" binding:"required"`
}

func (h *AuthHandler) ResendOTP(c *gin.Context) {
	var req mobileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	h.sendFreshOTP(c, req.MobileNumber, "OTP resent")
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req mobileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	h.sendFreshOTP(c, req.MobileNumber, "OTP sent for password reset")
}

type resetPasswordRequest struct {
	MobileNumber string `json:"mobile_number" binding:"required"`
	OTP          string `json:"otp" binding:"required"`
	NewPIN       string `json:"new_pin" binding:"required,min=4"`
}

// ResetPassword always validates the stored per-user OTP. There is no
// fixed fallback code.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	user, err := h.redisService.GetUserByMobile(req.MobileNumber)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		return
	}

	if !h.validOTP(user, req.OTP) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired OTP"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPIN), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset PIN"})
		return
	}

	user.PINHash = string(hash)
	user.OTP = ""
	user.OTPExpiresAt = 0
	if err := h.redisService.SaveUser(user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "PIN updated, you can log in now",
	})
}

func (h *AuthHandler) sendFreshOTP(c *gin.Context, mobile, message string) {
	user, err := h.redisService.GetUserByMobile(mobile)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		return
	}

	allowed, err := h.redisService.CheckRateLimit(mobile, "otp", services.DefaultRateLimitOTP, time.Hour)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Rate limit check failed"})
		return
	}
	if !allowed {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many OTP requests. Please wait."})
		return
	}

	otp, expiresAt, err := h.otpService.GenerateOTP()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate OTP"})
		return
	}

	user.OTP = otp
	user.OTPExpiresAt = expiresAt
	if err := h.redisService.SaveUser(user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}

	h.otpService.Send(user.MobileNumber, otp)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": message,
	})
}

func (h *AuthHandler) validOTP(user *models.User, otp string) bool {
	if user.OTP == "" || user.OTP != otp {
		return false
	}
	return time.Now().Unix() <= user.OTPExpiresAt
}
