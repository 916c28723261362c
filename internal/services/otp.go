package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"net/http"
	"net/url"
	"time"

	"matka-backend/internal/config"

	"go.uber.org/zap"
)

const otpTTL = 5 * time.Minute

// OTPService generates one-time codes and delivers them through the
// configured SMS gateway. Delivery failures are logged, not fatal; the
// code is only usable from the stored user document either way.
type OTPService struct {
	cfg    *config.Config
	client *http.Client
	log    *zap.Logger
}

func NewOTPService(cfg *config.Config, log *zap.Logger) *OTPService {
	return &OTPService{
		cfg: cfg,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

// GenerateOTP returns a 4-digit code and its expiry time.
func (s *OTPService) GenerateOTP() (string, int64, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", 0, fmt.Errorf("failed to generate otp: %v", err)
	}
	return fmt.Sprintf("%04d", n.Int64()), time.Now().Add(otpTTL).Unix(), nil
}

// Send pushes the OTP to the gateway. With no gateway configured (local
// development) the code is logged instead.
func (s *OTPService) Send(mobile, otp string) {
	if s.cfg.SMSGatewayURL == "" {
		s.log.Info("sms gateway not configured, otp not sent",
			zap.String("mobile", mobile),
			zap.String("otp", otp))
		return
	}

	params := url.Values{}
	params.Set("apikey", s.cfg.SMSAPIKey)
	params.Set("sender", s.cfg.SMSSenderID)
	params.Set("mobile", mobile)
	params.Set("message", fmt.Sprintf("Your verification code is %s. Valid for 5 minutes.", otp))

	resp, err := s.client.PostForm(s.cfg.SMSGatewayURL, params)
	if err != nil {
		s.log.Error("failed to send otp sms", zap.String("mobile", mobile), zap.Error(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		s.log.Error("sms gateway rejected otp send",
			zap.String("mobile", mobile),
			zap.Int("status", resp.StatusCode))
		return
	}

	s.log.Info("otp sent", zap.String("mobile", mobile))
}
