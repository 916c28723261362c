package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matka-backend/internal/models"
)

func TestValidateDate(t *testing.T) {
	require.NoError(t, models.ValidateDate("05-01-2024"))
	require.NoError(t, models.ValidateDate("31-12-2023"))

	for _, bad := range []string{"2024-01-05", "5-1-2024", "32-01-2024", "05/01/2024", ""} {
		assert.Error(t, models.ValidateDate(bad), bad)
	}
}

func TestFormatBidDate(t *testing.T) {
	ts := time.Date(2024, 1, 5, 23, 59, 0, 0, time.Local)
	assert.Equal(t, "05-01-2024", models.FormatBidDate(ts.Unix()))
}

func TestBidLineValue(t *testing.T) {
	digit := models.BidLine{Kind: models.BidKindSingleDigit, Digit: "7"}
	assert.Equal(t, "7", digit.Value())

	jodi := models.BidLine{Kind: models.BidKindJodi, Digit: "44"}
	assert.Equal(t, "44", jodi.Value())

	panna := models.BidLine{Kind: models.BidKindDoublePanna, Panna: "118"}
	assert.Equal(t, "118", panna.Value())
}

func TestGeneratedIDsHavePrefixes(t *testing.T) {
	assert.Contains(t, models.GenerateSlipID(), "slip_")
	assert.Contains(t, models.GenerateTransactionID(), "tx_")
	assert.Contains(t, models.GenerateResultID(), "result_")
	assert.Contains(t, models.GenerateWithdrawID(), "wd_")
	assert.Contains(t, models.GenerateUserID(), "user_")

	assert.NotEqual(t, models.GenerateSlipID(), models.GenerateSlipID())
}

func TestMarketSupportsSessions(t *testing.T) {
	main := &models.Market{Kind: models.MarketKindMain}
	assert.True(t, main.SupportsSessions())

	starline := &models.Market{Kind: models.MarketKindStarline}
	assert.False(t, starline.SupportsSessions())

	gd := &models.Market{Kind: models.MarketKindGalidisawar}
	assert.False(t, gd.SupportsSessions())
}
