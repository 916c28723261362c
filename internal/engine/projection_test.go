package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matka-backend/internal/engine"
	"matka-backend/internal/models"
)

func sampleSlips(createdAt int64) []models.WagerSlip {
	return []models.WagerSlip{
		{
			ID:           "slip_1",
			UserID:       "user_1",
			UserName:     "Asha",
			MobileNumber: "9876543210",
			MarketKind:   models.MarketKindMain,
			CreatedAt:    createdAt,
			Lines: []models.BidLine{
				{Kind: models.BidKindSingleDigit, Digit: "7", Session: models.SessionOpen, Stake: 100, GameID: "game_main", GameName: "Kalyan"},
				{Kind: models.BidKindSinglePanna, Panna: "123", Session: models.SessionOpen, Stake: 20, GameID: "game_main", GameName: "Kalyan"},
			},
		},
		{
			ID:           "slip_2",
			UserID:       "user_2",
			UserName:     "Ravi",
			MobileNumber: "9123456780",
			MarketKind:   models.MarketKindMain,
			CreatedAt:    createdAt,
			Lines: []models.BidLine{
				{Kind: models.BidKindSingleDigit, Digit: "3", Session: models.SessionOpen, Stake: 50, GameID: "game_main", GameName: "Kalyan"},
			},
		},
	}
}

func TestProjectShape(t *testing.T) {
	slips := sampleSlips(time.Now().Unix())

	rows := engine.Project(slips)
	require.Len(t, rows, 3)

	first := rows[0]
	assert.Equal(t, "slip_1", first.SlipID)
	assert.Equal(t, 0, first.LineIndex)
	assert.Equal(t, "user_1", first.UserID)
	assert.Equal(t, "Asha", first.Name)
	assert.Equal(t, "9876543210", first.MobileNumber)
	assert.Equal(t, "game_main", first.GameID)
	assert.Equal(t, "Kalyan", first.GameName)
	assert.Equal(t, models.BidKindSingleDigit, first.Kind)
	assert.Equal(t, "7", first.Digit)
	assert.Equal(t, models.SessionOpen, first.Session)
	assert.Equal(t, 100.0, first.Stake)
	assert.Equal(t, slips[0].CreatedAt, first.CreatedAt)

	second := rows[1]
	assert.Equal(t, "slip_1", second.SlipID)
	assert.Equal(t, 1, second.LineIndex)
	assert.Equal(t, "123", second.Panna)
}

func TestProjectOrderPreservation(t *testing.T) {
	slips := sampleSlips(time.Now().Unix())

	rows := engine.Project(slips)
	require.Len(t, rows, 3)

	// All slip_1 rows precede slip_2 rows, line order intact within a slip.
	assert.Equal(t, []string{"slip_1", "slip_1", "slip_2"},
		[]string{rows[0].SlipID, rows[1].SlipID, rows[2].SlipID})
	assert.Equal(t, 0, rows[0].LineIndex)
	assert.Equal(t, 1, rows[1].LineIndex)
	assert.Equal(t, 0, rows[2].LineIndex)
}

func TestProjectEmptiness(t *testing.T) {
	assert.Empty(t, engine.Project(nil))
	assert.Empty(t, engine.Project([]models.WagerSlip{}))

	// A slip without lines contributes nothing but does not error.
	slips := []models.WagerSlip{
		{ID: "slip_empty", UserID: "user_1"},
		{
			ID:     "slip_one",
			UserID: "user_1",
			Lines: []models.BidLine{
				{Kind: models.BidKindJodi, Digit: "44", Stake: 10, GameID: "game_gd", GameName: "Gali"},
			},
		},
	}

	rows := engine.Project(slips)
	require.Len(t, rows, 1)
	assert.Equal(t, "slip_one", rows[0].SlipID)
}
