package engine

import "matka-backend/internal/models"

// Project flattens wager slips into one row per bid line. The store hands
// in slips with user and market display fields already resolved; this is a
// pure stable flat-map that copies them through.
//
// Ordering guarantee: rows follow slip order, and within a slip, line
// order. A slip with no lines contributes no rows.
func Project(slips []models.WagerSlip) []models.FlattenedBidRow {
	rows := make([]models.FlattenedBidRow, 0, len(slips))

	for _, slip := range slips {
		for i, line := range slip.Lines {
			rows = append(rows, models.FlattenedBidRow{
				SlipID:       slip.ID,
				LineIndex:    i,
				UserID:       slip.UserID,
				Name:         slip.UserName,
				MobileNumber: slip.MobileNumber,
				MarketKind:   slip.MarketKind,
				GameID:       line.GameID,
				GameName:     line.GameName,
				Kind:         line.Kind,
				Digit:        line.Digit,
				Panna:        line.Panna,
				Session:      line.Session,
				Stake:        line.Stake,
				CreatedAt:    slip.CreatedAt,
			})
		}
	}

	return rows
}
