package engine

import (
	"fmt"

	"matka-backend/internal/models"
)

// SkippedRow is a matched bid that could not be paid out because its kind
// has no rate configured. These are reported to the caller, not zeroed.
type SkippedRow struct {
	Row models.FlattenedBidRow
	Err error
}

// SettlementRun is the outcome of matching flattened bids against one
// declared result.
type SettlementRun struct {
	Winners   []models.WinnerRecord
	Skipped   []SkippedRow
	TotalPaid float64
}

// Settle matches flattened bid rows against a declared result and computes
// payouts from the market's rate table.
//
// A row participates when it belongs to the result's game, its bid date
// (slip timestamp truncated to DD-MM-YYYY) equals the result date, and its
// session matches whenever the result carries one. Digit kinds compare
// their digit against the result digit; panna kinds compare their panna
// against the result panna. Unmatched rows are simply not winners.
//
// Pure and deterministic: the same result, rows and rates always produce
// the identical set of winner records, so re-running settlement for a key
// is safe. Persistence-side idempotence is the caller's job.
func Settle(result models.Result, rows []models.FlattenedBidRow, rates models.RateTable) (*SettlementRun, error) {
	if result.GameID == "" || result.Date == "" {
		return nil, ErrMissingResult
	}

	run := &SettlementRun{}

	for _, row := range rows {
		if row.GameID != result.GameID {
			continue
		}
		if models.FormatBidDate(row.CreatedAt) != result.Date {
			continue
		}
		if result.Session != models.SessionNone && row.Session != result.Session {
			continue
		}
		if !matches(row, result) {
			continue
		}

		rate, ok := rates.Rates[row.Kind]
		if !ok {
			run.Skipped = append(run.Skipped, SkippedRow{
				Row: row,
				Err: fmt.Errorf("%w: %s on market %s", ErrMissingRate, row.Kind, row.MarketKind),
			})
			continue
		}

		payout := row.Stake * rate
		run.Winners = append(run.Winners, models.WinnerRecord{
			SlipID:       row.SlipID,
			LineIndex:    row.LineIndex,
			UserID:       row.UserID,
			Name:         row.Name,
			MobileNumber: row.MobileNumber,
			MarketKind:   row.MarketKind,
			GameID:       row.GameID,
			GameName:     row.GameName,
			Kind:         row.Kind,
			Value:        rowValue(row),
			Session:      row.Session,
			Stake:        row.Stake,
			Rate:         rate,
			Payout:       payout,
		})
		run.TotalPaid += payout
	}

	return run, nil
}

func matches(row models.FlattenedBidRow, result models.Result) bool {
	switch row.Kind {
	case models.BidKindSingleDigit, models.BidKindJodi:
		return result.Digit != "" && row.Digit == result.Digit
	case models.BidKindSinglePanna, models.BidKindDoublePanna, models.BidKindTriplePanna:
		return result.Panna != "" && row.Panna == result.Panna
	default:
		return false
	}
}

func rowValue(row models.FlattenedBidRow) string {
	switch row.Kind {
	case models.BidKindSinglePanna, models.BidKindDoublePanna, models.BidKindTriplePanna:
		return row.Panna
	default:
		return row.Digit
	}
}
