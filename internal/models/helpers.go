package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the DD-MM-YYYY format used for result dates and bid-date
// comparisons everywhere in the system.
const DateLayout = "02-01-2006"

func GenerateUserID() string {
	return fmt.Sprintf("user_%d", uuid.New().ID())
}

func GenerateSlipID() string {
	return fmt.Sprintf("slip_%s_%d",
		time.Now().Format("20060102"),
		uuid.New().ID())
}

func GenerateTransactionID() string {
	return fmt.Sprintf("tx_%s_%d",
		time.Now().Format("20060102"),
		uuid.New().ID())
}

func GenerateResultID() string {
	return fmt.Sprintf("result_%s_%d",
		time.Now().Format("20060102"),
		uuid.New().ID())
}

func GenerateWithdrawID() string {
	return fmt.Sprintf("wd_%s_%d",
		time.Now().Format("20060102"),
		uuid.New().ID())
}

// FormatBidDate truncates a slip timestamp to its DD-MM-YYYY date.
func FormatBidDate(unixSeconds int64) string {
	return time.Unix(unixSeconds, 0).Format(DateLayout)
}

// ValidateDate rejects anything that does not round-trip through DateLayout.
func ValidateDate(date string) error {
	t, err := time.Parse(DateLayout, date)
	if err != nil || t.Format(DateLayout) != date {
		return fmt.Errorf("invalid date %q, expected DD-MM-YYYY", date)
	}
	return nil
}

// Value returns the wagered value of a line regardless of kind.
func (l *BidLine) Value() string {
	switch l.Kind {
	case BidKindSinglePanna, BidKindDoublePanna, BidKindTriplePanna:
		return l.Panna
	default:
		return l.Digit
	}
}

func FormatCurrency(amount float64) string {
	return fmt.Sprintf("₹%.2f", amount)
}
