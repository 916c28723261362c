package models

// Result is the declared outcome for one market on one date (and session,
// for markets that have open/close draws). Date format is DD-MM-YYYY.
type Result struct {
	ID         string     `json:"id" redis:"id"`
	MarketKind MarketKind `json:"market_kind" redis:"market_kind"`
	GameID     string     `json:"game_id" redis:"game_id"`
	GameName   string     `json:"game_name" redis:"game_name"`
	Date       string     `json:"date" redis:"date"`
	Session    Session    `json:"session,omitempty" redis:"session"`
	Digit      string     `json:"digit,omitempty" redis:"digit"`
	Panna      string     `json:"panna,omitempty" redis:"panna"`
	DeclaredAt int64      `json:"declared_at" redis:"declared_at"`
}

// WinnerRecord is one matched bid line with its computed payout. Persisted
// once per settlement run under the result's (market, date, session) key.
type WinnerRecord struct {
	SlipID        string     `json:"slip_id"`
	LineIndex     int        `json:"line_index"`
	UserID        string     `json:"user_id"`
	Name          string     `json:"name"`
	MobileNumber  string     `json:"mobile_number"`
	MarketKind    MarketKind `json:"market_kind"`
	GameID        string     `json:"game_id"`
	GameName      string     `json:"game_name"`
	Kind          BidKind    `json:"kind"`
	Value         string     `json:"value"`
	Session       Session    `json:"session,omitempty"`
	Stake         float64    `json:"stake"`
	Rate          float64    `json:"rate"`
	Payout        float64    `json:"payout"`
	TransactionID string     `json:"transaction_id,omitempty"`
}

// WinnersLedger is the persisted settlement run for one result key.
type WinnersLedger struct {
	GameID    string         `json:"game_id" redis:"game_id"`
	Date      string         `json:"date" redis:"date"`
	Session   Session        `json:"session,omitempty" redis:"session"`
	Winners   []WinnerRecord `json:"winners" redis:"winners"`
	TotalPaid float64        `json:"total_paid" redis:"total_paid"`
	SettledAt int64          `json:"settled_at" redis:"settled_at"`
}
