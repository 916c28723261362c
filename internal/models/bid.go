package models

type BidKind string

const (
	BidKindSingleDigit BidKind = "single_digit"
	BidKindJodi        BidKind = "jodi"
	BidKindSinglePanna BidKind = "single_panna"
	BidKindDoublePanna BidKind = "double_panna"
	BidKindTriplePanna BidKind = "triple_panna"
)

type Session string

const (
	SessionOpen  Session = "open"
	SessionClose Session = "close"
	SessionNone  Session = ""
)

// BidLine is one wagered (kind, value, session, stake) tuple within a slip.
// Digit is set for single_digit/jodi bids, Panna for the panna kinds.
type BidLine struct {
	Kind     BidKind `json:"kind" redis:"kind"`
	Digit    string  `json:"digit,omitempty" redis:"digit"`
	Panna    string  `json:"panna,omitempty" redis:"panna"`
	Session  Session `json:"session,omitempty" redis:"session"`
	Stake    float64 `json:"stake" redis:"stake"`
	GameID   string  `json:"game_id" redis:"game_id"`
	GameName string  `json:"game_name" redis:"game_name"`
}

// WagerSlip is a single bid-placement transaction. The user and market
// display fields are resolved by the store before the slip reaches the
// projection, which only copies them through.
type WagerSlip struct {
	ID           string     `json:"id" redis:"id"`
	UserID       string     `json:"user_id" redis:"user_id"`
	UserName     string     `json:"user_name" redis:"user_name"`
	MobileNumber string     `json:"mobile_number" redis:"mobile_number"`
	MarketKind   MarketKind `json:"market_kind" redis:"market_kind"`
	Lines        []BidLine  `json:"lines" redis:"lines"`
	TotalStake   float64    `json:"total_stake" redis:"total_stake"`
	CreatedAt    int64      `json:"created_at" redis:"created_at"`
}

// FlattenedBidRow is one bid line joined with its owner's display fields.
// Derived by the projection, never persisted.
type FlattenedBidRow struct {
	SlipID       string     `json:"slip_id"`
	LineIndex    int        `json:"line_index"`
	UserID       string     `json:"user_id"`
	Name         string     `json:"name"`
	MobileNumber string     `json:"mobile_number"`
	MarketKind   MarketKind `json:"market_kind"`
	GameID       string     `json:"game_id"`
	GameName     string     `json:"game_name"`
	Kind         BidKind    `json:"kind"`
	Digit        string     `json:"digit,omitempty"`
	Panna        string     `json:"panna,omitempty"`
	Session      Session    `json:"session,omitempty"`
	Stake        float64    `json:"stake"`
	CreatedAt    int64      `json:"created_at"`
}
