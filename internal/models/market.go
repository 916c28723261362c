package models

type MarketKind string

const (
	MarketKindMain        MarketKind = "main"
	MarketKindStarline    MarketKind = "starline"
	MarketKindGalidisawar MarketKind = "galidisawar"
)

// DaySchedule is one weekday's open/close window, times in "15:04".
type DaySchedule struct {
	Day       string `json:"day" redis:"day"` // "monday".."sunday"
	OpenTime  string `json:"open_time" redis:"open_time"`
	CloseTime string `json:"close_time" redis:"close_time"`
	Closed    bool   `json:"closed" redis:"closed"`
}

type Market struct {
	ID       string        `json:"id" redis:"id"`
	Kind     MarketKind    `json:"kind" redis:"kind"`
	Name     string        `json:"name" redis:"name"`
	Active   bool          `json:"active" redis:"active"`
	Schedule []DaySchedule `json:"schedule" redis:"schedule"`

	CreatedAt int64 `json:"created_at" redis:"created_at"`
	UpdatedAt int64 `json:"updated_at" redis:"updated_at"`
}

// SupportsSessions reports whether bids on this market carry an open/close
// session tag. Starline and gali-disawar rounds have a single draw.
func (m *Market) SupportsSessions() bool {
	return m.Kind == MarketKindMain
}

// RateTable maps a bid kind to its payout multiplier for one market kind.
// Mirrors the legacy StarlineRate / GalidisawarRate documents.
type RateTable struct {
	Kind  MarketKind          `json:"kind" redis:"kind"`
	Rates map[BidKind]float64 `json:"rates" redis:"rates"`

	UpdatedAt int64 `json:"updated_at" redis:"updated_at"`
}
