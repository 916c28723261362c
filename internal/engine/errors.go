package engine

import "errors"

var (
	// ErrMissingResult means settlement was requested before a result was
	// declared for the (market, date, session) key.
	ErrMissingResult = errors.New("no result declared for requested key")

	// ErrMissingRate means a matched bid's kind has no entry in the
	// market's rate table. That is a configuration fault, never a
	// legitimate zero payout.
	ErrMissingRate = errors.New("no rate configured for bid kind")

	// ErrDuplicateResult is surfaced by the store when a second result is
	// declared for a (market, date, session) that already has one.
	ErrDuplicateResult = errors.New("result already declared for this market/date/session")
)
