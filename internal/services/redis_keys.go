package services

import "time"

const (
	KeyUser           = "user:%s"
	KeyUserByMobile   = "user:mobile:%s"
	KeyUsersAll       = "users:all"
	KeyWallet         = "wallet:%s"
	KeyMarket         = "market:%s"
	KeyMarketByName   = "market:name:%s:%s" // kind, name
	KeyMarketsAll     = "markets:%s"        // kind
	KeyRateTable      = "rates:%s"          // kind
	KeySlip           = "bid:slip:%s"
	KeyUserSlips      = "user:%s:slips"
	KeyGameDateSlips  = "game:%s:slips:%s"     // game id, DD-MM-YYYY
	KeyResult         = "result:%s:%s:%s"      // game id, date, session
	KeyResultsByDate  = "results:%s"           // date
	KeyWinners        = "winners:%s:%s:%s"     // game id, date, session
	KeyWinCredit      = "winners:credited:%s"  // winner transaction id
	KeyTransaction    = "transaction:%s"
	KeyUserTxns       = "user:%s:transactions"
	KeyWithdraw       = "withdraw:%s"
	KeyWithdrawClaim  = "withdraw:resolving:%s"
	KeyUserWithdraws  = "user:%s:withdrawals"
	KeyWithdrawsQueue = "withdrawals:pending"
	KeyRateLimit      = "ratelimit:%s:%s"

	TTLTransaction = 90 * 24 * time.Hour

	DefaultRateLimitBids = 30 // Max 30 bid placements per minute
	DefaultRateLimitOTP  = 5  // Max 5 OTP sends per hour
)
