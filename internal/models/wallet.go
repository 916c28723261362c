package models

type Wallet struct {
	UserID        string  `json:"user_id" redis:"user_id"`
	Balance       float64 `json:"balance" redis:"balance"`
	LockedBalance float64 `json:"locked_balance" redis:"locked_balance"`
	TotalWagered  float64 `json:"total_wagered" redis:"total_wagered"`
	TotalWon      float64 `json:"total_won" redis:"total_won"`
}

type TransactionType string

const (
	TransactionTypeBid      TransactionType = "bid"
	TransactionTypeWin      TransactionType = "win"
	TransactionTypeDeposit  TransactionType = "deposit"
	TransactionTypeWithdraw TransactionType = "withdraw"
	TransactionTypeRefund   TransactionType = "refund"
)

type Transaction struct {
	ID            string          `json:"id" redis:"id"`
	UserID        string          `json:"user_id" redis:"user_id"`
	Type          TransactionType `json:"type" redis:"type"`
	Amount        float64         `json:"amount" redis:"amount"`
	BalanceBefore float64         `json:"balance_before" redis:"balance_before"`
	BalanceAfter  float64         `json:"balance_after" redis:"balance_after"`
	SlipID        string          `json:"slip_id,omitempty" redis:"slip_id"`
	Description   string          `json:"description" redis:"description"`
	CreatedAt     int64           `json:"created_at" redis:"created_at"`
}

type WithdrawStatus string

const (
	WithdrawStatusPending  WithdrawStatus = "pending"
	WithdrawStatusApproved WithdrawStatus = "approved"
	WithdrawStatusRejected WithdrawStatus = "rejected"
)

type WithdrawRequest struct {
	ID           string         `json:"id" redis:"id"`
	UserID       string         `json:"user_id" redis:"user_id"`
	UserName     string         `json:"user_name" redis:"user_name"`
	MobileNumber string         `json:"mobile_number" redis:"mobile_number"`
	Amount       float64        `json:"amount" redis:"amount"`
	Status       WithdrawStatus `json:"status" redis:"status"`
	AdminNote    string         `json:"admin_note,omitempty" redis:"admin_note"`
	CreatedAt    int64          `json:"created_at" redis:"created_at"`
	ResolvedAt   int64          `json:"resolved_at,omitempty" redis:"resolved_at"`
}

type BalanceResponse struct {
	Balance       float64 `json:"balance"`
	LockedBalance float64 `json:"locked_balance"`
	TotalWagered  float64 `json:"total_wagered"`
	TotalWon      float64 `json:"total_won"`
	Available     float64 `json:"available"` // Balance - LockedBalance
}
