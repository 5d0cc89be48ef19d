package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType is the direction of a wallet movement.
type TransactionType string

const (
	TransactionCredit TransactionType = "CREDIT"
	TransactionDebit  TransactionType = "DEBIT"
)

// Wallet transaction sources
const (
	SourceOrderPayment      = "order_payment"
	SourceOrderCancellation = "order_cancellation"
	SourceItemCancellation  = "item_cancellation"
	SourceOrderReturn       = "order_return"
	SourceAdjustment        = "admin_adjustment"
)

// Wallet is a user's stored-value balance.
type Wallet struct {
	UserID    uuid.UUID       `json:"userId" db:"user_id"`
	Balance   decimal.Decimal `json:"balance" db:"balance"`
	UpdatedAt time.Time       `json:"updatedAt" db:"updated_at"`
}

// WalletTransaction is an immutable ledger entry.
type WalletTransaction struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	UserID       uuid.UUID       `json:"userId" db:"user_id"`
	Type         TransactionType `json:"type" db:"type"`
	Amount       decimal.Decimal `json:"amount" db:"amount"`
	Source       string          `json:"source" db:"source"`
	OrderID      *uuid.UUID      `json:"orderId,omitempty" db:"order_id"`
	Description  string          `json:"description,omitempty" db:"description"`
	BalanceAfter decimal.Decimal `json:"balanceAfter" db:"balance_after"`
	CreatedAt    time.Time       `json:"createdAt" db:"created_at"`
}

// WalletEntry describes why money moves.
type WalletEntry struct {
	Source      string
	OrderID     *uuid.UUID
	Description string
}

// WalletPage is a wallet balance with one page of its transactions, newest first.
type WalletPage struct {
	Balance      decimal.Decimal     `json:"balance"`
	Transactions []WalletTransaction `json:"transactions"`
	Page         int                 `json:"page"`
	Limit        int                 `json:"limit"`
	Total        int                 `json:"total"`
	TotalPages   int                 `json:"totalPages"`
}

// CreditRequest is a manual wallet credit.
type CreditRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description" validate:"max=255"`
}
