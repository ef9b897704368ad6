package repo

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a looked-up row does not exist.
var ErrNotFound = errors.New("repo: not found")

// Security is a tradable instrument known to the brokerage.
type Security struct {
	ID           string    `json:"id"`
	Symbol       string    `json:"symbol"`
	Name         string    `json:"name"`
	Exchange     string    `json:"exchange"`
	Sector       string    `json:"sector,omitempty"`
	Industry     string    `json:"industry,omitempty"`
	SecurityType string    `json:"securityType"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Portfolio is a user's cash account.
type Portfolio struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	Currency       string    `json:"currency"`
	InitialBalance float64   `json:"initialBalance"`
	CurrentBalance float64   `json:"currentBalance"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Position is a holding joined with its security's descriptive fields.
// MarketValue and UnrealizedPnL are maintained by the writer of the row.
type Position struct {
	ID            string  `json:"id"`
	PortfolioID   string  `json:"portfolioId"`
	SecurityID    string  `json:"securityId"`
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Sector        string  `json:"sector,omitempty"`
	SecurityType  string  `json:"securityType"`
	Quantity      float64 `json:"quantity"`
	AverageCost   float64 `json:"averageCost"`
	MarketValue   float64 `json:"marketValue"`
	UnrealizedPnL float64 `json:"unrealizedPnl"`
}

// TransactionType classifies ledger rows.
type TransactionType string

const (
	TxBuy        TransactionType = "buy"
	TxSell       TransactionType = "sell"
	TxDividend   TransactionType = "dividend"
	TxDeposit    TransactionType = "deposit"
	TxWithdrawal TransactionType = "withdrawal"
	TxFee        TransactionType = "fee"
)

// Transaction is an append-only ledger row.
type Transaction struct {
	ID          string          `json:"id"`
	PortfolioID string          `json:"portfolioId"`
	SecurityID  string          `json:"securityId,omitempty"`
	OrderID     *string         `json:"orderId,omitempty"`
	Symbol      string          `json:"symbol,omitempty"`
	Type        TransactionType `json:"type"`
	Quantity    float64         `json:"quantity"`
	Price       float64         `json:"price"`
	Amount      float64         `json:"amount"`
	Fee         float64         `json:"fee"`
	ExecutedAt  time.Time       `json:"executedAt"`
}

// TxQuery filters a transaction listing. Zero values mean no bound; Types
// empty means every type.
type TxQuery struct {
	Types  []TransactionType
	Since  time.Time
	Limit  int
	Offset int
}

func (q TxQuery) matches(tx Transaction) bool {
	if !q.Since.IsZero() && tx.ExecutedAt.Before(q.Since) {
		return false
	}
	if len(q.Types) == 0 {
		return true
	}
	for _, t := range q.Types {
		if t == tx.Type {
			return true
		}
	}
	return false
}

func typeStrings(types []TransactionType) []string {
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = string(t)
	}
	return out
}
