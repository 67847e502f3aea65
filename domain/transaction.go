package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one bank transaction as reported by the aggregator.
// Amount follows the aggregator's sign convention: positive amounts are
// money leaving the account, negative amounts are inflows.
type Transaction struct {
	TransactionID string          `json:"transaction_id"`
	Date          time.Time       `json:"date"`
	Merchant      string          `json:"merchant"`
	Categories    []string        `json:"category"`
	Amount        decimal.Decimal `json:"amount"`
	Pending       bool            `json:"pending"`
}

// Outflow reports whether the transaction spent money.
func (t *Transaction) Outflow() bool {
	return t.Amount.IsPositive()
}

// Inflow reports whether the transaction deposited money.
func (t *Transaction) Inflow() bool {
	return t.Amount.IsNegative()
}

// ScoredTransaction attaches the externally computed spending quality score
// (0-100). The scoring engine is a collaborator; the score is consumed as a
// value and never computed in this repository.
type ScoredTransaction struct {
	Transaction
	Score float64 `json:"score"`
}

// ScoreProvider is the boundary to the spending quality scoring engine.
type ScoreProvider interface {
	Score(tx *Transaction) float64
}

// PaycheckSummary describes spending since the most recent detected
// paycheck deposit.
type PaycheckSummary struct {
	LastPaycheckAmount decimal.Decimal     `json:"last_paycheck_amount"`
	LastPaycheckDate   time.Time           `json:"last_paycheck_date"`
	SpentSincePaycheck decimal.Decimal     `json:"spent_since_paycheck"`
	Transactions       []ScoredTransaction `json:"transactions"`
}

// MonthlyScore is the mean spending quality score over one calendar month.
type MonthlyScore struct {
	Month     string  `json:"month"` // formatted 2006-01
	MeanScore float64 `json:"mean_score"`
	Count     int     `json:"count"`
}
