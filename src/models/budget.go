package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Budget struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	Amount        decimal.Decimal `json:"amount"`
	LastAlertSent *time.Time      `json:"last_alert_sent,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// BudgetProgress compares the current month's expenses on one account with
// the user's budget. Budget is nil when the user has not set one.
type BudgetProgress struct {
	Budget          *Budget         `json:"budget"`
	AccountID       string          `json:"account_id,omitempty"`
	CurrentExpenses decimal.Decimal `json:"current_expenses"`
	PercentUsed     float64         `json:"percent_used"`
}

// BudgetAlert is the payload of the budget threshold email.
type BudgetAlert struct {
	UserName    string
	Month       string
	Budget      decimal.Decimal
	Spent       decimal.Decimal
	PercentUsed float64
}
