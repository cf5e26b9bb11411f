package models

import (
	"strings"
	"time"

	"cashlytic-server/src/apperr"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "INCOME"
	TransactionTypeExpense TransactionType = "EXPENSE"
)

func (t TransactionType) IsValid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// Signed returns the effect of amount on an account balance for this type:
// positive for income, negative for expense.
func (t TransactionType) Signed(amount decimal.Decimal) decimal.Decimal {
	if t == TransactionTypeExpense {
		return amount.Neg()
	}
	return amount
}

type RecurringInterval string

const (
	IntervalDaily   RecurringInterval = "DAILY"
	IntervalWeekly  RecurringInterval = "WEEKLY"
	IntervalMonthly RecurringInterval = "MONTHLY"
	IntervalYearly  RecurringInterval = "YEARLY"
)

func ParseRecurringInterval(s string) (RecurringInterval, error) {
	switch i := RecurringInterval(strings.ToUpper(strings.TrimSpace(s))); i {
	case IntervalDaily, IntervalWeekly, IntervalMonthly, IntervalYearly:
		return i, nil
	default:
		return "", apperr.ErrInvalidInterval
	}
}

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// Transaction.Amount is always an unsigned magnitude; direction comes from Type.
type Transaction struct {
	ID                string             `json:"id"`
	UserID            string             `json:"user_id"`
	AccountID         string             `json:"account_id"`
	Type              TransactionType    `json:"type"`
	Amount            decimal.Decimal    `json:"amount"`
	Category          Category           `json:"category"`
	Date              time.Time          `json:"date"`
	Description       string             `json:"description"`
	ReceiptURL        *string            `json:"receipt_url,omitempty"`
	IsRecurring       bool               `json:"is_recurring"`
	RecurringInterval *RecurringInterval `json:"recurring_interval,omitempty"`
	NextRecurringDate *time.Time         `json:"next_recurring_date,omitempty"`
	LastProcessed     *time.Time         `json:"last_processed,omitempty"`
	Status            TransactionStatus  `json:"status"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

func (t Transaction) SignedAmount() decimal.Decimal {
	return t.Type.Signed(t.Amount)
}

type TransactionInput struct {
	AccountID         string             `json:"account_id"`
	Type              TransactionType    `json:"type"`
	Amount            decimal.Decimal    `json:"amount"`
	Category          Category           `json:"category"`
	Date              time.Time          `json:"date"`
	Description       string             `json:"description"`
	ReceiptURL        *string            `json:"receipt_url,omitempty"`
	IsRecurring       bool               `json:"is_recurring"`
	RecurringInterval *RecurringInterval `json:"recurring_interval,omitempty"`
}

func (in TransactionInput) SignedAmount() decimal.Decimal {
	return in.Type.Signed(in.Amount)
}

func (in TransactionInput) Validate() error {
	if strings.TrimSpace(in.AccountID) == "" {
		return apperr.Validation("account_id is required")
	}
	if !in.Type.IsValid() {
		return apperr.Validation("invalid transaction type %q", in.Type)
	}
	if in.Amount.IsNegative() {
		return apperr.Validation("amount must not be negative")
	}
	if err := ValidateAmount("amount", in.Amount); err != nil {
		return err
	}
	if !in.Category.IsValid() {
		return apperr.Validation("invalid category %q", in.Category)
	}
	if in.Date.IsZero() {
		return apperr.Validation("date is required")
	}
	if in.IsRecurring {
		if in.RecurringInterval == nil {
			return apperr.Validation("recurring_interval is required for recurring transactions")
		}
		if _, err := ParseRecurringInterval(string(*in.RecurringInterval)); err != nil {
			return err
		}
	}
	return nil
}

// TransactionFilter narrows a user's transaction listing. Zero values mean no
// constraint.
type TransactionFilter struct {
	AccountID string
	Type      TransactionType
	From      *time.Time
	To        *time.Time
	Recurring *bool
}

type BulkDeleteResult struct {
	Deleted int `json:"deleted"`
}
