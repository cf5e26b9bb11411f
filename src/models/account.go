package models

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"cashlytic-server/src/apperr"

	"github.com/shopspring/decimal"
)

type AccountType string

const (
	AccountTypeCurrent AccountType = "CURRENT"
	AccountTypeSavings AccountType = "SAVINGS"
)

func ParseAccountType(s string) (AccountType, error) {
	switch t := AccountType(strings.ToUpper(strings.TrimSpace(s))); t {
	case AccountTypeCurrent, AccountTypeSavings:
		return t, nil
	default:
		return "", apperr.Validation("invalid account type %q", s)
	}
}

type Account struct {
	ID               string          `json:"id"`
	UserID           string          `json:"user_id"`
	Name             string          `json:"name"`
	Type             AccountType     `json:"type"`
	Balance          decimal.Decimal `json:"balance"`
	IsDefault        bool            `json:"is_default"`
	TransactionCount int             `json:"transaction_count"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

type AccountWithTransactions struct {
	Account
	Transactions []Transaction `json:"transactions"`
}

// CreateAccountInput carries the balance as text so that a non-numeric value
// can be reported as a validation error rather than a decode error.
type CreateAccountInput struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Balance   string `json:"balance"`
	IsDefault bool   `json:"is_default"`
}

// UnmarshalJSON accepts the balance either as a JSON string or as a JSON
// number; both end up as text for the ledger to parse.
func (in *CreateAccountInput) UnmarshalJSON(b []byte) error {
	var raw struct {
		Name      string          `json:"name"`
		Type      string          `json:"type"`
		Balance   json.RawMessage `json:"balance"`
		IsDefault bool            `json:"is_default"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*in = CreateAccountInput{Name: raw.Name, Type: raw.Type, IsDefault: raw.IsDefault}

	balance := bytes.TrimSpace(raw.Balance)
	switch {
	case len(balance) == 0 || bytes.Equal(balance, []byte("null")):
	case balance[0] == '"':
		return json.Unmarshal(balance, &in.Balance)
	default:
		in.Balance = string(balance)
	}
	return nil
}
