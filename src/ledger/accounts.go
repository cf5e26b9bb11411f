package ledger

import (
	"context"
	"fmt"
	"strings"

	"cashlytic-server/src/apperr"
	"cashlytic-server/src/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	cacheKeyAccounts  = "accounts"
	cacheKeyDashboard = "dashboard"
)

// CreateAccount opens an account with an opening balance. A user's first
// account is always the default; asking for default on a later account
// takes the flag away from the previous default.
func (s *Service) CreateAccount(ctx context.Context, userID string, in models.CreateAccountInput) (*models.Account, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation("name is required")
	}
	accountType, err := models.ParseAccountType(in.Type)
	if err != nil {
		return nil, err
	}
	balance, err := decimal.NewFromString(strings.TrimSpace(in.Balance))
	if err != nil {
		return nil, apperr.Validation("invalid balance amount")
	}
	if err := models.ValidateAmount("balance", balance); err != nil {
		return nil, err
	}

	start := s.now()
	acc := &models.Account{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		Type:      accountType,
		Balance:   balance,
		CreatedAt: start,
		UpdatedAt: start,
	}
	err = s.store.InTx(ctx, func(q Queries) error {
		n, err := q.CountAccounts(ctx, userID)
		if err != nil {
			return fmt.Errorf("count accounts: %w", err)
		}
		acc.IsDefault = n == 0 || in.IsDefault
		if acc.IsDefault {
			if err := q.ClearDefaultAccounts(ctx, userID); err != nil {
				return fmt.Errorf("clear default account: %w", err)
			}
		}
		if err := q.CreateAccount(ctx, acc); err != nil {
			return fmt.Errorf("insert account: %w", err)
		}
		return nil
	})
	s.observe("create_account", start, err)
	if err != nil {
		return nil, err
	}

	s.cache.InvalidateUser(userID)
	s.log.Info().Str("user_id", userID).Str("account_id", acc.ID).Bool("default", acc.IsDefault).Msg("account created")
	return acc, nil
}

func (s *Service) ListAccounts(ctx context.Context, userID string) ([]models.Account, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if v, ok := s.cache.Get(userID, cacheKeyAccounts); ok {
		if accounts, ok := v.([]models.Account); ok {
			return accounts, nil
		}
	}
	gen := s.cache.Generation(userID)
	accounts, err := s.store.ListAccounts(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(userID, cacheKeyAccounts, accounts, gen)
	return accounts, nil
}

func (s *Service) GetAccountWithTransactions(ctx context.Context, userID, accountID string) (*models.AccountWithTransactions, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	acc, err := s.store.GetAccount(ctx, userID, accountID)
	if err != nil {
		return nil, err
	}
	txs, err := s.store.ListTransactions(ctx, userID, models.TransactionFilter{AccountID: accountID})
	if err != nil {
		return nil, err
	}
	acc.TransactionCount = len(txs)
	return &models.AccountWithTransactions{Account: *acc, Transactions: txs}, nil
}

// SetDefaultAccount makes accountID the user's only default account.
func (s *Service) SetDefaultAccount(ctx context.Context, userID, accountID string) (*models.Account, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	start := s.now()
	var acc *models.Account
	err := s.store.InTx(ctx, func(q Queries) error {
		var err error
		if acc, err = q.GetAccount(ctx, userID, accountID); err != nil {
			return err
		}
		if err := q.ClearDefaultAccounts(ctx, userID); err != nil {
			return fmt.Errorf("clear default account: %w", err)
		}
		if err := q.SetDefaultAccount(ctx, userID, accountID); err != nil {
			return fmt.Errorf("set default account: %w", err)
		}
		acc.IsDefault = true
		return nil
	})
	s.observe("set_default", start, err)
	if err != nil {
		return nil, err
	}

	s.cache.InvalidateUser(userID)
	return acc, nil
}
