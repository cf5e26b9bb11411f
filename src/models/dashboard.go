package models

import "github.com/shopspring/decimal"

type Dashboard struct {
	Accounts     []Account       `json:"accounts"`
	Transactions []Transaction   `json:"transactions"`
	Budget       *BudgetProgress `json:"budget"`
}

type CategoryTotal struct {
	Category Category        `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

type MonthlyOverview struct {
	AccountID    string          `json:"account_id"`
	Month        string          `json:"month"`
	TotalIncome  decimal.Decimal `json:"total_income"`
	TotalExpense decimal.Decimal `json:"total_expense"`
	Net          decimal.Decimal `json:"net"`
	Categories   []CategoryTotal `json:"categories"`
}
