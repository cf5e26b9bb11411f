package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ScannedReceipt struct {
	Amount       decimal.Decimal `json:"amount"`
	Date         time.Time       `json:"date"`
	Description  string          `json:"description"`
	Category     Category        `json:"category"`
	MerchantName string          `json:"merchant_name"`
}
