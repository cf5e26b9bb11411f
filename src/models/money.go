package models

import (
	"cashlytic-server/src/apperr"

	"github.com/shopspring/decimal"
)

// MaxAmount is the smallest magnitude that no longer fits a NUMERIC(14,2)
// column.
var MaxAmount = decimal.New(1, 12)

// ValidateAmount rejects values the store would have to round or could not
// hold: more than two decimal places, or a magnitude of MaxAmount or more.
func ValidateAmount(field string, d decimal.Decimal) error {
	if !d.Equal(d.Round(2)) {
		return apperr.Validation("%s must have at most 2 decimal places", field)
	}
	if d.Abs().GreaterThanOrEqual(MaxAmount) {
		return apperr.Validation("%s must be less than %s", field, MaxAmount.String())
	}
	return nil
}
