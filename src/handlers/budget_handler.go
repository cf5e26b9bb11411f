package handlers

import (
	"net/http"

	"cashlytic-server/src/ledger"
	"cashlytic-server/src/logger"
	"cashlytic-server/src/util"

	"github.com/shopspring/decimal"
)

func GetBudget(svc *ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		progress, err := svc.GetBudget(r.Context(), currentUserID(r), r.URL.Query().Get("account_id"))
		if err != nil {
			util.WriteError(w, r, err)
			return
		}
		util.WriteJSON(w, http.StatusOK, progress)
	}
}

func UpdateBudget(svc *ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Amount decimal.Decimal `json:"amount"`
		}
		if err := decodeJSON(w, r, &req); err != nil {
			util.WriteError(w, r, err)
			return
		}
		budget, err := svc.UpsertBudget(r.Context(), currentUserID(r), req.Amount)
		if err != nil {
			util.WriteError(w, r, err)
			return
		}
		log := logger.FromContext(r.Context())
		log.Info().Str("budget_id", budget.ID).Str("amount", budget.Amount.String()).Msg("updated budget")
		util.WriteJSON(w, http.StatusOK, budget)
	}
}
