package handlers

import (
	"net/http"
	"time"

	"cashlytic-server/src/ledger"
	"cashlytic-server/src/logger"
	"cashlytic-server/src/util"
)

func ProcessRecurring(svc *ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := svc.ProcessRecurringTransactions(r.Context(), time.Now())
		if err != nil {
			util.WriteError(w, r, err)
			return
		}
		log := logger.FromContext(r.Context())
		log.Info().
			Int("processed", res.Processed).
			Int("skipped", res.Skipped).
			Int("failed", res.Failed).
			Msg("recurring run finished")
		util.WriteJSON(w, http.StatusOK, res)
	}
}

func CheckBudgetAlerts(svc *ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := svc.CheckBudgetAlerts(r.Context(), time.Now())
		if err != nil {
			util.WriteError(w, r, err)
			return
		}
		log := logger.FromContext(r.Context())
		log.Info().
			Int("checked", res.Checked).
			Int("sent", res.Sent).
			Int("failed", res.Failed).
			Msg("budget alert run finished")
		util.WriteJSON(w, http.StatusOK, res)
	}
}
