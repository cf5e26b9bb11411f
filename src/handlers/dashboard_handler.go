package handlers

import (
	"net/http"
	"time"

	"cashlytic-server/src/apperr"
	"cashlytic-server/src/ledger"
	"cashlytic-server/src/util"
)

func GetDashboard(svc *ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dash, err := svc.Dashboard(r.Context(), currentUserID(r))
		if err != nil {
			util.WriteError(w, r, err)
			return
		}
		util.WriteJSON(w, http.StatusOK, dash)
	}
}

// GetMonthlyOverview takes month as YYYY-MM; it defaults to the current month
// and account_id defaults to the user's default account.
func GetMonthlyOverview(svc *ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		month := time.Now().UTC()
		if v := r.URL.Query().Get("month"); v != "" {
			parsed, err := time.Parse("2006-01", v)
			if err != nil {
				util.WriteError(w, r, apperr.Validation("invalid month %q, expected YYYY-MM", v))
				return
			}
			month = parsed
		}
		overview, err := svc.MonthlyOverview(r.Context(), currentUserID(r), r.URL.Query().Get("account_id"), month)
		if err != nil {
			util.WriteError(w, r, err)
			return
		}
		util.WriteJSON(w, http.StatusOK, overview)
	}
}
