package handlers

import (
	"net/http"

	"cashlytic-server/src/ledger"
	"cashlytic-server/src/util"
)

func GetMe(svc *ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := svc.GetUser(r.Context(), currentUserID(r))
		if err != nil {
			util.WriteError(w, r, err)
			return
		}
		util.WriteJSON(w, http.StatusOK, user)
	}
}
