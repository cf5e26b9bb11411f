package handlers

import (
	"net/http"

	"cashlytic-server/src/ledger"
	"cashlytic-server/src/logger"
	"cashlytic-server/src/models"
	"cashlytic-server/src/util"

	"github.com/go-chi/chi/v5"
)

func CreateAccount(svc *ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.CreateAccountInput
		if err := decodeJSON(w, r, &req); err != nil {
			util.WriteError(w, r, err)
			return
		}
		account, err := svc.CreateAccount(r.Context(), currentUserID(r), req)
		if err != nil {
			util.WriteError(w, r, err)
			return
		}
		log := logger.FromContext(r.Context())
		log.Info().Str("account_id", account.ID).Msg("created account")
		util.WriteJSON(w, http.StatusCreated, account)
	}
}

func GetAccounts(svc *ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accounts, err := svc.ListAccounts(r.Context(), currentUserID(r))
		if err != nil {
			util.WriteError(w, r, err)
			return
		}
		util.WriteJSON(w, http.StatusOK, accounts)
	}
}

func GetAccount(svc *ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account, err := svc.GetAccountWithTransactions(r.Context(), currentUserID(r), chi.URLParam(r, "account_id"))
		if err != nil {
			util.WriteError(w, r, err)
			return
		}
		util.WriteJSON(w, http.StatusOK, account)
	}
}

func SetDefaultAccount(svc *ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account, err := svc.SetDefaultAccount(r.Context(), currentUserID(r), chi.URLParam(r, "account_id"))
		if err != nil {
			util.WriteError(w, r, err)
			return
		}
		util.WriteJSON(w, http.StatusOK, account)
	}
}
