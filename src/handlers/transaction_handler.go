package handlers

import (
	"net/http"
	"strconv"

	"cashlytic-server/src/apperr"
	"cashlytic-server/src/ledger"
	"cashlytic-server/src/logger"
	"cashlytic-server/src/models"
	"cashlytic-server/src/util"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type transactionRequest struct {
	AccountID         string          `json:"account_id"`
	Type              string          `json:"type"`
	Amount            decimal.Decimal `json:"amount"`
	Category          string          `json:"category"`
	Date              string          `json:"date"`
	Description       string          `json:"description"`
	ReceiptURL        *string         `json:"receipt_url"`
	IsRecurring       bool            `json:"is_recurring"`
	RecurringInterval *string         `json:"recurring_interval"`
}

func (req transactionRequest) input() (models.TransactionInput, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return models.TransactionInput{}, err
	}
	in := models.TransactionInput{
		AccountID:   req.AccountID,
		Type:        models.TransactionType(req.Type),
		Amount:      req.Amount,
		Category:    models.Category(req.Category),
		Date:        date,
		Description: req.Description,
		ReceiptURL:  req.ReceiptURL,
		IsRecurring: req.IsRecurring,
	}
	if req.RecurringInterval != nil && *req.RecurringInterval != "" {
		interval := models.RecurringInterval(*req.RecurringInterval)
		in.RecurringInterval = &interval
	}
	return in, nil
}

func decodeTransaction(w http.ResponseWriter, r *http.Request) (models.TransactionInput, error) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return models.TransactionInput{}, err
	}
	return req.input()
}

func CreateTransaction(svc *ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, err := decodeTransaction(w, r)
		if err != nil {
			util.WriteError(w, r, err)
			return
		}
		tx, err := svc.CreateTransaction(r.Context(), currentUserID(r), in)
		if err != nil {
			util.WriteError(w, r, err)
			return
		}
		log := logger.FromContext(r.Context())
		log.Info().Str("transaction_id", tx.ID).Msg("created transaction")
		util.WriteJSON(w, http.StatusCreated, tx)
	}
}

func GetTransactions(svc *ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := transactionFilter(r)
		if err != nil {
			util.WriteError(w, r, err)
			return
		}
		txs, err := svc.ListTransactions(r.Context(), currentUserID(r), filter)
		if err != nil {
			util.WriteError(w, r, err)
			return
		}
		util.WriteJSON(w, http.StatusOK, txs)
	}
}

func transactionFilter(r *http.Request) (models.TransactionFilter, error) {
	q := r.URL.Query()
	f := models.TransactionFilter{
		AccountID: q.Get("account_id"),
		Type:      models.TransactionType(q.Get("type")),
	}
	if v := q.Get("from"); v != "" {
		from, err := parseDate(v)
		if err != nil {
			return f, err
		}
		f.From = &from
	}
	if v := q.Get("to"); v != "" {
		to, err := parseDate(v)
		if err != nil {
			return f, err
		}
		f.To = &to
	}
	if v := q.Get("recurring"); v != "" {
		recurring, err := strconv.ParseBool(v)
		if err != nil {
			return f, apperr.Validation("invalid recurring flag %q", v)
		}
		f.Recurring = &recurring
	}
	return f, nil
}

func GetTransaction(svc *ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tx, err := svc.GetTransaction(r.Context(), currentUserID(r), chi.URLParam(r, "transaction_id"))
		if err != nil {
			util.WriteError(w, r, err)
			return
		}
		util.WriteJSON(w, http.StatusOK, tx)
	}
}

func UpdateTransaction(svc *ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, err := decodeTransaction(w, r)
		if err != nil {
			util.WriteError(w, r, err)
			return
		}
		tx, err := svc.UpdateTransaction(r.Context(), currentUserID(r), chi.URLParam(r, "transaction_id"), in)
		if err != nil {
			util.WriteError(w, r, err)
			return
		}
		log := logger.FromContext(r.Context())
		log.Info().Str("transaction_id", tx.ID).Msg("updated transaction")
		util.WriteJSON(w, http.StatusOK, tx)
	}
}

func DeleteTransaction(svc *ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "transaction_id")
		if err := svc.DeleteTransaction(r.Context(), currentUserID(r), id); err != nil {
			util.WriteError(w, r, err)
			return
		}
		log := logger.FromContext(r.Context())
		log.Info().Str("transaction_id", id).Msg("deleted transaction")
		util.WriteJSON(w, http.StatusOK, models.BulkDeleteResult{Deleted: 1})
	}
}

func BulkDeleteTransactions(svc *ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			IDs []string `json:"ids"`
		}
		if err := decodeJSON(w, r, &req); err != nil {
			util.WriteError(w, r, err)
			return
		}
		res, err := svc.BulkDeleteTransactions(r.Context(), currentUserID(r), req.IDs)
		if err != nil {
			util.WriteError(w, r, err)
			return
		}
		log := logger.FromContext(r.Context())
		log.Info().Int("requested", len(req.IDs)).Int("deleted", res.Deleted).Msg("bulk deleted transactions")
		util.WriteJSON(w, http.StatusOK, res)
	}
}
