package http

import (
	"net/http"
	"strings"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

type transactionRequest struct {
	Amount      string `json:"amount"`
	Type        string `json:"type"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Date        string `json:"date"` // YYYY-MM-DD
	ReceiptURL  string `json:"receiptUrl"`
}

func (s *Server) decodeTransaction(r *http.Request, uid int64) (core.Transaction, error) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		return core.Transaction{}, err
	}

	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		return core.Transaction{}, err
	}

	date := time.Now()
	if strings.TrimSpace(req.Date) != "" {
		if date, err = parseDate(req.Date); err != nil {
			return core.Transaction{}, core.ErrMissingDate
		}
	}

	tx := core.Transaction{
		UserID:      uid,
		Amount:      amount,
		Type:        core.TransactionType(req.Type),
		Category:    strings.TrimSpace(req.Category),
		Description: strings.TrimSpace(req.Description),
		Date:        date,
		ReceiptURL:  strings.TrimSpace(req.ReceiptURL),
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tx, err := s.decodeTransaction(r, uid)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := s.transactions.CreateTransaction(r.Context(), &tx); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionDTO(tx))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	filter := storage.TransactionFilter{
		Category: strings.TrimSpace(r.URL.Query().Get("category")),
		Type:     core.TransactionType(r.URL.Query().Get("type")),
	}
	if filter.Type != "" && !filter.Type.IsValid() {
		writeError(w, http.StatusBadRequest, "invalid type")
		return
	}
	if v := r.URL.Query().Get("startDate"); v != "" || r.URL.Query().Get("endDate") != "" {
		if filter.From, filter.To, err = parseDateRange(r); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	txs, err := s.transactions.ListTransactions(r.Context(), uid, filter)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	out := make([]transactionDTO, len(txs))
	for i, tx := range txs {
		out[i] = toTransactionDTO(tx)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tx, err := s.transactions.GetTransaction(r.Context(), uid, id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionDTO(tx))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tx, err := s.decodeTransaction(r, uid)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	tx.ID = id

	if err := s.transactions.UpdateTransaction(r.Context(), &tx); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionDTO(tx))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.transactions.DeleteTransaction(r.Context(), uid, id); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
