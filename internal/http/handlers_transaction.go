package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Garryb057/CS-451-Budget-App-Backend/internal/core"
	"github.com/Garryb057/CS-451-Budget-App-Backend/internal/log"
	"github.com/Garryb057/CS-451-Budget-App-Backend/internal/services"
)

// invalidateReports drops the user's cached forecast and stats entries
// after any ledger write.
func (s *Server) invalidateReports(userID int64) {
	s.forecasts.DeletePrefix(fmt.Sprintf("forecast:%d:", userID))
	s.stats.Delete(fmt.Sprintf("stats:%d", userID))
}

type transactionResponse struct {
	ID            int64   `json:"transactionID"`
	Total         float64 `json:"total"`
	Date          string  `json:"date"`
	Payee         string  `json:"payee"`
	CategoryID    int64   `json:"categoryID"`
	Notes         string  `json:"notes,omitempty"`
	IsRecurring   bool    `json:"isRecurring"`
	RecurDate     *string `json:"recurDate,omitempty"`
	ExpenseType   string  `json:"expenseType,omitempty"`
	TaxRelated    bool    `json:"taxRelated"`
	TravelRelated bool    `json:"travelRelated"`
}

func toTransactionResponse(t *core.Transaction) transactionResponse {
	resp := transactionResponse{
		ID:            t.ID,
		Total:         t.Total,
		Date:          t.Date.Format(dateLayout),
		Payee:         t.Payee,
		CategoryID:    t.CategoryID,
		Notes:         t.Notes,
		IsRecurring:   t.IsRecurring,
		ExpenseType:   string(t.ExpenseType),
		TaxRelated:    t.TaxRelated,
		TravelRelated: t.TravelRelated,
	}
	if t.RecurDate != nil {
		d := t.RecurDate.Format(dateLayout)
		resp.RecurDate = &d
	}
	return resp
}

type createTransactionRequest struct {
	Total         float64 `json:"total"`
	Date          string  `json:"date"`
	Payee         string  `json:"payee"`
	CategoryID    int64   `json:"categoryID"`
	Notes         string  `json:"notes"`
	IsRecurring   bool    `json:"isRecurring"`
	RecurDate     *string `json:"recurDate"`
	ExpenseType   string  `json:"expenseType"`
	TaxRelated    bool    `json:"taxRelated"`
	TravelRelated bool    `json:"travelRelated"`
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		s.metrics.recordAuthFailure()
		writeError(w, r, err)
		return
	}

	var req createTransactionRequest
	if err := readJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		writeBadRequest(w, "invalid date, want YYYY-MM-DD")
		return
	}

	t := &core.Transaction{
		UserID:        userID,
		Total:         req.Total,
		Date:          date,
		Payee:         req.Payee,
		CategoryID:    req.CategoryID,
		Notes:         req.Notes,
		IsRecurring:   req.IsRecurring,
		ExpenseType:   core.ExpenseType(req.ExpenseType),
		TaxRelated:    req.TaxRelated,
		TravelRelated: req.TravelRelated,
	}
	if req.RecurDate != nil {
		d, err := time.Parse(dateLayout, *req.RecurDate)
		if err != nil {
			writeBadRequest(w, "invalid recurDate, want YYYY-MM-DD")
			return
		}
		t.RecurDate = &d
	}

	if err := s.svcs.Transactions.Create(r.Context(), t); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateReports(userID)

	log.FromContext(r.Context()).InfoContext(r.Context(), "Transaction created",
		"transaction_id", t.ID,
		log.FieldUserID, userID,
		log.FieldPayee, t.Payee,
		log.FieldAmount, t.Total)
	writeJSON(w, http.StatusCreated, toTransactionResponse(t))
}

// handleListTransactions lists the user's transactions, optionally
// bounded by from/to query dates. The range is half-open: from is
// included, to is not.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		s.metrics.recordAuthFailure()
		writeError(w, r, err)
		return
	}

	from, err := parseDateQuery(r, "from")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	to, err := parseDateQuery(r, "to")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	txs, err := s.svcs.Transactions.List(r.Context(), userID, from, to)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]transactionResponse, 0, len(txs))
	for i := range txs {
		out = append(out, toTransactionResponse(&txs[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		s.metrics.recordAuthFailure()
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	t, err := s.svcs.Transactions.Get(r.Context(), userID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(t))
}

type updateTransactionRequest struct {
	Total         *float64 `json:"total"`
	Date          *string  `json:"date"`
	Payee         *string  `json:"payee"`
	CategoryID    *int64   `json:"categoryID"`
	Notes         *string  `json:"notes"`
	IsRecurring   *bool    `json:"isRecurring"`
	RecurDate     *string  `json:"recurDate"`
	ExpenseType   *string  `json:"expenseType"`
	TaxRelated    *bool    `json:"taxRelated"`
	TravelRelated *bool    `json:"travelRelated"`
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		s.metrics.recordAuthFailure()
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	var req updateTransactionRequest
	if err := readJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	upd := services.TransactionUpdate{
		Total:         req.Total,
		Payee:         req.Payee,
		CategoryID:    req.CategoryID,
		Notes:         req.Notes,
		IsRecurring:   req.IsRecurring,
		ExpenseType:   req.ExpenseType,
		TaxRelated:    req.TaxRelated,
		TravelRelated: req.TravelRelated,
	}
	if req.Date != nil {
		d, err := time.Parse(dateLayout, *req.Date)
		if err != nil {
			writeBadRequest(w, "invalid date, want YYYY-MM-DD")
			return
		}
		upd.Date = &d
	}
	if req.RecurDate != nil {
		d, err := time.Parse(dateLayout, *req.RecurDate)
		if err != nil {
			writeBadRequest(w, "invalid recurDate, want YYYY-MM-DD")
			return
		}
		upd.RecurDate = &d
	}

	t, err := s.svcs.Transactions.Update(r.Context(), userID, id, upd)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateReports(userID)
	writeJSON(w, http.StatusOK, toTransactionResponse(t))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		s.metrics.recordAuthFailure()
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if err := s.svcs.Transactions.Delete(r.Context(), userID, id); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidateReports(userID)
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleExpenseStats(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		s.metrics.recordAuthFailure()
		writeError(w, r, err)
		return
	}

	key := fmt.Sprintf("stats:%d", userID)
	if stats, ok := s.stats.Get(key); ok {
		writeJSON(w, http.StatusOK, stats)
		return
	}

	stats, err := s.svcs.Transactions.ExpenseTypeStats(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.stats.Set(key, stats)
	writeJSON(w, http.StatusOK, stats)
}

// handleExpenseForecast projects monthly spending from the reference
// month forward. The months query parameter defaults to 3 and is
// capped at 36.
func (s *Server) handleExpenseForecast(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		s.metrics.recordAuthFailure()
		writeError(w, r, err)
		return
	}

	months := parseQueryInt(r, "months", s.forecastMonths)
	if months < 1 {
		months = 1
	}
	if months > 36 {
		months = 36
	}

	key := fmt.Sprintf("forecast:%d:%d", userID, months)
	if forecast, ok := s.forecasts.Get(key); ok {
		writeJSON(w, http.StatusOK, forecast)
		return
	}

	forecast, err := s.svcs.Transactions.Forecast(r.Context(), userID, time.Now().UTC(), months)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.forecasts.Set(key, forecast)
	writeJSON(w, http.StatusOK, forecast)
}
