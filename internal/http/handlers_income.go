package http

import (
	"net/http"
	"time"

	"github.com/Garryb057/CS-451-Budget-App-Backend/internal/core"
	"github.com/Garryb057/CS-451-Budget-App-Backend/internal/log"
	"github.com/Garryb057/CS-451-Budget-App-Backend/internal/services"
)

const dateLayout = "2006-01-02"

type incomeResponse struct {
	ID         int64   `json:"incomeID"`
	Name       string  `json:"name"`
	Amount     float64 `json:"amount"`
	Frequency  string  `json:"frequency"`
	CustomDays int     `json:"customDays,omitempty"`
	LastPaid   *string `json:"lastPaid"`
	Active     bool    `json:"active"`
	CreatedAt  string  `json:"createdAt"`
}

func toIncomeResponse(in *core.Income) incomeResponse {
	resp := incomeResponse{
		ID:         in.ID,
		Name:       in.Name,
		Amount:     in.Amount,
		Frequency:  in.Frequency,
		CustomDays: in.CustomDays,
		Active:     in.Active,
		CreatedAt:  in.CreatedAt.UTC().Format(time.RFC3339),
	}
	if in.LastPaid != nil {
		d := in.LastPaid.Format(dateLayout)
		resp.LastPaid = &d
	}
	return resp
}

type createIncomeRequest struct {
	Name       string  `json:"name"`
	Amount     float64 `json:"amount"`
	Frequency  string  `json:"frequency"`
	CustomDays int     `json:"customDays"`
	LastPaid   *string `json:"lastPaid"`
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		s.metrics.recordAuthFailure()
		writeError(w, r, err)
		return
	}

	var req createIncomeRequest
	if err := readJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	in := &core.Income{
		UserID:     userID,
		Name:       req.Name,
		Amount:     req.Amount,
		Frequency:  req.Frequency,
		CustomDays: req.CustomDays,
	}
	if req.LastPaid != nil {
		d, err := time.Parse(dateLayout, *req.LastPaid)
		if err != nil {
			writeBadRequest(w, "invalid lastPaid date, want YYYY-MM-DD")
			return
		}
		in.LastPaid = &d
	}

	if err := s.svcs.Incomes.Create(r.Context(), in); err != nil {
		writeError(w, r, err)
		return
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "Income created",
		log.FieldIncomeID, in.ID,
		log.FieldUserID, userID,
		log.FieldFrequency, in.Frequency)
	writeJSON(w, http.StatusCreated, toIncomeResponse(in))
}

func (s *Server) handleListIncomes(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		s.metrics.recordAuthFailure()
		writeError(w, r, err)
		return
	}

	incomes, err := s.svcs.Incomes.List(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]incomeResponse, 0, len(incomes))
	for i := range incomes {
		out = append(out, toIncomeResponse(&incomes[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetIncome(w http.ResponseWriter, r *http.Request) {
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

	in, err := s.svcs.Incomes.Get(r.Context(), userID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toIncomeResponse(in))
}

type updateIncomeRequest struct {
	Name       *string  `json:"name"`
	Amount     *float64 `json:"amount"`
	Frequency  *string  `json:"frequency"`
	CustomDays *int     `json:"customDays"`
	LastPaid   *string  `json:"lastPaid"`
}

func (s *Server) handleUpdateIncome(w http.ResponseWriter, r *http.Request) {
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

	var req updateIncomeRequest
	if err := readJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	upd := services.IncomeUpdate{
		Name:       req.Name,
		Amount:     req.Amount,
		Frequency:  req.Frequency,
		CustomDays: req.CustomDays,
	}
	if req.LastPaid != nil {
		d, err := time.Parse(dateLayout, *req.LastPaid)
		if err != nil {
			writeBadRequest(w, "invalid lastPaid date, want YYYY-MM-DD")
			return
		}
		upd.LastPaid = &d
	}

	in, err := s.svcs.Incomes.Update(r.Context(), userID, id, upd)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toIncomeResponse(in))
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
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

	if err := s.svcs.Incomes.Delete(r.Context(), userID, id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleDeactivateIncome(w http.ResponseWriter, r *http.Request) {
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

	if err := s.svcs.Incomes.Deactivate(r.Context(), userID, id); err != nil {
		writeError(w, r, err)
		return
	}

	in, err := s.svcs.Incomes.Get(r.Context(), userID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toIncomeResponse(in))
}

type paydaysResponse struct {
	IncomeID int64    `json:"incomeID"`
	Paydays  []string `json:"paydays"`
}

// handleIncomePaydays projects upcoming paydays from today. The count
// query parameter defaults to 3 and is capped at 24.
func (s *Server) handleIncomePaydays(w http.ResponseWriter, r *http.Request) {
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

	count := parseQueryInt(r, "count", 3)
	if count < 1 {
		count = 1
	}
	if count > 24 {
		count = 24
	}

	paydays, err := s.svcs.Incomes.UpcomingPaydays(r.Context(), userID, id, time.Now().UTC(), count)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := paydaysResponse{IncomeID: id, Paydays: make([]string, 0, len(paydays))}
	for _, d := range paydays {
		out.Paydays = append(out.Paydays, d.Format(dateLayout))
	}
	writeJSON(w, http.StatusOK, out)
}

type calculateMonthlyRequest struct {
	Incomes []struct {
		Amount    float64 `json:"amount"`
		Frequency string  `json:"frequency"`
	} `json:"incomes"`
}

type calculateMonthlyResponse struct {
	TotalMonthly float64 `json:"totalMonthly"`
}

// handleCalculateMonthly normalizes incomes to a monthly total. With a
// request body the supplied list is used as-is; without one the user's
// stored incomes are rolled up.
func (s *Server) handleCalculateMonthly(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		s.metrics.recordAuthFailure()
		writeError(w, r, err)
		return
	}

	var req calculateMonthlyRequest
	if r.ContentLength != 0 {
		if err := readJSON(w, r, &req); err != nil {
			writeBadRequest(w, err.Error())
			return
		}
	}

	var total float64
	if len(req.Incomes) > 0 {
		incomes := make([]core.Income, 0, len(req.Incomes))
		for _, it := range req.Incomes {
			incomes = append(incomes, core.Income{Amount: it.Amount, Frequency: it.Frequency})
		}
		total = core.TotalMonthlyIncome(incomes)
	} else {
		total, err = s.svcs.Incomes.TotalMonthly(r.Context(), userID)
		if err != nil {
			writeError(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, calculateMonthlyResponse{TotalMonthly: total})
}
