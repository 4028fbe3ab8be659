package http

import (
	"net/http"

	"github.com/Garryb057/CS-451-Budget-App-Backend/internal/core"
	"github.com/Garryb057/CS-451-Budget-App-Backend/internal/log"
	"github.com/Garryb057/CS-451-Budget-App-Backend/internal/services"
)

type createBudgetRequest struct {
	Name       string                  `json:"name"`
	Month      string                  `json:"month"`
	Income     float64                 `json:"income"`
	Categories []createCategoryRequest `json:"categories"`
}

type createCategoryRequest struct {
	Name           string   `json:"name"`
	Type           string   `json:"type"`
	Limit          float64  `json:"categoryLimit"`
	PlannedAmount  *float64 `json:"plannedAmnt"`
	PlannedPercent *float64 `json:"plannedPercentage"`
}

// toCategory builds a category sized by exactly one authority. A
// percentage wins when both are supplied.
func (req createCategoryRequest) toCategory(income float64) *core.Category {
	c := &core.Category{
		Name:  req.Name,
		Type:  req.Type,
		Limit: req.Limit,
	}
	switch {
	case req.PlannedPercent != nil:
		c.SetPlannedPercentage(*req.PlannedPercent, income)
	case req.PlannedAmount != nil:
		c.SetPlannedAmount(*req.PlannedAmount)
	}
	return c
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		s.metrics.recordAuthFailure()
		writeError(w, r, err)
		return
	}

	var req createBudgetRequest
	if err := readJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	b := &core.Budget{
		UserID: userID,
		Name:   req.Name,
		Month:  req.Month,
		Income: req.Income,
	}
	for _, cr := range req.Categories {
		b.Categories = append(b.Categories, cr.toCategory(req.Income))
	}

	if err := s.svcs.Budgets.Create(r.Context(), b); err != nil {
		writeError(w, r, err)
		return
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "Budget created",
		log.FieldBudgetID, b.ID,
		log.FieldUserID, userID,
		log.FieldBudgetMonth, b.Month)
	writeJSON(w, http.StatusCreated, b)
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		s.metrics.recordAuthFailure()
		writeError(w, r, err)
		return
	}

	budgets, err := s.svcs.Budgets.List(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if budgets == nil {
		budgets = []core.Budget{}
	}
	writeJSON(w, http.StatusOK, budgets)
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
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

	b, err := s.svcs.Budgets.Get(r.Context(), userID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

type updateBudgetRequest struct {
	Name   *string  `json:"name"`
	Month  *string  `json:"month"`
	Income *float64 `json:"income"`
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
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

	var req updateBudgetRequest
	if err := readJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	b, err := s.svcs.Budgets.Update(r.Context(), userID, id, services.BudgetUpdate{
		Name:   req.Name,
		Month:  req.Month,
		Income: req.Income,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
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

	if err := s.svcs.Budgets.Delete(r.Context(), userID, id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type setBudgetIncomeRequest struct {
	Income float64 `json:"income"`
}

func (s *Server) handleSetBudgetIncome(w http.ResponseWriter, r *http.Request) {
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

	var req setBudgetIncomeRequest
	if err := readJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	b, err := s.svcs.Budgets.SetIncome(r.Context(), userID, id, req.Income)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleAddCategory(w http.ResponseWriter, r *http.Request) {
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

	var req createCategoryRequest
	if err := readJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	// Sizing against the budget income happens inside the service; the
	// income passed here only matters for the percentage branch and is
	// re-derived there.
	c := &core.Category{
		Name:           req.Name,
		Type:           req.Type,
		Limit:          req.Limit,
		PlannedPercent: req.PlannedPercent,
	}
	if req.PlannedPercent == nil && req.PlannedAmount != nil {
		c.SetPlannedAmount(*req.PlannedAmount)
	}

	b, err := s.svcs.Budgets.AddCategory(r.Context(), userID, id, c)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

type editCategoryRequest struct {
	Name           *string  `json:"name"`
	Type           *string  `json:"type"`
	Limit          *float64 `json:"categoryLimit"`
	PlannedAmount  *float64 `json:"plannedAmnt"`
	PlannedPercent *float64 `json:"plannedPercentage"`
}

func (s *Server) handleEditCategory(w http.ResponseWriter, r *http.Request) {
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
	cid, err := pathID(r, "cid")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	var req editCategoryRequest
	if err := readJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	b, err := s.svcs.Budgets.EditCategory(r.Context(), userID, id, cid, core.CategoryUpdate{
		Name:           req.Name,
		Type:           req.Type,
		Limit:          req.Limit,
		PlannedAmount:  req.PlannedAmount,
		PlannedPercent: req.PlannedPercent,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
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
	cid, err := pathID(r, "cid")
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	b, err := s.svcs.Budgets.DeleteCategory(r.Context(), userID, id, cid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleBudgetComparison(w http.ResponseWriter, r *http.Request) {
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

	cmp, err := s.svcs.Budgets.Compare(r.Context(), userID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}

func (s *Server) handleBudgetHealth(w http.ResponseWriter, r *http.Request) {
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

	health, err := s.svcs.Budgets.Health(r.Context(), userID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, health)
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, core.DefaultTemplates())
}

type budgetFromTemplateRequest struct {
	TemplateID int64   `json:"templateID"`
	Month      string  `json:"month"`
	Income     float64 `json:"income"`
}

func (s *Server) handleBudgetFromTemplate(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		s.metrics.recordAuthFailure()
		writeError(w, r, err)
		return
	}

	var req budgetFromTemplateRequest
	if err := readJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if _, _, err := services.MonthRange(req.Month); err != nil {
		writeBadRequest(w, "month must be YYYY-MM")
		return
	}

	b, err := s.svcs.Budgets.CreateFromTemplate(r.Context(), userID, req.TemplateID, req.Month, req.Income)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}
