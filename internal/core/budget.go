package core

import "fmt"

// Category is one spending bucket inside a budget. Its planned sizing is
// either an absolute amount or a percentage of the budget's income,
// never both as independent authorities: SetPlannedAmount clears the
// percentage, SetPlannedPercentage keeps the percentage authoritative
// and caches the derived amount. Mutate sizing only through those
// methods so the two fields cannot drift apart.
type Category struct {
	ID             int64    `json:"categoryID"`
	Name           string   `json:"name"`
	Type           string   `json:"type"`
	Limit          float64  `json:"categoryLimit"`
	PlannedAmount  float64  `json:"plannedAmnt"`
	PlannedPercent *float64 `json:"plannedPercentage,omitempty"`
}

// SetPlannedAmount sizes the category by an absolute dollar amount and
// clears percentage authority.
func (c *Category) SetPlannedAmount(amount float64) {
	c.PlannedAmount = amount
	c.PlannedPercent = nil
}

// SetPlannedPercentage sizes the category as a percentage of the budget
// income; the derived amount is recomputed whenever either side changes.
func (c *Category) SetPlannedPercentage(percent, budgetIncome float64) {
	p := percent
	c.PlannedPercent = &p
	c.PlannedAmount = percent / 100 * budgetIncome
}

// SizedByPercentage reports whether the percentage is the source of
// truth for this category's planned amount.
func (c *Category) SizedByPercentage() bool {
	return c.PlannedPercent != nil
}

// Budget groups categories for one user and month. TotalPlanned is a
// derived field: it is always the full re-sum of the category planned
// amounts, recomputed after every mutation rather than patched
// incrementally, so a failed edit can never leave drift behind.
type Budget struct {
	ID           int64       `json:"budgetID"`
	UserID       int64       `json:"userID"`
	Name         string      `json:"name"`
	Month        string      `json:"month"` // YYYY-MM
	Income       float64     `json:"income"`
	TotalPlanned float64     `json:"totalPlannedAmnt"`
	Categories   []*Category `json:"categories"`
}

// RecalculateTotal re-sums every category's planned amount and stores
// the result as the budget total.
func (b *Budget) RecalculateTotal() float64 {
	var total float64
	for _, c := range b.Categories {
		total += c.PlannedAmount
	}
	b.TotalPlanned = total
	return total
}

// CategoryByID returns the category with the given ID, or nil.
func (b *Budget) CategoryByID(id int64) *Category {
	for _, c := range b.Categories {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// AddCategory appends a category and recomputes the budget total.
func (b *Budget) AddCategory(c *Category) {
	b.Categories = append(b.Categories, c)
	b.RecalculateTotal()
}

// CategoryUpdate carries a partial category edit. Nil fields keep their
// prior value; supplying both sizings in one update lets the percentage
// win, matching the sizing transition order.
type CategoryUpdate struct {
	Name           *string
	Type           *string
	Limit          *float64
	PlannedAmount  *float64
	PlannedPercent *float64
}

// EditCategory applies the supplied fields to the category and
// recomputes the total. Returns false when the category is absent; the
// budget is untouched in that case.
func (b *Budget) EditCategory(id int64, upd CategoryUpdate) bool {
	c := b.CategoryByID(id)
	if c == nil {
		return false
	}
	if upd.Name != nil {
		c.Name = *upd.Name
	}
	if upd.Type != nil {
		c.Type = *upd.Type
	}
	if upd.Limit != nil {
		c.Limit = *upd.Limit
	}
	if upd.PlannedAmount != nil {
		c.SetPlannedAmount(*upd.PlannedAmount)
	}
	if upd.PlannedPercent != nil {
		c.SetPlannedPercentage(*upd.PlannedPercent, b.Income)
	}
	b.RecalculateTotal()
	return true
}

// DeleteCategory removes the category by ID and recomputes the total.
// Returns false when the category is absent.
func (b *Budget) DeleteCategory(id int64) bool {
	for i, c := range b.Categories {
		if c.ID == id {
			b.Categories = append(b.Categories[:i], b.Categories[i+1:]...)
			b.RecalculateTotal()
			return true
		}
	}
	return false
}

// SetIncome updates the budget income, re-derives every
// percentage-sized category's amount against it, and recomputes the
// total. Dollar-sized categories are untouched.
func (b *Budget) SetIncome(income float64) {
	b.Income = income
	for _, c := range b.Categories {
		if c.SizedByPercentage() {
			c.SetPlannedPercentage(*c.PlannedPercent, income)
		}
	}
	b.RecalculateTotal()
}

// Validate checks the budget-level invariants. Exceeding income is
// allowed; over-allocation stays observable through the utilization
// percentage instead of blocking the save.
func (b *Budget) Validate() (bool, string) {
	if b.TotalPlanned < 0 {
		return false, "total planned amount cannot be negative"
	}
	if len(b.Categories) == 0 {
		return false, "budget must have at least one category"
	}
	for _, c := range b.Categories {
		if c.PlannedAmount < 0 {
			return false, fmt.Sprintf("category %q cannot have a negative amount", c.Name)
		}
	}
	return true, "budget is valid"
}

// Category comparison statuses.
const (
	StatusOnTrack    = "on_track"
	StatusNearLimit  = "near_limit"
	StatusOverBudget = "over_budget"
)

// Budget health statuses.
const (
	HealthHealthy        = "healthy"
	HealthCaution        = "caution"
	HealthNeedsAttention = "needs_attention"
)

// CategoryComparison holds planned-versus-actual figures for one
// category.
type CategoryComparison struct {
	CategoryID  int64   `json:"categoryID"`
	Name        string  `json:"name"`
	Planned     float64 `json:"planned"`
	Actual      float64 `json:"actual"`
	Difference  float64 `json:"difference"`
	PercentUsed float64 `json:"percentage_used"`
	Status      string  `json:"status"`
}

// CompareCategoryToActual scores actual spend against the plan. The
// boundaries are inclusive on the low side: spending exactly 90% of the
// plan is still on track, spending exactly the plan is near the limit.
func CompareCategoryToActual(c *Category, actual float64) CategoryComparison {
	planned := c.PlannedAmount

	var pctUsed float64
	if planned > 0 {
		pctUsed = round2(actual / planned * 100)
	}

	status := StatusOverBudget
	switch {
	case actual <= planned*0.9:
		status = StatusOnTrack
	case actual <= planned:
		status = StatusNearLimit
	}

	return CategoryComparison{
		CategoryID:  c.ID,
		Name:        c.Name,
		Planned:     planned,
		Actual:      actual,
		Difference:  actual - planned,
		PercentUsed: pctUsed,
		Status:      status,
	}
}

// BudgetComparison aggregates planned-versus-actual across a whole
// budget. Spending comes from the caller, keyed by category ID; the
// allocator never derives it from raw transactions itself.
type BudgetComparison struct {
	BudgetID        int64                `json:"budgetID"`
	Name            string               `json:"name"`
	Month           string               `json:"month"`
	Income          float64              `json:"income"`
	TotalPlanned    float64              `json:"total_planned"`
	TotalActual     float64              `json:"total_actual"`
	TotalDifference float64              `json:"total_difference"`
	Categories      []CategoryComparison `json:"categories"`
}

// Compare builds the full planned-versus-actual report. Categories
// missing from spending count as zero actual spend.
func (b *Budget) Compare(spending map[int64]float64) BudgetComparison {
	cmp := BudgetComparison{
		BudgetID: b.ID,
		Name:     b.Name,
		Month:    b.Month,
		Income:   b.Income,
	}
	for _, c := range b.Categories {
		cc := CompareCategoryToActual(c, spending[c.ID])
		cmp.Categories = append(cmp.Categories, cc)
		cmp.TotalPlanned += cc.Planned
		cmp.TotalActual += cc.Actual
	}
	cmp.TotalDifference = cmp.TotalActual - cmp.TotalPlanned
	return cmp
}

// HealthSummary condenses a comparison into an overall status. The
// thresholds count over-budget categories, not spend amounts: none is
// healthy, up to 30% of categories is caution, more needs attention.
type HealthSummary struct {
	OverallStatus   string  `json:"overall_status"`
	OnTrackCount    int     `json:"on_track_count"`
	OverBudgetCount int     `json:"over_budget_count"`
	TotalCategories int     `json:"total_categories"`
	Utilization     float64 `json:"budget_utilization"`
}

// Health summarizes budget health from the caller-supplied spending map.
func (b *Budget) Health(spending map[int64]float64) HealthSummary {
	cmp := b.Compare(spending)

	var onTrack, overBudget int
	for _, c := range cmp.Categories {
		switch c.Status {
		case StatusOnTrack:
			onTrack++
		case StatusOverBudget:
			overBudget++
		}
	}
	total := len(cmp.Categories)

	status := HealthNeedsAttention
	switch {
	case overBudget == 0:
		status = HealthHealthy
	case float64(overBudget) <= float64(total)*0.3:
		status = HealthCaution
	}

	var utilization float64
	if cmp.TotalPlanned > 0 {
		utilization = round2(cmp.TotalActual / cmp.TotalPlanned * 100)
	}

	return HealthSummary{
		OverallStatus:   status,
		OnTrackCount:    onTrack,
		OverBudgetCount: overBudget,
		TotalCategories: total,
		Utilization:     utilization,
	}
}
