package core

// BudgetTemplate is a stamp for creating a budget with a preset category
// layout. Templates are read-only: cloning copies the rows, and later
// edits to the produced budget never touch the template.
type BudgetTemplate struct {
	ID          int64      `json:"templateID"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Categories  []Category `json:"categories"`
}

// CloneForUser stamps a new budget for the user from this template.
// Percentage-sized template rows re-derive their amounts against the
// supplied income; the total is recomputed from the cloned categories.
func (t *BudgetTemplate) CloneForUser(userID int64, month string, income float64) *Budget {
	b := &Budget{
		UserID: userID,
		Name:   t.Name,
		Month:  month,
		Income: income,
	}
	for _, row := range t.Categories {
		c := row // copy; the template row must stay untouched
		if c.SizedByPercentage() {
			c.SetPlannedPercentage(*row.PlannedPercent, income)
		}
		b.Categories = append(b.Categories, &c)
	}
	b.RecalculateTotal()
	return b
}

func pct(v float64) *float64 { return &v }

// DefaultTemplates returns the built-in budget templates offered to
// first-time users.
func DefaultTemplates() []BudgetTemplate {
	return []BudgetTemplate{
		{
			ID:          1,
			Name:        "50/30/20 Budget",
			Description: "Allocate 50% of income to needs, 30% to wants, and 20% to savings/debt.",
			Categories: []Category{
				{Name: "Needs", Type: "fixed", PlannedPercent: pct(50)},
				{Name: "Wants", Type: "variable", PlannedPercent: pct(30)},
				{Name: "Savings & Debt", Type: "savings", PlannedPercent: pct(20)},
			},
		},
		{
			ID:          2,
			Name:        "Zero-Based Budget",
			Description: "Assign every dollar a job so income minus expenses equals zero.",
		},
		{
			ID:          3,
			Name:        "Envelope Budget",
			Description: "Divide spending into specific categories with strict limits.",
			Categories: []Category{
				{Name: "Groceries", Type: "variable", Limit: 400, PlannedAmount: 400},
				{Name: "Dining Out", Type: "variable", Limit: 150, PlannedAmount: 150},
				{Name: "Transportation", Type: "fixed", Limit: 200, PlannedAmount: 200},
				{Name: "Entertainment", Type: "variable", Limit: 100, PlannedAmount: 100},
			},
		},
	}
}

// TemplateByID returns the built-in template with the given ID, or nil.
func TemplateByID(id int64) *BudgetTemplate {
	for _, t := range DefaultTemplates() {
		if t.ID == id {
			return &t
		}
	}
	return nil
}
