package core

import (
	"testing"
)

func testBudget() *Budget {
	return &Budget{
		ID:     1,
		UserID: 1,
		Name:   "March",
		Month:  "2024-03",
		Income: 3000,
	}
}

func strptr(s string) *string   { return &s }
func f64ptr(v float64) *float64 { return &v }

func TestBudgetTotalIsFullResum(t *testing.T) {
	b := testBudget()
	b.AddCategory(&Category{ID: 1, Name: "Rent", Type: "fixed", PlannedAmount: 1200})
	b.AddCategory(&Category{ID: 2, Name: "Food", Type: "variable", PlannedAmount: 400})

	if !floatEq(b.TotalPlanned, 1600) {
		t.Fatalf("TotalPlanned = %v, want 1600", b.TotalPlanned)
	}

	if ok := b.EditCategory(2, CategoryUpdate{PlannedAmount: f64ptr(500)}); !ok {
		t.Fatal("EditCategory() = false, want true")
	}
	if !floatEq(b.TotalPlanned, 1700) {
		t.Errorf("after edit TotalPlanned = %v, want 1700", b.TotalPlanned)
	}

	if ok := b.DeleteCategory(1); !ok {
		t.Fatal("DeleteCategory() = false, want true")
	}
	if !floatEq(b.TotalPlanned, 500) {
		t.Errorf("after delete TotalPlanned = %v, want 500", b.TotalPlanned)
	}

	// Recomputing from scratch matches the sum of what is left.
	var sum float64
	for _, c := range b.Categories {
		sum += c.PlannedAmount
	}
	if !floatEq(b.RecalculateTotal(), sum) {
		t.Errorf("RecalculateTotal() = %v, want %v", b.TotalPlanned, sum)
	}
}

func TestCategoryNotFoundSignals(t *testing.T) {
	b := testBudget()
	b.AddCategory(&Category{ID: 1, Name: "Rent", PlannedAmount: 1000})

	if ok := b.EditCategory(99, CategoryUpdate{Name: strptr("x")}); ok {
		t.Error("EditCategory(99) = true, want false for missing category")
	}
	if ok := b.DeleteCategory(99); ok {
		t.Error("DeleteCategory(99) = true, want false for missing category")
	}
	if !floatEq(b.TotalPlanned, 1000) {
		t.Errorf("TotalPlanned disturbed by missing-category ops: %v", b.TotalPlanned)
	}
}

func TestCategorySizingTransitions(t *testing.T) {
	t.Run("percentage round trip", func(t *testing.T) {
		c := &Category{ID: 1, Name: "Savings"}
		c.SetPlannedPercentage(20, 3000)
		if !c.SizedByPercentage() {
			t.Fatal("SizedByPercentage() = false after SetPlannedPercentage")
		}
		if !floatEq(c.PlannedAmount, 600) {
			t.Errorf("PlannedAmount = %v, want 600", c.PlannedAmount)
		}
	})

	t.Run("amount clears percentage", func(t *testing.T) {
		c := &Category{ID: 1, Name: "Savings"}
		c.SetPlannedPercentage(20, 3000)
		c.SetPlannedAmount(750)
		if c.SizedByPercentage() {
			t.Error("SizedByPercentage() = true after SetPlannedAmount")
		}
		if !floatEq(c.PlannedAmount, 750) {
			t.Errorf("PlannedAmount = %v, want 750", c.PlannedAmount)
		}
	})

	t.Run("income change follows percentage categories only", func(t *testing.T) {
		b := testBudget()
		pctCat := &Category{ID: 1, Name: "Savings"}
		pctCat.SetPlannedPercentage(10, b.Income)
		amtCat := &Category{ID: 2, Name: "Rent"}
		amtCat.SetPlannedAmount(1200)
		b.AddCategory(pctCat)
		b.AddCategory(amtCat)

		b.SetIncome(4000)
		if !floatEq(pctCat.PlannedAmount, 400) {
			t.Errorf("percentage category = %v, want 400 after income change", pctCat.PlannedAmount)
		}
		if !floatEq(amtCat.PlannedAmount, 1200) {
			t.Errorf("amount category = %v, want unchanged 1200", amtCat.PlannedAmount)
		}
		if !floatEq(b.TotalPlanned, 1600) {
			t.Errorf("TotalPlanned = %v, want 1600", b.TotalPlanned)
		}
	})

	t.Run("edit by percentage uses budget income", func(t *testing.T) {
		b := testBudget()
		b.AddCategory(&Category{ID: 1, Name: "Fun"})
		b.EditCategory(1, CategoryUpdate{PlannedPercent: f64ptr(15)})
		c := b.CategoryByID(1)
		if !floatEq(c.PlannedAmount, 450) {
			t.Errorf("PlannedAmount = %v, want 450 (15%% of 3000)", c.PlannedAmount)
		}
	})
}

func TestCompareCategoryToActual(t *testing.T) {
	tests := []struct {
		name       string
		planned    float64
		actual     float64
		wantStatus string
		wantPct    float64
	}{
		{"well under", 100, 50, StatusOnTrack, 50},
		{"exactly ninety percent", 100, 90, StatusOnTrack, 90},
		{"just over ninety percent", 100, 90.01, StatusNearLimit, 90.01},
		{"exactly at plan", 100, 100, StatusNearLimit, 100},
		{"a cent over", 100, 100.01, StatusOverBudget, 100.01},
		{"zero plan avoids divide by zero", 0, 25, StatusOverBudget, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Category{ID: 1, Name: "cat", PlannedAmount: tt.planned}
			got := CompareCategoryToActual(c, tt.actual)
			if got.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", got.Status, tt.wantStatus)
			}
			if !floatEq(got.PercentUsed, tt.wantPct) {
				t.Errorf("PercentUsed = %v, want %v", got.PercentUsed, tt.wantPct)
			}
			if !floatEq(got.Difference, tt.actual-tt.planned) {
				t.Errorf("Difference = %v, want %v", got.Difference, tt.actual-tt.planned)
			}
		})
	}
}

func TestBudgetCompare(t *testing.T) {
	b := testBudget()
	b.AddCategory(&Category{ID: 1, Name: "Rent", PlannedAmount: 1200})
	b.AddCategory(&Category{ID: 2, Name: "Food", PlannedAmount: 400})

	cmp := b.Compare(map[int64]float64{1: 1200, 2: 500})
	if !floatEq(cmp.TotalPlanned, 1600) {
		t.Errorf("TotalPlanned = %v, want 1600", cmp.TotalPlanned)
	}
	if !floatEq(cmp.TotalActual, 1700) {
		t.Errorf("TotalActual = %v, want 1700", cmp.TotalActual)
	}
	if !floatEq(cmp.TotalDifference, 100) {
		t.Errorf("TotalDifference = %v, want 100", cmp.TotalDifference)
	}
	if len(cmp.Categories) != 2 {
		t.Fatalf("Categories = %d, want 2", len(cmp.Categories))
	}
	if cmp.Categories[0].Status != StatusNearLimit {
		t.Errorf("rent status = %q, want near_limit", cmp.Categories[0].Status)
	}
	if cmp.Categories[1].Status != StatusOverBudget {
		t.Errorf("food status = %q, want over_budget", cmp.Categories[1].Status)
	}
}

func TestBudgetHealth(t *testing.T) {
	build := func(spent ...float64) (*Budget, map[int64]float64) {
		b := testBudget()
		spending := make(map[int64]float64)
		for i, s := range spent {
			id := int64(i + 1)
			b.AddCategory(&Category{ID: id, Name: "cat", PlannedAmount: 100})
			spending[id] = s
		}
		return b, spending
	}

	t.Run("healthy with no overruns", func(t *testing.T) {
		b, spending := build(50, 80, 90)
		got := b.Health(spending)
		if got.OverallStatus != HealthHealthy {
			t.Errorf("OverallStatus = %q, want healthy", got.OverallStatus)
		}
		if got.OnTrackCount != 3 {
			t.Errorf("OnTrackCount = %d, want 3", got.OnTrackCount)
		}
	})

	t.Run("caution when up to thirty percent over", func(t *testing.T) {
		// 1 of 4 over budget: 25% <= 30%
		b, spending := build(150, 50, 50, 50)
		got := b.Health(spending)
		if got.OverallStatus != HealthCaution {
			t.Errorf("OverallStatus = %q, want caution", got.OverallStatus)
		}
		if got.OverBudgetCount != 1 {
			t.Errorf("OverBudgetCount = %d, want 1", got.OverBudgetCount)
		}
	})

	t.Run("needs attention past the threshold", func(t *testing.T) {
		// 2 of 4 over budget: 50% > 30%
		b, spending := build(150, 150, 50, 50)
		got := b.Health(spending)
		if got.OverallStatus != HealthNeedsAttention {
			t.Errorf("OverallStatus = %q, want needs_attention", got.OverallStatus)
		}
	})

	t.Run("utilization can exceed one hundred", func(t *testing.T) {
		b, spending := build(150, 150)
		got := b.Health(spending)
		if !floatEq(got.Utilization, 150) {
			t.Errorf("Utilization = %v, want 150", got.Utilization)
		}
	})
}

func TestBudgetValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Budget)
		wantOK  bool
		wantMsg string
	}{
		{
			name:   "valid budget",
			mutate: func(b *Budget) { b.AddCategory(&Category{ID: 1, Name: "Rent", PlannedAmount: 100}) },
			wantOK: true,
		},
		{
			name:    "no categories",
			mutate:  func(b *Budget) {},
			wantOK:  false,
			wantMsg: "budget must have at least one category",
		},
		{
			name: "negative category amount",
			mutate: func(b *Budget) {
				b.AddCategory(&Category{ID: 1, Name: "Rent", PlannedAmount: -5})
			},
			wantOK: false,
		},
		{
			name: "over income is still valid",
			mutate: func(b *Budget) {
				b.AddCategory(&Category{ID: 1, Name: "Rent", PlannedAmount: 99999})
			},
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := testBudget()
			tt.mutate(b)
			ok, msg := b.Validate()
			if ok != tt.wantOK {
				t.Errorf("Validate() = %v (%q), want %v", ok, msg, tt.wantOK)
			}
			if tt.wantMsg != "" && msg != tt.wantMsg {
				t.Errorf("Validate() message = %q, want %q", msg, tt.wantMsg)
			}
		})
	}
}

func TestBudgetTemplates(t *testing.T) {
	t.Run("clone derives percentage categories from income", func(t *testing.T) {
		tpl := TemplateByID(1) // 50/30/20
		if tpl == nil {
			t.Fatal("TemplateByID(1) = nil")
		}
		b := tpl.CloneForUser(7, "2024-06", 4000)
		if b.UserID != 7 || b.Month != "2024-06" {
			t.Errorf("clone header = user %d month %q", b.UserID, b.Month)
		}
		if len(b.Categories) != 3 {
			t.Fatalf("clone has %d categories, want 3", len(b.Categories))
		}
		if !floatEq(b.Categories[0].PlannedAmount, 2000) {
			t.Errorf("needs = %v, want 2000", b.Categories[0].PlannedAmount)
		}
		if !floatEq(b.TotalPlanned, 4000) {
			t.Errorf("TotalPlanned = %v, want 4000", b.TotalPlanned)
		}
	})

	t.Run("clone does not alias template rows", func(t *testing.T) {
		tpl := TemplateByID(3)
		b := tpl.CloneForUser(1, "2024-06", 0)
		b.Categories[0].SetPlannedAmount(9999)
		if fresh := TemplateByID(3); !floatEq(fresh.Categories[0].PlannedAmount, 400) {
			t.Errorf("template row mutated: %v", fresh.Categories[0].PlannedAmount)
		}
	})

	t.Run("unknown template", func(t *testing.T) {
		if got := TemplateByID(99); got != nil {
			t.Errorf("TemplateByID(99) = %+v, want nil", got)
		}
	})
}
