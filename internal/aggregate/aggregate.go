// Package aggregate folds transactions into per-month category totals for
// charts. Everything here is a pure function of its input.
package aggregate

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"finsight/internal/models"
)

// MonthLayout is the label format of CategoryCosts keys.
const MonthLayout = "Jan 2006"

// SubcategoryTotal sums one subcategory and keeps its contributing transactions.
type SubcategoryTotal struct {
	Total        decimal.Decimal      `json:"total"`
	Transactions []models.Transaction `json:"transactions"`
}

// CategoryTotal sums one category within a month.
type CategoryTotal struct {
	Total         decimal.Decimal              `json:"total"`
	Subcategories map[string]*SubcategoryTotal `json:"subcategories,omitempty"`
}

// CategoryCosts is keyed by month label, then category.
type CategoryCosts map[string]map[string]*CategoryTotal

// Classifier decides which categories are counted and with which sign.
type Classifier struct {
	cost   map[string]struct{}
	income map[string]struct{}
}

// NewClassifier builds a Classifier from the configured category lists.
func NewClassifier(costCategories, incomeCategories []string) Classifier {
	c := Classifier{
		cost:   make(map[string]struct{}, len(costCategories)),
		income: make(map[string]struct{}, len(incomeCategories)),
	}
	for _, name := range costCategories {
		c.cost[name] = struct{}{}
	}
	for _, name := range incomeCategories {
		c.income[name] = struct{}{}
	}
	return c
}

// IsCost reports whether category counts as spending.
func (c Classifier) IsCost(category string) bool {
	_, ok := c.cost[category]
	return ok
}

// IsIncome reports whether category counts as income.
func (c Classifier) IsIncome(category string) bool {
	_, ok := c.income[category]
	return ok
}

// MonthLabel returns the CategoryCosts key for t, using its UTC month.
func MonthLabel(t time.Time) string {
	return t.UTC().Format(MonthLayout)
}

// Monthly aggregates transactions by month, category and subcategory. Zero
// amounts and categories that are neither cost nor income are skipped; income
// amounts are negated so they net against costs.
func Monthly(transactions []models.Transaction, cls Classifier) CategoryCosts {
	costs := CategoryCosts{}
	for _, tx := range transactions {
		if tx.Amount.IsZero() {
			continue
		}

		amount := tx.Amount
		switch {
		case cls.IsIncome(tx.Category):
			amount = amount.Neg()
		case cls.IsCost(tx.Category):
		default:
			continue
		}

		month := MonthLabel(tx.Date)
		categories, ok := costs[month]
		if !ok {
			categories = map[string]*CategoryTotal{}
			costs[month] = categories
		}
		total, ok := categories[tx.Category]
		if !ok {
			total = &CategoryTotal{Total: decimal.Zero}
			categories[tx.Category] = total
		}
		total.Total = total.Total.Add(amount)

		if tx.Subcategory == "" {
			continue
		}
		if total.Subcategories == nil {
			total.Subcategories = map[string]*SubcategoryTotal{}
		}
		sub, ok := total.Subcategories[tx.Subcategory]
		if !ok {
			sub = &SubcategoryTotal{Total: decimal.Zero}
			total.Subcategories[tx.Subcategory] = sub
		}
		sub.Total = sub.Total.Add(amount)
		sub.Transactions = append(sub.Transactions, tx)
	}
	return costs
}

// MonthTotal is the net of all categories in one month.
type MonthTotal struct {
	Month string          `json:"month"`
	Total decimal.Decimal `json:"total"`
}

// MonthTotals returns per-month net totals in chronological order.
func MonthTotals(costs CategoryCosts) []MonthTotal {
	type keyed struct {
		at time.Time
		MonthTotal
	}
	rows := make([]keyed, 0, len(costs))
	for month, categories := range costs {
		at, err := time.Parse(MonthLayout, month)
		if err != nil {
			continue
		}
		total := decimal.Zero
		for _, c := range categories {
			total = total.Add(c.Total)
		}
		rows = append(rows, keyed{at: at, MonthTotal: MonthTotal{Month: month, Total: total}})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].at.Before(rows[j].at) })

	out := make([]MonthTotal, len(rows))
	for i, r := range rows {
		out[i] = r.MonthTotal
	}
	return out
}
