// Package rules rewrites transaction descriptors using a user's ordered rule list.
package rules

import (
	"sort"
	"strings"

	"finsight/internal/models"
)

// Result is the outcome of applying a rule list to one transaction.
type Result struct {
	Name        string
	Category    string
	Subcategory string

	// RuleID is the id of the first matching rule, nil when nothing matched.
	RuleID *uint
}

// Matched reports whether a rule rewrote the input.
func (r Result) Matched() bool {
	return r.RuleID != nil
}

// FieldMatches reports whether value satisfies a single match field: an empty
// pattern always matches, otherwise the pattern must be a case-insensitive
// substring of value.
func FieldMatches(pattern, value string) bool {
	if pattern == "" {
		return true
	}
	return strings.Contains(strings.ToLower(value), strings.ToLower(pattern))
}

// Matches reports whether all three match fields of rule hold for the input.
func Matches(rule *models.Rule, name, category, subcategory string) bool {
	return FieldMatches(rule.Name, name) &&
		FieldMatches(rule.Category, category) &&
		FieldMatches(rule.Subcategory, subcategory)
}

// Apply scans rules in order and rewrites the input with the first match.
// rules must already be in evaluation order (see Sort).
func Apply(name, category, subcategory string, rules []models.Rule) Result {
	out := Result{Name: name, Category: category, Subcategory: subcategory}
	for i := range rules {
		rule := &rules[i]
		if !Matches(rule, name, category, subcategory) {
			continue
		}
		if rule.NewName != "" {
			out.Name = rule.NewName
		}
		if rule.NewCategory != "" {
			out.Category = rule.NewCategory
		}
		if rule.NewSubcategory != "" {
			out.Subcategory = rule.NewSubcategory
		}
		id := rule.ID
		out.RuleID = &id
		return out
	}
	return out
}

// Sort orders rules by serial, breaking ties by id.
func Sort(rules []models.Rule) {
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].Serial != rules[j].Serial {
			return rules[i].Serial < rules[j].Serial
		}
		return rules[i].ID < rules[j].ID
	})
}

// OrderClause is the SQL ordering matching Sort.
const OrderClause = "serial ASC, id ASC"
