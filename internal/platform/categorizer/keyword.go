// Package categorizer provides the two transaction classifier
// implementations: a local keyword-rule engine and a remote model-backed
// HTTP client.
package categorizer

import (
	"context"
	"strings"

	"github.com/mintflow/syncd/internal/core/ports"
)

type rule struct {
	keywords    []string
	category    string
	subcategory string
}

// Rules are checked in order; the first keyword hit wins. More specific
// merchants sit above generic terms.
var defaultRules = []rule{
	{[]string{"STARBUCKS", "COFFEE"}, "Food & Dining", "Coffee Shops"},
	{[]string{"WHOLE FOODS", "GROCER", "SAFEWAY", "TRADER JOE"}, "Food & Dining", "Groceries"},
	{[]string{"RESTAURANT", "PIZZA", "BURGER", "DOORDASH", "GRUBHUB"}, "Food & Dining", "Restaurants"},
	{[]string{"AMAZON", "EBAY", "ETSY"}, "Shopping", "Online"},
	{[]string{"TARGET", "WALMART", "COSTCO"}, "Shopping", "Retail"},
	{[]string{"SHELL", "CHEVRON", "EXXON", "GAS STATION"}, "Transportation", "Gas"},
	{[]string{"UBER", "LYFT", "TAXI"}, "Transportation", "Rideshare"},
	{[]string{"PARKING", "TRANSIT", "METRO"}, "Transportation", "Transit"},
	{[]string{"NETFLIX", "SPOTIFY", "HULU", "DISNEY+"}, "Entertainment", "Streaming"},
	{[]string{"CINEMA", "THEATRE", "TICKETMASTER"}, "Entertainment", "Events"},
	{[]string{"ATM", "WITHDRAWAL"}, "Cash & ATM", "ATM"},
	{[]string{"PAYCHECK", "PAYROLL", "DIRECT DEP", "SALARY"}, "Income", "Salary"},
	{[]string{"ELECTRIC", "WATER", "UTILITY", "INTERNET", "COMCAST"}, "Bills & Utilities", "Utilities"},
	{[]string{"RENT", "MORTGAGE"}, "Bills & Utilities", "Rent"},
	{[]string{"PHARMACY", "CVS", "WALGREENS", "CLINIC", "DENTAL"}, "Health & Fitness", "Medical"},
	{[]string{"GYM", "FITNESS"}, "Health & Fitness", "Gym"},
	{[]string{"AIRLINE", "HOTEL", "AIRBNB", "DELTA", "UNITED"}, "Travel", "Travel"},
}

// KeywordCategorizer classifies descriptions with an ordered keyword table.
// It never fails, which makes it the fallback when no remote model is
// configured.
type KeywordCategorizer struct {
	rules []rule
}

// NewKeywordCategorizer creates a categorizer with the built-in rule table.
func NewKeywordCategorizer() *KeywordCategorizer {
	return &KeywordCategorizer{rules: defaultRules}
}

var _ ports.Categorizer = (*KeywordCategorizer)(nil)

// Classify returns the first matching rule's category, or "Other" with zero
// confidence when nothing matches.
func (c *KeywordCategorizer) Classify(_ context.Context, text string) (ports.Classification, error) {
	upper := strings.ToUpper(text)
	for _, r := range c.rules {
		for _, kw := range r.keywords {
			if strings.Contains(upper, kw) {
				return ports.Classification{
					Category:    r.category,
					Subcategory: r.subcategory,
					Confidence:  0.5,
				}, nil
			}
		}
	}
	return ports.Classification{Category: "Other"}, nil
}
