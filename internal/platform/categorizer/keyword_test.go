package categorizer_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mintflow/syncd/internal/platform/categorizer"
)

func TestKeywordCategorizer_Classify(t *testing.T) {
	c := categorizer.NewKeywordCategorizer()

	tests := []struct {
		text            string
		wantCategory    string
		wantSubcategory string
	}{
		{"STARBUCKS STORE 1234", "Food & Dining", "Coffee Shops"},
		{"WHOLE FOODS MKT #123", "Food & Dining", "Groceries"},
		{"AMAZON.COM*AB12CD", "Shopping", "Online"},
		{"SHELL OIL 5740", "Transportation", "Gas"},
		{"UBER *TRIP", "Transportation", "Rideshare"},
		{"Netflix.com", "Entertainment", "Streaming"},
		{"ATM WITHDRAWAL 0433", "Cash & ATM", "ATM"},
		{"ACME CORP PAYROLL", "Income", "Salary"},
		{"CITY ELECTRIC UTILITY", "Bills & Utilities", "Utilities"},
		{"APARTMENT RENT MARCH", "Bills & Utilities", "Rent"},
		{"CVS/PHARMACY #9876", "Health & Fitness", "Medical"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			cls, err := c.Classify(context.Background(), tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCategory, cls.Category)
			assert.Equal(t, tt.wantSubcategory, cls.Subcategory)
			assert.Equal(t, 0.5, cls.Confidence)
		})
	}
}

func TestKeywordCategorizer_Classify_CaseInsensitive(t *testing.T) {
	c := categorizer.NewKeywordCategorizer()

	cls, err := c.Classify(context.Background(), "starbucks downtown")

	require.NoError(t, err)
	assert.Equal(t, "Food & Dining", cls.Category)
}

func TestKeywordCategorizer_Classify_NoMatch(t *testing.T) {
	c := categorizer.NewKeywordCategorizer()

	cls, err := c.Classify(context.Background(), "UNRECOGNIZABLE MERCHANT 42")

	require.NoError(t, err)
	assert.Equal(t, "Other", cls.Category)
	assert.Empty(t, cls.Subcategory)
	assert.Zero(t, cls.Confidence)
}

func TestKeywordCategorizer_Classify_FirstRuleWins(t *testing.T) {
	c := categorizer.NewKeywordCategorizer()

	// "COFFEE" sits above "RESTAURANT" in the rule table.
	cls, err := c.Classify(context.Background(), "COFFEE RESTAURANT")

	require.NoError(t, err)
	assert.Equal(t, "Coffee Shops", cls.Subcategory)
}
