package ports

import "context"

// Classification is the result of classifying a transaction description.
// Confidence is advisory only; the reconciler stores the returned category
// regardless of its value.
type Classification struct {
	Category    string
	Subcategory string
	Confidence  float64
}

// Categorizer assigns a spending category to free-text transaction
// descriptions. Two implementations exist: a remote model-backed one and a
// keyword-rule fallback; reconciliation is agnostic to which is wired in.
type Categorizer interface {
	Classify(ctx context.Context, text string) (Classification, error)
}
