// Package enrich defines the enrichment delegate contract. The engine never
// inspects how a result is computed (text model, OCR, transcript fetch); it
// only consumes the structured result or the error.
package enrich

import "context"

// Result is the structured output of one enrichment call. Every field is
// optional; absent fields leave the note's metadata unchanged.
type Result struct {
	Summary       string
	SuggestedTags []string
	QualityScore  *float64
}

// Enricher is implemented by enrichment delegates. Production and test
// implementations are interchangeable.
type Enricher interface {
	Enrich(ctx context.Context, body string) (*Result, error)
}

// Func adapts a plain function to the Enricher interface.
type Func func(ctx context.Context, body string) (*Result, error)

// Enrich calls f.
func (f Func) Enrich(ctx context.Context, body string) (*Result, error) {
	return f(ctx, body)
}
