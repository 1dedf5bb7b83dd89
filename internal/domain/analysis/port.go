package analysis

import "context"

// Analyzer port (interface for the generative-model gateway)
type Analyzer interface {
	Analyze(ctx context.Context, text string) (*Result, error)
}
