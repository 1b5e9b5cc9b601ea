package ports

import "context"

// QuoteProvider is the boundary to the market price source.
type QuoteProvider interface {
	// LastPrice returns the last traded price for a symbol. Transport
	// failures and malformed responses are both returned as errors; the
	// caller treats every error as transient and retries on its next cycle.
	LastPrice(ctx context.Context, symbol string) (float64, error)
}
