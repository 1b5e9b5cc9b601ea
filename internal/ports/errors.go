package ports

import "errors"

// Standard application-level errors. Adapters wrap underlying infrastructure
// errors with these so callers can branch without knowing the backend.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrTimeout            = errors.New("operation timed out")
	ErrConfigurationError = errors.New("invalid or missing configuration")

	// Quote source errors
	ErrQuoteUnavailable = errors.New("quote source is unavailable")
	ErrBadQuoteResponse = errors.New("quote source returned no usable ticker data")
	ErrUnknownSymbol    = errors.New("symbol not known to the quote source")

	// Row store errors
	ErrRowStoreRead  = errors.New("failed to read rows from the sheet")
	ErrRowStoreWrite = errors.New("failed to write cells to the sheet")
	ErrAuthExpired   = errors.New("sheet credentials expired or revoked")

	// Messaging errors
	ErrDeliveryFailed = errors.New("failed to deliver notification")

	// Archive errors
	ErrDuplicateEntry = errors.New("archive record already exists")
	ErrQueryFailed    = errors.New("archive query failed")
)
