package ledger

import "errors"

var (
	// ErrInvalidQuote rejects a non-positive quote or an empty ticker.
	ErrInvalidQuote = errors.New("ledger: quote must be positive and ticker non-empty")

	// ErrInvalidQuantity rejects a non-positive quantity.
	ErrInvalidQuantity = errors.New("ledger: quantity must be positive")

	// ErrInsufficientFunds rejects a buy whose cost exceeds the cash balance.
	// There are no partial fills.
	ErrInsufficientFunds = errors.New("ledger: insufficient funds")

	// ErrUnknownPosition rejects a sell for a ticker with no held position.
	ErrUnknownPosition = errors.New("ledger: no position held for ticker")
)
