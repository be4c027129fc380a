package storage

import "errors"

// Storage errors shared by every TransactionStore implementation.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when attempting to insert a transaction
	// whose tx_id already exists. Ledger rows are never updated in place.
	ErrDuplicateKey = errors.New("duplicate key: ledger rows cannot be replaced")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)
