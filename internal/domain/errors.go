package domain

import "errors"

var (
	// ErrSubscriptionFailed is returned when subscription to contract logs fails
	ErrSubscriptionFailed = errors.New("subscription failed")

	// ErrDecodeMismatch is returned when a log matches a known event signature but
	// its topics or data do not follow the expected layout
	ErrDecodeMismatch = errors.New("event layout mismatch")

	// ErrTokenNotFound is returned when a token is not present in the ownership index
	ErrTokenNotFound = errors.New("token not found")

	// ErrTokenAlreadyExists is returned when attempting to index a token that already exists
	ErrTokenAlreadyExists = errors.New("token already exists")

	// ErrPendingMintNotFound is returned when no pending mint exists for a transaction hash
	ErrPendingMintNotFound = errors.New("pending mint not found")

	// ErrUserNotFound is returned when no user matches the lookup
	ErrUserNotFound = errors.New("user not found")

	// ErrAccountNotLinked is returned when a user has no linked social account credentials
	ErrAccountNotLinked = errors.New("social account not linked")

	// ErrTransactionReverted is returned when a submitted transaction is mined with a failed status
	ErrTransactionReverted = errors.New("transaction reverted")
)
