package models

import "errors"

var (
	// ErrNotFound indicates the requested row does not exist or is not visible to the caller.
	ErrNotFound = errors.New("not found")
	// ErrInsufficientFunds indicates a debit larger than the current balance.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrEmptyBalance indicates a spend attempted against a zero balance.
	ErrEmptyBalance = errors.New("balance is empty")
	// ErrRateLimited indicates the per-device spend window is exhausted.
	ErrRateLimited = errors.New("rate limited")
	// ErrForbidden indicates the caller does not own the resource and is not an admin.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidCredentials indicates a failed email/password check.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrPairingCode indicates an unknown, used, or expired pairing code.
	ErrPairingCode = errors.New("invalid pairing code")
	// ErrConflict indicates the row is not in a state that allows the transition.
	ErrConflict = errors.New("conflict")
)
