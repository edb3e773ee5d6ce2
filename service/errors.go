package service

import (
	"errors"
)

// Sentinel errors for the core operation taxonomy. Repositories and services
// wrap these with context via fmt.Errorf("...: %w", ...); the dispatch layer
// matches them with errors.Is to pick user-facing messages.
var (
	// ErrInvalidInput indicates a malformed argument, such as a non-positive
	// amount or an option count outside the allowed range.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound indicates an unknown bet, option, round or user.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState indicates an operation against an entity in the wrong
	// lifecycle state, such as a wager against a locked bet.
	ErrInvalidState = errors.New("invalid state")

	// ErrInsufficientFunds indicates a reservation exceeding the available
	// balance at the moment of the atomic check.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrAlreadyResolved indicates a duplicate resolution attempt.
	ErrAlreadyResolved = errors.New("bet already resolved")

	// ErrNoActiveSession indicates an operation requiring an active round
	// when none exists.
	ErrNoActiveSession = errors.New("no active session")

	// ErrAlreadyActive indicates an attempt to start a round while one is
	// already active.
	ErrAlreadyActive = errors.New("session already active")

	// ErrUnavailable indicates a persistence backend failure. The in-flight
	// operation was aborted with no partial effect.
	ErrUnavailable = errors.New("storage unavailable")
)
