package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: grant, client, or user does not exist in the store
// - ErrExpired: authorization code or refresh token past its expiry
// - ErrAlreadyUsed: grant already consumed (replayed code or rotated token)
// - ErrUnavailable: backing store temporarily unreachable
//
// For validation errors (bad input, missing parameters), use
// pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrExpired     = errors.New("expired")
	ErrAlreadyUsed = errors.New("already used")
	ErrUnavailable = errors.New("unavailable")
)
