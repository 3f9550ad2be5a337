package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and provider clients
// return these (optionally wrapped) so services can translate them into
// domain errors.
//
// These represent factual states about resources, not validation failures.
// For validation errors (bad input, missing fields), use pkg/domain-errors.
var (
	// ErrNotFound: entity does not exist in the store or at the provider.
	ErrNotFound = errors.New("not found")
)
