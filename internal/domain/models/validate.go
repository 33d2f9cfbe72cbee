package models

import "errors"

// Validation sentinels. These are caller-input problems, detected before any
// mutation begins.
var (
	ErrUnknownParty           = errors.New("unknown party")
	ErrUnknownComponentStatus = errors.New("unknown component status")
	ErrSameParty              = errors.New("issuer and receiver cannot be the same person")
	ErrInvalidPairing         = errors.New("issuer and receiver must be the two opposite parties")
	ErrInvalidQuantity        = errors.New("quantity must be greater than zero")
)

// ValidatePairing enforces the two-party custody rule: issuer and receiver
// must be different and, since the party set has exactly two members, the
// receiver must be the issuer's counterpart.
func ValidatePairing(issuer, receiver Party) error {
	if issuer == receiver {
		return ErrSameParty
	}
	if issuer.Counterpart() != receiver {
		return ErrInvalidPairing
	}
	return nil
}

// ValidateQuantity rejects non-positive issue quantities.
func ValidateQuantity(qty int64) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	return nil
}
