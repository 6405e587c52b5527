package vaccine

import (
	"errors"
)

var (
	// ErrUnavailable means a required collaborator (encryption instance,
	// signer or contract binding) is missing. Nothing was submitted.
	ErrUnavailable = errors.New("operation unavailable: encryption instance, signer or contract binding missing")

	ErrInvalidPayload  = errors.New("invalid vaccine payload")
	ErrInvalidRecordID = errors.New("invalid record id")
	ErrInvalidAddress  = errors.New("invalid verifier address")
	ErrInvalidScope    = errors.New("invalid scope mask")
	ErrInvalidDuration = errors.New("authorization duration must be positive")

	ErrNotRecordOwner = errors.New("authorization rejected: only the record owner can authorize verifiers, select one of your own records")
	ErrNotAuthorized  = errors.New("decryption rejected: you must be authorized first, ask the record owner to authorize your address")
)
