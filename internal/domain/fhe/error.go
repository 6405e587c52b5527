package fhe

import (
	"errors"
	"fmt"
)

const (
	CodeRelayerUnavailable = "RELAYER_UNAVAILABLE"
	CodeChainMismatch      = "CHAIN_MISMATCH"
)

var (
	ErrUnknownHandle = errors.New("unknown ciphertext handle")
	ErrInvalidProof  = errors.New("invalid input proof")
	ErrEmptyInput    = errors.New("no values staged for encryption")
	ErrValueTooLarge = errors.New("value does not fit the requested bit width")
)

// Error is returned when an encryption instance cannot be constructed.
type Error struct {
	Code string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsRelayerUnavailable reports whether err means the encryption service
// cannot be reached for the requested network.
func IsRelayerUnavailable(err error) bool {
	var fe *Error
	return errors.As(err, &fe) && fe.Code == CodeRelayerUnavailable
}
