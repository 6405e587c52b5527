package ledger

import (
	"errors"
	"strings"
)

// Revert reasons. Clients match on these markers, keep them stable.
const (
	ReasonNotOwner        = "Not record owner"
	ReasonNotAuthorized   = "Not authorized"
	ReasonScopeExceeded   = "Not authorized: scope exceeds grant"
	ReasonGrantExpired    = "Not authorized: grant expired"
	ReasonRecordNotFound  = "Record does not exist"
	ReasonInvalidProof    = "Invalid input proof"
	ReasonInvalidExpiry   = "Expiry must be in the future"
	ReasonInvalidVerifier = "Invalid verifier address"
)

var (
	ErrNotFound = errors.New("not found")
)

// RevertError is returned when a call is rejected by the contract.
type RevertError struct {
	Reason string
}

func (e *RevertError) Error() string {
	return "execution reverted: " + e.Reason
}

func revert(reason string) error {
	return &RevertError{Reason: reason}
}

// HasMarker reports whether err carries the given revert marker. Transport
// layers may flatten the error into text, so the message is inspected too.
func HasMarker(err error, marker string) bool {
	if err == nil {
		return false
	}
	var re *RevertError
	if errors.As(err, &re) && strings.Contains(re.Reason, marker) {
		return true
	}
	return strings.Contains(err.Error(), marker)
}
