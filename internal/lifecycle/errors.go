// Package lifecycle holds the pure decision rules for costume inventory items:
// which movements may follow which, what status a movement leaves an item in,
// and whether a person may borrow a given item. Nothing here touches storage.
package lifecycle

import (
	"errors"
	"fmt"
)

// Rejection codes.
const (
	CodeInvalid         = "invalid"
	CodeNotFound        = "not_found"
	CodeFirstMovement   = "first_movement"
	CodeRepeated        = "repeated_movement"
	CodeTerminal        = "terminal_state"
	CodeNotAllowed      = "not_allowed"
	CodeConflict        = "conflict"
	CodeGenderMismatch  = "gender_mismatch"
	CodePersonRequired  = "person_required"
	CodeUnavailable     = "unavailable"
	CodeNoRegistration  = "no_registration"
	CodeNotApproved     = "not_approved"
	CodeVehicleMismatch = "vehicle_mismatch"
	CodeSizeMismatch    = "size_mismatch"
	CodeAlreadyHolding  = "already_holding"
)

// ErrIntegrity marks a write that would break a ledger invariant even though
// validation accepted it. It indicates a bug, never bad input.
var ErrIntegrity = errors.New("integrity violation")

// Rejection is an expected, user-correctable refusal of a request. Nothing is
// written when an operation returns one.
type Rejection struct {
	Code   string
	Reason string
}

func (r *Rejection) Error() string {
	return r.Reason
}

// Reject returns a Rejection with a formatted reason.
func Reject(code, format string, args ...any) error {
	return &Rejection{Code: code, Reason: fmt.Sprintf(format, args...)}
}

// NotFound returns a not_found Rejection.
func NotFound(format string, args ...any) error {
	return Reject(CodeNotFound, format, args...)
}

// AsRejection unwraps err into a Rejection if it is one.
func AsRejection(err error) (*Rejection, bool) {
	var r *Rejection
	if errors.As(err, &r) {
		return r, true
	}
	return nil, false
}

// HasCode reports whether err is a Rejection with the given code.
func HasCode(err error, code string) bool {
	r, ok := AsRejection(err)
	return ok && r.Code == code
}
