package lifecycle

import (
	"strings"

	"github.com/erazemk/kostumi/internal/model"
)

// allowed maps the kind of the previous movement to the kinds that may follow it.
// Terminal kinds have no entry.
var allowed = map[model.MovementKind][]model.MovementKind{
	model.KindIntake:      {model.KindLoan, model.KindMaintenance, model.KindDiscard, model.KindLoss},
	model.KindLoan:        {model.KindReturn, model.KindLoss},
	model.KindReturn:      {model.KindLoan, model.KindMaintenance, model.KindDiscard, model.KindLoss},
	model.KindMaintenance: {model.KindReturn, model.KindDiscard, model.KindLoss},
}

var resulting = map[model.MovementKind]model.Status{
	model.KindIntake:      model.StatusAvailable,
	model.KindLoan:        model.StatusLoaned,
	model.KindReturn:      model.StatusAvailable,
	model.KindMaintenance: model.StatusMaintenance,
	model.KindDiscard:     model.StatusDiscarded,
	model.KindLoss:        model.StatusLost,
}

// Terminal reports whether no movement may follow kind.
func Terminal(kind model.MovementKind) bool {
	return kind == model.KindDiscard || kind == model.KindLoss
}

// Allowed returns the kinds that may follow previous.
func Allowed(previous model.MovementKind) []model.MovementKind {
	return allowed[previous]
}

// StatusFor returns the item status a movement of the given kind leaves behind.
func StatusFor(kind model.MovementKind) model.Status {
	return resulting[kind]
}

// Validate decides whether a movement of kind proposed may follow the item's
// previous movement (nil when the ledger is empty) and returns the resulting
// item status.
func Validate(previous *model.MovementKind, proposed model.MovementKind) (model.Status, error) {
	if !proposed.Valid() {
		return "", Reject(CodeInvalid, "unknown movement kind %q", proposed)
	}

	if previous == nil {
		if proposed != model.KindIntake {
			return "", Reject(CodeFirstMovement, "first movement must be intake, got %s", proposed)
		}
		return StatusFor(proposed), nil
	}

	prev := *previous
	if proposed == prev {
		return "", Reject(CodeRepeated, "movement must differ from previous (%s)", prev)
	}
	if Terminal(prev) {
		return "", Reject(CodeTerminal, "item in terminal state (%s), no further movement", StatusFor(prev))
	}

	next := Allowed(prev)
	for _, k := range next {
		if k == proposed {
			return StatusFor(proposed), nil
		}
	}
	return "", Reject(CodeNotAllowed, "movement %s not in allowed set for current state %s (allowed: %s)",
		proposed, StatusFor(prev), joinKinds(next))
}

// ValidateLoanGender rejects a loan whose borrower's gender differs from the
// gender the costume is cut for.
func ValidateLoanGender(costume, person model.Gender) error {
	if costume != person {
		return Reject(CodeGenderMismatch, "gender mismatch for this costume: costume is %s, person is %s", costume, person)
	}
	return nil
}

func joinKinds(kinds []model.MovementKind) string {
	s := make([]string, len(kinds))
	for i, k := range kinds {
		s[i] = string(k)
	}
	return strings.Join(s, ", ")
}
