package model

import "time"

// MovementKind is the kind of a ledger entry.
type MovementKind string

// Movement kinds.
const (
	KindIntake      MovementKind = "intake"
	KindLoan        MovementKind = "loan"
	KindReturn      MovementKind = "return"
	KindMaintenance MovementKind = "maintenance"
	KindDiscard     MovementKind = "discard"
	KindLoss        MovementKind = "loss"
)

// Kinds lists every movement kind.
var Kinds = []MovementKind{KindIntake, KindLoan, KindReturn, KindMaintenance, KindDiscard, KindLoss}

// Valid reports whether k is a known movement kind.
func (k MovementKind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Checked reports whether entries of this kind carry checklist checks.
func (k MovementKind) Checked() bool {
	return k == KindLoan || k == KindReturn
}

// Movement is one immutable entry of an inventory item's ledger.
type Movement struct {
	ID            int64            `json:"id"`
	ItemTag       int              `json:"item_tag"`
	MovedAt       time.Time        `json:"moved_at"`
	Kind          MovementKind     `json:"kind"`
	Note          string           `json:"note,omitempty"`
	ResponsibleID int64            `json:"responsible_id"`
	PersonID      *int64           `json:"person_id,omitempty"`
	Checks        []ChecklistCheck `json:"checks,omitempty"`

	// Joined fields (not always populated).
	ResponsibleName string `json:"responsible_name,omitempty"`
	PersonName      string `json:"person_name,omitempty"`
}

// ChecklistCheck records whether one verification point was confirmed for a
// loan or return movement.
type ChecklistCheck struct {
	Label   string `json:"label"`
	Checked bool   `json:"checked"`
}
