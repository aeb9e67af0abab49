package lifecycle

import (
	"fmt"

	"github.com/erazemk/kostumi/internal/model"
)

// LoanFacts is everything the loan eligibility check looks at. The store
// gathers it inside one read; CheckEligibility only decides.
type LoanFacts struct {
	Tag      int
	Item     *model.InventoryItem // nil when no item has Tag
	PersonID int64
	Person   *model.Person // nil when no person has PersonID

	// Registrations of the person for confirmed events dated today or later,
	// soonest first.
	Registrations []model.Registration

	// HeldItem is the item the person currently has on loan, if any.
	HeldItem *model.InventoryItem
}

// Eligibility is the validated result of a loan eligibility check.
type Eligibility struct {
	Item         *model.InventoryItem `json:"item"`
	Person       *model.Person        `json:"person"`
	Registration *model.Registration  `json:"registration"`
}

// CheckEligibility runs the loan eligibility checks in order and stops at the
// first one that fails.
func CheckEligibility(f LoanFacts) (*Eligibility, error) {
	if f.Tag == 0 {
		return nil, Reject(CodeInvalid, "inventory tag is required")
	}
	if f.Item == nil {
		return nil, NotFound("inventory item #%d not found", f.Tag)
	}
	item := f.Item

	if item.Status != model.StatusAvailable {
		return nil, Reject(CodeUnavailable, "%s", item.Situation())
	}

	if f.Person == nil {
		return nil, NotFound("person %d not found", f.PersonID)
	}
	person := f.Person

	reg := approvedRegistration(f.Registrations)
	if reg == nil {
		if len(f.Registrations) > 0 {
			first := f.Registrations[0]
			return nil, Reject(CodeNotApproved, "%s's registration for %s is %s",
				person.Name, first.EventName, first.Approval)
		}
		return nil, Reject(CodeNoRegistration, "%s has no confirmed-event registration", person.Name)
	}

	if !sameVehicle(item.VehicleID, reg.VehicleID) {
		return nil, Reject(CodeVehicleMismatch, "%s is registered for vehicle %s, but %s belongs to vehicle %s",
			person.Name, vehicleLabel(reg.VehicleID, reg.VehicleName), item, vehicleLabel(item.VehicleID, item.VehicleName))
	}

	if item.Size != person.GarmentSize {
		return nil, Reject(CodeSizeMismatch, "%s is registered with garment size %s, but %s is size %s",
			person.Name, person.GarmentSize, item, item.Size)
	}

	if f.HeldItem != nil && f.HeldItem.Tag != item.Tag {
		return nil, Reject(CodeAlreadyHolding, "%s already holds costume %s", person.Name, f.HeldItem)
	}

	return &Eligibility{Item: item, Person: person, Registration: reg}, nil
}

func approvedRegistration(regs []model.Registration) *model.Registration {
	for i := range regs {
		if regs[i].Approval == model.ApprovalApproved {
			return &regs[i]
		}
	}
	return nil
}

// sameVehicle requires both sides to be bound to the same vehicle; an unbound
// side never matches.
func sameVehicle(a, b *int64) bool {
	return a != nil && b != nil && *a == *b
}

func vehicleLabel(id *int64, name string) string {
	switch {
	case id == nil:
		return "(none)"
	case name != "":
		return name
	default:
		return fmt.Sprintf("#%d", *id)
	}
}
