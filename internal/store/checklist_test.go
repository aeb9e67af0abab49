package store

import (
	"reflect"
	"testing"
	"time"

	"github.com/erazemk/kostumi/internal/lifecycle"
	"github.com/erazemk/kostumi/internal/model"
)

func labels(checks []model.ChecklistCheck) []string {
	out := make([]string, 0, len(checks))
	for _, c := range checks {
		out = append(out, c.Label)
	}
	return out
}

func TestChecklistEditAppliesToNextEntry(t *testing.T) {
	f := newFixture(t)
	f.item(t, 42, model.SizeMedium)

	loan, err := f.move(42, model.KindLoan, 1, f.ana)
	if err != nil {
		t.Fatalf("loan: %v", err)
	}
	if got := labels(loan.Checks); !reflect.DeepEqual(got, []string{"Zipper", "Buttons"}) {
		t.Fatalf("loan checks = %v", got)
	}
	for _, c := range loan.Checks {
		if c.Checked {
			t.Errorf("new check %q should start unchecked", c.Label)
		}
	}

	if _, err := SetMovementChecks(f.ctx, f.db, loan.ID, map[string]bool{"Zipper": true}); err != nil {
		t.Fatalf("SetMovementChecks: %v", err)
	}

	if err := UpdateCostume(f.ctx, f.db, f.robe.ID, CostumeParams{
		Name: f.robe.Name, VehicleID: f.robe.VehicleID, Gender: f.robe.Gender,
		Checklist: "Zipper\nHem",
	}); err != nil {
		t.Fatalf("UpdateCostume: %v", err)
	}

	ret, err := f.move(42, model.KindReturn, 2, nil)
	if err != nil {
		t.Fatalf("return: %v", err)
	}
	if got := labels(ret.Checks); !reflect.DeepEqual(got, []string{"Zipper", "Hem"}) {
		t.Fatalf("return checks = %v", got)
	}
	for _, c := range ret.Checks {
		if c.Checked {
			t.Errorf("return check %q inherited a value from the loan", c.Label)
		}
	}
}

func TestReconcileKeepsValuesAndDropsStale(t *testing.T) {
	f := newFixture(t)
	f.item(t, 42, model.SizeMedium)

	loan, err := f.move(42, model.KindLoan, 1, f.ana)
	if err != nil {
		t.Fatalf("loan: %v", err)
	}
	if _, err := SetMovementChecks(f.ctx, f.db, loan.ID, map[string]bool{"Zipper": true, "Buttons": true}); err != nil {
		t.Fatalf("SetMovementChecks: %v", err)
	}

	if err := UpdateCostume(f.ctx, f.db, f.robe.ID, CostumeParams{
		Name: f.robe.Name, VehicleID: f.robe.VehicleID, Gender: f.robe.Gender,
		Checklist: "Zipper\nHem",
	}); err != nil {
		t.Fatalf("UpdateCostume: %v", err)
	}
	if err := ReconcileMovement(f.ctx, f.db, loan.ID); err != nil {
		t.Fatalf("ReconcileMovement: %v", err)
	}

	m, _ := GetMovement(f.ctx, f.db, loan.ID)
	want := []model.ChecklistCheck{{Label: "Zipper", Checked: true}, {Label: "Hem", Checked: false}}
	if !reflect.DeepEqual(m.Checks, want) {
		t.Fatalf("checks = %+v, want %+v", m.Checks, want)
	}

	// A second run changes nothing.
	if err := ReconcileMovement(f.ctx, f.db, loan.ID); err != nil {
		t.Fatalf("ReconcileMovement: %v", err)
	}
	again, _ := GetMovement(f.ctx, f.db, loan.ID)
	if !reflect.DeepEqual(again.Checks, m.Checks) {
		t.Errorf("second reconcile changed checks: %+v -> %+v", m.Checks, again.Checks)
	}
}

func TestNonCheckedKindsHaveNoChecks(t *testing.T) {
	f := newFixture(t)
	f.item(t, 4, model.SizeMedium)

	m, err := f.move(4, model.KindMaintenance, 1, nil)
	if err != nil {
		t.Fatalf("maintenance: %v", err)
	}
	if len(m.Checks) != 0 {
		t.Errorf("maintenance has checks: %v", m.Checks)
	}
	if err := ReconcileMovement(f.ctx, f.db, m.ID); err != nil {
		t.Fatalf("ReconcileMovement: %v", err)
	}

	_, err = SetMovementChecks(f.ctx, f.db, m.ID, map[string]bool{"Zipper": true})
	if !lifecycle.HasCode(err, lifecycle.CodeInvalid) {
		t.Errorf("expected invalid for checks on maintenance, got %v", err)
	}
}

func TestLoanWithInitialChecks(t *testing.T) {
	f := newFixture(t)
	f.item(t, 42, model.SizeMedium)

	loan, err := AppendMovement(f.ctx, f.db, MovementRequest{
		Tag: 42, Kind: model.KindLoan, MovedAt: t0.Add(time.Hour), ResponsibleID: f.keeper.ID,
		PersonID: &f.ana.ID, Checks: map[string]bool{"Buttons": true, "Cape": true},
	})
	if err != nil {
		t.Fatalf("loan: %v", err)
	}
	want := []model.ChecklistCheck{{Label: "Zipper"}, {Label: "Buttons", Checked: true}}
	if !reflect.DeepEqual(loan.Checks, want) {
		t.Errorf("checks = %+v, want %+v", loan.Checks, want)
	}
}

func TestSetMovementChecksRejectsUnknownLabel(t *testing.T) {
	f := newFixture(t)
	f.item(t, 42, model.SizeMedium)
	loan, err := f.move(42, model.KindLoan, 1, f.ana)
	if err != nil {
		t.Fatalf("loan: %v", err)
	}

	_, err = SetMovementChecks(f.ctx, f.db, loan.ID, map[string]bool{"Cape": true})
	if !lifecycle.HasCode(err, lifecycle.CodeInvalid) {
		t.Fatalf("expected invalid, got %v", err)
	}

	m, _ := GetMovement(f.ctx, f.db, loan.ID)
	for _, c := range m.Checks {
		if c.Checked {
			t.Errorf("rejected update left %q checked", c.Label)
		}
	}

	_, err = SetMovementChecks(f.ctx, f.db, 999, map[string]bool{"Zipper": true})
	if !lifecycle.HasCode(err, lifecycle.CodeNotFound) {
		t.Errorf("expected not_found, got %v", err)
	}
}
