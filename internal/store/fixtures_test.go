package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/erazemk/kostumi/internal/db"
	"github.com/erazemk/kostumi/internal/lifecycle"
	"github.com/erazemk/kostumi/internal/model"
)

// t0 is the base time for ledgers built in tests.
var t0 = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

// today is the day eligibility checks run on in tests.
var today = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

type fixture struct {
	ctx     context.Context
	db      *sql.DB
	keeper  *model.User
	vehicle *model.Vehicle
	robe    *model.Costume // "Blue Robe", female, Zipper/Buttons
	ana     *model.Person  // female, medium
	bruno   *model.Person  // male, medium
	event   *model.Event   // confirmed, after today
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{ctx: context.Background(), db: db.NewTestDB(t)}
	var err error

	if f.keeper, err = CreateUser(f.ctx, f.db, "keeper", "hash", model.RoleManager); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if f.vehicle, err = CreateVehicle(f.ctx, f.db, "Dragon"); err != nil {
		t.Fatalf("CreateVehicle: %v", err)
	}
	if f.robe, err = CreateCostume(f.ctx, f.db, CostumeParams{
		Name:      "Blue Robe",
		VehicleID: &f.vehicle.ID,
		Gender:    model.GenderFemale,
		Checklist: "Zipper\nButtons",
	}); err != nil {
		t.Fatalf("CreateCostume: %v", err)
	}
	if f.ana, err = CreatePerson(f.ctx, f.db, "Ana", model.GenderFemale, model.SizeMedium); err != nil {
		t.Fatalf("CreatePerson: %v", err)
	}
	if f.bruno, err = CreatePerson(f.ctx, f.db, "Bruno", model.GenderMale, model.SizeMedium); err != nil {
		t.Fatalf("CreatePerson: %v", err)
	}
	if f.event, err = CreateEvent(f.ctx, f.db, "Carnival", today.AddDate(0, 0, 5), model.EventConfirmed); err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	return f
}

// item receives a new inventory item of the robe at t0.
func (f *fixture) item(t *testing.T, tag int, size model.Size) *model.InventoryItem {
	t.Helper()
	item, err := CreateInventoryItem(f.ctx, f.db, ItemParams{
		Tag: tag, CostumeID: f.robe.ID, Size: size, ReceivedAt: t0,
	}, f.keeper.ID)
	if err != nil {
		t.Fatalf("CreateInventoryItem #%d: %v", tag, err)
	}
	return item
}

// move appends a movement at t0 plus offset hours.
func (f *fixture) move(tag int, kind model.MovementKind, hours int, person *model.Person) (*model.Movement, error) {
	req := MovementRequest{
		Tag:           tag,
		Kind:          kind,
		MovedAt:       t0.Add(time.Duration(hours) * time.Hour),
		ResponsibleID: f.keeper.ID,
	}
	if person != nil {
		req.PersonID = &person.ID
	}
	return AppendMovement(f.ctx, f.db, req)
}

// register registers p for the fixture event on the fixture vehicle.
func (f *fixture) register(t *testing.T, p *model.Person, approval model.Approval) *model.Registration {
	t.Helper()
	reg, err := CreateRegistration(f.ctx, f.db, f.event.ID, p.ID, &f.vehicle.ID)
	if err != nil {
		t.Fatalf("CreateRegistration: %v", err)
	}
	if err := SetRegistrationApproval(f.ctx, f.db, reg.ID, approval); err != nil {
		t.Fatalf("SetRegistrationApproval: %v", err)
	}
	return reg
}

func (f *fixture) mustItem(t *testing.T, tag int) *model.InventoryItem {
	t.Helper()
	item, err := GetInventoryItem(f.ctx, f.db, tag)
	if err != nil || item == nil {
		t.Fatalf("GetInventoryItem #%d: %v %v", tag, item, err)
	}
	return item
}

// assertLedger checks the ledger invariants for an item: first entry is an
// intake, consecutive entries follow the allow-list, and the item status
// matches the latest entry.
func (f *fixture) assertLedger(t *testing.T, tag int) {
	t.Helper()
	if err := verifyLedger(f.ctx, f.db, tag); err != nil {
		t.Fatalf("ledger #%d: %v", tag, err)
	}
	ledger, err := ListMovements(f.ctx, f.db, tag)
	if err != nil {
		t.Fatalf("ListMovements: %v", err)
	}
	for i := 1; i < len(ledger); i++ {
		prev := ledger[i-1].Kind
		if _, err := validateStep(prev, ledger[i].Kind); err != nil {
			t.Errorf("ledger #%d: %s -> %s: %v", tag, prev, ledger[i].Kind, err)
		}
	}
}

func validateStep(prev, next model.MovementKind) (model.Status, error) {
	return lifecycle.Validate(&prev, next)
}
