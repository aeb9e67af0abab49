package store

import (
	"testing"

	"github.com/erazemk/kostumi/internal/lifecycle"
	"github.com/erazemk/kostumi/internal/model"
)

func TestCreateInventoryItemValidation(t *testing.T) {
	f := newFixture(t)
	f.item(t, 1, model.SizeSmall)

	tests := []struct {
		name string
		p    ItemParams
		code string
	}{
		{"tag too low", ItemParams{Tag: 0, CostumeID: f.robe.ID, Size: model.SizeSmall}, lifecycle.CodeInvalid},
		{"tag too high", ItemParams{Tag: 10000, CostumeID: f.robe.ID, Size: model.SizeSmall}, lifecycle.CodeInvalid},
		{"bad size", ItemParams{Tag: 2, CostumeID: f.robe.ID, Size: "huge"}, lifecycle.CodeInvalid},
		{"unknown costume", ItemParams{Tag: 2, CostumeID: 999, Size: model.SizeSmall}, lifecycle.CodeNotFound},
		{"tag in use", ItemParams{Tag: 1, CostumeID: f.robe.ID, Size: model.SizeSmall}, lifecycle.CodeConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CreateInventoryItem(f.ctx, f.db, tt.p, f.keeper.ID)
			if !lifecycle.HasCode(err, tt.code) {
				t.Errorf("expected %s, got %v", tt.code, err)
			}
		})
	}

	// Bounds are inclusive.
	for _, tag := range []int{model.MinTag + 1, model.MaxTag} {
		if _, err := CreateInventoryItem(f.ctx, f.db, ItemParams{Tag: tag, CostumeID: f.robe.ID, Size: model.SizeSmall}, f.keeper.ID); err != nil {
			t.Errorf("tag %d: %v", tag, err)
		}
	}
}

func TestCreateInventoryItemUnknownUserWritesNothing(t *testing.T) {
	f := newFixture(t)

	_, err := CreateInventoryItem(f.ctx, f.db, ItemParams{Tag: 5, CostumeID: f.robe.ID, Size: model.SizeSmall}, 999)
	if !lifecycle.HasCode(err, lifecycle.CodeNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}

	item, err := GetInventoryItem(f.ctx, f.db, 5)
	if err != nil {
		t.Fatalf("GetInventoryItem: %v", err)
	}
	if item != nil {
		t.Errorf("item was created despite failed intake: %+v", item)
	}
}

func TestGetInventoryItemJoins(t *testing.T) {
	f := newFixture(t)
	f.item(t, 42, model.SizeMedium)
	if _, err := f.move(42, model.KindLoan, 1, f.ana); err != nil {
		t.Fatalf("loan: %v", err)
	}

	item := f.mustItem(t, 42)
	if item.CostumeName != "Blue Robe" || item.CostumeGender != model.GenderFemale {
		t.Errorf("costume not joined: %+v", item)
	}
	if item.VehicleName != "Dragon" || item.HolderName != "Ana" {
		t.Errorf("vehicle or holder not joined: %+v", item)
	}
	if got := item.Situation(); got != "#42 Blue Robe is on loan to Ana" {
		t.Errorf("Situation() = %q", got)
	}

	missing, err := GetInventoryItem(f.ctx, f.db, 43)
	if err != nil || missing != nil {
		t.Errorf("expected nil, nil for unknown tag, got %v, %v", missing, err)
	}
}

func TestListInventoryItems(t *testing.T) {
	f := newFixture(t)
	f.item(t, 3, model.SizeMedium)
	f.item(t, 1, model.SizeMedium)
	f.item(t, 2, model.SizeSmall)
	if _, err := f.move(2, model.KindMaintenance, 1, nil); err != nil {
		t.Fatalf("maintenance: %v", err)
	}

	all, err := ListInventoryItems(f.ctx, f.db, "")
	if err != nil {
		t.Fatalf("ListInventoryItems: %v", err)
	}
	if len(all) != 3 || all[0].Tag != 1 || all[2].Tag != 3 {
		t.Errorf("expected items ordered by tag, got %+v", all)
	}

	inMaintenance, err := ListInventoryItems(f.ctx, f.db, model.StatusMaintenance)
	if err != nil {
		t.Fatalf("ListInventoryItems: %v", err)
	}
	if len(inMaintenance) != 1 || inMaintenance[0].Tag != 2 {
		t.Errorf("expected only #2, got %+v", inMaintenance)
	}
}

func TestListAvailableItems(t *testing.T) {
	f := newFixture(t)
	f.item(t, 1, model.SizeMedium)
	f.item(t, 2, model.SizeMedium)
	f.item(t, 3, model.SizeLarge)
	if _, err := f.move(2, model.KindLoan, 1, f.ana); err != nil {
		t.Fatalf("loan: %v", err)
	}

	items, err := ListAvailableItems(f.ctx, f.db, f.vehicle.ID, model.GenderFemale, model.SizeMedium)
	if err != nil {
		t.Fatalf("ListAvailableItems: %v", err)
	}
	if len(items) != 1 || items[0].Tag != 1 {
		t.Errorf("expected only #1, got %+v", items)
	}

	items, _ = ListAvailableItems(f.ctx, f.db, f.vehicle.ID, model.GenderMale, model.SizeMedium)
	if len(items) != 0 {
		t.Errorf("expected no male items, got %+v", items)
	}
}

func TestGetItemHeldBy(t *testing.T) {
	f := newFixture(t)
	f.item(t, 1, model.SizeMedium)

	held, err := GetItemHeldBy(f.ctx, f.db, f.ana.ID)
	if err != nil || held != nil {
		t.Fatalf("expected nothing held, got %v, %v", held, err)
	}

	if _, err := f.move(1, model.KindLoan, 1, f.ana); err != nil {
		t.Fatalf("loan: %v", err)
	}
	held, err = GetItemHeldBy(f.ctx, f.db, f.ana.ID)
	if err != nil || held == nil || held.Tag != 1 {
		t.Fatalf("expected #1 held, got %v, %v", held, err)
	}

	if _, err := f.move(1, model.KindReturn, 2, nil); err != nil {
		t.Fatalf("return: %v", err)
	}
	held, _ = GetItemHeldBy(f.ctx, f.db, f.ana.ID)
	if held != nil {
		t.Errorf("expected nothing held after return, got #%d", held.Tag)
	}
}
