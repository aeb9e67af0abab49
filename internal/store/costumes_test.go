package store

import (
	"bytes"
	"testing"

	"github.com/erazemk/kostumi/internal/lifecycle"
	"github.com/erazemk/kostumi/internal/model"
)

func TestCreateCostumeNormalizesChecklist(t *testing.T) {
	f := newFixture(t)

	c, err := CreateCostume(f.ctx, f.db, CostumeParams{
		Name:      "  Red Cape ",
		Gender:    model.GenderMale,
		Checklist: " Hood \n\nClasp\nHood\n",
	})
	if err != nil {
		t.Fatalf("CreateCostume: %v", err)
	}
	if c.Name != "Red Cape" {
		t.Errorf("expected trimmed name, got %q", c.Name)
	}
	if c.Checklist != "Hood\nClasp" {
		t.Errorf("expected normalized checklist, got %q", c.Checklist)
	}
	if c.VehicleID != nil {
		t.Errorf("expected no vehicle, got %d", *c.VehicleID)
	}
}

func TestCreateCostumeValidation(t *testing.T) {
	f := newFixture(t)
	missing := int64(999)

	tests := []struct {
		name string
		p    CostumeParams
		code string
	}{
		{"no name", CostumeParams{Gender: model.GenderFemale, Checklist: "Zipper"}, lifecycle.CodeInvalid},
		{"bad gender", CostumeParams{Name: "X", Gender: "X", Checklist: "Zipper"}, lifecycle.CodeInvalid},
		{"empty checklist", CostumeParams{Name: "X", Gender: model.GenderFemale, Checklist: " \n "}, lifecycle.CodeInvalid},
		{"unknown vehicle", CostumeParams{Name: "X", Gender: model.GenderFemale, Checklist: "Zipper", VehicleID: &missing}, lifecycle.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CreateCostume(f.ctx, f.db, tt.p)
			if !lifecycle.HasCode(err, tt.code) {
				t.Errorf("expected %s, got %v", tt.code, err)
			}
		})
	}
}

func TestUpdateCostume(t *testing.T) {
	f := newFixture(t)

	err := UpdateCostume(f.ctx, f.db, f.robe.ID, CostumeParams{
		Name: "Navy Robe", VehicleID: f.robe.VehicleID, Gender: model.GenderFemale, Checklist: "Belt",
	})
	if err != nil {
		t.Fatalf("UpdateCostume: %v", err)
	}

	c, _ := GetCostume(f.ctx, f.db, f.robe.ID)
	if c.Name != "Navy Robe" || c.Checklist != "Belt" || c.VehicleName != "Dragon" {
		t.Errorf("unexpected costume %+v", c)
	}

	err = UpdateCostume(f.ctx, f.db, 999, CostumeParams{Name: "X", Gender: model.GenderFemale, Checklist: "Belt"})
	if !lifecycle.HasCode(err, lifecycle.CodeNotFound) {
		t.Errorf("expected not_found, got %v", err)
	}
}

func TestCostumeImage(t *testing.T) {
	f := newFixture(t)

	img, mime, err := GetCostumeImage(f.ctx, f.db, f.robe.ID)
	if err != nil {
		t.Fatalf("GetCostumeImage: %v", err)
	}
	if img != nil || mime != "" {
		t.Errorf("expected no image, got %d bytes %q", len(img), mime)
	}

	data := []byte{0xff, 0xd8, 0xff}
	if err := SetCostumeImage(f.ctx, f.db, f.robe.ID, data, "image/jpeg"); err != nil {
		t.Fatalf("SetCostumeImage: %v", err)
	}

	img, mime, err = GetCostumeImage(f.ctx, f.db, f.robe.ID)
	if err != nil {
		t.Fatalf("GetCostumeImage: %v", err)
	}
	if !bytes.Equal(img, data) || mime != "image/jpeg" {
		t.Errorf("got %v %q", img, mime)
	}

	c, _ := GetCostume(f.ctx, f.db, f.robe.ID)
	if c.ImageMime != "image/jpeg" {
		t.Errorf("expected image mime on costume, got %q", c.ImageMime)
	}
}

func TestListCostumes(t *testing.T) {
	f := newFixture(t)
	if _, err := CreateCostume(f.ctx, f.db, CostumeParams{Name: "Amber Hat", Gender: model.GenderMale, Checklist: "Feather"}); err != nil {
		t.Fatalf("CreateCostume: %v", err)
	}

	costumes, err := ListCostumes(f.ctx, f.db)
	if err != nil {
		t.Fatalf("ListCostumes: %v", err)
	}
	if len(costumes) != 2 || costumes[0].Name != "Amber Hat" || costumes[1].Name != "Blue Robe" {
		t.Errorf("unexpected costumes %+v", costumes)
	}
}
