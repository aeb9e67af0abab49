package model

import (
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
)

// Gender is the gender a costume is cut for, and a person's registered gender.
type Gender string

// Genders.
const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
)

// Valid reports whether g is a known gender.
func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

// Costume is a named garment design. Physical units of it are InventoryItems.
type Costume struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	VehicleID *int64    `json:"vehicle_id,omitempty"`
	Gender    Gender    `json:"gender"`
	Checklist string    `json:"checklist"`
	ImageMime string    `json:"image_mime,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Joined fields (not always populated).
	VehicleName string `json:"vehicle_name,omitempty"`
}

// Items returns the costume's checklist item set.
func (c *Costume) Items() []string {
	return ChecklistItems(c.Checklist)
}

// ChecklistItems derives the ordered set of verification labels from checklist
// text: one label per non-empty line, whitespace trimmed, first occurrence wins.
func ChecklistItems(text string) []string {
	seen := mapset.NewThreadUnsafeSet[string]()
	var items []string
	for _, line := range strings.Split(text, "\n") {
		label := strings.TrimSpace(line)
		if label == "" {
			continue
		}
		if seen.Add(label) {
			items = append(items, label)
		}
	}
	return items
}

// NormalizeChecklist rewrites checklist text into its canonical stored form.
// The result is empty when the text contains no labels.
func NormalizeChecklist(text string) string {
	return strings.Join(ChecklistItems(text), "\n")
}
