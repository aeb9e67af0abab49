package model

import (
	"fmt"
	"time"
)

// Size is the garment size an inventory item was cut to.
type Size string

// Sizes.
const (
	SizeSmall      Size = "small"
	SizeMedium     Size = "medium"
	SizeLarge      Size = "large"
	SizeExtraLarge Size = "extra-large"
)

// Valid reports whether s is a known size.
func (s Size) Valid() bool {
	switch s {
	case SizeSmall, SizeMedium, SizeLarge, SizeExtraLarge:
		return true
	}
	return false
}

// Status is the current physical situation of an inventory item.
type Status string

// Item statuses.
const (
	StatusAvailable   Status = "available"
	StatusLoaned      Status = "loaned"
	StatusMaintenance Status = "in-maintenance"
	StatusDiscarded   Status = "discarded"
	StatusLost        Status = "lost"
)

// Inventory tag bounds.
const (
	MinTag = 1
	MaxTag = 9999
)

// InventoryItem is one physical, uniquely tagged unit of a Costume.
// Status, HolderID, ResponsibleID and UpdatedAt are only ever written as a
// side effect of appending a movement.
type InventoryItem struct {
	Tag           int       `json:"tag"`
	CostumeID     int64     `json:"costume_id"`
	Size          Size      `json:"size"`
	Status        Status    `json:"status"`
	HolderID      *int64    `json:"holder_id,omitempty"`
	ResponsibleID *int64    `json:"responsible_id,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Joined fields (not always populated).
	CostumeName   string `json:"costume_name,omitempty"`
	CostumeGender Gender `json:"costume_gender,omitempty"`
	VehicleID     *int64 `json:"vehicle_id,omitempty"`
	VehicleName   string `json:"vehicle_name,omitempty"`
	HolderName    string `json:"holder_name,omitempty"`
}

func (i *InventoryItem) String() string {
	if i.CostumeName == "" {
		return fmt.Sprintf("#%d", i.Tag)
	}
	return fmt.Sprintf("#%d %s", i.Tag, i.CostumeName)
}

// Situation describes the item's current status for display.
func (i *InventoryItem) Situation() string {
	switch i.Status {
	case StatusAvailable:
		return fmt.Sprintf("%s is available", i)
	case StatusLoaned:
		if i.HolderName != "" {
			return fmt.Sprintf("%s is on loan to %s", i, i.HolderName)
		}
		return fmt.Sprintf("%s is on loan", i)
	case StatusMaintenance:
		return fmt.Sprintf("%s is in maintenance", i)
	case StatusDiscarded:
		return fmt.Sprintf("%s was discarded", i)
	case StatusLost:
		return fmt.Sprintf("%s was lost", i)
	default:
		return fmt.Sprintf("%s has unknown status %q", i, i.Status)
	}
}
