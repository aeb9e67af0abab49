package model

import "time"

// Person is someone who can register for events and borrow costumes.
type Person struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Gender      Gender    `json:"gender"`
	GarmentSize Size      `json:"garment_size"`
	CreatedAt   time.Time `json:"created_at"`
}

// Vehicle is a parade float or car. Costumes and registrations are bound to one.
type Vehicle struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// EventStatus is the confirmation state of a parade event.
type EventStatus string

// Event statuses.
const (
	EventPending   EventStatus = "pending"
	EventConfirmed EventStatus = "confirmed"
	EventCancelled EventStatus = "cancelled"
)

// Valid reports whether s is a known event status.
func (s EventStatus) Valid() bool {
	return s == EventPending || s == EventConfirmed || s == EventCancelled
}

// Event is a parade.
type Event struct {
	ID        int64       `json:"id"`
	Name      string      `json:"name"`
	Date      time.Time   `json:"date"`
	Status    EventStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
}

// Approval is the approval state of a registration.
type Approval string

// Approval states.
const (
	ApprovalPending  Approval = "pending"
	ApprovalApproved Approval = "approved"
	ApprovalRejected Approval = "rejected"
)

// Valid reports whether a is a known approval state.
func (a Approval) Valid() bool {
	return a == ApprovalPending || a == ApprovalApproved || a == ApprovalRejected
}

// Registration binds a person to an event and, once assigned, to a vehicle.
type Registration struct {
	ID        int64     `json:"id"`
	EventID   int64     `json:"event_id"`
	PersonID  int64     `json:"person_id"`
	VehicleID *int64    `json:"vehicle_id,omitempty"`
	Approval  Approval  `json:"approval"`
	CreatedAt time.Time `json:"created_at"`

	// Joined fields (not always populated).
	EventName   string    `json:"event_name,omitempty"`
	EventDate   time.Time `json:"event_date,omitempty"`
	VehicleName string    `json:"vehicle_name,omitempty"`
}
