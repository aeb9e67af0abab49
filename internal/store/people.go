package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/kostumi/internal/lifecycle"
	"github.com/erazemk/kostumi/internal/model"
)

// CreateVehicle creates a new vehicle.
func CreateVehicle(ctx context.Context, db *sql.DB, name string) (*model.Vehicle, error) {
	result, err := db.ExecContext(ctx, `INSERT INTO vehicles (name) VALUES (?)`, name)
	if err != nil {
		return nil, fmt.Errorf("creating vehicle: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting vehicle id: %w", err)
	}

	return GetVehicle(ctx, db, id)
}

// GetVehicle returns a vehicle by ID.
func GetVehicle(ctx context.Context, db *sql.DB, id int64) (*model.Vehicle, error) {
	v := &model.Vehicle{}
	err := db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM vehicles WHERE id = ?`, id,
	).Scan(&v.ID, &v.Name, &v.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting vehicle: %w", err)
	}
	return v, nil
}

// ListVehicles returns all vehicles.
func ListVehicles(ctx context.Context, db *sql.DB) ([]model.Vehicle, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, name, created_at FROM vehicles ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing vehicles: %w", err)
	}
	defer rows.Close()

	var vehicles []model.Vehicle
	for rows.Next() {
		var v model.Vehicle
		if err := rows.Scan(&v.ID, &v.Name, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning vehicle: %w", err)
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

// CreatePerson creates a new person.
func CreatePerson(ctx context.Context, db *sql.DB, name string, gender model.Gender, size model.Size) (*model.Person, error) {
	if name == "" {
		return nil, lifecycle.Reject(lifecycle.CodeInvalid, "name is required")
	}
	if !gender.Valid() {
		return nil, lifecycle.Reject(lifecycle.CodeInvalid, "invalid gender %q", gender)
	}
	if !size.Valid() {
		return nil, lifecycle.Reject(lifecycle.CodeInvalid, "invalid garment size %q", size)
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO people (name, gender, garment_size) VALUES (?, ?, ?)`,
		name, string(gender), string(size),
	)
	if err != nil {
		return nil, fmt.Errorf("creating person: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting person id: %w", err)
	}

	return GetPerson(ctx, db, id)
}

// GetPerson returns a person by ID.
func GetPerson(ctx context.Context, db *sql.DB, id int64) (*model.Person, error) {
	return getPerson(ctx, db, id)
}

func getPerson(ctx context.Context, q queryer, id int64) (*model.Person, error) {
	p := &model.Person{}
	err := q.QueryRowContext(ctx,
		`SELECT id, name, gender, garment_size, created_at FROM people WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &p.Gender, &p.GarmentSize, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting person: %w", err)
	}
	return p, nil
}

// ListPeople returns all people.
func ListPeople(ctx context.Context, db *sql.DB) ([]model.Person, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, gender, garment_size, created_at FROM people ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing people: %w", err)
	}
	defer rows.Close()

	var people []model.Person
	for rows.Next() {
		var p model.Person
		if err := rows.Scan(&p.ID, &p.Name, &p.Gender, &p.GarmentSize, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning person: %w", err)
		}
		people = append(people, p)
	}
	return people, rows.Err()
}

// CreateEvent creates a parade event on the calendar day of date.
func CreateEvent(ctx context.Context, db *sql.DB, name string, date time.Time, status model.EventStatus) (*model.Event, error) {
	if name == "" {
		return nil, lifecycle.Reject(lifecycle.CodeInvalid, "name is required")
	}
	if !status.Valid() {
		return nil, lifecycle.Reject(lifecycle.CodeInvalid, "invalid event status %q", status)
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO events (name, event_date, status) VALUES (?, ?, ?)`,
		name, dateOnly(date), string(status),
	)
	if err != nil {
		return nil, fmt.Errorf("creating event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting event id: %w", err)
	}

	return GetEvent(ctx, db, id)
}

// GetEvent returns an event by ID.
func GetEvent(ctx context.Context, db *sql.DB, id int64) (*model.Event, error) {
	e := &model.Event{}
	err := db.QueryRowContext(ctx,
		`SELECT id, name, event_date, status, created_at FROM events WHERE id = ?`, id,
	).Scan(&e.ID, &e.Name, &e.Date, &e.Status, &e.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting event: %w", err)
	}
	return e, nil
}

// ListEvents returns all events, soonest first.
func ListEvents(ctx context.Context, db *sql.DB) ([]model.Event, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, event_date, status, created_at FROM events ORDER BY event_date, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.ID, &e.Name, &e.Date, &e.Status, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// SetEventStatus updates an event's confirmation status.
func SetEventStatus(ctx context.Context, db *sql.DB, id int64, status model.EventStatus) error {
	if !status.Valid() {
		return lifecycle.Reject(lifecycle.CodeInvalid, "invalid event status %q", status)
	}
	result, err := db.ExecContext(ctx,
		`UPDATE events SET status = ? WHERE id = ?`, string(status), id,
	)
	if err != nil {
		return fmt.Errorf("updating event status: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return lifecycle.NotFound("event %d not found", id)
	}
	return nil
}

// CreateRegistration registers a person for an event, optionally bound to a vehicle.
func CreateRegistration(ctx context.Context, db *sql.DB, eventID, personID int64, vehicleID *int64) (*model.Registration, error) {
	refs := []struct {
		table, name string
		id          *int64
	}{{"events", "event", &eventID}, {"people", "person", &personID}, {"vehicles", "vehicle", vehicleID}}
	for _, ref := range refs {
		if ref.id == nil {
			continue
		}
		var n int
		if err := db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM `+ref.table+` WHERE id = ?`, *ref.id,
		).Scan(&n); err != nil {
			return nil, fmt.Errorf("checking %s: %w", ref.table, err)
		}
		if n == 0 {
			return nil, lifecycle.NotFound("%s %d not found", ref.name, *ref.id)
		}
	}

	var count int
	if err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM registrations WHERE event_id = ? AND person_id = ?`, eventID, personID,
	).Scan(&count); err != nil {
		return nil, fmt.Errorf("checking registration: %w", err)
	}
	if count > 0 {
		return nil, lifecycle.Reject(lifecycle.CodeConflict, "person %d is already registered for event %d", personID, eventID)
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO registrations (event_id, person_id, vehicle_id) VALUES (?, ?, ?)`,
		eventID, personID, vehicleID,
	)
	if err != nil {
		return nil, fmt.Errorf("creating registration: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting registration id: %w", err)
	}

	return GetRegistration(ctx, db, id)
}

// SetRegistrationApproval records the outcome of the approval workflow.
func SetRegistrationApproval(ctx context.Context, db *sql.DB, id int64, approval model.Approval) error {
	if !approval.Valid() {
		return lifecycle.Reject(lifecycle.CodeInvalid, "invalid approval %q", approval)
	}
	result, err := db.ExecContext(ctx,
		`UPDATE registrations SET approval = ? WHERE id = ?`, string(approval), id,
	)
	if err != nil {
		return fmt.Errorf("updating registration approval: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return lifecycle.NotFound("registration %d not found", id)
	}
	return nil
}

const registrationColumns = `r.id, r.event_id, r.person_id, r.vehicle_id, r.approval, r.created_at,
	        e.name, e.event_date, COALESCE(v.name, '')
	 FROM registrations r
	 JOIN events e ON e.id = r.event_id
	 LEFT JOIN vehicles v ON v.id = r.vehicle_id`

// GetRegistration returns a registration by ID.
func GetRegistration(ctx context.Context, db *sql.DB, id int64) (*model.Registration, error) {
	r := &model.Registration{}
	err := db.QueryRowContext(ctx,
		`SELECT `+registrationColumns+` WHERE r.id = ?`, id,
	).Scan(&r.ID, &r.EventID, &r.PersonID, &r.VehicleID, &r.Approval, &r.CreatedAt,
		&r.EventName, &r.EventDate, &r.VehicleName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting registration: %w", err)
	}
	return r, nil
}

// ListRegistrations returns registrations, optionally filtered by person.
func ListRegistrations(ctx context.Context, db *sql.DB, personID int64) ([]model.Registration, error) {
	query := `SELECT ` + registrationColumns + ` WHERE 1=1`
	var args []any
	if personID > 0 {
		query += ` AND r.person_id = ?`
		args = append(args, personID)
	}
	query += ` ORDER BY e.event_date, r.id`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing registrations: %w", err)
	}
	defer rows.Close()

	return scanRegistrations(rows)
}

// upcomingRegistrations returns the person's registrations for confirmed
// events dated on or after today, soonest first.
func upcomingRegistrations(ctx context.Context, q queryer, personID int64, today time.Time) ([]model.Registration, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+registrationColumns+`
		 WHERE r.person_id = ? AND e.status = ? AND e.event_date >= ?
		 ORDER BY e.event_date, r.id`,
		personID, string(model.EventConfirmed), dateOnly(today),
	)
	if err != nil {
		return nil, fmt.Errorf("listing upcoming registrations: %w", err)
	}
	defer rows.Close()

	return scanRegistrations(rows)
}

func scanRegistrations(rows *sql.Rows) ([]model.Registration, error) {
	var regs []model.Registration
	for rows.Next() {
		var r model.Registration
		if err := rows.Scan(&r.ID, &r.EventID, &r.PersonID, &r.VehicleID, &r.Approval, &r.CreatedAt,
			&r.EventName, &r.EventDate, &r.VehicleName); err != nil {
			return nil, fmt.Errorf("scanning registration: %w", err)
		}
		regs = append(regs, r)
	}
	return regs, rows.Err()
}
