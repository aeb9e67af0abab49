package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('admin', 'manager', 'user')),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_active
    ON users(username) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS vehicles (
    id         INTEGER PRIMARY KEY,
    name       TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS people (
    id           INTEGER PRIMARY KEY,
    name         TEXT NOT NULL,
    gender       TEXT NOT NULL CHECK (gender IN ('M', 'F')),
    garment_size TEXT NOT NULL CHECK (garment_size IN ('small', 'medium', 'large', 'extra-large')),
    created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS events (
    id         INTEGER PRIMARY KEY,
    name       TEXT NOT NULL,
    event_date DATETIME NOT NULL,
    status     TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'confirmed', 'cancelled')),
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS registrations (
    id         INTEGER PRIMARY KEY,
    event_id   INTEGER NOT NULL REFERENCES events(id),
    person_id  INTEGER NOT NULL REFERENCES people(id),
    vehicle_id INTEGER REFERENCES vehicles(id),
    approval   TEXT NOT NULL DEFAULT 'pending' CHECK (approval IN ('pending', 'approved', 'rejected')),
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (event_id, person_id)
);

CREATE TABLE IF NOT EXISTS costumes (
    id         INTEGER PRIMARY KEY,
    name       TEXT NOT NULL,
    vehicle_id INTEGER REFERENCES vehicles(id),
    gender     TEXT NOT NULL CHECK (gender IN ('M', 'F')),
    checklist  TEXT NOT NULL CHECK (checklist <> ''),
    image      BLOB,
    image_mime TEXT,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS inventory_items (
    tag            INTEGER PRIMARY KEY CHECK (tag BETWEEN 1 AND 9999),
    costume_id     INTEGER NOT NULL REFERENCES costumes(id),
    size           TEXT NOT NULL CHECK (size IN ('small', 'medium', 'large', 'extra-large')),
    status         TEXT NOT NULL CHECK (status IN ('available', 'loaned', 'in-maintenance', 'discarded', 'lost')),
    holder_id      INTEGER REFERENCES people(id),
    responsible_id INTEGER REFERENCES users(id),
    updated_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS movements (
    id             INTEGER PRIMARY KEY,
    item_tag       INTEGER NOT NULL REFERENCES inventory_items(tag),
    moved_at       DATETIME NOT NULL,
    kind           TEXT NOT NULL CHECK (kind IN ('intake', 'loan', 'return', 'maintenance', 'discard', 'loss')),
    note           TEXT NOT NULL DEFAULT '',
    responsible_id INTEGER NOT NULL REFERENCES users(id),
    person_id      INTEGER REFERENCES people(id),
    UNIQUE (item_tag, moved_at)
);

CREATE TABLE IF NOT EXISTS movement_checks (
    movement_id INTEGER NOT NULL REFERENCES movements(id),
    label       TEXT NOT NULL,
    checked     INTEGER NOT NULL DEFAULT 0 CHECK (checked IN (0, 1)),
    PRIMARY KEY (movement_id, label)
);
`

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent. Append new migrations at the end.
var migrations = []string{
	// Migration 1: lookups of the item a person currently holds.
	`CREATE INDEX IF NOT EXISTS idx_inventory_items_holder
	     ON inventory_items(holder_id) WHERE holder_id IS NOT NULL`,
	// Migration 2: ledger history per person.
	`CREATE INDEX IF NOT EXISTS idx_movements_person
	     ON movements(person_id) WHERE person_id IS NOT NULL`,
}

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// Migrate ensures the schema and then applies the migrations in order.
func Migrate(db *sql.DB) error {
	if err := EnsureSchema(db); err != nil {
		return err
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
