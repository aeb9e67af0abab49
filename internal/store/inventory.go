package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/kostumi/internal/lifecycle"
	"github.com/erazemk/kostumi/internal/metrics"
	"github.com/erazemk/kostumi/internal/model"
)

// ItemParams describe a newly received physical costume.
type ItemParams struct {
	Tag       int
	CostumeID int64
	Size      model.Size
	Note      string
	// ReceivedAt is the time of the intake movement; zero means now.
	ReceivedAt time.Time
}

// CreateInventoryItem records a new physical costume together with its intake
// movement in a single transaction. responsibleID names the user (or system
// account) the intake is attributed to.
func CreateInventoryItem(ctx context.Context, db *sql.DB, p ItemParams, responsibleID int64) (*model.InventoryItem, error) {
	if p.Tag < model.MinTag || p.Tag > model.MaxTag {
		return nil, lifecycle.Reject(lifecycle.CodeInvalid, "inventory tag must be between %d and %d", model.MinTag, model.MaxTag)
	}
	if !p.Size.Valid() {
		return nil, lifecycle.Reject(lifecycle.CodeInvalid, "invalid size %q", p.Size)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM costumes WHERE id = ?`, p.CostumeID,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("checking costume: %w", err)
	}
	if exists == 0 {
		return nil, lifecycle.NotFound("costume %d not found", p.CostumeID)
	}

	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM inventory_items WHERE tag = ?`, p.Tag,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("checking inventory tag: %w", err)
	}
	if exists > 0 {
		return nil, lifecycle.Reject(lifecycle.CodeConflict, "inventory tag #%d is already in use", p.Tag)
	}

	// Status is a placeholder until the intake movement below writes it.
	_, err = tx.ExecContext(ctx,
		`INSERT INTO inventory_items (tag, costume_id, size, status) VALUES (?, ?, ?, ?)`,
		p.Tag, p.CostumeID, string(p.Size), string(model.StatusAvailable),
	)
	if err != nil {
		return nil, fmt.Errorf("creating inventory item: %w", err)
	}

	_, err = appendMovement(ctx, tx, MovementRequest{
		Tag:           p.Tag,
		Kind:          model.KindIntake,
		MovedAt:       p.ReceivedAt,
		Note:          p.Note,
		ResponsibleID: responsibleID,
	})
	metrics.ObserveMovement(model.KindIntake, err)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing inventory item: %w", err)
	}

	return GetInventoryItem(ctx, db, p.Tag)
}

const itemColumns = `i.tag, i.costume_id, i.size, i.status, i.holder_id, i.responsible_id, i.updated_at,
	        c.name, c.gender, c.vehicle_id, COALESCE(v.name, ''), COALESCE(p.name, '')
	 FROM inventory_items i
	 JOIN costumes c ON c.id = i.costume_id
	 LEFT JOIN vehicles v ON v.id = c.vehicle_id
	 LEFT JOIN people p ON p.id = i.holder_id`

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(s scanner, item *model.InventoryItem) error {
	return s.Scan(&item.Tag, &item.CostumeID, &item.Size, &item.Status, &item.HolderID, &item.ResponsibleID,
		&item.UpdatedAt, &item.CostumeName, &item.CostumeGender, &item.VehicleID, &item.VehicleName, &item.HolderName)
}

// GetInventoryItem returns an inventory item by tag.
func GetInventoryItem(ctx context.Context, db *sql.DB, tag int) (*model.InventoryItem, error) {
	return getInventoryItem(ctx, db, tag)
}

func getInventoryItem(ctx context.Context, q queryer, tag int) (*model.InventoryItem, error) {
	item := &model.InventoryItem{}
	err := scanItem(q.QueryRowContext(ctx, `SELECT `+itemColumns+` WHERE i.tag = ?`, tag), item)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting inventory item: %w", err)
	}
	return item, nil
}

// ListInventoryItems returns all inventory items, optionally filtered by status.
func ListInventoryItems(ctx context.Context, db *sql.DB, status model.Status) ([]model.InventoryItem, error) {
	query := `SELECT ` + itemColumns + ` WHERE 1=1`
	var args []any
	if status != "" {
		query += ` AND i.status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY i.tag`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing inventory items: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// ListAvailableItems returns available items whose costume belongs to the
// given vehicle and gender and that are cut to the given size.
func ListAvailableItems(ctx context.Context, db *sql.DB, vehicleID int64, gender model.Gender, size model.Size) ([]model.InventoryItem, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+itemColumns+`
		 WHERE i.status = ? AND c.vehicle_id = ? AND c.gender = ? AND i.size = ?
		 ORDER BY i.tag`,
		string(model.StatusAvailable), vehicleID, string(gender), string(size),
	)
	if err != nil {
		return nil, fmt.Errorf("listing available items: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// GetItemHeldBy returns the item the person currently has on loan, or nil.
func GetItemHeldBy(ctx context.Context, db *sql.DB, personID int64) (*model.InventoryItem, error) {
	return getItemHeldBy(ctx, db, personID)
}

func getItemHeldBy(ctx context.Context, q queryer, personID int64) (*model.InventoryItem, error) {
	item := &model.InventoryItem{}
	err := scanItem(q.QueryRowContext(ctx,
		`SELECT `+itemColumns+` WHERE i.holder_id = ? AND i.status = ? ORDER BY i.updated_at DESC LIMIT 1`,
		personID, string(model.StatusLoaned),
	), item)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting held item: %w", err)
	}
	return item, nil
}

func scanItems(rows *sql.Rows) ([]model.InventoryItem, error) {
	var items []model.InventoryItem
	for rows.Next() {
		var item model.InventoryItem
		if err := scanItem(rows, &item); err != nil {
			return nil, fmt.Errorf("scanning inventory item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
