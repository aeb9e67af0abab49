package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/erazemk/kostumi/internal/lifecycle"
	"github.com/erazemk/kostumi/internal/model"
)

// CostumeParams are the editable fields of a costume definition.
type CostumeParams struct {
	Name      string
	VehicleID *int64
	Gender    model.Gender
	Checklist string
}

// validate normalizes the checklist in place and rejects bad input.
func (p *CostumeParams) validate(ctx context.Context, db *sql.DB) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return lifecycle.Reject(lifecycle.CodeInvalid, "costume name is required")
	}
	if !p.Gender.Valid() {
		return lifecycle.Reject(lifecycle.CodeInvalid, "invalid gender %q", p.Gender)
	}
	p.Checklist = model.NormalizeChecklist(p.Checklist)
	if p.Checklist == "" {
		return lifecycle.Reject(lifecycle.CodeInvalid, "checklist must contain at least one item")
	}
	if p.VehicleID != nil {
		v, err := GetVehicle(ctx, db, *p.VehicleID)
		if err != nil {
			return err
		}
		if v == nil {
			return lifecycle.NotFound("vehicle %d not found", *p.VehicleID)
		}
	}
	return nil
}

// CreateCostume creates a new costume definition.
func CreateCostume(ctx context.Context, db *sql.DB, p CostumeParams) (*model.Costume, error) {
	if err := p.validate(ctx, db); err != nil {
		return nil, err
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO costumes (name, vehicle_id, gender, checklist) VALUES (?, ?, ?, ?)`,
		p.Name, p.VehicleID, string(p.Gender), p.Checklist,
	)
	if err != nil {
		return nil, fmt.Errorf("creating costume: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting costume id: %w", err)
	}

	return GetCostume(ctx, db, id)
}

// UpdateCostume updates a costume definition. Checks on existing movements are
// not touched; ReconcileMovement brings a movement in line with the new checklist.
func UpdateCostume(ctx context.Context, db *sql.DB, id int64, p CostumeParams) error {
	if err := p.validate(ctx, db); err != nil {
		return err
	}

	result, err := db.ExecContext(ctx,
		`UPDATE costumes SET name = ?, vehicle_id = ?, gender = ?, checklist = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		p.Name, p.VehicleID, string(p.Gender), p.Checklist, id,
	)
	if err != nil {
		return fmt.Errorf("updating costume: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return lifecycle.NotFound("costume %d not found", id)
	}
	return nil
}

const costumeColumns = `c.id, c.name, c.vehicle_id, c.gender, c.checklist, c.image_mime, c.created_at, c.updated_at,
	        COALESCE(v.name, '')
	 FROM costumes c
	 LEFT JOIN vehicles v ON v.id = c.vehicle_id`

// GetCostume returns a costume definition by ID.
func GetCostume(ctx context.Context, db *sql.DB, id int64) (*model.Costume, error) {
	c := &model.Costume{}
	var imageMime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT `+costumeColumns+` WHERE c.id = ?`, id,
	).Scan(&c.ID, &c.Name, &c.VehicleID, &c.Gender, &c.Checklist, &imageMime, &c.CreatedAt, &c.UpdatedAt, &c.VehicleName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting costume: %w", err)
	}
	c.ImageMime = imageMime.String
	return c, nil
}

// ListCostumes returns all costume definitions.
func ListCostumes(ctx context.Context, db *sql.DB) ([]model.Costume, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+costumeColumns+` ORDER BY c.name`)
	if err != nil {
		return nil, fmt.Errorf("listing costumes: %w", err)
	}
	defer rows.Close()

	var costumes []model.Costume
	for rows.Next() {
		var c model.Costume
		var imageMime sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &c.VehicleID, &c.Gender, &c.Checklist, &imageMime,
			&c.CreatedAt, &c.UpdatedAt, &c.VehicleName); err != nil {
			return nil, fmt.Errorf("scanning costume: %w", err)
		}
		c.ImageMime = imageMime.String
		costumes = append(costumes, c)
	}
	return costumes, rows.Err()
}

// SetCostumeImage sets a costume's photo.
func SetCostumeImage(ctx context.Context, db *sql.DB, id int64, image []byte, mime string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE costumes SET image = ?, image_mime = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		image, mime, id,
	)
	if err != nil {
		return fmt.Errorf("setting costume image: %w", err)
	}
	return nil
}

// GetCostumeImage returns a costume's photo and its MIME type.
func GetCostumeImage(ctx context.Context, db *sql.DB, id int64) ([]byte, string, error) {
	var image []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT image, image_mime FROM costumes WHERE id = ?`, id,
	).Scan(&image, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting costume image: %w", err)
	}
	return image, mime.String, nil
}
