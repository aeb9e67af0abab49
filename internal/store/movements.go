package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/erazemk/kostumi/internal/lifecycle"
	"github.com/erazemk/kostumi/internal/metrics"
	"github.com/erazemk/kostumi/internal/model"
)

// MovementRequest is a proposed ledger entry for one inventory item.
type MovementRequest struct {
	Tag  int
	Kind model.MovementKind
	// MovedAt is when the movement happened; zero means now. Earlier times
	// insert the entry into the ledger's past.
	MovedAt       time.Time
	Note          string
	ResponsibleID int64
	PersonID      *int64
	// Checks sets checklist values on loan and return entries. Labels that are
	// not on the costume's checklist are ignored.
	Checks map[string]bool
}

// AppendMovement validates a movement against the item's ledger, records it,
// updates the item and reconciles the movement's checklist, all in one
// transaction. Concurrent appends for the same item are serialized by the
// write lock taken at BEGIN, so a loser observes the winner's movement.
func AppendMovement(ctx context.Context, db *sql.DB, req MovementRequest) (*model.Movement, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	id, err := appendMovement(ctx, tx, req)
	metrics.ObserveMovement(req.Kind, err)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing movement: %w", err)
	}

	return GetMovement(ctx, db, id)
}

// appendMovement runs validate → append → update item → reconcile on tx and
// returns the new movement's ID.
func appendMovement(ctx context.Context, tx *sql.Tx, req MovementRequest) (int64, error) {
	if req.ResponsibleID == 0 {
		return 0, lifecycle.Reject(lifecycle.CodeInvalid, "responsible user is required")
	}
	var users int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE id = ?`, req.ResponsibleID,
	).Scan(&users); err != nil {
		return 0, fmt.Errorf("checking responsible user: %w", err)
	}
	if users == 0 {
		return 0, lifecycle.NotFound("user %d not found", req.ResponsibleID)
	}

	item, err := getInventoryItem(ctx, tx, req.Tag)
	if err != nil {
		return 0, err
	}
	if item == nil {
		return 0, lifecycle.NotFound("inventory item #%d not found", req.Tag)
	}

	movedAt := req.MovedAt
	if movedAt.IsZero() {
		movedAt = time.Now()
	}
	movedAt = movedAt.UTC()

	previous, err := adjacentKind(ctx, tx, req.Tag,
		`moved_at < ? ORDER BY moved_at DESC`, movedAt)
	if err != nil {
		return 0, err
	}
	next, err := adjacentKind(ctx, tx, req.Tag,
		`moved_at > ? ORDER BY moved_at ASC`, movedAt)
	if err != nil {
		return 0, err
	}

	var clash int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM movements WHERE item_tag = ? AND moved_at = ?`, req.Tag, movedAt,
	).Scan(&clash); err != nil {
		return 0, fmt.Errorf("checking movement time: %w", err)
	}
	if clash > 0 {
		return 0, lifecycle.Reject(lifecycle.CodeConflict, "%s already has a movement at %s", item, movedAt.Format(time.RFC3339))
	}

	status, err := lifecycle.Validate(previous, req.Kind)
	if err != nil {
		return 0, err
	}
	if next != nil {
		if _, err := lifecycle.Validate(&req.Kind, *next); err != nil {
			return 0, lifecycle.Reject(lifecycle.CodeConflict, "%s at %s conflicts with the later %s movement: %v",
				req.Kind, movedAt.Format(time.RFC3339), *next, err)
		}
	}

	personID := req.PersonID
	if personID == nil && req.Kind == model.KindReturn && next == nil {
		personID = item.HolderID
	}
	if req.Kind == model.KindLoan && personID == nil {
		return 0, lifecycle.Reject(lifecycle.CodePersonRequired, "a loan requires a person")
	}
	if personID != nil {
		person, err := getPerson(ctx, tx, *personID)
		if err != nil {
			return 0, err
		}
		if person == nil {
			return 0, lifecycle.NotFound("person %d not found", *personID)
		}
		if req.Kind == model.KindLoan {
			if err := lifecycle.ValidateLoanGender(item.CostumeGender, person.Gender); err != nil {
				return 0, err
			}
		}
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO movements (item_tag, moved_at, kind, note, responsible_id, person_id)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		req.Tag, movedAt, string(req.Kind), req.Note, req.ResponsibleID, personID,
	)
	if err != nil {
		return 0, fmt.Errorf("recording movement: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting movement id: %w", err)
	}

	// A backdated entry with later movements leaves the item as the latest
	// movement described it.
	if next == nil {
		var holder *int64
		if req.Kind == model.KindLoan {
			holder = personID
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE inventory_items SET status = ?, holder_id = ?, responsible_id = ?, updated_at = ?
			 WHERE tag = ?`,
			string(status), holder, req.ResponsibleID, movedAt, req.Tag,
		)
		if err != nil {
			return 0, fmt.Errorf("updating inventory item: %w", err)
		}
	}

	if err := reconcileChecklist(ctx, tx, id); err != nil {
		return 0, err
	}
	if len(req.Checks) > 0 && req.Kind.Checked() {
		if err := applyChecks(ctx, tx, id, req.Checks, false); err != nil {
			return 0, err
		}
	}

	if err := verifyLedger(ctx, tx, req.Tag); err != nil {
		slog.Error("ledger invariant violated, rolling back", "tag", req.Tag, "kind", req.Kind, "error", err)
		return 0, err
	}

	return id, nil
}

// adjacentKind returns the kind of the nearest movement of the item on one
// side of at, or nil when there is none. cond orders the search direction.
func adjacentKind(ctx context.Context, q queryer, tag int, cond string, at time.Time) (*model.MovementKind, error) {
	var kind model.MovementKind
	err := q.QueryRowContext(ctx,
		`SELECT kind FROM movements WHERE item_tag = ? AND `+cond+` LIMIT 1`, tag, at,
	).Scan(&kind)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding adjacent movement: %w", err)
	}
	return &kind, nil
}

// verifyLedger checks that the item's first movement is an intake and that its
// stored status matches its latest movement.
func verifyLedger(ctx context.Context, q queryer, tag int) error {
	var first, last model.MovementKind
	if err := q.QueryRowContext(ctx,
		`SELECT kind FROM movements WHERE item_tag = ? ORDER BY moved_at ASC LIMIT 1`, tag,
	).Scan(&first); err != nil {
		return fmt.Errorf("reading first movement: %w", err)
	}
	if first != model.KindIntake {
		return fmt.Errorf("%w: first movement of #%d is %s", lifecycle.ErrIntegrity, tag, first)
	}

	var status model.Status
	if err := q.QueryRowContext(ctx,
		`SELECT m.kind, i.status FROM movements m JOIN inventory_items i ON i.tag = m.item_tag
		 WHERE m.item_tag = ? ORDER BY m.moved_at DESC LIMIT 1`, tag,
	).Scan(&last, &status); err != nil {
		return fmt.Errorf("reading latest movement: %w", err)
	}
	if want := lifecycle.StatusFor(last); status != want {
		return fmt.Errorf("%w: #%d has status %s but latest movement %s implies %s",
			lifecycle.ErrIntegrity, tag, status, last, want)
	}
	return nil
}

const movementColumns = `m.id, m.item_tag, m.moved_at, m.kind, m.note, m.responsible_id, m.person_id,
	        COALESCE(u.username, ''), COALESCE(p.name, '')
	 FROM movements m
	 LEFT JOIN users u ON u.id = m.responsible_id
	 LEFT JOIN people p ON p.id = m.person_id`

func scanMovement(s scanner, m *model.Movement) error {
	return s.Scan(&m.ID, &m.ItemTag, &m.MovedAt, &m.Kind, &m.Note, &m.ResponsibleID, &m.PersonID,
		&m.ResponsibleName, &m.PersonName)
}

// GetMovement returns a movement with its checklist checks.
func GetMovement(ctx context.Context, db *sql.DB, id int64) (*model.Movement, error) {
	m := &model.Movement{}
	err := scanMovement(db.QueryRowContext(ctx, `SELECT `+movementColumns+` WHERE m.id = ?`, id), m)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting movement: %w", err)
	}

	m.Checks, err = listChecks(ctx, db, id)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ListMovements returns an item's ledger in chronological order.
func ListMovements(ctx context.Context, db *sql.DB, tag int) ([]model.Movement, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+movementColumns+` WHERE m.item_tag = ? ORDER BY m.moved_at ASC`, tag,
	)
	if err != nil {
		return nil, fmt.Errorf("listing movements: %w", err)
	}
	defer rows.Close()

	var movements []model.Movement
	for rows.Next() {
		var m model.Movement
		if err := scanMovement(rows, &m); err != nil {
			return nil, fmt.Errorf("scanning movement: %w", err)
		}
		movements = append(movements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for i := range movements {
		if !movements[i].Kind.Checked() {
			continue
		}
		movements[i].Checks, err = listChecks(ctx, db, movements[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return movements, nil
}
