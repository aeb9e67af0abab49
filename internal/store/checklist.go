package store

import (
	"context"
	"database/sql"
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/erazemk/kostumi/internal/lifecycle"
	"github.com/erazemk/kostumi/internal/model"
)

// reconcileChecklist brings a movement's checks in line with its costume's
// current checklist. Loan and return movements keep the values of labels still
// on the checklist, lose checks for removed labels and gain unchecked checks
// for new ones. Other movements have no checks. Running it twice is a no-op.
func reconcileChecklist(ctx context.Context, q queryer, movementID int64) error {
	var kind model.MovementKind
	var checklist string
	err := q.QueryRowContext(ctx,
		`SELECT m.kind, c.checklist
		 FROM movements m
		 JOIN inventory_items i ON i.tag = m.item_tag
		 JOIN costumes c ON c.id = i.costume_id
		 WHERE m.id = ?`, movementID,
	).Scan(&kind, &checklist)
	if err == sql.ErrNoRows {
		return lifecycle.NotFound("movement %d not found", movementID)
	}
	if err != nil {
		return fmt.Errorf("loading movement checklist: %w", err)
	}

	if !kind.Checked() {
		if _, err := q.ExecContext(ctx,
			`DELETE FROM movement_checks WHERE movement_id = ?`, movementID,
		); err != nil {
			return fmt.Errorf("clearing checks: %w", err)
		}
		return nil
	}

	labels := model.ChecklistItems(checklist)
	want := mapset.NewThreadUnsafeSet(labels...)

	existing, err := listChecks(ctx, q, movementID)
	if err != nil {
		return err
	}
	have := mapset.NewThreadUnsafeSet[string]()
	for _, c := range existing {
		have.Add(c.Label)
	}

	for _, stale := range have.Difference(want).ToSlice() {
		if _, err := q.ExecContext(ctx,
			`DELETE FROM movement_checks WHERE movement_id = ? AND label = ?`, movementID, stale,
		); err != nil {
			return fmt.Errorf("removing stale check %q: %w", stale, err)
		}
	}

	for _, label := range labels {
		if have.Contains(label) {
			continue
		}
		if _, err := q.ExecContext(ctx,
			`INSERT INTO movement_checks (movement_id, label, checked) VALUES (?, ?, 0)`, movementID, label,
		); err != nil {
			return fmt.Errorf("adding check %q: %w", label, err)
		}
	}

	return nil
}

// applyChecks writes check values onto a reconciled movement. In strict mode a
// label that is not on the checklist is rejected, otherwise it is skipped.
func applyChecks(ctx context.Context, q queryer, movementID int64, checks map[string]bool, strict bool) error {
	for label, checked := range checks {
		result, err := q.ExecContext(ctx,
			`UPDATE movement_checks SET checked = ? WHERE movement_id = ? AND label = ?`,
			checked, movementID, label,
		)
		if err != nil {
			return fmt.Errorf("updating check %q: %w", label, err)
		}
		if n, _ := result.RowsAffected(); n == 0 && strict {
			return lifecycle.Reject(lifecycle.CodeInvalid, "%q is not on the checklist", label)
		}
	}
	return nil
}

func listChecks(ctx context.Context, q queryer, movementID int64) ([]model.ChecklistCheck, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT label, checked FROM movement_checks WHERE movement_id = ? ORDER BY rowid`, movementID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing checks: %w", err)
	}
	defer rows.Close()

	var checks []model.ChecklistCheck
	for rows.Next() {
		var c model.ChecklistCheck
		if err := rows.Scan(&c.Label, &c.Checked); err != nil {
			return nil, fmt.Errorf("scanning check: %w", err)
		}
		checks = append(checks, c)
	}
	return checks, rows.Err()
}

// ReconcileMovement re-synchronizes a movement's checks with its costume's
// current checklist, for use after the checklist was edited.
func ReconcileMovement(ctx context.Context, db *sql.DB, movementID int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := reconcileChecklist(ctx, tx, movementID); err != nil {
		return err
	}
	return tx.Commit()
}

// SetMovementChecks toggles checklist values on a loan or return movement.
// The movement is reconciled first; unknown labels are rejected.
func SetMovementChecks(ctx context.Context, db *sql.DB, movementID int64, checks map[string]bool) (*model.Movement, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var kind model.MovementKind
	err = tx.QueryRowContext(ctx, `SELECT kind FROM movements WHERE id = ?`, movementID).Scan(&kind)
	if err == sql.ErrNoRows {
		return nil, lifecycle.NotFound("movement %d not found", movementID)
	}
	if err != nil {
		return nil, fmt.Errorf("getting movement kind: %w", err)
	}
	if !kind.Checked() {
		return nil, lifecycle.Reject(lifecycle.CodeInvalid, "%s movements have no checklist", kind)
	}

	if err := reconcileChecklist(ctx, tx, movementID); err != nil {
		return nil, err
	}
	if err := applyChecks(ctx, tx, movementID, checks, true); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing checks: %w", err)
	}
	return GetMovement(ctx, db, movementID)
}
