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

// loanFacts gathers what the eligibility check needs about a person and an item.
func loanFacts(ctx context.Context, q queryer, personID int64, tag int, today time.Time) (lifecycle.LoanFacts, error) {
	f := lifecycle.LoanFacts{Tag: tag, PersonID: personID}
	var err error

	if tag != 0 {
		if f.Item, err = getInventoryItem(ctx, q, tag); err != nil {
			return f, err
		}
	}
	if f.Person, err = getPerson(ctx, q, personID); err != nil {
		return f, err
	}
	if f.Person == nil {
		return f, nil
	}
	if f.Registrations, err = upcomingRegistrations(ctx, q, personID, today); err != nil {
		return f, err
	}
	if f.HeldItem, err = getItemHeldBy(ctx, q, personID); err != nil {
		return f, err
	}
	return f, nil
}

// ValidateLoanEligibility checks whether the person may borrow the item with
// the given tag, judging event dates against today.
func ValidateLoanEligibility(ctx context.Context, db *sql.DB, personID int64, tag int, today time.Time) (*lifecycle.Eligibility, error) {
	f, err := loanFacts(ctx, db, personID, tag, today)
	if err != nil {
		return nil, err
	}
	e, err := lifecycle.CheckEligibility(f)
	metrics.ObserveEligibility(err)
	return e, err
}

// LoanRequest is a request to hand an inventory item to a person.
type LoanRequest struct {
	PersonID      int64
	Tag           int
	Note          string
	ResponsibleID int64
	Checks        map[string]bool
	Today         time.Time
}

// LoanItem checks eligibility and appends the loan movement in the same
// transaction, so the item cannot change hands between the two.
func LoanItem(ctx context.Context, db *sql.DB, req LoanRequest) (*model.Movement, *lifecycle.Eligibility, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	f, err := loanFacts(ctx, tx, req.PersonID, req.Tag, req.Today)
	if err != nil {
		return nil, nil, err
	}
	e, err := lifecycle.CheckEligibility(f)
	metrics.ObserveEligibility(err)
	if err != nil {
		return nil, nil, err
	}

	personID := req.PersonID
	id, err := appendMovement(ctx, tx, MovementRequest{
		Tag:           req.Tag,
		Kind:          model.KindLoan,
		Note:          req.Note,
		ResponsibleID: req.ResponsibleID,
		PersonID:      &personID,
		Checks:        req.Checks,
	})
	metrics.ObserveMovement(model.KindLoan, err)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("committing loan: %w", err)
	}

	m, err := GetMovement(ctx, db, id)
	if err != nil {
		return nil, nil, err
	}
	e.Item.Status = model.StatusLoaned
	e.Item.HolderID = &personID
	e.Item.HolderName = e.Person.Name
	return m, e, nil
}
