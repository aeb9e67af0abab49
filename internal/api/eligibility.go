package api

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/erazemk/kostumi/internal/store"
)

// EligibilityHandler answers whether a person may borrow an item.
type EligibilityHandler struct {
	DB *sql.DB
}

// Check handles GET /api/eligibility?person_id=&tag=. A refusal is reported
// like any other rejection, with the reason of the first failed check.
func (h *EligibilityHandler) Check(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	personID, err := strconv.ParseInt(q.Get("person_id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "person_id required")
		return
	}
	var tag int
	if v := q.Get("tag"); v != "" {
		if tag, err = strconv.Atoi(v); err != nil {
			jsonError(w, http.StatusBadRequest, "invalid tag")
			return
		}
	}

	e, err := store.ValidateLoanEligibility(r.Context(), h.DB, personID, tag, time.Now())
	if err != nil {
		storeError(w, r, err, "eligibility check")
		return
	}
	jsonResponse(w, http.StatusOK, e)
}
