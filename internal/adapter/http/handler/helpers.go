package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/iho/bookkeeper/internal/adapter/http/dto"
	"github.com/iho/bookkeeper/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, dto.ErrorResponse{Error: message, Message: details})
}

// writeDomainError writes err with the status statusFor picks for it.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	writeError(w, statusFor(err), message, err.Error())
}

// errorStatuses is searched in order; the first sentinel err wraps wins.
var errorStatuses = []struct {
	err    error
	status int
}{
	{domain.ErrUnknownAccount, http.StatusNotFound},
	{domain.ErrEntryNotFound, http.StatusNotFound},
	{domain.ErrPeriodNotFound, http.StatusNotFound},

	{domain.ErrDuplicateAccount, http.StatusConflict},
	{domain.ErrRetainedEarningsExists, http.StatusConflict},
	{domain.ErrAlreadyReversed, http.StatusConflict},
	{domain.ErrAlreadyClosed, http.StatusConflict},
	{domain.ErrOverlappingPeriod, http.StatusConflict},
	{domain.ErrPeriodClosed, http.StatusConflict},

	{domain.ErrUnbalancedEntry, http.StatusUnprocessableEntity},
	{domain.ErrInactiveAccount, http.StatusUnprocessableEntity},
	{domain.ErrNoRetainedEarnings, http.StatusUnprocessableEntity},
	{domain.ErrNotReversible, http.StatusUnprocessableEntity},
	{domain.ErrUnbalancedPeriod, http.StatusUnprocessableEntity},
	{domain.ErrPeriodNotClosed, http.StatusUnprocessableEntity},

	{domain.ErrInvalidClassification, http.StatusBadRequest},
	{domain.ErrContraParentNotRegular, http.StatusBadRequest},
	{domain.ErrEmptyEntry, http.StatusBadRequest},
	{domain.ErrInvalidPosting, http.StatusBadRequest},
	{domain.ErrInvalidAmount, http.StatusBadRequest},
	{domain.ErrInvalidPeriod, http.StatusBadRequest},
	{domain.ErrInvalidAccountName, http.StatusBadRequest},
	{domain.ErrAmountTooLarge, http.StatusBadRequest},
	{domain.ErrMetadataTooLarge, http.StatusBadRequest},
}

func statusFor(err error) int {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

// parseIntQuery returns fallback when key is missing or not an integer.
// Range checks belong to the use case.
func parseIntQuery(r *http.Request, key string, fallback int) int {
	if n, err := strconv.Atoi(r.URL.Query().Get(key)); err == nil {
		return n
	}
	return fallback
}

// parseDateQuery parses an optional date query parameter. A missing
// parameter yields nil.
func parseDateQuery(r *http.Request, key string) (*time.Time, error) {
	val := r.URL.Query().Get(key)
	if val == "" {
		return nil, nil
	}
	t, err := dto.ParseDate(val)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return &t, nil
}

// parseRange parses the from and to query parameters. A range whose end
// precedes its start is rejected.
func parseRange(r *http.Request) (from, to *time.Time, err error) {
	if from, err = parseDateQuery(r, "from"); err != nil {
		return nil, nil, err
	}
	if to, err = parseDateQuery(r, "to"); err != nil {
		return nil, nil, err
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, nil, fmt.Errorf("to %s is before from %s", to.Format(time.DateOnly), from.Format(time.DateOnly))
	}
	return from, to, nil
}

// decodeJSON decodes the request body into v, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// decodeOptionalJSON is decodeJSON for endpoints whose body may be empty.
func decodeOptionalJSON(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := decodeJSON(r, v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
