package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/iho/bookkeeper/internal/usecase"
)

type consistencyStub struct {
	report *usecase.ConsistencyReport
	err    error
}

func (s consistencyStub) CheckConsistency(context.Context) (*usecase.ConsistencyReport, error) {
	return s.report, s.err
}

func TestLedgerHandler_CheckConsistency(t *testing.T) {
	tests := []struct {
		name       string
		stub       consistencyStub
		wantStatus int
		wantBody   string
	}{
		{
			name:       "consistent",
			stub:       consistencyStub{report: &usecase.ConsistencyReport{Consistent: true, EquationHolds: true, Entries: 3}},
			wantStatus: http.StatusOK,
			wantBody:   `"consistent":true`,
		},
		{
			name: "inconsistent",
			stub: consistencyStub{
				report: &usecase.ConsistencyReport{UnbalancedEntries: []string{"e9"}},
				err:    fmt.Errorf("%w: 1 entry", usecase.ErrInconsistentLedger),
			},
			wantStatus: http.StatusConflict,
			wantBody:   `"unbalanced_entries":["e9"]`,
		},
		{
			name:       "storage failure",
			stub:       consistencyStub{err: errors.New("db down")},
			wantStatus: http.StatusInternalServerError,
			wantBody:   "db down",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			NewLedgerHandler(tt.stub).CheckConsistency(rec, httptest.NewRequest(http.MethodGet, "/ledger/consistency", nil))

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Fatalf("expected %s in %s", tt.wantBody, rec.Body.String())
			}
		})
	}
}
