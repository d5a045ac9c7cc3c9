package domain

import (
	"errors"
	"fmt"
	"testing"

	pkgerrors "github.com/pkg/errors"
)

func TestOutcomeOf(t *testing.T) {
	tests := []struct {
		err    error
		kind   OutcomeKind
		reason string
	}{
		{nil, OutcomeSuccess, ""},
		{IncompleteSubmissionError{Reason: ReasonNotAgreed}, OutcomeIncompleteSubmission, ReasonNotAgreed},
		{ValidationError{Reason: ReasonInvalidTelephone}, OutcomeValidationFailed, ReasonInvalidTelephone},
		{pkgerrors.Wrap(ErrNotAuthorized, "reject"), OutcomeNotAuthorized, ""},
		{fmt.Errorf("wrapped: %w", GraphCycleError{GroupID: 3}), OutcomeGraphCycleDetected, ""},
		{Persistence("sponsor", errors.New("connection reset")), OutcomePersistenceError, ""},
		{Persistence("get person", NotFoundError{Resource: "person"}), OutcomeNotFound, "person not found"},
		{Persistence("apply", ErrPrerequisiteUnsatisfied), OutcomePrerequisiteUnsatisfied, ""},
		{ErrGroupExists, OutcomeConflict, ""},
		{errors.New("mystery"), OutcomeUnknown, ""},
	}

	for _, tt := range tests {
		got := OutcomeOf(tt.err)
		if got.Kind != tt.kind || got.Reason != tt.reason {
			t.Errorf("OutcomeOf(%v) = %v/%q, want %v/%q", tt.err, got.Kind, got.Reason, tt.kind, tt.reason)
		}
	}
}

func TestPersistencePassthrough(t *testing.T) {
	err := Persistence("outer", Persistence("inner", errors.New("boom")))
	var perr PersistenceError
	if !errors.As(err, &perr) || perr.Op != "inner" {
		t.Fatalf("expected the inner persistence error to be kept, got %v", err)
	}
	if Persistence("noop", nil) != nil {
		t.Fatalf("nil must stay nil")
	}
}
