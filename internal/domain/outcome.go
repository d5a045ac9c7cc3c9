package domain

import "errors"

type OutcomeKind int

const (
	OutcomeUnknown OutcomeKind = iota
	OutcomeSuccess
	OutcomeAlreadyCompleted
	OutcomeIncompleteSubmission
	OutcomeValidationFailed
	OutcomePersistenceError
	OutcomeNotAuthorized
	OutcomeNotAuthenticated
	OutcomeNotFound
	OutcomeGraphCycleDetected
	OutcomeAlreadyApplied
	OutcomeAlreadyApproved
	OutcomePrerequisiteUnsatisfied
	OutcomeConflict
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "Success"
	case OutcomeAlreadyCompleted:
		return "AlreadyCompleted"
	case OutcomeIncompleteSubmission:
		return "IncompleteSubmission"
	case OutcomeValidationFailed:
		return "ValidationFailed"
	case OutcomePersistenceError:
		return "PersistenceError"
	case OutcomeNotAuthorized:
		return "NotAuthorized"
	case OutcomeNotAuthenticated:
		return "NotAuthenticated"
	case OutcomeNotFound:
		return "NotFound"
	case OutcomeGraphCycleDetected:
		return "GraphCycleDetected"
	case OutcomeAlreadyApplied:
		return "AlreadyApplied"
	case OutcomeAlreadyApproved:
		return "AlreadyApproved"
	case OutcomePrerequisiteUnsatisfied:
		return "PrerequisiteUnsatisfied"
	case OutcomeConflict:
		return "Conflict"
	default:
		return "Unknown"
	}
}

// Outcome is the result of a state-changing operation as seen by the caller.
type Outcome struct {
	Kind   OutcomeKind `json:"kind"`
	Reason string      `json:"reason,omitempty"`
}

func (o Outcome) OK() bool {
	switch o.Kind {
	case OutcomeSuccess, OutcomeAlreadyCompleted, OutcomeAlreadyApplied, OutcomeAlreadyApproved:
		return true
	}
	return false
}

// OutcomeOf classifies err. A nil error is a success.
func OutcomeOf(err error) Outcome {
	if err == nil {
		return Outcome{Kind: OutcomeSuccess}
	}

	var incomplete IncompleteSubmissionError
	if errors.As(err, &incomplete) {
		return Outcome{Kind: OutcomeIncompleteSubmission, Reason: incomplete.Reason}
	}
	var invalid ValidationError
	if errors.As(err, &invalid) {
		return Outcome{Kind: OutcomeValidationFailed, Reason: invalid.Reason}
	}

	switch {
	case errors.Is(err, ErrAlreadyCompleted):
		return Outcome{Kind: OutcomeAlreadyCompleted}
	case errors.Is(err, ErrNotAuthorized):
		return Outcome{Kind: OutcomeNotAuthorized}
	case errors.Is(err, ErrNotAuthenticated):
		return Outcome{Kind: OutcomeNotAuthenticated}
	case errors.Is(err, ErrGraphCycleDetected):
		return Outcome{Kind: OutcomeGraphCycleDetected}
	case errors.Is(err, ErrAlreadyApplied):
		return Outcome{Kind: OutcomeAlreadyApplied}
	case errors.Is(err, ErrAlreadyApproved):
		return Outcome{Kind: OutcomeAlreadyApproved}
	case errors.Is(err, ErrPrerequisiteUnsatisfied):
		return Outcome{Kind: OutcomePrerequisiteUnsatisfied}
	case errors.Is(err, ErrGroupExists):
		return Outcome{Kind: OutcomeConflict}
	case errors.Is(err, ErrNotFound):
		return Outcome{Kind: OutcomeNotFound, Reason: err.Error()}
	case errors.Is(err, ErrPersistence):
		return Outcome{Kind: OutcomePersistenceError}
	}
	return Outcome{Kind: OutcomeUnknown}
}
