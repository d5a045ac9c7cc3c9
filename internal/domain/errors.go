package domain

import (
	"errors"
	"fmt"
)

// NotFoundError represents a missing resource.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is enables errors.Is matching on NotFoundError.
func (e NotFoundError) Is(target error) bool {
	_, ok := target.(NotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*NotFoundError)
	return ok
}

// ErrNotFound is the sentinel error for missing resources.
var ErrNotFound = NotFoundError{}

var (
	ErrNotAuthorized           = errors.New("not authorized")
	ErrNotAuthenticated        = errors.New("not authenticated")
	ErrAlreadyCompleted        = errors.New("agreement already completed")
	ErrAlreadyApplied          = errors.New("already applied to group")
	ErrAlreadyApproved         = errors.New("membership already approved")
	ErrPrerequisiteUnsatisfied = errors.New("group prerequisite not satisfied")
	ErrGroupExists             = errors.New("group already exists")
)

// Reason codes reported with IncompleteSubmission and ValidationFailed.
const (
	ReasonNotAgreed           = "not agreed"
	ReasonNotConfirmed        = "not confirmed"
	ReasonMissingTelephone    = "missing telephone"
	ReasonMissingAddress      = "missing postal address"
	ReasonMissingName         = "missing name"
	ReasonMissingCountry      = "missing country code"
	ReasonInvalidCountry      = "invalid country code"
	ReasonInvalidTelephone    = "invalid telephone"
	ReasonImplausibleAddress  = "implausible postal address"
	ReasonProfileNotDisplayed = "profile incomplete"
)

// IncompleteSubmissionError is returned when the agreement was not accepted
// or the profile was not confirmed.
type IncompleteSubmissionError struct {
	Reason string
}

func (e IncompleteSubmissionError) Error() string {
	return "incomplete submission: " + e.Reason
}

func (e IncompleteSubmissionError) Is(target error) bool {
	switch target.(type) {
	case IncompleteSubmissionError, *IncompleteSubmissionError:
		return true
	}
	return false
}

var ErrIncompleteSubmission = IncompleteSubmissionError{}

// ValidationError is returned when the profile fails the completion heuristics.
type ValidationError struct {
	Reason string
}

func (e ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

func (e ValidationError) Is(target error) bool {
	switch target.(type) {
	case ValidationError, *ValidationError:
		return true
	}
	return false
}

var ErrValidationFailed = ValidationError{}

// PersistenceError wraps a failed read or write against the store.
type PersistenceError struct {
	Op  string
	Err error
}

func (e PersistenceError) Error() string {
	if e.Err == nil {
		return "persistence error: " + e.Op
	}
	return fmt.Sprintf("persistence error: %s: %v", e.Op, e.Err)
}

func (e PersistenceError) Unwrap() error {
	return e.Err
}

func (e PersistenceError) Is(target error) bool {
	switch target.(type) {
	case PersistenceError, *PersistenceError:
		return true
	}
	return false
}

var ErrPersistence = PersistenceError{}

var passthrough = []error{
	ErrPersistence,
	ErrNotFound,
	ErrNotAuthorized,
	ErrAlreadyApplied,
	ErrAlreadyApproved,
	ErrPrerequisiteUnsatisfied,
	ErrGroupExists,
	ErrGraphCycleDetected,
}

// Persistence wraps err as a PersistenceError unless it already is one or is
// a domain error the caller must see as-is.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, target := range passthrough {
		if errors.Is(err, target) {
			return err
		}
	}
	return PersistenceError{Op: op, Err: err}
}

// GraphCycleError reports a prerequisite chain that loops back on itself.
type GraphCycleError struct {
	GroupID int64
}

func (e GraphCycleError) Error() string {
	return fmt.Sprintf("group prerequisite cycle detected at group %d", e.GroupID)
}

func (e GraphCycleError) Is(target error) bool {
	switch target.(type) {
	case GraphCycleError, *GraphCycleError:
		return true
	}
	return false
}

var ErrGraphCycleDetected = GraphCycleError{}
