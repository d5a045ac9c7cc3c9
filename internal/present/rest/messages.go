package rest

import (
	"fmt"

	"github.com/nirik/fas/internal/domain"
)

const (
	msgProfileRequired = "A valid postal Address, country and telephone number are required to complete the CLA.  Please fill them out below."
	msgRejectForbidden = "You are not allowed to reject CLAs."
	msgRejected        = "CLA Successfully Removed."
	msgAlreadyDone     = "You have already completed the CLA."
	msgNotAgreed       = "You have not completed the CLA."
	msgNotConfirmed    = "You must confirm that your personal information is accurate."
	msgProfileMissing  = "To complete the CLA, we must have your name, telephone number, postal address, and country.  Please ensure they have been filled out."
	msgBadCountry      = "To complete the CLA, a valid country code must be specified.  Please select one now."
	msgBadTelephone    = `Telephone numbers can only consist of numbers, "-", "+", "(", ")", or " ".  Please reenter using only those characters.`
	msgBadAddress      = "Can the postal system really deliver to that address?"
)

func submitMessage(outcome domain.Outcome, group string) string {
	switch outcome.Kind {
	case domain.OutcomeSuccess:
		return fmt.Sprintf("You have successfully completed the CLA.  You are now in the '%s' group.", group)
	case domain.OutcomeAlreadyCompleted:
		return msgAlreadyDone
	case domain.OutcomeIncompleteSubmission:
		if outcome.Reason == domain.ReasonNotConfirmed {
			return msgNotConfirmed
		}
		return msgNotAgreed
	case domain.OutcomeValidationFailed:
		switch outcome.Reason {
		case domain.ReasonInvalidCountry:
			return msgBadCountry
		case domain.ReasonInvalidTelephone:
			return msgBadTelephone
		case domain.ReasonImplausibleAddress:
			return msgBadAddress
		}
		return msgProfileMissing
	case domain.OutcomePersistenceError:
		return fmt.Sprintf("You could not be added to the '%s' group.", group)
	}
	return ""
}

func rejectMessage(outcome domain.Outcome, username string) string {
	switch outcome.Kind {
	case domain.OutcomeSuccess:
		return msgRejected
	case domain.OutcomeNotAuthorized:
		return msgRejectForbidden
	case domain.OutcomePersistenceError, domain.OutcomeGraphCycleDetected:
		return fmt.Sprintf("Error removing cla and dependent groups for %s", username)
	}
	return ""
}
