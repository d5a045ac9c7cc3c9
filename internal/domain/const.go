package domain

const (
	RequesterIdCtxKey       = "fas-requesterId"
	RequesterUsernameCtxKey = "fas-requesterUsername"
)

const (
	RequesterAuthHeader = "authorization"
)

// MembershipStatus is the approval state of a person's role in a group.
type MembershipStatus string

const (
	StatusUnapproved MembershipStatus = "unapproved"
	StatusApproved   MembershipStatus = "approved"
)

// Audit descriptions written by the agreement workflow.
const (
	AuditCompletedCla = "Completed CLA"
	AuditRevokedCla   = "Revoked CLA"
)

const (
	AuditChannel = "fas.audit"
)
