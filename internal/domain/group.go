package domain

import "time"

// Group is a named set of people. PrerequisiteID points at the group whose
// approved membership is required before this one can be approved.
type Group struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	DisplayName    string    `json:"displayName"`
	OwnerID        int64     `json:"ownerId"`
	PrerequisiteID *int64    `json:"prerequisiteId,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Membership is the role a person holds in a group.
type Membership struct {
	PersonID     int64            `json:"personId"`
	GroupID      int64            `json:"groupId"`
	Status       MembershipStatus `json:"status"`
	SponsorID    *int64           `json:"sponsorId,omitempty"`
	CreatedAt    time.Time        `json:"createdAt"`
	ApprovalTime *time.Time       `json:"approvalTime,omitempty"`
}

func (m Membership) Approved() bool {
	return m.Status == StatusApproved
}
