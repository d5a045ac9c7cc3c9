package models

import (
	"time"
)

type Person struct {
	ID            int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Username      string    `json:"username" gorm:"type:text;not null;uniqueIndex"`
	HumanName     string    `json:"humanName" gorm:"type:text;not null;default:''"`
	Email         string    `json:"email" gorm:"type:text;not null;uniqueIndex"`
	Telephone     string    `json:"telephone" gorm:"type:text;not null;default:''"`
	PostalAddress string    `json:"postalAddress" gorm:"type:text;not null;default:''"`
	CountryCode   string    `json:"countryCode" gorm:"type:varchar(2);not null;default:''"`
	Status        string    `json:"status" gorm:"type:text;not null;default:'active'"`
	CreatedAt     time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt     time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

type Group struct {
	ID             int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name           string    `json:"name" gorm:"type:text;not null;uniqueIndex"`
	DisplayName    string    `json:"displayName" gorm:"type:text"`
	OwnerID        int64     `json:"ownerId" gorm:"index"`
	PrerequisiteID *int64    `json:"prerequisiteId" gorm:"index"`
	Prerequisite   *Group    `json:"-" gorm:"foreignKey:PrerequisiteID;references:ID;constraint:OnDelete:RESTRICT;"`
	CreatedAt      time.Time `json:"createdAt" gorm:"autoCreateTime"`
}

// Role is the membership of one person in one group.
type Role struct {
	ID           int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	PersonID     int64      `json:"personId" gorm:"not null;uniqueIndex:uniq_role_person_group"`
	Person       Person     `json:"-" gorm:"foreignKey:PersonID;references:ID;constraint:OnDelete:RESTRICT;"`
	GroupID      int64      `json:"groupId" gorm:"not null;uniqueIndex:uniq_role_person_group;index"`
	Group        Group      `json:"-" gorm:"foreignKey:GroupID;references:ID;constraint:OnDelete:RESTRICT;"`
	RoleStatus   string     `json:"roleStatus" gorm:"type:text;not null;default:'unapproved';index"`
	SponsorID    *int64     `json:"sponsorId"`
	CreationTime time.Time  `json:"creationTime" gorm:"not null"`
	ApprovalTime *time.Time `json:"approvalTime"`
}

// Log is the append-only audit trail.
type Log struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	AuthorID    int64     `json:"authorId" gorm:"not null;index"`
	TargetID    *int64    `json:"targetId" gorm:"index"`
	Description string    `json:"description" gorm:"type:text;not null"`
	ChangeTime  time.Time `json:"changeTime" gorm:"not null;index"`
}
