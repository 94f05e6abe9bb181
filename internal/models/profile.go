package models

import (
	"fmt"
	"time"
)

type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

// CreatorStatus is the creator lifecycle state. It only carries meaning while
// IsCreator is set on the owning profile.
type CreatorStatus string

const (
	CreatorStatusUser     CreatorStatus = "user"
	CreatorStatusPending  CreatorStatus = "pending"
	CreatorStatusApproved CreatorStatus = "approved"
	CreatorStatusRejected CreatorStatus = "rejected"
)

// ParseCreatorStatus accepts only the four stored values.
func ParseCreatorStatus(s string) (CreatorStatus, error) {
	switch CreatorStatus(s) {
	case CreatorStatusUser, CreatorStatusPending, CreatorStatusApproved, CreatorStatusRejected:
		return CreatorStatus(s), nil
	default:
		return "", fmt.Errorf("unknown creator status %q", s)
	}
}

func (s CreatorStatus) Valid() bool {
	_, err := ParseCreatorStatus(string(s))
	return err == nil
}

type Profile struct {
	ID           string
	Email        string
	PasswordHash []byte
	Username     string
	AvatarURL    *string
	Role         UserRole

	IsCreator     bool
	CreatorStatus CreatorStatus

	CreatorBio      *string
	YearsExperience *string
	PortfolioURL    *string
	Twitter         *string
	YouTube         *string
	Itchio          *string

	CreatorApplicationSubmittedAt *time.Time
	CreatorJoinedAt               *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreatorApplication is what the enrollment form writes when moving a
// profile from user to pending.
type CreatorApplication struct {
	Bio             *string
	YearsExperience string
	PortfolioURL    *string
	Twitter         *string
	YouTube         *string
	Itchio          *string
}

// ProfileSettings is the subset of a profile its owner may edit. Email is
// not part of it.
type ProfileSettings struct {
	Username *string
	Bio      *string
	Twitter  *string
	YouTube  *string
	Itchio   *string
}
