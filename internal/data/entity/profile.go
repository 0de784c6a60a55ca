package entity

import (
	"time"

	"github.com/google/uuid"
)

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
)

// Profile extends an Identity with the instructor approval flag. ID equals the identity id.
type Profile struct {
	ID           uuid.UUID  `db:"id"`
	IsInstructor bool       `db:"is_instructor"`
	UpdatedAt    *time.Time `db:"updated_at"`
}

func (p *Profile) Status() ApprovalStatus {
	if p.IsInstructor {
		return ApprovalApproved
	}
	return ApprovalPending
}
