package response

import (
	"time"

	"instructor-portal/internal/data/entity"
)

type AdminProfileResponse struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	IsInstructor bool       `json:"is_instructor"`
	Status       string     `json:"status"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

type ApprovalResponse struct {
	Profile AdminProfileResponse `json:"profile"`
	// NotificationError is set when the change was applied but its email failed
	NotificationError string `json:"notification_error,omitempty"`
}

func AdminProfileToResponse(p *entity.Profile, email string) AdminProfileResponse {
	return AdminProfileResponse{
		ID:           p.ID.String(),
		Email:        email,
		IsInstructor: p.IsInstructor,
		Status:       string(p.Status()),
		UpdatedAt:    p.UpdatedAt,
	}
}
