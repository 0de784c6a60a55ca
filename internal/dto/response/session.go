package response

import (
	"time"

	"instructor-portal/internal/data/entity"
)

type ProfileResponse struct {
	ID           string     `json:"id"`
	IsInstructor bool       `json:"is_instructor"`
	Status       string     `json:"status"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

type IdentityResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type SessionResponse struct {
	State       string            `json:"state"`
	Loading     bool              `json:"loading"`
	Identity    *IdentityResponse `json:"identity"`
	Profile     *ProfileResponse  `json:"profile"`
	IsAdmin     bool              `json:"is_admin"`
	TestingMode bool              `json:"testing_mode"`
	Error       string            `json:"error,omitempty"`
}

func ProfileToResponse(p *entity.Profile) *ProfileResponse {
	if p == nil {
		return nil
	}
	return &ProfileResponse{
		ID:           p.ID.String(),
		IsInstructor: p.IsInstructor,
		Status:       string(p.Status()),
		UpdatedAt:    p.UpdatedAt,
	}
}

func IdentityToResponse(i *entity.Identity) *IdentityResponse {
	if i == nil {
		return nil
	}
	return &IdentityResponse{ID: i.ID.String(), Email: i.Email}
}
