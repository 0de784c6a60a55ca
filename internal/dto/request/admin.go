package request

// RejectProfileRequest must repeat the profile id to confirm the irreversible delete.
type RejectProfileRequest struct {
	Confirm string `json:"confirm" validate:"required"`
}
