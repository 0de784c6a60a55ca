package utils

import "github.com/google/uuid"

// ==================== IDS ====================

// GenerateCartID returns an opaque id for a browsing-session cart
func GenerateCartID() string {
	return uuid.NewString()
}

// IsValidCartID rejects cookie values we did not issue
func IsValidCartID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
