package entity

import (
	"time"

	"github.com/google/uuid"
)

// Identity is the principal issued by the identity provider. It is only referenced here.
type Identity struct {
	ID    uuid.UUID
	Email string
}

// AuthSession holds the provider tokens that make up a browser session.
type AuthSession struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	Identity     Identity
}
