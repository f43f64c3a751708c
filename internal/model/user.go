package model

import "time"

// User is the internal record for an identity-provider account. ExternalID
// is the provider's stable subject; at most one row exists per ExternalID.
type User struct {
	ID         string    `json:"id"`
	ExternalID string    `json:"external_id"`
	Email      string    `json:"email"`
	Name       *string   `json:"name,omitempty"`
	AvatarURL  *string   `json:"avatar_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Identity is what the identity provider tells us about the caller.
type Identity struct {
	ExternalID string
	Email      string
	Name       *string
	AvatarURL  *string
}
