package models

import (
	"time"
)

// ResumptionToken is the persisted pagination state behind an opaque token.
// A token is never mutated; every returned page mints a fresh one.
type ResumptionToken struct {
	Token     string    `json:"token" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	Start  int    `json:"start"`
	Limit  int    `json:"limit"`
	Prefix string `json:"prefix"`

	ExpiresAt time.Time `json:"expires_at" gorm:"index"`
}

// Expired reports whether the token state is past its TTL.
func (t *ResumptionToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
