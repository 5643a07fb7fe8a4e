package domain

import (
	"time"

	"github.com/google/uuid"
)

// Base holds the identity and audit fields shared by every entity.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func newBase(now time.Time) Base {
	now = now.UTC()
	return Base{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now}
}
