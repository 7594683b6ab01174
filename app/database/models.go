package database

import (
	"time"
)

type Monitor struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	FeedURL   string     `json:"feed_url"`
	SheetID   string     `json:"sheet_id"`
	IsActive  bool       `json:"is_active"`
	LastCheck *time.Time `json:"last_check"` // nil until the first cycle completes
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
