package models

import "time"

// EventRole is a user's role relative to a single event. Roles are scoped
// per event, not global: the same user can be an admin of one event and a
// plain player (or nothing) in another.
type EventRole string

const (
	EventRoleAdmin  EventRole = "admin"
	EventRolePlayer EventRole = "player"
	EventRoleNone   EventRole = "none"
)

type Event struct {
	ID        int        `json:"event_id" db:"id"`
	Name      string     `json:"name" db:"name"`
	StartDate time.Time  `json:"start_date" db:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty" db:"end_date"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	LogoKey   *string    `json:"-" db:"logo_key"`
	LogoURL   *string    `json:"logo_url,omitempty" db:"-"`

	// Related entities, populated by the service layer, not mapped directly.
	Admins  []User  `json:"admins,omitempty" db:"-"`
	Players []User  `json:"players,omitempty" db:"-"`
	Matches []Match `json:"matches,omitempty" db:"-"`
}
