package domain

import "time"

// GameDefinition is one row of the game registry. Matches can only be created
// for kinds flagged active; the registry authority toggles them.
type GameDefinition struct {
	Kind         GameKind  `json:"kind"`
	Name         string    `json:"name"`
	IsActive     bool      `json:"is_active"`
	TotalMatches int64     `json:"total_matches"`
	CreatedAt    time.Time `json:"created_at"`
}
