package models

import "time"

// Group is a named bucket of teams for one stage of one tournament, e.g.
// "Qualifiers Group A" or "Wildcard". Groups belong to exactly one stage and
// are deleted and regenerated wholesale when that stage is re-staged.
type Group struct {
	ID           int       `json:"id"`
	TournamentID int       `json:"tournament_id"`
	StageName    string    `json:"stage_name"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`

	Teams []GroupTeam `json:"teams,omitempty"`
}

type GroupTeam struct {
	ID      int `json:"id"`
	GroupID int `json:"group_id"`
	TeamID  int `json:"team_id"`

	Team *Team `json:"team,omitempty"`
}
