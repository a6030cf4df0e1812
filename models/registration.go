package models

import "time"

// Registration links a team to a tournament and represents entry into the
// eligibility pool of the tournament's first stage. Deleting the row is how a
// team is disqualified.
type Registration struct {
	ID           int       `json:"id"`
	TournamentID int       `json:"tournament_id"`
	TeamID       int       `json:"team_id"`
	RegisteredAt time.Time `json:"registered_at"`

	Team *Team `json:"team,omitempty"`
}

// Qualification records that a team was promoted out of one stage into the
// next one. The (tournament, team, from_stage) triple is unique; re-qualifying
// the same team from the same stage overwrites the row. Qualification rows are
// the source of truth for which teams are eligible for any stage after the
// first.
type Qualification struct {
	ID           int       `json:"id"`
	TournamentID int       `json:"tournament_id"`
	TeamID       int       `json:"team_id"`
	FromStage    string    `json:"from_stage"`
	ToStage      string    `json:"to_stage"`
	StageNumber  int       `json:"stage_number"`
	CreatedAt    time.Time `json:"created_at"`

	Team *Team `json:"team,omitempty"`
}
