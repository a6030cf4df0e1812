package models

import "time"

// MatchStatus values correspond to the ENUM in the database.
type MatchStatus string

const (
	MatchStatusScheduled MatchStatus = "scheduled"
	MatchStatusLive      MatchStatus = "live"
	MatchStatusCompleted MatchStatus = "completed"
)

// CredentialRevealWindow is how long before a match's start time its room
// credentials become visible to competitors.
const CredentialRevealWindow = 15 * time.Minute

// Match is one scheduled contest for a group. MatchNumber is the sequence of
// the match within its group; it is not globally unique and is never
// renumbered when matches are deleted.
type Match struct {
	ID           int         `json:"id"`
	GroupID      int         `json:"group_id"`
	MatchNumber  int         `json:"match_number"`
	StartTime    time.Time   `json:"start_time"`
	RoomID       string      `json:"-"`
	RoomPassword string      `json:"-"`
	Status       MatchStatus `json:"status"`
	CreatedAt    time.Time   `json:"created_at"`
}

// MatchCredentials duplicates the room access fields keyed by match, so the
// reveal read path never touches the scheduling table. Match and
// MatchCredentials are one logical record with two access paths.
type MatchCredentials struct {
	MatchID      int    `json:"match_id"`
	RoomID       string `json:"room_id"`
	RoomPassword string `json:"room_password"`
}

// MatchResult is one team's outcome in one match. The (match, team) pair is
// unique; re-submitting results for the pair overwrites the row.
type MatchResult struct {
	ID        int  `json:"id"`
	MatchID   int  `json:"match_id"`
	TeamID    int  `json:"team_id"`
	Placement *int `json:"placement,omitempty"`
	Kills     int  `json:"kills"`
	Points    int  `json:"points"`

	Team *Team `json:"team,omitempty"`
}

// CanTransitionTo reports whether a match may move from its current status to
// next. Matches only move forward: scheduled -> live -> completed. Jumping
// straight from scheduled to completed is rejected.
func (m *Match) CanTransitionTo(next MatchStatus) bool {
	switch m.Status {
	case MatchStatusScheduled:
		return next == MatchStatusLive
	case MatchStatusLive:
		return next == MatchStatusCompleted
	}
	return false
}

// CredentialsVisibleAt reports whether room credentials are visible at the
// given instant. The gate is a pure function of the clock and the start time:
// open from start_time - CredentialRevealWindow onward, boundary inclusive.
// It is evaluated fresh on every read, never stored.
func (m *Match) CredentialsVisibleAt(now time.Time) bool {
	return CredentialsVisible(now, m.StartTime)
}

// CredentialsVisible is the gate itself, usable without a Match in hand.
func CredentialsVisible(now, startTime time.Time) bool {
	return !now.Before(startTime.Add(-CredentialRevealWindow))
}
