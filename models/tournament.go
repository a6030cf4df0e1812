package models

import (
	"errors"
	"time"
)

// ErrStageNotInList is returned when a tournament's current_stage points at a
// name that is not a member of its stage list.
var ErrStageNotInList = errors.New("current stage is not a member of the tournament stage list")

// Tournament represents one competition. Stages is the ordered list of phase
// names; CurrentStage points at the phase the staging workflow operates on and
// must always be a member of Stages (an empty pointer means the first stage).
type Tournament struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Game         string    `json:"game"`
	Prize        string    `json:"prize"`
	Stages       []string  `json:"stages"`
	CurrentStage string    `json:"current_stage"`
	MaxTeams     int       `json:"max_teams"`
	BannerKey    *string   `json:"-"`
	BannerURL    *string   `json:"banner_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// StageState is an explicit snapshot of where a tournament sits in its stage
// list. Every staging operation takes one of these instead of re-reading
// ambient tournament state, so the dependency is visible and testable.
type StageState struct {
	Name    string `json:"name"`
	Index   int    `json:"index"`
	IsFirst bool   `json:"is_first"`
	IsLast  bool   `json:"is_last"`
	// Next is the name of the following stage; empty when IsLast.
	Next string `json:"next,omitempty"`
}

// StageState resolves the tournament's current stage against its stage list.
// An unset current_stage defaults to the first stage; a current_stage missing
// from the list is an invariant violation.
func (t *Tournament) StageState() (StageState, error) {
	if len(t.Stages) == 0 {
		return StageState{}, ErrStageNotInList
	}

	name := t.CurrentStage
	if name == "" {
		name = t.Stages[0]
	}

	for i, stage := range t.Stages {
		if stage != name {
			continue
		}
		state := StageState{
			Name:    stage,
			Index:   i,
			IsFirst: i == 0,
			IsLast:  i == len(t.Stages)-1,
		}
		if !state.IsLast {
			state.Next = t.Stages[i+1]
		}
		return state, nil
	}
	return StageState{}, ErrStageNotInList
}
