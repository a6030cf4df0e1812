package services

import "errors"

// Shared errors used across services and the HTTP mapping layer.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business rules
	ErrValidationFailed       = errors.New("validation failed")
	ErrPasswordTooShort       = errors.New("password is too short")
	ErrTeamNameRequired       = errors.New("team name is required")
	ErrUserAlreadyInTeam      = errors.New("user is already in a team")
	ErrUserNotInTeam          = errors.New("user is not in a team")
	ErrNotTeamOwner           = errors.New("only the team owner can perform this action")
	ErrTournamentFull         = errors.New("tournament registration is full")
	ErrStagesRequired         = errors.New("tournament requires at least one stage")
	ErrInvalidJoinCode        = errors.New("invalid join code")
	ErrMatchFieldsRequired    = errors.New("start time, room id and room password are all required")
	ErrInvalidMatchTransition = errors.New("invalid match status transition")

	// Stage progression
	ErrNoEligibleTeams   = errors.New("no eligible teams for this stage")
	ErrFinalStage        = errors.New("final stage reached, no further qualification possible")
	ErrAlreadyFinalStage = errors.New("tournament is already at its final stage")

	// Conflicts
	ErrUserEmailConflict      = errors.New("email address is already in use")
	ErrUserNicknameConflict   = errors.New("nickname is already in use")
	ErrTeamNameConflict       = errors.New("team name is already in use")
	ErrTournamentNameConflict = errors.New("tournament name already exists")
	ErrRegistrationConflict   = errors.New("team is already registered for this tournament")

	// Authentication and authorization
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrForbiddenOperation     = errors.New("operation not allowed for the current user")

	// Entity-specific not-found errors
	ErrUserNotFound         = errors.New("user not found")
	ErrTeamNotFound         = errors.New("team not found")
	ErrTournamentNotFound   = errors.New("tournament not found")
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrGroupNotFound        = errors.New("group not found")
	ErrMatchNotFound        = errors.New("match not found")
)
