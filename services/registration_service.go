package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/gamerpro/gamerpro/models"
	"github.com/gamerpro/gamerpro/repositories"
)

type RegistrationService interface {
	// Register enters the actor's team into a tournament. The actor must own
	// the team, and the tournament must have capacity left.
	Register(ctx context.Context, actorID, tournamentID int) (*models.Registration, error)
	Withdraw(ctx context.Context, actorID, tournamentID int) error
	// Disqualify removes a team's registration by admin action. Unlike
	// Withdraw it is addressed by team, not by the acting user, and skips
	// the ownership check.
	Disqualify(ctx context.Context, tournamentID, teamID int) error
	ListByTournament(ctx context.Context, tournamentID int) ([]models.Registration, error)
}

type registrationService struct {
	regRepo        repositories.RegistrationRepository
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
}

func NewRegistrationService(
	regRepo repositories.RegistrationRepository,
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
) RegistrationService {
	return &registrationService{
		regRepo:        regRepo,
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
	}
}

func (s *registrationService) Register(ctx context.Context, actorID, tournamentID int) (*models.Registration, error) {
	team, err := s.ownedTeam(ctx, actorID)
	if err != nil {
		return nil, err
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	count, err := s.regRepo.CountByTournament(ctx, tournament.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count registrations: %w", err)
	}
	if count >= tournament.MaxTeams {
		return nil, ErrTournamentFull
	}

	reg := &models.Registration{TournamentID: tournament.ID, TeamID: team.ID}
	if err := s.regRepo.Create(ctx, reg); err != nil {
		switch {
		case errors.Is(err, repositories.ErrRegistrationConflict):
			return nil, ErrRegistrationConflict
		case errors.Is(err, repositories.ErrTeamNotFound):
			return nil, ErrTeamNotFound
		case errors.Is(err, repositories.ErrTournamentNotFound):
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to register team %d: %w", team.ID, err)
	}
	reg.Team = team
	return reg, nil
}

func (s *registrationService) Withdraw(ctx context.Context, actorID, tournamentID int) error {
	team, err := s.ownedTeam(ctx, actorID)
	if err != nil {
		return err
	}

	reg, err := s.regRepo.FindByTournamentAndTeam(ctx, tournamentID, team.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrRegistrationNotFound) {
			return ErrRegistrationNotFound
		}
		return err
	}

	if err := s.regRepo.Delete(ctx, reg.ID); err != nil {
		return fmt.Errorf("failed to withdraw registration %d: %w", reg.ID, err)
	}
	return nil
}

func (s *registrationService) Disqualify(ctx context.Context, tournamentID, teamID int) error {
	reg, err := s.regRepo.FindByTournamentAndTeam(ctx, tournamentID, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrRegistrationNotFound) {
			return ErrRegistrationNotFound
		}
		return err
	}

	if err := s.regRepo.Delete(ctx, reg.ID); err != nil {
		if errors.Is(err, repositories.ErrRegistrationNotFound) {
			return ErrRegistrationNotFound
		}
		return fmt.Errorf("failed to disqualify team %d from tournament %d: %w", teamID, tournamentID, err)
	}
	return nil
}

func (s *registrationService) ListByTournament(ctx context.Context, tournamentID int) ([]models.Registration, error) {
	regs, err := s.regRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations for tournament %d: %w", tournamentID, err)
	}
	return regs, nil
}

// ownedTeam resolves the actor's team and verifies ownership. Registration is
// an owner-only action.
func (s *registrationService) ownedTeam(ctx context.Context, actorID int) (*models.Team, error) {
	membership, err := s.teamRepo.FindMembershipByUser(ctx, actorID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamMemberNotFound) {
			return nil, ErrUserNotInTeam
		}
		return nil, fmt.Errorf("failed to find team membership: %w", err)
	}

	team, err := s.teamRepo.GetByID(ctx, membership.TeamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	if team.OwnerID != actorID {
		return nil, ErrNotTeamOwner
	}
	return team, nil
}
