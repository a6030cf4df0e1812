package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gamerpro/gamerpro/chat"
	"github.com/gamerpro/gamerpro/models"
	"github.com/gamerpro/gamerpro/repositories"
	"github.com/gamerpro/gamerpro/staging"
)

// StagingService drives the stage-progression workflow: generating groups for
// the current stage's eligibility pool and moving the stage pointer forward.
type StagingService interface {
	GenerateGroups(ctx context.Context, tournamentID int) ([]models.Group, error)
	AdvanceStage(ctx context.Context, tournamentID int) (*models.Tournament, error)
	ListGroups(ctx context.Context, tournamentID int) ([]models.Group, error)
}

type stagingService struct {
	txRunner       repositories.TxRunner
	tournamentRepo repositories.TournamentRepository
	regRepo        repositories.RegistrationRepository
	qualRepo       repositories.QualificationRepository
	groupRepo      repositories.GroupRepository
	generator      *staging.Generator
	hub            *staging.Hub
	notifier       chat.Notifier
	logger         *slog.Logger
}

func NewStagingService(
	txRunner repositories.TxRunner,
	tournamentRepo repositories.TournamentRepository,
	regRepo repositories.RegistrationRepository,
	qualRepo repositories.QualificationRepository,
	groupRepo repositories.GroupRepository,
	generator *staging.Generator,
	hub *staging.Hub,
	notifier chat.Notifier,
	logger *slog.Logger,
) StagingService {
	if notifier == nil {
		notifier = chat.NoopNotifier{}
	}
	return &stagingService{
		txRunner:       txRunner,
		tournamentRepo: tournamentRepo,
		regRepo:        regRepo,
		qualRepo:       qualRepo,
		groupRepo:      groupRepo,
		generator:      generator,
		hub:            hub,
		notifier:       notifier,
		logger:         logger,
	}
}

// GenerateGroups replaces the current stage's groups with a fresh random
// partition of that stage's eligibility pool. The delete and every insert run
// in one transaction under a per-tournament advisory lock, so a failure
// leaves the previous groups intact and two operators cannot interleave.
// Groups belonging to other stages are never touched.
func (s *stagingService) GenerateGroups(ctx context.Context, tournamentID int) ([]models.Group, error) {
	tournament, err := s.getTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	state, err := tournament.StageState()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	var created []models.Group
	err = s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if lockErr := s.groupRepo.AcquireStageLock(ctx, exec, tournament.ID); lockErr != nil {
			return fmt.Errorf("failed to lock tournament %d for staging: %w", tournament.ID, lockErr)
		}

		pool, poolErr := s.eligiblePool(ctx, exec, tournament.ID, state)
		if poolErr != nil {
			return poolErr
		}
		if len(pool) == 0 {
			return ErrNoEligibleTeams
		}

		if delErr := s.groupRepo.DeleteByTournamentAndStage(ctx, exec, tournament.ID, state.Name); delErr != nil {
			return fmt.Errorf("failed to clear groups for stage %q: %w", state.Name, delErr)
		}

		created = make([]models.Group, 0)
		for _, assignment := range s.generator.Partition(state.Name, pool) {
			group := models.Group{
				TournamentID: tournament.ID,
				StageName:    state.Name,
				Name:         assignment.Name,
			}
			if createErr := s.groupRepo.Create(ctx, exec, &group); createErr != nil {
				return fmt.Errorf("failed to create group %q: %w", group.Name, createErr)
			}
			if addErr := s.groupRepo.AddTeams(ctx, exec, group.ID, assignment.TeamIDs); addErr != nil {
				return fmt.Errorf("failed to add teams to group %q: %w", group.Name, addErr)
			}
			for _, teamID := range assignment.TeamIDs {
				group.Teams = append(group.Teams, models.GroupTeam{GroupID: group.ID, TeamID: teamID})
			}
			created = append(created, group)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.broadcast(staging.LobbyEvent{
		Type:         staging.EventGroupsUpdated,
		TournamentID: tournament.ID,
		Payload:      created,
	})
	s.notifyGroupsCreated(tournament, state, created)

	return created, nil
}

// AdvanceStage moves the tournament's stage pointer to the next name in its
// stage list. It does not regenerate groups or copy pools: later
// GenerateGroups calls read the qualification rows already written by the
// result recorder.
func (s *stagingService) AdvanceStage(ctx context.Context, tournamentID int) (*models.Tournament, error) {
	tournament, err := s.getTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	state, err := tournament.StageState()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	if state.IsLast {
		return nil, ErrAlreadyFinalStage
	}

	if err := s.tournamentRepo.UpdateCurrentStage(ctx, nil, tournament.ID, state.Next); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to advance tournament %d to stage %q: %w", tournament.ID, state.Next, err)
	}
	tournament.CurrentStage = state.Next

	s.broadcast(staging.LobbyEvent{
		Type:         staging.EventStageAdvanced,
		TournamentID: tournament.ID,
		Payload:      map[string]string{"current_stage": tournament.CurrentStage},
	})
	s.announce(fmt.Sprintf("🚀 **%s** has advanced to the **%s** stage!", tournament.Name, tournament.CurrentStage))

	return tournament, nil
}

func (s *stagingService) ListGroups(ctx context.Context, tournamentID int) ([]models.Group, error) {
	groups, err := s.groupRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups for tournament %d: %w", tournamentID, err)
	}
	return groups, nil
}

// eligiblePool selects the team pool for a stage: registrations feed the
// first stage, qualification rows targeting the stage feed every later one.
func (s *stagingService) eligiblePool(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, state models.StageState) ([]int, error) {
	if state.IsFirst {
		pool, err := s.regRepo.ListTeamIDs(ctx, exec, tournamentID)
		if err != nil {
			return nil, fmt.Errorf("failed to load registration pool: %w", err)
		}
		return pool, nil
	}

	pool, err := s.qualRepo.ListTeamIDsByToStage(ctx, exec, tournamentID, state.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to load qualification pool for stage %q: %w", state.Name, err)
	}
	return pool, nil
}

func (s *stagingService) getTournament(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return tournament, nil
}

func (s *stagingService) broadcast(event staging.LobbyEvent) {
	if s.hub != nil {
		s.hub.Broadcast(event)
	}
}

// notifyGroupsCreated sets up the tournament's chat space in the background.
// Failures are logged; the staging workflow never blocks on the chat platform.
func (s *stagingService) notifyGroupsCreated(tournament *models.Tournament, state models.StageState, groups []models.Group) {
	names := make([]string, 0, len(groups))
	for _, g := range groups {
		names = append(names, g.Name)
	}

	go func() {
		ctx := context.Background()
		if err := s.notifier.CreateTournamentSpace(ctx, tournament.ID, tournament.Name, names); err != nil {
			s.logger.Warn("failed to create chat space for tournament",
				slog.Int("tournament_id", tournament.ID), slog.Any("error", err))
		}
		msg := fmt.Sprintf("🎲 Groups for **%s** (%s) are live: %d group(s) drawn.",
			tournament.Name, state.Name, len(groups))
		if err := s.notifier.Announce(ctx, msg); err != nil {
			s.logger.Warn("failed to announce group generation",
				slog.Int("tournament_id", tournament.ID), slog.Any("error", err))
		}
	}()
}

func (s *stagingService) announce(message string) {
	go func() {
		if err := s.notifier.Announce(context.Background(), message); err != nil {
			s.logger.Warn("failed to send announcement", slog.Any("error", err))
		}
	}()
}
