package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gamerpro/gamerpro/models"
	"github.com/gamerpro/gamerpro/repositories"
	"github.com/gamerpro/gamerpro/storage"
)

type TournamentInput struct {
	Name     string   `json:"name"`
	Game     string   `json:"game"`
	Prize    string   `json:"prize"`
	Stages   []string `json:"stages"`
	MaxTeams int      `json:"max_teams"`
}

type TournamentService interface {
	Create(ctx context.Context, input TournamentInput) (*models.Tournament, error)
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context) ([]models.Tournament, error)
	Update(ctx context.Context, id int, input TournamentInput) (*models.Tournament, error)
	Delete(ctx context.Context, id int) error
	UploadBanner(ctx context.Context, id int, contentType string, body io.Reader) (*models.Tournament, error)
}

type tournamentService struct {
	tournamentRepo repositories.TournamentRepository
	files          storage.FileStorage
}

func NewTournamentService(tournamentRepo repositories.TournamentRepository, files storage.FileStorage) TournamentService {
	return &tournamentService{tournamentRepo: tournamentRepo, files: files}
}

func validateTournamentInput(input *TournamentInput) error {
	input.Name = strings.TrimSpace(input.Name)
	input.Game = strings.TrimSpace(input.Game)

	if input.Name == "" || input.Game == "" {
		return fmt.Errorf("%w: name and game are required", ErrValidationFailed)
	}
	if input.MaxTeams <= 0 {
		return fmt.Errorf("%w: max_teams must be positive", ErrValidationFailed)
	}

	stages := make([]string, 0, len(input.Stages))
	seen := make(map[string]bool)
	for _, stage := range input.Stages {
		stage = strings.TrimSpace(stage)
		if stage == "" {
			continue
		}
		if seen[stage] {
			return fmt.Errorf("%w: duplicate stage name %q", ErrValidationFailed, stage)
		}
		seen[stage] = true
		stages = append(stages, stage)
	}
	if len(stages) == 0 {
		return ErrStagesRequired
	}
	input.Stages = stages
	return nil
}

func (s *tournamentService) Create(ctx context.Context, input TournamentInput) (*models.Tournament, error) {
	if err := validateTournamentInput(&input); err != nil {
		return nil, err
	}

	tournament := &models.Tournament{
		Name:         input.Name,
		Game:         input.Game,
		Prize:        input.Prize,
		Stages:       input.Stages,
		CurrentStage: input.Stages[0],
		MaxTeams:     input.MaxTeams,
	}

	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		if errors.Is(err, repositories.ErrTournamentNameConflict) {
			return nil, ErrTournamentNameConflict
		}
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}
	return tournament, nil
}

func (s *tournamentService) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.getTournament(ctx, id)
	if err != nil {
		return nil, err
	}
	s.populateBannerURL(tournament)
	return tournament, nil
}

func (s *tournamentService) List(ctx context.Context) ([]models.Tournament, error) {
	tournaments, err := s.tournamentRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	for i := range tournaments {
		s.populateBannerURL(&tournaments[i])
	}
	return tournaments, nil
}

// Update replaces the tournament's descriptive fields and its stage list. If
// the new stage list no longer contains the current stage, the pointer resets
// to the first stage.
func (s *tournamentService) Update(ctx context.Context, id int, input TournamentInput) (*models.Tournament, error) {
	if err := validateTournamentInput(&input); err != nil {
		return nil, err
	}

	tournament, err := s.getTournament(ctx, id)
	if err != nil {
		return nil, err
	}

	tournament.Name = input.Name
	tournament.Game = input.Game
	tournament.Prize = input.Prize
	tournament.Stages = input.Stages
	tournament.MaxTeams = input.MaxTeams

	if _, stateErr := tournament.StageState(); stateErr != nil {
		tournament.CurrentStage = input.Stages[0]
	}

	if err := s.tournamentRepo.Update(ctx, tournament); err != nil {
		if errors.Is(err, repositories.ErrTournamentNameConflict) {
			return nil, ErrTournamentNameConflict
		}
		return nil, fmt.Errorf("failed to update tournament %d: %w", id, err)
	}
	return tournament, nil
}

func (s *tournamentService) Delete(ctx context.Context, id int) error {
	tournament, err := s.getTournament(ctx, id)
	if err != nil {
		return err
	}

	if err := s.tournamentRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete tournament %d: %w", id, err)
	}

	if s.files != nil && tournament.BannerKey != nil {
		_ = s.files.Delete(ctx, *tournament.BannerKey)
	}
	return nil
}

func (s *tournamentService) UploadBanner(ctx context.Context, id int, contentType string, body io.Reader) (*models.Tournament, error) {
	if s.files == nil {
		return nil, fmt.Errorf("%w: file storage is not configured", ErrValidationFailed)
	}

	tournament, err := s.getTournament(ctx, id)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("tournaments/%d/banner", id)
	if err := s.files.Upload(ctx, key, contentType, body); err != nil {
		return nil, fmt.Errorf("failed to upload banner for tournament %d: %w", id, err)
	}
	if err := s.tournamentRepo.UpdateBannerKey(ctx, id, &key); err != nil {
		return nil, fmt.Errorf("failed to store banner key for tournament %d: %w", id, err)
	}

	tournament.BannerKey = &key
	s.populateBannerURL(tournament)
	return tournament, nil
}

func (s *tournamentService) getTournament(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return tournament, nil
}

func (s *tournamentService) populateBannerURL(t *models.Tournament) {
	if s.files == nil || t.BannerKey == nil {
		return
	}
	url := s.files.PublicURL(*t.BannerKey)
	if url != "" {
		t.BannerURL = &url
	}
}
