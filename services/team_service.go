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

// joinCodeAttempts bounds retries when a freshly generated code collides with
// an existing team's.
const joinCodeAttempts = 3

type CreateTeamInput struct {
	Name    string `json:"name"`
	OwnerID int    `json:"-"`
}

type TeamService interface {
	Create(ctx context.Context, input CreateTeamInput) (*models.Team, error)
	GetByID(ctx context.Context, id int) (*models.Team, error)
	List(ctx context.Context) ([]models.Team, error)
	// JoinByCode adds the user to the team matching the code. A user belongs
	// to at most one team at a time.
	JoinByCode(ctx context.Context, userID int, code string) (*models.Team, error)
	Leave(ctx context.Context, userID int) error
	Delete(ctx context.Context, actorID int, teamID int) error
	UploadLogo(ctx context.Context, actorID, teamID int, contentType string, body io.Reader) (*models.Team, error)
}

type teamService struct {
	teamRepo repositories.TeamRepository
	files    storage.FileStorage
}

func NewTeamService(teamRepo repositories.TeamRepository, files storage.FileStorage) TeamService {
	return &teamService{teamRepo: teamRepo, files: files}
}

func (s *teamService) Create(ctx context.Context, input CreateTeamInput) (*models.Team, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, ErrTeamNameRequired
	}

	if _, err := s.teamRepo.FindMembershipByUser(ctx, input.OwnerID); err == nil {
		return nil, ErrUserAlreadyInTeam
	} else if !errors.Is(err, repositories.ErrTeamMemberNotFound) {
		return nil, fmt.Errorf("failed to check team membership: %w", err)
	}

	team := &models.Team{
		Name:    input.Name,
		OwnerID: input.OwnerID,
	}

	var err error
	for attempt := 0; attempt < joinCodeAttempts; attempt++ {
		team.JoinCode = generateJoinCode()
		err = s.teamRepo.Create(ctx, team)
		if !errors.Is(err, repositories.ErrTeamJoinCodeConflict) {
			break
		}
	}
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNameConflict) {
			return nil, ErrTeamNameConflict
		}
		return nil, fmt.Errorf("failed to create team: %w", err)
	}

	member := &models.TeamMember{TeamID: team.ID, UserID: input.OwnerID}
	if err := s.teamRepo.AddMember(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to add owner to team %d: %w", team.ID, err)
	}

	return team, nil
}

func (s *teamService) GetByID(ctx context.Context, id int) (*models.Team, error) {
	team, err := s.getTeam(ctx, id)
	if err != nil {
		return nil, err
	}

	members, err := s.teamRepo.ListMembers(ctx, team.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members of team %d: %w", team.ID, err)
	}
	for _, m := range members {
		if m.User != nil {
			team.Members = append(team.Members, *m.User)
		}
	}

	s.populateLogoURL(team)
	return team, nil
}

func (s *teamService) List(ctx context.Context) ([]models.Team, error) {
	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	for i := range teams {
		// Join codes are only shown to the team itself.
		teams[i].JoinCode = ""
		s.populateLogoURL(&teams[i])
	}
	return teams, nil
}

func (s *teamService) JoinByCode(ctx context.Context, userID int, code string) (*models.Team, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, ErrInvalidJoinCode
	}

	team, err := s.teamRepo.GetByJoinCode(ctx, code)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrInvalidJoinCode
		}
		return nil, fmt.Errorf("failed to look up join code: %w", err)
	}

	member := &models.TeamMember{TeamID: team.ID, UserID: userID}
	if err := s.teamRepo.AddMember(ctx, member); err != nil {
		if errors.Is(err, repositories.ErrTeamMemberConflict) {
			return nil, ErrUserAlreadyInTeam
		}
		return nil, fmt.Errorf("failed to join team %d: %w", team.ID, err)
	}
	return team, nil
}

func (s *teamService) Leave(ctx context.Context, userID int) error {
	membership, err := s.teamRepo.FindMembershipByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamMemberNotFound) {
			return ErrUserNotInTeam
		}
		return fmt.Errorf("failed to find team membership: %w", err)
	}

	team, err := s.getTeam(ctx, membership.TeamID)
	if err != nil {
		return err
	}
	// The owner dissolves the team instead of leaving it.
	if team.OwnerID == userID {
		return ErrNotTeamOwner
	}

	if err := s.teamRepo.RemoveMember(ctx, membership.TeamID, userID); err != nil {
		return fmt.Errorf("failed to leave team %d: %w", membership.TeamID, err)
	}
	return nil
}

func (s *teamService) Delete(ctx context.Context, actorID int, teamID int) error {
	team, err := s.getTeam(ctx, teamID)
	if err != nil {
		return err
	}
	if team.OwnerID != actorID {
		return ErrNotTeamOwner
	}

	if err := s.teamRepo.Delete(ctx, teamID); err != nil {
		return fmt.Errorf("failed to delete team %d: %w", teamID, err)
	}

	if s.files != nil && team.LogoKey != nil {
		if delErr := s.files.Delete(ctx, *team.LogoKey); delErr != nil {
			return nil // the team is gone, a stale object is not an error
		}
	}
	return nil
}

func (s *teamService) UploadLogo(ctx context.Context, actorID, teamID int, contentType string, body io.Reader) (*models.Team, error) {
	if s.files == nil {
		return nil, fmt.Errorf("%w: file storage is not configured", ErrValidationFailed)
	}

	team, err := s.getTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if team.OwnerID != actorID {
		return nil, ErrNotTeamOwner
	}

	key := fmt.Sprintf("teams/%d/logo", teamID)
	if err := s.files.Upload(ctx, key, contentType, body); err != nil {
		return nil, fmt.Errorf("failed to upload logo for team %d: %w", teamID, err)
	}
	if err := s.teamRepo.UpdateLogoKey(ctx, teamID, &key); err != nil {
		return nil, fmt.Errorf("failed to store logo key for team %d: %w", teamID, err)
	}

	team.LogoKey = &key
	s.populateLogoURL(team)
	return team, nil
}

func (s *teamService) getTeam(ctx context.Context, id int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return team, nil
}

func (s *teamService) populateLogoURL(team *models.Team) {
	if s.files == nil || team.LogoKey == nil {
		return
	}
	url := s.files.PublicURL(*team.LogoKey)
	if url != "" {
		team.LogoURL = &url
	}
}
