package services

import (
	"context"
	"sort"

	"github.com/gamerpro/gamerpro/models"
	"github.com/gamerpro/gamerpro/repositories"
)

// The fakes below hold state in plain maps and slices. A nil SQLExecutor is
// passed through RunInTx, which the fakes ignore just like the real
// repositories fall back to their own handle.

type fakeTxRunner struct {
	calls int
	fail  error
}

func (r *fakeTxRunner) RunInTx(_ context.Context, fn func(exec repositories.SQLExecutor) error) error {
	r.calls++
	if r.fail != nil {
		return r.fail
	}
	return fn(nil)
}

type fakeTournamentRepo struct {
	tournaments map[int]*models.Tournament
}

func newFakeTournamentRepo(tournaments ...*models.Tournament) *fakeTournamentRepo {
	repo := &fakeTournamentRepo{tournaments: make(map[int]*models.Tournament)}
	for _, t := range tournaments {
		repo.tournaments[t.ID] = t
	}
	return repo
}

func (r *fakeTournamentRepo) Create(_ context.Context, t *models.Tournament) error {
	t.ID = len(r.tournaments) + 1
	r.tournaments[t.ID] = t
	return nil
}

func (r *fakeTournamentRepo) GetByID(_ context.Context, id int) (*models.Tournament, error) {
	t, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *fakeTournamentRepo) List(_ context.Context) ([]models.Tournament, error) {
	out := make([]models.Tournament, 0, len(r.tournaments))
	for _, t := range r.tournaments {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeTournamentRepo) Update(_ context.Context, t *models.Tournament) error {
	if _, ok := r.tournaments[t.ID]; !ok {
		return repositories.ErrTournamentNotFound
	}
	copied := *t
	r.tournaments[t.ID] = &copied
	return nil
}

func (r *fakeTournamentRepo) UpdateCurrentStage(_ context.Context, _ repositories.SQLExecutor, id int, stage string) error {
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.CurrentStage = stage
	return nil
}

func (r *fakeTournamentRepo) UpdateBannerKey(_ context.Context, id int, key *string) error {
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.BannerKey = key
	return nil
}

func (r *fakeTournamentRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.tournaments[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	delete(r.tournaments, id)
	return nil
}

type fakeRegistrationRepo struct {
	teamIDs map[int][]int // tournament ID -> registered team IDs
	nextID  int
	rows    map[int][2]int // registration ID -> (tournament ID, team ID)
}

// rowID mints a registration ID for a (tournament, team) pair so Delete can
// find its way back to the teamIDs map.
func (r *fakeRegistrationRepo) rowID(tournamentID, teamID int) int {
	if r.rows == nil {
		r.rows = make(map[int][2]int)
	}
	for id, row := range r.rows {
		if row[0] == tournamentID && row[1] == teamID {
			return id
		}
	}
	r.nextID++
	r.rows[r.nextID] = [2]int{tournamentID, teamID}
	return r.nextID
}

func (r *fakeRegistrationRepo) Create(_ context.Context, reg *models.Registration) error {
	for _, id := range r.teamIDs[reg.TournamentID] {
		if id == reg.TeamID {
			return repositories.ErrRegistrationConflict
		}
	}
	r.teamIDs[reg.TournamentID] = append(r.teamIDs[reg.TournamentID], reg.TeamID)
	reg.ID = r.rowID(reg.TournamentID, reg.TeamID)
	return nil
}

func (r *fakeRegistrationRepo) Delete(_ context.Context, id int) error {
	row, ok := r.rows[id]
	if !ok {
		return repositories.ErrRegistrationNotFound
	}
	delete(r.rows, id)
	ids := r.teamIDs[row[0]]
	for i, teamID := range ids {
		if teamID == row[1] {
			r.teamIDs[row[0]] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	return nil
}

func (r *fakeRegistrationRepo) FindByTournamentAndTeam(_ context.Context, tournamentID, teamID int) (*models.Registration, error) {
	for _, id := range r.teamIDs[tournamentID] {
		if id == teamID {
			return &models.Registration{
				ID:           r.rowID(tournamentID, teamID),
				TournamentID: tournamentID,
				TeamID:       teamID,
			}, nil
		}
	}
	return nil, repositories.ErrRegistrationNotFound
}

func (r *fakeRegistrationRepo) ListByTournament(_ context.Context, tournamentID int) ([]models.Registration, error) {
	regs := make([]models.Registration, 0)
	for _, id := range r.teamIDs[tournamentID] {
		regs = append(regs, models.Registration{TournamentID: tournamentID, TeamID: id})
	}
	return regs, nil
}

func (r *fakeRegistrationRepo) CountByTournament(_ context.Context, tournamentID int) (int, error) {
	return len(r.teamIDs[tournamentID]), nil
}

func (r *fakeRegistrationRepo) ListTeamIDs(_ context.Context, _ repositories.SQLExecutor, tournamentID int) ([]int, error) {
	return append([]int(nil), r.teamIDs[tournamentID]...), nil
}

type fakeQualificationRepo struct {
	quals []models.Qualification
}

func (r *fakeQualificationRepo) Upsert(_ context.Context, _ repositories.SQLExecutor, q *models.Qualification) error {
	for i := range r.quals {
		existing := &r.quals[i]
		if existing.TournamentID == q.TournamentID && existing.TeamID == q.TeamID && existing.FromStage == q.FromStage {
			existing.ToStage = q.ToStage
			existing.StageNumber = q.StageNumber
			q.ID = existing.ID
			return nil
		}
	}
	q.ID = len(r.quals) + 1
	r.quals = append(r.quals, *q)
	return nil
}

func (r *fakeQualificationRepo) ListByTournament(_ context.Context, tournamentID int) ([]models.Qualification, error) {
	out := make([]models.Qualification, 0)
	for _, q := range r.quals {
		if q.TournamentID == tournamentID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (r *fakeQualificationRepo) ListTeamIDsByToStage(_ context.Context, _ repositories.SQLExecutor, tournamentID int, toStage string) ([]int, error) {
	ids := make([]int, 0)
	for _, q := range r.quals {
		if q.TournamentID == tournamentID && q.ToStage == toStage {
			ids = append(ids, q.TeamID)
		}
	}
	return ids, nil
}

type fakeGroupRepo struct {
	nextID    int
	groups    map[int]*models.Group
	lockCalls int
}

func newFakeGroupRepo() *fakeGroupRepo {
	return &fakeGroupRepo{groups: make(map[int]*models.Group)}
}

func (r *fakeGroupRepo) AcquireStageLock(context.Context, repositories.SQLExecutor, int) error {
	r.lockCalls++
	return nil
}

func (r *fakeGroupRepo) Create(_ context.Context, _ repositories.SQLExecutor, g *models.Group) error {
	r.nextID++
	g.ID = r.nextID
	copied := *g
	r.groups[g.ID] = &copied
	return nil
}

func (r *fakeGroupRepo) AddTeams(_ context.Context, _ repositories.SQLExecutor, groupID int, teamIDs []int) error {
	g, ok := r.groups[groupID]
	if !ok {
		return repositories.ErrGroupNotFound
	}
	for _, id := range teamIDs {
		g.Teams = append(g.Teams, models.GroupTeam{GroupID: groupID, TeamID: id})
	}
	return nil
}

func (r *fakeGroupRepo) DeleteByTournamentAndStage(_ context.Context, _ repositories.SQLExecutor, tournamentID int, stageName string) error {
	for id, g := range r.groups {
		if g.TournamentID == tournamentID && g.StageName == stageName {
			delete(r.groups, id)
		}
	}
	return nil
}

func (r *fakeGroupRepo) GetByID(_ context.Context, id int) (*models.Group, error) {
	g, ok := r.groups[id]
	if !ok {
		return nil, repositories.ErrGroupNotFound
	}
	copied := *g
	return &copied, nil
}

func (r *fakeGroupRepo) ListByTournament(_ context.Context, tournamentID int) ([]models.Group, error) {
	out := make([]models.Group, 0)
	for _, g := range r.groups {
		if g.TournamentID == tournamentID {
			out = append(out, *g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeGroupRepo) ListByTournamentAndStage(_ context.Context, tournamentID int, stageName string) ([]models.Group, error) {
	out := make([]models.Group, 0)
	for _, g := range r.groups {
		if g.TournamentID == tournamentID && g.StageName == stageName {
			out = append(out, *g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeGroupRepo) ListTeamIDs(_ context.Context, groupID int) ([]int, error) {
	g, ok := r.groups[groupID]
	if !ok {
		return nil, repositories.ErrGroupNotFound
	}
	ids := make([]int, 0, len(g.Teams))
	for _, gt := range g.Teams {
		ids = append(ids, gt.TeamID)
	}
	return ids, nil
}

type fakeMatchRepo struct {
	nextID  int
	matches map[int]*models.Match
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{matches: make(map[int]*models.Match)}
}

func (r *fakeMatchRepo) Create(_ context.Context, _ repositories.SQLExecutor, m *models.Match) error {
	r.nextID++
	m.ID = r.nextID
	copied := *m
	r.matches[m.ID] = &copied
	return nil
}

func (r *fakeMatchRepo) GetByID(_ context.Context, id int) (*models.Match, error) {
	m, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	copied := *m
	return &copied, nil
}

func (r *fakeMatchRepo) CountByGroup(_ context.Context, _ repositories.SQLExecutor, groupID int) (int, error) {
	count := 0
	for _, m := range r.matches {
		if m.GroupID == groupID {
			count++
		}
	}
	return count, nil
}

func (r *fakeMatchRepo) UpdateStatus(_ context.Context, id int, status models.MatchStatus) error {
	m, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.Status = status
	return nil
}

func (r *fakeMatchRepo) ListByGroup(_ context.Context, groupID int) ([]models.Match, error) {
	out := make([]models.Match, 0)
	for _, m := range r.matches {
		if m.GroupID == groupID {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MatchNumber < out[j].MatchNumber })
	return out, nil
}

func (r *fakeMatchRepo) ListUpcomingByGroup(ctx context.Context, groupID int) ([]models.Match, error) {
	all, _ := r.ListByGroup(ctx, groupID)
	out := make([]models.Match, 0)
	for _, m := range all {
		if m.Status != models.MatchStatusCompleted {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMatchRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.matches[id]; !ok {
		return repositories.ErrMatchNotFound
	}
	delete(r.matches, id)
	return nil
}

func (r *fakeMatchRepo) CountCompleted(context.Context) (int, error) {
	count := 0
	for _, m := range r.matches {
		if m.Status == models.MatchStatusCompleted {
			count++
		}
	}
	return count, nil
}

type fakeCredentialsRepo struct {
	creds map[int]*models.MatchCredentials
}

func newFakeCredentialsRepo() *fakeCredentialsRepo {
	return &fakeCredentialsRepo{creds: make(map[int]*models.MatchCredentials)}
}

func (r *fakeCredentialsRepo) Create(_ context.Context, _ repositories.SQLExecutor, c *models.MatchCredentials) error {
	copied := *c
	r.creds[c.MatchID] = &copied
	return nil
}

func (r *fakeCredentialsRepo) GetByMatch(_ context.Context, matchID int) (*models.MatchCredentials, error) {
	c, ok := r.creds[matchID]
	if !ok {
		return nil, repositories.ErrCredentialsNotFound
	}
	copied := *c
	return &copied, nil
}

type fakeResultRepo struct {
	results []models.MatchResult
}

func (r *fakeResultRepo) Upsert(_ context.Context, _ repositories.SQLExecutor, res *models.MatchResult) error {
	for i := range r.results {
		existing := &r.results[i]
		if existing.MatchID == res.MatchID && existing.TeamID == res.TeamID {
			existing.Placement = res.Placement
			existing.Kills = res.Kills
			existing.Points = res.Points
			res.ID = existing.ID
			return nil
		}
	}
	res.ID = len(r.results) + 1
	r.results = append(r.results, *res)
	return nil
}

func (r *fakeResultRepo) ListByMatch(_ context.Context, matchID int) ([]models.MatchResult, error) {
	out := make([]models.MatchResult, 0)
	for _, res := range r.results {
		if res.MatchID == matchID {
			out = append(out, res)
		}
	}
	return out, nil
}

func (r *fakeResultRepo) ListByTournament(context.Context, int) ([]models.MatchResult, error) {
	return append([]models.MatchResult(nil), r.results...), nil
}
