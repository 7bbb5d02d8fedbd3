package service

import (
	"context"
	"errors"
	"fmt"

	"octofit/internal/logger"
	"octofit/internal/metrics"
	"octofit/internal/models"
	"octofit/internal/repository"
)

// RebuildRequester queues leaderboard rebuilds
type RebuildRequester interface {
	RequestRebuild(reason string) bool
}

// TrackerService manages users, teams, workouts and activities
type TrackerService struct {
	store       repository.Store
	rebuilds    RebuildRequester
	autoRebuild bool
}

// NewTrackerService creates a new tracker service. When autoRebuild is set,
// every write that changes totals, the user set or a team name asks rebuilds
// for a fresh leaderboard.
func NewTrackerService(store repository.Store, rebuilds RebuildRequester, autoRebuild bool) *TrackerService {
	return &TrackerService{
		store:       store,
		rebuilds:    rebuilds,
		autoRebuild: autoRebuild,
	}
}

// Users

// ListUsers returns every user, highest baseline first
func (s *TrackerService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.store.ListUsers(ctx, repository.All())
}

// GetUser returns one user
func (s *TrackerService) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.store.GetUser(ctx, id)
}

// CreateUser stores a new user. A team_id fills the denormalized team name.
func (s *TrackerService) CreateUser(ctx context.Context, u *models.User) error {
	u.ID = ""
	if err := s.resolveTeam(ctx, u); err != nil {
		return err
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return err
	}
	s.refreshMembers(ctx, u.TeamID)
	s.scoresChanged("user created")
	return nil
}

// UpdateUser replaces the user with id by u
func (s *TrackerService) UpdateUser(ctx context.Context, id string, u *models.User) error {
	existing, err := s.store.GetUser(ctx, id)
	if err != nil {
		return err
	}
	u.ID = id
	if u.CreatedAt.IsZero() {
		u.CreatedAt = existing.CreatedAt
	}
	if err := s.resolveTeam(ctx, u); err != nil {
		return err
	}
	if err := s.store.UpdateUser(ctx, u); err != nil {
		return err
	}
	s.refreshMembers(ctx, existing.TeamID, u.TeamID)
	s.scoresChanged("user updated")
	return nil
}

// DeleteUser removes a user. Their activities stay and are ignored by the
// leaderboard from then on.
func (s *TrackerService) DeleteUser(ctx context.Context, id string) error {
	existing, err := s.store.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.refreshMembers(ctx, existing.TeamID)
	s.scoresChanged("user deleted")
	return nil
}

// UsersByTeam returns users whose team name equals team
func (s *TrackerService) UsersByTeam(ctx context.Context, team string) ([]models.User, error) {
	if team == "" {
		return nil, missingParam("team")
	}
	return s.store.ListUsers(ctx, repository.Where("team", team))
}

// ActivitiesOf returns the activities of an existing user, newest first
func (s *TrackerService) ActivitiesOf(ctx context.Context, userID string) ([]models.Activity, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.ListActivities(ctx, repository.Where("user_id", userID))
}

func (s *TrackerService) resolveTeam(ctx context.Context, u *models.User) error {
	if u.TeamID == "" {
		return nil
	}
	team, err := s.store.GetTeam(ctx, u.TeamID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return invalid("team_id", "team %q does not exist", u.TeamID)
		}
		return err
	}
	u.Team = team.Name
	return nil
}

// refreshMembers rewrites the cached member list of each team. Failures are
// logged only; membership is always answered from users.team_id.
func (s *TrackerService) refreshMembers(ctx context.Context, teamIDs ...string) {
	seen := make(map[string]bool, len(teamIDs))
	for _, id := range teamIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		if err := s.syncMembers(ctx, id); err != nil && !errors.Is(err, repository.ErrNotFound) {
			logger.Warn("Failed to refresh members of team %s: %v", id, err)
		}
	}
}

func (s *TrackerService) syncMembers(ctx context.Context, teamID string) error {
	team, err := s.store.GetTeam(ctx, teamID)
	if err != nil {
		return err
	}
	users, err := s.store.ListUsers(ctx, repository.Where("team_id", teamID))
	if err != nil {
		return err
	}
	team.Members = make([]string, 0, len(users))
	for _, u := range users {
		team.Members = append(team.Members, u.ID)
	}
	return s.store.UpdateTeam(ctx, team)
}

// SyncAllMembers refreshes the member cache of every team
func (s *TrackerService) SyncAllMembers(ctx context.Context) error {
	teams, err := s.store.ListTeams(ctx, repository.All())
	if err != nil {
		return err
	}
	for _, t := range teams {
		if err := s.syncMembers(ctx, t.ID); err != nil {
			return fmt.Errorf("team %s: %w", t.Name, err)
		}
	}
	return nil
}

// Teams

func normalizeTeam(t *models.Team) {
	if t.Members == nil {
		t.Members = []string{}
	}
}

// ListTeams returns every team ordered by name
func (s *TrackerService) ListTeams(ctx context.Context) ([]models.Team, error) {
	teams, err := s.store.ListTeams(ctx, repository.All())
	if err != nil {
		return nil, err
	}
	for i := range teams {
		normalizeTeam(&teams[i])
	}
	return teams, nil
}

// GetTeam returns one team
func (s *TrackerService) GetTeam(ctx context.Context, id string) (*models.Team, error) {
	t, err := s.store.GetTeam(ctx, id)
	if err != nil {
		return nil, err
	}
	normalizeTeam(t)
	return t, nil
}

// CreateTeam stores a new team. The member list starts empty and is
// maintained from user writes.
func (s *TrackerService) CreateTeam(ctx context.Context, t *models.Team) error {
	t.ID = ""
	t.Members = []string{}
	return s.store.CreateTeam(ctx, t)
}

// UpdateTeam replaces the team with id by t, keeping its member cache. A new
// name is copied onto every member.
func (s *TrackerService) UpdateTeam(ctx context.Context, id string, t *models.Team) error {
	existing, err := s.store.GetTeam(ctx, id)
	if err != nil {
		return err
	}
	t.ID = id
	t.Members = existing.Members
	if t.CreatedAt.IsZero() {
		t.CreatedAt = existing.CreatedAt
	}
	if err := s.store.UpdateTeam(ctx, t); err != nil {
		return err
	}
	normalizeTeam(t)

	if t.Name != existing.Name {
		if err := s.renameMembersTeam(ctx, id, t.Name); err != nil {
			return fmt.Errorf("rename team on members: %w", err)
		}
		s.scoresChanged("team renamed")
	}
	return nil
}

// renameMembersTeam rewrites the denormalized team name of every user with teamID
func (s *TrackerService) renameMembersTeam(ctx context.Context, teamID, name string) error {
	users, err := s.store.ListUsers(ctx, repository.Where("team_id", teamID))
	if err != nil {
		return err
	}
	for i := range users {
		if users[i].Team == name {
			continue
		}
		users[i].Team = name
		if err := s.store.UpdateUser(ctx, &users[i]); err != nil {
			return err
		}
	}
	return nil
}

// DeleteTeam removes a team
func (s *TrackerService) DeleteTeam(ctx context.Context, id string) error {
	return s.store.DeleteTeam(ctx, id)
}

// MembersOf returns the users referencing the team with teamID
func (s *TrackerService) MembersOf(ctx context.Context, teamID string) ([]models.User, error) {
	if _, err := s.store.GetTeam(ctx, teamID); err != nil {
		return nil, err
	}
	return s.store.ListUsers(ctx, repository.Where("team_id", teamID))
}

// Workouts

// ListWorkouts returns the workout catalog ordered by name
func (s *TrackerService) ListWorkouts(ctx context.Context) ([]models.Workout, error) {
	return s.store.ListWorkouts(ctx, repository.All())
}

// GetWorkout returns one workout
func (s *TrackerService) GetWorkout(ctx context.Context, id string) (*models.Workout, error) {
	return s.store.GetWorkout(ctx, id)
}

// CreateWorkout stores a new workout
func (s *TrackerService) CreateWorkout(ctx context.Context, w *models.Workout) error {
	w.ID = ""
	return s.store.CreateWorkout(ctx, w)
}

// UpdateWorkout replaces the workout with id by w
func (s *TrackerService) UpdateWorkout(ctx context.Context, id string, w *models.Workout) error {
	existing, err := s.store.GetWorkout(ctx, id)
	if err != nil {
		return err
	}
	w.ID = id
	if w.CreatedAt.IsZero() {
		w.CreatedAt = existing.CreatedAt
	}
	return s.store.UpdateWorkout(ctx, w)
}

// DeleteWorkout removes a workout
func (s *TrackerService) DeleteWorkout(ctx context.Context, id string) error {
	return s.store.DeleteWorkout(ctx, id)
}

// WorkoutsByDifficulty returns workouts with exactly the given difficulty
func (s *TrackerService) WorkoutsByDifficulty(ctx context.Context, difficulty string) ([]models.Workout, error) {
	if difficulty == "" {
		return nil, missingParam("difficulty")
	}
	return s.store.ListWorkouts(ctx, repository.Where("difficulty", difficulty))
}

// Activities

// ListActivities returns every activity, newest first
func (s *TrackerService) ListActivities(ctx context.Context) ([]models.Activity, error) {
	return s.store.ListActivities(ctx, repository.All())
}

// GetActivity returns one activity
func (s *TrackerService) GetActivity(ctx context.Context, id string) (*models.Activity, error) {
	return s.store.GetActivity(ctx, id)
}

// CreateActivity logs an activity for an existing user
func (s *TrackerService) CreateActivity(ctx context.Context, a *models.Activity) error {
	a.ID = ""
	if err := s.checkUser(ctx, a.UserID); err != nil {
		return err
	}
	if err := s.store.CreateActivity(ctx, a); err != nil {
		return err
	}
	metrics.IncActivitiesLogged()
	s.scoresChanged("activity created")
	return nil
}

// UpdateActivity replaces the activity with id by a
func (s *TrackerService) UpdateActivity(ctx context.Context, id string, a *models.Activity) error {
	existing, err := s.store.GetActivity(ctx, id)
	if err != nil {
		return err
	}
	a.ID = id
	if a.Date.IsZero() {
		a.Date = existing.Date
	}
	if err := s.checkUser(ctx, a.UserID); err != nil {
		return err
	}
	if err := s.store.UpdateActivity(ctx, a); err != nil {
		return err
	}
	s.scoresChanged("activity updated")
	return nil
}

// DeleteActivity removes an activity
func (s *TrackerService) DeleteActivity(ctx context.Context, id string) error {
	if err := s.store.DeleteActivity(ctx, id); err != nil {
		return err
	}
	s.scoresChanged("activity deleted")
	return nil
}

// ActivitiesByType returns activities with exactly the given type
func (s *TrackerService) ActivitiesByType(ctx context.Context, activityType string) ([]models.Activity, error) {
	if activityType == "" {
		return nil, missingParam("type")
	}
	return s.store.ListActivities(ctx, repository.Where("activity_type", activityType))
}

// RecentActivities returns the limit most recent activities
func (s *TrackerService) RecentActivities(ctx context.Context, limit int) ([]models.Activity, error) {
	if limit <= 0 {
		return []models.Activity{}, nil
	}
	return s.store.ListActivities(ctx, repository.All().WithLimit(limit))
}

func (s *TrackerService) checkUser(ctx context.Context, userID string) error {
	if userID == "" {
		return invalid("user_id", "user_id is required")
	}
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return invalid("user_id", "user %q does not exist", userID)
		}
		return err
	}
	return nil
}

// scoresChanged queues a rebuild after a write that affects totals or team names
func (s *TrackerService) scoresChanged(reason string) {
	if s.autoRebuild && s.rebuilds != nil {
		s.rebuilds.RequestRebuild(reason)
	}
}
