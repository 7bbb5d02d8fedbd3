package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"octofit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreUserLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	u := &models.User{Name: "Iron Man", Email: "tony.stark@marvel.com", Team: "Team Marvel", TotalPoints: 500}
	require.NoError(t, s.CreateUser(ctx, u))
	assert.Len(t, u.ID, 24)
	assert.False(t, u.CreatedAt.IsZero())

	got, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Iron Man", got.Name)

	got.Alias = "Tony"
	require.NoError(t, s.UpdateUser(ctx, got))
	got, err = s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tony", got.Alias)

	require.NoError(t, s.DeleteUser(ctx, u.ID))
	_, err = s.GetUser(ctx, u.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(s.DeleteUser(ctx, u.ID), ErrNotFound))
}

func TestMemoryStoreUniqueness(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.CreateUser(ctx, &models.User{Name: "Thor", Email: "thor@asgard.com"}))
	err := s.CreateUser(ctx, &models.User{Name: "Loki", Email: "thor@asgard.com"})
	assert.True(t, errors.Is(err, ErrDuplicate))

	require.NoError(t, s.CreateTeam(ctx, &models.Team{Name: "Team Marvel"}))
	err = s.CreateTeam(ctx, &models.Team{Name: "Team Marvel"})
	assert.True(t, errors.Is(err, ErrDuplicate))
}

func TestMemoryStoreRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	assert.Error(t, s.CreateUser(ctx, &models.User{Name: "No Email"}))
	assert.Error(t, s.CreateWorkout(ctx, &models.Workout{Name: "Mystery", Difficulty: "legendary"}))
	users, err := s.ListUsers(ctx, All())
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestMemoryStoreListOrdering(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	for _, u := range []models.User{
		{ID: "b", Name: "B", Email: "b@x.com", TotalPoints: 100},
		{ID: "a", Name: "A", Email: "a@x.com", TotalPoints: 100},
		{ID: "c", Name: "C", Email: "c@x.com", TotalPoints: 300},
	} {
		u := u
		require.NoError(t, s.CreateUser(ctx, &u))
	}
	users, err := s.ListUsers(ctx, All())
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, []string{"c", "a", "b"}, []string{users[0].ID, users[1].ID, users[2].ID})

	now := time.Now()
	for i, d := range []time.Duration{2 * time.Hour, 0, time.Hour} {
		a := &models.Activity{UserID: "a", ActivityType: "running", Date: now.Add(-d), Notes: string(rune('x' + i))}
		require.NoError(t, s.CreateActivity(ctx, a))
	}
	acts, err := s.ListActivities(ctx, All().WithLimit(2))
	require.NoError(t, err)
	require.Len(t, acts, 2)
	assert.Equal(t, "y", acts[0].Notes)
	assert.Equal(t, "z", acts[1].Notes)
}

func TestMemoryStoreWhere(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.CreateWorkout(ctx, &models.Workout{Name: "Yoga", Difficulty: models.DifficultyBeginner}))
	require.NoError(t, s.CreateWorkout(ctx, &models.Workout{Name: "HIIT", Difficulty: models.DifficultyAdvanced}))

	got, err := s.ListWorkouts(ctx, Where("difficulty", models.DifficultyAdvanced))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "HIIT", got[0].Name)

	got, err = s.ListWorkouts(ctx, Where("difficulty", "Advanced"))
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = s.ListWorkouts(ctx, Where("calories_burned", "300"))
	assert.True(t, errors.Is(err, ErrUnknownField))
}

func TestMemoryStoreTeamMembersAreCopied(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	team := &models.Team{Name: "Team DC", Members: []string{"u1"}}
	require.NoError(t, s.CreateTeam(ctx, team))
	team.Members[0] = "mutated"

	got, err := s.GetTeam(ctx, team.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, got.Members)
}

func TestMemoryStoreReplaceLeaderboard(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.ReplaceLeaderboard(ctx, []models.LeaderboardEntry{
		{UserID: "u2", UserName: "B", Team: "Team DC", TotalPoints: 50, Rank: 2},
		{UserID: "u1", UserName: "A", Team: "Team Marvel", TotalPoints: 90, Rank: 1},
	}))

	entries, err := s.ListLeaderboard(ctx, All())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].Rank)
	assert.NotEmpty(t, entries[0].ID)

	got, err := s.GetLeaderboardEntry(ctx, entries[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "u2", got.UserID)

	dc, err := s.ListLeaderboard(ctx, Where("team", "Team DC"))
	require.NoError(t, err)
	require.Len(t, dc, 1)
	assert.Equal(t, "B", dc[0].UserName)

	require.NoError(t, s.ReplaceLeaderboard(ctx, nil))
	entries, err = s.ListLeaderboard(ctx, All())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestMemoryStoreReset(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.CreateTeam(ctx, &models.Team{Name: "Team Marvel"}))
	require.NoError(t, s.Reset(ctx))

	teams, err := s.ListTeams(ctx, All())
	require.NoError(t, err)
	assert.Empty(t, teams)
	assert.NoError(t, s.Ping(ctx))
}
