// Package repository defines the entity store and its backends.
package repository

import (
	"context"
	"fmt"

	"octofit/internal/models"
)

// Kind names a record collection
type Kind string

const (
	KindUser        Kind = "users"
	KindTeam        Kind = "teams"
	KindWorkout     Kind = "workouts"
	KindActivity    Kind = "activities"
	KindLeaderboard Kind = "leaderboard"
)

// queryable lists, per kind, the fields that support equality filters
var queryable = map[Kind]map[string]bool{
	KindUser:        {"name": true, "email": true, "team": true, "team_id": true, "fitness_level": true},
	KindTeam:        {"name": true},
	KindWorkout:     {"name": true, "difficulty": true},
	KindActivity:    {"user_id": true, "workout_id": true, "activity_type": true},
	KindLeaderboard: {"user_id": true, "team": true, "team_id": true},
}

// Query selects records of one kind. An empty Field selects every record;
// otherwise records whose Field equals Value exactly (case-sensitive) match.
// Limit <= 0 means no limit.
type Query struct {
	Field string
	Value string
	Limit int
}

// All selects every record
func All() Query {
	return Query{}
}

// Where selects records whose field equals value
func Where(field, value string) Query {
	return Query{Field: field, Value: value}
}

// WithLimit caps the number of returned records
func (q Query) WithLimit(limit int) Query {
	q.Limit = limit
	return q
}

// check reports ErrUnknownField when the query filters on a field the kind
// does not expose.
func (q Query) check(kind Kind) error {
	if q.Field == "" {
		return nil
	}
	if !queryable[kind][q.Field] {
		return fmt.Errorf("%w: %s.%s", ErrUnknownField, kind, q.Field)
	}
	return nil
}

// Store is the entity store. List methods return records in the kind's
// default order: users by total_points desc then id, teams and workouts by
// name, activities by date desc then id, leaderboard by rank.
type Store interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	UpdateUser(ctx context.Context, u *models.User) error
	DeleteUser(ctx context.Context, id string) error
	ListUsers(ctx context.Context, q Query) ([]models.User, error)

	CreateTeam(ctx context.Context, t *models.Team) error
	GetTeam(ctx context.Context, id string) (*models.Team, error)
	UpdateTeam(ctx context.Context, t *models.Team) error
	DeleteTeam(ctx context.Context, id string) error
	ListTeams(ctx context.Context, q Query) ([]models.Team, error)

	CreateWorkout(ctx context.Context, w *models.Workout) error
	GetWorkout(ctx context.Context, id string) (*models.Workout, error)
	UpdateWorkout(ctx context.Context, w *models.Workout) error
	DeleteWorkout(ctx context.Context, id string) error
	ListWorkouts(ctx context.Context, q Query) ([]models.Workout, error)

	CreateActivity(ctx context.Context, a *models.Activity) error
	GetActivity(ctx context.Context, id string) (*models.Activity, error)
	UpdateActivity(ctx context.Context, a *models.Activity) error
	DeleteActivity(ctx context.Context, id string) error
	ListActivities(ctx context.Context, q Query) ([]models.Activity, error)

	GetLeaderboardEntry(ctx context.Context, id string) (*models.LeaderboardEntry, error)
	ListLeaderboard(ctx context.Context, q Query) ([]models.LeaderboardEntry, error)
	// ReplaceLeaderboard atomically swaps the whole leaderboard for entries.
	ReplaceLeaderboard(ctx context.Context, entries []models.LeaderboardEntry) error

	// Reset deletes every record of every kind.
	Reset(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
