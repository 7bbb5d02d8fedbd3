package leaderboard

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"octofit/internal/models"
)

var built = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func user(id string, points int) models.User {
	return models.User{ID: id, Name: "name-" + id, Team: "Team Marvel", TeamID: "t1", TotalPoints: points}
}

func activity(userID string, points int) models.Activity {
	return models.Activity{UserID: userID, ActivityType: "running", PointsEarned: points}
}

type ranked struct {
	UserID string
	Total  int
	Rank   int
}

func summarize(entries []models.LeaderboardEntry) []ranked {
	out := make([]ranked, len(entries))
	for i, e := range entries {
		out[i] = ranked{e.UserID, e.TotalPoints, e.Rank}
	}
	return out
}

func TestBuildScenarios(t *testing.T) {
	tests := []struct {
		name       string
		users      []models.User
		activities []models.Activity
		want       []ranked
	}{
		{
			name:  "single user without activities",
			users: []models.User{user("u1", 100)},
			want:  []ranked{{"u1", 100, 1}},
		},
		{
			name:       "activity points lift a user",
			users:      []models.User{user("u1", 100), user("u2", 100)},
			activities: []models.Activity{activity("u1", 50)},
			want:       []ranked{{"u1", 150, 1}, {"u2", 100, 2}},
		},
		{
			name:  "ties keep input order",
			users: []models.User{user("u1", 0), user("u2", 0)},
			want:  []ranked{{"u1", 0, 1}, {"u2", 0, 2}},
		},
		{
			name:       "later user overtakes",
			users:      []models.User{user("u1", 10), user("u2", 5), user("u3", 7)},
			activities: []models.Activity{activity("u2", 3), activity("u2", 4), activity("u3", 1)},
			want:       []ranked{{"u2", 12, 1}, {"u1", 10, 2}, {"u3", 8, 3}},
		},
		{
			name:       "orphan activities are ignored",
			users:      []models.User{user("u1", 10)},
			activities: []models.Activity{activity("ghost", 1000), activity("u1", 5)},
			want:       []ranked{{"u1", 15, 1}},
		},
		{
			name:       "no users",
			activities: []models.Activity{activity("u1", 5)},
			want:       []ranked{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Build(tt.users, tt.activities, built)
			assert.Equal(t, tt.want, summarize(got))
		})
	}
}

func TestBuildCopiesUserFields(t *testing.T) {
	u := models.User{ID: "u1", Name: "Wonder Woman", Team: "Team DC", TeamID: "dc", TotalPoints: 3}
	got := Build([]models.User{u}, nil, built)

	require.Len(t, got, 1)
	assert.Equal(t, "Wonder Woman", got[0].UserName)
	assert.Equal(t, "Team DC", got[0].Team)
	assert.Equal(t, "dc", got[0].TeamID)
	assert.Equal(t, built, got[0].LastUpdated)
	assert.Empty(t, got[0].ID)
}

func randomSnapshot(r *rand.Rand, nUsers, nActivities int) ([]models.User, []models.Activity) {
	users := make([]models.User, nUsers)
	for i := range users {
		// Narrow range so ties are common.
		users[i] = user(fmt.Sprintf("u%03d", i), r.Intn(5)*10)
	}
	activities := make([]models.Activity, nActivities)
	for i := range activities {
		uid := fmt.Sprintf("u%03d", r.Intn(nUsers+3)) // some orphans
		activities[i] = activity(uid, r.Intn(3)*10)
	}
	return users, activities
}

func TestBuildProperties(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	for round := 0; round < 50; round++ {
		users, activities := randomSnapshot(r, 1+r.Intn(40), r.Intn(200))
		got := Build(users, activities, built)

		require.Len(t, got, len(users))

		position := make(map[string]int, len(users))
		expected := make(map[string]int, len(users))
		for i, u := range users {
			position[u.ID] = i
			expected[u.ID] = u.TotalPoints
		}
		for _, a := range activities {
			if _, ok := expected[a.UserID]; ok {
				expected[a.UserID] += a.PointsEarned
			}
		}

		for i, e := range got {
			assert.Equal(t, i+1, e.Rank, "ranks are dense and 1-based")
			assert.Equal(t, expected[e.UserID], e.TotalPoints)
			if i == 0 {
				continue
			}
			prev := got[i-1]
			assert.GreaterOrEqual(t, prev.TotalPoints, e.TotalPoints)
			if prev.TotalPoints == e.TotalPoints {
				assert.Less(t, position[prev.UserID], position[e.UserID], "ties keep input order")
			}
		}
	}
}

func TestBuildDeterministic(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	users, activities := randomSnapshot(r, 30, 150)

	first := Build(users, activities, built)
	second := Build(users, activities, built)
	assert.Equal(t, first, second)

	// Activity order does not change any sum or rank.
	shuffled := append([]models.Activity(nil), activities...)
	r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	assert.Equal(t, first, Build(users, shuffled, built))
}

func TestBuildDoesNotMutateInput(t *testing.T) {
	users := []models.User{user("u1", 1), user("u2", 2)}
	Build(users, []models.Activity{activity("u1", 5)}, built)
	assert.Equal(t, "u1", users[0].ID)
	assert.Equal(t, 1, users[0].TotalPoints)
}

func TestTop(t *testing.T) {
	users := []models.User{user("u1", 50), user("u2", 40), user("u3", 30), user("u4", 20), user("u5", 10)}
	entries := Build(users, nil, built)

	top := Top(entries, 2)
	assert.Equal(t, []ranked{{"u1", 50, 1}, {"u2", 40, 2}}, summarize(top))
	assert.Len(t, Top(entries, 10), 5)
	assert.Empty(t, Top(entries, 0))
}
