package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"octofit/internal/api/handlers"
	"octofit/internal/models"
	"octofit/internal/repository"
	"octofit/internal/service"
	"octofit/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	app   *fiber.App
	store *repository.MemoryStore
	board *service.LeaderboardService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := repository.NewMemoryStore()
	board := service.NewLeaderboardService(store)
	tracker := service.NewTrackerService(store, board, false)
	limits := handlers.Limits{Default: 10, Max: 100}

	app := NewApp(Handlers{
		Root:        handlers.NewRootHandler("http://localhost:8000"),
		Users:       handlers.NewUserHandler(tracker),
		Teams:       handlers.NewTeamHandler(tracker, board),
		Workouts:    handlers.NewWorkoutHandler(tracker),
		Activities:  handlers.NewActivityHandler(tracker, limits),
		Leaderboard: handlers.NewLeaderboardHandler(board, websocket.NewHub(board), limits),
	})
	return &testServer{app: app, store: store, board: board}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func decodeInto(t *testing.T, data []byte, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(data, v), string(data))
}

func TestRootIndex(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/", "/api", "/api/"} {
		code, body := s.do(t, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, code, path)
		var got map[string]interface{}
		decodeInto(t, body, &got)
		assert.Equal(t, "http://localhost:8000", got["base_url"])
		endpoints := got["endpoints"].(map[string]interface{})
		assert.Equal(t, "http://localhost:8000/api/users/", endpoints["users"])
	}
}

func TestUserEndpoints(t *testing.T) {
	s := newTestServer(t)

	code, body := s.do(t, http.MethodPost, "/api/users/", models.User{Name: "Iron Man", Email: "tony.stark@marvel.com", Team: "Team Marvel", TotalPoints: 500})
	require.Equal(t, http.StatusCreated, code, string(body))
	var created models.User
	decodeInto(t, body, &created)
	assert.Len(t, created.ID, 24)

	code, _ = s.do(t, http.MethodPost, "/api/users", models.User{Name: "Imposter", Email: "tony.stark@marvel.com"})
	assert.Equal(t, http.StatusConflict, code)

	code, body = s.do(t, http.MethodPost, "/api/users", models.User{Name: "Nameless", Email: "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, code)
	var errResp models.ErrorResponse
	decodeInto(t, body, &errResp)
	assert.Equal(t, "Validation failed", errResp.Error)

	code, body = s.do(t, http.MethodGet, "/api/users/"+created.ID, nil)
	require.Equal(t, http.StatusOK, code)
	var got models.User
	decodeInto(t, body, &got)
	assert.Equal(t, "Iron Man", got.Name)

	code, _ = s.do(t, http.MethodGet, "/api/users/does-not-exist", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, body = s.do(t, http.MethodGet, "/api/users/by_team?team=Team%20Marvel", nil)
	require.Equal(t, http.StatusOK, code)
	var byTeam []models.User
	decodeInto(t, body, &byTeam)
	assert.Len(t, byTeam, 1)

	code, body = s.do(t, http.MethodGet, "/api/users/by_team/", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	decodeInto(t, body, &errResp)
	assert.Contains(t, errResp.Message, "team parameter is required")

	code, _ = s.do(t, http.MethodPut, "/api/users/"+created.ID, models.User{Name: "Tony", Email: "tony.stark@marvel.com"})
	assert.Equal(t, http.StatusOK, code)

	code, _ = s.do(t, http.MethodDelete, "/api/users/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, code)
	code, _ = s.do(t, http.MethodDelete, "/api/users/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestMalformedBody(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/teams", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTeamMembersAndLeaderboard(t *testing.T) {
	s := newTestServer(t)

	code, body := s.do(t, http.MethodPost, "/api/teams", models.Team{Name: "Team DC", Description: "Justice League Unlimited"})
	require.Equal(t, http.StatusCreated, code)
	var team models.Team
	decodeInto(t, body, &team)

	code, body = s.do(t, http.MethodPost, "/api/users", models.User{Name: "Batman", Email: "bruce.wayne@dc.com", TeamID: team.ID, TotalPoints: 700})
	require.Equal(t, http.StatusCreated, code, string(body))
	var batman models.User
	decodeInto(t, body, &batman)
	assert.Equal(t, "Team DC", batman.Team)

	code, body = s.do(t, http.MethodGet, "/api/teams/"+team.ID+"/members", nil)
	require.Equal(t, http.StatusOK, code)
	var members []models.User
	decodeInto(t, body, &members)
	require.Len(t, members, 1)
	assert.Equal(t, batman.ID, members[0].ID)

	code, _ = s.do(t, http.MethodPost, "/api/leaderboard/rebuild", nil)
	require.Equal(t, http.StatusOK, code)

	code, body = s.do(t, http.MethodGet, "/api/teams/"+team.ID+"/leaderboard/", nil)
	require.Equal(t, http.StatusOK, code)
	var entries []models.LeaderboardEntry
	decodeInto(t, body, &entries)
	require.Len(t, entries, 1)
	assert.Equal(t, 700, entries[0].TotalPoints)

	code, _ = s.do(t, http.MethodGet, "/api/teams/missing/members", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestWorkoutEndpoints(t *testing.T) {
	s := newTestServer(t)

	code, _ := s.do(t, http.MethodPost, "/api/workouts", models.Workout{Name: "Yoga Flow", Difficulty: "beginner", DurationMinutes: 60})
	require.Equal(t, http.StatusCreated, code)
	code, _ = s.do(t, http.MethodPost, "/api/workouts", models.Workout{Name: "Mystery", Difficulty: "legendary"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, body := s.do(t, http.MethodGet, "/api/workouts/by_difficulty?difficulty=beginner", nil)
	require.Equal(t, http.StatusOK, code)
	var workouts []models.Workout
	decodeInto(t, body, &workouts)
	assert.Len(t, workouts, 1)

	code, _ = s.do(t, http.MethodGet, "/api/workouts/by_difficulty", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestActivityEndpoints(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	user := &models.User{Name: "Flash", Email: "barry.allen@dc.com"}
	require.NoError(t, s.store.CreateUser(ctx, user))

	code, _ := s.do(t, http.MethodPost, "/api/activities", models.Activity{UserID: "ghost", ActivityType: "running"})
	assert.Equal(t, http.StatusBadRequest, code)

	for _, typ := range []string{"running", "cycling", "running"} {
		code, body := s.do(t, http.MethodPost, "/api/activities/", models.Activity{UserID: user.ID, ActivityType: typ, PointsEarned: 20})
		require.Equal(t, http.StatusCreated, code, string(body))
	}

	code, body := s.do(t, http.MethodGet, "/api/activities/by_type?type=running", nil)
	require.Equal(t, http.StatusOK, code)
	var running []models.Activity
	decodeInto(t, body, &running)
	assert.Len(t, running, 2)

	code, _ = s.do(t, http.MethodGet, "/api/activities/by_type", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = s.do(t, http.MethodGet, "/api/activities/recent?limit=2", nil)
	require.Equal(t, http.StatusOK, code)
	var recent []models.Activity
	decodeInto(t, body, &recent)
	assert.Len(t, recent, 2)

	code, body = s.do(t, http.MethodGet, "/api/activities/recent?limit=oops", nil)
	require.Equal(t, http.StatusOK, code)
	decodeInto(t, body, &recent)
	assert.Len(t, recent, 3)

	code, body = s.do(t, http.MethodGet, "/api/users/"+user.ID+"/activities", nil)
	require.Equal(t, http.StatusOK, code)
	var mine []models.Activity
	decodeInto(t, body, &mine)
	assert.Len(t, mine, 3)
}

func TestLeaderboardEndpoints(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	for i, u := range []models.User{
		{Name: "Superman", Email: "clark.kent@dc.com", Team: "Team DC", TotalPoints: 900},
		{Name: "Thor", Email: "thor.odinson@marvel.com", Team: "Team Marvel", TotalPoints: 800},
		{Name: "Hulk", Email: "bruce.banner@marvel.com", Team: "Team Marvel", TotalPoints: 100},
	} {
		u := u
		require.NoError(t, s.store.CreateUser(ctx, &u), i)
	}

	code, body := s.do(t, http.MethodPost, "/api/leaderboard/rebuild/", nil)
	require.Equal(t, http.StatusOK, code)
	var rebuilt models.RebuildResponse
	decodeInto(t, body, &rebuilt)
	assert.Equal(t, int64(1), rebuilt.Version)
	assert.Equal(t, 3, rebuilt.Total)

	code, body = s.do(t, http.MethodGet, "/api/leaderboard", nil)
	require.Equal(t, http.StatusOK, code)
	var all []models.LeaderboardEntry
	decodeInto(t, body, &all)
	require.Len(t, all, 3)
	assert.Equal(t, "Superman", all[0].UserName)
	assert.Equal(t, 3, all[2].Rank)

	code, body = s.do(t, http.MethodGet, "/api/leaderboard/top?limit=2", nil)
	require.Equal(t, http.StatusOK, code)
	var top []models.LeaderboardEntry
	decodeInto(t, body, &top)
	require.Len(t, top, 2)
	assert.Equal(t, []int{1, 2}, []int{top[0].Rank, top[1].Rank})

	code, body = s.do(t, http.MethodGet, "/api/leaderboard/by_team?team=Team%20Marvel", nil)
	require.Equal(t, http.StatusOK, code)
	var marvel []models.LeaderboardEntry
	decodeInto(t, body, &marvel)
	assert.Len(t, marvel, 2)

	code, _ = s.do(t, http.MethodGet, "/api/leaderboard/by_team", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = s.do(t, http.MethodGet, "/api/leaderboard/"+all[1].ID, nil)
	require.Equal(t, http.StatusOK, code)
	var entry models.LeaderboardEntry
	decodeInto(t, body, &entry)
	assert.Equal(t, "Thor", entry.UserName)

	code, body = s.do(t, http.MethodPost, "/api/leaderboard/rebuild?async=true", nil)
	require.Equal(t, http.StatusAccepted, code)
	var queued models.RebuildResponse
	decodeInto(t, body, &queued)
	assert.False(t, queued.Queued, "no worker pool is attached")
	assert.Equal(t, int64(1), queued.Version)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	code, body := s.do(t, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, code)
	var health map[string]interface{}
	decodeInto(t, body, &health)
	assert.Equal(t, "healthy", health["status"])

	code, body = s.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestWebSocketRequiresUpgrade(t *testing.T) {
	s := newTestServer(t)

	code, _ := s.do(t, http.MethodGet, "/ws", nil)
	assert.Equal(t, http.StatusUpgradeRequired, code)
}
