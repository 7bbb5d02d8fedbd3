package repository

import (
	"context"
	"sort"
	"sync"

	"octofit/internal/models"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps every record in process memory. It backs tests and the
// "memory" store driver.
type MemoryStore struct {
	mu          sync.RWMutex
	users       map[string]models.User
	teams       map[string]models.Team
	workouts    map[string]models.Workout
	activities  map[string]models.Activity
	leaderboard []models.LeaderboardEntry
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{}
	s.clear()
	return s
}

func (s *MemoryStore) clear() {
	s.users = make(map[string]models.User)
	s.teams = make(map[string]models.Team)
	s.workouts = make(map[string]models.Workout)
	s.activities = make(map[string]models.Activity)
	s.leaderboard = nil
}

// selectRows filters rows by q, orders them with less and applies the limit.
func selectRows[T any](rows map[string]T, q Query, field func(T, string) string, less func(a, b T) bool) []T {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		if q.Field == "" || field(row, q.Field) == q.Value {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

// Users

func userField(u models.User, field string) string {
	switch field {
	case "name":
		return u.Name
	case "email":
		return u.Email
	case "team":
		return u.Team
	case "team_id":
		return u.TeamID
	case "fitness_level":
		return u.FitnessLevel
	}
	return ""
}

func userLess(a, b models.User) bool {
	if a.TotalPoints != b.TotalPoints {
		return a.TotalPoints > b.TotalPoints
	}
	return a.ID < b.ID
}

func (s *MemoryStore) emailTaken(email, exceptID string) bool {
	for id, u := range s.users {
		if id != exceptID && u.Email == email {
			return true
		}
	}
	return false
}

// CreateUser stores a new user
func (s *MemoryStore) CreateUser(_ context.Context, u *models.User) error {
	if err := prepare(&u.ID, &u.CreatedAt, u); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[u.ID]; exists {
		return duplicate(KindUser, "id", u.ID)
	}
	if s.emailTaken(u.Email, "") {
		return duplicate(KindUser, "email", u.Email)
	}
	s.users[u.ID] = *u
	return nil
}

// GetUser retrieves a user by id
func (s *MemoryStore) GetUser(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, notFound(KindUser, id)
	}
	return &u, nil
}

// UpdateUser replaces an existing user
func (s *MemoryStore) UpdateUser(_ context.Context, u *models.User) error {
	if err := models.Validate(u); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return notFound(KindUser, u.ID)
	}
	if s.emailTaken(u.Email, u.ID) {
		return duplicate(KindUser, "email", u.Email)
	}
	s.users[u.ID] = *u
	return nil
}

// DeleteUser removes a user
func (s *MemoryStore) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return notFound(KindUser, id)
	}
	delete(s.users, id)
	return nil
}

// ListUsers returns users matching q
func (s *MemoryStore) ListUsers(_ context.Context, q Query) ([]models.User, error) {
	if err := q.check(KindUser); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return selectRows(s.users, q, userField, userLess), nil
}

// Teams

func teamField(t models.Team, field string) string {
	if field == "name" {
		return t.Name
	}
	return ""
}

func teamLess(a, b models.Team) bool {
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.ID < b.ID
}

func copyTeam(t models.Team) models.Team {
	t.Members = append([]string(nil), t.Members...)
	return t
}

func (s *MemoryStore) teamNameTaken(name, exceptID string) bool {
	for id, t := range s.teams {
		if id != exceptID && t.Name == name {
			return true
		}
	}
	return false
}

// CreateTeam stores a new team
func (s *MemoryStore) CreateTeam(_ context.Context, t *models.Team) error {
	if err := prepare(&t.ID, &t.CreatedAt, t); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.teams[t.ID]; exists {
		return duplicate(KindTeam, "id", t.ID)
	}
	if s.teamNameTaken(t.Name, "") {
		return duplicate(KindTeam, "name", t.Name)
	}
	s.teams[t.ID] = copyTeam(*t)
	return nil
}

// GetTeam retrieves a team by id
func (s *MemoryStore) GetTeam(_ context.Context, id string) (*models.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.teams[id]
	if !ok {
		return nil, notFound(KindTeam, id)
	}
	t = copyTeam(t)
	return &t, nil
}

// UpdateTeam replaces an existing team
func (s *MemoryStore) UpdateTeam(_ context.Context, t *models.Team) error {
	if err := models.Validate(t); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.teams[t.ID]; !ok {
		return notFound(KindTeam, t.ID)
	}
	if s.teamNameTaken(t.Name, t.ID) {
		return duplicate(KindTeam, "name", t.Name)
	}
	s.teams[t.ID] = copyTeam(*t)
	return nil
}

// DeleteTeam removes a team
func (s *MemoryStore) DeleteTeam(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.teams[id]; !ok {
		return notFound(KindTeam, id)
	}
	delete(s.teams, id)
	return nil
}

// ListTeams returns teams matching q
func (s *MemoryStore) ListTeams(_ context.Context, q Query) ([]models.Team, error) {
	if err := q.check(KindTeam); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	teams := selectRows(s.teams, q, teamField, teamLess)
	for i := range teams {
		teams[i] = copyTeam(teams[i])
	}
	return teams, nil
}

// Workouts

func workoutField(w models.Workout, field string) string {
	switch field {
	case "name":
		return w.Name
	case "difficulty":
		return w.Difficulty
	}
	return ""
}

func workoutLess(a, b models.Workout) bool {
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.ID < b.ID
}

// CreateWorkout stores a new workout
func (s *MemoryStore) CreateWorkout(_ context.Context, w *models.Workout) error {
	if err := prepare(&w.ID, &w.CreatedAt, w); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.workouts[w.ID]; exists {
		return duplicate(KindWorkout, "id", w.ID)
	}
	s.workouts[w.ID] = *w
	return nil
}

// GetWorkout retrieves a workout by id
func (s *MemoryStore) GetWorkout(_ context.Context, id string) (*models.Workout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.workouts[id]
	if !ok {
		return nil, notFound(KindWorkout, id)
	}
	return &w, nil
}

// UpdateWorkout replaces an existing workout
func (s *MemoryStore) UpdateWorkout(_ context.Context, w *models.Workout) error {
	if err := models.Validate(w); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.workouts[w.ID]; !ok {
		return notFound(KindWorkout, w.ID)
	}
	s.workouts[w.ID] = *w
	return nil
}

// DeleteWorkout removes a workout
func (s *MemoryStore) DeleteWorkout(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.workouts[id]; !ok {
		return notFound(KindWorkout, id)
	}
	delete(s.workouts, id)
	return nil
}

// ListWorkouts returns workouts matching q
func (s *MemoryStore) ListWorkouts(_ context.Context, q Query) ([]models.Workout, error) {
	if err := q.check(KindWorkout); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return selectRows(s.workouts, q, workoutField, workoutLess), nil
}

// Activities

func activityField(a models.Activity, field string) string {
	switch field {
	case "user_id":
		return a.UserID
	case "workout_id":
		return a.WorkoutID
	case "activity_type":
		return a.ActivityType
	}
	return ""
}

func activityLess(a, b models.Activity) bool {
	if !a.Date.Equal(b.Date) {
		return a.Date.After(b.Date)
	}
	return a.ID < b.ID
}

// CreateActivity stores a new activity
func (s *MemoryStore) CreateActivity(_ context.Context, a *models.Activity) error {
	if err := prepare(&a.ID, &a.Date, a); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.activities[a.ID]; exists {
		return duplicate(KindActivity, "id", a.ID)
	}
	s.activities[a.ID] = *a
	return nil
}

// GetActivity retrieves an activity by id
func (s *MemoryStore) GetActivity(_ context.Context, id string) (*models.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.activities[id]
	if !ok {
		return nil, notFound(KindActivity, id)
	}
	return &a, nil
}

// UpdateActivity replaces an existing activity
func (s *MemoryStore) UpdateActivity(_ context.Context, a *models.Activity) error {
	if err := models.Validate(a); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.activities[a.ID]; !ok {
		return notFound(KindActivity, a.ID)
	}
	s.activities[a.ID] = *a
	return nil
}

// DeleteActivity removes an activity
func (s *MemoryStore) DeleteActivity(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.activities[id]; !ok {
		return notFound(KindActivity, id)
	}
	delete(s.activities, id)
	return nil
}

// ListActivities returns activities matching q
func (s *MemoryStore) ListActivities(_ context.Context, q Query) ([]models.Activity, error) {
	if err := q.check(KindActivity); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return selectRows(s.activities, q, activityField, activityLess), nil
}

// Leaderboard

func leaderboardField(e models.LeaderboardEntry, field string) string {
	switch field {
	case "user_id":
		return e.UserID
	case "team":
		return e.Team
	case "team_id":
		return e.TeamID
	}
	return ""
}

// GetLeaderboardEntry retrieves a leaderboard entry by id
func (s *MemoryStore) GetLeaderboardEntry(_ context.Context, id string) (*models.LeaderboardEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.leaderboard {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, notFound(KindLeaderboard, id)
}

// ListLeaderboard returns entries matching q ordered by rank
func (s *MemoryStore) ListLeaderboard(_ context.Context, q Query) ([]models.LeaderboardEntry, error) {
	if err := q.check(KindLeaderboard); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.LeaderboardEntry, 0, len(s.leaderboard))
	for _, e := range s.leaderboard {
		if q.Field == "" || leaderboardField(e, q.Field) == q.Value {
			out = append(out, e)
		}
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

// ReplaceLeaderboard swaps in a new leaderboard under the write lock
func (s *MemoryStore) ReplaceLeaderboard(_ context.Context, entries []models.LeaderboardEntry) error {
	next := append([]models.LeaderboardEntry(nil), entries...)
	for i := range next {
		if next[i].ID == "" {
			next[i].ID = models.NewID()
		}
	}
	sort.SliceStable(next, func(i, j int) bool { return next[i].Rank < next[j].Rank })

	s.mu.Lock()
	s.leaderboard = next
	s.mu.Unlock()
	return nil
}

// Reset deletes every record
func (s *MemoryStore) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clear()
	return nil
}

// Ping always succeeds
func (s *MemoryStore) Ping(_ context.Context) error {
	return nil
}

// Close is a no-op
func (s *MemoryStore) Close() error {
	return nil
}
