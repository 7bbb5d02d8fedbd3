// Package seed populates a store with the demo heroes dataset and generates
// random activities for it.
package seed

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"octofit/internal/logger"
	"octofit/internal/models"
	"octofit/internal/repository"
)

// Seeding ranges
const (
	MinBaselinePoints = 100
	MaxBaselinePoints = 1000
	MinActivityPoints = 10
	MaxActivityPoints = 50
	ActivityWindow    = 30 * 24 * time.Hour
)

// Generator draws random activities
type Generator struct {
	rng       *rand.Rand
	minPoints int
	maxPoints int
}

// NewGenerator creates a generator awarding points in [minPoints, maxPoints]
func NewGenerator(rng *rand.Rand, minPoints, maxPoints int) *Generator {
	if maxPoints < minPoints {
		minPoints, maxPoints = maxPoints, minPoints
	}
	return &Generator{rng: rng, minPoints: minPoints, maxPoints: maxPoints}
}

func (g *Generator) between(lo, hi int) int {
	return lo + g.rng.Intn(hi-lo+1)
}

// Activity returns a random activity of userID for workoutID at date.
// Distance is only recorded for running, cycling and swimming.
func (g *Generator) Activity(userID, workoutID string, date time.Time) models.Activity {
	activityType := ActivityTypes[g.rng.Intn(len(ActivityTypes))]
	distance := 0.0
	if distanceTypes[activityType] {
		distance = math.Round((1+g.rng.Float64()*14)*100) / 100
	}
	return models.Activity{
		UserID:          userID,
		WorkoutID:       workoutID,
		ActivityType:    activityType,
		DurationMinutes: g.between(15, 90),
		CaloriesBurned:  g.between(100, 500),
		DistanceKM:      distance,
		Date:            date,
		Notes:           fmt.Sprintf("Great %s session!", activityType),
		PointsEarned:    g.between(g.minPoints, g.maxPoints),
	}
}

// PastDate returns now minus a whole number of days within window
func (g *Generator) PastDate(now time.Time, window time.Duration) time.Time {
	days := int(window / (24 * time.Hour))
	return now.AddDate(0, 0, -g.rng.Intn(days+1))
}

// Pick returns a random index below n
func (g *Generator) Pick(n int) int {
	return g.rng.Intn(n)
}

// Options controls a seeding run
type Options struct {
	Activities int
	Reset      bool
}

// Result counts the records a run created
type Result struct {
	Teams      int
	Users      int
	Workouts   int
	Activities int
}

// Seeder writes the demo dataset
type Seeder struct {
	store repository.Store
	rng   *rand.Rand
	gen   *Generator
	now   func() time.Time
}

// New creates a seeder drawing from rng
func New(store repository.Store, rng *rand.Rand) *Seeder {
	return &Seeder{
		store: store,
		rng:   rng,
		gen:   NewGenerator(rng, MinActivityPoints, MaxActivityPoints),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Run seeds teams, heroes, workouts and random activities
func (s *Seeder) Run(ctx context.Context, opts Options) (Result, error) {
	var res Result

	if opts.Reset {
		logger.Info("Clearing existing data...")
		if err := s.store.Reset(ctx); err != nil {
			return res, fmt.Errorf("reset store: %w", err)
		}
	}

	var userIDs []string
	for _, tmpl := range teams {
		team := tmpl
		if err := s.store.CreateTeam(ctx, &team); err != nil {
			return res, fmt.Errorf("create team %s: %w", team.Name, err)
		}
		res.Teams++
		logger.Success("Created %s with ID: %s", team.Name, team.ID)

		team.Members = make([]string, 0, len(rosters[team.Name]))
		for _, h := range rosters[team.Name] {
			u := models.User{
				Name:         h.Name,
				Email:        h.Email,
				Alias:        h.Alias,
				Superpower:   h.Superpower,
				Team:         team.Name,
				TeamID:       team.ID,
				FitnessLevel: models.Difficulties[s.rng.Intn(len(models.Difficulties))],
				TotalPoints:  s.gen.between(MinBaselinePoints, MaxBaselinePoints),
			}
			if err := s.store.CreateUser(ctx, &u); err != nil {
				return res, fmt.Errorf("create user %s: %w", u.Name, err)
			}
			team.Members = append(team.Members, u.ID)
			userIDs = append(userIDs, u.ID)
			res.Users++
		}
		if err := s.store.UpdateTeam(ctx, &team); err != nil {
			return res, fmt.Errorf("update members of %s: %w", team.Name, err)
		}
		logger.Success("Created %d %s heroes", len(team.Members), team.Name)
	}

	workoutIDs := make([]string, 0, len(workouts))
	for _, tmpl := range workouts {
		w := tmpl
		if err := s.store.CreateWorkout(ctx, &w); err != nil {
			return res, fmt.Errorf("create workout %s: %w", w.Name, err)
		}
		workoutIDs = append(workoutIDs, w.ID)
		res.Workouts++
	}
	logger.Success("Created %d workout types", res.Workouts)

	now := s.now()
	for i := 0; i < opts.Activities && len(userIDs) > 0; i++ {
		a := s.gen.Activity(
			userIDs[s.gen.Pick(len(userIDs))],
			workoutIDs[s.gen.Pick(len(workoutIDs))],
			s.gen.PastDate(now, ActivityWindow),
		)
		if err := s.store.CreateActivity(ctx, &a); err != nil {
			return res, fmt.Errorf("create activity: %w", err)
		}
		res.Activities++
	}
	logger.Success("Created %d activities", res.Activities)

	return res, nil
}
