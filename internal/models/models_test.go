package models

import (
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	assert.Len(t, a, 24)
	assert.NotEqual(t, a, b)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		value     interface{}
		wantField string
	}{
		{
			name:  "valid user",
			value: &User{Name: "Iron Man", Email: "tony.stark@marvel.com", Team: "Team Marvel"},
		},
		{
			name:      "user without email",
			value:     &User{Name: "Iron Man"},
			wantField: "Email",
		},
		{
			name:      "user with malformed email",
			value:     &User{Name: "Thor", Email: "thor-at-asgard"},
			wantField: "Email",
		},
		{
			name:      "team without name",
			value:     &Team{Description: "nameless"},
			wantField: "Name",
		},
		{
			name:  "valid workout",
			value: &Workout{Name: "Yoga Flow", Difficulty: DifficultyBeginner, DurationMinutes: 60},
		},
		{
			name:      "workout with unknown difficulty",
			value:     &Workout{Name: "Yoga Flow", Difficulty: "legendary"},
			wantField: "Difficulty",
		},
		{
			name:      "activity with negative points",
			value:     &Activity{UserID: "u1", ActivityType: "running", PointsEarned: -5, Date: time.Now()},
			wantField: "PointsEarned",
		},
		{
			name:      "activity without user",
			value:     &Activity{ActivityType: "running"},
			wantField: "UserID",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.value)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var verrs validator.ValidationErrors
			require.True(t, errors.As(err, &verrs))
			assert.Equal(t, tt.wantField, verrs[0].Field())
		})
	}
}

func TestLeaderboardEntryString(t *testing.T) {
	e := LeaderboardEntry{Rank: 3, UserName: "Flash", TotalPoints: 420}
	assert.Equal(t, "3. Flash - 420 points", e.String())
}
