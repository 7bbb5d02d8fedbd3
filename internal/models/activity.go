package models

import (
	"fmt"
	"time"
)

// Activity is one logged workout session and the unit of scoring input
type Activity struct {
	ID              string    `gorm:"primaryKey;size:24" bson:"_id" json:"id"`
	UserID          string    `gorm:"size:24;index;not null" bson:"user_id" json:"user_id" validate:"required,max=24"`
	WorkoutID       string    `gorm:"size:24;index" bson:"workout_id" json:"workout_id" validate:"max=24"`
	ActivityType    string    `gorm:"size:50;index;not null" bson:"activity_type" json:"activity_type" validate:"required,max=50"`
	DurationMinutes int       `gorm:"not null" bson:"duration_minutes" json:"duration_minutes" validate:"min=0"`
	CaloriesBurned  int       `gorm:"not null" bson:"calories_burned" json:"calories_burned" validate:"min=0"`
	DistanceKM      float64   `gorm:"not null;default:0" bson:"distance_km" json:"distance_km" validate:"min=0"`
	Date            time.Time `gorm:"index;not null" bson:"date" json:"date"`
	Notes           string    `gorm:"type:text" bson:"notes" json:"notes"`
	PointsEarned    int       `gorm:"not null;default:0" bson:"points_earned" json:"points_earned" validate:"min=0"`
}

// TableName specifies the table name for GORM
func (Activity) TableName() string {
	return "activities"
}

func (a Activity) String() string {
	return fmt.Sprintf("%s - %s", a.ActivityType, a.Date.Format(time.RFC3339))
}
