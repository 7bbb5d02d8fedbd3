package models

import "time"

// Workout difficulties
const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
	DifficultyExpert       = "expert"
)

// Difficulties lists the accepted difficulty values in ascending order
var Difficulties = []string{DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced, DifficultyExpert}

// Workout is a static catalog entry
type Workout struct {
	ID              string    `gorm:"primaryKey;size:24" bson:"_id" json:"id"`
	Name            string    `gorm:"size:100;not null" bson:"name" json:"name" validate:"required,max=100"`
	Description     string    `gorm:"type:text" bson:"description" json:"description"`
	DurationMinutes int       `gorm:"not null" bson:"duration_minutes" json:"duration_minutes" validate:"min=0"`
	Difficulty      string    `gorm:"size:50;index;not null" bson:"difficulty" json:"difficulty" validate:"required,oneof=beginner intermediate advanced expert"`
	CaloriesBurned  int       `gorm:"not null" bson:"calories_burned" json:"calories_burned" validate:"min=0"`
	CreatedAt       time.Time `bson:"created_at" json:"created_at"`
}

// TableName specifies the table name for GORM
func (Workout) TableName() string {
	return "workouts"
}
