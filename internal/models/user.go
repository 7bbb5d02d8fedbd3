package models

import (
	"time"
)

// User represents a team member
type User struct {
	ID         string `gorm:"primaryKey;size:24" bson:"_id" json:"id"`
	Name       string `gorm:"size:100;not null" bson:"name" json:"name" validate:"required,max=100"`
	Email      string `gorm:"size:254;uniqueIndex;not null" bson:"email" json:"email" validate:"required,email"`
	Alias      string `gorm:"size:100" bson:"alias" json:"alias" validate:"max=100"`
	Superpower string `gorm:"type:text" bson:"superpower" json:"superpower"`
	// Team is a denormalized copy of the team name; TeamID is the reference.
	Team         string    `gorm:"size:100;index" bson:"team" json:"team" validate:"max=100"`
	TeamID       string    `gorm:"size:24;index" bson:"team_id" json:"team_id" validate:"max=24"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	FitnessLevel string    `gorm:"size:50" bson:"fitness_level" json:"fitness_level" validate:"max=50"`
	// TotalPoints is the baseline score, independent of logged activities.
	TotalPoints int `gorm:"not null;default:0;index" bson:"total_points" json:"total_points"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}
