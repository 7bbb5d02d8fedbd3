package models

import (
	"fmt"
	"time"
)

// LeaderboardEntry is one row of the materialized leaderboard. Entries are
// produced only by a rebuild and replaced wholesale by the next one.
type LeaderboardEntry struct {
	ID          string    `gorm:"primaryKey;size:24" bson:"_id" json:"id"`
	UserID      string    `gorm:"size:24;index;not null" bson:"user_id" json:"user_id"`
	UserName    string    `gorm:"size:100" bson:"user_name" json:"user_name"`
	Team        string    `gorm:"size:100;index" bson:"team" json:"team"`
	TeamID      string    `gorm:"size:24;index" bson:"team_id" json:"team_id"`
	TotalPoints int       `gorm:"not null;default:0" bson:"total_points" json:"total_points"`
	Rank        int       `gorm:"not null;index" bson:"rank" json:"rank"`
	LastUpdated time.Time `bson:"last_updated" json:"last_updated"`
}

// TableName specifies the table name for GORM
func (LeaderboardEntry) TableName() string {
	return "leaderboard"
}

func (e LeaderboardEntry) String() string {
	return fmt.Sprintf("%d. %s - %d points", e.Rank, e.UserName, e.TotalPoints)
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// RebuildResponse reports the outcome of a leaderboard rebuild
type RebuildResponse struct {
	Version int64              `json:"version"`
	BuiltAt time.Time          `json:"built_at"`
	Total   int                `json:"total"`
	Entries []LeaderboardEntry `json:"entries,omitempty"`
	Queued  bool               `json:"queued,omitempty"`
}
