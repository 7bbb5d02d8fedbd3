package models

import "time"

// Team groups users. Members is a cached list of user ids; membership is
// authoritative only through User.TeamID.
type Team struct {
	ID          string    `gorm:"primaryKey;size:24" bson:"_id" json:"id"`
	Name        string    `gorm:"size:100;uniqueIndex;not null" bson:"name" json:"name" validate:"required,max=100"`
	Description string    `gorm:"type:text" bson:"description" json:"description"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	Members     []string  `gorm:"serializer:json" bson:"members" json:"members"`
}

// TableName specifies the table name for GORM
func (Team) TableName() string {
	return "teams"
}
