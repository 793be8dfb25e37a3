package models

import "time"

// Rating bounds
const (
	MinRating = 0
	MaxRating = 5
)

// Review is the project creator's rating of a team member after the project
// closed. The reviewer is implicitly the project's creator and is not
// stored. One review per (reviewed user, project), enforced by the store.
type Review struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex:idx_reviewed_project;not null" json:"user_id"` // reviewed user
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ProjectID uint      `gorm:"uniqueIndex:idx_reviewed_project;not null" json:"project_id"`
	Project   *Project  `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Rating    float64   `gorm:"not null" json:"rating"`
	Comment   string    `gorm:"type:text;not null" json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Review) TableName() string { return "reviews" }
