package models

import "time"

// ProjectMember records a user's membership in a project team. The creator's
// row is inserted together with the project; every other row is inserted
// exclusively by the application workflow on acceptance. Join order is
// insertion order (CreatedAt, then ID).
type ProjectMember struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	ProjectID uint      `gorm:"uniqueIndex:idx_project_user;not null" json:"project_id"`
	UserID    uint      `gorm:"uniqueIndex:idx_project_user;not null" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CreatedAt time.Time `json:"joined_at"`
}

func (ProjectMember) TableName() string { return "project_members" }
