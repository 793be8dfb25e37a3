package models

import "time"

// Application statuses. pending is the only non-terminal state: an
// application moves exactly once to accepted, rejected or cancelled.
const (
	ApplicationStatusPending   = "pending"
	ApplicationStatusAccepted  = "accepted"
	ApplicationStatusRejected  = "rejected"
	ApplicationStatusCancelled = "cancelled"
)

// Application is a user's request to join a project. The unique index on
// (user_id, project_id) enforces the one-application-ever rule; it is the
// final authority under concurrent submissions.
type Application struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex:idx_applicant_project;not null" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ProjectID uint      `gorm:"uniqueIndex:idx_applicant_project;not null" json:"project_id"`
	Project   *Project  `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Status    string    `gorm:"size:20;default:pending;index" json:"status"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Application) TableName() string { return "applications" }

// IsTerminal reports whether the application has reached a final status.
func (a *Application) IsTerminal() bool {
	return a.Status != ApplicationStatusPending
}
