package models

import (
	"strings"
	"time"
)

// User roles
const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// User represents a platform account. Students carry profile fields
// (bio, skills, links); admins do not.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:100;not null" json:"username"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password     string    `gorm:"size:255;not null" json:"-"` // bcrypt hash
	Role         string    `gorm:"size:20;default:student" json:"role"`
	Bio          string    `gorm:"type:text" json:"bio,omitempty"`
	Skills       string    `gorm:"size:2000" json:"-"` // comma-joined canonical skills
	SkillList    []string  `gorm:"-" json:"skills,omitempty"`
	IsBlocked    bool      `gorm:"default:false" json:"is_blocked"`
	GithubLink   string    `gorm:"size:500" json:"github_link,omitempty"`
	LinkedinLink string    `gorm:"size:500" json:"linkedin_link,omitempty"`
	EmailLink    string    `gorm:"size:500" json:"email_link,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }

// SetSkills stores the skill list in its persisted comma-joined form and
// keeps the exposed slice in sync.
func (u *User) SetSkills(skills []string) {
	u.Skills = strings.Join(skills, ",")
	u.SkillList = skills
}

// ResolveSkills fills SkillList from the persisted column.
func (u *User) ResolveSkills() {
	if u.Skills == "" {
		u.SkillList = nil
		return
	}
	u.SkillList = strings.Split(u.Skills, ",")
}
