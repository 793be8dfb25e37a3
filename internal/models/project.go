package models

import "time"

// Project statuses
const (
	ProjectStatusOpen       = "open"
	ProjectStatusInProgress = "in_progress"
	ProjectStatusClosed     = "closed"
	ProjectStatusCancelled  = "cancelled"
)

// Project difficulties
const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

// Team size bounds
const (
	MinTeamSize = 2
	MaxTeamSize = 8
)

// ProjectStatuses lists all valid project statuses.
var ProjectStatuses = []string{
	ProjectStatusOpen, ProjectStatusInProgress, ProjectStatusClosed, ProjectStatusCancelled,
}

// Difficulties lists all valid difficulty levels.
var Difficulties = []string{
	DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced,
}

// Project is a student project looking for team members. Team membership
// lives in project_members and is mutated only through the application
// workflow; required skills live in project_skills so they can be filtered
// and intersected in SQL.
type Project struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:200;not null;uniqueIndex:idx_title_creator" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Domain      string    `gorm:"size:100;not null;index" json:"domain"`
	Difficulty  string    `gorm:"size:20;not null" json:"difficulty"`
	TeamSize    int       `gorm:"not null" json:"team_size"`
	GroupLink   string    `gorm:"size:500" json:"group_link,omitempty"`
	Status      string    `gorm:"size:20;default:open;index" json:"status"`
	Deadline    time.Time `gorm:"not null" json:"deadline"`
	CreatedBy   uint      `gorm:"not null;uniqueIndex:idx_title_creator;index" json:"created_by"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Creator        *User           `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	Skills         []ProjectSkill  `gorm:"foreignKey:ProjectID" json:"-"`
	Members        []ProjectMember `gorm:"foreignKey:ProjectID" json:"team_members,omitempty"`
	RequiredSkills []string        `gorm:"-" json:"required_skills"`
}

func (Project) TableName() string { return "projects" }

// ResolveSkills fills RequiredSkills from the preloaded Skills rows.
func (p *Project) ResolveSkills() {
	p.RequiredSkills = make([]string, 0, len(p.Skills))
	for _, s := range p.Skills {
		p.RequiredSkills = append(p.RequiredSkills, s.Skill)
	}
}

// MemberIDs returns the user ids of the preloaded members in join order.
func (p *Project) MemberIDs() []uint {
	ids := make([]uint, 0, len(p.Members))
	for _, m := range p.Members {
		ids = append(ids, m.UserID)
	}
	return ids
}

// HasMember reports whether userID is among the preloaded members.
func (p *Project) HasMember(userID uint) bool {
	for _, m := range p.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// ProjectSkill is one required skill of a project, in canonical taxonomy case.
type ProjectSkill struct {
	ID        uint   `gorm:"primaryKey" json:"-"`
	ProjectID uint   `gorm:"uniqueIndex:idx_project_skill;not null" json:"-"`
	Skill     string `gorm:"uniqueIndex:idx_project_skill;size:100;not null" json:"skill"`
}

func (ProjectSkill) TableName() string { return "project_skills" }
