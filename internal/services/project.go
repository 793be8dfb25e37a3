package services

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/collabhub/backend/internal/models"
	"github.com/collabhub/backend/pkg/response"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StatusPolicy decides whether a project status transition is allowed.
// The default is permissive: any status is reachable from any status.
type StatusPolicy func(from, to string) bool

// PermissiveStatusPolicy allows every transition between valid statuses.
func PermissiveStatusPolicy(from, to string) bool { return true }

// TableStatusPolicy builds a policy from an explicit adjacency table.
func TableStatusPolicy(table map[string][]string) StatusPolicy {
	return func(from, to string) bool {
		for _, allowed := range table[from] {
			if allowed == to {
				return true
			}
		}
		return false
	}
}

type ProjectService struct {
	db        *gorm.DB
	validator *Validator
	policy    StatusPolicy
}

func NewProjectService(db *gorm.DB, validator *Validator, policy StatusPolicy) *ProjectService {
	if policy == nil {
		policy = PermissiveStatusPolicy
	}
	return &ProjectService{db: db, validator: validator, policy: policy}
}

// ProjectListRequest is the project listing query. Page and Limit are
// pointers so an explicit page=0 can be rejected instead of silently
// falling back to the default.
type ProjectListRequest struct {
	Page           *int     `form:"page"`
	Limit          *int     `form:"limit"`
	Search         string   `form:"search"`
	Domain         string   `form:"domain"`
	Skills         []string `form:"skills"`
	Difficulties   []string `form:"difficulties"`
	TeamSizeRanges []string `form:"teamSizeRanges"`
	Status         string   `form:"status"`
	SortBy         string   `form:"sortBy"`
}

type Pagination struct {
	CurrentPage   int   `json:"current_page"`
	TotalPages    int   `json:"total_pages"`
	TotalProjects int64 `json:"total_projects"`
	HasNextPage   bool  `json:"has_next_page"`
	HasPrevPage   bool  `json:"has_prev_page"`
	Limit         int   `json:"limit"`
}

type ProjectListResponse struct {
	Projects   []models.Project `json:"projects"`
	Pagination Pagination       `json:"pagination"`
}

var teamSizeRanges = []string{"2-3", "4-5", "6+"}

// Create validates and persists a new project. The creator becomes the sole
// team member and the project opens for applications.
func (s *ProjectService) Create(in *ProjectInput, actorID uint) (*models.Project, error) {
	fields, err := s.validator.ValidateProject(in)
	if err != nil {
		return nil, err
	}

	var count int64
	s.db.Model(&models.Project{}).
		Where("title = ? AND created_by = ?", fields.Title, actorID).
		Count(&count)
	if count > 0 {
		return nil, response.NewConflict("project with this title already exists")
	}

	project := models.Project{
		Title:       fields.Title,
		Description: fields.Description,
		Domain:      fields.Domain,
		Difficulty:  fields.Difficulty,
		TeamSize:    fields.TeamSize,
		GroupLink:   fields.GroupLink,
		Status:      models.ProjectStatusOpen,
		Deadline:    fields.Deadline,
		CreatedBy:   actorID,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return err
		}
		for _, skill := range fields.RequiredSkills {
			if err := tx.Create(&models.ProjectSkill{ProjectID: project.ID, Skill: skill}).Error; err != nil {
				return err
			}
		}
		return tx.Create(&models.ProjectMember{ProjectID: project.ID, UserID: actorID}).Error
	})
	if err != nil {
		if models.IsDuplicateKey(err) {
			return nil, response.NewConflict("project with this title already exists")
		}
		return nil, err
	}

	return s.GetByID(project.ID)
}

// Update validates and persists project field edits. Status and team
// membership are never touched here.
func (s *ProjectService) Update(projectID uint, in *ProjectInput, actorID uint) (*models.Project, error) {
	project, err := s.load(projectID)
	if err != nil {
		return nil, err
	}

	if !IsOwner(actorID, project.CreatedBy) {
		return nil, response.NewForbidden("you are not authorized to update this project")
	}

	fields, err := s.validator.ValidateProject(in)
	if err != nil {
		return nil, err
	}

	var count int64
	s.db.Model(&models.Project{}).
		Where("title = ? AND created_by = ? AND id <> ?", fields.Title, actorID, projectID).
		Count(&count)
	if count > 0 {
		return nil, response.NewConflict("project with this title already exists")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"title":       fields.Title,
			"description": fields.Description,
			"domain":      fields.Domain,
			"difficulty":  fields.Difficulty,
			"team_size":   fields.TeamSize,
			"group_link":  fields.GroupLink,
			"deadline":    fields.Deadline,
		}
		if err := tx.Model(&models.Project{}).Where("id = ?", projectID).Updates(updates).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&models.ProjectSkill{}).Error; err != nil {
			return err
		}
		for _, skill := range fields.RequiredSkills {
			if err := tx.Create(&models.ProjectSkill{ProjectID: projectID, Skill: skill}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if models.IsDuplicateKey(err) {
			return nil, response.NewConflict("project with this title already exists")
		}
		return nil, err
	}

	return s.GetByID(projectID)
}

// UpdateStatus moves a project to newStatus if the configured policy allows
// the transition. Only the creator may change status.
func (s *ProjectService) UpdateStatus(projectID uint, newStatus string, actorID uint) error {
	project, err := s.load(projectID)
	if err != nil {
		return err
	}

	if !IsOwner(actorID, project.CreatedBy) {
		return response.NewForbidden("you are not authorized to update the status of this project")
	}

	if !contains(models.ProjectStatuses, newStatus) {
		return response.NewBadRequest(fmt.Sprintf("invalid status. Must be one of: %s", strings.Join(models.ProjectStatuses, ", ")))
	}

	if !s.policy(project.Status, newStatus) {
		return response.NewConflict(fmt.Sprintf("status transition from %s to %s is not allowed", project.Status, newStatus))
	}

	return s.db.Model(&models.Project{}).Where("id = ?", projectID).
		Update("status", newStatus).Error
}

// Delete removes a project with its skills and member rows. Applications and
// reviews that reference the project are left behind; cleaning them up is an
// external concern.
func (s *ProjectService) Delete(projectID uint, actorID uint) error {
	project, err := s.load(projectID)
	if err != nil {
		return err
	}

	if !IsOwner(actorID, project.CreatedBy) {
		return response.NewForbidden("you are not authorized to delete this project")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", projectID).Delete(&models.ProjectMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&models.ProjectSkill{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Project{}, projectID).Error
	})
}

// GetByID returns a project with creator, members and skills resolved.
func (s *ProjectService) GetByID(projectID uint) (*models.Project, error) {
	var project models.Project
	err := s.db.
		Preload("Creator").
		Preload("Skills").
		Preload("Members", func(db *gorm.DB) *gorm.DB {
			return db.Order("project_members.created_at, project_members.id")
		}).
		Preload("Members.User").
		First(&project, projectID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("project not found")
		}
		return nil, err
	}
	resolveProject(&project)
	return &project, nil
}

// List returns filtered, sorted, paginated projects. viewerSkills feeds the
// best_match sort and is an explicit parameter: listing is not a pure
// function of the query string.
func (s *ProjectService) List(req *ProjectListRequest, viewerSkills []string) (*ProjectListResponse, error) {
	page, limit := 1, 10
	if req.Page != nil {
		page = *req.Page
	}
	if req.Limit != nil {
		limit = *req.Limit
	}
	if page < 1 || limit < 1 || limit > 50 {
		return nil, response.NewBadRequest("invalid pagination parameters. Page must be >= 1, limit must be between 1 and 50")
	}

	query := s.db.Model(&models.Project{})

	if req.Search != "" {
		query = query.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(req.Search)+"%")
	}

	if req.Domain != "" {
		domain, ok := s.validator.Taxonomy().NormalizeDomain(req.Domain)
		if !ok {
			return nil, response.NewBadRequest(fmt.Sprintf("invalid domain. Must be one of: %s", strings.Join(s.validator.Taxonomy().Domains(), ", ")))
		}
		query = query.Where("domain = ?", domain)
	}

	if len(req.Skills) > 0 {
		skills, err := s.validator.ValidateSkills(req.Skills)
		if err != nil {
			return nil, err
		}
		// ALL semantics: a project must require every listed skill.
		for _, skill := range skills {
			query = query.Where(
				"EXISTS (SELECT 1 FROM project_skills ps WHERE ps.project_id = projects.id AND ps.skill = ?)",
				skill,
			)
		}
	}

	if len(req.Difficulties) > 0 {
		for _, d := range req.Difficulties {
			if !contains(models.Difficulties, d) {
				return nil, response.NewBadRequest(fmt.Sprintf("invalid difficulties: %s. Must be one of: %s", d, strings.Join(models.Difficulties, ", ")))
			}
		}
		query = query.Where("difficulty IN ?", req.Difficulties)
	}

	if len(req.TeamSizeRanges) > 0 {
		cond := s.db.Session(&gorm.Session{NewDB: true})
		var rangeCond *gorm.DB
		for _, r := range req.TeamSizeRanges {
			var c *gorm.DB
			switch r {
			case "2-3":
				c = cond.Where("team_size BETWEEN ? AND ?", 2, 3)
			case "4-5":
				c = cond.Where("team_size BETWEEN ? AND ?", 4, 5)
			case "6+":
				c = cond.Where("team_size >= ?", 6)
			default:
				return nil, response.NewBadRequest(fmt.Sprintf("invalid team size ranges: %s. Must be one of: %s", r, strings.Join(teamSizeRanges, ", ")))
			}
			if rangeCond == nil {
				rangeCond = c
			} else {
				rangeCond = rangeCond.Or(c)
			}
		}
		query = query.Where(rangeCond)
	}

	if req.Status != "" && contains(models.ProjectStatuses, req.Status) {
		query = query.Where("status = ?", req.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	query = applyProjectSort(query, req.SortBy, viewerSkills)

	var projects []models.Project
	offset := (page - 1) * limit
	err := query.
		Preload("Creator").
		Preload("Skills").
		Preload("Members", func(db *gorm.DB) *gorm.DB {
			return db.Order("project_members.created_at, project_members.id")
		}).
		Preload("Members.User").
		Offset(offset).Limit(limit).
		Find(&projects).Error
	if err != nil {
		return nil, err
	}

	for i := range projects {
		resolveProject(&projects[i])
	}

	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	return &ProjectListResponse{
		Projects: projects,
		Pagination: Pagination{
			CurrentPage:   page,
			TotalPages:    totalPages,
			TotalProjects: total,
			HasNextPage:   page < totalPages,
			HasPrevPage:   page > 1,
			Limit:         limit,
		},
	}, nil
}

func applyProjectSort(query *gorm.DB, sortBy string, viewerSkills []string) *gorm.DB {
	switch sortBy {
	case "deadline_soon":
		return query.Order("deadline")
	case "most_popular":
		return query.Order(clause.OrderBy{Expression: clause.Expr{
			SQL:                "(SELECT COUNT(*) FROM project_members pm WHERE pm.project_id = projects.id) DESC",
			WithoutParentheses: true,
		}})
	case "best_match":
		if len(viewerSkills) == 0 {
			return query.Order("deadline").Order("created_at DESC")
		}
		return query.Order(clause.OrderBy{Expression: clause.Expr{
			SQL:                "(SELECT COUNT(*) FROM project_skills ps WHERE ps.project_id = projects.id AND ps.skill IN (?)) DESC, deadline, created_at DESC",
			Vars:               []interface{}{viewerSkills},
			WithoutParentheses: true,
		}})
	case "most_recent", "":
		return query.Order("created_at DESC")
	default:
		return query.Order("created_at DESC")
	}
}

func (s *ProjectService) load(projectID uint) (*models.Project, error) {
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("project not found")
		}
		return nil, err
	}
	return &project, nil
}

func resolveProject(p *models.Project) {
	p.ResolveSkills()
	if p.Creator != nil {
		p.Creator.ResolveSkills()
	}
	for i := range p.Members {
		if p.Members[i].User != nil {
			p.Members[i].User.ResolveSkills()
		}
	}
}
