package handlers

import (
	"strconv"

	"github.com/collabhub/backend/internal/middleware"
	"github.com/collabhub/backend/internal/models"
	"github.com/collabhub/backend/internal/services"
	"github.com/collabhub/backend/pkg/response"
	"github.com/gin-gonic/gin"
)

type ProjectHandler struct {
	projects     *services.ProjectService
	applications *services.ApplicationService
	users        *services.UserService
}

func NewProjectHandler(projects *services.ProjectService, applications *services.ApplicationService,
	users *services.UserService) *ProjectHandler {
	return &ProjectHandler{
		projects:     projects,
		applications: applications,
		users:        users,
	}
}

// List returns filtered, sorted, paginated projects
// GET /api/projects
func (h *ProjectHandler) List(c *gin.Context) {
	var req services.ProjectListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	// best_match ranks by overlap with the viewer's own skills
	var viewerSkills []string
	if userID := middleware.GetUserID(c); userID > 0 {
		if viewer, err := h.users.GetByID(userID); err == nil {
			viewerSkills = viewer.SkillList
		}
	}

	resp, err := h.projects.List(&req, viewerSkills)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, resp)
}

// GetByID returns a single project; the owner and admins also see its
// applications
// GET /api/projects/:id
func (h *ProjectHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}

	project, err := h.projects.GetByID(uint(id))
	if err != nil {
		response.Error(c, err)
		return
	}

	data := gin.H{"project": project}

	userID := middleware.GetUserID(c)
	role := middleware.GetRole(c)
	if userID == project.CreatedBy || role == models.RoleAdmin {
		applications, err := h.applications.ListByProject(project.ID)
		if err != nil {
			response.Error(c, err)
			return
		}
		data["applications"] = applications
	}

	response.Success(c, data)
}

// Create creates a new project owned by the caller
// POST /api/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req services.ProjectInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	project, err := h.projects.Create(&req, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, gin.H{"project": project})
}

// Update replaces a project's fields; owner only
// PUT /api/projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}

	var req services.ProjectInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	project, err := h.projects.Update(uint(id), &req, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"project": project})
}

type statusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus transitions a project's lifecycle status; owner only
// PATCH /api/projects/:id/status
func (h *ProjectHandler) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.projects.UpdateStatus(uint(id), req.Status, middleware.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "project status updated successfully"})
}

// Delete removes a project and its memberships; owner only
// DELETE /api/projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}

	if err := h.projects.Delete(uint(id), middleware.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "project deleted successfully"})
}
