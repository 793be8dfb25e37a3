package handlers

import (
	"strconv"

	"github.com/collabhub/backend/internal/middleware"
	"github.com/collabhub/backend/internal/services"
	"github.com/collabhub/backend/pkg/response"
	"github.com/gin-gonic/gin"
)

type ApplicationHandler struct {
	applications *services.ApplicationService
}

func NewApplicationHandler(applications *services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{applications: applications}
}

type applyRequest struct {
	Message string `json:"message"`
}

// Create submits an application to a project
// POST /api/projects/:id/applications
func (h *ApplicationHandler) Create(c *gin.Context) {
	projectID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}

	var req applyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	application, err := h.applications.Apply(uint(projectID), middleware.GetUserID(c), req.Message)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, gin.H{"application": application})
}

// UpdateStatus moves a pending application to accepted, rejected or
// cancelled
// PATCH /api/applications/:id/status
func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid application id")
		return
	}

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	application, err := h.applications.SetStatus(uint(id), req.Status, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"application": application})
}

// ListAll returns every application; admin only
// GET /api/applications
func (h *ApplicationHandler) ListAll(c *gin.Context) {
	applications, err := h.applications.ListAll()
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"applications": applications})
}
