package handlers

import (
	"github.com/collabhub/backend/internal/services"
	"github.com/collabhub/backend/pkg/response"
	"github.com/gin-gonic/gin"
)

type ActivityLogHandler struct {
	logs *services.ActivityLogService
}

func NewActivityLogHandler(logs *services.ActivityLogService) *ActivityLogHandler {
	return &ActivityLogHandler{logs: logs}
}

// List returns filtered activity logs; admin only
// GET /api/admin/logs
func (h *ActivityLogHandler) List(c *gin.Context) {
	var req services.ActivityLogListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.logs.List(&req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, resp)
}

// GetModules returns the distinct module names seen in the logs
// GET /api/admin/logs/modules
func (h *ActivityLogHandler) GetModules(c *gin.Context) {
	modules, err := h.logs.GetModules()
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"modules": modules})
}
