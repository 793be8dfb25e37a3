package handlers

import (
	"strconv"

	"github.com/collabhub/backend/internal/middleware"
	"github.com/collabhub/backend/internal/services"
	"github.com/collabhub/backend/pkg/response"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// Register creates a new student account
// POST /api/users/register
func (h *UserHandler) Register(c *gin.Context) {
	var req services.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.users.Register(&req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, gin.H{"user": user})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates a user and returns a JWT
// POST /api/users/login
func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.users.Login(req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// MyProfile returns the authenticated user's full profile
// GET /api/users/my-profile
func (h *UserHandler) MyProfile(c *gin.Context) {
	userID := middleware.GetUserID(c)

	profile, err := h.users.GetProfile(userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"profile": profile})
}

// GetProfile returns another student's public profile
// GET /api/users/:id
func (h *UserHandler) GetProfile(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}

	profile, err := h.users.GetStudentProfile(uint(id))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"profile": profile})
}
