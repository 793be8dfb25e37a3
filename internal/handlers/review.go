package handlers

import (
	"strconv"

	"github.com/collabhub/backend/internal/middleware"
	"github.com/collabhub/backend/internal/services"
	"github.com/collabhub/backend/pkg/response"
	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	reviews *services.ReviewService
}

func NewReviewHandler(reviews *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

type createReviewRequest struct {
	UserID  uint    `json:"user_id"`
	Rating  float64 `json:"rating"`
	Comment string  `json:"comment"`
}

// Create records a review of a team member on a closed project
// POST /api/projects/:id/reviews
func (h *ReviewHandler) Create(c *gin.Context) {
	projectID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}

	var req createReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	review, err := h.reviews.Create(uint(projectID), req.UserID, req.Rating, req.Comment,
		middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, gin.H{"review": review})
}

type updateReviewRequest struct {
	Rating  float64 `json:"rating"`
	Comment string  `json:"comment"`
}

// Update rewrites a review's rating and comment; reviewer only
// PUT /api/reviews/:id
func (h *ReviewHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid review id")
		return
	}

	var req updateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	review, err := h.reviews.Update(uint(id), req.Rating, req.Comment, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"review": review})
}

// Delete removes a review; reviewer only
// DELETE /api/reviews/:id
func (h *ReviewHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid review id")
		return
	}

	if err := h.reviews.Delete(uint(id), middleware.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "review deleted successfully"})
}

// Get returns one review; visible to the reviewer, the reviewed user and
// admins
// GET /api/reviews/:id
func (h *ReviewHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid review id")
		return
	}

	review, err := h.reviews.Get(uint(id), middleware.GetUserID(c), middleware.GetRole(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"review": review})
}

// ListAll returns every review; admin only
// GET /api/reviews
func (h *ReviewHandler) ListAll(c *gin.Context) {
	reviews, err := h.reviews.ListAll()
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"reviews": reviews})
}
