package services

import (
	"errors"

	"github.com/collabhub/backend/internal/models"
	"github.com/collabhub/backend/pkg/response"
	"gorm.io/gorm"
)

type ReviewService struct {
	db        *gorm.DB
	validator *Validator
}

func NewReviewService(db *gorm.DB, validator *Validator) *ReviewService {
	return &ReviewService{db: db, validator: validator}
}

// Create records the project creator's review of a team member. Reviews
// exist only for closed projects, only about team members, never about the
// creator themselves, at most once per (member, project).
func (s *ReviewService) Create(projectID, reviewedUserID uint, rating float64, comment string, reviewerID uint) (*models.Review, error) {
	if err := s.validator.ValidateRating(rating); err != nil {
		return nil, err
	}
	trimmed, err := s.validator.ValidateText("comment", comment)
	if err != nil {
		return nil, err
	}

	var project models.Project
	if err := s.db.Preload("Members").First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("project not found")
		}
		return nil, err
	}

	if !IsOwner(reviewerID, project.CreatedBy) {
		return nil, response.NewForbidden("only the project creator can create reviews")
	}

	if project.Status != models.ProjectStatusClosed {
		return nil, response.NewConflict("reviews can only be created for closed projects")
	}

	if !project.HasMember(reviewedUserID) {
		return nil, response.NewConflict("can only review team members of the project")
	}

	if reviewedUserID == reviewerID {
		return nil, response.NewConflict("cannot review yourself")
	}

	var existing int64
	s.db.Model(&models.Review{}).
		Where("user_id = ? AND project_id = ?", reviewedUserID, projectID).
		Count(&existing)
	if existing > 0 {
		return nil, response.NewConflict("review for this user and project already exists")
	}

	review := models.Review{
		UserID:    reviewedUserID,
		ProjectID: projectID,
		Rating:    rating,
		Comment:   trimmed,
	}
	if err := s.db.Create(&review).Error; err != nil {
		if models.IsDuplicateKey(err) {
			return nil, response.NewConflict("review for this user and project already exists")
		}
		return nil, err
	}

	return s.getResolved(review.ID)
}

// Update edits a review's rating and comment. Only the project creator may
// edit, and only while the project remains closed. A review created while
// the project was closed survives later status changes; it just becomes
// read-only until the project is closed again.
func (s *ReviewService) Update(reviewID uint, rating float64, comment string, actorID uint) (*models.Review, error) {
	review, err := s.loadWithProject(reviewID)
	if err != nil {
		return nil, err
	}

	if !IsOwner(actorID, review.Project.CreatedBy) {
		return nil, response.NewForbidden("you are not authorized to update this review")
	}

	if review.Project.Status != models.ProjectStatusClosed {
		return nil, response.NewConflict("cannot update review. Project is not closed")
	}

	if err := s.validator.ValidateRating(rating); err != nil {
		return nil, err
	}
	trimmed, err := s.validator.ValidateText("comment", comment)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{"rating": rating, "comment": trimmed}
	if err := s.db.Model(&models.Review{}).Where("id = ?", reviewID).Updates(updates).Error; err != nil {
		return nil, err
	}

	return s.getResolved(reviewID)
}

// Delete removes a review. Only the project creator may delete, at any
// project status.
func (s *ReviewService) Delete(reviewID uint, actorID uint) error {
	review, err := s.loadWithProject(reviewID)
	if err != nil {
		return err
	}

	if !IsOwner(actorID, review.Project.CreatedBy) {
		return response.NewForbidden("you are not authorized to delete this review")
	}

	return s.db.Delete(&models.Review{}, reviewID).Error
}

// Get returns a review, visible only to the project creator, the reviewed
// user, or an admin.
func (s *ReviewService) Get(reviewID uint, actorID uint, actorRole string) (*models.Review, error) {
	review, err := s.loadWithProject(reviewID)
	if err != nil {
		return nil, err
	}

	isCreator := IsOwner(actorID, review.Project.CreatedBy)
	isReviewed := IsOwner(actorID, review.UserID)
	if !isCreator && !isReviewed && !RoleAllowed(actorRole, models.RoleAdmin) {
		return nil, response.NewForbidden("you are not authorized to view this review")
	}

	return s.getResolved(reviewID)
}

// ListAll returns every review with join data. Admin endpoints only.
func (s *ReviewService) ListAll() ([]models.Review, error) {
	var reviews []models.Review
	err := s.db.
		Preload("User").
		Preload("Project").
		Preload("Project.Creator").
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	for i := range reviews {
		resolveReview(&reviews[i])
	}
	return reviews, nil
}

// ListByUser returns the reviews written about a user, newest first.
func (s *ReviewService) ListByUser(userID uint) ([]models.Review, error) {
	var reviews []models.Review
	err := s.db.
		Preload("Project").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	for i := range reviews {
		resolveReview(&reviews[i])
	}
	return reviews, nil
}

// loadWithProject loads a review and requires its project join to resolve.
func (s *ReviewService) loadWithProject(reviewID uint) (*models.Review, error) {
	var review models.Review
	if err := s.db.Preload("Project").First(&review, reviewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("review not found")
		}
		return nil, err
	}
	if review.Project == nil {
		return nil, response.NewNotFound("project not found")
	}
	return &review, nil
}

func (s *ReviewService) getResolved(reviewID uint) (*models.Review, error) {
	var review models.Review
	err := s.db.
		Preload("User").
		Preload("Project").
		First(&review, reviewID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("review not found")
		}
		return nil, err
	}
	resolveReview(&review)
	return &review, nil
}

func resolveReview(r *models.Review) {
	if r.User != nil {
		r.User.ResolveSkills()
	}
	if r.Project != nil {
		resolveProject(r.Project)
	}
}
