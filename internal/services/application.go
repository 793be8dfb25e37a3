package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/collabhub/backend/internal/models"
	"github.com/collabhub/backend/pkg/response"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ApplicationService struct {
	db        *gorm.DB
	validator *Validator
}

func NewApplicationService(db *gorm.DB, validator *Validator) *ApplicationService {
	return &ApplicationService{db: db, validator: validator}
}

// terminal target statuses of the application state machine
var applicationTargets = []string{
	models.ApplicationStatusAccepted,
	models.ApplicationStatusRejected,
	models.ApplicationStatusCancelled,
}

// Apply submits an application to join a project. Guards run in a fixed
// order: project exists, applicant is not the creator, not already a member,
// has never applied before (any status), project is open, team not full,
// message non-empty. The unique index on (user_id, project_id) backstops the
// duplicate check under concurrency.
func (s *ApplicationService) Apply(projectID, applicantID uint, message string) (*models.Application, error) {
	var project models.Project
	if err := s.db.Preload("Members").First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("project not found")
		}
		return nil, err
	}

	if IsOwner(applicantID, project.CreatedBy) {
		return nil, response.NewConflict("cannot apply to your own project")
	}

	if project.HasMember(applicantID) {
		return nil, response.NewConflict("you are already a team member of this project")
	}

	var prior int64
	s.db.Model(&models.Application{}).
		Where("user_id = ? AND project_id = ?", applicantID, projectID).
		Count(&prior)
	if prior > 0 {
		return nil, response.NewConflict("you have already applied to this project")
	}

	if project.Status != models.ProjectStatusOpen {
		return nil, response.NewConflict("cannot apply to this project. Project is not open for applications")
	}

	if len(project.Members) >= project.TeamSize {
		return nil, response.NewConflict("project team is already full")
	}

	trimmed, err := s.validator.ValidateText("message", message)
	if err != nil {
		return nil, err
	}

	application := models.Application{
		UserID:    applicantID,
		ProjectID: projectID,
		Status:    models.ApplicationStatusPending,
		Message:   trimmed,
	}
	if err := s.db.Create(&application).Error; err != nil {
		if models.IsDuplicateKey(err) {
			return nil, response.NewConflict("you have already applied to this project")
		}
		return nil, err
	}

	return s.GetByID(application.ID)
}

// SetStatus moves a pending application to a terminal status, exactly once.
// accepted and rejected are creator decisions; cancelled is the applicant's.
// Acceptance adds the applicant to the team inside one transaction that
// re-checks capacity with the project row locked, so two concurrent accepts
// cannot overfill the team.
func (s *ApplicationService) SetStatus(applicationID uint, newStatus string, actorID uint) (*models.Application, error) {
	var application models.Application
	if err := s.db.Preload("Project").First(&application, applicationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("application not found")
		}
		return nil, err
	}

	if application.Project == nil {
		return nil, response.NewNotFound("project not found")
	}

	if !contains(applicationTargets, newStatus) {
		return nil, response.NewBadRequest(fmt.Sprintf("invalid status. Must be one of: %s", strings.Join(applicationTargets, ", ")))
	}

	switch newStatus {
	case models.ApplicationStatusAccepted, models.ApplicationStatusRejected:
		if !IsOwner(actorID, application.Project.CreatedBy) {
			return nil, response.NewForbidden("you are not authorized to update this application status")
		}
	case models.ApplicationStatusCancelled:
		if !IsOwner(actorID, application.UserID) {
			return nil, response.NewForbidden("only the applicant can cancel this application")
		}
	}

	if application.IsTerminal() {
		return nil, response.NewConflict("cannot update application status. Application is not in pending status")
	}

	if newStatus == models.ApplicationStatusAccepted {
		err := s.db.Transaction(func(tx *gorm.DB) error {
			var project models.Project
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&project, application.ProjectID).Error; err != nil {
				return err
			}

			var members int64
			if err := tx.Model(&models.ProjectMember{}).
				Where("project_id = ?", project.ID).
				Count(&members).Error; err != nil {
				return err
			}
			if members >= int64(project.TeamSize) {
				return response.NewConflict("cannot accept application. Project team is already full")
			}

			// Conditional write so a transition that raced us past the
			// pending check above cannot be overwritten.
			res := tx.Model(&models.Application{}).
				Where("id = ? AND status = ?", application.ID, models.ApplicationStatusPending).
				Update("status", models.ApplicationStatusAccepted)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return response.NewConflict("cannot update application status. Application is not in pending status")
			}

			if err := tx.Create(&models.ProjectMember{
				ProjectID: project.ID,
				UserID:    application.UserID,
			}).Error; err != nil {
				if models.IsDuplicateKey(err) {
					return response.NewConflict("applicant is already a team member of this project")
				}
				return err
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	} else {
		res := s.db.Model(&models.Application{}).
			Where("id = ? AND status = ?", application.ID, models.ApplicationStatusPending).
			Update("status", newStatus)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, response.NewConflict("cannot update application status. Application is not in pending status")
		}
	}

	return s.GetByID(application.ID)
}

// GetByID returns an application with applicant and project joins resolved.
func (s *ApplicationService) GetByID(applicationID uint) (*models.Application, error) {
	var application models.Application
	err := s.db.
		Preload("User").
		Preload("Project").
		Preload("Project.Creator").
		First(&application, applicationID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("application not found")
		}
		return nil, err
	}
	resolveApplication(&application)
	return &application, nil
}

// ListAll returns every application with join data. Admin endpoints only.
func (s *ApplicationService) ListAll() ([]models.Application, error) {
	var applications []models.Application
	err := s.db.
		Preload("User").
		Preload("Project").
		Preload("Project.Creator").
		Order("created_at DESC").
		Find(&applications).Error
	if err != nil {
		return nil, err
	}
	for i := range applications {
		resolveApplication(&applications[i])
	}
	return applications, nil
}

// ListByProject returns a project's applications for the detail view.
func (s *ApplicationService) ListByProject(projectID uint) ([]models.Application, error) {
	var applications []models.Application
	err := s.db.
		Preload("User").
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&applications).Error
	if err != nil {
		return nil, err
	}
	for i := range applications {
		resolveApplication(&applications[i])
	}
	return applications, nil
}

// ListByUser returns a user's applications ordered accepted, pending,
// rejected, cancelled, newest first within each group.
func (s *ApplicationService) ListByUser(userID uint) ([]models.Application, error) {
	var applications []models.Application
	err := s.db.
		Preload("Project").
		Where("user_id = ?", userID).
		Order(clause.OrderBy{Expression: clause.Expr{
			SQL: "CASE status WHEN 'accepted' THEN 0 WHEN 'pending' THEN 1 WHEN 'rejected' THEN 2 ELSE 3 END, created_at DESC",
			WithoutParentheses: true,
		}}).
		Find(&applications).Error
	if err != nil {
		return nil, err
	}
	for i := range applications {
		resolveApplication(&applications[i])
	}
	return applications, nil
}

func resolveApplication(a *models.Application) {
	if a.User != nil {
		a.User.ResolveSkills()
	}
	if a.Project != nil {
		resolveProject(a.Project)
	}
}
