package services

import (
	"errors"
	"time"

	"github.com/collabhub/backend/internal/config"
	"github.com/collabhub/backend/internal/models"
	"github.com/collabhub/backend/internal/utils"
	"github.com/collabhub/backend/pkg/logger"
	"github.com/collabhub/backend/pkg/response"
	"gorm.io/gorm"
)

type UserService struct {
	db           *gorm.DB
	validator    *Validator
	jwtConfig    *config.JWTConfig
	applications *ApplicationService
	reviews      *ReviewService
}

func NewUserService(db *gorm.DB, validator *Validator, jwtCfg *config.JWTConfig,
	applications *ApplicationService, reviews *ReviewService) *UserService {
	return &UserService{
		db:           db,
		validator:    validator,
		jwtConfig:    jwtCfg,
		applications: applications,
		reviews:      reviews,
	}
}

// Register creates a student account. Email and username are unique; the
// skill list is normalized to canonical taxonomy case.
func (s *UserService) Register(in *RegisterInput) (*models.User, error) {
	fields, err := s.validator.ValidateRegistration(in)
	if err != nil {
		return nil, err
	}

	var count int64
	s.db.Model(&models.User{}).Where("email = ?", fields.Email).Count(&count)
	if count > 0 {
		return nil, response.NewConflict("user with this email already exists")
	}
	s.db.Model(&models.User{}).Where("username = ?", fields.Username).Count(&count)
	if count > 0 {
		return nil, response.NewConflict("username already taken")
	}

	hash, err := utils.HashPassword(fields.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username:     fields.Username,
		Email:        fields.Email,
		Password:     hash,
		Role:         models.RoleStudent,
		Bio:          fields.Bio,
		GithubLink:   fields.GithubLink,
		LinkedinLink: fields.LinkedinLink,
		EmailLink:    fields.EmailLink,
	}
	user.SetSkills(fields.Skills)

	if err := s.db.Create(&user).Error; err != nil {
		if models.IsDuplicateKey(err) {
			return nil, response.NewConflict("user with this email or username already exists")
		}
		return nil, err
	}

	user.ResolveSkills()
	return &user, nil
}

type LoginResult struct {
	Token    string       `json:"token"`
	User     *models.User `json:"user"`
	ExpireAt time.Time    `json:"expire_at"`
}

// Login authenticates by email and password and issues a JWT.
func (s *UserService) Login(email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, response.NewBadRequest("email and password are required")
	}

	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewUnauthorized("invalid email or password")
		}
		return nil, err
	}

	if !utils.CheckPassword(password, user.Password) {
		return nil, response.NewUnauthorized("invalid email or password")
	}

	token, err := utils.GenerateToken(user.ID, user.Username, user.Role, s.jwtConfig.ExpireHour)
	if err != nil {
		return nil, err
	}

	user.ResolveSkills()
	return &LoginResult{
		Token:    token,
		User:     &user,
		ExpireAt: time.Now().Add(time.Duration(s.jwtConfig.ExpireHour) * time.Hour),
	}, nil
}

// ProjectHistoryEntry is one project a user belongs to, in profile views.
type ProjectHistoryEntry struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	TeamSize  int       `json:"team_size"`
	Status    string    `json:"status"`
	Deadline  time.Time `json:"deadline"`
	CreatedBy uint      `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

type Profile struct {
	User            *models.User          `json:"user"`
	ProjectsHistory []ProjectHistoryEntry `json:"projects_history"`
	Applications    []models.Application  `json:"applications"`
	Reviews         []models.Review       `json:"reviews"`
}

// GetProfile assembles a user's own profile: account data, every project
// they are a member of, their applications and the reviews about them.
func (s *UserService) GetProfile(userID uint) (*Profile, error) {
	user, err := s.GetByID(userID)
	if err != nil {
		return nil, err
	}

	history, err := s.projectHistory(userID)
	if err != nil {
		return nil, err
	}

	applications, err := s.applications.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	reviews, err := s.reviews.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	return &Profile{
		User:            user,
		ProjectsHistory: history,
		Applications:    applications,
		Reviews:         reviews,
	}, nil
}

// GetStudentProfile returns another student's public profile.
func (s *UserService) GetStudentProfile(userID uint) (*Profile, error) {
	user, err := s.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user.Role != models.RoleStudent {
		return nil, response.NewNotFound("student not found")
	}

	history, err := s.projectHistory(userID)
	if err != nil {
		return nil, err
	}

	reviews, err := s.reviews.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	return &Profile{
		User:            user,
		ProjectsHistory: history,
		Reviews:         reviews,
	}, nil
}

// GetByID returns a user with skills resolved.
func (s *UserService) GetByID(userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("user not found")
		}
		return nil, err
	}
	user.ResolveSkills()
	return &user, nil
}

func (s *UserService) projectHistory(userID uint) ([]ProjectHistoryEntry, error) {
	var projects []models.Project
	err := s.db.
		Joins("JOIN project_members pm ON pm.project_id = projects.id").
		Where("pm.user_id = ?", userID).
		Order("projects.created_at DESC").
		Find(&projects).Error
	if err != nil {
		return nil, err
	}

	history := make([]ProjectHistoryEntry, 0, len(projects))
	for _, p := range projects {
		history = append(history, ProjectHistoryEntry{
			ID:        p.ID,
			Title:     p.Title,
			TeamSize:  p.TeamSize,
			Status:    p.Status,
			Deadline:  p.Deadline,
			CreatedBy: p.CreatedBy,
			CreatedAt: p.CreatedAt,
		})
	}
	return history, nil
}

// CreateAdminIfNotExists seeds the default admin account at startup.
func (s *UserService) CreateAdminIfNotExists(cfg *config.AdminConfig) error {
	var count int64
	s.db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count)
	if count > 0 {
		return nil
	}

	hash, err := utils.HashPassword(cfg.Password)
	if err != nil {
		return err
	}

	admin := models.User{
		Username: cfg.Username,
		Email:    cfg.Email,
		Password: hash,
		Role:     models.RoleAdmin,
	}
	if err := s.db.Create(&admin).Error; err != nil {
		return err
	}

	logger.Info().Str("username", cfg.Username).Msg("default admin account created")
	return nil
}
