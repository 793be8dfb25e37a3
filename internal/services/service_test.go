package services

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/collabhub/backend/internal/models"
	"github.com/collabhub/backend/internal/taxonomy"
	"github.com/collabhub/backend/pkg/response"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a file-backed sqlite database in a per-test temp dir.
// _txlock=immediate makes write transactions take the database lock up
// front, which keeps the concurrent acceptance tests deterministic.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_txlock=immediate",
		filepath.Join(t.TempDir(), "test.db"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectSkill{},
		&models.ProjectMember{},
		&models.Application{},
		&models.Review{},
		&models.ActivityLog{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func newTestValidator() *Validator {
	return NewValidator(taxonomy.Default())
}

func seedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "irrelevant",
		Role:     models.RoleStudent,
		Bio:      "test bio",
	}
	user.SetSkills([]string{"Python", "Git"})
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to seed user %s: %v", username, err)
	}
	return user
}

func futureDeadline() string {
	return time.Now().Add(72 * time.Hour).Format(time.RFC3339)
}

func testProjectInput(title string) *ProjectInput {
	return &ProjectInput{
		Title:          title,
		Description:    "a test project",
		Domain:         "Web Development",
		Difficulty:     models.DifficultyBeginner,
		RequiredSkills: []string{"JavaScript", "React.js"},
		TeamSize:       3,
		Deadline:       futureDeadline(),
	}
}

// seedProject creates a project through the service so the creator member
// row and skill rows are present.
func seedProject(t *testing.T, svc *ProjectService, creatorID uint, title string) *models.Project {
	t.Helper()

	project, err := svc.Create(testProjectInput(title), creatorID)
	if err != nil {
		t.Fatalf("failed to seed project %s: %v", title, err)
	}
	return project
}

func setProjectStatus(t *testing.T, db *gorm.DB, projectID uint, status string) {
	t.Helper()

	if err := db.Model(&models.Project{}).Where("id = ?", projectID).
		Update("status", status).Error; err != nil {
		t.Fatalf("failed to set project status: %v", err)
	}
}

// appErrCode extracts the application error code (400, 403, 404, 409, ...)
// and fails the test on any other error shape.
func appErrCode(t *testing.T, err error) int {
	t.Helper()

	if err == nil {
		t.Fatal("expected an error, got nil")
	}
	var appErr *response.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("unexpected error type: %T (%v)", err, err)
	}
	return appErr.Code
}
