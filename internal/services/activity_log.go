package services

import (
	"encoding/json"
	"time"

	"github.com/collabhub/backend/internal/models"
	"github.com/collabhub/backend/pkg/logger"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

var activityDB *gorm.DB

func InitActivityLogger(db *gorm.DB) {
	activityDB = db
}

// LogActivity writes one activity log row. A nil activityDB makes it a no-op
// so middleware can run in tests without a database.
func LogActivity(level, module, action, message string, userID *uint, ip, userAgent, requestID string, extra interface{}) {
	if activityDB == nil {
		return
	}

	var extraStr string
	if extra != nil {
		if b, err := json.Marshal(extra); err == nil {
			extraStr = string(b)
		}
	}

	entry := &models.ActivityLog{
		Level:     level,
		Module:    module,
		Action:    action,
		Message:   message,
		UserID:    userID,
		IP:        ip,
		UserAgent: userAgent,
		RequestID: requestID,
		Extra:     extraStr,
		CreatedAt: time.Now(),
	}
	activityDB.Create(entry)
}

type ActivityLogService struct {
	db        *gorm.DB
	scheduler *cron.Cron
}

func NewActivityLogService(db *gorm.DB) *ActivityLogService {
	return &ActivityLogService{db: db}
}

type ActivityLogListRequest struct {
	Page      int    `form:"page"`
	PageSize  int    `form:"page_size"`
	Level     string `form:"level"`
	Module    string `form:"module"`
	Action    string `form:"action"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	Search    string `form:"search"`
}

type ActivityLogListResponse struct {
	Total    int64                `json:"total"`
	Page     int                  `json:"page"`
	PageSize int                  `json:"page_size"`
	Items    []models.ActivityLog `json:"items"`
}

func (s *ActivityLogService) List(req *ActivityLogListRequest) (*ActivityLogListResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 || req.PageSize > 100 {
		req.PageSize = 20
	}

	var logs []models.ActivityLog
	var total int64

	query := s.db.Model(&models.ActivityLog{})

	if req.Level != "" {
		query = query.Where("level = ?", req.Level)
	}
	if req.Module != "" {
		query = query.Where("module = ?", req.Module)
	}
	if req.Action != "" {
		query = query.Where("action LIKE ?", "%"+req.Action+"%")
	}
	if req.StartDate != "" {
		query = query.Where("created_at >= ?", req.StartDate)
	}
	if req.EndDate != "" {
		query = query.Where("created_at <= ?", req.EndDate+" 23:59:59")
	}
	if req.Search != "" {
		query = query.Where("message LIKE ?", "%"+req.Search+"%")
	}

	query.Count(&total)

	offset := (req.Page - 1) * req.PageSize
	if err := query.Offset(offset).Limit(req.PageSize).Order("created_at DESC").Find(&logs).Error; err != nil {
		return nil, err
	}

	return &ActivityLogListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    logs,
	}, nil
}

func (s *ActivityLogService) GetModules() ([]string, error) {
	var modules []string
	if err := s.db.Model(&models.ActivityLog{}).Distinct("module").Pluck("module", &modules).Error; err != nil {
		return nil, err
	}
	return modules, nil
}

// CleanupOldLogs deletes logs older than retentionDays and returns the
// number of deleted rows.
func (s *ActivityLogService) CleanupOldLogs(retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	result := s.db.Where("created_at < ?", cutoff).Delete(&models.ActivityLog{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// StartCleanupScheduler runs a daily cleanup of logs older than retentionDays.
// Cleanup also runs once immediately.
func (s *ActivityLogService) StartCleanupScheduler(retentionDays int) error {
	if retentionDays <= 0 {
		logger.Info().Msg("activity log cleanup disabled (retention_days <= 0)")
		return nil
	}

	s.runCleanup(retentionDays)

	s.scheduler = cron.New()
	if _, err := s.scheduler.AddFunc("30 3 * * *", func() {
		s.runCleanup(retentionDays)
	}); err != nil {
		return err
	}
	s.scheduler.Start()

	logger.Info().Int("retention_days", retentionDays).Msg("activity log cleanup scheduled")
	return nil
}

// StopCleanupScheduler stops the cron scheduler if running.
func (s *ActivityLogService) StopCleanupScheduler() {
	if s.scheduler != nil {
		s.scheduler.Stop()
		s.scheduler = nil
	}
}

func (s *ActivityLogService) runCleanup(retentionDays int) {
	deleted, err := s.CleanupOldLogs(retentionDays)
	if err != nil {
		logger.Error().Err(err).Msg("activity log cleanup failed")
		return
	}
	if deleted > 0 {
		logger.Info().Int64("deleted", deleted).Int("retention_days", retentionDays).Msg("activity logs cleaned up")
	}
}
