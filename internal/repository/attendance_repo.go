package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"studyhub/internal/model"
)

// AttendanceRepository 出勤记录数据访问接口
type AttendanceRepository interface {
	// Upsert 按 (schedule_id, user_id) 写入：已存在时只覆盖 status，快照字段保持首次写入值
	Upsert(ctx context.Context, rec *model.AttendanceRecord) (*model.AttendanceRecord, error)
	ListByUser(ctx context.Context, userID string) ([]model.AttendanceRecord, error)
	ListByStudy(ctx context.Context, studyID string) ([]model.AttendanceRecord, error)
	ListBySchedule(ctx context.Context, scheduleID string) ([]model.AttendanceRecord, error)
	// ListByScheduleIDs 一次取回多个日程的记录，排序同 ListBySchedule
	ListByScheduleIDs(ctx context.Context, scheduleIDs []string) ([]model.AttendanceRecord, error)
	// ListByDateRange 快照日期落在 [from, to) 内的记录
	ListByDateRange(ctx context.Context, from, to time.Time) ([]model.AttendanceRecord, error)
}

type attendanceRepo struct {
	db *gorm.DB
}

// NewAttendanceRepo 创建 AttendanceRepository 实例
func NewAttendanceRepo(db *gorm.DB) AttendanceRepository {
	return &attendanceRepo{db: db}
}

// 列表统一按日程日期倒序，同日按写入时间倒序
const attendanceNewestFirst = "schedule_date DESC, created_at DESC"

func (r *attendanceRepo) Upsert(ctx context.Context, rec *model.AttendanceRecord) (*model.AttendanceRecord, error) {
	// 依赖唯一约束 uq_attendance_schedule_user：并发的首次签到在库内转为更新，后写者生效
	err := r.db.WithContext(ctx).
		Clauses(
			clause.OnConflict{
				Columns:   []clause.Column{{Name: "schedule_id"}, {Name: "user_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
			},
			clause.Returning{},
		).
		Create(rec).Error
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *attendanceRepo) ListByUser(ctx context.Context, userID string) ([]model.AttendanceRecord, error) {
	var records []model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order(attendanceNewestFirst).
		Find(&records).Error
	return records, err
}

func (r *attendanceRepo) ListByStudy(ctx context.Context, studyID string) ([]model.AttendanceRecord, error) {
	var records []model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("study_id = ?", studyID).
		Order(attendanceNewestFirst).
		Find(&records).Error
	return records, err
}

func (r *attendanceRepo) ListBySchedule(ctx context.Context, scheduleID string) ([]model.AttendanceRecord, error) {
	var records []model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("schedule_id = ?", scheduleID).
		Order("created_at ASC").
		Find(&records).Error
	return records, err
}

func (r *attendanceRepo) ListByScheduleIDs(ctx context.Context, scheduleIDs []string) ([]model.AttendanceRecord, error) {
	var records []model.AttendanceRecord
	if len(scheduleIDs) == 0 {
		return records, nil
	}
	err := r.db.WithContext(ctx).
		Where("schedule_id IN ?", scheduleIDs).
		Order("created_at ASC").
		Find(&records).Error
	return records, err
}

func (r *attendanceRepo) ListByDateRange(ctx context.Context, from, to time.Time) ([]model.AttendanceRecord, error) {
	var records []model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("schedule_date >= ? AND schedule_date < ?", from.Format(time.DateOnly), to.Format(time.DateOnly)).
		Order(attendanceNewestFirst).
		Find(&records).Error
	return records, err
}
