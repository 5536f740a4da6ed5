package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"studyhub/internal/dto"
	"studyhub/internal/model"
	"studyhub/internal/repository"
)

// ── 出勤模块业务错误 ──

var (
	ErrAttendanceMissingField  = errors.New("schedule_id、user_id、status 均不能为空")
	ErrAttendanceInvalidStatus = errors.New("出勤状态只能是 present、late、absent")
	ErrScheduleNotFound        = errors.New("日程不存在")
	ErrCheckerUnknown          = errors.New("无法确认签到人身份")
	ErrNotScheduleHost         = errors.New("只有日程主持人可以签到")
	ErrOutsideCheckInWindow    = errors.New("当前不在签到时间内")
)

// AttendanceService 签到业务接口
type AttendanceService interface {
	// CheckIn 主持人为某成员记录一次出勤；checkerID 为已解析的签到人身份，可为空
	CheckIn(ctx context.Context, req *dto.CheckInRequest, checkerID string) (*dto.AttendanceRecordResponse, error)
}

type attendanceService struct {
	repo   *repository.Repository
	window *CheckInWindow
	cache  RankingCache
	logger *zap.Logger
	now    func() time.Time
}

// NewAttendanceService 创建 AttendanceService 实例；cache 可为 nil
func NewAttendanceService(repo *repository.Repository, window *CheckInWindow, cache RankingCache, logger *zap.Logger) AttendanceService {
	return &attendanceService{
		repo:   repo,
		window: window,
		cache:  cache,
		logger: logger,
		now:    time.Now,
	}
}

// ────────────────────── CheckIn ──────────────────────

func (s *attendanceService) CheckIn(ctx context.Context, req *dto.CheckInRequest, checkerID string) (*dto.AttendanceRecordResponse, error) {
	// 1. 必填项与状态取值
	if req.ScheduleID == "" || req.UserID == "" || req.Status == "" {
		return nil, ErrAttendanceMissingField
	}
	status, err := model.ParseAttendanceStatus(req.Status)
	if err != nil {
		return nil, ErrAttendanceInvalidStatus
	}

	// 2. 日程存在
	schedule, err := s.repo.Schedule.GetByID(ctx, req.ScheduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		s.logger.Error("查询日程失败", zap.String("schedule_id", req.ScheduleID), zap.Error(err))
		return nil, err
	}

	// 3. 签到人身份
	if checkerID == "" {
		return nil, ErrCheckerUnknown
	}

	// 4. 仅主持人可签到
	if checkerID != schedule.CreatedBy {
		s.logger.Warn("非主持人尝试签到",
			zap.String("schedule_id", schedule.ScheduleID),
			zap.String("checker_id", checkerID),
		)
		return nil, ErrNotScheduleHost
	}

	// 5. 签到时间窗口
	if !s.window.Eligible(schedule, s.now()) {
		return nil, ErrOutsideCheckInWindow
	}

	rec, err := s.repo.Attendance.Upsert(ctx, &model.AttendanceRecord{
		ScheduleID:    schedule.ScheduleID,
		StudyID:       schedule.StudyID,
		UserID:        req.UserID,
		Status:        status,
		ScheduleTitle: schedule.Title,
		ScheduleDate:  dateOnly(schedule.StartDate),
	})
	if err != nil {
		s.logger.Error("写入出勤记录失败",
			zap.String("schedule_id", schedule.ScheduleID),
			zap.String("user_id", req.UserID),
			zap.Error(err),
		)
		return nil, err
	}

	s.invalidateRanking(ctx, rec.ScheduleDate)

	s.logger.Info("签到成功",
		zap.String("schedule_id", rec.ScheduleID),
		zap.String("user_id", rec.UserID),
		zap.Stringer("status", rec.Status),
	)

	resp := toAttendanceRecordResponse(rec)
	return &resp, nil
}

// invalidateRanking 自增受影响月份的排行代数，使旧缓存不再可读；失败只记日志
func (s *attendanceService) invalidateRanking(ctx context.Context, scheduleDate time.Time) {
	if s.cache == nil {
		return
	}
	key := rankingGenKey(scheduleDate.Format(monthLayout))
	if _, err := s.cache.Incr(ctx, key); err != nil {
		s.logger.Warn("更新排行缓存代数失败", zap.String("key", key), zap.Error(err))
	}
}

// ── 内部辅助方法 ──

// dateOnly 截取年月日，统一存为 UTC 零点，与 PostgreSQL date 列一致
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func toAttendanceRecordResponse(rec *model.AttendanceRecord) dto.AttendanceRecordResponse {
	return dto.AttendanceRecordResponse{
		ID:            rec.AttendanceID,
		ScheduleID:    rec.ScheduleID,
		StudyID:       rec.StudyID,
		UserID:        rec.UserID,
		Status:        rec.Status,
		ScheduleTitle: rec.ScheduleTitle,
		ScheduleDate:  rec.ScheduleDate.Format(time.DateOnly),
		UpdatedAt:     rec.UpdatedAt.Format(time.RFC3339),
	}
}
