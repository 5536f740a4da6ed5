package service

import (
	"context"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"studyhub/internal/repository"
)

// ── 主持日程 ICS 订阅 ──────────────────────────────────────────
//
// 职责：把某用户主持的全部日程导出为 iCalendar (RFC 5545)，
// 供手机日历订阅。跨零点日程按修正后的结束时刻输出，
// 无法解析时间的日程直接跳过。
// ─────────────────────────────────────────────────────────────

const icsProductID = "-//studyhub//attendance//ZH"

// CalendarService 日历导出业务接口
type CalendarService interface {
	HostCalendar(ctx context.Context, userID string) (string, error)
}

type calendarService struct {
	repo   *repository.Repository
	window *CheckInWindow
	logger *zap.Logger
	now    func() time.Time
}

// NewCalendarService 创建 CalendarService 实例
func NewCalendarService(repo *repository.Repository, window *CheckInWindow, logger *zap.Logger) CalendarService {
	return &calendarService{repo: repo, window: window, logger: logger, now: time.Now}
}

func (s *calendarService) HostCalendar(ctx context.Context, userID string) (string, error) {
	schedules, err := s.repo.Schedule.ListByCreator(ctx, userID)
	if err != nil {
		s.logger.Error("查询主持日程失败", zap.String("user_id", userID), zap.Error(err))
		return "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(icsProductID)

	stamp := s.now().UTC()
	skipped := 0
	for i := range schedules {
		sch := &schedules[i]
		start, end, ok := s.window.SessionBounds(sch)
		if !ok {
			skipped++
			continue
		}

		event := cal.AddEvent(fmt.Sprintf("%s@studyhub", sch.ScheduleID))
		event.SetDtStampTime(stamp)
		event.SetStartAt(start)
		event.SetEndAt(end)
		event.SetSummary(sch.Title)
		if sch.Study != nil {
			event.SetDescription(sch.Study.Title)
		}
	}

	if skipped > 0 {
		s.logger.Warn("部分日程时间无法解析，已跳过", zap.String("user_id", userID), zap.Int("skipped", skipped))
	}

	return cal.Serialize(), nil
}
