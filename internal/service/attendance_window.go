package service

import (
	"time"

	"studyhub/internal/model"
)

// ── 签到时间窗口 ──────────────────────────────────────────────
//
// 日程只保存「日期 + HH:MM」，需要在部署时区内拼成绝对时刻：
//   - end_date 为空时取 start_date
//   - 结束时刻早于开始时刻视为跨零点，结束时刻 +24h
//   - 可签到窗口为 [开始-grace, 结束+grace]，两端闭区间
//   - 日期或时间无法解析时一律视为不可签到
// ─────────────────────────────────────────────────────────────

var clockLayouts = []string{"15:04", "15:04:05"}

// CheckInWindow 签到窗口判定器，无状态，可并发使用
type CheckInWindow struct {
	loc   *time.Location
	grace time.Duration
}

// NewCheckInWindow 创建判定器；loc 为 nil 时使用 time.Local
func NewCheckInWindow(loc *time.Location, grace time.Duration) *CheckInWindow {
	if loc == nil {
		loc = time.Local
	}
	return &CheckInWindow{loc: loc, grace: grace}
}

// Location 部署时区
func (w *CheckInWindow) Location() *time.Location {
	return w.loc
}

// SessionBounds 计算日程的开始/结束时刻（已处理跨零点），ok=false 表示无法解析
func (w *CheckInWindow) SessionBounds(s *model.Schedule) (start, end time.Time, ok bool) {
	if s == nil {
		return time.Time{}, time.Time{}, false
	}

	endDate := s.StartDate
	if s.EndDate != nil && !s.EndDate.IsZero() {
		endDate = *s.EndDate
	}

	start, ok = w.combine(s.StartDate, s.StartTime)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	end, ok = w.combine(endDate, s.EndTime)
	if !ok {
		return time.Time{}, time.Time{}, false
	}

	if end.Before(start) {
		end = end.Add(24 * time.Hour)
	}
	return start, end, true
}

// Eligible now 是否落在签到窗口内
func (w *CheckInWindow) Eligible(s *model.Schedule, now time.Time) bool {
	start, end, ok := w.SessionBounds(s)
	if !ok {
		return false
	}
	open := start.Add(-w.grace)
	closeAt := end.Add(w.grace)
	return !now.Before(open) && !now.After(closeAt)
}

// Ended 日程是否已结束（不含宽限）；无法解析的日程视为已结束
func (w *CheckInWindow) Ended(s *model.Schedule, now time.Time) bool {
	_, end, ok := w.SessionBounds(s)
	if !ok {
		return true
	}
	return end.Before(now)
}

// combine 取 date 的年月日与 clock 的时分秒，在部署时区内拼成时刻
func (w *CheckInWindow) combine(date time.Time, clock string) (time.Time, bool) {
	if date.IsZero() {
		return time.Time{}, false
	}
	tod, ok := parseClock(clock)
	if !ok {
		return time.Time{}, false
	}
	y, m, d := date.Date()
	return time.Date(y, m, d, tod.Hour(), tod.Minute(), tod.Second(), 0, w.loc), true
}

func parseClock(clock string) (time.Time, bool) {
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, clock); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
