package dto

import "studyhub/internal/model"

// ── 出勤模块请求 ──

// CheckInRequest 签到请求
// 必填项由 Service 层按顺序校验，以便区分「缺字段」与其他错误
type CheckInRequest struct {
	ScheduleID string `json:"schedule_id" binding:"omitempty,uuid"`
	UserID     string `json:"user_id"     binding:"omitempty,uuid"`
	Status     string `json:"status"`
	CheckerID  string `json:"checker_id"  binding:"omitempty,uuid"` // 无登录态时的兜底身份
}

// RankingQuery 排名查询参数
type RankingQuery struct {
	Month string `form:"month"` // YYYY-MM，缺省为当月
}

// ── 出勤模块响应 ──

// AttendanceRecordResponse 单条出勤记录
type AttendanceRecordResponse struct {
	ID            string                 `json:"id"`
	ScheduleID    string                 `json:"schedule_id"`
	StudyID       string                 `json:"study_id"`
	UserID        string                 `json:"user_id"`
	Status        model.AttendanceStatus `json:"status"`
	ScheduleTitle string                 `json:"schedule_title"`
	ScheduleDate  string                 `json:"schedule_date"` // YYYY-MM-DD
	UpdatedAt     string                 `json:"updated_at"`
}

// UserAttendanceResponse 个人出勤详情
type UserAttendanceResponse struct {
	UserID  string                     `json:"user_id"`
	Total   int                        `json:"total"`
	Summary model.AttendanceSummary    `json:"summary"`
	Percent float64                    `json:"percent"`
	Records []AttendanceRecordResponse `json:"records"`
}

// MemberAttendance 成员出勤概况
type MemberAttendance struct {
	UserID   string                  `json:"user_id"`
	Username string                  `json:"username"`
	Departed bool                    `json:"departed,omitempty"` // 已不在成员名单中
	Total    int                     `json:"total"`
	Summary  model.AttendanceSummary `json:"summary"`
	Percent  float64                 `json:"percent"`
}

// StudyAttendanceResponse 小组出勤详情
type StudyAttendanceResponse struct {
	StudyID string                  `json:"study_id"`
	Total   int                     `json:"total"`
	Summary model.AttendanceSummary `json:"summary"`
	Percent float64                 `json:"percent"`
	Members []MemberAttendance      `json:"members"`
}

// StudyMembersAttendanceResponse 小组成员出勤列表（含零记录成员与已退出成员）
type StudyMembersAttendanceResponse struct {
	StudyID string             `json:"study_id"`
	Members []MemberAttendance `json:"members"`
}

// HostScheduleResponse 主持人日程条目
// 未结束的日程带 can_check_in；已结束的日程带出勤统计
type HostScheduleResponse struct {
	ScheduleID string                   `json:"schedule_id"`
	StudyID    string                   `json:"study_id"`
	StudyTitle string                   `json:"study_title,omitempty"`
	Title      string                   `json:"title"`
	StartDate  string                   `json:"start_date"`
	EndDate    string                   `json:"end_date"`
	StartTime  string                   `json:"start_time"`
	EndTime    string                   `json:"end_time"`
	IsPast     bool                     `json:"is_past"`
	CanCheckIn bool                     `json:"can_check_in"`
	Summary    *model.AttendanceSummary `json:"summary,omitempty"`
	Percent    *float64                 `json:"percent,omitempty"`
}

// ScheduleAttendanceResponse 单次日程的签到名册
type ScheduleAttendanceResponse struct {
	ScheduleID string                     `json:"schedule_id"`
	StudyID    string                     `json:"study_id"`
	Title      string                     `json:"title"`
	CanCheckIn bool                       `json:"can_check_in"`
	Total      int                        `json:"total"`
	Summary    model.AttendanceSummary    `json:"summary"`
	Percent    float64                    `json:"percent"`
	Records    []ScheduleAttendeeResponse `json:"records"`
}

// ScheduleAttendeeResponse 名册中的单个成员
type ScheduleAttendeeResponse struct {
	UserID    string                 `json:"user_id"`
	Username  string                 `json:"username"`
	Status    model.AttendanceStatus `json:"status"`
	UpdatedAt string                 `json:"updated_at"`
}

// RankingEntry 月度排行条目
type RankingEntry struct {
	Rank       int                     `json:"rank"`
	StudyID    string                  `json:"study_id"`
	StudyTitle string                  `json:"study_title"`
	Total      int                     `json:"total"`
	Summary    model.AttendanceSummary `json:"summary"`
	Percent    float64                 `json:"percent"`
}

// MonthlyRankingResponse 月度排行
type MonthlyRankingResponse struct {
	Month    string         `json:"month"`
	Rankings []RankingEntry `json:"rankings"`
}

// StudyRankResponse 小组在月度排行中的名次
type StudyRankResponse struct {
	StudyID    string  `json:"study_id"`
	Month      string  `json:"month"`
	Rank       int     `json:"rank"`
	TotalRanks int     `json:"total_studies"`
	Percent    float64 `json:"percent"`
}
