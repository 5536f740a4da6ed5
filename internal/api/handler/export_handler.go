package handler

import (
	"bytes"
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"studyhub/internal/service"
	"studyhub/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportMonthlyRanking 导出月度出勤排行
// GET /api/v1/export/attendance/ranking/:month
func (h *ExportHandler) ExportMonthlyRanking(c *gin.Context) {
	buf, filename, err := h.exportSvc.ExportMonthlyRanking(c.Request.Context(), c.Param("month"))
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	writeXLSX(c, buf, filename)
}

// ExportStudyAttendance 导出小组成员出勤
// GET /api/v1/export/attendance/study/:studyId
func (h *ExportHandler) ExportStudyAttendance(c *gin.Context) {
	studyID, ok := mustPathUUID(c, "studyId")
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportStudyAttendance(c.Request.Context(), studyID)
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	writeXLSX(c, buf, filename)
}

// writeXLSX 设置下载响应头并写出文件
func writeXLSX(c *gin.Context, buf *bytes.Buffer, filename string) {
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidMonth):
		response.BadRequest(c, 17005, service.ErrInvalidMonth.Error())
	case errors.Is(err, service.ErrExportNoData):
		response.NotFound(c, 17101, "暂无可导出的出勤数据")
	default:
		internalError(c, err)
	}
}
