package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoData       = errors.New("暂无可导出的出勤数据")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 数据全部来自 AttendanceReportService，导出与接口返回的口径一致
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportMonthlyRanking 导出月度出勤排行
	ExportMonthlyRanking(ctx context.Context, month string) (*bytes.Buffer, string, error)
	// ExportStudyAttendance 导出小组成员出勤明细
	ExportStudyAttendance(ctx context.Context, studyID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	report AttendanceReportService
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(report AttendanceReportService, logger *zap.Logger) ExportService {
	return &exportService{report: report, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportMonthlyRanking 导出月度排行
// ═══════════════════════════════════════════════════════════
//
// 表头: | 名次 | 小组 | 出席 | 迟到 | 缺席 | 总计 | 出勤率(%) |

func (s *exportService) ExportMonthlyRanking(ctx context.Context, month string) (*bytes.Buffer, string, error) {
	ranking, err := s.report.MonthlyRanking(ctx, month)
	if err != nil {
		return nil, "", err
	}
	if len(ranking.Rankings) == 0 {
		return nil, "", ErrExportNoData
	}

	headers := []string{"名次", "小组", "出席", "迟到", "缺席", "总计", "出勤率(%)"}
	rows := make([][]interface{}, 0, len(ranking.Rankings))
	for _, e := range ranking.Rankings {
		rows = append(rows, []interface{}{
			e.Rank, e.StudyTitle,
			e.Summary.Present, e.Summary.Late, e.Summary.Absent,
			e.Total, e.Percent,
		})
	}

	title := fmt.Sprintf("%s 出勤排行", ranking.Month)
	buf, err := s.writeSheet("出勤排行", title, headers, rows)
	if err != nil {
		return nil, "", err
	}
	return buf, fmt.Sprintf("出勤排行_%s.xlsx", ranking.Month), nil
}

// ═══════════════════════════════════════════════════════════
// ExportStudyAttendance 导出小组成员出勤
// ═══════════════════════════════════════════════════════════
//
// 表头: | 成员 | 状态 | 出席 | 迟到 | 缺席 | 总计 | 出勤率(%) |
// 零记录成员与已退出成员同样导出

func (s *exportService) ExportStudyAttendance(ctx context.Context, studyID string) (*bytes.Buffer, string, error) {
	members, err := s.report.StudyMembersAttendance(ctx, studyID)
	if err != nil {
		return nil, "", err
	}
	if len(members.Members) == 0 {
		return nil, "", ErrExportNoData
	}

	headers := []string{"成员", "状态", "出席", "迟到", "缺席", "总计", "出勤率(%)"}
	rows := make([][]interface{}, 0, len(members.Members))
	for _, m := range members.Members {
		state := "在组"
		if m.Departed {
			state = "已退出"
		}
		rows = append(rows, []interface{}{
			m.Username, state,
			m.Summary.Present, m.Summary.Late, m.Summary.Absent,
			m.Total, m.Percent,
		})
	}

	buf, err := s.writeSheet("成员出勤", "小组成员出勤", headers, rows)
	if err != nil {
		return nil, "", err
	}
	return buf, fmt.Sprintf("小组出勤_%s.xlsx", studyID), nil
}

// writeSheet 生成单 Sheet 表格：第 1 行标题，第 2 行表头，其后为数据
func (s *exportService) writeSheet(sheetName, title string, headers []string, rows [][]interface{}) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	// 删除默认 Sheet1
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 10)
	f.SetColWidth(sheetName, "B", "B", 24)
	f.SetColWidth(sheetName, colName(2), colName(len(headers)-1), 12)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", title)
	f.MergeCell(sheetName, "A1", cell(colName(len(headers)-1), 1))
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	for i, h := range headers {
		f.SetCellValue(sheetName, cell(colName(i), 2), h)
	}
	f.SetCellStyle(sheetName, "A2", cell(colName(len(headers)-1), 2), headerStyle)

	// 数据行
	for r, values := range rows {
		for i, v := range values {
			f.SetCellValue(sheetName, cell(colName(i), r+3), v)
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, ErrExportGenerateFail
	}
	return buf, nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
