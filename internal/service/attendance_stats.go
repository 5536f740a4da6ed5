package service

import (
	"math"

	"studyhub/internal/model"
)

// Summarize 按状态计数；未知状态忽略
func Summarize(records []model.AttendanceRecord) model.AttendanceSummary {
	var s model.AttendanceSummary
	for i := range records {
		switch records[i].Status {
		case model.AttendancePresent:
			s.Present++
		case model.AttendanceLate:
			s.Late++
		case model.AttendanceAbsent:
			s.Absent++
		}
	}
	return s
}

// WeightedPercent 出勤率：出席计 1，迟到计 0.5，缺席计 0，保留一位小数
func WeightedPercent(s model.AttendanceSummary) float64 {
	total := s.Total()
	if total == 0 {
		return 0
	}
	credit := float64(s.Present) + 0.5*float64(s.Late)
	return math.Round(credit/float64(total)*1000) / 10
}
