package model

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// ── 出勤状态 ──

// AttendanceStatus 出勤状态，仅有 present / late / absent 三种取值
// 零值表示未知状态，不参与统计
type AttendanceStatus uint8

const (
	AttendancePresent AttendanceStatus = iota + 1
	AttendanceLate
	AttendanceAbsent
)

const attendanceUnknownLabel = "unknown"

var attendanceStatusLabels = map[AttendanceStatus]string{
	AttendancePresent: "present",
	AttendanceLate:    "late",
	AttendanceAbsent:  "absent",
}

// AttendanceStatuses 全部合法状态（按展示顺序）
var AttendanceStatuses = []AttendanceStatus{AttendancePresent, AttendanceLate, AttendanceAbsent}

// ParseAttendanceStatus 将线上传输的字符串解析为状态，大小写敏感
func ParseAttendanceStatus(s string) (AttendanceStatus, error) {
	for st, label := range attendanceStatusLabels {
		if label == s {
			return st, nil
		}
	}
	return 0, fmt.Errorf("未知的出勤状态 %q", s)
}

// Valid 是否为三种合法状态之一
func (s AttendanceStatus) Valid() bool {
	_, ok := attendanceStatusLabels[s]
	return ok
}

func (s AttendanceStatus) String() string {
	if label, ok := attendanceStatusLabels[s]; ok {
		return label
	}
	return attendanceUnknownLabel
}

// MarshalText 实现 encoding.TextMarshaler（JSON 输出为字符串）
func (s AttendanceStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler，拒绝未知取值
func (s *AttendanceStatus) UnmarshalText(b []byte) error {
	st, err := ParseAttendanceStatus(string(b))
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// Value 实现 driver.Valuer
func (s AttendanceStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("AttendanceStatus.Value: invalid status %d", s)
	}
	return s.String(), nil
}

// Scan 实现 sql.Scanner；库中出现未知字符串时置为零值而非报错
func (s *AttendanceStatus) Scan(src interface{}) error {
	var raw string
	switch v := src.(type) {
	case nil:
		*s = 0
		return nil
	case []byte:
		raw = string(v)
	case string:
		raw = v
	default:
		return fmt.Errorf("AttendanceStatus.Scan: unsupported type %T", src)
	}
	st, err := ParseAttendanceStatus(raw)
	if err != nil {
		*s = 0
		return nil
	}
	*s = st
	return nil
}

// ── 出勤记录 ──

// AttendanceRecord 出勤记录表，对应 attendance_records
// (schedule_id, user_id) 唯一；标题与日期为写入时的日程快照，日程后续修改不回写
type AttendanceRecord struct {
	AttendanceID  string           `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"attendance_id"`
	ScheduleID    string           `gorm:"type:uuid;not null"                             json:"schedule_id"`
	StudyID       string           `gorm:"type:uuid;not null"                             json:"study_id"` // 冗余快照
	UserID        string           `gorm:"type:uuid;not null"                             json:"user_id"`
	Status        AttendanceStatus `gorm:"type:varchar(10);not null"                      json:"status"`
	ScheduleTitle string           `gorm:"type:varchar(200);not null"                     json:"schedule_title"` // 冗余快照
	ScheduleDate  time.Time        `gorm:"type:date;not null"                             json:"schedule_date"`  // 冗余快照
	BaseModel
}

// TableName 指定表名
func (AttendanceRecord) TableName() string { return "attendance_records" }

// ── 派生统计（不落库） ──

// AttendanceSummary 各状态计数
type AttendanceSummary struct {
	Present int `json:"present"`
	Late    int `json:"late"`
	Absent  int `json:"absent"`
}

// Total 三种状态合计
func (s AttendanceSummary) Total() int {
	return s.Present + s.Late + s.Absent
}
