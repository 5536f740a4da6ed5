package model

import "time"

// Study 学习小组表，对应 studies
type Study struct {
	StudyID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"study_id"`
	Title   string `gorm:"type:varchar(100);not null"                     json:"title"`
	HostID  string `gorm:"type:uuid;not null"                             json:"host_id"`
	BaseModel

	// 关联
	Members []StudyMember `gorm:"foreignKey:StudyID;references:StudyID" json:"members,omitempty"`
}

func (Study) TableName() string { return "studies" }

// StudyMember 小组成员表，对应 study_members（当前成员名单）
type StudyMember struct {
	StudyID  string    `gorm:"type:uuid;primaryKey"                json:"study_id"`
	UserID   string    `gorm:"type:uuid;primaryKey"                json:"user_id"`
	Nickname string    `gorm:"type:varchar(100);not null"          json:"nickname"`
	JoinedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"  json:"joined_at"`

	// 关联
	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

func (StudyMember) TableName() string { return "study_members" }

// DisplayName 成员展示名：优先小组内昵称，其次用户名
func (m *StudyMember) DisplayName() string {
	if m.Nickname != "" {
		return m.Nickname
	}
	if m.User != nil {
		return m.User.Name
	}
	return ""
}
