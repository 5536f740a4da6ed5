package repository

import (
	"context"

	"gorm.io/gorm"

	"studyhub/internal/model"
)

// StudyRepository 学习小组数据访问接口（只读）
type StudyRepository interface {
	ListByIDs(ctx context.Context, ids []string) ([]model.Study, error)
	ListMembers(ctx context.Context, studyID string) ([]model.StudyMember, error)
}

type studyRepo struct {
	db *gorm.DB
}

// NewStudyRepo 创建 StudyRepository 实例
func NewStudyRepo(db *gorm.DB) StudyRepository {
	return &studyRepo{db: db}
}

func (r *studyRepo) ListByIDs(ctx context.Context, ids []string) ([]model.Study, error) {
	var studies []model.Study
	if len(ids) == 0 {
		return studies, nil
	}
	err := r.db.WithContext(ctx).
		Where("study_id IN ?", ids).
		Find(&studies).Error
	return studies, err
}

// ListMembers 当前成员名单，按加入时间排序
func (r *studyRepo) ListMembers(ctx context.Context, studyID string) ([]model.StudyMember, error) {
	var members []model.StudyMember
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("study_id = ?", studyID).
		Order("joined_at ASC").
		Find(&members).Error
	return members, err
}
