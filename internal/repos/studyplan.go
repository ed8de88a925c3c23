package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/studymate/studymate-backend/internal/logger"
	"github.com/studymate/studymate-backend/internal/types"
)

type StudyPlanRepo interface {
	Create(ctx context.Context, tx *gorm.DB, plans []*types.StudyPlan) ([]*types.StudyPlan, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, planIDs []uuid.UUID) ([]*types.StudyPlan, error)
	// GetByUserIDs returns plans newest-first. limit <= 0 means no limit.
	GetByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID, limit int) ([]*types.StudyPlan, error)
	CountByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) (int64, error)
}

type studyPlanRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStudyPlanRepo(db *gorm.DB, baseLog *logger.Logger) StudyPlanRepo {
	repoLog := baseLog.With("repo", "StudyPlanRepo")
	return &studyPlanRepo{db: db, log: repoLog}
}

func (spr *studyPlanRepo) Create(ctx context.Context, tx *gorm.DB, plans []*types.StudyPlan) ([]*types.StudyPlan, error) {
	transaction := tx
	if transaction == nil {
		transaction = spr.db
	}

	if len(plans) == 0 {
		return []*types.StudyPlan{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&plans).Error; err != nil {
		return nil, err
	}

	return plans, nil
}

func (spr *studyPlanRepo) GetByIDs(ctx context.Context, tx *gorm.DB, planIDs []uuid.UUID) ([]*types.StudyPlan, error) {
	transaction := tx
	if transaction == nil {
		transaction = spr.db
	}

	var results []*types.StudyPlan

	if len(planIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", planIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}

func (spr *studyPlanRepo) GetByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID, limit int) ([]*types.StudyPlan, error) {
	transaction := tx
	if transaction == nil {
		transaction = spr.db
	}

	var results []*types.StudyPlan

	if len(userIDs) == 0 {
		return results, nil
	}

	query := transaction.WithContext(ctx).
		Where("user_id IN ?", userIDs).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}

func (spr *studyPlanRepo) CountByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = spr.db
	}

	var count int64

	if len(userIDs) == 0 {
		return 0, nil
	}

	if err := transaction.WithContext(ctx).
		Model(&types.StudyPlan{}).
		Where("user_id IN ?", userIDs).
		Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}
