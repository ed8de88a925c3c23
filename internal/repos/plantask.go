package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/studymate/studymate-backend/internal/logger"
	"github.com/studymate/studymate-backend/internal/types"
)

type PlanTaskRepo interface {
	Create(ctx context.Context, tx *gorm.DB, tasks []*types.PlanTask) ([]*types.PlanTask, error)
	// GetByPlanIDs returns tasks ordered by position within each plan.
	GetByPlanIDs(ctx context.Context, tx *gorm.DB, planIDs []uuid.UUID) ([]*types.PlanTask, error)
	UpdateProgress(ctx context.Context, tx *gorm.DB, planID uuid.UUID, position int, completed bool, timeSpent int) (*types.PlanTask, error)
}

type planTaskRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPlanTaskRepo(db *gorm.DB, baseLog *logger.Logger) PlanTaskRepo {
	repoLog := baseLog.With("repo", "PlanTaskRepo")
	return &planTaskRepo{db: db, log: repoLog}
}

func (ptr *planTaskRepo) Create(ctx context.Context, tx *gorm.DB, tasks []*types.PlanTask) ([]*types.PlanTask, error) {
	transaction := tx
	if transaction == nil {
		transaction = ptr.db
	}

	if len(tasks) == 0 {
		return []*types.PlanTask{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&tasks).Error; err != nil {
		return nil, err
	}

	return tasks, nil
}

func (ptr *planTaskRepo) GetByPlanIDs(ctx context.Context, tx *gorm.DB, planIDs []uuid.UUID) ([]*types.PlanTask, error) {
	transaction := tx
	if transaction == nil {
		transaction = ptr.db
	}

	var results []*types.PlanTask

	if len(planIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("plan_id IN ?", planIDs).
		Order("plan_id").
		Order("position").
		Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}

func (ptr *planTaskRepo) UpdateProgress(ctx context.Context, tx *gorm.DB, planID uuid.UUID, position int, completed bool, timeSpent int) (*types.PlanTask, error) {
	transaction := tx
	if transaction == nil {
		transaction = ptr.db
	}

	var task types.PlanTask
	if err := transaction.WithContext(ctx).
		Where("plan_id = ? AND position = ?", planID, position).
		First(&task).Error; err != nil {
		return nil, err
	}

	task.Completed = completed
	task.TimeSpent = timeSpent
	if err := transaction.WithContext(ctx).
		Model(&types.PlanTask{}).
		Where("id = ?", task.ID).
		Updates(map[string]interface{}{
			"completed":  completed,
			"time_spent": timeSpent,
		}).Error; err != nil {
		return nil, err
	}

	return &task, nil
}
