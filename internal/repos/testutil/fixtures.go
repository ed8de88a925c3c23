package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/studymate/studymate-backend/internal/types"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:       uuid.New(),
		Email:    email,
		Password: "pw",
		Name:     "Test User",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedPlan(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID) *types.StudyPlan {
	tb.Helper()
	p := &types.StudyPlan{
		ID:          uuid.New(),
		UserID:      userID,
		StudentName: "Test User",
		DailyHours:  2,
		AIMeta:      datatypes.JSON([]byte("{}")),
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed plan: %v", err)
	}
	return p
}

func SeedTask(tb testing.TB, ctx context.Context, tx *gorm.DB, planID uuid.UUID, position int) *types.PlanTask {
	tb.Helper()
	task := &types.PlanTask{
		ID:               uuid.New(),
		PlanID:           planID,
		Position:         position,
		Day:              1,
		Course:           "Math",
		Topic:            "Algebra",
		Difficulty:       "medium",
		SuggestedMinutes: 60,
		AIHint:           "hint",
	}
	if err := tx.WithContext(ctx).Create(task).Error; err != nil {
		tb.Fatalf("seed task: %v", err)
	}
	return task
}
