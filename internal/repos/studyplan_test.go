package repos

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/studymate/studymate-backend/internal/repos/testutil"
	"github.com/studymate/studymate-backend/internal/types"
)

func TestStudyPlanRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewStudyPlanRepo(db, testutil.Logger(t))
	ctx := context.Background()

	u := testutil.SeedUser(t, ctx, tx, "planrepo@example.com")

	created, err := repo.Create(ctx, tx, []*types.StudyPlan{
		{
			ID:          uuid.New(),
			UserID:      u.ID,
			StudentName: "A B",
			ExamDate:    "2025-09-01",
			DailyHours:  2,
			AIMeta:      datatypes.JSON([]byte(`{"model":"smart-study-ai"}`)),
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("Create: expected 1 plan, got %d", len(created))
	}

	second := testutil.SeedPlan(t, ctx, tx, u.ID)

	gotByIDs, err := repo.GetByIDs(ctx, tx, []uuid.UUID{created[0].ID})
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if len(gotByIDs) != 1 || gotByIDs[0].ID != created[0].ID {
		t.Fatalf("GetByIDs: unexpected result: %+v", gotByIDs)
	}

	gotByUser, err := repo.GetByUserIDs(ctx, tx, []uuid.UUID{u.ID}, 0)
	if err != nil {
		t.Fatalf("GetByUserIDs: %v", err)
	}
	if len(gotByUser) != 2 {
		t.Fatalf("GetByUserIDs: expected 2 plans, got %d", len(gotByUser))
	}

	limited, err := repo.GetByUserIDs(ctx, tx, []uuid.UUID{u.ID}, 1)
	if err != nil {
		t.Fatalf("GetByUserIDs (limit): %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("GetByUserIDs (limit): expected 1 plan, got %d", len(limited))
	}

	count, err := repo.CountByUserIDs(ctx, tx, []uuid.UUID{u.ID})
	if err != nil {
		t.Fatalf("CountByUserIDs: %v", err)
	}
	if count != 2 {
		t.Fatalf("CountByUserIDs: got %d, want 2", count)
	}

	_ = second
}

func TestPlanTaskRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewPlanTaskRepo(db, testutil.Logger(t))
	ctx := context.Background()

	u := testutil.SeedUser(t, ctx, tx, "taskrepo@example.com")
	plan := testutil.SeedPlan(t, ctx, tx, u.ID)

	rest := 10
	created, err := repo.Create(ctx, tx, []*types.PlanTask{
		{
			ID:               uuid.New(),
			PlanID:           plan.ID,
			Position:         1,
			Day:              1,
			Course:           "Phys",
			Topic:            "Energy",
			Difficulty:       "hard",
			SuggestedMinutes: 40,
			AIHint:           "hint",
		},
		{
			ID:               uuid.New(),
			PlanID:           plan.ID,
			Position:         0,
			Day:              1,
			Course:           "Phys",
			Topic:            "Motion",
			Difficulty:       "hard",
			SuggestedMinutes: 60,
			AIHint:           "hint",
			BreakAfter:       &rest,
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("Create: expected 2 tasks, got %d", len(created))
	}

	got, err := repo.GetByPlanIDs(ctx, tx, []uuid.UUID{plan.ID})
	if err != nil {
		t.Fatalf("GetByPlanIDs: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("GetByPlanIDs: expected 2 tasks, got %d", len(got))
	}
	if got[0].Position != 0 || got[1].Position != 1 {
		t.Fatalf("GetByPlanIDs: tasks not ordered by position: %d, %d", got[0].Position, got[1].Position)
	}
	if got[0].BreakAfter == nil || *got[0].BreakAfter != 10 {
		t.Fatalf("GetByPlanIDs: break_after lost: %+v", got[0])
	}

	updated, err := repo.UpdateProgress(ctx, tx, plan.ID, 0, true, 55)
	if err != nil {
		t.Fatalf("UpdateProgress: %v", err)
	}
	if updated.Topic != "Motion" {
		t.Fatalf("UpdateProgress: wrong task: %+v", updated)
	}

	got, err = repo.GetByPlanIDs(ctx, tx, []uuid.UUID{plan.ID})
	if err != nil {
		t.Fatalf("GetByPlanIDs (after update): %v", err)
	}
	if !got[0].Completed || got[0].TimeSpent != 55 {
		t.Fatalf("UpdateProgress not persisted: %+v", got[0])
	}

	if _, err := repo.UpdateProgress(ctx, tx, plan.ID, 99, true, 5); err == nil {
		t.Fatalf("UpdateProgress: expected error for out-of-range position")
	}
}
