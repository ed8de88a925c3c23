package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	redisclient "github.com/studymate/studymate-backend/internal/clients/redis"
	"github.com/studymate/studymate-backend/internal/logger"
	"github.com/studymate/studymate-backend/internal/normalization"
	"github.com/studymate/studymate-backend/internal/planner"
	"github.com/studymate/studymate-backend/internal/repos"
	"github.com/studymate/studymate-backend/internal/requestdata"
	"github.com/studymate/studymate-backend/internal/types"
)

// ErrNoTopics is returned when every submitted topic was blank.
var ErrNoTopics = fmt.Errorf("Please provide valid topics")

// ErrPlanNotFound covers both missing plans and plans owned by another user.
var ErrPlanNotFound = fmt.Errorf("Plan not found")

// ErrTaskIndexOutOfRange rejects progress updates for positions the plan
// does not have.
var ErrTaskIndexOutOfRange = fmt.Errorf("Invalid task index")

type TopicInput struct {
	Course     string `json:"course"`
	Topic      string `json:"topic"`
	Difficulty string `json:"difficulty"`
}

type GeneratePlanInput struct {
	StudentName string        `json:"student_name"`
	ExamDate    string        `json:"exam_date"`
	DailyHours  planner.Hours `json:"daily_hours"`
	Topics      []TopicInput  `json:"topics"`
}

// AIMeta is the advisory block stored alongside a plan and echoed to
// clients.
type AIMeta struct {
	Model       string   `json:"model"`
	Summary     string   `json:"summary"`
	Tips        []string `json:"tips"`
	TotalTopics int      `json:"total_topics"`
	TotalDays   int      `json:"total_days"`
}

type PlanService interface {
	GeneratePlan(ctx context.Context, input GeneratePlanInput) (*types.StudyPlan, error)
	GetPlan(ctx context.Context, planID uuid.UUID) (*types.StudyPlan, error)
	ListPlans(ctx context.Context) ([]*types.StudyPlan, int64, error)
	UpdateProgress(ctx context.Context, planID uuid.UUID, taskIndex int, completed bool, timeSpent int) (*types.PlanTask, error)
}

type planService struct {
	db                *gorm.DB
	log               *logger.Logger
	userRepo          repos.UserRepo
	studyPlanRepo     repos.StudyPlanRepo
	planTaskRepo      repos.PlanTaskRepo
	userEventRepo     repos.UserEventRepo
	dashboardCache    redisclient.DashboardCache
	defaultDailyHours float64
}

func NewPlanService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	studyPlanRepo repos.StudyPlanRepo,
	planTaskRepo repos.PlanTaskRepo,
	userEventRepo repos.UserEventRepo,
	dashboardCache redisclient.DashboardCache,
	defaultDailyHours float64,
) PlanService {
	serviceLog := log.With("service", "PlanService")
	if defaultDailyHours <= 0 {
		defaultDailyHours = planner.DefaultDailyHours
	}
	return &planService{
		db:                db,
		log:               serviceLog,
		userRepo:          userRepo,
		studyPlanRepo:     studyPlanRepo,
		planTaskRepo:      planTaskRepo,
		userEventRepo:     userEventRepo,
		dashboardCache:    dashboardCache,
		defaultDailyHours: defaultDailyHours,
	}
}

func (ps *planService) GeneratePlan(ctx context.Context, input GeneratePlanInput) (*types.StudyPlan, error) {
	user, err := ps.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	studentName := normalization.TrimInputString(input.StudentName)
	if studentName == "" {
		studentName = user.Name
	}

	topics := buildTopics(input.Topics)
	if len(topics) == 0 {
		return nil, ErrNoTopics
	}

	dailyHours := input.DailyHours.Value(ps.defaultDailyHours)
	chunks := planner.Pack(topics, dailyHours)
	if len(chunks) == 0 {
		return nil, ErrNoTopics
	}

	meta := AIMeta{
		Model:   "smart-study-ai",
		Summary: fmt.Sprintf("Personalized study plan for %s", studentName),
		Tips: []string{
			"Start with easier topics to build confidence",
			"Take 5-minute breaks every 25 minutes",
			"Review previous topics regularly",
		},
		TotalTopics: len(topics),
		TotalDays:   countDays(chunks),
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("marshal ai meta: %w", err)
	}

	plan := &types.StudyPlan{
		ID:          uuid.New(),
		UserID:      user.ID,
		StudentName: studentName,
		ExamDate:    normalization.TrimInputString(input.ExamDate),
		DailyHours:  dailyHours,
		AIMeta:      datatypes.JSON(metaJSON),
	}

	tasks := make([]*types.PlanTask, 0, len(chunks))
	for i, chunk := range chunks {
		tasks = append(tasks, &types.PlanTask{
			ID:               uuid.New(),
			PlanID:           plan.ID,
			Position:         i,
			Day:              chunk.Day,
			Course:           chunk.Course,
			Topic:            chunk.Topic,
			Difficulty:       string(chunk.Difficulty),
			SuggestedMinutes: chunk.Minutes,
			AIHint:           chunk.Hint,
			BreakAfter:       chunk.BreakAfter,
		})
	}

	if err := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, cpErr := ps.studyPlanRepo.Create(ctx, tx, []*types.StudyPlan{plan}); cpErr != nil {
			return fmt.Errorf("Failed to create plan: %w", cpErr)
		}
		if _, ctErr := ps.planTaskRepo.Create(ctx, tx, tasks); ctErr != nil {
			return fmt.Errorf("Failed to create plan tasks: %w", ctErr)
		}
		if isErr := ps.userRepo.IncrementStats(ctx, tx, user.ID, 0, 0, 1); isErr != nil {
			return fmt.Errorf("Failed to update user plan count: %w", isErr)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	ps.invalidateDashboard(ctx, user.ID)
	ps.log.Info("Plan generated", "plan_id", plan.ID, "tasks", len(tasks))

	for _, task := range tasks {
		plan.Tasks = append(plan.Tasks, *task)
	}
	return plan, nil
}

func (ps *planService) GetPlan(ctx context.Context, planID uuid.UUID) (*types.StudyPlan, error) {
	user, err := ps.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	plans, err := ps.studyPlanRepo.GetByIDs(ctx, nil, []uuid.UUID{planID})
	if err != nil {
		return nil, fmt.Errorf("Error fetching plan: %w", err)
	}
	if len(plans) == 0 || plans[0].UserID != user.ID {
		return nil, ErrPlanNotFound
	}
	plan := plans[0]

	tasks, err := ps.planTaskRepo.GetByPlanIDs(ctx, nil, []uuid.UUID{plan.ID})
	if err != nil {
		return nil, fmt.Errorf("Error fetching plan tasks: %w", err)
	}
	for _, task := range tasks {
		plan.Tasks = append(plan.Tasks, *task)
	}
	return plan, nil
}

func (ps *planService) ListPlans(ctx context.Context) ([]*types.StudyPlan, int64, error) {
	user, err := ps.currentUser(ctx)
	if err != nil {
		return nil, 0, err
	}

	plans, err := ps.studyPlanRepo.GetByUserIDs(ctx, nil, []uuid.UUID{user.ID}, 0)
	if err != nil {
		return nil, 0, fmt.Errorf("Error fetching plans: %w", err)
	}
	count, err := ps.studyPlanRepo.CountByUserIDs(ctx, nil, []uuid.UUID{user.ID})
	if err != nil {
		return nil, 0, fmt.Errorf("Error counting plans: %w", err)
	}
	if len(plans) == 0 {
		return []*types.StudyPlan{}, count, nil
	}

	planIDs := make([]uuid.UUID, 0, len(plans))
	byID := make(map[uuid.UUID]*types.StudyPlan, len(plans))
	for _, plan := range plans {
		planIDs = append(planIDs, plan.ID)
		byID[plan.ID] = plan
	}

	tasks, err := ps.planTaskRepo.GetByPlanIDs(ctx, nil, planIDs)
	if err != nil {
		return nil, 0, fmt.Errorf("Error fetching plan tasks: %w", err)
	}
	for _, task := range tasks {
		if plan, ok := byID[task.PlanID]; ok {
			plan.Tasks = append(plan.Tasks, *task)
		}
	}
	return plans, count, nil
}

func (ps *planService) UpdateProgress(ctx context.Context, planID uuid.UUID, taskIndex int, completed bool, timeSpent int) (*types.PlanTask, error) {
	user, err := ps.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if taskIndex < 0 {
		return nil, ErrTaskIndexOutOfRange
	}
	if timeSpent < 0 {
		timeSpent = 0
	}

	plans, err := ps.studyPlanRepo.GetByIDs(ctx, nil, []uuid.UUID{planID})
	if err != nil {
		return nil, fmt.Errorf("Error fetching plan: %w", err)
	}
	if len(plans) == 0 || plans[0].UserID != user.ID {
		return nil, ErrPlanNotFound
	}

	var updated *types.PlanTask
	if err := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		task, upErr := ps.planTaskRepo.UpdateProgress(ctx, tx, planID, taskIndex, completed, timeSpent)
		if upErr != nil {
			if errors.Is(upErr, gorm.ErrRecordNotFound) {
				return ErrTaskIndexOutOfRange
			}
			return fmt.Errorf("Failed to update task progress: %w", upErr)
		}
		updated = task

		completedDelta := 0
		if completed {
			completedDelta = 1
		}
		if isErr := ps.userRepo.IncrementStats(ctx, tx, user.ID, timeSpent, completedDelta, 0); isErr != nil {
			return fmt.Errorf("Failed to update user stats: %w", isErr)
		}

		eventMeta, mErr := json.Marshal(map[string]interface{}{
			"plan_id":    planID.String(),
			"task_index": taskIndex,
			"completed":  completed,
		})
		if mErr != nil {
			return fmt.Errorf("marshal event metadata: %w", mErr)
		}
		event := &types.UserEvent{
			ID:       uuid.New(),
			UserID:   user.ID,
			Type:     types.UserEventProgressUpdate,
			Minutes:  timeSpent,
			Metadata: datatypes.JSON(eventMeta),
		}
		if _, ceErr := ps.userEventRepo.Create(ctx, tx, []*types.UserEvent{event}); ceErr != nil {
			return fmt.Errorf("Failed to record progress event: %w", ceErr)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	ps.invalidateDashboard(ctx, user.ID)
	return updated, nil
}

func (ps *planService) currentUser(ctx context.Context) (*types.User, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("request data not set in context")
	}
	users, err := ps.userRepo.GetByIDs(ctx, nil, []uuid.UUID{rd.UserID})
	if err != nil {
		return nil, fmt.Errorf("error fetching user: %w", err)
	}
	if len(users) == 0 || users[0] == nil {
		return nil, fmt.Errorf("user does not exist")
	}
	return users[0], nil
}

func (ps *planService) invalidateDashboard(ctx context.Context, userID uuid.UUID) {
	if ps.dashboardCache == nil {
		return
	}
	if err := ps.dashboardCache.Invalidate(ctx, userID); err != nil {
		ps.log.Warn("Failed to invalidate dashboard cache", "error", err)
	}
}

// buildTopics filters out blank topic names and substitutes "Subject N"
// for blank course labels, numbering by submission order.
func buildTopics(inputs []TopicInput) []planner.Topic {
	topics := make([]planner.Topic, 0, len(inputs))
	for i, in := range inputs {
		name := normalization.TrimInputString(in.Topic)
		if name == "" {
			continue
		}
		course := normalization.TrimInputString(in.Course)
		if course == "" {
			course = fmt.Sprintf("Subject %d", i+1)
		}
		topics = append(topics, planner.Topic{
			Course:     course,
			Name:       name,
			Difficulty: planner.ParseDifficulty(in.Difficulty),
		})
	}
	return topics
}

func countDays(chunks []planner.Chunk) int {
	days := map[int]struct{}{}
	for _, chunk := range chunks {
		days[chunk.Day] = struct{}{}
	}
	return len(days)
}
