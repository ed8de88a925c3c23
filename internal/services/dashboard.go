package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	redisclient "github.com/studymate/studymate-backend/internal/clients/redis"
	"github.com/studymate/studymate-backend/internal/logger"
	"github.com/studymate/studymate-backend/internal/repos"
	"github.com/studymate/studymate-backend/internal/requestdata"
	"github.com/studymate/studymate-backend/internal/types"
)

type DashboardUser struct {
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type DashboardStats struct {
	TotalStudyTime  int     `json:"total_study_time"`
	CompletedTopics int     `json:"completed_topics"`
	TotalPlans      int     `json:"total_plans"`
	ActivePlans     int     `json:"active_plans"`
	TotalTasks      int     `json:"total_tasks"`
	CompletedTasks  int     `json:"completed_tasks"`
	CompletionRate  float64 `json:"completion_rate"`
}

type RecentPlan struct {
	PlanID         uuid.UUID `json:"plan_id"`
	StudentName    string    `json:"student_name"`
	CreatedAt      time.Time `json:"created_at"`
	Progress       float64   `json:"progress"`
	TotalTasks     int       `json:"total_tasks"`
	CompletedTasks int       `json:"completed_tasks"`
	DailyHours     float64   `json:"daily_hours"`
}

type DailyActivity struct {
	Date      string `json:"date"`
	Day       string `json:"day"`
	StudyTime int    `json:"study_time"`
}

type Dashboard struct {
	User          DashboardUser   `json:"user"`
	Stats         DashboardStats  `json:"stats"`
	RecentPlans   []RecentPlan    `json:"recent_plans"`
	DailyActivity []DailyActivity `json:"daily_activity"`
}

type DashboardService interface {
	GetDashboard(ctx context.Context) (*Dashboard, error)
}

type dashboardService struct {
	db             *gorm.DB
	log            *logger.Logger
	userRepo       repos.UserRepo
	studyPlanRepo  repos.StudyPlanRepo
	planTaskRepo   repos.PlanTaskRepo
	userEventRepo  repos.UserEventRepo
	dashboardCache redisclient.DashboardCache
}

func NewDashboardService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	studyPlanRepo repos.StudyPlanRepo,
	planTaskRepo repos.PlanTaskRepo,
	userEventRepo repos.UserEventRepo,
	dashboardCache redisclient.DashboardCache,
) DashboardService {
	serviceLog := log.With("service", "DashboardService")
	return &dashboardService{
		db:             db,
		log:            serviceLog,
		userRepo:       userRepo,
		studyPlanRepo:  studyPlanRepo,
		planTaskRepo:   planTaskRepo,
		userEventRepo:  userEventRepo,
		dashboardCache: dashboardCache,
	}
}

func (ds *dashboardService) GetDashboard(ctx context.Context) (*Dashboard, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("request data not set in context")
	}

	if ds.dashboardCache != nil {
		if raw, ok := ds.dashboardCache.Get(ctx, rd.UserID); ok {
			var cached Dashboard
			if err := json.Unmarshal(raw, &cached); err == nil {
				return &cached, nil
			}
			ds.log.Warn("Discarding unreadable dashboard cache entry", "user_id", rd.UserID)
		}
	}

	dashboard, err := ds.compute(ctx, rd.UserID)
	if err != nil {
		return nil, err
	}

	if ds.dashboardCache != nil {
		if raw, mErr := json.Marshal(dashboard); mErr == nil {
			if sErr := ds.dashboardCache.Set(ctx, rd.UserID, raw); sErr != nil {
				ds.log.Warn("Failed to cache dashboard", "error", sErr)
			}
		}
	}
	return dashboard, nil
}

func (ds *dashboardService) compute(ctx context.Context, userID uuid.UUID) (*Dashboard, error) {
	users, err := ds.userRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
	if err != nil {
		return nil, fmt.Errorf("error fetching user: %w", err)
	}
	if len(users) == 0 || users[0] == nil {
		return nil, fmt.Errorf("user does not exist")
	}
	user := users[0]

	plans, err := ds.studyPlanRepo.GetByUserIDs(ctx, nil, []uuid.UUID{userID}, 0)
	if err != nil {
		return nil, fmt.Errorf("error fetching plans: %w", err)
	}

	planIDs := make([]uuid.UUID, 0, len(plans))
	for _, plan := range plans {
		planIDs = append(planIDs, plan.ID)
	}
	tasks, err := ds.planTaskRepo.GetByPlanIDs(ctx, nil, planIDs)
	if err != nil {
		return nil, fmt.Errorf("error fetching plan tasks: %w", err)
	}

	totalByPlan := map[uuid.UUID]int{}
	completedByPlan := map[uuid.UUID]int{}
	totalTasks := 0
	completedTasks := 0
	for _, task := range tasks {
		totalByPlan[task.PlanID]++
		totalTasks++
		if task.Completed {
			completedByPlan[task.PlanID]++
			completedTasks++
		}
	}

	activePlans := 0
	for _, plan := range plans {
		if completedByPlan[plan.ID] < totalByPlan[plan.ID] {
			activePlans++
		}
	}

	completionRate := 0.0
	if totalTasks > 0 {
		completionRate = roundOne(float64(completedTasks) / float64(totalTasks) * 100)
	}

	recentPlans := make([]RecentPlan, 0, 5)
	for _, plan := range plans {
		if len(recentPlans) == 5 {
			break
		}
		total := totalByPlan[plan.ID]
		done := completedByPlan[plan.ID]
		progress := 0.0
		if total > 0 {
			progress = roundOne(float64(done) / float64(total) * 100)
		}
		recentPlans = append(recentPlans, RecentPlan{
			PlanID:         plan.ID,
			StudentName:    plan.StudentName,
			CreatedAt:      plan.CreatedAt,
			Progress:       progress,
			TotalTasks:     total,
			CompletedTasks: done,
			DailyHours:     plan.DailyHours,
		})
	}

	activity, err := ds.dailyActivity(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		User: DashboardUser{
			UserID:    user.ID,
			Name:      user.Name,
			Email:     user.Email,
			CreatedAt: user.CreatedAt,
		},
		Stats: DashboardStats{
			TotalStudyTime:  user.TotalStudyTime,
			CompletedTopics: user.CompletedTopics,
			TotalPlans:      len(plans),
			ActivePlans:     activePlans,
			TotalTasks:      totalTasks,
			CompletedTasks:  completedTasks,
			CompletionRate:  completionRate,
		},
		RecentPlans:   recentPlans,
		DailyActivity: activity,
	}, nil
}

// dailyActivity sums recorded study minutes per calendar day over the last
// seven days, oldest first, with zero-filled gaps.
func (ds *dashboardService) dailyActivity(ctx context.Context, userID uuid.UUID) ([]DailyActivity, error) {
	now := time.Now()
	windowStart := now.AddDate(0, 0, -6)
	dayStart := time.Date(windowStart.Year(), windowStart.Month(), windowStart.Day(), 0, 0, 0, 0, windowStart.Location())

	events, err := ds.userEventRepo.GetByUserIDSince(ctx, nil, userID, dayStart)
	if err != nil {
		return nil, fmt.Errorf("error fetching user events: %w", err)
	}

	minutesByDate := map[string]int{}
	for _, event := range events {
		if event.Type != types.UserEventProgressUpdate {
			continue
		}
		minutesByDate[event.CreatedAt.Format("2006-01-02")] += event.Minutes
	}

	activity := make([]DailyActivity, 0, 7)
	for i := 0; i < 7; i++ {
		day := dayStart.AddDate(0, 0, i)
		date := day.Format("2006-01-02")
		activity = append(activity, DailyActivity{
			Date:      date,
			Day:       day.Format("Mon"),
			StudyTime: minutesByDate[date],
		})
	}
	return activity, nil
}

func roundOne(v float64) float64 {
	return math.Round(v*10) / 10
}
