package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/studymate/studymate-backend/internal/services"
	"github.com/studymate/studymate-backend/internal/types"
)

type PlanHandler struct {
	planService services.PlanService
}

func NewPlanHandler(planService services.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

func (ph *PlanHandler) GeneratePlan(c *gin.Context) {
	var req services.GeneratePlanInput
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request_body", err)
		return
	}
	plan, err := ph.planService.GeneratePlan(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, services.ErrNoTopics) {
			RespondError(c, http.StatusBadRequest, "no_valid_topics", err)
			return
		}
		RespondError(c, http.StatusInternalServerError, "generate_plan_failed", err)
		return
	}
	payload := planPayload(plan)
	payload["message"] = "Study plan generated successfully"
	c.JSON(http.StatusCreated, payload)
}

func (ph *PlanHandler) GetPlan(c *gin.Context) {
	planID, err := uuid.Parse(c.Param("plan_id"))
	if err != nil {
		RespondError(c, http.StatusNotFound, "plan_not_found", services.ErrPlanNotFound)
		return
	}
	plan, err := ph.planService.GetPlan(c.Request.Context(), planID)
	if err != nil {
		if errors.Is(err, services.ErrPlanNotFound) {
			RespondError(c, http.StatusNotFound, "plan_not_found", err)
			return
		}
		RespondError(c, http.StatusInternalServerError, "load_plan_failed", err)
		return
	}
	RespondOK(c, planPayload(plan))
}

func (ph *PlanHandler) ListPlans(c *gin.Context) {
	plans, count, err := ph.planService.ListPlans(c.Request.Context())
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "load_plans_failed", err)
		return
	}
	payloads := make([]gin.H, 0, len(plans))
	for _, plan := range plans {
		payloads = append(payloads, planPayload(plan))
	}
	RespondOK(c, gin.H{"plans": payloads, "count": count})
}

func (ph *PlanHandler) UpdateProgress(c *gin.Context) {
	var req struct {
		PlanID    uuid.UUID `json:"plan_id"`
		TaskIndex int       `json:"task_index"`
		Completed bool      `json:"completed"`
		TimeSpent int       `json:"time_spent"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request_body", err)
		return
	}
	task, err := ph.planService.UpdateProgress(c.Request.Context(), req.PlanID, req.TaskIndex, req.Completed, req.TimeSpent)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPlanNotFound):
			RespondError(c, http.StatusNotFound, "plan_not_found", err)
		case errors.Is(err, services.ErrTaskIndexOutOfRange):
			RespondError(c, http.StatusBadRequest, "invalid_task_index", err)
		default:
			RespondError(c, http.StatusInternalServerError, "update_progress_failed", err)
		}
		return
	}
	RespondOK(c, gin.H{
		"message": "Progress updated successfully",
		"task":    taskPayload(task),
	})
}

// planPayload serializes a plan the way the frontend expects, with task
// days rendered as "Day N" labels.
func planPayload(plan *types.StudyPlan) gin.H {
	tasks := make([]gin.H, 0, len(plan.Tasks))
	for i := range plan.Tasks {
		tasks = append(tasks, taskPayload(&plan.Tasks[i]))
	}
	return gin.H{
		"plan_id":      plan.ID,
		"student_name": plan.StudentName,
		"exam_date":    plan.ExamDate,
		"daily_hours":  plan.DailyHours,
		"created_at":   plan.CreatedAt,
		"ai":           json.RawMessage(plan.AIMeta),
		"plan":         tasks,
	}
}

func taskPayload(task *types.PlanTask) gin.H {
	return gin.H{
		"task_index":        task.Position,
		"day":               fmt.Sprintf("Day %d", task.Day),
		"course":            task.Course,
		"topic":             task.Topic,
		"difficulty":        task.Difficulty,
		"suggested_minutes": task.SuggestedMinutes,
		"ai_hint":           task.AIHint,
		"break_after":       task.BreakAfter,
		"completed":         task.Completed,
		"time_spent":        task.TimeSpent,
	}
}
