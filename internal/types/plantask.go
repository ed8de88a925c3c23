package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PlanTask is one scheduled study chunk inside a plan. Position is the
// 0-based task index clients use when reporting progress.
type PlanTask struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	PlanID           uuid.UUID      `gorm:"uniqueIndex:idx_plan_task_position;not null" json:"plan_id"`
	Position         int            `gorm:"uniqueIndex:idx_plan_task_position;not null;column:position" json:"position"`
	Day              int            `gorm:"not null;column:day" json:"day"`
	Course           string         `gorm:"not null;column:course" json:"course"`
	Topic            string         `gorm:"not null;column:topic" json:"topic"`
	Difficulty       string         `gorm:"not null;column:difficulty" json:"difficulty"`
	SuggestedMinutes int            `gorm:"not null;column:suggested_minutes" json:"suggested_minutes"`
	AIHint           string         `gorm:"column:ai_hint" json:"ai_hint"`
	BreakAfter       *int           `gorm:"column:break_after" json:"break_after"`
	Completed        bool           `gorm:"not null;default:false;column:completed" json:"completed"`
	TimeSpent        int            `gorm:"not null;default:0;column:time_spent" json:"time_spent"`
	CreatedAt        time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (PlanTask) TableName() string { return "plan_task" }
