package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// StudyPlan is one generated plan owned by a user. The scheduled tasks live
// in plan_task rows, ordered by position.
type StudyPlan struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"plan_id"`
	UserID      uuid.UUID      `gorm:"index;not null" json:"user_id"`
	User        *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	StudentName string         `gorm:"not null;column:student_name" json:"student_name"`
	ExamDate    string         `gorm:"column:exam_date" json:"exam_date"`
	DailyHours  float64        `gorm:"not null;column:daily_hours" json:"daily_hours"`
	AIMeta      datatypes.JSON `gorm:"column:ai_meta" json:"ai"`
	Tasks       []PlanTask     `gorm:"foreignKey:PlanID;references:ID" json:"plan,omitempty"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (StudyPlan) TableName() string { return "study_plan" }
