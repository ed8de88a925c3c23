package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email    string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password string    `gorm:"not null;column:password" json:"-"`
	Name     string    `gorm:"not null;column:name" json:"name"`

	// Aggregate study stats, incremented on plan creation and progress updates.
	TotalStudyTime  int `gorm:"not null;default:0;column:total_study_time" json:"total_study_time"`
	PlansCount      int `gorm:"not null;default:0;column:plans_count" json:"plans_count"`
	CompletedTopics int `gorm:"not null;default:0;column:completed_topics" json:"completed_topics"`

	LastLogin time.Time      `gorm:"column:last_login" json:"last_login"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (User) TableName() string { return "user" }
