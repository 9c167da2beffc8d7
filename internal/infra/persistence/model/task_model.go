package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskModel mirrors the 'tasks' table. OwnerID references users.id.
type TaskModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	OwnerID     uuid.UUID `gorm:"type:uuid;not null;index:idx_tasks_owner_created,priority:1"`
	Title       string    `gorm:"type:varchar(255);not null"`
	Description *string   `gorm:"type:text"`
	Status      string    `gorm:"type:varchar(8);not null;default:TODO"`
	CreatedAt   time.Time `gorm:"index:idx_tasks_owner_created,priority:2,sort:desc"`
	UpdatedAt   time.Time
}

// TableName explicitly sets the table name for GORM.
func (TaskModel) TableName() string {
	return "tasks"
}

// BeforeCreate assigns a time-ordered UUIDv7 when the caller did not set one.
func (m *TaskModel) BeforeCreate(_ *gorm.DB) error {
	if m.ID != uuid.Nil {
		return nil
	}

	id, err := uuid.NewV7()
	if err != nil {
		return err
	}
	m.ID = id

	return nil
}
