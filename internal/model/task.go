package model

import "time"

// Task is a single to-do item. OwnerID is set at creation and never
// reassigned; deleting the owning user deletes their tasks.
type Task struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title" gorm:"size:100;not null"`
	Description string    `json:"description,omitempty" gorm:"size:1000"`
	Completed   bool      `json:"completed" gorm:"not null;default:false;index"`
	OwnerID     uint      `json:"owner_id" gorm:"not null;index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
