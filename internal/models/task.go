package models

import "time"

// TaskStatus is kept as an open string: updates may write any value, the
// engine itself only ever writes the three constants below.
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "Pending"
	TaskStatusCompleted TaskStatus = "Completed"
	TaskStatusOverdue   TaskStatus = "Overdue"
)

type Task struct {
	ID          uint64     `gorm:"primarykey" json:"id"`
	Title       string     `gorm:"type:varchar(255);not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Priority    string     `gorm:"type:varchar(50);not null" json:"priority"`
	Status      TaskStatus `gorm:"type:varchar(50);not null;default:'Pending'" json:"status"`
	Deadline    time.Time  `gorm:"not null" json:"deadline"`
	OwnerID     uint64     `gorm:"not null;index" json:"owner_id"`
	CreatedAt   time.Time  `json:"created_at"`
	// UpdatedAt is written explicitly by partial updates only.
	UpdatedAt *time.Time `gorm:"autoUpdateTime:false" json:"updated_at"`
}

// IsOverdueAt reports whether the task should be promoted to Overdue at now.
// Completed tasks never are.
func (t *Task) IsOverdueAt(now time.Time) bool {
	return t.Status != TaskStatusCompleted && t.Deadline.Before(now)
}
