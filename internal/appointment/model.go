package appointment

import "time"

// Status 预约状态枚举（持久化为字符串）。
type Status string

const (
	StatusScheduled  Status = "scheduled" // 已预约（默认）
	StatusConfirmed  Status = "confirmed" // 已确认
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusNoShow     Status = "no_show" // 爽约
)

// Appointment 是 appointments 表的 GORM 模型。
type Appointment struct {
	ID         string `gorm:"primaryKey;size:36"`
	ExternalID string `gorm:"uniqueIndex;size:32;not null"`

	VehicleID         string `gorm:"index;size:36"`
	VehicleExternalID string `gorm:"index;size:32"`

	CustomerName  string `gorm:"size:128"`
	CustomerPhone string `gorm:"size:32"`
	CustomerEmail string `gorm:"size:128"`

	ServiceType string `gorm:"size:128"`
	ScheduledAt string `gorm:"size:25"` // ISO-8601 时间戳
	Status      Status `gorm:"type:varchar(16);index;not null"`
	Mechanic    string `gorm:"size:128"` // 指派的技师
	Notes       string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}
