package maintenance

import "time"

// Status 保养/维修记录状态枚举（持久化为字符串）。
type Status string

const (
	StatusScheduled  Status = "scheduled"   // 已安排
	StatusInProgress Status = "in_progress" // 进行中
	StatusCompleted  Status = "completed"   // 已完成（历史记录的默认值）
	StatusCancelled  Status = "cancelled"   // 已取消
)

// ServiceRecord 是 service_records 表的 GORM 模型。
// VehicleID 在对账时由车辆的源端标识解析得到。
type ServiceRecord struct {
	ID         string `gorm:"primaryKey;size:36"`
	ExternalID string `gorm:"uniqueIndex;size:32;not null"`

	VehicleID         string `gorm:"index;size:36"`
	VehicleExternalID string `gorm:"index;size:32"` // 源端车辆引用，便于排查

	ServiceDate    string  `gorm:"size:10"` // YYYY-MM-DD
	CheckedInDate  string  `gorm:"size:10"`
	CheckInMileage float64 `gorm:"not null;default:0"`
	Cost           float64 `gorm:"not null;default:0"` // 近似费用
	Description    string  `gorm:"type:text"`          // 维修内容（自由文本）
	Status         Status  `gorm:"type:varchar(16);not null"`
	NextDueDate    string  `gorm:"size:10"` // 下次保养到期日
	Category       string  `gorm:"size:64"` // 分类标签

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}
