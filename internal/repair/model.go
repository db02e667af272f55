package repair

import (
	"strings"
	"time"
)

// Urgency 报修紧急程度枚举（持久化为字符串）。
type Urgency string

const (
	UrgencyLow      Urgency = "low" // 默认
	UrgencyMedium   Urgency = "medium"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical" // "需要立即处理"标志强制归入该档
)

// Status 报修单状态枚举（持久化为字符串）。
// 源端把状态散落在多个冗余列里，入库前由分类器收敛成该枚举。
type Status string

const (
	StatusSubmitted      Status = "submitted" // 已提交（默认）
	StatusTriaged        Status = "triaged"   // 已分诊
	StatusWaitingBooking Status = "waiting_booking"
	StatusScheduled      Status = "scheduled"
	StatusInProgress     Status = "in_progress"
	StatusCompleted      Status = "completed"
	StatusCancelled      Status = "cancelled"
)

// RepairRequest 是 repair_requests 表的 GORM 模型。
type RepairRequest struct {
	ID         string `gorm:"primaryKey;size:36"`
	ExternalID string `gorm:"uniqueIndex;size:32;not null"`

	DriverName  string `gorm:"size:128"`
	DriverPhone string `gorm:"size:32"`
	DriverEmail string `gorm:"size:128"`

	// 源端的车辆标识可能出现在多个候选列（车牌/编号/名称），
	// 提取时按优先级取第一个非空值，原样保存
	VehicleLabel string `gorm:"size:128"`

	Description string  `gorm:"type:text"`
	Urgency     Urgency `gorm:"type:varchar(16);index;not null"`
	Status      Status  `gorm:"type:varchar(24);index;not null"`
	Photos      string  `gorm:"type:text"` // 照片 URL，逗号分隔
	Category    string  `gorm:"size:64"`
	Summary     string  `gorm:"size:512"`
	IncidentAt  string  `gorm:"size:25"` // ISO-8601 时间戳

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (r RepairRequest) PhotoSlice() []string {
	if strings.TrimSpace(r.Photos) == "" {
		return nil
	}
	parts := strings.Split(r.Photos, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
