package department

import "time"

// Department 是 departments 表的 GORM 模型。
type Department struct {
	ID          string `gorm:"primaryKey;size:36"`
	ExternalID  string `gorm:"uniqueIndex;size:32"` // 源端记录标识（去重键）
	Name        string `gorm:"uniqueIndex;size:128;not null"`
	Description string `gorm:"size:512"`
	Manager     string `gorm:"size:128"`
	// 车辆数为派生字段，以源端统计值为准，不在本库内重新计算
	VehicleCount int       `gorm:"not null;default:0"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}
