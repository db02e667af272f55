package vehicle

import (
	"strings"
	"time"
)

// Status 车辆服役状态枚举（持久化为字符串）。
type Status string

const (
	StatusActive    Status = "active"     // 正常在用（默认）
	StatusInService Status = "in_service" // 维修/保养中
	StatusRetired   Status = "retired"    // 已退役
)

// Vehicle 是 vehicles 表的 GORM 模型。
// ExternalID 是源端记录标识，重复导入按它去重。
type Vehicle struct {
	ID         string `gorm:"primaryKey;size:36"`
	ExternalID string `gorm:"uniqueIndex;size:32;not null"`

	Make          string `gorm:"size:64"`
	Model         string `gorm:"size:64"`
	Year          int    `gorm:"not null;default:0"`
	VIN           string `gorm:"size:64;not null"` // 规范化后保证非空（缺失时由源端标识合成）
	PlateNumber   string `gorm:"size:32"`
	VehicleNumber string `gorm:"size:32"`
	Department    string `gorm:"size:128"`
	Status        Status `gorm:"type:varchar(16);index;not null"`
	// 里程为非负数，源端缺失或异常时为 0
	Mileage float64 `gorm:"not null;default:0"`

	// 当前司机（members 表的库端标识，经自然键解析得到）
	DriverID string `gorm:"index;size:36"`

	TagExpiry    string `gorm:"size:10"` // 牌照到期日 YYYY-MM-DD
	LoanLender   string `gorm:"size:128"`
	TitleStatus  string `gorm:"size:128"`
	FirstAidFire bool   `gorm:"not null;default:false"` // 是否配备急救/消防器材
	Photos       string `gorm:"type:text"`              // 照片 URL，逗号分隔

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (v Vehicle) PhotoSlice() []string {
	if strings.TrimSpace(v.Photos) == "" {
		return nil
	}
	parts := strings.Split(v.Photos, ",")
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

func PhotosJoin(urls []string) string {
	if len(urls) == 0 {
		return ""
	}
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		out = append(out, u)
	}
	return strings.Join(out, ",")
}

// VehicleDriver 是车辆与司机的关联表。
// 同一对 (VehicleID, MemberID) 只允许一行，由仓储先查后插保证。
type VehicleDriver struct {
	ID        string    `gorm:"primaryKey;size:36"`
	VehicleID string    `gorm:"index;size:36;not null"`
	MemberID  string    `gorm:"index;size:36;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}
