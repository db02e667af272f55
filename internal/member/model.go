package member

import (
	"strings"
	"time"
)

// Role 成员角色枚举（持久化为字符串）。
type Role string

const (
	RoleAdmin    Role = "admin"    // 管理员
	RoleMechanic Role = "mechanic" // 维修技师
	RoleDriver   Role = "driver"   // 司机
	RoleCustomer Role = "customer" // 普通客户（默认）
)

// Member 是 members 表的 GORM 模型（司机/技师/管理员等统一存这张表）。
// Email 是跨实体解析司机身份用的自然键。
type Member struct {
	ID         string `gorm:"primaryKey;size:36"`
	ExternalID string `gorm:"index;size:32"` // 源端记录标识；解析器创建的行可能为空
	Name       string `gorm:"size:128"`
	Email      string `gorm:"index;size:128"` // 规范化后的邮箱（小写、去空白）
	Phone      string `gorm:"size:32"`        // 规范化后的电话（+国家码开头）
	Role       Role   `gorm:"type:varchar(16);not null"`
	Department string `gorm:"size:128"`
	HireDate   string `gorm:"size:10"`  // YYYY-MM-DD
	Specialty  string `gorm:"size:512"` // 逗号分隔，例如 "brakes,engine"
	// 解析器按自然键兜底创建的行默认未审核，等运营侧确认
	Approved  bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (m Member) SpecialtySlice() []string {
	if strings.TrimSpace(m.Specialty) == "" {
		return nil
	}
	parts := strings.Split(m.Specialty, ",")
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

func SpecialtyJoin(items []string) string {
	if len(items) == 0 {
		return ""
	}
	out := make([]string, 0, len(items))
	for _, s := range items {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return strings.Join(out, ",")
}
