package importer

import (
	"strings"

	"github.com/SmartFleetSync/SmartFleetSync/internal/appointment"
	"github.com/SmartFleetSync/SmartFleetSync/internal/maintenance"
	"github.com/SmartFleetSync/SmartFleetSync/internal/member"
	"github.com/SmartFleetSync/SmartFleetSync/internal/repair"
	"github.com/SmartFleetSync/SmartFleetSync/internal/vehicle"
)

// 状态分类器。
// 源端状态列是自由文本，这里统一收敛成各实体的固定枚举：
// 按优先级依次匹配关键字，第一个命中的生效，全部不命中走默认值。
// 分类器是全函数：任何输入（包括空串）都返回合法枚举值。
//
// 关键字/优先级表是从源端真实数据反推出来的，调整时对照样本数据验证，
// 所以集中放在包级变量里，不散落在逻辑中。

func matchAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

var vehicleStatusRules = []struct {
	keywords []string
	value    vehicle.Status
}{
	{[]string{"retire", "sold", "decommission", "scrapped", "out of service"}, vehicle.StatusRetired},
	{[]string{"service", "repair", "shop", "maintenance"}, vehicle.StatusInService},
}

// ClassifyVehicleStatus 车辆服役状态；默认 active。
func ClassifyVehicleStatus(raw string) vehicle.Status {
	text := strings.ToLower(strings.TrimSpace(raw))
	for _, rule := range vehicleStatusRules {
		if matchAny(text, rule.keywords) {
			return rule.value
		}
	}
	return vehicle.StatusActive
}

var urgencyRules = []struct {
	keywords []string
	value    repair.Urgency
}{
	{[]string{"critical", "emergency", "immediate", "asap"}, repair.UrgencyCritical},
	{[]string{"high", "severe", "major"}, repair.UrgencyHigh},
	{[]string{"medium", "moderate", "normal"}, repair.UrgencyMedium},
}

// ClassifyRepairUrgency 报修紧急程度；默认 low。
// “需要立即处理”标志无条件归入 critical，覆盖文本值。
func ClassifyRepairUrgency(raw string, requiresImmediate bool) repair.Urgency {
	if requiresImmediate {
		return repair.UrgencyCritical
	}
	text := strings.ToLower(strings.TrimSpace(raw))
	for _, rule := range urgencyRules {
		if matchAny(text, rule.keywords) {
			return rule.value
		}
	}
	return repair.UrgencyLow
}

// repairStatusTiers 报修单状态的分层匹配表。
// 层级顺序编码了信号的权威程度：完结/关闭信号 > 预约关联信号 > 一般进度信号。
// 每一层内按调用方传入的字段优先级依次检查。
var repairStatusTiers = []struct {
	keywords []string
	value    repair.Status
}{
	{[]string{"cancel", "rejected", "declined"}, repair.StatusCancelled},
	{[]string{"complete", "resolved", "closed", "done", "fixed", "repaired"}, repair.StatusCompleted},
	{[]string{"scheduled", "booked", "booking confirmed", "appointment set"}, repair.StatusScheduled},
	{[]string{"awaiting booking", "pending booking", "needs booking", "waiting"}, repair.StatusWaitingBooking},
	{[]string{"in progress", "in shop", "being repaired", "working", "started"}, repair.StatusInProgress},
	{[]string{"triage", "reviewed", "acknowledged", "accepted"}, repair.StatusTriaged},
}

// ClassifyRepairStatus 报修单状态；默认 submitted。
// 源端最多有四个互相冗余的状态列，调用方按权威程度从高到低传入；
// 同一层信号在更靠前的字段里命中时优先生效。
func ClassifyRepairStatus(fields ...string) repair.Status {
	texts := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" {
			continue
		}
		texts = append(texts, f)
	}
	for _, tier := range repairStatusTiers {
		for _, text := range texts {
			if matchAny(text, tier.keywords) {
				return tier.value
			}
		}
	}
	return repair.StatusSubmitted
}

var roleRules = []struct {
	keywords []string
	value    member.Role
}{
	{[]string{"admin", "manager", "supervisor"}, member.RoleAdmin},
	{[]string{"mechanic", "technician", "tech"}, member.RoleMechanic},
	{[]string{"driver", "operator"}, member.RoleDriver},
}

// ClassifyMemberRole 成员角色；默认 customer。
func ClassifyMemberRole(raw string) member.Role {
	text := strings.ToLower(strings.TrimSpace(raw))
	for _, rule := range roleRules {
		if matchAny(text, rule.keywords) {
			return rule.value
		}
	}
	return member.RoleCustomer
}

var appointmentStatusRules = []struct {
	keywords []string
	value    appointment.Status
}{
	{[]string{"cancel"}, appointment.StatusCancelled},
	{[]string{"no show", "no-show", "noshow", "missed"}, appointment.StatusNoShow},
	{[]string{"complete", "done", "finished"}, appointment.StatusCompleted},
	{[]string{"progress", "in service", "working"}, appointment.StatusInProgress},
	{[]string{"confirm"}, appointment.StatusConfirmed},
}

// ClassifyAppointmentStatus 预约状态；默认 scheduled。
func ClassifyAppointmentStatus(raw string) appointment.Status {
	text := strings.ToLower(strings.TrimSpace(raw))
	for _, rule := range appointmentStatusRules {
		if matchAny(text, rule.keywords) {
			return rule.value
		}
	}
	return appointment.StatusScheduled
}

var serviceStatusRules = []struct {
	keywords []string
	value    maintenance.Status
}{
	{[]string{"cancel"}, maintenance.StatusCancelled},
	{[]string{"scheduled", "upcoming", "planned"}, maintenance.StatusScheduled},
	{[]string{"progress", "working", "in shop"}, maintenance.StatusInProgress},
}

// ClassifyServiceStatus 保养记录状态；历史记录默认 completed。
func ClassifyServiceStatus(raw string) maintenance.Status {
	text := strings.ToLower(strings.TrimSpace(raw))
	for _, rule := range serviceStatusRules {
		if matchAny(text, rule.keywords) {
			return rule.value
		}
	}
	return maintenance.StatusCompleted
}
