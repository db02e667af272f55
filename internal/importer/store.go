package importer

import (
	"context"

	"github.com/SmartFleetSync/SmartFleetSync/internal/appointment"
	"github.com/SmartFleetSync/SmartFleetSync/internal/department"
	"github.com/SmartFleetSync/SmartFleetSync/internal/maintenance"
	"github.com/SmartFleetSync/SmartFleetSync/internal/member"
	"github.com/SmartFleetSync/SmartFleetSync/internal/repair"
	"github.com/SmartFleetSync/SmartFleetSync/internal/vehicle"
)

// 关系库存储能力。
// 导入流水线只依赖这些窄接口；生产实现是各实体的 GORM 仓储，
// 测试里用内存假实现。约定：按键查找不存在时返回 (nil, nil) 而非错误。

type DepartmentStore interface {
	FindByExternalID(ctx context.Context, externalID string) (*department.Department, error)
	FindByName(ctx context.Context, name string) (*department.Department, error)
	Insert(ctx context.Context, d *department.Department) error
	Update(ctx context.Context, d *department.Department) error
}

type VehicleStore interface {
	FindByExternalID(ctx context.Context, externalID string) (*vehicle.Vehicle, error)
	Insert(ctx context.Context, v *vehicle.Vehicle) error
	Update(ctx context.Context, v *vehicle.Vehicle) error
	// EnsureDriverLink 保证 (vehicle, member) 之间恰好一行关联
	EnsureDriverLink(ctx context.Context, vehicleID, memberID string) error
}

type MemberStore interface {
	FindByExternalID(ctx context.Context, externalID string) (*member.Member, error)
	FindByEmail(ctx context.Context, email string) (*member.Member, error)
	Insert(ctx context.Context, m *member.Member) error
	Update(ctx context.Context, m *member.Member) error
}

type ServiceRecordStore interface {
	FindByExternalID(ctx context.Context, externalID string) (*maintenance.ServiceRecord, error)
	Insert(ctx context.Context, s *maintenance.ServiceRecord) error
	Update(ctx context.Context, s *maintenance.ServiceRecord) error
}

type RepairStore interface {
	FindByExternalID(ctx context.Context, externalID string) (*repair.RepairRequest, error)
	Insert(ctx context.Context, r *repair.RepairRequest) error
	Update(ctx context.Context, r *repair.RepairRequest) error
}

type AppointmentStore interface {
	FindByExternalID(ctx context.Context, externalID string) (*appointment.Appointment, error)
	Insert(ctx context.Context, a *appointment.Appointment) error
	Update(ctx context.Context, a *appointment.Appointment) error
}

// HealthChecker 存储可达性检查；整库不可达是唯一的整轮致命错误。
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Stores 对账阶段用到的全部存储能力。
type Stores struct {
	Departments    DepartmentStore
	Vehicles       VehicleStore
	Members        MemberStore
	ServiceRecords ServiceRecordStore
	Repairs        RepairStore
	Appointments   AppointmentStore
	Health         HealthChecker
}
