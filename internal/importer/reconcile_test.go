package importer

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/SmartFleetSync/SmartFleetSync/internal/appointment"
	"github.com/SmartFleetSync/SmartFleetSync/internal/department"
	"github.com/SmartFleetSync/SmartFleetSync/internal/maintenance"
	"github.com/SmartFleetSync/SmartFleetSync/internal/member"
	"github.com/SmartFleetSync/SmartFleetSync/internal/repair"
	"github.com/SmartFleetSync/SmartFleetSync/internal/vehicle"
)

// 内存假仓储：行为对齐 GORM 仓储的约定
// （插入时补库端标识；按键查不到返回 (nil, nil)）。

type fakeStores struct {
	seq          int
	departments  map[string]*department.Department
	vehicles     map[string]*vehicle.Vehicle
	driverLinks  map[string]bool // vehicleID + "/" + memberID
	members      map[string]*member.Member
	services     map[string]*maintenance.ServiceRecord
	repairs      map[string]*repair.RepairRequest
	appointments map[string]*appointment.Appointment

	failInsertVehicleVIN string // 指定 VIN 的车辆插入失败，模拟单条写入错误
}

func newFakeStores() *fakeStores {
	return &fakeStores{
		departments:  map[string]*department.Department{},
		vehicles:     map[string]*vehicle.Vehicle{},
		driverLinks:  map[string]bool{},
		members:      map[string]*member.Member{},
		services:     map[string]*maintenance.ServiceRecord{},
		repairs:      map[string]*repair.RepairRequest{},
		appointments: map[string]*appointment.Appointment{},
	}
}

func (f *fakeStores) nextID() string {
	f.seq++
	return fmt.Sprintf("id-%03d", f.seq)
}

func (f *fakeStores) stores() Stores {
	return Stores{
		Departments:    (*fakeDepartmentStore)(f),
		Vehicles:       (*fakeVehicleStore)(f),
		Members:        (*fakeMemberStore)(f),
		ServiceRecords: (*fakeServiceStore)(f),
		Repairs:        (*fakeRepairStore)(f),
		Appointments:   (*fakeAppointmentStore)(f),
		Health:         okHealth{},
	}
}

type okHealth struct{}

func (okHealth) Ping(context.Context) error { return nil }

type fakeDepartmentStore fakeStores

func (f *fakeDepartmentStore) FindByExternalID(_ context.Context, externalID string) (*department.Department, error) {
	for _, d := range f.departments {
		if d.ExternalID == externalID {
			return d, nil
		}
	}
	return nil, nil
}

func (f *fakeDepartmentStore) FindByName(_ context.Context, name string) (*department.Department, error) {
	for _, d := range f.departments {
		if d.Name == name {
			return d, nil
		}
	}
	return nil, nil
}

func (f *fakeDepartmentStore) Insert(_ context.Context, d *department.Department) error {
	if d.ID == "" {
		d.ID = (*fakeStores)(f).nextID()
	}
	f.departments[d.ID] = d
	return nil
}

func (f *fakeDepartmentStore) Update(_ context.Context, d *department.Department) error {
	f.departments[d.ID] = d
	return nil
}

type fakeVehicleStore fakeStores

func (f *fakeVehicleStore) FindByExternalID(_ context.Context, externalID string) (*vehicle.Vehicle, error) {
	for _, v := range f.vehicles {
		if v.ExternalID == externalID {
			return v, nil
		}
	}
	return nil, nil
}

func (f *fakeVehicleStore) Insert(_ context.Context, v *vehicle.Vehicle) error {
	if f.failInsertVehicleVIN != "" && v.VIN == f.failInsertVehicleVIN {
		return fmt.Errorf("duplicate entry for vin %q", v.VIN)
	}
	if v.ID == "" {
		v.ID = (*fakeStores)(f).nextID()
	}
	f.vehicles[v.ID] = v
	return nil
}

func (f *fakeVehicleStore) Update(_ context.Context, v *vehicle.Vehicle) error {
	f.vehicles[v.ID] = v
	return nil
}

func (f *fakeVehicleStore) EnsureDriverLink(_ context.Context, vehicleID, memberID string) error {
	f.driverLinks[vehicleID+"/"+memberID] = true
	return nil
}

type fakeMemberStore fakeStores

func (f *fakeMemberStore) FindByExternalID(_ context.Context, externalID string) (*member.Member, error) {
	for _, m := range f.members {
		if m.ExternalID == externalID {
			return m, nil
		}
	}
	return nil, nil
}

func (f *fakeMemberStore) FindByEmail(_ context.Context, email string) (*member.Member, error) {
	for _, m := range f.members {
		if m.Email == email {
			return m, nil
		}
	}
	return nil, nil
}

func (f *fakeMemberStore) Insert(_ context.Context, m *member.Member) error {
	if m.ID == "" {
		m.ID = (*fakeStores)(f).nextID()
	}
	f.members[m.ID] = m
	return nil
}

func (f *fakeMemberStore) Update(_ context.Context, m *member.Member) error {
	f.members[m.ID] = m
	return nil
}

type fakeServiceStore fakeStores

func (f *fakeServiceStore) FindByExternalID(_ context.Context, externalID string) (*maintenance.ServiceRecord, error) {
	for _, s := range f.services {
		if s.ExternalID == externalID {
			return s, nil
		}
	}
	return nil, nil
}

func (f *fakeServiceStore) Insert(_ context.Context, s *maintenance.ServiceRecord) error {
	if s.ID == "" {
		s.ID = (*fakeStores)(f).nextID()
	}
	f.services[s.ID] = s
	return nil
}

func (f *fakeServiceStore) Update(_ context.Context, s *maintenance.ServiceRecord) error {
	f.services[s.ID] = s
	return nil
}

type fakeRepairStore fakeStores

func (f *fakeRepairStore) FindByExternalID(_ context.Context, externalID string) (*repair.RepairRequest, error) {
	for _, r := range f.repairs {
		if r.ExternalID == externalID {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeRepairStore) Insert(_ context.Context, r *repair.RepairRequest) error {
	if r.ID == "" {
		r.ID = (*fakeStores)(f).nextID()
	}
	f.repairs[r.ID] = r
	return nil
}

func (f *fakeRepairStore) Update(_ context.Context, r *repair.RepairRequest) error {
	f.repairs[r.ID] = r
	return nil
}

type fakeAppointmentStore fakeStores

func (f *fakeAppointmentStore) FindByExternalID(_ context.Context, externalID string) (*appointment.Appointment, error) {
	for _, a := range f.appointments {
		if a.ExternalID == externalID {
			return a, nil
		}
	}
	return nil, nil
}

func (f *fakeAppointmentStore) Insert(_ context.Context, a *appointment.Appointment) error {
	if a.ID == "" {
		a.ID = (*fakeStores)(f).nextID()
	}
	f.appointments[a.ID] = a
	return nil
}

func (f *fakeAppointmentStore) Update(_ context.Context, a *appointment.Appointment) error {
	f.appointments[a.ID] = a
	return nil
}

func TestReconcileVehiclesIdempotent(t *testing.T) {
	fs := newFakeStores()
	en := NewEngine(fs.stores(), 50, nil)
	ctx := context.Background()

	recs := []VehicleRecord{
		{ExternalID: "recV1", Make: "Ford", Model: "Transit", VIN: "VIN-1", Mileage: 1000},
		{ExternalID: "recV2", Make: "Chevy", Model: "Bolt", VIN: "VIN-2", Mileage: 2000},
	}

	first := en.Vehicles(ctx, recs)
	if first.Imported != 2 || first.Skipped != 0 {
		t.Fatalf("first run: imported=%d skipped=%d", first.Imported, first.Skipped)
	}
	if len(fs.vehicles) != 2 {
		t.Fatalf("expected 2 vehicle rows, got %d", len(fs.vehicles))
	}

	// 同一批次再跑一遍：更新而非新增
	recs[0].Mileage = 1500
	second := en.Vehicles(ctx, recs)
	if second.Imported != 2 || second.Skipped != 0 {
		t.Fatalf("second run: imported=%d skipped=%d", second.Imported, second.Skipped)
	}
	if len(fs.vehicles) != 2 {
		t.Fatalf("expected upsert to keep 2 rows, got %d", len(fs.vehicles))
	}

	v, _ := fs.stores().Vehicles.FindByExternalID(ctx, "recV1")
	if v == nil || v.Mileage != 1500 {
		t.Fatalf("expected mileage updated to 1500, got %+v", v)
	}
}

func TestReconcileVehiclesDriverDedup(t *testing.T) {
	fs := newFakeStores()
	en := NewEngine(fs.stores(), 50, nil)
	ctx := context.Background()

	// 两辆车同一个司机邮箱：成员表只应出现一行，关联两行
	recs := []VehicleRecord{
		{ExternalID: "recV1", VIN: "VIN-1", DriverName: "Jane Doe", DriverEmail: "jane@example.com"},
		{ExternalID: "recV2", VIN: "VIN-2", DriverName: "Jane Doe", DriverEmail: "jane@example.com"},
	}

	res := en.Vehicles(ctx, recs)
	if res.Imported != 2 {
		t.Fatalf("imported=%d, errors=%v", res.Imported, res.Errors)
	}
	if len(fs.members) != 1 {
		t.Fatalf("expected single member row for shared email, got %d", len(fs.members))
	}
	if len(fs.driverLinks) != 2 {
		t.Fatalf("expected 2 driver links, got %d", len(fs.driverLinks))
	}

	var m *member.Member
	for _, row := range fs.members {
		m = row
	}
	if m.Role != member.RoleDriver || m.Approved {
		t.Fatalf("expected unapproved driver placeholder, got %+v", m)
	}
}

func TestReconcileVehiclesPartialFailure(t *testing.T) {
	fs := newFakeStores()
	fs.failInsertVehicleVIN = "VIN-BAD"
	en := NewEngine(fs.stores(), 50, nil)

	recs := []VehicleRecord{
		{ExternalID: "recV1", VIN: "VIN-1"},
		{ExternalID: "recBAD", VIN: "VIN-BAD"},
		{ExternalID: "recV3", VIN: "VIN-3"},
	}

	res := en.Vehicles(context.Background(), recs)
	if res.Imported != 2 || res.Skipped != 1 {
		t.Fatalf("imported=%d skipped=%d", res.Imported, res.Skipped)
	}
	if len(res.Errors) != 1 {
		t.Fatalf("expected 1 record error, got %v", res.Errors)
	}
	if res.Errors[0].ExternalID != "recBAD" {
		t.Fatalf("error should name the failed record, got %q", res.Errors[0].ExternalID)
	}
	if len(fs.vehicles) != 2 {
		t.Fatalf("expected failing record skipped, got %d rows", len(fs.vehicles))
	}
}

func TestReconcileDepartmentsMergeByName(t *testing.T) {
	fs := newFakeStores()
	en := NewEngine(fs.stores(), 50, nil)
	ctx := context.Background()

	en.Departments(ctx, []DepartmentRecord{{ExternalID: "recD1", Name: "Logistics"}})
	// 源端换了记录标识，但名字没变：按名字归并，不插第二行
	res := en.Departments(ctx, []DepartmentRecord{{ExternalID: "recD1-new", Name: "Logistics", Manager: "Pat"}})
	if res.Imported != 1 {
		t.Fatalf("imported=%d, errors=%v", res.Imported, res.Errors)
	}
	if len(fs.departments) != 1 {
		t.Fatalf("expected merge by name, got %d rows", len(fs.departments))
	}
	for _, d := range fs.departments {
		if d.ExternalID != "recD1-new" || d.Manager != "Pat" {
			t.Fatalf("expected row rebound to new external id, got %+v", d)
		}
	}
}

func TestReconcileMembersMergeResolverRow(t *testing.T) {
	fs := newFakeStores()
	en := NewEngine(fs.stores(), 50, nil)
	ctx := context.Background()

	// 车辆对账先按邮箱兜底创建了司机行
	en.Vehicles(ctx, []VehicleRecord{
		{ExternalID: "recV1", VIN: "VIN-1", DriverName: "Jane", DriverEmail: "jane@example.com"},
	})
	if len(fs.members) != 1 {
		t.Fatalf("expected resolver-created member, got %d", len(fs.members))
	}

	// 成员表同步到同一邮箱：按邮箱归并并补上源端标识
	res := en.Members(ctx, []MemberRecord{
		{ExternalID: "recM1", Name: "Jane Doe", Email: "jane@example.com", Role: member.RoleDriver, Department: "Logistics"},
	})
	if res.Imported != 1 {
		t.Fatalf("imported=%d, errors=%v", res.Imported, res.Errors)
	}
	if len(fs.members) != 1 {
		t.Fatalf("expected merge into resolver row, got %d rows", len(fs.members))
	}
	for _, m := range fs.members {
		if m.ExternalID != "recM1" || m.Department != "Logistics" {
			t.Fatalf("expected row enriched from member table, got %+v", m)
		}
	}
}

func TestReconcileServiceRecordVehicleRef(t *testing.T) {
	fs := newFakeStores()
	en := NewEngine(fs.stores(), 50, nil)
	ctx := context.Background()

	en.Vehicles(ctx, []VehicleRecord{{ExternalID: "recV1", VIN: "VIN-1"}})

	res := en.ServiceRecords(ctx, []MaintenanceRecord{
		{ExternalID: "recS1", VehicleExternalID: "recV1", Description: "oil change", Status: maintenance.StatusCompleted},
		{ExternalID: "recS2", VehicleExternalID: "recMISSING", Description: "brakes", Status: maintenance.StatusCompleted},
		{ExternalID: "recS3", Description: "unlinked inspection", Status: maintenance.StatusCompleted},
	})

	// 空引用放行，悬空引用算该条错误
	if res.Imported != 2 || res.Skipped != 1 {
		t.Fatalf("imported=%d skipped=%d errors=%v", res.Imported, res.Skipped, res.Errors)
	}
	if len(res.Errors) != 1 || res.Errors[0].ExternalID != "recS2" {
		t.Fatalf("expected dangling ref error for recS2, got %v", res.Errors)
	}
	if !strings.Contains(res.Errors[0].Message, "recMISSING") {
		t.Fatalf("error should name the missing vehicle, got %q", res.Errors[0].Message)
	}

	linked, _ := fs.stores().ServiceRecords.FindByExternalID(ctx, "recS1")
	if linked == nil || linked.VehicleID == "" {
		t.Fatalf("expected recS1 linked to vehicle, got %+v", linked)
	}
	unlinked, _ := fs.stores().ServiceRecords.FindByExternalID(ctx, "recS3")
	if unlinked == nil || unlinked.VehicleID != "" {
		t.Fatalf("expected recS3 stored without vehicle link, got %+v", unlinked)
	}
}

func TestReconcileErrorListBounded(t *testing.T) {
	fs := newFakeStores()
	en := NewEngine(fs.stores(), 2, nil)

	// 全部缺少外部标识：每条都失败，但错误列表封顶
	recs := make([]RepairRecord, 5)
	res := en.Repairs(context.Background(), recs)
	if res.Skipped != 5 {
		t.Fatalf("skipped=%d", res.Skipped)
	}
	if len(res.Errors) != 2 {
		t.Fatalf("expected error list capped at 2, got %d", len(res.Errors))
	}
}
