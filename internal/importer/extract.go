package importer

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/SmartFleetSync/SmartFleetSync/internal/appointment"
	"github.com/SmartFleetSync/SmartFleetSync/internal/common/config"
	"github.com/SmartFleetSync/SmartFleetSync/internal/common/logger"
	"github.com/SmartFleetSync/SmartFleetSync/internal/maintenance"
	"github.com/SmartFleetSync/SmartFleetSync/internal/member"
	"github.com/SmartFleetSync/SmartFleetSync/internal/repair"
	"github.com/SmartFleetSync/SmartFleetSync/internal/source"
	"github.com/SmartFleetSync/SmartFleetSync/internal/vehicle"
)

// 规范化实体记录：提取阶段的输出，尚未写库。
// 每条记录都带源端稳定标识 ExternalID（对账时的去重键）。

type DepartmentRecord struct {
	ExternalID   string
	Name         string
	Description  string
	Manager      string
	VehicleCount int
}

type VehicleRecord struct {
	ExternalID    string
	Make          string
	Model         string
	Year          int
	VIN           string // 非空：源端缺失时由 ExternalID 合成
	PlateNumber   string
	VehicleNumber string
	Department    string
	Status        vehicle.Status
	Mileage       float64
	DriverName    string
	DriverEmail   string // 司机自然键
	DriverPhone   string
	TagExpiry     string
	LoanLender    string
	TitleStatus   string
	FirstAidFire  bool
	Photos        []string
}

type MemberRecord struct {
	ExternalID  string
	Name        string
	Email       string
	Phone       string
	Role        member.Role
	Department  string
	HireDate    string
	Specialties []string
}

type MaintenanceRecord struct {
	ExternalID        string
	VehicleExternalID string
	ServiceDate       string
	CheckedInDate     string
	CheckInMileage    float64
	Cost              float64
	Description       string
	Status            maintenance.Status
	NextDueDate       string
	Category          string
}

type RepairRecord struct {
	ExternalID   string
	DriverName   string
	DriverPhone  string
	DriverEmail  string
	VehicleLabel string
	Description  string
	Urgency      repair.Urgency
	Status       repair.Status
	Photos       []string
	Category     string
	Summary      string
	IncidentAt   string
}

type AppointmentRecord struct {
	ExternalID        string
	VehicleExternalID string
	CustomerName      string
	CustomerPhone     string
	CustomerEmail     string
	ServiceType       string
	ScheduledAt       string
	Status            appointment.Status
	Mechanic          string
	Notes             string
}

// Extractor 逐表读取源端原始记录并做字段规范化。
// 各实体的提取互相独立，由 Snapshot 并发调度。
type Extractor struct {
	reader    source.TableReader
	tables    config.TablesConfig
	phoneCode string
	log       logger.Logger
	now       func() time.Time
}

func NewExtractor(reader source.TableReader, tables config.TablesConfig, phoneCode string, log logger.Logger) *Extractor {
	return &Extractor{
		reader:    reader,
		tables:    tables,
		phoneCode: phoneCode,
		log:       log,
		now:       time.Now,
	}
}

// Departments 提取部门表。
func (e *Extractor) Departments(ctx context.Context) ([]DepartmentRecord, error) {
	records, err := e.reader.ListRecords(ctx, e.tables.Departments)
	if err != nil {
		return nil, err
	}
	out := make([]DepartmentRecord, 0, len(records))
	for _, r := range records {
		f := r.Fields
		out = append(out, DepartmentRecord{
			ExternalID:   r.ID,
			Name:         PickFirst(f, "Name", "Department Name", "name"),
			Description:  PickFirst(f, "Description", "Notes", "description"),
			Manager:      PickFirst(f, "Manager", "Department Manager", "manager"),
			VehicleCount: AsInt(PickRaw(f, "Vehicle Count", "Vehicles", "vehicle_count")),
		})
	}
	return out, nil
}

// Vehicles 提取车辆表。
// 记录缺字段时不丢弃，用默认值/合成值补齐（VIN 保证非空，年份默认当年）。
func (e *Extractor) Vehicles(ctx context.Context) ([]VehicleRecord, error) {
	records, err := e.reader.ListRecords(ctx, e.tables.Vehicles)
	if err != nil {
		return nil, err
	}
	out := make([]VehicleRecord, 0, len(records))
	for _, r := range records {
		f := r.Fields

		vin := PickFirst(f, "VIN", "VIN Number", "vin")
		if vin == "" {
			// VIN 不允许为空，用源端记录标识合成一个可追溯的占位值
			vin = "VIN-" + r.ID
		}

		year := AsInt(PickRaw(f, "Year", "Model Year", "year"))
		if year <= 0 {
			year = e.now().Year()
		}

		mileage := AsFloat(PickRaw(f, "Current Mileage", "Mileage", "Odometer", "mileage"))
		if mileage < 0 {
			mileage = 0
		}

		out = append(out, VehicleRecord{
			ExternalID:    r.ID,
			Make:          PickFirst(f, "Make", "Vehicle Make", "make"),
			Model:         PickFirst(f, "Model", "Vehicle Model", "model"),
			Year:          year,
			VIN:           vin,
			PlateNumber:   PickFirst(f, "License Plate", "Plate", "license_plate"),
			VehicleNumber: PickFirst(f, "Vehicle Number", "Unit Number", "Number"),
			Department:    PickFirst(f, "Department", "Dept", "department"),
			Status:        ClassifyVehicleStatus(PickFirst(f, "Status", "Service Status", "status")),
			Mileage:       mileage,
			DriverName:    PickFirst(f, "Driver", "Driver Name", "Assigned Driver"),
			DriverEmail:   NormalizeEmail(PickRaw(f, "Driver Email", "driver_email")),
			DriverPhone:   NormalizePhone(PickRaw(f, "Driver Phone", "driver_phone"), e.phoneCode),
			TagExpiry:     NormalizeDate(PickRaw(f, "Tag Expiry", "Tag Expiration", "Registration Expiry")),
			LoanLender:    PickFirst(f, "Loan Lender", "Lender"),
			TitleStatus:   PickFirst(f, "Title", "Title Status"),
			FirstAidFire:  AsBool(PickRaw(f, "First Aid/Fire", "First Aid & Fire", "first_aid_fire")),
			Photos:        PhotoURLs(PickRaw(f, "Photos", "Images", "Pictures")),
		})
	}
	return out, nil
}

// Members 提取成员（司机/技师/管理员）表。
func (e *Extractor) Members(ctx context.Context) ([]MemberRecord, error) {
	records, err := e.reader.ListRecords(ctx, e.tables.Members)
	if err != nil {
		return nil, err
	}
	out := make([]MemberRecord, 0, len(records))
	for _, r := range records {
		f := r.Fields
		out = append(out, MemberRecord{
			ExternalID:  r.ID,
			Name:        PickFirst(f, "Name", "Full Name", "name"),
			Email:       NormalizeEmail(PickRaw(f, "Email", "Email Address", "email")),
			Phone:       NormalizePhone(PickRaw(f, "Phone", "Phone Number", "phone"), e.phoneCode),
			Role:        ClassifyMemberRole(PickFirst(f, "Role", "Position", "Title", "role")),
			Department:  PickFirst(f, "Department", "Dept", "department"),
			HireDate:    NormalizeDate(PickRaw(f, "Hire Date", "Hired", "hire_date")),
			Specialties: splitList(PickRaw(f, "Specializations", "Specialties", "Skills")),
		})
	}
	return out, nil
}

// ServiceRecords 提取保养/维修历史表。
func (e *Extractor) ServiceRecords(ctx context.Context) ([]MaintenanceRecord, error) {
	records, err := e.reader.ListRecords(ctx, e.tables.ServiceRecords)
	if err != nil {
		return nil, err
	}
	out := make([]MaintenanceRecord, 0, len(records))
	for _, r := range records {
		f := r.Fields
		cost := AsFloat(PickRaw(f, "Approximate Cost", "Cost", "cost"))
		if cost < 0 {
			cost = 0
		}
		out = append(out, MaintenanceRecord{
			ExternalID:        r.ID,
			VehicleExternalID: AsString(PickRaw(f, "Vehicle", "Vehicle Record", "vehicle")),
			ServiceDate:       NormalizeDate(PickRaw(f, "Service Date", "Date", "service_date")),
			CheckedInDate:     NormalizeDate(PickRaw(f, "Checked In", "Check-in Date", "checked_in")),
			CheckInMileage:    AsFloat(PickRaw(f, "Check-in Mileage", "Mileage", "mileage")),
			Cost:              cost,
			Description:       PickFirst(f, "Repair Description", "Description", "Work Done"),
			Status:            ClassifyServiceStatus(PickFirst(f, "Status", "status")),
			NextDueDate:       NormalizeDate(PickRaw(f, "Next Service Due", "Next Due", "next_due")),
			Category:          PickFirst(f, "Classification", "Category", "Tag"),
		})
	}
	return out, nil
}

// RepairRequests 提取报修表。
// 状态散落在最多四个冗余列里，按权威程度从高到低交给分类器。
func (e *Extractor) RepairRequests(ctx context.Context) ([]RepairRecord, error) {
	records, err := e.reader.ListRecords(ctx, e.tables.RepairRequests)
	if err != nil {
		return nil, err
	}
	out := make([]RepairRecord, 0, len(records))
	for _, r := range records {
		f := r.Fields

		requiresImmediate := AsBool(PickRaw(f, "Requires Immediate Attention", "Immediate Attention", "requires_immediate_attention"))
		urgencyText := PickFirst(f, "Urgency", "Priority", "urgency")

		out = append(out, RepairRecord{
			ExternalID:  r.ID,
			DriverName:  PickFirst(f, "Driver Name", "Name", "Reported By"),
			DriverPhone: NormalizePhone(PickRaw(f, "Driver Phone", "Phone", "phone"), e.phoneCode),
			DriverEmail: NormalizeEmail(PickRaw(f, "Driver Email", "Email", "email")),
			// 车辆标识可能出现在多个候选列里，按优先级取第一个非空值
			VehicleLabel: PickFirst(f, "Vehicle", "Vehicle Number", "Vehicle Name", "License Plate"),
			Description:  PickFirst(f, "Description", "Issue", "Problem Description"),
			Urgency:      ClassifyRepairUrgency(urgencyText, requiresImmediate),
			Status: ClassifyRepairStatus(
				PickFirst(f, "Current Status", "current_status"),
				PickFirst(f, "Booking Status", "booking_status"),
				PickFirst(f, "Work Status", "work_status"),
				PickFirst(f, "Status", "status"),
			),
			Photos:     PhotoURLs(PickRaw(f, "Photos", "Images", "Attachments")),
			Category:   PickFirst(f, "Classification", "Category"),
			Summary:    PickFirst(f, "Summary", "AI Summary"),
			IncidentAt: NormalizeDateTime(PickRaw(f, "Incident Date", "Date/Time", "Reported At")),
		})
	}
	return out, nil
}

// Appointments 提取预约表。
func (e *Extractor) Appointments(ctx context.Context) ([]AppointmentRecord, error) {
	records, err := e.reader.ListRecords(ctx, e.tables.Appointments)
	if err != nil {
		return nil, err
	}
	out := make([]AppointmentRecord, 0, len(records))
	for _, r := range records {
		f := r.Fields
		out = append(out, AppointmentRecord{
			ExternalID:        r.ID,
			VehicleExternalID: AsString(PickRaw(f, "Vehicle", "Vehicle Record", "vehicle")),
			CustomerName:      PickFirst(f, "Customer Name", "Customer", "Name"),
			CustomerPhone:     NormalizePhone(PickRaw(f, "Customer Phone", "Phone", "phone"), e.phoneCode),
			CustomerEmail:     NormalizeEmail(PickRaw(f, "Customer Email", "Email", "email")),
			ServiceType:       PickFirst(f, "Service Type", "Service", "Type"),
			ScheduledAt:       NormalizeDateTime(PickRaw(f, "Scheduled At", "Appointment Date", "Date/Time")),
			Status:            ClassifyAppointmentStatus(PickFirst(f, "Status", "status")),
			Mechanic:          PickFirst(f, "Assigned Mechanic", "Mechanic", "Technician"),
			Notes:             PickFirst(f, "Notes", "Comments", "notes"),
		})
	}
	return out, nil
}

// splitList 把逗号分隔文本或数组解析成字符串列表。
func splitList(raw interface{}) []string {
	if list, ok := raw.([]interface{}); ok {
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s := AsString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	s := AsString(raw)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
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

// Snapshot 一次提取快照：所有实体列表 + 各表计数和整表拉取失败原因。
type Snapshot struct {
	Departments    []DepartmentRecord
	Vehicles       []VehicleRecord
	Members        []MemberRecord
	ServiceRecords []MaintenanceRecord
	Repairs        []RepairRecord
	Appointments   []AppointmentRecord

	Counts map[string]int    // 实体类型 -> 提取条数
	Errors map[string]string // 实体类型 -> 整表拉取失败原因
}

// Extract 并发跑所有实体提取器并收集结果。
// 各提取器之间没有共享可变状态，固定扇出，不需要动态协程池；
// 某张表整表失败只记录原因，不影响其他表。
func (e *Extractor) Extract(ctx context.Context) *Snapshot {
	snap := &Snapshot{
		Counts: make(map[string]int),
		Errors: make(map[string]string),
	}

	var mu sync.Mutex
	var wg sync.WaitGroup

	run := func(name string, fn func() (int, error)) {
		defer wg.Done()
		count, err := fn()
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			snap.Errors[name] = err.Error()
			if e.log != nil {
				e.log.WithFields(map[string]interface{}{
					"entity": name,
					"error":  err.Error(),
				}).Warn("source table fetch failed, importing empty list")
			}
			return
		}
		snap.Counts[name] = count
	}

	wg.Add(6)
	go run("departments", func() (int, error) {
		recs, err := e.Departments(ctx)
		snap.Departments = recs
		return len(recs), err
	})
	go run("vehicles", func() (int, error) {
		recs, err := e.Vehicles(ctx)
		snap.Vehicles = recs
		return len(recs), err
	})
	go run("members", func() (int, error) {
		recs, err := e.Members(ctx)
		snap.Members = recs
		return len(recs), err
	})
	go run("service_records", func() (int, error) {
		recs, err := e.ServiceRecords(ctx)
		snap.ServiceRecords = recs
		return len(recs), err
	})
	go run("repair_requests", func() (int, error) {
		recs, err := e.RepairRequests(ctx)
		snap.Repairs = recs
		return len(recs), err
	})
	go run("appointments", func() (int, error) {
		recs, err := e.Appointments(ctx)
		snap.Appointments = recs
		return len(recs), err
	})
	wg.Wait()

	return snap
}
