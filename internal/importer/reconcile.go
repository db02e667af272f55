package importer

import (
	"context"
	"fmt"

	"github.com/SmartFleetSync/SmartFleetSync/internal/appointment"
	"github.com/SmartFleetSync/SmartFleetSync/internal/common/logger"
	"github.com/SmartFleetSync/SmartFleetSync/internal/department"
	"github.com/SmartFleetSync/SmartFleetSync/internal/maintenance"
	"github.com/SmartFleetSync/SmartFleetSync/internal/member"
	"github.com/SmartFleetSync/SmartFleetSync/internal/repair"
	"github.com/SmartFleetSync/SmartFleetSync/internal/vehicle"
)

// RecordError 对账阶段单条记录的失败信息。
type RecordError struct {
	ExternalID string `json:"external_id"`
	Message    string `json:"message"`
}

// Result 单个实体类型的对账结果。
// 错误列表有上限（MaxErrors），Skipped 始终是完整计数。
type Result struct {
	Imported int           `json:"imported"`
	Skipped  int           `json:"skipped"`
	Errors   []RecordError `json:"errors,omitempty"`
}

func (res *Result) fail(maxErrors int, externalID string, err error) {
	res.Skipped++
	if maxErrors <= 0 || len(res.Errors) < maxErrors {
		res.Errors = append(res.Errors, RecordError{
			ExternalID: externalID,
			Message:    err.Error(),
		})
	}
}

// Engine 对账引擎：把规范化记录合并进关系库。
// 每条记录独立处理：按 ExternalID 查到则更新、查不到则插入；
// 单条失败只记入错误列表，不中断批次，也不做重试。
// 每条记录的写入是各自独立的原子单元，整轮不包在一个事务里，
// 所以部分成功是可接受且有记录的结果。
type Engine struct {
	stores    Stores
	resolver  *Resolver
	maxErrors int
	log       logger.Logger
}

func NewEngine(stores Stores, maxErrors int, log logger.Logger) *Engine {
	return &Engine{
		stores:    stores,
		resolver:  NewResolver(stores.Members, log),
		maxErrors: maxErrors,
		log:       log,
	}
}

// Departments 对账部门。部门名是该实体的自然键：
// 源端换过记录标识时按名字归并，避免同名部门插出两行。
func (en *Engine) Departments(ctx context.Context, recs []DepartmentRecord) Result {
	var res Result
	for _, rec := range recs {
		if err := en.reconcileDepartment(ctx, rec); err != nil {
			res.fail(en.maxErrors, rec.ExternalID, err)
			continue
		}
		res.Imported++
	}
	return res
}

func (en *Engine) reconcileDepartment(ctx context.Context, rec DepartmentRecord) error {
	if rec.ExternalID == "" {
		return fmt.Errorf("department has empty external id")
	}

	existing, err := en.stores.Departments.FindByExternalID(ctx, rec.ExternalID)
	if err != nil {
		return err
	}
	if existing == nil && rec.Name != "" {
		existing, err = en.stores.Departments.FindByName(ctx, rec.Name)
		if err != nil {
			return err
		}
	}

	if existing != nil {
		existing.ExternalID = rec.ExternalID
		existing.Name = rec.Name
		existing.Description = rec.Description
		existing.Manager = rec.Manager
		existing.VehicleCount = rec.VehicleCount
		return en.stores.Departments.Update(ctx, existing)
	}

	return en.stores.Departments.Insert(ctx, &department.Department{
		ExternalID:   rec.ExternalID,
		Name:         rec.Name,
		Description:  rec.Description,
		Manager:      rec.Manager,
		VehicleCount: rec.VehicleCount,
	})
}

// Vehicles 对账车辆。副作用：解析司机自然键（必要时创建成员行），
// 并保证车辆-司机之间恰好一行关联。
func (en *Engine) Vehicles(ctx context.Context, recs []VehicleRecord) Result {
	var res Result
	for _, rec := range recs {
		if err := en.reconcileVehicle(ctx, rec); err != nil {
			res.fail(en.maxErrors, rec.ExternalID, err)
			continue
		}
		res.Imported++
	}
	return res
}

func (en *Engine) reconcileVehicle(ctx context.Context, rec VehicleRecord) error {
	if rec.ExternalID == "" {
		return fmt.Errorf("vehicle has empty external id")
	}

	driverID, err := en.resolver.ResolveDriver(ctx, rec.DriverName, rec.DriverEmail, rec.DriverPhone)
	if err != nil {
		return err
	}

	existing, err := en.stores.Vehicles.FindByExternalID(ctx, rec.ExternalID)
	if err != nil {
		return err
	}

	var vehicleID string
	if existing != nil {
		existing.Make = rec.Make
		existing.Model = rec.Model
		existing.Year = rec.Year
		existing.VIN = rec.VIN
		existing.PlateNumber = rec.PlateNumber
		existing.VehicleNumber = rec.VehicleNumber
		existing.Department = rec.Department
		existing.Status = rec.Status
		existing.Mileage = rec.Mileage
		existing.DriverID = driverID
		existing.TagExpiry = rec.TagExpiry
		existing.LoanLender = rec.LoanLender
		existing.TitleStatus = rec.TitleStatus
		existing.FirstAidFire = rec.FirstAidFire
		existing.Photos = vehicle.PhotosJoin(rec.Photos)
		if err := en.stores.Vehicles.Update(ctx, existing); err != nil {
			return err
		}
		vehicleID = existing.ID
	} else {
		v := &vehicle.Vehicle{
			ExternalID:    rec.ExternalID,
			Make:          rec.Make,
			Model:         rec.Model,
			Year:          rec.Year,
			VIN:           rec.VIN,
			PlateNumber:   rec.PlateNumber,
			VehicleNumber: rec.VehicleNumber,
			Department:    rec.Department,
			Status:        rec.Status,
			Mileage:       rec.Mileage,
			DriverID:      driverID,
			TagExpiry:     rec.TagExpiry,
			LoanLender:    rec.LoanLender,
			TitleStatus:   rec.TitleStatus,
			FirstAidFire:  rec.FirstAidFire,
			Photos:        vehicle.PhotosJoin(rec.Photos),
		}
		if err := en.stores.Vehicles.Insert(ctx, v); err != nil {
			return err
		}
		vehicleID = v.ID
	}

	if driverID != "" {
		if err := en.stores.Vehicles.EnsureDriverLink(ctx, vehicleID, driverID); err != nil {
			return err
		}
	}
	return nil
}

// Members 对账成员表。
// 行可能已经被解析器按邮箱兜底创建过（当时没有源端标识），
// 这里先按 ExternalID 找，找不到再按邮箱归并，避免同一个人两行。
func (en *Engine) Members(ctx context.Context, recs []MemberRecord) Result {
	var res Result
	for _, rec := range recs {
		if err := en.reconcileMember(ctx, rec); err != nil {
			res.fail(en.maxErrors, rec.ExternalID, err)
			continue
		}
		res.Imported++
	}
	return res
}

func (en *Engine) reconcileMember(ctx context.Context, rec MemberRecord) error {
	if rec.ExternalID == "" {
		return fmt.Errorf("member has empty external id")
	}

	existing, err := en.stores.Members.FindByExternalID(ctx, rec.ExternalID)
	if err != nil {
		return err
	}
	if existing == nil && rec.Email != "" {
		existing, err = en.stores.Members.FindByEmail(ctx, rec.Email)
		if err != nil {
			return err
		}
	}

	if existing != nil {
		existing.ExternalID = rec.ExternalID
		existing.Name = rec.Name
		existing.Email = rec.Email
		existing.Phone = rec.Phone
		existing.Role = rec.Role
		existing.Department = rec.Department
		existing.HireDate = rec.HireDate
		existing.Specialty = member.SpecialtyJoin(rec.Specialties)
		return en.stores.Members.Update(ctx, existing)
	}

	return en.stores.Members.Insert(ctx, &member.Member{
		ExternalID: rec.ExternalID,
		Name:       rec.Name,
		Email:      rec.Email,
		Phone:      rec.Phone,
		Role:       rec.Role,
		Department: rec.Department,
		HireDate:   rec.HireDate,
		Specialty:  member.SpecialtyJoin(rec.Specialties),
	})
}

// ServiceRecords 对账保养/维修历史。
// 记录引用的车辆必须已入库（编排器保证车辆先对账）。
func (en *Engine) ServiceRecords(ctx context.Context, recs []MaintenanceRecord) Result {
	var res Result
	for _, rec := range recs {
		if err := en.reconcileServiceRecord(ctx, rec); err != nil {
			res.fail(en.maxErrors, rec.ExternalID, err)
			continue
		}
		res.Imported++
	}
	return res
}

func (en *Engine) reconcileServiceRecord(ctx context.Context, rec MaintenanceRecord) error {
	if rec.ExternalID == "" {
		return fmt.Errorf("service record has empty external id")
	}

	vehicleID, err := en.resolveVehicleRef(ctx, rec.VehicleExternalID)
	if err != nil {
		return err
	}

	existing, err := en.stores.ServiceRecords.FindByExternalID(ctx, rec.ExternalID)
	if err != nil {
		return err
	}

	if existing != nil {
		existing.VehicleID = vehicleID
		existing.VehicleExternalID = rec.VehicleExternalID
		existing.ServiceDate = rec.ServiceDate
		existing.CheckedInDate = rec.CheckedInDate
		existing.CheckInMileage = rec.CheckInMileage
		existing.Cost = rec.Cost
		existing.Description = rec.Description
		existing.Status = rec.Status
		existing.NextDueDate = rec.NextDueDate
		existing.Category = rec.Category
		return en.stores.ServiceRecords.Update(ctx, existing)
	}

	return en.stores.ServiceRecords.Insert(ctx, &maintenance.ServiceRecord{
		ExternalID:        rec.ExternalID,
		VehicleID:         vehicleID,
		VehicleExternalID: rec.VehicleExternalID,
		ServiceDate:       rec.ServiceDate,
		CheckedInDate:     rec.CheckedInDate,
		CheckInMileage:    rec.CheckInMileage,
		Cost:              rec.Cost,
		Description:       rec.Description,
		Status:            rec.Status,
		NextDueDate:       rec.NextDueDate,
		Category:          rec.Category,
	})
}

// Repairs 对账报修单。报修单的车辆标识是自由文本，原样入库，不做引用解析。
func (en *Engine) Repairs(ctx context.Context, recs []RepairRecord) Result {
	var res Result
	for _, rec := range recs {
		if err := en.reconcileRepair(ctx, rec); err != nil {
			res.fail(en.maxErrors, rec.ExternalID, err)
			continue
		}
		res.Imported++
	}
	return res
}

func (en *Engine) reconcileRepair(ctx context.Context, rec RepairRecord) error {
	if rec.ExternalID == "" {
		return fmt.Errorf("repair request has empty external id")
	}

	existing, err := en.stores.Repairs.FindByExternalID(ctx, rec.ExternalID)
	if err != nil {
		return err
	}

	if existing != nil {
		existing.DriverName = rec.DriverName
		existing.DriverPhone = rec.DriverPhone
		existing.DriverEmail = rec.DriverEmail
		existing.VehicleLabel = rec.VehicleLabel
		existing.Description = rec.Description
		existing.Urgency = rec.Urgency
		existing.Status = rec.Status
		existing.Photos = vehicle.PhotosJoin(rec.Photos)
		existing.Category = rec.Category
		existing.Summary = rec.Summary
		existing.IncidentAt = rec.IncidentAt
		return en.stores.Repairs.Update(ctx, existing)
	}

	return en.stores.Repairs.Insert(ctx, &repair.RepairRequest{
		ExternalID:   rec.ExternalID,
		DriverName:   rec.DriverName,
		DriverPhone:  rec.DriverPhone,
		DriverEmail:  rec.DriverEmail,
		VehicleLabel: rec.VehicleLabel,
		Description:  rec.Description,
		Urgency:      rec.Urgency,
		Status:       rec.Status,
		Photos:       vehicle.PhotosJoin(rec.Photos),
		Category:     rec.Category,
		Summary:      rec.Summary,
		IncidentAt:   rec.IncidentAt,
	})
}

// Appointments 对账预约。
func (en *Engine) Appointments(ctx context.Context, recs []AppointmentRecord) Result {
	var res Result
	for _, rec := range recs {
		if err := en.reconcileAppointment(ctx, rec); err != nil {
			res.fail(en.maxErrors, rec.ExternalID, err)
			continue
		}
		res.Imported++
	}
	return res
}

func (en *Engine) reconcileAppointment(ctx context.Context, rec AppointmentRecord) error {
	if rec.ExternalID == "" {
		return fmt.Errorf("appointment has empty external id")
	}

	vehicleID, err := en.resolveVehicleRef(ctx, rec.VehicleExternalID)
	if err != nil {
		return err
	}

	existing, err := en.stores.Appointments.FindByExternalID(ctx, rec.ExternalID)
	if err != nil {
		return err
	}

	if existing != nil {
		existing.VehicleID = vehicleID
		existing.VehicleExternalID = rec.VehicleExternalID
		existing.CustomerName = rec.CustomerName
		existing.CustomerPhone = rec.CustomerPhone
		existing.CustomerEmail = rec.CustomerEmail
		existing.ServiceType = rec.ServiceType
		existing.ScheduledAt = rec.ScheduledAt
		existing.Status = rec.Status
		existing.Mechanic = rec.Mechanic
		existing.Notes = rec.Notes
		return en.stores.Appointments.Update(ctx, existing)
	}

	return en.stores.Appointments.Insert(ctx, &appointment.Appointment{
		ExternalID:        rec.ExternalID,
		VehicleID:         vehicleID,
		VehicleExternalID: rec.VehicleExternalID,
		CustomerName:      rec.CustomerName,
		CustomerPhone:     rec.CustomerPhone,
		CustomerEmail:     rec.CustomerEmail,
		ServiceType:       rec.ServiceType,
		ScheduledAt:       rec.ScheduledAt,
		Status:            rec.Status,
		Mechanic:          rec.Mechanic,
		Notes:             rec.Notes,
	})
}

// resolveVehicleRef 源端车辆引用 -> 车辆库端标识。
// 引用为空时返回空标识（允许无车辆关联的记录入库）；
// 引用非空但查不到车辆算该条记录的错误。
func (en *Engine) resolveVehicleRef(ctx context.Context, vehicleExternalID string) (string, error) {
	if vehicleExternalID == "" {
		return "", nil
	}
	v, err := en.stores.Vehicles.FindByExternalID(ctx, vehicleExternalID)
	if err != nil {
		return "", err
	}
	if v == nil {
		return "", fmt.Errorf("referenced vehicle %q not found in store", vehicleExternalID)
	}
	return v.ID, nil
}
