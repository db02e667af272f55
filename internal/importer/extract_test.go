package importer

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/SmartFleetSync/SmartFleetSync/internal/common/config"
	"github.com/SmartFleetSync/SmartFleetSync/internal/repair"
	"github.com/SmartFleetSync/SmartFleetSync/internal/source"
	"github.com/SmartFleetSync/SmartFleetSync/internal/vehicle"
)

// fakeReader 内存 TableReader：表名 -> 记录列表；failTables 里的表整表失败。
type fakeReader struct {
	tables     map[string][]source.Record
	failTables map[string]bool
}

func (f *fakeReader) ListRecords(_ context.Context, table string) ([]source.Record, error) {
	if f.failTables[table] {
		return nil, fmt.Errorf("source auth failed: status=401")
	}
	return f.tables[table], nil
}

func testTables() config.TablesConfig {
	return config.TablesConfig{
		Vehicles:       "Vehicles",
		Departments:    "Departments",
		ServiceRecords: "Service Records",
		Members:        "Members",
		RepairRequests: "Repair Requests",
		Appointments:   "Appointments",
	}
}

func TestExtractVehicles(t *testing.T) {
	reader := &fakeReader{tables: map[string][]source.Record{
		"Vehicles": {
			{
				ID: "rec001",
				Fields: map[string]interface{}{
					"Make":            "Ford",
					"Model":           []interface{}{"Transit"}, // 单元素数组代替标量
					"Year":            float64(2021),
					"VIN":             "1FTBW2CM1HKA12345",
					"License Plate":   "ABC-123",
					"Status":          "In Service",
					"Current Mileage": float64(120345.5),
					"Driver Email":    "Jane.Doe@Example.com",
					"Driver Phone":    "(555) 123-4567",
					"Photos": []interface{}{
						map[string]interface{}{"url": "https://img.example.com/1.jpg"},
					},
				},
			},
			{
				// VIN 缺失、年份缺失、里程为负：全部用默认/合成值补齐，不丢记录
				ID: "rec123",
				Fields: map[string]interface{}{
					"Make":            "Chevy",
					"VIN":             "",
					"Current Mileage": float64(-50),
				},
			},
		},
	}}

	e := NewExtractor(reader, testTables(), "+1", nil)
	e.now = func() time.Time { return time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC) }

	recs, err := e.Vehicles(context.Background())
	if err != nil {
		t.Fatalf("Vehicles: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}

	first := recs[0]
	if first.ExternalID != "rec001" {
		t.Fatalf("unexpected external id: %q", first.ExternalID)
	}
	if first.Model != "Transit" {
		t.Fatalf("expected array-of-one scalar, got %q", first.Model)
	}
	if first.Status != vehicle.StatusInService {
		t.Fatalf("unexpected status: %q", first.Status)
	}
	if first.DriverEmail != "jane.doe@example.com" {
		t.Fatalf("unexpected driver email: %q", first.DriverEmail)
	}
	if first.DriverPhone != "+15551234567" {
		t.Fatalf("unexpected driver phone: %q", first.DriverPhone)
	}
	if len(first.Photos) != 1 {
		t.Fatalf("unexpected photos: %v", first.Photos)
	}

	second := recs[1]
	if second.VIN == "" {
		t.Fatalf("expected synthesized VIN, got empty")
	}
	if second.VIN != "VIN-rec123" {
		t.Fatalf("expected VIN derived from external id, got %q", second.VIN)
	}
	if second.Year != 2026 {
		t.Fatalf("expected current year default, got %d", second.Year)
	}
	if second.Mileage != 0 {
		t.Fatalf("expected non-negative mileage, got %v", second.Mileage)
	}
	if second.Status != vehicle.StatusActive {
		t.Fatalf("expected default status active, got %q", second.Status)
	}
}

func TestExtractRepairRequests(t *testing.T) {
	reader := &fakeReader{tables: map[string][]source.Record{
		"Repair Requests": {
			{
				ID: "recR1",
				Fields: map[string]interface{}{
					"Urgency":                      "low",
					"Requires Immediate Attention": true,
					"Current Status":               "resolved",
					"Status":                       "open",
					"Vehicle Number":               "",
					"License Plate":                "XYZ-999",
				},
			},
		},
	}}

	e := NewExtractor(reader, testTables(), "+1", nil)
	recs, err := e.RepairRequests(context.Background())
	if err != nil {
		t.Fatalf("RepairRequests: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}

	rec := recs[0]
	// “需要立即处理”标志覆盖文本紧急程度
	if rec.Urgency != repair.UrgencyCritical {
		t.Fatalf("expected critical urgency, got %q", rec.Urgency)
	}
	// 权威状态列的完结信号赢过泛化状态列
	if rec.Status != repair.StatusCompleted {
		t.Fatalf("expected completed status, got %q", rec.Status)
	}
	// 车辆标识按候选列优先级取第一个非空值
	if rec.VehicleLabel != "XYZ-999" {
		t.Fatalf("expected plate as vehicle label, got %q", rec.VehicleLabel)
	}
}

func TestExtractIsolatesTableFailure(t *testing.T) {
	reader := &fakeReader{
		tables: map[string][]source.Record{
			"Departments": {
				{ID: "recD1", Fields: map[string]interface{}{"Name": "Logistics"}},
			},
		},
		failTables: map[string]bool{"Vehicles": true},
	}

	e := NewExtractor(reader, testTables(), "+1", nil)
	snap := e.Extract(context.Background())

	if len(snap.Departments) != 1 {
		t.Fatalf("expected departments extracted despite vehicle failure, got %d", len(snap.Departments))
	}
	if len(snap.Vehicles) != 0 {
		t.Fatalf("expected empty vehicle list, got %d", len(snap.Vehicles))
	}
	if _, ok := snap.Errors["vehicles"]; !ok {
		t.Fatalf("expected vehicle fetch failure recorded, got %v", snap.Errors)
	}
	if snap.Counts["departments"] != 1 {
		t.Fatalf("unexpected counts: %v", snap.Counts)
	}
}
