package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/SmartFleetSync/SmartFleetSync/internal/appointment"
	"github.com/SmartFleetSync/SmartFleetSync/internal/common/config"
	"github.com/SmartFleetSync/SmartFleetSync/internal/common/db"
	"github.com/SmartFleetSync/SmartFleetSync/internal/common/logger"
	"github.com/SmartFleetSync/SmartFleetSync/internal/common/tracing"
	"github.com/SmartFleetSync/SmartFleetSync/internal/department"
	"github.com/SmartFleetSync/SmartFleetSync/internal/importer"
	"github.com/SmartFleetSync/SmartFleetSync/internal/maintenance"
	"github.com/SmartFleetSync/SmartFleetSync/internal/member"
	"github.com/SmartFleetSync/SmartFleetSync/internal/repair"
	"github.com/SmartFleetSync/SmartFleetSync/internal/source/airtable"
	"github.com/SmartFleetSync/SmartFleetSync/internal/vehicle"
)

var (
	configPath = flag.String("config", "configs/import-job.json", "配置文件路径")
	consulAddr = flag.String("consul-addr", "", "Consul 地址 host:port（默认取配置文件里的 consul 段）")
	consulKey  = flag.String("consul-key", "", "从 Consul KV 加载配置的 key（设置后优先于配置文件）")
)

func main() {
	flag.Parse()

	// 加载配置（优先 Consul KV，其次本地文件）
	cfg, err := loadConfig()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// 初始化日志
	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.Path)
	if err != nil {
		panic(fmt.Sprintf("failed to init logger: %v", err))
	}

	// 初始化链路追踪（失败不阻塞导入）
	_, closer, err := tracing.InitTracer(cfg.Job.Name, cfg.Jaeger.Endpoint, cfg.Jaeger.Sampler)
	if err != nil {
		log.Warnf("failed to init tracer: %v", err)
	} else {
		defer closer.Close()
	}

	// 初始化数据库
	gormDB, err := db.NewMySQL(
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Database,
		cfg.Database.MaxIdle,
		cfg.Database.MaxOpen,
	)
	if err != nil {
		log.Fatalf("failed to init mysql: %v", err)
	}
	if err := gormDB.AutoMigrate(
		&department.Department{},
		&vehicle.Vehicle{},
		&vehicle.VehicleDriver{},
		&member.Member{},
		&maintenance.ServiceRecord{},
		&repair.RepairRequest{},
		&appointment.Appointment{},
	); err != nil {
		log.Fatalf("failed to migrate mysql schema: %v", err)
	}

	// 数据源客户端
	reader := airtable.NewClient(
		cfg.Source.BaseURL,
		cfg.Source.BaseID,
		cfg.Source.Token,
		airtable.Options{
			Timeout:       time.Duration(cfg.Source.TimeoutSeconds) * time.Second,
			RatePerSecond: cfg.Source.RatePerSecond,
			MaxFailures:   cfg.Source.BreakerMaxFail,
		},
		log,
	)

	stores := importer.Stores{
		Departments:    department.NewRepo(gormDB),
		Vehicles:       vehicle.NewRepo(gormDB),
		Members:        member.NewRepo(gormDB),
		ServiceRecords: maintenance.NewRepo(gormDB),
		Repairs:        repair.NewRepo(gormDB),
		Appointments:   appointment.NewRepo(gormDB),
		Health:         db.NewHealth(gormDB),
	}

	extractor := importer.NewExtractor(reader, cfg.Source.Tables, cfg.Job.DefaultPhoneCode, log)
	engine := importer.NewEngine(stores, cfg.Job.MaxErrors, log)
	orchestrator := importer.NewOrchestrator(extractor, engine, stores.Health, log)

	summary, err := orchestrator.RunImport(context.Background())
	if err != nil {
		log.Errorf("import failed: %v", err)
		os.Exit(1)
	}

	printSummary(summary)
}

func loadConfig() (*config.Config, error) {
	base, err := config.LoadConfig(*configPath)
	if err != nil {
		return nil, err
	}
	if *consulKey != "" {
		host, port := base.Consul.Host, base.Consul.Port
		if *consulAddr != "" {
			host, port, err = splitConsulAddr(*consulAddr)
			if err != nil {
				return nil, err
			}
		}
		return config.LoadConfigFromConsulKV(host, port, *consulKey)
	}
	return base, nil
}

func splitConsulAddr(addr string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid consul address %q: %w", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid consul port %q: %w", portStr, err)
	}
	return host, port, nil
}

// printSummary 把汇总报告打到标准输出，方便人工跑批和 cron 日志留档。
func printSummary(s *importer.Summary) {
	fmt.Println("Import finished.")
	fmt.Printf("Duration: %v\n", s.Duration.Round(time.Millisecond))
	fmt.Println()

	printResult("Departments", s.Departments)
	printResult("Vehicles", s.Vehicles)
	printResult("Members", s.Members)
	printResult("Service records", s.ServiceRecords)
	printResult("Repair requests", s.Repairs)
	printResult("Appointments", s.Appointments)

	if len(s.SourceErrors) > 0 {
		fmt.Println()
		fmt.Println("Source table failures:")
		for table, msg := range s.SourceErrors {
			fmt.Printf("  - %s: %s\n", table, msg)
		}
	}
}

func printResult(label string, res importer.Result) {
	fmt.Printf("%-16s imported=%d skipped=%d\n", label, res.Imported, res.Skipped)
	for _, e := range res.Errors {
		fmt.Printf("    ! %s: %s\n", e.ExternalID, e.Message)
	}
}
