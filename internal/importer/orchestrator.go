package importer

import (
	"context"
	"fmt"
	"time"

	"github.com/opentracing/opentracing-go"

	"github.com/SmartFleetSync/SmartFleetSync/internal/common/logger"
)

// Summary 一次导入的汇总报告：每个实体类型的对账结果 + 源端整表失败原因。
// 约定：即使某张表整表失败，对应实体类型的结果也一定出现在汇总里
// （导入数为 0、错误在 SourceErrors），不会因为一张表拖垮整轮。
type Summary struct {
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`

	Departments    Result `json:"departments"`
	Vehicles       Result `json:"vehicles"`
	Members        Result `json:"members"`
	ServiceRecords Result `json:"service_records"`
	Repairs        Result `json:"repair_requests"`
	Appointments   Result `json:"appointments"`

	// 实体类型 -> 整表拉取失败原因（提取阶段记录）
	SourceErrors map[string]string `json:"source_errors,omitempty"`
}

// Orchestrator 导入编排器：对外暴露的唯一入口 RunImport。
// 提取阶段各表并发；对账阶段按依赖顺序串行——
// 后面的实体类型引用的车辆/司机必须已经在库里。
type Orchestrator struct {
	extractor *Extractor
	engine    *Engine
	health    HealthChecker
	log       logger.Logger
}

func NewOrchestrator(extractor *Extractor, engine *Engine, health HealthChecker, log logger.Logger) *Orchestrator {
	return &Orchestrator{
		extractor: extractor,
		engine:    engine,
		health:    health,
		log:       log,
	}
}

// RunImport 跑一轮完整导入。
// 唯一的致命错误是关系库整体不可达；源端的失败都降级为汇总里的数据。
// 运行中不支持取消回滚：已写入的进度保留（逐条写入，非整轮事务）。
func (o *Orchestrator) RunImport(ctx context.Context) (*Summary, error) {
	if o == nil || o.extractor == nil || o.engine == nil {
		return nil, fmt.Errorf("orchestrator not initialized")
	}

	if o.health != nil {
		if err := o.health.Ping(ctx); err != nil {
			return nil, fmt.Errorf("relational store unreachable: %w", err)
		}
	}

	start := time.Now()
	span := opentracing.GlobalTracer().StartSpan("import.run")
	defer span.Finish()
	ctx = opentracing.ContextWithSpan(ctx, span)

	if o.log != nil {
		o.log.Info("import run started")
	}

	// 提取阶段：各表并发拉取
	extractSpan, extractCtx := opentracing.StartSpanFromContext(ctx, "import.extract")
	snap := o.extractor.Extract(extractCtx)
	extractSpan.Finish()

	summary := &Summary{
		StartedAt:    start,
		SourceErrors: snap.Errors,
	}

	// 对账阶段：固定依赖顺序串行。
	// 部门先行；车辆对账会解析/创建司机并建关联；
	// 成员表随后归并补全；历史/报修/预约最后（引用车辆）。
	summary.Departments = o.reconcilePhase(ctx, "departments", func(c context.Context) Result {
		return o.engine.Departments(c, snap.Departments)
	})
	summary.Vehicles = o.reconcilePhase(ctx, "vehicles", func(c context.Context) Result {
		return o.engine.Vehicles(c, snap.Vehicles)
	})
	summary.Members = o.reconcilePhase(ctx, "members", func(c context.Context) Result {
		return o.engine.Members(c, snap.Members)
	})
	summary.ServiceRecords = o.reconcilePhase(ctx, "service_records", func(c context.Context) Result {
		return o.engine.ServiceRecords(c, snap.ServiceRecords)
	})
	summary.Repairs = o.reconcilePhase(ctx, "repair_requests", func(c context.Context) Result {
		return o.engine.Repairs(c, snap.Repairs)
	})
	summary.Appointments = o.reconcilePhase(ctx, "appointments", func(c context.Context) Result {
		return o.engine.Appointments(c, snap.Appointments)
	})

	summary.Duration = time.Since(start)
	if o.log != nil {
		o.log.WithFields(map[string]interface{}{
			"duration":      summary.Duration.String(),
			"source_errors": len(summary.SourceErrors),
		}).Info("import run finished")
	}
	return summary, nil
}

func (o *Orchestrator) reconcilePhase(ctx context.Context, name string, fn func(context.Context) Result) Result {
	span, phaseCtx := opentracing.StartSpanFromContext(ctx, "import.reconcile."+name)
	defer span.Finish()

	res := fn(phaseCtx)

	span.SetTag("imported", res.Imported)
	span.SetTag("skipped", res.Skipped)
	if o.log != nil {
		o.log.WithFields(map[string]interface{}{
			"entity":   name,
			"imported": res.Imported,
			"skipped":  res.Skipped,
		}).Info("reconcile phase finished")
	}
	return res
}
