package task

import (
	"context"
	"log"

	"retail_price_v1_202608/internal/repository"
	"retail_price_v1_202608/internal/service"
	"retail_price_v1_202608/pkg/database"
)

// ==================== TaskManager 后台任务管理器 ====================

// TaskManager 统一管理后台任务
// 管理范围：数据保养（归一化/保留）、变动推送
// 不包含：抓取进程的调度（外部协作者，各自独立跑）
type TaskManager struct {
	maintenanceTask *MaintenanceTask
	reportTask      *ReportTask
}

// TaskManagerDeps 任务管理器依赖
type TaskManagerDeps struct {
	SnapshotRepo  repository.SnapshotRepository
	CapacityProbe database.CapacityProbe
	ReportService *service.ReportService
	NotifyService *service.NotifyService
}

// TaskManagerConfig 任务管理器配置
type TaskManagerConfig struct {
	// 数据保养
	MaintenanceEnabled bool
	Maintenance        *MaintenanceConfig

	// 变动推送
	ReportEnabled bool
	ReportSpec    string
}

// DefaultConfig 默认配置
func DefaultConfig() *TaskManagerConfig {
	return &TaskManagerConfig{
		MaintenanceEnabled: true,
		Maintenance:        DefaultMaintenanceConfig(),
		ReportEnabled:      true,
	}
}

// NewTaskManager 创建任务管理器
func NewTaskManager(deps *TaskManagerDeps, cfg *TaskManagerConfig) *TaskManager {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	tm := &TaskManager{}

	if cfg.MaintenanceEnabled && deps.SnapshotRepo != nil && deps.CapacityProbe != nil {
		tm.maintenanceTask = NewMaintenanceTask(deps.SnapshotRepo, deps.CapacityProbe, cfg.Maintenance)
	}

	if cfg.ReportEnabled && deps.ReportService != nil &&
		deps.NotifyService != nil && deps.NotifyService.Enabled() {
		tm.reportTask = NewReportTask(deps.ReportService, deps.NotifyService)
		if cfg.ReportSpec != "" {
			tm.reportTask.SetSpec(cfg.ReportSpec)
		}
	}

	return tm
}

// ==================== 生命周期管理 ====================

// Start 启动所有任务
func (tm *TaskManager) Start() {
	log.Println("[TaskManager] 正在启动后台任务...")

	if tm.maintenanceTask != nil {
		tm.maintenanceTask.Start()
	}
	if tm.reportTask != nil {
		tm.reportTask.Start()
	}

	log.Println("[TaskManager] 后台任务已全部启动")
}

// Stop 停止所有任务
func (tm *TaskManager) Stop() {
	log.Println("[TaskManager] 正在停止后台任务...")

	if tm.maintenanceTask != nil {
		tm.maintenanceTask.Stop()
	}
	if tm.reportTask != nil {
		tm.reportTask.Stop()
	}

	log.Println("[TaskManager] 后台任务已全部停止")
}

// ==================== 手动触发接口 ====================

// TriggerMaintenance 手动跑一轮保养
func (tm *TaskManager) TriggerMaintenance(ctx context.Context) error {
	if tm.maintenanceTask == nil {
		return ErrTaskDisabled
	}
	return tm.maintenanceTask.RunOnce(ctx)
}

// TriggerReportPush 手动推送变动流水
func (tm *TaskManager) TriggerReportPush(ctx context.Context) error {
	if tm.reportTask == nil {
		return ErrTaskDisabled
	}
	tm.reportTask.PushNow(ctx)
	return nil
}

// ==================== 状态查询 ====================

// Status 获取任务状态
func (tm *TaskManager) Status() map[string]bool {
	return map[string]bool{
		"maintenance": tm.maintenanceTask != nil,
		"report":      tm.reportTask != nil,
	}
}

// ==================== 错误定义 ====================

type TaskError string

func (e TaskError) Error() string { return string(e) }

const (
	ErrTaskDisabled TaskError = "task is disabled"
)
