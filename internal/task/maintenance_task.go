package task

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"retail_price_v1_202608/internal/repository"
	"retail_price_v1_202608/pkg/database"
)

// ==================== MaintenanceTask 数据保养任务 ====================

// MaintenanceConfig 保养任务配置
type MaintenanceConfig struct {
	// 归一化：每 30 分钟
	NormalizeSpec string
	// 保留检查：每日凌晨 4 点
	RetentionSpec string

	// 体积阈值（字节），超过才按龄删除
	SizeThresholdBytes int64
	// 保留窗口（月）
	RetentionMonths int
	// 单批删除行数
	DeleteBatchSize int
}

// DefaultMaintenanceConfig 默认配置
func DefaultMaintenanceConfig() *MaintenanceConfig {
	return &MaintenanceConfig{
		NormalizeSpec:      "0 */30 * * * *",
		RetentionSpec:      "0 0 4 * * *",
		SizeThresholdBytes: 10 << 30, // 10 GB
		RetentionMonths:    6,
		DeleteBatchSize:    50000,
	}
}

// MaintenanceTask 价格日志的定时保养
// 两个互相独立、可重跑的 pass，与入库进程完全解耦：
//  1. 归一化：0 价改写 NULL（部分数据源拿 0 当"没数据"）
//  2. 保留：先探测表体积，超过阈值才删保留窗口以外的快照，
//     轻载系统不会无谓丢历史
//
// 任一 pass 半途失败只是把活留给下一次唤醒，不升级为入库失败
type MaintenanceTask struct {
	snapshotRepo repository.SnapshotRepository
	probe        database.CapacityProbe
	config       *MaintenanceConfig
	cron         *cron.Cron
}

// NewMaintenanceTask 创建保养任务
func NewMaintenanceTask(
	snapshotRepo repository.SnapshotRepository,
	probe database.CapacityProbe,
	config *MaintenanceConfig,
) *MaintenanceTask {
	if config == nil {
		config = DefaultMaintenanceConfig()
	}
	return &MaintenanceTask{
		snapshotRepo: snapshotRepo,
		probe:        probe,
		config:       config,
		cron:         cron.New(cron.WithSeconds()),
	}
}

// Start 启动定时任务
func (t *MaintenanceTask) Start() {
	_, _ = t.cron.AddFunc(t.config.NormalizeSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if _, err := t.NormalizePass(ctx); err != nil {
			log.Printf("[Maintenance] 归一化失败: %v", err)
		}
	})

	_, _ = t.cron.AddFunc(t.config.RetentionSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Hour)
		defer cancel()
		if _, err := t.RetentionPass(ctx); err != nil {
			log.Printf("[Maintenance] 保留检查失败: %v", err)
		}
	})

	t.cron.Start()
	log.Printf("[Maintenance] 已启动 (归一化 %s / 保留 %s, 阈值 %.2f MB, 窗口 %d 月)",
		t.config.NormalizeSpec, t.config.RetentionSpec,
		float64(t.config.SizeThresholdBytes)/1024/1024, t.config.RetentionMonths)
}

// Stop 停止任务
func (t *MaintenanceTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	log.Println("[Maintenance] 已停止")
}

// RunOnce 手动执行一轮（两个 pass 都跑）
func (t *MaintenanceTask) RunOnce(ctx context.Context) error {
	if _, err := t.NormalizePass(ctx); err != nil {
		return err
	}
	_, err := t.RetentionPass(ctx)
	return err
}

// NormalizePass 0 价归一化，幂等（对已是 NULL 的行是 no-op）
func (t *MaintenanceTask) NormalizePass(ctx context.Context) (int64, error) {
	rows, err := t.snapshotRepo.NormalizeZeroPrices(ctx)
	if err != nil {
		return 0, err
	}
	if rows > 0 {
		log.Printf("[Maintenance] 归一化改写 %d 行 0 价为 NULL", rows)
	}
	return rows, nil
}

// RetentionPass 体积触发的按龄删除
func (t *MaintenanceTask) RetentionPass(ctx context.Context) (int64, error) {
	size, err := t.probe.TableSizeBytes(ctx, "price_snapshots")
	if err != nil {
		return 0, fmt.Errorf("%w: 容量探测失败: %v", repository.ErrRetention, err)
	}

	if size <= t.config.SizeThresholdBytes {
		log.Printf("[Maintenance] 表体积 %.2f MB 未超阈值，不删除",
			float64(size)/1024/1024)
		return 0, nil
	}

	cutoff := time.Now().AddDate(0, -t.config.RetentionMonths, 0)
	deleted, err := t.snapshotRepo.DeleteOlderThan(ctx, cutoff, t.config.DeleteBatchSize)
	if err != nil {
		// 锁竞争等失败留给下一次唤醒重试
		return deleted, fmt.Errorf("%w: 批量删除失败(已删 %d): %v", repository.ErrRetention, deleted, err)
	}

	log.Printf("[Maintenance] 体积 %.2f MB 超阈值，已删除 %d 条早于 %s 的快照",
		float64(size)/1024/1024, deleted, cutoff.Format("2006-01-02"))
	return deleted, nil
}
