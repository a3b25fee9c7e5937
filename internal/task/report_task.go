package task

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"retail_price_v1_202608/internal/service"
)

// ==================== ReportTask 变动推送任务 ====================

// ReportTask 每日把过去 24 小时的价格变动推给下游 webhook
type ReportTask struct {
	reportService *service.ReportService
	notifyService *service.NotifyService
	cron          *cron.Cron
	spec          string
}

// NewReportTask 创建推送任务
func NewReportTask(reportService *service.ReportService, notifyService *service.NotifyService) *ReportTask {
	return &ReportTask{
		reportService: reportService,
		notifyService: notifyService,
		cron:          cron.New(cron.WithSeconds()),
		spec:          "0 0 7 * * *", // 每日早 7 点
	}
}

// SetSpec 覆盖调度表达式
func (t *ReportTask) SetSpec(spec string) {
	t.spec = spec
}

// Start 启动定时任务
func (t *ReportTask) Start() {
	_, _ = t.cron.AddFunc(t.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		t.push(ctx)
	})
	t.cron.Start()
	log.Printf("[ReportTask] 已启动 (%s)", t.spec)
}

// Stop 停止任务
func (t *ReportTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	log.Println("[ReportTask] 已停止")
}

// PushNow 手动推送一次
func (t *ReportTask) PushNow(ctx context.Context) {
	t.push(ctx)
}

func (t *ReportTask) push(ctx context.Context) {
	since := time.Now().Add(-24 * time.Hour)
	changes, err := t.reportService.PriceChanges(ctx, 0, since)
	if err != nil {
		log.Printf("[ReportTask] 查询价格变动失败: %v", err)
		return
	}
	if err := t.notifyService.SendChangeFeed(ctx, changes); err != nil {
		log.Printf("[ReportTask] 推送失败: %v", err)
	}
}
