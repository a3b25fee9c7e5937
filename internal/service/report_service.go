package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"retail_price_v1_202608/internal/model"
	"retail_price_v1_202608/internal/repository"
	"retail_price_v1_202608/pkg/cache"
)

// ==================== ReportService 报表服务 ====================

// ReportService 读路径：报表查询 + 可选 Redis 读穿缓存
// 读的是一个持续追加的日志，接受最终一致：批次落地一半时读到
// 部分新快照是允许的，不等全部门店齐活
type ReportService struct {
	reportRepo repository.ReportRepository
	cache      *cache.Cache // nil 时直查
}

// NewReportService 创建报表服务
func NewReportService(reportRepo repository.ReportRepository, c *cache.Cache) *ReportService {
	return &ReportService{reportRepo: reportRepo, cache: c}
}

// LatestSnapshots 每个门店商品的最新快照
func (s *ReportService) LatestSnapshots(ctx context.Context, f repository.LatestFilter) ([]model.PriceSnapshot, error) {
	return s.reportRepo.LatestSnapshots(ctx, f)
}

// CurrentCatalog 单店现价目录
func (s *ReportService) CurrentCatalog(ctx context.Context, storeID int64) ([]repository.CatalogRow, error) {
	key := fmt.Sprintf("report:catalog:%d", storeID)
	var rows []repository.CatalogRow
	if s.cache.GetJSON(ctx, key, &rows) {
		return rows, nil
	}

	rows, err := s.reportRepo.CurrentCatalog(ctx, storeID)
	if err != nil {
		return nil, err
	}
	s.cache.SetJSON(ctx, key, rows)
	return rows, nil
}

// CrossStoreComparison 同一 EAN 各门店现价
func (s *ReportService) CrossStoreComparison(ctx context.Context, ean string) ([]repository.ComparisonRow, error) {
	key := "report:compare:" + strings.TrimSpace(ean)
	var rows []repository.ComparisonRow
	if s.cache.GetJSON(ctx, key, &rows) {
		return rows, nil
	}

	rows, err := s.reportRepo.CrossStoreComparison(ctx, ean)
	if err != nil {
		return nil, err
	}
	s.cache.SetJSON(ctx, key, rows)
	return rows, nil
}

// CategoryTrend 品类月度均价
func (s *ReportService) CategoryTrend(ctx context.Context) ([]repository.TrendRow, error) {
	const key = "report:trend"
	var rows []repository.TrendRow
	if s.cache.GetJSON(ctx, key, &rows) {
		return rows, nil
	}

	rows, err := s.reportRepo.CategoryTrend(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.SetJSON(ctx, key, rows)
	return rows, nil
}

// PriceChanges 价格变动流水；随时在动，不走缓存
func (s *ReportService) PriceChanges(ctx context.Context, storeID int64, since time.Time) ([]repository.ChangeRow, error) {
	return s.reportRepo.PriceChanges(ctx, storeID, since)
}
