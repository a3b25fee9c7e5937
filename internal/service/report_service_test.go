package service

import (
	"context"
	"testing"

	"retail_price_v1_202608/internal/model"
	"retail_price_v1_202608/internal/repository"
)

// 未配置 Redis 时缓存为 nil，读路径必须照常直查
func TestReportService_NilCache(t *testing.T) {
	ingest, db := setupIngestTest(t)
	ctx := context.Background()

	svc := NewReportService(repository.NewReportRepository(db), nil)

	result, err := ingest.IngestBatch(ctx,
		&model.Store{Code: "coto", Name: "Coto Digital"},
		captureAt, sampleRecords())
	if err != nil {
		t.Fatalf("造数失败: %v", err)
	}

	rows, err := svc.CurrentCatalog(ctx, result.StoreID)
	if err != nil {
		t.Fatalf("CurrentCatalog() error = %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("目录行数 = %d, want 2", len(rows))
	}

	comparison, err := svc.CrossStoreComparison(ctx, "7791234567890")
	if err != nil {
		t.Fatalf("CrossStoreComparison() error = %v", err)
	}
	if len(comparison) != 1 {
		t.Errorf("比价行数 = %d, want 1", len(comparison))
	}

	trend, err := svc.CategoryTrend(ctx)
	if err != nil {
		t.Fatalf("CategoryTrend() error = %v", err)
	}
	if len(trend) == 0 {
		t.Error("趋势不应为空")
	}
}
