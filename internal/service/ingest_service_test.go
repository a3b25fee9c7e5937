package service

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"retail_price_v1_202608/internal/model"
	"retail_price_v1_202608/internal/repository"
)

var captureAt = time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

func setupIngestTest(t *testing.T) (*IngestService, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	err = db.AutoMigrate(
		&model.Region{}, &model.Store{}, &model.Product{},
		&model.StoreProduct{}, &model.PriceSnapshot{},
		&model.EanOverride{},
	)
	if err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}

	svc := NewIngestService(
		repository.NewStoreRepository(db),
		repository.NewProductRepository(db),
		repository.NewStoreProductRepository(db),
		repository.NewSnapshotRepository(db),
		repository.NewEanOverrideRepository(db),
	)
	return svc, db
}

func sampleRecords() []IngestRecord {
	price1, price2 := 100.0, 250.0
	return []IngestRecord{
		{
			SKU: "sku-1", EAN: "7791234567890",
			Name: "Aceite Girasol 1L", Brand: "Cocinero", Category: "almacen",
			OfferPrice: &price1, PromoTexts: []string{"2x1"},
		},
		{
			SKU: "sku-2", EAN: "7790387000123",
			Name: "Yerba 500g", Brand: "Taragui", Category: "almacen",
			ListPrice: &price2,
		},
	}
}

func TestIngestService_IngestBatch(t *testing.T) {
	svc, db := setupIngestTest(t)
	ctx := context.Background()

	result, err := svc.IngestBatch(ctx,
		&model.Store{Code: "coto", Name: "Coto Digital"},
		captureAt, sampleRecords())
	if err != nil {
		t.Fatalf("IngestBatch() error = %v", err)
	}

	if result.RunID == "" {
		t.Error("RunID 应该被分配")
	}
	if result.Inserted != 2 || result.Skipped != 0 || result.Failed != 0 {
		t.Errorf("统计 = %+v, want 新增 2", result)
	}

	var stores, products, mappings, snapshots int64
	db.Model(&model.Store{}).Count(&stores)
	db.Model(&model.Product{}).Count(&products)
	db.Model(&model.StoreProduct{}).Count(&mappings)
	db.Model(&model.PriceSnapshot{}).Count(&snapshots)
	if stores != 1 || products != 2 || mappings != 2 || snapshots != 2 {
		t.Errorf("落库行数 stores=%d products=%d mappings=%d snapshots=%d, want 1/2/2/2",
			stores, products, mappings, snapshots)
	}
}

func TestIngestService_IngestBatch_RerunSkips(t *testing.T) {
	svc, db := setupIngestTest(t)
	ctx := context.Background()
	store := &model.Store{Code: "coto", Name: "Coto Digital"}

	if _, err := svc.IngestBatch(ctx, store, captureAt, sampleRecords()); err != nil {
		t.Fatalf("首次 IngestBatch() error = %v", err)
	}

	// 同一 captured_at 重跑整批：全部按"已抓取"跳过
	result, err := svc.IngestBatch(ctx, store, captureAt, sampleRecords())
	if err != nil {
		t.Fatalf("重跑 IngestBatch() error = %v", err)
	}
	if result.Inserted != 0 || result.Skipped != 2 || result.Failed != 0 {
		t.Errorf("重跑统计 = %+v, want 跳过 2", result)
	}

	var snapshots int64
	db.Model(&model.PriceSnapshot{}).Count(&snapshots)
	if snapshots != 2 {
		t.Errorf("快照行数 = %d, want 2（重跑不追加）", snapshots)
	}
}

func TestIngestService_IngestBatch_LaterCapture(t *testing.T) {
	svc, db := setupIngestTest(t)
	ctx := context.Background()
	store := &model.Store{Code: "coto", Name: "Coto Digital"}

	if _, err := svc.IngestBatch(ctx, store, captureAt, sampleRecords()); err != nil {
		t.Fatalf("首次 IngestBatch() error = %v", err)
	}

	// 第二天再抓：快照翻倍，注册表行数不变
	result, err := svc.IngestBatch(ctx, store, captureAt.Add(24*time.Hour), sampleRecords())
	if err != nil {
		t.Fatalf("次日 IngestBatch() error = %v", err)
	}
	if result.Inserted != 2 {
		t.Errorf("次日新增 = %d, want 2", result.Inserted)
	}

	var products, mappings, snapshots int64
	db.Model(&model.Product{}).Count(&products)
	db.Model(&model.StoreProduct{}).Count(&mappings)
	db.Model(&model.PriceSnapshot{}).Count(&snapshots)
	if products != 2 || mappings != 2 {
		t.Errorf("注册表行数 products=%d mappings=%d, want 2/2", products, mappings)
	}
	if snapshots != 4 {
		t.Errorf("快照行数 = %d, want 4", snapshots)
	}
}

func TestIngestService_OverrideResolution(t *testing.T) {
	svc, db := setupIngestTest(t)
	ctx := context.Background()

	// 人工修正表里先登记 (coto, sku-raro) 的真实 EAN
	overrideRepo := repository.NewEanOverrideRepository(db)
	_, err := overrideRepo.Append(ctx, &model.EanOverride{
		StoreCode: "coto", NativeCode: "sku-raro", EAN: "7799999999999",
	})
	if err != nil {
		t.Fatalf("登记修正失败: %v", err)
	}

	// 数据源没给 EAN 的观测
	result, err := svc.IngestBatch(ctx,
		&model.Store{Code: "coto", Name: "Coto Digital"},
		captureAt,
		[]IngestRecord{{SKU: "sku-raro", Name: "Snack Importado"}})
	if err != nil {
		t.Fatalf("IngestBatch() error = %v", err)
	}
	if result.Inserted != 1 {
		t.Fatalf("统计 = %+v, want 新增 1", result)
	}

	var product model.Product
	if err := db.Where("name = ?", "Snack Importado").First(&product).Error; err != nil {
		t.Fatalf("商品未落库: %v", err)
	}
	if product.EAN == nil || *product.EAN != "7799999999999" {
		t.Errorf("EAN = %v, want 来自修正表的 7799999999999", product.EAN)
	}
}
