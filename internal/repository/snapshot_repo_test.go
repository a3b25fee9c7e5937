package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"retail_price_v1_202608/internal/model"
)

// ==================== 造数辅助 ====================

var baseCapture = time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

func f64(v float64) *float64 { return &v }
func str(s string) *string   { return &s }

// seedMapping 造一条 门店 -> 规范商品 -> 映射 链
func seedMapping(t *testing.T, db *gorm.DB, storeCode, ean, sku string) (storeID, productID, mappingID int64) {
	t.Helper()

	store := &model.Store{Code: storeCode, Name: storeCode}
	if err := db.Create(store).Error; err != nil {
		t.Fatalf("造门店失败: %v", err)
	}

	product := &model.Product{EAN: str(ean), Name: "prod-" + ean, Brand: "marca", Category: "almacen"}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("造商品失败: %v", err)
	}

	mapping := &model.StoreProduct{StoreID: store.ID, ProductID: product.ID, SKU: str(sku)}
	if err := db.Create(mapping).Error; err != nil {
		t.Fatalf("造映射失败: %v", err)
	}

	return store.ID, product.ID, mapping.ID
}

func seedSnapshot(t *testing.T, db *gorm.DB, storeID, mappingID int64, capturedAt time.Time, list, offer *float64) int64 {
	t.Helper()

	snap := &model.PriceSnapshot{
		StoreID:        storeID,
		StoreProductID: mappingID,
		CapturedAt:     capturedAt,
		ListPrice:      list,
		OfferPrice:     offer,
	}
	if err := db.Create(snap).Error; err != nil {
		t.Fatalf("造快照失败: %v", err)
	}
	return snap.ID
}

// ==================== Record ====================

func TestSnapshotRepo_Record(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewSnapshotRepository(db)
	ctx := context.Background()

	storeID, _, mappingID := seedMapping(t, db, "coto", "7791234567890", "sku-1")

	id, err := repo.Record(ctx, &model.PriceSnapshot{
		StoreID:        storeID,
		StoreProductID: mappingID,
		CapturedAt:     baseCapture,
		ListPrice:      f64(100),
		OfferPrice:     f64(90),
		OfferType:      str("descuento"),
	})
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if id == 0 {
		t.Error("ID 应该被自动分配")
	}
}

func TestSnapshotRepo_Record_DuplicateRejected(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewSnapshotRepository(db)
	ctx := context.Background()

	storeID, _, mappingID := seedMapping(t, db, "coto", "7791234567890", "sku-1")

	_, err := repo.Record(ctx, &model.PriceSnapshot{
		StoreID: storeID, StoreProductID: mappingID,
		CapturedAt: baseCapture, OfferPrice: f64(90),
	})
	if err != nil {
		t.Fatalf("首次 Record() error = %v", err)
	}

	// 同一 (映射, 时刻) 重复写入：拒绝，绝不覆盖
	_, err = repo.Record(ctx, &model.PriceSnapshot{
		StoreID: storeID, StoreProductID: mappingID,
		CapturedAt: baseCapture, OfferPrice: f64(75),
	})
	if !errors.Is(err, ErrDuplicateSnapshot) {
		t.Fatalf("err = %v, want ErrDuplicateSnapshot", err)
	}

	// 首条数据原封不动
	var rows []model.PriceSnapshot
	db.Find(&rows)
	if len(rows) != 1 {
		t.Fatalf("快照行数 = %d, want 1", len(rows))
	}
	if rows[0].OfferPrice == nil || *rows[0].OfferPrice != 90 {
		t.Errorf("首条促销价被改写: %v", rows[0].OfferPrice)
	}
}

func TestSnapshotRepo_Record_BackfillStoreID(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewSnapshotRepository(db)
	ctx := context.Background()

	storeID, _, mappingID := seedMapping(t, db, "dia", "7790000000001", "sku-9")

	snap := &model.PriceSnapshot{StoreProductID: mappingID, CapturedAt: baseCapture}
	if _, err := repo.Record(ctx, snap); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if snap.StoreID != storeID {
		t.Errorf("StoreID = %d, want %d（应从映射行补齐）", snap.StoreID, storeID)
	}
}

func TestSnapshotRepo_Record_UnknownMapping(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewSnapshotRepository(db)

	_, err := repo.Record(context.Background(), &model.PriceSnapshot{
		StoreProductID: 9999, CapturedAt: baseCapture,
	})
	if !errors.Is(err, ErrReferentialIntegrity) {
		t.Errorf("err = %v, want ErrReferentialIntegrity", err)
	}
}

// ==================== 维护语句 ====================

func TestSnapshotRepo_NormalizeZeroPrices(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewSnapshotRepository(db)
	ctx := context.Background()

	storeID, _, mappingID := seedMapping(t, db, "coto", "7791234567890", "sku-1")
	seedSnapshot(t, db, storeID, mappingID, baseCapture, f64(0), f64(0))
	seedSnapshot(t, db, storeID, mappingID, baseCapture.Add(time.Hour), f64(100), f64(90))

	rows, err := repo.NormalizeZeroPrices(ctx)
	if err != nil {
		t.Fatalf("NormalizeZeroPrices() error = %v", err)
	}
	if rows != 2 {
		t.Errorf("改写行数 = %d, want 2", rows)
	}

	var zeroed model.PriceSnapshot
	db.Where("captured_at = ?", baseCapture).First(&zeroed)
	if zeroed.ListPrice != nil || zeroed.OfferPrice != nil {
		t.Errorf("0 价未归一化: list=%v offer=%v", zeroed.ListPrice, zeroed.OfferPrice)
	}

	var untouched model.PriceSnapshot
	db.Where("captured_at = ?", baseCapture.Add(time.Hour)).First(&untouched)
	if untouched.OfferPrice == nil || *untouched.OfferPrice != 90 {
		t.Errorf("非 0 价被误改: %v", untouched.OfferPrice)
	}

	// 幂等：第二轮无事可做
	rows, err = repo.NormalizeZeroPrices(ctx)
	if err != nil {
		t.Fatalf("第二轮 NormalizeZeroPrices() error = %v", err)
	}
	if rows != 0 {
		t.Errorf("第二轮改写行数 = %d, want 0", rows)
	}
}

func TestSnapshotRepo_DeleteOlderThan(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewSnapshotRepository(db)
	ctx := context.Background()

	storeID, _, mappingID := seedMapping(t, db, "coto", "7791234567890", "sku-1")

	cutoff := baseCapture
	for i := 1; i <= 5; i++ {
		seedSnapshot(t, db, storeID, mappingID, cutoff.Add(-time.Duration(i)*time.Hour), f64(100), nil)
	}
	for i := 0; i < 3; i++ {
		seedSnapshot(t, db, storeID, mappingID, cutoff.Add(time.Duration(i)*time.Hour), f64(100), nil)
	}

	// 小批次验证分批循环
	deleted, err := repo.DeleteOlderThan(ctx, cutoff, 2)
	if err != nil {
		t.Fatalf("DeleteOlderThan() error = %v", err)
	}
	if deleted != 5 {
		t.Errorf("删除行数 = %d, want 5", deleted)
	}

	count, _ := repo.Count(ctx)
	if count != 3 {
		t.Errorf("剩余行数 = %d, want 3", count)
	}

	oldest, err := repo.OldestCapture(ctx)
	if err != nil {
		t.Fatalf("OldestCapture() error = %v", err)
	}
	if oldest == nil || !oldest.Equal(cutoff) {
		t.Errorf("最早快照 = %v, want %v", oldest, cutoff)
	}
}
