package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"retail_price_v1_202608/internal/model"
)

// ==================== 接口定义 ====================

// StoreProductRepository 门店商品映射仓储接口
type StoreProductRepository interface {
	// Upsert 按 (store_id, sku) 或 (store_id, store_record_id) 去重；
	// 已知 SKU 重跑只刷新展示字段与可售状态，不产生重复映射行
	Upsert(ctx context.Context, sp *model.StoreProduct) (int64, error)
	GetByID(ctx context.Context, id int64) (*model.StoreProduct, error)
	ListByStore(ctx context.Context, storeID int64) ([]model.StoreProduct, error)
	Delete(ctx context.Context, id int64) error
}

type storeProductRepo struct {
	db *gorm.DB
}

// NewStoreProductRepository 创建映射仓储
func NewStoreProductRepository(db *gorm.DB) StoreProductRepository {
	return &storeProductRepo{db: db}
}

func (r *storeProductRepo) Upsert(ctx context.Context, sp *model.StoreProduct) (int64, error) {
	db := r.db.WithContext(ctx)

	var existing model.StoreProduct
	var err error

	switch {
	case sp.SKU != nil && *sp.SKU != "":
		err = db.Where("store_id = ? AND sku = ?", sp.StoreID, *sp.SKU).First(&existing).Error
	case sp.StoreRecordID != nil && *sp.StoreRecordID != "":
		err = db.Where("store_id = ? AND store_record_id = ?", sp.StoreID, *sp.StoreRecordID).First(&existing).Error
	default:
		err = gorm.ErrRecordNotFound
	}

	if err == nil {
		updates := map[string]interface{}{
			"product_id": sp.ProductID,
		}
		if sp.StoreRecordID != nil && *sp.StoreRecordID != "" {
			updates["store_record_id"] = *sp.StoreRecordID
		}
		if sp.StoreName != "" {
			updates["store_name"] = sp.StoreName
		}
		if sp.StoreURL != "" {
			updates["store_url"] = sp.StoreURL
		}
		if sp.Available != nil {
			updates["available"] = *sp.Available
		}
		if len(sp.RawAttrs) > 0 {
			updates["raw_attrs"] = sp.RawAttrs
		}
		if err := db.Model(&existing).Updates(updates).Error; err != nil {
			return 0, translateWriteError(err, ErrDuplicateMapping)
		}
		sp.ID = existing.ID
		return existing.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	if err := db.Create(sp).Error; err != nil {
		return 0, translateWriteError(err, ErrDuplicateMapping)
	}
	return sp.ID, nil
}

func (r *storeProductRepo) GetByID(ctx context.Context, id int64) (*model.StoreProduct, error) {
	var sp model.StoreProduct
	err := r.db.WithContext(ctx).Preload("Product").First(&sp, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sp, nil
}

func (r *storeProductRepo) ListByStore(ctx context.Context, storeID int64) ([]model.StoreProduct, error) {
	var rows []model.StoreProduct
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("store_id = ?", storeID).
		Find(&rows).Error
	return rows, err
}

func (r *storeProductRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.StoreProduct{}, id).Error
}
