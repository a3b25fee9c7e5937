package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"retail_price_v1_202608/internal/model"
)

// ==================== 接口定义 ====================

// ProductRepository 规范商品目录仓储接口
type ProductRepository interface {
	// Upsert EAN 优先匹配；EAN 缺失时回退 AuxEAN、再回退 (name, brand)，
	// 都未命中则新建。返回规范商品 ID
	Upsert(ctx context.Context, p *model.Product) (int64, error)
	GetByID(ctx context.Context, id int64) (*model.Product, error)
	GetByEAN(ctx context.Context, ean string) (*model.Product, error)
	// Delete 存在门店映射时被外键约束拒绝（ErrReferentialIntegrity）
	Delete(ctx context.Context, id int64) error
	ListCategories(ctx context.Context) ([]string, error)
}

type productRepo struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓储
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepo{db: db}
}

// attrUpdates 只用非空的新值覆盖旧值（沿用抓取端 COALESCE(NULLIF(...)) 语义）
func attrUpdates(p *model.Product) map[string]interface{} {
	updates := map[string]interface{}{}
	if p.Name != "" {
		updates["name"] = p.Name
	}
	if p.Brand != "" {
		updates["brand"] = p.Brand
	}
	if p.Manufacturer != "" {
		updates["manufacturer"] = p.Manufacturer
	}
	if p.Category != "" {
		updates["category"] = p.Category
	}
	if p.Subcategory != "" {
		updates["subcategory"] = p.Subcategory
	}
	return updates
}

func (r *productRepo) Upsert(ctx context.Context, p *model.Product) (int64, error) {
	db := r.db.WithContext(ctx)

	// 1. EAN 精确匹配（跨门店对齐键）
	if p.EAN != nil && *p.EAN != "" {
		var existing model.Product
		err := db.Where("ean = ?", *p.EAN).First(&existing).Error
		if err == nil {
			if updates := attrUpdates(p); len(updates) > 0 {
				if err := db.Model(&existing).Updates(updates).Error; err != nil {
					return 0, err
				}
			}
			p.ID = existing.ID
			return existing.ID, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, err
		}
	}

	// 2. 辅助识别码匹配（数据源不给 EAN 时的替代去重键）
	if p.AuxEAN != nil && *p.AuxEAN != "" {
		var existing model.Product
		err := db.Where("aux_ean = ?", *p.AuxEAN).First(&existing).Error
		if err == nil {
			return r.backfill(ctx, &existing, p)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, err
		}
	}

	// 3. (name, brand) 回退匹配
	if p.Name != "" {
		var existing model.Product
		err := db.Where("name = ? AND brand = ?", p.Name, p.Brand).First(&existing).Error
		if err == nil {
			return r.backfill(ctx, &existing, p)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, err
		}
	}

	// 4. 新建
	if err := db.Create(p).Error; err != nil {
		return 0, translateWriteError(err, ErrDuplicateMapping)
	}
	return p.ID, nil
}

// backfill 命中回退键时，补写 EAN 并更新非空属性
func (r *productRepo) backfill(ctx context.Context, existing, incoming *model.Product) (int64, error) {
	updates := attrUpdates(incoming)
	if incoming.EAN != nil && *incoming.EAN != "" && existing.EAN == nil {
		updates["ean"] = *incoming.EAN
	}
	if len(updates) > 0 {
		if err := r.db.WithContext(ctx).Model(existing).Updates(updates).Error; err != nil {
			return 0, translateWriteError(err, ErrDuplicateMapping)
		}
	}
	incoming.ID = existing.ID
	return existing.ID, nil
}

func (r *productRepo) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) GetByEAN(ctx context.Context, ean string) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Where("ean = ?", ean).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) Delete(ctx context.Context, id int64) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.StoreProduct{}).
		Where("product_id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrReferentialIntegrity
	}
	return r.db.WithContext(ctx).Delete(&model.Product{}, id).Error
}

func (r *productRepo) ListCategories(ctx context.Context) ([]string, error) {
	var categories []string
	err := r.db.WithContext(ctx).Model(&model.Product{}).
		Distinct("category").
		Where("category IS NOT NULL AND category <> ''").
		Order("category").
		Pluck("category", &categories).Error
	return categories, err
}
