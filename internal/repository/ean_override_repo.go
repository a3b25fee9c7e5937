package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"retail_price_v1_202608/internal/model"
)

// ==================== 接口定义 ====================

// EanOverrideRepository EAN 人工修正表仓储接口
// 追加式：修正错了就再追加一条更高 revision，不改旧行，历史可审计
type EanOverrideRepository interface {
	// Append 追加一条修正，revision 自动取当前最大值 +1
	Append(ctx context.Context, o *model.EanOverride) (int64, error)
	// Resolve 返回 (store_code, native_code) 当前生效的 EAN
	Resolve(ctx context.Context, storeCode, nativeCode string) (string, bool, error)
	// Revisions 某映射的全部修正历史，按 revision 升序
	Revisions(ctx context.Context, storeCode, nativeCode string) ([]model.EanOverride, error)
}

type eanOverrideRepo struct {
	db *gorm.DB
}

// NewEanOverrideRepository 创建修正表仓储
func NewEanOverrideRepository(db *gorm.DB) EanOverrideRepository {
	return &eanOverrideRepo{db: db}
}

func (r *eanOverrideRepo) Append(ctx context.Context, o *model.EanOverride) (int64, error) {
	db := r.db.WithContext(ctx)

	var last model.EanOverride
	err := db.Where("store_code = ? AND native_code = ?", o.StoreCode, o.NativeCode).
		Order("revision DESC").
		First(&last).Error
	switch {
	case err == nil:
		o.Revision = last.Revision + 1
	case errors.Is(err, gorm.ErrRecordNotFound):
		o.Revision = 1
	default:
		return 0, err
	}

	if err := db.Create(o).Error; err != nil {
		return 0, translateWriteError(err, ErrDuplicateMapping)
	}
	return o.ID, nil
}

func (r *eanOverrideRepo) Resolve(ctx context.Context, storeCode, nativeCode string) (string, bool, error) {
	var last model.EanOverride
	err := r.db.WithContext(ctx).
		Where("store_code = ? AND native_code = ?", storeCode, nativeCode).
		Order("revision DESC").
		First(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return last.EAN, true, nil
}

func (r *eanOverrideRepo) Revisions(ctx context.Context, storeCode, nativeCode string) ([]model.EanOverride, error) {
	var rows []model.EanOverride
	err := r.db.WithContext(ctx).
		Where("store_code = ? AND native_code = ?", storeCode, nativeCode).
		Order("revision").
		Find(&rows).Error
	return rows, err
}
