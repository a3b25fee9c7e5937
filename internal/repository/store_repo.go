package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"retail_price_v1_202608/internal/model"
)

// ==================== 接口定义 ====================

// StoreRepository 门店注册表仓储接口
type StoreRepository interface {
	// Upsert 按自然键 code 插入或更新展示字段（code 不可变）
	Upsert(ctx context.Context, store *model.Store) (int64, error)
	GetByID(ctx context.Context, id int64) (*model.Store, error)
	GetByCode(ctx context.Context, code string) (*model.Store, error)
	List(ctx context.Context) ([]model.Store, error)
	// Delete 物理删除，级联清除映射与快照
	Delete(ctx context.Context, id int64) error

	// 区域维护
	EnsureRegion(ctx context.Context, name string) (int64, error)
	AssignRegion(ctx context.Context, storeID, regionID int64) error
}

type storeRepo struct {
	db *gorm.DB
}

// NewStoreRepository 创建门店仓储
func NewStoreRepository(db *gorm.DB) StoreRepository {
	return &storeRepo{db: db}
}

func (r *storeRepo) Upsert(ctx context.Context, store *model.Store) (int64, error) {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "province", "branch", "updated_at"}),
	}).Create(store).Error
	if err != nil {
		return 0, translateWriteError(err, ErrDuplicateMapping)
	}

	// 冲突更新路径下主键不一定回填，按 code 回查（与抓取端原始做法一致）
	var row model.Store
	if err := r.db.WithContext(ctx).Select("id").Where("code = ?", store.Code).First(&row).Error; err != nil {
		return 0, err
	}
	store.ID = row.ID
	return row.ID, nil
}

func (r *storeRepo) GetByID(ctx context.Context, id int64) (*model.Store, error) {
	var store model.Store
	err := r.db.WithContext(ctx).Preload("Regions").First(&store, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *storeRepo) GetByCode(ctx context.Context, code string) (*model.Store, error) {
	var store model.Store
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&store).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *storeRepo) List(ctx context.Context) ([]model.Store, error) {
	var stores []model.Store
	err := r.db.WithContext(ctx).Order("name").Find(&stores).Error
	return stores, err
}

func (r *storeRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.Store{}, id).Error
}

func (r *storeRepo) EnsureRegion(ctx context.Context, name string) (int64, error) {
	region := model.Region{Name: name}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&region).Error
	if err != nil {
		return 0, err
	}

	var row model.Region
	if err := r.db.WithContext(ctx).Select("id").Where("name = ?", name).First(&row).Error; err != nil {
		return 0, err
	}
	return row.ID, nil
}

func (r *storeRepo) AssignRegion(ctx context.Context, storeID, regionID int64) error {
	err := r.db.WithContext(ctx).Exec(
		"INSERT INTO store_regions (store_id, region_id) VALUES (?, ?)",
		storeID, regionID,
	).Error
	if err != nil {
		// 重复归属视为幂等
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil
		}
		return translateWriteError(err, ErrDuplicateMapping)
	}
	return nil
}
