package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"retail_price_v1_202608/internal/model"
)

// ==================== 接口定义 ====================

// SnapshotRepository 价格快照仓储接口
// 日志追加式：不暴露任何 update 操作，修正快照只能以更晚的
// captured_at 重新写入，保证任意历史价格状态都可回放
type SnapshotRepository interface {
	// Record 追加一条快照；同一 (store_product, captured_at) 已存在时
	// 返回 ErrDuplicateSnapshot（由生产者决定跳过还是排查），绝不覆盖
	Record(ctx context.Context, snap *model.PriceSnapshot) (int64, error)
	ListByStoreProduct(ctx context.Context, storeProductID int64) ([]model.PriceSnapshot, error)
	Count(ctx context.Context) (int64, error)
	OldestCapture(ctx context.Context) (*time.Time, error)

	// 维护任务专用的批量语句
	NormalizeZeroPrices(ctx context.Context) (int64, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time, batchSize int) (int64, error)
}

type snapshotRepo struct {
	db *gorm.DB
}

// NewSnapshotRepository 创建快照仓储
func NewSnapshotRepository(db *gorm.DB) SnapshotRepository {
	return &snapshotRepo{db: db}
}

func (r *snapshotRepo) Record(ctx context.Context, snap *model.PriceSnapshot) (int64, error) {
	db := r.db.WithContext(ctx)

	// 冗余 store_id 未提供时从映射行补齐
	if snap.StoreID == 0 {
		var sp model.StoreProduct
		if err := db.Select("store_id").First(&sp, snap.StoreProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, ErrReferentialIntegrity
			}
			return 0, err
		}
		snap.StoreID = sp.StoreID
	}

	if err := db.Create(snap).Error; err != nil {
		return 0, translateWriteError(err, ErrDuplicateSnapshot)
	}
	return snap.ID, nil
}

func (r *snapshotRepo) ListByStoreProduct(ctx context.Context, storeProductID int64) ([]model.PriceSnapshot, error) {
	var rows []model.PriceSnapshot
	err := r.db.WithContext(ctx).
		Where("store_product_id = ?", storeProductID).
		Order("captured_at").
		Find(&rows).Error
	return rows, err
}

func (r *snapshotRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.PriceSnapshot{}).Count(&count).Error
	return count, err
}

func (r *snapshotRepo) OldestCapture(ctx context.Context) (*time.Time, error) {
	var snap model.PriceSnapshot
	err := r.db.WithContext(ctx).
		Select("captured_at").
		Order("captured_at").
		First(&snap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &snap.CapturedAt, nil
}

// NormalizeZeroPrices 把恰好为 0 的标价/促销价改写为 NULL
// 部分数据源用 0 表示"未观测"，留着会污染均值与趋势；幂等
func (r *snapshotRepo) NormalizeZeroPrices(ctx context.Context) (int64, error) {
	db := r.db.WithContext(ctx)

	listRes := db.Exec("UPDATE price_snapshots SET list_price = NULL WHERE list_price = 0")
	if listRes.Error != nil {
		return 0, listRes.Error
	}
	offerRes := db.Exec("UPDATE price_snapshots SET offer_price = NULL WHERE offer_price = 0")
	if offerRes.Error != nil {
		return listRes.RowsAffected, offerRes.Error
	}
	return listRes.RowsAffected + offerRes.RowsAffected, nil
}

// DeleteOlderThan 分批删除早于 cutoff 的快照，避免单条大删除
// 长时间持锁阻塞并发写入；返回累计删除行数
func (r *snapshotRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time, batchSize int) (int64, error) {
	if batchSize <= 0 {
		batchSize = 50000
	}

	var total int64
	for {
		select {
		case <-ctx.Done():
			return total, ctx.Err()
		default:
		}

		res := r.db.WithContext(ctx).Exec(`
			DELETE FROM price_snapshots
			WHERE id IN (
				SELECT id FROM price_snapshots
				WHERE captured_at < ?
				ORDER BY id
				LIMIT ?
			)`, cutoff, batchSize)
		if res.Error != nil {
			return total, res.Error
		}
		total += res.RowsAffected
		if res.RowsAffected < int64(batchSize) {
			return total, nil
		}
	}
}
