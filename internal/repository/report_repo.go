package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"retail_price_v1_202608/internal/model"
)

// ==================== 查询结果行 ====================

// CatalogRow 单店现价目录导出行
type CatalogRow struct {
	EAN          *string   `gorm:"column:ean" json:"ean"`
	SKU          *string   `gorm:"column:sku" json:"sku"`
	Name         string    `gorm:"column:name" json:"name"`
	Category     string    `gorm:"column:category" json:"category"`
	Subcategory  string    `gorm:"column:subcategory" json:"subcategory"`
	Brand        string    `gorm:"column:brand" json:"brand"`
	Manufacturer string    `gorm:"column:manufacturer" json:"manufacturer"`
	ListPrice    *float64  `gorm:"column:list_price" json:"list_price"`
	OfferPrice   *float64  `gorm:"column:offer_price" json:"offer_price"`
	OfferType    *string   `gorm:"column:offer_type" json:"offer_type"`
	StoreURL     string    `gorm:"column:store_url" json:"store_url"`
	CapturedAt   time.Time `gorm:"column:captured_at" json:"captured_at"`
}

// ComparisonRow 跨门店比价行（同一 EAN 各门店的最新快照）
type ComparisonRow struct {
	StoreCode  string    `gorm:"column:store_code" json:"store_code"`
	StoreName  string    `gorm:"column:store_name" json:"store_name"`
	SKU        *string   `gorm:"column:sku" json:"sku"`
	ListPrice  *float64  `gorm:"column:list_price" json:"list_price"`
	OfferPrice *float64  `gorm:"column:offer_price" json:"offer_price"`
	CapturedAt time.Time `gorm:"column:captured_at" json:"captured_at"`
}

// TrendRow 品类月度均价行
type TrendRow struct {
	Category      string   `gorm:"column:category" json:"category"`
	Month         string   `gorm:"column:month" json:"month"`
	AvgOfferPrice *float64 `gorm:"column:avg_offer_price" json:"avg_offer_price"`
}

// ChangeRow 价格变动行：本次快照与同一映射的前一条快照价差
type ChangeRow struct {
	SnapshotID     int64     `gorm:"column:snapshot_id" json:"snapshot_id"`
	StoreID        int64     `gorm:"column:store_id" json:"store_id"`
	StoreProductID int64     `gorm:"column:store_product_id" json:"store_product_id"`
	CapturedAt     time.Time `gorm:"column:captured_at" json:"captured_at"`
	OfferPrice     *float64  `gorm:"column:offer_price" json:"offer_price"`
	PrevOfferPrice *float64  `gorm:"column:prev_offer_price" json:"prev_offer_price"`
}

// LatestFilter latest-per-group 查询的可选过滤
type LatestFilter struct {
	StoreID int64    // 0 表示全部门店
	EANs    []string // 非空时限定规范商品集合
}

// ==================== 接口定义 ====================

// ReportRepository 报表仓储接口：全部是派生只读视图，
// "现价"永远由追加日志上的 latest-per-group 推导，不存可变列
type ReportRepository interface {
	// LatestSnapshots 每个门店商品取 captured_at 最大的一条完整快照
	LatestSnapshots(ctx context.Context, f LatestFilter) ([]model.PriceSnapshot, error)
	// CurrentCatalog 单店现价目录（latest 快照 join 规范商品属性）
	CurrentCatalog(ctx context.Context, storeID int64) ([]CatalogRow, error)
	// CrossStoreComparison 同一 EAN 在各门店的最新快照，各取各店
	CrossStoreComparison(ctx context.Context, ean string) ([]ComparisonRow, error)
	// CategoryTrend 全量历史扫描：按 (品类, 抓取月份) 平均促销价
	CategoryTrend(ctx context.Context) ([]TrendRow, error)
	// PriceChanges 逐映射按时间排序的错位比较；首条快照没有前驱，不计入
	PriceChanges(ctx context.Context, storeID int64, since time.Time) ([]ChangeRow, error)
}

type reportRepo struct {
	db *gorm.DB
}

// NewReportRepository 创建报表仓储
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepo{db: db}
}

// latest-per-group 的标准形：按 store_product_id 分组取 MAX(captured_at)，
// 再回连日志取整行。唯一约束保证每组至多一行，无需额外 tie-break；
// 若同刻出现两行属于数据完整性事故，不在查询层静默消化
const latestJoin = `
	JOIN (
		SELECT store_product_id, MAX(captured_at) AS max_captured
		FROM price_snapshots
		GROUP BY store_product_id
	) last ON last.store_product_id = hp.store_product_id
	      AND last.max_captured = hp.captured_at`

func (r *reportRepo) LatestSnapshots(ctx context.Context, f LatestFilter) ([]model.PriceSnapshot, error) {
	sql := `SELECT hp.* FROM price_snapshots hp` + latestJoin
	var args []interface{}
	var where []string

	if f.StoreID > 0 {
		where = append(where, "hp.store_id = ?")
		args = append(args, f.StoreID)
	}
	if len(f.EANs) > 0 {
		sql += `
	JOIN store_products sp ON sp.id = hp.store_product_id
	JOIN products p ON p.id = sp.product_id`
		where = append(where, "p.ean IN ?")
		args = append(args, f.EANs)
	}
	for i, cond := range where {
		if i == 0 {
			sql += "\n\tWHERE " + cond
		} else {
			sql += " AND " + cond
		}
	}
	sql += "\n\tORDER BY hp.store_product_id"

	var rows []model.PriceSnapshot
	err := r.db.WithContext(ctx).Raw(sql, args...).Scan(&rows).Error
	return rows, err
}

func (r *reportRepo) CurrentCatalog(ctx context.Context, storeID int64) ([]CatalogRow, error) {
	var rows []CatalogRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT p.ean, sp.sku,
		       COALESCE(NULLIF(sp.store_name, ''), p.name) AS name,
		       p.category, p.subcategory, p.brand, p.manufacturer,
		       hp.list_price, hp.offer_price, hp.offer_type,
		       sp.store_url, hp.captured_at
		FROM price_snapshots hp`+latestJoin+`
		JOIN store_products sp ON sp.id = hp.store_product_id
		JOIN products p ON p.id = sp.product_id
		WHERE hp.store_id = ?
		ORDER BY p.category, p.name`, storeID).Scan(&rows).Error
	return rows, err
}

func (r *reportRepo) CrossStoreComparison(ctx context.Context, ean string) ([]ComparisonRow, error) {
	var rows []ComparisonRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT t.code AS store_code, t.name AS store_name, sp.sku,
		       hp.list_price, hp.offer_price, hp.captured_at
		FROM price_snapshots hp`+latestJoin+`
		JOIN store_products sp ON sp.id = hp.store_product_id
		JOIN products p ON p.id = sp.product_id
		JOIN stores t ON t.id = hp.store_id
		WHERE p.ean = ?
		ORDER BY t.name`, ean).Scan(&rows).Error
	return rows, err
}

// monthExpr 抓取月份表达式是仅有的方言分叉
func (r *reportRepo) monthExpr() string {
	if r.db.Dialector.Name() == "sqlite" {
		return "strftime('%Y-%m', hp.captured_at)"
	}
	return "to_char(hp.captured_at, 'YYYY-MM')"
}

func (r *reportRepo) CategoryTrend(ctx context.Context) ([]TrendRow, error) {
	expr := r.monthExpr()
	var rows []TrendRow
	// 趋势扫全量日志而非 latest 分区，顺序扫描友好
	err := r.db.WithContext(ctx).Raw(`
		SELECT p.category AS category, `+expr+` AS month,
		       AVG(hp.offer_price) AS avg_offer_price
		FROM price_snapshots hp
		JOIN store_products sp ON sp.id = hp.store_product_id
		JOIN products p ON p.id = sp.product_id
		WHERE hp.offer_price IS NOT NULL
		GROUP BY p.category, `+expr+`
		ORDER BY month DESC, category`).Scan(&rows).Error
	return rows, err
}

func (r *reportRepo) PriceChanges(ctx context.Context, storeID int64, since time.Time) ([]ChangeRow, error) {
	sql := `
		SELECT x.snapshot_id, x.store_id, x.store_product_id,
		       x.captured_at, x.offer_price, x.prev_offer_price
		FROM (
			SELECT hp.id AS snapshot_id, hp.store_id, hp.store_product_id,
			       hp.captured_at, hp.offer_price,
			       LAG(hp.offer_price) OVER w AS prev_offer_price,
			       ROW_NUMBER() OVER w AS rn
			FROM price_snapshots hp
			WINDOW w AS (PARTITION BY hp.store_product_id ORDER BY hp.captured_at)
		) x
		WHERE x.rn > 1
		  AND ((x.offer_price IS NULL) <> (x.prev_offer_price IS NULL)
		       OR x.offer_price <> x.prev_offer_price)`
	var args []interface{}
	if storeID > 0 {
		sql += "\n\t\t  AND x.store_id = ?"
		args = append(args, storeID)
	}
	if !since.IsZero() {
		sql += "\n\t\t  AND x.captured_at >= ?"
		args = append(args, since)
	}
	sql += "\n\t\tORDER BY x.captured_at, x.store_product_id"

	var rows []ChangeRow
	err := r.db.WithContext(ctx).Raw(sql, args...).Scan(&rows).Error
	return rows, err
}
