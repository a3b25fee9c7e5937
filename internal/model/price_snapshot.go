package model

import (
	"time"

	"github.com/lib/pq"
)

// PriceSnapshot 价格快照（追加式时间序列）
// 每行是 (门店商品, 抓取时刻) 的一次观测，写入后不再更新，
// 只会被更晚的快照覆盖语义、或被保留任务批量删除
//
// 索引策略：
//   - (store_product_id, captured_at) 唯一 —— 同一时刻至多一条
//   - (store_id, store_product_id, captured_at) 复合 —— 支撑
//     latest-per-group 的分组 + 范围扫描，避免全表排序
type PriceSnapshot struct {
	ID        int64     `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	// --- 归属 ---
	// store_id 为冗余反范式字段，纯查询用途
	StoreID int64  `gorm:"not null;index:idx_store_sp_captured,priority:1"`
	Store   *Store `gorm:"foreignKey:StoreID;constraint:OnDelete:CASCADE"`

	StoreProductID int64         `gorm:"not null;uniqueIndex:idx_sp_captured,priority:1;index:idx_store_sp_captured,priority:2"`
	StoreProduct   *StoreProduct `gorm:"foreignKey:StoreProductID;constraint:OnDelete:CASCADE"`

	// --- 抓取时刻 ---
	CapturedAt time.Time `gorm:"not null;uniqueIndex:idx_sp_captured,priority:2;index:idx_store_sp_captured,priority:3"`

	// --- 价格（可空，0 会被归一化任务改写为 NULL）---
	ListPrice  *float64 `gorm:"type:decimal(12,2)"`
	OfferPrice *float64 `gorm:"type:decimal(12,2)"`

	// --- 促销元数据（自由文本）---
	OfferType         *string        `gorm:"size:255"`
	PromoType         *string        `gorm:"size:512"`
	PromoTextRegular  *string        `gorm:"size:255"`
	PromoTextDiscount *string        `gorm:"size:255"`
	PromoComments     *string        `gorm:"size:512"`
	PromoTexts        pq.StringArray `gorm:"type:text[]"` // 全部折扣文案原文
}

func (PriceSnapshot) TableName() string {
	return "price_snapshots"
}
