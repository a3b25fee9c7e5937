package model

import (
	"gorm.io/datatypes"
)

// StoreProduct 门店商品映射
// 门店原生目录与规范商品之间的连接面：同一 EAN 在不同门店下
// SKU/URL 各不相同，且部分门店抓取时拿不到 EAN（后续在此层对齐）
type StoreProduct struct {
	BaseModel

	// --- 归属 ---
	StoreID int64  `gorm:"not null;uniqueIndex:idx_store_sku;uniqueIndex:idx_store_record"`
	Store   *Store `gorm:"foreignKey:StoreID;constraint:OnDelete:CASCADE"`

	// 弱引用规范商品：存在映射时禁止删除 Product
	ProductID int64    `gorm:"index;not null"`
	Product   *Product `gorm:"foreignKey:ProductID"`

	// --- 门店本地标识（各自在门店内唯一）---
	SKU           *string `gorm:"size:100;uniqueIndex:idx_store_sku"`
	StoreRecordID *string `gorm:"size:100;uniqueIndex:idx_store_record"`

	// --- 门店展示数据（可与规范属性不一致）---
	StoreName string `gorm:"size:255"`
	StoreURL  string `gorm:"size:512"`
	Available *bool  // 部分历史版本才有的字段，采超集

	// --- 抓取原始属性 ---
	RawAttrs datatypes.JSON `gorm:"type:jsonb"`

	// --- 关联关系 ---
	Snapshots []PriceSnapshot `gorm:"foreignKey:StoreProductID;constraint:OnDelete:CASCADE"`
}

func (StoreProduct) TableName() string {
	return "store_products"
}
