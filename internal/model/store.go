package model

// Store 零售商注册表
// 每家零售商入驻时创建一次，之后很少变动
// 物理删除时级联清除其 StoreProduct 映射与价格快照
type Store struct {
	BaseModel

	// --- 核心身份 ---
	Code string `gorm:"size:50;uniqueIndex;not null"` // 外部唯一编码 (如 coto, dia, jumbo)，写入后不可变
	Name string `gorm:"size:255;not null"`            // 展示名称

	// --- 门店描述（可选）---
	Province string `gorm:"size:100"` // 省份
	Branch   string `gorm:"size:100"` // 分店/门市

	// --- 区域归属（多对多）---
	Regions []Region `gorm:"many2many:store_regions;constraint:OnDelete:CASCADE"`

	// --- 关联关系 ---
	StoreProducts []StoreProduct `gorm:"foreignKey:StoreID;constraint:OnDelete:CASCADE"`
}

func (Store) TableName() string {
	return "stores"
}

// Region 区域字典（如 cordoba, buenos_aires, portugal）
type Region struct {
	BaseModel
	Name string `gorm:"size:100;uniqueIndex;not null"`
}

func (Region) TableName() string {
	return "regions"
}
