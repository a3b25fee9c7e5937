package model

// Product 规范商品目录（与门店无关）
// EAN 是跨门店对齐的唯一键；部分数据源不提供 EAN，此时先落库，
// 再通过 EanOverride 人工对齐
type Product struct {
	BaseModel

	// --- 核心身份 ---
	EAN *string `gorm:"size:20;uniqueIndex"` // 全球商品码，可空；非空时全局唯一

	// --- 描述字段 ---
	Name         string `gorm:"size:255;index"`
	Brand        string `gorm:"size:100;index"`
	Manufacturer string `gorm:"size:255"`
	Category     string `gorm:"size:100;index"`
	Subcategory  string `gorm:"size:100"`

	// --- 人工对账辅助 ---
	AuxEAN *string `gorm:"size:20;index"` // 辅助识别码，用于 EAN 人工核对
}

func (Product) TableName() string {
	return "products"
}

// EanOverride EAN 人工修正表
// (store_code, native_code) -> EAN 的映射，追加式、带版本号，修正可审计
// 生效值取 revision 最大的一行
type EanOverride struct {
	BaseModel

	StoreCode  string `gorm:"size:50;uniqueIndex:idx_override_rev;not null"`
	NativeCode string `gorm:"size:100;uniqueIndex:idx_override_rev;not null"`
	Revision   int    `gorm:"uniqueIndex:idx_override_rev;not null;default:1"`

	EAN  string `gorm:"size:20;not null"`
	Note string `gorm:"size:512"` // 修正原因/来源
}

func (EanOverride) TableName() string {
	return "ean_overrides"
}
