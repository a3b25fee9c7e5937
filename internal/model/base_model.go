package model

import (
	"time"
)

// BaseModel 注册表实体的公共字段
// 注意：不带 DeletedAt，删除必须是物理删除才能触发数据库级联
type BaseModel struct {
	ID        int64     `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
