package database

import (
	"context"

	"gorm.io/gorm"
)

// CapacityProbe 容量探针
// 保留任务"先检查体积、超限才按龄删除"的体积指标是存储引擎相关的，
// 抽成接口以便移植（Postgres 用磁盘字节，测试/其他引擎用行数折算）
type CapacityProbe interface {
	// TableSizeBytes 估算单表占用字节数
	TableSizeBytes(ctx context.Context, tableName string) (int64, error)
}

// ==================== Postgres 实现 ====================

// PgRelationProbe 基于 pg_total_relation_size 的探针（含索引与 TOAST）
type PgRelationProbe struct {
	db *gorm.DB
}

// NewPgRelationProbe 创建 Postgres 容量探针
func NewPgRelationProbe(db *gorm.DB) *PgRelationProbe {
	return &PgRelationProbe{db: db}
}

func (p *PgRelationProbe) TableSizeBytes(ctx context.Context, tableName string) (int64, error) {
	var size int64
	err := p.db.WithContext(ctx).
		Raw("SELECT pg_total_relation_size(?)", tableName).
		Scan(&size).Error
	return size, err
}

// ==================== 行数折算实现 ====================

// RowCountProbe 行数 × 单行估算字节的探针，引擎无关
type RowCountProbe struct {
	db          *gorm.DB
	BytesPerRow int64
}

// NewRowCountProbe 创建行数折算探针
func NewRowCountProbe(db *gorm.DB, bytesPerRow int64) *RowCountProbe {
	if bytesPerRow <= 0 {
		bytesPerRow = 256
	}
	return &RowCountProbe{db: db, BytesPerRow: bytesPerRow}
}

func (p *RowCountProbe) TableSizeBytes(ctx context.Context, tableName string) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).Table(tableName).Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count * p.BytesPerRow, nil
}
