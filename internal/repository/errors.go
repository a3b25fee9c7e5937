package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ==================== 错误定义 ====================

// DataError 数据层错误码
type DataError string

func (e DataError) Error() string { return string(e) }

const (
	// ErrDuplicateMapping 注册表 upsert 路径的唯一键冲突
	ErrDuplicateMapping DataError = "duplicate mapping"
	// ErrDuplicateSnapshot 同一 (store_product, captured_at) 重复抓取
	ErrDuplicateSnapshot DataError = "duplicate snapshot"
	// ErrReferentialIntegrity 引用的门店/商品/映射不存在
	ErrReferentialIntegrity DataError = "referential integrity violation"
	// ErrRetention 保留任务的容量探测或批量删除失败
	ErrRetention DataError = "retention job failure"
	// ErrNotFound 记录不存在
	ErrNotFound DataError = "record not found"
)

// translateWriteError 把 GORM 翻译后的约束错误映射为本层错误码
// 约束冲突必须上抛给调用方（由生产者决定是重跑跳过还是排查），不得吞掉
func translateWriteError(err error, dup DataError) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", dup, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %v", ErrReferentialIntegrity, err)
	default:
		return err
	}
}
