package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"retail_price_v1_202608/internal/model"
	"retail_price_v1_202608/internal/repository"
)

// ==================== IngestService 抓取数据入库服务 ====================

// IngestRecord 抓取进程上报的单条商品观测
type IngestRecord struct {
	// 门店本地标识
	SKU           string
	StoreRecordID string

	// 规范商品属性
	EAN          string
	AuxEAN       string
	Name         string
	Brand        string
	Manufacturer string
	Category     string
	Subcategory  string

	// 门店展示数据
	StoreName string
	URL       string
	Available *bool
	RawAttrs  json.RawMessage

	// 价格与促销
	ListPrice         *float64
	OfferPrice        *float64
	OfferType         string
	PromoType         string
	PromoTextRegular  string
	PromoTextDiscount string
	PromoComments     string
	PromoTexts        []string
}

// IngestResult 一次入库批次的统计
type IngestResult struct {
	RunID    string `json:"run_id"`
	StoreID  int64  `json:"store_id"`
	Inserted int    `json:"inserted"`
	Skipped  int    `json:"skipped"` // 同刻重复抓取，视为已入库
	Failed   int    `json:"failed"`
}

// IngestService 实现外部生产者契约：
// 先 upsert 注册表（门店/商品/映射），再追加价格快照；
// 同一批次共用一个 capturedAt，重复时刻由唯一约束串行化，
// 第二个写入者拿到 DuplicateSnapshot 按"已抓取，跳过"处理
type IngestService struct {
	storeRepo    repository.StoreRepository
	productRepo  repository.ProductRepository
	mappingRepo  repository.StoreProductRepository
	snapshotRepo repository.SnapshotRepository
	overrideRepo repository.EanOverrideRepository
}

// NewIngestService 创建入库服务
func NewIngestService(
	storeRepo repository.StoreRepository,
	productRepo repository.ProductRepository,
	mappingRepo repository.StoreProductRepository,
	snapshotRepo repository.SnapshotRepository,
	overrideRepo repository.EanOverrideRepository,
) *IngestService {
	return &IngestService{
		storeRepo:    storeRepo,
		productRepo:  productRepo,
		mappingRepo:  mappingRepo,
		snapshotRepo: snapshotRepo,
		overrideRepo: overrideRepo,
	}
}

// IngestBatch 处理一个门店的一次抓取批次
func (s *IngestService) IngestBatch(
	ctx context.Context,
	store *model.Store,
	capturedAt time.Time,
	records []IngestRecord,
) (*IngestResult, error) {
	runID := uuid.NewString()

	storeID, err := s.storeRepo.Upsert(ctx, store)
	if err != nil {
		return nil, err
	}

	result := &IngestResult{RunID: runID, StoreID: storeID}

	for i := range records {
		rec := &records[i]
		if err := s.ingestOne(ctx, storeID, store.Code, capturedAt, rec); err != nil {
			if errors.Is(err, repository.ErrDuplicateSnapshot) {
				result.Skipped++
				continue
			}
			result.Failed++
			log.Printf("[Ingest] run=%s 门店 %s 第 %d 条入库失败: %v", runID, store.Code, i, err)
			continue
		}
		result.Inserted++
	}

	log.Printf("[Ingest] run=%s 门店 %s 完成: 新增 %d, 跳过 %d, 失败 %d",
		runID, store.Code, result.Inserted, result.Skipped, result.Failed)
	return result, nil
}

func (s *IngestService) ingestOne(
	ctx context.Context,
	storeID int64,
	storeCode string,
	capturedAt time.Time,
	rec *IngestRecord,
) error {
	// 数据源没给 EAN 时查人工修正表
	ean := rec.EAN
	if ean == "" {
		native := rec.SKU
		if native == "" {
			native = rec.StoreRecordID
		}
		if native != "" {
			if resolved, ok, err := s.overrideRepo.Resolve(ctx, storeCode, native); err != nil {
				return err
			} else if ok {
				ean = resolved
			}
		}
	}

	product := &model.Product{
		EAN:          strPtr(ean),
		AuxEAN:       strPtr(rec.AuxEAN),
		Name:         rec.Name,
		Brand:        rec.Brand,
		Manufacturer: rec.Manufacturer,
		Category:     rec.Category,
		Subcategory:  rec.Subcategory,
	}
	productID, err := s.productRepo.Upsert(ctx, product)
	if err != nil {
		return err
	}

	mapping := &model.StoreProduct{
		StoreID:       storeID,
		ProductID:     productID,
		SKU:           strPtr(rec.SKU),
		StoreRecordID: strPtr(rec.StoreRecordID),
		StoreName:     rec.StoreName,
		StoreURL:      rec.URL,
		Available:     rec.Available,
		RawAttrs:      datatypes.JSON(rec.RawAttrs),
	}
	mappingID, err := s.mappingRepo.Upsert(ctx, mapping)
	if err != nil {
		return err
	}

	snap := &model.PriceSnapshot{
		StoreID:           storeID,
		StoreProductID:    mappingID,
		CapturedAt:        capturedAt,
		ListPrice:         rec.ListPrice,
		OfferPrice:        rec.OfferPrice,
		OfferType:         strPtr(rec.OfferType),
		PromoType:         strPtr(rec.PromoType),
		PromoTextRegular:  strPtr(rec.PromoTextRegular),
		PromoTextDiscount: strPtr(rec.PromoTextDiscount),
		PromoComments:     strPtr(rec.PromoComments),
		PromoTexts:        rec.PromoTexts,
	}
	_, err = s.snapshotRepo.Record(ctx, snap)
	return err
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
