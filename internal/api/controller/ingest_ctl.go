package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"retail_price_v1_202608/internal/api/dto"
	"retail_price_v1_202608/internal/model"
	"retail_price_v1_202608/internal/repository"
	"retail_price_v1_202608/internal/service"
)

// IngestController 入库接口（外部抓取进程调用）
type IngestController struct {
	ingestService *service.IngestService
	storeRepo     repository.StoreRepository
	overrideRepo  repository.EanOverrideRepository
}

// NewIngestController 创建入库控制器
func NewIngestController(
	ingestService *service.IngestService,
	storeRepo repository.StoreRepository,
	overrideRepo repository.EanOverrideRepository,
) *IngestController {
	return &IngestController{
		ingestService: ingestService,
		storeRepo:     storeRepo,
		overrideRepo:  overrideRepo,
	}
}

// IngestBatch POST /api/ingest/batch
func (ctl *IngestController) IngestBatch(c *gin.Context) {
	var req dto.IngestBatchReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	store := &model.Store{
		Code:     req.StoreCode,
		Name:     req.StoreName,
		Province: req.Province,
		Branch:   req.Branch,
	}

	records := make([]service.IngestRecord, 0, len(req.Records))
	for _, r := range req.Records {
		records = append(records, service.IngestRecord{
			SKU:               r.SKU,
			StoreRecordID:     r.StoreRecordID,
			EAN:               r.EAN,
			AuxEAN:            r.AuxEAN,
			Name:              r.Name,
			Brand:             r.Brand,
			Manufacturer:      r.Manufacturer,
			Category:          r.Category,
			Subcategory:       r.Subcategory,
			StoreName:         r.StoreName,
			URL:               r.URL,
			Available:         r.Available,
			RawAttrs:          r.RawAttrs,
			ListPrice:         r.ListPrice,
			OfferPrice:        r.OfferPrice,
			OfferType:         r.OfferType,
			PromoType:         r.PromoType,
			PromoTextRegular:  r.PromoTextRegular,
			PromoTextDiscount: r.PromoTextDiscount,
			PromoComments:     r.PromoComments,
			PromoTexts:        r.PromoTexts,
		})
	}

	result, err := ctl.ingestService.IngestBatch(c.Request.Context(), store, req.CapturedAt, records)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repository.ErrReferentialIntegrity) {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	// 区域归属（可选）
	for _, name := range req.Regions {
		regionID, err := ctl.storeRepo.EnsureRegion(c.Request.Context(), name)
		if err != nil {
			continue
		}
		_ = ctl.storeRepo.AssignRegion(c.Request.Context(), result.StoreID, regionID)
	}

	c.JSON(http.StatusOK, result)
}

// AppendOverride POST /api/ean-overrides
func (ctl *IngestController) AppendOverride(c *gin.Context) {
	var req dto.EanOverrideReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	override := &model.EanOverride{
		StoreCode:  req.StoreCode,
		NativeCode: req.NativeCode,
		EAN:        req.EAN,
		Note:       req.Note,
	}
	id, err := ctl.overrideRepo.Append(c.Request.Context(), override)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "revision": override.Revision})
}

// ResolveOverride GET /api/ean-overrides/resolve?store_code=&native_code=
func (ctl *IngestController) ResolveOverride(c *gin.Context) {
	storeCode := c.Query("store_code")
	nativeCode := c.Query("native_code")
	if storeCode == "" || nativeCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少 store_code / native_code 参数"})
		return
	}

	ean, found, err := ctl.overrideRepo.Resolve(c.Request.Context(), storeCode, nativeCode)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "无修正记录"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ean": ean})
}
