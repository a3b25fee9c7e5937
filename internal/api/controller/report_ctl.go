package controller

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"retail_price_v1_202608/internal/repository"
	"retail_price_v1_202608/internal/service"
)

// ReportController 报表接口（外部报表前端消费）
type ReportController struct {
	reportService *service.ReportService
	storeRepo     repository.StoreRepository
}

// NewReportController 创建报表控制器
func NewReportController(reportService *service.ReportService, storeRepo repository.StoreRepository) *ReportController {
	return &ReportController{
		reportService: reportService,
		storeRepo:     storeRepo,
	}
}

// CurrentCatalog GET /api/reports/catalog/:storeCode
// 单店现价目录：每个门店商品取最新快照，连上规范商品属性
func (ctl *ReportController) CurrentCatalog(c *gin.Context) {
	code := c.Param("storeCode")

	store, err := ctl.storeRepo.GetByCode(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "门店不存在"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	rows, err := ctl.reportService.CurrentCatalog(c.Request.Context(), store.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"store": store.Code,
		"count": len(rows),
		"rows":  rows,
	})
}

// CrossStoreComparison GET /api/reports/compare?ean=
func (ctl *ReportController) CrossStoreComparison(c *gin.Context) {
	ean := c.Query("ean")
	if ean == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少 ean 参数"})
		return
	}

	rows, err := ctl.reportService.CrossStoreComparison(c.Request.Context(), ean)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ean":   ean,
		"count": len(rows),
		"rows":  rows,
	})
}

// CategoryTrend GET /api/reports/trend
func (ctl *ReportController) CategoryTrend(c *gin.Context) {
	rows, err := ctl.reportService.CategoryTrend(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count": len(rows),
		"rows":  rows,
	})
}

// PriceChanges GET /api/reports/changes?store_id=&since=
func (ctl *ReportController) PriceChanges(c *gin.Context) {
	var storeID int64
	if raw := c.Query("store_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "store_id 必须是数字"})
			return
		}
		storeID = id
	}

	var since time.Time
	if raw := c.Query("since"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "since 必须是 RFC3339 时间"})
			return
		}
		since = t
	}

	rows, err := ctl.reportService.PriceChanges(c.Request.Context(), storeID, since)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count": len(rows),
		"rows":  rows,
	})
}
