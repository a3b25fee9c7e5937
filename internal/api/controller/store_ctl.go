package controller

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"retail_price_v1_202608/internal/api/dto"
	"retail_price_v1_202608/internal/model"
	"retail_price_v1_202608/internal/repository"
)

// StoreController 门店注册表接口
type StoreController struct {
	storeRepo repository.StoreRepository
}

// NewStoreController 创建门店控制器
func NewStoreController(storeRepo repository.StoreRepository) *StoreController {
	return &StoreController{storeRepo: storeRepo}
}

// List GET /api/stores
func (ctl *StoreController) List(c *gin.Context) {
	stores, err := ctl.storeRepo.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(stores), "stores": stores})
}

// Upsert POST /api/stores
func (ctl *StoreController) Upsert(c *gin.Context) {
	var req dto.UpsertStoreReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	store := &model.Store{
		Code:     req.Code,
		Name:     req.Name,
		Province: req.Province,
		Branch:   req.Branch,
	}
	id, err := ctl.storeRepo.Upsert(c.Request.Context(), store)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := ctl.assignRegions(c.Request.Context(), id, req.Regions); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id})
}

// Delete DELETE /api/stores/:id
// 物理删除，级联清除映射与快照
func (ctl *StoreController) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id 必须是数字"})
		return
	}

	if _, err := ctl.storeRepo.GetByID(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "门店不存在"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := ctl.storeRepo.Delete(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func (ctl *StoreController) assignRegions(ctx context.Context, storeID int64, regions []string) error {
	for _, name := range regions {
		regionID, err := ctl.storeRepo.EnsureRegion(ctx, name)
		if err != nil {
			return err
		}
		if err := ctl.storeRepo.AssignRegion(ctx, storeID, regionID); err != nil {
			return err
		}
	}
	return nil
}
