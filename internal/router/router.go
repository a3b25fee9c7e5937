package router

import (
	"github.com/gin-gonic/gin"

	"retail_price_v1_202608/internal/api/controller"
)

// Controllers 控制器集合
type Controllers struct {
	Store       *controller.StoreController
	Ingest      *controller.IngestController
	Report      *controller.ReportController
	Maintenance *controller.MaintenanceController
}

// SetupRouter 注册所有路由
func SetupRouter(ctls *Controllers) *gin.Engine {
	r := gin.Default()

	api := r.Group("/api")
	{
		// store 门店注册表
		stores := api.Group("/stores")
		{
			stores.GET("", ctls.Store.List)
			stores.POST("", ctls.Store.Upsert)
			stores.DELETE("/:id", ctls.Store.Delete)
		}

		// ingest 抓取入库（外部生产者）
		ingest := api.Group("/ingest")
		{
			// POST /api/ingest/batch
			ingest.POST("/batch", ctls.Ingest.IngestBatch)
		}

		// EAN 人工修正表
		overrides := api.Group("/ean-overrides")
		{
			overrides.POST("", ctls.Ingest.AppendOverride)
			overrides.GET("/resolve", ctls.Ingest.ResolveOverride)
		}

		// reports 派生只读视图（外部报表前端）
		reports := api.Group("/reports")
		{
			reports.GET("/catalog/:storeCode", ctls.Report.CurrentCatalog)
			reports.GET("/compare", ctls.Report.CrossStoreComparison)
			reports.GET("/trend", ctls.Report.CategoryTrend)
			reports.GET("/changes", ctls.Report.PriceChanges)
		}

		// maintenance 手动触发
		maintenance := api.Group("/maintenance")
		{
			maintenance.POST("/run", ctls.Maintenance.Run)
			maintenance.GET("/status", ctls.Maintenance.Status)
		}
	}

	return r
}
