package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"retail_price_v1_202608/internal/task"
)

// MaintenanceController 后台任务手动触发接口
type MaintenanceController struct {
	taskManager *task.TaskManager
}

// NewMaintenanceController 创建触发控制器
func NewMaintenanceController(tm *task.TaskManager) *MaintenanceController {
	return &MaintenanceController{taskManager: tm}
}

// Run POST /api/maintenance/run
func (ctl *MaintenanceController) Run(c *gin.Context) {
	if err := ctl.taskManager.TriggerMaintenance(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "保养任务已执行"})
}

// Status GET /api/maintenance/status
func (ctl *MaintenanceController) Status(c *gin.Context) {
	c.JSON(http.StatusOK, ctl.taskManager.Status())
}
