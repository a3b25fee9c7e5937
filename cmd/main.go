package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"retail_price_v1_202608/internal/api/controller"
	"retail_price_v1_202608/internal/model"
	"retail_price_v1_202608/internal/repository"
	"retail_price_v1_202608/internal/router"
	"retail_price_v1_202608/internal/service"
	"retail_price_v1_202608/internal/task"
	"retail_price_v1_202608/pkg/cache"
	"retail_price_v1_202608/pkg/database"
)

func main() {
	// 1. 初始化数据库
	db := initDatabase()

	// 2. 初始化依赖
	deps := initDependencies(db)

	// 3. 启动定时任务
	deps.TaskManager.Start()
	defer deps.TaskManager.Stop()

	// 4. 初始化路由
	r := router.SetupRouter(deps.Controllers)

	// 5. 启动服务
	startServer(r)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Repos       *Repositories
	Services    *Services
	TaskManager *task.TaskManager
	Controllers *router.Controllers
}

// Repositories 仓库集合
type Repositories struct {
	Store        repository.StoreRepository
	Product      repository.ProductRepository
	StoreProduct repository.StoreProductRepository
	Snapshot     repository.SnapshotRepository
	Override     repository.EanOverrideRepository
	Report       repository.ReportRepository
}

// Services 服务集合
type Services struct {
	Ingest *service.IngestService
	Report *service.ReportService
	Notify *service.NotifyService
}

// ==================== 初始化函数 ====================

// initDatabase 初始化数据库
func initDatabase() *gorm.DB {
	dsn := getEnv("DATABASE_DSN",
		"host=localhost user=retail password=retail dbname=analisis_retail port=5432 sslmode=disable")

	return database.InitDB(dsn,
		// 注册表
		&model.Region{}, &model.Store{}, &model.Product{},
		// 映射与日志
		&model.StoreProduct{}, &model.PriceSnapshot{},
		// 人工修正
		&model.EanOverride{},
	)
}

// initDependencies 初始化所有依赖
func initDependencies(db *gorm.DB) *Dependencies {
	// -------- Repo 层 --------
	repos := &Repositories{
		Store:        repository.NewStoreRepository(db),
		Product:      repository.NewProductRepository(db),
		StoreProduct: repository.NewStoreProductRepository(db),
		Snapshot:     repository.NewSnapshotRepository(db),
		Override:     repository.NewEanOverrideRepository(db),
		Report:       repository.NewReportRepository(db),
	}

	// -------- 缓存（可选）--------
	reportCache := cache.New(
		getEnv("REDIS_ADDR", ""),
		getEnv("REDIS_PASSWORD", ""),
		5*time.Minute,
	)

	// -------- Service 层 --------
	services := &Services{
		Ingest: service.NewIngestService(
			repos.Store, repos.Product, repos.StoreProduct, repos.Snapshot, repos.Override),
		Report: service.NewReportService(repos.Report, reportCache),
		Notify: service.NewNotifyService(getEnv("CHANGE_FEED_WEBHOOK", "")),
	}

	// -------- 任务层 --------
	taskManager := initTaskManager(db, repos, services)

	// -------- 控制器 --------
	controllers := &router.Controllers{
		Store:       controller.NewStoreController(repos.Store),
		Ingest:      controller.NewIngestController(services.Ingest, repos.Store, repos.Override),
		Report:      controller.NewReportController(services.Report, repos.Store),
		Maintenance: controller.NewMaintenanceController(taskManager),
	}

	return &Dependencies{
		DB:          db,
		Repos:       repos,
		Services:    services,
		TaskManager: taskManager,
		Controllers: controllers,
	}
}

// initTaskManager 初始化后台任务
func initTaskManager(db *gorm.DB, repos *Repositories, services *Services) *task.TaskManager {
	cfg := task.DefaultConfig()
	cfg.Maintenance.SizeThresholdBytes = getEnvInt64("RETENTION_MAX_BYTES", cfg.Maintenance.SizeThresholdBytes)
	cfg.Maintenance.RetentionMonths = int(getEnvInt64("RETENTION_MONTHS", int64(cfg.Maintenance.RetentionMonths)))

	return task.NewTaskManager(&task.TaskManagerDeps{
		SnapshotRepo:  repos.Snapshot,
		CapacityProbe: database.NewPgRelationProbe(db),
		ReportService: services.Report,
		NotifyService: services.Notify,
	}, cfg)
}

// ==================== 服务启动 ====================

// startServer 启动服务
func startServer(r *gin.Engine) {
	port := getEnv("SERVER_PORT", "8080")

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	// 异步启动服务
	go func() {
		log.Printf("服务启动在 :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭服务...")

	// 优雅关闭，最多等待 30 秒
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("服务强制关闭: %v", err)
	}

	log.Println("服务已退出")
}

// ==================== 工具函数 ====================

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
