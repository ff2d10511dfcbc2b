package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"catalog_gateway/internal/config"
	"catalog_gateway/internal/controller"
	"catalog_gateway/internal/middleware"
	"catalog_gateway/internal/model"
	"catalog_gateway/internal/repository"
	"catalog_gateway/internal/router"
	"catalog_gateway/internal/service"
	"catalog_gateway/internal/task"
	"catalog_gateway/pkg/database"
	"catalog_gateway/pkg/logging"
	"catalog_gateway/pkg/net"
)

// version 构建时通过 -ldflags 注入
var version = "dev"

func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("加载配置失败")
	}

	// 2. 初始化日志
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
		Output: os.Stderr,
	})
	gin.SetMode(cfg.Server.Mode)

	// 3. 初始化数据库
	db := initDatabase(cfg)

	// 4. 初始化依赖
	deps := initDependencies(cfg, db)

	// 5. 启动定时任务
	if err := deps.Tasks.Start(); err != nil {
		logging.Fatal().Err(err).Msg("启动定时任务失败")
	}

	// 6. 初始化路由
	r := router.SetupRouter(cfg.Server.BasePath, deps.Dispatcher)

	// 7. 启动服务
	startServer(cfg, r, deps.Tasks)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB         *gorm.DB
	Repos      *Repositories
	Services   *Services
	Dispatcher *router.Dispatcher
	Tasks      *task.TaskManager
}

// Repositories 仓库集合
type Repositories struct {
	Product       repository.ProductRepository
	Job           repository.JobRepository
	JobUow        *repository.JobUnitOfWork
	SeoAudit      repository.SeoAuditRepository
	SeoGeneration repository.SeoGenerationRepository
	Integration   repository.IntegrationRepository
}

// Services 服务集合
type Services struct {
	Product     *service.ProductService
	Job         *service.JobService
	Seo         *service.SeoService
	Integration *service.IntegrationService
	Proxy       *service.ProxyService
}

// ==================== 初始化函数 ====================

// initDatabase 初始化数据库
func initDatabase(cfg *config.Config) *gorm.DB {
	opts := database.Options{
		DSN:          cfg.Database.DSN,
		MaxIdleConns: cfg.Database.MaxIdleConns,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		ConnMaxLife:  cfg.Database.ConnMaxLife,
		AutoMigrate:  cfg.Database.AutoMigrate,
	}

	db, err := database.InitDB(opts,
		// Catalog
		&model.Product{},
		// Jobs
		&model.Job{}, &model.JobItem{},
		// Content quality
		&model.ContentAudit{}, &model.SeoGeneration{},
		// Integrations
		&model.Integration{},
	)
	if err != nil {
		logging.Fatal().Err(err).Msg("初始化数据库失败")
	}

	if err := middleware.RegisterOwnerCallbacks(db); err != nil {
		logging.Fatal().Err(err).Msg("注册 GORM 回调失败")
	}

	if cfg.Database.AutoMigrate {
		if err := repository.EnsureJobIndexes(db); err != nil {
			logging.Fatal().Err(err).Msg("创建任务索引失败")
		}
	}
	return db
}

// initDependencies 初始化所有依赖
func initDependencies(cfg *config.Config, db *gorm.DB) *Dependencies {
	// -------- Repo 层 --------
	repos := initRepositories(db)

	// -------- 转发 --------
	upstream := net.NewDispatcher(net.Options{
		Name:          "upstream",
		BaseURL:       cfg.Proxy.TargetURL,
		Timeout:       cfg.Proxy.Timeout,
		MaxFailures:   cfg.Proxy.BreakerFailures,
		OpenTimeout:   cfg.Proxy.BreakerOpenDelay,
		OnStateChange: service.ObserveBreakerState,
	})

	// -------- 业务服务 --------
	services := &Services{
		Product:     service.NewProductService(repos.Product),
		Job:         service.NewJobService(repos.JobUow),
		Integration: service.NewIntegrationService(repos.Integration),
		Proxy:       service.NewProxyService(upstream, cfg.Proxy.MaxBodyBytes),
	}
	services.Seo = service.NewSeoService(repos.Product, repos.SeoAudit, repos.SeoGeneration, services.Product)

	// -------- 定时任务 --------
	tasks := initTasks(cfg, repos)

	// -------- Controller 层 --------
	controllers := router.Controllers{
		Health:      controller.NewHealthController(db, tasks, version),
		Product:     controller.NewProductController(services.Product),
		Job:         controller.NewJobController(services.Job),
		Seo:         controller.NewSeoController(services.Seo),
		Integration: controller.NewIntegrationController(services.Integration),
	}

	// -------- 认证 & 限流 --------
	authenticator := middleware.NewAuthenticator(
		middleware.NewMemorySessionCache(cfg.Auth.CacheMaxEntries),
		initVerifier(cfg.Auth),
		cfg.Auth.CacheTTL,
	)
	quota := middleware.NewMemoryQuotaTracker(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window)

	dispatcher := router.NewDispatcher(
		router.BuildRouteTable(controllers, cfg.Proxy.Prefixes),
		authenticator,
		quota,
		services.Proxy,
	)

	return &Dependencies{
		DB:         db,
		Repos:      repos,
		Services:   services,
		Dispatcher: dispatcher,
		Tasks:      tasks,
	}
}

// initRepositories 初始化所有仓库
func initRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Product:       repository.NewProductRepository(db),
		Job:           repository.NewJobRepository(db),
		JobUow:        repository.NewJobUnitOfWork(db),
		SeoAudit:      repository.NewSeoAuditRepository(db),
		SeoGeneration: repository.NewSeoGenerationRepository(db),
		Integration:   repository.NewIntegrationRepository(db),
	}
}

// initVerifier 按 auth.mode 选择凭证校验器
func initVerifier(cfg config.AuthConfig) middleware.IdentityVerifier {
	if cfg.Mode == "remote" {
		logging.Info().Str("verify_url", cfg.VerifyURL).Msg("使用远程身份服务校验凭证")
		return middleware.NewRemoteVerifier(cfg.VerifyURL, cfg.APIKey, cfg.VerifyTimeout)
	}
	return middleware.NewJWTVerifier(cfg.JWTSecret, cfg.JWTIssuer)
}

// ==================== 定时任务 ====================

// initTasks 创建定时任务管理器，由 main 启动
func initTasks(cfg *config.Config, repos *Repositories) *task.TaskManager {
	return task.NewTaskManager(
		&task.TaskManagerDeps{JobCounter: repos.Job},
		&task.TaskManagerConfig{
			JobMetricsEnabled: cfg.Tasks.JobMetricsEnabled,
			JobMetricsSpec:    cfg.Tasks.JobMetricsSpec,
		},
	)
}

// ==================== 服务启动 ====================

// startServer 启动服务
func startServer(cfg *config.Config, r *gin.Engine, tasks *task.TaskManager) {
	addr := ":" + strconv.Itoa(cfg.Server.Port)

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 异步启动服务
	go func() {
		logging.Info().Str("addr", addr).Str("version", version).Msg("服务启动")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("服务启动失败")
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.Info().Msg("正在关闭服务...")
	tasks.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Fatal().Err(err).Msg("服务强制关闭")
	}

	logging.Info().Msg("服务已退出")
}
