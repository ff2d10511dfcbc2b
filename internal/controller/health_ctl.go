package controller

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"catalog_gateway/internal/api/response"
	"catalog_gateway/internal/task"
)

// HealthController 存活检查，不需要认证
type HealthController struct {
	db      *gorm.DB
	tasks   *task.TaskManager
	version string
}

// NewHealthController tasks 为 nil 时不展示后台任务状态
func NewHealthController(db *gorm.DB, tasks *task.TaskManager, version string) *HealthController {
	return &HealthController{db: db, tasks: tasks, version: version}
}

// Health 存活检查，数据库不可用时 status 为 degraded，仍返回 200
// @Summary 存活检查
// @Tags Health
// @Success 200 {object} map[string]interface{}
// @Router /v1/health [get]
func (ctrl *HealthController) Health(c *gin.Context) {
	status := "ok"
	database := "ok"

	if ctrl.db == nil {
		database = "unconfigured"
	} else if err := ctrl.ping(c.Request.Context()); err != nil {
		status = "degraded"
		database = "unavailable"
	}

	checks := gin.H{"database": database}
	if ctrl.tasks != nil {
		checks["tasks"] = ctrl.tasks.Status()
	}

	response.OK(c, gin.H{
		"status":    status,
		"version":   ctrl.version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    checks,
	})
}

func (ctrl *HealthController) ping(ctx context.Context) error {
	sqlDB, err := ctrl.db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}
