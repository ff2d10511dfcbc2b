package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"catalog_gateway/internal/api/dto"
	"catalog_gateway/internal/api/response"
	"catalog_gateway/internal/middleware"
	"catalog_gateway/internal/service"
)

// HeaderIdempotencyKey 创建任务的幂等键
const HeaderIdempotencyKey = "Idempotency-Key"

// ==================== 控制器 ====================

// JobController 导入任务控制器
type JobController struct {
	jobService *service.JobService
}

func NewJobController(jobService *service.JobService) *JobController {
	return &JobController{jobService: jobService}
}

// ==================== API 方法 ====================

// Create 创建导入任务
// @Summary 创建导入任务，立即返回，不等待执行
// @Tags Job
// @Accept json
// @Param Idempotency-Key header string false "幂等键"
// @Param body body dto.CreateJobRequest true "创建请求"
// @Success 201 {object} dto.JobActionResponse
// @Router /v1/import/jobs [post]
func (ctrl *JobController) Create(c *gin.Context) {
	var req dto.CreateJobRequest
	if err := bindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}

	job, created, err := ctrl.jobService.Create(
		c.Request.Context(),
		middleware.GetUserID(c),
		c.GetHeader(HeaderIdempotencyKey),
		req,
	)
	if err != nil {
		response.Fail(c, err)
		return
	}

	status := http.StatusCreated
	if !created {
		status = http.StatusOK
	}
	c.JSON(status, dto.JobActionResponse{ID: job.ID, JobID: job.ID, Status: job.Status})
}

// List 任务列表
// @Summary 分页查询任务，status 支持 a,b 或 a|b
// @Tags Job
// @Param page query int false "页码"
// @Param per_page query int false "每页数量"
// @Param status query string false "状态"
// @Success 200 {object} response.ListResp[model.Job]
// @Router /v1/import/jobs [get]
func (ctrl *JobController) List(c *gin.Context) {
	var req dto.ListJobsRequest
	if err := bindQuery(c, &req); err != nil {
		response.Fail(c, err)
		return
	}

	jobs, total, err := ctrl.jobService.List(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		response.Fail(c, err)
		return
	}

	req.Normalize()
	response.List(c, jobs, req.Page, req.PerPage, total)
}

// Get 任务详情
// @Summary 任务详情，可估算时附带 eta_seconds
// @Tags Job
// @Param id path string true "任务ID"
// @Success 200 {object} dto.JobDetailResponse
// @Router /v1/import/jobs/{id} [get]
func (ctrl *JobController) Get(c *gin.Context) {
	detail, err := ctrl.jobService.Get(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, detail)
}

// Items 任务明细
// @Summary 任务明细，最早的在前
// @Tags Job
// @Param id path string true "任务ID"
// @Param status query string false "明细状态"
// @Success 200 {object} response.ListResp[model.JobItem]
// @Router /v1/import/jobs/{id}/items [get]
func (ctrl *JobController) Items(c *gin.Context) {
	var req dto.ListJobItemsRequest
	if err := bindQuery(c, &req); err != nil {
		response.Fail(c, err)
		return
	}

	items, total, err := ctrl.jobService.Items(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), req)
	if err != nil {
		response.Fail(c, err)
		return
	}

	req.Normalize()
	response.List(c, items, req.Page, req.PerPage, total)
}

// Action 任务动作：retry / cancel / resume / replay
// @Summary 执行任务动作
// @Tags Job
// @Param id path string true "任务ID"
// @Param action path string true "retry | cancel | resume | replay"
// @Param body body dto.RetryJobRequest false "仅 retry 使用"
// @Success 200 {object} dto.JobActionResponse
// @Router /v1/import/jobs/{id}/{action} [post]
func (ctrl *JobController) Action(c *gin.Context) {
	var req dto.RetryJobRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}
	onlyFailed := true
	if req.OnlyFailed != nil {
		onlyFailed = *req.OnlyFailed
	}

	result, err := ctrl.jobService.Perform(
		c.Request.Context(),
		middleware.GetUserID(c),
		c.Param("id"),
		c.Param("action"),
		onlyFailed,
	)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, result)
}

// Enrich 为导入结果创建 AI 补全任务
// @Summary 创建 ai_enrichment 任务
// @Tags Job
// @Accept json
// @Param body body dto.EnrichJobRequest true "补全请求"
// @Success 201 {object} dto.EnrichJobResponse
// @Router /v1/import/jobs/enrich [post]
func (ctrl *JobController) Enrich(c *gin.Context) {
	var req dto.EnrichJobRequest
	if err := bindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}

	result, err := ctrl.jobService.Enrich(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, result)
}
