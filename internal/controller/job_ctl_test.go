package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"catalog_gateway/internal/model"
	"catalog_gateway/internal/repository"
	"catalog_gateway/internal/service"
)

func setupJobRouter(t *testing.T, userID string) (*gin.Engine, *gorm.DB) {
	db := setupCtlTestDB(t)
	ctl := NewJobController(service.NewJobService(repository.NewJobUnitOfWork(db)))

	r := setupRouter(userID)
	r.GET("/import/jobs", ctl.List)
	r.POST("/import/jobs", ctl.Create)
	r.POST("/import/jobs/enrich", ctl.Enrich)
	r.GET("/import/jobs/:id", ctl.Get)
	r.GET("/import/jobs/:id/items", ctl.Items)
	r.POST("/import/jobs/:id/:action", ctl.Action)
	return r, db
}

func seedCtlJob(t *testing.T, db *gorm.DB, userID, status string, total, processed, failed int) *model.Job {
	t.Helper()
	job := &model.Job{
		JobType:        model.JobTypeImport,
		Status:         status,
		TotalItems:     total,
		ProcessedItems: processed,
		FailedItems:    failed,
	}
	job.UserID = userID
	job.RecomputeProgress()
	if err := db.Create(job).Error; err != nil {
		t.Fatalf("创建测试任务失败: %v", err)
	}
	return job
}

func TestJobController_CreateValidation(t *testing.T) {
	router, _ := setupJobRouter(t, "u1")

	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
	}{
		{"空请求体", nil, http.StatusBadRequest},
		{"缺少 source", map[string]interface{}{"name": "x"}, http.StatusBadRequest},
		{"缺少 source.value", map[string]interface{}{"source": map[string]interface{}{"type": "url"}}, http.StatusBadRequest},
		{"合法", map[string]interface{}{"source": map[string]interface{}{"type": "url", "value": "https://x"}}, http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(router, http.MethodPost, "/import/jobs", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
		})
	}
}

func TestJobController_CreateIdempotent(t *testing.T) {
	router, db := setupJobRouter(t, "u1")

	send := func() *httptest.ResponseRecorder {
		body, _ := json.Marshal(map[string]interface{}{
			"source": map[string]interface{}{"type": "csv", "value": []string{"a", "b", "c"}},
		})
		req, _ := http.NewRequest(http.MethodPost, "/import/jobs", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(HeaderIdempotencyKey, "same-key")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	first := send()
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())
	second := send()
	require.Equal(t, http.StatusOK, second.Code)

	firstBody := decodeBody(t, first)
	assert.Equal(t, firstBody["job_id"], decodeBody(t, second)["job_id"])
	assert.Equal(t, firstBody["id"], firstBody["job_id"])

	var count int64
	db.Model(&model.Job{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestJobController_RetryOnlyFailedFlag(t *testing.T) {
	router, db := setupJobRouter(t, "u1")

	tests := []struct {
		name          string
		body          interface{}
		wantProcessed int
	}{
		{"缺省只重试失败", nil, 6},
		{"显式 only_failed=false", map[string]interface{}{"only_failed": false}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := seedCtlJob(t, db, "u1", model.JobStatusFailed, 10, 8, 2)
			for i := 0; i < 2; i++ {
				require.NoError(t, db.Create(&model.JobItem{JobID: job.ID, Status: model.JobItemStatusError}).Error)
			}

			w := performRequest(router, http.MethodPost, "/import/jobs/"+job.ID+"/retry", tt.body)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			assert.Equal(t, model.JobStatusPending, decodeBody(t, w)["status"])

			var reloaded model.Job
			require.NoError(t, db.First(&reloaded, "id = ?", job.ID).Error)
			assert.Equal(t, tt.wantProcessed, reloaded.ProcessedItems)
			assert.Equal(t, 0, reloaded.FailedItems)
		})
	}
}

func TestJobController_ActionErrors(t *testing.T) {
	router, db := setupJobRouter(t, "u1")
	completed := seedCtlJob(t, db, "u1", model.JobStatusCompleted, 1, 1, 0)
	foreign := seedCtlJob(t, db, "u2", model.JobStatusFailed, 1, 1, 1)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantCode   string
	}{
		{"未知动作", "/import/jobs/" + completed.ID + "/explode", http.StatusBadRequest, "INVALID_ACTION"},
		{"已完成不能取消", "/import/jobs/" + completed.ID + "/cancel", http.StatusConflict, "INVALID_STATE"},
		{"已完成不能恢复", "/import/jobs/" + completed.ID + "/resume", http.StatusConflict, "INVALID_STATE"},
		{"其他用户的任务", "/import/jobs/" + foreign.ID + "/resume", http.StatusNotFound, "NOT_FOUND"},
		{"不存在的任务", "/import/jobs/missing/cancel", http.StatusNotFound, "NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(router, http.MethodPost, tt.path, nil)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, errorCodeOf(t, w))
		})
	}
}

func TestJobController_ListAndItems(t *testing.T) {
	router, db := setupJobRouter(t, "u1")
	job := seedCtlJob(t, db, "u1", model.JobStatusProcessing, 2, 1, 0)
	seedCtlJob(t, db, "u1", model.JobStatusCompleted, 1, 1, 0)
	seedCtlJob(t, db, "u2", model.JobStatusProcessing, 1, 0, 0)

	items := []model.JobItem{
		{JobID: job.ID, Status: model.JobItemStatusSuccess, ProductID: "p1"},
		{JobID: job.ID, Status: model.JobItemStatusPending},
	}
	require.NoError(t, db.Create(&items).Error)

	w := performRequest(router, http.MethodGet, "/import/jobs?status=processing,completed", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), decodeBody(t, w)["meta"].(map[string]interface{})["total"])

	w = performRequest(router, http.MethodGet, "/import/jobs?status=processing", nil)
	assert.Equal(t, float64(1), decodeBody(t, w)["meta"].(map[string]interface{})["total"])

	w = performRequest(router, http.MethodGet, "/import/jobs/"+job.ID+"/items?status=success", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeBody(t, w)
	require.Len(t, body["items"], 1)
	assert.Equal(t, "p1", body["items"].([]interface{})[0].(map[string]interface{})["product_id"])
}

func TestJobController_Enrich(t *testing.T) {
	router, db := setupJobRouter(t, "u1")
	source := seedCtlJob(t, db, "u1", model.JobStatusCompleted, 2, 2, 0)
	items := []model.JobItem{
		{JobID: source.ID, Status: model.JobItemStatusSuccess, ProductID: "p1"},
		{JobID: source.ID, Status: model.JobItemStatusSuccess, ProductID: "p2"},
	}
	require.NoError(t, db.Create(&items).Error)

	w := performRequest(router, http.MethodPost, "/import/jobs/enrich", map[string]interface{}{"job_id": source.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(2), body["products_count"])

	w = performRequest(router, http.MethodPost, "/import/jobs/enrich", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
