package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"damage-assessment/internal/domain"
	"damage-assessment/internal/mapping"
	"damage-assessment/internal/service"
	"damage-assessment/internal/store"

	"go.uber.org/zap"
)

// editableFields 前端允许就地修改的字段
var editableFields = map[domain.LogicalField]bool{
	domain.FieldLocation:  true,
	domain.FieldIncObs:    true,
	domain.FieldIncReport: true,
}

// AssessmentHandler 任务图片查询/编辑/导出
type AssessmentHandler struct {
	svc     *service.AssessmentService
	configs *store.ConfigStore
	logger  *zap.Logger
}

func NewAssessmentHandler(svc *service.AssessmentService, configs *store.ConfigStore, logger *zap.Logger) *AssessmentHandler {
	return &AssessmentHandler{svc: svc, configs: configs, logger: logger}
}

// ImageItem 记录 + 位置下拉候选
type ImageItem struct {
	domain.Record
	LocationChoices []string `json:"locationChoices"`
}

// JobImagesResponse GET /api/v1/jobs/{jobId}/images
type JobImagesResponse struct {
	JobID  string      `json:"jobId"`
	Count  int         `json:"count"`
	Images []ImageItem `json:"images"`
}

// UpdateFieldRequest PATCH /api/v1/images/{id}
type UpdateFieldRequest struct {
	Field string          `json:"field"`
	Value json.RawMessage `json:"value"`
}

func (h *AssessmentHandler) loadRecords(r *http.Request, jobID string) ([]domain.Record, error) {
	cfg, _, err := h.configs.Load(r.Context())
	if err != nil {
		return nil, err
	}
	return h.svc.LoadJob(r.Context(), jobID, cfg)
}

// GET /api/v1/jobs/{jobId}/images
func (h *AssessmentHandler) GetJobImages(w http.ResponseWriter, r *http.Request, jobID string) {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		writeJSON(w, http.StatusBadRequest, Fail(ResultInvalidRequest, "job id is required"))
		return
	}

	records, err := h.loadRecords(r, jobID)
	if err != nil {
		writeError(w, err)
		return
	}

	items := make([]ImageItem, 0, len(records))
	for _, rec := range records {
		items = append(items, ImageItem{Record: rec, LocationChoices: mapping.LocationChoices(rec)})
	}
	writeJSON(w, http.StatusOK, Ok(JobImagesResponse{
		JobID:  jobID,
		Count:  len(items),
		Images: items,
	}))
}

// GET /api/v1/jobs/{jobId}/export[?report=true]
func (h *AssessmentHandler) ExportJob(w http.ResponseWriter, r *http.Request, jobID string) {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		writeJSON(w, http.StatusBadRequest, Fail(ResultInvalidRequest, "job id is required"))
		return
	}

	records, err := h.loadRecords(r, jobID)
	if err != nil {
		writeError(w, err)
		return
	}
	if isTrue(r.URL.Query().Get("report")) {
		records = filterReportRecords(records)
	}

	data, err := GenerateJobWorkbook(jobID, records)
	if err != nil {
		h.logger.Error("Failed to generate job workbook", zap.String("job_id", jobID), zap.Error(err))
		writeError(w, err)
		return
	}

	filename := url.PathEscape(jobID) + ".xlsx"
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// PATCH /api/v1/images/{id}
// body: {"field": "location"|"incObs"|"incReport", "value": ...}
func (h *AssessmentHandler) UpdateImageField(w http.ResponseWriter, r *http.Request, id string) {
	var req UpdateFieldRequest
	if err := readBodyJSON(r, 1<<16, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail(ResultInvalidRequest, "invalid request body: "+err.Error()))
		return
	}

	field, err := domain.ParseLogicalField(req.Field)
	if err != nil {
		writeError(w, err)
		return
	}
	if !editableFields[field] {
		writeJSON(w, http.StatusBadRequest, Fail(ResultInvalidRequest, fmt.Sprintf("field %q is not editable", field)))
		return
	}

	var value any
	if err := json.Unmarshal(req.Value, &value); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail(ResultInvalidRequest, "invalid value: "+err.Error()))
		return
	}
	// 与本地乐观更新使用同一套类型校验
	if _, err := mapping.PatchRecord(domain.Record{ID: id}, field, value); err != nil {
		writeError(w, err)
		return
	}

	cfg, _, err := h.configs.Load(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.svc.UpdateField(r.Context(), id, field, value, cfg); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"id":    id,
		"field": field,
		"value": value,
	}))
}

func filterReportRecords(records []domain.Record) []domain.Record {
	out := make([]domain.Record, 0, len(records))
	for _, rec := range records {
		if rec.IncludeInReport {
			out = append(out, rec)
		}
	}
	return out
}
