package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"damage-assessment/internal/domain"
	"damage-assessment/internal/repository"
	"damage-assessment/internal/service"
	"damage-assessment/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

type envelope struct {
	Code    int             `json:"code"`
	Type    string          `json:"type"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

type testEnv struct {
	router  *Router
	configs *store.ConfigStore
	cfg     domain.Configuration
}

func demoConfig() domain.Configuration {
	cfg := domain.DefaultConfiguration()
	cfg.URL = "memory://demo"
	cfg.APIKey = "anon-key-0123456789"
	cfg.TableName = "image_register_demo"
	return cfg
}

func newTestEnv(t *testing.T, saveConfig bool) *testEnv {
	t.Helper()
	logger := zap.NewNop()

	cfg := demoConfig()
	mem := repository.NewMemoryRowStore()
	mem.SeedDemoJobs(cfg)

	configs := store.NewConfigStore(store.NewMemoryKV(), "", logger)
	if saveConfig {
		require.NoError(t, configs.Save(context.Background(), cfg))
	}

	svc := service.NewAssessmentService(repository.NewSchemeFactory(nil, nil, mem), nil, logger)
	router := NewRouter(logger)
	router.RegisterConfigRoutes(NewConfigHandler(configs, logger))
	router.RegisterAssessmentRoutes(NewAssessmentHandler(svc, configs, logger))

	return &testEnv{router: router, configs: configs, cfg: cfg}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) (envelope, T) {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	var out T
	if len(env.Result) > 0 && string(env.Result) != "null" {
		require.NoError(t, json.Unmarshal(env.Result, &out))
	}
	return env, out
}

func (e *testEnv) images(t *testing.T, jobID string) JobImagesResponse {
	t.Helper()
	rec := e.do(t, http.MethodGet, "/api/v1/jobs/"+jobID+"/images", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	env, resp := decode[JobImagesResponse](t, rec)
	require.Equal(t, ResultSuccess, env.Code)
	return resp
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t, false)
	rec := env.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetConfig_Unsaved(t *testing.T) {
	env := newTestEnv(t, false)

	rec := env.do(t, http.MethodGet, "/api/v1/config", "")

	require.Equal(t, http.StatusOK, rec.Code)
	_, view := decode[ConfigView](t, rec)
	assert.False(t, view.Saved)
	assert.False(t, view.Configured)
	assert.Contains(t, view.Problem, "configuration is incomplete")
	assert.Len(t, view.Fields, len(domain.LogicalFields()))
	assert.Equal(t, "job_id", view.Config.Columns.JobID)
}

func TestSaveConfig_MasksAndKeepsStoredKey(t *testing.T) {
	env := newTestEnv(t, true)

	rec := env.do(t, http.MethodGet, "/api/v1/config", "")
	require.Equal(t, http.StatusOK, rec.Code)
	_, view := decode[ConfigView](t, rec)
	assert.True(t, view.Saved)
	assert.True(t, view.Configured)
	assert.Equal(t, "********6789", view.Config.APIKey)

	// 回传隐藏后的凭证，只修改表名
	view.Config.TableName = "image_register_v2"
	body, err := json.Marshal(view.Config)
	require.NoError(t, err)
	rec = env.do(t, http.MethodPut, "/api/v1/config", string(body))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	saved, found, err := env.configs.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "anon-key-0123456789", saved.APIKey)
	assert.Equal(t, "image_register_v2", saved.TableName)
}

func TestSaveConfig_InvalidBody(t *testing.T) {
	env := newTestEnv(t, false)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPut, "/api/v1/config", "").Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPut, "/api/v1/config", "{oops").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, env.do(t, http.MethodPost, "/api/v1/config", "{}").Code)
}

func TestGetJobImages(t *testing.T) {
	env := newTestEnv(t, true)

	resp := env.images(t, "JOB-001")

	assert.Equal(t, "JOB-001", resp.JobID)
	require.Equal(t, 4, resp.Count)
	names := make([]string, 0, len(resp.Images))
	for _, img := range resp.Images {
		names = append(names, img.FileName)
	}
	assert.Equal(t, []string{"IMG_0002.jpg", "IMG_0015.jpg", "IMG_0010.jpg", "IMG_0021.jpg"}, names)

	first := resp.Images[0]
	assert.Equal(t, "Kitchen", first.Location)
	assert.Equal(t, 2, first.LocationIndex)
	assert.Equal(t, 3, first.LocationTotal)
	assert.Equal(t, domain.ScaleSerious, first.DamageScale)
	assert.True(t, first.IncludeInObservations)
	assert.False(t, first.IncludeInReport)
	assert.Contains(t, first.LocationChoices, "Kitchen")
}

func TestGetJobImages_UnknownLocationChoices(t *testing.T) {
	env := newTestEnv(t, true)

	resp := env.images(t, "JOB-002")

	require.Equal(t, 2, resp.Count)
	last := resp.Images[1]
	assert.Equal(t, domain.UnknownLocation, last.Location)
	assert.Equal(t, domain.UnknownLocation, last.LocationChoices[0])
}

func TestGetJobImages_EmptyJob(t *testing.T) {
	env := newTestEnv(t, true)

	resp := env.images(t, "JOB-404")

	assert.Equal(t, 0, resp.Count)
	assert.NotNil(t, resp.Images)
}

func TestGetJobImages_Unconfigured(t *testing.T) {
	env := newTestEnv(t, false)

	rec := env.do(t, http.MethodGet, "/api/v1/jobs/JOB-001/images", "")

	assert.Equal(t, http.StatusPreconditionFailed, rec.Code)
	envl, _ := decode[any](t, rec)
	assert.Equal(t, ResultConfigRequired, envl.Code)
	assert.Contains(t, envl.Message, "configuration is incomplete")
}

func TestJobRoutes_NotFound(t *testing.T) {
	env := newTestEnv(t, true)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/v1/jobs/JOB-001/other", "").Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/v1/jobs/images", "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, env.do(t, http.MethodPost, "/api/v1/jobs/JOB-001/images", "").Code)
}

func TestUpdateImageField_Location(t *testing.T) {
	env := newTestEnv(t, true)
	before := env.images(t, "JOB-002").Images[0]
	rec := env.do(t, http.MethodPatch, "/api/v1/images/"+before.ID, `{"field":"location","value":"Exterior"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	after := env.images(t, "JOB-002")
	var found bool
	for _, img := range after.Images {
		if img.ID == before.ID {
			found = true
			assert.Equal(t, "Exterior", img.Location)
		}
	}
	assert.True(t, found)
}

func TestUpdateImageField_Flags(t *testing.T) {
	env := newTestEnv(t, true)
	target := env.images(t, "JOB-001").Images[2]

	rec := env.do(t, http.MethodPatch, "/api/v1/images/"+target.ID, `{"field":"incReport","value":true}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = env.do(t, http.MethodPatch, "/api/v1/images/"+target.ID, `{"field":"incObs","value":false}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	for _, img := range env.images(t, "JOB-001").Images {
		if img.ID == target.ID {
			assert.True(t, img.IncludeInReport)
			assert.False(t, img.IncludeInObservations)
		}
	}
}

func TestUpdateImageField_Validation(t *testing.T) {
	env := newTestEnv(t, true)

	cases := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"malformed", `{"field":`},
		{"unknown field", `{"field":"colour","value":"red"}`},
		{"not editable", `{"field":"caption","value":"x"}`},
		{"flag not bool", `{"field":"incObs","value":"yes"}`},
		{"empty location", `{"field":"location","value":"  "}`},
		{"missing value", `{"field":"location"}`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPatch, "/api/v1/images/some-id", c.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestUpdateImageField_Unconfigured(t *testing.T) {
	env := newTestEnv(t, false)

	rec := env.do(t, http.MethodPatch, "/api/v1/images/x", `{"field":"incObs","value":true}`)

	assert.Equal(t, http.StatusPreconditionFailed, rec.Code)
}

func TestUpdateImageField_Routes(t *testing.T) {
	env := newTestEnv(t, true)

	assert.Equal(t, http.StatusMethodNotAllowed, env.do(t, http.MethodGet, "/api/v1/images/x", "").Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPatch, "/api/v1/images/", `{}`).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPatch, "/api/v1/images/a/b", `{}`).Code)
}

func TestExportJob(t *testing.T) {
	env := newTestEnv(t, true)

	rec := env.do(t, http.MethodGet, "/api/v1/jobs/JOB-001/export", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="JOB-001.xlsx"`)

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Job JOB-001")
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, JobExportHeader, rows[0])
	assert.Equal(t, "IMG_0002.jpg", rows[1][4])
	assert.Equal(t, "2 / 3", rows[1][2])
	assert.Equal(t, "Serious", rows[1][6])
}

func TestExportJob_ReportOnly(t *testing.T) {
	env := newTestEnv(t, true)
	target := env.images(t, "JOB-001").Images[1]
	rec := env.do(t, http.MethodPatch, "/api/v1/images/"+target.ID, `{"field":"incReport","value":true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/jobs/JOB-001/export?report=true", "")
	require.Equal(t, http.StatusOK, rec.Code)

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Job JOB-001")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, target.ID, rows[1][0])
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusPreconditionFailed, statusFor(domain.ErrConfigurationIncomplete))
	assert.Equal(t, http.StatusBadRequest, statusFor(domain.ErrInvalidFieldValue))
	assert.Equal(t, http.StatusBadGateway, statusFor(domain.ErrStoreUpdateFailed))
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
}

func TestCodeFor(t *testing.T) {
	assert.Equal(t, ResultConfigRequired, codeFor(domain.ErrInvalidConfiguration))
	assert.Equal(t, ResultInvalidRequest, codeFor(domain.ErrUnknownField))
	assert.Equal(t, ResultStoreFailed, codeFor(domain.ErrStoreQueryFailed))
	assert.Equal(t, ResultError, codeFor(assert.AnError))
}

func TestSanitizeSheetName(t *testing.T) {
	assert.Equal(t, "A_B_C", sanitizeSheetName("A/B:C"))
	assert.Len(t, []rune(sanitizeSheetName(strings.Repeat("x", 40))), 27)
}
