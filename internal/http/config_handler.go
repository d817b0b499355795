package httpapi

import (
	"net/http"

	"damage-assessment/internal/domain"
	"damage-assessment/internal/store"

	"go.uber.org/zap"
)

// ConfigHandler 读写持久化的存储配置
type ConfigHandler struct {
	configs *store.ConfigStore
	logger  *zap.Logger
}

func NewConfigHandler(configs *store.ConfigStore, logger *zap.Logger) *ConfigHandler {
	return &ConfigHandler{configs: configs, logger: logger}
}

// ConfigView 配置输出（凭证已隐藏）
type ConfigView struct {
	Config     domain.Configuration  `json:"config"`
	Configured bool                  `json:"configured"`
	Saved      bool                  `json:"saved"`
	Problem    string                `json:"problem,omitempty"`
	Fields     []domain.LogicalField `json:"fields"`
}

func newConfigView(cfg domain.Configuration, saved bool) ConfigView {
	v := ConfigView{
		Config: cfg.Masked(),
		Saved:  saved,
		Fields: domain.LogicalFields(),
	}
	if err := cfg.Validate(); err != nil {
		v.Problem = err.Error()
	} else {
		v.Configured = true
	}
	return v
}

// GET /api/v1/config
func (h *ConfigHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, saved, err := h.configs.Load(r.Context())
	if err != nil {
		h.logger.Error("Failed to load configuration", zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(newConfigView(cfg, saved)))
}

// PUT /api/v1/config
// 允许保存不完整的配置（编辑中）；不完整时 configured=false
func (h *ConfigHandler) SaveConfig(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	current, _, err := h.configs.Load(ctx)
	if err != nil {
		writeError(w, err)
		return
	}

	next := domain.DefaultConfiguration()
	if err := readBodyJSON(r, 1<<20, &next); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail(ResultInvalidRequest, "invalid configuration body: "+err.Error()))
		return
	}
	// 前端回传的是隐藏后的凭证时保留原值
	if next.APIKey != "" && next.APIKey == domain.MaskSecret(current.APIKey) {
		next.APIKey = current.APIKey
	}

	if err := h.configs.Save(ctx, next); err != nil {
		h.logger.Error("Failed to save configuration", zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(newConfigView(next, true)))
}
