package httpapi

import (
	"net/http"

	"carelink-alert/internal/models"
	"carelink-alert/internal/service"

	"go.uber.org/zap"
)

// SettingsHandler 报警配置 Handler
type SettingsHandler struct {
	settings *service.SettingsService
	logger   *zap.Logger
}

// NewSettingsHandler 创建配置 Handler
func NewSettingsHandler(settings *service.SettingsService, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{
		settings: settings,
		logger:   logger,
	}
}

// Get 处理 GET /api/v1/profiles/{id}/alert-settings
// 配置行不存在时返回默认值（首次访问会建行）
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request, profileID string) {
	settings, err := h.settings.Get(r.Context(), profileID)
	if err != nil {
		h.logger.Error("Failed to get alert settings",
			zap.String("profile_id", profileID),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, Fail("failed to get alert settings"))
		return
	}

	writeJSON(w, http.StatusOK, Ok(settings))
}

// Put 处理 PUT /api/v1/profiles/{id}/alert-settings
// 部分更新：body 里出现的字段覆盖，缺席字段保留
func (h *SettingsHandler) Put(w http.ResponseWriter, r *http.Request, profileID string) {
	var patch models.AlertSettingsPatch
	if err := readBodyJSON(r, 1<<20, &patch); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	settings, err := h.settings.Patch(r.Context(), profileID, &patch)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, Ok(settings))
}
