package httpapi

import (
	"net/http"
	"strings"

	"carelink-alert/internal/service"

	"go.uber.org/zap"
)

// AlertsHandler 报警 Handler（SOS 触发、处理、查询）
type AlertsHandler struct {
	alerts *service.AlertService
	logger *zap.Logger
}

// NewAlertsHandler 创建报警 Handler
func NewAlertsHandler(alerts *service.AlertService, logger *zap.Logger) *AlertsHandler {
	return &AlertsHandler{
		alerts: alerts,
		logger: logger,
	}
}

type triggerSOSRequest struct {
	ProfileID string   `json:"profile_id"`
	Message   string   `json:"message,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// TriggerSOS 处理 POST /api/v1/sos
func (h *AlertsHandler) TriggerSOS(w http.ResponseWriter, r *http.Request) {
	var req triggerSOSRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	if req.ProfileID == "" {
		writeJSON(w, http.StatusBadRequest, Fail("profile_id is required"))
		return
	}

	result, err := h.alerts.TriggerSOS(r.Context(), req.ProfileID, r.Header.Get("X-User-Id"), req.Message, req.Latitude, req.Longitude)
	if err != nil {
		h.logger.Error("SOS trigger failed",
			zap.String("profile_id", req.ProfileID),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, Fail("failed to trigger sos"))
		return
	}

	writeJSON(w, http.StatusCreated, Ok(result))
}

type resolveAlertRequest struct {
	ResolverID string `json:"resolver_id"`
}

// Resolve 处理 PUT /api/v1/alerts/{id}/resolve
func (h *AlertsHandler) Resolve(w http.ResponseWriter, r *http.Request, alertID string) {
	var req resolveAlertRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	resolverID := req.ResolverID
	if resolverID == "" {
		resolverID = r.Header.Get("X-User-Id")
	}
	if resolverID == "" {
		writeJSON(w, http.StatusBadRequest, Fail("resolver_id is required"))
		return
	}

	if err := h.alerts.Resolve(r.Context(), alertID, resolverID); err != nil {
		if strings.Contains(err.Error(), "not found") {
			writeJSON(w, http.StatusNotFound, Fail(err.Error()))
			return
		}
		h.logger.Error("Alert resolve failed",
			zap.String("alert_id", alertID),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, Fail("failed to resolve alert"))
		return
	}

	writeJSON(w, http.StatusOK, Ok(map[string]string{"alert_id": alertID, "status": "resolved"}))
}

// ListByProfile 处理 GET /api/v1/profiles/{id}/alerts
func (h *AlertsHandler) ListByProfile(w http.ResponseWriter, r *http.Request, profileID string) {
	limit := parseInt(r.URL.Query().Get("limit"), 50)
	if limit > 200 {
		limit = 200
	}

	alerts, err := h.alerts.ListAlerts(r.Context(), profileID, limit)
	if err != nil {
		h.logger.Error("Failed to list alerts",
			zap.String("profile_id", profileID),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, Fail("failed to list alerts"))
		return
	}

	writeJSON(w, http.StatusOK, Ok(alerts))
}
