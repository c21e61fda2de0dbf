package httpapi

import (
	"net/http"
	"time"

	"carelink-alert/internal/service"

	"go.uber.org/zap"
)

// ReadingsHandler 直连读数录入 Handler（App 内表单提交）
type ReadingsHandler struct {
	resolver *service.ReadingResolver
	pipeline *service.IngestionPipeline
	logger   *zap.Logger
}

// NewReadingsHandler 创建读数 Handler
func NewReadingsHandler(resolver *service.ReadingResolver, pipeline *service.IngestionPipeline, logger *zap.Logger) *ReadingsHandler {
	return &ReadingsHandler{
		resolver: resolver,
		pipeline: pipeline,
		logger:   logger,
	}
}

type createBPRequest struct {
	ProfileID  string     `json:"profile_id"`
	Systolic   int        `json:"systolic"`
	Diastolic  int        `json:"diastolic"`
	Pulse      *int       `json:"pulse,omitempty"`
	MeasuredAt *time.Time `json:"measured_at,omitempty"`
}

// CreateBP 处理 POST /api/v1/readings/bp
func (h *ReadingsHandler) CreateBP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createBPRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	if req.ProfileID == "" {
		writeJSON(w, http.StatusBadRequest, Fail("profile_id is required"))
		return
	}

	measuredAt := time.Time{}
	if req.MeasuredAt != nil {
		measuredAt = *req.MeasuredAt
	}

	reading, err := h.resolver.ResolveBP(ctx, req.ProfileID, req.Systolic, req.Diastolic, req.Pulse, measuredAt)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail(err.Error()))
		return
	}

	result, err := h.pipeline.Ingest(ctx, reading, r.Header.Get("X-User-Id"))
	if err != nil {
		h.logger.Error("BP ingestion failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("failed to process reading"))
		return
	}

	writeJSON(w, http.StatusCreated, Ok(result))
}

type createGlucoseRequest struct {
	ProfileID  string     `json:"profile_id"`
	Value      int        `json:"value"`
	Context    string     `json:"context,omitempty"`
	MeasuredAt *time.Time `json:"measured_at,omitempty"`
}

// CreateGlucose 处理 POST /api/v1/readings/glucose
func (h *ReadingsHandler) CreateGlucose(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createGlucoseRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	if req.ProfileID == "" {
		writeJSON(w, http.StatusBadRequest, Fail("profile_id is required"))
		return
	}

	measuredAt := time.Time{}
	if req.MeasuredAt != nil {
		measuredAt = *req.MeasuredAt
	}

	reading, err := h.resolver.ResolveGlucose(ctx, req.ProfileID, req.Value, req.Context, measuredAt)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail(err.Error()))
		return
	}

	result, err := h.pipeline.Ingest(ctx, reading, r.Header.Get("X-User-Id"))
	if err != nil {
		h.logger.Error("Glucose ingestion failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("failed to process reading"))
		return
	}

	writeJSON(w, http.StatusCreated, Ok(result))
}

type createSymptomRequest struct {
	ProfileID  string     `json:"profile_id"`
	Name       string     `json:"name"`
	Severity   string     `json:"severity,omitempty"`
	Notes      *string    `json:"notes,omitempty"`
	MeasuredAt *time.Time `json:"measured_at,omitempty"`
}

// CreateSymptom 处理 POST /api/v1/readings/symptom
func (h *ReadingsHandler) CreateSymptom(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createSymptomRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	if req.ProfileID == "" {
		writeJSON(w, http.StatusBadRequest, Fail("profile_id is required"))
		return
	}

	measuredAt := time.Time{}
	if req.MeasuredAt != nil {
		measuredAt = *req.MeasuredAt
	}

	reading, err := h.resolver.ResolveSymptom(ctx, req.ProfileID, req.Name, req.Severity, req.Notes, measuredAt)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail(err.Error()))
		return
	}

	result, err := h.pipeline.Ingest(ctx, reading, r.Header.Get("X-User-Id"))
	if err != nil {
		h.logger.Error("Symptom ingestion failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("failed to process reading"))
		return
	}

	writeJSON(w, http.StatusCreated, Ok(result))
}
