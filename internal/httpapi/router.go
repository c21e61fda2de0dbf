package httpapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Router 使用标准库 http.ServeMux（避免引入第三方路由依赖）
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

// HandleHandler 支持 http.Handler 接口（用于 promhttp 等）
func (r *Router) HandleHandler(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterWebhookRoutes 注册聊天网关入站路由
func (r *Router) RegisterWebhookRoutes(h *WebhookHandler) {
	r.Handle("/webhook", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.HandleInbound(w, req)
	})
}

// RegisterReadingRoutes 注册直连读数录入路由
func (r *Router) RegisterReadingRoutes(h *ReadingsHandler) {
	r.Handle("/api/v1/readings/bp", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.CreateBP(w, req)
	})

	r.Handle("/api/v1/readings/glucose", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.CreateGlucose(w, req)
	})

	r.Handle("/api/v1/readings/symptom", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.CreateSymptom(w, req)
	})
}

// RegisterProfileRoutes 注册档案子资源路由（alert-settings / alerts）
func (r *Router) RegisterProfileRoutes(settings *SettingsHandler, alerts *AlertsHandler) {
	r.Handle("/api/v1/profiles/", func(w http.ResponseWriter, req *http.Request) {
		rest := strings.TrimPrefix(req.URL.Path, "/api/v1/profiles/")
		parts := strings.Split(rest, "/")
		if len(parts) != 2 || parts[0] == "" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		profileID := parts[0]

		switch parts[1] {
		case "alert-settings":
			switch req.Method {
			case http.MethodGet:
				settings.Get(w, req, profileID)
			case http.MethodPut:
				settings.Put(w, req, profileID)
			default:
				w.WriteHeader(http.StatusMethodNotAllowed)
			}
		case "alerts":
			if req.Method != http.MethodGet {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			alerts.ListByProfile(w, req, profileID)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

// RegisterAlertRoutes 注册 SOS 触发和报警处理路由
func (r *Router) RegisterAlertRoutes(h *AlertsHandler) {
	r.Handle("/api/v1/sos", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.TriggerSOS(w, req)
	})

	r.Handle("/api/v1/alerts/", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPut || !strings.HasSuffix(req.URL.Path, "/resolve") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		alertID := strings.TrimSuffix(req.URL.Path, "/resolve")
		alertID = strings.TrimPrefix(alertID, "/api/v1/alerts/")
		if alertID == "" || strings.Contains(alertID, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.Resolve(w, req, alertID)
	})
}

// RegisterHealthRoute 注册存活探针
func (r *Router) RegisterHealthRoute() {
	r.Handle("/healthz", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}
