package httpapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Router 使用标准库 http.ServeMux
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	r := &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
	r.Handle("/healthz", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, Ok("ok"))
	})
	return r
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterConfigRoutes GET/PUT /api/v1/config
func (r *Router) RegisterConfigRoutes(c *ConfigHandler) {
	r.Handle("/api/v1/config", func(w http.ResponseWriter, req *http.Request) {
		switch req.Method {
		case http.MethodGet:
			c.GetConfig(w, req)
		case http.MethodPut:
			c.SaveConfig(w, req)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
}

// RegisterAssessmentRoutes
//   - GET   /api/v1/jobs/{jobId}/images
//   - GET   /api/v1/jobs/{jobId}/export
//   - PATCH /api/v1/images/{id}
func (r *Router) RegisterAssessmentRoutes(a *AssessmentHandler) {
	r.Handle("/api/v1/jobs/", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		rest := strings.TrimPrefix(req.URL.Path, "/api/v1/jobs/")
		i := strings.LastIndex(rest, "/")
		if i <= 0 {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		jobID, action := rest[:i], rest[i+1:]
		switch action {
		case "images":
			a.GetJobImages(w, req, jobID)
		case "export":
			a.ExportJob(w, req, jobID)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	r.Handle("/api/v1/images/", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPatch {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		id := strings.TrimPrefix(req.URL.Path, "/api/v1/images/")
		if id == "" || strings.Contains(id, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		a.UpdateImageField(w, req, id)
	})
}
