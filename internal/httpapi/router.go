package httpapi

import (
	"net/http"

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

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterAuthRoutes 注册认证路由
func (r *Router) RegisterAuthRoutes(a *AuthHandler) {
	post := func(h http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, req *http.Request) {
			if req.Method != http.MethodPost {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			h(w, req)
		}
	}
	r.Handle("/auth/api/v1/register", post(a.Register))
	r.Handle("/auth/api/v1/login", post(a.Login))
	r.Handle("/auth/api/v1/logout", post(a.Logout))
}

// RegisterCRMRoutes 注册联系人/仪表盘/建议/导出路由
func (r *Router) RegisterCRMRoutes(c *ContactHandler, d *DashboardHandler, adv *AdvisorHandler, e *ExportHandler) {
	r.Handle("/crm/api/v1/contacts", c.Collection)
	r.Handle("/crm/api/v1/contacts/", c.Subtree("/crm/api/v1/contacts/"))

	r.Handle("/crm/api/v1/dashboard", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		d.Summary(w, req)
	})

	r.Handle("/crm/api/v1/suggestions/", adv.Suggest("/crm/api/v1/suggestions/"))
	r.Handle("/crm/api/v1/export", e.Export)

	// health
	r.Handle("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}
