package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/unrolled/secure"
	"go.uber.org/zap"

	v1 "github.com/centum-academy/portal-api/internal/api/v1"
	"github.com/centum-academy/portal-api/internal/auth"
	"github.com/centum-academy/portal-api/internal/config"
	"github.com/centum-academy/portal-api/internal/rbac"
	"github.com/centum-academy/portal-api/internal/service"
)

type Server struct {
	cfg      *config.Config
	registry *rbac.Registry
	codec    *auth.CookieCodec
	provider *service.AuthProvider
	pinger   v1.Pinger
	logger   *zap.Logger
}

func NewServer(cfg *config.Config, reg *rbac.Registry, codec *auth.CookieCodec, provider *service.AuthProvider, pinger v1.Pinger, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{cfg: cfg, registry: reg, codec: codec, provider: provider, pinger: pinger, logger: logger}
}

// Handler builds the full router. Every request passes through the session
// middleware, so handlers always find an auth state in the context.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	sec := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'self'",
		SSLRedirect:           s.cfg.IsProduction(),
		SSLProxyHeaders:       map[string]string{"X-Forwarded-Proto": "https"},
		IsDevelopment:         !s.cfg.IsProduction(),
	})
	r.Use(sec.Handler)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(auth.SessionMiddleware(s.codec, s.provider, s.logger))

	api := v1.NewAPI(s.cfg, s.registry, s.codec, s.provider, s.pinger, s.logger)
	r.Mount("/api/v1", api.Routes())
	r.Mount("/", api.PageRoutes())
	return r
}

func (s *Server) NewHTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.cfg.BindAddr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: s.cfg.RemoteTimeout + 15*time.Second,
	}
}
