package rest

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/projectboard/internal/logging"
	"github.com/dmitrijs2005/projectboard/internal/server/metrics"
	"github.com/dmitrijs2005/projectboard/internal/server/ratelimit"
	"github.com/gin-gonic/gin"
)

// Deps is everything the router needs. TrustedProxies lists the proxy
// addresses or CIDRs whose X-Forwarded-For is believed; when empty the peer
// address is the client.
type Deps struct {
	Users          UserService
	Projects       ProjectService
	Health         HealthChecker
	Limiter        ratelimit.Limiter
	Metrics        *metrics.Metrics
	Logger         logging.Logger
	Secret         []byte
	CORSOrigin     string
	TrustedProxies []string
}

// route declares one endpoint. Guards run in slice order before the
// handler; every table entry lists them as rate limit, then body
// validation, then authentication.
type route struct {
	method  string
	path    string
	guards  []gin.HandlerFunc
	handler gin.HandlerFunc
}

func routes(d Deps) []route {
	authH := NewAuthHandler(d.Users, d.Metrics)
	projH := NewProjectHandler(d.Projects)
	healthH := NewHealthHandler(d.Health)

	limited := rateLimit(d.Limiter, d.Metrics, d.Logger)
	authed := requireAuth(d.Secret, d.Metrics)

	return []route{
		{http.MethodGet, "/api/health", nil, healthH.Live},
		{http.MethodGet, "/api/health/db", nil, healthH.DB},

		{http.MethodPost, "/api/auth/register", []gin.HandlerFunc{limited, bindJSON[registerRequest]()}, authH.Register},
		{http.MethodPost, "/api/auth/login", []gin.HandlerFunc{limited, bindJSON[loginRequest]()}, authH.Login},

		{http.MethodGet, "/api/projects", nil, projH.List},
		{http.MethodGet, "/api/projects/search/query", nil, projH.Search},
		{http.MethodGet, "/api/projects/mine/list", []gin.HandlerFunc{authed}, projH.Mine},
		{http.MethodGet, "/api/projects/:id", nil, projH.Get},
		{http.MethodPost, "/api/projects", []gin.HandlerFunc{bindJSON[projectRequest](), authed}, projH.Create},
		{http.MethodPut, "/api/projects/:id", []gin.HandlerFunc{bindJSON[projectRequest](), authed}, projH.Update},
		{http.MethodDelete, "/api/projects/:id", []gin.HandlerFunc{authed}, projH.Delete},
	}
}

// NewRouter builds the gin engine with global middleware, the route table,
// /metrics and the JSON 404.
func NewRouter(d Deps) *gin.Engine {
	if d.Logger == nil {
		d.Logger = logging.Nop{}
	}
	if d.Metrics == nil {
		d.Metrics = metrics.New()
	}

	r := gin.New()
	if err := r.SetTrustedProxies(d.TrustedProxies); err != nil {
		d.Logger.Warn(context.Background(), "invalid trusted proxies, forwarded headers ignored", "error", err.Error())
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(
		withRequestID(),
		accessLog(d.Logger),
		observe(d.Metrics),
		recovery(d.Logger),
		securityHeaders(d.CORSOrigin),
		errorHandler(d.Logger),
	)

	for _, rt := range routes(d) {
		chain := append(append([]gin.HandlerFunc{}, rt.guards...), rt.handler)
		r.Handle(rt.method, rt.path, chain...)
	}

	r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	r.NoRoute(notFoundRoute)

	return r
}
