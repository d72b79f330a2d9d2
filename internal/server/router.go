package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/loykin/gatewait/internal/supervisor"
)

// Source exposes the supervisor state the HTTP endpoints report. It is an
// interface so tests can serve canned snapshots.
type Source interface {
	Snapshot() supervisor.StatusSnapshot
}

// Router provides embeddable HTTP handlers for observing the supervisor.
// Endpoints:
//
//	GET {basePath}/healthz   always 200 while the server runs
//	GET {basePath}/readyz    200 once the primary runs, 503 before that
//	GET {basePath}/status    full status snapshot as JSON
//
// basePath may be empty or start with '/'; no trailing slash.
type Router struct {
	src      Source
	basePath string
	metrics  http.Handler // optional, mounted at {basePath}/metrics
}

// NewRouter constructs a Router with a configurable basePath.
func NewRouter(src Source, basePath string) *Router {
	return &Router{src: src, basePath: sanitizeBase(basePath)}
}

// WithMetrics mounts the given handler at {basePath}/metrics.
func (r *Router) WithMetrics(h http.Handler) *Router {
	r.metrics = h
	return r
}

// Handler returns an http.Handler powered by gin that can be mounted in any
// server/mux.
func (r *Router) Handler() http.Handler {
	g := gin.New()
	g.Use(gin.Recovery())
	group := g.Group(r.basePath)
	group.GET("/healthz", r.handleHealthz)
	group.GET("/readyz", r.handleReadyz)
	group.GET("/status", r.handleStatus)
	if r.metrics != nil {
		group.GET("/metrics", gin.WrapH(r.metrics))
	}
	return g
}

// NewServer starts a standalone HTTP server on addr using this router. The
// caller shuts it down via http.Server's Close or Shutdown.
func NewServer(addr, basePath string, src Source) (*http.Server, error) {
	r := NewRouter(src, basePath)
	server := &http.Server{
		Addr:              addr,
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() { _ = server.ListenAndServe() }()
	return server, nil
}

type okResp struct {
	OK    bool   `json:"ok"`
	State string `json:"state,omitempty"`
}

func (r *Router) handleHealthz(c *gin.Context) {
	writeJSON(c, http.StatusOK, okResp{OK: true})
}

// handleReadyz reports readiness of the supervised workload: the endpoint
// answers 503 until the primary process is launched, which lets orchestrators
// distinguish "still waiting for dependencies" from "serving".
func (r *Router) handleReadyz(c *gin.Context) {
	state := r.src.Snapshot().State
	if state == supervisor.StateRunning {
		writeJSON(c, http.StatusOK, okResp{OK: true, State: string(state)})
		return
	}
	writeJSON(c, http.StatusServiceUnavailable, okResp{OK: false, State: string(state)})
}

func (r *Router) handleStatus(c *gin.Context) {
	writeJSON(c, http.StatusOK, r.src.Snapshot())
}
