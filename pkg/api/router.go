package api

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/latticehq/lattice/pkg/auth"
	"github.com/latticehq/lattice/pkg/observability"
	"github.com/latticehq/lattice/pkg/rbac"
	"github.com/latticehq/lattice/pkg/session"
	"github.com/latticehq/lattice/pkg/store"
)

// Options configures a Server. Zero-value fields fall back to sane defaults
// so tests can construct a server from an empty Options.
type Options struct {
	Store    *store.Store
	Sessions *session.Registry
	Logger   *observability.Logger
	Metrics  *observability.Metrics

	// Dashboard cache sizing
	CacheSize int
	CacheTTL  time.Duration
}

// Server owns the route table and serializes access to the resource store.
// Mutating routes take the writer lock; read-only routes share the read
// lock.
type Server struct {
	mu sync.RWMutex

	store    *store.Store
	sessions *session.Registry
	checker  *rbac.Checker
	logger   *observability.Logger
	metrics  *observability.Metrics

	dashboards *dashboardCache
	routes     []route
}

// NewServer creates a server with its full route table registered
func NewServer(opts Options) *Server {
	if opts.Store == nil {
		opts.Store = store.NewStore()
	}
	if opts.Sessions == nil {
		opts.Sessions = session.NewRegistry()
	}
	if opts.Logger == nil {
		opts.Logger = observability.NopLogger()
	}
	if opts.Metrics == nil {
		opts.Metrics = observability.NewMetrics(nil)
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 128
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 30 * time.Second
	}

	s := &Server{
		store:    opts.Store,
		sessions: opts.Sessions,
		checker:  rbac.NewChecker(opts.Store),
		logger:   opts.Logger,
		metrics:  opts.Metrics,
	}
	s.dashboards = newDashboardCache(opts.CacheSize, opts.CacheTTL)
	s.routes = s.buildRoutes()
	return s
}

// Store exposes the underlying resource store for seeding at startup.
// Callers must not mutate it while the server is dispatching.
func (s *Server) Store() *store.Store {
	return s.store
}

type route struct {
	method   string
	pattern  string
	mutates  bool
	handler  func(*requestContext) (*Response, *Error)
	segments []segment
}

// segment is one compiled pattern element: either a literal keyword or a
// named identity capture
type segment struct {
	literal string
	param   string
}

func compilePattern(pattern string) []segment {
	parts := splitPath(pattern)
	segs := make([]segment, 0, len(parts))
	for _, p := range parts {
		if strings.HasPrefix(p, "{") && strings.HasSuffix(p, "}") {
			segs = append(segs, segment{param: strings.Trim(p, "{}")})
		} else {
			segs = append(segs, segment{literal: p})
		}
	}
	return segs
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// matchSegments binds request path segments against a compiled pattern.
// Literal segments must match exactly, and a segment that looks like an
// entity identity never matches a literal keyword. Returns the captured
// params and the number of literal matches, which ranks candidates: literal
// matches always outrank captures.
func matchSegments(segs []segment, parts []string) (map[string]string, int, bool) {
	if len(segs) != len(parts) {
		return nil, 0, false
	}
	params := make(map[string]string, 2)
	literals := 0
	for i, seg := range segs {
		if seg.literal != "" {
			if parts[i] != seg.literal || store.IsID(parts[i]) {
				return nil, 0, false
			}
			literals++
			continue
		}
		params[seg.param] = parts[i]
	}
	return params, literals, true
}

// Dispatch resolves and executes a single request. It always returns either
// a response or a typed failure; nothing panics across this boundary.
func (s *Server) Dispatch(req Request) (*Response, *Error) {
	start := time.Now()
	method := strings.ToUpper(strings.TrimSpace(req.Method))

	matched, apiErr := s.resolve(method, req)
	var resp *Response
	routeLabel := req.Path
	mutates := false

	if apiErr == nil {
		routeLabel = matched.route.pattern
		mutates = matched.route.mutates
		if mutates {
			s.mu.Lock()
		} else {
			s.mu.RLock()
		}

		ctx := &requestContext{
			srv:       s,
			req:       req,
			params:    matched.params,
			principal: s.resolvePrincipal(),
		}
		resp, apiErr = matched.route.handler(ctx)

		if mutates {
			if apiErr == nil {
				s.dashboards.purge()
			}
			s.mu.Unlock()
		} else {
			s.mu.RUnlock()
		}
	}

	code := "ok"
	if apiErr != nil {
		code = string(apiErr.Code)
	}
	s.metrics.RequestsTotal.WithLabelValues(method, routeLabel, code).Inc()
	s.metrics.RequestDuration.WithLabelValues(method, routeLabel).Observe(time.Since(start).Seconds())
	s.logger.WithFields(map[string]interface{}{
		"method":      method,
		"path":        req.Path,
		"route":       routeLabel,
		"code":        code,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("request dispatched")

	return resp, apiErr
}

type matchResult struct {
	route  *route
	params map[string]string
}

// resolve picks the best route for the request: the method-matching
// candidate with the most literal segments. A path that matches some route
// shape under a different method is an invalid-method failure; a path that
// matches nothing is an unknown endpoint.
func (s *Server) resolve(method string, req Request) (*matchResult, *Error) {
	parts := splitPath(req.Path)
	if len(parts) == 0 {
		return nil, ErrEndpointNotFound(req.Path)
	}

	var best *matchResult
	bestLiterals := -1
	pathMatched := false
	for i := range s.routes {
		r := &s.routes[i]
		params, literals, ok := matchSegments(r.segments, parts)
		if !ok {
			continue
		}
		pathMatched = true
		if r.method != method {
			continue
		}
		if literals > bestLiterals {
			best = &matchResult{route: r, params: params}
			bestLiterals = literals
		}
	}
	if best != nil {
		return best, nil
	}
	if pathMatched {
		return nil, ErrInvalidMethod(method, req.Path)
	}
	return nil, ErrEndpointNotFound(req.Path)
}

// resolvePrincipal maps the active session to its user. A session whose
// user no longer resolves is treated as unauthenticated.
func (s *Server) resolvePrincipal() *store.User {
	userID := s.sessions.ActiveUserID()
	if userID == "" {
		return nil
	}
	u, err := s.store.GetUser(userID)
	if err != nil {
		return nil
	}
	return u
}

// requestContext carries one request through its handler
type requestContext struct {
	srv       *Server
	req       Request
	params    map[string]string
	principal *store.User
}

func (c *requestContext) param(name string) string {
	return c.params[name]
}

func (c *requestContext) filter(name string) string {
	return c.req.Query[name]
}

// bind decodes the request body into v. A missing body binds nothing;
// malformed JSON and unknown fields are validation failures.
func (c *requestContext) bind(v interface{}) *Error {
	if len(c.req.Body) == 0 {
		return nil
	}
	dec := json.NewDecoder(strings.NewReader(string(c.req.Body)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return ErrValidation("malformed request body: " + err.Error())
	}
	return nil
}

// requirePrincipal fails closed when no authenticated principal is present
func (c *requestContext) requirePrincipal() (*store.User, *Error) {
	if c.principal == nil {
		return nil, ErrUnauthorized()
	}
	return c.principal, nil
}

// guardOrg authorizes the principal against an organization-scoped
// permission, recording denials
func (c *requestContext) guardOrg(orgID string, perm auth.Permission) *Error {
	d := c.srv.checker.CheckOrg(c.principal, orgID, perm)
	if !d.Allowed() {
		c.srv.metrics.GuardDenialsTotal.WithLabelValues(d.String()).Inc()
	}
	return decide(d, "organization", orgID)
}

// guardProject authorizes the principal against a project-scoped
// permission, recording denials
func (c *requestContext) guardProject(projectID string, perm auth.Permission) *Error {
	d := c.srv.checker.CheckProject(c.principal, projectID, perm)
	if !d.Allowed() {
		c.srv.metrics.GuardDenialsTotal.WithLabelValues(d.String()).Inc()
	}
	return decide(d, "project", projectID)
}
