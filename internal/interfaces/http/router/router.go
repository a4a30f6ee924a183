// Package router mounts the API's route groups under a versioned prefix.
package router

import (
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
)

// Router mounts DomainGroups on an engine under /api/<version>
type Router struct {
	engine  *gin.Engine
	version string
	groups  []*DomainGroup
}

// RouterOption configures a Router
type RouterOption func(*Router)

// WithAPIVersion sets the version segment of the prefix
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.version = version
	}
}

// NewRouter creates a Router for engine. The version defaults to v1.
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{engine: engine, version: "v1"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register queues groups for Setup
func (r *Router) Register(groups ...*DomainGroup) *Router {
	r.groups = append(r.groups, groups...)
	return r
}

// Prefix is the path every registered route starts with
func (r *Router) Prefix() string {
	return "/api/" + r.version
}

// Setup mounts every registered group and returns the number of routes added
func (r *Router) Setup() int {
	api := r.engine.Group(r.Prefix())
	n := 0
	for _, g := range r.groups {
		n += g.mount(api)
	}
	return n
}

// Route is a method and a path relative to the API prefix
type Route struct {
	Method string
	Path   string
}

type route struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

// DomainGroup collects the routes of one area of the API. Middleware added
// with Use applies to every route of the group and its subgroups.
type DomainGroup struct {
	name       string
	prefix     string
	middleware []gin.HandlerFunc
	routes     []route
	subgroups  []*DomainGroup
}

// NewDomainGroup creates a group mounted at prefix
func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{name: name, prefix: prefix}
}

// Name returns the group name
func (dg *DomainGroup) Name() string { return dg.name }

// Prefix returns the group prefix
func (dg *DomainGroup) Prefix() string { return dg.prefix }

// Use appends middleware
func (dg *DomainGroup) Use(middleware ...gin.HandlerFunc) *DomainGroup {
	dg.middleware = append(dg.middleware, middleware...)
	return dg
}

// Handle adds a route; handlers run after the group's middleware
func (dg *DomainGroup) Handle(method, relativePath string, handlers ...gin.HandlerFunc) *DomainGroup {
	dg.routes = append(dg.routes, route{method: method, path: relativePath, handlers: handlers})
	return dg
}

func (dg *DomainGroup) GET(p string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodGet, p, handlers...)
}

func (dg *DomainGroup) POST(p string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodPost, p, handlers...)
}

func (dg *DomainGroup) PUT(p string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodPut, p, handlers...)
}

func (dg *DomainGroup) DELETE(p string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodDelete, p, handlers...)
}

// Group adds a nested group
func (dg *DomainGroup) Group(name, prefix string) *DomainGroup {
	sub := NewDomainGroup(name, prefix)
	dg.subgroups = append(dg.subgroups, sub)
	return sub
}

// Routes lists the group's routes, subgroups included, with paths relative
// to the API prefix
func (dg *DomainGroup) Routes() []Route {
	var out []Route
	dg.walk("/", func(method, p string) {
		out = append(out, Route{Method: method, Path: p})
	})
	return out
}

func (dg *DomainGroup) walk(base string, visit func(method, p string)) {
	base = joinPath(base, dg.prefix)
	for _, rt := range dg.routes {
		visit(rt.method, joinPath(base, rt.path))
	}
	for _, sub := range dg.subgroups {
		sub.walk(base, visit)
	}
}

func (dg *DomainGroup) mount(parent *gin.RouterGroup) int {
	group := parent.Group(dg.prefix)
	if len(dg.middleware) > 0 {
		group.Use(dg.middleware...)
	}
	for _, rt := range dg.routes {
		group.Handle(rt.method, rt.path, rt.handlers...)
	}
	n := len(dg.routes)
	for _, sub := range dg.subgroups {
		n += sub.mount(group)
	}
	return n
}

// joinPath joins like gin does: a trailing slash on elem survives
func joinPath(base, elem string) string {
	if elem == "" {
		return base
	}
	joined := path.Join(base, elem)
	if elem[len(elem)-1] == '/' && joined[len(joined)-1] != '/' {
		joined += "/"
	}
	return joined
}
