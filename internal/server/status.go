package server

import (
	"context"
	"runtime"
	"sort"
	"strings"

	"github.com/broady/taskmaster"
	"github.com/broady/taskmaster/internal/store"
)

// Status reports server health and route discovery.
type Status struct {
	app   *taskmaster.App
	store *store.Store
}

// NewStatus creates the status service for app.
func NewStatus(app *taskmaster.App, s *store.Store) *Status {
	return &Status{app: app, store: s}
}

// Register adds GET /api/status to svc.
func (s *Status) Register(svc *taskmaster.Service) {
	svc.Register("Get", taskmaster.Query(s.Get))
}

// StatusRequest is the request for Status.Get.
type StatusRequest struct{}

// StatusResponse provides server status and service discovery.
type StatusResponse struct {
	// OK indicates the server is healthy.
	OK bool `json:"ok"`
	// Tasks is the number of stored tasks.
	Tasks int `json:"tasks"`
	// Routes maps service names to "METHOD /path" patterns.
	Routes map[string][]string `json:"routes"`
	// Runtime describes the Go process.
	Runtime RuntimeInfo `json:"runtime"`
}

// RuntimeInfo contains process statistics.
type RuntimeInfo struct {
	Version       string `json:"version"`
	NumGoroutines int    `json:"num_goroutines"`
	NumCPU        int    `json:"num_cpu"`
	Alloc         uint64 `json:"alloc"`
}

// Get returns server status and registered routes.
func (s *Status) Get(ctx context.Context, req *StatusRequest) (*StatusResponse, error) {
	routes := make(map[string][]string)
	for key, pattern := range s.app.Routes() {
		service, _, ok := strings.Cut(key, ".")
		if ok {
			routes[service] = append(routes[service], pattern)
		}
	}
	for _, patterns := range routes {
		sort.Strings(patterns)
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return &StatusResponse{
		OK:     true,
		Tasks:  s.store.Len(),
		Routes: routes,
		Runtime: RuntimeInfo{
			Version:       runtime.Version(),
			NumGoroutines: runtime.NumGoroutine(),
			NumCPU:        runtime.NumCPU(),
			Alloc:         m.Alloc,
		},
	}, nil
}
