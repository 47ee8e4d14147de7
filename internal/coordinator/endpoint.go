package coordinator

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/arqut/arqut-registry/internal/client"
	"github.com/arqut/arqut-registry/internal/pkg/logger"
	"github.com/arqut/arqut-registry/internal/pkg/models"
)

// EndpointCoordinator backs the endpoint catalog screen of one service.
// Endpoints are read-only; the coordinator only loads and projects.
type EndpointCoordinator struct {
	registry client.Registry
	log      *logger.Logger

	mu        sync.Mutex
	seq       uint64
	applied   uint64
	inflight  int
	serviceID uuid.UUID
	endpoints []models.Endpoint
	selected  *models.Endpoint
	lastErr   string
}

// NewEndpointCoordinator creates a coordinator over the given registry.
func NewEndpointCoordinator(reg client.Registry, log *logger.Logger) *EndpointCoordinator {
	if log == nil {
		log = logger.New(logger.Config{Level: "error"})
	}
	return &EndpointCoordinator{
		registry: reg,
		log:      log.Component("endpoints"),
	}
}

// LoadEndpoints fetches the endpoint list of a service and replaces the
// cache on success. Switching services drops the previous selection.
func (c *EndpointCoordinator) LoadEndpoints(ctx context.Context, serviceID uuid.UUID) error {
	c.mu.Lock()
	c.seq++
	token := c.seq
	c.inflight++
	c.mu.Unlock()

	endpoints, err := c.registry.ListEndpoints(ctx, serviceID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight > 0 {
		c.inflight--
	}
	if token <= c.applied {
		return nil
	}
	c.applied = token
	if err != nil {
		c.lastErr = err.Error()
		c.log.Warn("endpoint list load failed", "service", serviceID, "error", err)
		return err
	}
	if c.serviceID != serviceID {
		c.selected = nil
	}
	c.serviceID = serviceID
	c.endpoints = endpoints
	c.lastErr = ""
	return nil
}

// LoadEndpoint fetches one endpoint and stores it as the selection.
func (c *EndpointCoordinator) LoadEndpoint(ctx context.Context, serviceID, endpointID uuid.UUID) error {
	c.mu.Lock()
	c.inflight++
	c.mu.Unlock()

	endpoint, err := c.registry.GetEndpoint(ctx, serviceID, endpointID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight > 0 {
		c.inflight--
	}
	if err != nil {
		c.lastErr = err.Error()
		return err
	}
	c.selected = endpoint
	c.lastErr = ""
	return nil
}

// Endpoints returns a copy of the cached endpoint list.
func (c *EndpointCoordinator) Endpoints() []models.Endpoint {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Endpoint, len(c.endpoints))
	copy(out, c.endpoints)
	return out
}

// Selected returns the endpoint loaded by LoadEndpoint, or nil.
func (c *EndpointCoordinator) Selected() *models.Endpoint {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == nil {
		return nil
	}
	out := *c.selected
	return &out
}

// Loading reports whether a load is in flight.
func (c *EndpointCoordinator) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inflight > 0
}

// LastError returns the retained error message, empty when clear.
func (c *EndpointCoordinator) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// ClearError empties the error slot.
func (c *EndpointCoordinator) ClearError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr = ""
}

// FilteredEndpoints projects the cache through a case-insensitive substring
// match over path and summary, optionally restricted to one method, sorted
// by path.
func (c *EndpointCoordinator) FilteredEndpoints(search string, method *models.EndpointMethod) []models.Endpoint {
	c.mu.Lock()
	defer c.mu.Unlock()

	needle := strings.ToLower(strings.TrimSpace(search))
	out := []models.Endpoint{}
	for _, ep := range c.endpoints {
		if method != nil && ep.Method != *method {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(ep.Path), needle) &&
			!strings.Contains(strings.ToLower(ep.Summary), needle) {
			continue
		}
		out = append(out, ep)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// MethodCounts tallies cached endpoints by HTTP method.
func (c *EndpointCoordinator) MethodCounts() map[models.EndpointMethod]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	counts := make(map[models.EndpointMethod]int)
	for _, ep := range c.endpoints {
		counts[ep.Method]++
	}
	return counts
}
