// Package coordinator holds the per-screen state between the presentation
// layer and the registry client. Each coordinator caches the last successful
// result, exposes derived projections over it, and tracks a loading flag and
// a clearable error message.
//
// Coordinators are the only writers of their own cache. Loads are guarded by
// a monotonically increasing sequence token: a response carrying a stale
// token is discarded instead of overwriting fresher data.
package coordinator

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/arqut/arqut-registry/internal/client"
	"github.com/arqut/arqut-registry/internal/pkg/logger"
	"github.com/arqut/arqut-registry/internal/pkg/models"
)

// ServiceCoordinator backs the service list and dashboard screens.
type ServiceCoordinator struct {
	registry client.Registry
	log      *logger.Logger

	mu       sync.Mutex
	seq      uint64
	applied  uint64
	inflight int
	services []models.Service
	stats    *models.DashboardStats
	lastErr  string
}

// NewServiceCoordinator creates a coordinator over the given registry.
func NewServiceCoordinator(reg client.Registry, log *logger.Logger) *ServiceCoordinator {
	if log == nil {
		log = logger.New(logger.Config{Level: "error"})
	}
	return &ServiceCoordinator{
		registry: reg,
		log:      log.Component("services"),
	}
}

// beginLoad hands out the next sequence token and raises the loading flag.
func (c *ServiceCoordinator) beginLoad() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.inflight++
	return c.seq
}

// endLoad lowers the loading flag and reports whether the token is still
// the freshest seen. Stale tokens must not touch the cache or error slot.
func (c *ServiceCoordinator) endLoad(token uint64) bool {
	if token <= c.applied {
		return false
	}
	c.applied = token
	return true
}

func (c *ServiceCoordinator) finish() {
	if c.inflight > 0 {
		c.inflight--
	}
}

// LoadServices fetches the service list and replaces the cache on success.
func (c *ServiceCoordinator) LoadServices(ctx context.Context) error {
	token := c.beginLoad()
	services, err := c.registry.ListServices(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.finish()
	if !c.endLoad(token) {
		return nil
	}
	if err != nil {
		c.lastErr = err.Error()
		c.log.Warn("service list load failed", "error", err)
		return err
	}
	c.services = services
	c.lastErr = ""
	return nil
}

// LoadDashboard fetches the service list and the dashboard aggregate in
// parallel and joins them before updating the cache.
func (c *ServiceCoordinator) LoadDashboard(ctx context.Context) error {
	token := c.beginLoad()

	var (
		wg       sync.WaitGroup
		services []models.Service
		stats    *models.DashboardStats
		svcErr   error
		statsErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		services, svcErr = c.registry.ListServices(ctx)
	}()
	go func() {
		defer wg.Done()
		stats, statsErr = c.registry.FetchDashboardStats(ctx)
	}()
	wg.Wait()

	err := svcErr
	if err == nil {
		err = statsErr
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.finish()
	if !c.endLoad(token) {
		return nil
	}
	if err != nil {
		c.lastErr = err.Error()
		c.log.Warn("dashboard load failed", "error", err)
		return err
	}
	c.services = services
	c.stats = stats
	c.lastErr = ""
	return nil
}

// CreateService registers a service and appends it to the cache on success.
func (c *ServiceCoordinator) CreateService(ctx context.Context, req models.CreateServiceRequest) (*models.Service, error) {
	created, err := c.registry.CreateService(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.lastErr = err.Error()
		return nil, err
	}
	c.services = append(c.services, *created)
	c.lastErr = ""
	c.log.Info("service created", "name", created.Name, "id", created.ServiceID)
	return created, nil
}

// UpdateService patches a service and replaces the cached entry in place.
func (c *ServiceCoordinator) UpdateService(ctx context.Context, id uuid.UUID, req models.UpdateServiceRequest) (*models.Service, error) {
	updated, err := c.registry.UpdateService(ctx, id, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.lastErr = err.Error()
		return nil, err
	}
	for i := range c.services {
		if c.services[i].ServiceID == id {
			c.services[i] = *updated
			break
		}
	}
	c.lastErr = ""
	return updated, nil
}

// DeleteService removes a service and drops it from the cache on success.
func (c *ServiceCoordinator) DeleteService(ctx context.Context, id uuid.UUID) error {
	err := c.registry.DeleteService(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.lastErr = err.Error()
		return err
	}
	for i := range c.services {
		if c.services[i].ServiceID == id {
			c.services = append(c.services[:i], c.services[i+1:]...)
			break
		}
	}
	c.lastErr = ""
	c.log.Info("service deleted", "id", id)
	return nil
}

// Services returns a copy of the cached service list.
func (c *ServiceCoordinator) Services() []models.Service {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Service, len(c.services))
	copy(out, c.services)
	return out
}

// DashboardStats returns the last loaded aggregate, or nil before the first
// successful LoadDashboard.
func (c *ServiceCoordinator) DashboardStats() *models.DashboardStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stats == nil {
		return nil
	}
	stats := *c.stats
	return &stats
}

// Loading reports whether any load is in flight.
func (c *ServiceCoordinator) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inflight > 0
}

// LastError returns the retained error message, empty when clear.
func (c *ServiceCoordinator) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// ClearError empties the error slot.
func (c *ServiceCoordinator) ClearError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr = ""
}

// FilteredServices projects the cache through a case-insensitive substring
// match over name, owner, description and tags. An empty search returns the
// whole cache.
func (c *ServiceCoordinator) FilteredServices(search string) []models.Service {
	c.mu.Lock()
	defer c.mu.Unlock()

	needle := strings.ToLower(strings.TrimSpace(search))
	out := []models.Service{}
	for _, svc := range c.services {
		if needle == "" || serviceMatches(&svc, needle) {
			out = append(out, svc)
		}
	}
	return out
}

func serviceMatches(svc *models.Service, needle string) bool {
	if strings.Contains(strings.ToLower(svc.Name), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(svc.Owner), needle) {
		return true
	}
	if svc.Description != nil && strings.Contains(strings.ToLower(*svc.Description), needle) {
		return true
	}
	for _, tag := range svc.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}
