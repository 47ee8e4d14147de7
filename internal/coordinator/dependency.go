package coordinator

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/arqut/arqut-registry/internal/client"
	"github.com/arqut/arqut-registry/internal/pkg/apierr"
	"github.com/arqut/arqut-registry/internal/pkg/logger"
	"github.com/arqut/arqut-registry/internal/pkg/models"
)

// UnknownServiceGroup labels bindings whose owning service cannot be
// resolved in the current cache.
const UnknownServiceGroup = "Unknown Service"

// DependencyCoordinator backs the dependencies screen. It caches the catalog,
// the flattened per-service bindings, the service-to-service edges and the
// service list used to resolve names.
type DependencyCoordinator struct {
	registry client.Registry
	log      *logger.Logger

	mu                  sync.Mutex
	seq                 uint64
	applied             uint64
	inflight            int
	catalog             []models.Dependency
	serviceDependencies []models.ServiceDependency
	serviceRelations    []models.ServiceToServiceDependency
	services            []models.Service
	lastErr             string
}

// NewDependencyCoordinator creates a coordinator over the given registry.
func NewDependencyCoordinator(reg client.Registry, log *logger.Logger) *DependencyCoordinator {
	if log == nil {
		log = logger.New(logger.Config{Level: "error"})
	}
	return &DependencyCoordinator{
		registry: reg,
		log:      log.Component("dependencies"),
	}
}

// LoadAll refreshes every cache in two phases: the catalog and service list
// are fetched in parallel and joined, then the per-service bindings and
// edges are fetched in parallel per service and flattened.
func (c *DependencyCoordinator) LoadAll(ctx context.Context) error {
	c.mu.Lock()
	c.seq++
	token := c.seq
	c.inflight++
	c.mu.Unlock()

	var (
		wg       sync.WaitGroup
		catalog  []models.Dependency
		services []models.Service
		depErr   error
		svcErr   error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		catalog, depErr = c.registry.ListDependencies(ctx)
	}()
	go func() {
		defer wg.Done()
		services, svcErr = c.registry.ListServices(ctx)
	}()
	wg.Wait()

	err := depErr
	if err == nil {
		err = svcErr
	}

	var bindings []models.ServiceDependency
	var relations []models.ServiceToServiceDependency
	if err == nil {
		bindings, relations, err = c.fetchPerService(ctx, services)
	}

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
		c.log.Warn("dependency load failed", "error", err)
		return err
	}
	c.catalog = catalog
	c.services = services
	c.serviceDependencies = bindings
	c.serviceRelations = relations
	c.lastErr = ""
	return nil
}

// fetchPerService issues the binding and edge fetches in parallel per service
// and joins them into flattened collections. The first error wins.
func (c *DependencyCoordinator) fetchPerService(ctx context.Context, services []models.Service) ([]models.ServiceDependency, []models.ServiceToServiceDependency, error) {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		bindings []models.ServiceDependency
		edges    []models.ServiceToServiceDependency
		firstErr error
	)

	for i := range services {
		serviceID := services[i].ServiceID
		wg.Add(1)
		go func() {
			defer wg.Done()
			sds, err := c.registry.ListServiceDependencies(ctx, serviceID)
			if err == nil {
				var rels []models.ServiceToServiceDependency
				rels, err = c.registry.ListServiceToServiceDependencies(ctx, serviceID, nil)
				if err == nil {
					mu.Lock()
					bindings = append(bindings, sds...)
					edges = append(edges, rels...)
					mu.Unlock()
					return
				}
			}
			mu.Lock()
			if firstErr == nil {
				firstErr = err
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	if firstErr != nil {
		return nil, nil, firstErr
	}
	return bindings, edges, nil
}

// Catalog mutations

// CreateDependency adds a catalog entry and appends it to the cache.
func (c *DependencyCoordinator) CreateDependency(ctx context.Context, req models.CreateDependencyRequest) (*models.Dependency, error) {
	created, err := c.registry.CreateDependency(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.lastErr = err.Error()
		return nil, err
	}
	c.catalog = append(c.catalog, *created)
	c.lastErr = ""
	c.log.Info("dependency created", "name", created.Name, "version", created.Version)
	return created, nil
}

// UpdateDependency patches a catalog entry, replacing the cached entry and
// refreshing the snapshot embedded in cached bindings.
func (c *DependencyCoordinator) UpdateDependency(ctx context.Context, id uuid.UUID, req models.UpdateDependencyRequest) (*models.Dependency, error) {
	updated, err := c.registry.UpdateDependency(ctx, id, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.lastErr = err.Error()
		return nil, err
	}
	for i := range c.catalog {
		if c.catalog[i].DependencyID == id {
			c.catalog[i] = *updated
			break
		}
	}
	for i := range c.serviceDependencies {
		if c.serviceDependencies[i].Dependency.DependencyID == id {
			c.serviceDependencies[i].Dependency = *updated
		}
	}
	c.lastErr = ""
	return updated, nil
}

// DeleteDependency removes a catalog entry and any cached bindings to it.
func (c *DependencyCoordinator) DeleteDependency(ctx context.Context, id uuid.UUID) error {
	err := c.registry.DeleteDependency(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.lastErr = err.Error()
		return err
	}
	for i := range c.catalog {
		if c.catalog[i].DependencyID == id {
			c.catalog = append(c.catalog[:i], c.catalog[i+1:]...)
			break
		}
	}
	kept := c.serviceDependencies[:0]
	for _, sd := range c.serviceDependencies {
		if sd.Dependency.DependencyID != id {
			kept = append(kept, sd)
		}
	}
	c.serviceDependencies = kept
	c.lastErr = ""
	return nil
}

// Binding mutations

// CreateServiceDependency binds a catalog dependency to a service.
func (c *DependencyCoordinator) CreateServiceDependency(ctx context.Context, serviceID uuid.UUID, req models.CreateServiceDependencyRequest) (*models.ServiceDependency, error) {
	created, err := c.registry.CreateServiceDependency(ctx, serviceID, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.lastErr = err.Error()
		return nil, err
	}
	c.serviceDependencies = append(c.serviceDependencies, *created)
	c.lastErr = ""
	return created, nil
}

// DeleteServiceDependency removes a binding, matched by its environment scope.
func (c *DependencyCoordinator) DeleteServiceDependency(ctx context.Context, serviceID, dependencyID uuid.UUID, environmentCode *string) error {
	err := c.registry.DeleteServiceDependency(ctx, serviceID, dependencyID, environmentCode)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.lastErr = err.Error()
		return err
	}
	for i := range c.serviceDependencies {
		sd := &c.serviceDependencies[i]
		if sd.ServiceID == serviceID && sd.Dependency.DependencyID == dependencyID && environmentEqual(sd.EnvironmentCode, environmentCode) {
			c.serviceDependencies = append(c.serviceDependencies[:i], c.serviceDependencies[i+1:]...)
			break
		}
	}
	c.lastErr = ""
	return nil
}

// Edge mutations

// CreateServiceToServiceDependency creates a consumer-to-provider edge. A
// self-referencing edge is rejected locally before any call is issued.
func (c *DependencyCoordinator) CreateServiceToServiceDependency(ctx context.Context, consumerServiceID uuid.UUID, req models.CreateServiceToServiceDependencyRequest) (*models.ServiceToServiceDependency, error) {
	if consumerServiceID == req.ProviderServiceID {
		err := apierr.Validation("a service cannot depend on itself")
		c.mu.Lock()
		c.lastErr = err.Error()
		c.mu.Unlock()
		return nil, err
	}

	created, err := c.registry.CreateServiceToServiceDependency(ctx, consumerServiceID, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.lastErr = err.Error()
		return nil, err
	}
	c.serviceRelations = append(c.serviceRelations, *created)
	c.lastErr = ""
	return created, nil
}

// UpdateServiceToServiceDependency patches an edge and replaces the cached
// entry in place.
func (c *DependencyCoordinator) UpdateServiceToServiceDependency(ctx context.Context, serviceID, dependencyID uuid.UUID, req models.UpdateServiceToServiceDependencyRequest) (*models.ServiceToServiceDependency, error) {
	updated, err := c.registry.UpdateServiceToServiceDependency(ctx, serviceID, dependencyID, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.lastErr = err.Error()
		return nil, err
	}
	for i := range c.serviceRelations {
		if c.serviceRelations[i].ID == dependencyID {
			c.serviceRelations[i] = *updated
			break
		}
	}
	c.lastErr = ""
	return updated, nil
}

// DeleteServiceToServiceDependency removes an edge.
func (c *DependencyCoordinator) DeleteServiceToServiceDependency(ctx context.Context, serviceID, dependencyID uuid.UUID) error {
	err := c.registry.DeleteServiceToServiceDependency(ctx, serviceID, dependencyID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.lastErr = err.Error()
		return err
	}
	for i := range c.serviceRelations {
		if c.serviceRelations[i].ID == dependencyID {
			c.serviceRelations = append(c.serviceRelations[:i], c.serviceRelations[i+1:]...)
			break
		}
	}
	c.lastErr = ""
	return nil
}

// Accessors and projections

// Catalog returns a copy of the cached dependency catalog.
func (c *DependencyCoordinator) Catalog() []models.Dependency {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Dependency, len(c.catalog))
	copy(out, c.catalog)
	return out
}

// ServiceDependencies returns a copy of the flattened binding cache.
func (c *DependencyCoordinator) ServiceDependencies() []models.ServiceDependency {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.ServiceDependency, len(c.serviceDependencies))
	copy(out, c.serviceDependencies)
	return out
}

// ServiceRelations returns a copy of the cached service-to-service edges.
func (c *DependencyCoordinator) ServiceRelations() []models.ServiceToServiceDependency {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.ServiceToServiceDependency, len(c.serviceRelations))
	copy(out, c.serviceRelations)
	return out
}

// Loading reports whether a load is in flight.
func (c *DependencyCoordinator) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inflight > 0
}

// LastError returns the retained error message, empty when clear.
func (c *DependencyCoordinator) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// ClearError empties the error slot.
func (c *DependencyCoordinator) ClearError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr = ""
}

// FilteredDependencies projects the binding cache through a case-insensitive
// substring match over the dependency name, description and resolved owning
// service name, optionally restricted to one dependency type.
func (c *DependencyCoordinator) FilteredDependencies(search string, depType *models.DependencyType) []models.ServiceDependency {
	c.mu.Lock()
	defer c.mu.Unlock()

	needle := strings.ToLower(strings.TrimSpace(search))
	out := []models.ServiceDependency{}
	for _, sd := range c.serviceDependencies {
		if depType != nil && sd.Dependency.DependencyType != *depType {
			continue
		}
		if needle != "" && !c.bindingMatchesLocked(&sd, needle) {
			continue
		}
		out = append(out, sd)
	}
	return out
}

func (c *DependencyCoordinator) bindingMatchesLocked(sd *models.ServiceDependency, needle string) bool {
	if strings.Contains(strings.ToLower(sd.Dependency.Name), needle) {
		return true
	}
	if sd.Dependency.Description != nil && strings.Contains(strings.ToLower(*sd.Dependency.Description), needle) {
		return true
	}
	return strings.Contains(strings.ToLower(c.serviceNameLocked(sd.ServiceID)), needle)
}

// GroupedDependencies partitions the binding cache by resolved owning service
// name. Bindings whose service is not in the cache land under the
// "Unknown Service" group. Group contents keep cache order.
func (c *DependencyCoordinator) GroupedDependencies() map[string][]models.ServiceDependency {
	c.mu.Lock()
	defer c.mu.Unlock()

	groups := make(map[string][]models.ServiceDependency)
	for _, sd := range c.serviceDependencies {
		name := c.serviceNameLocked(sd.ServiceID)
		if name == "" {
			name = UnknownServiceGroup
		}
		groups[name] = append(groups[name], sd)
	}
	return groups
}

// GroupNames returns the grouped partition keys in sorted order, with the
// unknown bucket last.
func (c *DependencyCoordinator) GroupNames() []string {
	groups := c.GroupedDependencies()
	names := make([]string, 0, len(groups))
	unknown := false
	for name := range groups {
		if name == UnknownServiceGroup {
			unknown = true
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	if unknown {
		names = append(names, UnknownServiceGroup)
	}
	return names
}

func (c *DependencyCoordinator) serviceNameLocked(id uuid.UUID) string {
	for i := range c.services {
		if c.services[i].ServiceID == id {
			return c.services[i].Name
		}
	}
	return ""
}

func environmentEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
