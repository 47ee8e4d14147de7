// Package mirror is the in-memory stand-in for the registry backend. It
// implements the same client.Registry contract over local collections, so
// the full client/coordinator stack can run without a live server. Latency
// is injected, not hardcoded, so tests run at full speed.
package mirror

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/arqut/arqut-registry/internal/client"
	"github.com/arqut/arqut-registry/internal/pkg/apierr"
	"github.com/arqut/arqut-registry/internal/pkg/models"
)

// Latency simulates network delay per operation class.
type Latency struct {
	List  time.Duration
	Read  time.Duration
	Write time.Duration
	Graph time.Duration
}

// DefaultLatency matches the delays of the original backend stub.
func DefaultLatency() Latency {
	return Latency{
		List:  500 * time.Millisecond,
		Read:  300 * time.Millisecond,
		Write: 500 * time.Millisecond,
		Graph: 800 * time.Millisecond,
	}
}

// Mirror holds authoritative registry state in local slices. All methods
// are safe for concurrent use.
type Mirror struct {
	mu      sync.Mutex
	latency Latency

	services            []models.Service
	dependencies        []models.Dependency
	serviceDependencies []models.ServiceDependency
	serviceRelations    []models.ServiceToServiceDependency
	endpoints           []models.Endpoint
}

// Option configures a Mirror.
type Option func(*Mirror)

// WithLatency overrides the simulated delays. A zero Latency disables them.
func WithLatency(l Latency) Option {
	return func(m *Mirror) { m.latency = l }
}

// WithoutFixtures starts the mirror empty instead of pre-seeded.
func WithoutFixtures() Option {
	return func(m *Mirror) {
		m.services = nil
		m.dependencies = nil
		m.serviceDependencies = nil
		m.serviceRelations = nil
		m.endpoints = nil
	}
}

// New creates a mirror pre-seeded with the demo fixture data.
func New(opts ...Option) *Mirror {
	m := &Mirror{latency: DefaultLatency()}
	m.seed()
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Mirror) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return apierr.Network(ctx.Err())
	case <-timer.C:
		return nil
	}
}

// stamp returns the update timestamp for an accepted mutation. It is kept
// strictly after prev so updatedAt always advances even on sub-tick updates.
func stamp(prev *time.Time) time.Time {
	now := time.Now()
	if prev != nil && !now.After(*prev) {
		now = prev.Add(time.Nanosecond)
	}
	return now
}

func timePtr(t time.Time) *time.Time { return &t }

// environmentMatches applies the environmentCode filter convention: an
// unscoped binding (nil code) applies to every environment.
func environmentMatches(filter *string, code *string) bool {
	if filter == nil {
		return true
	}
	return code == nil || *code == *filter
}

func sameEnvironment(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Services

func (m *Mirror) ListServices(ctx context.Context) ([]models.Service, error) {
	if err := m.sleep(ctx, m.latency.List); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Service, len(m.services))
	copy(out, m.services)
	return out, nil
}

func (m *Mirror) GetService(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	if err := m.sleep(ctx, m.latency.Read); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.services {
		if m.services[i].ServiceID == id {
			svc := m.services[i]
			return &svc, nil
		}
	}
	return nil, apierr.NotFound("service not found")
}

func (m *Mirror) CreateService(ctx context.Context, req models.CreateServiceRequest) (*models.Service, error) {
	if err := m.sleep(ctx, m.latency.Write); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, apierr.Validation("service name must not be blank")
	}
	if !req.ServiceType.Valid() {
		return nil, apierr.Validation("unknown service type")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.services {
		if m.services[i].Name == req.Name {
			return nil, apierr.AlreadyExists("service with this name already exists")
		}
	}

	now := time.Now()
	svc := models.Service{
		ServiceID:        uuid.New(),
		Name:             req.Name,
		Description:      req.Description,
		Owner:            req.Owner,
		Tags:             append([]string{}, req.Tags...),
		ServiceType:      req.ServiceType,
		SupportsDatabase: req.SupportsDatabase,
		Proxy:            req.Proxy,
		CreatedAt:        timePtr(now),
		UpdatedAt:        timePtr(now),
		Environments:     []models.Environment{},
	}
	m.services = append(m.services, svc)
	return &svc, nil
}

func (m *Mirror) UpdateService(ctx context.Context, id uuid.UUID, req models.UpdateServiceRequest) (*models.Service, error) {
	if err := m.sleep(ctx, m.latency.Write); err != nil {
		return nil, err
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, apierr.Validation("service name must not be blank")
	}
	if req.ServiceType != nil && !req.ServiceType.Valid() {
		return nil, apierr.Validation("unknown service type")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	idx := -1
	for i := range m.services {
		if m.services[i].ServiceID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, apierr.NotFound("service not found")
	}
	if req.Name != nil {
		for i := range m.services {
			if i != idx && m.services[i].Name == *req.Name {
				return nil, apierr.AlreadyExists("service with this name already exists")
			}
		}
	}

	svc := &m.services[idx]
	if req.Name != nil {
		svc.Name = *req.Name
	}
	if req.Description != nil {
		svc.Description = req.Description
	}
	if req.Owner != nil {
		svc.Owner = *req.Owner
	}
	if req.Tags != nil {
		svc.Tags = append([]string{}, req.Tags...)
	}
	if req.ServiceType != nil {
		svc.ServiceType = *req.ServiceType
	}
	if req.SupportsDatabase != nil {
		svc.SupportsDatabase = *req.SupportsDatabase
	}
	if req.Proxy != nil {
		svc.Proxy = *req.Proxy
	}
	svc.UpdatedAt = timePtr(stamp(svc.UpdatedAt))

	// Keep relationship snapshots in sync with renames.
	for i := range m.serviceRelations {
		rel := &m.serviceRelations[i]
		if rel.ConsumerServiceID == id {
			rel.ConsumerService.Name = svc.Name
		}
		if rel.ProviderServiceID == id {
			rel.ProviderService.Name = svc.Name
		}
	}

	out := *svc
	return &out, nil
}

func (m *Mirror) DeleteService(ctx context.Context, id uuid.UUID) error {
	if err := m.sleep(ctx, m.latency.Read); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := -1
	for i := range m.services {
		if m.services[i].ServiceID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return apierr.NotFound("service not found")
	}
	m.services = append(m.services[:idx], m.services[idx+1:]...)

	// Cascade: no row may keep referencing a deleted service.
	kept := m.serviceDependencies[:0]
	for _, sd := range m.serviceDependencies {
		if sd.ServiceID != id {
			kept = append(kept, sd)
		}
	}
	m.serviceDependencies = kept

	keptRel := m.serviceRelations[:0]
	for _, rel := range m.serviceRelations {
		if rel.ConsumerServiceID != id && rel.ProviderServiceID != id {
			keptRel = append(keptRel, rel)
		}
	}
	m.serviceRelations = keptRel

	keptEp := m.endpoints[:0]
	for _, ep := range m.endpoints {
		if ep.ServiceID != id {
			keptEp = append(keptEp, ep)
		}
	}
	m.endpoints = keptEp
	return nil
}

// Dependency catalog

func (m *Mirror) ListDependencies(ctx context.Context) ([]models.Dependency, error) {
	if err := m.sleep(ctx, m.latency.List); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Dependency, len(m.dependencies))
	copy(out, m.dependencies)
	return out, nil
}

func (m *Mirror) CreateDependency(ctx context.Context, req models.CreateDependencyRequest) (*models.Dependency, error) {
	if err := m.sleep(ctx, m.latency.Write); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, apierr.Validation("dependency name must not be blank")
	}
	if !req.DependencyType.Valid() {
		return nil, apierr.Validation("unknown dependency type")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.dependencies {
		if m.dependencies[i].Name == req.Name && m.dependencies[i].Version == req.Version {
			return nil, apierr.AlreadyExists("dependency already exists")
		}
	}

	now := time.Now()
	dep := models.Dependency{
		DependencyID:   uuid.New(),
		Name:           req.Name,
		Description:    req.Description,
		Version:        req.Version,
		DependencyType: req.DependencyType,
		Config:         copyStringMap(req.Config),
		CreatedAt:      timePtr(now),
		UpdatedAt:      timePtr(now),
	}
	m.dependencies = append(m.dependencies, dep)
	return &dep, nil
}

func (m *Mirror) UpdateDependency(ctx context.Context, id uuid.UUID, req models.UpdateDependencyRequest) (*models.Dependency, error) {
	if err := m.sleep(ctx, m.latency.Write); err != nil {
		return nil, err
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, apierr.Validation("dependency name must not be blank")
	}
	if req.DependencyType != nil && !req.DependencyType.Valid() {
		return nil, apierr.Validation("unknown dependency type")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	idx := -1
	for i := range m.dependencies {
		if m.dependencies[i].DependencyID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, apierr.NotFound("dependency not found")
	}

	dep := &m.dependencies[idx]
	name, version := dep.Name, dep.Version
	if req.Name != nil {
		name = *req.Name
	}
	if req.Version != nil {
		version = *req.Version
	}
	for i := range m.dependencies {
		if i != idx && m.dependencies[i].Name == name && m.dependencies[i].Version == version {
			return nil, apierr.AlreadyExists("dependency already exists")
		}
	}

	dep.Name = name
	dep.Version = version
	if req.Description != nil {
		dep.Description = req.Description
	}
	if req.DependencyType != nil {
		dep.DependencyType = *req.DependencyType
	}
	if req.Config != nil {
		dep.Config = copyStringMap(req.Config)
	}
	dep.UpdatedAt = timePtr(stamp(dep.UpdatedAt))

	// Refresh embedded snapshots in bindings.
	for i := range m.serviceDependencies {
		if m.serviceDependencies[i].DependencyID == id {
			m.serviceDependencies[i].Dependency = *dep
		}
	}

	out := *dep
	return &out, nil
}

func (m *Mirror) DeleteDependency(ctx context.Context, id uuid.UUID) error {
	if err := m.sleep(ctx, m.latency.Read); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := -1
	for i := range m.dependencies {
		if m.dependencies[i].DependencyID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return apierr.NotFound("dependency not found")
	}
	m.dependencies = append(m.dependencies[:idx], m.dependencies[idx+1:]...)

	kept := m.serviceDependencies[:0]
	for _, sd := range m.serviceDependencies {
		if sd.DependencyID != id {
			kept = append(kept, sd)
		}
	}
	m.serviceDependencies = kept
	return nil
}

// Service-to-dependency bindings

func (m *Mirror) ListServiceDependencies(ctx context.Context, serviceID uuid.UUID) ([]models.ServiceDependency, error) {
	if err := m.sleep(ctx, m.latency.Read); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.ServiceDependency{}
	for _, sd := range m.serviceDependencies {
		if sd.ServiceID == serviceID {
			out = append(out, sd)
		}
	}
	return out, nil
}

func (m *Mirror) CreateServiceDependency(ctx context.Context, serviceID uuid.UUID, req models.CreateServiceDependencyRequest) (*models.ServiceDependency, error) {
	if err := m.sleep(ctx, m.latency.Write); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.serviceExistsLocked(serviceID) {
		return nil, apierr.Validation("service does not exist")
	}
	var dep *models.Dependency
	for i := range m.dependencies {
		if m.dependencies[i].DependencyID == req.DependencyID {
			dep = &m.dependencies[i]
			break
		}
	}
	if dep == nil {
		return nil, apierr.Validation("dependency does not exist")
	}
	for i := range m.serviceDependencies {
		sd := &m.serviceDependencies[i]
		if sd.ServiceID == serviceID && sd.DependencyID == req.DependencyID && sameEnvironment(sd.EnvironmentCode, req.EnvironmentCode) {
			return nil, apierr.AlreadyExists("dependency already bound to this service")
		}
	}

	now := time.Now()
	sd := models.ServiceDependency{
		ServiceDependencyID: uuid.New(),
		ServiceID:           serviceID,
		DependencyID:        req.DependencyID,
		Dependency:          *dep,
		EnvironmentCode:     req.EnvironmentCode,
		ConfigOverride:      copyStringMap(req.ConfigOverride),
		CreatedAt:           timePtr(now),
		UpdatedAt:           timePtr(now),
	}
	m.serviceDependencies = append(m.serviceDependencies, sd)
	return &sd, nil
}

func (m *Mirror) DeleteServiceDependency(ctx context.Context, serviceID, dependencyID uuid.UUID, environmentCode *string) error {
	if err := m.sleep(ctx, m.latency.Read); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.serviceDependencies {
		sd := &m.serviceDependencies[i]
		if sd.ServiceID == serviceID && sd.DependencyID == dependencyID && sameEnvironment(sd.EnvironmentCode, environmentCode) {
			m.serviceDependencies = append(m.serviceDependencies[:i], m.serviceDependencies[i+1:]...)
			return nil
		}
	}
	return apierr.NotFound("service dependency not found")
}

// Service-to-service edges

func (m *Mirror) ListServiceToServiceDependencies(ctx context.Context, serviceID uuid.UUID, environmentCode *string) ([]models.ServiceToServiceDependency, error) {
	if err := m.sleep(ctx, m.latency.Read); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.ServiceToServiceDependency{}
	for _, rel := range m.serviceRelations {
		if rel.ConsumerServiceID == serviceID && environmentMatches(environmentCode, rel.EnvironmentCode) {
			out = append(out, rel)
		}
	}
	return out, nil
}

func (m *Mirror) CreateServiceToServiceDependency(ctx context.Context, consumerServiceID uuid.UUID, req models.CreateServiceToServiceDependencyRequest) (*models.ServiceToServiceDependency, error) {
	if err := m.sleep(ctx, m.latency.Write); err != nil {
		return nil, err
	}
	if consumerServiceID == req.ProviderServiceID {
		return nil, apierr.Validation("a service cannot depend on itself")
	}
	if !req.DependencyType.Valid() {
		return nil, apierr.Validation("unknown dependency type")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	consumer := m.findServiceLocked(consumerServiceID)
	if consumer == nil {
		return nil, apierr.Validation("consumer service does not exist")
	}
	provider := m.findServiceLocked(req.ProviderServiceID)
	if provider == nil {
		return nil, apierr.Validation("provider service does not exist")
	}
	for i := range m.serviceRelations {
		rel := &m.serviceRelations[i]
		if rel.ConsumerServiceID == consumerServiceID && rel.ProviderServiceID == req.ProviderServiceID && sameEnvironment(rel.EnvironmentCode, req.EnvironmentCode) {
			return nil, apierr.AlreadyExists("service-to-service dependency already exists")
		}
	}

	now := time.Now()
	rel := models.ServiceToServiceDependency{
		ID:                uuid.New(),
		ConsumerServiceID: consumerServiceID,
		ProviderServiceID: req.ProviderServiceID,
		ConsumerService:   consumer.Summary(),
		ProviderService:   provider.Summary(),
		EnvironmentCode:   req.EnvironmentCode,
		Description:       req.Description,
		DependencyType:    req.DependencyType,
		Config:            copyStringMap(req.Config),
		CreatedAt:         timePtr(now),
		UpdatedAt:         timePtr(now),
	}
	m.serviceRelations = append(m.serviceRelations, rel)
	return &rel, nil
}

func (m *Mirror) UpdateServiceToServiceDependency(ctx context.Context, serviceID, dependencyID uuid.UUID, req models.UpdateServiceToServiceDependencyRequest) (*models.ServiceToServiceDependency, error) {
	if err := m.sleep(ctx, m.latency.Write); err != nil {
		return nil, err
	}
	if req.DependencyType != nil && !req.DependencyType.Valid() {
		return nil, apierr.Validation("unknown dependency type")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	idx := -1
	for i := range m.serviceRelations {
		rel := &m.serviceRelations[i]
		if rel.ID == dependencyID && rel.ConsumerServiceID == serviceID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, apierr.NotFound("service-to-service dependency not found")
	}

	rel := &m.serviceRelations[idx]
	if req.EnvironmentCode != nil {
		for i := range m.serviceRelations {
			other := &m.serviceRelations[i]
			if i != idx && other.ConsumerServiceID == rel.ConsumerServiceID &&
				other.ProviderServiceID == rel.ProviderServiceID &&
				sameEnvironment(other.EnvironmentCode, req.EnvironmentCode) {
				return nil, apierr.AlreadyExists("service-to-service dependency already exists")
			}
		}
		rel.EnvironmentCode = req.EnvironmentCode
	}
	if req.Description != nil {
		rel.Description = req.Description
	}
	if req.DependencyType != nil {
		rel.DependencyType = *req.DependencyType
	}
	if req.Config != nil {
		rel.Config = copyStringMap(req.Config)
	}
	rel.UpdatedAt = timePtr(stamp(rel.UpdatedAt))

	out := *rel
	return &out, nil
}

func (m *Mirror) DeleteServiceToServiceDependency(ctx context.Context, serviceID, dependencyID uuid.UUID) error {
	if err := m.sleep(ctx, m.latency.Read); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.serviceRelations {
		rel := &m.serviceRelations[i]
		if rel.ID == dependencyID && rel.ConsumerServiceID == serviceID {
			m.serviceRelations = append(m.serviceRelations[:i], m.serviceRelations[i+1:]...)
			return nil
		}
	}
	return apierr.NotFound("service-to-service dependency not found")
}

// Dependency graphs

func (m *Mirror) FetchServicesDependencyGraph(ctx context.Context) (*models.DependencyGraph, error) {
	return m.graph(ctx, nil)
}

func (m *Mirror) FetchGlobalDependencyGraph(ctx context.Context, environmentCode *string) (*models.DependencyGraph, error) {
	return m.graph(ctx, environmentCode)
}

func (m *Mirror) FetchServiceDependencyGraph(ctx context.Context, serviceID uuid.UUID, environmentCode *string) (*models.DependencyGraph, error) {
	if err := m.sleep(ctx, m.latency.Graph); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	bindings := []models.ServiceDependency{}
	for _, sd := range m.serviceDependencies {
		if sd.ServiceID == serviceID && environmentMatches(environmentCode, sd.EnvironmentCode) {
			bindings = append(bindings, sd)
		}
	}
	services := []models.Service{}
	if svc := m.findServiceLocked(serviceID); svc != nil {
		services = append(services, *svc)
	}
	graph := models.BuildDependencyGraph(services, bindings)
	return &graph, nil
}

func (m *Mirror) graph(ctx context.Context, environmentCode *string) (*models.DependencyGraph, error) {
	if err := m.sleep(ctx, m.latency.Graph); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	bindings := []models.ServiceDependency{}
	for _, sd := range m.serviceDependencies {
		if environmentMatches(environmentCode, sd.EnvironmentCode) {
			bindings = append(bindings, sd)
		}
	}
	graph := models.BuildDependencyGraph(m.services, bindings)
	return &graph, nil
}

// Endpoints

func (m *Mirror) ListEndpoints(ctx context.Context, serviceID uuid.UUID) ([]models.Endpoint, error) {
	if err := m.sleep(ctx, m.latency.List); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Endpoint{}
	for _, ep := range m.endpoints {
		if ep.ServiceID == serviceID {
			out = append(out, ep)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (m *Mirror) GetEndpoint(ctx context.Context, serviceID, endpointID uuid.UUID) (*models.Endpoint, error) {
	if err := m.sleep(ctx, m.latency.Read); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.endpoints {
		ep := &m.endpoints[i]
		if ep.ServiceID == serviceID && ep.EndpointID == endpointID {
			out := *ep
			return &out, nil
		}
	}
	return nil, apierr.NotFound("endpoint not found")
}

// Dashboard

func (m *Mirror) FetchDashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	if err := m.sleep(ctx, m.latency.Read); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := models.ComputeDashboardStats(m.services)
	return &stats, nil
}

func (m *Mirror) findServiceLocked(id uuid.UUID) *models.Service {
	for i := range m.services {
		if m.services[i].ServiceID == id {
			return &m.services[i]
		}
	}
	return nil
}

func (m *Mirror) serviceExistsLocked(id uuid.UUID) bool {
	return m.findServiceLocked(id) != nil
}

func copyStringMap(src map[string]string) map[string]string {
	if src == nil {
		return nil
	}
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

var _ client.Registry = (*Mirror)(nil)
