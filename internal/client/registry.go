package client

import (
	"context"

	"github.com/google/uuid"

	"github.com/arqut/arqut-registry/internal/pkg/models"
)

// Registry is the operation contract against the service registry. It is
// implemented by Client over HTTP and by mirror.Mirror over local state, so
// coordinators and tests can swap the backend without code changes.
//
// Every operation either returns the typed result or fails with an
// *apierr.Error; there are no retries and no partial successes.
type Registry interface {
	// Services
	ListServices(ctx context.Context) ([]models.Service, error)
	GetService(ctx context.Context, id uuid.UUID) (*models.Service, error)
	CreateService(ctx context.Context, req models.CreateServiceRequest) (*models.Service, error)
	UpdateService(ctx context.Context, id uuid.UUID, req models.UpdateServiceRequest) (*models.Service, error)
	DeleteService(ctx context.Context, id uuid.UUID) error

	// Dependency catalog
	ListDependencies(ctx context.Context) ([]models.Dependency, error)
	CreateDependency(ctx context.Context, req models.CreateDependencyRequest) (*models.Dependency, error)
	UpdateDependency(ctx context.Context, id uuid.UUID, req models.UpdateDependencyRequest) (*models.Dependency, error)
	DeleteDependency(ctx context.Context, id uuid.UUID) error

	// Service-to-dependency bindings
	ListServiceDependencies(ctx context.Context, serviceID uuid.UUID) ([]models.ServiceDependency, error)
	CreateServiceDependency(ctx context.Context, serviceID uuid.UUID, req models.CreateServiceDependencyRequest) (*models.ServiceDependency, error)
	DeleteServiceDependency(ctx context.Context, serviceID, dependencyID uuid.UUID, environmentCode *string) error

	// Service-to-service edges
	ListServiceToServiceDependencies(ctx context.Context, serviceID uuid.UUID, environmentCode *string) ([]models.ServiceToServiceDependency, error)
	CreateServiceToServiceDependency(ctx context.Context, consumerServiceID uuid.UUID, req models.CreateServiceToServiceDependencyRequest) (*models.ServiceToServiceDependency, error)
	UpdateServiceToServiceDependency(ctx context.Context, serviceID, dependencyID uuid.UUID, req models.UpdateServiceToServiceDependencyRequest) (*models.ServiceToServiceDependency, error)
	DeleteServiceToServiceDependency(ctx context.Context, serviceID, dependencyID uuid.UUID) error

	// Dependency graphs (derived, read-only)
	FetchServicesDependencyGraph(ctx context.Context) (*models.DependencyGraph, error)
	FetchGlobalDependencyGraph(ctx context.Context, environmentCode *string) (*models.DependencyGraph, error)
	FetchServiceDependencyGraph(ctx context.Context, serviceID uuid.UUID, environmentCode *string) (*models.DependencyGraph, error)

	// Endpoints (read-only)
	ListEndpoints(ctx context.Context, serviceID uuid.UUID) ([]models.Endpoint, error)
	GetEndpoint(ctx context.Context, serviceID, endpointID uuid.UUID) (*models.Endpoint, error)

	// Dashboard aggregate, derived from ListServices.
	FetchDashboardStats(ctx context.Context) (*models.DashboardStats, error)
}
