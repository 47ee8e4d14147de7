package storage

import (
	"errors"

	"github.com/google/uuid"

	"github.com/arqut/arqut-registry/internal/pkg/models"
)

// Sentinel errors mapped to HTTP statuses by the API layer.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

// Storage defines the interface for persisting the registry catalog.
// Uniqueness rules are enforced here: Service by name, Dependency by
// (name, version), bindings and relations by their scope triples.
type Storage interface {
	// Initialize the storage (create tables, run migrations)
	Init() error

	// Close the storage connection
	Close() error

	// Services
	ListServices() ([]models.Service, error)
	GetService(id uuid.UUID) (*models.Service, error)
	CreateService(service *models.Service) error
	UpdateService(service *models.Service) error
	DeleteService(id uuid.UUID) error

	// Dependency catalog
	ListDependencies() ([]models.Dependency, error)
	GetDependency(id uuid.UUID) (*models.Dependency, error)
	CreateDependency(dep *models.Dependency) error
	UpdateDependency(dep *models.Dependency) error
	DeleteDependency(id uuid.UUID) error

	// Service-to-dependency bindings
	ListServiceDependencies(serviceID uuid.UUID) ([]models.ServiceDependency, error)
	ListAllServiceDependencies(environmentCode *string) ([]models.ServiceDependency, error)
	CreateServiceDependency(sd *models.ServiceDependency) error
	DeleteServiceDependency(serviceID, dependencyID uuid.UUID, environmentCode *string) error

	// Service-to-service relations (consumer depends on provider)
	ListServiceRelations(consumerID uuid.UUID, environmentCode *string) ([]models.ServiceToServiceDependency, error)
	GetServiceRelation(consumerID, relationID uuid.UUID) (*models.ServiceToServiceDependency, error)
	CreateServiceRelation(rel *models.ServiceToServiceDependency) error
	UpdateServiceRelation(rel *models.ServiceToServiceDependency) error
	DeleteServiceRelation(consumerID, relationID uuid.UUID) error

	// Endpoints (populated out of band, read-only through the API)
	ListEndpoints(serviceID uuid.UUID) ([]models.Endpoint, error)
	GetEndpoint(serviceID, endpointID uuid.UUID) (*models.Endpoint, error)
	CreateEndpoint(ep *models.Endpoint) error
}
