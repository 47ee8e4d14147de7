package storage

import (
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/arqut/arqut-registry/internal/pkg/models"
)

// SQLiteStorage implements the Storage interface using SQLite with GORM
type SQLiteStorage struct {
	db *gorm.DB
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // Suppress SQL logs
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	storage := &SQLiteStorage{db: db}
	return storage, nil
}

// Init initializes the database schema
func (s *SQLiteStorage) Init() error {
	if err := s.db.AutoMigrate(
		&models.Service{},
		&models.Environment{},
		&models.Dependency{},
		&models.ServiceDependency{},
		&models.ServiceToServiceDependency{},
		&models.Endpoint{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	if err := s.db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_dependencies_name_version
		ON dependencies(name, version)
	`).Error; err != nil {
		return fmt.Errorf("failed to create dependency index: %w", err)
	}

	return nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying DB: %w", err)
	}
	return sqlDB.Close()
}

// environmentScope restricts a query to one environment code, treating NULL
// as its own scope.
func environmentScope(q *gorm.DB, code *string) *gorm.DB {
	if code == nil {
		return q.Where("environment_code IS NULL")
	}
	return q.Where("environment_code = ?", *code)
}

// ListServices lists all services with their environments
func (s *SQLiteStorage) ListServices() ([]models.Service, error) {
	var services []models.Service
	result := s.db.Preload("Environments").Order("name").Find(&services)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list services: %w", result.Error)
	}
	return services, nil
}

// GetService retrieves a service by ID
func (s *SQLiteStorage) GetService(id uuid.UUID) (*models.Service, error) {
	var service models.Service
	result := s.db.Preload("Environments").Where("service_id = ?", id).First(&service)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get service: %w", result.Error)
	}
	return &service, nil
}

// CreateService creates a new service entry
func (s *SQLiteStorage) CreateService(service *models.Service) error {
	var count int64
	if err := s.db.Model(&models.Service{}).Where("name = ?", service.Name).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check service name: %w", err)
	}
	if count > 0 {
		return ErrAlreadyExists
	}
	if err := s.db.Create(service).Error; err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	return nil
}

// UpdateService persists a service entity, rejecting renames that collide
func (s *SQLiteStorage) UpdateService(service *models.Service) error {
	var count int64
	if err := s.db.Model(&models.Service{}).
		Where("name = ? AND service_id != ?", service.Name, service.ServiceID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check service name: %w", err)
	}
	if count > 0 {
		return ErrAlreadyExists
	}
	if err := s.db.Save(service).Error; err != nil {
		return fmt.Errorf("failed to update service: %w", err)
	}
	return nil
}

// DeleteService deletes a service and everything that references it
func (s *SQLiteStorage) DeleteService(id uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.Service{}, "service_id = ?", id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete service: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Delete(&models.Environment{}, "service_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete environments: %w", err)
		}
		if err := tx.Delete(&models.ServiceDependency{}, "service_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete service dependencies: %w", err)
		}
		if err := tx.Delete(&models.ServiceToServiceDependency{},
			"consumer_service_id = ? OR provider_service_id = ?", id, id).Error; err != nil {
			return fmt.Errorf("failed to delete service relations: %w", err)
		}
		if err := tx.Delete(&models.Endpoint{}, "service_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete endpoints: %w", err)
		}
		return nil
	})
}

// ListDependencies lists the dependency catalog
func (s *SQLiteStorage) ListDependencies() ([]models.Dependency, error) {
	var deps []models.Dependency
	result := s.db.Order("name, version").Find(&deps)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list dependencies: %w", result.Error)
	}
	return deps, nil
}

// GetDependency retrieves a catalog entry by ID
func (s *SQLiteStorage) GetDependency(id uuid.UUID) (*models.Dependency, error) {
	var dep models.Dependency
	result := s.db.Where("dependency_id = ?", id).First(&dep)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get dependency: %w", result.Error)
	}
	return &dep, nil
}

// CreateDependency creates a new catalog entry
func (s *SQLiteStorage) CreateDependency(dep *models.Dependency) error {
	var count int64
	if err := s.db.Model(&models.Dependency{}).
		Where("name = ? AND version = ?", dep.Name, dep.Version).
		Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check dependency: %w", err)
	}
	if count > 0 {
		return ErrAlreadyExists
	}
	if err := s.db.Create(dep).Error; err != nil {
		return fmt.Errorf("failed to create dependency: %w", err)
	}
	return nil
}

// UpdateDependency persists a catalog entry and refreshes binding snapshots
func (s *SQLiteStorage) UpdateDependency(dep *models.Dependency) error {
	var count int64
	if err := s.db.Model(&models.Dependency{}).
		Where("name = ? AND version = ? AND dependency_id != ?", dep.Name, dep.Version, dep.DependencyID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check dependency: %w", err)
	}
	if count > 0 {
		return ErrAlreadyExists
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(dep).Error; err != nil {
			return fmt.Errorf("failed to update dependency: %w", err)
		}
		if err := tx.Model(&models.ServiceDependency{}).
			Where("dependency_id = ?", dep.DependencyID).
			Update("dependency", *dep).Error; err != nil {
			return fmt.Errorf("failed to refresh binding snapshots: %w", err)
		}
		return nil
	})
}

// DeleteDependency deletes a catalog entry and its bindings
func (s *SQLiteStorage) DeleteDependency(id uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.Dependency{}, "dependency_id = ?", id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete dependency: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Delete(&models.ServiceDependency{}, "dependency_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete bindings: %w", err)
		}
		return nil
	})
}

// ListServiceDependencies lists the bindings of one service
func (s *SQLiteStorage) ListServiceDependencies(serviceID uuid.UUID) ([]models.ServiceDependency, error) {
	var bindings []models.ServiceDependency
	result := s.db.Where("service_id = ?", serviceID).Order("created_at").Find(&bindings)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list service dependencies: %w", result.Error)
	}
	return bindings, nil
}

// ListAllServiceDependencies lists bindings across all services, optionally
// scoped to one environment. Unscoped bindings match every environment.
func (s *SQLiteStorage) ListAllServiceDependencies(environmentCode *string) ([]models.ServiceDependency, error) {
	q := s.db.Order("created_at")
	if environmentCode != nil {
		q = q.Where("environment_code IS NULL OR environment_code = ?", *environmentCode)
	}
	var bindings []models.ServiceDependency
	if err := q.Find(&bindings).Error; err != nil {
		return nil, fmt.Errorf("failed to list service dependencies: %w", err)
	}
	return bindings, nil
}

// CreateServiceDependency creates a binding
func (s *SQLiteStorage) CreateServiceDependency(sd *models.ServiceDependency) error {
	q := s.db.Model(&models.ServiceDependency{}).
		Where("service_id = ? AND dependency_id = ?", sd.ServiceID, sd.DependencyID)
	var count int64
	if err := environmentScope(q, sd.EnvironmentCode).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check binding: %w", err)
	}
	if count > 0 {
		return ErrAlreadyExists
	}
	if err := s.db.Create(sd).Error; err != nil {
		return fmt.Errorf("failed to create binding: %w", err)
	}
	return nil
}

// DeleteServiceDependency deletes the binding matching the scope triple
func (s *SQLiteStorage) DeleteServiceDependency(serviceID, dependencyID uuid.UUID, environmentCode *string) error {
	q := s.db.Where("service_id = ? AND dependency_id = ?", serviceID, dependencyID)
	result := environmentScope(q, environmentCode).Delete(&models.ServiceDependency{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete binding: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListServiceRelations lists the outgoing edges of a consumer service,
// optionally filtered by environment. Unscoped edges match every filter.
func (s *SQLiteStorage) ListServiceRelations(consumerID uuid.UUID, environmentCode *string) ([]models.ServiceToServiceDependency, error) {
	q := s.db.Where("consumer_service_id = ?", consumerID).Order("created_at")
	if environmentCode != nil {
		q = q.Where("environment_code IS NULL OR environment_code = ?", *environmentCode)
	}
	var rels []models.ServiceToServiceDependency
	if err := q.Find(&rels).Error; err != nil {
		return nil, fmt.Errorf("failed to list service relations: %w", err)
	}
	return rels, nil
}

// GetServiceRelation retrieves one edge of a consumer service
func (s *SQLiteStorage) GetServiceRelation(consumerID, relationID uuid.UUID) (*models.ServiceToServiceDependency, error) {
	var rel models.ServiceToServiceDependency
	result := s.db.Where("id = ? AND consumer_service_id = ?", relationID, consumerID).First(&rel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get service relation: %w", result.Error)
	}
	return &rel, nil
}

// CreateServiceRelation creates an edge
func (s *SQLiteStorage) CreateServiceRelation(rel *models.ServiceToServiceDependency) error {
	q := s.db.Model(&models.ServiceToServiceDependency{}).
		Where("consumer_service_id = ? AND provider_service_id = ?", rel.ConsumerServiceID, rel.ProviderServiceID)
	var count int64
	if err := environmentScope(q, rel.EnvironmentCode).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check service relation: %w", err)
	}
	if count > 0 {
		return ErrAlreadyExists
	}
	if err := s.db.Create(rel).Error; err != nil {
		return fmt.Errorf("failed to create service relation: %w", err)
	}
	return nil
}

// UpdateServiceRelation persists an edge, rejecting scope collisions
func (s *SQLiteStorage) UpdateServiceRelation(rel *models.ServiceToServiceDependency) error {
	q := s.db.Model(&models.ServiceToServiceDependency{}).
		Where("consumer_service_id = ? AND provider_service_id = ? AND id != ?",
			rel.ConsumerServiceID, rel.ProviderServiceID, rel.ID)
	var count int64
	if err := environmentScope(q, rel.EnvironmentCode).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check service relation: %w", err)
	}
	if count > 0 {
		return ErrAlreadyExists
	}
	if err := s.db.Save(rel).Error; err != nil {
		return fmt.Errorf("failed to update service relation: %w", err)
	}
	return nil
}

// DeleteServiceRelation deletes one edge of a consumer service
func (s *SQLiteStorage) DeleteServiceRelation(consumerID, relationID uuid.UUID) error {
	result := s.db.Where("id = ? AND consumer_service_id = ?", relationID, consumerID).
		Delete(&models.ServiceToServiceDependency{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete service relation: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListEndpoints lists the endpoints of a service ordered by path
func (s *SQLiteStorage) ListEndpoints(serviceID uuid.UUID) ([]models.Endpoint, error) {
	var endpoints []models.Endpoint
	result := s.db.Where("service_id = ?", serviceID).Order("path").Find(&endpoints)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list endpoints: %w", result.Error)
	}
	return endpoints, nil
}

// GetEndpoint retrieves one endpoint of a service
func (s *SQLiteStorage) GetEndpoint(serviceID, endpointID uuid.UUID) (*models.Endpoint, error) {
	var ep models.Endpoint
	result := s.db.Where("endpoint_id = ? AND service_id = ?", endpointID, serviceID).First(&ep)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get endpoint: %w", result.Error)
	}
	return &ep, nil
}

// CreateEndpoint stores an endpoint record
func (s *SQLiteStorage) CreateEndpoint(ep *models.Endpoint) error {
	if err := s.db.Create(ep).Error; err != nil {
		return fmt.Errorf("failed to create endpoint: %w", err)
	}
	return nil
}
