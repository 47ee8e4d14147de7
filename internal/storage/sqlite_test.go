package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arqut/arqut-registry/internal/pkg/models"
)

func setupTestStorage(t *testing.T) *SQLiteStorage {
	dbPath := filepath.Join(t.TempDir(), "registry.db")
	storage, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)

	err = storage.Init()
	require.NoError(t, err)

	t.Cleanup(func() { storage.Close() })
	return storage
}

func testTimestamps() (*time.Time, *time.Time) {
	now := time.Now()
	return &now, &now
}

func newStoredService(name, owner string) *models.Service {
	created, updated := testTimestamps()
	return &models.Service{
		ServiceID:   uuid.New(),
		Name:        name,
		Owner:       owner,
		Tags:        []string{"test"},
		ServiceType: models.ServiceTypeApplication,
		CreatedAt:   created,
		UpdatedAt:   updated,
	}
}

func newStoredDependency(name, version string) *models.Dependency {
	created, updated := testTimestamps()
	return &models.Dependency{
		DependencyID:   uuid.New(),
		Name:           name,
		Version:        version,
		DependencyType: models.DependencyTypeDatabase,
		CreatedAt:      created,
		UpdatedAt:      updated,
	}
}

func TestCreateService(t *testing.T) {
	storage := setupTestStorage(t)

	service := newStoredService("user-service", "backend-team")
	service.Environments = []models.Environment{
		{
			EnvironmentID: uuid.New(),
			ServiceID:     service.ServiceID,
			Code:          "prod",
			DisplayName:   "Production",
			Host:          "https://user-service.example.com",
			Status:        models.EnvironmentStatusActive,
		},
	}

	err := storage.CreateService(service)
	assert.NoError(t, err)

	retrieved, err := storage.GetService(service.ServiceID)
	require.NoError(t, err)
	assert.Equal(t, service.ServiceID, retrieved.ServiceID)
	assert.Equal(t, "user-service", retrieved.Name)
	assert.Equal(t, []string{"test"}, retrieved.Tags)
	require.Len(t, retrieved.Environments, 1)
	assert.Equal(t, "prod", retrieved.Environments[0].Code)
}

func TestCreateService_DuplicateName(t *testing.T) {
	storage := setupTestStorage(t)

	require.NoError(t, storage.CreateService(newStoredService("user-service", "backend-team")))

	err := storage.CreateService(newStoredService("user-service", "another-team"))
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestUpdateService(t *testing.T) {
	storage := setupTestStorage(t)

	service := newStoredService("user-service", "backend-team")
	require.NoError(t, storage.CreateService(service))

	service.Owner = "platform-team"
	service.Tags = []string{"core", "users"}
	err := storage.UpdateService(service)
	assert.NoError(t, err)

	retrieved, err := storage.GetService(service.ServiceID)
	require.NoError(t, err)
	assert.Equal(t, "platform-team", retrieved.Owner)
	assert.Equal(t, []string{"core", "users"}, retrieved.Tags)
}

func TestUpdateService_RenameCollision(t *testing.T) {
	storage := setupTestStorage(t)

	require.NoError(t, storage.CreateService(newStoredService("user-service", "backend-team")))
	other := newStoredService("order-service", "commerce-team")
	require.NoError(t, storage.CreateService(other))

	other.Name = "user-service"
	err := storage.UpdateService(other)
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestDeleteService_Cascades(t *testing.T) {
	storage := setupTestStorage(t)

	service := newStoredService("order-service", "commerce-team")
	service.Environments = []models.Environment{
		{
			EnvironmentID: uuid.New(),
			ServiceID:     service.ServiceID,
			Code:          "prod",
			Status:        models.EnvironmentStatusActive,
		},
	}
	require.NoError(t, storage.CreateService(service))

	provider := newStoredService("payment-service", "payments-team")
	require.NoError(t, storage.CreateService(provider))

	dep := newStoredDependency("postgresql", "15.4")
	require.NoError(t, storage.CreateDependency(dep))

	createdAt, updatedAt := testTimestamps()
	binding := &models.ServiceDependency{
		ServiceDependencyID: uuid.New(),
		ServiceID:           service.ServiceID,
		DependencyID:        dep.DependencyID,
		Dependency:          *dep,
		CreatedAt:           createdAt,
		UpdatedAt:           updatedAt,
	}
	require.NoError(t, storage.CreateServiceDependency(binding))

	rel := &models.ServiceToServiceDependency{
		ID:                uuid.New(),
		ConsumerServiceID: service.ServiceID,
		ProviderServiceID: provider.ServiceID,
		ConsumerService:   service.Summary(),
		ProviderService:   provider.Summary(),
		DependencyType:    models.ServiceRelationAPICall,
		CreatedAt:         createdAt,
		UpdatedAt:         updatedAt,
	}
	require.NoError(t, storage.CreateServiceRelation(rel))

	err := storage.DeleteService(service.ServiceID)
	assert.NoError(t, err)

	_, err = storage.GetService(service.ServiceID)
	assert.ErrorIs(t, err, ErrNotFound)

	bindings, err := storage.ListServiceDependencies(service.ServiceID)
	require.NoError(t, err)
	assert.Empty(t, bindings)

	rels, err := storage.ListServiceRelations(service.ServiceID, nil)
	require.NoError(t, err)
	assert.Empty(t, rels)
}

func TestDeleteService_NotFound(t *testing.T) {
	storage := setupTestStorage(t)

	err := storage.DeleteService(uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDependencyUniquePerVersion(t *testing.T) {
	storage := setupTestStorage(t)

	require.NoError(t, storage.CreateDependency(newStoredDependency("postgresql", "15.4")))
	require.NoError(t, storage.CreateDependency(newStoredDependency("postgresql", "16.1")))

	err := storage.CreateDependency(newStoredDependency("postgresql", "15.4"))
	assert.ErrorIs(t, err, ErrAlreadyExists)

	deps, err := storage.ListDependencies()
	require.NoError(t, err)
	assert.Len(t, deps, 2)
}

func TestUpdateDependencyRefreshesSnapshots(t *testing.T) {
	storage := setupTestStorage(t)

	service := newStoredService("order-service", "commerce-team")
	require.NoError(t, storage.CreateService(service))

	dep := newStoredDependency("postgresql", "15.4")
	require.NoError(t, storage.CreateDependency(dep))

	createdAt, updatedAt := testTimestamps()
	binding := &models.ServiceDependency{
		ServiceDependencyID: uuid.New(),
		ServiceID:           service.ServiceID,
		DependencyID:        dep.DependencyID,
		Dependency:          *dep,
		CreatedAt:           createdAt,
		UpdatedAt:           updatedAt,
	}
	require.NoError(t, storage.CreateServiceDependency(binding))

	dep.Version = "15.5"
	require.NoError(t, storage.UpdateDependency(dep))

	bindings, err := storage.ListServiceDependencies(service.ServiceID)
	require.NoError(t, err)
	require.Len(t, bindings, 1)
	assert.Equal(t, "15.5", bindings[0].Dependency.Version)
}

func TestServiceDependencyScopeTriple(t *testing.T) {
	storage := setupTestStorage(t)

	service := newStoredService("order-service", "commerce-team")
	require.NoError(t, storage.CreateService(service))
	dep := newStoredDependency("postgresql", "15.4")
	require.NoError(t, storage.CreateDependency(dep))

	prod := "prod"
	staging := "staging"
	createdAt, updatedAt := testTimestamps()
	mkBinding := func(code *string) *models.ServiceDependency {
		return &models.ServiceDependency{
			ServiceDependencyID: uuid.New(),
			ServiceID:           service.ServiceID,
			DependencyID:        dep.DependencyID,
			Dependency:          *dep,
			EnvironmentCode:     code,
			CreatedAt:           createdAt,
			UpdatedAt:           updatedAt,
		}
	}

	require.NoError(t, storage.CreateServiceDependency(mkBinding(&prod)))
	require.NoError(t, storage.CreateServiceDependency(mkBinding(&staging)))
	require.NoError(t, storage.CreateServiceDependency(mkBinding(nil)))

	// Same triple again is a conflict, for scoped and unscoped alike.
	assert.ErrorIs(t, storage.CreateServiceDependency(mkBinding(&prod)), ErrAlreadyExists)
	assert.ErrorIs(t, storage.CreateServiceDependency(mkBinding(nil)), ErrAlreadyExists)

	// Delete matches the exact scope.
	assert.ErrorIs(t, storage.DeleteServiceDependency(service.ServiceID, dep.DependencyID, strPtr("qa")), ErrNotFound)
	require.NoError(t, storage.DeleteServiceDependency(service.ServiceID, dep.DependencyID, &prod))
	require.NoError(t, storage.DeleteServiceDependency(service.ServiceID, dep.DependencyID, nil))

	bindings, err := storage.ListServiceDependencies(service.ServiceID)
	require.NoError(t, err)
	assert.Len(t, bindings, 1)
}

func TestListAllServiceDependencies_EnvironmentFilter(t *testing.T) {
	storage := setupTestStorage(t)

	service := newStoredService("order-service", "commerce-team")
	require.NoError(t, storage.CreateService(service))
	dep := newStoredDependency("postgresql", "15.4")
	require.NoError(t, storage.CreateDependency(dep))

	prod := "prod"
	staging := "staging"
	createdAt, updatedAt := testTimestamps()
	for _, code := range []*string{&prod, &staging, nil} {
		require.NoError(t, storage.CreateServiceDependency(&models.ServiceDependency{
			ServiceDependencyID: uuid.New(),
			ServiceID:           service.ServiceID,
			DependencyID:        dep.DependencyID,
			Dependency:          *dep,
			EnvironmentCode:     code,
			CreatedAt:           createdAt,
			UpdatedAt:           updatedAt,
		}))
	}

	all, err := storage.ListAllServiceDependencies(nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	// A filter matches its own scope plus unscoped bindings.
	prodOnly, err := storage.ListAllServiceDependencies(&prod)
	require.NoError(t, err)
	assert.Len(t, prodOnly, 2)
}

func TestServiceRelationLifecycle(t *testing.T) {
	storage := setupTestStorage(t)

	consumer := newStoredService("order-service", "commerce-team")
	provider := newStoredService("payment-service", "payments-team")
	require.NoError(t, storage.CreateService(consumer))
	require.NoError(t, storage.CreateService(provider))

	prod := "prod"
	createdAt, updatedAt := testTimestamps()
	rel := &models.ServiceToServiceDependency{
		ID:                uuid.New(),
		ConsumerServiceID: consumer.ServiceID,
		ProviderServiceID: provider.ServiceID,
		ConsumerService:   consumer.Summary(),
		ProviderService:   provider.Summary(),
		EnvironmentCode:   &prod,
		DependencyType:    models.ServiceRelationAPICall,
		CreatedAt:         createdAt,
		UpdatedAt:         updatedAt,
	}
	require.NoError(t, storage.CreateServiceRelation(rel))

	// Duplicate scope triple is a conflict.
	dup := *rel
	dup.ID = uuid.New()
	assert.ErrorIs(t, storage.CreateServiceRelation(&dup), ErrAlreadyExists)

	got, err := storage.GetServiceRelation(consumer.ServiceID, rel.ID)
	require.NoError(t, err)
	assert.Equal(t, "payment-service", got.ProviderService.Name)

	// Lookup is scoped to the consumer.
	_, err = storage.GetServiceRelation(provider.ServiceID, rel.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	rel.DependencyType = models.ServiceRelationEventSubscription
	require.NoError(t, storage.UpdateServiceRelation(rel))
	got, err = storage.GetServiceRelation(consumer.ServiceID, rel.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ServiceRelationEventSubscription, got.DependencyType)

	require.NoError(t, storage.DeleteServiceRelation(consumer.ServiceID, rel.ID))
	assert.ErrorIs(t, storage.DeleteServiceRelation(consumer.ServiceID, rel.ID), ErrNotFound)
}

func TestEndpointStorage(t *testing.T) {
	storage := setupTestStorage(t)

	service := newStoredService("user-service", "backend-team")
	require.NoError(t, storage.CreateService(service))

	now := time.Now()
	paths := []string{"/users/{id}", "/users"}
	ids := make([]uuid.UUID, 0, len(paths))
	for _, path := range paths {
		ep := &models.Endpoint{
			EndpointID: uuid.New(),
			ServiceID:  service.ServiceID,
			Method:     models.EndpointMethodGet,
			Path:       path,
			Summary:    "test endpoint",
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		require.NoError(t, storage.CreateEndpoint(ep))
		ids = append(ids, ep.EndpointID)
	}

	endpoints, err := storage.ListEndpoints(service.ServiceID)
	require.NoError(t, err)
	require.Len(t, endpoints, 2)
	assert.Equal(t, "/users", endpoints[0].Path, "list is ordered by path")

	got, err := storage.GetEndpoint(service.ServiceID, ids[0])
	require.NoError(t, err)
	assert.Equal(t, "/users/{id}", got.Path)

	_, err = storage.GetEndpoint(uuid.New(), ids[0])
	assert.ErrorIs(t, err, ErrNotFound)
}

func strPtr(s string) *string { return &s }
