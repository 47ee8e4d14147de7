package models

import (
	"time"

	"github.com/google/uuid"
)

// DependencyType classifies a catalog dependency.
type DependencyType string

const (
	DependencyTypeLibrary      DependencyType = "LIBRARY"
	DependencyTypeService      DependencyType = "SERVICE"
	DependencyTypeDatabase     DependencyType = "DATABASE"
	DependencyTypeExternalAPI  DependencyType = "EXTERNAL_API"
	DependencyTypeMessageQueue DependencyType = "MESSAGE_QUEUE"
)

// DependencyTypes lists all valid dependency types.
var DependencyTypes = []DependencyType{
	DependencyTypeLibrary,
	DependencyTypeService,
	DependencyTypeDatabase,
	DependencyTypeExternalAPI,
	DependencyTypeMessageQueue,
}

// Valid reports whether the value is a known dependency type.
func (t DependencyType) Valid() bool {
	for _, known := range DependencyTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ServiceRelationType classifies a directed service-to-service relationship.
type ServiceRelationType string

const (
	ServiceRelationAPICall           ServiceRelationType = "API_CALL"
	ServiceRelationEventSubscription ServiceRelationType = "EVENT_SUBSCRIPTION"
	ServiceRelationDataSharing       ServiceRelationType = "DATA_SHARING"
	ServiceRelationAuthentication    ServiceRelationType = "AUTHENTICATION"
	ServiceRelationProxy             ServiceRelationType = "PROXY"
	ServiceRelationLibraryUsage      ServiceRelationType = "LIBRARY_USAGE"
)

// ServiceRelationTypes lists all valid service-to-service relation types.
var ServiceRelationTypes = []ServiceRelationType{
	ServiceRelationAPICall,
	ServiceRelationEventSubscription,
	ServiceRelationDataSharing,
	ServiceRelationAuthentication,
	ServiceRelationProxy,
	ServiceRelationLibraryUsage,
}

// Valid reports whether the value is a known relation type.
func (t ServiceRelationType) Valid() bool {
	for _, known := range ServiceRelationTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Dependency is a catalog entry for an external thing services rely on:
// a library, database, queue, API or another service. It has its own
// lifecycle and is referenced (snapshot-embedded) by bindings.
type Dependency struct {
	DependencyID   uuid.UUID         `json:"dependencyId" gorm:"type:text;primaryKey"`
	Name           string            `json:"name" gorm:"type:varchar(128);index;not null"`
	Description    *string           `json:"description,omitempty"`
	Version        string            `json:"version" gorm:"type:varchar(64)"`
	DependencyType DependencyType    `json:"dependencyType" gorm:"type:varchar(32)"`
	Config         map[string]string `json:"config" gorm:"serializer:json"`
	CreatedAt      *time.Time        `json:"createdAt,omitempty"`
	UpdatedAt      *time.Time        `json:"updatedAt,omitempty"`
}

// ServiceDependency binds a service to a catalog dependency, optionally
// scoped to one environment. The dependency is embedded as a snapshot for
// display; the indexed id columns drive the uniqueness rule.
type ServiceDependency struct {
	ServiceDependencyID uuid.UUID         `json:"serviceDependencyId" gorm:"type:text;primaryKey"`
	ServiceID           uuid.UUID         `json:"serviceId" gorm:"type:text;index;not null"`
	DependencyID        uuid.UUID         `json:"-" gorm:"type:text;index;not null"`
	Dependency          Dependency        `json:"dependency" gorm:"serializer:json"`
	EnvironmentCode     *string           `json:"environmentCode,omitempty" gorm:"type:varchar(32)"`
	ConfigOverride      map[string]string `json:"configOverride,omitempty" gorm:"serializer:json"`
	CreatedAt           *time.Time        `json:"createdAt,omitempty"`
	UpdatedAt           *time.Time        `json:"updatedAt,omitempty"`
}

// ServiceToServiceDependency is a directed, typed edge between two services
// (consumer depends on provider).
type ServiceToServiceDependency struct {
	ID                uuid.UUID           `json:"id" gorm:"type:text;primaryKey"`
	ConsumerServiceID uuid.UUID           `json:"-" gorm:"type:text;index;not null"`
	ProviderServiceID uuid.UUID           `json:"-" gorm:"type:text;index;not null"`
	ConsumerService   ServiceSummary      `json:"consumerService" gorm:"serializer:json"`
	ProviderService   ServiceSummary      `json:"providerService" gorm:"serializer:json"`
	EnvironmentCode   *string             `json:"environmentCode,omitempty" gorm:"type:varchar(32)"`
	Description       *string             `json:"description,omitempty"`
	DependencyType    ServiceRelationType `json:"dependencyType" gorm:"type:varchar(32)"`
	Config            map[string]string   `json:"config,omitempty" gorm:"serializer:json"`
	CreatedAt         *time.Time          `json:"createdAt,omitempty"`
	UpdatedAt         *time.Time          `json:"updatedAt,omitempty"`
}

// CreateDependencyRequest is the outbound shape for a new catalog entry.
type CreateDependencyRequest struct {
	Name           string            `json:"name"`
	Description    *string           `json:"description,omitempty"`
	Version        string            `json:"version"`
	DependencyType DependencyType    `json:"dependencyType"`
	Config         map[string]string `json:"config"`
}

// UpdateDependencyRequest is a partial patch for a catalog entry.
type UpdateDependencyRequest struct {
	Name           *string           `json:"name,omitempty"`
	Description    *string           `json:"description,omitempty"`
	Version        *string           `json:"version,omitempty"`
	DependencyType *DependencyType   `json:"dependencyType,omitempty"`
	Config         map[string]string `json:"config,omitempty"`
}

// CreateServiceDependencyRequest binds a dependency to the service in the
// request path.
type CreateServiceDependencyRequest struct {
	DependencyID    uuid.UUID         `json:"dependencyId"`
	EnvironmentCode *string           `json:"environmentCode,omitempty"`
	ConfigOverride  map[string]string `json:"configOverride"`
}

// CreateServiceToServiceDependencyRequest creates an edge from the consumer
// in the request path to the given provider.
type CreateServiceToServiceDependencyRequest struct {
	ProviderServiceID uuid.UUID           `json:"providerServiceId"`
	EnvironmentCode   *string             `json:"environmentCode,omitempty"`
	Description       *string             `json:"description,omitempty"`
	DependencyType    ServiceRelationType `json:"dependencyType"`
	Config            map[string]string   `json:"config,omitempty"`
}

// UpdateServiceToServiceDependencyRequest is a partial patch for an edge.
type UpdateServiceToServiceDependencyRequest struct {
	EnvironmentCode *string              `json:"environmentCode,omitempty"`
	Description     *string              `json:"description,omitempty"`
	DependencyType  *ServiceRelationType `json:"dependencyType,omitempty"`
	Config          map[string]string    `json:"config,omitempty"`
}
