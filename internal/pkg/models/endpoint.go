package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/arqut/arqut-registry/internal/pkg/jsonvalue"
)

// EndpointMethod is the HTTP method of an API endpoint.
type EndpointMethod string

const (
	EndpointMethodGet     EndpointMethod = "GET"
	EndpointMethodPost    EndpointMethod = "POST"
	EndpointMethodPut     EndpointMethod = "PUT"
	EndpointMethodPatch   EndpointMethod = "PATCH"
	EndpointMethodDelete  EndpointMethod = "DELETE"
	EndpointMethodHead    EndpointMethod = "HEAD"
	EndpointMethodOptions EndpointMethod = "OPTIONS"
)

// EndpointMethods lists all valid endpoint methods.
var EndpointMethods = []EndpointMethod{
	EndpointMethodGet,
	EndpointMethodPost,
	EndpointMethodPut,
	EndpointMethodPatch,
	EndpointMethodDelete,
	EndpointMethodHead,
	EndpointMethodOptions,
}

// Valid reports whether the value is a known endpoint method.
func (m EndpointMethod) Valid() bool {
	for _, known := range EndpointMethods {
		if m == known {
			return true
		}
	}
	return false
}

// CallType classifies how an endpoint invokes a dependency.
type CallType string

const (
	CallTypeSync     CallType = "SYNC"
	CallTypeAsync    CallType = "ASYNC"
	CallTypeCallback CallType = "CALLBACK"
)

// OperationType classifies how an endpoint touches a database.
type OperationType string

const (
	OperationTypeRead      OperationType = "READ"
	OperationTypeWrite     OperationType = "WRITE"
	OperationTypeReadWrite OperationType = "READ_WRITE"
)

// Endpoint describes one HTTP operation exposed by a service. Schemas, auth
// and rate-limit descriptors have no fixed shape and are carried as dynamic
// JSON values. Endpoints are read-only through this registry: the catalog is
// populated out of band.
type Endpoint struct {
	EndpointID      uuid.UUID               `json:"endpointId" gorm:"type:text;primaryKey"`
	ServiceID       uuid.UUID               `json:"serviceId" gorm:"type:text;index;not null"`
	Method          EndpointMethod          `json:"method" gorm:"type:varchar(8)"`
	Path            string                  `json:"path"`
	Summary         string                  `json:"summary"`
	RequestSchema   *jsonvalue.Value        `json:"requestSchema,omitempty" gorm:"serializer:json"`
	ResponseSchemas *jsonvalue.Value        `json:"responseSchemas,omitempty" gorm:"serializer:json"`
	Auth            *jsonvalue.Value        `json:"auth,omitempty" gorm:"serializer:json"`
	RateLimit       *jsonvalue.Value        `json:"rateLimit,omitempty" gorm:"serializer:json"`
	Metadata        *jsonvalue.Value        `json:"metadata,omitempty" gorm:"serializer:json"`
	Calls           []EndpointCall          `json:"calls,omitempty" gorm:"serializer:json"`
	Databases       []EndpointDatabaseUsage `json:"databases,omitempty" gorm:"serializer:json"`
	CreatedAt       time.Time               `json:"createdAt"`
	UpdatedAt       time.Time               `json:"updatedAt"`
}

// EndpointCall records one dependency invocation made by an endpoint.
type EndpointCall struct {
	DependencyID uuid.UUID        `json:"dependencyId"`
	CallType     CallType         `json:"callType"`
	Config       *jsonvalue.Value `json:"config,omitempty"`
	Dependency   Dependency       `json:"dependency"`
}

// EndpointDatabaseUsage records one database touched by an endpoint.
type EndpointDatabaseUsage struct {
	DatabaseID    uuid.UUID          `json:"databaseId"`
	OperationType OperationType      `json:"operationType"`
	Tables        []string           `json:"tables,omitempty"`
	Config        *jsonvalue.Value   `json:"config,omitempty"`
	Database      DatabaseDescriptor `json:"database"`
}

// DatabaseDescriptor identifies a concrete database instance.
type DatabaseDescriptor struct {
	Name         string            `json:"name"`
	Type         string            `json:"type"`
	Host         string            `json:"host"`
	Port         int               `json:"port"`
	DatabaseName string            `json:"databaseName"`
	Config       map[string]string `json:"config,omitempty"`
}
