package models

import (
	"time"

	"github.com/google/uuid"
)

// ServiceType classifies a registered service.
type ServiceType string

const (
	ServiceTypeApplication ServiceType = "APPLICATION"
	ServiceTypeLibrary     ServiceType = "LIBRARY"
	ServiceTypeJob         ServiceType = "JOB"
	ServiceTypeProxy       ServiceType = "PROXY"
)

// ServiceTypes lists all valid service types.
var ServiceTypes = []ServiceType{
	ServiceTypeApplication,
	ServiceTypeLibrary,
	ServiceTypeJob,
	ServiceTypeProxy,
}

// Valid reports whether the value is a known service type.
func (t ServiceType) Valid() bool {
	for _, known := range ServiceTypes {
		if t == known {
			return true
		}
	}
	return false
}

// EnvironmentStatus is the lifecycle state of a service environment.
type EnvironmentStatus string

const (
	EnvironmentStatusActive   EnvironmentStatus = "ACTIVE"
	EnvironmentStatusInactive EnvironmentStatus = "INACTIVE"
)

// Valid reports whether the value is a known environment status.
func (s EnvironmentStatus) Valid() bool {
	return s == EnvironmentStatusActive || s == EnvironmentStatusInactive
}

// Service is a registry entry for a microservice. Environments are owned by
// the service and travel with it on the wire.
type Service struct {
	ServiceID        uuid.UUID     `json:"serviceId" gorm:"type:text;primaryKey"`
	Name             string        `json:"name" gorm:"type:varchar(128);uniqueIndex;not null"`
	Description      *string       `json:"description,omitempty"`
	Owner            string        `json:"owner" gorm:"type:varchar(128)"`
	Tags             []string      `json:"tags" gorm:"serializer:json"`
	ServiceType      ServiceType   `json:"serviceType" gorm:"type:varchar(32)"`
	SupportsDatabase bool          `json:"supportsDatabase"`
	Proxy            bool          `json:"proxy"`
	CreatedAt        *time.Time    `json:"createdAt,omitempty"`
	UpdatedAt        *time.Time    `json:"updatedAt,omitempty"`
	Environments     []Environment `json:"environments,omitempty" gorm:"foreignKey:ServiceID;constraint:OnDelete:CASCADE"`
}

// HasActiveEnvironment reports whether any environment is ACTIVE.
func (s *Service) HasActiveEnvironment() bool {
	for _, env := range s.Environments {
		if env.Status == EnvironmentStatusActive {
			return true
		}
	}
	return false
}

// Summary returns the id/name projection used by relationship entities.
func (s *Service) Summary() ServiceSummary {
	return ServiceSummary{ID: s.ServiceID, Name: s.Name}
}

// ServiceSummary is the snapshot of a service embedded in relationships.
type ServiceSummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Environment is a deployment target of a service (prod, staging, ...).
type Environment struct {
	EnvironmentID uuid.UUID          `json:"environmentId" gorm:"type:text;primaryKey"`
	ServiceID     uuid.UUID          `json:"serviceId" gorm:"type:text;index;not null"`
	Code          string             `json:"code" gorm:"type:varchar(32)"`
	DisplayName   string             `json:"displayName" gorm:"type:varchar(128)"`
	Host          string             `json:"host"`
	Config        *EnvironmentConfig `json:"config,omitempty" gorm:"serializer:json"`
	Status        EnvironmentStatus  `json:"status" gorm:"type:varchar(16)"`
	CreatedAt     *time.Time         `json:"createdAt,omitempty"`
	UpdatedAt     *time.Time         `json:"updatedAt,omitempty"`
}

// EnvironmentConfig carries per-environment tuning.
type EnvironmentConfig struct {
	TimeoutMs           *int              `json:"timeoutMs,omitempty"`
	Retries             *int              `json:"retries,omitempty"`
	DownstreamOverrides map[string]string `json:"downstreamOverrides,omitempty"`
}

// CreateServiceRequest is the outbound shape for registering a service.
type CreateServiceRequest struct {
	Name             string      `json:"name"`
	Description      *string     `json:"description,omitempty"`
	Owner            string      `json:"owner"`
	Tags             []string    `json:"tags"`
	ServiceType      ServiceType `json:"serviceType"`
	SupportsDatabase bool        `json:"supportsDatabase"`
	Proxy            bool        `json:"proxy"`
}

// UpdateServiceRequest is a partial patch: nil fields retain current values.
type UpdateServiceRequest struct {
	Name             *string      `json:"name,omitempty"`
	Description      *string      `json:"description,omitempty"`
	Owner            *string      `json:"owner,omitempty"`
	Tags             []string     `json:"tags,omitempty"`
	ServiceType      *ServiceType `json:"serviceType,omitempty"`
	SupportsDatabase *bool        `json:"supportsDatabase,omitempty"`
	Proxy            *bool        `json:"proxy,omitempty"`
}
