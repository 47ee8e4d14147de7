package mirror

import (
	"time"

	"github.com/google/uuid"

	"github.com/arqut/arqut-registry/internal/pkg/jsonvalue"
	"github.com/arqut/arqut-registry/internal/pkg/models"
)

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func jsonPtr(v jsonvalue.Value) *jsonvalue.Value { return &v }

// seed loads the demo dataset: four services with production environments,
// a small dependency catalog, bindings, service-to-service edges and a few
// endpoints on user-service. Identifiers are generated per process, so tests
// look entities up by name rather than by id.
func (m *Mirror) seed() {
	seededAt := time.Now().Add(-24 * time.Hour)
	ts := func() *time.Time {
		t := seededAt
		return &t
	}

	newService := func(name, description, owner string, tags []string, supportsDB bool) models.Service {
		return models.Service{
			ServiceID:        uuid.New(),
			Name:             name,
			Description:      strPtr(description),
			Owner:            owner,
			Tags:             tags,
			ServiceType:      models.ServiceTypeApplication,
			SupportsDatabase: supportsDB,
			CreatedAt:        ts(),
			UpdatedAt:        ts(),
		}
	}
	newEnvironment := func(serviceID uuid.UUID, code, displayName, host string, status models.EnvironmentStatus, timeoutMs, retries int) models.Environment {
		return models.Environment{
			EnvironmentID: uuid.New(),
			ServiceID:     serviceID,
			Code:          code,
			DisplayName:   displayName,
			Host:          host,
			Config: &models.EnvironmentConfig{
				TimeoutMs: intPtr(timeoutMs),
				Retries:   intPtr(retries),
			},
			Status:    status,
			CreatedAt: ts(),
			UpdatedAt: ts(),
		}
	}

	userService := newService("user-service", "User accounts and profile management", "backend-team",
		[]string{"users", "authentication", "core"}, true)
	authService := newService("auth-service", "Token issuing and session validation", "security-team",
		[]string{"auth", "security", "jwt"}, false)
	orderService := newService("order-service", "Order intake and fulfilment tracking", "commerce-team",
		[]string{"orders", "commerce", "business"}, true)
	paymentService := newService("payment-service", "Payment processing and billing", "payments-team",
		[]string{"payments", "billing", "financial"}, true)

	userService.Environments = []models.Environment{
		newEnvironment(userService.ServiceID, "prod", "Production", "https://user-service.prod.example.com", models.EnvironmentStatusActive, 5000, 3),
		newEnvironment(userService.ServiceID, "staging", "Staging", "https://user-service.staging.example.com", models.EnvironmentStatusInactive, 5000, 1),
	}
	authService.Environments = []models.Environment{
		newEnvironment(authService.ServiceID, "prod", "Production", "https://auth-service.prod.example.com", models.EnvironmentStatusActive, 3000, 2),
	}
	orderService.Environments = []models.Environment{
		newEnvironment(orderService.ServiceID, "prod", "Production", "https://order-service.prod.example.com", models.EnvironmentStatusActive, 8000, 3),
	}
	paymentService.Environments = []models.Environment{
		newEnvironment(paymentService.ServiceID, "prod", "Production", "https://payment-service.prod.example.com", models.EnvironmentStatusActive, 10000, 5),
	}

	m.services = []models.Service{userService, authService, orderService, paymentService}

	newDependency := func(name, description, version string, depType models.DependencyType, config map[string]string) models.Dependency {
		return models.Dependency{
			DependencyID:   uuid.New(),
			Name:           name,
			Description:    strPtr(description),
			Version:        version,
			DependencyType: depType,
			Config:         config,
			CreatedAt:      ts(),
			UpdatedAt:      ts(),
		}
	}

	postgres := newDependency("postgresql", "Primary relational store", "15.4", models.DependencyTypeDatabase,
		map[string]string{"host": "db.internal", "port": "5432"})
	redis := newDependency("redis", "Shared cache and session store", "7.2", models.DependencyTypeDatabase,
		map[string]string{"host": "cache.internal", "port": "6379"})
	kafka := newDependency("kafka", "Event backbone", "3.5", models.DependencyTypeMessageQueue,
		map[string]string{"brokers": "kafka-1.internal:9092,kafka-2.internal:9092"})
	jwtLib := newDependency("jwt-lib", "Token signing library", "2.1.0", models.DependencyTypeLibrary, nil)
	stripeAPI := newDependency("stripe-api", "Card processing provider", "2023-10-16", models.DependencyTypeExternalAPI,
		map[string]string{"baseUrl": "https://api.stripe.com"})

	m.dependencies = []models.Dependency{postgres, redis, kafka, jwtLib, stripeAPI}

	newBinding := func(svc models.Service, dep models.Dependency, environmentCode *string, override map[string]string) models.ServiceDependency {
		return models.ServiceDependency{
			ServiceDependencyID: uuid.New(),
			ServiceID:           svc.ServiceID,
			DependencyID:        dep.DependencyID,
			Dependency:          dep,
			EnvironmentCode:     environmentCode,
			ConfigOverride:      override,
			CreatedAt:           ts(),
			UpdatedAt:           ts(),
		}
	}

	m.serviceDependencies = []models.ServiceDependency{
		newBinding(orderService, postgres, strPtr("prod"), map[string]string{"database": "orders_db"}),
		newBinding(userService, postgres, strPtr("prod"), map[string]string{"database": "users_db"}),
		newBinding(userService, redis, strPtr("prod"), nil),
		newBinding(authService, jwtLib, nil, nil),
		newBinding(orderService, kafka, strPtr("prod"), map[string]string{"topic": "orders"}),
		newBinding(paymentService, stripeAPI, strPtr("prod"), nil),
	}

	newRelation := func(consumer, provider models.Service, environmentCode *string, description string, relType models.ServiceRelationType) models.ServiceToServiceDependency {
		return models.ServiceToServiceDependency{
			ID:                uuid.New(),
			ConsumerServiceID: consumer.ServiceID,
			ProviderServiceID: provider.ServiceID,
			ConsumerService:   consumer.Summary(),
			ProviderService:   provider.Summary(),
			EnvironmentCode:   environmentCode,
			Description:       strPtr(description),
			DependencyType:    relType,
			CreatedAt:         ts(),
			UpdatedAt:         ts(),
		}
	}

	m.serviceRelations = []models.ServiceToServiceDependency{
		newRelation(userService, authService, strPtr("prod"), "Validates session tokens", models.ServiceRelationAuthentication),
		newRelation(orderService, userService, strPtr("prod"), "Resolves customer profiles", models.ServiceRelationAPICall),
		newRelation(orderService, paymentService, strPtr("prod"), "Charges orders on checkout", models.ServiceRelationAPICall),
		newRelation(paymentService, userService, nil, "Receives billing address updates", models.ServiceRelationDataSharing),
	}

	usersDB := models.DatabaseDescriptor{
		Name:         "users-primary",
		Type:         "postgresql",
		Host:         "db.internal",
		Port:         5432,
		DatabaseName: "users_db",
	}
	bearerAuth := jsonPtr(jsonvalue.Object(map[string]jsonvalue.Value{
		"type":   jsonvalue.String("bearer"),
		"scopes": jsonvalue.Array(jsonvalue.String("users:read")),
	}))

	m.endpoints = []models.Endpoint{
		{
			EndpointID: uuid.New(),
			ServiceID:  userService.ServiceID,
			Method:     models.EndpointMethodGet,
			Path:       "/users",
			Summary:    "List users",
			ResponseSchemas: jsonPtr(jsonvalue.Object(map[string]jsonvalue.Value{
				"200": jsonvalue.Object(map[string]jsonvalue.Value{
					"type": jsonvalue.String("array"),
				}),
			})),
			Auth: bearerAuth,
			RateLimit: jsonPtr(jsonvalue.Object(map[string]jsonvalue.Value{
				"requestsPerMinute": jsonvalue.Int(600),
			})),
			Databases: []models.EndpointDatabaseUsage{
				{
					DatabaseID:    uuid.New(),
					OperationType: models.OperationTypeRead,
					Tables:        []string{"users"},
					Database:      usersDB,
				},
			},
			CreatedAt: seededAt,
			UpdatedAt: seededAt,
		},
		{
			EndpointID: uuid.New(),
			ServiceID:  userService.ServiceID,
			Method:     models.EndpointMethodPost,
			Path:       "/users",
			Summary:    "Register a user",
			RequestSchema: jsonPtr(jsonvalue.Object(map[string]jsonvalue.Value{
				"type": jsonvalue.String("object"),
				"required": jsonvalue.Array(
					jsonvalue.String("email"),
					jsonvalue.String("displayName"),
				),
			})),
			Auth: bearerAuth,
			Calls: []models.EndpointCall{
				{
					DependencyID: kafka.DependencyID,
					CallType:     models.CallTypeAsync,
					Config: jsonPtr(jsonvalue.Object(map[string]jsonvalue.Value{
						"topic": jsonvalue.String("user-registered"),
					})),
					Dependency: kafka,
				},
			},
			Databases: []models.EndpointDatabaseUsage{
				{
					DatabaseID:    uuid.New(),
					OperationType: models.OperationTypeWrite,
					Tables:        []string{"users", "audit_log"},
					Database:      usersDB,
				},
			},
			CreatedAt: seededAt,
			UpdatedAt: seededAt,
		},
		{
			EndpointID: uuid.New(),
			ServiceID:  userService.ServiceID,
			Method:     models.EndpointMethodGet,
			Path:       "/users/{id}",
			Summary:    "Fetch a user by id",
			Auth:       bearerAuth,
			Metadata: jsonPtr(jsonvalue.Object(map[string]jsonvalue.Value{
				"cacheTtlSeconds": jsonvalue.Int(30),
				"cached":          jsonvalue.Bool(true),
			})),
			Calls: []models.EndpointCall{
				{
					DependencyID: redis.DependencyID,
					CallType:     models.CallTypeSync,
					Dependency:   redis,
				},
			},
			Databases: []models.EndpointDatabaseUsage{
				{
					DatabaseID:    uuid.New(),
					OperationType: models.OperationTypeRead,
					Tables:        []string{"users"},
					Database:      usersDB,
				},
			},
			CreatedAt: seededAt,
			UpdatedAt: seededAt,
		},
	}
}
