package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arqut/arqut-registry/internal/apikey"
	"github.com/arqut/arqut-registry/internal/config"
	"github.com/arqut/arqut-registry/internal/pkg/models"
	"github.com/arqut/arqut-registry/internal/storage"
)

func newTestServer(t *testing.T, cfg *config.APIConfig) *Server {
	t.Helper()
	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "registry.db"))
	require.NoError(t, err)
	require.NoError(t, store.Init())
	t.Cleanup(func() { store.Close() })

	if cfg == nil {
		cfg = &config.APIConfig{Port: 8080}
	}
	return New(cfg, store, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func doJSON(t *testing.T, s *Server, method, path string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, respBody
}

func createTestService(t *testing.T, s *Server, name string) models.Service {
	t.Helper()
	status, body := doJSON(t, s, "POST", "/api/v1/services", models.CreateServiceRequest{
		Name:        name,
		Owner:       "test-team",
		ServiceType: models.ServiceTypeApplication,
	})
	require.Equal(t, fiber.StatusCreated, status)
	var svc models.Service
	require.NoError(t, json.Unmarshal(body, &svc))
	return svc
}

func createTestDependency(t *testing.T, s *Server, name, version string) models.Dependency {
	t.Helper()
	status, body := doJSON(t, s, "POST", "/api/v1/dependencies", models.CreateDependencyRequest{
		Name:           name,
		Version:        version,
		DependencyType: models.DependencyTypeDatabase,
	})
	require.Equal(t, fiber.StatusCreated, status)
	var dep models.Dependency
	require.NoError(t, json.Unmarshal(body, &dep))
	return dep
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	status, body := doJSON(t, s, "GET", "/api/v1/health", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(body), `"status":"ok"`)
}

func TestServiceCRUD(t *testing.T) {
	s := newTestServer(t, nil)

	created := createTestService(t, s, "user-service")
	assert.NotEqual(t, uuid.Nil, created.ServiceID)
	assert.NotNil(t, created.CreatedAt)

	status, body := doJSON(t, s, "GET", "/api/v1/services/"+created.ServiceID.String(), nil)
	require.Equal(t, fiber.StatusOK, status)
	var got models.Service
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "user-service", got.Name)

	owner := "platform-team"
	status, body = doJSON(t, s, "PATCH", "/api/v1/services/"+created.ServiceID.String(),
		models.UpdateServiceRequest{Owner: &owner})
	require.Equal(t, fiber.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "platform-team", got.Owner)
	assert.Equal(t, "user-service", got.Name, "unspecified fields keep their values")

	status, _ = doJSON(t, s, "DELETE", "/api/v1/services/"+created.ServiceID.String(), nil)
	assert.Equal(t, fiber.StatusNoContent, status)

	status, _ = doJSON(t, s, "GET", "/api/v1/services/"+created.ServiceID.String(), nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestServiceValidationAndConflicts(t *testing.T) {
	s := newTestServer(t, nil)
	createTestService(t, s, "user-service")

	tests := []struct {
		name   string
		req    models.CreateServiceRequest
		status int
	}{
		{
			name:   "duplicate name",
			req:    models.CreateServiceRequest{Name: "user-service", ServiceType: models.ServiceTypeApplication},
			status: fiber.StatusConflict,
		},
		{
			name:   "blank name",
			req:    models.CreateServiceRequest{Name: "   ", ServiceType: models.ServiceTypeApplication},
			status: fiber.StatusBadRequest,
		},
		{
			name:   "bad service type",
			req:    models.CreateServiceRequest{Name: "x", ServiceType: "MAINFRAME"},
			status: fiber.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := doJSON(t, s, "POST", "/api/v1/services", tt.req)
			assert.Equal(t, tt.status, status)

			var apiErr ApiError
			require.NoError(t, json.Unmarshal(body, &apiErr))
			assert.Equal(t, tt.status, apiErr.Code)
			assert.NotEmpty(t, apiErr.Message)
		})
	}
}

func TestDependencyConflictPerVersion(t *testing.T) {
	s := newTestServer(t, nil)

	createTestDependency(t, s, "postgresql", "15.4")
	createTestDependency(t, s, "postgresql", "16.1")

	status, _ := doJSON(t, s, "POST", "/api/v1/dependencies", models.CreateDependencyRequest{
		Name:           "postgresql",
		Version:        "15.4",
		DependencyType: models.DependencyTypeDatabase,
	})
	assert.Equal(t, fiber.StatusConflict, status)
}

func TestServiceDependencyBindingFlow(t *testing.T) {
	s := newTestServer(t, nil)

	svc := createTestService(t, s, "order-service")
	dep := createTestDependency(t, s, "postgresql", "15.4")

	prod := "prod"
	status, body := doJSON(t, s, "POST", "/api/v1/services/"+svc.ServiceID.String()+"/dependencies",
		models.CreateServiceDependencyRequest{
			DependencyID:    dep.DependencyID,
			EnvironmentCode: &prod,
			ConfigOverride:  map[string]string{"database": "orders_db"},
		})
	require.Equal(t, fiber.StatusCreated, status)
	var binding models.ServiceDependency
	require.NoError(t, json.Unmarshal(body, &binding))
	assert.Equal(t, "postgresql", binding.Dependency.Name)

	// Same triple again conflicts.
	status, _ = doJSON(t, s, "POST", "/api/v1/services/"+svc.ServiceID.String()+"/dependencies",
		models.CreateServiceDependencyRequest{DependencyID: dep.DependencyID, EnvironmentCode: &prod})
	assert.Equal(t, fiber.StatusConflict, status)

	// Unknown dependency is a validation failure.
	status, _ = doJSON(t, s, "POST", "/api/v1/services/"+svc.ServiceID.String()+"/dependencies",
		models.CreateServiceDependencyRequest{DependencyID: uuid.New()})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body = doJSON(t, s, "GET", "/api/v1/services/"+svc.ServiceID.String()+"/dependencies", nil)
	require.Equal(t, fiber.StatusOK, status)
	var bindings []models.ServiceDependency
	require.NoError(t, json.Unmarshal(body, &bindings))
	require.Len(t, bindings, 1)
	assert.Equal(t, "orders_db", bindings[0].ConfigOverride["database"])

	// Delete must name the scope; the wrong scope is a miss.
	path := "/api/v1/services/" + svc.ServiceID.String() + "/dependencies/" + dep.DependencyID.String()
	status, _ = doJSON(t, s, "DELETE", path, nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = doJSON(t, s, "DELETE", path+"?environmentCode=prod", nil)
	assert.Equal(t, fiber.StatusNoContent, status)
}

func TestServiceRelationFlow(t *testing.T) {
	s := newTestServer(t, nil)

	consumer := createTestService(t, s, "order-service")
	provider := createTestService(t, s, "payment-service")
	base := "/api/v1/services/" + consumer.ServiceID.String() + "/service-dependencies"

	// Self-loop is rejected server-side too.
	status, _ := doJSON(t, s, "POST", base, models.CreateServiceToServiceDependencyRequest{
		ProviderServiceID: consumer.ServiceID,
		DependencyType:    models.ServiceRelationAPICall,
	})
	assert.Equal(t, fiber.StatusBadRequest, status)

	prod := "prod"
	status, body := doJSON(t, s, "POST", base, models.CreateServiceToServiceDependencyRequest{
		ProviderServiceID: provider.ServiceID,
		EnvironmentCode:   &prod,
		DependencyType:    models.ServiceRelationAPICall,
	})
	require.Equal(t, fiber.StatusCreated, status)
	var rel models.ServiceToServiceDependency
	require.NoError(t, json.Unmarshal(body, &rel))
	assert.Equal(t, "order-service", rel.ConsumerService.Name)
	assert.Equal(t, "payment-service", rel.ProviderService.Name)

	relType := models.ServiceRelationEventSubscription
	status, body = doJSON(t, s, "PATCH", base+"/"+rel.ID.String(),
		models.UpdateServiceToServiceDependencyRequest{DependencyType: &relType})
	require.Equal(t, fiber.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &rel))
	assert.Equal(t, models.ServiceRelationEventSubscription, rel.DependencyType)

	status, body = doJSON(t, s, "GET", base+"?environmentCode=prod", nil)
	require.Equal(t, fiber.StatusOK, status)
	var rels []models.ServiceToServiceDependency
	require.NoError(t, json.Unmarshal(body, &rels))
	assert.Len(t, rels, 1)

	status, _ = doJSON(t, s, "DELETE", base+"/"+rel.ID.String(), nil)
	assert.Equal(t, fiber.StatusNoContent, status)
	status, _ = doJSON(t, s, "DELETE", base+"/"+rel.ID.String(), nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestDependencyGraphEndpoints(t *testing.T) {
	s := newTestServer(t, nil)

	svc := createTestService(t, s, "order-service")
	dep := createTestDependency(t, s, "postgresql", "15.4")

	prod := "prod"
	status, _ := doJSON(t, s, "POST", "/api/v1/services/"+svc.ServiceID.String()+"/dependencies",
		models.CreateServiceDependencyRequest{DependencyID: dep.DependencyID, EnvironmentCode: &prod})
	require.Equal(t, fiber.StatusCreated, status)

	status, body := doJSON(t, s, "GET", "/api/v1/dependency-graph", nil)
	require.Equal(t, fiber.StatusOK, status)
	var graph models.DependencyGraph
	require.NoError(t, json.Unmarshal(body, &graph))
	assert.Len(t, graph.Nodes, 2, "service node plus dependency node")
	require.Len(t, graph.Edges, 1)
	assert.Equal(t, svc.ServiceID, graph.Edges[0].FromNodeID)
	assert.Equal(t, dep.DependencyID, graph.Edges[0].ToNodeID)

	// A staging filter drops the prod-scoped edge but keeps service nodes.
	status, body = doJSON(t, s, "GET", "/api/v1/dependency-graph?environmentCode=staging", nil)
	require.Equal(t, fiber.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &graph))
	assert.Empty(t, graph.Edges)

	status, body = doJSON(t, s, "GET", "/api/v1/services/"+svc.ServiceID.String()+"/dependency-graph?environmentCode=prod", nil)
	require.Equal(t, fiber.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &graph))
	assert.Len(t, graph.Edges, 1)
}

func TestAPIKeyProtectsMutations(t *testing.T) {
	key, hash, err := apikey.GenerateWithHash()
	require.NoError(t, err)

	cfg := &config.APIConfig{Port: 8080, APIKey: config.APIKeyConfig{Hash: hash}}
	s := newTestServer(t, cfg)

	// Reads stay open.
	status, _ := doJSON(t, s, "GET", "/api/v1/services", nil)
	assert.Equal(t, fiber.StatusOK, status)

	// Mutations without a key are rejected.
	status, _ = doJSON(t, s, "POST", "/api/v1/services", models.CreateServiceRequest{
		Name:        "user-service",
		ServiceType: models.ServiceTypeApplication,
	})
	assert.Equal(t, fiber.StatusUnauthorized, status)

	// With the key they go through.
	data, err := json.Marshal(models.CreateServiceRequest{
		Name:        "user-service",
		ServiceType: models.ServiceTypeApplication,
	})
	require.NoError(t, err)
	req := httptest.NewRequest("POST", "/api/v1/services", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+key)
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
}
