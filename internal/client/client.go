// Package client provides the typed HTTP client for the service registry
// REST API and the Registry contract it shares with the in-memory mirror.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/arqut/arqut-registry/internal/pkg/apierr"
	"github.com/arqut/arqut-registry/internal/pkg/models"
)

const apiBasePath = "/api/v1"

// Client is a stateless, typed client for the registry REST API. The base
// URL and codecs are fixed at construction; the client holds no mutable
// cross-call state.
type Client struct {
	baseURL string
	httpc   *http.Client
	apiKey  string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) { c.httpc = httpc }
}

// WithAPIKey sends the given key as a Bearer token on every request. Only
// needed against servers with write protection enabled.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// New creates a registry client for the server at baseURL, e.g.
// "http://localhost:8080". The API version prefix is appended internally.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/") + apiBasePath,
		httpc:   &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do issues one request and returns the status code and raw body. Transport
// failures are classified as network errors; status interpretation is left
// to the caller.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (int, []byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, nil, apierr.Wrap(apierr.KindValidation, "encoding request body", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return 0, nil, apierr.Wrap(apierr.KindNetwork, "building request", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return 0, nil, apierr.Network(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, apierr.Network(err)
	}
	return resp.StatusCode, data, nil
}

func decode[T any](data []byte, what string) (T, error) {
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return out, apierr.Wrap(apierr.KindInvalidResponse, "decoding "+what, err)
	}
	return out, nil
}

func queryWithEnvironment(environmentCode *string) url.Values {
	if environmentCode == nil {
		return nil
	}
	return url.Values{"environmentCode": []string{*environmentCode}}
}

// Services

// ListServices fetches every registered service.
func (c *Client) ListServices(ctx context.Context) ([]models.Service, error) {
	status, data, err := c.do(ctx, http.MethodGet, "/services", nil, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, apierr.InvalidResponse(fmt.Sprintf("listing services: unexpected status %d", status))
	}
	return decode[[]models.Service](data, "service list")
}

// GetService fetches one service by id.
func (c *Client) GetService(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	status, data, err := c.do(ctx, http.MethodGet, "/services/"+id.String(), nil, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, apierr.NotFound("service not found")
	}
	return decode[*models.Service](data, "service")
}

// CreateService registers a new service.
func (c *Client) CreateService(ctx context.Context, req models.CreateServiceRequest) (*models.Service, error) {
	status, data, err := c.do(ctx, http.MethodPost, "/services", nil, req)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusOK, http.StatusCreated:
		return decode[*models.Service](data, "service")
	case http.StatusConflict:
		return nil, apierr.AlreadyExists("service with this name already exists")
	case http.StatusBadRequest:
		return nil, apierr.Validation("service data failed validation")
	default:
		return nil, apierr.Server(fmt.Sprintf("creating service: status %d", status))
	}
}

// UpdateService applies a partial patch to a service.
func (c *Client) UpdateService(ctx context.Context, id uuid.UUID, req models.UpdateServiceRequest) (*models.Service, error) {
	status, data, err := c.do(ctx, http.MethodPatch, "/services/"+id.String(), nil, req)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusOK:
		return decode[*models.Service](data, "service")
	case http.StatusNotFound:
		return nil, apierr.NotFound("service not found")
	case http.StatusConflict:
		return nil, apierr.AlreadyExists("service with this name already exists")
	case http.StatusBadRequest:
		return nil, apierr.Validation("service data failed validation")
	default:
		return nil, apierr.Server(fmt.Sprintf("updating service: status %d", status))
	}
}

// DeleteService removes a service. Related bindings are cascaded server-side.
func (c *Client) DeleteService(ctx context.Context, id uuid.UUID) error {
	status, _, err := c.do(ctx, http.MethodDelete, "/services/"+id.String(), nil, nil)
	if err != nil {
		return err
	}
	switch status {
	case http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return apierr.NotFound("service not found")
	default:
		return apierr.Server(fmt.Sprintf("deleting service: status %d", status))
	}
}

// Dependency catalog

// ListDependencies fetches the full dependency catalog.
func (c *Client) ListDependencies(ctx context.Context) ([]models.Dependency, error) {
	status, data, err := c.do(ctx, http.MethodGet, "/dependencies", nil, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, apierr.InvalidResponse(fmt.Sprintf("listing dependencies: unexpected status %d", status))
	}
	return decode[[]models.Dependency](data, "dependency list")
}

// CreateDependency adds a catalog entry.
func (c *Client) CreateDependency(ctx context.Context, req models.CreateDependencyRequest) (*models.Dependency, error) {
	status, data, err := c.do(ctx, http.MethodPost, "/dependencies", nil, req)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusOK, http.StatusCreated:
		return decode[*models.Dependency](data, "dependency")
	case http.StatusConflict:
		return nil, apierr.AlreadyExists("dependency already exists")
	case http.StatusBadRequest:
		return nil, apierr.Validation("dependency data failed validation")
	default:
		return nil, apierr.Server(fmt.Sprintf("creating dependency: status %d", status))
	}
}

// UpdateDependency applies a partial patch to a catalog entry.
func (c *Client) UpdateDependency(ctx context.Context, id uuid.UUID, req models.UpdateDependencyRequest) (*models.Dependency, error) {
	status, data, err := c.do(ctx, http.MethodPatch, "/dependencies/"+id.String(), nil, req)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusOK:
		return decode[*models.Dependency](data, "dependency")
	case http.StatusNotFound:
		return nil, apierr.NotFound("dependency not found")
	case http.StatusConflict:
		return nil, apierr.AlreadyExists("dependency already exists")
	case http.StatusBadRequest:
		return nil, apierr.Validation("dependency data failed validation")
	default:
		return nil, apierr.Server(fmt.Sprintf("updating dependency: status %d", status))
	}
}

// DeleteDependency removes a catalog entry.
func (c *Client) DeleteDependency(ctx context.Context, id uuid.UUID) error {
	status, _, err := c.do(ctx, http.MethodDelete, "/dependencies/"+id.String(), nil, nil)
	if err != nil {
		return err
	}
	switch status {
	case http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return apierr.NotFound("dependency not found")
	default:
		return apierr.Server(fmt.Sprintf("deleting dependency: status %d", status))
	}
}

// Service-to-dependency bindings

// ListServiceDependencies fetches the dependency bindings of one service.
func (c *Client) ListServiceDependencies(ctx context.Context, serviceID uuid.UUID) ([]models.ServiceDependency, error) {
	status, data, err := c.do(ctx, http.MethodGet, "/services/"+serviceID.String()+"/dependencies", nil, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, apierr.InvalidResponse(fmt.Sprintf("listing service dependencies: unexpected status %d", status))
	}
	return decode[[]models.ServiceDependency](data, "service dependency list")
}

// CreateServiceDependency binds a catalog dependency to a service.
func (c *Client) CreateServiceDependency(ctx context.Context, serviceID uuid.UUID, req models.CreateServiceDependencyRequest) (*models.ServiceDependency, error) {
	status, data, err := c.do(ctx, http.MethodPost, "/services/"+serviceID.String()+"/dependencies", nil, req)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusOK, http.StatusCreated:
		return decode[*models.ServiceDependency](data, "service dependency")
	case http.StatusConflict:
		return nil, apierr.AlreadyExists("dependency already bound to this service")
	case http.StatusBadRequest:
		return nil, apierr.Validation("service dependency failed validation")
	default:
		return nil, apierr.Server(fmt.Sprintf("creating service dependency: status %d", status))
	}
}

// DeleteServiceDependency removes a binding, optionally scoped to one
// environment.
func (c *Client) DeleteServiceDependency(ctx context.Context, serviceID, dependencyID uuid.UUID, environmentCode *string) error {
	path := "/services/" + serviceID.String() + "/dependencies/" + dependencyID.String()
	status, _, err := c.do(ctx, http.MethodDelete, path, queryWithEnvironment(environmentCode), nil)
	if err != nil {
		return err
	}
	switch status {
	case http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return apierr.NotFound("service dependency not found")
	default:
		return apierr.Server(fmt.Sprintf("deleting service dependency: status %d", status))
	}
}

// Service-to-service edges

// ListServiceToServiceDependencies fetches the outgoing edges of one
// service, optionally filtered by environment.
func (c *Client) ListServiceToServiceDependencies(ctx context.Context, serviceID uuid.UUID, environmentCode *string) ([]models.ServiceToServiceDependency, error) {
	path := "/services/" + serviceID.String() + "/service-dependencies"
	status, data, err := c.do(ctx, http.MethodGet, path, queryWithEnvironment(environmentCode), nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, apierr.InvalidResponse(fmt.Sprintf("listing service-to-service dependencies: unexpected status %d", status))
	}
	return decode[[]models.ServiceToServiceDependency](data, "service-to-service dependency list")
}

// CreateServiceToServiceDependency creates an edge from the consumer to the
// provider named in the request.
func (c *Client) CreateServiceToServiceDependency(ctx context.Context, consumerServiceID uuid.UUID, req models.CreateServiceToServiceDependencyRequest) (*models.ServiceToServiceDependency, error) {
	path := "/services/" + consumerServiceID.String() + "/service-dependencies"
	status, data, err := c.do(ctx, http.MethodPost, path, nil, req)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusOK, http.StatusCreated:
		return decode[*models.ServiceToServiceDependency](data, "service-to-service dependency")
	case http.StatusConflict:
		return nil, apierr.AlreadyExists("service-to-service dependency already exists")
	case http.StatusBadRequest:
		return nil, apierr.Validation("service-to-service dependency failed validation")
	default:
		return nil, apierr.Server(fmt.Sprintf("creating service-to-service dependency: status %d", status))
	}
}

// UpdateServiceToServiceDependency applies a partial patch to an edge.
func (c *Client) UpdateServiceToServiceDependency(ctx context.Context, serviceID, dependencyID uuid.UUID, req models.UpdateServiceToServiceDependencyRequest) (*models.ServiceToServiceDependency, error) {
	path := "/services/" + serviceID.String() + "/service-dependencies/" + dependencyID.String()
	status, data, err := c.do(ctx, http.MethodPatch, path, nil, req)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusOK:
		return decode[*models.ServiceToServiceDependency](data, "service-to-service dependency")
	case http.StatusNotFound:
		return nil, apierr.NotFound("service-to-service dependency not found")
	case http.StatusConflict:
		return nil, apierr.AlreadyExists("service-to-service dependency already exists")
	case http.StatusBadRequest:
		return nil, apierr.Validation("service-to-service dependency failed validation")
	default:
		return nil, apierr.Server(fmt.Sprintf("updating service-to-service dependency: status %d", status))
	}
}

// DeleteServiceToServiceDependency removes an edge.
func (c *Client) DeleteServiceToServiceDependency(ctx context.Context, serviceID, dependencyID uuid.UUID) error {
	path := "/services/" + serviceID.String() + "/service-dependencies/" + dependencyID.String()
	status, _, err := c.do(ctx, http.MethodDelete, path, nil, nil)
	if err != nil {
		return err
	}
	switch status {
	case http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return apierr.NotFound("service-to-service dependency not found")
	default:
		return apierr.Server(fmt.Sprintf("deleting service-to-service dependency: status %d", status))
	}
}

// Dependency graphs

// FetchServicesDependencyGraph fetches the service-scoped projection of the
// global graph.
func (c *Client) FetchServicesDependencyGraph(ctx context.Context) (*models.DependencyGraph, error) {
	return c.fetchGraph(ctx, "/dependency-graph/services", nil)
}

// FetchGlobalDependencyGraph fetches the full graph, optionally filtered by
// environment.
func (c *Client) FetchGlobalDependencyGraph(ctx context.Context, environmentCode *string) (*models.DependencyGraph, error) {
	return c.fetchGraph(ctx, "/dependency-graph", queryWithEnvironment(environmentCode))
}

// FetchServiceDependencyGraph fetches the subgraph around one service.
func (c *Client) FetchServiceDependencyGraph(ctx context.Context, serviceID uuid.UUID, environmentCode *string) (*models.DependencyGraph, error) {
	path := "/services/" + serviceID.String() + "/dependency-graph"
	return c.fetchGraph(ctx, path, queryWithEnvironment(environmentCode))
}

func (c *Client) fetchGraph(ctx context.Context, path string, query url.Values) (*models.DependencyGraph, error) {
	status, data, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, apierr.InvalidResponse(fmt.Sprintf("fetching dependency graph: unexpected status %d", status))
	}
	return decode[*models.DependencyGraph](data, "dependency graph")
}

// Endpoints

// ListEndpoints fetches the endpoint catalog of one service.
func (c *Client) ListEndpoints(ctx context.Context, serviceID uuid.UUID) ([]models.Endpoint, error) {
	status, data, err := c.do(ctx, http.MethodGet, "/services/"+serviceID.String()+"/endpoints", nil, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, apierr.InvalidResponse(fmt.Sprintf("listing endpoints: unexpected status %d", status))
	}
	return decode[[]models.Endpoint](data, "endpoint list")
}

// GetEndpoint fetches one endpoint by id.
func (c *Client) GetEndpoint(ctx context.Context, serviceID, endpointID uuid.UUID) (*models.Endpoint, error) {
	path := "/services/" + serviceID.String() + "/endpoints/" + endpointID.String()
	status, data, err := c.do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, apierr.NotFound("endpoint not found")
	}
	return decode[*models.Endpoint](data, "endpoint")
}

// Dashboard

// FetchDashboardStats derives the dashboard aggregate from the service
// list; it is not a distinct network call and propagates ListServices
// failures unchanged.
func (c *Client) FetchDashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	services, err := c.ListServices(ctx)
	if err != nil {
		return nil, err
	}
	stats := models.ComputeDashboardStats(services)
	return &stats, nil
}

var _ Registry = (*Client)(nil)
