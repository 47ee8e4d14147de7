package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/arqut/arqut-registry/internal/pkg/models"
)

// Dependency catalog

func (s *Server) handleListDependencies(c *fiber.Ctx) error {
	deps, err := s.storage.ListDependencies()
	if err != nil {
		return ErrorInternalServerErrorResp(c, "Failed to list dependencies")
	}
	return c.JSON(deps)
}

func (s *Server) handleCreateDependency(c *fiber.Ctx) error {
	var req models.CreateDependencyRequest
	if err := c.BodyParser(&req); err != nil {
		return ErrorBadRequestResp(c, "Invalid request body")
	}
	if strings.TrimSpace(req.Name) == "" {
		return ErrorBadRequestResp(c, "name must not be blank")
	}
	if !req.DependencyType.Valid() {
		return ErrorBadRequestResp(c, "unknown dependency type")
	}

	dep := &models.Dependency{
		DependencyID:   uuid.New(),
		Name:           req.Name,
		Description:    req.Description,
		Version:        req.Version,
		DependencyType: req.DependencyType,
		Config:         req.Config,
		CreatedAt:      timeNowPtr(),
		UpdatedAt:      timeNowPtr(),
	}
	if err := s.storage.CreateDependency(dep); err != nil {
		return storageErrorResp(c, err, "dependency")
	}

	s.logger.Info("Dependency created", "name", dep.Name, "version", dep.Version)
	return c.Status(fiber.StatusCreated).JSON(dep)
}

func (s *Server) handleUpdateDependency(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return ErrorNotFoundResp(c, "dependency not found")
	}

	var req models.UpdateDependencyRequest
	if err := c.BodyParser(&req); err != nil {
		return ErrorBadRequestResp(c, "Invalid request body")
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return ErrorBadRequestResp(c, "name must not be blank")
	}
	if req.DependencyType != nil && !req.DependencyType.Valid() {
		return ErrorBadRequestResp(c, "unknown dependency type")
	}

	dep, err := s.storage.GetDependency(id)
	if err != nil {
		return storageErrorResp(c, err, "dependency")
	}

	if req.Name != nil {
		dep.Name = *req.Name
	}
	if req.Description != nil {
		dep.Description = req.Description
	}
	if req.Version != nil {
		dep.Version = *req.Version
	}
	if req.DependencyType != nil {
		dep.DependencyType = *req.DependencyType
	}
	if req.Config != nil {
		dep.Config = req.Config
	}
	dep.UpdatedAt = timeNowPtr()

	if err := s.storage.UpdateDependency(dep); err != nil {
		return storageErrorResp(c, err, "dependency")
	}
	return c.JSON(dep)
}

func (s *Server) handleDeleteDependency(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return ErrorNotFoundResp(c, "dependency not found")
	}
	if err := s.storage.DeleteDependency(id); err != nil {
		return storageErrorResp(c, err, "dependency")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Service-to-dependency bindings

func (s *Server) handleListServiceDependencies(c *fiber.Ctx) error {
	serviceID, ok := parseID(c, "id")
	if !ok {
		return ErrorNotFoundResp(c, "service not found")
	}
	bindings, err := s.storage.ListServiceDependencies(serviceID)
	if err != nil {
		return ErrorInternalServerErrorResp(c, "Failed to list service dependencies")
	}
	return c.JSON(bindings)
}

func (s *Server) handleCreateServiceDependency(c *fiber.Ctx) error {
	serviceID, ok := parseID(c, "id")
	if !ok {
		return ErrorNotFoundResp(c, "service not found")
	}

	var req models.CreateServiceDependencyRequest
	if err := c.BodyParser(&req); err != nil {
		return ErrorBadRequestResp(c, "Invalid request body")
	}

	if _, err := s.storage.GetService(serviceID); err != nil {
		return ErrorBadRequestResp(c, "service does not exist")
	}
	dep, err := s.storage.GetDependency(req.DependencyID)
	if err != nil {
		return ErrorBadRequestResp(c, "dependency does not exist")
	}

	binding := &models.ServiceDependency{
		ServiceDependencyID: uuid.New(),
		ServiceID:           serviceID,
		DependencyID:        dep.DependencyID,
		Dependency:          *dep,
		EnvironmentCode:     req.EnvironmentCode,
		ConfigOverride:      req.ConfigOverride,
		CreatedAt:           timeNowPtr(),
		UpdatedAt:           timeNowPtr(),
	}
	if err := s.storage.CreateServiceDependency(binding); err != nil {
		return storageErrorResp(c, err, "service dependency")
	}
	return c.Status(fiber.StatusCreated).JSON(binding)
}

func (s *Server) handleDeleteServiceDependency(c *fiber.Ctx) error {
	serviceID, ok := parseID(c, "id")
	if !ok {
		return ErrorNotFoundResp(c, "service not found")
	}
	dependencyID, ok := parseID(c, "depId")
	if !ok {
		return ErrorNotFoundResp(c, "service dependency not found")
	}
	if err := s.storage.DeleteServiceDependency(serviceID, dependencyID, environmentQuery(c)); err != nil {
		return storageErrorResp(c, err, "service dependency")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Service-to-service edges

func (s *Server) handleListServiceRelations(c *fiber.Ctx) error {
	serviceID, ok := parseID(c, "id")
	if !ok {
		return ErrorNotFoundResp(c, "service not found")
	}
	rels, err := s.storage.ListServiceRelations(serviceID, environmentQuery(c))
	if err != nil {
		return ErrorInternalServerErrorResp(c, "Failed to list service relations")
	}
	return c.JSON(rels)
}

func (s *Server) handleCreateServiceRelation(c *fiber.Ctx) error {
	consumerID, ok := parseID(c, "id")
	if !ok {
		return ErrorNotFoundResp(c, "service not found")
	}

	var req models.CreateServiceToServiceDependencyRequest
	if err := c.BodyParser(&req); err != nil {
		return ErrorBadRequestResp(c, "Invalid request body")
	}
	if consumerID == req.ProviderServiceID {
		return ErrorBadRequestResp(c, "a service cannot depend on itself")
	}
	if !req.DependencyType.Valid() {
		return ErrorBadRequestResp(c, "unknown dependency type")
	}

	consumer, err := s.storage.GetService(consumerID)
	if err != nil {
		return ErrorBadRequestResp(c, "consumer service does not exist")
	}
	provider, err := s.storage.GetService(req.ProviderServiceID)
	if err != nil {
		return ErrorBadRequestResp(c, "provider service does not exist")
	}

	rel := &models.ServiceToServiceDependency{
		ID:                uuid.New(),
		ConsumerServiceID: consumer.ServiceID,
		ProviderServiceID: provider.ServiceID,
		ConsumerService:   consumer.Summary(),
		ProviderService:   provider.Summary(),
		EnvironmentCode:   req.EnvironmentCode,
		Description:       req.Description,
		DependencyType:    req.DependencyType,
		Config:            req.Config,
		CreatedAt:         timeNowPtr(),
		UpdatedAt:         timeNowPtr(),
	}
	if err := s.storage.CreateServiceRelation(rel); err != nil {
		return storageErrorResp(c, err, "service relation")
	}
	return c.Status(fiber.StatusCreated).JSON(rel)
}

func (s *Server) handleUpdateServiceRelation(c *fiber.Ctx) error {
	consumerID, ok := parseID(c, "id")
	if !ok {
		return ErrorNotFoundResp(c, "service not found")
	}
	relationID, ok := parseID(c, "depId")
	if !ok {
		return ErrorNotFoundResp(c, "service relation not found")
	}

	var req models.UpdateServiceToServiceDependencyRequest
	if err := c.BodyParser(&req); err != nil {
		return ErrorBadRequestResp(c, "Invalid request body")
	}
	if req.DependencyType != nil && !req.DependencyType.Valid() {
		return ErrorBadRequestResp(c, "unknown dependency type")
	}

	rel, err := s.storage.GetServiceRelation(consumerID, relationID)
	if err != nil {
		return storageErrorResp(c, err, "service relation")
	}

	if req.EnvironmentCode != nil {
		rel.EnvironmentCode = req.EnvironmentCode
	}
	if req.Description != nil {
		rel.Description = req.Description
	}
	if req.DependencyType != nil {
		rel.DependencyType = *req.DependencyType
	}
	if req.Config != nil {
		rel.Config = req.Config
	}
	rel.UpdatedAt = timeNowPtr()

	if err := s.storage.UpdateServiceRelation(rel); err != nil {
		return storageErrorResp(c, err, "service relation")
	}
	return c.JSON(rel)
}

func (s *Server) handleDeleteServiceRelation(c *fiber.Ctx) error {
	consumerID, ok := parseID(c, "id")
	if !ok {
		return ErrorNotFoundResp(c, "service not found")
	}
	relationID, ok := parseID(c, "depId")
	if !ok {
		return ErrorNotFoundResp(c, "service relation not found")
	}
	if err := s.storage.DeleteServiceRelation(consumerID, relationID); err != nil {
		return storageErrorResp(c, err, "service relation")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
