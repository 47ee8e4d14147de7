package api

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/arqut/arqut-registry/internal/pkg/models"
)

// parseID reads a UUID path parameter.
func parseID(c *fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	return id, err == nil
}

// environmentQuery reads the optional environmentCode query parameter.
func environmentQuery(c *fiber.Ctx) *string {
	if code := c.Query("environmentCode"); code != "" {
		return &code
	}
	return nil
}

func timeNowPtr() *time.Time {
	now := time.Now()
	return &now
}

func (s *Server) handleListServices(c *fiber.Ctx) error {
	services, err := s.storage.ListServices()
	if err != nil {
		return ErrorInternalServerErrorResp(c, "Failed to list services")
	}
	return c.JSON(services)
}

func (s *Server) handleGetService(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return ErrorNotFoundResp(c, "service not found")
	}
	service, err := s.storage.GetService(id)
	if err != nil {
		return storageErrorResp(c, err, "service")
	}
	return c.JSON(service)
}

func (s *Server) handleCreateService(c *fiber.Ctx) error {
	var req models.CreateServiceRequest
	if err := c.BodyParser(&req); err != nil {
		return ErrorBadRequestResp(c, "Invalid request body")
	}
	if strings.TrimSpace(req.Name) == "" {
		return ErrorBadRequestResp(c, "name must not be blank")
	}
	if !req.ServiceType.Valid() {
		return ErrorBadRequestResp(c, "unknown service type")
	}

	service := &models.Service{
		ServiceID:        uuid.New(),
		Name:             req.Name,
		Description:      req.Description,
		Owner:            req.Owner,
		Tags:             req.Tags,
		ServiceType:      req.ServiceType,
		SupportsDatabase: req.SupportsDatabase,
		Proxy:            req.Proxy,
		CreatedAt:        timeNowPtr(),
		UpdatedAt:        timeNowPtr(),
		Environments:     []models.Environment{},
	}
	if err := s.storage.CreateService(service); err != nil {
		return storageErrorResp(c, err, "service")
	}

	s.logger.Info("Service created", "name", service.Name, "id", service.ServiceID)
	return c.Status(fiber.StatusCreated).JSON(service)
}

func (s *Server) handleUpdateService(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return ErrorNotFoundResp(c, "service not found")
	}

	var req models.UpdateServiceRequest
	if err := c.BodyParser(&req); err != nil {
		return ErrorBadRequestResp(c, "Invalid request body")
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return ErrorBadRequestResp(c, "name must not be blank")
	}
	if req.ServiceType != nil && !req.ServiceType.Valid() {
		return ErrorBadRequestResp(c, "unknown service type")
	}

	service, err := s.storage.GetService(id)
	if err != nil {
		return storageErrorResp(c, err, "service")
	}

	if req.Name != nil {
		service.Name = *req.Name
	}
	if req.Description != nil {
		service.Description = req.Description
	}
	if req.Owner != nil {
		service.Owner = *req.Owner
	}
	if req.Tags != nil {
		service.Tags = req.Tags
	}
	if req.ServiceType != nil {
		service.ServiceType = *req.ServiceType
	}
	if req.SupportsDatabase != nil {
		service.SupportsDatabase = *req.SupportsDatabase
	}
	if req.Proxy != nil {
		service.Proxy = *req.Proxy
	}
	service.UpdatedAt = timeNowPtr()

	if err := s.storage.UpdateService(service); err != nil {
		return storageErrorResp(c, err, "service")
	}
	return c.JSON(service)
}

func (s *Server) handleDeleteService(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return ErrorNotFoundResp(c, "service not found")
	}
	if err := s.storage.DeleteService(id); err != nil {
		return storageErrorResp(c, err, "service")
	}

	s.logger.Info("Service deleted", "id", id)
	return c.SendStatus(fiber.StatusNoContent)
}
