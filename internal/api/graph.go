package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/arqut/arqut-registry/internal/pkg/models"
)

// Graphs are derived projections, regenerated on every fetch.

func (s *Server) handleGlobalDependencyGraph(c *fiber.Ctx) error {
	services, err := s.storage.ListServices()
	if err != nil {
		return ErrorInternalServerErrorResp(c, "Failed to build dependency graph")
	}
	bindings, err := s.storage.ListAllServiceDependencies(environmentQuery(c))
	if err != nil {
		return ErrorInternalServerErrorResp(c, "Failed to build dependency graph")
	}
	graph := models.BuildDependencyGraph(services, bindings)
	return c.JSON(graph)
}

func (s *Server) handleServicesDependencyGraph(c *fiber.Ctx) error {
	services, err := s.storage.ListServices()
	if err != nil {
		return ErrorInternalServerErrorResp(c, "Failed to build dependency graph")
	}
	bindings, err := s.storage.ListAllServiceDependencies(nil)
	if err != nil {
		return ErrorInternalServerErrorResp(c, "Failed to build dependency graph")
	}
	graph := models.BuildDependencyGraph(services, bindings)
	return c.JSON(graph)
}

func (s *Server) handleServiceDependencyGraph(c *fiber.Ctx) error {
	serviceID, ok := parseID(c, "id")
	if !ok {
		return ErrorNotFoundResp(c, "service not found")
	}

	service, err := s.storage.GetService(serviceID)
	if err != nil {
		return storageErrorResp(c, err, "service")
	}
	bindings, err := s.storage.ListServiceDependencies(serviceID)
	if err != nil {
		return ErrorInternalServerErrorResp(c, "Failed to build dependency graph")
	}

	if code := environmentQuery(c); code != nil {
		scoped := bindings[:0]
		for _, sd := range bindings {
			if sd.EnvironmentCode == nil || *sd.EnvironmentCode == *code {
				scoped = append(scoped, sd)
			}
		}
		bindings = scoped
	}

	graph := models.BuildDependencyGraph([]models.Service{*service}, bindings)
	return c.JSON(graph)
}
