package api

import (
	"github.com/gofiber/fiber/v2"
)

// The endpoint catalog is populated out of band and served read-only.

func (s *Server) handleListEndpoints(c *fiber.Ctx) error {
	serviceID, ok := parseID(c, "id")
	if !ok {
		return ErrorNotFoundResp(c, "service not found")
	}
	endpoints, err := s.storage.ListEndpoints(serviceID)
	if err != nil {
		return ErrorInternalServerErrorResp(c, "Failed to list endpoints")
	}
	return c.JSON(endpoints)
}

func (s *Server) handleGetEndpoint(c *fiber.Ctx) error {
	serviceID, ok := parseID(c, "id")
	if !ok {
		return ErrorNotFoundResp(c, "service not found")
	}
	endpointID, ok := parseID(c, "endpointId")
	if !ok {
		return ErrorNotFoundResp(c, "endpoint not found")
	}
	endpoint, err := s.storage.GetEndpoint(serviceID, endpointID)
	if err != nil {
		return storageErrorResp(c, err, "endpoint")
	}
	return c.JSON(endpoint)
}
