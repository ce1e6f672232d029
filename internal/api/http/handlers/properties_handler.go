package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/rental-relay/internal/api/dto"
	"github.com/spec-kit/rental-relay/internal/auth"
	"github.com/spec-kit/rental-relay/internal/domain"
	"github.com/spec-kit/rental-relay/internal/service"
	apperrors "github.com/spec-kit/rental-relay/pkg/util"
)

// PropertiesHandler manages vacation property endpoints.
type PropertiesHandler struct {
	service *service.PropertyService
}

// NewPropertiesHandler constructs handler.
func NewPropertiesHandler(propertyService *service.PropertyService) *PropertiesHandler {
	return &PropertiesHandler{service: propertyService}
}

// CreateProperty POST /properties.
func (h *PropertiesHandler) CreateProperty(c *fiber.Ctx) error {
	host, ok := auth.CurrentUser(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreatePropertyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	property, err := h.service.CreateProperty(c.Context(), host.ID, req.Description, req.ImageURL)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": propertySummary(property)})
}

// ListProperties GET /properties.
func (h *PropertiesHandler) ListProperties(c *fiber.Ctx) error {
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)

	properties, err := h.service.ListProperties(c.Context(), pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	items := make([]dto.PropertySummary, 0, len(properties))
	for i := range properties {
		items = append(items, propertySummary(&properties[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func propertySummary(property *domain.VacationProperty) dto.PropertySummary {
	return dto.PropertySummary{
		ID:          property.ID,
		HostID:      property.HostID,
		Description: property.Description,
		ImageURL:    property.ImageURL,
		CreatedAt:   property.CreatedAt,
	}
}

func parseInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
