package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/rental-relay/internal/api/dto"
	"github.com/spec-kit/rental-relay/internal/auth"
	"github.com/spec-kit/rental-relay/internal/domain"
	"github.com/spec-kit/rental-relay/internal/service"
	apperrors "github.com/spec-kit/rental-relay/pkg/util"
)

// ReservationsHandler manages guest-facing reservation endpoints.
type ReservationsHandler struct {
	service *service.ReservationService
}

// NewReservationsHandler constructs handler.
func NewReservationsHandler(reservationService *service.ReservationService) *ReservationsHandler {
	return &ReservationsHandler{service: reservationService}
}

// CreateReservation POST /reservations.
func (h *ReservationsHandler) CreateReservation(c *fiber.Ctx) error {
	guest, ok := auth.CurrentUser(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateReservationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.PropertyID == "" {
		return apperrors.NewValidationError("property_id required", nil)
	}

	reservation, err := h.service.RequestReservation(c.Context(), guest.ID, req.PropertyID, req.Message)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": reservationSummary(reservation)})
}

// ListReservations GET /reservations.
func (h *ReservationsHandler) ListReservations(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}

	asGuest, asHost, err := h.service.ListForUser(c.Context(), user.ID)
	if err != nil {
		return err
	}

	response := dto.ReservationListResponse{
		AsGuest: make([]dto.ReservationSummary, 0, len(asGuest)),
		AsHost:  make([]dto.ReservationSummary, 0, len(asHost)),
	}
	for i := range asGuest {
		response.AsGuest = append(response.AsGuest, reservationSummary(&asGuest[i]))
	}
	for i := range asHost {
		response.AsHost = append(response.AsHost, reservationSummary(&asHost[i]))
	}
	return c.JSON(fiber.Map{"data": response})
}

func reservationSummary(reservation *domain.Reservation) dto.ReservationSummary {
	return dto.ReservationSummary{
		ID:                   reservation.ID,
		PropertyID:           reservation.PropertyID,
		Message:              reservation.Message,
		Status:               string(reservation.Status),
		AnonymousPhoneNumber: reservation.AnonymousPhoneNumber,
		RelayUnavailable:     reservation.RelayUnavailable,
		CreatedAt:            reservation.CreatedAt,
	}
}
