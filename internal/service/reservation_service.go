package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/rental-relay/internal/domain"
	"github.com/spec-kit/rental-relay/internal/events"
	"github.com/spec-kit/rental-relay/internal/repository"
	"github.com/spec-kit/rental-relay/internal/telephony"
	apperrors "github.com/spec-kit/rental-relay/pkg/util"
)

// FallbackReply is sent when an inbound confirmation cannot be matched
// to a pending reservation.
const FallbackReply = "Sorry, it looks like you don't have any reservations to respond to."

// ReservationService coordinates the reservation lifecycle: creation,
// host confirmation via SMS reply, and relay number provisioning.
type ReservationService struct {
	reservations     repository.ReservationRepository
	properties       repository.PropertyRepository
	users            repository.UserRepository
	provider         telephony.Provider
	dispatcher       events.Dispatcher
	logger           *zap.Logger
	provisionTimeout time.Duration
}

// ReservationDependencies bundles collaborators for the service.
type ReservationDependencies struct {
	ReservationRepo  repository.ReservationRepository
	PropertyRepo     repository.PropertyRepository
	UserRepo         repository.UserRepository
	Provider         telephony.Provider
	Dispatcher       events.Dispatcher
	Logger           *zap.Logger
	ProvisionTimeout time.Duration
}

// NewReservationService constructs the service.
func NewReservationService(deps ReservationDependencies) *ReservationService {
	timeout := deps.ProvisionTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ReservationService{
		reservations:     deps.ReservationRepo,
		properties:       deps.PropertyRepo,
		users:            deps.UserRepo,
		provider:         deps.Provider,
		dispatcher:       deps.Dispatcher,
		logger:           deps.Logger,
		provisionTimeout: timeout,
	}
}

// RequestReservation creates a pending reservation for a guest and
// notifies the property's host.
func (s *ReservationService) RequestReservation(ctx context.Context, guestID, propertyID, message string) (*domain.Reservation, error) {
	if strings.TrimSpace(message) == "" {
		return nil, apperrors.NewValidationError("message required", nil)
	}

	property, err := s.properties.GetByID(ctx, propertyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("property", map[string]any{"property_id": propertyID})
		}
		return nil, err
	}
	guest, err := s.users.GetByID(ctx, guestID)
	if err != nil {
		return nil, err
	}
	host, err := s.users.GetByID(ctx, property.HostID)
	if err != nil {
		return nil, err
	}

	reservation := &domain.Reservation{
		Message:    strings.TrimSpace(message),
		PropertyID: property.ID,
		GuestID:    guest.ID,
		Status:     domain.ReservationStatusPending,
	}
	if err := s.reservations.Create(ctx, reservation); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:          events.EventReservationRequested,
		ReservationID: reservation.ID,
		Payload: events.ReservationRequestedPayload{
			HostPhoneNumber:     host.PhoneNumber,
			GuestName:           guest.Name,
			GuestMessage:        reservation.Message,
			PropertyDescription: property.Description,
		},
	})
	return reservation, nil
}

// Confirm transitions a pending reservation to confirmed.
func (s *ReservationService) Confirm(ctx context.Context, reservationID string) error {
	return s.transition(ctx, reservationID, domain.ReservationStatusConfirmed)
}

// Reject transitions a pending reservation to rejected.
func (s *ReservationService) Reject(ctx context.Context, reservationID string) error {
	return s.transition(ctx, reservationID, domain.ReservationStatusRejected)
}

// transition consults the status table for a precise error, then
// applies the change with a single conditional statement against the
// store, so of two racing transitions exactly one commits.
func (s *ReservationService) transition(ctx context.Context, reservationID string, to domain.ReservationStatus) error {
	reservation, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewReservationNotFound(map[string]any{"reservation_id": reservationID})
		}
		return err
	}
	if !domain.IsValidTransition(reservation.Status, to) {
		return apperrors.NewInvalidTransition(reservationID, string(reservation.Status))
	}

	err = s.reservations.UpdateStatus(ctx, reservationID, domain.ReservationStatusPending, to)
	if errors.Is(err, pgx.ErrNoRows) {
		// Settled between the read and the update; the other
		// transition won.
		status := reservation.Status
		if current, lookupErr := s.reservations.GetByID(ctx, reservationID); lookupErr == nil {
			status = current.Status
		}
		return apperrors.NewInvalidTransition(reservationID, string(status))
	}
	return err
}

// HandleConfirmationReply resolves an inbound SMS from a host into a
// confirm or reject of their oldest pending reservation and returns
// the reply text for the sender. A body containing "yes" or "accept"
// confirms; anything else rejects. Unmatchable senders and transition
// races both get the fallback reply with no state change.
func (s *ReservationService) HandleConfirmationReply(ctx context.Context, fromNumber, body string) (string, error) {
	host, err := s.users.GetByPhoneNumber(ctx, fromNumber)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return FallbackReply, nil
		}
		return FallbackReply, err
	}

	reservation, err := s.reservations.FirstPendingForHost(ctx, host.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return FallbackReply, nil
		}
		return FallbackReply, err
	}

	accepted := strings.Contains(body, "yes") || strings.Contains(body, "accept")
	if accepted {
		err = s.Confirm(ctx, reservation.ID)
	} else {
		err = s.Reject(ctx, reservation.ID)
	}
	if err != nil {
		if apperrors.IsCode(err, "INVALID_TRANSITION") {
			// Lost the race to a concurrent reply; nothing left to answer.
			return FallbackReply, nil
		}
		return FallbackReply, err
	}

	if accepted {
		reservation.Status = domain.ReservationStatusConfirmed
		s.provisionRelayNumber(ctx, reservation, host.AreaCode)
	} else {
		reservation.Status = domain.ReservationStatusRejected
	}

	s.notifyGuestOfOutcome(ctx, reservation)

	return fmt.Sprintf("You have successfully %s the reservation", reservation.Status), nil
}

// ListForUser returns a user's reservations as guest and as host.
func (s *ReservationService) ListForUser(ctx context.Context, userID string) (asGuest, asHost []domain.Reservation, err error) {
	asGuest, err = s.reservations.ListByGuest(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	asHost, err = s.reservations.ListByHost(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return asGuest, asHost, nil
}

// provisionRelayNumber acquires an anonymous number after a confirm
// has committed. Failure never rolls the confirmation back: the
// reservation is marked relay-unavailable and stays confirmed.
func (s *ReservationService) provisionRelayNumber(ctx context.Context, reservation *domain.Reservation, areaCode string) {
	provisionCtx, cancel := context.WithTimeout(ctx, s.provisionTimeout)
	defer cancel()

	number, err := s.provider.ProvisionNumber(provisionCtx, areaCode)
	if err != nil {
		s.logger.Error("relay number provisioning failed",
			zap.String("reservation_id", reservation.ID),
			zap.String("area_code", areaCode),
			zap.Error(err))
		if markErr := s.reservations.MarkRelayUnavailable(ctx, reservation.ID); markErr != nil {
			s.logger.Error("failed to mark relay unavailable",
				zap.String("reservation_id", reservation.ID),
				zap.Error(markErr))
		}
		reservation.RelayUnavailable = true
		return
	}

	if err := s.reservations.SetAnonymousNumber(ctx, reservation.ID, number); err != nil {
		s.logger.Error("failed to record anonymous number",
			zap.String("reservation_id", reservation.ID),
			zap.Error(err))
		return
	}
	reservation.AnonymousPhoneNumber = &number

	s.publishEvent(ctx, events.Event{
		Type:          events.EventRelayNumberAssigned,
		ReservationID: reservation.ID,
		Payload: events.RelayNumberAssignedPayload{
			AnonymousPhoneNumber: number,
			AreaCode:             areaCode,
		},
	})
}

func (s *ReservationService) notifyGuestOfOutcome(ctx context.Context, reservation *domain.Reservation) {
	guest, err := s.users.GetByID(ctx, reservation.GuestID)
	if err != nil {
		s.logger.Error("failed to load guest for outcome notification",
			zap.String("reservation_id", reservation.ID),
			zap.Error(err))
		return
	}

	eventType := events.EventReservationRejected
	if reservation.Status == domain.ReservationStatusConfirmed {
		eventType = events.EventReservationConfirmed
	}
	s.publishEvent(ctx, events.Event{
		Type:          eventType,
		ReservationID: reservation.ID,
		Payload: events.ReservationSettledPayload{
			GuestPhoneNumber: guest.PhoneNumber,
			Status:           reservation.Status,
		},
	})
}

func (s *ReservationService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
