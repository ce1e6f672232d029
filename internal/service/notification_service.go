package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/rental-relay/internal/events"
	"github.com/spec-kit/rental-relay/internal/telephony"
)

// NotificationService sends lifecycle SMS notifications to hosts and
// guests. It is fire-and-forget for the caller: dispatch failures are
// logged and never roll back the transition that produced the event.
type NotificationService struct {
	dispatcher events.Dispatcher
	provider   telephony.Provider
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, provider telephony.Provider, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		provider:   provider,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventReservationRequested, n.handleReservationRequested)
	n.dispatcher.Subscribe(events.EventReservationConfirmed, n.handleReservationSettled)
	n.dispatcher.Subscribe(events.EventReservationRejected, n.handleReservationSettled)
}

func (n *NotificationService) handleReservationRequested(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ReservationRequestedPayload)
	if !ok {
		n.logger.Warn("unexpected payload for reservation_requested", zap.String("reservation_id", event.ReservationID))
		return nil
	}

	body := fmt.Sprintf(
		"You have a new reservation request from %s for %s: %q. Reply [accept] or [yes] to confirm, anything else to reject.",
		payload.GuestName, payload.PropertyDescription, payload.GuestMessage,
	)
	return n.send(ctx, event, payload.HostPhoneNumber, body)
}

func (n *NotificationService) handleReservationSettled(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ReservationSettledPayload)
	if !ok {
		n.logger.Warn("unexpected payload for settled reservation", zap.String("reservation_id", event.ReservationID))
		return nil
	}

	body := fmt.Sprintf("You have successfully %s the reservation", payload.Status)
	return n.send(ctx, event, payload.GuestPhoneNumber, body)
}

func (n *NotificationService) send(ctx context.Context, event events.Event, to, body string) error {
	if err := n.provider.SendMessage(ctx, to, body); err != nil {
		n.logger.Error("notification dispatch failed",
			zap.String("reservation_id", event.ReservationID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
		return err
	}
	n.logger.Info("notification sent",
		zap.String("reservation_id", event.ReservationID),
		zap.String("event_type", string(event.Type)))
	return nil
}
