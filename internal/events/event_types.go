package events

import (
	"time"

	"github.com/spec-kit/rental-relay/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventReservationRequested EventType = "reservation_requested"
	EventReservationConfirmed EventType = "reservation_confirmed"
	EventReservationRejected  EventType = "reservation_rejected"
	EventRelayNumberAssigned  EventType = "relay_number_assigned"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID            string      `json:"id"`
	Type          EventType   `json:"type"`
	ReservationID string      `json:"reservation_id"`
	Timestamp     time.Time   `json:"timestamp"`
	Payload       interface{} `json:"payload"`
}

// ReservationRequestedPayload carries what the host notification needs.
type ReservationRequestedPayload struct {
	HostPhoneNumber     string `json:"host_phone_number"`
	GuestName           string `json:"guest_name"`
	GuestMessage        string `json:"guest_message"`
	PropertyDescription string `json:"property_description"`
}

// ReservationSettledPayload carries what the guest notification needs
// after a confirm or reject.
type ReservationSettledPayload struct {
	GuestPhoneNumber string                   `json:"guest_phone_number"`
	Status           domain.ReservationStatus `json:"status"`
}

// RelayNumberAssignedPayload records a successful provisioning.
type RelayNumberAssignedPayload struct {
	AnonymousPhoneNumber string `json:"anonymous_phone_number"`
	AreaCode             string `json:"area_code"`
}
