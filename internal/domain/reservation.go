package domain

import "time"

// ReservationStatus enumerates lifecycle states for reservations.
type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "pending"
	ReservationStatusConfirmed ReservationStatus = "confirmed"
	ReservationStatusRejected  ReservationStatus = "rejected"
)

// Reservation is the aggregate for booking requests. Status starts at
// pending and settles exactly once into confirmed or rejected.
// AnonymousPhoneNumber is set only after a successful confirmation and
// number provisioning; RelayUnavailable marks a confirmed reservation
// whose relay number could not be acquired.
type Reservation struct {
	ID                   string
	Message              string
	PropertyID           string
	GuestID              string
	Status               ReservationStatus
	AnonymousPhoneNumber *string
	RelayUnavailable     bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

var allowedTransitions = map[ReservationStatus][]ReservationStatus{
	ReservationStatusPending:   {ReservationStatusConfirmed, ReservationStatusRejected},
	ReservationStatusConfirmed: {},
	ReservationStatusRejected:  {},
}

// IsValidTransition reports whether current may move to next.
func IsValidTransition(current, next ReservationStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}
