package dto

import "time"

// CreateReservationRequest payload for requesting a stay.
type CreateReservationRequest struct {
	PropertyID string `json:"property_id"`
	Message    string `json:"message"`
}

// ReservationSummary is the reservation shape returned to clients.
// The anonymous number is the only phone number ever exposed.
type ReservationSummary struct {
	ID                   string    `json:"id"`
	PropertyID           string    `json:"property_id"`
	Message              string    `json:"message"`
	Status               string    `json:"status"`
	AnonymousPhoneNumber *string   `json:"anonymous_phone_number,omitempty"`
	RelayUnavailable     bool      `json:"relay_unavailable,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
}

// ReservationListResponse splits a user's reservations by role.
type ReservationListResponse struct {
	AsGuest []ReservationSummary `json:"as_guest"`
	AsHost  []ReservationSummary `json:"as_host"`
}
