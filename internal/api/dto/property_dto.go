package dto

import "time"

// CreatePropertyRequest payload for publishing a listing.
type CreatePropertyRequest struct {
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
}

// PropertySummary is the listing shape returned to clients.
type PropertySummary struct {
	ID          string    `json:"id"`
	HostID      string    `json:"host_id"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
}
