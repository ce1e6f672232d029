package domain

import "time"

// VacationProperty is a listing published by a host.
type VacationProperty struct {
	ID          string
	HostID      string
	Description string
	ImageURL    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
