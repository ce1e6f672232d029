package dto

import "time"

// UserRegisterRequest payload for new users.
type UserRegisterRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	CountryCode    string `json:"country_code"`
	NationalNumber string `json:"phone_number"`
}

// UserLoginRequest payload for login.
type UserLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserSummary is the user shape returned from auth endpoints. The real
// phone number is only ever shown to its owner.
type UserSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	AreaCode    string `json:"area_code"`
}
