package domain

import (
	"strings"
	"time"
)

// User is the domain model for registered guests and hosts. The phone
// number is stored in E.164 form and is immutable after registration;
// the area code is the first three digits of the national number and
// drives relay number provisioning.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	PhoneNumber  string
	AreaCode     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FormatPhoneNumber joins a country code and national number into the
// E.164-like form stored on users.
func FormatPhoneNumber(countryCode, nationalNumber string) string {
	return "+" + strings.TrimPrefix(countryCode, "+") + nationalNumber
}

// AreaCodeFromNational extracts the 3-digit area code from a national
// number. Returns empty when the number is too short.
func AreaCodeFromNational(nationalNumber string) string {
	if len(nationalNumber) < 3 {
		return ""
	}
	return nationalNumber[:3]
}
