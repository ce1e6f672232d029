package domain

import "testing"

func TestTransitionRules(t *testing.T) {
	cases := []struct {
		from, to ReservationStatus
		want     bool
	}{
		{ReservationStatusPending, ReservationStatusConfirmed, true},
		{ReservationStatusPending, ReservationStatusRejected, true},
		{ReservationStatusConfirmed, ReservationStatusRejected, false},
		{ReservationStatusConfirmed, ReservationStatusPending, false},
		{ReservationStatusRejected, ReservationStatusConfirmed, false},
		{ReservationStatusRejected, ReservationStatusPending, false},
		{ReservationStatusPending, ReservationStatusPending, false},
	}
	for _, tc := range cases {
		if got := IsValidTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("IsValidTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}
