package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	apperrors "github.com/spec-kit/rental-relay/pkg/util"
)

func newRelayFixture(t *testing.T) (*RelayService, *fixture) {
	t.Helper()
	f := newFixture(t)
	relay := NewRelayService(
		&memReservationRepo{s: f.store},
		&memPropertyRepo{s: f.store},
		&memUserRepo{s: f.store},
		nil,
		zap.NewNop(),
	)
	return relay, f
}

func confirmWithRelayNumber(t *testing.T, f *fixture) string {
	t.Helper()
	ctx := context.Background()
	if _, err := f.reservations.RequestReservation(ctx, f.guest.ID, f.property.ID, "hi"); err != nil {
		t.Fatalf("request reservation: %v", err)
	}
	if _, err := f.reservations.HandleConfirmationReply(ctx, f.host.PhoneNumber, "yes"); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	return "+15005550006"
}

func TestResolveCounterpartRoutesToOtherParty(t *testing.T) {
	relay, f := newRelayFixture(t)
	anonymous := confirmWithRelayNumber(t, f)
	ctx := context.Background()

	got, err := relay.ResolveCounterpart(ctx, f.guest.PhoneNumber, anonymous)
	if err != nil {
		t.Fatalf("resolve from guest: %v", err)
	}
	if got != f.host.PhoneNumber {
		t.Fatalf("guest should reach host, got %s", got)
	}

	got, err = relay.ResolveCounterpart(ctx, f.host.PhoneNumber, anonymous)
	if err != nil {
		t.Fatalf("resolve from host: %v", err)
	}
	if got != f.guest.PhoneNumber {
		t.Fatalf("host should reach guest, got %s", got)
	}
}

func TestResolveCounterpartUnknownNumber(t *testing.T) {
	relay, f := newRelayFixture(t)
	confirmWithRelayNumber(t, f)

	_, err := relay.ResolveCounterpart(context.Background(), f.guest.PhoneNumber, "+19999999999")
	if !apperrors.IsCode(err, "RESERVATION_NOT_FOUND") {
		t.Fatalf("expected RESERVATION_NOT_FOUND, got %v", err)
	}
}

func TestResolveCounterpartThirdPartyReachesGuest(t *testing.T) {
	relay, f := newRelayFixture(t)
	anonymous := confirmWithRelayNumber(t, f)

	// A sender matching neither party routes like the host does.
	got, err := relay.ResolveCounterpart(context.Background(), "+15557770000", anonymous)
	if err != nil {
		t.Fatalf("resolve from third party: %v", err)
	}
	if got != f.guest.PhoneNumber {
		t.Fatalf("non-guest sender should reach guest, got %s", got)
	}
}
