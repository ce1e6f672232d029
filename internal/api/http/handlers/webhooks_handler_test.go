package handlers_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/rental-relay/internal/api/http"
	"github.com/spec-kit/rental-relay/internal/api/http/handlers"
	"github.com/spec-kit/rental-relay/internal/auth"
	"github.com/spec-kit/rental-relay/internal/config"
	"github.com/spec-kit/rental-relay/internal/domain"
	"github.com/spec-kit/rental-relay/internal/events"
	"github.com/spec-kit/rental-relay/internal/observability"
	"github.com/spec-kit/rental-relay/internal/service"
)

const (
	hostNumber      = "+15559876543"
	guestNumber     = "+15551234567"
	anonymousNumber = "+15005550006"
	announcementURL = "http://example.com/announce.mp3"
)

// stub repositories backing the webhook flow end to end.

type stubUserRepo struct {
	users map[string]*domain.User
}

func (s *stubUserRepo) Create(context.Context, *domain.User) error { return pgx.ErrNoRows }

func (s *stubUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	if user, ok := s.users[id]; ok {
		return user, nil
	}
	return nil, pgx.ErrNoRows
}

func (s *stubUserRepo) GetByEmail(context.Context, string) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}

func (s *stubUserRepo) GetByPhoneNumber(_ context.Context, phone string) (*domain.User, error) {
	for _, user := range s.users {
		if user.PhoneNumber == phone {
			return user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type stubPropertyRepo struct {
	properties map[string]*domain.VacationProperty
}

func (s *stubPropertyRepo) Create(context.Context, *domain.VacationProperty) error {
	return pgx.ErrNoRows
}

func (s *stubPropertyRepo) GetByID(_ context.Context, id string) (*domain.VacationProperty, error) {
	if property, ok := s.properties[id]; ok {
		return property, nil
	}
	return nil, pgx.ErrNoRows
}

func (s *stubPropertyRepo) List(context.Context, int, int) ([]domain.VacationProperty, error) {
	return nil, nil
}

type stubReservationRepo struct {
	reservations map[string]*domain.Reservation
	hostByProp   map[string]string
}

func (s *stubReservationRepo) Create(context.Context, *domain.Reservation) error {
	return pgx.ErrNoRows
}

func (s *stubReservationRepo) GetByID(_ context.Context, id string) (*domain.Reservation, error) {
	if reservation, ok := s.reservations[id]; ok {
		return reservation, nil
	}
	return nil, pgx.ErrNoRows
}

func (s *stubReservationRepo) FirstPendingForHost(_ context.Context, hostID string) (*domain.Reservation, error) {
	for _, reservation := range s.reservations {
		if reservation.Status == domain.ReservationStatusPending && s.hostByProp[reservation.PropertyID] == hostID {
			return reservation, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (s *stubReservationRepo) GetByAnonymousNumber(_ context.Context, number string) (*domain.Reservation, error) {
	for _, reservation := range s.reservations {
		if reservation.AnonymousPhoneNumber != nil && *reservation.AnonymousPhoneNumber == number {
			return reservation, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (s *stubReservationRepo) UpdateStatus(_ context.Context, id string, from, to domain.ReservationStatus) error {
	reservation, ok := s.reservations[id]
	if !ok || reservation.Status != from {
		return pgx.ErrNoRows
	}
	reservation.Status = to
	return nil
}

func (s *stubReservationRepo) SetAnonymousNumber(_ context.Context, id, number string) error {
	reservation, ok := s.reservations[id]
	if !ok {
		return pgx.ErrNoRows
	}
	reservation.AnonymousPhoneNumber = &number
	return nil
}

func (s *stubReservationRepo) MarkRelayUnavailable(_ context.Context, id string) error {
	reservation, ok := s.reservations[id]
	if !ok {
		return pgx.ErrNoRows
	}
	reservation.RelayUnavailable = true
	return nil
}

func (s *stubReservationRepo) ListByGuest(context.Context, string) ([]domain.Reservation, error) {
	return nil, nil
}

func (s *stubReservationRepo) ListByHost(context.Context, string) ([]domain.Reservation, error) {
	return nil, nil
}

type stubProvider struct {
	number string
}

func (p *stubProvider) SendMessage(context.Context, string, string) error { return nil }

func (p *stubProvider) ProvisionNumber(context.Context, string) (string, error) {
	return p.number, nil
}

func buildWebhookApp(t *testing.T) *fiber.App {
	t.Helper()
	logger := zap.NewNop()

	host := &domain.User{ID: "user-host", Name: "Hannah", PhoneNumber: hostNumber, AreaCode: "555"}
	guest := &domain.User{ID: "user-guest", Name: "Gary", PhoneNumber: guestNumber, AreaCode: "555"}
	anonymous := anonymousNumber

	userRepo := &stubUserRepo{users: map[string]*domain.User{host.ID: host, guest.ID: guest}}
	propertyRepo := &stubPropertyRepo{properties: map[string]*domain.VacationProperty{
		"prop-1": {ID: "prop-1", HostID: host.ID, Description: "Beach bungalow"},
	}}
	reservationRepo := &stubReservationRepo{
		reservations: map[string]*domain.Reservation{
			"res-pending": {ID: "res-pending", PropertyID: "prop-1", GuestID: guest.ID, Status: domain.ReservationStatusPending},
			"res-live": {
				ID:                   "res-live",
				PropertyID:           "prop-1",
				GuestID:              guest.ID,
				Status:               domain.ReservationStatusConfirmed,
				AnonymousPhoneNumber: &anonymous,
			},
		},
		hostByProp: map[string]string{"prop-1": host.ID},
	}

	dispatcher := events.NewInMemoryDispatcher()
	provider := &stubProvider{number: "+15005559999"}
	service.NewNotificationService(dispatcher, provider, logger).RegisterHandlers()

	reservationService := service.NewReservationService(service.ReservationDependencies{
		ReservationRepo: reservationRepo,
		PropertyRepo:    propertyRepo,
		UserRepo:        userRepo,
		Provider:        provider,
		Dispatcher:      dispatcher,
		Logger:          logger,
	})
	relayService := service.NewRelayService(reservationRepo, propertyRepo, userRepo, nil, logger)
	authService := service.NewAuthService(config.Config{}, userRepo)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, observability.NewMetrics(), 0)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler("test", "test", nil, nil),
		Users:          handlers.NewUsersHandler(authService),
		Properties:     handlers.NewPropertiesHandler(service.NewPropertyService(propertyRepo)),
		Reservations:   handlers.NewReservationsHandler(reservationService),
		Webhooks:       handlers.NewWebhooksHandler(reservationService, relayService, announcementURL, logger),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), userRepo),
	})
	return app
}

func postForm(t *testing.T, app *fiber.App, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, string(payload)
}

func TestConfirmWebhookAccepts(t *testing.T) {
	app := buildWebhookApp(t)

	resp, body := postForm(t, app, "/webhooks/reservations/confirm", url.Values{
		"From": {hostNumber},
		"Body": {"yes, accept"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "<Message>You have successfully confirmed the reservation</Message>") {
		t.Fatalf("unexpected markup: %s", body)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "application/xml") {
		t.Fatalf("unexpected content type: %s", ct)
	}
}

func TestConfirmWebhookFallbackForUnknownSender(t *testing.T) {
	app := buildWebhookApp(t)

	resp, body := postForm(t, app, "/webhooks/reservations/confirm", url.Values{
		"From": {"+15550000000"},
		"Body": {"yes"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	// The markup XML-escapes the apostrophe in the reply.
	escaped := strings.ReplaceAll(service.FallbackReply, "'", "&#39;")
	if !strings.Contains(body, escaped) {
		t.Fatalf("expected fallback reply, got: %s", body)
	}
}

func TestWebhooksSkipBearerAuth(t *testing.T) {
	app := buildWebhookApp(t)

	req := httptest.NewRequest(http.MethodGet, "/properties", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}

	resp, body := postForm(t, app, "/webhooks/reservations/confirm", url.Values{
		"From": {"+15550000000"},
		"Body": {"no"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("webhook must not require auth, got %d", resp.StatusCode)
	}
	if strings.Contains(body, "UNAUTHORIZED") {
		t.Fatalf("webhook rendered an auth error: %s", body)
	}
}

func TestExchangeSMSRelaysToCounterpart(t *testing.T) {
	app := buildWebhookApp(t)

	resp, body := postForm(t, app, "/webhooks/exchange/sms", url.Values{
		"From": {guestNumber},
		"To":   {anonymousNumber},
		"Body": {"is checkin flexible?"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, `<Message to="`+hostNumber+`">is checkin flexible?</Message>`) {
		t.Fatalf("unexpected markup: %s", body)
	}
}

func TestExchangeSMSUnknownAnonymousNumber(t *testing.T) {
	app := buildWebhookApp(t)

	resp, body := postForm(t, app, "/webhooks/exchange/sms", url.Values{
		"From": {guestNumber},
		"To":   {"+19999999999"},
		"Body": {"hello?"},
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "RESERVATION_NOT_FOUND") {
		t.Fatalf("expected RESERVATION_NOT_FOUND error, got: %s", body)
	}
}

func TestExchangeVoiceBridgesCall(t *testing.T) {
	app := buildWebhookApp(t)

	resp, body := postForm(t, app, "/webhooks/exchange/voice", url.Values{
		"From": {hostNumber},
		"To":   {anonymousNumber},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "<Play>"+announcementURL+"</Play>") {
		t.Fatalf("missing announcement: %s", body)
	}
	if !strings.Contains(body, "<Dial>"+guestNumber+"</Dial>") {
		t.Fatalf("missing dial to counterpart: %s", body)
	}
}
