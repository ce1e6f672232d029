package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/rental-relay/internal/domain"
)

// memStore backs the in-memory repository fakes used across the
// service tests. UpdateStatus mirrors the production conditional
// update: the check and the write happen under one lock.
type memStore struct {
	mu           sync.Mutex
	users        map[string]*domain.User
	properties   map[string]*domain.VacationProperty
	reservations map[string]*domain.Reservation
	seq          int
}

func newMemStore() *memStore {
	return &memStore{
		users:        make(map[string]*domain.User),
		properties:   make(map[string]*domain.VacationProperty),
		reservations: make(map[string]*domain.Reservation),
	}
}

func (s *memStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

func (s *memStore) addUser(name, email, phone, areaCode string) *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := &domain.User{
		ID:          s.nextID("user"),
		Name:        name,
		Email:       email,
		PhoneNumber: phone,
		AreaCode:    areaCode,
		CreatedAt:   time.Now(),
	}
	s.users[user.ID] = user
	return user
}

func (s *memStore) addProperty(hostID, description string) *domain.VacationProperty {
	s.mu.Lock()
	defer s.mu.Unlock()
	property := &domain.VacationProperty{
		ID:          s.nextID("prop"),
		HostID:      hostID,
		Description: description,
		CreatedAt:   time.Now(),
	}
	s.properties[property.ID] = property
	return property
}

type memUserRepo struct{ s *memStore }

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user.ID = r.s.nextID("user")
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	r.s.users[user.ID] = &clone
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user, ok := r.s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, user := range r.s.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memUserRepo) GetByPhoneNumber(_ context.Context, phone string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, user := range r.s.users {
		if user.PhoneNumber == phone {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type memPropertyRepo struct{ s *memStore }

func (r *memPropertyRepo) Create(_ context.Context, property *domain.VacationProperty) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	property.ID = r.s.nextID("prop")
	property.CreatedAt = time.Now()
	property.UpdatedAt = property.CreatedAt
	clone := *property
	r.s.properties[property.ID] = &clone
	return nil
}

func (r *memPropertyRepo) GetByID(_ context.Context, id string) (*domain.VacationProperty, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	property, ok := r.s.properties[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *property
	return &clone, nil
}

func (r *memPropertyRepo) List(_ context.Context, _, _ int) ([]domain.VacationProperty, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	result := make([]domain.VacationProperty, 0, len(r.s.properties))
	for _, property := range r.s.properties {
		result = append(result, *property)
	}
	return result, nil
}

type memReservationRepo struct{ s *memStore }

func (r *memReservationRepo) Create(_ context.Context, reservation *domain.Reservation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	reservation.ID = r.s.nextID("res")
	// Sequence-scaled timestamps keep creation order strict even when
	// the wall clock does not advance between inserts.
	reservation.CreatedAt = time.Unix(0, int64(r.s.seq)*int64(time.Millisecond))
	reservation.UpdatedAt = reservation.CreatedAt
	clone := *reservation
	r.s.reservations[reservation.ID] = &clone
	return nil
}

func (r *memReservationRepo) GetByID(_ context.Context, id string) (*domain.Reservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	reservation, ok := r.s.reservations[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *reservation
	return &clone, nil
}

func (r *memReservationRepo) FirstPendingForHost(_ context.Context, hostID string) (*domain.Reservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var oldest *domain.Reservation
	for _, reservation := range r.s.reservations {
		if reservation.Status != domain.ReservationStatusPending {
			continue
		}
		property, ok := r.s.properties[reservation.PropertyID]
		if !ok || property.HostID != hostID {
			continue
		}
		if oldest == nil || reservation.CreatedAt.Before(oldest.CreatedAt) {
			oldest = reservation
		}
	}
	if oldest == nil {
		return nil, pgx.ErrNoRows
	}
	clone := *oldest
	return &clone, nil
}

func (r *memReservationRepo) GetByAnonymousNumber(_ context.Context, anonymousNumber string) (*domain.Reservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, reservation := range r.s.reservations {
		if reservation.AnonymousPhoneNumber != nil && *reservation.AnonymousPhoneNumber == anonymousNumber {
			clone := *reservation
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memReservationRepo) UpdateStatus(_ context.Context, id string, from, to domain.ReservationStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	reservation, ok := r.s.reservations[id]
	if !ok || reservation.Status != from {
		return pgx.ErrNoRows
	}
	reservation.Status = to
	reservation.UpdatedAt = time.Now()
	return nil
}

func (r *memReservationRepo) SetAnonymousNumber(_ context.Context, id, anonymousNumber string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	reservation, ok := r.s.reservations[id]
	if !ok || reservation.Status != domain.ReservationStatusConfirmed {
		return pgx.ErrNoRows
	}
	reservation.AnonymousPhoneNumber = &anonymousNumber
	reservation.RelayUnavailable = false
	return nil
}

func (r *memReservationRepo) MarkRelayUnavailable(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	reservation, ok := r.s.reservations[id]
	if !ok {
		return pgx.ErrNoRows
	}
	reservation.RelayUnavailable = true
	return nil
}

func (r *memReservationRepo) ListByGuest(_ context.Context, guestID string) ([]domain.Reservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var result []domain.Reservation
	for _, reservation := range r.s.reservations {
		if reservation.GuestID == guestID {
			result = append(result, *reservation)
		}
	}
	return result, nil
}

func (r *memReservationRepo) ListByHost(_ context.Context, hostID string) ([]domain.Reservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var result []domain.Reservation
	for _, reservation := range r.s.reservations {
		property, ok := r.s.properties[reservation.PropertyID]
		if ok && property.HostID == hostID {
			result = append(result, *reservation)
		}
	}
	return result, nil
}

type sentMessage struct {
	To   string
	Body string
}

// fakeProvider records outbound messages and serves canned
// provisioning results.
type fakeProvider struct {
	mu           sync.Mutex
	sent         []sentMessage
	number       string
	provisionErr error
}

func (p *fakeProvider) SendMessage(_ context.Context, to, body string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, sentMessage{To: to, Body: body})
	return nil
}

func (p *fakeProvider) ProvisionNumber(_ context.Context, _ string) (string, error) {
	if p.provisionErr != nil {
		return "", p.provisionErr
	}
	if p.number == "" {
		return "+15005550006", nil
	}
	return p.number, nil
}

func (p *fakeProvider) sentTo(number string) []sentMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	var result []sentMessage
	for _, msg := range p.sent {
		if msg.To == number {
			result = append(result, msg)
		}
	}
	return result
}
