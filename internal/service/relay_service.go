package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/rental-relay/internal/domain"
	"github.com/spec-kit/rental-relay/internal/persistence"
	"github.com/spec-kit/rental-relay/internal/repository"
	apperrors "github.com/spec-kit/rental-relay/pkg/util"
)

const (
	relayCacheKeyPrefix = "relay:number:"
	relayCacheTTL       = 24 * time.Hour
)

// RelayService resolves messages and calls arriving at an anonymous
// number to the real number of the other party. Neither side ever sees
// the counterpart's real number.
type RelayService struct {
	reservations repository.ReservationRepository
	properties   repository.PropertyRepository
	users        repository.UserRepository
	cache        *persistence.Redis
	logger       *zap.Logger
}

// NewRelayService constructs the service. The cache is optional; a nil
// or unreachable Redis falls back to Postgres lookups.
func NewRelayService(reservations repository.ReservationRepository, properties repository.PropertyRepository, users repository.UserRepository, cache *persistence.Redis, logger *zap.Logger) *RelayService {
	return &RelayService{
		reservations: reservations,
		properties:   properties,
		users:        users,
		cache:        cache,
		logger:       logger,
	}
}

// ResolveCounterpart returns the real number the inbound traffic
// should be forwarded to: the host's number when the sender is the
// guest, the guest's number otherwise.
func (s *RelayService) ResolveCounterpart(ctx context.Context, fromRealNumber, anonymousNumber string) (string, error) {
	reservation, err := s.lookupReservation(ctx, anonymousNumber)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.NewReservationNotFound(map[string]any{"anonymous_number": anonymousNumber})
		}
		return "", err
	}

	guest, err := s.users.GetByID(ctx, reservation.GuestID)
	if err != nil {
		return "", err
	}
	property, err := s.properties.GetByID(ctx, reservation.PropertyID)
	if err != nil {
		return "", err
	}
	host, err := s.users.GetByID(ctx, property.HostID)
	if err != nil {
		return "", err
	}

	if fromRealNumber == guest.PhoneNumber {
		return host.PhoneNumber, nil
	}
	return guest.PhoneNumber, nil
}

// lookupReservation resolves the anonymous number through a Redis
// read-through cache keyed on the number, then loads the row by id.
func (s *RelayService) lookupReservation(ctx context.Context, anonymousNumber string) (*domain.Reservation, error) {
	key := relayCacheKeyPrefix + anonymousNumber

	if s.cache != nil && s.cache.Client != nil {
		if id, err := s.cache.Client.Get(ctx, key).Result(); err == nil && id != "" {
			reservation, err := s.reservations.GetByID(ctx, id)
			if err == nil {
				return reservation, nil
			}
			// Stale cache entry; fall through to the store.
		}
	}

	reservation, err := s.reservations.GetByAnonymousNumber(ctx, anonymousNumber)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && s.cache.Client != nil {
		if err := s.cache.Client.Set(ctx, key, reservation.ID, relayCacheTTL).Err(); err != nil {
			s.logger.Debug("relay cache set failed", zap.Error(err))
		}
	}
	return reservation, nil
}
