package service

import (
	"context"
	"strings"

	"github.com/spec-kit/rental-relay/internal/domain"
	"github.com/spec-kit/rental-relay/internal/repository"
	apperrors "github.com/spec-kit/rental-relay/pkg/util"
)

// PropertyService manages vacation property listings.
type PropertyService struct {
	properties repository.PropertyRepository
}

// NewPropertyService constructs the service.
func NewPropertyService(properties repository.PropertyRepository) *PropertyService {
	return &PropertyService{properties: properties}
}

// CreateProperty publishes a listing owned by the given host.
func (s *PropertyService) CreateProperty(ctx context.Context, hostID, description, imageURL string) (*domain.VacationProperty, error) {
	if strings.TrimSpace(description) == "" {
		return nil, apperrors.NewValidationError("description required", nil)
	}

	property := &domain.VacationProperty{
		HostID:      hostID,
		Description: strings.TrimSpace(description),
		ImageURL:    strings.TrimSpace(imageURL),
	}
	if err := s.properties.Create(ctx, property); err != nil {
		return nil, err
	}
	return property, nil
}

// ListProperties returns published listings, newest first.
func (s *PropertyService) ListProperties(ctx context.Context, limit, offset int) ([]domain.VacationProperty, error) {
	return s.properties.List(ctx, limit, offset)
}
