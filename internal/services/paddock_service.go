package services

import (
	"context"
	"encoding/json"
	"reflect"
	"time"

	"github.com/google/uuid"

	"smartfarm-platform/internal/models"
	"smartfarm-platform/internal/repository"
	"smartfarm-platform/pkg/geometry"
	"smartfarm-platform/pkg/logging"
	"smartfarm-platform/pkg/metrics"
)

// PaddockService handles paddock lifecycle operations. Provider registration
// is soft-fail: a paddock is always persisted locally even when the provider
// rejects or cannot be reached, and registration is retried on update.
type PaddockService struct {
	repo     repository.PaddockRepository
	provider Provider
	logger   *logging.StructuredLogger
	metrics  *metrics.Collector
	now      func() time.Time
}

// NewPaddockService creates a new paddock service
func NewPaddockService(repo repository.PaddockRepository, provider Provider, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *PaddockService {
	return &PaddockService{
		repo:     repo,
		provider: provider,
		logger:   logger,
		metrics:  metricsCollector,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create validates the request, derives the paddock area, attempts provider
// registration, and persists the paddock
func (s *PaddockService) Create(ctx context.Context, req *models.PaddockRequest) (*models.Paddock, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	area, err := geometry.AreaHectares(req.Geometry)
	if err != nil {
		return nil, err
	}

	now := s.now()
	paddock := &models.Paddock{
		ID:           uuid.New(),
		Name:         req.Name,
		Geometry:     req.Geometry,
		AreaHectares: area,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if polygonID, err := s.provider.CreatePolygon(ctx, req.Name, req.Geometry); err != nil {
		s.logger.Error(ctx, "[PADDOCK_CREATE] Provider registration failed, storing without external id", logging.Fields{
			"paddock_id": paddock.ID.String(),
			"name":       paddock.Name,
		}, err)
	} else {
		paddock.AgroPolygonID = &polygonID
	}

	if err := s.repo.Create(ctx, paddock); err != nil {
		return nil, err
	}

	return paddock, nil
}

// Get retrieves a paddock by ID
func (s *PaddockService) Get(ctx context.Context, id uuid.UUID) (*models.Paddock, error) {
	return s.repo.Get(ctx, id)
}

// List retrieves all paddocks
func (s *PaddockService) List(ctx context.Context) ([]*models.Paddock, error) {
	return s.repo.List(ctx)
}

// Update changes a paddock's name and geometry. A geometry change recomputes
// the area and replaces the provider polygon (delete old, register new).
// Provider failures are logged and never roll back the local update.
func (s *PaddockService) Update(ctx context.Context, id uuid.UUID, req *models.PaddockRequest) (*models.Paddock, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	paddock, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	paddock.Name = req.Name

	geometryChanged := !sameGeometry(paddock.Geometry, req.Geometry)
	if geometryChanged {
		area, err := geometry.AreaHectares(req.Geometry)
		if err != nil {
			return nil, err
		}
		paddock.Geometry = req.Geometry
		paddock.AreaHectares = area
	}

	switch {
	case geometryChanged && paddock.AgroPolygonID != nil:
		oldID := *paddock.AgroPolygonID
		if !s.provider.DeletePolygon(ctx, oldID) {
			s.logger.Error(ctx, "[PADDOCK_UPDATE] Failed to delete old provider polygon; it may need manual reconciliation", logging.Fields{
				"paddock_id":      paddock.ID.String(),
				"agro_polygon_id": oldID,
			}, nil)
		}
		if newID, err := s.provider.CreatePolygon(ctx, paddock.Name, paddock.Geometry); err != nil {
			s.logger.Error(ctx, "[PADDOCK_UPDATE] Failed to re-register polygon with provider", logging.Fields{
				"paddock_id": paddock.ID.String(),
			}, err)
		} else {
			paddock.AgroPolygonID = &newID
		}
	case paddock.AgroPolygonID == nil:
		// Retry path for paddocks whose initial registration soft-failed
		if newID, err := s.provider.CreatePolygon(ctx, paddock.Name, paddock.Geometry); err != nil {
			s.logger.Error(ctx, "[PADDOCK_UPDATE] Provider registration retry failed", logging.Fields{
				"paddock_id": paddock.ID.String(),
			}, err)
		} else {
			paddock.AgroPolygonID = &newID
		}
	}

	paddock.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, paddock); err != nil {
		return nil, err
	}

	return paddock, nil
}

// Delete removes a paddock and its cached NDVI history. The provider polygon
// is deleted first, best-effort: a failure there leaves a dangling external
// polygon, which is logged rather than blocking the local delete.
func (s *PaddockService) Delete(ctx context.Context, id uuid.UUID) error {
	paddock, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if paddock.AgroPolygonID != nil {
		if !s.provider.DeletePolygon(ctx, *paddock.AgroPolygonID) {
			s.logger.Error(ctx, "[PADDOCK_DELETE] Failed to delete provider polygon; it may need manual reconciliation", logging.Fields{
				"paddock_id":      paddock.ID.String(),
				"agro_polygon_id": *paddock.AgroPolygonID,
			}, nil)
		}
	}

	return s.repo.Delete(ctx, id)
}

// sameGeometry compares two GeoJSON documents structurally. Postgres jsonb
// normalizes key order and number formatting, so the stored geometry is not
// byte-comparable to user input.
func sameGeometry(a, b json.RawMessage) bool {
	var valueA, valueB interface{}
	if err := json.Unmarshal(a, &valueA); err != nil {
		return false
	}
	if err := json.Unmarshal(b, &valueB); err != nil {
		return false
	}
	return reflect.DeepEqual(valueA, valueB)
}
