package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"smartfarm-platform/internal/models"
	"smartfarm-platform/pkg/database"
	"smartfarm-platform/pkg/logging"
	"smartfarm-platform/pkg/metrics"
)

// PaddockRepository provides data access for paddocks and their cached
// NDVI history
type PaddockRepository interface {
	Create(ctx context.Context, paddock *models.Paddock) error
	Get(ctx context.Context, id uuid.UUID) (*models.Paddock, error)
	List(ctx context.Context) ([]*models.Paddock, error)
	Update(ctx context.Context, paddock *models.Paddock) error
	Delete(ctx context.Context, id uuid.UUID) error

	CreateNDVIRecords(ctx context.Context, records []*models.NDVIRecord) (int64, error)
	ListNDVIRecords(ctx context.Context, paddockID uuid.UUID, start, end time.Time) ([]*models.NDVIRecord, error)
}

// paddockRepository implements PaddockRepository
type paddockRepository struct {
	db      *database.PostgresDB
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewPaddockRepository creates a new paddock repository
func NewPaddockRepository(db *database.PostgresDB, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) PaddockRepository {
	return &paddockRepository{
		db:      db,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// Create persists a new paddock
func (r *paddockRepository) Create(ctx context.Context, paddock *models.Paddock) error {
	query := `
		INSERT INTO paddocks (id, name, geometry, area_hectares, agro_polygon_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, "insert_paddock", query,
		paddock.ID,
		paddock.Name,
		string(paddock.Geometry),
		paddock.AreaHectares,
		paddock.AgroPolygonID,
		paddock.CreatedAt,
		paddock.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create paddock: %w", err)
	}

	r.logger.Debug(ctx, "[REPO_CREATE_PADDOCK] Paddock created", logging.Fields{
		"paddock_id": paddock.ID.String(),
		"name":       paddock.Name,
	})

	return nil
}

// Get retrieves a paddock by ID
func (r *paddockRepository) Get(ctx context.Context, id uuid.UUID) (*models.Paddock, error) {
	query := `
		SELECT id, name, geometry, area_hectares, agro_polygon_id, created_at, updated_at
		FROM paddocks
		WHERE id = $1
	`

	var paddock models.Paddock
	err := r.db.GetContext(ctx, "get_paddock", &paddock, query, id)

	if err == sql.ErrNoRows {
		return nil, &NotFoundError{
			Resource: "paddock",
			ID:       id.String(),
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get paddock: %w", err)
	}

	return &paddock, nil
}

// List retrieves all paddocks ordered by creation time
func (r *paddockRepository) List(ctx context.Context) ([]*models.Paddock, error) {
	query := `
		SELECT id, name, geometry, area_hectares, agro_polygon_id, created_at, updated_at
		FROM paddocks
		ORDER BY created_at
	`

	paddocks := []*models.Paddock{}
	err := r.db.SelectContext(ctx, "list_paddocks", &paddocks, query)

	if err != nil {
		return nil, fmt.Errorf("failed to list paddocks: %w", err)
	}

	return paddocks, nil
}

// Update persists changed paddock fields
func (r *paddockRepository) Update(ctx context.Context, paddock *models.Paddock) error {
	query := `
		UPDATE paddocks
		SET name = $2, geometry = $3, area_hectares = $4, agro_polygon_id = $5, updated_at = $6
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, "update_paddock", query,
		paddock.ID,
		paddock.Name,
		string(paddock.Geometry),
		paddock.AreaHectares,
		paddock.AgroPolygonID,
		paddock.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update paddock: %w", err)
	}

	if rows, _ := result.RowsAffected(); rows == 0 {
		return &NotFoundError{
			Resource: "paddock",
			ID:       paddock.ID.String(),
		}
	}

	return nil
}

// Delete removes a paddock. NDVI history rows cascade via the schema.
func (r *paddockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM paddocks WHERE id = $1`

	result, err := r.db.ExecContext(ctx, "delete_paddock", query, id)
	if err != nil {
		return fmt.Errorf("failed to delete paddock: %w", err)
	}

	if rows, _ := result.RowsAffected(); rows == 0 {
		return &NotFoundError{
			Resource: "paddock",
			ID:       id.String(),
		}
	}

	r.logger.Debug(ctx, "[REPO_DELETE_PADDOCK] Paddock deleted", logging.Fields{
		"paddock_id": id.String(),
	})

	return nil
}

// CreateNDVIRecords inserts cached NDVI history records in a single
// transaction. Duplicate (paddock, date) rows are ignored: history entries
// are append-only facts. Returns the number of rows actually inserted, which
// is lower than len(records) when some dates were already cached.
func (r *paddockRepository) CreateNDVIRecords(ctx context.Context, records []*models.NDVIRecord) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO ndvi_history (
			id, paddock_id, date, ndvi_value,
			min_value, max_value, median_value, std_value,
			image_url, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (paddock_id, date) DO NOTHING
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	for _, rec := range records {
		result, err := stmt.ExecContext(ctx,
			rec.ID,
			rec.PaddockID,
			rec.Date,
			rec.NDVI,
			rec.MinValue,
			rec.MaxValue,
			rec.MedianValue,
			rec.StdValue,
			rec.ImageURL,
			rec.CreatedAt,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert ndvi record: %w", err)
		}
		if rows, err := result.RowsAffected(); err == nil {
			inserted += rows
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return inserted, nil
}

// ListNDVIRecords retrieves cached NDVI history for a paddock within a window
func (r *paddockRepository) ListNDVIRecords(ctx context.Context, paddockID uuid.UUID, start, end time.Time) ([]*models.NDVIRecord, error) {
	query := `
		SELECT id, paddock_id, date, ndvi_value,
		       min_value, max_value, median_value, std_value,
		       image_url, created_at
		FROM ndvi_history
		WHERE paddock_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date
	`

	records := []*models.NDVIRecord{}
	err := r.db.SelectContext(ctx, "list_ndvi_records", &records, query, paddockID, start, end)

	if err != nil {
		return nil, fmt.Errorf("failed to list ndvi records: %w", err)
	}

	return records, nil
}

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}
