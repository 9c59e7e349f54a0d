package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	mstats "github.com/montanaflynn/stats"

	"smartfarm-platform/internal/agro"
	"smartfarm-platform/internal/models"
	"smartfarm-platform/internal/repository"
	"smartfarm-platform/pkg/logging"
	"smartfarm-platform/pkg/metrics"
)

var (
	// ErrNoImagery indicates the provider returned no satellite images for
	// the paddock in the requested window, or the paddock was never
	// registered with the provider
	ErrNoImagery = errors.New("no satellite imagery available for paddock")

	// ErrNoNDVI indicates imagery exists but none of it carries an NDVI band
	ErrNoNDVI = errors.New("no NDVI data available for paddock")
)

// NDVIService assembles the NDVI view for a paddock: current image
// statistics, available imagery dates, and the history series with a
// summary roll-up. Fetched history is cached locally and serves as a
// fallback when the provider's history endpoint fails.
type NDVIService struct {
	repo     repository.PaddockRepository
	provider Provider
	logger   *logging.StructuredLogger
	metrics  *metrics.Collector
	now      func() time.Time
}

// NewNDVIService creates a new NDVI service
func NewNDVIService(repo repository.PaddockRepository, provider Provider, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *NDVIService {
	return &NDVIService{
		repo:     repo,
		provider: provider,
		logger:   logger,
		metrics:  metricsCollector,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// GetNDVIView runs the full NDVI pipeline for a paddock over an optional
// time window. Nil bounds default to the last 30 days.
func (s *NDVIService) GetNDVIView(ctx context.Context, paddock *models.Paddock, start, end *time.Time) (*models.NDVIView, error) {
	timer := time.Now()
	defer func() {
		s.metrics.NDVIPipelineDuration.Observe(time.Since(timer).Seconds())
	}()

	if paddock.AgroPolygonID == nil {
		return nil, ErrNoImagery
	}
	polygonID := *paddock.AgroPolygonID

	images := s.provider.SearchImages(ctx, polygonID, start, end)
	if len(images) == 0 {
		return nil, ErrNoImagery
	}

	// Provider returns newest first; take the first NDVI-capable image
	var current *agro.SatelliteImage
	for i := range images {
		if images[i].NDVIBandURL() != "" {
			current = &images[i]
			break
		}
	}
	if current == nil {
		return nil, ErrNoNDVI
	}

	stats, err := s.provider.NDVIStats(ctx, polygonID, current.NDVIBandURL())
	if err != nil {
		return nil, err
	}

	history := s.provider.NDVIHistory(ctx, polygonID, start, end)
	if len(history) > 0 {
		s.cacheHistory(ctx, paddock.ID, history)
	} else {
		history = s.cachedHistory(ctx, paddock.ID, start, end)
	}

	view := &models.NDVIView{
		Current: models.NDVICurrent{
			Date: current.Date,
			Statistics: models.NDVIStatistics{
				Mean:   stats.Statistics.Mean,
				Min:    stats.Statistics.Min,
				Max:    stats.Statistics.Max,
				Median: stats.Statistics.Median,
				Std:    stats.Statistics.Std,
				Num:    stats.Statistics.Num,
			},
			TileURL:   stats.TileURL,
			ImageURL:  stats.ImageURL,
			Clouds:    current.Clouds,
			Coverage:  current.Coverage,
			Satellite: current.Type,
			Sun: models.SunPosition{
				Azimuth:   current.Sun.Azimuth,
				Elevation: current.Sun.Elevation,
			},
		},
		AvailableDates: make([]models.NDVIAvailable, 0, len(images)),
		History:        make([]models.NDVIPoint, 0, len(history)),
	}

	for _, img := range images {
		if img.NDVIBandURL() == "" {
			continue
		}
		view.AvailableDates = append(view.AvailableDates, models.NDVIAvailable{
			Date:      img.Date,
			Clouds:    img.Clouds,
			Coverage:  img.Coverage,
			Satellite: img.Type,
			URLs:      img.Image,
		})
	}

	for _, h := range history {
		view.History = append(view.History, models.NDVIPoint{
			Date:   h.Date,
			NDVI:   h.NDVI,
			Min:    h.Min,
			Max:    h.Max,
			Median: h.Median,
			Std:    h.Std,
		})
	}

	view.Summary = summarizeHistory(view.History)

	return view, nil
}

// cacheHistory persists fetched history entries. Persistence failures are
// logged and never fail the pipeline.
func (s *NDVIService) cacheHistory(ctx context.Context, paddockID uuid.UUID, history []agro.HistoryEntry) {
	now := s.now()
	records := make([]*models.NDVIRecord, 0, len(history))
	for _, h := range history {
		date, err := time.Parse(time.RFC3339, h.Date)
		if err != nil {
			continue
		}
		records = append(records, &models.NDVIRecord{
			ID:          uuid.New(),
			PaddockID:   paddockID,
			Date:        date,
			NDVI:        h.NDVI,
			MinValue:    h.Min,
			MaxValue:    h.Max,
			MedianValue: h.Median,
			StdValue:    h.Std,
			CreatedAt:   now,
		})
	}

	inserted, err := s.repo.CreateNDVIRecords(ctx, records)
	if err != nil {
		s.logger.Error(ctx, "[NDVI_CACHE] Failed to cache NDVI history", logging.Fields{
			"paddock_id": paddockID.String(),
			"records":    len(records),
		}, err)
		return
	}

	// Count only rows that were actually new; repeated pipeline runs over
	// the same window insert nothing
	if inserted > 0 {
		s.metrics.NDVIRecordsCached.Add(float64(inserted))
	}
}

// cachedHistory serves previously cached records when the provider's history
// endpoint returns nothing
func (s *NDVIService) cachedHistory(ctx context.Context, paddockID uuid.UUID, start, end *time.Time) []agro.HistoryEntry {
	from, to := s.window(start, end)

	records, err := s.repo.ListNDVIRecords(ctx, paddockID, from, to)
	if err != nil {
		s.logger.Error(ctx, "[NDVI_CACHE] Failed to read cached NDVI history", logging.Fields{
			"paddock_id": paddockID.String(),
		}, err)
		return nil
	}

	if len(records) > 0 {
		s.logger.Info(ctx, "[NDVI_CACHE] Serving NDVI history from cache", logging.Fields{
			"paddock_id": paddockID.String(),
			"records":    len(records),
		})
	}

	history := make([]agro.HistoryEntry, 0, len(records))
	for _, rec := range records {
		history = append(history, agro.HistoryEntry{
			Date:   rec.Date.UTC().Format(time.RFC3339),
			NDVI:   rec.NDVI,
			Min:    rec.MinValue,
			Max:    rec.MaxValue,
			Median: rec.MedianValue,
			Std:    rec.StdValue,
		})
	}

	return history
}

// window resolves optional bounds to concrete times, defaulting to the last
// 30 days
func (s *NDVIService) window(start, end *time.Time) (time.Time, time.Time) {
	to := s.now()
	if end != nil {
		to = *end
	}
	from := to.AddDate(0, 0, -30)
	if start != nil {
		from = *start
	}
	return from, to
}

// summarizeHistory rolls the history series up into aggregate statistics
// and a coarse health label. Returns nil for an empty series.
func summarizeHistory(points []models.NDVIPoint) *models.NDVISummary {
	if len(points) == 0 {
		return nil
	}

	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.NDVI
	}

	mean, _ := mstats.Mean(values)
	median, _ := mstats.Median(values)
	min, _ := mstats.Min(values)
	max, _ := mstats.Max(values)
	std, _ := mstats.StandardDeviation(values)

	return &models.NDVISummary{
		Mean:   mean,
		Median: median,
		Min:    min,
		Max:    max,
		Std:    std,
		Count:  len(values),
		Health: models.HealthStatus(mean),
	}
}
