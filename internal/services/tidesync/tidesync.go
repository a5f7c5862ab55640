// Package services реализует загрузку окна прогнозов приливов NOAA в архив.
// Окно скользящее: от сегодняшнего дня станции на ForecastDays вперед.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/magabrotheeeer/flood-alert/internal/models"
	"github.com/magabrotheeeer/flood-alert/internal/observability"
	floodquery "github.com/magabrotheeeer/flood-alert/internal/services/floodquery"
)

// PredictionSource определяет источник прогнозов приливов.
type PredictionSource interface {
	FetchPredictions(ctx context.Context, stationID string, beginDate, endDate time.Time) ([]models.TidePrediction, error)
}

// TideRepository определяет замену окна архива приливов.
type TideRepository interface {
	ReplaceWindow(ctx context.Context, windowStart, windowEnd time.Time, predictions []models.TidePrediction) (int, error)
}

// Cache описывает инвалидацию кеша выборки наводнений.
type Cache interface {
	Invalidate(key string) error
}

// TideSyncService обновляет архив приливов из NOAA.
type TideSyncService struct {
	source  PredictionSource
	repo    TideRepository
	cache   Cache
	clock   clockwork.Clock
	metrics *observability.Metrics
	loc     *time.Location
	log     *slog.Logger
}

// NewTideSyncService создает новый экземпляр TideSyncService.
func NewTideSyncService(source PredictionSource, repo TideRepository, cache Cache,
	clock clockwork.Clock, metrics *observability.Metrics, log *slog.Logger) (*TideSyncService, error) {
	loc, err := time.LoadLocation(models.StationTimezone)
	if err != nil {
		return nil, fmt.Errorf("load station timezone: %w", err)
	}
	return &TideSyncService{
		source:  source,
		repo:    repo,
		cache:   cache,
		clock:   clock,
		metrics: metrics,
		loc:     loc,
		log:     log,
	}, nil
}

// Refresh загружает прогнозы станции на окно [сегодня, сегодня+ForecastDays]
// и атомарно заменяет содержимое окна в архиве. Записи без классификации
// high/low отбрасываются до записи. Повторный запуск идемпотентен.
// Возвращает количество записанных строк.
func (s *TideSyncService) Refresh(ctx context.Context) (int, error) {
	const op = "services.tidesync.Refresh"

	windowStart, windowEnd := s.window()

	fetched, err := s.source.FetchPredictions(ctx, models.StationID, windowStart, windowEnd)
	if err != nil {
		s.metrics.SyncErrors.Inc()
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	predictions := make([]models.TidePrediction, 0, len(fetched))
	for _, p := range fetched {
		if p.TideType != models.TideTypeHigh && p.TideType != models.TideTypeLow {
			s.log.Warn("discarding unclassified prediction", slog.Time("time", p.Time))
			continue
		}
		predictions = append(predictions, p)
	}

	count, err := s.repo.ReplaceWindow(ctx, windowStart, windowEnd, predictions)
	if err != nil {
		s.metrics.SyncErrors.Inc()
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	s.metrics.TidesRefreshed.Add(float64(count))

	if err := s.cache.Invalidate(floodquery.CacheKey); err != nil {
		s.log.Warn("flood cache invalidate failed", slog.String("key", floodquery.CacheKey), slog.Any("err", err))
	}

	s.log.Info("tide archive refreshed",
		slog.String("station", models.StationID),
		slog.Time("window_start", windowStart),
		slog.Time("window_end", windowEnd),
		slog.Int("rows", count))
	return count, nil
}

// window возвращает границы окна в наивном локальном времени станции:
// начало сегодняшних суток и конец суток через ForecastDays дней.
func (s *TideSyncService) window() (time.Time, time.Time) {
	now := s.clock.Now().In(s.loc)
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, models.ForecastDays).Add(24*time.Hour - time.Second)
	return start, end
}
