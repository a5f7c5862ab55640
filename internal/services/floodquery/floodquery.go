// Package services реализует выборку предстоящих наводнений:
// прогнозы не ниже порога, не раньше текущего локального времени станции,
// по возрастанию времени, в отображаемом виде.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/magabrotheeeer/flood-alert/internal/models"
)

// CacheKey ключ кеша списка предстоящих наводнений.
// Задача sync инвалидирует его после замены окна архива.
const CacheKey = "flood:upcoming"

// cacheTTL время жизни кеша выборки
const cacheTTL = 5 * time.Minute

// TideRepository определяет чтение архива приливов.
type TideRepository interface {
	// FindFloodPredictions возвращает прогнозы не раньше from и не ниже порога.
	FindFloodPredictions(ctx context.Context, from time.Time, thresholdFt float64) ([]*models.TidePrediction, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// FloodQueryService читает архив приливов через кеш.
// Источник времени внедряется, чтобы тесты могли зафиксировать "сейчас".
type FloodQueryService struct {
	repo  TideRepository
	cache Cache
	clock clockwork.Clock
	loc   *time.Location
	log   *slog.Logger
}

// NewFloodQueryService создает новый экземпляр FloodQueryService.
func NewFloodQueryService(repo TideRepository, cache Cache, clock clockwork.Clock, log *slog.Logger) (*FloodQueryService, error) {
	loc, err := time.LoadLocation(models.StationTimezone)
	if err != nil {
		return nil, fmt.Errorf("load station timezone: %w", err)
	}
	return &FloodQueryService{
		repo:  repo,
		cache: cache,
		clock: clock,
		loc:   loc,
		log:   log,
	}, nil
}

// Upcoming возвращает предстоящие наводнения. Чтение без побочных эффектов.
// Кешированный список хранит исходное время каждого события и заново
// фильтруется по "сейчас", поэтому попадание в кеш не возвращает прошедших событий.
func (s *FloodQueryService) Upcoming(ctx context.Context) ([]models.FloodEvent, error) {
	const op = "services.floodquery.Upcoming"

	now := s.stationNow()

	var cached []models.FloodEvent
	found, err := s.cache.Get(CacheKey, &cached)
	if err != nil {
		s.log.Warn("flood cache read failed", slog.String("key", CacheKey), slog.Any("err", err))
	}
	if found {
		return filterFrom(cached, now), nil
	}

	predictions, err := s.repo.FindFloodPredictions(ctx, now, models.FloodThresholdFt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	events := make([]models.FloodEvent, 0, len(predictions))
	for _, p := range predictions {
		events = append(events, models.NewFloodEvent(p.Time, p.HeightFt))
	}

	if err := s.cache.Set(CacheKey, events, cacheTTL); err != nil {
		s.log.Warn("flood cache write failed", slog.String("key", CacheKey), slog.Any("err", err))
	}

	return events, nil
}

// stationNow возвращает текущее локальное гражданское время станции
// в том же виде, в каком архив хранит prediction_time (без зоны).
func (s *FloodQueryService) stationNow() time.Time {
	now := s.clock.Now().In(s.loc)
	return time.Date(now.Year(), now.Month(), now.Day(),
		now.Hour(), now.Minute(), now.Second(), 0, time.UTC)
}

func filterFrom(events []models.FloodEvent, now time.Time) []models.FloodEvent {
	result := make([]models.FloodEvent, 0, len(events))
	for _, e := range events {
		if !e.Time.Before(now) {
			result = append(result, e)
		}
	}
	return result
}
