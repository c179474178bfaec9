package analytics

import (
	"context"
	"sort"
	"time"

	"tably/internal/shared/apperrors"
	"tably/internal/shared/config"
	"tably/pkg/cache"
)

// Service computes operational reports for a venue's service date.
type Service interface {
	TurnTimes(ctx context.Context, venueID, date string) (*TurnTimeReport, error)
	PartySizeOptimization(ctx context.Context, venueID, date string) (*PartySizeReport, error)
}

// service implements the Service interface
type service struct {
	repo         Repository
	cacheService cache.Service // nil disables caching
	cacheTTL     time.Duration
	cfg          config.ReservationConfig
}

// NewService creates a new analytics service instance
func NewService(repo Repository, cacheService cache.Service, cacheTTL time.Duration, cfg config.ReservationConfig) Service {
	return &service{
		repo:         repo,
		cacheService: cacheService,
		cacheTTL:     cacheTTL,
		cfg:          cfg,
	}
}

func (s *service) TurnTimes(ctx context.Context, venueID, date string) (*TurnTimeReport, error) {
	dayStart, dayEnd, err := dayBounds(date)
	if err != nil {
		return nil, err
	}

	build := func() (*TurnTimeReport, error) {
		samples, err := s.repo.SamplesForDate(ctx, venueID, dayStart, dayEnd)
		if err != nil {
			return nil, err
		}
		return s.buildTurnTimeReport(venueID, date, samples), nil
	}

	if s.cacheService == nil {
		return build()
	}

	var report TurnTimeReport
	key := cache.BuildTurnTimeKey(venueID, date)
	err = s.cacheService.GetOrSet(ctx, key, s.cacheTTL, func() (interface{}, error) {
		return build()
	}, &report)
	if err != nil {
		return build()
	}
	return &report, nil
}

func (s *service) PartySizeOptimization(ctx context.Context, venueID, date string) (*PartySizeReport, error) {
	dayStart, dayEnd, err := dayBounds(date)
	if err != nil {
		return nil, err
	}

	build := func() (*PartySizeReport, error) {
		samples, err := s.repo.SamplesForDate(ctx, venueID, dayStart, dayEnd)
		if err != nil {
			return nil, err
		}
		return buildPartySizeReport(venueID, date, samples), nil
	}

	if s.cacheService == nil {
		return build()
	}

	var report PartySizeReport
	key := cache.BuildPartySizeKey(venueID, date)
	err = s.cacheService.GetOrSet(ctx, key, s.cacheTTL, func() (interface{}, error) {
		return build()
	}, &report)
	if err != nil {
		return build()
	}
	return &report, nil
}

func (s *service) buildTurnTimeReport(venueID, date string, samples []reservationSample) *TurnTimeReport {
	report := &TurnTimeReport{
		VenueID: venueID,
		Date:    date,
		MealPeriods: []MealPeriodStats{
			{Period: "breakfast"},
			{Period: "lunch"},
			{Period: "dinner"},
		},
		PeakHours: []HourStats{},
	}

	var completedSum float64
	periodSums := make([]float64, 3)
	hourCounts := make(map[int]int)

	for _, sample := range samples {
		hourCounts[sample.StartHour]++

		if sample.Status != "completed" {
			continue
		}
		report.CompletedCount++
		completedSum += sample.ActualMinutes

		idx := s.mealPeriodIndex(sample.StartHour)
		report.MealPeriods[idx].Completed++
		periodSums[idx] += sample.ActualMinutes
	}

	if report.CompletedCount > 0 {
		report.OverallAvgMinutes = round1(completedSum / float64(report.CompletedCount))
	}
	for i := range report.MealPeriods {
		if report.MealPeriods[i].Completed > 0 {
			report.MealPeriods[i].AvgTurnMinutes = round1(periodSums[i] / float64(report.MealPeriods[i].Completed))
		}
	}

	for hour, count := range hourCounts {
		report.PeakHours = append(report.PeakHours, HourStats{Hour: hour, Reservations: count})
	}
	// Busiest first; hour ascending for equal load keeps output stable.
	sort.Slice(report.PeakHours, func(i, j int) bool {
		if report.PeakHours[i].Reservations != report.PeakHours[j].Reservations {
			return report.PeakHours[i].Reservations > report.PeakHours[j].Reservations
		}
		return report.PeakHours[i].Hour < report.PeakHours[j].Hour
	})
	if len(report.PeakHours) > 5 {
		report.PeakHours = report.PeakHours[:5]
	}

	return report
}

func (s *service) mealPeriodIndex(hour int) int {
	switch {
	case hour < s.cfg.BreakfastEndHour:
		return 0
	case hour < s.cfg.LunchEndHour:
		return 1
	default:
		return 2
	}
}

func buildPartySizeReport(venueID, date string, samples []reservationSample) *PartySizeReport {
	report := &PartySizeReport{
		VenueID: venueID,
		Date:    date,
		Buckets: []PartySizeBucket{
			{Label: "1-2", MinSize: 1, MaxSize: 2},
			{Label: "3-4", MinSize: 3, MaxSize: 4},
			{Label: "5-6", MinSize: 5, MaxSize: 6},
			{Label: "7+", MinSize: 7, MaxSize: 0},
		},
	}

	sums := make([]float64, len(report.Buckets))
	for _, sample := range samples {
		report.TotalReservations++
		idx := bucketIndex(report.Buckets, sample.PartySize)
		report.Buckets[idx].Reservations++
		sums[idx] += sample.ActualMinutes
	}

	for i := range report.Buckets {
		bucket := &report.Buckets[i]
		if report.TotalReservations > 0 {
			bucket.SharePercent = round1(float64(bucket.Reservations) * 100 / float64(report.TotalReservations))
		}
		if bucket.Reservations > 0 {
			bucket.AvgTurnMinutes = round1(sums[i] / float64(bucket.Reservations))
		}
	}

	return report
}

func bucketIndex(buckets []PartySizeBucket, partySize int) int {
	for i, bucket := range buckets {
		if partySize >= bucket.MinSize && (bucket.MaxSize == 0 || partySize <= bucket.MaxSize) {
			return i
		}
	}
	return len(buckets) - 1
}

func dayBounds(date string) (time.Time, time.Time, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.Validation("invalid date %q, expected YYYY-MM-DD", date)
	}
	start := day.UTC()
	return start, start.Add(24 * time.Hour), nil
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
