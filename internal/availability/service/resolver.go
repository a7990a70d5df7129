package service

import (
	"context"
	"errors"
	"sort"

	availabilityerrors "mise/internal/availability/errors"
	availabilityrepo "mise/internal/availability/repository"
	"mise/internal/availability/validator"
	"mise/pkg/config"
	apperrors "mise/pkg/errors"
	"mise/pkg/model"
)

// ReservationFinder is the slice of the reservation store the resolver needs:
// active (non-cancelled) kitchen reservations for one resource and date.
type ReservationFinder interface {
	FindActiveByResourceDate(ctx context.Context, resourceID, date string) ([]*model.Reservation, error)
}

type AvailabilityService interface {
	ResolveOpenRanges(ctx context.Context, resourceID, date string) ([]model.OpenRange, error)
	GenerateSlots(ctx context.Context, resourceID, date string, durationMinutes int) ([]model.Slot, error)
	ReplaceWeeklySchedule(ctx context.Context, resourceID string, entries []model.WeeklyAvailability) error
	SetOverride(ctx context.Context, override *model.DateOverride) error
	RemoveOverride(ctx context.Context, resourceID, date string) error
}

type availabilityService struct {
	repo         availabilityrepo.ScheduleRepository
	reservations ReservationFinder
	cache        *SlotCache
	validator    *validator.ScheduleValidator
	cfg          *config.Config
}

func NewAvailabilityService(
	repo availabilityrepo.ScheduleRepository,
	reservations ReservationFinder,
	cache *SlotCache,
	scheduleValidator *validator.ScheduleValidator,
	cfg *config.Config,
) AvailabilityService {
	return &availabilityService{
		repo:         repo,
		reservations: reservations,
		cache:        cache,
		validator:    scheduleValidator,
		cfg:          cfg,
	}
}

// ResolveOpenRanges computes the bookable minute ranges for one resource and
// date: a date override supersedes the weekly schedule entirely, a closed
// override or missing schedule yields no ranges, and active reservations are
// subtracted from whatever remains. Store failures propagate as errors rather
// than degrading to an open calendar.
func (s *availabilityService) ResolveOpenRanges(ctx context.Context, resourceID, date string) ([]model.OpenRange, error) {
	if !model.IsValidDate(date) {
		return nil, apperrors.InvalidDateRange("date must be formatted as YYYY-MM-DD")
	}

	base, err := s.baseRanges(ctx, resourceID, date)
	if err != nil {
		return nil, err
	}
	if len(base) == 0 {
		return []model.OpenRange{}, nil
	}

	booked, err := s.bookedRanges(ctx, resourceID, date)
	if err != nil {
		return nil, err
	}

	open := subtractRanges(base, booked)
	for i := range open {
		open[i].Label = model.MinuteLabel(open[i].StartMinute) + " - " + model.MinuteLabel(open[i].EndMinute)
	}
	return open, nil
}

// GenerateSlots lists discrete start times of the configured granularity that
// fit a booking of durationMinutes entirely inside the schedule and clear of
// every active reservation. Candidate starts are anchored to the
// midnight-based granularity grid of the schedule ranges, never to
// reservation boundaries, so an off-grid reservation thins out slots without
// shifting the ones around it. Results are served from the slot cache when
// present; the cache is advisory and every cache failure falls through to a
// fresh computation.
func (s *availabilityService) GenerateSlots(ctx context.Context, resourceID, date string, durationMinutes int) ([]model.Slot, error) {
	if durationMinutes <= 0 {
		return nil, apperrors.InvalidInput("duration must be positive")
	}
	if !model.IsValidDate(date) {
		return nil, apperrors.InvalidDateRange("date must be formatted as YYYY-MM-DD")
	}

	if s.cache != nil {
		if slots, ok := s.cache.Get(ctx, resourceID, date, durationMinutes); ok {
			return slots, nil
		}
	}

	base, err := s.baseRanges(ctx, resourceID, date)
	if err != nil {
		return nil, err
	}

	slots := []model.Slot{}
	if len(base) > 0 {
		booked, err := s.bookedRanges(ctx, resourceID, date)
		if err != nil {
			return nil, err
		}

		granularity := s.cfg.SlotGranularityMin
		for _, r := range base {
			for start := alignUp(r.StartMinute, granularity); start+durationMinutes <= r.EndMinute; start += granularity {
				if overlapsAny(start, start+durationMinutes, booked) {
					continue
				}
				slots = append(slots, model.Slot{
					Date:        date,
					StartMinute: start,
					EndMinute:   start + durationMinutes,
					Label:       model.MinuteLabel(start),
				})
			}
		}
	}

	if s.cache != nil {
		s.cache.Set(ctx, resourceID, date, durationMinutes, slots)
	}
	return slots, nil
}

// alignUp rounds minute up to the next multiple of granularity.
func alignUp(minute, granularity int) int {
	if rem := minute % granularity; rem != 0 {
		return minute + granularity - rem
	}
	return minute
}

// overlapsAny reports whether the half-open window [start, end) intersects
// any of the given merged ranges.
func overlapsAny(start, end int, ranges []model.OpenRange) bool {
	for _, r := range ranges {
		if start < r.EndMinute && end > r.StartMinute {
			return true
		}
	}
	return false
}

func (s *availabilityService) ReplaceWeeklySchedule(ctx context.Context, resourceID string, entries []model.WeeklyAvailability) error {
	if err := s.validator.ValidateWeekly(entries); err != nil {
		s.cfg.Log.Warn("Weekly schedule validation failed", "resource_id", resourceID, "error", err)
		return apperrors.Validation("Invalid weekly schedule", map[string]any{"error": err.Error()})
	}

	if err := s.repo.ReplaceWeekly(ctx, resourceID, entries); err != nil {
		if errors.Is(err, availabilityerrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid resource ID format")
		}
		s.cfg.Log.Error("Failed to replace weekly schedule", "resource_id", resourceID, "error", err)
		return apperrors.Internal("Failed to store weekly schedule", err)
	}

	if s.cache != nil {
		s.cache.InvalidateResource(ctx, resourceID)
	}
	s.cfg.Log.Info("Weekly schedule replaced", "resource_id", resourceID, "entries", len(entries))
	return nil
}

func (s *availabilityService) SetOverride(ctx context.Context, override *model.DateOverride) error {
	if err := s.validator.ValidateOverride(override); err != nil {
		s.cfg.Log.Warn("Date override validation failed", "resource_id", override.ResourceID, "date", override.Date, "error", err)
		return apperrors.Validation("Invalid date override", map[string]any{"error": err.Error()})
	}

	if err := s.repo.UpsertOverride(ctx, override); err != nil {
		s.cfg.Log.Error("Failed to upsert date override", "resource_id", override.ResourceID, "date", override.Date, "error", err)
		return apperrors.Internal("Failed to store date override", err)
	}

	if s.cache != nil {
		s.cache.InvalidateResource(ctx, override.ResourceID)
	}
	s.cfg.Log.Info("Date override set", "resource_id", override.ResourceID, "date", override.Date, "closed", override.Closed)
	return nil
}

func (s *availabilityService) RemoveOverride(ctx context.Context, resourceID, date string) error {
	if !model.IsValidDate(date) {
		return apperrors.InvalidDateRange("date must be formatted as YYYY-MM-DD")
	}

	if err := s.repo.DeleteOverride(ctx, resourceID, date); err != nil {
		if errors.Is(err, availabilityerrors.ErrNotFound) {
			return apperrors.ResourceNotFound("DateOverride", resourceID+"/"+date)
		}
		s.cfg.Log.Error("Failed to delete date override", "resource_id", resourceID, "date", date, "error", err)
		return apperrors.Internal("Failed to delete date override", err)
	}

	if s.cache != nil {
		s.cache.InvalidateResource(ctx, resourceID)
	}
	return nil
}

// baseRanges returns the schedule-level open ranges before reservations are
// subtracted. Overrides win over the weekly schedule; a closed override or an
// override without hours closes the day.
func (s *availabilityService) baseRanges(ctx context.Context, resourceID, date string) ([]model.OpenRange, error) {
	override, err := s.repo.FindOverride(ctx, resourceID, date)
	if err != nil && !errors.Is(err, availabilityerrors.ErrNotFound) {
		s.cfg.Log.Error("Failed to load date override", "resource_id", resourceID, "date", date, "error", err)
		return nil, apperrors.Internal("Failed to load schedule", err)
	}

	if override != nil {
		if override.Closed || override.StartMinute == nil || override.EndMinute == nil {
			return nil, nil
		}
		if *override.StartMinute >= *override.EndMinute {
			return nil, nil
		}
		return []model.OpenRange{{StartMinute: *override.StartMinute, EndMinute: *override.EndMinute}}, nil
	}

	dayOfWeek, err := model.WeekdayOf(date)
	if err != nil {
		return nil, apperrors.InvalidDateRange("date must be formatted as YYYY-MM-DD")
	}

	entries, err := s.repo.FindWeeklyByDay(ctx, resourceID, dayOfWeek)
	if err != nil {
		s.cfg.Log.Error("Failed to load weekly availability", "resource_id", resourceID, "day_of_week", dayOfWeek, "error", err)
		return nil, apperrors.Internal("Failed to load schedule", err)
	}

	var ranges []model.OpenRange
	for _, e := range entries {
		if !e.Available || e.StartMinute >= e.EndMinute {
			continue
		}
		ranges = append(ranges, model.OpenRange{StartMinute: e.StartMinute, EndMinute: e.EndMinute})
	}
	return mergeRanges(ranges), nil
}

func (s *availabilityService) bookedRanges(ctx context.Context, resourceID, date string) ([]model.OpenRange, error) {
	reservations, err := s.reservations.FindActiveByResourceDate(ctx, resourceID, date)
	if err != nil {
		s.cfg.Log.Error("Failed to load reservations for availability", "resource_id", resourceID, "date", date, "error", err)
		return nil, apperrors.Internal("Failed to load reservations", err)
	}

	var booked []model.OpenRange
	for _, r := range reservations {
		booked = append(booked, model.OpenRange{StartMinute: r.StartMinute, EndMinute: r.EndMinute})
	}
	return mergeRanges(booked), nil
}

// mergeRanges sorts half-open ranges and coalesces overlapping or touching
// neighbours.
func mergeRanges(ranges []model.OpenRange) []model.OpenRange {
	if len(ranges) <= 1 {
		return ranges
	}

	sort.Slice(ranges, func(i, j int) bool {
		if ranges[i].StartMinute == ranges[j].StartMinute {
			return ranges[i].EndMinute < ranges[j].EndMinute
		}
		return ranges[i].StartMinute < ranges[j].StartMinute
	})

	merged := []model.OpenRange{ranges[0]}
	for _, r := range ranges[1:] {
		last := &merged[len(merged)-1]
		if r.StartMinute <= last.EndMinute {
			if r.EndMinute > last.EndMinute {
				last.EndMinute = r.EndMinute
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

// subtractRanges removes booked intervals from base intervals. Both inputs
// must be sorted and non-overlapping; the result preserves order.
func subtractRanges(base, booked []model.OpenRange) []model.OpenRange {
	result := []model.OpenRange{}
	for _, b := range base {
		start := b.StartMinute
		for _, blk := range booked {
			if blk.EndMinute <= start || blk.StartMinute >= b.EndMinute {
				continue
			}
			if blk.StartMinute > start {
				result = append(result, model.OpenRange{StartMinute: start, EndMinute: blk.StartMinute})
			}
			if blk.EndMinute > start {
				start = blk.EndMinute
			}
		}
		if start < b.EndMinute {
			result = append(result, model.OpenRange{StartMinute: start, EndMinute: b.EndMinute})
		}
	}
	return result
}
