package service

import (
	"context"
	"fmt"

	"mise/internal/bookings/repository"
	apperrors "mise/pkg/errors"
	"mise/pkg/model"
)

// MinutesOverlap is the engine's single overlap rule for intra-day time
// windows: half-open ranges [a1,a2) and [b1,b2) conflict iff a1 < b2 and
// a2 > b1. A booking ending at minute M never conflicts with one starting at M.
func MinutesOverlap(a1, a2, b1, b2 int) bool {
	return a1 < b2 && a2 > b1
}

// DatesOverlap applies the same rule to whole-day ranges with exclusive end
// dates, compared lexicographically in the canonical YYYY-MM-DD form.
func DatesOverlap(aStart, aEnd, bStart, bEnd string) bool {
	return aStart < bEnd && aEnd > bStart
}

// ConflictDetector is the sole authority on reservation conflicts. Every
// write path runs its checks inside the same store transaction that performs
// the insert; nothing else in the engine decides what counts as a clash.
type ConflictDetector struct {
	repo repository.ReservationRepository
}

func NewConflictDetector(repo repository.ReservationRepository) *ConflictDetector {
	return &ConflictDetector{repo: repo}
}

// CheckKitchen returns SlotUnavailable when any active reservation overlaps
// the requested window on the given date.
func (d *ConflictDetector) CheckKitchen(ctx context.Context, resourceID, date string, startMinute, endMinute int, excludeID string) error {
	conflicts, err := d.repo.FindOverlappingReservations(ctx, resourceID, date, startMinute, endMinute, excludeID)
	if err != nil {
		return apperrors.Internal("Failed to check for conflicting reservations", err)
	}
	if len(conflicts) > 0 {
		c := conflicts[0]
		return apperrors.SlotUnavailable(fmt.Sprintf(
			"Kitchen is already reserved on %s from %s to %s",
			date, model.MinuteLabel(c.StartMinute), model.MinuteLabel(c.EndMinute),
		))
	}
	return nil
}

// CheckStorage returns SlotUnavailable when any active storage reservation
// overlaps the requested date range.
func (d *ConflictDetector) CheckStorage(ctx context.Context, storageID, startDate, endDate, excludeID string) error {
	conflicts, err := d.repo.FindOverlappingStorage(ctx, storageID, startDate, endDate, excludeID)
	if err != nil {
		return apperrors.Internal("Failed to check for conflicting storage reservations", err)
	}
	if len(conflicts) > 0 {
		c := conflicts[0]
		return apperrors.SlotUnavailable(fmt.Sprintf(
			"Storage unit is already reserved from %s to %s", c.StartDate, c.EndDate,
		))
	}
	return nil
}

// CheckEquipment returns SlotUnavailable when any active equipment
// reservation overlaps the requested date range. Each equipment listing is a
// single physical unit, so one active reservation per day is the limit.
func (d *ConflictDetector) CheckEquipment(ctx context.Context, equipmentID, startDate, endDate, excludeID string) error {
	conflicts, err := d.repo.FindOverlappingEquipment(ctx, equipmentID, startDate, endDate, excludeID)
	if err != nil {
		return apperrors.Internal("Failed to check for conflicting equipment reservations", err)
	}
	if len(conflicts) > 0 {
		c := conflicts[0]
		return apperrors.SlotUnavailable(fmt.Sprintf(
			"Equipment is already reserved from %s to %s", c.StartDate, c.EndDate,
		))
	}
	return nil
}
