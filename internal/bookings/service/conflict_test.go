package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	apperrors "mise/pkg/errors"
	"mise/pkg/model"
)

func TestMinutesOverlap(t *testing.T) {
	tests := []struct {
		name           string
		a1, a2, b1, b2 int
		expected       bool
	}{
		{"identical windows", 540, 600, 540, 600, true},
		{"contained window", 540, 720, 600, 660, true},
		{"partial overlap left", 540, 630, 600, 720, true},
		{"partial overlap right", 600, 720, 540, 630, true},
		{"touching at boundary does not overlap", 540, 600, 600, 660, false},
		{"touching at boundary reversed", 600, 660, 540, 600, false},
		{"fully disjoint", 540, 600, 720, 780, false},
		{"one minute of overlap", 540, 601, 600, 660, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MinutesOverlap(tt.a1, tt.a2, tt.b1, tt.b2); got != tt.expected {
				t.Errorf("MinutesOverlap(%d, %d, %d, %d) = %v, expected %v",
					tt.a1, tt.a2, tt.b1, tt.b2, got, tt.expected)
			}
			// The rule is symmetric in its two windows.
			if got := MinutesOverlap(tt.b1, tt.b2, tt.a1, tt.a2); got != tt.expected {
				t.Errorf("MinutesOverlap(%d, %d, %d, %d) = %v, expected %v",
					tt.b1, tt.b2, tt.a1, tt.a2, got, tt.expected)
			}
		})
	}
}

func TestDatesOverlap(t *testing.T) {
	tests := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd string
		expected                   bool
	}{
		{"identical ranges", "2025-06-01", "2025-06-10", "2025-06-01", "2025-06-10", true},
		{"contained range", "2025-06-01", "2025-06-30", "2025-06-10", "2025-06-12", true},
		{"end date is exclusive", "2025-06-01", "2025-06-10", "2025-06-10", "2025-06-20", false},
		{"end date is exclusive reversed", "2025-06-10", "2025-06-20", "2025-06-01", "2025-06-10", false},
		{"single day of overlap", "2025-06-01", "2025-06-11", "2025-06-10", "2025-06-20", true},
		{"disjoint ranges", "2025-06-01", "2025-06-05", "2025-06-20", "2025-06-25", false},
		{"month boundary", "2025-06-28", "2025-07-02", "2025-07-01", "2025-07-05", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DatesOverlap(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd); got != tt.expected {
				t.Errorf("DatesOverlap(%s, %s, %s, %s) = %v, expected %v",
					tt.aStart, tt.aEnd, tt.bStart, tt.bEnd, got, tt.expected)
			}
		})
	}
}

func TestCheckKitchen(t *testing.T) {
	ctx := context.Background()

	t.Run("no conflicts", func(t *testing.T) {
		repo := newMockReservationRepository()
		repo.findOverlappingReservationsFn = func(ctx context.Context, resourceID, date string, startMinute, endMinute int, excludeID string) ([]*model.Reservation, error) {
			return nil, nil
		}

		detector := NewConflictDetector(repo)
		if err := detector.CheckKitchen(ctx, testKitchenID, "2025-06-10", 540, 600, ""); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("overlapping reservation", func(t *testing.T) {
		repo := newMockReservationRepository()
		repo.findOverlappingReservationsFn = func(ctx context.Context, resourceID, date string, startMinute, endMinute int, excludeID string) ([]*model.Reservation, error) {
			return []*model.Reservation{
				{ResourceID: resourceID, Date: date, StartMinute: 570, EndMinute: 660, Status: model.StatusConfirmed},
			}, nil
		}

		detector := NewConflictDetector(repo)
		err := detector.CheckKitchen(ctx, testKitchenID, "2025-06-10", 540, 600, "")
		if !apperrors.IsCode(err, apperrors.CodeSlotUnavailable) {
			t.Fatalf("expected SlotUnavailable, got %v", err)
		}
		if !strings.Contains(err.Error(), "09:30") {
			t.Errorf("expected conflict message to name the occupied window, got %q", err.Error())
		}
	})

	t.Run("store error is internal", func(t *testing.T) {
		repo := newMockReservationRepository()
		repo.findOverlappingReservationsFn = func(ctx context.Context, resourceID, date string, startMinute, endMinute int, excludeID string) ([]*model.Reservation, error) {
			return nil, errors.New("connection reset")
		}

		detector := NewConflictDetector(repo)
		err := detector.CheckKitchen(ctx, testKitchenID, "2025-06-10", 540, 600, "")
		if !apperrors.IsCode(err, apperrors.CodeInternal) {
			t.Fatalf("expected Internal, got %v", err)
		}
	})
}

func TestCheckStorage(t *testing.T) {
	ctx := context.Background()

	t.Run("no conflicts", func(t *testing.T) {
		repo := newMockReservationRepository()
		repo.findOverlappingStorageFn = func(ctx context.Context, storageID, startDate, endDate, excludeID string) ([]*model.StorageReservation, error) {
			return nil, nil
		}

		detector := NewConflictDetector(repo)
		if err := detector.CheckStorage(ctx, testStorageID, "2025-06-01", "2025-06-10", ""); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("overlapping storage reservation", func(t *testing.T) {
		repo := newMockReservationRepository()
		repo.findOverlappingStorageFn = func(ctx context.Context, storageID, startDate, endDate, excludeID string) ([]*model.StorageReservation, error) {
			return []*model.StorageReservation{
				{StorageID: storageID, StartDate: "2025-06-05", EndDate: "2025-06-15", Status: model.StatusConfirmed},
			}, nil
		}

		detector := NewConflictDetector(repo)
		err := detector.CheckStorage(ctx, testStorageID, "2025-06-01", "2025-06-10", "")
		if !apperrors.IsCode(err, apperrors.CodeSlotUnavailable) {
			t.Fatalf("expected SlotUnavailable, got %v", err)
		}
	})

	t.Run("store error is internal", func(t *testing.T) {
		repo := newMockReservationRepository()
		repo.findOverlappingStorageFn = func(ctx context.Context, storageID, startDate, endDate, excludeID string) ([]*model.StorageReservation, error) {
			return nil, errors.New("connection reset")
		}

		detector := NewConflictDetector(repo)
		err := detector.CheckStorage(ctx, testStorageID, "2025-06-01", "2025-06-10", "")
		if !apperrors.IsCode(err, apperrors.CodeInternal) {
			t.Fatalf("expected Internal, got %v", err)
		}
	})
}

func TestCheckEquipment(t *testing.T) {
	ctx := context.Background()

	t.Run("no conflicts", func(t *testing.T) {
		repo := newMockReservationRepository()
		repo.findOverlappingEquipmentFn = func(ctx context.Context, equipmentID, startDate, endDate, excludeID string) ([]*model.EquipmentReservation, error) {
			return nil, nil
		}

		detector := NewConflictDetector(repo)
		if err := detector.CheckEquipment(ctx, testRentalID, "2025-06-10", "2025-06-11", ""); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("overlapping equipment reservation", func(t *testing.T) {
		repo := newMockReservationRepository()
		repo.findOverlappingEquipmentFn = func(ctx context.Context, equipmentID, startDate, endDate, excludeID string) ([]*model.EquipmentReservation, error) {
			return []*model.EquipmentReservation{
				{EquipmentID: equipmentID, StartDate: "2025-06-10", EndDate: "2025-06-11", Status: model.StatusPending},
			}, nil
		}

		detector := NewConflictDetector(repo)
		err := detector.CheckEquipment(ctx, testRentalID, "2025-06-10", "2025-06-11", "")
		if !apperrors.IsCode(err, apperrors.CodeSlotUnavailable) {
			t.Fatalf("expected SlotUnavailable, got %v", err)
		}
		if !strings.Contains(err.Error(), "2025-06-10") {
			t.Errorf("expected conflict message to name the occupied range, got %q", err.Error())
		}
	})

	t.Run("store error is internal", func(t *testing.T) {
		repo := newMockReservationRepository()
		repo.findOverlappingEquipmentFn = func(ctx context.Context, equipmentID, startDate, endDate, excludeID string) ([]*model.EquipmentReservation, error) {
			return nil, errors.New("connection reset")
		}

		detector := NewConflictDetector(repo)
		err := detector.CheckEquipment(ctx, testRentalID, "2025-06-10", "2025-06-11", "")
		if !apperrors.IsCode(err, apperrors.CodeInternal) {
			t.Fatalf("expected Internal, got %v", err)
		}
	})
}
