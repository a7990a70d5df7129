package service

import (
	"context"
	"errors"
	"sync"

	"github.com/go-playground/validator/v10"

	listingserrors "mise/internal/listings/errors"
	"mise/internal/listings/repository"
	"mise/pkg/config"
	apperrors "mise/pkg/errors"
	"mise/pkg/model"
	"mise/pkg/sanitizer"
)

type ListingService interface {
	CreateKitchen(ctx context.Context, listing *model.KitchenListing) error
	GetKitchen(ctx context.Context, id string) (*model.KitchenListing, error)
	ListKitchens(ctx context.Context, city string, limit int, offset int64) ([]*model.KitchenListing, int64, error)

	CreateStorage(ctx context.Context, listing *model.StorageListing) error
	ListStorageByKitchen(ctx context.Context, kitchenID string) ([]*model.StorageListing, error)

	CreateEquipment(ctx context.Context, listing *model.EquipmentListing) error
	ListEquipmentByKitchen(ctx context.Context, kitchenID string) ([]*model.EquipmentListing, error)
}

type listingService struct {
	repo     repository.ListingRepository
	validate *validator.Validate
	cfg      *config.Config
}

func NewListingService(repo repository.ListingRepository, cfg *config.Config) ListingService {
	return &listingService{
		repo:     repo,
		validate: validator.New(),
		cfg:      cfg,
	}
}

func (s *listingService) CreateKitchen(ctx context.Context, listing *model.KitchenListing) error {
	listing.Name = sanitizer.NormalizeName(listing.Name)
	listing.City = sanitizer.NormalizeCity(listing.City)
	listing.Address = sanitizer.TrimAndNormalize(listing.Address)
	listing.Currency = sanitizer.NormalizeCurrency(listing.Currency)
	if listing.Currency == "" {
		listing.Currency = s.cfg.Currency
	}

	if err := s.validate.Struct(listing); err != nil {
		s.cfg.Log.Warn("Kitchen listing validation failed", "error", err)
		return apperrors.Validation("Invalid kitchen listing", map[string]any{"error": err.Error()})
	}

	if err := s.repo.CreateKitchen(ctx, listing); err != nil {
		s.cfg.Log.Error("Failed to create kitchen listing", "error", err)
		return apperrors.Internal("Failed to create kitchen listing", err)
	}

	s.cfg.Log.Info("Kitchen listing created", "id", listing.ID, "manager_id", listing.ManagerID, "city", listing.City)
	return nil
}

func (s *listingService) GetKitchen(ctx context.Context, id string) (*model.KitchenListing, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Kitchen ID cannot be empty")
	}

	listing, err := s.repo.FindKitchenByID(ctx, id)
	if err != nil {
		if errors.Is(err, listingserrors.ErrNotFound) {
			return nil, apperrors.ResourceNotFound("Kitchen", id)
		}
		if errors.Is(err, listingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid kitchen ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve kitchen listing", err)
	}
	return listing, nil
}

func (s *listingService) ListKitchens(ctx context.Context, city string, limit int, offset int64) ([]*model.KitchenListing, int64, error) {
	city = sanitizer.NormalizeCity(city)

	var count int64
	var listings []*model.KitchenListing
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountKitchens(ctx, city)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count kitchen listings", "error", errCount)
			errCount = apperrors.Internal("Failed to count kitchen listings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		listings, errFind = s.repo.FindKitchens(ctx, city, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list kitchen listings", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve kitchen listings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return listings, count, nil
}

func (s *listingService) CreateStorage(ctx context.Context, listing *model.StorageListing) error {
	listing.Name = sanitizer.NormalizeName(listing.Name)

	if err := s.validate.Struct(listing); err != nil {
		s.cfg.Log.Warn("Storage listing validation failed", "error", err)
		return apperrors.Validation("Invalid storage listing", map[string]any{"error": err.Error()})
	}

	if _, err := s.GetKitchen(ctx, listing.KitchenID); err != nil {
		return err
	}

	if err := s.repo.CreateStorage(ctx, listing); err != nil {
		s.cfg.Log.Error("Failed to create storage listing", "kitchen_id", listing.KitchenID, "error", err)
		return apperrors.Internal("Failed to create storage listing", err)
	}

	s.cfg.Log.Info("Storage listing created", "id", listing.ID, "kitchen_id", listing.KitchenID, "storage_type", listing.StorageType)
	return nil
}

func (s *listingService) ListStorageByKitchen(ctx context.Context, kitchenID string) ([]*model.StorageListing, error) {
	if kitchenID == "" {
		return nil, apperrors.InvalidInput("Kitchen ID cannot be empty")
	}

	listings, err := s.repo.FindStorageByKitchen(ctx, kitchenID)
	if err != nil {
		s.cfg.Log.Error("Failed to list storage listings", "kitchen_id", kitchenID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve storage listings", err)
	}
	return listings, nil
}

func (s *listingService) CreateEquipment(ctx context.Context, listing *model.EquipmentListing) error {
	listing.Name = sanitizer.NormalizeName(listing.Name)

	if err := s.validate.Struct(listing); err != nil {
		s.cfg.Log.Warn("Equipment listing validation failed", "error", err)
		return apperrors.Validation("Invalid equipment listing", map[string]any{"error": err.Error()})
	}

	if listing.AvailabilityType == model.EquipmentIncluded && (listing.SessionRateCents > 0 || listing.DamageDepositCents > 0) {
		return apperrors.Validation("Included equipment cannot carry a session rate or deposit", nil)
	}

	if _, err := s.GetKitchen(ctx, listing.KitchenID); err != nil {
		return err
	}

	if err := s.repo.CreateEquipment(ctx, listing); err != nil {
		s.cfg.Log.Error("Failed to create equipment listing", "kitchen_id", listing.KitchenID, "error", err)
		return apperrors.Internal("Failed to create equipment listing", err)
	}

	s.cfg.Log.Info("Equipment listing created", "id", listing.ID, "kitchen_id", listing.KitchenID, "availability_type", listing.AvailabilityType)
	return nil
}

func (s *listingService) ListEquipmentByKitchen(ctx context.Context, kitchenID string) ([]*model.EquipmentListing, error) {
	if kitchenID == "" {
		return nil, apperrors.InvalidInput("Kitchen ID cannot be empty")
	}

	listings, err := s.repo.FindEquipmentByKitchen(ctx, kitchenID)
	if err != nil {
		s.cfg.Log.Error("Failed to list equipment listings", "kitchen_id", kitchenID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve equipment listings", err)
	}
	return listings, nil
}
