package outlet

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"ms-linkmarket/internal/apperrors"
	"ms-linkmarket/internal/logger"
	"ms-linkmarket/internal/models"
)

const marketplaceCacheKey = "marketplace:browse"
const marketplaceCacheTTL = 60 * time.Second

type DBLayer interface {
	GetOutletByID(id string) (*models.MediaOutlet, error)
	UpdateOutlet(outlet models.MediaOutlet) error
	GetPendingOutlets() ([]models.MediaOutlet, error)
	QueryMarketplace(filter models.MarketplaceFilter) ([]models.MediaOutlet, error)
	GetListingByOutlet(outletID string) (*models.Listing, error)
	UpdateListing(listing models.Listing) error
}

// OutletService covers admin review and publisher listing management on top
// of the records the import pipeline creates.
type OutletService struct {
	DB     DBLayer
	Redis  *redis.Client
	logger *logger.Logger
}

func NewOutletService(db DBLayer, redisClient *redis.Client, log *logger.Logger) *OutletService {
	return &OutletService{DB: db, Redis: redisClient, logger: log}
}

// PendingOutlets returns the admin review queue.
func (s *OutletService) PendingOutlets(actor models.Actor) ([]models.MediaOutlet, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: review queue is admin-only", apperrors.ErrPermissionDenied)
	}
	outlets, err := s.DB.GetPendingOutlets()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrPersistence, err)
	}
	return outlets, nil
}

// Approve moves a pending outlet to approved, sets the selling price as the
// purchase price plus the admin's margin, and activates outlet and listing.
func (s *OutletService) Approve(actor models.Actor, outletID string, sellingPrice float64) (*models.MediaOutlet, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: only admins review outlets", apperrors.ErrPermissionDenied)
	}
	if sellingPrice <= 0 {
		return nil, fmt.Errorf("selling price must be positive, got %f", sellingPrice)
	}

	outlet, err := s.loadOutlet(outletID)
	if err != nil {
		return nil, err
	}
	if outlet.Status != models.OutletStatusPending {
		return nil, fmt.Errorf("%w: outlet %s is %s, not pending", apperrors.ErrInvalidTransition, outletID, outlet.Status)
	}

	outlet.Status = models.OutletStatusApproved
	outlet.Price = &sellingPrice
	outlet.IsActive = true

	if err := s.DB.UpdateOutlet(*outlet); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrPersistence, err)
	}

	if listing, err := s.DB.GetListingByOutlet(outletID); err == nil {
		listing.IsActive = true
		listing.UpdatedAt = time.Now()
		if err := s.DB.UpdateListing(*listing); err != nil {
			s.logger.Error("OUTLET", fmt.Sprintf("failed to activate listing for outlet %s: %v", outletID, err))
		}
	}

	s.invalidateMarketplaceCache()
	s.logger.Info("OUTLET", fmt.Sprintf("outlet %s approved by %s at %.2f %s", outletID, actor.ID, sellingPrice, outlet.Currency))
	return outlet, nil
}

// Reject marks a pending outlet rejected. The row is kept for the audit
// trail; it never becomes orderable.
func (s *OutletService) Reject(actor models.Actor, outletID string) (*models.MediaOutlet, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: only admins review outlets", apperrors.ErrPermissionDenied)
	}

	outlet, err := s.loadOutlet(outletID)
	if err != nil {
		return nil, err
	}
	if outlet.Status != models.OutletStatusPending {
		return nil, fmt.Errorf("%w: outlet %s is %s, not pending", apperrors.ErrInvalidTransition, outletID, outlet.Status)
	}

	outlet.Status = models.OutletStatusRejected
	outlet.IsActive = false

	if err := s.DB.UpdateOutlet(*outlet); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrPersistence, err)
	}

	s.logger.Info("OUTLET", fmt.Sprintf("outlet %s rejected by %s", outletID, actor.ID))
	return outlet, nil
}

// SetActive lets the owning publisher (or an admin) pause and resume an
// approved outlet's listing.
func (s *OutletService) SetActive(actor models.Actor, outletID string, active bool) (*models.MediaOutlet, error) {
	outlet, err := s.loadOutlet(outletID)
	if err != nil {
		return nil, err
	}

	if !actor.IsAdmin() {
		if !actor.HasRole(models.RolePublisher) || outlet.PublisherID != actor.ID {
			return nil, fmt.Errorf("%w: outlet %s does not belong to caller", apperrors.ErrPermissionDenied, outletID)
		}
	}
	if outlet.Status != models.OutletStatusApproved {
		return nil, fmt.Errorf("%w: only approved outlets can be toggled", apperrors.ErrInvalidTransition)
	}

	outlet.IsActive = active
	if err := s.DB.UpdateOutlet(*outlet); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrPersistence, err)
	}

	if listing, err := s.DB.GetListingByOutlet(outletID); err == nil {
		listing.IsActive = active
		listing.UpdatedAt = time.Now()
		if err := s.DB.UpdateListing(*listing); err != nil {
			s.logger.Error("OUTLET", fmt.Sprintf("failed to toggle listing for outlet %s: %v", outletID, err))
		}
	}

	s.invalidateMarketplaceCache()
	return outlet, nil
}

// Browse returns marketplace outlets for a filter. The unfiltered view is
// cached in Redis for a minute since it backs the default marketplace page.
func (s *OutletService) Browse(filter models.MarketplaceFilter) ([]models.MediaOutlet, error) {
	cacheable := filter == (models.MarketplaceFilter{})

	if cacheable && s.Redis != nil {
		if cached, err := s.Redis.Get(context.Background(), marketplaceCacheKey).Result(); err == nil {
			var outlets []models.MediaOutlet
			if err := json.Unmarshal([]byte(cached), &outlets); err == nil {
				return outlets, nil
			}
		}
	}

	outlets, err := s.DB.QueryMarketplace(filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrPersistence, err)
	}

	if cacheable && s.Redis != nil {
		if data, err := json.Marshal(outlets); err == nil {
			if err := s.Redis.Set(context.Background(), marketplaceCacheKey, data, marketplaceCacheTTL).Err(); err != nil {
				s.logger.Warn("REDIS", fmt.Sprintf("marketplace cache write failed: %v", err))
			}
		}
	}

	return outlets, nil
}

func (s *OutletService) invalidateMarketplaceCache() {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(context.Background(), marketplaceCacheKey).Err(); err != nil {
		s.logger.Warn("REDIS", fmt.Sprintf("marketplace cache invalidation failed: %v", err))
	}
}

func (s *OutletService) loadOutlet(id string) (*models.MediaOutlet, error) {
	outlet, err := s.DB.GetOutletByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: outlet %s", apperrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrPersistence, err)
	}
	return outlet, nil
}
