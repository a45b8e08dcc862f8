package db

import (
	"context"
	"database/sql"
	"errors"
	"ms-linkmarket/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

// ---------------- OUTLETS ----------------

// CreateOutlet → insert a new outlet row
func (d *DB) CreateOutlet(outlet models.MediaOutlet) error {
	_, err := d.Bun.NewInsert().Model(&outlet).Exec(context.Background())
	return err
}

// GetOutletByID → fetch one outlet by its ID
func (d *DB) GetOutletByID(id string) (*models.MediaOutlet, error) {
	var outlet models.MediaOutlet
	err := d.Bun.NewSelect().
		Model(&outlet).
		Where("outlet_id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &outlet, nil
}

// FindOutletByDomain → look up an outlet by its normalized domain. Returns
// (nil, nil) when no outlet exists so callers can distinguish "absent" from
// a lookup failure.
func (d *DB) FindOutletByDomain(domain string) (*models.MediaOutlet, error) {
	var outlet models.MediaOutlet
	err := d.Bun.NewSelect().
		Model(&outlet).
		Where("lower(domain) = lower(?)", domain).
		Limit(1).
		Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &outlet, nil
}

// UpdateOutlet → update admin/publisher editable fields
func (d *DB) UpdateOutlet(outlet models.MediaOutlet) error {
	_, err := d.Bun.NewUpdate().
		Model(&outlet).
		Column("price", "status", "is_active").
		Where("outlet_id = ?", outlet.OutletID).
		Exec(context.Background())
	return err
}

// DeleteOutlet → compensating delete used when listing creation fails
func (d *DB) DeleteOutlet(id string) error {
	_, err := d.Bun.NewDelete().
		Model((*models.MediaOutlet)(nil)).
		Where("outlet_id = ?", id).
		Exec(context.Background())
	return err
}

// GetPendingOutlets → the admin review queue, oldest first
func (d *DB) GetPendingOutlets() ([]models.MediaOutlet, error) {
	var outlets []models.MediaOutlet
	err := d.Bun.NewSelect().
		Model(&outlets).
		Where("status = ?", models.OutletStatusPending).
		Order("submitted_at ASC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return outlets, nil
}

// QueryMarketplace → approved, active outlets matching the filter
func (d *DB) QueryMarketplace(filter models.MarketplaceFilter) ([]models.MediaOutlet, error) {
	q := d.Bun.NewSelect().
		Model((*models.MediaOutlet)(nil)).
		Where("status = ?", models.OutletStatusApproved).
		Where("is_active = ?", true)

	if filter.Country != "" {
		q = q.Where("country = ?", filter.Country)
	}
	if filter.Language != "" {
		q = q.Where("language = ?", filter.Language)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.MinPrice != nil {
		q = q.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		q = q.Where("price <= ?", *filter.MaxPrice)
	}

	order := "submitted_at"
	switch filter.SortBy {
	case "price":
		order = "price"
	case "domain":
		order = "domain"
	}
	if filter.SortDesc {
		order += " DESC"
	} else {
		order += " ASC"
	}

	var outlets []models.MediaOutlet
	if err := q.Order(order).Scan(context.Background(), &outlets); err != nil {
		return nil, err
	}
	return outlets, nil
}

// ---------------- METRICS ----------------

// CreateMetrics → insert the 1:1 metrics row for an outlet
func (d *DB) CreateMetrics(metrics models.OutletMetrics) error {
	_, err := d.Bun.NewInsert().Model(&metrics).Exec(context.Background())
	return err
}

// GetMetricsByOutlet → fetch the metrics row for an outlet
func (d *DB) GetMetricsByOutlet(outletID string) (*models.OutletMetrics, error) {
	var metrics models.OutletMetrics
	err := d.Bun.NewSelect().
		Model(&metrics).
		Where("outlet_id = ?", outletID).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &metrics, nil
}

// ---------------- LISTINGS ----------------

// CreateListing → insert the marketplace listing row for an outlet
func (d *DB) CreateListing(listing models.Listing) error {
	_, err := d.Bun.NewInsert().Model(&listing).Exec(context.Background())
	return err
}

// GetListingByOutlet → fetch the listing row for an outlet
func (d *DB) GetListingByOutlet(outletID string) (*models.Listing, error) {
	var listing models.Listing
	err := d.Bun.NewSelect().
		Model(&listing).
		Where("outlet_id = ?", outletID).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

// UpdateListing → flip the listing's active flag
func (d *DB) UpdateListing(listing models.Listing) error {
	_, err := d.Bun.NewUpdate().
		Model(&listing).
		Column("is_active", "updated_at").
		Where("listing_id = ?", listing.ListingID).
		Exec(context.Background())
	return err
}

// ---------------- NICHES ----------------

// GetNicheByID → fetch one niche by its ID
func (d *DB) GetNicheByID(id string) (*models.Niche, error) {
	var niche models.Niche
	err := d.Bun.NewSelect().
		Model(&niche).
		Where("niche_id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &niche, nil
}
