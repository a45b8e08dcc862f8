package db

import (
	"context"
	"ms-linkmarket/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

// ---------------- ORDERS ----------------

// GetOrderByID → fetch one order by its ID
func (d *DB) GetOrderByID(id string) (*models.Order, error) {
	var order models.Order
	err := d.Bun.NewSelect().
		Model(&order).
		Where("order_id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// CreateOrder → insert new order
func (d *DB) CreateOrder(order models.Order) error {
	_, err := d.Bun.NewInsert().Model(&order).Exec(context.Background())
	return err
}

// UpdateOrderStatus → persist the status plus publication fields and updated_at
func (d *DB) UpdateOrderStatus(order models.Order) error {
	_, err := d.Bun.NewUpdate().
		Model(&order).
		Column("status", "publication_url", "publication_date", "updated_at").
		Where("order_id = ?", order.OrderID).
		Exec(context.Background())
	return err
}

// UpdateOrderContent → persist the buyer-editable content fields and updated_at
func (d *DB) UpdateOrderContent(order models.Order) error {
	_, err := d.Bun.NewUpdate().
		Model(&order).
		Column("briefing", "anchor_text", "target_url", "updated_at").
		Where("order_id = ?", order.OrderID).
		Exec(context.Background())
	return err
}

// GetOrdersByBuyer → all orders a buyer placed, newest first
func (d *DB) GetOrdersByBuyer(buyerID string) ([]models.Order, error) {
	var orders []models.Order
	err := d.Bun.NewSelect().
		Model(&orders).
		Where("buyer_id = ?", buyerID).
		Order("created_at DESC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// GetOrdersByPublisher → all orders assigned to a publisher, newest first
func (d *DB) GetOrdersByPublisher(publisherID string) ([]models.Order, error) {
	var orders []models.Order
	err := d.Bun.NewSelect().
		Model(&orders).
		Where("publisher_id = ?", publisherID).
		Order("created_at DESC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// GetOrdersByOutlet → all orders placed against one outlet
func (d *DB) GetOrdersByOutlet(outletID string) ([]models.Order, error) {
	var orders []models.Order
	err := d.Bun.NewSelect().
		Model(&orders).
		Where("outlet_id = ?", outletID).
		Order("created_at DESC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return orders, nil
}
