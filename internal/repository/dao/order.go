package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// ClaimOrder is a reservation of one unit of a surplus deal.
type ClaimOrder struct {
	ID string `gorm:"primaryKey"`

	OwnerUID   string `gorm:"not null;index"`
	DealID     string `gorm:"not null;index"`
	FoodName   string `gorm:"not null"`
	StallID    string `gorm:"not null;index"`
	StallName  string
	Status     string `gorm:"not null"`
	PickupCode string `gorm:"not null;uniqueIndex:idx_claim_orders_pickup_code"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type OrderDAO struct {
	db *gorm.DB
}

func NewOrderDAO(db *gorm.DB) *OrderDAO {
	return &OrderDAO{
		db: db,
	}
}

func (d *OrderDAO) Insert(ctx context.Context, order ClaimOrder) (ClaimOrder, error) {
	result := d.db.WithContext(ctx).Create(&order)
	if result.Error != nil {
		return ClaimOrder{}, translateInsertErr(result.Error)
	}

	return order, nil
}

func (d *OrderDAO) FindByID(ctx context.Context, id string) (ClaimOrder, error) {
	var order ClaimOrder

	result := d.db.WithContext(ctx).Where("id = ?", id).First(&order)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return ClaimOrder{}, ErrOrderNotFound
		}

		return ClaimOrder{}, result.Error
	}

	return order, nil
}

func (d *OrderDAO) FindByPickupCode(ctx context.Context, code string) (ClaimOrder, error) {
	var order ClaimOrder

	result := d.db.WithContext(ctx).Where("pickup_code = ?", code).First(&order)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return ClaimOrder{}, ErrOrderNotFound
		}

		return ClaimOrder{}, result.Error
	}

	return order, nil
}

func (d *OrderDAO) FindByOwner(ctx context.Context, ownerUID string) ([]ClaimOrder, error) {
	var orders []ClaimOrder
	result := d.db.WithContext(ctx).Where("owner_uid = ?", ownerUID).Order("created_at desc").Find(&orders)
	if result.Error != nil {
		return nil, result.Error
	}

	return orders, nil
}

func (d *OrderDAO) FindByStall(ctx context.Context, stallID string) ([]ClaimOrder, error) {
	var orders []ClaimOrder
	result := d.db.WithContext(ctx).Where("stall_id = ?", stallID).Order("created_at desc").Find(&orders)
	if result.Error != nil {
		return nil, result.Error
	}

	return orders, nil
}

// UpdateStatus moves the order from one status to another. It fails with
// ErrStatusConflict when the stored status is no longer from.
func (d *OrderDAO) UpdateStatus(ctx context.Context, id, from, to string) error {
	result := d.db.WithContext(ctx).
		Model(&ClaimOrder{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{"status": to, "updated_at": time.Now()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := d.FindByID(ctx, id); err != nil {
			return err
		}
		return ErrStatusConflict
	}

	return nil
}
