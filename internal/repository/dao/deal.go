package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Nutrition struct {
	Calories int
	ProteinG int
	CarbsG   int
	FatG     int
}

type Deal struct {
	ID string `gorm:"primaryKey"`

	StallID         string `gorm:"not null;index"`
	StallName       string
	Name            string `gorm:"not null"`
	Description     string
	Ingredients     []string  `gorm:"serializer:json"`
	Nutrition       Nutrition `gorm:"embedded;embeddedPrefix:nutrition_"`
	CarbonSavedKg   float64
	OriginalPrice   int64 `gorm:"not null"`
	DiscountedPrice int64 `gorm:"not null"`
	Quantity        int   `gorm:"not null"`
	TimeLeftMinutes int
	Tags            []string `gorm:"serializer:json"`
	IsClaimed       bool     `gorm:"not null;default:false"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type DealDAO struct {
	db *gorm.DB
}

func NewDealDAO(db *gorm.DB) *DealDAO {
	return &DealDAO{
		db: db,
	}
}

func (d *DealDAO) Insert(ctx context.Context, deal Deal) (Deal, error) {
	result := d.db.WithContext(ctx).Create(&deal)
	if result.Error != nil {
		return Deal{}, translateInsertErr(result.Error)
	}

	return deal, nil
}

func (d *DealDAO) FindByID(ctx context.Context, id string) (Deal, error) {
	var deal Deal

	result := d.db.WithContext(ctx).Where("id = ?", id).First(&deal)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Deal{}, ErrDealNotFound
		}

		return Deal{}, result.Error
	}

	return deal, nil
}

func (d *DealDAO) FindAll(ctx context.Context) ([]Deal, error) {
	var deals []Deal
	if err := d.db.WithContext(ctx).Order("created_at desc").Find(&deals).Error; err != nil {
		return nil, err
	}

	return deals, nil
}

func (d *DealDAO) FindByStall(ctx context.Context, stallID string) ([]Deal, error) {
	var deals []Deal
	if err := d.db.WithContext(ctx).Where("stall_id = ?", stallID).Order("created_at desc").Find(&deals).Error; err != nil {
		return nil, err
	}

	return deals, nil
}

// Claim stores the claimed deal and its order together. The deal row is only
// written if it still holds prev's quantity and claim flag; otherwise
// ErrDealConflict is returned and nothing is written.
func (d *DealDAO) Claim(ctx context.Context, prev, next Deal, order ClaimOrder) (ClaimOrder, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&Deal{}).
			Where("id = ? AND quantity = ? AND is_claimed = ?", prev.ID, prev.Quantity, prev.IsClaimed).
			Updates(map[string]any{
				"quantity":   next.Quantity,
				"is_claimed": next.IsClaimed,
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrDealConflict
		}

		if err := tx.Create(&order).Error; err != nil {
			return translateInsertErr(err)
		}

		return nil
	})
	if err != nil {
		return ClaimOrder{}, err
	}

	return order, nil
}
