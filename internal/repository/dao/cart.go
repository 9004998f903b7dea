package dao

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type CartLine struct {
	ID uint `gorm:"primaryKey"`

	OwnerUID string `gorm:"not null;uniqueIndex:idx_cart_lines_owner_item"`
	StallID  string `gorm:"not null;uniqueIndex:idx_cart_lines_owner_item"`
	ItemID   string `gorm:"not null;uniqueIndex:idx_cart_lines_owner_item"`

	Name        string `gorm:"not null"`
	UnitPrice   int64  `gorm:"not null"`
	Description string
	ImageRef    string
	Category    string
	IsAvailable bool
	Quantity    int `gorm:"not null"`
	Position    int `gorm:"not null"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type CartDAO struct {
	db *gorm.DB
}

func NewCartDAO(db *gorm.DB) *CartDAO {
	return &CartDAO{
		db: db,
	}
}

func (d *CartDAO) FindByOwner(ctx context.Context, ownerUID string) ([]CartLine, error) {
	var lines []CartLine
	result := d.db.WithContext(ctx).
		Where("owner_uid = ?", ownerUID).
		Order("position").
		Find(&lines)
	if result.Error != nil {
		return nil, result.Error
	}

	return lines, nil
}

// ReplaceAll swaps the owner's stored lines for lines in one transaction.
func (d *CartDAO) ReplaceAll(ctx context.Context, ownerUID string, lines []CartLine) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("owner_uid = ?", ownerUID).Delete(&CartLine{}).Error; err != nil {
			return err
		}
		if len(lines) == 0 {
			return nil
		}

		for i := range lines {
			lines[i].ID = 0
			lines[i].OwnerUID = ownerUID
			lines[i].Position = i
		}
		if err := tx.Create(&lines).Error; err != nil {
			return translateInsertErr(err)
		}

		return nil
	})
}

func (d *CartDAO) DeleteByOwner(ctx context.Context, ownerUID string) error {
	return d.db.WithContext(ctx).Where("owner_uid = ?", ownerUID).Delete(&CartLine{}).Error
}
