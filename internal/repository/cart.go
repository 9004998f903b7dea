package repository

import (
	"context"
	"fmt"

	"github.com/greenplate/campus-client/internal/domain"
	"github.com/greenplate/campus-client/internal/repository/dao"
)

type CartDAO interface {
	FindByOwner(ctx context.Context, ownerUID string) ([]dao.CartLine, error)
	ReplaceAll(ctx context.Context, ownerUID string, lines []dao.CartLine) error
	DeleteByOwner(ctx context.Context, ownerUID string) error
}

type CartRepository struct {
	dao CartDAO
}

func NewCartRepository(dao CartDAO) *CartRepository {
	return &CartRepository{
		dao: dao,
	}
}

func (r *CartRepository) Load(ctx context.Context, ownerUID string) ([]domain.CartLine, error) {
	found, err := r.dao.FindByOwner(ctx, ownerUID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByOwner -> %w", err)
	}

	lines := make([]domain.CartLine, 0, len(found))
	for _, l := range found {
		lines = append(lines, r.daoToDomain(l))
	}

	return lines, nil
}

func (r *CartRepository) Save(ctx context.Context, ownerUID string, lines []domain.CartLine) error {
	rows := make([]dao.CartLine, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, r.domainToDao(l))
	}

	if err := r.dao.ReplaceAll(ctx, ownerUID, rows); err != nil {
		return fmt.Errorf("r.dao.ReplaceAll -> %w", err)
	}

	return nil
}

func (r *CartRepository) Delete(ctx context.Context, ownerUID string) error {
	if err := r.dao.DeleteByOwner(ctx, ownerUID); err != nil {
		return fmt.Errorf("r.dao.DeleteByOwner -> %w", err)
	}

	return nil
}

func (r *CartRepository) domainToDao(l domain.CartLine) dao.CartLine {
	return dao.CartLine{
		StallID:     l.StallID,
		ItemID:      l.Item.ItemID,
		Name:        l.Item.Name,
		UnitPrice:   int64(l.Item.UnitPrice),
		Description: l.Item.Description,
		ImageRef:    l.Item.ImageRef,
		Category:    l.Item.Category,
		IsAvailable: l.Item.IsAvailable,
		Quantity:    l.Quantity,
	}
}

func (r *CartRepository) daoToDomain(l dao.CartLine) domain.CartLine {
	return domain.CartLine{
		StallID: l.StallID,
		Item: domain.MenuItem{
			ItemID:      l.ItemID,
			Name:        l.Name,
			UnitPrice:   domain.Money(l.UnitPrice),
			Description: l.Description,
			ImageRef:    l.ImageRef,
			Category:    l.Category,
			IsAvailable: l.IsAvailable,
		},
		Quantity: l.Quantity,
	}
}
