package repository

import (
	"context"
	"fmt"

	"github.com/greenplate/campus-client/internal/domain"
	"github.com/greenplate/campus-client/internal/repository/dao"
)

var (
	ErrOrderNotFound   = dao.ErrOrderNotFound
	ErrPickupCodeTaken = dao.ErrPickupCodeTaken
	ErrStatusConflict  = dao.ErrStatusConflict
)

type OrderDAO interface {
	Insert(ctx context.Context, order dao.ClaimOrder) (dao.ClaimOrder, error)
	FindByID(ctx context.Context, id string) (dao.ClaimOrder, error)
	FindByPickupCode(ctx context.Context, code string) (dao.ClaimOrder, error)
	FindByOwner(ctx context.Context, ownerUID string) ([]dao.ClaimOrder, error)
	FindByStall(ctx context.Context, stallID string) ([]dao.ClaimOrder, error)
	UpdateStatus(ctx context.Context, id, from, to string) error
}

// OrderRepository stores claim orders. Purchase orders live on the backend.
type OrderRepository struct {
	dao OrderDAO
}

func NewOrderRepository(dao OrderDAO) *OrderRepository {
	return &OrderRepository{
		dao: dao,
	}
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (domain.Order, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Order{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return claimDaoToDomain(found), nil
}

func (r *OrderRepository) FindByPickupCode(ctx context.Context, code string) (domain.Order, error) {
	found, err := r.dao.FindByPickupCode(ctx, code)
	if err != nil {
		return domain.Order{}, fmt.Errorf("r.dao.FindByPickupCode -> %w", err)
	}

	return claimDaoToDomain(found), nil
}

func (r *OrderRepository) FindByOwner(ctx context.Context, ownerUID string) ([]domain.Order, error) {
	found, err := r.dao.FindByOwner(ctx, ownerUID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByOwner -> %w", err)
	}

	return claimsDaoToDomain(found), nil
}

func (r *OrderRepository) FindByStall(ctx context.Context, stallID string) ([]domain.Order, error) {
	found, err := r.dao.FindByStall(ctx, stallID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByStall -> %w", err)
	}

	return claimsDaoToDomain(found), nil
}

// UpdateStatus persists a transition already applied to order.
func (r *OrderRepository) UpdateStatus(ctx context.Context, order domain.Order, from domain.OrderStatus) error {
	if err := r.dao.UpdateStatus(ctx, order.ID, string(from), string(order.Status)); err != nil {
		return fmt.Errorf("r.dao.UpdateStatus -> %w", err)
	}

	return nil
}

func claimDomainToDao(o domain.Order) dao.ClaimOrder {
	row := dao.ClaimOrder{
		ID:         o.ID,
		OwnerUID:   o.OwnerUID,
		StallID:    o.StallID,
		StallName:  o.StallName,
		Status:     string(o.Status),
		PickupCode: o.PickupCode,
		CreatedAt:  o.CreatedAt,
	}
	if o.Claim != nil {
		row.DealID = o.Claim.DealID
		row.FoodName = o.Claim.FoodName
	}

	return row
}

func claimDaoToDomain(o dao.ClaimOrder) domain.Order {
	return domain.Order{
		ID:         o.ID,
		Kind:       domain.OrderKindClaim,
		Status:     domain.OrderStatus(o.Status),
		StallID:    o.StallID,
		StallName:  o.StallName,
		PickupCode: o.PickupCode,
		OwnerUID:   o.OwnerUID,
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
		Claim: &domain.ClaimDetails{
			DealID:   o.DealID,
			FoodName: o.FoodName,
		},
	}
}

func claimsDaoToDomain(rows []dao.ClaimOrder) []domain.Order {
	orders := make([]domain.Order, 0, len(rows))
	for _, row := range rows {
		orders = append(orders, claimDaoToDomain(row))
	}

	return orders
}
