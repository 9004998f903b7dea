package repository

import (
	"context"
	"fmt"

	"github.com/greenplate/campus-client/internal/domain"
	"github.com/greenplate/campus-client/internal/repository/dao"
)

var (
	ErrDealNotFound = dao.ErrDealNotFound
	ErrDealConflict = dao.ErrDealConflict
)

type DealDAO interface {
	Insert(ctx context.Context, deal dao.Deal) (dao.Deal, error)
	FindByID(ctx context.Context, id string) (dao.Deal, error)
	FindAll(ctx context.Context) ([]dao.Deal, error)
	FindByStall(ctx context.Context, stallID string) ([]dao.Deal, error)
	Claim(ctx context.Context, prev, next dao.Deal, order dao.ClaimOrder) (dao.ClaimOrder, error)
}

type DealRepository struct {
	dao DealDAO
}

func NewDealRepository(dao DealDAO) *DealRepository {
	return &DealRepository{
		dao: dao,
	}
}

func (r *DealRepository) Create(ctx context.Context, deal domain.Deal) (domain.Deal, error) {
	created, err := r.dao.Insert(ctx, r.domainToDao(deal))
	if err != nil {
		return domain.Deal{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *DealRepository) FindByID(ctx context.Context, id string) (domain.Deal, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Deal{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *DealRepository) FindAll(ctx context.Context) ([]domain.Deal, error) {
	found, err := r.dao.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	return r.daosToDomain(found), nil
}

func (r *DealRepository) FindByStall(ctx context.Context, stallID string) ([]domain.Deal, error) {
	found, err := r.dao.FindByStall(ctx, stallID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByStall -> %w", err)
	}

	return r.daosToDomain(found), nil
}

// Claim writes the claimed deal and the new claim order atomically.
func (r *DealRepository) Claim(ctx context.Context, prev, next domain.Deal, order domain.Order) (domain.Order, error) {
	created, err := r.dao.Claim(ctx, r.domainToDao(prev), r.domainToDao(next), claimDomainToDao(order))
	if err != nil {
		return domain.Order{}, fmt.Errorf("r.dao.Claim -> %w", err)
	}

	return claimDaoToDomain(created), nil
}

func (r *DealRepository) domainToDao(d domain.Deal) dao.Deal {
	return dao.Deal{
		ID:          d.ID,
		StallID:     d.StallID,
		StallName:   d.StallName,
		Name:        d.Name,
		Description: d.Description,
		Ingredients: d.Ingredients,
		Nutrition: dao.Nutrition{
			Calories: d.Nutrition.Calories,
			ProteinG: d.Nutrition.ProteinG,
			CarbsG:   d.Nutrition.CarbsG,
			FatG:     d.Nutrition.FatG,
		},
		CarbonSavedKg:   d.CarbonSavedKg,
		OriginalPrice:   int64(d.OriginalPrice),
		DiscountedPrice: int64(d.DiscountedPrice),
		Quantity:        d.Quantity,
		TimeLeftMinutes: d.TimeLeftMinutes,
		Tags:            d.Tags,
		IsClaimed:       d.IsClaimed,
		CreatedAt:       d.CreatedAt,
	}
}

func (r *DealRepository) daoToDomain(d dao.Deal) domain.Deal {
	return domain.Deal{
		ID:          d.ID,
		StallID:     d.StallID,
		StallName:   d.StallName,
		Name:        d.Name,
		Description: d.Description,
		Ingredients: d.Ingredients,
		Nutrition: domain.Nutrition{
			Calories: d.Nutrition.Calories,
			ProteinG: d.Nutrition.ProteinG,
			CarbsG:   d.Nutrition.CarbsG,
			FatG:     d.Nutrition.FatG,
		},
		CarbonSavedKg:   d.CarbonSavedKg,
		OriginalPrice:   domain.Money(d.OriginalPrice),
		DiscountedPrice: domain.Money(d.DiscountedPrice),
		Quantity:        d.Quantity,
		TimeLeftMinutes: d.TimeLeftMinutes,
		Tags:            d.Tags,
		IsClaimed:       d.IsClaimed,
		CreatedAt:       d.CreatedAt,
	}
}

func (r *DealRepository) daosToDomain(rows []dao.Deal) []domain.Deal {
	deals := make([]domain.Deal, 0, len(rows))
	for _, row := range rows {
		deals = append(deals, r.daoToDomain(row))
	}

	return deals
}
