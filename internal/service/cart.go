package service

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/greenplate/campus-client/internal/domain"
)

type CartRepository interface {
	Load(ctx context.Context, ownerUID string) ([]domain.CartLine, error)
	Save(ctx context.Context, ownerUID string, lines []domain.CartLine) error
	Delete(ctx context.Context, ownerUID string) error
}

// CartService owns the in-memory cart and mirrors it to the local store for
// the signed-in identity.
type CartService struct {
	repo CartRepository

	mu    sync.Mutex
	cart  *domain.Cart
	owner string
}

func NewCartService(repo CartRepository) *CartService {
	return &CartService{
		repo: repo,
		cart: domain.NewCart(),
	}
}

// Bind restores the saved cart of ownerUID.
func (s *CartService) Bind(ctx context.Context, ownerUID string) error {
	lines, err := s.repo.Load(ctx, ownerUID)
	if err != nil {
		return fmt.Errorf("s.repo.Load -> %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.owner = ownerUID
	s.cart.Restore(lines)

	return nil
}

// Unbind empties the in-memory cart. The saved lines stay for the next sign-in.
func (s *CartService) Unbind() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.owner = ""
	s.cart.Clear()
}

func (s *CartService) Add(ctx context.Context, item domain.MenuItem, stallID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.cart.Add(item, stallID); err != nil {
		return err
	}
	s.persistLocked(ctx)

	return nil
}

func (s *CartService) Remove(ctx context.Context, item domain.MenuItem, stallID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.Remove(item, stallID)
	s.persistLocked(ctx)
}

func (s *CartService) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.Clear()
	s.persistLocked(ctx)
}

func (s *CartService) Lines() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cart.Lines()
}

func (s *CartService) Total() domain.Money {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cart.Total()
}

func (s *CartService) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cart.ItemCount()
}

func (s *CartService) Quantity(stallID, itemID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cart.Quantity(stallID, itemID)
}

func (s *CartService) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cart.IsEmpty()
}

// snapshot returns the lines, total and stalls of the cart as one consistent view.
func (s *CartService) snapshot() ([]domain.CartLine, domain.Money, []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cart.Lines(), s.cart.Total(), s.cart.StallIDs()
}

// persistLocked saves the cart for the bound owner. The in-memory cart stays
// authoritative when the write fails.
func (s *CartService) persistLocked(ctx context.Context) {
	if s.owner == "" {
		return
	}

	var err error
	if s.cart.IsEmpty() {
		err = s.repo.Delete(ctx, s.owner)
	} else {
		err = s.repo.Save(ctx, s.owner, s.cart.Lines())
	}
	if err != nil {
		zap.L().Warn("cart not saved", zap.String("owner", s.owner), zap.Error(err))
	}
}
