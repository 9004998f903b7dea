package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/greenplate/campus-client/internal/domain"
)

type MenuAPI interface {
	GetMenu(ctx context.Context) ([]domain.Stall, error)
}

// MenuService caches the campus menu for ttl.
type MenuService struct {
	api     MenuAPI
	ttl     time.Duration
	nowFunc func() time.Time
	group   singleflight.Group

	mu        sync.Mutex
	stalls    []domain.Stall
	fetchedAt time.Time
	gen       uint64
}

func NewMenuService(api MenuAPI, ttl time.Duration) *MenuService {
	return &MenuService{
		api:     api,
		ttl:     ttl,
		nowFunc: time.Now,
	}
}

func (s *MenuService) Stalls(ctx context.Context) ([]domain.Stall, error) {
	if stalls, ok := s.cached(); ok {
		return stalls, nil
	}

	v, err, _ := s.group.Do("menu", func() (any, error) {
		if stalls, ok := s.cached(); ok {
			return stalls, nil
		}

		s.mu.Lock()
		gen := s.gen
		s.mu.Unlock()

		stalls, err := s.api.GetMenu(ctx)
		if err != nil {
			return nil, fmt.Errorf("s.api.GetMenu -> %w", err)
		}

		s.mu.Lock()
		if gen == s.gen {
			s.stalls = stalls
			s.fetchedAt = s.nowFunc()
		}
		s.mu.Unlock()

		return stalls, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]domain.Stall), nil
}

func (s *MenuService) cached() ([]domain.Stall, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stalls == nil || s.nowFunc().Sub(s.fetchedAt) >= s.ttl {
		return nil, false
	}

	return s.stalls, true
}

// Invalidate drops the cached menu. A fetch already in flight is not cached.
func (s *MenuService) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stalls = nil
	s.fetchedAt = time.Time{}
	s.gen++
}

func (s *MenuService) StallName(ctx context.Context, stallID string) (string, error) {
	stalls, err := s.Stalls(ctx)
	if err != nil {
		return "", err
	}

	for _, stall := range stalls {
		if stall.StallID == stallID {
			return stall.StallName, nil
		}
	}

	return "", nil
}

// Search keeps the stalls with at least one item whose name, category or
// description contains query, ignoring case. Only matching items are kept,
// except for a stall whose own name matches.
func Search(stalls []domain.Stall, query string) []domain.Stall {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return stalls
	}

	var out []domain.Stall
	for _, stall := range stalls {
		var items []domain.MenuItem
		for _, item := range stall.Items {
			if matches(item, query) {
				items = append(items, item)
			}
		}
		if len(items) > 0 || strings.Contains(strings.ToLower(stall.StallName), query) {
			if len(items) == 0 {
				items = stall.Items
			}
			out = append(out, domain.Stall{StallID: stall.StallID, StallName: stall.StallName, Items: items})
		}
	}

	return out
}

func matches(item domain.MenuItem, query string) bool {
	for _, field := range []string{item.Name, item.Category, item.Description} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}

	return false
}
