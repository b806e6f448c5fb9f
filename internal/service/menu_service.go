package service

import (
	"context"

	"github.com/chriskamgang/MyINSAM-Resto/internal/models"
	"github.com/chriskamgang/MyINSAM-Resto/internal/repository"
)

// MenuService handles business logic for the restaurant menu
type MenuService struct {
	repo repository.MenuRepository
}

// NewMenuService creates a new menu service
func NewMenuService(repo repository.MenuRepository) *MenuService {
	return &MenuService{
		repo: repo,
	}
}

// GetRestaurant returns a restaurant by ID
func (s *MenuService) GetRestaurant(ctx context.Context, id int64) (*models.Restaurant, error) {
	return s.repo.GetRestaurant(ctx, id)
}

// GetMenu returns the restaurant with its menu
func (s *MenuService) GetMenu(ctx context.Context, restaurantID int64) (*models.Menu, error) {
	return s.repo.GetMenu(ctx, restaurantID)
}
