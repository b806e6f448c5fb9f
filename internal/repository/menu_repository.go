package repository

import (
	"context"
	"errors"

	"github.com/chriskamgang/MyINSAM-Resto/internal/models"
	"github.com/chriskamgang/MyINSAM-Resto/internal/money"
)

var (
	ErrRestaurantNotFound = errors.New("restaurant not found")
	ErrMenuItemNotFound   = errors.New("menu item not found")
)

// MenuRepository defines the interface for restaurant and menu data access
type MenuRepository interface {
	GetRestaurant(ctx context.Context, id int64) (*models.Restaurant, error)
	GetMenu(ctx context.Context, restaurantID int64) (*models.Menu, error)
	GetItem(ctx context.Context, restaurantID, itemID int64) (*models.MenuItem, error)
}

// InMemoryMenuRepository implements MenuRepository with in-memory storage.
// The menu is read-only after construction.
type InMemoryMenuRepository struct {
	restaurant models.Restaurant
	categories []models.MenuCategory
	items      map[int64]models.MenuItem
}

// RestaurantSeed overrides the seeded restaurant's identity and location.
type RestaurantSeed struct {
	ID          int64
	Latitude    float64
	Longitude   float64
	DeliveryFee money.Amount
}

func price(a money.Amount) *money.Amount { return &a }

// NewInMemoryMenuRepository creates a repository seeded with the Dschang restaurant menu
func NewInMemoryMenuRepository(seed RestaurantSeed) *InMemoryMenuRepository {
	restaurant := models.Restaurant{
		ID:          seed.ID,
		Name:        "MyINSAM Resto",
		Address:     "Campus INSAM, Dschang",
		Phone:       "+237 6 99 00 00 00",
		Latitude:    models.Float(seed.Latitude),
		Longitude:   models.Float(seed.Longitude),
		IsOpen:      true,
		DeliveryFee: seed.DeliveryFee,
	}

	categories := []models.MenuCategory{
		{ID: 1, Name: "Plats camerounais", Items: []models.MenuItem{
			{ID: 1, Name: "Ndolé crevettes", Description: "Ndolé, crevettes et plantain mûr", Price: 2500, IsAvailable: true},
			{ID: 2, Name: "Poulet DG", Description: "Poulet, plantain et légumes sautés", Price: 3500, EffectivePrice: price(3000), IsAvailable: true},
			{ID: 3, Name: "Eru", Description: "Eru et water fufu", Price: 2000, IsAvailable: true},
			{ID: 4, Name: "Taro sauce jaune", Price: 2500, IsAvailable: false},
		}},
		{ID: 2, Name: "Grillades", Items: []models.MenuItem{
			{ID: 5, Name: "Poisson braisé", Description: "Bar braisé, miondo", Price: 3000, IsAvailable: true},
			{ID: 6, Name: "Soya", Description: "Brochettes de boeuf épicées", Price: 1000, IsAvailable: true},
		}},
		{ID: 3, Name: "Boissons", Items: []models.MenuItem{
			{ID: 7, Name: "Jus de foléré", Price: 500, IsAvailable: true},
			{ID: 8, Name: "Eau minérale 1.5L", Price: 300, IsAvailable: true},
		}},
	}

	items := make(map[int64]models.MenuItem)
	for ci := range categories {
		for ii := range categories[ci].Items {
			it := &categories[ci].Items[ii]
			it.CategoryID = categories[ci].ID
			items[it.ID] = *it
		}
	}

	return &InMemoryMenuRepository{
		restaurant: restaurant,
		categories: categories,
		items:      items,
	}
}

// GetRestaurant returns the restaurant by its ID
func (r *InMemoryMenuRepository) GetRestaurant(ctx context.Context, id int64) (*models.Restaurant, error) {
	if id != r.restaurant.ID {
		return nil, ErrRestaurantNotFound
	}
	rest := r.restaurant
	return &rest, nil
}

// GetMenu returns the restaurant with its categorised menu
func (r *InMemoryMenuRepository) GetMenu(ctx context.Context, restaurantID int64) (*models.Menu, error) {
	rest, err := r.GetRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, err
	}

	menu := &models.Menu{Restaurant: *rest, Menu: make([]models.MenuCategory, len(r.categories))}
	for i, c := range r.categories {
		menu.Menu[i] = models.MenuCategory{ID: c.ID, Name: c.Name, Items: append([]models.MenuItem(nil), c.Items...)}
	}
	return menu, nil
}

// GetItem returns a menu item of the restaurant
func (r *InMemoryMenuRepository) GetItem(ctx context.Context, restaurantID, itemID int64) (*models.MenuItem, error) {
	if restaurantID != r.restaurant.ID {
		return nil, ErrRestaurantNotFound
	}
	item, exists := r.items[itemID]
	if !exists {
		return nil, ErrMenuItemNotFound
	}
	return &item, nil
}
