package models

import "github.com/chriskamgang/MyINSAM-Resto/internal/money"

// Restaurant is the single restaurant the app orders from.
type Restaurant struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Address     string       `json:"address"`
	Phone       string       `json:"phone,omitempty"`
	Latitude    Float        `json:"latitude"`
	Longitude   Float        `json:"longitude"`
	IsOpen      bool         `json:"is_open"`
	DeliveryFee money.Amount `json:"delivery_fee"`
}

// MenuItem is a dish on the menu. EffectivePrice is set when a promotion applies.
type MenuItem struct {
	ID             int64         `json:"id"`
	CategoryID     int64         `json:"category_id"`
	Name           string        `json:"name"`
	Description    string        `json:"description,omitempty"`
	Price          money.Amount  `json:"price"`
	EffectivePrice *money.Amount `json:"effective_price,omitempty"`
	IsAvailable    bool          `json:"is_available"`
	ImageURL       string        `json:"image_url,omitempty"`
}

// UnitPrice is the price actually charged per unit.
func (m MenuItem) UnitPrice() money.Amount {
	if m.EffectivePrice != nil {
		return *m.EffectivePrice
	}
	return m.Price
}

// MenuCategory groups items for display.
type MenuCategory struct {
	ID    int64      `json:"id"`
	Name  string     `json:"name"`
	Items []MenuItem `json:"items"`
}

// Menu is the response of GET /restaurants/{id}/menu.
type Menu struct {
	Restaurant Restaurant     `json:"restaurant"`
	Menu       []MenuCategory `json:"menu"`
}

// FindItem looks an item up across all categories.
func (m *Menu) FindItem(id int64) (MenuItem, bool) {
	for _, c := range m.Menu {
		for _, it := range c.Items {
			if it.ID == id {
				return it, true
			}
		}
	}
	return MenuItem{}, false
}
