package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chriskamgang/MyINSAM-Resto/internal/models"
)

func TestInMemoryMenuRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryMenuRepository(RestaurantSeed{ID: 1, Latitude: 5.472, Longitude: 10.418, DeliveryFee: 500})

	t.Run("menu groups every item", func(t *testing.T) {
		menu, err := repo.GetMenu(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "MyINSAM Resto", menu.Restaurant.Name)
		assert.Len(t, menu.Menu, 3)

		item, ok := menu.FindItem(2)
		require.True(t, ok)
		assert.Equal(t, int64(1), item.CategoryID)
		assert.EqualValues(t, 3000, item.UnitPrice())
	})

	t.Run("unknown restaurant", func(t *testing.T) {
		_, err := repo.GetMenu(ctx, 99)
		assert.ErrorIs(t, err, ErrRestaurantNotFound)
		_, err = repo.GetItem(ctx, 99, 1)
		assert.ErrorIs(t, err, ErrRestaurantNotFound)
	})

	t.Run("unknown item", func(t *testing.T) {
		_, err := repo.GetItem(ctx, 1, 999)
		assert.ErrorIs(t, err, ErrMenuItemNotFound)
	})

	t.Run("menu is a copy", func(t *testing.T) {
		m1, _ := repo.GetMenu(ctx, 1)
		m1.Menu[0].Items[0].Name = "changed"
		m2, _ := repo.GetMenu(ctx, 1)
		assert.NotEqual(t, "changed", m2.Menu[0].Items[0].Name)
	})
}

func TestInMemoryUserRepository_Users(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryUserRepository()

	rec, err := repo.CreateUser(ctx, UserRecord{User: models.User{Name: "Awa", Email: "awa@example.cm"}, PasswordHash: []byte("h")})
	require.NoError(t, err)
	assert.Equal(t, int64(1), rec.ID)

	_, err = repo.CreateUser(ctx, UserRecord{User: models.User{Email: " AWA@example.cm "}})
	assert.ErrorIs(t, err, ErrEmailTaken)

	got, err := repo.GetUserByEmail(ctx, "Awa@Example.cm")
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)

	updated, err := repo.UpdateUser(ctx, models.User{ID: rec.ID, Name: "Awa N.", Phone: "690000000"})
	require.NoError(t, err)
	assert.Equal(t, "Awa N.", updated.Name)
	assert.Equal(t, "awa@example.cm", updated.Email)

	_, err = repo.GetUser(ctx, 42)
	assert.ErrorIs(t, err, ErrUserNotFound)

	require.NoError(t, repo.SaveToken(ctx, "tok", rec.ID))
	id, err := repo.UserIDForToken(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, rec.ID, id)
	require.NoError(t, repo.DeleteToken(ctx, "tok"))
	_, err = repo.UserIDForToken(ctx, "tok")
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func defaults(list []models.Address) []int64 {
	var ids []int64
	for _, a := range list {
		if a.IsDefault {
			ids = append(ids, a.ID)
		}
	}
	return ids
}

func TestInMemoryUserRepository_AddressesKeepOneDefault(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryUserRepository()
	const user = 1

	first, err := repo.SaveAddress(ctx, user, models.Address{Label: "Maison", Address: "Foto"})
	require.NoError(t, err)
	assert.True(t, first.IsDefault, "first address becomes default")

	second, err := repo.SaveAddress(ctx, user, models.Address{Label: "Campus", Address: "INSAM"})
	require.NoError(t, err)
	assert.False(t, second.IsDefault)

	third, err := repo.SaveAddress(ctx, user, models.Address{Label: "Bureau", Address: "Marché A", IsDefault: true})
	require.NoError(t, err)

	list, _ := repo.ListAddresses(ctx, user)
	assert.Equal(t, []int64{third.ID}, defaults(list))

	_, err = repo.SetDefaultAddress(ctx, user, second.ID)
	require.NoError(t, err)
	list, _ = repo.ListAddresses(ctx, user)
	assert.Equal(t, []int64{second.ID}, defaults(list))

	// clearing the flag on the default is ignored
	second.IsDefault = false
	_, err = repo.SaveAddress(ctx, user, *second)
	require.NoError(t, err)
	list, _ = repo.ListAddresses(ctx, user)
	assert.Equal(t, []int64{second.ID}, defaults(list))

	require.NoError(t, repo.DeleteAddress(ctx, user, second.ID))
	list, _ = repo.ListAddresses(ctx, user)
	assert.Len(t, list, 2)
	assert.Equal(t, []int64{first.ID}, defaults(list))

	assert.ErrorIs(t, repo.DeleteAddress(ctx, user, second.ID), ErrAddressNotFound)
	_, err = repo.GetAddress(ctx, 2, first.ID)
	assert.ErrorIs(t, err, ErrAddressNotFound, "addresses are scoped to their owner")
}

func TestInMemoryUserRepository_Notifications(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryUserRepository()

	n1, _ := repo.AddNotification(ctx, 1, models.Notification{Title: "a"})
	n2, _ := repo.AddNotification(ctx, 1, models.Notification{Title: "b"})
	_, _ = repo.AddNotification(ctx, 2, models.Notification{Title: "other"})

	list, err := repo.ListNotifications(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, n2.ID, list[0].ID, "newest first")

	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.MarkNotificationRead(ctx, 1, n1.ID, at))
	assert.ErrorIs(t, repo.MarkNotificationRead(ctx, 2, n1.ID, at), ErrNotificationNotFound)

	require.NoError(t, repo.MarkAllNotificationsRead(ctx, 1, at.Add(time.Hour)))
	list, _ = repo.ListNotifications(ctx, 1)
	for _, n := range list {
		require.NotNil(t, n.ReadAt)
	}
	assert.Equal(t, at, *list[1].ReadAt, "already read keeps its timestamp")
}

func TestInMemoryOrderRepository_Orders(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryOrderRepository()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	o1, err := repo.CreateOrder(ctx, OrderRecord{Order: models.Order{UserID: 1, Status: "pending", CreatedAt: base}})
	require.NoError(t, err)
	o2, _ := repo.CreateOrder(ctx, OrderRecord{Order: models.Order{UserID: 1, Status: "delivered", CreatedAt: base.Add(time.Minute)}})
	_, _ = repo.CreateOrder(ctx, OrderRecord{Order: models.Order{UserID: 2, Status: "pending", CreatedAt: base}})

	list, err := repo.ListOrdersByUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, o2.ID, list[0].ID)

	pending, _ := repo.ListOrdersByStatus(ctx, "pending")
	assert.Len(t, pending, 2)

	errBoom := errors.New("boom")
	_, err = repo.UpdateOrder(ctx, o1.ID, func(r *OrderRecord) error {
		r.Status = "confirmed"
		return errBoom
	})
	assert.ErrorIs(t, err, errBoom)
	got, _ := repo.GetOrder(ctx, o1.ID)
	assert.EqualValues(t, "pending", got.Status, "aborted update is not stored")

	updated, err := repo.UpdateOrder(ctx, o1.ID, func(r *OrderRecord) error {
		r.Status = "confirmed"
		r.Items = append(r.Items, models.OrderItem{MenuItemID: 1, Quantity: 1})
		return nil
	})
	require.NoError(t, err)
	assert.EqualValues(t, "confirmed", updated.Status)

	updated.Items[0].Quantity = 99
	got, _ = repo.GetOrder(ctx, o1.ID)
	assert.Equal(t, 1, got.Items[0].Quantity, "returned records are copies")

	_, err = repo.GetOrder(ctx, 404)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestInMemoryOrderRepository_Payments(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryOrderRepository()

	p, err := repo.CreatePayment(ctx, models.Payment{OrderID: 1, Status: models.PaymentPending})
	require.NoError(t, err)

	_, err = repo.CreatePayment(ctx, models.Payment{OrderID: 1, Status: models.PaymentPending})
	assert.ErrorIs(t, err, ErrPaymentInProgress)

	pending, _ := repo.ListPendingPayments(ctx)
	assert.Len(t, pending, 1)

	_, err = repo.UpdatePayment(ctx, p.ID, func(p *models.Payment) error {
		p.Status = models.PaymentFailed
		return nil
	})
	require.NoError(t, err)

	// a failed attempt frees the order for a retry
	_, err = repo.CreatePayment(ctx, models.Payment{OrderID: 1, Status: models.PaymentPending})
	assert.NoError(t, err)

	_, err = repo.GetPayment(ctx, 404)
	assert.ErrorIs(t, err, ErrPaymentNotFound)
}
