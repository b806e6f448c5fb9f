package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/chriskamgang/MyINSAM-Resto/internal/apperr"
	"github.com/chriskamgang/MyINSAM-Resto/internal/cart"
	"github.com/chriskamgang/MyINSAM-Resto/internal/models"
	"github.com/chriskamgang/MyINSAM-Resto/internal/money"
	"github.com/chriskamgang/MyINSAM-Resto/internal/order"
	"github.com/chriskamgang/MyINSAM-Resto/internal/payment"
	"github.com/chriskamgang/MyINSAM-Resto/internal/routing"
	"github.com/chriskamgang/MyINSAM-Resto/internal/tracking"
)

func newFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet("foodctl "+name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}

// parse reports every failure as flag.ErrHelp; the flag set has already
// printed the problem and its usage.
func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return flag.ErrHelp
	}
	return nil
}

func runRegister(ctx context.Context, a *app, args []string) error {
	fs := newFlags("register")
	name := fs.String("name", "", "full name")
	email := fs.String("email", "", "email address")
	phone := fs.String("phone", "", "phone number")
	password := fs.String("password", "", "password (at least 6 characters)")
	if err := parse(fs, args); err != nil {
		return err
	}

	user, err := a.client.Register(ctx, models.RegisterRequest{
		Name:                 *name,
		Email:                *email,
		Phone:                *phone,
		Password:             *password,
		PasswordConfirmation: *password,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Welcome, %s!\n", user.Name)
	return nil
}

func runLogin(ctx context.Context, a *app, args []string) error {
	fs := newFlags("login")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	if err := parse(fs, args); err != nil {
		return err
	}

	user, err := a.client.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Signed in as %s <%s>\n", user.Name, user.Email)
	return nil
}

func runLogout(ctx context.Context, a *app, _ []string) error {
	if err := a.client.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Signed out")
	return nil
}

func runWhoami(ctx context.Context, a *app, _ []string) error {
	user, err := a.client.Me(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s <%s>", user.Name, user.Email)
	if user.Phone != "" {
		fmt.Fprintf(a.out, " %s", user.Phone)
	}
	fmt.Fprintln(a.out)
	return nil
}

func runMenu(ctx context.Context, a *app, args []string) error {
	fs := newFlags("menu")
	restaurantID := fs.Int64("restaurant", a.cfg.Restaurant.ID, "restaurant id")
	if err := parse(fs, args); err != nil {
		return err
	}

	menu, err := a.client.GetMenu(ctx, *restaurantID)
	if err != nil {
		return err
	}
	printMenu(a.out, menu)
	return nil
}

func runAddresses(ctx context.Context, a *app, _ []string) error {
	addrs, err := a.client.ListAddresses(ctx)
	if err != nil {
		return err
	}
	if len(addrs) == 0 {
		fmt.Fprintln(a.out, "No saved addresses. Add one with `foodctl address-add`.")
		return nil
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tLABEL\tADDRESS\tDEFAULT")
	for _, ad := range addrs {
		def := ""
		if ad.IsDefault {
			def = "*"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", ad.ID, ad.Label, ad.Address, def)
	}
	return tw.Flush()
}

func runAddressAdd(ctx context.Context, a *app, args []string) error {
	fs := newFlags("address-add")
	label := fs.String("label", "", "short name such as Maison")
	street := fs.String("address", "", "street address")
	lat := fs.Float64("lat", 0, "latitude")
	lon := fs.Float64("lon", 0, "longitude")
	phone := fs.String("phone", "", "contact phone for the driver")
	isDefault := fs.Bool("default", false, "make this the default address")
	if err := parse(fs, args); err != nil {
		return err
	}

	in := models.AddressInput{Label: *label, Address: *street, Phone: *phone, IsDefault: *isDefault}
	if *lat != 0 || *lon != 0 {
		la, lo := models.Float(*lat), models.Float(*lon)
		in.Latitude, in.Longitude = &la, &lo
	}
	addr, err := a.client.CreateAddress(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Saved address %d (%s)\n", addr.ID, addr.Label)
	return nil
}

func runCheckout(ctx context.Context, a *app, args []string) error {
	fs := newFlags("checkout")
	items := fs.String("items", "", "items to order as id or id:quantity, comma separated (e.g. 1:2,6)")
	code := fs.String("coupon", "", "coupon code")
	method := fs.String("pay", string(models.PaymentCash), "payment method: cash, mtn_momo or orange_money")
	phone := fs.String("phone", "", "mobile money number (defaults to the profile phone)")
	addressID := fs.Int64("address", 0, "delivery address id (defaults to the default address)")
	note := fs.String("note", "", "special instructions")
	fallback := fs.Bool("fallback-cash", false, "reorder as cash on delivery if the mobile payment fails")
	follow := fs.Bool("track", false, "follow the delivery after ordering")
	if err := parse(fs, args); err != nil {
		return err
	}

	wanted, err := parseItems(*items)
	if err != nil {
		return err
	}

	menu, err := a.client.GetMenu(ctx, a.cfg.Restaurant.ID)
	if err != nil {
		return err
	}
	if !menu.Restaurant.IsOpen {
		return apperr.Validation("The restaurant is closed right now")
	}

	crt := cart.New(cart.Config{RestaurantID: menu.Restaurant.ID, DeliveryFee: menu.Restaurant.DeliveryFee}, a.client)
	for _, w := range wanted {
		it, ok := menu.FindItem(w.id)
		if !ok {
			return apperr.Validation(fmt.Sprintf("No menu item with id %d", w.id))
		}
		if !it.IsAvailable {
			return apperr.Validation(it.Name + " is not available right now")
		}
		if err := crt.AddItem(cart.FromMenuItem(it), w.quantity); err != nil {
			return err
		}
	}
	if *code != "" {
		v, err := crt.ApplyCoupon(ctx, *code)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%s: -%s\n", v.Message, money.Format(v.DiscountAmount))
	}

	addr, err := pickAddress(ctx, a, *addressID)
	if err != nil {
		return err
	}

	printCart(a.out, crt.Snapshot())

	origin := models.Coordinates{Latitude: menu.Restaurant.Latitude, Longitude: menu.Restaurant.Longitude}
	co := order.NewCheckout(order.CheckoutConfig{RestaurantID: menu.Restaurant.ID, Origin: origin},
		a.client, crt, routing.NewOSRM(a.cfg.Routing.OSRMURL, 5*time.Second, a.log), a.log)

	req := order.Request{Address: addr, PaymentMethod: models.PaymentMethod(*method), SpecialInstructions: *note}
	res, err := co.PlaceOrder(ctx, req)
	if err != nil {
		return err
	}
	printPlaced(a.out, res)

	placed := res.Order
	if res.Next == order.NextMobilePayment {
		paid, err := payMobile(ctx, a, crt, placed, *phone)
		if err != nil {
			return err
		}
		if !paid {
			if !*fallback {
				fmt.Fprintf(a.out, "Order %s is still awaiting payment. Cancel it with `foodctl cancel -id %d`.\n",
					placed.OrderNumber, placed.ID)
				return nil
			}
			if placed, err = reorderAsCash(ctx, a, co, placed, req); err != nil {
				return err
			}
		}
	}

	if *follow {
		return followOrder(ctx, a, placed.ID)
	}
	return nil
}

// payMobile runs the payment flow until it settles. It reports whether the
// order was paid.
func payMobile(ctx context.Context, a *app, crt *cart.Cart, o *models.Order, phone string) (bool, error) {
	if phone == "" {
		if u := a.session.User(); u != nil {
			phone = u.Phone
		}
	}

	settled := make(chan payment.Update, 1)
	flow, err := payment.NewFlow(payment.Config{Interval: a.cfg.Polling.PaymentInterval}, a.client, crt, o,
		func(u payment.Update) {
			switch u.State {
			case payment.StatePending:
				fmt.Fprintln(a.out, "Confirm the payment on your phone...")
			case payment.StateCompleted, payment.StateFailed, payment.StateCancelled:
				select {
				case settled <- u:
				default:
				}
			}
		}, a.log)
	if err != nil {
		return false, err
	}
	defer flow.Close()

	if _, err := flow.Initiate(ctx, phone); err != nil {
		return false, err
	}

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case u := <-settled:
		switch u.State {
		case payment.StateCompleted:
			fmt.Fprintln(a.out, "Payment received. Thank you!")
			return true, nil
		case payment.StateCancelled:
			fmt.Fprintln(a.out, "The payment was cancelled.")
		default:
			fmt.Fprintln(a.out, "The payment failed.")
		}
		return false, nil
	}
}

// reorderAsCash cancels the unpaid order, which frees its coupon, and places
// the same cart again as cash on delivery.
func reorderAsCash(ctx context.Context, a *app, co *order.Checkout, unpaid *models.Order, req order.Request) (*models.Order, error) {
	if _, err := order.Cancel(ctx, a.client, unpaid, "Paying cash on delivery instead"); err != nil {
		return nil, err
	}
	req.PaymentMethod = models.PaymentCash
	res, err := co.PlaceOrder(ctx, req)
	if err != nil {
		return nil, err
	}
	fmt.Fprintln(a.out, "Switched to cash on delivery.")
	printPlaced(a.out, res)
	return res.Order, nil
}

func pickAddress(ctx context.Context, a *app, id int64) (*models.Address, error) {
	addrs, err := a.client.ListAddresses(ctx)
	if err != nil {
		return nil, err
	}
	if id == 0 {
		if addr := order.DefaultAddress(addrs); addr != nil {
			return addr, nil
		}
		return nil, order.ErrNoAddress
	}
	for i := range addrs {
		if addrs[i].ID == id {
			return &addrs[i], nil
		}
	}
	return nil, apperr.Validation(fmt.Sprintf("No saved address with id %d", id))
}

type wantedItem struct {
	id       int64
	quantity int
}

func parseItems(s string) ([]wantedItem, error) {
	var out []wantedItem
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		idPart, qtyPart, hasQty := strings.Cut(part, ":")
		id, err := strconv.ParseInt(idPart, 10, 64)
		if err != nil || id <= 0 {
			return nil, apperr.Validation(fmt.Sprintf("Invalid item %q", part))
		}
		qty := 1
		if hasQty {
			if qty, err = strconv.Atoi(qtyPart); err != nil || qty <= 0 {
				return nil, apperr.Validation(fmt.Sprintf("Invalid quantity in %q", part))
			}
		}
		out = append(out, wantedItem{id: id, quantity: qty})
	}
	if len(out) == 0 {
		return nil, order.ErrEmptyCart
	}
	return out, nil
}

func runOrders(ctx context.Context, a *app, _ []string) error {
	orders, err := a.client.ListOrders(ctx)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		fmt.Fprintln(a.out, "No orders yet.")
		return nil
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNUMBER\tSTATUS\tPAYMENT\tTOTAL\tPLACED")
	for _, o := range orders {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", o.ID, o.OrderNumber, order.Label(o.Status),
			o.PaymentMethod, money.Format(o.Total), o.CreatedAt.Local().Format("02 Jan 15:04"))
	}
	return tw.Flush()
}

func runTrack(ctx context.Context, a *app, args []string) error {
	fs := newFlags("track")
	id := fs.Int64("id", 0, "order id")
	once := fs.Bool("once", false, "print the current status and exit")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *id <= 0 {
		return apperr.Validation("-id is required")
	}

	if *once {
		snap, err := tracking.NewTracker(a.client, a.cfg.Polling.TrackingInterval, a.log).Fetch(ctx, *id)
		if err != nil {
			return err
		}
		printSnapshot(a.out, snap)
		return nil
	}
	return followOrder(ctx, a, *id)
}

// followOrder prints a line whenever the tracked order changes and returns
// once it is delivered or cancelled.
func followOrder(ctx context.Context, a *app, id int64) error {
	tracker := tracking.NewTracker(a.client, a.cfg.Polling.TrackingInterval, a.log)
	var last string
	task := tracker.Start(ctx, id, func(s tracking.Snapshot) {
		line := snapshotLine(s)
		if line == last {
			return
		}
		last = line
		fmt.Fprintln(a.out, line)
	})
	defer task.Stop()

	select {
	case <-task.Done():
		return nil
	case <-ctx.Done():
		return nil
	}
}

func runCancel(ctx context.Context, a *app, args []string) error {
	fs := newFlags("cancel")
	id := fs.Int64("id", 0, "order id")
	reason := fs.String("reason", "", "why the order is cancelled")
	if err := parse(fs, args); err != nil {
		return err
	}
	o, err := a.client.GetOrder(ctx, *id)
	if err != nil {
		return err
	}
	cancelled, err := order.Cancel(ctx, a.client, o, *reason)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Order %s cancelled\n", cancelled.OrderNumber)
	return nil
}

func runRate(ctx context.Context, a *app, args []string) error {
	fs := newFlags("rate")
	id := fs.Int64("id", 0, "order id")
	food := fs.Int("restaurant", 5, "restaurant rating from 1 to 5")
	driver := fs.Int("driver", 5, "driver rating from 1 to 5")
	comment := fs.String("comment", "", "optional comment")
	if err := parse(fs, args); err != nil {
		return err
	}
	o, err := a.client.GetOrder(ctx, *id)
	if err != nil {
		return err
	}
	if _, err := order.Rate(ctx, a.client, o, models.RateOrderRequest{
		RestaurantRating: *food,
		DriverRating:     *driver,
		Comment:          *comment,
	}); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Thank you for your feedback")
	return nil
}

func runNotifications(ctx context.Context, a *app, args []string) error {
	fs := newFlags("notifications")
	readAll := fs.Bool("read-all", false, "mark every notification as read")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *readAll {
		if err := a.client.MarkAllNotificationsRead(ctx); err != nil {
			return err
		}
	}
	notes, err := a.client.ListNotifications(ctx)
	if err != nil {
		return err
	}
	printNotifications(a.out, notes)
	return nil
}

func printNotifications(w io.Writer, notes []models.Notification) {
	if len(notes) == 0 {
		fmt.Fprintln(w, "No notifications.")
		return
	}
	for _, n := range notes {
		mark := " "
		if n.ReadAt == nil {
			mark = "*"
		}
		fmt.Fprintf(w, "%s %s  %s: %s\n", mark, n.CreatedAt.Local().Format("02 Jan 15:04"), n.Title, n.Message)
	}
}
