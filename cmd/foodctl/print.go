package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/chriskamgang/MyINSAM-Resto/internal/cart"
	"github.com/chriskamgang/MyINSAM-Resto/internal/models"
	"github.com/chriskamgang/MyINSAM-Resto/internal/money"
	"github.com/chriskamgang/MyINSAM-Resto/internal/order"
	"github.com/chriskamgang/MyINSAM-Resto/internal/tracking"
)

func printMenu(w io.Writer, m *models.Menu) {
	state := "open"
	if !m.Restaurant.IsOpen {
		state = "closed"
	}
	fmt.Fprintf(w, "%s (%s) - delivery %s\n", m.Restaurant.Name, state, money.Format(m.Restaurant.DeliveryFee))
	if m.Restaurant.Address != "" {
		fmt.Fprintln(w, m.Restaurant.Address)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, cat := range m.Menu {
		fmt.Fprintf(tw, "\n%s\t\t\n", strings.ToUpper(cat.Name))
		for _, it := range cat.Items {
			price := money.Format(it.UnitPrice())
			if it.EffectivePrice != nil && *it.EffectivePrice != it.Price {
				price += " (was " + money.Format(it.Price) + ")"
			}
			if !it.IsAvailable {
				price += " unavailable"
			}
			fmt.Fprintf(tw, "  %d\t%s\t%s\n", it.ID, it.Name, price)
		}
	}
	_ = tw.Flush()
}

func printCart(w io.Writer, s cart.Snapshot) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	for _, l := range s.Lines {
		fmt.Fprintf(tw, "%d x %s\t%s\t\n", l.Quantity, l.Name, money.Format(l.Total()))
	}
	fmt.Fprintf(tw, "Subtotal\t%s\t\n", money.Format(s.Subtotal))
	fmt.Fprintf(tw, "Delivery\t%s\t\n", money.Format(s.DeliveryFee))
	if s.Discount > 0 {
		fmt.Fprintf(tw, "Discount (%s)\t-%s\t\n", s.Coupon.Code, money.Format(s.Discount))
	}
	fmt.Fprintf(tw, "Total\t%s\t\n", money.Format(s.Total))
	_ = tw.Flush()
}

func printPlaced(w io.Writer, res *order.Result) {
	fmt.Fprintf(w, "Order %s placed, total %s\n", res.Order.OrderNumber, money.Format(res.Order.Total))
	if res.HasEstimate {
		fmt.Fprintf(w, "Estimated delivery in about %d min\n", res.EstimatedMinutes)
	}
}

func printSnapshot(w io.Writer, s tracking.Snapshot) {
	fmt.Fprintln(w, snapshotLine(s))
	if !s.ShowTimeline {
		return
	}
	for i, st := range order.Steps {
		mark := "[ ]"
		if i <= s.StepIndex {
			mark = "[x]"
		}
		fmt.Fprintf(w, "  %s %s\n", mark, order.Label(st))
	}
}

func snapshotLine(s tracking.Snapshot) string {
	var b strings.Builder
	b.WriteString(order.Label(s.Status))
	if s.ShowTimeline && s.StepIndex >= 0 {
		fmt.Fprintf(&b, " (%d/%d)", s.StepIndex+1, len(order.Steps))
	}
	if s.Driver != nil {
		fmt.Fprintf(&b, " - %s", s.Driver.Name)
		if s.Driver.VehicleType != "" {
			fmt.Fprintf(&b, " on a %s", s.Driver.VehicleType)
		}
	}
	if s.DriverLocation != nil {
		fmt.Fprintf(&b, " at %.5f,%.5f", float64(s.DriverLocation.Latitude), float64(s.DriverLocation.Longitude))
	}
	if s.Track != nil && s.Track.EstimatedDeliveryTime != nil && !order.IsTerminal(s.Status) {
		fmt.Fprintf(&b, ", expected %s", s.Track.EstimatedDeliveryTime.Local().Format("15:04"))
	}
	return b.String()
}
