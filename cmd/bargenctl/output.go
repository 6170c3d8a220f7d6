package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/google/uuid"

	"github.com/bargen/bargen-backend/internal/bargains"
	"github.com/bargen/bargen-backend/internal/cart"
	"github.com/bargen/bargen-backend/internal/messaging"
	"github.com/bargen/bargen-backend/internal/products"
	"github.com/bargen/bargen-backend/pkg/currency"
)

func printListings(w io.Writer, listings []products.ProductWithShopDTO) {
	if len(listings) == 0 {
		fmt.Fprintln(w, "no products found")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPRODUCT\tPRICE\tCONDITION\tSHOP\tDISTANCE")
	for _, l := range listings {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%.1f km\n",
			l.Product.ID, l.Product.Name, currency.FormatINR(l.Product.Price),
			l.Product.Condition, l.Shop.Name, l.Shop.DistanceKm)
	}
	_ = tw.Flush()
}

func printBargain(w io.Writer, b bargains.BargainDTO) {
	fmt.Fprintf(w, "bargain %s on product %s: %s at %s\n",
		b.ID, b.ProductID, b.Status, currency.FormatINR(b.DesiredPrice))
	if b.MutuallyAccepted {
		fmt.Fprintln(w, "both sides accepted, delivery can be arranged")
	}
}

func printCart(w io.Writer, total cart.CartTotalDTO) {
	if len(total.Items) == 0 {
		fmt.Fprintln(w, "cart is empty")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PRODUCT\tQTY\tUNIT\tLINE")
	for _, line := range total.Items {
		if !line.Available {
			fmt.Fprintf(tw, "%s\t%d\t-\tunavailable\n", line.ProductID, line.Quantity)
			continue
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", line.ProductName, line.Quantity, formatCents(line.UnitPrice), formatCents(line.LineTotal))
	}
	_ = tw.Flush()

	fmt.Fprintf(w, "subtotal   %s\n", currency.FormatINR(total.Subtotal))
	if total.Insurance != nil {
		fmt.Fprintf(w, "insurance  %s (%s)\n", currency.FormatINR(total.InsurancePremium), total.Insurance.Name)
	}
	fmt.Fprintf(w, "total      %s\n", currency.FormatINR(total.Total))
	if total.UnavailableCount > 0 {
		fmt.Fprintf(w, "%d item(s) are no longer listed\n", total.UnavailableCount)
	}
}

func printMessage(w io.Writer, m messaging.MessageDTO) {
	fmt.Fprintf(w, "[%s] %s: %s\n", m.CreatedAt.Local().Format("15:04"), m.From, m.Content)
}

// unseenMessages returns the messages not yet printed and marks them seen.
func unseenMessages(seen map[uuid.UUID]struct{}, msgs []messaging.MessageDTO) []messaging.MessageDTO {
	var fresh []messaging.MessageDTO
	for _, m := range msgs {
		if _, ok := seen[m.ID]; ok {
			continue
		}
		seen[m.ID] = struct{}{}
		fresh = append(fresh, m)
	}
	return fresh
}

func formatCents(v *int64) string {
	if v == nil {
		return "-"
	}
	return currency.FormatINR(*v)
}
