package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/MrEthical07/goUmroh/api"
	"github.com/fatih/color"
)

// rupiah formats an amount as "Rp 27.500.000".
func rupiah(v int64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	digits := strconv.FormatInt(v, 10)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}
	if neg {
		return "Rp -" + b.String()
	}
	return "Rp " + b.String()
}

func statusColor(s api.PaymentStatus) string {
	switch s {
	case api.PaymentCompleted:
		return color.GreenString(string(s))
	case api.PaymentFailed:
		return color.RedString(string(s))
	default:
		return color.YellowString(string(s))
	}
}

func printPackages(w io.Writer, pkgs []api.Package) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tNAME\tPRICE\tFROM\tDEPARTS\tSEATS")
	for _, p := range pkgs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
			p.ID, p.PackageType, p.Name, rupiah(p.Price), p.DepartureCity, p.DepartureDate, p.Availability)
	}
	_ = tw.Flush()
}

func printPackage(w io.Writer, p *api.Package) {
	fmt.Fprintln(w, color.New(color.Bold).Sprint(p.Name))
	fmt.Fprintln(w, p.Description)
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\t%s\n", p.ID)
	fmt.Fprintf(tw, "Type\t%s\n", p.PackageType)
	fmt.Fprintf(tw, "Price\t%s\n", rupiah(p.Price))
	fmt.Fprintf(tw, "Duration\t%s\n", p.Duration)
	fmt.Fprintf(tw, "Departure\t%s, %s\n", p.DepartureCity, p.DepartureDate)
	fmt.Fprintf(tw, "Airline\t%s\n", p.Airline)
	fmt.Fprintf(tw, "Hotel\t%s (%d*)\n", p.Hotel, p.HotelRating)
	fmt.Fprintf(tw, "Seats\t%d\n", p.Availability)
	_ = tw.Flush()

	if len(p.Facilities) > 0 {
		fmt.Fprintf(w, "\nFacilities: %s\n", strings.Join(p.Facilities, ", "))
	}
	if len(p.Itinerary) > 0 {
		fmt.Fprintln(w, "\nItinerary:")
		for _, step := range p.Itinerary {
			fmt.Fprintf(w, "  - %s\n", step)
		}
	}
}

func printBookings(w io.Writer, bs []api.Booking) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPACKAGE\tPAX\tTOTAL\tPAYMENT\tSTATUS")
	for _, b := range bs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n",
			b.ID, b.PackageID, b.NumPassengers, rupiah(b.TotalPrice), statusColor(b.PaymentStatus), b.BookingStatus)
	}
	_ = tw.Flush()
}

func printBooking(w io.Writer, b *api.Booking) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Booking\t%s\n", b.ID)
	fmt.Fprintf(tw, "Package\t%s\n", b.PackageID)
	fmt.Fprintf(tw, "Customer\t%s <%s> %s\n", b.CustomerName, b.CustomerEmail, b.CustomerPhone)
	fmt.Fprintf(tw, "Passengers\t%d\n", b.NumPassengers)
	fmt.Fprintf(tw, "Total\t%s\n", rupiah(b.TotalPrice))
	fmt.Fprintf(tw, "Payment\t%s\n", statusColor(b.PaymentStatus))
	fmt.Fprintf(tw, "Status\t%s\n", b.BookingStatus)
	_ = tw.Flush()
}

func printPayment(w io.Writer, p *api.Payment) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Payment\t%s\n", p.ID)
	fmt.Fprintf(tw, "Booking\t%s\n", p.BookingID)
	fmt.Fprintf(tw, "Transaction\t%s\n", p.TransactionID)
	fmt.Fprintf(tw, "Amount\t%s\n", rupiah(p.Amount))
	fmt.Fprintf(tw, "Method\t%s\n", p.PaymentMethod)
	fmt.Fprintf(tw, "Status\t%s\n", statusColor(p.PaymentStatus))
	if p.CompletedAt != nil {
		fmt.Fprintf(tw, "Completed\t%s\n", p.CompletedAt.Format("2006-01-02 15:04"))
	}
	_ = tw.Flush()
}
