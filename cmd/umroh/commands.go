package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/MrEthical07/goUmroh/api"
)

// parseFlags parses args into fs, mapping any failure to errUsage.
func parseFlags(fs *flag.FlagSet, args []string) error {
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	return nil
}

func runPackages(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("packages", flag.ContinueOnError)
	pkgType := fs.String("type", "", "umrah or tour")
	minPrice := fs.Int64("min-price", -1, "minimum price")
	maxPrice := fs.Int64("max-price", -1, "maximum price")
	city := fs.String("city", "", "departure city")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	filter := api.PackageFilter{
		PackageType:   api.PackageType(*pkgType),
		DepartureCity: *city,
	}
	if *minPrice >= 0 {
		filter.MinPrice = minPrice
	}
	if *maxPrice >= 0 {
		filter.MaxPrice = maxPrice
	}

	return withSession(ctx, a, func(svc *api.Client) error {
		pkgs, err := svc.Packages.List(ctx, filter)
		if err != nil {
			return err
		}
		printPackages(a.out, pkgs)
		return nil
	})
}

func runPackage(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	return withSession(ctx, a, func(svc *api.Client) error {
		p, err := svc.Packages.Get(ctx, args[0])
		if err != nil {
			return err
		}
		printPackage(a.out, p)
		return nil
	})
}

func runBook(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("book", flag.ContinueOnError)
	in := api.BookingCreate{}
	fs.StringVar(&in.PackageID, "package", "", "package id")
	fs.StringVar(&in.CustomerName, "name", "", "customer name")
	fs.StringVar(&in.CustomerEmail, "email", "", "customer email")
	fs.StringVar(&in.CustomerPhone, "phone", "", "customer phone")
	fs.IntVar(&in.NumPassengers, "passengers", 1, "number of passengers")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if in.PackageID == "" || in.CustomerName == "" || in.CustomerEmail == "" || in.CustomerPhone == "" || in.NumPassengers < 1 {
		return errUsage
	}

	return withSession(ctx, a, func(svc *api.Client) error {
		b, err := svc.Bookings.Create(ctx, in)
		if err != nil {
			return err
		}
		printBooking(a.out, b)
		return nil
	})
}

func runBookings(ctx context.Context, a *app, args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	return withSession(ctx, a, func(svc *api.Client) error {
		bs, err := svc.Bookings.List(ctx)
		if err != nil {
			return err
		}
		printBookings(a.out, bs)
		return nil
	})
}

func runBooking(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	return withSession(ctx, a, func(svc *api.Client) error {
		b, err := svc.Bookings.Get(ctx, args[0])
		if err != nil {
			return err
		}
		printBooking(a.out, b)
		return nil
	})
}

func runPay(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("pay", flag.ContinueOnError)
	bookingID := fs.String("booking", "", "booking id")
	method := fs.String("method", string(api.MethodBankTransfer), "bank_transfer, credit_card or e_wallet")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *bookingID == "" {
		return errUsage
	}
	switch api.PaymentMethod(*method) {
	case api.MethodBankTransfer, api.MethodCreditCard, api.MethodEWallet:
	default:
		return errUsage
	}

	return withSession(ctx, a, func(svc *api.Client) error {
		p, err := svc.Payments.Create(ctx, api.PaymentCreate{
			BookingID:     *bookingID,
			PaymentMethod: api.PaymentMethod(*method),
		})
		if err != nil {
			return err
		}
		printPayment(a.out, p)
		return nil
	})
}

func runComplete(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	return withSession(ctx, a, func(svc *api.Client) error {
		msg, err := svc.Payments.Complete(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, msg.Message)
		return nil
	})
}

func runPayment(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	return withSession(ctx, a, func(svc *api.Client) error {
		p, err := svc.Payments.Get(ctx, args[0])
		if err != nil {
			return err
		}
		printPayment(a.out, p)
		return nil
	})
}

func runWishlist(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "list":
		if len(args) != 1 {
			return errUsage
		}
		return withSession(ctx, a, func(svc *api.Client) error {
			ids, err := svc.Wishlist.List(ctx)
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Fprintln(a.out, id)
			}
			return nil
		})
	case "add", "remove":
		if len(args) != 2 {
			return errUsage
		}
		return withSession(ctx, a, func(svc *api.Client) error {
			var (
				msg *api.Message
				err error
			)
			if args[0] == "add" {
				msg, err = svc.Wishlist.Add(ctx, args[1])
			} else {
				msg, err = svc.Wishlist.Remove(ctx, args[1])
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, msg.Message)
			return nil
		})
	default:
		return errUsage
	}
}

func runSeed(ctx context.Context, a *app, args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	return withSession(ctx, a, func(svc *api.Client) error {
		msg, err := svc.Catalog.Seed(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, msg.Message)
		return nil
	})
}

// withSession restores the persisted session and runs fn against the API.
func withSession(ctx context.Context, a *app, fn func(svc *api.Client) error) error {
	c, err := a.session(ctx)
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(c.API())
}
