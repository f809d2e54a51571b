package sandbox

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/MrEthical07/goUmroh/api"
	"github.com/google/uuid"
)

var (
	errPackageNotFound  = errors.New("package not found")
	errBookingNotFound  = errors.New("booking not found")
	errPaymentNotFound  = errors.New("payment not found")
	errAlreadyWishlist  = errors.New("already in wishlist")
	errNotInWishlist    = errors.New("not found in wishlist")
	errInvalidPassenger = errors.New("num_passengers must be at least 1")
)

type wishlistEntry struct {
	userID    string
	packageID string
}

// catalog is the in-memory document store. Ordering of list results follows
// insertion order.
type catalog struct {
	mu sync.RWMutex

	packages []api.Package
	bookings []api.Booking
	payments []api.Payment
	wishlist []wishlistEntry

	now func() time.Time
}

func newCatalog(now func() time.Time) *catalog {
	return &catalog{now: now}
}

func (c *catalog) stamp() api.Timestamp {
	return api.Timestamp{Time: c.now().UTC()}
}

// seed inserts the default packages when the catalog is empty and reports
// how many were inserted.
func (c *catalog) seed() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.packages) > 0 {
		return 0
	}
	for _, p := range seedPackages() {
		p.ID = uuid.NewString()
		p.CreatedAt = c.stamp()
		c.packages = append(c.packages, p)
	}
	return len(c.packages)
}

func (c *catalog) addPackage(p api.Package) api.Package {
	c.mu.Lock()
	defer c.mu.Unlock()

	p.ID = uuid.NewString()
	p.CreatedAt = c.stamp()
	c.packages = append(c.packages, p)
	return p
}

func (c *catalog) listPackages(filter api.PackageFilter) []api.Package {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]api.Package, 0, len(c.packages))
	for _, p := range c.packages {
		if filter.PackageType != "" && p.PackageType != filter.PackageType {
			continue
		}
		if filter.MinPrice != nil && p.Price < *filter.MinPrice {
			continue
		}
		if filter.MaxPrice != nil && p.Price > *filter.MaxPrice {
			continue
		}
		if filter.DepartureCity != "" && p.DepartureCity != filter.DepartureCity {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (c *catalog) getPackage(id string) (api.Package, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, p := range c.packages {
		if p.ID == id {
			return p, nil
		}
	}
	return api.Package{}, errPackageNotFound
}

func (c *catalog) createBooking(userID string, in api.BookingCreate) (api.Booking, error) {
	if in.NumPassengers < 1 {
		return api.Booking{}, errInvalidPassenger
	}
	pkg, err := c.getPackage(in.PackageID)
	if err != nil {
		return api.Booking{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	b := api.Booking{
		ID:            uuid.NewString(),
		UserID:        userID,
		PackageID:     in.PackageID,
		CustomerName:  in.CustomerName,
		CustomerEmail: in.CustomerEmail,
		CustomerPhone: in.CustomerPhone,
		NumPassengers: in.NumPassengers,
		TotalPrice:    pkg.Price * int64(in.NumPassengers),
		PaymentStatus: api.PaymentPending,
		BookingStatus: api.BookingConfirmed,
		CreatedAt:     c.stamp(),
	}
	c.bookings = append(c.bookings, b)
	return b, nil
}

func (c *catalog) listBookings(userID string) []api.Booking {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]api.Booking, 0)
	for _, b := range c.bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out
}

func (c *catalog) getBooking(userID, id string) (api.Booking, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, b := range c.bookings {
		if b.ID == id && b.UserID == userID {
			return b, nil
		}
	}
	return api.Booking{}, errBookingNotFound
}

func (c *catalog) createPayment(userID string, in api.PaymentCreate) (api.Payment, error) {
	booking, err := c.getBooking(userID, in.BookingID)
	if err != nil {
		return api.Payment{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	p := api.Payment{
		ID:            uuid.NewString(),
		BookingID:     booking.ID,
		UserID:        userID,
		Amount:        booking.TotalPrice,
		PaymentMethod: in.PaymentMethod,
		PaymentStatus: api.PaymentPending,
		TransactionID: newTransactionID(),
		CreatedAt:     c.stamp(),
	}
	c.payments = append(c.payments, p)
	return p, nil
}

// completePayment marks the payment and its booking completed.
func (c *catalog) completePayment(userID, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := -1
	for i, p := range c.payments {
		if p.ID == id && p.UserID == userID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return errPaymentNotFound
	}

	done := c.stamp()
	c.payments[idx].PaymentStatus = api.PaymentCompleted
	c.payments[idx].CompletedAt = &done

	for i := range c.bookings {
		if c.bookings[i].ID == c.payments[idx].BookingID {
			c.bookings[i].PaymentStatus = api.PaymentCompleted
		}
	}
	return nil
}

func (c *catalog) getPayment(userID, id string) (api.Payment, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, p := range c.payments {
		if p.ID == id && p.UserID == userID {
			return p, nil
		}
	}
	return api.Payment{}, errPaymentNotFound
}

func (c *catalog) addWishlist(userID, packageID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range c.wishlist {
		if e.userID == userID && e.packageID == packageID {
			return errAlreadyWishlist
		}
	}
	c.wishlist = append(c.wishlist, wishlistEntry{userID: userID, packageID: packageID})
	return nil
}

func (c *catalog) removeWishlist(userID, packageID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, e := range c.wishlist {
		if e.userID == userID && e.packageID == packageID {
			c.wishlist = append(c.wishlist[:i], c.wishlist[i+1:]...)
			return nil
		}
	}
	return errNotInWishlist
}

func (c *catalog) listWishlist(userID string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]string, 0)
	for _, e := range c.wishlist {
		if e.userID == userID {
			out = append(out, e.packageID)
		}
	}
	return out
}

// counts backs GET /healthz.
func (c *catalog) counts() map[string]int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return map[string]int{
		"packages": len(c.packages),
		"bookings": len(c.bookings),
		"payments": len(c.payments),
		"wishlist": len(c.wishlist),
	}
}

func newTransactionID() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "TRX-" + strings.ToUpper(raw[:12])
}
