package api

// User is the authenticated principal as returned by the backend.
type User struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture,omitempty"`
}

// SessionExchange is the body returned by POST /auth/session.
type SessionExchange struct {
	User         User   `json:"user"`
	SessionToken string `json:"session_token"`
}

// PackageType distinguishes pilgrimage packages from leisure tours.
type PackageType string

const (
	PackageUmrah PackageType = "umrah"
	PackageTour  PackageType = "tour"
)

// Package is a catalog entry. Price is in rupiah.
type Package struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Description   string      `json:"description"`
	Price         int64       `json:"price"`
	Duration      string      `json:"duration"`
	PackageType   PackageType `json:"package_type"`
	DepartureCity string      `json:"departure_city"`
	DepartureDate string      `json:"departure_date"`
	Airline       string      `json:"airline"`
	Hotel         string      `json:"hotel"`
	HotelRating   int         `json:"hotel_rating"`
	Facilities    []string    `json:"facilities"`
	Itinerary     []string    `json:"itinerary"`
	ImageURL      string      `json:"image_url"`
	Availability  int         `json:"availability"`
	CreatedAt     Timestamp   `json:"created_at"`
}

// PackageFilter narrows GET /packages. Zero fields are omitted.
type PackageFilter struct {
	PackageType   PackageType
	MinPrice      *int64
	MaxPrice      *int64
	DepartureCity string
}

// PaymentStatus is shared by bookings and payments.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

// Booking is a reservation of a package for a number of passengers.
type Booking struct {
	ID            string        `json:"id"`
	UserID        string        `json:"user_id"`
	PackageID     string        `json:"package_id"`
	CustomerName  string        `json:"customer_name"`
	CustomerEmail string        `json:"customer_email"`
	CustomerPhone string        `json:"customer_phone"`
	NumPassengers int           `json:"num_passengers"`
	TotalPrice    int64         `json:"total_price"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	BookingStatus BookingStatus `json:"booking_status"`
	CreatedAt     Timestamp     `json:"created_at"`
}

// BookingCreate is the body of POST /bookings.
type BookingCreate struct {
	PackageID     string `json:"package_id"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
	NumPassengers int    `json:"num_passengers"`
}

// PaymentMethod selects the simulated payment channel.
type PaymentMethod string

const (
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodCreditCard   PaymentMethod = "credit_card"
	MethodEWallet      PaymentMethod = "e_wallet"
)

// Payment is a simulated payment against a booking.
type Payment struct {
	ID            string        `json:"id"`
	BookingID     string        `json:"booking_id"`
	UserID        string        `json:"user_id"`
	Amount        int64         `json:"amount"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	TransactionID string        `json:"transaction_id"`
	CreatedAt     Timestamp     `json:"created_at"`
	CompletedAt   *Timestamp    `json:"completed_at,omitempty"`
}

// PaymentCreate is the body of POST /payments.
type PaymentCreate struct {
	BookingID     string        `json:"booking_id"`
	PaymentMethod PaymentMethod `json:"payment_method"`
}

// Message is the {"message": ...} acknowledgement body several endpoints return.
type Message struct {
	Message string `json:"message"`
}
