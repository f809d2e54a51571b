package sandbox

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/MrEthical07/goUmroh/api"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type packageRequest struct {
	Name          string   `json:"name" validate:"required"`
	Description   string   `json:"description"`
	Price         int64    `json:"price" validate:"gte=0"`
	Duration      string   `json:"duration"`
	PackageType   string   `json:"package_type" validate:"required,oneof=umrah tour"`
	DepartureCity string   `json:"departure_city" validate:"required"`
	DepartureDate string   `json:"departure_date"`
	Airline       string   `json:"airline"`
	Hotel         string   `json:"hotel"`
	HotelRating   int      `json:"hotel_rating" validate:"gte=0,lte=5"`
	Facilities    []string `json:"facilities"`
	Itinerary     []string `json:"itinerary"`
	ImageURL      string   `json:"image_url"`
	Availability  int      `json:"availability" validate:"gte=0"`
}

func (r packageRequest) toPackage() api.Package {
	return api.Package{
		Name:          r.Name,
		Description:   r.Description,
		Price:         r.Price,
		Duration:      r.Duration,
		PackageType:   api.PackageType(r.PackageType),
		DepartureCity: r.DepartureCity,
		DepartureDate: r.DepartureDate,
		Airline:       r.Airline,
		Hotel:         r.Hotel,
		HotelRating:   r.HotelRating,
		Facilities:    r.Facilities,
		Itinerary:     r.Itinerary,
		ImageURL:      r.ImageURL,
		Availability:  r.Availability,
	}
}

type bookingRequest struct {
	PackageID     string `json:"package_id" validate:"required"`
	CustomerName  string `json:"customer_name" validate:"required"`
	CustomerEmail string `json:"customer_email" validate:"required,email"`
	CustomerPhone string `json:"customer_phone" validate:"required"`
	NumPassengers int    `json:"num_passengers" validate:"gte=1"`
}

func (r bookingRequest) toBookingCreate() api.BookingCreate {
	return api.BookingCreate{
		PackageID:     r.PackageID,
		CustomerName:  r.CustomerName,
		CustomerEmail: r.CustomerEmail,
		CustomerPhone: r.CustomerPhone,
		NumPassengers: r.NumPassengers,
	}
}

type paymentRequest struct {
	BookingID     string `json:"booking_id" validate:"required"`
	PaymentMethod string `json:"payment_method" validate:"required,oneof=bank_transfer credit_card e_wallet"`
}

func (r paymentRequest) toPaymentCreate() api.PaymentCreate {
	return api.PaymentCreate{
		BookingID:     r.BookingID,
		PaymentMethod: api.PaymentMethod(r.PaymentMethod),
	}
}

// validateRequest reports the first failing field in a form suitable for the
// detail of a 422 response.
func validateRequest(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		return fmt.Errorf("invalid validation error: %w", err)
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	first := fieldErrs[0]
	switch first.Tag() {
	case "required":
		return fmt.Errorf("field '%s' is required", first.Field())
	case "email":
		return fmt.Errorf("field '%s' must be a valid email address", first.Field())
	case "oneof":
		return fmt.Errorf("field '%s' must be one of: %s", first.Field(), first.Param())
	case "gte", "lte":
		return fmt.Errorf("field '%s' is out of range", first.Field())
	default:
		return fmt.Errorf("field '%s' validation failed on tag '%s'", first.Field(), first.Tag())
	}
}
