package api

import (
	"context"
	"net/http"
)

// BookingService manages the caller's bookings. The backend requires an
// authenticated caller; the client does not pre-check.
type BookingService struct {
	c *Client
}

// Create books a package for the caller. The backend computes the total price
// and confirms the booking with payment pending.
func (s *BookingService) Create(ctx context.Context, in BookingCreate) (*Booking, error) {
	var out Booking
	err := s.c.do(ctx, call{
		method: http.MethodPost,
		route:  "/bookings",
		path:   "/bookings",
		body:   in,
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// List returns the caller's bookings in the order the backend sends them.
func (s *BookingService) List(ctx context.Context) ([]Booking, error) {
	var out []Booking
	err := s.c.do(ctx, call{
		method: http.MethodGet,
		route:  "/bookings",
		path:   "/bookings",
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Get fetches one of the caller's bookings by id.
func (s *BookingService) Get(ctx context.Context, id string) (*Booking, error) {
	var out Booking
	err := s.c.do(ctx, call{
		method: http.MethodGet,
		route:  "/bookings/{id}",
		path:   "/bookings/" + escape(id),
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
