package api

import (
	"context"
	"net/http"
)

// PaymentService drives the simulated payment flow.
type PaymentService struct {
	c *Client
}

// Create opens a pending payment for a booking.
func (s *PaymentService) Create(ctx context.Context, in PaymentCreate) (*Payment, error) {
	var out Payment
	err := s.c.do(ctx, call{
		method: http.MethodPost,
		route:  "/payments",
		path:   "/payments",
		body:   in,
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Complete marks a payment, and its booking, as completed.
func (s *PaymentService) Complete(ctx context.Context, id string) (*Message, error) {
	var out Message
	err := s.c.do(ctx, call{
		method: http.MethodPost,
		route:  "/payments/{id}/complete",
		path:   "/payments/" + escape(id) + "/complete",
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Get fetches one of the caller's payments by id.
func (s *PaymentService) Get(ctx context.Context, id string) (*Payment, error) {
	var out Payment
	err := s.c.do(ctx, call{
		method: http.MethodGet,
		route:  "/payments/{id}",
		path:   "/payments/" + escape(id),
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
