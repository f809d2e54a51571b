package api

import (
	"context"
	"net/http"
)

// CatalogService holds catalog administration calls.
type CatalogService struct {
	c *Client
}

// Seed asks the backend to load its demo packages. It is a no-op on a
// backend that already has packages.
func (s *CatalogService) Seed(ctx context.Context) (*Message, error) {
	var out Message
	err := s.c.do(ctx, call{
		method: http.MethodPost,
		route:  "/seed",
		path:   "/seed",
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
