package api

import (
	"context"
	"net/http"
	"net/url"
)

// WishlistService manages saved packages.
type WishlistService struct {
	c *Client
}

// Add saves a package. The id travels as the package_id query parameter.
func (s *WishlistService) Add(ctx context.Context, packageID string) (*Message, error) {
	var out Message
	err := s.c.do(ctx, call{
		method: http.MethodPost,
		route:  "/wishlist",
		path:   "/wishlist",
		query:  url.Values{"package_id": []string{packageID}},
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *WishlistService) Remove(ctx context.Context, packageID string) (*Message, error) {
	var out Message
	err := s.c.do(ctx, call{
		method: http.MethodDelete,
		route:  "/wishlist/{id}",
		path:   "/wishlist/" + escape(packageID),
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// List returns the saved package ids.
func (s *WishlistService) List(ctx context.Context) ([]string, error) {
	var out []string
	err := s.c.do(ctx, call{
		method: http.MethodGet,
		route:  "/wishlist",
		path:   "/wishlist",
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
