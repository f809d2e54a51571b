package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// PackageService reads the catalog. Anonymous access is allowed.
type PackageService struct {
	c *Client
}

// List returns packages matching filter.
func (s *PackageService) List(ctx context.Context, filter PackageFilter) ([]Package, error) {
	var out []Package
	err := s.c.do(ctx, call{
		method: http.MethodGet,
		route:  "/packages",
		path:   "/packages",
		query:  filter.values(),
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns one package.
func (s *PackageService) Get(ctx context.Context, id string) (*Package, error) {
	var out Package
	err := s.c.do(ctx, call{
		method: http.MethodGet,
		route:  "/packages/{id}",
		path:   "/packages/" + escape(id),
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (f PackageFilter) values() url.Values {
	v := url.Values{}
	if f.PackageType != "" {
		v.Set("package_type", string(f.PackageType))
	}
	if f.MinPrice != nil {
		v.Set("min_price", strconv.FormatInt(*f.MinPrice, 10))
	}
	if f.MaxPrice != nil {
		v.Set("max_price", strconv.FormatInt(*f.MaxPrice, 10))
	}
	if f.DepartureCity != "" {
		v.Set("departure_city", f.DepartureCity)
	}
	return v
}
