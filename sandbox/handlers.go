package sandbox

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/MrEthical07/goUmroh/api"
	"github.com/MrEthical07/goUmroh/internal/rate"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// -------- IDENTITY PROVIDER --------

func (s *Server) authorize(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	redirect := q.Get("redirect")
	if redirect == "" {
		writeError(w, http.StatusBadRequest, "redirect required")
		return
	}
	target, err := url.Parse(redirect)
	if err != nil || target.Scheme == "" {
		writeError(w, http.StatusBadRequest, "invalid redirect")
		return
	}

	user := s.identity
	if email := strings.TrimSpace(q.Get("email")); email != "" {
		user = api.User{ID: email, Email: email, Name: q.Get("name")}
		if user.Name == "" {
			user.Name = email
		}
	}

	id, err := s.sessions.mintLogin(r.Context(), user)
	if err != nil {
		s.logger.Error("mint login id", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "login unavailable")
		return
	}

	values := target.Query()
	values.Set("session_id", id)
	target.RawQuery = values.Encode()
	http.Redirect(w, r, target.String(), http.StatusFound)
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.counts())
}

// -------- AUTH --------

func (s *Server) exchangeSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.Header.Get(api.HeaderSessionID)
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "Session ID required")
		return
	}

	client := clientAddr(r)
	if err := s.limiter.Check(r.Context(), client); err != nil {
		if errors.Is(err, rate.ErrRateLimited) {
			writeError(w, http.StatusTooManyRequests, "Too many attempts")
			return
		}
		s.logger.Warn("exchange throttle unavailable", zap.Error(err))
	}

	user, err := s.sessions.consumeLogin(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, ErrLoginUnknown) {
			if err := s.limiter.Hit(r.Context(), client); err != nil && !errors.Is(err, rate.ErrRateLimited) {
				s.logger.Warn("exchange throttle unavailable", zap.Error(err))
			}
			writeError(w, http.StatusUnauthorized, "Invalid session")
			return
		}
		s.logger.Error("consume login id", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "session store unavailable")
		return
	}
	_ = s.limiter.Reset(r.Context(), client)

	sid := uuid.NewString()
	token, err := s.tokens.Issue(user.ID, sid)
	if err != nil {
		s.logger.Error("issue session token", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "token issue failed")
		return
	}
	if err := s.sessions.openSession(r.Context(), sid, user, s.tokens.TTL()); err != nil {
		s.logger.Error("open session", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "session store unavailable")
		return
	}

	writeJSON(w, http.StatusOK, api.SessionExchange{User: user, SessionToken: token})
}

func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFromContext(r.Context())
	writeJSON(w, http.StatusOK, p.User)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if token, ok := bearerToken(r.Header.Get("Authorization")); ok {
		if claims, err := s.tokens.Parse(token); err == nil {
			if err := s.sessions.closeSession(r.Context(), claims.SID); err != nil {
				s.logger.Warn("close session", zap.Error(err))
			}
		}
	}
	writeJSON(w, http.StatusOK, api.Message{Message: "Logged out successfully"})
}

// -------- PACKAGES --------

func (s *Server) listPackages(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := api.PackageFilter{
		PackageType:   api.PackageType(q.Get("package_type")),
		DepartureCity: q.Get("departure_city"),
	}
	var err error
	if filter.MinPrice, err = optionalInt(q, "min_price"); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if filter.MaxPrice, err = optionalInt(q, "max_price"); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.catalog.listPackages(filter))
}

func (s *Server) getPackage(w http.ResponseWriter, r *http.Request) {
	pkg, err := s.catalog.getPackage(chi.URLParam(r, "packageID"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pkg)
}

func (s *Server) createPackage(w http.ResponseWriter, r *http.Request) {
	var in packageRequest
	if !decodeJSON(w, r, &in) {
		return
	}
	writeJSON(w, http.StatusOK, s.catalog.addPackage(in.toPackage()))
}

func (s *Server) seed(w http.ResponseWriter, _ *http.Request) {
	n := s.catalog.seed()
	if n == 0 {
		writeJSON(w, http.StatusOK, api.Message{Message: "Data already seeded"})
		return
	}
	writeJSON(w, http.StatusOK, api.Message{Message: "Seeded " + strconv.Itoa(n) + " packages"})
}

// -------- BOOKINGS --------

func (s *Server) createBooking(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFromContext(r.Context())
	var in bookingRequest
	if !decodeJSON(w, r, &in) {
		return
	}
	b, err := s.catalog.createBooking(p.User.ID, in.toBookingCreate())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) listBookings(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFromContext(r.Context())
	writeJSON(w, http.StatusOK, s.catalog.listBookings(p.User.ID))
}

func (s *Server) getBooking(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFromContext(r.Context())
	b, err := s.catalog.getBooking(p.User.ID, chi.URLParam(r, "bookingID"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// -------- PAYMENTS --------

func (s *Server) createPayment(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFromContext(r.Context())
	var in paymentRequest
	if !decodeJSON(w, r, &in) {
		return
	}
	pay, err := s.catalog.createPayment(p.User.ID, in.toPaymentCreate())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pay)
}

func (s *Server) completePayment(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFromContext(r.Context())
	if err := s.catalog.completePayment(p.User.ID, chi.URLParam(r, "paymentID")); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.Message{Message: "Payment completed successfully"})
}

func (s *Server) getPayment(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFromContext(r.Context())
	pay, err := s.catalog.getPayment(p.User.ID, chi.URLParam(r, "paymentID"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pay)
}

// -------- WISHLIST --------

func (s *Server) addWishlist(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFromContext(r.Context())
	packageID := r.URL.Query().Get("package_id")
	if packageID == "" {
		writeError(w, http.StatusUnprocessableEntity, "package_id required")
		return
	}
	if err := s.catalog.addWishlist(p.User.ID, packageID); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.Message{Message: "Added to wishlist"})
}

func (s *Server) removeWishlist(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFromContext(r.Context())
	if err := s.catalog.removeWishlist(p.User.ID, chi.URLParam(r, "packageID")); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.Message{Message: "Removed from wishlist"})
}

func (s *Server) listWishlist(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFromContext(r.Context())
	writeJSON(w, http.StatusOK, s.catalog.listWishlist(p.User.ID))
}

// -------- HELPERS --------

func optionalInt(q url.Values, key string) (*int64, error) {
	raw := q.Get(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, errors.New(key + " must be an integer")
	}
	return &v, nil
}

// decodeJSON decodes and validates a request body, answering 422 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid request body")
		return false
	}
	if err := validateRequest(dst); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return false
	}
	return true
}

func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errPackageNotFound):
		writeError(w, http.StatusNotFound, "Package not found")
	case errors.Is(err, errBookingNotFound):
		writeError(w, http.StatusNotFound, "Booking not found")
	case errors.Is(err, errPaymentNotFound):
		writeError(w, http.StatusNotFound, "Payment not found")
	case errors.Is(err, errNotInWishlist):
		writeError(w, http.StatusNotFound, "Not found in wishlist")
	case errors.Is(err, errAlreadyWishlist):
		writeError(w, http.StatusBadRequest, "Already in wishlist")
	case errors.Is(err, errInvalidPassenger):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError uses the backend's {"detail": ...} error shape.
func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
