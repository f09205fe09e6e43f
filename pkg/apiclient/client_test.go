package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newServer(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL + "/")
}

func TestListServices_SendsOnlySetFilters(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/services" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("category") != "venues" || q.Has("location") || q.Get("search") != "royal hall" {
			t.Errorf("unexpected query %v", q)
		}
		w.Write([]byte(`[{"id":"a","name":"Royal Palace","category":"venues","rating":4.8,"contact_phone":"555-0101"}]`))
	})

	services, err := c.ListServices(context.Background(), ServiceFilter{Category: "venues", Search: "royal hall"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(services) != 1 || services[0].Rating != 4.8 || services[0].ChatPhone() != "555-0101" {
		t.Fatalf("unexpected services %+v", services)
	}
}

func TestListServices_MalformedPayload(t *testing.T) {
	cases := map[string]string{
		"not json":       `<html>oops</html>`,
		"missing id":     `[{"name":"x","category":"venues"}]`,
		"rating as text": `[{"id":"a","name":"x","category":"venues","rating":"4.8"}]`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(body))
			})
			_, err := c.ListServices(context.Background(), ServiceFilter{})
			var decodeErr *DecodeError
			if !errors.As(err, &decodeErr) {
				t.Fatalf("expected DecodeError, got %v", err)
			}
		})
	}
}

func TestAvailability(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/appointments/availability/svc-1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"service_id":"svc-1","booked_dates":["2025-12-01"],"booked_slots":[{"date":"2025-12-01","time":"10:00"}]}`))
	})

	avail, err := c.Availability(context.Background(), "svc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(avail.BookedDates) != 1 || avail.BookedSlots[0].Time != "10:00" {
		t.Fatalf("unexpected availability %+v", avail)
	}

	if _, err := c.Availability(context.Background(), " "); !errors.Is(err, ErrEmptyServiceID) {
		t.Fatalf("expected ErrEmptyServiceID, got %v", err)
	}
}

func TestAvailability_RejectsBadDates(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"service_id":"svc-1","booked_dates":["12/01/2025"],"booked_slots":[]}`))
	})

	_, err := c.Availability(context.Background(), "svc-1")
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
}

func TestBook_SendsTokenAndSurfacesDetail(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("unexpected auth header %q", got)
		}
		var req BookRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.Time != "" {
			t.Errorf("expected whole-day request, got time %q", req.Time)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"detail":"This date is already booked for the selected service"}`))
	})

	_, err := c.Book(context.Background(), "tok", BookRequest{ServiceID: "svc-1", Date: "2025-12-01"})
	if !IsStatus(err, http.StatusConflict) {
		t.Fatalf("expected 409 APIError, got %v", err)
	}
	if got := DetailOr(err, "Booking failed"); got != "This date is already booked for the selected service" {
		t.Fatalf("unexpected detail %q", got)
	}
}

func TestDetailOr_FallsBack(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"detail":[{"loc":["body","date"],"msg":"field required"}]}`))
	})

	_, err := c.Book(context.Background(), "", BookRequest{ServiceID: "svc-1"})
	if got := DetailOr(err, "Booking failed"); got != "Booking failed" {
		t.Fatalf("expected fallback for non-string detail, got %q", got)
	}
	if got := DetailOr(errors.New("dial tcp: refused"), "Booking failed"); got != "Booking failed" {
		t.Fatalf("expected fallback for transport error, got %q", got)
	}
}

func TestDetailOr_UsesMessageWhenDetailMissing(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"message":"Upstream unavailable"}`))
	})

	_, err := c.Book(context.Background(), "", BookRequest{ServiceID: "svc-1", Date: "2025-12-01"})
	if got := DetailOr(err, "Booking failed"); got != "Upstream unavailable" {
		t.Fatalf("expected message fallback, got %q", got)
	}
}

func TestDetailOr_PrefersDetailOverMessage(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"detail":"This slot is already booked for the selected service","message":"Conflict"}`))
	})

	_, err := c.Book(context.Background(), "", BookRequest{ServiceID: "svc-1", Date: "2025-12-01", Time: "10:00"})
	if got := DetailOr(err, "Booking failed"); got != "This slot is already booked for the selected service" {
		t.Fatalf("expected detail to win, got %q", got)
	}
}

func TestLoginAndProfile(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/login":
			w.Write([]byte(`{"token":"tok","user":{"id":"u1","name":"Asha","email":"asha@example.com"}}`))
		case "/api/profile":
			if r.Header.Get("Authorization") != "Bearer tok" {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"detail":"Invalid or expired token"}`))
				return
			}
			w.Write([]byte(`{"id":"u1","name":"Asha","email":"asha@example.com","phone":null}`))
		default:
			http.NotFound(w, r)
		}
	})

	auth, err := c.Login(context.Background(), "asha@example.com", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	user, err := c.Profile(context.Background(), auth.Token)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if user.Name != "Asha" || user.Phone != nil {
		t.Fatalf("unexpected user %+v", user)
	}

	if _, err := c.Profile(context.Background(), "stale"); !IsStatus(err, http.StatusUnauthorized) {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestLogin_MissingTokenIsDecodeError(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"user":{"id":"u1","email":"asha@example.com"}}`))
	})

	_, err := c.Login(context.Background(), "asha@example.com", "secret")
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
}
