package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"vows-and-wishes/config"
	"vows-and-wishes/internal/delivery/http/handler"
	"vows-and-wishes/internal/delivery/http/middleware"
	"vows-and-wishes/internal/domain/entity"
	"vows-and-wishes/internal/repository"
	"vows-and-wishes/internal/service"
	"vows-and-wishes/internal/usecase"
	"vows-and-wishes/pkg/jwt"
	"vows-and-wishes/pkg/validator"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type memoryTokens struct {
	mu     sync.Mutex
	tokens map[string]bool
}

func (m *memoryTokens) Store(_ context.Context, userID uuid.UUID, tokenID string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[userID.String()+tokenID] = true
	return nil
}

func (m *memoryTokens) Exists(_ context.Context, userID uuid.UUID, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens[userID.String()+tokenID], nil
}

func (m *memoryTokens) Revoke(_ context.Context, userID uuid.UUID, tokenID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, userID.String()+tokenID)
	return nil
}

type noopLocker struct{}

func (noopLocker) Acquire(context.Context, string, time.Duration) (func(context.Context) error, error) {
	return func(context.Context) error { return nil }, nil
}

func newTestServer(t *testing.T, burst int) *httptest.Server {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&entity.User{}, &entity.Service{}, &entity.Appointment{}, &entity.AuditLog{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	log := logrus.New()
	log.SetOutput(io.Discard)

	userRepo := repository.NewUserRepository()
	serviceRepo := repository.NewServiceRepository()
	auditService := service.NewAuditService(log, repository.NewAuditLogRepository())
	jwtService := jwt.NewJWTService(config.JWTConfig{Secret: "test-secret", AccessExpiry: time.Hour})
	tokens := &memoryTokens{tokens: make(map[string]bool)}
	v := validator.NewValidator()

	authUsecase := usecase.NewAuthUsecase(db, log, userRepo, tokens, auditService, jwtService)
	catalogUsecase := usecase.NewCatalogUsecase(db, log, serviceRepo, userRepo, auditService, "91")
	appointmentUsecase := usecase.NewAppointmentUsecase(db, log, repository.NewAppointmentRepository(), serviceRepo, noopLocker{}, auditService)

	router := NewRouter(
		handler.NewAuthHandler(authUsecase, v),
		handler.NewCatalogHandler(catalogUsecase),
		handler.NewAppointmentHandler(appointmentUsecase, v),
		middleware.NewAuthMiddleware(authUsecase, log),
		middleware.NewCORSMiddleware(""),
		middleware.NewRateLimitMiddleware(0.001, burst, false, log),
	)

	srv := httptest.NewServer(router.Setup())
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, srv *httptest.Server, method, path, token string, body interface{}, out interface{}) int {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, srv.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

type detailBody struct {
	Detail string            `json:"detail"`
	Errors map[string]string `json:"errors"`
}

type messageBody struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

type serviceBody struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Rating   float64 `json:"rating"`
}

func seedAndList(t *testing.T, srv *httptest.Server) []serviceBody {
	t.Helper()

	var seeded messageBody
	if code := doJSON(t, srv, http.MethodPost, "/api/init-data", "", nil, &seeded); code != http.StatusOK {
		t.Fatalf("init-data: status %d", code)
	}
	if seeded.Count == 0 {
		t.Fatalf("expected seeded count, got %+v", seeded)
	}

	var services []serviceBody
	if code := doJSON(t, srv, http.MethodGet, "/api/services", "", nil, &services); code != http.StatusOK {
		t.Fatalf("services: status %d", code)
	}
	return services
}

func TestRouter_HealthAndSeed(t *testing.T) {
	srv := newTestServer(t, 100)

	var home messageBody
	if code := doJSON(t, srv, http.MethodGet, "/", "", nil, &home); code != http.StatusOK || home.Message != "Backend is running!" {
		t.Fatalf("unexpected home response %d %+v", code, home)
	}

	var ping map[string]bool
	if code := doJSON(t, srv, http.MethodGet, "/api/ping", "", nil, &ping); code != http.StatusOK || !ping["ok"] {
		t.Fatalf("unexpected ping response %d %v", code, ping)
	}

	services := seedAndList(t, srv)
	if len(services) != len(entity.Categories) {
		t.Fatalf("expected %d services, got %d", len(entity.Categories), len(services))
	}
	if services[0].Rating == 0 {
		t.Fatalf("expected numeric rating, got %+v", services[0])
	}

	var again messageBody
	doJSON(t, srv, http.MethodPost, "/api/init-data", "", nil, &again)
	if again.Message != "Sample data already exists" {
		t.Fatalf("expected idempotent seed, got %+v", again)
	}

	var filtered []serviceBody
	doJSON(t, srv, http.MethodGet, "/api/services?category=all&location=All%20Locations&search=catering", "", nil, &filtered)
	if len(filtered) != 1 || filtered[0].Category != "catering" {
		t.Fatalf("unexpected filtered result %+v", filtered)
	}
}

func TestRouter_AuthFlow(t *testing.T) {
	srv := newTestServer(t, 100)
	services := seedAndList(t, srv)

	var auth struct {
		Token string `json:"token"`
		User  struct {
			Name  string  `json:"name"`
			Email string  `json:"email"`
			Phone *string `json:"phone"`
		} `json:"user"`
	}
	code := doJSON(t, srv, http.MethodPost, "/api/register", "", map[string]string{
		"name": "Asha", "email": "asha@example.com", "password": "secret1",
	}, &auth)
	if code != http.StatusOK || auth.Token == "" {
		t.Fatalf("register: status %d token %q", code, auth.Token)
	}

	var dup detailBody
	if code := doJSON(t, srv, http.MethodPost, "/api/register", "", map[string]string{
		"name": "Asha", "email": "asha@example.com", "password": "secret1",
	}, &dup); code != http.StatusBadRequest || dup.Detail != "Email already registered" {
		t.Fatalf("expected duplicate rejection, got %d %+v", code, dup)
	}

	var invalid detailBody
	if code := doJSON(t, srv, http.MethodPost, "/api/register", "", map[string]string{"email": "bad"}, &invalid); code != http.StatusBadRequest || invalid.Errors["Email"] == "" {
		t.Fatalf("expected validation errors, got %d %+v", code, invalid)
	}

	var badLogin detailBody
	if code := doJSON(t, srv, http.MethodPost, "/api/login", "", map[string]string{
		"email": "asha@example.com", "password": "nope",
	}, &badLogin); code != http.StatusUnauthorized || badLogin.Detail != "Invalid credentials" {
		t.Fatalf("expected invalid credentials, got %d %+v", code, badLogin)
	}

	if code := doJSON(t, srv, http.MethodGet, "/api/profile", "", nil, nil); code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", code)
	}

	var empty detailBody
	if code := doJSON(t, srv, http.MethodPut, "/api/update-profile", auth.Token, map[string]string{}, &empty); code != http.StatusBadRequest || empty.Detail != "No valid fields to update" {
		t.Fatalf("expected no fields error, got %d %+v", code, empty)
	}

	var updated struct {
		Message string `json:"message"`
		User    struct {
			Phone *string `json:"phone"`
		} `json:"user"`
	}
	if code := doJSON(t, srv, http.MethodPut, "/api/update-profile", auth.Token, map[string]string{"phone": "9876543210"}, &updated); code != http.StatusOK || updated.User.Phone == nil {
		t.Fatalf("update profile: %d %+v", code, updated)
	}

	var chat map[string]string
	if code := doJSON(t, srv, http.MethodGet, "/api/chat/"+services[0].ID, auth.Token, nil, &chat); code != http.StatusOK {
		t.Fatalf("chat: status %d", code)
	}
	if !strings.HasPrefix(chat["whatsapp_link"], "https://wa.me/") || !strings.Contains(chat["whatsapp_link"], "9876543210") {
		t.Fatalf("unexpected chat link %q", chat["whatsapp_link"])
	}

	if code := doJSON(t, srv, http.MethodPost, "/api/logout", auth.Token, nil, nil); code != http.StatusOK {
		t.Fatalf("logout: status %d", code)
	}
	var revoked detailBody
	if code := doJSON(t, srv, http.MethodGet, "/api/profile", auth.Token, nil, &revoked); code != http.StatusUnauthorized || revoked.Detail != "Token has been revoked" {
		t.Fatalf("expected revoked token, got %d %+v", code, revoked)
	}
}

func TestRouter_BookingFlow(t *testing.T) {
	srv := newTestServer(t, 100)
	services := seedAndList(t, srv)
	id := services[0].ID

	var booked struct {
		Message     string `json:"message"`
		Appointment struct {
			Date      string `json:"date"`
			Time      string `json:"time"`
			UserEmail string `json:"user_email"`
		} `json:"appointment"`
	}
	code := doJSON(t, srv, http.MethodPost, "/api/appointments/book", "", map[string]string{
		"service_id": id, "date": "2099-05-01", "time": "14:00",
	}, &booked)
	if code != http.StatusOK || booked.Appointment.Time != "14:00" || booked.Appointment.UserEmail != entity.GuestEmail {
		t.Fatalf("book slot: %d %+v", code, booked)
	}

	var conflict detailBody
	code = doJSON(t, srv, http.MethodPost, "/api/book-appointment", "", map[string]string{
		"service_id": id, "appointment_date": "2099-05-01", "email": "late@example.com",
	}, &conflict)
	if code != http.StatusConflict || conflict.Detail != "This date is already booked for the selected service" {
		t.Fatalf("expected whole-day conflict, got %d %+v", code, conflict)
	}

	var missing detailBody
	if code := doJSON(t, srv, http.MethodPost, "/api/book-appointment", "", map[string]string{"service_id": id}, &missing); code != http.StatusBadRequest || missing.Detail != "Missing required fields" {
		t.Fatalf("expected missing fields, got %d %+v", code, missing)
	}

	var badSlot detailBody
	if code := doJSON(t, srv, http.MethodPost, "/api/appointments/book", "", map[string]string{
		"service_id": id, "date": "2099-05-02", "time": "11:00",
	}, &badSlot); code != http.StatusBadRequest || badSlot.Errors["Time"] == "" {
		t.Fatalf("expected time validation error, got %d %+v", code, badSlot)
	}

	if code := doJSON(t, srv, http.MethodPost, "/api/book-appointment", "", map[string]string{
		"service_id": id, "appointment_date": "2099-05-03",
	}, nil); code != http.StatusOK {
		t.Fatalf("legacy whole-day booking: status %d", code)
	}

	var avail struct {
		ServiceID   string   `json:"service_id"`
		BookedDates []string `json:"booked_dates"`
		BookedSlots []struct {
			Date string `json:"date"`
			Time string `json:"time"`
		} `json:"booked_slots"`
	}
	if code := doJSON(t, srv, http.MethodGet, "/api/appointments/availability/"+id, "", nil, &avail); code != http.StatusOK {
		t.Fatalf("availability: status %d", code)
	}
	if len(avail.BookedDates) != 2 || len(avail.BookedSlots) != 1+len(entity.TimeSlots) {
		t.Fatalf("unexpected availability %+v", avail)
	}

	var legacy struct {
		BookedDates []string `json:"booked_dates"`
	}
	doJSON(t, srv, http.MethodGet, "/api/booked-dates/"+id, "", nil, &legacy)
	if len(legacy.BookedDates) != 2 || legacy.BookedDates[1] != "2099-05-03" {
		t.Fatalf("unexpected booked dates %v", legacy.BookedDates)
	}

	// A member's booking is recorded under their own email.
	var auth struct {
		Token string `json:"token"`
	}
	doJSON(t, srv, http.MethodPost, "/api/register", "", map[string]string{
		"name": "Priya", "email": "priya@example.com", "password": "secret1",
	}, &auth)
	doJSON(t, srv, http.MethodPost, "/api/appointments/book", auth.Token, map[string]string{
		"service_id": id, "date": "2099-06-01", "email": "someone@example.com",
	}, &booked)
	if booked.Appointment.UserEmail != "priya@example.com" {
		t.Fatalf("expected member email, got %q", booked.Appointment.UserEmail)
	}
}

func TestRouter_StaleTokenCannotBookAsGuest(t *testing.T) {
	srv := newTestServer(t, 100)
	id := seedAndList(t, srv)[0].ID

	var auth struct {
		Token string `json:"token"`
	}
	doJSON(t, srv, http.MethodPost, "/api/register", "", map[string]string{
		"name": "Meera", "email": "meera@example.com", "password": "secret1",
	}, &auth)
	if code := doJSON(t, srv, http.MethodPost, "/api/logout", auth.Token, nil, nil); code != http.StatusOK {
		t.Fatalf("logout: status %d", code)
	}

	body := map[string]string{"service_id": id, "date": "2099-07-01"}
	var revoked detailBody
	if code := doJSON(t, srv, http.MethodPost, "/api/appointments/book", auth.Token, body, &revoked); code != http.StatusUnauthorized || revoked.Detail != "Token has been revoked" {
		t.Fatalf("expected revoked token to be refused, got %d %+v", code, revoked)
	}
	var garbled detailBody
	if code := doJSON(t, srv, http.MethodPost, "/api/book-appointment", "not-a-token", map[string]string{
		"service_id": id, "appointment_date": "2099-07-01",
	}, &garbled); code != http.StatusUnauthorized || garbled.Detail != "Invalid or expired token" {
		t.Fatalf("expected invalid token to be refused, got %d %+v", code, garbled)
	}

	var legacy struct {
		BookedDates []string `json:"booked_dates"`
	}
	doJSON(t, srv, http.MethodGet, "/api/booked-dates/"+id, "", nil, &legacy)
	if len(legacy.BookedDates) != 0 {
		t.Fatalf("refused requests must not book, got %v", legacy.BookedDates)
	}

	if code := doJSON(t, srv, http.MethodPost, "/api/appointments/book", "", body, nil); code != http.StatusOK {
		t.Fatalf("guest booking without a header: status %d", code)
	}
}

func TestRouter_RateLimitAndCORS(t *testing.T) {
	srv := newTestServer(t, 2)

	body := map[string]string{"email": "nobody@example.com", "password": "x"}
	for i := 0; i < 2; i++ {
		if code := doJSON(t, srv, http.MethodPost, "/api/login", "", body, nil); code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401, got %d", i, code)
		}
	}
	var limited detailBody
	if code := doJSON(t, srv, http.MethodPost, "/api/login", "", body, &limited); code != http.StatusTooManyRequests || limited.Detail != middleware.RateLimitExceededMessage {
		t.Fatalf("expected rate limit, got %d %+v", code, limited)
	}

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/appointments/book", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("preflight: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("unexpected preflight response %d %v", resp.StatusCode, resp.Header)
	}
}

func TestRouter_RateLimitIgnoresRotatedForwardedFor(t *testing.T) {
	srv := newTestServer(t, 1)

	body, err := json.Marshal(map[string]string{"email": "nobody@example.com", "password": "x"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	codes := make([]int, 0, 5)
	for i := 0; i < 5; i++ {
		req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/login", bytes.NewReader(body))
		if err != nil {
			t.Fatalf("new request: %v", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("10.0.0.%d", i))
		resp, err := srv.Client().Do(req)
		if err != nil {
			t.Fatalf("login: %v", err)
		}
		resp.Body.Close()
		codes = append(codes, resp.StatusCode)
	}

	if codes[0] != http.StatusUnauthorized {
		t.Fatalf("expected first attempt to reach the handler, got %d", codes[0])
	}
	for i, code := range codes[1:] {
		if code != http.StatusTooManyRequests {
			t.Fatalf("attempt %d: expected 429 despite a new X-Forwarded-For, got %d", i+1, code)
		}
	}
}
