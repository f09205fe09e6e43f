package http

import (
	"net/http"

	"vows-and-wishes/internal/delivery/http/handler"
	"vows-and-wishes/internal/delivery/http/middleware"
	"vows-and-wishes/pkg/response"

	"github.com/gorilla/mux"
)

type Router struct {
	router              *mux.Router
	authHandler         *handler.AuthHandler
	catalogHandler      *handler.CatalogHandler
	appointmentHandler  *handler.AppointmentHandler
	authMiddleware      *middleware.AuthMiddleware
	corsMiddleware      *middleware.CORSMiddleware
	rateLimitMiddleware *middleware.RateLimitMiddleware
}

func NewRouter(
	authHandler *handler.AuthHandler,
	catalogHandler *handler.CatalogHandler,
	appointmentHandler *handler.AppointmentHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
	rateLimitMiddleware *middleware.RateLimitMiddleware,
) *Router {
	return &Router{
		router:              mux.NewRouter(),
		authHandler:         authHandler,
		catalogHandler:      catalogHandler,
		appointmentHandler:  appointmentHandler,
		authMiddleware:      authMiddleware,
		corsMiddleware:      corsMiddleware,
		rateLimitMiddleware: rateLimitMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	r.router.HandleFunc("/", r.home).Methods(http.MethodGet)

	api := r.router.PathPrefix("/api").Subrouter()

	// Health check
	api.HandleFunc("/ping", r.ping).Methods(http.MethodGet)

	// Catalog routes (public)
	api.HandleFunc("/services", r.catalogHandler.ListServices).Methods(http.MethodGet)
	api.HandleFunc("/services/{id}", r.catalogHandler.GetService).Methods(http.MethodGet)
	api.HandleFunc("/init-data", r.catalogHandler.InitData).Methods(http.MethodPost)
	api.HandleFunc("/appointments/availability/{service_id}", r.appointmentHandler.Availability).Methods(http.MethodGet)
	api.HandleFunc("/booked-dates/{service_id}", r.appointmentHandler.BookedDates).Methods(http.MethodGet)

	// Auth routes (public, rate limited)
	auth := api.NewRoute().Subrouter()
	auth.Use(r.rateLimitMiddleware.Handle)
	auth.HandleFunc("/register", r.authHandler.Register).Methods(http.MethodPost)
	auth.HandleFunc("/login", r.authHandler.Login).Methods(http.MethodPost)

	// Booking routes (guest or member, rate limited)
	booking := api.NewRoute().Subrouter()
	booking.Use(r.rateLimitMiddleware.Handle)
	booking.Use(r.authMiddleware.Optional)
	booking.HandleFunc("/appointments/book", r.appointmentHandler.Book).Methods(http.MethodPost)
	booking.HandleFunc("/book-appointment", r.appointmentHandler.BookAppointment).Methods(http.MethodPost)

	// Member routes (protected)
	protected := api.NewRoute().Subrouter()
	protected.Use(r.authMiddleware.Authenticate)
	protected.HandleFunc("/profile", r.authHandler.GetProfile).Methods(http.MethodGet)
	protected.HandleFunc("/update-profile", r.authHandler.UpdateProfile).Methods(http.MethodPut)
	protected.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)
	protected.HandleFunc("/chat/{service_id}", r.catalogHandler.Chat).Methods(http.MethodGet)

	// Preflight for every path; CORS headers come from the middleware
	r.router.PathPrefix("/").Methods(http.MethodOptions).HandlerFunc(r.preflight)

	// Add CORS middleware
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) home(w http.ResponseWriter, req *http.Request) {
	response.Message(w, http.StatusOK, "Backend is running!", nil)
}

func (r *Router) preflight(w http.ResponseWriter, req *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (r *Router) ping(w http.ResponseWriter, req *http.Request) {
	response.JSON(w, http.StatusOK, map[string]bool{"ok": true})
}
