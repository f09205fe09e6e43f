package handler

import (
	"errors"
	"net/http"

	"vows-and-wishes/internal/delivery/dto"
	"vows-and-wishes/internal/delivery/http/middleware"
	"vows-and-wishes/internal/usecase"
	"vows-and-wishes/pkg/response"
	"vows-and-wishes/pkg/whatsapp"

	"github.com/gorilla/mux"
)

type CatalogHandler struct {
	catalogUsecase usecase.CatalogUsecase
}

func NewCatalogHandler(catalogUsecase usecase.CatalogUsecase) *CatalogHandler {
	return &CatalogHandler{
		catalogUsecase: catalogUsecase,
	}
}

// ListServices returns available services matching the query filters
// @Router /services [get]
func (h *CatalogHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := &dto.ServiceQuery{
		Category: q.Get("category"),
		Location: q.Get("location"),
		Search:   q.Get("search"),
	}

	services, err := h.catalogUsecase.ListServices(r.Context(), query)
	if err != nil {
		response.InternalServerError(w, "Failed to load services")
		return
	}

	response.JSON(w, http.StatusOK, services)
}

// GetService returns one service by id
// @Router /services/{id} [get]
func (h *CatalogHandler) GetService(w http.ResponseWriter, r *http.Request) {
	service, err := h.catalogUsecase.GetService(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceLookupError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, service)
}

// InitData seeds the demo catalog once
// @Router /init-data [post]
func (h *CatalogHandler) InitData(w http.ResponseWriter, r *http.Request) {
	count, err := h.catalogUsecase.SeedSampleData(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrSampleDataExists):
			response.Message(w, http.StatusOK, "Sample data already exists", nil)
		default:
			response.InternalServerError(w, "Failed to initialize sample data")
		}
		return
	}

	response.Message(w, http.StatusOK, "Sample data initialized successfully", response.MessageBody{"count": count})
}

// Chat returns a messaging deep link to the service provider
// @Router /chat/{service_id} [get]
func (h *CatalogHandler) Chat(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	link, err := h.catalogUsecase.ChatLink(r.Context(), userID, mux.Vars(r)["service_id"])
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrProviderPhoneMissing):
			response.BadRequest(w, "Provider phone number not available")
		case errors.Is(err, whatsapp.ErrInvalidPhone):
			response.BadRequest(w, whatsapp.InvalidPhoneMessage)
		case errors.Is(err, usecase.ErrUserNotFound):
			response.Unauthorized(w, "User not found")
		default:
			writeServiceLookupError(w, err)
		}
		return
	}

	response.JSON(w, http.StatusOK, link)
}

func writeServiceLookupError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, usecase.ErrInvalidServiceID), errors.Is(err, usecase.ErrServiceNotFound):
		response.NotFound(w, "Service not found")
	default:
		response.InternalServerError(w, "Failed to load service")
	}
}
