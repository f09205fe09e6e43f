package dto

import (
	"time"

	"github.com/google/uuid"
)

// ServiceQuery carries the raw catalog filters as sent by the client
type ServiceQuery struct {
	Category string
	Location string
	Search   string
}

type ServiceResponse struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Category       string    `json:"category"`
	Description    string    `json:"description"`
	PriceRange     string    `json:"price_range"`
	Location       string    `json:"location"`
	Rating         float64   `json:"rating"`
	ImageURL       string    `json:"image_url"`
	ContactPhone   string    `json:"contact_phone"`
	ContactEmail   string    `json:"contact_email"`
	MessagingPhone string    `json:"messaging_phone,omitempty"`
	Availability   bool      `json:"availability"`
	CreatedAt      time.Time `json:"created_at"`
}

type ChatLinkResponse struct {
	WhatsAppLink string `json:"whatsapp_link"`
}
