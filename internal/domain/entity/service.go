package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ServiceCategory is the vendor category a service is listed under
type ServiceCategory string

const (
	CategoryVenues      ServiceCategory = "venues"
	CategoryCatering    ServiceCategory = "catering"
	CategoryDecoration  ServiceCategory = "decoration"
	CategoryPhotography ServiceCategory = "photography"
	CategoryMakeup      ServiceCategory = "makeup"
	CategoryDJ          ServiceCategory = "dj"
	CategoryTransport   ServiceCategory = "transport"
	CategoryGifts       ServiceCategory = "gifts"
)

// Categories lists every known category in display order
var Categories = []ServiceCategory{
	CategoryVenues,
	CategoryCatering,
	CategoryDecoration,
	CategoryPhotography,
	CategoryMakeup,
	CategoryDJ,
	CategoryTransport,
	CategoryGifts,
}

// ParseCategory reports whether s names a known category
func ParseCategory(s string) (ServiceCategory, bool) {
	for _, c := range Categories {
		if strings.EqualFold(string(c), s) {
			return c, true
		}
	}
	return "", false
}

// Service is a vendor offering listed in the catalog
type Service struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string          `gorm:"type:varchar(255);not null" json:"name"`
	Category     ServiceCategory `gorm:"type:varchar(32);not null;index" json:"category"`
	Description  string          `gorm:"type:text" json:"description"`
	PriceRange   string          `gorm:"type:varchar(100)" json:"price_range"`
	Location     string          `gorm:"type:varchar(100);index" json:"location"`
	Rating       decimal.Decimal `gorm:"type:decimal(2,1);not null;default:4.0" json:"rating"`
	ImageURL     string          `gorm:"type:text" json:"image_url"`
	ContactPhone string          `gorm:"type:varchar(32)" json:"contact_phone"`
	ContactEmail string          `gorm:"type:varchar(255)" json:"contact_email"`
	// MessagingPhone overrides ContactPhone for chat deep links.
	MessagingPhone *string   `gorm:"type:varchar(32)" json:"messaging_phone,omitempty"`
	Availability   bool      `gorm:"not null;index" json:"availability"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Service) TableName() string {
	return "services"
}

func (s *Service) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// ChatPhone returns the number chat links should target
func (s *Service) ChatPhone() string {
	if s.MessagingPhone != nil && *s.MessagingPhone != "" {
		return *s.MessagingPhone
	}
	return s.ContactPhone
}

// ServiceFilter is a domain-level filter for catalog queries.
// Empty fields mean "no filter".
type ServiceFilter struct {
	Category ServiceCategory
	Location string
	Search   string
	Limit    int
}
