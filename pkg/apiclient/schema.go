package apiclient

// Response schemas are validated as soon as they are decoded, so callers never
// see a half-populated value.

type Service struct {
	ID             string  `json:"id" validate:"required"`
	Name           string  `json:"name" validate:"required"`
	Category       string  `json:"category" validate:"required"`
	Description    string  `json:"description"`
	PriceRange     string  `json:"price_range"`
	Location       string  `json:"location"`
	Rating         float64 `json:"rating" validate:"gte=0,lte=5"`
	ImageURL       string  `json:"image_url"`
	ContactPhone   string  `json:"contact_phone"`
	ContactEmail   string  `json:"contact_email"`
	MessagingPhone string  `json:"messaging_phone"`
	Availability   bool    `json:"availability"`
}

// ChatPhone returns the number messaging links should target
func (s Service) ChatPhone() string {
	if s.MessagingPhone != "" {
		return s.MessagingPhone
	}
	return s.ContactPhone
}

type User struct {
	ID    string  `json:"id" validate:"required"`
	Name  string  `json:"name"`
	Email string  `json:"email" validate:"required"`
	Phone *string `json:"phone"`
}

type AuthResult struct {
	Token string `json:"token" validate:"required"`
	User  *User  `json:"user" validate:"required"`
}

type BookedSlot struct {
	Date string `json:"date" validate:"required,isodate"`
	Time string `json:"time" validate:"required,timeslot"`
}

type Availability struct {
	ServiceID   string       `json:"service_id"`
	BookedDates []string     `json:"booked_dates" validate:"dive,isodate"`
	BookedSlots []BookedSlot `json:"booked_slots" validate:"dive"`
}

type Appointment struct {
	ID        string `json:"id" validate:"required"`
	ServiceID string `json:"service_id" validate:"required"`
	Date      string `json:"date" validate:"required,isodate"`
	Time      string `json:"time"`
	AllDay    bool   `json:"all_day"`
	UserEmail string `json:"user_email"`
	Status    string `json:"status"`
}

type BookingResult struct {
	Message     string       `json:"message"`
	Appointment *Appointment `json:"appointment" validate:"required"`
}

type SeedResult struct {
	Message string `json:"message" validate:"required"`
	Count   int    `json:"count"`
}

type ChatLink struct {
	WhatsAppLink string `json:"whatsapp_link" validate:"required,url"`
}

type messageResult struct {
	Message string `json:"message"`
}

type profileResult struct {
	Message string `json:"message"`
	User    *User  `json:"user" validate:"required"`
}

// Requests

type ServiceFilter struct {
	Category string
	Location string
	Search   string
}

// BookRequest leaves Time empty for a whole-day booking
type BookRequest struct {
	ServiceID string `json:"service_id"`
	Date      string `json:"date"`
	Time      string `json:"time,omitempty"`
	Email     string `json:"email,omitempty"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
}

type UpdateProfileRequest struct {
	Name  *string `json:"name,omitempty"`
	Phone *string `json:"phone,omitempty"`
}
