package usecase

import (
	"context"
	"errors"
	"strings"

	"vows-and-wishes/internal/converter"
	"vows-and-wishes/internal/delivery/dto"
	"vows-and-wishes/internal/domain/entity"
	"vows-and-wishes/internal/domain/repository"
	"vows-and-wishes/internal/service"
	"vows-and-wishes/pkg/whatsapp"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrServiceNotFound      = errors.New("service not found")
	ErrInvalidServiceID     = errors.New("invalid service id")
	ErrProviderPhoneMissing = errors.New("provider phone number not available")
	ErrSampleDataExists     = errors.New("sample data already exists")
)

type CatalogUsecase interface {
	ListServices(ctx context.Context, query *dto.ServiceQuery) ([]dto.ServiceResponse, error)
	GetService(ctx context.Context, serviceID string) (*dto.ServiceResponse, error)
	// SeedSampleData inserts the demo catalog once and returns how many services were created
	SeedSampleData(ctx context.Context) (int, error)
	// ChatLink builds a messaging deep link from the user to the service provider
	ChatLink(ctx context.Context, userID uuid.UUID, serviceID string) (*dto.ChatLinkResponse, error)
}

type catalogUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	serviceRepo  repository.ServiceRepository
	userRepo     repository.UserRepository
	auditService service.AuditService
	countryCode  string
}

func NewCatalogUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	serviceRepo repository.ServiceRepository,
	userRepo repository.UserRepository,
	auditService service.AuditService,
	countryCode string,
) CatalogUsecase {
	if countryCode == "" {
		countryCode = whatsapp.DefaultCountryCode
	}
	return &catalogUsecase{
		db:           db,
		log:          log,
		serviceRepo:  serviceRepo,
		userRepo:     userRepo,
		auditService: auditService,
		countryCode:  countryCode,
	}
}

func (u *catalogUsecase) ListServices(ctx context.Context, query *dto.ServiceQuery) ([]dto.ServiceResponse, error) {
	services, err := u.serviceRepo.FindAll(u.db.WithContext(ctx), toServiceFilter(query))
	if err != nil {
		u.log.Warnf("Failed to list services: %+v", err)
		return nil, err
	}

	return converter.ServicesToResponses(services), nil
}

// toServiceFilter drops placeholder values and unknown categories
func toServiceFilter(query *dto.ServiceQuery) entity.ServiceFilter {
	var filter entity.ServiceFilter
	if query == nil {
		return filter
	}

	if category, ok := entity.ParseCategory(strings.TrimSpace(query.Category)); ok {
		filter.Category = category
	}

	location := strings.TrimSpace(query.Location)
	switch strings.ToLower(location) {
	case "", "all", "all locations":
	default:
		filter.Location = location
	}

	filter.Search = strings.TrimSpace(query.Search)
	return filter
}

func (u *catalogUsecase) GetService(ctx context.Context, serviceID string) (*dto.ServiceResponse, error) {
	svc, err := u.findService(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	return converter.ServiceToResponse(svc), nil
}

func (u *catalogUsecase) findService(ctx context.Context, serviceID string) (*entity.Service, error) {
	id, err := uuid.Parse(serviceID)
	if err != nil {
		return nil, ErrInvalidServiceID
	}

	svc, err := u.serviceRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find service %s: %+v", id, err)
		return nil, err
	}
	if svc == nil {
		return nil, ErrServiceNotFound
	}
	return svc, nil
}

func (u *catalogUsecase) SeedSampleData(ctx context.Context) (int, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	total, err := u.serviceRepo.Count(tx)
	if err != nil {
		u.log.Warnf("Failed to count services: %+v", err)
		return 0, err
	}
	if total > 0 {
		return 0, ErrSampleDataExists
	}

	services := sampleServices()
	if err := u.serviceRepo.CreateBatch(tx, services); err != nil {
		u.log.Warnf("Failed to seed services: %+v", err)
		return 0, err
	}

	if err := u.auditService.Record(ctx, tx, service.Actor{Email: "system"}, entity.AuditActionCatalogSeed, entity.JSON{"count": len(services)}); err != nil {
		return 0, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return 0, err
	}

	u.log.Infof("Seeded %d sample services", len(services))
	return len(services), nil
}

func (u *catalogUsecase) ChatLink(ctx context.Context, userID uuid.UUID, serviceID string) (*dto.ChatLinkResponse, error) {
	svc, err := u.findService(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	phone := svc.ChatPhone()
	if strings.TrimSpace(phone) == "" {
		return nil, ErrProviderPhoneMissing
	}

	user, err := u.userRepo.FindByID(u.db.WithContext(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	link, err := whatsapp.Link(phone, u.countryCode, whatsapp.InquiryMessage(user.Name, user.PhoneOrEmpty(), svc.Name))
	if err != nil {
		return nil, err
	}

	return &dto.ChatLinkResponse{WhatsAppLink: link}, nil
}

func sampleServices() []entity.Service {
	override := "919167597375"
	return []entity.Service{
		{
			Name:         "Royal Palace Banquet Hall",
			Category:     entity.CategoryVenues,
			Description:  "Elegant banquet hall for grand weddings and receptions",
			PriceRange:   "₹5,00,000 - ₹15,00,000",
			Location:     "Bandra, Mumbai",
			Rating:       decimal.RequireFromString("4.8"),
			ImageURL:     "https://images.unsplash.com/photo-1532712938310-34cb3982ef74",
			ContactPhone: "98200 10101",
			ContactEmail: "royal@palace.com",
			Availability: true,
		},
		{
			Name:         "Gourmet Delights Catering",
			Category:     entity.CategoryCatering,
			Description:  "Premium multi-cuisine catering service",
			PriceRange:   "₹1,500 - ₹4,000 per plate",
			Location:     "Andheri, Mumbai",
			Rating:       decimal.RequireFromString("4.6"),
			ImageURL:     "https://images.unsplash.com/photo-1520854221256-17451cc331bf",
			ContactPhone: "98200 20202",
			ContactEmail: "info@gourmetdelights.com",
			Availability: true,
		},
		{
			Name:           "Petals & Drapes Decor",
			Category:       entity.CategoryDecoration,
			Description:    "Floral and stage decoration for every ceremony",
			PriceRange:     "₹1,00,000 - ₹6,00,000",
			Location:       "Juhu, Mumbai",
			Rating:         decimal.RequireFromString("4.7"),
			ImageURL:       "https://images.unsplash.com/photo-1519225421980-715cb0215aed",
			ContactPhone:   "98200 30303",
			ContactEmail:   "hello@petalsdrapes.com",
			MessagingPhone: &override,
			Availability:   true,
		},
		{
			Name:         "Shutterbug Studios",
			Category:     entity.CategoryPhotography,
			Description:  "Candid wedding photography and films",
			PriceRange:   "₹80,000 - ₹3,00,000",
			Location:     "Powai, Mumbai",
			Rating:       decimal.RequireFromString("4.9"),
			ImageURL:     "https://images.unsplash.com/photo-1511285560929-80b456fea0bc",
			ContactPhone: "98200 40404",
			ContactEmail: "book@shutterbug.in",
			Availability: true,
		},
		{
			Name:         "Glow Bridal Studio",
			Category:     entity.CategoryMakeup,
			Description:  "Bridal makeup and hair styling",
			PriceRange:   "₹25,000 - ₹75,000",
			Location:     "Colaba, Mumbai",
			Rating:       decimal.RequireFromString("4.5"),
			ImageURL:     "https://images.unsplash.com/photo-1487412947147-5cebf100ffc2",
			ContactPhone: "98200 50505",
			ContactEmail: "glow@bridalstudio.in",
			Availability: true,
		},
		{
			Name:         "Beats by Night",
			Category:     entity.CategoryDJ,
			Description:  "DJ, sound and lighting for sangeet and reception",
			PriceRange:   "₹40,000 - ₹1,50,000",
			Location:     "Lower Parel, Mumbai",
			Rating:       decimal.RequireFromString("4.4"),
			ImageURL:     "https://images.unsplash.com/photo-1470225620780-dba8ba36b745",
			ContactPhone: "98200 60606",
			ContactEmail: "gigs@beatsbynight.in",
			Availability: true,
		},
		{
			Name:         "Vintage Wheels",
			Category:     entity.CategoryTransport,
			Description:  "Vintage cars and decorated baraat transport",
			PriceRange:   "₹20,000 - ₹90,000",
			Location:     "Dadar, Mumbai",
			Rating:       decimal.RequireFromString("4.3"),
			ImageURL:     "https://images.unsplash.com/photo-1503376780353-7e6692767b70",
			ContactPhone: "98200 70707",
			ContactEmail: "ride@vintagewheels.in",
			Availability: true,
		},
		{
			Name:         "Wrapped With Love",
			Category:     entity.CategoryGifts,
			Description:  "Custom trousseau packing and return gifts",
			PriceRange:   "₹500 - ₹5,000 per hamper",
			Location:     "Thane, Mumbai",
			Rating:       decimal.RequireFromString("4.6"),
			ImageURL:     "https://images.unsplash.com/photo-1513885535751-8b9238bd345a",
			ContactPhone: "98200 80808",
			ContactEmail: "gifts@wrappedwithlove.in",
			Availability: true,
		},
	}
}
