package repository

import (
	"errors"
	"strings"

	"vows-and-wishes/internal/domain/entity"
	domainRepo "vows-and-wishes/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const defaultServiceLimit = 100

type serviceRepository struct{}

func NewServiceRepository() domainRepo.ServiceRepository {
	return &serviceRepository{}
}

// FindAll lists available services matching the filter.
// Location and search are case-insensitive substring matches.
func (r *serviceRepository) FindAll(db *gorm.DB, filter entity.ServiceFilter) ([]entity.Service, error) {
	q := db.Model(&entity.Service{}).Where("availability = ?", true)

	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Location != "" {
		q = q.Where("LOWER(location) LIKE ? ESCAPE '\\'", likePattern(filter.Location))
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		q = q.Where("LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(description) LIKE ? ESCAPE '\\'", pattern, pattern)
	}

	limit := filter.Limit
	if limit <= 0 || limit > defaultServiceLimit {
		limit = defaultServiceLimit
	}

	var services []entity.Service
	if err := q.Order("created_at ASC").Limit(limit).Find(&services).Error; err != nil {
		return nil, err
	}
	return services, nil
}

func (r *serviceRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Service, error) {
	var service entity.Service
	err := db.Where("id = ?", id).First(&service).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &service, nil
}

func (r *serviceRepository) Count(db *gorm.DB) (int64, error) {
	var total int64
	err := db.Model(&entity.Service{}).Count(&total).Error
	return total, err
}

func (r *serviceRepository) CreateBatch(db *gorm.DB, services []entity.Service) error {
	if len(services) == 0 {
		return nil
	}
	return db.Create(&services).Error
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}
