package converter

import (
	"vows-and-wishes/internal/delivery/dto"
	"vows-and-wishes/internal/domain/entity"
)

// ServiceToResponse converts a Service entity to ServiceResponse DTO.
// Rating is emitted as a JSON number.
func ServiceToResponse(service *entity.Service) *dto.ServiceResponse {
	if service == nil {
		return nil
	}

	response := &dto.ServiceResponse{
		ID:           service.ID,
		Name:         service.Name,
		Category:     string(service.Category),
		Description:  service.Description,
		PriceRange:   service.PriceRange,
		Location:     service.Location,
		Rating:       service.Rating.InexactFloat64(),
		ImageURL:     service.ImageURL,
		ContactPhone: service.ContactPhone,
		ContactEmail: service.ContactEmail,
		Availability: service.Availability,
		CreatedAt:    service.CreatedAt,
	}
	if service.MessagingPhone != nil {
		response.MessagingPhone = *service.MessagingPhone
	}

	return response
}

// ServicesToResponses never returns nil so empty results encode as []
func ServicesToResponses(services []entity.Service) []dto.ServiceResponse {
	responses := make([]dto.ServiceResponse, 0, len(services))
	for i := range services {
		responses = append(responses, *ServiceToResponse(&services[i]))
	}
	return responses
}
