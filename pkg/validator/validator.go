package validator

import (
	"errors"
	"time"

	"vows-and-wishes/internal/domain/entity"

	"github.com/go-playground/validator/v10"
)

type CustomValidator struct {
	validator *validator.Validate
}

func NewValidator() *CustomValidator {
	v := validator.New()
	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("isodate", validateISODate)
	_ = v.RegisterValidation("timeslot", validateTimeSlot)

	return &CustomValidator{
		validator: v,
	}
}

// validateISODate accepts calendar days in YYYY-MM-DD form
func validateISODate(fl validator.FieldLevel) bool {
	_, err := time.Parse(entity.DateLayout, fl.Field().String())
	return err == nil
}

func validateTimeSlot(fl validator.FieldLevel) bool {
	return entity.IsTimeSlot(fl.Field().String())
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func (cv *CustomValidator) FormatValidationErrors(err error) map[string]string {
	errs := make(map[string]string)

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			field := e.Field()
			switch e.Tag() {
			case "required":
				errs[field] = field + " is required"
			case "email":
				errs[field] = field + " must be a valid email address"
			case "min":
				errs[field] = field + " must be at least " + e.Param() + " characters"
			case "max":
				errs[field] = field + " must be at most " + e.Param() + " characters"
			case "gte":
				errs[field] = field + " must be greater than or equal to " + e.Param()
			case "lte":
				errs[field] = field + " must be less than or equal to " + e.Param()
			case "uuid":
				errs[field] = field + " must be a valid UUID"
			case "isodate":
				errs[field] = field + " must be a date in YYYY-MM-DD format"
			case "timeslot":
				errs[field] = field + " must be one of 10:00, 12:00, 14:00, 16:00, 18:00"
			default:
				errs[field] = field + " is invalid"
			}
		}
	}

	return errs
}
