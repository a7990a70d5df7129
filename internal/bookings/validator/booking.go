package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"mise/pkg/logger"
	"mise/pkg/model"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type BookingValidator struct {
	validate    *validator.Validate
	granularity int
	logger      *logger.Logger
}

func NewBookingValidator(granularity int, log *logger.Logger) *BookingValidator {
	v := validator.New()

	if err := v.RegisterValidation("booking_date", func(fl validator.FieldLevel) bool {
		return model.IsValidDate(fl.Field().String())
	}); err != nil {
		log.Fatal("Failed to register 'booking_date' validator", "error", err)
	}

	return &BookingValidator{
		validate:    v,
		granularity: granularity,
		logger:      log,
	}
}

func (v *BookingValidator) Validate(req *model.BookingRequest) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	var errs ValidationErrors

	if req.StartMinute%v.granularity != 0 {
		errs = append(errs, ValidationError{
			Field:   "StartMinute",
			Message: fmt.Sprintf("start_minute must align to the %d-minute slot grid", v.granularity),
		})
	}
	if req.EndMinute%v.granularity != 0 {
		errs = append(errs, ValidationError{
			Field:   "EndMinute",
			Message: fmt.Sprintf("end_minute must align to the %d-minute slot grid", v.granularity),
		})
	}

	for i, item := range req.StorageItems {
		if item.EndDate <= item.StartDate {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("storage_items[%d].EndDate", i),
				Message: "end_date must be after start_date",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *BookingValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "booking_date":
			message = fmt.Sprintf("%s must be a date formatted as YYYY-MM-DD", err.Field())
		case "gtfield":
			message = fmt.Sprintf("%s must be greater than %s", err.Field(), err.Param())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
