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

type ScheduleValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewScheduleValidator(log *logger.Logger) *ScheduleValidator {
	v := validator.New()

	if err := v.RegisterValidation("booking_date", ValidateBookingDate); err != nil {
		log.Fatal("Failed to register 'booking_date' validator", "error", err)
	}

	return &ScheduleValidator{
		validate: v,
		logger:   log,
	}
}

// ValidateBookingDate accepts calendar dates in the canonical YYYY-MM-DD
// form. Shared by every validator that registers the booking_date tag.
func ValidateBookingDate(fl validator.FieldLevel) bool {
	return model.IsValidDate(fl.Field().String())
}

func (v *ScheduleValidator) ValidateWeekly(entries []model.WeeklyAvailability) error {
	var errs ValidationErrors

	for i, e := range entries {
		if e.DayOfWeek < 0 || e.DayOfWeek > 6 {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("entries[%d].DayOfWeek", i),
				Message: "day_of_week must be between 0 (Sunday) and 6 (Saturday)",
			})
		}
		if e.StartMinute < 0 || e.StartMinute >= model.MinutesPerDay {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("entries[%d].StartMinute", i),
				Message: "start_minute must be between 0 and 1439",
			})
		}
		if e.EndMinute < 1 || e.EndMinute > model.MinutesPerDay {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("entries[%d].EndMinute", i),
				Message: "end_minute must be between 1 and 1440",
			})
		}
		if e.StartMinute >= e.EndMinute {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("entries[%d].EndMinute", i),
				Message: "end_minute must be after start_minute",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *ScheduleValidator) ValidateOverride(override *model.DateOverride) error {
	if err := v.validate.Struct(override); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translate(validationErrs, "")
		}
		return err
	}

	if override.Closed {
		return nil
	}

	if override.StartMinute == nil || override.EndMinute == nil {
		return ValidationErrors{ValidationError{
			Field:   "StartMinute",
			Message: "open overrides require both start_minute and end_minute",
		}}
	}
	if *override.StartMinute >= *override.EndMinute {
		return ValidationErrors{ValidationError{
			Field:   "EndMinute",
			Message: "end_minute must be after start_minute",
		}}
	}

	return nil
}

func translate(errs validator.ValidationErrors, prefix string) ValidationErrors {
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
			Field:   prefix + err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
