package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"bedbook/pkg/logger"
	"bedbook/pkg/model"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	missing bool
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

// MissingFields lists the JSON paths of absent required keys, in struct order.
func (v ValidationErrors) MissingFields() []string {
	var fields []string
	for _, err := range v {
		if err.missing {
			fields = append(fields, err.Field)
		}
	}
	return fields
}

// Invalid lists the errors for keys that are present but hold a bad value.
func (v ValidationErrors) Invalid() []ValidationError {
	var invalid []ValidationError
	for _, err := range v {
		if !err.missing {
			invalid = append(invalid, err)
		}
	}
	return invalid
}

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	v := validator.New()

	// Report fields by their JSON names so clients can match them to the body.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})

	log.Info("Booking validator initialized successfully")

	return &BookingValidator{
		validate: v,
		logger:   log,
	}
}

func (v *BookingValidator) Validate(req *model.BookingRequest) error {
	return v.validateStruct(req)
}

func (v *BookingValidator) ValidateAvailabilityCheck(req *model.AvailabilityCheckRequest) error {
	return v.validateStruct(req)
}

func (v *BookingValidator) ValidateReject(req *model.RejectRequest) error {
	req.Reason = strings.TrimSpace(req.Reason)
	return v.validateStruct(req)
}

func (v *BookingValidator) ValidatePayment(event *model.PaymentEvent) error {
	return v.validateStruct(event)
}

func (v *BookingValidator) validateStruct(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *BookingValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		field := fieldPath(err.Namespace())
		message := err.Error()
		missing := false

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", field)
			missing = true
		case "min":
			if err.Kind() == reflect.Slice {
				message = fmt.Sprintf("%s must contain at least %s item(s)", field, err.Param())
				missing = err.Param() == "1"
			} else {
				message = fmt.Sprintf("%s must be at least %s", field, err.Param())
			}
		case "max":
			message = fmt.Sprintf("%s must be at most %s", field, err.Param())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", field, err.Param())
		case "gt":
			message = fmt.Sprintf("%s must be greater than %s", field, err.Param())
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", field)
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   field,
			Message: message,
			missing: missing,
		})
	}

	return validationErrors
}

// fieldPath drops the root struct name: "BookingRequest.customerDetails.name"
// becomes "customerDetails.name".
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}
