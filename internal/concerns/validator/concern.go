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
	messages := make([]string, 0, len(v))
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

func (v ValidationErrors) MissingFields() []string {
	var fields []string
	for _, err := range v {
		if err.missing {
			fields = append(fields, err.Field)
		}
	}
	return fields
}

func (v ValidationErrors) Invalid() []ValidationError {
	var invalid []ValidationError
	for _, err := range v {
		if !err.missing {
			invalid = append(invalid, err)
		}
	}
	return invalid
}

type ConcernValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewConcernValidator(log *logger.Logger) *ConcernValidator {
	v := validator.New()
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

	log.Info("Concern validator initialized successfully")

	return &ConcernValidator{validate: v, logger: log}
}

// Validate trims free text before checking the request.
func (v *ConcernValidator) Validate(req *model.ConcernRequest) error {
	req.BookingID = strings.TrimSpace(req.BookingID)
	req.RequestedRoom = strings.TrimSpace(req.RequestedRoom)
	req.RequestedBed = strings.TrimSpace(req.RequestedBed)
	req.RequestedSharingType = strings.TrimSpace(req.RequestedSharingType)
	req.Comment = strings.TrimSpace(req.Comment)
	return v.validateStruct(req)
}

func (v *ConcernValidator) ValidateStatusUpdate(req *model.ConcernStatusUpdate) error {
	req.AdminResponse = strings.TrimSpace(req.AdminResponse)
	return v.validateStruct(req)
}

func (v *ConcernValidator) ValidateNote(req *model.NoteRequest) error {
	req.Note = strings.TrimSpace(req.Note)
	return v.validateStruct(req)
}

func (v *ConcernValidator) validateStruct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	out := make(ValidationErrors, 0, len(validationErrs))
	for _, fe := range validationErrs {
		field := fe.Field()
		message := fe.Error()
		missing := false

		switch fe.Tag() {
		case "required", "required_if", "required_unless":
			message = fmt.Sprintf("%s is required", field)
			missing = true
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", field, fe.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}

		out = append(out, ValidationError{Field: field, Message: message, missing: missing})
	}
	return out
}
