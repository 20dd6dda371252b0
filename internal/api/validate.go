package api

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// FieldError is one failed validation constraint on an outbound payload.
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// ValidateStruct checks a request payload against its struct tags and
// returns the failures as a *ValidationError, or nil when the payload is
// clean. Requests rejected here never reach the network.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return &ValidationError{Message: err.Error()}
	}

	fields := make(map[string]string, len(verrs))
	msg := ""
	for _, fe := range verrs {
		m := getErrorMessage(fe)
		fields[fe.Field()] = m
		if msg == "" {
			msg = m
		}
	}
	return &ValidationError{Status: 400, Message: msg, Fields: fields}
}

func getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return err.Field() + " is required"
	case "email":
		return err.Field() + " must be a valid email address"
	case "min":
		return err.Field() + " must be at least " + err.Param() + " characters"
	case "max":
		return err.Field() + " must be at most " + err.Param() + " characters"
	case "gte":
		return err.Field() + " must be greater than or equal to " + err.Param()
	case "lte":
		return err.Field() + " must be less than or equal to " + err.Param()
	default:
		return err.Field() + " is invalid"
	}
}
