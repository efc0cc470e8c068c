package serverutils

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateRequest runs struct tag validation and flattens the failures
// into a single readable message.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		var msgs []string
		for _, fe := range validationErrors {
			switch fe.Tag() {
			case "required":
				msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
			case "oneof":
				msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param()))
			case "min":
				msgs = append(msgs, fmt.Sprintf("%s must have at least %s items", fe.Field(), fe.Param()))
			case "email":
				msgs = append(msgs, fmt.Sprintf("%s must be a valid email", fe.Field()))
			default:
				msgs = append(msgs, fmt.Sprintf("%s is invalid", fe.Field()))
			}
		}
		return fmt.Errorf("%s", strings.Join(msgs, "; "))
	}
	return nil
}
