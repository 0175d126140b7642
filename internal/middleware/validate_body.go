package middleware

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

const validatedBodyKey = "validated_body"

// NewValidator returns a validator that reports fields by their JSON name.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// ValidateBody parses the JSON body into a T and checks its `validate` tags. On
// failure the request ends with 400 and the handler never runs; on success the
// parsed body is available through Body[T].
func ValidateBody[T any](v *validator.Validate) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body := new(T)
		if err := c.BodyParser(body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"status":  "fail",
				"message": "Invalid request body.",
			})
		}

		if err := v.Struct(body); err != nil {
			validationErrors, ok := err.(validator.ValidationErrors)
			if !ok {
				return err
			}
			errorMessages := make(map[string]string, len(validationErrors))
			for _, e := range validationErrors {
				errorMessages[e.Field()] = describe(e)
			}
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"status":  "fail",
				"message": "Validation failed.",
				"errors":  errorMessages,
			})
		}

		c.Locals(validatedBodyKey, body)
		return c.Next()
	}
}

// Body returns the request body parsed by ValidateBody[T], or nil when the
// route has no such stage.
func Body[T any](c *fiber.Ctx) *T {
	body, _ := c.Locals(validatedBodyKey).(*T)
	return body
}

func describe(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", e.Param())
	default:
		return fmt.Sprintf("failed on the '%s' rule", e.Tag())
	}
}
