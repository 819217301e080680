package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"chessvar/internal/core"
)

var validate = validator.New()

// requestFor picks the body type of a game route, nil when it has none
func requestFor(method, path string) any {
	path = strings.TrimSuffix(path, "/")
	switch {
	case method == fiber.MethodPost && strings.HasSuffix(path, "/games"):
		return &core.CreateGameRequest{}
	case method == fiber.MethodPost && strings.HasSuffix(path, "/moves"):
		return &core.MoveRequest{}
	case method == fiber.MethodPut && strings.HasSuffix(path, "/status"):
		return &core.StatusRequest{}
	case method == fiber.MethodPost && strings.HasSuffix(path, "/seats"):
		return &core.SeatRequest{}
	}
	return nil
}

// validationMiddleware parses and validates request bodies of game routes and
// stores the result for the handler
func validationMiddleware(c *fiber.Ctx) error {
	method := c.Method()
	if method == fiber.MethodGet || method == fiber.MethodDelete || method == fiber.MethodOptions {
		return c.Next()
	}

	req := requestFor(method, c.Path())
	if req == nil {
		return c.Next()
	}

	// An absent body is an empty object; required tags still apply
	if len(c.Body()) > 0 {
		if err := c.BodyParser(req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
				Error:   "invalid request body",
				Code:    core.ErrInvalidRequest,
				Details: err.Error(),
			})
		}
	}

	if details, ok := validateStruct(req); !ok {
		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Error:   "validation failed",
			Code:    core.ErrInvalidRequest,
			Details: details,
		})
	}

	c.Locals("validatedBody", req)
	c.Locals("validated", true)

	return c.Next()
}

// validateStruct runs the validator and renders failures as one line
func validateStruct(req any) (string, bool) {
	err := validate.Struct(req)
	if err == nil {
		return "", true
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error(), false
	}

	var details strings.Builder
	for _, fe := range verrs {
		if details.Len() > 0 {
			details.WriteString("; ")
		}
		switch fe.Tag() {
		case "required":
			fmt.Fprintf(&details, "%s is required", fe.Field())
		case "oneof":
			fmt.Fprintf(&details, "%s must be one of [%s]", fe.Field(), fe.Param())
		case "len":
			fmt.Fprintf(&details, "%s must be exactly %s characters", fe.Field(), fe.Param())
		case "min", "max":
			bound := "at least"
			if fe.Tag() == "max" {
				bound = "at most"
			}
			if fe.Type().Kind() == reflect.String {
				fmt.Fprintf(&details, "%s must be %s %s characters", fe.Field(), bound, fe.Param())
			} else {
				fmt.Fprintf(&details, "%s must be %s %s", fe.Field(), bound, fe.Param())
			}
		default:
			fmt.Fprintf(&details, "%s failed %s validation", fe.Field(), fe.Tag())
		}
	}
	return details.String(), false
}

// validatedBody fetches the body stored by validationMiddleware
func validatedBody[T any](c *fiber.Ctx) (T, error) {
	var zero T
	if validated, ok := c.Locals("validated").(bool); !ok || !validated {
		return zero, fiber.NewError(fiber.StatusInternalServerError, "validation bypass detected")
	}
	req, ok := c.Locals("validatedBody").(*T)
	if !ok || req == nil {
		return zero, fiber.NewError(fiber.StatusInternalServerError, "validation data missing")
	}
	return *req, nil
}
