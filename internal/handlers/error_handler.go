package handlers

import (
	"errors"
	"runtime/debug"

	"vendorapi/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// ErrorHandler is the app-wide fallback for errors a route did not handle itself.
// The full error, with its stack when one was captured, goes to the log; the
// client only gets a generic envelope.
func ErrorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		status := statusError
		message := internalErrorMessage

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) && fiberErr.Code < fiber.StatusInternalServerError {
			code = fiberErr.Code
			status = statusFail
			message = fiberErr.Message
		}

		event := log.Error()
		if code < fiber.StatusInternalServerError {
			event = log.Warn()
		}
		event.Stack().Err(err).
			Str("request_id", middleware.RequestID(c)).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Str("route", c.Route().Path).
			Int("status", code).
			Msg("unhandled request error")

		return respond(c, code, status, message)
	}
}

// PanicStackLogger is a fiber recover StackTraceHandler that logs the stack of
// the recovered panic.
func PanicStackLogger(log zerolog.Logger) func(c *fiber.Ctx, e interface{}) {
	return func(c *fiber.Ctx, e interface{}) {
		log.Error().
			Str("request_id", middleware.RequestID(c)).
			Str("path", c.Path()).
			Interface("panic", e).
			Bytes("stack", debug.Stack()).
			Msg("recovered from panic")
	}
}
