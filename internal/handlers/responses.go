package handlers

import "github.com/gofiber/fiber/v2"

// Envelope status values.
const (
	statusSuccess = "success"
	statusFail    = "fail"
	statusError   = "error"
)

// internalErrorMessage is the only text a client ever sees for a server fault.
const internalErrorMessage = "Internal Server Error"

// StatusResponse is the {status, message} envelope shared by every endpoint
// that does not return a resource.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func respond(c *fiber.Ctx, code int, status, message string) error {
	return c.Status(code).JSON(StatusResponse{Status: status, Message: message})
}

func internalError(c *fiber.Ctx) error {
	return respond(c, fiber.StatusInternalServerError, statusError, internalErrorMessage)
}
