package accounts

import (
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
)

// APIResponse is the envelope every endpoint returns.
type APIResponse struct {
	Data    any    `json:"data"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// RespondOK writes a success envelope with status 200.
func RespondOK(c *fiber.Ctx, data any, message string) error {
	return Respond(c, fiber.StatusOK, data, message)
}

// RespondCreated writes a success envelope with status 201.
func RespondCreated(c *fiber.Ctx, data any, message string) error {
	return Respond(c, fiber.StatusCreated, data, message)
}

// Respond writes a success envelope with the given status.
func Respond(c *fiber.Ctx, status int, data any, message string) error {
	return c.Status(status).JSON(APIResponse{
		Data:    data,
		Message: message,
	})
}

// RespondError maps an error to the envelope. Rich errors carry their own
// status and text code, anything else becomes an opaque 500.
func RespondError(c *fiber.Ctx, err error) error {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		status := richErr.Code
		if status == 0 {
			status = fiber.StatusInternalServerError
		}
		return c.Status(status).JSON(APIResponse{
			Message: richErr.Message,
			Code:    richErr.TextCode,
		})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(APIResponse{
		Message: "Internal server error",
	})
}
