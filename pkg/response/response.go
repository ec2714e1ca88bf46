package response

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"storepay/lib"
)

func Response(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}

func ResponseSuccess(c *fiber.Ctx, status int, data interface{}) error {

	if data != nil {
		return c.Status(status).JSON(fiber.Map{
			"success": true,
			"data":    data,
		})
	}

	return c.Status(status).JSON(fiber.Map{
		"success": true,
	})
}

// ResponseProcessorError maps a processor failure onto an HTTP reply.
// Protocol errors keep the upstream status and the decoded error record,
// transport and local failures surface as 502.
func ResponseProcessorError(c *fiber.Ctx, err error) error {
	info := lib.ErrorInfoFrom(err)
	if !info.Failed() {
		return Response(c, fiber.StatusInternalServerError, err.Error())
	}

	status := fiber.StatusBadGateway
	switch {
	case errors.Is(err, lib.ErrDiffNotAllowed):
		status = fiber.StatusUnprocessableEntity
	case info.HTTPStatus > 0:
		status = info.HTTPStatus
	}

	return c.Status(status).JSON(fiber.Map{
		"error":   info.Name,
		"message": info.Message,
		"detail":  info.DetailMessage,
		"details": info.Details,
	})
}
