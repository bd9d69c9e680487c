package settlement

import "github.com/gofiber/fiber/v2"

func fiberValidation(msg string) error {
	return fiber.NewError(fiber.StatusBadRequest, msg)
}
