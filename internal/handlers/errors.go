package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/storefront/internal/services"
)

// ErrorHandler renders every error returned by a handler as
// {"message": ..., "error": true}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "internal server error"

	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &fiberErr):
		code = fiberErr.Code
		message = fiberErr.Message
	case services.IsUserError(err):
		code = fiber.StatusBadRequest
		message = err.Error()
	case errors.Is(err, gorm.ErrRecordNotFound):
		code = fiber.StatusNotFound
		message = "record not found"
	case errors.Is(err, gorm.ErrDuplicatedKey):
		code = fiber.StatusConflict
		message = "record already exists"
	default:
		log.Printf("[HTTP] %s %s failed: %v", c.Method(), c.Path(), err)
	}

	return c.Status(code).JSON(fiber.Map{
		"message": message,
		"error":   true,
	})
}

func parseID(c *fiber.Ctx, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(param))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid "+param)
	}
	return id, nil
}
