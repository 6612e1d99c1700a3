package trip

import (
	"errors"

	"backend-socialbox/internal/shared/session"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		userID, err := session.Require(c)
		if err != nil {
			return err
		}
		trip, err := svc.Begin(c.Context(), userID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(trip)
	})

	r.Get("/", authMiddleware, func(c *fiber.Ctx) error {
		userID, err := session.Require(c)
		if err != nil {
			return err
		}
		trips, err := svc.List(c.Context(), userID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{"trips": trips})
	})

	r.Get("/:id", authMiddleware, func(c *fiber.Ctx) error {
		userID, err := session.Require(c)
		if err != nil {
			return err
		}
		trip, err := svc.GetOwned(c.Context(), c.Params("id"), userID)
		if err != nil {
			return HTTPError(err)
		}
		return c.JSON(trip)
	})

	r.Delete("/:id", authMiddleware, func(c *fiber.Ctx) error {
		userID, err := session.Require(c)
		if err != nil {
			return err
		}
		if err := svc.Delete(c.Context(), c.Params("id"), userID); err != nil {
			return HTTPError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

// HTTPError maps trip lookup errors onto status codes.
func HTTPError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrForbidden):
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
