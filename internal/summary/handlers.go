package summary

import (
	"backend-socialbox/internal/shared/session"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Get("/me/scores", authMiddleware, func(c *fiber.Ctx) error {
		userID, err := session.Require(c)
		if err != nil {
			return err
		}
		scores, err := svc.UserScores(c.Context(), userID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{"scores": scores})
	})
}
