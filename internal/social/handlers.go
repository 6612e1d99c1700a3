package social

import (
	"errors"

	"backend-socialbox/internal/shared/session"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/friends", authMiddleware, func(c *fiber.Ctx) error {
		userID, err := session.Require(c)
		if err != nil {
			return err
		}
		var req AddFriendRequest
		if err := c.BodyParser(&req); err != nil || req.FriendUsername == "" {
			return fiber.NewError(fiber.StatusBadRequest, "friend_username required")
		}
		friend, err := svc.AddFriend(c.Context(), userID, req.FriendUsername)
		if err != nil {
			return httpError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(friend)
	})

	r.Get("/friends", authMiddleware, func(c *fiber.Ctx) error {
		userID, err := session.Require(c)
		if err != nil {
			return err
		}
		friends, err := svc.Friends(c.Context(), userID)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(fiber.Map{"friends": friends})
	})

	r.Delete("/friends/:username", authMiddleware, func(c *fiber.Ctx) error {
		userID, err := session.Require(c)
		if err != nil {
			return err
		}
		if err := svc.RemoveFriend(c.Context(), userID, c.Params("username")); err != nil {
			return httpError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrUserNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrSelfFriend):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
