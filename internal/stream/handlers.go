package stream

import (
	"context"

	"backend-socialbox/internal/shared/session"
	"backend-socialbox/internal/trip"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// TripOwner resolves a trip only for its owner.
type TripOwner interface {
	GetOwned(ctx context.Context, id, userID string) (trip.Trip, error)
}

// RegisterRoutes serves live score updates of a trip to its owner.
func RegisterRoutes(r fiber.Router, hub *Hub, trips TripOwner, authMiddleware fiber.Handler) {
	r.Get("/ws/:tripID", authMiddleware, authorizeWatch(trips), websocket.New(func(c *websocket.Conn) {
		tripID := c.Params("tripID")
		client := hub.Register(tripID)

		done := make(chan struct{})
		go func() {
			for msg := range client.Send {
				if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
					break
				}
			}
			close(done)
		}()

		for {
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
		hub.Unregister(client)
		<-done
	}))
}

func authorizeWatch(trips TripOwner) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		userID, err := session.Require(c)
		if err != nil {
			return err
		}
		if _, err := trips.GetOwned(c.UserContext(), c.Params("tripID"), userID); err != nil {
			return trip.HTTPError(err)
		}
		return c.Next()
	}
}
