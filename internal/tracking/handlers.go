package tracking

import (
	"errors"

	"backend-socialbox/internal/shared/session"
	"backend-socialbox/internal/trip"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/trips/:id/samples", authMiddleware, func(c *fiber.Ctx) error {
		userID, err := session.Require(c)
		if err != nil {
			return err
		}
		upload, err := parseUpload(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		t, err := svc.Record(c.Context(), userID, c.Params("id"), trip.Batch{
			Lat:        upload.Lat,
			Long:       upload.Long,
			Timestamps: upload.Timestamp,
		})
		if err != nil {
			return httpError(err)
		}
		return c.JSON(t)
	})

	r.Get("/trips/:id/summary", authMiddleware, func(c *fiber.Ctx) error {
		userID, err := session.Require(c)
		if err != nil {
			return err
		}
		summary, err := svc.Summary(c.Context(), userID, c.Params("id"))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(summary)
	})

	r.Get("/trips/:id/segments", authMiddleware, func(c *fiber.Ctx) error {
		userID, err := session.Require(c)
		if err != nil {
			return err
		}
		segments, err := svc.Segments(c.Context(), userID, c.Params("id"))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(fiber.Map{"trip_id": c.Params("id"), "segments": segments})
	})

	r.Get("/trips/:id/geojson", authMiddleware, func(c *fiber.Ctx) error {
		userID, err := session.Require(c)
		if err != nil {
			return err
		}
		feature, err := svc.GeoJSON(c.Context(), userID, c.Params("id"))
		if err != nil {
			return httpError(err)
		}
		body, err := feature.MarshalJSON()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		c.Set(fiber.HeaderContentType, "application/geo+json")
		return c.Send(body)
	})
}

// parseUpload reads a JSON body, or form fields holding comma-delimited
// values.
func parseUpload(c *fiber.Ctx) (SampleUpload, error) {
	var upload SampleUpload
	if c.Is("json") {
		if err := c.BodyParser(&upload); err != nil {
			return SampleUpload{}, err
		}
		return upload, nil
	}
	upload.Lat = SplitValues(c.FormValue("lat"))
	upload.Long = SplitValues(c.FormValue("long"))
	upload.Timestamp = SplitValues(c.FormValue("timestamp"))
	return upload, nil
}

func httpError(err error) error {
	if errors.Is(err, ErrInvalidBatch) {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return trip.HTTPError(err)
}
