package workout

import (
	"errors"

	"backend-fittrack/internal/motion"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, mgr *Manager, identity fiber.Handler) {
	r.Post("/sessions", identity, func(c *fiber.Ctx) error {
		var req StartRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		mode, ok := motion.ParseMode(req.Type)
		if !ok {
			return fiber.NewError(fiber.StatusBadRequest, "unknown workout type")
		}

		userID, guestID := owner(c)
		session, err := mgr.Start(c.Context(), userID, guestID, mode)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(SessionResponse{
			ID:      session.ID,
			Type:    string(session.Mode),
			UserID:  session.UserID,
			GuestID: session.GuestID,
		})
	})

	r.Post("/sessions/:id/fixes", func(c *fiber.Ctx) error {
		var fix motion.RawFix
		if err := c.BodyParser(&fix); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := mgr.IngestFix(c.Params("id"), fix); err != nil {
			return sessionError(err)
		}
		return c.SendStatus(fiber.StatusAccepted)
	})

	r.Post("/sessions/:id/accel", func(c *fiber.Ctx) error {
		var req struct {
			Samples []motion.AccelSample `json:"samples"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := mgr.IngestAccel(c.Params("id"), req.Samples); err != nil {
			return sessionError(err)
		}
		return c.SendStatus(fiber.StatusAccepted)
	})

	r.Post("/sessions/:id/pause", func(c *fiber.Ctx) error {
		snap, err := mgr.Pause(c.Params("id"))
		if err != nil {
			return sessionError(err)
		}
		return c.JSON(snap)
	})

	r.Post("/sessions/:id/resume", func(c *fiber.Ctx) error {
		snap, err := mgr.Resume(c.Params("id"))
		if err != nil {
			return sessionError(err)
		}
		return c.JSON(snap)
	})

	r.Post("/sessions/:id/stop", func(c *fiber.Ctx) error {
		rec, err := mgr.Stop(c.Context(), c.Params("id"))
		if err != nil {
			return sessionError(err)
		}
		return c.JSON(rec)
	})

	r.Get("/sessions/:id", func(c *fiber.Ctx) error {
		snap, err := mgr.Snapshot(c.Params("id"))
		if err != nil {
			return sessionError(err)
		}
		return c.JSON(snap)
	})

	r.Get("/", identity, func(c *fiber.Ctx) error {
		userID, guestID := owner(c)
		records, err := svc.History(c.Context(), userID, guestID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		if records == nil {
			records = []Record{}
		}
		return c.JSON(records)
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		rec, err := svc.Get(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "workout not found")
		}
		return c.JSON(rec)
	})

	r.Post("/merge", identity, func(c *fiber.Ctx) error {
		userID, _ := owner(c)
		if userID == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "account required")
		}

		var req MergeRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if req.GuestID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "guest_id required")
		}

		merged, err := svc.MergeGuest(c.Context(), userID, req.GuestID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{"merged": merged})
	})
}

func owner(c *fiber.Ctx) (string, string) {
	userID, _ := c.Locals("user_id").(string)
	guestID, _ := c.Locals("guest_id").(string)
	return userID, guestID
}

func sessionError(err error) error {
	if errors.Is(err, ErrSessionNotFound) {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, err.Error())
}
