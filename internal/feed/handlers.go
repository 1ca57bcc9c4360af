package feed

import (
	"errors"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Get("/", authMiddleware, func(c *fiber.Ctx) error {
		page, err := strconv.Atoi(c.Query("page", "1"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "page must be numeric")
		}
		perPage, err := strconv.Atoi(c.Query("per_page", "10"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "per_page must be numeric")
		}

		userID, _ := c.Locals("user_id").(int64)
		token, _ := c.Locals("bearer_token").(string)

		result, err := svc.GetFeed(c.Context(), token, userID, page, perPage)
		if err != nil {
			if errors.Is(err, ErrInvalidPage) {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			log.Printf("feed assembly failed for user %d: %v", userID, err)
			return fiber.NewError(fiber.StatusInternalServerError, "internal server error")
		}
		return c.JSON(result)
	})
}
