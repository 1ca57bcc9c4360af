package friendship

import (
	"errors"
	"log"
	"strconv"

	"github.com/IvaVarya/SERVER/internal/directory"

	"github.com/gofiber/fiber/v2"
)

type friendRequest struct {
	FriendID int64 `json:"friend_id"`
}

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Get("/", authMiddleware, func(c *fiber.Ctx) error {
		friends, err := svc.ListFriends(c.Context(), callerToken(c), callerID(c))
		if err != nil {
			return serviceError(err)
		}
		return c.JSON(friends)
	})

	r.Get("/requests/incoming", authMiddleware, func(c *fiber.Ctx) error {
		requests, err := svc.ListIncomingRequests(c.Context(), callerToken(c), callerID(c))
		if err != nil {
			return serviceError(err)
		}
		return c.JSON(requests)
	})

	r.Get("/search", authMiddleware, func(c *fiber.Ctx) error {
		query := c.Query("query")
		if query == "" {
			return fiber.NewError(fiber.StatusBadRequest, "query required")
		}
		matches, err := svc.SearchUsers(c.Context(), callerToken(c), callerID(c), query)
		if err != nil {
			return serviceError(err)
		}
		return c.JSON(matches)
	})

	r.Post("/request", authMiddleware, func(c *fiber.Ctx) error {
		var req friendRequest
		if err := c.BodyParser(&req); err != nil || req.FriendID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "friend_id required")
		}
		id, err := svc.RequestFriend(c.Context(), callerToken(c), callerID(c), req.FriendID)
		if err != nil {
			return serviceError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message":    "friend request sent",
			"request_id": id,
		})
	})

	r.Post("/accept", authMiddleware, func(c *fiber.Ctx) error {
		var req friendRequest
		if err := c.BodyParser(&req); err != nil || req.FriendID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "friend_id required")
		}
		if err := svc.AcceptFriend(c.Context(), callerToken(c), callerID(c), req.FriendID); err != nil {
			return serviceError(err)
		}
		return c.JSON(fiber.Map{"message": "friend added"})
	})

	r.Post("/reject", authMiddleware, func(c *fiber.Ctx) error {
		var req friendRequest
		if err := c.BodyParser(&req); err != nil || req.FriendID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "friend_id required")
		}
		if err := svc.RejectFriend(c.Context(), callerID(c), req.FriendID); err != nil {
			return serviceError(err)
		}
		return c.JSON(fiber.Map{"message": "friend request rejected"})
	})

	r.Delete("/:friend_id", authMiddleware, func(c *fiber.Ctx) error {
		friendID, err := strconv.ParseInt(c.Params("friend_id"), 10, 64)
		if err != nil || friendID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "friend_id must be numeric")
		}
		if err := svc.RemoveFriend(c.Context(), callerToken(c), callerID(c), friendID); err != nil {
			return serviceError(err)
		}
		return c.JSON(fiber.Map{"message": "friend removed"})
	})
}

func callerID(c *fiber.Ctx) int64 {
	id, _ := c.Locals("user_id").(int64)
	return id
}

func callerToken(c *fiber.Ctx) string {
	token, _ := c.Locals("bearer_token").(string)
	return token
}

func serviceError(err error) *fiber.Error {
	switch {
	case errors.Is(err, ErrSelfRequest):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, ErrAlreadyExists):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrRequestNotFound),
		errors.Is(err, ErrFriendNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, directory.ErrUnavailable):
		return fiber.NewError(fiber.StatusServiceUnavailable, "user service unavailable")
	default:
		log.Printf("friendship internal error: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "internal server error")
	}
}
