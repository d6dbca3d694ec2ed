package handler

import (
	"log"

	"chatapp-backend/internal/model"
	"chatapp-backend/internal/repository"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	userRepo *repository.UserRepository
}

func NewUserHandler(userRepo *repository.UserRepository) *UserHandler {
	return &UserHandler{userRepo: userRepo}
}

// List returns the active user directory.
// GET /api/v1/users
func (h *UserHandler) List(c *fiber.Ctx) error {
	users, err := h.userRepo.ListActive(c.Context())
	if err != nil {
		log.Printf("[User] list: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to list users"})
	}
	if users == nil {
		users = []model.User{}
	}
	return c.JSON(fiber.Map{"users": users})
}
