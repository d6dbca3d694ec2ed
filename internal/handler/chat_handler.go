package handler

import (
	"errors"
	"log"

	"chatapp-backend/internal/model"
	"chatapp-backend/internal/repository"
	"chatapp-backend/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ChatHandler exposes the REST entry points into the conversation
// primitives. Message creation routes through the same ChatService.Send
// path as live sessions, so REST-written messages still reach connected
// subscribers.
type ChatHandler struct {
	chatSvc  *service.ChatService
	chatRepo *repository.PrivateChatRepository
}

func NewChatHandler(chatSvc *service.ChatService, chatRepo *repository.PrivateChatRepository) *ChatHandler {
	return &ChatHandler{chatSvc: chatSvc, chatRepo: chatRepo}
}

// ListPrivateChats returns every pairing the current user participates in.
// GET /api/v1/private-chats
func (h *ChatHandler) ListPrivateChats(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	chats, err := h.chatRepo.ListForUser(c.Context(), userID)
	if err != nil {
		log.Printf("[Chat] list private chats: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to list chats"})
	}
	if chats == nil {
		chats = []model.PrivateChat{}
	}
	return c.JSON(fiber.Map{"chats": chats})
}

// CreatePrivateChat pairs the current user with another.
// POST /api/v1/private-chats
func (h *ChatHandler) CreatePrivateChat(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	var req model.PrivateChatCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}
	if _, err := uuid.Parse(req.UserID); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "user_id must be a valid uuid"})
	}

	chat, err := h.chatRepo.Create(c.Context(), userID, req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSelfChat):
			return c.Status(400).JSON(fiber.Map{"error": "cannot start a chat with yourself"})
		case errors.Is(err, repository.ErrDuplicateChat):
			return c.Status(409).JSON(fiber.Map{"error": "chat already exists"})
		default:
			log.Printf("[Chat] create private chat: %v", err)
			return c.Status(500).JSON(fiber.Map{"error": "failed to create chat"})
		}
	}
	return c.Status(201).JSON(chat)
}

// ListConversation returns the full history with the user in the path,
// oldest first.
// GET /api/v1/conversations/:user_id
func (h *ChatHandler) ListConversation(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	otherID := c.Params("user_id")
	if _, err := uuid.Parse(otherID); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid user id"})
	}

	msgs, err := h.chatSvc.ListConversation(c.Context(), userID, otherID)
	if err != nil {
		log.Printf("[Chat] list conversation: %v", err)
		return c.Status(503).JSON(fiber.Map{"error": "failed to list messages"})
	}
	if msgs == nil {
		msgs = []model.Message{}
	}
	return c.JSON(fiber.Map{"messages": msgs})
}

// PostConversationMessage persists a message out-of-band. Live subscribers
// of the conversation still receive it; the HTTP caller is not a live
// connection, so nobody is excluded from the fan-out.
// POST /api/v1/conversations/:user_id
func (h *ChatHandler) PostConversationMessage(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	otherID := c.Params("user_id")
	if _, err := uuid.Parse(otherID); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid user id"})
	}

	var req model.ChatPostRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	msg, err := h.chatSvc.Send(c.Context(), userID, otherID, req.Message, nil)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyContent):
			return c.Status(400).JSON(fiber.Map{"error": "message is required"})
		case errors.Is(err, service.ErrUserNotFound):
			return c.Status(404).JSON(fiber.Map{"error": "user not found"})
		default:
			log.Printf("[Chat] post message: %v", err)
			return c.Status(503).JSON(fiber.Map{"error": "failed to store message"})
		}
	}
	return c.Status(201).JSON(msg)
}
