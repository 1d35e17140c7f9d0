package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/commhub/internal/domain"
	"github.com/nfrund/commhub/internal/middleware"
)

// MessagesHandler serves persisted-message operations. Real-time delivery
// happens over the WebSocket; these endpoints are the durable counterpart.
type MessagesHandler struct {
	messages domain.MessageRepository
}

// NewMessagesHandler creates a new MessagesHandler.
func NewMessagesHandler(messages domain.MessageRepository) *MessagesHandler {
	return &MessagesHandler{messages: messages}
}

// Create handles POST /api/messages. The sender is the authenticated user.
func (h *MessagesHandler) Create(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return errorJSON(c, http.StatusUnauthorized, "not authenticated")
	}

	var req CreateMessageRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "receiverId and text are required")
	}

	key := domain.ConversationKey(user.ID, req.ReceiverID)
	msg, err := h.messages.Create(c.Request().Context(), user.ID, req.ReceiverID, req.Text, key)
	if err != nil {
		middleware.FromContext(c.Request().Context()).Error("Failed to create message", "sender_id", user.ID, "error", err)
		return errorJSON(c, http.StatusInternalServerError, "could not create message")
	}

	return c.JSON(http.StatusCreated, msg)
}

// Conversation handles GET /api/messages/conversation?targetUserId=N.
func (h *MessagesHandler) Conversation(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return errorJSON(c, http.StatusUnauthorized, "not authenticated")
	}

	targetID, err := targetUserID(c)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "targetUserId must be a positive integer")
	}

	key := domain.ConversationKey(user.ID, targetID)
	conversation, err := h.messages.FetchConversation(c.Request().Context(), key)
	if err != nil {
		middleware.FromContext(c.Request().Context()).Error("Failed to fetch conversation", "conversation_key", key, "error", err)
		return errorJSON(c, http.StatusInternalServerError, "could not fetch conversation")
	}

	return c.JSON(http.StatusOK, conversation)
}

// Search handles GET /api/messages/search?targetUserId=N&q=term.
func (h *MessagesHandler) Search(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return errorJSON(c, http.StatusUnauthorized, "not authenticated")
	}

	targetID, err := targetUserID(c)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "targetUserId must be a positive integer")
	}

	query := c.QueryParam("q")
	if query == "" {
		return errorJSON(c, http.StatusBadRequest, "q is required")
	}

	key := domain.ConversationKey(user.ID, targetID)
	results, err := h.messages.SearchConversation(c.Request().Context(), key, query)
	if err != nil {
		middleware.FromContext(c.Request().Context()).Error("Failed to search conversation", "conversation_key", key, "error", err)
		return errorJSON(c, http.StatusInternalServerError, "could not search conversation")
	}

	return c.JSON(http.StatusOK, results)
}

func targetUserID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.QueryParam("targetUserId"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidTarget
	}
	return id, nil
}

var errInvalidTarget = echo.NewHTTPError(http.StatusBadRequest, "invalid targetUserId")
