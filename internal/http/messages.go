package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookswap/internal/auth"
	"github.com/mrlokans/bookswap/internal/services"
)

type sendMessageRequest struct {
	ReceiverID string `json:"receiverId" binding:"required"`
	BookID     string `json:"bookId" binding:"required"`
	Content    string `json:"content" binding:"required"`
}

type MessagesController struct {
	messages *services.MessageService
}

func NewMessagesController(messages *services.MessageService) *MessagesController {
	return &MessagesController{messages: messages}
}

// Send posts a message about a book.
// POST /api/messages
func (mc *MessagesController) Send(c *gin.Context) {
	var req sendMessageRequest
	if !bindJSON(c, &req) {
		return
	}

	msg, err := mc.messages.Send(c.Request.Context(), auth.GetUserID(c), services.MessageInput{
		ReceiverID: req.ReceiverID,
		BookID:     req.BookID,
		Content:    req.Content,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, msg.ID, "Message sent successfully")
}

// BookMessages returns the caller's messages about a book.
// GET /api/messages/book/:bookId?with=
func (mc *MessagesController) BookMessages(c *gin.Context) {
	thread, err := mc.messages.BookThread(c.Request.Context(), auth.GetUserID(c), c.Param("bookId"), c.Query("with"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, thread)
}

// Conversations lists one summary per book and counterpart.
// GET /api/messages/conversations
func (mc *MessagesController) Conversations(c *gin.Context) {
	convs, err := mc.messages.Conversations(c.Request.Context(), auth.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, convs)
}
