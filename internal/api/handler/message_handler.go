package handler

import (
	"strconv"

	"GymChat/internal/pkg/response"
	"GymChat/internal/service"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	messages service.MessageService
}

func NewMessageHandler(messages service.MessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

// GetConversation GET /messages/:userA/:userB
func (s *MessageHandler) GetConversation(c *gin.Context) {
	userA, errA := strconv.ParseUint(c.Param("userA"), 10, 64)
	userB, errB := strconv.ParseUint(c.Param("userB"), 10, 64)
	if errA != nil || errB != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	list, err := s.messages.History(c.Request.Context(), userA, userB)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}
