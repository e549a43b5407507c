package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/estate-market-api/config"
	"github.com/kendall-kelly/estate-market-api/dto"
	"github.com/kendall-kelly/estate-market-api/logger"
	"github.com/kendall-kelly/estate-market-api/services"
)

func chatGateway(c *gin.Context) *services.ChatGateway {
	return services.NewChatGateway(config.GetDB(), imageResolver(c))
}

// ListChatRooms handles GET /api/chats/rooms - lists rooms the caller takes part in
func ListChatRooms(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	rooms, err := chatGateway(c).ListRooms(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, rooms)
}

// CreateChatRoom handles POST /api/chats/rooms/create - opens the room between
// the caller and a property's seller, or returns the one they already share
func CreateChatRoom(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req dto.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	room, created, err := chatGateway(c).CreateRoom(c.Request.Context(), userID, uint(req.Property))
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		logger.Ctx(c.Request.Context()).Info().
			Uint(logger.FieldUserID, userID).
			Uint(logger.FieldRoomID, room.ID).
			Msg("chat room created")
	}
	respondSuccess(c, status, room)
}

// GetChatRoom handles GET /api/chats/rooms/:id - returns a room with its messages
func GetChatRoom(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	roomID, ok := parseIDParam(c, "id", "ROOM_NOT_FOUND", "Chatroom not found.")
	if !ok {
		return
	}

	room, err := chatGateway(c).GetRoom(c.Request.Context(), userID, roomID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, room)
}

// SendMessage handles POST /api/chats/messages/send
func SendMessage(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	msg, err := chatGateway(c).SendMessage(c.Request.Context(), userID, uint(req.Chatroom), req.Message)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, msg)
}

// DeleteMessage handles DELETE /api/chats/messages/delete/:id - removes one of
// the caller's own messages
func DeleteMessage(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	messageID, ok := parseIDParam(c, "id", "MESSAGE_NOT_FOUND", "Message not found.")
	if !ok {
		return
	}

	if err := chatGateway(c).DeleteMessage(c.Request.Context(), userID, messageID); err != nil {
		respondError(c, err)
		return
	}

	logger.Ctx(c.Request.Context()).Info().Uint(logger.FieldMessageID, messageID).Msg("chat message deleted")
	c.Status(http.StatusNoContent)
}
