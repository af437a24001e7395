package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/RehanAnsari17/Qloooooooo/internal/chat"
	"github.com/RehanAnsari17/Qloooooooo/internal/common"
	"github.com/RehanAnsari17/Qloooooooo/internal/httpapi/middleware"
)

func userIDFromContext(c *gin.Context) (uint64, bool) {
	v, ok := c.Get(middleware.UserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint64)
	return id, ok
}

func messageView(m *chat.Message) gin.H {
	view := gin.H{
		"id":        m.MessageID,
		"content":   m.Content,
		"sender":    m.Sender,
		"timestamp": m.CreatedAt,
	}
	if rs := m.RestaurantList(); rs != nil {
		view["restaurants"] = rs
	}
	return view
}

type registerProfileReq struct {
	Name     string `json:"name"`
	Age      int    `json:"age"`
	Location string `json:"location"`
}

// RegisterProfile opens a chat session for the submitted profile and returns
// the session id along with the FoodieBot greeting.
func (h *Handler) RegisterProfile(c *gin.Context) {
	uid, okk := userIDFromContext(c)
	if !okk {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req registerProfileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	if req.Name == "" || req.Location == "" {
		common.Fail(c, http.StatusBadRequest, 10002, "name and location are required")
		return
	}
	if req.Age < minAge || req.Age > maxAge {
		common.Fail(c, http.StatusBadRequest, 10004, "age must be between 13 and 120")
		return
	}

	session, greeting, err := h.ChatSvc.RegisterProfile(c.Request.Context(), uid, req.Name, req.Age, req.Location)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "failed to create session")
		return
	}

	common.OK(c, gin.H{
		"user_id":    uid,
		"session_id": session.SessionID,
		"greeting":   messageView(greeting),
	})
}

type sendMessageReq struct {
	SessionID string `json:"session_id" binding:"required"`
	Message   string `json:"message"`
}

func (h *Handler) SendChatMessage(c *gin.Context) {
	uid, okk := userIDFromContext(c)
	if !okk {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req sendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	userMsg, botMsg, err := h.ChatSvc.SendMessage(c.Request.Context(), uid, req.SessionID, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, chat.ErrEmptyMessage):
			common.Fail(c, http.StatusBadRequest, 10005, "message must not be empty")
		case errors.Is(err, chat.ErrSessionEnded):
			common.Fail(c, http.StatusBadRequest, 40002, "chat session has ended")
		case errors.Is(err, chat.ErrSendInFlight):
			common.Fail(c, http.StatusConflict, 40901, "a message is already being processed for this session")
		case errors.Is(err, gorm.ErrRecordNotFound):
			common.Fail(c, http.StatusNotFound, 40404, "chat session not found")
		default:
			common.Fail(c, http.StatusInternalServerError, 50002, "failed to send message")
		}
		return
	}

	common.OK(c, gin.H{
		"user_message": messageView(userMsg),
		"bot_message":  messageView(botMsg),
	})
}

func (h *Handler) EndChat(c *gin.Context) {
	uid, okk := userIDFromContext(c)
	if !okk {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	sessionID := c.Param("session_id")
	if err := h.ChatSvc.EndChat(c.Request.Context(), uid, sessionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, 40404, "chat session not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50003, "failed to end chat session")
		return
	}
	common.OK(c, gin.H{"message": "chat session ended successfully"})
}

func (h *Handler) GetChatSession(c *gin.Context) {
	uid, okk := userIDFromContext(c)
	if !okk {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	sessionID := c.Param("session_id")
	session, msgs, err := h.ChatSvc.Transcript(c.Request.Context(), uid, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, 40404, "chat session not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50004, "failed to load chat session")
		return
	}

	views := make([]gin.H, 0, len(msgs))
	for i := range msgs {
		views = append(views, messageView(&msgs[i]))
	}
	common.OK(c, gin.H{
		"id":         session.SessionID,
		"user_name":  session.UserName,
		"user_age":   session.UserAge,
		"location":   session.Location,
		"is_active":  session.Active,
		"created_at": session.CreatedAt,
		"ended_at":   session.EndedAt,
		"messages":   views,
	})
}

func (h *Handler) ChatHistory(c *gin.Context) {
	uid, okk := userIDFromContext(c)
	if !okk {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	sessions, err := h.ChatSvc.History(c.Request.Context(), uid)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50005, "failed to load chat history")
		return
	}
	common.OK(c, gin.H{"sessions": sessions})
}
