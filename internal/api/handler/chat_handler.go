package handler

import (
	"Polyclinic/internal/api/dto"
	"Polyclinic/internal/pkg/response"
	"Polyclinic/internal/service"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ChatHandler serves both sides of the operator chat: patient routes
// and the staff panel.
type ChatHandler struct {
	chatSvc service.ChatService
}

func NewChatHandler(chatSvc service.ChatService) *ChatHandler {
	return &ChatHandler{chatSvc: chatSvc}
}

// OpenChat starts a new support session. When the patient already has
// an open chat, the 400 carries its id so the client can reattach.
func (s *ChatHandler) OpenChat(c *gin.Context) {
	var req dto.OpenChatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	patientID := c.GetUint64("patient_id")

	res, err := s.chatSvc.OpenChat(c.Request.Context(), patientID, req.Content)
	if err != nil {
		if errors.Is(err, service.ErrChatAlreadyOpen) && res != nil {
			response.FailWithData(c, response.BadRequest, err.Error(),
				dto.ExistingChatDTO{ExistingChatID: res.ID})
			return
		}
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// MyChat returns the caller's open session and clears the patient-side
// unread state.
func (s *ChatHandler) MyChat(c *gin.Context) {
	patientID := c.GetUint64("patient_id")

	res, err := s.chatSvc.GetMyChat(c.Request.Context(), patientID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// ListChats is the staff panel listing; unread_only=true keeps only
// chats with pending patient messages.
func (s *ChatHandler) ListChats(c *gin.Context) {
	unreadOnly := c.Query("unread_only") == "true"

	res, err := s.chatSvc.ListChats(c.Request.Context(), unreadOnly)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// GetChat fetches one chat; read-state is cleared for whichever party
// the caller is.
func (s *ChatHandler) GetChat(c *gin.Context) {
	chatID, err := strconv.ParseUint(c.Param("chat_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	callerID := c.GetUint64("patient_id")
	role := c.GetString("role")

	res, err := s.chatSvc.GetChat(c.Request.Context(), callerID, role, chatID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// SendMessage appends a message from either party.
func (s *ChatHandler) SendMessage(c *gin.Context) {
	chatID, err := strconv.ParseUint(c.Param("chat_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	var req dto.ChatMessageReq
	if err = c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	callerID := c.GetUint64("patient_id")
	role := c.GetString("role")

	res, err := s.chatSvc.SendMessage(c.Request.Context(), callerID, role, chatID, req.Content)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// UpdateChat claims or closes a chat.
func (s *ChatHandler) UpdateChat(c *gin.Context) {
	chatID, err := strconv.ParseUint(c.Param("chat_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	var req dto.ChatActionReq
	if err = c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	operatorID := c.GetUint64("patient_id")

	if err = s.chatSvc.UpdateChat(c.Request.Context(), operatorID, chatID, req.Action); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *ChatHandler) DeleteChat(c *gin.Context) {
	chatID, err := strconv.ParseUint(c.Param("chat_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	if err = s.chatSvc.DeleteChat(c.Request.Context(), chatID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// BlockPatient suspends or restores the chat owner's send capability.
func (s *ChatHandler) BlockPatient(c *gin.Context) {
	chatID, err := strconv.ParseUint(c.Param("chat_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	var req dto.BlockPatientReq
	if err = c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	if err = s.chatSvc.BlockPatient(c.Request.Context(), chatID, req.Action); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
