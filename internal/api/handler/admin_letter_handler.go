package handler

import (
	"Polyclinic/internal/api/dto"
	"Polyclinic/internal/pkg/response"
	"Polyclinic/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

// AdminLetterHandler serves the chief-doctor side of letter threads.
// Every route behind it is gated on the CHIEF_DOCTOR role.
type AdminLetterHandler struct {
	letterSvc service.LetterService
}

func NewAdminLetterHandler(letterSvc service.LetterService) *AdminLetterHandler {
	return &AdminLetterHandler{letterSvc: letterSvc}
}

func (s *AdminLetterHandler) ListLetters(c *gin.Context) {
	res, err := s.letterSvc.ListAllLetters(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// GetLetter fetches the thread and clears the chief-doctor unread state.
func (s *AdminLetterHandler) GetLetter(c *gin.Context) {
	letterID, err := strconv.ParseUint(c.Param("letter_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	res, err := s.letterSvc.GetLetterForChief(c.Request.Context(), letterID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// Reply records the first answer or appends a follow-up message.
func (s *AdminLetterHandler) Reply(c *gin.Context) {
	letterID, err := strconv.ParseUint(c.Param("letter_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	var req dto.ReplyReq
	if err = c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	if err = s.letterSvc.Reply(c.Request.Context(), letterID, req.Content); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *AdminLetterHandler) DeleteLetter(c *gin.Context) {
	letterID, err := strconv.ParseUint(c.Param("letter_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	if err = s.letterSvc.DeleteLetter(c.Request.Context(), letterID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// Unread is the chief-doctor polling endpoint.
func (s *AdminLetterHandler) Unread(c *gin.Context) {
	res, err := s.letterSvc.ChiefUnread(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}
