package handler

import (
	"Polyclinic/internal/api/dto"
	"Polyclinic/internal/pkg/response"
	"Polyclinic/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

// LetterHandler serves the patient-facing letter endpoints.
type LetterHandler struct {
	letterSvc service.LetterService
}

func NewLetterHandler(letterSvc service.LetterService) *LetterHandler {
	return &LetterHandler{letterSvc: letterSvc}
}

// ListLetters returns the caller's threads, newest first.
func (s *LetterHandler) ListLetters(c *gin.Context) {
	patientID := c.GetUint64("patient_id")

	res, err := s.letterSvc.ListLetters(c.Request.Context(), patientID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// CreateLetter opens a new thread to the chief doctor.
func (s *LetterHandler) CreateLetter(c *gin.Context) {
	var req dto.CreateLetterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	patientID := c.GetUint64("patient_id")

	res, err := s.letterSvc.CreateLetter(c.Request.Context(), patientID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// GetLetter fetches the thread and clears the caller's unread state in
// the same request.
func (s *LetterHandler) GetLetter(c *gin.Context) {
	letterID, err := strconv.ParseUint(c.Param("letter_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	patientID := c.GetUint64("patient_id")

	res, err := s.letterSvc.GetLetterForPatient(c.Request.Context(), patientID, letterID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// MarkReplyRead flips the read flags without returning the thread.
func (s *LetterHandler) MarkReplyRead(c *gin.Context) {
	letterID, err := strconv.ParseUint(c.Param("letter_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	patientID := c.GetUint64("patient_id")

	if err = s.letterSvc.MarkReplyRead(c.Request.Context(), patientID, letterID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// AddFollowUp appends a patient message after the first reply.
func (s *LetterHandler) AddFollowUp(c *gin.Context) {
	letterID, err := strconv.ParseUint(c.Param("letter_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	var req dto.FollowUpReq
	if err = c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	patientID := c.GetUint64("patient_id")

	res, err := s.letterSvc.AddFollowUp(c.Request.Context(), patientID, letterID, req.Content)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// Unread is the patient polling endpoint.
func (s *LetterHandler) Unread(c *gin.Context) {
	patientID := c.GetUint64("patient_id")

	res, err := s.letterSvc.PatientUnread(c.Request.Context(), patientID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}
