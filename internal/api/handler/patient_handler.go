package handler

import (
	"Polyclinic/internal/api/dto"
	"Polyclinic/internal/pkg/response"
	"Polyclinic/internal/service"

	"github.com/gin-gonic/gin"
)

type PatientHandler struct {
	patientSvc service.PatientService
}

func NewPatientHandler(patientSvc service.PatientService) *PatientHandler {
	return &PatientHandler{patientSvc: patientSvc}
}

func (s *PatientHandler) Register(c *gin.Context) {
	var req dto.RegisterDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	if err := s.patientSvc.Register(c.Request.Context(), &req); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *PatientHandler) Login(c *gin.Context) {
	var req dto.CredentialDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	token, err := s.patientSvc.Login(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, map[string]string{
		"token": token,
	})
}

func (s *PatientHandler) Logout(c *gin.Context) {
	token := c.GetString("token")
	if err := s.patientSvc.Logout(c.Request.Context(), token); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
