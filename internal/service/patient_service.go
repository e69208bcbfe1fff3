package service

import (
	"Polyclinic/internal/api/dto"
	"Polyclinic/internal/model"
	"Polyclinic/internal/pkg/consts"
	"Polyclinic/internal/pkg/redis"
	"Polyclinic/internal/pkg/security"
	"Polyclinic/internal/repository"
	"context"
	"errors"

	"gorm.io/gorm"
)

type PatientService interface {
	Register(ctx context.Context, req *dto.RegisterDTO) error
	Login(ctx context.Context, req *dto.CredentialDTO) (string, error)
	Logout(ctx context.Context, token string) error
}

type patientServiceImpl struct {
	patientRepo repository.PatientRepo
}

func NewPatientService(patientRepo repository.PatientRepo) PatientService {
	return &patientServiceImpl{patientRepo: patientRepo}
}

func (s *patientServiceImpl) Register(ctx context.Context, req *dto.RegisterDTO) error {
	_, err := s.patientRepo.GetByPhone(ctx, req.Phone)
	if err == nil {
		return ErrPhoneExist
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	passwordHash, err := security.HashPassword(req.Password)
	if err != nil {
		return err
	}

	patient := &model.Patient{
		Phone:    req.Phone,
		Password: passwordHash,
		FullName: req.FullName,
		Role:     model.RoleUser,
	}
	return s.patientRepo.Create(ctx, patient)
}

func (s *patientServiceImpl) Login(ctx context.Context, req *dto.CredentialDTO) (string, error) {
	patient, err := s.patientRepo.GetByPhone(ctx, req.Phone)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrPasswordIncorrect
		}
		return "", err
	}

	if err = security.CheckPasswordHash(req.Password, patient.Password); err != nil {
		return "", ErrPasswordIncorrect
	}

	return security.GenerateToken(patient.ID, patient.Role)
}

// Logout blacklists the token signature for the remaining token
// lifetime, so the middleware rejects it from now on.
func (s *patientServiceImpl) Logout(ctx context.Context, token string) error {
	signature, err := security.ExtractSignature(token)
	if err != nil {
		return ErrParamInvalid
	}
	return redis.SetWithExpiration(ctx, consts.TokenBlacklistKey+signature, "1", security.JWTExpirationTime)
}
