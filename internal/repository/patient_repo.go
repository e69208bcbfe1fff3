package repository

import (
	"Polyclinic/internal/model"
	"context"

	"gorm.io/gorm"
)

type PatientRepo interface {
	Create(ctx context.Context, patient *model.Patient) error
	GetByID(ctx context.Context, id uint64) (*model.Patient, error)
	GetByPhone(ctx context.Context, phone string) (*model.Patient, error)
}

type patientRepoImpl struct {
	db *gorm.DB
}

func NewPatientRepo(db *gorm.DB) PatientRepo {
	return &patientRepoImpl{db: db}
}

func (s *patientRepoImpl) Create(ctx context.Context, patient *model.Patient) error {
	return s.db.WithContext(ctx).Create(patient).Error
}

func (s *patientRepoImpl) GetByID(ctx context.Context, id uint64) (*model.Patient, error) {
	var patient model.Patient
	err := s.db.WithContext(ctx).First(&patient, id).Error
	return &patient, err
}

func (s *patientRepoImpl) GetByPhone(ctx context.Context, phone string) (*model.Patient, error) {
	var patient model.Patient
	err := s.db.WithContext(ctx).Where("phone = ?", phone).First(&patient).Error
	return &patient, err
}
