package model

import (
	"time"
)

const (
	RoleUser        = "USER"
	RoleOperator    = "OPERATOR"
	RoleAdmin       = "ADMIN"
	RoleChiefDoctor = "CHIEF_DOCTOR"
)

type Patient struct {
	ID                uint64  `gorm:"primaryKey"`
	Phone             string  `gorm:"type:varchar(30);uniqueIndex:idx_phone;not null"`
	Password          string  `gorm:"type:varchar(255);not null"`
	FullName          *string `gorm:"type:varchar(100)"`
	Role              string  `gorm:"type:varchar(20);not null;default:USER"`
	IsMessagesBlocked bool    `gorm:"type:tinyint(1);default:0"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (Patient) TableName() string {
	return "patients"
}
