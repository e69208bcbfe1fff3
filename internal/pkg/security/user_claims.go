package security

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	JWTSecret         string = "Polyclinic"
	JWTExpirationTime        = time.Hour * 24
)

// UserClaims carries the session identity embedded into every token.
type UserClaims struct {
	PatientID uint64 `json:"patient_id"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}
