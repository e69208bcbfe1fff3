package dto

// RegisterDTO creates a patient account.
type RegisterDTO struct {
	Phone    string  `json:"phone" binding:"required,min=5,max=30"`
	Password string  `json:"password" binding:"required,min=6,max=64"`
	FullName *string `json:"full_name" binding:"omitempty,max=100"`
}

// CredentialDTO is the login request body.
type CredentialDTO struct {
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required"`
}
