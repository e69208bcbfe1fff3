package api

import "Polyclinic/internal/api/handler"

// HandlersGroup bundles the initialized handler instances.
type HandlersGroup struct {
	PatientHandler     *handler.PatientHandler
	LetterHandler      *handler.LetterHandler
	AdminLetterHandler *handler.AdminLetterHandler
	ChatHandler        *handler.ChatHandler
}
