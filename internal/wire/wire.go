package wire

import (
	"Polyclinic/internal/api"
	"Polyclinic/internal/api/handler"
	"Polyclinic/internal/job"
	"Polyclinic/internal/pkg/cron"
	"Polyclinic/internal/pkg/redis"
	"Polyclinic/internal/repository"
	"Polyclinic/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ApplicationContainer holds the top-level components the app runs.
type ApplicationContainer struct {
	Router  *gin.Engine
	DB      *gorm.DB
	CronMgr *cron.Manager
}

func BuildApplication(db *gorm.DB) (*ApplicationContainer, error) {
	patientRepo := repository.NewPatientRepo(db)
	letterRepo := repository.NewLetterRepo(db)
	chatRepo := repository.NewChatRepo(db)

	patientService := service.NewPatientService(patientRepo)
	letterService := service.NewLetterService(letterRepo, patientRepo, chatRepo)
	chatService := service.NewChatService(chatRepo, patientRepo, redis.NewLocker())

	handlers := &api.HandlersGroup{
		PatientHandler:     handler.NewPatientHandler(patientService),
		LetterHandler:      handler.NewLetterHandler(letterService),
		AdminLetterHandler: handler.NewAdminLetterHandler(letterService),
		ChatHandler:        handler.NewChatHandler(chatService),
	}

	router := api.SetupRouter(handlers)

	cronMgr := cron.NewCronManager(job.NewChatCleanupJob(chatRepo))

	return &ApplicationContainer{
		Router:  router,
		DB:      db,
		CronMgr: cronMgr,
	}, nil
}
