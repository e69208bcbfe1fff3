package api

import (
	"Polyclinic/internal/api/middleware"
	"Polyclinic/internal/model"
	"Polyclinic/internal/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRouter(group *HandlersGroup) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.AuditMiddleware())
	r.Use(middleware.CORSMiddleware())
	logger.SetupGin(r)

	staffRoles := []string{model.RoleOperator, model.RoleAdmin, model.RoleChiefDoctor}

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"Code":    200,
				"Message": "pong",
				"Data":    nil,
			})
		})

		authGroup := apiGroup.Group("/auth")
		{
			authGroup.POST("/register", group.PatientHandler.Register)
			authGroup.POST("/login", group.PatientHandler.Login)

			sessionGroup := authGroup.Group("")
			sessionGroup.Use(middleware.AuthMiddleware())
			{
				sessionGroup.POST("/logout", group.PatientHandler.Logout)
			}
		}

		// Letter threads, patient side. Everything here is near-real-time
		// state the polling hooks depend on, hence the no-store group.
		letterGroup := apiGroup.Group("/letters")
		letterGroup.Use(middleware.AuthMiddleware(), middleware.NoStoreMiddleware())
		{
			letterGroup.GET("", group.LetterHandler.ListLetters)
			letterGroup.POST("", group.LetterHandler.CreateLetter)
			letterGroup.GET("/unread", group.LetterHandler.Unread)
			letterGroup.GET("/:letter_id", group.LetterHandler.GetLetter)
			letterGroup.PATCH("/:letter_id", group.LetterHandler.MarkReplyRead)
			letterGroup.POST("/:letter_id", group.LetterHandler.AddFollowUp)
		}

		// Letter threads, chief-doctor side.
		adminLetterGroup := apiGroup.Group("/admin/letters")
		adminLetterGroup.Use(middleware.AuthMiddleware(), middleware.CheckRoles(model.RoleChiefDoctor), middleware.NoStoreMiddleware())
		{
			adminLetterGroup.GET("", group.AdminLetterHandler.ListLetters)
			adminLetterGroup.GET("/unread", group.AdminLetterHandler.Unread)
			adminLetterGroup.GET("/:letter_id", group.AdminLetterHandler.GetLetter)
			adminLetterGroup.PUT("/:letter_id", group.AdminLetterHandler.Reply)
			adminLetterGroup.DELETE("/:letter_id", group.AdminLetterHandler.DeleteLetter)
		}

		// Operator chat: role gating is per verb, so staff-only routes
		// carry their own CheckRoles.
		chatGroup := apiGroup.Group("/operator-chat")
		chatGroup.Use(middleware.AuthMiddleware(), middleware.NoStoreMiddleware())
		{
			chatGroup.GET("", middleware.CheckRoles(staffRoles...), group.ChatHandler.ListChats)
			chatGroup.POST("", group.ChatHandler.OpenChat)
			chatGroup.GET("/my-chat", group.ChatHandler.MyChat)
			chatGroup.GET("/:chat_id", group.ChatHandler.GetChat)
			chatGroup.POST("/:chat_id", group.ChatHandler.SendMessage)
			chatGroup.PATCH("/:chat_id", middleware.CheckRoles(staffRoles...), group.ChatHandler.UpdateChat)
			chatGroup.DELETE("/:chat_id", middleware.CheckRoles(staffRoles...), group.ChatHandler.DeleteChat)
			chatGroup.PATCH("/:chat_id/block", middleware.CheckRoles(staffRoles...), group.ChatHandler.BlockPatient)
		}
	}

	return r
}
