package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/quizmeai/quizme-backend/controllers"
	"github.com/quizmeai/quizme-backend/middleware"
	"github.com/quizmeai/quizme-backend/ws"
)

func SetupRouter(r *gin.Engine, db *gorm.DB) *gin.Engine {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	r.GET("/health", controllers.HealthCheck)

	api := r.Group("/api")
	api.Use(middleware.DBMiddleware(db), middleware.OptionalAuthMiddleware())

	auth := api.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)
	}

	courses := api.Group("/courses")
	{
		courses.POST("", controllers.CreateCourse)
		courses.GET("", controllers.GetCourses)
		courses.GET("/:id", controllers.GetCourse)
		courses.PUT("/:id", controllers.UpdateCourse)
		courses.DELETE("/:id", controllers.DeleteCourse)
	}

	resources := api.Group("/resources")
	{
		resources.POST("", controllers.CreateResource)
		resources.POST("/upload", controllers.UploadResource)
		resources.GET("", controllers.GetResources)
		resources.GET("/:id", controllers.GetResource)
		resources.PUT("/:id", controllers.UpdateResource)
		resources.DELETE("/:id", controllers.DeleteResource)
	}

	quiz := api.Group("/quiz")
	{
		quiz.POST("", controllers.GenerateQuiz)
		quiz.GET("", controllers.GetQuizzes)
		quiz.GET("/:id", controllers.GetQuiz)
	}

	attempts := api.Group("/quiz-attempts")
	{
		attempts.POST("", controllers.CreateQuizAttempt)
		attempts.GET("", controllers.GetQuizAttempts)
		attempts.GET("/:id", controllers.GetQuizAttempt)
	}

	api.POST("/chat", controllers.Chat)
	api.GET("/chat/history", controllers.GetChatHistory)

	api.GET("/stats/performance", controllers.GetPerformanceStats)

	r.GET("/ws/resource/:id", ws.HandleResourceWebSocket)
	r.GET("/ws/status", ws.HandleGlobalWebSocket)

	return r
}
