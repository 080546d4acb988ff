package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/quizmeai/quizme-backend/config"
	"github.com/quizmeai/quizme-backend/middleware"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := config.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	api := r.Group("/api")
	api.Use(middleware.DBMiddleware(db), middleware.OptionalAuthMiddleware())

	api.POST("/auth/register", Register)
	api.POST("/auth/login", Login)

	api.POST("/courses", CreateCourse)
	api.GET("/courses", GetCourses)
	api.GET("/courses/:id", GetCourse)
	api.PUT("/courses/:id", UpdateCourse)
	api.DELETE("/courses/:id", DeleteCourse)

	api.POST("/resources", CreateResource)
	api.GET("/resources", GetResources)
	api.GET("/resources/:id", GetResource)
	api.PUT("/resources/:id", UpdateResource)
	api.DELETE("/resources/:id", DeleteResource)

	api.POST("/quiz", GenerateQuiz)
	api.GET("/quiz", GetQuizzes)
	api.GET("/quiz/:id", GetQuiz)

	api.POST("/quiz-attempts", CreateQuizAttempt)
	api.GET("/quiz-attempts", GetQuizAttempts)
	api.GET("/quiz-attempts/:id", GetQuizAttempt)

	api.POST("/chat", Chat)
	api.GET("/chat/history", GetChatHistory)

	api.GET("/stats/performance", GetPerformanceStats)

	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

func wantStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d (body: %s)", w.Code, want, w.Body.String())
	}
}
