package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/SAP-F-2025/quiz-portal/internal/events"
	"github.com/SAP-F-2025/quiz-portal/internal/identity"
	"github.com/SAP-F-2025/quiz-portal/internal/models"
	"github.com/SAP-F-2025/quiz-portal/internal/repositories"
	"github.com/SAP-F-2025/quiz-portal/internal/repositories/postgres"
	"github.com/SAP-F-2025/quiz-portal/internal/services"
	"github.com/SAP-F-2025/quiz-portal/internal/session"
	"github.com/SAP-F-2025/quiz-portal/internal/utils"
	"github.com/SAP-F-2025/quiz-portal/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "handler-test-secret"

type testServer struct {
	router   *gin.Engine
	repo     repositories.Repository
	verifier *identity.JWTVerifier
	tokens   map[string]string
}

func newTestServer(t *testing.T, sessionOpts ...session.Option) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "quiz.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	slogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	v := validator.New()
	repo := postgres.NewRepository(db, v, slogger)
	require.NoError(t, repo.Migrate(context.Background()))
	t.Cleanup(func() { _ = repo.Close() })

	verifier := identity.NewJWTVerifier(testSecret, "quiz-portal")
	manager := services.NewServiceManager(repo, identity.NoopProvisioner{}, events.NewMockEventPublisher(slogger), slogger, v)
	handlers := NewHandlerManager(manager, identity.NewResolver(repo.User(), slogger), verifier, nil,
		utils.NewSlogLogger(slogger), sessionOpts...)

	router := gin.New()
	handlers.SetupRoutes(router)

	s := &testServer{router: router, repo: repo, verifier: verifier, tokens: map[string]string{}}
	for _, u := range []*models.User{
		{ID: "admin-1", Email: "admin@school.test", Name: "Admin", Role: models.RoleAdmin, ProfileComplete: true},
		{ID: "teacher-1", Email: "t1@school.test", Name: "Ms. Frizzle", Role: models.RoleTeacher, ProfileComplete: true},
		{ID: "student-1", Email: "s1@school.test", Name: "Arnold", Role: models.RoleStudent, Grade: "7", ProfileComplete: true},
	} {
		require.NoError(t, repo.User().Create(context.Background(), u))
		token, err := verifier.IssueToken(u, time.Hour)
		require.NoError(t, err)
		s.tokens[u.ID] = token
	}
	return s
}

func (s *testServer) do(t *testing.T, method, path, as string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if as != "" {
		req.Header.Set("Authorization", "Bearer "+s.tokens[as])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) createQuiz(t *testing.T) *models.Quiz {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/v1/quizzes", "teacher-1", map[string]interface{}{
		"title":        "Fractions",
		"target_grade": "7",
		"time_limit":   5,
		"questions": []map[string]interface{}{
			{"id": "q1", "text": "1/2 + 1/2?", "answers": []map[string]string{{"id": "A", "text": "1"}, {"id": "B", "text": "2"}}, "correct_answer_id": "A"},
			{"id": "q2", "text": "1/4 + 1/4?", "answers": []map[string]string{{"id": "A", "text": "1/8"}, {"id": "B", "text": "1/2"}}, "correct_answer_id": "B"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var quiz models.Quiz
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &quiz))
	return &quiz
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "quiz-portal")
}

func TestAuthentication(t *testing.T) {
	s := newTestServer(t)

	t.Run("missing token", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/me", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "UNAUTHENTICATED")
	})

	t.Run("resolved principal", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/me", "student-1", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var principal identity.Principal
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &principal))
		assert.Equal(t, "student-1", principal.UserID)
		assert.Equal(t, models.RoleStudent, principal.Role)
	})

	t.Run("deleted account is not recreated", func(t *testing.T) {
		gone := &models.User{ID: "teacher-gone", Email: "gone@school.test", Role: models.RoleTeacher}
		token, err := s.verifier.IssueToken(gone, time.Hour)
		require.NoError(t, err)
		s.tokens[gone.ID] = token

		w := s.do(t, http.MethodGet, "/api/v1/me", gone.ID, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "ACCOUNT_NOT_FOUND")

		_, err = s.repo.User().GetByID(context.Background(), gone.ID)
		assert.True(t, repositories.IsNotFoundError(err))
	})

	t.Run("google sign-in disabled", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/auth/google", "", map[string]string{"id_token": "x"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("admin routes need the admin role", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/admin/overview", "teacher-1", nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestQuizFlow(t *testing.T) {
	s := newTestServer(t)
	quiz := s.createQuiz(t)

	t.Run("students only create nothing", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/quizzes", "student-1", map[string]interface{}{
			"title": "Nope", "target_grade": "7",
		})
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "FORBIDDEN")
	})

	t.Run("student view hides the answer key", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/quizzes/"+quiz.ID, "student-1", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), "correct_answer_id")
	})

	t.Run("available then submit", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/quizzes/available", "student-1", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var dashboard models.StudentDashboard
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dashboard))
		require.Len(t, dashboard.Available, 1)

		w = s.do(t, http.MethodPost, "/api/v1/attempts", "student-1", map[string]interface{}{
			"quiz_id": quiz.ID,
			"answers": map[string]string{"q1": "A", "q2": "A"},
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var attempt models.Attempt
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &attempt))
		assert.Equal(t, 1, attempt.Score)
		assert.Equal(t, 2, attempt.TotalQuestions)

		w = s.do(t, http.MethodGet, "/api/v1/quizzes/available", "student-1", nil)
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dashboard))
		assert.Empty(t, dashboard.Available)
		assert.Len(t, dashboard.Attempts, 1)
	})

	t.Run("empty submission is rejected", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/attempts", "student-1", map[string]interface{}{
			"quiz_id": quiz.ID,
			"answers": map[string]string{},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "VALIDATION_FAILED")
	})

	t.Run("results and export", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/quizzes/"+quiz.ID+"/results", "teacher-1", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var results models.QuizResults
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
		assert.Equal(t, 1, results.Statistics.Count)

		w = s.do(t, http.MethodGet, "/api/v1/quizzes/"+quiz.ID+"/results/export", "teacher-1", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
		assert.NotEmpty(t, w.Body.Bytes())
	})

	t.Run("unknown quiz", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/quizzes/missing", "teacher-1", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("delete keeps attempts", func(t *testing.T) {
		w := s.do(t, http.MethodDelete, "/api/v1/quizzes/"+quiz.ID, "teacher-1", nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = s.do(t, http.MethodGet, "/api/v1/attempts/mine", "student-1", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var attempts []*models.Attempt
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &attempts))
		assert.Len(t, attempts, 1)
	})
}

func TestAdminRoutes(t *testing.T) {
	s := newTestServer(t)

	t.Run("list students with filter", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/admin/students?grade=7", "admin-1", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var rows []map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
		assert.Len(t, rows, 1)

		w = s.do(t, http.MethodGet, "/api/v1/admin/students?grade=9", "admin-1", nil)
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
		assert.Empty(t, rows)
	})

	t.Run("create teacher twice conflicts", func(t *testing.T) {
		body := map[string]string{"email": "new@school.test", "name": "New Teacher"}
		w := s.do(t, http.MethodPost, "/api/v1/admin/teachers", "admin-1", body)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		w = s.do(t, http.MethodPost, "/api/v1/admin/teachers", "admin-1", body)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("delete student", func(t *testing.T) {
		w := s.do(t, http.MethodDelete, "/api/v1/admin/students/student-1", "admin-1", nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = s.do(t, http.MethodDelete, "/api/v1/admin/students/student-1", "admin-1", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("overview", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/admin/overview", "admin-1", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestQuizSession(t *testing.T) {
	ticks := make(chan time.Time)
	s := newTestServer(t, session.WithTicks(ticks))
	quiz := s.createQuiz(t)

	server := httptest.NewServer(s.router)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") +
		"/api/v1/quizzes/" + quiz.ID + "/session?access_token=" + s.tokens["student-1"]
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var started struct {
		Type    string         `json:"type"`
		Payload startedPayload `json:"payload"`
	}
	require.NoError(t, conn.ReadJSON(&started))
	assert.Equal(t, "started", started.Type)
	assert.Equal(t, 300, started.Payload.Remaining)
	assert.Empty(t, started.Payload.Quiz.Questions[0].CorrectAnswerID)

	ticks <- time.Now()
	var tick struct {
		Type    string      `json:"type"`
		Payload tickPayload `json:"payload"`
	}
	// The opening countdown value may or may not be forwarded before the tick.
	for tick.Payload.Remaining != 299 {
		require.NoError(t, conn.ReadJSON(&tick))
		require.Equal(t, "tick", tick.Type)
	}

	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"type":    "select",
		"payload": selectPayload{QuestionID: "q2", AnswerID: "B"},
	}))
	require.NoError(t, conn.WriteJSON(map[string]string{"type": "submit"}))

	var submitted struct {
		Type    string         `json:"type"`
		Payload models.Attempt `json:"payload"`
	}
	require.NoError(t, conn.ReadJSON(&submitted))
	assert.Equal(t, "submitted", submitted.Type)
	assert.Equal(t, 1, submitted.Payload.Score)

	attempts, err := s.repo.Attempt().ListByStudent(context.Background(), "student-1")
	require.NoError(t, err)
	assert.Len(t, attempts, 1)
}
