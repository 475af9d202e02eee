package services

import (
	"context"
	"testing"

	"github.com/SAP-F-2025/quiz-portal/internal/events"
	"github.com/SAP-F-2025/quiz-portal/internal/models"
	"github.com/SAP-F-2025/quiz-portal/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int { return &i }

func validCreateRequest() *CreateQuizRequest {
	return &CreateQuizRequest{
		Title:       "  Fractions ",
		TargetGrade: "7",
		TimeLimit:   15,
		Questions: []QuestionRequest{
			{
				Text:               "1/2 + 1/4?",
				Answers:            []AnswerRequest{{Text: "3/4"}, {Text: "2/6"}},
				CorrectAnswerIndex: intPtr(0),
			},
			{
				ID:              "q2",
				Text:            "2/4 equals?",
				Answers:         []AnswerRequest{{ID: "a", Text: "1/2"}, {ID: "b", Text: "1/4"}},
				CorrectAnswerID: "a",
			},
		},
	}
}

func TestQuizService_Create(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	pub := newPublisher()
	svc := NewQuizService(repo, pub, testLogger(), validator.New())

	owner := mustCreateUser(t, repo, teacher("t1"))
	kid := mustCreateUser(t, repo, student("s1", "Ana", "7"))

	t.Run("valid quiz", func(t *testing.T) {
		quiz, err := svc.Create(ctx, owner, validCreateRequest())
		require.NoError(t, err)

		assert.NotEmpty(t, quiz.ID)
		assert.Equal(t, "Fractions", quiz.Title)
		assert.Equal(t, "t1", quiz.TeacherID)
		require.Len(t, quiz.Questions, 2)
		assert.NotEmpty(t, quiz.Questions[0].ID)
		assert.Equal(t, quiz.Questions[0].Answers[0].ID, quiz.Questions[0].CorrectAnswerID)
		assert.Equal(t, "a", quiz.Questions[1].CorrectAnswerID)

		stored, err := repo.Quiz().GetByID(ctx, quiz.ID)
		require.NoError(t, err)
		assert.Equal(t, quiz.Questions[0].CorrectAnswerID, stored.Questions[0].CorrectAnswerID)

		published := pub.GetPublishedEvents()
		require.Len(t, published, 1)
		assert.Equal(t, events.EventQuizCreated, published[0].Type)
	})

	invalid := []struct {
		name   string
		mutate func(r *CreateQuizRequest)
	}{
		{"blank title", func(r *CreateQuizRequest) { r.Title = "  " }},
		{"grade out of range", func(r *CreateQuizRequest) { r.TargetGrade = "13" }},
		{"zero time limit", func(r *CreateQuizRequest) { r.TimeLimit = 0 }},
		{"no questions", func(r *CreateQuizRequest) { r.Questions = nil }},
		{"blank question text", func(r *CreateQuizRequest) { r.Questions[1].Text = " " }},
		{"single answer", func(r *CreateQuizRequest) { r.Questions[1].Answers = r.Questions[1].Answers[:1] }},
		{"blank answer", func(r *CreateQuizRequest) { r.Questions[1].Answers[1].Text = "" }},
		{"no correct answer", func(r *CreateQuizRequest) { r.Questions[0].CorrectAnswerIndex = nil }},
		{"index out of range", func(r *CreateQuizRequest) { r.Questions[0].CorrectAnswerIndex = intPtr(5) }},
		{"foreign correct answer", func(r *CreateQuizRequest) { r.Questions[1].CorrectAnswerID = "zzz" }},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreateRequest()
			tt.mutate(req)
			_, err := svc.Create(ctx, owner, req)
			assert.True(t, IsValidation(err), "got %v", err)
		})
	}

	t.Run("students cannot author", func(t *testing.T) {
		_, err := svc.Create(ctx, kid, validCreateRequest())
		assert.True(t, IsPermission(err))
	})
}

func TestQuizService_StudentViews(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	svc := NewQuizService(repo, nil, testLogger(), validator.New())

	seventh := threeQuestionQuiz("quiz-7a", "t1", "7")
	seventhB := threeQuestionQuiz("quiz-7b", "t1", "7")
	ninth := threeQuestionQuiz("quiz-9", "t1", "9")
	for _, q := range []*models.Quiz{seventh, seventhB, ninth} {
		require.NoError(t, repo.Quiz().Create(ctx, q))
	}

	anaUser := student("s1", "Ana", "7")
	ana := mustCreateUser(t, repo, anaUser)
	require.NoError(t, repo.Attempt().Create(ctx, attemptOf("att-1", anaUser, seventh, 2, 3)))

	t.Run("get hides the answer key from students", func(t *testing.T) {
		quiz, err := svc.Get(ctx, ana, seventh.ID)
		require.NoError(t, err)
		for _, q := range quiz.Questions {
			assert.Empty(t, q.CorrectAnswerID)
		}

		owner := mustCreateUser(t, repo, teacher("t1"))
		full, err := svc.Get(ctx, owner, seventh.ID)
		require.NoError(t, err)
		assert.Equal(t, "A", full.Questions[0].CorrectAnswerID)
	})

	t.Run("available excludes attempted quizzes", func(t *testing.T) {
		dash, err := svc.Available(ctx, ana)
		require.NoError(t, err)
		require.Len(t, dash.Available, 1)
		assert.Equal(t, "quiz-7b", dash.Available[0].ID)
		assert.Empty(t, dash.Available[0].Questions[0].CorrectAnswerID)
		require.Len(t, dash.Attempts, 1)
		assert.Equal(t, "att-1", dash.Attempts[0].ID)
	})

	t.Run("incomplete profile", func(t *testing.T) {
		fresh := &models.User{ID: "s2", Role: models.RoleStudent}
		p := mustCreateUser(t, repo, fresh)
		_, err := svc.Available(ctx, p)
		assert.ErrorIs(t, err, ErrProfileIncomplete)
	})

	t.Run("missing quiz", func(t *testing.T) {
		_, err := svc.Get(ctx, ana, "nope")
		assert.ErrorIs(t, err, ErrQuizNotFound)
	})
}

func TestQuizService_TeacherViews(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	pub := newPublisher()
	svc := NewQuizService(repo, pub, testLogger(), validator.New())

	owner := mustCreateUser(t, repo, teacher("t1"))
	other := mustCreateUser(t, repo, teacher("t2"))
	root := mustCreateUser(t, repo, admin("a1"))

	quiz := threeQuestionQuiz("quiz-1", "t1", "9")
	untouched := threeQuestionQuiz("quiz-2", "t1", "9")
	require.NoError(t, repo.Quiz().Create(ctx, quiz))
	require.NoError(t, repo.Quiz().Create(ctx, untouched))

	kid := student("s1", "Ana", "9")
	for i, score := range []int{3, 2, 2} {
		require.NoError(t, repo.Attempt().Create(ctx, attemptOf("att-"+string(rune('a'+i)), kid, quiz, score, 3)))
	}

	t.Run("dashboard rows", func(t *testing.T) {
		rows, err := svc.ListMine(ctx, owner)
		require.NoError(t, err)
		require.Len(t, rows, 2)

		summaries := map[string]models.TeacherSummary{}
		for _, r := range rows {
			summaries[r.Quiz.ID] = r.Summary
		}
		assert.Equal(t, models.TeacherSummary{AttemptCount: 3, AverageScore: "2.3"}, summaries["quiz-1"])
		assert.Equal(t, "N/A", summaries["quiz-2"].AverageScore)
	})

	t.Run("results for owner and admin only", func(t *testing.T) {
		results, err := svc.Results(ctx, owner, quiz.ID)
		require.NoError(t, err)
		assert.Len(t, results.Attempts, 3)
		assert.Equal(t, 3, results.Statistics.Count)
		assert.Equal(t, 2.33, *results.Statistics.Average)
		assert.Equal(t, 3, *results.Statistics.Max)
		assert.Equal(t, 2, *results.Statistics.Min)

		_, err = svc.Results(ctx, root, quiz.ID)
		assert.NoError(t, err)

		_, err = svc.Results(ctx, other, quiz.ID)
		assert.True(t, IsPermission(err))
	})

	t.Run("delete keeps attempts", func(t *testing.T) {
		assert.True(t, IsPermission(svc.Delete(ctx, other, quiz.ID)))

		require.NoError(t, svc.Delete(ctx, owner, quiz.ID))
		_, err := repo.Quiz().GetByID(ctx, quiz.ID)
		assert.Error(t, err)

		attempts, err := repo.Attempt().ListByQuiz(ctx, quiz.ID)
		require.NoError(t, err)
		assert.Len(t, attempts, 3)

		assert.ErrorIs(t, svc.Delete(ctx, owner, quiz.ID), ErrQuizNotFound)

		published := pub.GetPublishedEvents()
		require.Len(t, published, 1)
		assert.Equal(t, events.EventQuizDeleted, published[0].Type)
	})
}
