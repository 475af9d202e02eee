package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SAP-F-2025/quiz-portal/internal/events"
	"github.com/SAP-F-2025/quiz-portal/internal/models"
	"github.com/SAP-F-2025/quiz-portal/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttemptService_Submit(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	pub := newPublisher()
	svc := NewAttemptService(repo, pub, testLogger(), validator.New())

	quiz := threeQuestionQuiz("quiz-1", "t1", "9")
	require.NoError(t, repo.Quiz().Create(ctx, quiz))

	ana := mustCreateUser(t, repo, student("s1", "Ana", "9"))
	tina := mustCreateUser(t, repo, teacher("t1"))

	t.Run("scores and persists", func(t *testing.T) {
		selections := models.Selections{"q1": "A", "q2": "X", "q3": "C"}
		attempt, err := svc.Submit(ctx, ana, quiz.ID, selections)
		require.NoError(t, err)

		assert.Equal(t, 2, attempt.Score)
		assert.Equal(t, 3, attempt.TotalQuestions)
		assert.Equal(t, "Ana", attempt.StudentName)
		assert.Equal(t, models.Grade("9"), attempt.StudentGrade)
		assert.Equal(t, quiz.Title, attempt.QuizTitle)
		assert.WithinDuration(t, time.Now(), attempt.SubmittedAt, time.Minute)

		stored, err := repo.Attempt().GetByID(ctx, attempt.ID)
		require.NoError(t, err)
		assert.Equal(t, attempt.Score, stored.Score)
		assert.Equal(t, attempt.TotalQuestions, stored.TotalQuestions)
		assert.Equal(t, selections, stored.Selections())

		published := pub.GetPublishedEvents()
		require.NotEmpty(t, published)
		assert.Equal(t, events.EventAttemptSubmitted, published[len(published)-1].Type)
	})

	t.Run("each submission is a new record", func(t *testing.T) {
		before, err := repo.Attempt().ListByStudent(ctx, ana.UserID)
		require.NoError(t, err)

		_, err = svc.Submit(ctx, ana, quiz.ID, models.Selections{"q1": "A"})
		require.NoError(t, err)

		after, err := repo.Attempt().ListByStudent(ctx, ana.UserID)
		require.NoError(t, err)
		assert.Len(t, after, len(before)+1)
	})

	t.Run("empty selections are rejected", func(t *testing.T) {
		before, err := repo.Attempt().List(ctx)
		require.NoError(t, err)

		_, err = svc.Submit(ctx, ana, quiz.ID, models.Selections{})
		assert.True(t, IsValidation(err))

		_, err = svc.Submit(ctx, ana, quiz.ID, nil)
		assert.True(t, IsValidation(err))

		after, err := repo.Attempt().List(ctx)
		require.NoError(t, err)
		assert.Len(t, after, len(before))
	})

	t.Run("only students submit", func(t *testing.T) {
		_, err := svc.Submit(ctx, tina, quiz.ID, models.Selections{"q1": "A"})
		assert.True(t, IsPermission(err))

		_, err = svc.Submit(ctx, nil, quiz.ID, models.Selections{"q1": "A"})
		assert.True(t, IsPermission(err))
	})

	t.Run("incomplete profile cannot submit", func(t *testing.T) {
		fresh := mustCreateUser(t, repo, &models.User{ID: "s-new", Email: "new@school.test", Role: models.RoleStudent})

		_, err := svc.Submit(ctx, fresh, quiz.ID, models.Selections{"q1": "A"})
		assert.ErrorIs(t, err, ErrProfileIncomplete)

		stored, err := repo.Attempt().ListByStudent(ctx, "s-new")
		require.NoError(t, err)
		assert.Empty(t, stored)
	})

	t.Run("quiz deleted before submit", func(t *testing.T) {
		_, err := svc.Submit(ctx, ana, "gone", models.Selections{"q1": "A"})
		assert.ErrorIs(t, err, ErrQuizNotFound)
	})

	t.Run("publish failure does not fail the submit", func(t *testing.T) {
		pub.Err = errors.New("broker down")
		defer func() { pub.Err = nil }()

		attempt, err := svc.Submit(ctx, ana, quiz.ID, models.Selections{"q2": "B"})
		require.NoError(t, err)
		assert.Equal(t, 1, attempt.Score)
	})

	t.Run("storage failure is a backend error", func(t *testing.T) {
		faulty := &faultyRepository{Repository: repo, attempts: &failingAttempts{AttemptRepository: repo.Attempt(), failCreate: true}}
		svc := NewAttemptService(faulty, pub, testLogger(), validator.New())

		_, err := svc.Submit(ctx, ana, quiz.ID, models.Selections{"q1": "A"})
		assert.True(t, IsBackend(err))
		assert.ErrorIs(t, err, errStoreDown)
	})
}

func TestAttemptService_Read(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	svc := NewAttemptService(repo, nil, testLogger(), validator.New())

	quiz := threeQuestionQuiz("quiz-1", "t1", "9")
	require.NoError(t, repo.Quiz().Create(ctx, quiz))

	ana := mustCreateUser(t, repo, student("s1", "Ana", "9"))
	bob := mustCreateUser(t, repo, student("s2", "Bob", "9"))
	owner := mustCreateUser(t, repo, teacher("t1"))
	other := mustCreateUser(t, repo, teacher("t2"))
	root := mustCreateUser(t, repo, admin("a1"))

	attempt, err := svc.Submit(ctx, ana, quiz.ID, models.Selections{"q1": "A"})
	require.NoError(t, err)

	t.Run("who may read", func(t *testing.T) {
		_, err := svc.Get(ctx, ana, attempt.ID)
		assert.NoError(t, err)
		_, err = svc.Get(ctx, owner, attempt.ID)
		assert.NoError(t, err)
		_, err = svc.Get(ctx, root, attempt.ID)
		assert.NoError(t, err)

		_, err = svc.Get(ctx, bob, attempt.ID)
		assert.True(t, IsPermission(err))
		_, err = svc.Get(ctx, other, attempt.ID)
		assert.True(t, IsPermission(err))
	})

	t.Run("missing", func(t *testing.T) {
		_, err := svc.Get(ctx, root, "nope")
		assert.ErrorIs(t, err, ErrAttemptNotFound)
	})

	t.Run("list mine", func(t *testing.T) {
		mine, err := svc.ListMine(ctx, ana)
		require.NoError(t, err)
		assert.Len(t, mine, 1)

		none, err := svc.ListMine(ctx, bob)
		require.NoError(t, err)
		assert.Empty(t, none)

		_, err = svc.ListMine(ctx, owner)
		assert.True(t, IsPermission(err))
	})
}
