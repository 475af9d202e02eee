package validator

import (
	"fmt"
	"strings"

	apperrors "github.com/SAP-F-2025/quiz-portal/internal/errors"
	"github.com/SAP-F-2025/quiz-portal/internal/models"
)

// QuizValidator checks the parts of a quiz that struct tags cannot: blank text,
// id uniqueness and the answer key.
type QuizValidator struct{}

func NewQuizValidator() *QuizValidator {
	return &QuizValidator{}
}

func (v *QuizValidator) Validate(quiz *models.Quiz) apperrors.ValidationErrors {
	var errs apperrors.ValidationErrors

	if strings.TrimSpace(quiz.Title) == "" {
		errs.Field("title", "is required", quiz.Title)
	}
	if len(quiz.Questions) == 0 {
		errs.Field("questions", "must contain at least one question", nil)
	}

	seenQuestions := make(map[string]bool, len(quiz.Questions))
	for i, question := range quiz.Questions {
		errs = append(errs, v.ValidateQuestion(fmt.Sprintf("questions[%d]", i), question)...)

		if question.ID != "" {
			if seenQuestions[question.ID] {
				errs.Field(fmt.Sprintf("questions[%d].id", i), "must be unique within the quiz", question.ID)
			}
			seenQuestions[question.ID] = true
		}
	}

	return errs
}

// ValidateQuestion checks a single question; path prefixes every field name.
func (v *QuizValidator) ValidateQuestion(path string, question models.Question) apperrors.ValidationErrors {
	var errs apperrors.ValidationErrors

	if strings.TrimSpace(question.Text) == "" {
		errs.Field(path+".text", "is required", question.Text)
	}
	if len(question.Answers) < 2 {
		errs.Field(path+".answers", "must have at least 2 answers", len(question.Answers))
	}

	seenAnswers := make(map[string]bool, len(question.Answers))
	for j, answer := range question.Answers {
		if strings.TrimSpace(answer.Text) == "" {
			errs.Field(fmt.Sprintf("%s.answers[%d].text", path, j), "is required", answer.Text)
		}
		if answer.ID == "" {
			continue
		}
		if seenAnswers[answer.ID] {
			errs.Field(fmt.Sprintf("%s.answers[%d].id", path, j), "must be unique within the question", answer.ID)
		}
		seenAnswers[answer.ID] = true
	}

	switch {
	case question.CorrectAnswerID == "":
		errs.Field(path+".correct_answer_id", "a correct answer must be selected", nil)
	case !question.HasAnswer(question.CorrectAnswerID):
		errs.Field(path+".correct_answer_id", "must reference one of the question's answers", question.CorrectAnswerID)
	}

	return errs
}
