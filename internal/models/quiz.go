package models

import (
	"time"

	"gorm.io/datatypes"
)

// Quiz is immutable once created. Questions keep their authoring order.
type Quiz struct {
	ID          string                        `json:"id" gorm:"primaryKey;size:255"`
	Title       string                        `json:"title" gorm:"not null;size:200" validate:"required,max=200"`
	Description string                        `json:"description" gorm:"type:text" validate:"max=1000"`
	TargetGrade Grade                         `json:"target_grade" gorm:"not null;index;size:2" validate:"required,grade"`
	TimeLimit   int                           `json:"time_limit" gorm:"not null" validate:"min=1"` // minutes
	TeacherID   string                        `json:"teacher_id" gorm:"not null;index;size:255" validate:"required"`
	Questions   datatypes.JSONSlice[Question] `json:"questions" gorm:"not null" validate:"min=1,dive"`
	CreatedAt   time.Time                     `json:"created_at" gorm:"index"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

type Question struct {
	ID              string   `json:"id" validate:"required"`
	Text            string   `json:"text" validate:"required"`
	Answers         []Answer `json:"answers" validate:"min=2,dive"`
	CorrectAnswerID string   `json:"correct_answer_id,omitempty"`
}

// HasAnswer reports whether id names one of the question's own answers.
func (q Question) HasAnswer(id string) bool {
	for _, a := range q.Answers {
		if a.ID == id {
			return true
		}
	}
	return false
}

func (q *Quiz) TotalQuestions() int {
	return len(q.Questions)
}

// WithoutAnswerKey returns a copy safe to show to a student taking the quiz.
func (q *Quiz) WithoutAnswerKey() *Quiz {
	out := *q
	out.Questions = make(datatypes.JSONSlice[Question], len(q.Questions))
	for i, question := range q.Questions {
		question.CorrectAnswerID = ""
		question.Answers = append([]Answer(nil), question.Answers...)
		out.Questions[i] = question
	}
	return &out
}
