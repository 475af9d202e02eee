package models

import (
	"math"
	"time"

	"gorm.io/datatypes"
)

// Attempt is a single scored submission. Student and quiz fields are copied at
// submission time and never refreshed.
type Attempt struct {
	ID             string                         `json:"id" gorm:"primaryKey;size:255"`
	StudentID      string                         `json:"student_id" gorm:"not null;index;size:255" validate:"required"`
	StudentName    string                         `json:"student_name" gorm:"size:100"`
	StudentGrade   Grade                          `json:"student_grade" gorm:"index;size:2"`
	QuizID         string                         `json:"quiz_id" gorm:"not null;index;size:255" validate:"required"`
	QuizTitle      string                         `json:"quiz_title" gorm:"size:200"`
	Score          int                            `json:"score" validate:"min=0,ltefield=TotalQuestions"`
	TotalQuestions int                            `json:"total_questions" validate:"min=0"`
	Answers        datatypes.JSONType[Selections] `json:"answers" gorm:"not null"`
	SubmittedAt    time.Time                      `json:"submitted_at" gorm:"index"`
}

func (Attempt) TableName() string {
	return "attempts"
}

func (a *Attempt) Selections() Selections {
	return a.Answers.Data()
}

// Percentage is the rounded score ratio, 0 when the quiz had no questions.
func (a *Attempt) Percentage() int {
	return Percent(a.Score, a.TotalQuestions)
}

func Percent(score, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(score) / float64(total)))
}
