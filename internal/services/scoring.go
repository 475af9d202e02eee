package services

import "github.com/SAP-F-2025/quiz-portal/internal/models"

// Score counts the questions whose selected answer is the correct one.
// Unanswered questions and selections for unknown ids score nothing.
func Score(quiz *models.Quiz, selections models.Selections) int {
	score := 0
	for _, q := range quiz.Questions {
		if selected, ok := selections[q.ID]; ok && selected == q.CorrectAnswerID {
			score++
		}
	}
	return score
}
