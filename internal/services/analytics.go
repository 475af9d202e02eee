package services

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/SAP-F-2025/quiz-portal/internal/models"
)

// Dashboard aggregations. Everything here is a pure function over loaded
// records and accepts empty input.

const (
	DefaultMinAttempts   = 2
	DefaultTopPerformers = 5
	DefaultRecentQuizzes = 5
)

// PerGradeDistribution counts students, quizzes and attempts per grade.
// Students come from current user records; quizzes and attempts from the
// grade stored on them.
func PerGradeDistribution(quizzes []*models.Quiz, attempts []*models.Attempt, users []*models.User, grades []models.Grade) []models.GradeDistribution {
	index := make(map[models.Grade]int, len(grades))
	out := make([]models.GradeDistribution, len(grades))
	for i, g := range grades {
		index[g] = i
		out[i] = models.GradeDistribution{Grade: g}
	}

	for _, u := range users {
		if i, ok := index[u.Grade]; ok && u.IsStudent() {
			out[i].StudentCount++
		}
	}
	for _, q := range quizzes {
		if i, ok := index[q.TargetGrade]; ok {
			out[i].QuizCount++
		}
	}
	for _, a := range attempts {
		if i, ok := index[a.StudentGrade]; ok {
			out[i].AttemptCount++
		}
	}
	return out
}

// TopPerformers ranks students by average percentage. Students with fewer
// than minAttempts attempts are left out; ties keep first-seen order.
func TopPerformers(attempts []*models.Attempt, minAttempts, limit int) []models.TopPerformer {
	var order []string
	byStudent := make(map[string]*models.TopPerformer)

	for _, a := range attempts {
		p, ok := byStudent[a.StudentID]
		if !ok {
			p = &models.TopPerformer{
				StudentID:    a.StudentID,
				StudentName:  a.StudentName,
				StudentGrade: a.StudentGrade,
			}
			byStudent[a.StudentID] = p
			order = append(order, a.StudentID)
		}
		p.AttemptCount++
		p.TotalScore += a.Score
		p.TotalQuestions += a.TotalQuestions
	}

	out := make([]models.TopPerformer, 0, len(order))
	for _, id := range order {
		p := byStudent[id]
		if p.AttemptCount < minAttempts {
			continue
		}
		p.AveragePercentage = models.Percent(p.TotalScore, p.TotalQuestions)
		out = append(out, *p)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AveragePercentage > out[j].AveragePercentage
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// QuizStatistics summarizes raw scores of the quiz's attempts. Average is
// rounded to two decimals; all score fields stay nil without attempts.
func QuizStatistics(quiz *models.Quiz, attempts []*models.Attempt) models.QuizStatistics {
	var stats models.QuizStatistics
	total := 0
	for _, a := range attempts {
		if a.QuizID != quiz.ID {
			continue
		}
		score := a.Score
		if stats.Count == 0 {
			stats.Max = &score
			low := score
			stats.Min = &low
		} else {
			if score > *stats.Max {
				*stats.Max = score
			}
			if score < *stats.Min {
				*stats.Min = score
			}
		}
		stats.Count++
		total += score
	}

	if stats.Count > 0 {
		avg := math.Round(float64(total)/float64(stats.Count)*100) / 100
		stats.Average = &avg
	}
	return stats
}

// TeacherSummary is the per-quiz line on the teacher dashboard.
func TeacherSummary(quiz *models.Quiz, attempts []*models.Attempt) models.TeacherSummary {
	count, total := 0, 0
	for _, a := range attempts {
		if a.QuizID != quiz.ID {
			continue
		}
		count++
		total += a.Score
	}
	if count == 0 {
		return models.TeacherSummary{AverageScore: "N/A"}
	}
	return models.TeacherSummary{
		AttemptCount: count,
		AverageScore: fmt.Sprintf("%.1f", float64(total)/float64(count)),
	}
}

// OverallPercentage is round(100 * sum(score) / sum(total)) across attempts.
func OverallPercentage(attempts []*models.Attempt) int {
	score, total := 0, 0
	for _, a := range attempts {
		score += a.Score
		total += a.TotalQuestions
	}
	return models.Percent(score, total)
}

// RecentQuizzes returns the n newest quizzes without reordering the input.
func RecentQuizzes(quizzes []*models.Quiz, n int) []*models.Quiz {
	sorted := append([]*models.Quiz(nil), quizzes...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// StudentSummaries attaches attempt count and average percentage to each
// student, sorted by name. Attempts are matched on student id.
func StudentSummaries(students []*models.User, attempts []*models.Attempt) []models.StudentSummary {
	byStudent := make(map[string][]*models.Attempt)
	for _, a := range attempts {
		byStudent[a.StudentID] = append(byStudent[a.StudentID], a)
	}

	out := make([]models.StudentSummary, 0, len(students))
	for _, s := range students {
		own := byStudent[s.ID]
		out = append(out, models.StudentSummary{
			User:              *s,
			AttemptCount:      len(own),
			AveragePercentage: OverallPercentage(own),
		})
	}
	SortStudents(out)
	return out
}

func SortStudents(students []models.StudentSummary) {
	sort.SliceStable(students, func(i, j int) bool {
		return strings.ToLower(students[i].Name) < strings.ToLower(students[j].Name)
	})
}

// StudentFilter narrows the admin roster. Grade is "all", empty or a grade
// label; Search matches name or email case-insensitively.
type StudentFilter struct {
	Grade  string `form:"grade" json:"grade"`
	Search string `form:"search" json:"search"`
}

func FilterStudents(students []models.StudentSummary, filter StudentFilter) []models.StudentSummary {
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	out := make([]models.StudentSummary, 0, len(students))
	for _, s := range students {
		if filter.Grade != "" && filter.Grade != "all" && string(s.Grade) != filter.Grade {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(s.Name), search) &&
			!strings.Contains(strings.ToLower(s.Email), search) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// TeacherRoster counts quizzes per teacher, keeping the teacher order.
func TeacherRoster(teachers []*models.User, quizzes []*models.Quiz) []models.TeacherRosterEntry {
	counts := make(map[string]int)
	for _, q := range quizzes {
		counts[q.TeacherID]++
	}
	out := make([]models.TeacherRosterEntry, 0, len(teachers))
	for _, t := range teachers {
		out = append(out, models.TeacherRosterEntry{User: *t, QuizCount: counts[t.ID]})
	}
	return out
}
