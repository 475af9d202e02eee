package models

// Dashboard views. They are computed on read and never stored.

type GradeDistribution struct {
	Grade        Grade `json:"grade"`
	StudentCount int   `json:"student_count"`
	QuizCount    int   `json:"quiz_count"`
	AttemptCount int   `json:"attempt_count"`

	// Unavailable names the counts that could not be loaded, so a zero there
	// means "unknown" rather than "none".
	Unavailable []string `json:"unavailable,omitempty"`
}

type TopPerformer struct {
	StudentID         string `json:"student_id"`
	StudentName       string `json:"student_name"`
	StudentGrade      Grade  `json:"student_grade"`
	AttemptCount      int    `json:"attempt_count"`
	TotalScore        int    `json:"total_score"`
	TotalQuestions    int    `json:"total_questions"`
	AveragePercentage int    `json:"average_percentage"`
}

// QuizStatistics is nil-valued on every score field when there are no attempts.
type QuizStatistics struct {
	Count   int      `json:"count"`
	Average *float64 `json:"average"`
	Max     *int     `json:"max"`
	Min     *int     `json:"min"`
}

type TeacherSummary struct {
	AttemptCount int    `json:"attempt_count"`
	AverageScore string `json:"average_score"`
}

type Overview struct {
	TotalQuizzes      int      `json:"total_quizzes"`
	TotalAttempts     int      `json:"total_attempts"`
	TotalStudents     int      `json:"total_students"`
	TotalTeachers     int      `json:"total_teachers"`
	AveragePercentage int      `json:"average_percentage"`
	Unavailable       []string `json:"unavailable,omitempty"`
}

type AdminAnalytics struct {
	Overview          Overview            `json:"overview"`
	GradeDistribution []GradeDistribution `json:"grade_distribution"`
	TopPerformers     []TopPerformer      `json:"top_performers"`
	RecentQuizzes     []*Quiz             `json:"recent_quizzes"`
	Unavailable       []string            `json:"unavailable,omitempty"`
}

type StudentSummary struct {
	User
	AttemptCount      int  `json:"attempt_count"`
	AveragePercentage int  `json:"average_percentage"`
	Unavailable       bool `json:"unavailable,omitempty"`
}

type TeacherRosterEntry struct {
	User
	QuizCount   int  `json:"quiz_count"`
	Unavailable bool `json:"unavailable,omitempty"`
}

type TeacherQuizRow struct {
	Quiz        *Quiz          `json:"quiz"`
	Summary     TeacherSummary `json:"summary"`
	Unavailable bool           `json:"unavailable,omitempty"`
}

type QuizResults struct {
	Quiz       *Quiz          `json:"quiz"`
	Attempts   []*Attempt     `json:"attempts"`
	Statistics QuizStatistics `json:"statistics"`
}

type StudentDashboard struct {
	Student   *User      `json:"student"`
	Available []*Quiz    `json:"available"`
	Attempts  []*Attempt `json:"attempts"`
}
