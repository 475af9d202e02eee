package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the kinds of domain events the portal emits
type EventType string

const (
	EventQuizCreated      EventType = "quiz.created"
	EventQuizDeleted      EventType = "quiz.deleted"
	EventAttemptSubmitted EventType = "attempt.submitted"
	EventUserDeleted      EventType = "user.deleted"
)

const (
	eventSource  = "quiz-portal"
	eventVersion = "1.0"
)

// Event is the envelope written to the broker for every domain event
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Data      interface{} `json:"data"`
}

type QuizCreatedEvent struct {
	QuizID        string `json:"quiz_id"`
	Title         string `json:"title"`
	TargetGrade   string `json:"target_grade"`
	TeacherID     string `json:"teacher_id"`
	QuestionCount int    `json:"question_count"`
	TimeLimit     int    `json:"time_limit"`
}

type QuizDeletedEvent struct {
	QuizID    string `json:"quiz_id"`
	DeletedBy string `json:"deleted_by"`
}

type AttemptSubmittedEvent struct {
	AttemptID      string    `json:"attempt_id"`
	QuizID         string    `json:"quiz_id"`
	StudentID      string    `json:"student_id"`
	StudentGrade   string    `json:"student_grade"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	SubmittedAt    time.Time `json:"submitted_at"`
}

type UserDeletedEvent struct {
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
	DeletedBy string `json:"deleted_by"`
}

func newEvent(eventType EventType, data interface{}) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}

func NewQuizCreatedEvent(data QuizCreatedEvent) *Event {
	return newEvent(EventQuizCreated, data)
}

func NewQuizDeletedEvent(data QuizDeletedEvent) *Event {
	return newEvent(EventQuizDeleted, data)
}

func NewAttemptSubmittedEvent(data AttemptSubmittedEvent) *Event {
	return newEvent(EventAttemptSubmitted, data)
}

func NewUserDeletedEvent(data UserDeletedEvent) *Event {
	return newEvent(EventUserDeleted, data)
}
