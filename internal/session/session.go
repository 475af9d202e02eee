package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/quiz-portal/internal/identity"
	"github.com/SAP-F-2025/quiz-portal/internal/models"
)

var ErrSessionClosed = errors.New("session closed")

// Submitter stores a finished attempt. The attempt service satisfies it.
type Submitter interface {
	Submit(ctx context.Context, principal *identity.Principal, quizID string, selections models.Selections) (*models.Attempt, error)
}

type selection struct {
	questionID string
	answerID   string
}

type submitResult struct {
	attempt *models.Attempt
	err     error
}

type Option func(*Session)

// WithTicks replaces the one second wall clock ticker.
func WithTicks(ticks <-chan time.Time) Option {
	return func(s *Session) {
		s.ticks = ticks
	}
}

// Session is one student taking one quiz against the clock. All state is
// owned by the goroutine running Run; other goroutines talk to it through
// Select and Submit.
type Session struct {
	principal *identity.Principal
	quizID    string
	submitter Submitter
	logger    *slog.Logger

	remaining int
	ticks     <-chan time.Time

	selections  chan selection
	submits     chan chan submitResult
	remainingCh chan int
	done        chan struct{}
}

func New(principal *identity.Principal, quiz *models.Quiz, submitter Submitter, logger *slog.Logger, opts ...Option) *Session {
	s := &Session{
		principal:   principal,
		quizID:      quiz.ID,
		submitter:   submitter,
		logger:      logger,
		remaining:   quiz.TimeLimit * 60,
		selections:  make(chan selection),
		submits:     make(chan chan submitResult),
		remainingCh: make(chan int, 1),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Remaining carries the latest seconds left. Stale values are replaced, so a
// slow reader only ever sees the newest one.
func (s *Session) Remaining() <-chan int {
	return s.remainingCh
}

// Done is closed once Run returns.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Run drives the countdown until the attempt is stored, the automatic submit
// at zero fails, or ctx is cancelled. A cancelled session leaves no record.
func (s *Session) Run(ctx context.Context) (*models.Attempt, error) {
	defer close(s.done)

	ticks := s.ticks
	if ticks == nil {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		ticks = ticker.C
	}

	chosen := models.Selections{}
	s.emit(s.remaining)

	s.logger.Debug("Quiz session started",
		"quiz_id", s.quizID,
		"student_id", s.principal.UserID,
		"seconds", s.remaining)

	for s.remaining > 0 {
		select {
		case <-ctx.Done():
			s.logger.Debug("Quiz session abandoned", "quiz_id", s.quizID, "student_id", s.principal.UserID)
			return nil, ctx.Err()

		case sel := <-s.selections:
			chosen[sel.questionID] = sel.answerID

		case reply := <-s.submits:
			attempt, err := s.submitter.Submit(ctx, s.principal, s.quizID, chosen.Clone())
			reply <- submitResult{attempt: attempt, err: err}
			if err == nil {
				return attempt, nil
			}

		case <-ticks:
			s.remaining--
			s.emit(s.remaining)
		}
	}

	s.logger.Info("Time limit reached, submitting", "quiz_id", s.quizID, "student_id", s.principal.UserID)
	return s.submitter.Submit(ctx, s.principal, s.quizID, chosen.Clone())
}

// Select records an answer. A later selection for the same question wins.
func (s *Session) Select(ctx context.Context, questionID, answerID string) error {
	select {
	case s.selections <- selection{questionID: questionID, answerID: answerID}:
		return nil
	case <-s.done:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Submit asks the session to store the attempt now. On failure the session
// keeps running and the caller may try again.
func (s *Session) Submit(ctx context.Context) (*models.Attempt, error) {
	reply := make(chan submitResult, 1)
	select {
	case s.submits <- reply:
	case <-s.done:
		return nil, ErrSessionClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case r := <-reply:
		return r.attempt, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// emit is only called from Run, so draining then sending never blocks.
func (s *Session) emit(remaining int) {
	select {
	case <-s.remainingCh:
	default:
	}
	s.remainingCh <- remaining
}
