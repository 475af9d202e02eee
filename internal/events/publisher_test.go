package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockEventPublisher(t *testing.T) {
	pub := NewMockEventPublisher(slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	event := NewAttemptSubmittedEvent(AttemptSubmittedEvent{
		AttemptID: "a1", QuizID: "q1", StudentID: "s1", Score: 2, TotalQuestions: 3,
	})
	require.NoError(t, pub.Publish(ctx, event))

	published := pub.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, EventAttemptSubmitted, published[0].Type)
	assert.Equal(t, "quiz-portal", published[0].Source)
	assert.NotEmpty(t, published[0].ID)

	pub.Err = errors.New("broker down")
	assert.Error(t, pub.Publish(ctx, NewQuizDeletedEvent(QuizDeletedEvent{QuizID: "q1"})))
	assert.Len(t, pub.GetPublishedEvents(), 1)

	pub.ClearEvents()
	assert.Empty(t, pub.GetPublishedEvents())
}

func TestEventEnvelope(t *testing.T) {
	event := NewQuizCreatedEvent(QuizCreatedEvent{QuizID: "q9", Title: "Decimals", TargetGrade: "8"})
	assert.Equal(t, "q9", partitionKey(event))
	assert.Equal(t, "u1", partitionKey(NewUserDeletedEvent(UserDeletedEvent{UserID: "u1"})))
	assert.WithinDuration(t, time.Now(), event.Timestamp, time.Minute)

	raw, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "quiz.created", decoded["type"])
	assert.Equal(t, "1.0", decoded["version"])
	data := decoded["data"].(map[string]interface{})
	assert.Equal(t, "Decimals", data["title"])
}

func TestBrokerPublisher(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	pubsub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 1}, watermill.NewSlogLogger(logger))
	defer pubsub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	messages, err := pubsub.Subscribe(ctx, "quiz-events")
	require.NoError(t, err)

	pub := NewBrokerPublisher(pubsub, "quiz-events", logger)
	event := NewAttemptSubmittedEvent(AttemptSubmittedEvent{AttemptID: "a1", QuizID: "q1", StudentID: "s1", Score: 1, TotalQuestions: 2})
	require.NoError(t, pub.Publish(ctx, event))

	select {
	case msg := <-messages:
		msg.Ack()
		assert.Equal(t, event.ID, msg.UUID)
		assert.Equal(t, "attempt.submitted", msg.Metadata.Get("event_type"))
		assert.Equal(t, "q1", msg.Metadata.Get(partitionKeyMetadata))
		assert.Equal(t, "quiz-portal", msg.Metadata.Get("source"))

		var decoded Event
		require.NoError(t, json.Unmarshal(msg.Payload, &decoded))
		assert.Equal(t, EventAttemptSubmitted, decoded.Type)
	case <-ctx.Done():
		t.Fatal("event was not delivered")
	}
}
