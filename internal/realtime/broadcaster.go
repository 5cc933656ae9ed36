package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// LiveState is the post-update image of a quiz's live fields, published on
// every host transition. Participants treat it as the authoritative signal
// and fall back to polling the quiz row when delivery is missed.
type LiveState struct {
	QuizID            uint       `json:"quiz_id"`
	IsLiveActive      bool       `json:"is_live_active"`
	CurrentQuestionID *uint      `json:"current_question_id"`
	QuestionStartTime *time.Time `json:"question_start_time"`
	Ended             bool       `json:"ended"`
}

// Broadcaster is the push channel between the host and participants.
type Broadcaster interface {
	Publish(ctx context.Context, state LiveState) error
	// Subscribe delivers state updates for one quiz until the cancel func
	// is called or ctx is done. Delivery is best-effort; order relative to
	// direct reads is not guaranteed.
	Subscribe(ctx context.Context, quizID uint) (<-chan LiveState, func(), error)
}

// RedisBroadcaster implements Broadcaster over Redis pub/sub with one
// channel per quiz.
type RedisBroadcaster struct {
	client *redis.Client
	logger *slog.Logger
}

func NewRedisBroadcaster(client *redis.Client, logger *slog.Logger) *RedisBroadcaster {
	return &RedisBroadcaster{client: client, logger: logger}
}

func channelKey(quizID uint) string {
	return fmt.Sprintf("quiz:live:%d", quizID)
}

func (b *RedisBroadcaster) Publish(ctx context.Context, state LiveState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal live state: %w", err)
	}
	if err := b.client.Publish(ctx, channelKey(state.QuizID), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish live state: %w", err)
	}
	return nil
}

func (b *RedisBroadcaster) Subscribe(ctx context.Context, quizID uint) (<-chan LiveState, func(), error) {
	sub := b.client.Subscribe(ctx, channelKey(quizID))
	// Force the subscription to be established before returning so callers
	// cannot miss a publish that races the handshake.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, fmt.Errorf("failed to subscribe to quiz %d: %w", quizID, err)
	}

	out := make(chan LiveState, 8)
	done := make(chan struct{})

	go func() {
		defer close(out)
		msgs := sub.Channel()
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var state LiveState
				if err := json.Unmarshal([]byte(msg.Payload), &state); err != nil {
					b.logger.Warn("Dropping malformed live state payload",
						"quiz_id", quizID,
						"error", err)
					continue
				}
				select {
				case out <- state:
				case <-done:
					return
				case <-ctx.Done():
					return
				}
			case <-done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			_ = sub.Close()
		})
	}
	return out, cancel, nil
}

// MockBroadcaster is an in-process Broadcaster for tests.
type MockBroadcaster struct {
	mu        sync.Mutex
	Published []LiveState
	subs      map[uint][]chan LiveState
}

func NewMockBroadcaster() *MockBroadcaster {
	return &MockBroadcaster{subs: make(map[uint][]chan LiveState)}
}

func (m *MockBroadcaster) Publish(_ context.Context, state LiveState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Published = append(m.Published, state)
	for _, ch := range m.subs[state.QuizID] {
		select {
		case ch <- state:
		default:
		}
	}
	return nil
}

func (m *MockBroadcaster) Subscribe(_ context.Context, quizID uint) (<-chan LiveState, func(), error) {
	ch := make(chan LiveState, 8)
	m.mu.Lock()
	m.subs[quizID] = append(m.subs[quizID], ch)
	m.mu.Unlock()

	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, sub := range m.subs[quizID] {
			if sub == ch {
				m.subs[quizID] = append(m.subs[quizID][:i], m.subs[quizID][i+1:]...)
				close(ch)
				return
			}
		}
	}
	return ch, cancel, nil
}

// PublishedStates returns a copy of everything published so far.
func (m *MockBroadcaster) PublishedStates() []LiveState {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]LiveState, len(m.Published))
	copy(out, m.Published)
	return out
}
