package live

import (
	"context"
	"log/slog"
	"time"

	"github.com/Lethinkj/clan-quiz-service/internal/realtime"
	"github.com/Lethinkj/clan-quiz-service/internal/repositories"
)

// DefaultPollInterval is the fallback poll cadence. Push delivery is not
// guaranteed to reach a client promptly, so every watcher also re-reads the
// quiz row at this interval and feeds the same transition function.
const DefaultPollInterval = 2 * time.Second

// StateReader reads the authoritative live state of a quiz directly,
// bypassing the push channel.
type StateReader interface {
	ReadLiveState(ctx context.Context, quizID uint) (realtime.LiveState, error)
}

// RepositoryStateReader adapts the quiz repository into a StateReader.
type RepositoryStateReader struct {
	quizzes repositories.QuizRepository
}

func NewRepositoryStateReader(quizzes repositories.QuizRepository) *RepositoryStateReader {
	return &RepositoryStateReader{quizzes: quizzes}
}

func (r *RepositoryStateReader) ReadLiveState(ctx context.Context, quizID uint) (realtime.LiveState, error) {
	quiz, err := r.quizzes.GetByID(ctx, quizID)
	if err != nil {
		return realtime.LiveState{}, err
	}
	return realtime.LiveState{
		QuizID:            quiz.ID,
		IsLiveActive:      quiz.IsLiveActive,
		CurrentQuestionID: quiz.CurrentQuestionID,
		QuestionStartTime: quiz.QuestionStartTime,
		Ended:             !quiz.IsActive,
	}, nil
}

// Watcher keeps a participant's view converged with the host's state using
// two redundant channels: the broadcaster subscription (push) and a
// fixed-interval direct read (poll). Both deliver into one apply function,
// which must be idempotent against repeated states.
type Watcher struct {
	broadcaster realtime.Broadcaster
	reader      StateReader
	interval    time.Duration
	logger      *slog.Logger
}

func NewWatcher(broadcaster realtime.Broadcaster, reader StateReader, logger *slog.Logger) *Watcher {
	return &Watcher{
		broadcaster: broadcaster,
		reader:      reader,
		interval:    DefaultPollInterval,
		logger:      logger,
	}
}

// WithInterval overrides the poll interval; used by tests.
func (w *Watcher) WithInterval(d time.Duration) *Watcher {
	w.interval = d
	return w
}

// Run blocks until ctx is done, delivering every observed state into apply.
// Poll failures are logged and skipped; the next tick or push event
// converges. Run performs one initial direct read so a participant joining
// mid-question sees the active question without waiting for a signal.
func (w *Watcher) Run(ctx context.Context, quizID uint, apply func(realtime.LiveState)) error {
	updates, cancel, err := w.broadcaster.Subscribe(ctx, quizID)
	if err != nil {
		return err
	}
	defer cancel()

	if state, err := w.reader.ReadLiveState(ctx, quizID); err == nil {
		apply(state)
	} else {
		w.logger.Warn("Initial live state read failed",
			"quiz_id", quizID,
			"error", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case state, ok := <-updates:
			if !ok {
				// Push channel gone; the poll path keeps converging.
				updates = nil
				continue
			}
			apply(state)
		case <-ticker.C:
			state, err := w.reader.ReadLiveState(ctx, quizID)
			if err != nil {
				w.logger.Warn("Live state poll failed",
					"quiz_id", quizID,
					"error", err)
				continue
			}
			apply(state)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
