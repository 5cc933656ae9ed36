package live

import (
	"errors"
	"sync"
	"time"

	"github.com/Lethinkj/clan-quiz-service/internal/models"
	"github.com/Lethinkj/clan-quiz-service/internal/realtime"
)

// Phase is one participant's view of the live question cycle.
type Phase string

const (
	// PhaseWaiting: no active question, waiting for the host.
	PhaseWaiting Phase = "waiting"
	// PhaseQuestionActive: a question is live and accepting one answer.
	PhaseQuestionActive Phase = "question_active"
	// PhaseAwaitingReveal: input closed, waiting for the host's reveal or
	// the next question, whichever arrives first.
	PhaseAwaitingReveal Phase = "awaiting_reveal"
	// PhaseEnded: the host deactivated the quiz; terminal.
	PhaseEnded Phase = "ended"
)

// Transition reports what a state application changed, so transports know
// which message to emit. TransitionNone means the signal was redundant.
type Transition int

const (
	TransitionNone Transition = iota
	TransitionQuestion
	TransitionReveal
	TransitionWaiting
	TransitionEnded
)

var (
	ErrNoActiveQuestion = errors.New("no active question")
	ErrAlreadyAnswered  = errors.New("question already answered")
	ErrTimeExpired      = errors.New("question time has expired")
)

// Session holds one participant's in-memory live quiz state. Both the push
// and the poll path funnel into Apply, which is idempotent per question id,
// so redundant signaling from the dual-channel loop is harmless.
type Session struct {
	mu  sync.Mutex
	now func() time.Time

	quizID uint
	phase  Phase

	questionID    *uint
	questionStart time.Time
	timeLimit     int // seconds for the applied question

	selected *models.AnswerOption
	answered bool

	tabSwitches     int
	fullscreenExits int
}

func NewSession(quizID uint) *Session {
	return NewSessionWithClock(quizID, time.Now)
}

// NewSessionWithClock allows deterministic timestamps in tests.
func NewSessionWithClock(quizID uint, now func() time.Time) *Session {
	return &Session{
		quizID: quizID,
		phase:  PhaseWaiting,
		now:    now,
	}
}

// Apply advances the session from an observed quiz state. timeLimit is the
// per-question limit in seconds for the state's current question; it is
// ignored when the state carries no question.
//
// Applying the same question id twice is a no-op after the first
// application. A new question id while a previous question is still active
// discards the in-progress answer: last writer wins from the host's side.
func (s *Session) Apply(state realtime.LiveState, timeLimit int) Transition {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == PhaseEnded {
		return TransitionNone
	}
	if state.Ended {
		s.phase = PhaseEnded
		s.clearQuestionLocked()
		return TransitionEnded
	}

	if state.CurrentQuestionID != nil && state.IsLiveActive {
		if s.questionID != nil && *s.questionID == *state.CurrentQuestionID {
			return TransitionNone
		}
		id := *state.CurrentQuestionID
		s.questionID = &id
		if state.QuestionStartTime != nil {
			s.questionStart = *state.QuestionStartTime
		} else {
			s.questionStart = s.now()
		}
		s.timeLimit = timeLimit
		s.selected = nil
		s.answered = false
		s.phase = PhaseQuestionActive
		return TransitionQuestion
	}

	if !state.IsLiveActive && s.questionID != nil {
		// Reveal signal for the question we were on.
		if s.phase == PhaseQuestionActive || s.phase == PhaseAwaitingReveal {
			prev := s.phase
			s.phase = PhaseAwaitingReveal
			if prev == PhaseQuestionActive {
				return TransitionReveal
			}
		}
		return TransitionNone
	}

	if state.CurrentQuestionID == nil && s.questionID != nil {
		// Host cleared the live fields between questions.
		s.clearQuestionLocked()
		s.phase = PhaseWaiting
		return TransitionWaiting
	}

	return TransitionNone
}

func (s *Session) clearQuestionLocked() {
	s.questionID = nil
	s.selected = nil
	s.answered = false
	s.timeLimit = 0
}

// Remaining returns the countdown in seconds for the active question,
// clamped to zero. A participant joining mid-question computes the same
// remainder as everyone else from the shared start time.
func (s *Session) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseQuestionActive {
		return 0
	}
	elapsed := s.now().Sub(s.questionStart).Seconds()
	remaining := float64(s.timeLimit) - elapsed
	if remaining < 0 {
		return 0
	}
	return int(remaining)
}

// Select records the participant's single answer selection and moves the
// session to AwaitingReveal. It returns the response latency measured from
// the question start time.
func (s *Session) Select(option models.AnswerOption) (responseTime float64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseQuestionActive || s.questionID == nil {
		return 0, ErrNoActiveQuestion
	}
	if s.answered {
		return 0, ErrAlreadyAnswered
	}
	elapsed := s.now().Sub(s.questionStart).Seconds()
	if elapsed > float64(s.timeLimit) {
		s.phase = PhaseAwaitingReveal
		return 0, ErrTimeExpired
	}

	opt := option
	s.selected = &opt
	s.answered = true
	s.phase = PhaseAwaitingReveal
	return elapsed, nil
}

// Expire closes input when the local countdown reaches zero without an
// answer. It does not advance the host's state.
func (s *Session) Expire() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhaseQuestionActive {
		s.phase = PhaseAwaitingReveal
	}
}

// RecordTabSwitch increments the advisory tab-switch counter.
func (s *Session) RecordTabSwitch() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tabSwitches++
	return s.tabSwitches
}

// RecordFullscreenExit increments the advisory fullscreen-exit counter.
func (s *Session) RecordFullscreenExit() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fullscreenExits++
	return s.fullscreenExits
}

// Snapshot is an immutable copy of the session for transports and tests.
type Snapshot struct {
	QuizID          uint
	Phase           Phase
	QuestionID      *uint
	Selected        *models.AnswerOption
	Answered        bool
	TabSwitches     int
	FullscreenExits int
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		QuizID:          s.quizID,
		Phase:           s.phase,
		Answered:        s.answered,
		TabSwitches:     s.tabSwitches,
		FullscreenExits: s.fullscreenExits,
	}
	if s.questionID != nil {
		id := *s.questionID
		snap.QuestionID = &id
	}
	if s.selected != nil {
		sel := *s.selected
		snap.Selected = &sel
	}
	return snap
}
