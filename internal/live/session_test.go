package live

import (
	"testing"
	"time"

	"github.com/Lethinkj/clan-quiz-service/internal/models"
	"github.com/Lethinkj/clan-quiz-service/internal/realtime"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestSession() (*Session, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)}
	return NewSessionWithClock(1, clock.Now), clock
}

func activeState(quizID, questionID uint, startedAt time.Time) realtime.LiveState {
	return realtime.LiveState{
		QuizID:            quizID,
		IsLiveActive:      true,
		CurrentQuestionID: &questionID,
		QuestionStartTime: &startedAt,
	}
}

func TestSessionQuestionLifecycle(t *testing.T) {
	session, clock := newTestSession()

	if session.Snapshot().Phase != PhaseWaiting {
		t.Fatalf("new session should be waiting")
	}

	tr := session.Apply(activeState(1, 10, clock.Now()), 30)
	if tr != TransitionQuestion {
		t.Fatalf("expected TransitionQuestion, got %v", tr)
	}
	if session.Snapshot().Phase != PhaseQuestionActive {
		t.Fatalf("expected active phase")
	}

	clock.Advance(8 * time.Second)
	rt, err := session.Select(models.OptionB)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if rt != 8 {
		t.Fatalf("response time = %v, want 8", rt)
	}
	if session.Snapshot().Phase != PhaseAwaitingReveal {
		t.Fatalf("expected awaiting reveal after answer")
	}

	// Reveal signal.
	state := activeState(1, 10, clock.Now())
	state.IsLiveActive = false
	if tr := session.Apply(state, 30); tr != TransitionNone {
		t.Fatalf("reveal after answering should not re-transition, got %v", tr)
	}

	// Host clears the live fields.
	tr = session.Apply(realtime.LiveState{QuizID: 1, IsLiveActive: false}, 0)
	if tr != TransitionWaiting {
		t.Fatalf("expected TransitionWaiting, got %v", tr)
	}
}

func TestSessionApplyIdempotent(t *testing.T) {
	session, clock := newTestSession()
	state := activeState(1, 10, clock.Now())

	if tr := session.Apply(state, 30); tr != TransitionQuestion {
		t.Fatalf("first apply should transition")
	}
	for i := 0; i < 5; i++ {
		if tr := session.Apply(state, 30); tr != TransitionNone {
			t.Fatalf("repeat apply %d should be a no-op, got %v", i, tr)
		}
	}
}

func TestSessionRevealTransitionOnce(t *testing.T) {
	session, clock := newTestSession()
	session.Apply(activeState(1, 10, clock.Now()), 30)

	reveal := activeState(1, 10, clock.Now())
	reveal.IsLiveActive = false

	if tr := session.Apply(reveal, 30); tr != TransitionReveal {
		t.Fatalf("expected TransitionReveal, got %v", tr)
	}
	if tr := session.Apply(reveal, 30); tr != TransitionNone {
		t.Fatalf("repeated reveal should be a no-op, got %v", tr)
	}
}

func TestSessionNewQuestionDiscardsPrevious(t *testing.T) {
	session, clock := newTestSession()
	session.Apply(activeState(1, 10, clock.Now()), 30)

	// Host advances before the participant answers.
	if tr := session.Apply(activeState(1, 11, clock.Now()), 20); tr != TransitionQuestion {
		t.Fatalf("expected TransitionQuestion for the new question")
	}

	snap := session.Snapshot()
	if snap.QuestionID == nil || *snap.QuestionID != 11 {
		t.Fatalf("expected question 11, got %v", snap.QuestionID)
	}
	if snap.Answered {
		t.Fatalf("answered flag should reset on a new question")
	}

	// Answering now records against the new question.
	if _, err := session.Select(models.OptionA); err != nil {
		t.Fatalf("select on new question: %v", err)
	}
}

func TestSessionRemainingClampsToZero(t *testing.T) {
	session, clock := newTestSession()
	session.Apply(activeState(1, 10, clock.Now()), 10)

	if got := session.Remaining(); got != 10 {
		t.Fatalf("remaining = %d, want 10", got)
	}

	clock.Advance(7 * time.Second)
	if got := session.Remaining(); got != 3 {
		t.Fatalf("remaining = %d, want 3", got)
	}

	clock.Advance(30 * time.Second)
	if got := session.Remaining(); got != 0 {
		t.Fatalf("remaining past the limit = %d, want 0", got)
	}
}

func TestSessionLateJoinComputesSharedCountdown(t *testing.T) {
	session, clock := newTestSession()
	startedAt := clock.Now().Add(-12 * time.Second)

	session.Apply(activeState(1, 10, startedAt), 30)
	if got := session.Remaining(); got != 18 {
		t.Fatalf("late join remaining = %d, want 18", got)
	}
}

func TestSessionSelectGuards(t *testing.T) {
	session, clock := newTestSession()

	if _, err := session.Select(models.OptionA); err != ErrNoActiveQuestion {
		t.Fatalf("select before question: %v, want ErrNoActiveQuestion", err)
	}

	session.Apply(activeState(1, 10, clock.Now()), 10)
	if _, err := session.Select(models.OptionA); err != nil {
		t.Fatalf("first select: %v", err)
	}
	if _, err := session.Select(models.OptionB); err != ErrAlreadyAnswered {
		t.Fatalf("second select: %v, want ErrAlreadyAnswered", err)
	}
}

func TestSessionSelectAfterTimeExpires(t *testing.T) {
	session, clock := newTestSession()
	session.Apply(activeState(1, 10, clock.Now()), 10)

	clock.Advance(11 * time.Second)
	if _, err := session.Select(models.OptionA); err != ErrTimeExpired {
		t.Fatalf("select after expiry: %v, want ErrTimeExpired", err)
	}
	if session.Snapshot().Phase != PhaseAwaitingReveal {
		t.Fatalf("expired question should close input")
	}
}

func TestSessionEndedIsTerminal(t *testing.T) {
	session, clock := newTestSession()
	session.Apply(activeState(1, 10, clock.Now()), 30)

	if tr := session.Apply(realtime.LiveState{QuizID: 1, Ended: true}, 0); tr != TransitionEnded {
		t.Fatalf("expected TransitionEnded")
	}
	if tr := session.Apply(activeState(1, 11, clock.Now()), 30); tr != TransitionNone {
		t.Fatalf("ended session must ignore further states, got %v", tr)
	}
	if session.Snapshot().Phase != PhaseEnded {
		t.Fatalf("phase should stay ended")
	}
}

func TestSessionIntegrityCounters(t *testing.T) {
	session, _ := newTestSession()

	if got := session.RecordTabSwitch(); got != 1 {
		t.Fatalf("first tab switch = %d, want 1", got)
	}
	if got := session.RecordTabSwitch(); got != 2 {
		t.Fatalf("second tab switch = %d, want 2", got)
	}
	if got := session.RecordFullscreenExit(); got != 1 {
		t.Fatalf("fullscreen exit = %d, want 1", got)
	}

	snap := session.Snapshot()
	if snap.TabSwitches != 2 || snap.FullscreenExits != 1 {
		t.Fatalf("snapshot counters = %d/%d, want 2/1", snap.TabSwitches, snap.FullscreenExits)
	}
}
