package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/Lethinkj/clan-quiz-service/internal/live"
	"github.com/Lethinkj/clan-quiz-service/internal/models"
	"github.com/Lethinkj/clan-quiz-service/internal/realtime"
	"github.com/Lethinkj/clan-quiz-service/internal/services"
	"github.com/Lethinkj/clan-quiz-service/internal/utils"
)

// LiveHandler is the participant gateway for live quizzes. One WebSocket
// connection runs one session state holder fed by the watcher's push and
// poll signals.
type LiveHandler struct {
	BaseHandler
	attemptService     services.AttemptService
	questionService    services.QuestionService
	leaderboardService services.LeaderboardService
	watcher            *live.Watcher
	upgrader           websocket.Upgrader
}

func NewLiveHandler(
	attemptService services.AttemptService,
	questionService services.QuestionService,
	leaderboardService services.LeaderboardService,
	watcher *live.Watcher,
	logger utils.Logger,
) *LiveHandler {
	return &LiveHandler{
		BaseHandler:        NewBaseHandler(logger),
		attemptService:     attemptService,
		questionService:    questionService,
		leaderboardService: leaderboardService,
		watcher:            watcher,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

type answerPayload struct {
	QuestionID uint                `json:"question_id"`
	Selected   models.AnswerOption `json:"selected"`
}

type integrityPayload struct {
	Type models.IntegrityEventType `json:"type"`
}

type questionPayload struct {
	QuestionID uint   `json:"question_id"`
	Position   int    `json:"position"`
	Text       string `json:"text"`
	OptionA    string `json:"option_a"`
	OptionB    string `json:"option_b"`
	OptionC    string `json:"option_c"`
	OptionD    string `json:"option_d"`
	TimeLimit  int    `json:"time_limit"`
	Remaining  int    `json:"remaining"`
}

type revealPayload struct {
	QuestionID    uint                `json:"question_id"`
	CorrectOption models.AnswerOption `json:"correct_option"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// Join upgrades the request and runs the connection until the quiz ends or
// the client disconnects.
func (h *LiveHandler) Join(c *gin.Context) {
	quizID := h.parseIDParam(c, "quiz_id")
	if quizID == 0 {
		return
	}
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.LogError(c, err, "WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	attempt, err := h.attemptService.StartOrResume(ctx, quizID, userID)
	if err != nil {
		conn.WriteJSON(outboundMessage{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}

	session := live.NewSession(quizID)
	send := make(chan outboundMessage, 16)

	var writerWG sync.WaitGroup
	writerWG.Add(1)
	go func() {
		defer writerWG.Done()
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				cancel()
				return
			}
		}
	}()

	// push is safe from any goroutine; it drops messages once ctx is done
	// instead of blocking a closing connection.
	push := func(msg outboundMessage) {
		select {
		case send <- msg:
		case <-ctx.Done():
		}
	}

	push(outboundMessage{Type: "joined", Payload: attempt})

	watcherDone := make(chan struct{})
	go func() {
		defer close(watcherDone)
		err := h.watcher.Run(ctx, quizID, func(state realtime.LiveState) {
			h.applyState(ctx, quizID, session, state, push)
		})
		if err != nil && ctx.Err() == nil {
			push(outboundMessage{Type: "error", Payload: errorPayload{Message: "live state watch failed"}})
		}
		cancel()
	}()

	h.readLoop(ctx, conn, quizID, userID, session, push)

	cancel()
	<-watcherDone
	close(send)
	writerWG.Wait()
}

// applyState feeds one observed quiz state into the session and emits the
// transition, if any, to the client.
func (h *LiveHandler) applyState(ctx context.Context, quizID uint, session *live.Session, state realtime.LiveState, push func(outboundMessage)) {
	var question *models.QuizQuestion
	timeLimit := 0
	if state.CurrentQuestionID != nil {
		q, err := h.questionService.GetForQuiz(ctx, quizID, *state.CurrentQuestionID)
		if err != nil {
			h.logger.Warn("Failed to load live question",
				"quiz_id", quizID,
				"question_id", *state.CurrentQuestionID,
				"error", err)
			return
		}
		question = q
		timeLimit = q.TimeLimit
	}

	switch session.Apply(state, timeLimit) {
	case live.TransitionQuestion:
		push(outboundMessage{Type: "question", Payload: questionPayload{
			QuestionID: question.ID,
			Position:   question.Position,
			Text:       question.Text,
			OptionA:    question.OptionA,
			OptionB:    question.OptionB,
			OptionC:    question.OptionC,
			OptionD:    question.OptionD,
			TimeLimit:  question.TimeLimit,
			Remaining:  session.Remaining(),
		}})
	case live.TransitionReveal:
		push(outboundMessage{Type: "reveal", Payload: revealPayload{
			QuestionID:    question.ID,
			CorrectOption: question.CorrectOption,
		}})
		// Give stragglers' answer writes a moment to land before the
		// leaderboard snapshot.
		time.AfterFunc(services.RevealGrace, func() {
			h.pushLeaderboard(ctx, quizID, push)
		})
	case live.TransitionWaiting:
		push(outboundMessage{Type: "waiting"})
	case live.TransitionEnded:
		push(outboundMessage{Type: "ended"})
		h.pushLeaderboard(ctx, quizID, push)
	}
}

func (h *LiveHandler) pushLeaderboard(ctx context.Context, quizID uint, push func(outboundMessage)) {
	if ctx.Err() != nil {
		return
	}
	entries, err := h.leaderboardService.Get(ctx, quizID, false)
	if err != nil {
		h.logger.Warn("Failed to load leaderboard",
			"quiz_id", quizID,
			"error", err)
		return
	}
	push(outboundMessage{Type: "leaderboard", Payload: entries})
}

func (h *LiveHandler) readLoop(ctx context.Context, conn *websocket.Conn, quizID, userID uint, session *live.Session, push func(outboundMessage)) {
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}

		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				push(outboundMessage{Type: "error", Payload: errorPayload{Message: "invalid answer payload"}})
				continue
			}
			h.handleAnswer(ctx, quizID, userID, session, payload, push)
		case "integrity":
			var payload integrityPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				push(outboundMessage{Type: "error", Payload: errorPayload{Message: "invalid integrity payload"}})
				continue
			}
			h.handleIntegrity(ctx, quizID, userID, session, payload)
		default:
			push(outboundMessage{Type: "error", Payload: errorPayload{Message: "unsupported message type"}})
		}
	}
}

func (h *LiveHandler) handleAnswer(ctx context.Context, quizID, userID uint, session *live.Session, payload answerPayload, push func(outboundMessage)) {
	responseTime, err := session.Select(payload.Selected)
	if err != nil {
		push(outboundMessage{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}

	result, err := h.attemptService.SubmitAnswer(ctx, quizID, userID, &services.SubmitAnswerRequest{
		QuestionID:   payload.QuestionID,
		Selected:     payload.Selected,
		ResponseTime: responseTime,
	})
	if err != nil {
		push(outboundMessage{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}

	push(outboundMessage{Type: "answer_result", Payload: result})
}

func (h *LiveHandler) handleIntegrity(ctx context.Context, quizID, userID uint, session *live.Session, payload integrityPayload) {
	switch payload.Type {
	case models.EventTabSwitch:
		session.RecordTabSwitch()
	case models.EventFullscreenExit:
		session.RecordFullscreenExit()
	default:
		return
	}

	snap := session.Snapshot()
	req := &services.IntegrityEventRequest{
		Type:       payload.Type,
		QuestionID: snap.QuestionID,
	}
	if err := h.attemptService.ReportIntegrityEvent(ctx, quizID, userID, req); err != nil {
		h.logger.Warn("Failed to report integrity event",
			"quiz_id", quizID,
			"user_id", userID,
			"error", err)
	}
}
