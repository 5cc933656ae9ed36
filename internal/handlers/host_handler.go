package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Lethinkj/clan-quiz-service/internal/services"
	"github.com/Lethinkj/clan-quiz-service/internal/utils"
)

type HostHandler struct {
	BaseHandler
	hostService services.HostService
}

func NewHostHandler(hostService services.HostService, logger utils.Logger) *HostHandler {
	return &HostHandler{
		BaseHandler: NewBaseHandler(logger),
		hostService: hostService,
	}
}

// ShowQuestion makes one question the quiz's active question
func (h *HostHandler) ShowQuestion(c *gin.Context) {
	quizID := h.parseIDParam(c, "quiz_id")
	if quizID == 0 {
		return
	}
	questionID := h.parseIDParam(c, "question_id")
	if questionID == 0 {
		return
	}

	h.LogRequest(c, "Showing question", "quiz_id", quizID, "question_id", questionID)

	view, err := h.hostService.ShowQuestion(c.Request.Context(), quizID, questionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// StartSession shows the quiz's first question
func (h *HostHandler) StartSession(c *gin.Context) {
	quizID := h.parseIDParam(c, "quiz_id")
	if quizID == 0 {
		return
	}

	h.LogRequest(c, "Starting live session", "quiz_id", quizID)

	view, err := h.hostService.ShowFirstQuestion(c.Request.Context(), quizID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// RevealAnswer freezes the active question and reveals its correct option
func (h *HostHandler) RevealAnswer(c *gin.Context) {
	quizID := h.parseIDParam(c, "quiz_id")
	if quizID == 0 {
		return
	}

	view, err := h.hostService.RevealAnswer(c.Request.Context(), quizID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// NextQuestion advances the quiz to the following question
func (h *HostHandler) NextQuestion(c *gin.Context) {
	quizID := h.parseIDParam(c, "quiz_id")
	if quizID == 0 {
		return
	}

	view, err := h.hostService.NextQuestion(c.Request.Context(), quizID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// EndQuiz closes the quiz for everyone
func (h *HostHandler) EndQuiz(c *gin.Context) {
	quizID := h.parseIDParam(c, "quiz_id")
	if quizID == 0 {
		return
	}

	h.LogRequest(c, "Ending quiz", "quiz_id", quizID)

	if err := h.hostService.EndQuiz(c.Request.Context(), quizID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Quiz ended",
	})
}
