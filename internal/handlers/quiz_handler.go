package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Lethinkj/clan-quiz-service/internal/models"
	"github.com/Lethinkj/clan-quiz-service/internal/repositories"
	"github.com/Lethinkj/clan-quiz-service/internal/services"
	"github.com/Lethinkj/clan-quiz-service/internal/utils"
)

type QuizHandler struct {
	BaseHandler
	quizService     services.QuizService
	questionService services.QuestionService
	exportService   services.ExportService
	validator       *utils.Validator
}

func NewQuizHandler(
	quizService services.QuizService,
	questionService services.QuestionService,
	exportService services.ExportService,
	validator *utils.Validator,
	logger utils.Logger,
) *QuizHandler {
	return &QuizHandler{
		BaseHandler:     NewBaseHandler(logger),
		quizService:     quizService,
		questionService: questionService,
		exportService:   exportService,
		validator:       validator,
	}
}

// CreateQuiz creates a new quiz
func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	var req services.CreateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	quiz, err := h.quizService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, quiz)
}

// GetQuiz retrieves a quiz by ID
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	id := h.parseIDParam(c, "quiz_id")
	if id == 0 {
		return
	}

	quiz, err := h.quizService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, quiz)
}

// GetQuizWithQuestions retrieves a quiz together with its question set
func (h *QuizHandler) GetQuizWithQuestions(c *gin.Context) {
	id := h.parseIDParam(c, "quiz_id")
	if id == 0 {
		return
	}

	quiz, err := h.quizService.GetByIDWithQuestions(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, quiz)
}

// UpdateQuiz updates quiz metadata
func (h *QuizHandler) UpdateQuiz(c *gin.Context) {
	id := h.parseIDParam(c, "quiz_id")
	if id == 0 {
		return
	}

	var req services.UpdateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	quiz, err := h.quizService.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, quiz)
}

// DeleteQuiz deletes a quiz that has no attempts
func (h *QuizHandler) DeleteQuiz(c *gin.Context) {
	id := h.parseIDParam(c, "quiz_id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting quiz", "quiz_id", id)

	if err := h.quizService.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Quiz deleted successfully",
	})
}

// ListQuizzes lists quizzes with optional filters
func (h *QuizHandler) ListQuizzes(c *gin.Context) {
	filters := h.parseQuizFilters(c)

	quizzes, total, err := h.quizService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"quizzes": quizzes,
		"total":   total,
	})
}

// SetQuizActive toggles the quiz's open-for-participation flag
func (h *QuizHandler) SetQuizActive(c *gin.Context) {
	id := h.parseIDParam(c, "quiz_id")
	if id == 0 {
		return
	}

	var req struct {
		IsActive bool `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if err := h.quizService.SetActive(c.Request.Context(), id, req.IsActive); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Quiz status updated",
	})
}

// GetQuizStats returns aggregate participation statistics
func (h *QuizHandler) GetQuizStats(c *gin.Context) {
	id := h.parseIDParam(c, "quiz_id")
	if id == 0 {
		return
	}

	stats, err := h.quizService.GetStats(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ReplaceQuestions swaps the quiz's entire question set
func (h *QuizHandler) ReplaceQuestions(c *gin.Context) {
	id := h.parseIDParam(c, "quiz_id")
	if id == 0 {
		return
	}

	var req services.ReplaceQuestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	questions, err := h.questionService.Replace(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, questions)
}

// ListQuestions returns the quiz's questions ordered by position
func (h *QuizHandler) ListQuestions(c *gin.Context) {
	id := h.parseIDParam(c, "quiz_id")
	if id == 0 {
		return
	}

	questions, err := h.questionService.ListByQuiz(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, questions)
}

// ExportResults streams the quiz results as an XLSX workbook
func (h *QuizHandler) ExportResults(c *gin.Context) {
	id := h.parseIDParam(c, "quiz_id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Exporting quiz results", "quiz_id", id)

	data, err := h.exportService.ExportResults(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := "quiz-" + strconv.FormatUint(uint64(id), 10) + "-results.xlsx"
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func (h *QuizHandler) parseQuizFilters(c *gin.Context) repositories.QuizFilters {
	page := h.parseIntQuery(c, "page", 1)
	size := h.parseIntQuery(c, "size", 20)

	filters := repositories.QuizFilters{
		Limit:     size,
		Offset:    (page - 1) * size,
		SortBy:    c.DefaultQuery("sort_by", "created_at"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
	}

	if typeStr := c.Query("type"); typeStr != "" {
		quizType := models.QuizType(typeStr)
		filters.Type = &quizType
	}
	if activeStr := c.Query("is_active"); activeStr != "" {
		active := activeStr == "true"
		filters.IsActive = &active
	}
	return filters
}

func (h *QuizHandler) parseIntQuery(c *gin.Context, param string, defaultValue int) int {
	valueStr := c.Query(param)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
