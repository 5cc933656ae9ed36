package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Lethinkj/clan-quiz-service/internal/services"
	"github.com/Lethinkj/clan-quiz-service/internal/utils"
)

type LeaderboardHandler struct {
	BaseHandler
	leaderboardService services.LeaderboardService
}

func NewLeaderboardHandler(leaderboardService services.LeaderboardService, logger utils.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{
		BaseHandler:        NewBaseHandler(logger),
		leaderboardService: leaderboardService,
	}
}

// GetLeaderboard returns the quiz's ranked entries
func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	quizID := h.parseIDParam(c, "quiz_id")
	if quizID == 0 {
		return
	}

	includeHidden := c.Query("include_hidden") == "true"

	entries, err := h.leaderboardService.Get(c.Request.Context(), quizID, includeHidden)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, entries)
}

// SetEntryHidden hides or unhides one participant's entry
func (h *LeaderboardHandler) SetEntryHidden(c *gin.Context) {
	quizID := h.parseIDParam(c, "quiz_id")
	if quizID == 0 {
		return
	}
	userID := h.parseIDParam(c, "user_id")
	if userID == 0 {
		return
	}

	var req struct {
		Hidden bool `json:"hidden"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if err := h.leaderboardService.SetHidden(c.Request.Context(), quizID, userID, req.Hidden); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Leaderboard entry updated",
	})
}

// RemoveEntry removes one participant's entry from the board
func (h *LeaderboardHandler) RemoveEntry(c *gin.Context) {
	quizID := h.parseIDParam(c, "quiz_id")
	if quizID == 0 {
		return
	}
	userID := h.parseIDParam(c, "user_id")
	if userID == 0 {
		return
	}

	h.LogRequest(c, "Removing leaderboard entry", "quiz_id", quizID, "target_user_id", userID)

	if err := h.leaderboardService.Remove(c.Request.Context(), quizID, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Leaderboard entry removed",
	})
}
