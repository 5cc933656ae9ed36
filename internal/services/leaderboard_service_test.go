package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lethinkj/clan-quiz-service/internal/models"
)

func seedStandings(t *testing.T, repo *fakeRepository, quizID uint) {
	t.Helper()
	ctx := context.Background()
	rows := []*models.LeaderboardEntry{
		{QuizID: quizID, UserID: 1, DisplayName: "Alpha", Score: 45, AvgResponseTime: 4.2},
		{QuizID: quizID, UserID: 2, DisplayName: "Bravo", Score: 45, AvgResponseTime: 3.1},
		{QuizID: quizID, UserID: 3, DisplayName: "Charlie", Score: 30, AvgResponseTime: 2.0},
	}
	for _, row := range rows {
		require.NoError(t, repo.Leaderboard().Upsert(ctx, row))
	}
}

func TestLeaderboardGet(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	quiz := repo.addQuiz(&models.Quiz{Title: "Standings", Type: models.QuizLive, IsActive: true})
	seedStandings(t, repo, quiz.ID)
	svc := NewLeaderboardService(repo, discardLogger())

	entries, err := svc.Get(ctx, quiz.ID, false)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Ties on score break on faster average response time.
	assert.Equal(t, "Bravo", entries[0].DisplayName)
	assert.Equal(t, "Alpha", entries[1].DisplayName)
	assert.Equal(t, "Charlie", entries[2].DisplayName)

	_, err = svc.Get(ctx, 9999, false)
	assert.ErrorIs(t, err, ErrQuizNotFound)
}

func TestLeaderboardVisibility(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	quiz := repo.addQuiz(&models.Quiz{Title: "Standings", Type: models.QuizLive, IsActive: true})
	seedStandings(t, repo, quiz.ID)
	svc := NewLeaderboardService(repo, discardLogger())

	require.NoError(t, svc.SetHidden(ctx, quiz.ID, 2, true))

	entries, err := svc.Get(ctx, quiz.ID, false)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	// The host view still sees hidden rows.
	entries, err = svc.Get(ctx, quiz.ID, true)
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	// Unhiding restores the public view.
	require.NoError(t, svc.SetHidden(ctx, quiz.ID, 2, false))
	entries, err = svc.Get(ctx, quiz.ID, false)
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	assert.ErrorIs(t, svc.SetHidden(ctx, quiz.ID, 999, true), ErrLeaderboardEntryNotFound)
}

func TestLeaderboardRemove(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	quiz := repo.addQuiz(&models.Quiz{Title: "Standings", Type: models.QuizLive, IsActive: true})
	seedStandings(t, repo, quiz.ID)
	svc := NewLeaderboardService(repo, discardLogger())

	require.NoError(t, svc.Remove(ctx, quiz.ID, 3))

	// Removed rows disappear from every view, hidden included.
	entries, err := svc.Get(ctx, quiz.ID, true)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	assert.ErrorIs(t, svc.Remove(ctx, quiz.ID, 999), ErrLeaderboardEntryNotFound)
}
