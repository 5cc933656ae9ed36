package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lethinkj/clan-quiz-service/internal/models"
	"github.com/Lethinkj/clan-quiz-service/internal/utils"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// seedLiveQuiz creates an active live quiz with one participant and two
// questions (B correct, then D correct).
func seedLiveQuiz(repo *fakeRepository) (*models.Quiz, *models.QuizUser, []*models.QuizQuestion) {
	quiz := repo.addQuiz(&models.Quiz{
		Title:    "Clan Trivia Night",
		Type:     models.QuizLive,
		IsActive: true,
	})
	user := repo.addUser(&models.QuizUser{
		Username:    "archer",
		DisplayName: "Archer Queen",
	})
	q1 := repo.addQuestion(&models.QuizQuestion{
		QuizID:        quiz.ID,
		Position:      1,
		Text:          "Which troop flies?",
		OptionA:       "Barbarian",
		OptionB:       "Dragon",
		OptionC:       "Goblin",
		OptionD:       "Giant",
		CorrectOption: models.OptionB,
		Points:        10,
		TimeLimit:     30,
	})
	q2 := repo.addQuestion(&models.QuizQuestion{
		QuizID:        quiz.ID,
		Position:      2,
		Text:          "Which spell heals?",
		OptionA:       "Rage",
		OptionB:       "Freeze",
		OptionC:       "Jump",
		OptionD:       "Healing",
		CorrectOption: models.OptionD,
		Points:        10,
		TimeLimit:     20,
	})
	return quiz, user, []*models.QuizQuestion{q1, q2}
}

func newTestAttemptService(repo *fakeRepository) AttemptService {
	return NewAttemptService(repo, nil, discardLogger(), utils.NewValidator())
}

func TestStartOrResume(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	quiz, user, _ := seedLiveQuiz(repo)
	svc := newTestAttemptService(repo)

	attempt, err := svc.StartOrResume(ctx, quiz.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, quiz.ID, attempt.QuizID)
	assert.Equal(t, user.ID, attempt.UserID)
	assert.False(t, attempt.Submitted)

	// A leaderboard row is seeded immediately so integrity counters have
	// somewhere to land before the first answer.
	entry, err := repo.Leaderboard().GetByQuizAndUser(ctx, quiz.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.DisplayName, entry.DisplayName)
	assert.Equal(t, 0, entry.Score)

	// Joining again resumes the same attempt.
	again, err := svc.StartOrResume(ctx, quiz.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, attempt.ID, again.ID)
}

func TestStartOrResumeInactiveQuiz(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	quiz, user, _ := seedLiveQuiz(repo)
	require.NoError(t, repo.Quiz().SetActive(ctx, quiz.ID, false))
	svc := newTestAttemptService(repo)

	_, err := svc.StartOrResume(ctx, quiz.ID, user.ID)
	assert.ErrorIs(t, err, ErrQuizNotActive)

	_, err = svc.StartOrResume(ctx, 9999, user.ID)
	assert.ErrorIs(t, err, ErrQuizNotFound)
}

func TestSubmitAnswerScoring(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	quiz, user, questions := seedLiveQuiz(repo)
	svc := newTestAttemptService(repo)

	_, err := svc.StartOrResume(ctx, quiz.ID, user.ID)
	require.NoError(t, err)

	// Correct answer in the fastest band: 10 base + 5 bonus.
	result, err := svc.SubmitAnswer(ctx, quiz.ID, user.ID, &SubmitAnswerRequest{
		QuestionID:   questions[0].ID,
		Selected:     models.OptionB,
		ResponseTime: 5.0,
	})
	require.NoError(t, err)
	assert.True(t, result.Correct)
	assert.Equal(t, models.OptionB, result.CorrectOption)
	assert.Equal(t, 15, result.PointsAwarded)
	assert.Equal(t, 15, result.TotalScore)
	assert.False(t, result.Duplicate)

	// Wrong answer scores zero regardless of speed.
	result, err = svc.SubmitAnswer(ctx, quiz.ID, user.ID, &SubmitAnswerRequest{
		QuestionID:   questions[1].ID,
		Selected:     models.OptionA,
		ResponseTime: 2.0,
	})
	require.NoError(t, err)
	assert.False(t, result.Correct)
	assert.Equal(t, 0, result.PointsAwarded)
	assert.Equal(t, 15, result.TotalScore)

	// The leaderboard projection tracks both answers.
	entry, err := repo.Leaderboard().GetByQuizAndUser(ctx, quiz.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 15, entry.Score)
	assert.Equal(t, 2, entry.AnswersCount)
	assert.InDelta(t, 3.5, entry.AvgResponseTime, 0.001)
}

func TestSubmitAnswerDuplicate(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	quiz, user, questions := seedLiveQuiz(repo)
	svc := newTestAttemptService(repo)

	_, err := svc.StartOrResume(ctx, quiz.ID, user.ID)
	require.NoError(t, err)

	first, err := svc.SubmitAnswer(ctx, quiz.ID, user.ID, &SubmitAnswerRequest{
		QuestionID:   questions[0].ID,
		Selected:     models.OptionB,
		ResponseTime: 4.0,
	})
	require.NoError(t, err)
	require.Equal(t, 15, first.TotalScore)

	// Replaying the same question is a no-op, even with a different choice.
	second, err := svc.SubmitAnswer(ctx, quiz.ID, user.ID, &SubmitAnswerRequest{
		QuestionID:   questions[0].ID,
		Selected:     models.OptionC,
		ResponseTime: 6.0,
	})
	require.NoError(t, err)
	assert.True(t, second.Duplicate)
	assert.Equal(t, 0, second.PointsAwarded)
	assert.Equal(t, 15, second.TotalScore)

	attempt, err := repo.Attempt().GetByQuizAndUser(ctx, quiz.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 15, attempt.Score)

	answers, err := repo.Attempt().GetAnswers(ctx, attempt.ID)
	require.NoError(t, err)
	require.Len(t, answers, 1)
	assert.Equal(t, models.OptionB, answers[0].Selected)
}

func TestSubmitAnswerGuards(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	quiz, user, questions := seedLiveQuiz(repo)
	otherQuiz := repo.addQuiz(&models.Quiz{
		Title:    "Other Quiz",
		Type:     models.QuizLive,
		IsActive: true,
	})
	svc := newTestAttemptService(repo)

	// No attempt yet.
	_, err := svc.SubmitAnswer(ctx, quiz.ID, user.ID, &SubmitAnswerRequest{
		QuestionID:   questions[0].ID,
		Selected:     models.OptionB,
		ResponseTime: 3.0,
	})
	assert.ErrorIs(t, err, ErrAttemptNotFound)

	_, err = svc.StartOrResume(ctx, quiz.ID, user.ID)
	require.NoError(t, err)

	// Question belongs to a different quiz.
	_, err = svc.StartOrResume(ctx, otherQuiz.ID, user.ID)
	require.NoError(t, err)
	_, err = svc.SubmitAnswer(ctx, otherQuiz.ID, user.ID, &SubmitAnswerRequest{
		QuestionID:   questions[0].ID,
		Selected:     models.OptionB,
		ResponseTime: 3.0,
	})
	assert.ErrorIs(t, err, ErrQuestionNotInQuiz)

	// Unknown question.
	_, err = svc.SubmitAnswer(ctx, quiz.ID, user.ID, &SubmitAnswerRequest{
		QuestionID:   424242,
		Selected:     models.OptionB,
		ResponseTime: 3.0,
	})
	assert.ErrorIs(t, err, ErrQuestionNotFound)

	// Submitted attempts reject further answers.
	_, err = svc.Submit(ctx, quiz.ID, user.ID)
	require.NoError(t, err)
	_, err = svc.SubmitAnswer(ctx, quiz.ID, user.ID, &SubmitAnswerRequest{
		QuestionID:   questions[1].ID,
		Selected:     models.OptionD,
		ResponseTime: 3.0,
	})
	assert.ErrorIs(t, err, ErrAttemptAlreadySubmitted)
}

func TestSubmitSelfPacedRecalculates(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	quiz := repo.addQuiz(&models.Quiz{
		Title:     "Village History",
		Type:      models.QuizSelfPaced,
		TimeLimit: 600,
		IsActive:  true,
	})
	user := repo.addUser(&models.QuizUser{Username: "miner", DisplayName: "Miner"})
	question := repo.addQuestion(&models.QuizQuestion{
		QuizID:        quiz.ID,
		Position:      1,
		Text:          "Founded in?",
		OptionA:       "2019",
		OptionB:       "2020",
		OptionC:       "2021",
		OptionD:       "2022",
		CorrectOption: models.OptionA,
		Points:        10,
		TimeLimit:     30,
	})
	svc := newTestAttemptService(repo)

	_, err := svc.StartOrResume(ctx, quiz.ID, user.ID)
	require.NoError(t, err)
	_, err = svc.SubmitAnswer(ctx, quiz.ID, user.ID, &SubmitAnswerRequest{
		QuestionID:   question.ID,
		Selected:     models.OptionA,
		ResponseTime: 10.0,
	})
	require.NoError(t, err)

	attempt, err := svc.Submit(ctx, quiz.ID, user.ID)
	require.NoError(t, err)
	assert.True(t, attempt.Submitted)
	require.NotNil(t, attempt.SubmittedAt)
	// 10 base + 3 bonus for answering in the second band of a 30s limit.
	assert.Equal(t, 13, attempt.Score)

	// Double submit is a conflict.
	_, err = svc.Submit(ctx, quiz.ID, user.ID)
	assert.ErrorIs(t, err, ErrAttemptAlreadySubmitted)
}

func TestReportIntegrityEvent(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	quiz, user, questions := seedLiveQuiz(repo)
	svc := newTestAttemptService(repo)

	_, err := svc.StartOrResume(ctx, quiz.ID, user.ID)
	require.NoError(t, err)

	questionID := questions[0].ID
	require.NoError(t, svc.ReportIntegrityEvent(ctx, quiz.ID, user.ID, &IntegrityEventRequest{
		Type:       models.EventTabSwitch,
		QuestionID: &questionID,
	}))
	require.NoError(t, svc.ReportIntegrityEvent(ctx, quiz.ID, user.ID, &IntegrityEventRequest{
		Type: models.EventTabSwitch,
	}))
	require.NoError(t, svc.ReportIntegrityEvent(ctx, quiz.ID, user.ID, &IntegrityEventRequest{
		Type: models.EventFullscreenExit,
	}))

	attempt, err := repo.Attempt().GetByQuizAndUser(ctx, quiz.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, attempt.TabSwitchCount)

	entry, err := repo.Leaderboard().GetByQuizAndUser(ctx, quiz.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, entry.TabSwitchCount)
	assert.Equal(t, 1, entry.FullscreenExitCount)

	events, err := repo.Integrity().GetByAttempt(ctx, attempt.ID)
	require.NoError(t, err)
	assert.Len(t, events, 3)

	// Integrity signals are advisory; the score is untouched.
	assert.Equal(t, 0, attempt.Score)
}

func TestReportIntegrityEventRejectsUnknownType(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	quiz, user, _ := seedLiveQuiz(repo)
	svc := newTestAttemptService(repo)

	err := svc.ReportIntegrityEvent(ctx, quiz.ID, user.ID, &IntegrityEventRequest{
		Type: models.IntegrityEventType("devtools_open"),
	})
	assert.Error(t, err)
}

func TestGetByIDWithAnswersOwnership(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	quiz, user, questions := seedLiveQuiz(repo)
	other := repo.addUser(&models.QuizUser{Username: "wizard", DisplayName: "Wizard"})
	svc := newTestAttemptService(repo)

	attempt, err := svc.StartOrResume(ctx, quiz.ID, user.ID)
	require.NoError(t, err)
	_, err = svc.SubmitAnswer(ctx, quiz.ID, user.ID, &SubmitAnswerRequest{
		QuestionID:   questions[0].ID,
		Selected:     models.OptionB,
		ResponseTime: 4.0,
	})
	require.NoError(t, err)

	got, err := svc.GetByIDWithAnswers(ctx, attempt.ID, user.ID)
	require.NoError(t, err)
	assert.Len(t, got.Answers, 1)

	_, err = svc.GetByIDWithAnswers(ctx, attempt.ID, other.ID)
	assert.True(t, IsPermission(err))

	_, err = svc.GetByIDWithAnswers(ctx, 777777, user.ID)
	assert.ErrorIs(t, err, ErrAttemptNotFound)
}
