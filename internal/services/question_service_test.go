package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lethinkj/clan-quiz-service/internal/models"
	"github.com/Lethinkj/clan-quiz-service/internal/utils"
)

func newTestQuestionService(repo *fakeRepository) QuestionService {
	return NewQuestionService(repo, nil, discardLogger(), utils.NewValidator())
}

func sampleInputs() []QuestionInput {
	return []QuestionInput{
		{
			Text:          "Which league is highest?",
			OptionA:       "Gold",
			OptionB:       "Crystal",
			OptionC:       "Legend",
			OptionD:       "Titan",
			CorrectOption: models.OptionC,
			Points:        10,
			TimeLimit:     20,
		},
		{
			Text:          "Max town hall level?",
			OptionA:       "15",
			OptionB:       "16",
			OptionC:       "17",
			OptionD:       "18",
			CorrectOption: models.OptionC,
		},
	}
}

func TestReplaceQuestions(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	quiz := repo.addQuiz(&models.Quiz{Title: "Clash Facts", Type: models.QuizLive})
	svc := newTestQuestionService(repo)

	questions, err := svc.Replace(ctx, quiz.ID, &ReplaceQuestionsRequest{Questions: sampleInputs()})
	require.NoError(t, err)
	require.Len(t, questions, 2)

	// Positions are assigned from input order, starting at 1.
	assert.Equal(t, 1, questions[0].Position)
	assert.Equal(t, 2, questions[1].Position)

	// Omitted points and time limit fall back to defaults.
	assert.Equal(t, 10, questions[1].Points)
	assert.Equal(t, 30, questions[1].TimeLimit)
	assert.Equal(t, 20, questions[0].TimeLimit)

	// Replacing again swaps the whole set.
	single := sampleInputs()[:1]
	questions, err = svc.Replace(ctx, quiz.ID, &ReplaceQuestionsRequest{Questions: single})
	require.NoError(t, err)
	require.Len(t, questions, 1)

	listed, err := svc.ListByQuiz(ctx, quiz.ID)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestReplaceQuestionsBlockedWhileLive(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	quiz := repo.addQuiz(&models.Quiz{
		Title:        "Live Quiz",
		Type:         models.QuizLive,
		IsActive:     true,
		IsLiveActive: true,
	})
	svc := newTestQuestionService(repo)

	_, err := svc.Replace(ctx, quiz.ID, &ReplaceQuestionsRequest{Questions: sampleInputs()})
	assert.ErrorIs(t, err, ErrQuizNotEditable)
}

func TestReplaceQuestionsValidation(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	quiz := repo.addQuiz(&models.Quiz{Title: "Strict", Type: models.QuizLive})
	svc := newTestQuestionService(repo)

	// Empty set.
	_, err := svc.Replace(ctx, quiz.ID, &ReplaceQuestionsRequest{})
	assert.Error(t, err)

	// Correct option outside a-d.
	bad := sampleInputs()
	bad[0].CorrectOption = models.AnswerOption("e")
	_, err = svc.Replace(ctx, quiz.ID, &ReplaceQuestionsRequest{Questions: bad})
	assert.Error(t, err)

	// Missing option text.
	bad = sampleInputs()
	bad[1].OptionD = ""
	_, err = svc.Replace(ctx, quiz.ID, &ReplaceQuestionsRequest{Questions: bad})
	assert.Error(t, err)
}

func TestGetForQuiz(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	quiz, _, questions := seedLiveQuiz(repo)
	other := repo.addQuiz(&models.Quiz{Title: "Other", Type: models.QuizLive})
	svc := newTestQuestionService(repo)

	got, err := svc.GetForQuiz(ctx, quiz.ID, questions[0].ID)
	require.NoError(t, err)
	assert.Equal(t, questions[0].ID, got.ID)

	_, err = svc.GetForQuiz(ctx, other.ID, questions[0].ID)
	assert.ErrorIs(t, err, ErrQuestionNotInQuiz)

	_, err = svc.GetForQuiz(ctx, quiz.ID, 31337)
	assert.ErrorIs(t, err, ErrQuestionNotFound)
}
