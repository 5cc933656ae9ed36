package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/Lethinkj/clan-quiz-service/internal/models"
	"github.com/Lethinkj/clan-quiz-service/internal/repositories"
)

// fakeRepository is an in-memory repositories.Repository for service tests.
type fakeRepository struct {
	mu sync.Mutex

	quizzes     map[uint]*models.Quiz
	questions   map[uint]*models.QuizQuestion
	attempts    map[uint]*models.QuizAttempt
	answers     map[uint][]*models.QuizAnswer // by attempt id
	leaderboard map[[2]uint]*models.LeaderboardEntry
	users       map[uint]*models.QuizUser
	integrity   map[uint][]*models.IntegrityEvent // by attempt id

	nextID uint
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		quizzes:     make(map[uint]*models.Quiz),
		questions:   make(map[uint]*models.QuizQuestion),
		attempts:    make(map[uint]*models.QuizAttempt),
		answers:     make(map[uint][]*models.QuizAnswer),
		leaderboard: make(map[[2]uint]*models.LeaderboardEntry),
		users:       make(map[uint]*models.QuizUser),
		integrity:   make(map[uint][]*models.IntegrityEvent),
		nextID:      100,
	}
}

func (f *fakeRepository) id() uint {
	f.nextID++
	return f.nextID
}

func (f *fakeRepository) Quiz() repositories.QuizRepository               { return (*fakeQuizRepo)(f) }
func (f *fakeRepository) Question() repositories.QuestionRepository      { return (*fakeQuestionRepo)(f) }
func (f *fakeRepository) Attempt() repositories.AttemptRepository        { return (*fakeAttemptRepo)(f) }
func (f *fakeRepository) Leaderboard() repositories.LeaderboardRepository { return (*fakeLeaderboardRepo)(f) }
func (f *fakeRepository) User() repositories.UserRepository              { return (*fakeUserRepo)(f) }
func (f *fakeRepository) Integrity() repositories.IntegrityRepository    { return (*fakeIntegrityRepo)(f) }

// Seed helpers

func (f *fakeRepository) addQuiz(quiz *models.Quiz) *models.Quiz {
	f.mu.Lock()
	defer f.mu.Unlock()
	if quiz.ID == 0 {
		quiz.ID = f.id()
	}
	f.quizzes[quiz.ID] = quiz
	return quiz
}

func (f *fakeRepository) addQuestion(q *models.QuizQuestion) *models.QuizQuestion {
	f.mu.Lock()
	defer f.mu.Unlock()
	if q.ID == 0 {
		q.ID = f.id()
	}
	f.questions[q.ID] = q
	return q
}

func (f *fakeRepository) addUser(u *models.QuizUser) *models.QuizUser {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.ID == 0 {
		u.ID = f.id()
	}
	f.users[u.ID] = u
	return u
}

// ===== QUIZ =====

type fakeQuizRepo fakeRepository

func (f *fakeQuizRepo) Create(ctx context.Context, quiz *models.Quiz) error {
	(*fakeRepository)(f).addQuiz(quiz)
	return nil
}

func (f *fakeQuizRepo) GetByID(ctx context.Context, id uint) (*models.Quiz, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	quiz, ok := f.quizzes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *quiz
	return &copied, nil
}

func (f *fakeQuizRepo) GetByIDWithQuestions(ctx context.Context, id uint) (*models.Quiz, error) {
	quiz, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	questions, _ := (*fakeQuestionRepo)(f).GetByQuiz(ctx, id)
	for _, q := range questions {
		quiz.Questions = append(quiz.Questions, *q)
	}
	return quiz, nil
}

func (f *fakeQuizRepo) Update(ctx context.Context, quiz *models.Quiz) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.quizzes[quiz.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *quiz
	f.quizzes[quiz.ID] = &copied
	return nil
}

func (f *fakeQuizRepo) Delete(ctx context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.quizzes[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.quizzes, id)
	return nil
}

func (f *fakeQuizRepo) List(ctx context.Context, filters repositories.QuizFilters) ([]*models.Quiz, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Quiz
	for _, quiz := range f.quizzes {
		if filters.Type != nil && quiz.Type != *filters.Type {
			continue
		}
		if filters.IsActive != nil && quiz.IsActive != *filters.IsActive {
			continue
		}
		copied := *quiz
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (f *fakeQuizRepo) GetActive(ctx context.Context, quizType *models.QuizType) ([]*models.Quiz, error) {
	active := true
	quizzes, _, err := f.List(ctx, repositories.QuizFilters{Type: quizType, IsActive: &active})
	return quizzes, err
}

func (f *fakeQuizRepo) SetActive(ctx context.Context, id uint, active bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	quiz, ok := f.quizzes[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	quiz.IsActive = active
	return nil
}

func (f *fakeQuizRepo) SetLiveState(ctx context.Context, id uint, questionID *uint, startTime *time.Time, liveActive bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	quiz, ok := f.quizzes[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	quiz.CurrentQuestionID = questionID
	quiz.QuestionStartTime = startTime
	quiz.IsLiveActive = liveActive
	return nil
}

func (f *fakeQuizRepo) GetStats(ctx context.Context, id uint) (*repositories.QuizStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := &repositories.QuizStats{}
	for _, attempt := range f.attempts {
		if attempt.QuizID != id {
			continue
		}
		stats.TotalAttempts++
		if attempt.Submitted {
			stats.SubmittedAttempts++
		}
		if attempt.Score > stats.TopScore {
			stats.TopScore = attempt.Score
		}
	}
	for _, q := range f.questions {
		if q.QuizID == id {
			stats.QuestionCount++
			stats.TotalPoints += q.Points
		}
	}
	return stats, nil
}

func (f *fakeQuizRepo) HasAttempts(ctx context.Context, id uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, attempt := range f.attempts {
		if attempt.QuizID == id {
			return true, nil
		}
	}
	return false, nil
}

// ===== QUESTION =====

type fakeQuestionRepo fakeRepository

func (f *fakeQuestionRepo) GetByID(ctx context.Context, id uint) (*models.QuizQuestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.questions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *q
	return &copied, nil
}

func (f *fakeQuestionRepo) GetByQuiz(ctx context.Context, quizID uint) ([]*models.QuizQuestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.QuizQuestion
	for _, q := range f.questions {
		if q.QuizID == quizID {
			copied := *q
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (f *fakeQuestionRepo) ReplaceForQuiz(ctx context.Context, quizID uint, questions []*models.QuizQuestion) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, q := range f.questions {
		if q.QuizID == quizID {
			delete(f.questions, id)
		}
	}
	for _, q := range questions {
		if q.ID == 0 {
			q.ID = (*fakeRepository)(f).id()
		}
		copied := *q
		f.questions[q.ID] = &copied
	}
	return nil
}

func (f *fakeQuestionRepo) NextAfter(ctx context.Context, quizID uint, position int) (*models.QuizQuestion, error) {
	questions, _ := f.GetByQuiz(ctx, quizID)
	for _, q := range questions {
		if q.Position > position {
			return q, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeQuestionRepo) CountByQuiz(ctx context.Context, quizID uint) (int64, error) {
	questions, _ := f.GetByQuiz(ctx, quizID)
	return int64(len(questions)), nil
}

// ===== ATTEMPT =====

type fakeAttemptRepo fakeRepository

func (f *fakeAttemptRepo) GetOrCreate(ctx context.Context, quizID, userID uint) (*models.QuizAttempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, attempt := range f.attempts {
		if attempt.QuizID == quizID && attempt.UserID == userID {
			copied := *attempt
			return &copied, nil
		}
	}
	attempt := &models.QuizAttempt{
		ID:        (*fakeRepository)(f).id(),
		QuizID:    quizID,
		UserID:    userID,
		StartedAt: time.Now().UTC(),
	}
	f.attempts[attempt.ID] = attempt
	copied := *attempt
	return &copied, nil
}

func (f *fakeAttemptRepo) GetByID(ctx context.Context, id uint) (*models.QuizAttempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	attempt, ok := f.attempts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *attempt
	return &copied, nil
}

func (f *fakeAttemptRepo) GetByIDWithAnswers(ctx context.Context, id uint) (*models.QuizAttempt, error) {
	attempt, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	answers, _ := f.GetAnswers(ctx, id)
	for _, a := range answers {
		attempt.Answers = append(attempt.Answers, *a)
	}
	return attempt, nil
}

func (f *fakeAttemptRepo) GetByQuizAndUser(ctx context.Context, quizID, userID uint) (*models.QuizAttempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, attempt := range f.attempts {
		if attempt.QuizID == quizID && attempt.UserID == userID {
			copied := *attempt
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAttemptRepo) GetByQuiz(ctx context.Context, quizID uint, filters repositories.AttemptFilters) ([]*models.QuizAttempt, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.QuizAttempt
	for _, attempt := range f.attempts {
		if attempt.QuizID == quizID {
			copied := *attempt
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (f *fakeAttemptRepo) InsertAnswer(ctx context.Context, answer *models.QuizAnswer) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.answers[answer.AttemptID] {
		if existing.QuestionID == answer.QuestionID {
			return false, nil
		}
	}
	if answer.ID == 0 {
		answer.ID = (*fakeRepository)(f).id()
	}
	copied := *answer
	f.answers[answer.AttemptID] = append(f.answers[answer.AttemptID], &copied)
	return true, nil
}

func (f *fakeAttemptRepo) GetAnswers(ctx context.Context, attemptID uint) ([]*models.QuizAnswer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.QuizAnswer
	for _, a := range f.answers[attemptID] {
		copied := *a
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeAttemptRepo) AddScore(ctx context.Context, id uint, delta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	attempt, ok := f.attempts[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	attempt.Score += delta
	return nil
}

func (f *fakeAttemptRepo) MarkSubmitted(ctx context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	attempt, ok := f.attempts[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	now := time.Now().UTC()
	attempt.Submitted = true
	attempt.SubmittedAt = &now
	return nil
}

func (f *fakeAttemptRepo) IncrementTabSwitches(ctx context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	attempt, ok := f.attempts[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	attempt.TabSwitchCount++
	return nil
}

func (f *fakeAttemptRepo) CalculateScore(ctx context.Context, attemptID uint) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, a := range f.answers[attemptID] {
		total += a.PointsAwarded
	}
	return total, nil
}

// ===== LEADERBOARD =====

type fakeLeaderboardRepo fakeRepository

func (f *fakeLeaderboardRepo) Upsert(ctx context.Context, entry *models.LeaderboardEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := [2]uint{entry.QuizID, entry.UserID}
	if existing, ok := f.leaderboard[key]; ok {
		// Visibility flags survive projection rewrites.
		entry.Hidden = existing.Hidden
		entry.Removed = existing.Removed
		entry.ID = existing.ID
	} else if entry.ID == 0 {
		entry.ID = (*fakeRepository)(f).id()
	}
	copied := *entry
	f.leaderboard[key] = &copied
	return nil
}

func (f *fakeLeaderboardRepo) GetByQuiz(ctx context.Context, quizID uint, filters repositories.LeaderboardFilters) ([]*models.LeaderboardEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.LeaderboardEntry
	for _, entry := range f.leaderboard {
		if entry.QuizID != quizID || entry.Removed {
			continue
		}
		if entry.Hidden && !filters.IncludeHidden {
			continue
		}
		copied := *entry
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].AvgResponseTime < out[j].AvgResponseTime
	})
	return out, nil
}

func (f *fakeLeaderboardRepo) GetByQuizAndUser(ctx context.Context, quizID, userID uint) (*models.LeaderboardEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.leaderboard[[2]uint{quizID, userID}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *entry
	return &copied, nil
}

func (f *fakeLeaderboardRepo) SetHidden(ctx context.Context, quizID, userID uint, hidden bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.leaderboard[[2]uint{quizID, userID}]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	entry.Hidden = hidden
	return nil
}

func (f *fakeLeaderboardRepo) SetRemoved(ctx context.Context, quizID, userID uint, removed bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.leaderboard[[2]uint{quizID, userID}]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	entry.Removed = removed
	return nil
}

func (f *fakeLeaderboardRepo) IncrementTabSwitches(ctx context.Context, quizID, userID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.leaderboard[[2]uint{quizID, userID}]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	entry.TabSwitchCount++
	return nil
}

func (f *fakeLeaderboardRepo) IncrementFullscreenExits(ctx context.Context, quizID, userID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.leaderboard[[2]uint{quizID, userID}]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	entry.FullscreenExitCount++
	return nil
}

// ===== USER =====

type fakeUserRepo fakeRepository

func (f *fakeUserRepo) Create(ctx context.Context, user *models.QuizUser) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Username == user.Username {
			return repositories.ErrDuplicate
		}
	}
	if user.ID == 0 {
		user.ID = (*fakeRepository)(f).id()
	}
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uint) (*models.QuizUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*models.QuizUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetByIDs(ctx context.Context, ids []uint) ([]*models.QuizUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.QuizUser
	for _, id := range ids {
		if user, ok := f.users[id]; ok {
			copied := *user
			out = append(out, &copied)
		}
	}
	return out, nil
}

// ===== INTEGRITY =====

type fakeIntegrityRepo fakeRepository

func (f *fakeIntegrityRepo) Create(ctx context.Context, event *models.IntegrityEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if event.ID == 0 {
		event.ID = (*fakeRepository)(f).id()
	}
	copied := *event
	f.integrity[event.AttemptID] = append(f.integrity[event.AttemptID], &copied)
	return nil
}

func (f *fakeIntegrityRepo) GetByAttempt(ctx context.Context, attemptID uint) ([]*models.IntegrityEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.IntegrityEvent
	for _, e := range f.integrity[attemptID] {
		copied := *e
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeIntegrityRepo) CountByAttempt(ctx context.Context, attemptID uint) (*repositories.IntegrityCounts, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := &repositories.IntegrityCounts{}
	for _, e := range f.integrity[attemptID] {
		switch e.Type {
		case models.EventTabSwitch:
			counts.TabSwitches++
		case models.EventFullscreenExit:
			counts.FullscreenExits++
		}
	}
	return counts, nil
}
