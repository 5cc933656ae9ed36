package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/Lethinkj/clan-quiz-service/internal/repositories"
	"gorm.io/gorm"
)

// GormRepository bundles the per-entity implementations over one *gorm.DB.
// Begin returns a copy bound to a transaction; Commit/Rollback close it.
type GormRepository struct {
	db   *gorm.DB
	inTx bool
}

func NewGormRepository(db *gorm.DB) repositories.TransactionRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Quiz() repositories.QuizRepository {
	return NewQuizPostgreSQL(r.db)
}

func (r *GormRepository) Question() repositories.QuestionRepository {
	return NewQuestionPostgreSQL(r.db)
}

func (r *GormRepository) Attempt() repositories.AttemptRepository {
	return NewAttemptPostgreSQL(r.db)
}

func (r *GormRepository) Leaderboard() repositories.LeaderboardRepository {
	return NewLeaderboardPostgreSQL(r.db)
}

func (r *GormRepository) User() repositories.UserRepository {
	return NewUserPostgreSQL(r.db)
}

func (r *GormRepository) Integrity() repositories.IntegrityRepository {
	return NewIntegrityPostgreSQL(r.db)
}

func (r *GormRepository) Begin(ctx context.Context) (repositories.Repository, error) {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &GormRepository{db: tx, inTx: true}, nil
}

func (r *GormRepository) Commit(_ context.Context) error {
	if !r.inTx {
		return errors.New("commit outside transaction")
	}
	return r.db.Commit().Error
}

func (r *GormRepository) Rollback(_ context.Context) error {
	if !r.inTx {
		return errors.New("rollback outside transaction")
	}
	return r.db.Rollback().Error
}

// translateDuplicate maps driver-level unique violations onto the shared
// duplicate sentinel so services never match on SQLSTATE strings.
func translateDuplicate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return repositories.ErrDuplicate
	}
	// pgdriver surfaces SQLSTATE 23505 for unique violations
	if strings.Contains(err.Error(), "23505") || strings.Contains(err.Error(), "duplicate key") {
		return repositories.ErrDuplicate
	}
	return err
}

// applyPaginationAndSort applies common list ordering and paging.
func applyPaginationAndSort(query *gorm.DB, sortBy, sortOrder string, limit, offset int) *gorm.DB {
	if sortBy == "" {
		sortBy = "created_at"
	}
	if sortOrder != "asc" {
		sortOrder = "desc"
	}
	query = query.Order(sortBy + " " + sortOrder)
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query
}
