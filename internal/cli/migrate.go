package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/Lethinkj/clan-quiz-service/internal/config"
	"github.com/Lethinkj/clan-quiz-service/internal/models"
	"github.com/Lethinkj/clan-quiz-service/pkg"
)

// NewMigrateCmd applies the database schema.
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}

			db, err := pkg.InitDatabase(cfg)
			if err != nil {
				return err
			}
			return runMigrations(db)
		},
	}
}

func runMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.QuizUser{},
		&models.Quiz{},
		&models.QuizQuestion{},
		&models.QuizAttempt{},
		&models.QuizAnswer{},
		&models.LeaderboardEntry{},
		&models.IntegrityEvent{},
	); err != nil {
		return fmt.Errorf("auto migration failed: %w", err)
	}

	if err := db.Exec(calculateQuizScoreSQL).Error; err != nil {
		return fmt.Errorf("failed to create calculate_quiz_score: %w", err)
	}

	slog.Info("Migrations applied")
	return nil
}

// calculateQuizScoreSQL is the authoritative rescoring function used when a
// self-paced attempt is finalized.
const calculateQuizScoreSQL = `
CREATE OR REPLACE FUNCTION calculate_quiz_score(p_attempt_id BIGINT)
RETURNS INTEGER AS $$
DECLARE
    total INTEGER;
BEGIN
    SELECT COALESCE(SUM(points_awarded), 0)
    INTO total
    FROM quiz_answers
    WHERE attempt_id = p_attempt_id;

    RETURN total;
END;
$$ LANGUAGE plpgsql;
`
