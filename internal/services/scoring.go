package services

// Scoring for live quizzes. A correct answer earns a base of 10 points plus
// a speed bonus from the ratio of response time to the question's limit:
//
//	ratio < 0.3 -> +5
//	ratio < 0.5 -> +3
//	ratio < 0.7 -> +1
//	otherwise   -> +0
//
// The only possible scores are 0, 10, 11, 13 and 15.
const (
	basePoints = 10

	fastBonusRatio   = 0.3
	mediumBonusRatio = 0.5
	slowBonusRatio   = 0.7

	fastBonus   = 5
	mediumBonus = 3
	slowBonus   = 1
)

// Score computes the points for one answer. It is deterministic and
// side-effect-free; it is evaluated exactly once per (attempt, question).
func Score(isCorrect bool, responseTimeSeconds, timeLimitSeconds float64) int {
	if !isCorrect {
		return 0
	}
	return basePoints + speedBonus(responseTimeSeconds, timeLimitSeconds)
}

func speedBonus(responseTimeSeconds, timeLimitSeconds float64) int {
	if timeLimitSeconds <= 0 {
		return 0
	}
	ratio := responseTimeSeconds / timeLimitSeconds
	switch {
	case ratio < fastBonusRatio:
		return fastBonus
	case ratio < mediumBonusRatio:
		return mediumBonus
	case ratio < slowBonusRatio:
		return slowBonus
	default:
		return 0
	}
}

// AverageResponseTime recomputes the running mean latency across all of an
// attempt's answers; written into the leaderboard projection on each answer.
func AverageResponseTime(responseTimes []float64) float64 {
	if len(responseTimes) == 0 {
		return 0
	}
	var sum float64
	for _, rt := range responseTimes {
		sum += rt
	}
	return sum / float64(len(responseTimes))
}
