package srs

import (
	"time"

	"github.com/srgulbay/flashbox/internal/domain"
)

// calculateNextBox determines the box an item moves to after a review.
//
// An incorrect answer always sends the item back to the first box. A correct
// answer moves it up one box, stopping at the last one.
func calculateNextBox(currentBox int, outcome domain.ReviewOutcome) int {
	if outcome == domain.ReviewOutcomeIncorrect {
		return domain.MinBoxNumber
	}

	if currentBox >= domain.MaxBoxNumber {
		return domain.MaxBoxNumber
	}
	if currentBox < domain.MinBoxNumber {
		return domain.MinBoxNumber + 1
	}
	return currentBox + 1
}

// calculateMastery reports whether the item is mastered after the review.
//
// Only a correct answer given while the item already sits in the last box
// masters it; any incorrect answer revokes mastery.
func calculateMastery(currentBox int, outcome domain.ReviewOutcome) bool {
	return outcome == domain.ReviewOutcomeCorrect && currentBox >= domain.MaxBoxNumber
}

// calculateNextReviewDate converts the box's interval into a due date.
// Calendar-day arithmetic keeps the wall-clock time of day stable across DST.
func calculateNextReviewDate(box int, now time.Time, params *Params) time.Time {
	return now.AddDate(0, 0, params.IntervalDays(box))
}

// applyOutcome returns a new ReviewRecord with the state that follows the given
// outcome. The input record is never modified and no clock is read: the same
// inputs always produce the same result.
func applyOutcome(
	record *domain.ReviewRecord,
	outcome domain.ReviewOutcome,
	now time.Time,
	params *Params,
) *domain.ReviewRecord {
	next := record.Clone()

	reviewedAt := now
	next.LastReviewedAt = &reviewedAt
	next.BoxNumber = calculateNextBox(record.BoxNumber, outcome)
	next.IsMastered = calculateMastery(record.BoxNumber, outcome)
	next.NextReviewAt = calculateNextReviewDate(next.BoxNumber, now, params)
	next.UpdatedAt = now

	return next
}
